// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package xsem_test

import (
	"context"
	"testing"
	"time"

	"code.hybscloud.com/xsem"
)

func TestPriorityFastPath(t *testing.T) {
	p := xsem.NewPriority(1)
	if err := p.Acquire(context.Background(), 0); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	p.Release()
}

func TestPriorityOrdersHighestFirst(t *testing.T) {
	p := xsem.NewPriority(1)
	if err := p.Acquire(context.Background(), 0); err != nil {
		t.Fatalf("initial Acquire: %v", err)
	}

	order := make(chan int, 3)
	done := make(chan struct{}, 3)
	for _, pr := range []int{1, 5, 3} {
		go func(priority int) {
			if err := p.Acquire(context.Background(), priority); err == nil {
				order <- priority
				p.Release()
			}
			done <- struct{}{}
		}(pr)
	}

	// Give every goroutine time to enqueue before releasing the held slot.
	for p.Len() < 3 {
		time.Sleep(time.Millisecond)
	}
	p.Release()

	first := <-order
	if first != 5 {
		t.Fatalf("expected priority 5 to be served first, got %d", first)
	}
	<-order
	<-order
	<-done
	<-done
	<-done
}

func TestPriorityAcquireCancelled(t *testing.T) {
	p := xsem.NewPriority(0)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if err := p.Acquire(ctx, 0); err == nil {
		t.Fatal("expected Acquire to be cancelled")
	}
	if p.Len() != 0 {
		t.Fatalf("Len after cancellation: got %d, want 0", p.Len())
	}
}
