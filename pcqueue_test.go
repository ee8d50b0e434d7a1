// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package xsem_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"code.hybscloud.com/xsem"
)

func TestCollectionPutTake(t *testing.T) {
	c := xsem.NewCollection[int](4)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		if err := c.Put(ctx, i*10); err != nil {
			t.Fatalf("Put(%d): %v", i, err)
		}
	}

	for i := 0; i < 4; i++ {
		v, err := c.Take(ctx)
		if err != nil {
			t.Fatalf("Take(%d): %v", i, err)
		}
		if v != i*10 {
			t.Fatalf("Take(%d): got %d, want %d", i, v, i*10)
		}
	}
}

func TestCollectionPutBlocksWhenFull(t *testing.T) {
	c := xsem.NewCollection[int](1)
	ctx := context.Background()

	if err := c.Put(ctx, 1); err != nil {
		t.Fatalf("Put: %v", err)
	}

	done := make(chan struct{})
	go func() {
		c.Put(ctx, 2)
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Put returned before the collection had room")
	case <-time.After(20 * time.Millisecond):
	}

	if _, err := c.Take(ctx); err != nil {
		t.Fatalf("Take: %v", err)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Put never returned after Take freed a slot")
	}
}

func TestCollectionTakeCancelled(t *testing.T) {
	c := xsem.NewCollection[int](1)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := c.Take(ctx); !xsem.IsCancelled(err) {
		t.Fatalf("Take: got %v, want Cancelled", err)
	}
}

func TestCollectionConcurrentProducersConsumers(t *testing.T) {
	c := xsem.NewCollection[int](8)
	ctx := context.Background()
	const n = 500

	var produced, consumed sync.WaitGroup
	produced.Add(1)
	consumed.Add(1)

	go func() {
		defer produced.Done()
		for i := 0; i < n; i++ {
			c.Put(ctx, i)
		}
	}()

	sum := 0
	go func() {
		defer consumed.Done()
		for i := 0; i < n; i++ {
			v, err := c.Take(ctx)
			if err != nil {
				t.Errorf("Take: %v", err)
				return
			}
			sum += v
		}
	}()

	produced.Wait()
	consumed.Wait()

	want := n * (n - 1) / 2
	if sum != want {
		t.Fatalf("sum: got %d, want %d", sum, want)
	}
}
