// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package xsem_test

import (
	"sync"
	"testing"

	"code.hybscloud.com/xsem"
)

func TestShardedCounterAddSum(t *testing.T) {
	c := xsem.NewShardedCounter()
	c.Add(3)
	c.Add(-1)
	c.Add(10)
	if got := c.Sum(); got != 12 {
		t.Fatalf("Sum: got %d, want 12", got)
	}
}

func TestShardedCounterConcurrent(t *testing.T) {
	c := xsem.NewShardedCounter()
	const goroutines = 32
	const perGoroutine = 1000

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for g := 0; g < goroutines; g++ {
		go func() {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				c.Add(1)
			}
		}()
	}
	wg.Wait()

	want := int64(goroutines * perGoroutine)
	if got := c.Sum(); got != want {
		t.Fatalf("Sum: got %d, want %d", got, want)
	}
}
