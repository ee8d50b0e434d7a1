// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package xsem_test

import (
	"context"
	"testing"

	"code.hybscloud.com/xsem"
)

// =============================================================================
// Uncontended fast path
// =============================================================================

func BenchmarkSemaphoreUncontended(b *testing.B) {
	sem := xsem.New(1)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		sem.Acquire(ctx)
		sem.Release()
	}
}

func BenchmarkSemaphoreTryAcquireImmediately(b *testing.B) {
	sem := xsem.New(1)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if sem.TryAcquireImmediately() {
			sem.Release()
		}
	}
}

// =============================================================================
// Contended, parallel
// =============================================================================

func BenchmarkSemaphoreParallel(b *testing.B) {
	sem := xsem.New(4)
	ctx := context.Background()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			sem.Acquire(ctx)
			sem.Release()
		}
	})
}

func BenchmarkSemaphoreRemovableParallel(b *testing.B) {
	sem := xsem.New(4, xsem.WithVariant(xsem.Removable))
	ctx := context.Background()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			sem.Acquire(ctx)
			sem.Release()
		}
	})
}

func BenchmarkCollectionPutTake(b *testing.B) {
	c := xsem.NewCollection[int](64)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Put(ctx, i)
		c.Take(ctx)
	}
}
