// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package xsem

import (
	"context"

	"code.hybscloud.com/lfq"
)

// Collection is a bounded producer-consumer channel built from a real
// lock-free collection ([code.hybscloud.com/lfq.MPMC]) plus two
// [Semaphore]s: one counting items ready to take, one counting free
// slots. Put blocks (or is cancelled via ctx) when the collection is
// full; Take blocks when it is empty. Unlike a plain Go channel, the
// backing storage and both wait queues are lock-free.
type Collection[T any] struct {
	items *lfq.MPMC[T]
	avail *Semaphore
	space *Semaphore
}

// NewCollection creates a Collection with room for capacity items.
func NewCollection[T any](capacity int) *Collection[T] {
	return &Collection[T]{
		items: lfq.NewMPMC[T](capacity),
		avail: New(0),
		space: New(capacity),
	}
}

// Put waits for a free slot and enqueues v. It returns an error
// satisfying IsCancelled if ctx is done first.
func (c *Collection[T]) Put(ctx context.Context, v T) error {
	if err := c.space.Acquire(ctx); err != nil {
		return err
	}
	bo := backoff{}
	for {
		if err := c.items.Enqueue(&v); err == nil {
			break
		}
		bo.wait()
	}
	c.avail.Release()
	return nil
}

// Take waits for an available item and removes it. It returns an error
// satisfying IsCancelled if ctx is done first.
func (c *Collection[T]) Take(ctx context.Context) (T, error) {
	var zero T
	if err := c.avail.Acquire(ctx); err != nil {
		return zero, err
	}
	bo := backoff{}
	for {
		v, err := c.items.Dequeue()
		if err == nil {
			c.space.Release()
			return v, nil
		}
		bo.wait()
	}
}

// Cap returns the collection's capacity.
func (c *Collection[T]) Cap() int {
	return c.items.Cap()
}

// Len approximates the number of items currently held.
func (c *Collection[T]) Len() int {
	return c.avail.CurrentCount()
}
