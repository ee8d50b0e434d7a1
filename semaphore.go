// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package xsem

import (
	"context"
	"unsafe"
)

// Semaphore is a counting semaphore backed by a lock-free Segment List
// and a single atomic permit counter. Waiters are served in strict FIFO
// order: the counter's sign tells Acquire whether to take the fast path
// (a permit already exists) or enqueue and wait its turn.
type Semaphore struct {
	counter  *permitCounter
	engine   segmentEngine
	enqueued *ShardedCounter
}

// New creates a Semaphore with initialPermits available permits. Zero is
// allowed: the first Acquire then waits for a Release. A negative value
// is not validated; it is stored in the counter as is.
func New(initialPermits int, opts ...Option) *Semaphore {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	var eng segmentEngine
	switch cfg.variant {
	case Removable:
		eng = newRemovableEngine()
	default:
		eng = newSimpleEngine()
	}

	return &Semaphore{
		counter:  newPermitCounter(initialPermits),
		engine:   eng,
		enqueued: NewShardedCounter(),
	}
}

func (s *Semaphore) enqueue() (cell *completionCell, version uint64, slot waiterSlot, racedPermit bool) {
	cell = rentCompletion()
	version = cell.currentVersion()
	slot, racedPermit = s.engine.enqueueWaiter(uint64(uintptr(unsafe.Pointer(cell))))
	if !racedPermit {
		s.enqueued.Add(1)
	}
	return
}

// Acquire blocks the calling goroutine until a permit is available or
// ctx is done. On cancellation it returns an error satisfying
// IsCancelled, and the semaphore's permit count is left exactly as if
// Acquire had never been called.
func (s *Semaphore) Acquire(ctx context.Context) error {
	if s.counter.tryDecrement() {
		return nil
	}

	cell, version, slot, racedPermit := s.enqueue()
	if racedPermit {
		cell.resetAndReturn()
		return nil
	}

	_, err := waitBlocking(ctx, cell, version, slot, s.engine, s.counter)
	return err
}

// TryAcquire blocks the calling goroutine exactly like Acquire, but
// never returns an error: if ctx is done before a permit arrives, it
// returns false instead of Cancelled. A true result has the same
// meaning as a nil error from Acquire.
func (s *Semaphore) TryAcquire(ctx context.Context) bool {
	return s.Acquire(ctx) == nil
}

// TryAcquireImmediately attempts to take a permit directly from the
// counter via a single CAS loop, bypassing the Segment List entirely.
// It may succeed even while other goroutines are queued in Acquire,
// jumping ahead of them — use TryAcquire for a fairness-respecting
// blocking attempt that still never throws.
func (s *Semaphore) TryAcquireImmediately() bool {
	return s.counter.tryAcquireImmediately()
}

// AcquireFuture starts a suspending acquisition: it never blocks the
// calling goroutine, returning immediately with a Future that resolves
// once a permit is obtained or ctx is done. When a permit is already
// available, or a release deposited one in its cell first, the returned
// Future is already resolved.
func (s *Semaphore) AcquireFuture(ctx context.Context) *Future {
	if s.counter.tryDecrement() {
		fut := newFuture()
		fut.complete(true, nil)
		return fut
	}

	cell, version, slot, racedPermit := s.enqueue()
	if racedPermit {
		cell.resetAndReturn()
		fut := newFuture()
		fut.complete(true, nil)
		return fut
	}

	return waitFuture(ctx, cell, version, slot, s.engine, s.counter)
}

// TryAcquireSuspending starts a suspending acquisition exactly like
// AcquireFuture, but the returned Future never carries a Cancelled
// error: it resolves to false instead once ctx is done, mirroring how
// TryAcquire relates to Acquire.
func (s *Semaphore) TryAcquireSuspending(ctx context.Context) *Future {
	inner := s.AcquireFuture(ctx)
	fut := newFuture()
	go func() {
		ok, err := inner.Wait(context.Background())
		if err != nil && !IsCancelled(err) {
			fut.complete(false, err)
			return
		}
		fut.complete(ok, nil)
	}()
	return fut
}

// Release returns one permit, resuming the longest-waiting queued
// Acquire/AcquireFuture call if one exists.
func (s *Semaphore) Release() {
	if s.counter.tryIncrement() {
		return
	}
	s.engine.resumeOnce()
}

// CurrentCount reports the number of permits immediately available. It
// is a snapshot: concurrent Acquire/Release calls may invalidate it
// before the caller observes it.
func (s *Semaphore) CurrentCount() int {
	return s.counter.currentCount()
}

// CurrentQueue reports the approximate number of goroutines currently
// queued in Acquire/AcquireFuture. Like CurrentCount, it is a snapshot,
// and does not subtract waiters that cancelled but have not yet been
// skipped over by a release.
func (s *Semaphore) CurrentQueue() int {
	return s.counter.currentQueue()
}

// TotalEnqueued reports the approximate lifetime count of acquisitions
// that had to enqueue and wait rather than taking the fast path. Unlike
// CurrentQueue, which reads permitCounter (the same word every
// Acquire/Release already touches), this is backed by a ShardedCounter
// so that many goroutines enqueuing concurrently under heavy contention
// do not turn the diagnostic itself into a second hot cache line.
func (s *Semaphore) TotalEnqueued() int64 {
	return s.enqueued.Sum()
}
