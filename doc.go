// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package xsem provides a counting semaphore family for mixed
// blocking-goroutine and suspending-future workloads.
//
// Unlike a mutex-guarded wait queue, xsem avoids any single contended
// critical section on the acquire/release fast path: the permit count is
// a single atomic word, and waiters that cannot be satisfied immediately
// are parked in a lock-free segmented queue instead of behind a lock.
//
// # Quick Start
//
//	sem := xsem.New(1) // one permit, like a mutex
//
//	if err := sem.Acquire(context.Background()); err != nil {
//	    // err is xsem.Cancelled if ctx was done before a permit arrived
//	}
//	defer sem.Release()
//
// Non-blocking probe, bypassing the wait queue entirely:
//
//	if sem.TryAcquireImmediately() {
//	    defer sem.Release()
//	    // ...
//	}
//
// Blocking, but reporting cancellation as false instead of an error:
//
//	if sem.TryAcquire(ctx) {
//	    defer sem.Release()
//	    // ...
//	}
//
// Suspending (future-based, for code that must not block a goroutine on
// a long queue — e.g. inside a bounded worker pool):
//
//	fut := sem.AcquireFuture(ctx)
//	// ... do other work ...
//	if _, err := fut.Wait(ctx); err != nil {
//	    return err
//	}
//	defer sem.Release()
//
// TryAcquireSuspending is AcquireFuture's non-throwing counterpart, the
// same way TryAcquire relates to Acquire.
//
// # Architecture
//
// Acquisition couples six collaborating pieces:
//
//   - a signed permit counter (counter.go), the only thing touched on the
//     uncontended fast path;
//   - a reusable completion cell (completion.go) that carries the boolean
//     outcome of exactly one acquisition to exactly one waiter, whether
//     that waiter is parked on a channel or polling a future;
//   - a blocking bridge (blocking.go) that turns an unresolved completion
//     into a parked goroutine, using an inline (never dispatched)
//     continuation so that releasing never depends on a scheduler slot a
//     blocked waiter might itself be holding;
//   - a segment list (segment.go, segment_removable.go): a lock-free
//     linked list of fixed-size cell arrays, addressed by a monotonic
//     index, in two flavours — "simple" (append-only, never shrinks) and
//     "removable" (doubly linked, unlinks fully-cancelled segments); and
//   - a cancellation protocol, implemented as the cancelWaiter method on
//     each segment engine, that races a cancelling waiter against a
//     concurrent releaser without ever losing a permit.
//
// Two variants are available (see [Variant]): [Simple] never reclaims
// segment memory and is the default; [Removable] trades a little extra
// per-cell bookkeeping for unlinking segments whose cells were all
// cancelled, once releases have swept past them.
//
// # Fairness and FIFO
//
// Waiters are resumed in strict enqueue order modulo cancelled waiters,
// which the releaser skips over. There is no priority scheme; see
// [NewPriority] for a lock-based alternative that supports one.
//
// # Dependencies
//
// This package uses [code.hybscloud.com/atomix] for every atomic field
// with explicit memory ordering and [code.hybscloud.com/spin] for bounded
// CAS-retry loops, the same pair the sibling
// [code.hybscloud.com/lfq] queue package is built on. The
// producer-consumer Collection in pcqueue.go depends on
// [code.hybscloud.com/lfq] directly as its backing collection.
package xsem
