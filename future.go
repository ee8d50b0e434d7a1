// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package xsem

import (
	"context"
	"runtime"
)

// Future represents the eventual outcome of a suspending acquisition
// started by Semaphore.AcquireFuture or Semaphore.TryAcquireSuspending. It
// never blocks the goroutine that created it; Wait blocks only the
// goroutine that calls it.
type Future struct {
	done   chan struct{}
	result bool
	err    error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

func (f *Future) complete(result bool, err error) {
	f.result = result
	f.err = err
	close(f.done)
}

// Wait blocks until the future resolves or ctx is done. It may be
// called from any number of goroutines and any number of times; all
// calls observe the same outcome.
func (f *Future) Wait(ctx context.Context) (bool, error) {
	select {
	case <-f.done:
		return f.result, f.err
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// Done reports a channel that closes once the future has resolved,
// for use in a caller's own select statement.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// waitFuture is the suspending counterpart to waitBlocking: it registers
// an asynchronous continuation (dispatched via a new goroutine, never
// inline) that fulfils fut, and starts a watcher goroutine that invokes
// the cancellation protocol on the still-queued waiter if ctx is done.
func waitFuture(ctx context.Context, cell *completionCell, version uint64, slot waiterSlot, engine segmentEngine, counter *permitCounter) *Future {
	fut := newFuture()

	cell.register(func(result bool) {
		ok, err := cell.consume(version)
		cell.resetAndReturn()
		if err != nil {
			fut.complete(false, err)
			return
		}
		if !ok {
			fut.complete(false, Cancelled)
			return
		}
		fut.complete(true, nil)
	}, true)

	// The watcher goroutine also holds cell on its stack until the future
	// resolves or is cancelled, since the segment cell word that refers to
	// it is a bare address. A nil done channel never fires.
	done := ctx.Done()
	go func() {
		select {
		case <-fut.done:
		case <-done:
			engine.cancelWaiter(slot, counter)
		}
		runtime.KeepAlive(cell)
	}()

	return fut
}
