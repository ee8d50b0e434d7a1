// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package xsem

import "context"

// parker is the pooled hand-off used to park a blocking goroutine: a
// single-slot buffered channel a waiter's completion cell signals into
// when it resolves.
type parker struct {
	ch chan bool
}

var parkerPool = NewPool[parker]()

func rentParker() *parker {
	p := parkerPool.Get()
	if p.ch == nil {
		p.ch = make(chan bool, 1)
	}
	return p
}

func (p *parker) release() {
	select {
	case <-p.ch:
	default:
	}
	parkerPool.Put(p)
}

// waitBlocking is the Blocking Bridge: it registers an inline
// continuation on cell (one that sends directly into a pooled channel,
// never through "go") and parks the calling goroutine until the cell
// resolves or ctx is done.
//
// Registering inline matters: a blocking waiter's continuation must run
// synchronously on the releasing goroutine, not depend on the Go
// scheduler finding a slot for a new goroutine, so that Release never
// blocks on a parked waiter's own scheduling luck.
func waitBlocking(ctx context.Context, cell *completionCell, version uint64, slot waiterSlot, engine segmentEngine, counter *permitCounter) (bool, error) {
	p := rentParker()
	defer p.release()

	cell.register(func(result bool) {
		p.ch <- result
	}, false)

	if done := ctx.Done(); done != nil {
		select {
		case <-p.ch:
		case <-done:
			engine.cancelWaiter(slot, counter)
			<-p.ch
		}
	} else {
		<-p.ch
	}

	ok, err := cell.consume(version)
	cell.resetAndReturn()
	if err != nil {
		return false, err
	}
	if !ok {
		return false, Cancelled
	}
	return true, nil
}
