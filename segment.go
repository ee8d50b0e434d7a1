// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package xsem

import (
	"sync/atomic"
	"unsafe"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// simpleSegmentSize is the number of cells per append-only segment. It is
// large relative to the removable variant's segment size since simple
// segments are never reclaimed mid-list, only ever appended past.
const simpleSegmentSize = 256

// segmentSimple is one link of the append-only Segment List used by the
// Simple variant: allocated once, never unlinked, reclaimed only when the
// whole Semaphore is discarded.
type segmentSimple struct {
	_    pad
	id   int64
	_    pad
	next atomic.Pointer[segmentSimple]
	_    pad
	cells [simpleSegmentSize]atomix.Uint64
}

var segmentSimplePool = NewPool[segmentSimple]()

func newSegmentSimple(id int64) *segmentSimple {
	s := segmentSimplePool.Get()
	s.id = id
	s.next.Store(nil)
	for i := range s.cells {
		s.cells[i].StoreRelaxed(cellEmpty)
	}
	return s
}

// simpleEngine implements the Simple Segment List variant: an unbounded
// append-only singly-linked chain of 256-cell segments, indexed by two
// monotonic FAA counters (enqueueIndex, dequeueIndex).
type simpleEngine struct {
	_            pad
	enqueueIndex atomix.Uint64
	_            pad
	dequeueIndex atomix.Uint64
	_            pad
	enqueueHead atomic.Pointer[segmentSimple]
	_           pad
	dequeueHead atomic.Pointer[segmentSimple]
	_           pad
	segCount atomix.Int64
}

func newSimpleEngine() *simpleEngine {
	e := &simpleEngine{}
	first := newSegmentSimple(0)
	e.enqueueHead.Store(first)
	e.dequeueHead.Store(first)
	e.segCount.StoreRelaxed(1)
	return e
}

// locate walks forward from start until it reaches (or creates) the
// segment with the given id, appending fresh segments as needed. A
// goroutine that loses the append race returns its freshly allocated
// segment to the pool immediately — it was never published, so this is
// always safe.
func (e *simpleEngine) locate(start *segmentSimple, id int64) *segmentSimple {
	cur := start
	for cur.id < id {
		next := cur.next.Load()
		if next == nil {
			candidate := newSegmentSimple(cur.id + 1)
			if cur.next.CompareAndSwap(nil, candidate) {
				e.segCount.AddAcqRel(1)
				next = candidate
			} else {
				segmentSimplePool.Put(candidate)
				next = cur.next.Load()
			}
		}
		cur = next
	}
	return cur
}

func (e *simpleEngine) advance(headField *atomic.Pointer[segmentSimple], target *segmentSimple) {
	sw := spin.Wait{}
	for {
		cur := headField.Load()
		if cur != nil && target.id <= cur.id {
			return
		}
		if headField.CompareAndSwap(cur, target) {
			return
		}
		sw.Once()
	}
}

func (e *simpleEngine) segmentCount() int {
	return int(e.segCount.LoadAcquire())
}

// enqueueWaiter installs cellWord into the next free slot. A single CAS
// attempt suffices: the slot is uniquely assigned to this call via the
// FAA index, so the only possible prior writer is a release that beat us
// here and deposited a permit.
func (e *simpleEngine) enqueueWaiter(cellWord uint64) (slot waiterSlot, racedPermit bool) {
	idx := e.enqueueIndex.AddAcqRel(1) - 1
	segID := int64(idx) / simpleSegmentSize
	seg := e.locate(e.enqueueHead.Load(), segID)
	e.advance(&e.enqueueHead, seg)
	cellIdx := int(idx % simpleSegmentSize)

	if seg.cells[cellIdx].CompareAndSwapAcqRel(cellEmpty, cellWord) {
		return waiterSlot{seg: seg, idx: cellIdx}, false
	}
	if seg.cells[cellIdx].LoadAcquire() != cellPermit {
		corrupted("enqueue observed an unexpected cell state")
	}
	return waiterSlot{}, true
}

// resumeOnce hands one permit to the next waiter in FIFO order, skipping
// over cells whose waiter already cancelled.
func (e *simpleEngine) resumeOnce() {
	sw := spin.Wait{}
	for {
		idx := e.dequeueIndex.AddAcqRel(1) - 1
		segID := int64(idx) / simpleSegmentSize
		seg := e.locate(e.dequeueHead.Load(), segID)
		e.advance(&e.dequeueHead, seg)
		cellIdx := int(idx % simpleSegmentSize)

		old := swapCell(&seg.cells[cellIdx], cellPermit)
		switch old {
		case cellEmpty:
			return
		case cellCanceled:
			sw.Once()
			continue
		case cellPermit:
			corrupted("release observed a slot that already held a permit")
			return
		default:
			cell := (*completionCell)(unsafe.Pointer(uintptr(old)))
			cell.resolve(true)
			return
		}
	}
}

// cancelWaiter swaps slot's cell to canceled and reports whether the
// cancellation lost the race to a concurrent release (in which case the
// caller already has its permit and cancellation has no further effect).
func (e *simpleEngine) cancelWaiter(slot waiterSlot, counter *permitCounter) bool {
	seg := slot.seg.(*segmentSimple)
	old := swapCell(&seg.cells[slot.idx], cellCanceled)
	switch old {
	case cellPermit:
		return true
	case cellEmpty, cellCanceled:
		corrupted("cancel observed an already-vacated cell")
		return false
	default:
		cell := (*completionCell)(unsafe.Pointer(uintptr(old)))
		cell.resolve(false)
		counter.incrementWhenNegative()
		return false
	}
}
