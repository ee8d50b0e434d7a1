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

// removableSegmentSize is small relative to the simple variant: segments
// are reclaimed once the dequeue side has swept over every one of their
// cells, found them all cancelled, and no head pointer still references
// them, so keeping them short bounds how long a burst of cancellations
// takes to free memory.
const removableSegmentSize = 16

// segmentRemovable is one link of the doubly-linked, physically
// removable Segment List used by the Removable variant.
//
// ref packs two 32-bit halves: the low half counts cancelled cells in
// this segment that the dequeue side has swept over, the high half counts outstanding head-pointer
// references (enqueueHead and dequeueHead each contribute at most one
// while they point into this segment). Packed as two 32-bit halves of a
// single Uint64 to stay on atomix's confirmed scalar surface, the same
// widening rationale as permitCounter.
type segmentRemovable struct {
	_    pad
	id   int64
	_    pad
	next atomic.Pointer[segmentRemovable]
	_    pad
	prev atomic.Pointer[segmentRemovable]
	_    pad
	ref atomix.Uint64
	_   pad
	removed atomix.Uint64
	cells   [removableSegmentSize]atomix.Uint64
}

var segmentRemovablePool = NewPool[segmentRemovable]()

func packRef(cancelled, refs uint32) uint64 {
	return uint64(cancelled) | uint64(refs)<<32
}

func unpackRef(v uint64) (cancelled, refs uint32) {
	return uint32(v), uint32(v >> 32)
}

func newSegmentRemovable(id int64) *segmentRemovable {
	s := segmentRemovablePool.Get()
	s.id = id
	s.next.Store(nil)
	s.prev.Store(nil)
	s.ref.StoreRelaxed(packRef(0, 0))
	s.removed.StoreRelaxed(0)
	for i := range s.cells {
		s.cells[i].StoreRelaxed(cellEmpty)
	}
	return s
}

// incCancelled records one more cancelled cell and, if the segment has
// become fully cancelled and unreferenced, attempts to unlink it.
func (s *segmentRemovable) incCancelled() {
	sw := spin.Wait{}
	for {
		old := s.ref.LoadAcquire()
		c, r := unpackRef(old)
		nv := packRef(c+1, r)
		if s.ref.CompareAndSwapAcqRel(old, nv) {
			s.maybeUnlink(c+1, r)
			return
		}
		sw.Once()
	}
}

func (s *segmentRemovable) incRef() {
	sw := spin.Wait{}
	for {
		old := s.ref.LoadAcquire()
		c, r := unpackRef(old)
		nv := packRef(c, r+1)
		if s.ref.CompareAndSwapAcqRel(old, nv) {
			return
		}
		sw.Once()
	}
}

func (s *segmentRemovable) decRef() {
	sw := spin.Wait{}
	for {
		old := s.ref.LoadAcquire()
		c, r := unpackRef(old)
		if r == 0 {
			corrupted("segment reference count underflow")
			return
		}
		nv := packRef(c, r-1)
		if s.ref.CompareAndSwapAcqRel(old, nv) {
			s.maybeUnlink(c, r-1)
			return
		}
		sw.Once()
	}
}

// maybeUnlink physically removes s from the chain once every cell has
// been cancelled and no head pointer references it any longer. The
// logical tail (no successor yet) is never removed.
func (s *segmentRemovable) maybeUnlink(cancelled, refs uint32) {
	if cancelled != removableSegmentSize || refs != 0 {
		return
	}
	next := s.next.Load()
	if next == nil {
		return
	}
	if !s.removed.CompareAndSwapAcqRel(0, 1) {
		return
	}
	unlinkSegment(s, next)
}

// unlinkSegment splices s out of the chain. This is a single-pass
// unlink: it does not cascade-retry against a predecessor that is
// itself concurrently being removed (see DESIGN.md).
func unlinkSegment(s, next *segmentRemovable) {
	sw := spin.Wait{}
	for {
		prev := s.prev.Load()
		if prev == nil {
			break
		}
		if prev.next.CompareAndSwap(s, next) {
			break
		}
		sw.Once()
	}
	sw2 := spin.Wait{}
	for {
		p := s.prev.Load()
		if next.prev.CompareAndSwap(s, p) {
			break
		}
		sw2.Once()
	}
}

// removableEngine implements the Removable Segment List variant.
type removableEngine struct {
	_            pad
	enqueueIndex atomix.Uint64
	_            pad
	dequeueIndex atomix.Uint64
	_            pad
	enqueueHead atomic.Pointer[segmentRemovable]
	_           pad
	dequeueHead atomic.Pointer[segmentRemovable]
	_           pad
	segCount atomix.Int64
}

func newRemovableEngine() *removableEngine {
	e := &removableEngine{}
	first := newSegmentRemovable(0)
	e.advance(&e.enqueueHead, first)
	e.advance(&e.dequeueHead, first)
	e.segCount.StoreRelaxed(1)
	return e
}

func (e *removableEngine) locate(start *segmentRemovable, id int64) *segmentRemovable {
	cur := start
	for cur.id < id {
		next := cur.next.Load()
		if next == nil {
			candidate := newSegmentRemovable(cur.id + 1)
			candidate.prev.Store(cur)
			if cur.next.CompareAndSwap(nil, candidate) {
				e.segCount.AddAcqRel(1)
				next = candidate
			} else {
				segmentRemovablePool.Put(candidate)
				next = cur.next.Load()
			}
		}
		cur = next
	}
	return cur
}

// advance moves headField forward to target, adjusting the reference
// counts of the segments it leaves and enters so they can be reclaimed
// once nothing else refers to them.
func (e *removableEngine) advance(headField *atomic.Pointer[segmentRemovable], target *segmentRemovable) {
	sw := spin.Wait{}
	for {
		cur := headField.Load()
		if cur != nil && target.id <= cur.id {
			return
		}
		if headField.CompareAndSwap(cur, target) {
			target.incRef()
			if cur != nil {
				cur.decRef()
			}
			return
		}
		sw.Once()
	}
}

func (e *removableEngine) segmentCount() int {
	return int(e.segCount.LoadAcquire())
}

func (e *removableEngine) enqueueWaiter(cellWord uint64) (slot waiterSlot, racedPermit bool) {
	idx := e.enqueueIndex.AddAcqRel(1) - 1
	segID := idx / removableSegmentSize
	seg := e.locate(e.enqueueHead.Load(), int64(segID))
	e.advance(&e.enqueueHead, seg)
	cellIdx := int(idx % removableSegmentSize)

	if seg.cells[cellIdx].CompareAndSwapAcqRel(cellEmpty, cellWord) {
		return waiterSlot{seg: seg, idx: cellIdx}, false
	}
	if seg.cells[cellIdx].LoadAcquire() != cellPermit {
		corrupted("enqueue observed an unexpected cell state")
	}
	return waiterSlot{}, true
}

func (e *removableEngine) resumeOnce() {
	sw := spin.Wait{}
	for {
		idx := e.dequeueIndex.AddAcqRel(1) - 1
		segID := int64(idx / removableSegmentSize)
		seg := e.locate(e.dequeueHead.Load(), segID)
		if seg.id > segID {
			e.skipDequeueIndexTo(seg.id * removableSegmentSize)
			e.advance(&e.dequeueHead, seg)
			continue
		}
		e.advance(&e.dequeueHead, seg)
		cellIdx := int(idx % removableSegmentSize)

		old := swapCell(&seg.cells[cellIdx], cellPermit)
		switch old {
		case cellEmpty:
			return
		case cellCanceled:
			seg.incCancelled()
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

// skipDequeueIndexTo fast-forwards dequeueIndex past a range of cells
// whose segments were physically removed before being dequeued.
func (e *removableEngine) skipDequeueIndexTo(target int64) {
	sw := spin.Wait{}
	for {
		cur := e.dequeueIndex.LoadAcquire()
		if int64(cur) >= target {
			return
		}
		if e.dequeueIndex.CompareAndSwapAcqRel(cur, uint64(target)) {
			return
		}
		sw.Once()
	}
}

func (e *removableEngine) cancelWaiter(slot waiterSlot, counter *permitCounter) bool {
	seg := slot.seg.(*segmentRemovable)
	old := swapCell(&seg.cells[slot.idx], cellCanceled)
	switch old {
	case cellPermit:
		return true
	case cellEmpty, cellCanceled:
		corrupted("cancel observed an already-vacated cell")
		return false
	default:
		// The segment's cancelled-cell count is bumped only when the
		// dequeue side later sweeps over this index (see resumeOnce's
		// cellCanceled case) — incrementing here too would double-count
		// this cell once resumeOnce eventually reaches it.
		cell := (*completionCell)(unsafe.Pointer(uintptr(old)))
		cell.resolve(false)
		counter.incrementWhenNegative()
		return false
	}
}
