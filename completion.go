// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package xsem

import (
	"unsafe"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// completion cell state machine values.
const (
	stPending    uint64 = iota // no result yet
	stReadyTrue                // acquired
	stReadyFalse                // cancelled
	stConsumed                 // result has been read exactly once
)

// continuation slot sentinels for contRef. Any other value is the
// uintptr of a live *continuation.
const (
	contEmpty    uint64 = 0 // nothing registered yet
	contResolved uint64 = 1 // resolve() already ran; no continuation to hold
)

// continuation is the callback a waiter registers on a completionCell.
// async selects whether resolve dispatches it inline (on the releaser's
// own goroutine — required for blocking waiters, see blocking.go) or via
// a freshly dispatched goroutine (for suspending/future waiters).
type continuation struct {
	fn    func(bool)
	async bool
}

// completionCell is a reusable, single-shot boolean future: the handoff
// object that carries one acquisition's outcome to exactly one waiter.
//
// State machine: pending -> (readyTrue | readyFalse) -> consumed, and
// back to pending on reset with a bumped version. register and resolve
// race on contRef exactly once per (rent, reset) cycle; whichever runs
// second performs the dispatch.
type completionCell struct {
	version atomix.Uint64
	state   atomix.Uint64
	contRef atomix.Uint64

	// cont holds the continuation whose address is stored in contRef, so
	// it stays reachable for the garbage collector until the cell resets.
	cont *continuation

	// Cancellation back-reference, used only by the removable segment
	// engine. Weak: cleared on reset, never followed once pooled.
	segment unsafe.Pointer
	index   int
}

var completionPool = NewPool[completionCell]()

// rentCompletion takes a completion cell from the pool (or allocates a
// fresh one) and initialises it for a new acquisition. Whether the
// eventual continuation runs inline or on a new goroutine is decided
// per-call by register's async argument, not here.
func rentCompletion() *completionCell {
	c := completionPool.Get()
	c.contRef.StoreRelaxed(contEmpty)
	c.state.StoreRelease(stPending)
	return c
}

// currentVersion snapshots the version the caller must present to
// consume() later.
func (c *completionCell) currentVersion() uint64 {
	return c.version.LoadAcquire()
}

// register attaches fn as the continuation to run once this cell
// resolves. If the cell has already resolved, fn is dispatched
// immediately (per the cell's inline/async policy, chosen by the
// caller here since register is only ever called once per rent).
//
// register must not be called more than once per rent; a second call
// indicates a caller bug and is reported as Corrupted rather than
// silently racing two continuations against each other.
func (c *completionCell) register(fn func(bool), async bool) {
	cn := &continuation{fn: fn, async: async}
	ptr := uint64(uintptr(unsafe.Pointer(cn)))

	sw := spin.Wait{}
	for {
		old := c.contRef.LoadAcquire()
		switch old {
		case contResolved:
			dispatch(cn, c.readResultLocked())
			return
		case contEmpty:
			c.cont = cn
			if c.contRef.CompareAndSwapAcqRel(old, ptr) {
				return
			}
		default:
			corrupted("register called twice on a completion cell")
			return
		}
		sw.Once()
	}
}

// resolve transitions pending -> ready(result) exactly once and
// schedules any registered continuation. Calling resolve twice on the
// same rent is a bug and reported as Corrupted.
func (c *completionCell) resolve(result bool) {
	final := stReadyFalse
	if result {
		final = stReadyTrue
	}
	c.state.StoreRelease(final)

	sw := spin.Wait{}
	for {
		old := c.contRef.LoadAcquire()
		if old == contResolved {
			corrupted("resolve called twice on a completion cell")
			return
		}
		if c.contRef.CompareAndSwapAcqRel(old, contResolved) {
			if old != contEmpty {
				cn := (*continuation)(unsafe.Pointer(uintptr(old)))
				dispatch(cn, result)
			}
			return
		}
		sw.Once()
	}
}

func dispatch(cn *continuation, result bool) {
	if cn.async {
		go cn.fn(result)
	} else {
		cn.fn(result)
	}
}

// readResultLocked reads the already-resolved result. Only safe to call
// once resolve has run (contRef == contResolved), which is the only
// caller (register's "already resolved" branch).
func (c *completionCell) readResultLocked() bool {
	return c.state.LoadAcquire() == stReadyTrue
}

// consume reads the result exactly once. It fails with InvalidState if
// version does not match the cell's current version (the cell was reset
// and possibly reused since the caller rented it) or if the cell has not
// resolved yet.
func (c *completionCell) consume(version uint64) (bool, error) {
	if c.version.LoadAcquire() != version {
		return false, InvalidState
	}
	switch c.state.LoadAcquire() {
	case stReadyTrue:
		c.state.StoreRelease(stConsumed)
		return true, nil
	case stReadyFalse:
		c.state.StoreRelease(stConsumed)
		return false, nil
	case stPending:
		return false, InvalidState
	case stConsumed:
		return false, InvalidState
	default:
		corrupted("completion cell left an impossible state")
		return false, Corrupted
	}
}

// resetAndReturn bumps the version, clears all fields and returns the
// cell to the pool for reuse.
func (c *completionCell) resetAndReturn() {
	c.version.AddAcqRel(1)
	c.state.StoreRelaxed(stPending)
	c.contRef.StoreRelaxed(contEmpty)
	c.cont = nil
	c.segment = nil
	c.index = 0
	completionPool.Put(c)
}
