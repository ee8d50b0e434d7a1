// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package xsem

// segmentEngine is the Segment List abstraction shared by the Simple and
// Removable variants. Both variants are concrete generic-free structs
// (simpleEngine, removableEngine) rather than a single parameterised
// type: their segment layouts genuinely differ (the removable variant
// carries doubly-linked pointers and a packed refcount the simple
// variant has no use for), matching the ecosystem's convention of
// keeping queue flavours as separate concrete types instead of one
// generalised one.
type segmentEngine interface {
	// enqueueWaiter installs cellWord (the uintptr of a *completionCell)
	// into the next cell in FIFO order. racedPermit reports that a
	// release had already deposited a permit in that cell before the
	// waiter arrived, in which case slot is the zero value and the
	// caller already holds its permit.
	enqueueWaiter(cellWord uint64) (slot waiterSlot, racedPermit bool)

	// resumeOnce hands exactly one permit to the head of the queue,
	// skipping past any cells whose waiter already cancelled.
	resumeOnce()

	// cancelWaiter swaps slot's cell to canceled. It reports true if the
	// cancellation lost the race to a concurrent resumeOnce (the waiter
	// already has its permit and must keep it).
	cancelWaiter(slot waiterSlot, counter *permitCounter) bool

	// segmentCount reports the number of segments appended to the list
	// so far, for diagnostics and tests. Segments that the removable
	// variant unlinks are not subtracted.
	segmentCount() int
}

var (
	_ segmentEngine = (*simpleEngine)(nil)
	_ segmentEngine = (*removableEngine)(nil)
)
