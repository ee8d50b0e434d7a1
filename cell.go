// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package xsem

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// Cell state sentinels. Any cell word that is not one of these three is
// the uintptr of a live *completionCell — safe to dereference because
// the goroutine that installed it (or, for a future, its watcher
// goroutine) keeps a strong *completionCell reference on its stack for
// the cell's entire time in the queue (see DESIGN.md, "cell words vs
// segment links").
const (
	cellEmpty    uint64 = 0 // initial state, no waiter or permit yet
	cellPermit   uint64 = 1 // a release deposited a permit before an acquirer arrived
	cellCanceled uint64 = 2 // the acquirer that owned this slot gave up
)

// waiterSlot identifies where a waiter's cell lives, so a later
// cancellation can find and swap exactly that cell. It is opaque outside
// this package's two segment engines, each of which only ever inspects
// slots it produced itself.
type waiterSlot struct {
	seg any // *segmentSimple or *segmentRemovable, depending on variant
	idx int
}

// swapCell performs an atomic exchange of a cell word via CAS retry,
// since the exported atomix surface offers compare-and-swap and
// fetch-and-add but no direct unconditional swap primitive.
func swapCell(cell *atomix.Uint64, new uint64) uint64 {
	sw := spin.Wait{}
	for {
		old := cell.LoadAcquire()
		if cell.CompareAndSwapAcqRel(old, new) {
			return old
		}
		sw.Once()
	}
}
