// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package xsem

import (
	"runtime"
	"time"
)

// backoff is a spin-then-yield-then-sleep escalation, the same shape as
// code.hybscloud.com/iox's Backoff, reimplemented here rather than
// imported: its value is the escalation strategy, not the ErrWouldBlock
// control-flow signal iox pairs it with, which this package does not use
// (see DESIGN.md).
type backoff struct {
	n int
}

// wait escalates from pure spinning to runtime.Gosched to a time.Sleep
// that grows by one microsecond per call, capped at 64µs, as repeated
// calls fail to make progress.
func (b *backoff) wait() {
	switch {
	case b.n < 4:
		// pure spin, no syscall
	case b.n < 16:
		runtime.Gosched()
	default:
		d := b.n - 16
		if d > 64 {
			d = 64
		}
		time.Sleep(time.Duration(d) * time.Microsecond)
	}
	b.n++
}

func (b *backoff) reset() {
	b.n = 0
}
