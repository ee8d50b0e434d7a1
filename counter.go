// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package xsem

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// permitCounter is the signed atomic counter that represents either
// available permits (positive) or queued waiters (negative).
//
// 64 bits rather than 32: atomix's confirmed public surface exposes
// Uint64/Int64/Bool wrappers but no narrower Int32, and 64 bits is a
// strict superset of the guaranteed-correct range.
type permitCounter struct {
	_ pad
	v atomix.Int64
	_ pad
}

func newPermitCounter(initial int) *permitCounter {
	c := &permitCounter{}
	c.v.StoreRelaxed(int64(initial))
	return c
}

// tryDecrement atomically subtracts 1 and reports whether the
// pre-decrement value was > 0 (a permit was available).
func (c *permitCounter) tryDecrement() bool {
	return c.v.AddAcqRel(-1) >= 0
}

// tryIncrement atomically adds 1 and reports whether the post-increment
// value is > 0 (no waiter needs to be resumed).
func (c *permitCounter) tryIncrement() bool {
	return c.v.AddAcqRel(1) > 0
}

// tryAcquireImmediately CAS-loops the counter from positive to
// positive-minus-one. Fails iff the counter is <= 0.
func (c *permitCounter) tryAcquireImmediately() bool {
	sw := spin.Wait{}
	for {
		old := c.v.LoadAcquire()
		if old <= 0 {
			return false
		}
		if c.v.CompareAndSwapAcqRel(old, old-1) {
			return true
		}
		sw.Once()
	}
}

// incrementWhenNegative increments the counter only if it is currently
// negative, restoring the counter-vs-queue invariant after a
// cancellation steals a slot the releaser believed it owned. It is a
// no-op once a concurrent release has already brought the counter to
// zero or above.
func (c *permitCounter) incrementWhenNegative() {
	sw := spin.Wait{}
	for {
		old := c.v.LoadAcquire()
		if old >= 0 {
			return
		}
		if c.v.CompareAndSwapAcqRel(old, old+1) {
			return
		}
		sw.Once()
	}
}

// currentCount returns max(0, counter).
func (c *permitCounter) currentCount() int {
	v := c.v.LoadAcquire()
	if v < 0 {
		return 0
	}
	return int(v)
}

// currentQueue returns max(0, -counter), an approximation of the number
// of waiters (it does not subtract cancelled-but-not-yet-dequeued cells).
func (c *permitCounter) currentQueue() int {
	v := c.v.LoadAcquire()
	if v >= 0 {
		return 0
	}
	return int(-v)
}
