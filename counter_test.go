// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package xsem

import "testing"

func TestPermitCounterFastPath(t *testing.T) {
	c := newPermitCounter(1)
	if !c.tryDecrement() {
		t.Fatal("tryDecrement on a fresh permit should succeed")
	}
	if c.tryDecrement() {
		t.Fatal("tryDecrement with no permits should fail")
	}
	if c.currentQueue() != 1 {
		t.Fatalf("currentQueue: got %d, want 1", c.currentQueue())
	}
}

func TestPermitCounterReleaseSignalsResume(t *testing.T) {
	c := newPermitCounter(0)
	if c.tryDecrement() {
		t.Fatal("tryDecrement on an empty counter should fail")
	}
	if c.tryIncrement() {
		t.Fatal("tryIncrement should report a waiter needs resuming")
	}
}

func TestPermitCounterTryAcquireImmediately(t *testing.T) {
	c := newPermitCounter(2)
	if !c.tryAcquireImmediately() {
		t.Fatal("expected success with permits available")
	}
	if !c.tryAcquireImmediately() {
		t.Fatal("expected success with one permit left")
	}
	if c.tryAcquireImmediately() {
		t.Fatal("expected failure once permits are exhausted")
	}
	if c.currentCount() != 0 {
		t.Fatalf("currentCount: got %d, want 0", c.currentCount())
	}
}

func TestPermitCounterIncrementWhenNegative(t *testing.T) {
	c := newPermitCounter(0)
	c.tryDecrement() // counter now -1

	c.incrementWhenNegative()
	if c.currentCount() != 0 || c.currentQueue() != 0 {
		t.Fatalf("expected counter restored to 0, got count=%d queue=%d", c.currentCount(), c.currentQueue())
	}

	// No-op once the counter is non-negative.
	c.incrementWhenNegative()
	if c.currentCount() != 0 {
		t.Fatalf("incrementWhenNegative should be a no-op on a non-negative counter, got count=%d", c.currentCount())
	}
}
