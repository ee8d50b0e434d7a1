// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package xsem

// Variant selects which Segment List implementation backs a Semaphore.
type Variant int

const (
	// Simple uses an append-only Segment List: cheap, never reclaims
	// memory for cancelled waiters until the whole Semaphore is
	// discarded. Best when cancellation is rare.
	Simple Variant = iota

	// Removable uses a doubly-linked, physically reclaiming Segment
	// List: a segment is unlinked once releases have swept over all of
	// its cells and found every one cancelled, and no head pointer still
	// refers to it. Cancellation alone, with no release sweeping past,
	// does not unlink a segment. Best when Acquire is frequently
	// cancelled via context.
	Removable
)

type config struct {
	variant Variant
}

func defaultConfig() config {
	return config{variant: Simple}
}

// Option configures a Semaphore at construction time.
type Option func(*config)

// WithVariant selects the Segment List implementation. The default is
// Simple.
func WithVariant(v Variant) Option {
	return func(c *config) {
		c.variant = v
	}
}
