// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package xsem

import (
	"errors"
	"fmt"
)

// Cancelled is returned by the throwing acquire variants when the
// caller's context is done before a permit arrives.
//
// This is a control-flow signal, not a failure: callers that prefer a
// boolean outcome should use TryAcquire or TryAcquireSuspending instead of
// checking for Cancelled.
var Cancelled = errors.New("xsem: acquire cancelled")

// InvalidState indicates misuse of a completion cell: consuming a stale
// version (the cell has since been reset and reused), consuming a cell
// that is still pending, or consuming the same result twice.
var InvalidState = errors.New("xsem: invalid completion-cell state")

// Corrupted indicates an impossible cell transition was observed —
// memory corruption or a broken invariant elsewhere in the queue.
// Detecting Corrupted is always fatal: see [IsCancelled] and friends for
// the recoverable kinds.
var Corrupted = errors.New("xsem: corrupted queue state")

// ResourceExhaustion indicates the process ran out of memory while
// renting a completion cell or segment. Like Corrupted, this is fatal:
// continuing would leave some logical queue index without a cell.
var ResourceExhaustion = errors.New("xsem: resource exhaustion")

// IsCancelled reports whether err is (or wraps) [Cancelled].
func IsCancelled(err error) bool { return errors.Is(err, Cancelled) }

// IsInvalidState reports whether err is (or wraps) [InvalidState].
func IsInvalidState(err error) bool { return errors.Is(err, InvalidState) }

// corrupted panics with a wrapped [Corrupted] error. A cell that is
// neither EMPTY, PERMIT, CANCELED, nor a completion reference can only
// mean the alphabet of cell states was violated elsewhere — there is no
// safe way to keep running.
func corrupted(detail string) {
	panic(fmt.Errorf("%w: %s", Corrupted, detail))
}

// exhausted panics with a wrapped [ResourceExhaustion] error.
func exhausted(detail string) {
	panic(fmt.Errorf("%w: %s", ResourceExhaustion, detail))
}
