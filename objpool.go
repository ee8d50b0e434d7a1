// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package xsem

import (
	"sync/atomic"
	"unsafe"

	"code.hybscloud.com/spin"
)

// Pool is a lock-free, CAS-based free-list object pool (a Treiber stack).
// Get never blocks: a miss allocates a fresh *T via new.
//
// Pool backs the completion-cell pool (completion.go), the segment pools
// (segment.go, segment_removable.go) and the blocking bridge's parker pool
// (blocking.go). Go goroutines have no cheap per-goroutine storage
// equivalent to a thread-local slot, so the per-thread and per-core tiers
// collapse onto this single CAS-protected free list. See DESIGN.md for that tradeoff.
//
// The free-list head is a [sync/atomic.Pointer] rather than an
// [code.hybscloud.com/atomix] field: pooled nodes are live heap objects that
// must stay visible to the garbage collector while parked in the list, and
// atomix's public surface (as used throughout this package) only covers
// scalar words, not GC-tracked pointers.
type Pool[T any] struct {
	head atomic.Pointer[poolNode[T]]
}

type poolNode[T any] struct {
	value T
	next  atomic.Pointer[poolNode[T]]
}

// NewPool creates an empty object pool for type T.
func NewPool[T any]() *Pool[T] {
	return &Pool[T]{}
}

// Get removes and returns an item from the pool, or allocates a fresh one
// if the pool is empty. The returned value is never nil.
func (p *Pool[T]) Get() *T {
	sw := spin.Wait{}
	for {
		top := p.head.Load()
		if top == nil {
			return &new(poolNode[T]).value
		}
		next := top.next.Load()
		if p.head.CompareAndSwap(top, next) {
			top.next.Store(nil)
			return &top.value
		}
		sw.Once()
	}
}

// Put returns an item to the pool for reuse. The caller must not retain
// other references to v after calling Put.
func (p *Pool[T]) Put(v *T) {
	n := containerOf(v)
	sw := spin.Wait{}
	for {
		top := p.head.Load()
		n.next.Store(top)
		if p.head.CompareAndSwap(top, n) {
			return
		}
		sw.Once()
	}
}

// containerOf recovers the poolNode that embeds v. Get always hands out
// the address of poolNode.value, so the node starts at the same address
// as v (value is the first field).
func containerOf[T any](v *T) *poolNode[T] {
	return (*poolNode[T])(unsafe.Pointer(v))
}
