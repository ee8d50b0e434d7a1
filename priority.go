// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package xsem

import (
	"container/heap"
	"context"
	"sync"
	"sync/atomic"
)

const (
	priorityWaiting int32 = iota
	priorityAcquired
	priorityCanceled
)

// priorityRequest is one pending Acquire call in a Priority semaphore's
// wait queue.
type priorityRequest struct {
	priority int
	seq      int64 // FIFO tiebreaker among equal priorities
	ready    chan struct{}
	index    int // maintained by container/heap
	state    atomic.Int32
}

type priorityHeap []*priorityRequest

func (h priorityHeap) Len() int { return len(h) }

func (h priorityHeap) Less(i, j int) bool {
	if h[i].priority != h[j].priority {
		return h[i].priority > h[j].priority
	}
	return h[i].seq < h[j].seq
}

func (h priorityHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *priorityHeap) Push(x any) {
	req := x.(*priorityRequest)
	req.index = len(*h)
	*h = append(*h, req)
}

func (h *priorityHeap) Pop() any {
	old := *h
	n := len(old)
	req := old[n-1]
	old[n-1] = nil
	req.index = -1
	*h = old[:n-1]
	return req
}

// Priority is a lock-based counting semaphore that serves waiters in
// descending priority order (ties broken FIFO), rather than the plain
// FIFO order the lock-free [Semaphore] provides. A mutex-protected heap
// is the natural fit here: priority ordering needs a comparison across
// every pending waiter, which a lock-free segmented queue cannot do
// without re-deriving a priority queue itself.
type Priority struct {
	mu       sync.Mutex
	capacity int
	used     int
	pq       priorityHeap
	nextSeq  int64
}

// NewPriority creates a Priority semaphore with capacity available
// permits.
func NewPriority(capacity int) *Priority {
	p := &Priority{capacity: capacity}
	heap.Init(&p.pq)
	return p
}

// Acquire blocks until a permit is available or ctx is done. Among
// blocked waiters, the one with the highest priority value is served
// first; equal priorities are served in arrival order.
func (p *Priority) Acquire(ctx context.Context, priority int) error {
	p.mu.Lock()
	if p.used < p.capacity {
		p.used++
		p.mu.Unlock()
		return nil
	}

	req := &priorityRequest{
		priority: priority,
		seq:      p.nextSeq,
		ready:    make(chan struct{}),
	}
	p.nextSeq++
	heap.Push(&p.pq, req)
	p.mu.Unlock()

	select {
	case <-req.ready:
		return nil
	case <-ctx.Done():
		if !req.state.CompareAndSwap(priorityWaiting, priorityCanceled) {
			// Lost the race: a Release already handed this request the
			// permit. Honour it rather than dropping it on the floor.
			<-req.ready
			return nil
		}
		p.mu.Lock()
		if req.index != -1 {
			heap.Remove(&p.pq, req.index)
		}
		p.mu.Unlock()
		return ctx.Err()
	}
}

// Release returns one permit, waking the highest-priority queued
// waiter if one exists.
func (p *Priority) Release() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for p.pq.Len() > 0 {
		req := heap.Pop(&p.pq).(*priorityRequest)
		if req.state.CompareAndSwap(priorityWaiting, priorityAcquired) {
			close(req.ready)
			return
		}
	}
	p.used--
}

// Len reports the number of goroutines currently queued.
func (p *Priority) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pq.Len()
}
