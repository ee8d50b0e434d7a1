// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package xsem

import (
	"runtime"

	"code.hybscloud.com/atomix"
)

// ShardedCounter is a striped approximate counter: writers add to one of
// several cache-line-padded shards chosen round-robin, trading exact
// reads for far less contention than a single atomic word under heavy
// concurrent increment traffic. It exists for diagnostics that sit
// alongside a [Semaphore] — e.g. counting total acquisitions served —
// where CurrentCount/CurrentQueue's exactness is not needed and a single
// shared counter would itself become the bottleneck being measured.
type ShardedCounter struct {
	shards []shardedCounterShard
	next   atomix.Uint64
}

type shardedCounterShard struct {
	_ pad
	v atomix.Int64
	_ pad
}

// NewShardedCounter creates a ShardedCounter with one shard per
// available CPU.
func NewShardedCounter() *ShardedCounter {
	n := runtime.GOMAXPROCS(0)
	if n < 1 {
		n = 1
	}
	return &ShardedCounter{shards: make([]shardedCounterShard, n)}
}

// Add adds delta to one shard, chosen round-robin across calls.
func (c *ShardedCounter) Add(delta int64) {
	i := c.next.AddAcqRel(1) % uint64(len(c.shards))
	c.shards[i].v.AddAcqRel(delta)
}

// Sum returns the approximate total across all shards. It is not
// linearizable with concurrent Add calls.
func (c *ShardedCounter) Sum() int64 {
	var total int64
	for i := range c.shards {
		total += c.shards[i].v.LoadAcquire()
	}
	return total
}
