// Package cache models data-cache timing using Akita cache components.
//
// The cache tracks tags, LRU order and dirty state only. Data lives in
// emu.Memory and moves through the memory stage directly; the cache's
// job is deciding how many cycles each access costs.
package cache

import (
	akitacache "github.com/sarchlab/akita/v4/mem/cache"
)

// Config sizes the cache and prices its accesses.
type Config struct {
	Size          int // total capacity in bytes
	Associativity int // ways per set
	BlockSize     int // line size in bytes
	HitLatency    int // cycles for a resident line
	MissPenalty   int // extra cycles on top of HitLatency for a refill
}

// DefaultConfig returns the default data-cache configuration: a small
// embedded-class L1 backed by single-cycle SRAM on a hit.
func DefaultConfig() Config {
	return Config{
		Size:          16 * 1024, // 16KB
		Associativity: 4,         // 4-way
		BlockSize:     32,        // 32B cache line
		HitLatency:    1,         // single-cycle SRAM
		MissPenalty:   20,        // refill from main memory
	}
}

// AccessResult carries the timing outcome of one access.
type AccessResult struct {
	Hit     bool
	Latency int // cycles the access occupies the memory stage

	// Eviction outcome: set when a valid block was displaced, with
	// Writeback raised if the victim was dirty.
	Evicted     bool
	EvictedAddr uint32
	Writeback   bool
}

// Statistics accumulates hit and miss traffic over a run.
type Statistics struct {
	Accesses   uint64
	Hits       uint64
	Misses     uint64
	Evictions  uint64
	Writebacks uint64
}

// Cache is a set-associative data-cache timing model built on the
// Akita cache directory.
type Cache struct {
	config    Config
	directory *akitacache.DirectoryImpl
	stats     Statistics
}

// New builds a cache of config.Size bytes arranged as
// config.Associativity ways of config.BlockSize lines.
func New(config Config) *Cache {
	sets := config.Size / (config.Associativity * config.BlockSize)

	return &Cache{
		config: config,
		directory: akitacache.NewDirectory(
			sets,
			config.Associativity,
			config.BlockSize,
			akitacache.NewLRUVictimFinder(),
		),
	}
}

// Config reports the geometry and latencies the cache was built with.
func (c *Cache) Config() Config {
	return c.config
}

// Stats reports the traffic counters accumulated so far.
func (c *Cache) Stats() Statistics {
	return c.stats
}

// ResetStats zeroes the traffic counters without touching cache state.
func (c *Cache) ResetStats() {
	c.stats = Statistics{}
}

func (c *Cache) blockAddr(addr uint32) uint64 {
	return uint64(addr) / uint64(c.config.BlockSize) * uint64(c.config.BlockSize)
}

// Probe reports the timing an access to addr would see, without
// touching tags, LRU order or statistics. Hazard decisions are
// computed before stage effects are applied, so the lookup must not
// disturb cache state.
func (c *Cache) Probe(addr uint32) AccessResult {
	block := c.directory.Lookup(0, c.blockAddr(addr))
	if block != nil && block.IsValid {
		return AccessResult{Hit: true, Latency: c.config.HitLatency}
	}
	return AccessResult{
		Hit:     false,
		Latency: c.config.HitLatency + c.config.MissPenalty,
	}
}

// Access performs a cache access, updating tags, LRU order, dirty
// state and statistics. Misses allocate the block (write-allocate for
// stores), displacing the LRU victim.
func (c *Cache) Access(addr uint32, write bool) AccessResult {
	c.stats.Accesses++

	blockAddr := c.blockAddr(addr)
	block := c.directory.Lookup(0, blockAddr)

	if block != nil && block.IsValid {
		c.stats.Hits++
		c.directory.Visit(block)
		if write {
			block.IsDirty = true
		}
		return AccessResult{Hit: true, Latency: c.config.HitLatency}
	}

	c.stats.Misses++
	result := AccessResult{
		Hit:     false,
		Latency: c.config.HitLatency + c.config.MissPenalty,
	}

	victim := c.directory.FindVictim(blockAddr)
	if victim == nil {
		return result
	}

	if victim.IsValid {
		c.stats.Evictions++
		result.Evicted = true
		result.EvictedAddr = uint32(victim.Tag)
		if victim.IsDirty {
			c.stats.Writebacks++
			result.Writeback = true
		}
	}

	victim.Tag = blockAddr
	victim.IsValid = true
	victim.IsDirty = write
	c.directory.Visit(victim)

	return result
}

// Invalidate marks the line holding addr invalid without writeback.
func (c *Cache) Invalidate(addr uint32) {
	block := c.directory.Lookup(0, c.blockAddr(addr))
	if block != nil && block.IsValid {
		block.IsValid = false
		block.IsDirty = false
	}
}

// Flush invalidates every line, counting dirty ones as writebacks.
func (c *Cache) Flush() {
	for _, set := range c.directory.GetSets() {
		for _, block := range set.Blocks {
			if block.IsValid && block.IsDirty {
				c.stats.Writebacks++
			}
			block.IsValid = false
			block.IsDirty = false
		}
	}
}

// Reset invalidates all cache lines and clears statistics.
func (c *Cache) Reset() {
	c.directory.Reset()
	c.stats = Statistics{}
}
