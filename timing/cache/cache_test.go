package cache_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/twosigma/frost-sub002/timing/cache"
)

var _ = Describe("Cache", func() {
	var c *cache.Cache

	BeforeEach(func() {
		// Small cache for testing: 4KB, 4-way, 64B lines = 16 sets.
		config := cache.Config{
			Size:          4 * 1024,
			Associativity: 4,
			BlockSize:     64,
			HitLatency:    1,
			MissPenalty:   10,
		}
		c = cache.New(config)
	})

	Describe("Access", func() {
		It("should miss on a cold cache", func() {
			result := c.Access(0x1000, false)
			Expect(result.Hit).To(BeFalse())
			Expect(result.Latency).To(Equal(11))

			stats := c.Stats()
			Expect(stats.Accesses).To(Equal(uint64(1)))
			Expect(stats.Misses).To(Equal(uint64(1)))
			Expect(stats.Hits).To(Equal(uint64(0)))
		})

		It("should hit on a resident block", func() {
			c.Access(0x1000, false)

			result := c.Access(0x1000, false)
			Expect(result.Hit).To(BeTrue())
			Expect(result.Latency).To(Equal(1))

			stats := c.Stats()
			Expect(stats.Accesses).To(Equal(uint64(2)))
			Expect(stats.Hits).To(Equal(uint64(1)))
			Expect(stats.Misses).To(Equal(uint64(1)))
		})

		It("should hit anywhere within a resident line", func() {
			c.Access(0x1000, false)

			Expect(c.Access(0x1004, false).Hit).To(BeTrue())
			Expect(c.Access(0x103C, false).Hit).To(BeTrue())
		})

		It("should write-allocate on a store miss", func() {
			result := c.Access(0x1000, true)
			Expect(result.Hit).To(BeFalse())

			Expect(c.Access(0x1000, false).Hit).To(BeTrue())
		})
	})

	Describe("Probe", func() {
		It("should report the miss timing without allocating", func() {
			result := c.Probe(0x1000)
			Expect(result.Hit).To(BeFalse())
			Expect(result.Latency).To(Equal(11))

			// Probing must not bring the line in.
			Expect(c.Probe(0x1000).Hit).To(BeFalse())
			Expect(c.Stats().Accesses).To(Equal(uint64(0)))
		})

		It("should report the hit timing for a resident block", func() {
			c.Access(0x2000, false)

			result := c.Probe(0x2000)
			Expect(result.Hit).To(BeTrue())
			Expect(result.Latency).To(Equal(1))
		})

		It("should agree with the access that follows it", func() {
			c.Access(0x3000, true)

			probe := c.Probe(0x3000)
			access := c.Access(0x3000, false)
			Expect(access.Hit).To(Equal(probe.Hit))
			Expect(access.Latency).To(Equal(probe.Latency))
		})
	})

	Describe("Eviction", func() {
		It("should evict when a set overflows", func() {
			// Set 0 addresses stride by numSets*blockSize = 0x400.
			c.Access(0x0000, true)
			c.Access(0x0400, true)
			c.Access(0x0800, true)
			c.Access(0x0C00, true)

			Expect(c.Access(0x0000, false).Hit).To(BeTrue())
			Expect(c.Access(0x0400, false).Hit).To(BeTrue())
			Expect(c.Access(0x0800, false).Hit).To(BeTrue())
			Expect(c.Access(0x0C00, false).Hit).To(BeTrue())

			result := c.Access(0x1000, true)
			Expect(result.Hit).To(BeFalse())
			Expect(result.Evicted).To(BeTrue())

			Expect(c.Stats().Evictions).To(Equal(uint64(1)))
		})

		It("should evict the least recently used block", func() {
			c.Access(0x0000, true)
			c.Access(0x0400, true)
			c.Access(0x0800, true)
			c.Access(0x0C00, true)

			// Touch all but 0x0000 so it becomes the LRU victim.
			c.Access(0x0400, false)
			c.Access(0x0800, false)
			c.Access(0x0C00, false)

			result := c.Access(0x1000, false)
			Expect(result.Evicted).To(BeTrue())
			Expect(result.EvictedAddr).To(Equal(uint32(0x0000)))
			Expect(result.Writeback).To(BeTrue())

			stats := c.Stats()
			Expect(stats.Writebacks).To(Equal(uint64(1)))
		})

		It("should not count a writeback for clean victims", func() {
			c.Access(0x0000, false)
			c.Access(0x0400, false)
			c.Access(0x0800, false)
			c.Access(0x0C00, false)

			c.Access(0x0400, false)
			c.Access(0x0800, false)
			c.Access(0x0C00, false)

			result := c.Access(0x1000, false)
			Expect(result.Evicted).To(BeTrue())
			Expect(result.Writeback).To(BeFalse())
			Expect(c.Stats().Writebacks).To(Equal(uint64(0)))
		})
	})

	Describe("Invalidate", func() {
		It("should force the next access to miss", func() {
			c.Access(0x1000, false)
			Expect(c.Probe(0x1000).Hit).To(BeTrue())

			c.Invalidate(0x1000)
			Expect(c.Probe(0x1000).Hit).To(BeFalse())
		})

		It("should ignore addresses that are not resident", func() {
			c.Invalidate(0x5000)
			Expect(c.Stats().Accesses).To(Equal(uint64(0)))
		})
	})

	Describe("Flush", func() {
		It("should invalidate everything and count dirty writebacks", func() {
			c.Access(0x0000, true)
			c.Access(0x1000, false)

			c.Flush()

			Expect(c.Probe(0x0000).Hit).To(BeFalse())
			Expect(c.Probe(0x1000).Hit).To(BeFalse())
			Expect(c.Stats().Writebacks).To(Equal(uint64(1)))
		})
	})

	Describe("Reset", func() {
		It("should clear state and statistics", func() {
			c.Access(0x0000, true)
			c.Access(0x1000, false)

			c.Reset()

			Expect(c.Probe(0x0000).Hit).To(BeFalse())
			Expect(c.Stats()).To(Equal(cache.Statistics{}))
		})
	})

	Describe("Default configuration", func() {
		It("should describe a small embedded L1", func() {
			config := cache.DefaultConfig()
			Expect(config.Size).To(Equal(16 * 1024))
			Expect(config.Associativity).To(Equal(4))
			Expect(config.BlockSize).To(Equal(32))
			Expect(config.HitLatency).To(Equal(1))
			Expect(config.MissPenalty).To(Equal(20))
		})
	})
})
