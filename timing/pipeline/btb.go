package pipeline

// btbEntry is one direct-mapped slot. The full PC is kept as the tag
// so aliasing can never redirect fetch to another instruction's
// target. Not-taken entries stay resident: they pin the slot so a
// stale taken entry cannot keep mispredicting an aliased address.
type btbEntry struct {
	valid  bool
	tag    uint32
	target uint32
	taken  bool
}

// BTBStats counts branch target buffer traffic.
type BTBStats struct {
	Hits    uint64
	Misses  uint64
	Updates uint64

	// Corrections counts updates that flipped a matching taken entry
	// to not-taken, the false-positive repair path.
	Corrections uint64
}

// HitRate returns the fraction of lookups that matched, as a
// percentage.
func (s BTBStats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

// BTB is a direct-mapped branch target buffer indexed by instruction
// address. Entries are written only by the execute-stage verifier, at
// most once per resolved instruction, so wrong-path fetches never
// pollute it.
type BTB struct {
	entries []btbEntry
	mask    uint32
	stats   BTBStats
}

// NewBTB creates a buffer with the given number of entries, which
// must be a power of two.
func NewBTB(entries int) *BTB {
	return &BTB{
		entries: make([]btbEntry, entries),
		mask:    uint32(entries - 1),
	}
}

// index maps a PC to its slot. Bit 1 feeds the index so consecutive
// compressed instructions spread across entries.
func (b *BTB) index(pc uint32) uint32 {
	return (pc >> 1) & b.mask
}

// Lookup predicts the fetch at pc. A miss or a not-taken entry yields
// the zero Prediction, which the fetch stage reads as fall-through.
func (b *BTB) Lookup(pc uint32) Prediction {
	e := &b.entries[b.index(pc)]
	if !e.valid || e.tag != pc {
		b.stats.Misses++
		return Prediction{}
	}
	b.stats.Hits++
	if !e.taken {
		return Prediction{}
	}
	return Prediction{Taken: true, Target: e.target, Source: PredBTB}
}

// Update records the resolved outcome for pc, overwriting whatever
// occupied the slot.
func (b *BTB) Update(pc uint32, taken bool, target uint32) {
	e := &b.entries[b.index(pc)]
	if e.valid && e.tag == pc && e.taken && !taken {
		b.stats.Corrections++
	}
	e.valid = true
	e.tag = pc
	e.target = target
	e.taken = taken
	b.stats.Updates++
}

// Stats returns a copy of the counters.
func (b *BTB) Stats() BTBStats {
	return b.stats
}

// Reset invalidates every entry and clears the counters.
func (b *BTB) Reset() {
	for i := range b.entries {
		b.entries[i] = btbEntry{}
	}
	b.stats = BTBStats{}
}
