package pipeline

// RASStats counts return address stack traffic.
type RASStats struct {
	Pushes   uint64
	Pops     uint64
	Restores uint64
}

// ReturnAddressStack predicts return targets. Calls push their
// fall-through address at predecode and returns pop speculatively at
// the same stage, so the stack mutates on the predicted path. Every
// instruction carries a checkpoint of the pre-mutation state; when
// the verifier flushes the wrong path it restores the checkpoint and,
// for a mispredicted return, re-applies the one pop the return
// deserved.
//
// The stack is a fixed-depth ring. Deep call chains silently wrap and
// lose the oldest entries, costing only prediction accuracy.
type ReturnAddressStack struct {
	entries []uint32
	top     int
	count   int
	stats   RASStats
}

// NewReturnAddressStack creates a stack holding depth entries.
func NewReturnAddressStack(depth int) *ReturnAddressStack {
	return &ReturnAddressStack{
		entries: make([]uint32, depth),
		top:     -1,
	}
}

// Push records a call's fall-through address.
func (r *ReturnAddressStack) Push(addr uint32) {
	r.top = (r.top + 1) % len(r.entries)
	r.entries[r.top] = addr
	if r.count < len(r.entries) {
		r.count++
	}
	r.stats.Pushes++
}

// Pop removes and returns the predicted return target. On an empty
// stack it reports false and the stack is untouched.
func (r *ReturnAddressStack) Pop() (uint32, bool) {
	if r.count == 0 {
		return 0, false
	}
	addr := r.entries[r.top]
	r.top = (r.top - 1 + len(r.entries)) % len(r.entries)
	r.count--
	r.stats.Pops++
	return addr, true
}

// Top returns the predicted return target without popping. Hazard
// detection peeks here to decide whether the in-flight fetch already
// matches, before any state changes for the cycle.
func (r *ReturnAddressStack) Top() (uint32, bool) {
	if r.count == 0 {
		return 0, false
	}
	return r.entries[r.top], true
}

// Checkpoint captures the stack position for later restore.
func (r *ReturnAddressStack) Checkpoint() RASCheckpoint {
	return RASCheckpoint{Top: r.top, Count: r.count}
}

// Restore rewinds the stack to a checkpoint taken at predecode.
// Entries overwritten by wrapped pushes since the checkpoint are not
// recoverable; the restored positions simply predict whatever the
// ring now holds there.
func (r *ReturnAddressStack) Restore(cp RASCheckpoint) {
	r.top = cp.Top
	r.count = cp.Count
	r.stats.Restores++
}

// RecoverReturn rewinds to the checkpoint of a mispredicted return
// and re-applies its pop, leaving the net one-pop effect the return
// has on the stack. It returns the popped entry, if any.
func (r *ReturnAddressStack) RecoverReturn(cp RASCheckpoint) (uint32, bool) {
	r.Restore(cp)
	return r.Pop()
}

// Depth returns the stack capacity.
func (r *ReturnAddressStack) Depth() int {
	return len(r.entries)
}

// Count returns the number of live entries.
func (r *ReturnAddressStack) Count() int {
	return r.count
}

// Stats returns a copy of the counters.
func (r *ReturnAddressStack) Stats() RASStats {
	return r.stats
}

// Reset empties the stack and clears the counters.
func (r *ReturnAddressStack) Reset() {
	r.top = -1
	r.count = 0
	r.stats = RASStats{}
}
