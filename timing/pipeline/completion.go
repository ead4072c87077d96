package pipeline

import (
	"fmt"

	"github.com/twosigma/frost-sub002/timing/latency"
)

// unitState tracks one execution unit. A unit is busy from the cycle
// its operation issues until the memory-access stage collects the
// result; single-issue ordering guarantees no second operation can
// want the unit in between.
type unitState struct {
	busy      bool
	rd        uint8
	fp        bool
	remaining int
	result    uint32
}

// CompletionTracker owns the multi-cycle execution units: integer
// multiply and divide, FP add/multiply and FP divide/sqrt. Results
// are computed at issue and buffered here until their latency
// elapses, so the tracker models only the timing.
//
// remaining counts the cycles of execute-stage occupancy left. At
// remaining==1 the operation completes at the end of the current
// cycle: execute releases the instruction downstream and the result
// bus delivers the value one cycle later, directly into the
// memory-access register.
type CompletionTracker struct {
	units           [latency.NumUnits]unitState
	invariantChecks bool
}

// NewCompletionTracker creates a tracker with all units idle.
func NewCompletionTracker() *CompletionTracker {
	return &CompletionTracker{}
}

// SetInvariantChecks enables the double-issue panic.
func (t *CompletionTracker) SetInvariantChecks(on bool) {
	t.invariantChecks = on
}

// Issue starts an operation on the unit. The architectural result is
// already known; latencyCycles is how long the execute stage stays
// occupied. In-order single issue means the unit must be idle here;
// with invariant checks enabled a busy unit panics.
func (t *CompletionTracker) Issue(class latency.UnitClass, rd uint8, fp bool, result uint32, latencyCycles int) {
	u := &t.units[class]
	if u.busy && t.invariantChecks {
		panic(fmt.Sprintf("pipeline: issue to busy %s unit", class))
	}
	if latencyCycles < 1 {
		latencyCycles = 1
	}
	*u = unitState{busy: true, rd: rd, fp: fp, remaining: latencyCycles, result: result}
}

// Tick advances every busy unit by one cycle.
func (t *CompletionTracker) Tick() {
	for i := range t.units {
		u := &t.units[i]
		if u.busy && u.remaining > 0 {
			u.remaining--
		}
	}
}

// Busy reports whether the unit holds an uncollected operation.
func (t *CompletionTracker) Busy(class latency.UnitClass) bool {
	return t.units[class].busy
}

// AnyBusy reports whether any unit holds an uncollected operation.
func (t *CompletionTracker) AnyBusy() bool {
	for i := range t.units {
		if t.units[i].busy {
			return true
		}
	}
	return false
}

// CompletingNextCycle reports that the unit finishes at the end of
// this cycle: execute may release the instruction downstream with the
// result still pending.
func (t *CompletionTracker) CompletingNextCycle(class latency.UnitClass) bool {
	u := &t.units[class]
	return u.busy && u.remaining == 1
}

// ResultValid reports that the unit's result is on the bus awaiting
// collection. This only happens when a stall downstream blocked the
// release on the completing cycle.
func (t *CompletionTracker) ResultValid(class latency.UnitClass) bool {
	u := &t.units[class]
	return u.busy && u.remaining == 0
}

// Collect takes the result off the unit and frees it. It returns the
// value and the destination register the operation was issued with.
func (t *CompletionTracker) Collect(class latency.UnitClass) (uint32, uint8, bool) {
	u := &t.units[class]
	result, rd, fp := u.result, u.rd, u.fp
	*u = unitState{}
	return result, rd, fp
}

// ResultFor scans the units for a valid result destined for the given
// register, serving as a forwarding source for an operand whose
// producer has completed but not yet been collected.
func (t *CompletionTracker) ResultFor(reg uint8, fp bool) (uint32, bool) {
	for i := range t.units {
		u := &t.units[i]
		if u.busy && u.remaining == 0 && u.fp == fp && u.rd == reg {
			return u.result, true
		}
	}
	return 0, false
}

// Cancel frees the unit without delivering its result, used when a
// trap flushes the execute stage mid-operation.
func (t *CompletionTracker) Cancel(class latency.UnitClass) {
	t.units[class] = unitState{}
}

// Reset frees every unit.
func (t *CompletionTracker) Reset() {
	for i := range t.units {
		t.units[i] = unitState{}
	}
}
