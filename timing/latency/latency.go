// Package latency maps instructions onto the core's execution units
// and their cycle costs.
//
// Single-cycle work (ALU, branches, address generation) never occupies
// a tracked unit; multiplies, divides and the FP paths do, and the
// iterative dividers early-out based on their dividend operand.
package latency

import (
	"math/bits"

	"github.com/twosigma/frost-sub002/insts"
)

// UnitClass identifies the multi-cycle execution unit an instruction
// occupies, or UnitNone for single-cycle work.
type UnitClass uint8

const (
	UnitNone UnitClass = iota
	UnitMul
	UnitDiv
	UnitFPAddMul
	UnitFPDivSqrt

	// NumUnits sizes per-unit state arrays.
	NumUnits
)

var unitNames = [NumUnits]string{"none", "mul", "div", "fp-addmul", "fp-divsqrt"}

func (u UnitClass) String() string {
	if u >= NumUnits {
		return "invalid"
	}
	return unitNames[u]
}

// Table resolves instructions to units and occupancy cycles.
type Table struct {
	config *TimingConfig
}

// NewTable creates a latency table with the default timings.
func NewTable() *Table {
	return &Table{config: DefaultTimingConfig()}
}

// NewTableWithConfig creates a latency table with custom timings.
func NewTableWithConfig(config *TimingConfig) *Table {
	return &Table{config: config}
}

// UnitFor returns the multi-cycle unit the instruction issues to, or
// UnitNone when it completes in a single cycle.
func (t *Table) UnitFor(inst *insts.Instruction) UnitClass {
	if inst == nil {
		return UnitNone
	}
	switch inst.Op {
	case insts.OpMUL, insts.OpMULH, insts.OpMULHSU, insts.OpMULHU:
		return UnitMul
	case insts.OpDIV, insts.OpDIVU, insts.OpREM, insts.OpREMU:
		return UnitDiv
	case insts.OpFADDS, insts.OpFSUBS, insts.OpFMULS:
		return UnitFPAddMul
	case insts.OpFDIVS, insts.OpFSQRTS:
		return UnitFPDivSqrt
	}
	return UnitNone
}

// Latency returns the unit occupancy in cycles. The dividend operand
// (forwarded rs1 value) drives the iterative units; fixed-latency
// units ignore it.
func (t *Table) Latency(inst *insts.Instruction, dividend uint32) int {
	switch t.UnitFor(inst) {
	case UnitMul:
		return t.config.MulLatency
	case UnitDiv:
		return t.divLatency(inst.Op, dividend)
	case UnitFPAddMul:
		if inst.Op == insts.OpFMULS {
			return t.config.FPMulLatency
		}
		return t.config.FPAddLatency
	case UnitFPDivSqrt:
		if inst.Op == insts.OpFSQRTS {
			return t.config.FPSqrtLatency
		}
		return t.fpDivLatency(dividend)
	}
	return 1
}

// divLatency models the iterative divider: one quotient bit per cycle
// over the dividend magnitude, on top of the fixed setup cost.
func (t *Table) divLatency(op insts.Op, dividend uint32) int {
	magnitude := dividend
	if (op == insts.OpDIV || op == insts.OpREM) && int32(dividend) < 0 {
		magnitude = uint32(-int32(dividend))
	}
	lat := t.config.DivLatencyMin + bits.Len32(magnitude)
	if lat > t.config.DivLatencyMax {
		lat = t.config.DivLatencyMax
	}
	return lat
}

// fpDivLatency models the FP divider: the dividend's significant
// mantissa bits drive the iteration count.
func (t *Table) fpDivLatency(dividend uint32) int {
	lat := t.config.FPDivLatencyMin + bits.Len32(dividend&0x7FFFFF)/2
	if lat > t.config.FPDivLatencyMax {
		lat = t.config.FPDivLatencyMax
	}
	return lat
}

// Config returns the current timing configuration.
func (t *Table) Config() *TimingConfig {
	return t.config
}
