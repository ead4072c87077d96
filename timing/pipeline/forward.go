package pipeline

import (
	"github.com/twosigma/frost-sub002/insts"
)

// ForwardSource identifies where an execute-stage operand came from.
type ForwardSource uint8

const (
	// ForwardNone means the value captured from the register file at
	// decode was already current.
	ForwardNone ForwardSource = iota

	// ForwardFromMemAccess is the youngest source: the instruction one
	// stage ahead, result already in its packet.
	ForwardFromMemAccess

	// ForwardFromTracker is a completed execution-unit result awaiting
	// collection.
	ForwardFromTracker

	// ForwardFromWriteback is the instruction retiring this cycle.
	ForwardFromWriteback
)

func (s ForwardSource) String() string {
	switch s {
	case ForwardNone:
		return "none"
	case ForwardFromMemAccess:
		return "mem-access"
	case ForwardFromTracker:
		return "tracker"
	case ForwardFromWriteback:
		return "writeback"
	}
	return "invalid"
}

// ForwardingNetwork selects execute-stage operand values. Sources are
// consulted youngest-first so an operand always reflects the most
// recent in-flight write; the register-file value captured at decode
// is the fallback. The network holds no state.
type ForwardingNetwork struct{}

// NewForwardingNetwork creates the network.
func NewForwardingNetwork() *ForwardingNetwork {
	return &ForwardingNetwork{}
}

// resultAtMemAccess reports whether an instruction's register payload
// is produced in the memory-access stage rather than at execute.
// Such a value cannot be forwarded from the mem-access packet and a
// dependent one cycle behind must take the load-use bubble instead.
func resultAtMemAccess(inst *insts.Instruction) bool {
	return inst.IsLoad() || inst.IsAMO() || inst.Format == insts.FormatCSR
}

// writesRegister reports whether inst writes the given register of
// the given file.
func writesRegister(inst *insts.Instruction, reg uint8, fp bool) bool {
	if fp {
		return inst.WritesFPReg() && inst.Rd == reg
	}
	return inst.WritesIntReg() && inst.Rd == reg
}

// Operand resolves one execute-stage operand. fileValue is the value
// read from the register file at decode; ma, tracker and wb are the
// downstream pipeline state holding results that have not reached the
// file yet.
func (f *ForwardingNetwork) Operand(reg uint8, fp bool, fileValue uint32,
	ma *MemAccessRegister, tracker *CompletionTracker, wb *WritebackRegister) (uint32, ForwardSource) {
	// x0 reads as zero no matter what is in flight.
	if !fp && reg == 0 {
		return 0, ForwardNone
	}
	if ma.Valid && writesRegister(ma.Inst, reg, fp) &&
		!ma.ResultPending && !resultAtMemAccess(ma.Inst) {
		return ma.Result, ForwardFromMemAccess
	}
	if value, ok := tracker.ResultFor(reg, fp); ok {
		return value, ForwardFromTracker
	}
	if wb.Valid && wb.WritesReg && wb.FP == fp && wb.Rd == reg {
		return wb.Value, ForwardFromWriteback
	}
	return fileValue, ForwardNone
}
