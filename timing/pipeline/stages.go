package pipeline

import (
	"github.com/twosigma/frost-sub002/emu"
	"github.com/twosigma/frost-sub002/insts"
	"github.com/twosigma/frost-sub002/timing/latency"
)

// FetchStage issues instruction fetches and predicts where the next
// one should come from.
type FetchStage struct {
	memory *emu.Memory
	btb    *BTB
}

// NewFetchStage creates a fetch stage reading from memory and
// predicting through btb.
func NewFetchStage(memory *emu.Memory, btb *BTB) *FetchStage {
	return &FetchStage{memory: memory, btb: btb}
}

// Fetch starts the fetch at pc and returns the in-flight register
// contents plus the address to fetch next cycle. A taken BTB hit
// steers fetch at the target; otherwise the low half of the window is
// peeked so compressed code streams without alignment bubbles.
func (s *FetchStage) Fetch(pc uint32) (FetchRegister, uint32) {
	pred := s.btb.Lookup(pc)
	next := pred.Target
	if !pred.Taken {
		next = pc + 4
		if insts.IsCompressed(uint16(s.memory.Read32(pc))) {
			next = pc + 2
		}
	}
	return FetchRegister{Valid: true, PC: pc, Pred: pred}, next
}

// PredecodeStage expands fetch windows into instructions and runs the
// return address stack. Calls push and returns pop here, on the
// predicted path, two stages before the verifier can confirm either.
type PredecodeStage struct {
	decoder *insts.Decoder
	ras     *ReturnAddressStack
}

// NewPredecodeStage creates a predecode stage.
func NewPredecodeStage(decoder *insts.Decoder, ras *ReturnAddressStack) *PredecodeStage {
	return &PredecodeStage{decoder: decoder, ras: ras}
}

// Expand decodes the fetch window without side effects. Hazard
// detection uses it to spot returns before the stage itself runs.
func (s *PredecodeStage) Expand(word uint32) *insts.Instruction {
	return s.decoder.DecodeWindow(word)
}

// Predecode turns the fetched window into a decode-register packet,
// applying the stack operations the instruction deserves. The
// checkpoint is captured first so a later flush can rewind exactly to
// the state this instruction saw. For a return, the popped entry
// replaces whatever the BTB said at fetch; an empty stack leaves the
// fetch-time prediction standing.
func (s *PredecodeStage) Predecode(r *PredecodeRegister, inst *insts.Instruction) DecodeRegister {
	pred := r.Pred
	pred.Checkpoint = s.ras.Checkpoint()

	if inst.IsReturn() {
		if target, ok := s.ras.Pop(); ok {
			pred.Taken = true
			pred.Target = target
			pred.Source = PredRAS
		}
	}
	if inst.IsCall() {
		s.ras.Push(inst.FallThrough(r.PC))
	}

	d := DecodeRegister{
		Valid: true,
		PC:    r.PC,
		Inst:  inst,
		Pred:  pred,
	}
	if inst.Op == insts.OpUnknown {
		d.Exception = Exception{
			Valid: true,
			Cause: emu.CauseIllegalInstruction,
			Tval:  inst.Raw,
		}
	}
	return d
}

// DecodeStage reads source operands from the register files.
type DecodeStage struct {
	regFile *emu.RegFile
}

// NewDecodeStage creates a decode stage reading regFile.
func NewDecodeStage(regFile *emu.RegFile) *DecodeStage {
	return &DecodeStage{regFile: regFile}
}

// Decode captures the operand values as the files hold them this
// cycle. Writeback runs earlier in the same cycle, so a value
// retiring now is already visible here and needs no forwarding path.
func (s *DecodeStage) Decode(d *DecodeRegister) ExecuteRegister {
	inst := d.Inst
	e := ExecuteRegister{
		Valid:     true,
		PC:        d.PC,
		Inst:      inst,
		Pred:      d.Pred,
		Exception: d.Exception,
	}
	switch {
	case inst.ReadsIntRs1():
		e.Rs1Value = s.regFile.ReadReg(inst.Rs1)
	case inst.ReadsFPRs1():
		e.Rs1Value = s.regFile.ReadFReg(inst.Rs1)
	}
	switch {
	case inst.ReadsIntRs2():
		e.Rs2Value = s.regFile.ReadReg(inst.Rs2)
	case inst.ReadsFPRs2():
		e.Rs2Value = s.regFile.ReadFReg(inst.Rs2)
	}
	return e
}

// ExecuteOutput is what the execute stage computes for a single-cycle
// instruction: the register payload known so far, the memory operands
// if any, and any fault the instruction raises.
type ExecuteOutput struct {
	Result     uint32
	MemAddr    uint32
	StoreValue uint32
	Exception  Exception
}

// ExecuteStage computes single-cycle results and memory operands. Its
// methods are pure; multi-cycle operations go through the completion
// tracker instead, carrying a result precomputed by UnitResult.
type ExecuteStage struct {
	csr *emu.CSRFile
}

// NewExecuteStage creates an execute stage checking CSR accesses
// against csr.
func NewExecuteStage(csr *emu.CSRFile) *ExecuteStage {
	return &ExecuteStage{csr: csr}
}

// Execute resolves one single-cycle instruction at pc with forwarded
// operands a and b. Branches and jumps produce only their link value
// here; the verifier owns the control-flow outcome.
func (s *ExecuteStage) Execute(inst *insts.Instruction, pc, a, b uint32) ExecuteOutput {
	var out ExecuteOutput

	switch inst.Format {
	case insts.FormatR:
		out.Result = emu.IntALU(inst.Op, a, b)

	case insts.FormatI:
		out.Result = emu.IntALU(inst.Op, a, uint32(inst.Imm))

	case insts.FormatU:
		if inst.Op == insts.OpLUI {
			out.Result = uint32(inst.Imm)
		} else {
			out.Result = pc + uint32(inst.Imm)
		}

	case insts.FormatLoad, insts.FormatFLoad:
		out.MemAddr = a + uint32(inst.Imm)
		if emu.Misaligned(inst.Op, out.MemAddr) {
			out.Exception = Exception{Valid: true, Cause: emu.CauseLoadMisaligned, Tval: out.MemAddr}
		}

	case insts.FormatStore, insts.FormatFStore:
		out.MemAddr = a + uint32(inst.Imm)
		out.StoreValue = b
		if emu.Misaligned(inst.Op, out.MemAddr) {
			out.Exception = Exception{Valid: true, Cause: emu.CauseStoreMisaligned, Tval: out.MemAddr}
		}

	case insts.FormatAMO:
		out.MemAddr = a
		out.StoreValue = b
		if out.MemAddr&3 != 0 {
			cause := emu.CauseStoreMisaligned
			if inst.Op == insts.OpLRW {
				cause = emu.CauseLoadMisaligned
			}
			out.Exception = Exception{Valid: true, Cause: cause, Tval: out.MemAddr}
		}

	case insts.FormatJAL, insts.FormatJALR:
		out.Result = inst.FallThrough(pc)

	case insts.FormatFR:
		out.Result = emu.FPALU(inst.Op, a, b)

	case insts.FormatCSR:
		out.StoreValue = s.csrOperand(inst, a)
		if exc, bad := s.csrIllegal(inst, out.StoreValue); bad {
			out.Exception = exc
		}

	case insts.FormatSystem:
		switch inst.Op {
		case insts.OpECALL:
			out.Exception = Exception{Valid: true, Cause: emu.CauseECallM}
		case insts.OpEBREAK:
			out.Exception = Exception{Valid: true, Cause: emu.CauseBreakpoint, Tval: pc}
		}
	}

	return out
}

// csrOperand selects the rs1 value or the zero-extended uimm.
func (s *ExecuteStage) csrOperand(inst *insts.Instruction, a uint32) uint32 {
	switch inst.Op {
	case insts.OpCSRRW, insts.OpCSRRS, insts.OpCSRRC:
		return a
	}
	return uint32(inst.Rs1)
}

// csrIllegal checks the access before the memory stage performs it:
// the address must exist, and if the operation writes, it must be
// writable. The write-or-not question depends only on the opcode and
// the rs1 field, so it is answerable here without the CSR value.
func (s *ExecuteStage) csrIllegal(inst *insts.Instruction, operand uint32) (Exception, bool) {
	illegal := Exception{Valid: true, Cause: emu.CauseIllegalInstruction, Tval: inst.Raw}
	if _, ok := s.csr.Read(inst.CSR); !ok {
		return illegal, true
	}
	if _, write := emu.CSRValue(inst.Op, 0, operand, inst.Rs1); write && !s.csr.Writable(inst.CSR) {
		return illegal, true
	}
	return Exception{}, false
}

// UnitResult precomputes the architectural result of a multi-cycle
// operation at issue time. The completion tracker buffers it until
// the latency elapses.
func (s *ExecuteStage) UnitResult(unit latency.UnitClass, op insts.Op, a, b uint32) uint32 {
	switch unit {
	case latency.UnitMul, latency.UnitDiv:
		return emu.MulDiv(op, a, b)
	}
	return emu.FPALU(op, a, b)
}

// MemAccessStage performs the data phase of loads, stores, atomics
// and CSR operations on the final cycle the instruction spends here.
type MemAccessStage struct {
	memory *emu.Memory
	csr    *emu.CSRFile
}

// NewMemAccessStage creates a memory-access stage.
func NewMemAccessStage(memory *emu.Memory, csr *emu.CSRFile) *MemAccessStage {
	return &MemAccessStage{memory: memory, csr: csr}
}

// Access completes the instruction's data phase and returns the final
// register payload. reservation is the pipeline's LR/SC reservation,
// updated in place.
func (s *MemAccessStage) Access(r *MemAccessRegister, reservation *emu.Reservation) uint32 {
	inst := r.Inst

	switch {
	case inst.IsLoad():
		return emu.LoadFromMemory(s.memory, inst.Op, r.MemAddr)

	case inst.IsStore():
		emu.StoreToMemory(s.memory, inst.Op, r.MemAddr, r.StoreValue)
		if reservation.Valid && reservation.Addr == r.MemAddr&^3 {
			*reservation = emu.Reservation{}
		}
		return r.Result

	case inst.Op == insts.OpLRW:
		*reservation = emu.Reservation{Valid: true, Addr: r.MemAddr}
		return s.memory.Read32(r.MemAddr)

	case inst.Op == insts.OpSCW:
		if reservation.Valid && reservation.Addr == r.MemAddr {
			s.memory.Write32(r.MemAddr, r.StoreValue)
			*reservation = emu.Reservation{}
			return 0
		}
		*reservation = emu.Reservation{}
		return 1

	case inst.IsAMO():
		old := s.memory.Read32(r.MemAddr)
		s.memory.Write32(r.MemAddr, emu.AMOALU(inst.Op, old, r.StoreValue))
		if reservation.Valid && reservation.Addr == r.MemAddr {
			*reservation = emu.Reservation{}
		}
		return old

	case inst.Format == insts.FormatCSR:
		old, _ := s.csr.Read(inst.CSR)
		if value, write := emu.CSRValue(inst.Op, old, r.StoreValue, inst.Rs1); write {
			s.csr.Write(inst.CSR, value)
		}
		return old
	}

	return r.Result
}

// WritebackStage commits results to the register files.
type WritebackStage struct {
	regFile *emu.RegFile
}

// NewWritebackStage creates a writeback stage.
func NewWritebackStage(regFile *emu.RegFile) *WritebackStage {
	return &WritebackStage{regFile: regFile}
}

// Writeback commits the retiring packet's register write, if it has
// one.
func (s *WritebackStage) Writeback(r *WritebackRegister) {
	if !r.WritesReg {
		return
	}
	if r.FP {
		s.regFile.WriteFReg(r.Rd, r.Value)
	} else {
		s.regFile.WriteReg(r.Rd, r.Value)
	}
}
