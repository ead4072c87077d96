package emu

import (
	"fmt"

	"github.com/twosigma/frost-sub002/insts"
)

// StepResult reports the outcome of executing a single instruction.
type StepResult struct {
	// PC is the address of the executed instruction.
	PC uint32

	// NextPC is the address execution continues at.
	NextPC uint32

	// Inst is the decoded instruction, nil when fetch produced an
	// illegal encoding.
	Inst *insts.Instruction

	// TookTrap is true when the instruction trapped into the
	// machine-mode handler instead of retiring.
	TookTrap bool

	// Exited is true if the program terminated.
	Exited bool

	// ExitCode is the program's exit status (register a0) when
	// Exited is true.
	ExitCode int

	// Err is set when execution cannot continue, such as a trap
	// with no handler installed.
	Err error
}

// Emulator executes RV32 instructions one at a time, in program order,
// with no timing. It is the architectural reference for the pipelined
// model: both call the same compute helpers, so a program must produce
// identical final state on either.
type Emulator struct {
	regFile *RegFile
	memory  *Memory
	csr     *CSRFile
	decoder *insts.Decoder

	reservation Reservation

	instructionCount uint64
	maxInstructions  uint64 // 0 means no limit

	exited   bool
	exitCode int
}

// EmulatorOption is a functional option for configuring the Emulator.
type EmulatorOption func(*Emulator)

// WithMemory supplies the backing memory instead of an empty one.
func WithMemory(mem *Memory) EmulatorOption {
	return func(e *Emulator) {
		e.memory = mem
	}
}

// WithCSRFile supplies the CSR file instead of a reset one.
func WithCSRFile(csr *CSRFile) EmulatorOption {
	return func(e *Emulator) {
		e.csr = csr
	}
}

// WithPC sets the initial program counter.
func WithPC(pc uint32) EmulatorOption {
	return func(e *Emulator) {
		e.regFile.PC = pc
	}
}

// WithStackPointer sets the initial stack pointer (x2).
func WithStackPointer(sp uint32) EmulatorOption {
	return func(e *Emulator) {
		e.regFile.X[2] = sp
	}
}

// WithMaxInstructions bounds Run. A value of 0 means no limit.
func WithMaxInstructions(max uint64) EmulatorOption {
	return func(e *Emulator) {
		e.maxInstructions = max
	}
}

// NewEmulator creates an emulator in its reset state.
func NewEmulator(opts ...EmulatorOption) *Emulator {
	e := &Emulator{
		regFile: &RegFile{},
		memory:  NewMemory(),
		csr:     NewCSRFile(),
		decoder: insts.NewDecoder(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// RegFile returns the emulator's register file.
func (e *Emulator) RegFile() *RegFile {
	return e.regFile
}

// Memory returns the emulator's memory.
func (e *Emulator) Memory() *Memory {
	return e.memory
}

// CSRFile returns the emulator's CSR file.
func (e *Emulator) CSRFile() *CSRFile {
	return e.csr
}

// PC returns the current program counter.
func (e *Emulator) PC() uint32 {
	return e.regFile.PC
}

// SetPC sets the program counter.
func (e *Emulator) SetPC(pc uint32) {
	e.regFile.PC = pc
}

// Exited reports whether the program has terminated.
func (e *Emulator) Exited() bool {
	return e.exited
}

// ExitCode returns the exit status once Exited is true.
func (e *Emulator) ExitCode() int {
	return e.exitCode
}

// InstructionCount returns the number of instructions executed.
func (e *Emulator) InstructionCount() uint64 {
	return e.instructionCount
}

// LoadProgram copies a program image into memory and sets the entry
// point.
func (e *Emulator) LoadProgram(entry uint32, program []byte) {
	e.memory.LoadSegment(entry, program)
	e.regFile.PC = entry
}

// Reset returns the emulator to its initial state with fresh
// architectural state.
func (e *Emulator) Reset() {
	e.regFile = &RegFile{}
	e.memory = NewMemory()
	e.csr = NewCSRFile()
	e.reservation = Reservation{}
	e.instructionCount = 0
	e.exited = false
	e.exitCode = 0
}

// Step fetches, decodes, and executes one instruction.
func (e *Emulator) Step() StepResult {
	if e.exited {
		return StepResult{Exited: true, ExitCode: e.exitCode}
	}
	if e.maxInstructions > 0 && e.instructionCount >= e.maxInstructions {
		return StepResult{Err: fmt.Errorf("max instructions reached at PC=0x%08X", e.regFile.PC)}
	}

	pc := e.regFile.PC
	window := e.memory.Read32(pc)
	inst := e.decoder.DecodeWindow(window)

	result := e.execute(pc, inst)
	e.regFile.PC = result.NextPC
	e.csr.Cycle++

	if result.Exited {
		e.exited = true
		e.exitCode = result.ExitCode
	}
	if !result.TookTrap && result.Err == nil && !result.Exited {
		e.instructionCount++
		e.csr.InstRet++
	}

	return result
}

// Run executes instructions until the program exits or an error
// occurs. It returns the exit code, or -1 on error.
func (e *Emulator) Run() int {
	for {
		result := e.Step()
		if result.Exited {
			return result.ExitCode
		}
		if result.Err != nil {
			return -1
		}
	}
}

// execute dispatches one decoded instruction at pc.
func (e *Emulator) execute(pc uint32, inst *insts.Instruction) StepResult {
	result := StepResult{PC: pc, Inst: inst}

	if inst.Op == insts.OpUnknown {
		return e.trap(result, CauseIllegalInstruction, inst.Raw, pc)
	}

	result.NextPC = inst.FallThrough(pc)

	switch inst.Format {
	case insts.FormatR:
		e.executeR(inst)
	case insts.FormatI:
		e.regFile.WriteReg(inst.Rd, IntALU(inst.Op, e.regFile.ReadReg(inst.Rs1), uint32(inst.Imm)))
	case insts.FormatU:
		if inst.Op == insts.OpLUI {
			e.regFile.WriteReg(inst.Rd, uint32(inst.Imm))
		} else {
			e.regFile.WriteReg(inst.Rd, pc+uint32(inst.Imm))
		}
	case insts.FormatLoad, insts.FormatFLoad:
		return e.executeLoad(pc, inst, result)
	case insts.FormatStore, insts.FormatFStore:
		return e.executeStore(pc, inst, result)
	case insts.FormatBranch:
		taken := BranchTaken(inst.Op, e.regFile.ReadReg(inst.Rs1), e.regFile.ReadReg(inst.Rs2))
		if taken {
			result.NextPC = pc + uint32(inst.Imm)
		}
	case insts.FormatJAL:
		e.regFile.WriteReg(inst.Rd, inst.FallThrough(pc))
		result.NextPC = pc + uint32(inst.Imm)
	case insts.FormatJALR:
		target := (e.regFile.ReadReg(inst.Rs1) + uint32(inst.Imm)) &^ 1
		e.regFile.WriteReg(inst.Rd, inst.FallThrough(pc))
		result.NextPC = target
	case insts.FormatAMO:
		return e.executeAMO(pc, inst, result)
	case insts.FormatFR:
		e.executeFR(inst)
	case insts.FormatCSR:
		return e.executeCSR(pc, inst, result)
	case insts.FormatSystem:
		return e.executeSystem(pc, inst, result)
	case insts.FormatFence:
		// No memory reordering to fence in this model.
	}

	// A taken control transfer back to itself is the bare-metal
	// done-spinning idiom; treat it as program exit.
	if result.NextPC == pc {
		result.Exited = true
		result.ExitCode = int(e.regFile.X[10])
	}

	return result
}

func (e *Emulator) executeR(inst *insts.Instruction) {
	a := e.regFile.ReadReg(inst.Rs1)
	b := e.regFile.ReadReg(inst.Rs2)
	var value uint32
	if isMulDiv(inst.Op) {
		value = MulDiv(inst.Op, a, b)
	} else {
		value = IntALU(inst.Op, a, b)
	}
	e.regFile.WriteReg(inst.Rd, value)
}

func (e *Emulator) executeLoad(pc uint32, inst *insts.Instruction, result StepResult) StepResult {
	addr := e.regFile.ReadReg(inst.Rs1) + uint32(inst.Imm)
	if Misaligned(inst.Op, addr) {
		return e.trap(result, CauseLoadMisaligned, addr, pc)
	}
	value := LoadFromMemory(e.memory, inst.Op, addr)
	if inst.RdFP {
		e.regFile.WriteFReg(inst.Rd, value)
	} else {
		e.regFile.WriteReg(inst.Rd, value)
	}
	return result
}

func (e *Emulator) executeStore(pc uint32, inst *insts.Instruction, result StepResult) StepResult {
	addr := e.regFile.ReadReg(inst.Rs1) + uint32(inst.Imm)
	if Misaligned(inst.Op, addr) {
		return e.trap(result, CauseStoreMisaligned, addr, pc)
	}
	var value uint32
	if inst.Rs2FP {
		value = e.regFile.ReadFReg(inst.Rs2)
	} else {
		value = e.regFile.ReadReg(inst.Rs2)
	}
	StoreToMemory(e.memory, inst.Op, addr, value)
	e.invalidateReservation(addr &^ 3)
	return result
}

func (e *Emulator) executeAMO(pc uint32, inst *insts.Instruction, result StepResult) StepResult {
	addr := e.regFile.ReadReg(inst.Rs1)
	if addr&3 != 0 {
		cause := CauseStoreMisaligned
		if inst.Op == insts.OpLRW {
			cause = CauseLoadMisaligned
		}
		return e.trap(result, cause, addr, pc)
	}

	switch inst.Op {
	case insts.OpLRW:
		e.regFile.WriteReg(inst.Rd, e.memory.Read32(addr))
		e.reservation = Reservation{Valid: true, Addr: addr}
	case insts.OpSCW:
		if e.reservation.Valid && e.reservation.Addr == addr {
			e.memory.Write32(addr, e.regFile.ReadReg(inst.Rs2))
			e.regFile.WriteReg(inst.Rd, 0)
		} else {
			e.regFile.WriteReg(inst.Rd, 1)
		}
		e.reservation = Reservation{}
	default:
		old := e.memory.Read32(addr)
		e.memory.Write32(addr, AMOALU(inst.Op, old, e.regFile.ReadReg(inst.Rs2)))
		e.regFile.WriteReg(inst.Rd, old)
		e.invalidateReservation(addr)
	}
	return result
}

func (e *Emulator) executeFR(inst *insts.Instruction) {
	var a, b uint32
	if inst.Rs1FP {
		a = e.regFile.ReadFReg(inst.Rs1)
	} else {
		a = e.regFile.ReadReg(inst.Rs1)
	}
	if inst.Rs2FP {
		b = e.regFile.ReadFReg(inst.Rs2)
	}
	value := FPALU(inst.Op, a, b)
	if inst.RdFP {
		e.regFile.WriteFReg(inst.Rd, value)
	} else {
		e.regFile.WriteReg(inst.Rd, value)
	}
}

func (e *Emulator) executeCSR(pc uint32, inst *insts.Instruction, result StepResult) StepResult {
	old, ok := e.csr.Read(inst.CSR)
	if !ok {
		return e.trap(result, CauseIllegalInstruction, inst.Raw, pc)
	}

	var operand uint32
	switch inst.Op {
	case insts.OpCSRRW, insts.OpCSRRS, insts.OpCSRRC:
		operand = e.regFile.ReadReg(inst.Rs1)
	default:
		operand = uint32(inst.Rs1) // zero-extended uimm
	}

	value, write := CSRValue(inst.Op, old, operand, inst.Rs1)
	if write && !e.csr.Write(inst.CSR, value) {
		return e.trap(result, CauseIllegalInstruction, inst.Raw, pc)
	}
	e.regFile.WriteReg(inst.Rd, old)
	return result
}

func (e *Emulator) executeSystem(pc uint32, inst *insts.Instruction, result StepResult) StepResult {
	switch inst.Op {
	case insts.OpECALL:
		if e.csr.MTVec == 0 {
			result.Exited = true
			result.ExitCode = int(e.regFile.X[10])
			return result
		}
		return e.trap(result, CauseECallM, 0, pc)
	case insts.OpEBREAK:
		if e.csr.MTVec == 0 {
			result.Exited = true
			result.ExitCode = int(e.regFile.X[10])
			return result
		}
		return e.trap(result, CauseBreakpoint, pc, pc)
	case insts.OpMRET:
		result.NextPC = e.csr.MRet()
	case insts.OpWFI:
		// With no interrupt sources modeled, WFI falls through
		// after its wake-up; architecturally a no-op here.
	}
	return result
}

// trap vectors into the machine-mode handler, or reports an error when
// no handler is installed.
func (e *Emulator) trap(result StepResult, cause, tval, pc uint32) StepResult {
	if e.csr.MTVec == 0 {
		result.Err = fmt.Errorf("unhandled trap (cause %d, tval 0x%08X) at PC=0x%08X", cause, tval, pc)
		result.NextPC = pc
		return result
	}
	result.TookTrap = true
	result.NextPC = e.csr.TakeTrap(cause, tval, pc)
	return result
}

func (e *Emulator) invalidateReservation(addr uint32) {
	if e.reservation.Valid && e.reservation.Addr == addr {
		e.reservation = Reservation{}
	}
}

func isMulDiv(op insts.Op) bool {
	switch op {
	case insts.OpMUL, insts.OpMULH, insts.OpMULHSU, insts.OpMULHU,
		insts.OpDIV, insts.OpDIVU, insts.OpREM, insts.OpREMU:
		return true
	}
	return false
}
