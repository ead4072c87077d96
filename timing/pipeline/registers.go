package pipeline

import (
	"github.com/twosigma/frost-sub002/insts"
)

// Exception is a fault detected early in the pipeline and carried in
// the instruction's packet until the memory-access stage resolves it.
// Predecode flags illegal encodings, execute flags misaligned
// addresses and system calls; nothing architectural happens until the
// packet reaches memory access in program order.
type Exception struct {
	Valid bool
	Cause uint32
	Tval  uint32
}

// FetchRegister holds the fetch in flight: the address sent to memory
// this cycle and the prediction the fetch was made under. The
// instruction word itself arrives when the packet moves into the
// predecode register, one cycle after the request.
type FetchRegister struct {
	Valid bool
	PC    uint32
	Pred  Prediction
}

// Clear empties the register, leaving a bubble.
func (r *FetchRegister) Clear() {
	r.Valid = false
	r.PC = 0
	r.Pred = Prediction{}
}

// PredecodeRegister holds the raw fetch window being expanded this
// cycle. Word carries 32 bits starting at PC; for a compressed
// instruction only the low half belongs to it.
type PredecodeRegister struct {
	Valid bool
	PC    uint32
	Word  uint32
	Pred  Prediction
}

// Clear empties the register, leaving a bubble.
func (r *PredecodeRegister) Clear() {
	r.Valid = false
	r.PC = 0
	r.Word = 0
	r.Pred = Prediction{}
}

// DecodeRegister holds the decoded instruction reading its operands
// this cycle. Pred includes the RAS checkpoint captured at predecode,
// so a later misprediction can rewind the stack.
type DecodeRegister struct {
	Valid     bool
	PC        uint32
	Inst      *insts.Instruction
	Pred      Prediction
	Exception Exception
}

// Clear empties the register, leaving a bubble.
func (r *DecodeRegister) Clear() {
	r.Valid = false
	r.PC = 0
	r.Inst = nil
	r.Pred = Prediction{}
	r.Exception = Exception{}
}

// ExecuteRegister holds the instruction executing this cycle together
// with the operand values read from the register files at decode.
// Forwarding replaces stale values at the execute stage itself; the
// captured values are only the fallback.
type ExecuteRegister struct {
	Valid     bool
	PC        uint32
	Inst      *insts.Instruction
	Rs1Value  uint32
	Rs2Value  uint32
	Pred      Prediction
	Exception Exception
}

// Clear empties the register, leaving a bubble.
func (r *ExecuteRegister) Clear() {
	r.Valid = false
	r.PC = 0
	r.Inst = nil
	r.Rs1Value = 0
	r.Rs2Value = 0
	r.Pred = Prediction{}
	r.Exception = Exception{}
}

// MemAccessRegister holds the instruction in the memory-access stage.
// Result carries the value computed at execute, or the unit result
// once a multi-cycle operation delivers it. ResultPending marks the
// one-cycle window between a unit releasing its instruction and the
// result bus delivering the value.
type MemAccessRegister struct {
	Valid bool
	PC    uint32
	Inst  *insts.Instruction

	// Result is the register payload so far: ALU value, link address,
	// immediate, or a delivered unit result. Loads, AMOs and CSR reads
	// overwrite it during this stage.
	Result        uint32
	ResultPending bool

	// StoreValue is the data operand consumed here: store data, the
	// AMO right-hand side, or the CSR operand.
	StoreValue uint32

	// MemAddr is the effective address for loads, stores and AMOs.
	MemAddr uint32

	Exception Exception

	// Halt marks the spin-exit instruction; the pipeline stops once it
	// retires.
	Halt bool
}

// Clear empties the register, leaving a bubble.
func (r *MemAccessRegister) Clear() {
	r.Valid = false
	r.PC = 0
	r.Inst = nil
	r.Result = 0
	r.ResultPending = false
	r.StoreValue = 0
	r.MemAddr = 0
	r.Exception = Exception{}
	r.Halt = false
}

// WritebackRegister holds the instruction retiring this cycle. By the
// time a packet lands here its value is final; the stage only commits
// it to the register file and counts the retirement.
type WritebackRegister struct {
	Valid bool
	PC    uint32
	Inst  *insts.Instruction

	// Rd, FP and Value describe the register write, applied only when
	// WritesReg is set.
	Rd        uint8
	FP        bool
	Value     uint32
	WritesReg bool

	Halt bool
}

// Clear empties the register, leaving a bubble.
func (r *WritebackRegister) Clear() {
	r.Valid = false
	r.PC = 0
	r.Inst = nil
	r.Rd = 0
	r.FP = false
	r.Value = 0
	r.WritesReg = false
	r.Halt = false
}
