package pipeline

import (
	"github.com/twosigma/frost-sub002/emu"
	"github.com/twosigma/frost-sub002/insts"
)

// VerifyInput is the execute-stage view of one instruction whose
// control flow needs checking: the packet plus its forwarded operand
// values.
type VerifyInput struct {
	PC       uint32
	Inst     *insts.Instruction
	Pred     Prediction
	Rs1Value uint32
	Rs2Value uint32
}

// Verdict is the verifier's resolution. The pipeline applies it only
// on the cycle the instruction actually leaves execute, so a flushed
// wrong-path instruction never updates the BTB or steers fetch.
type Verdict struct {
	// ControlFlow is true for branches, jumps, calls and returns. A
	// false ControlFlow with NeedRedirect set is a BTB false positive:
	// an ordinary instruction fetched under a stale taken prediction.
	ControlFlow bool

	ActualTaken  bool
	ActualTarget uint32
	FallThrough  uint32

	// Correct means the prediction named the outcome exactly: taken
	// with the right target, from either predictor.
	Correct bool

	NeedRedirect   bool
	RedirectTarget uint32

	// UpdateBTB asks for one buffer update with the actual outcome.
	UpdateBTB bool

	// RestoreRAS rewinds the stack to this instruction's checkpoint,
	// undoing its own speculative mutation and everything younger.
	// Calls are exempt: their push is architecturally deserved and
	// must survive their own misprediction.
	RestoreRAS bool

	// CorrectivePop re-applies the single pop a mispredicted return
	// deserved after the checkpoint restore.
	CorrectivePop bool

	// Halt marks a taken control transfer back to its own address,
	// the bare-metal done-spinning idiom.
	Halt bool
}

// Verifier resolves predicted control flow at the execute stage. It
// is pure: computing a verdict touches nothing, and the pipeline
// applies the side effects itself when the decision vector lets the
// instruction advance.
type Verifier struct{}

// NewVerifier creates a verifier.
func NewVerifier() *Verifier {
	return &Verifier{}
}

// Verify resolves one instruction. It must be called when the
// instruction is a branch, jump, call or return, or when it was
// fetched under a taken prediction.
func (v *Verifier) Verify(in VerifyInput) Verdict {
	inst := in.Inst
	verdict := Verdict{
		FallThrough: inst.FallThrough(in.PC),
		ControlFlow: inst.IsBranch() || inst.IsJump(),
	}

	switch {
	case inst.IsBranch():
		verdict.ActualTaken = emu.BranchTaken(inst.Op, in.Rs1Value, in.Rs2Value)
		verdict.ActualTarget = in.PC + uint32(inst.Imm)
	case inst.Op == insts.OpJAL:
		verdict.ActualTaken = true
		verdict.ActualTarget = in.PC + uint32(inst.Imm)
	case inst.Op == insts.OpJALR:
		verdict.ActualTaken = true
		verdict.ActualTarget = (in.Rs1Value + uint32(inst.Imm)) &^ 1
	}

	predTaken := in.Pred.Taken
	verdict.Correct = predTaken && verdict.ActualTaken &&
		in.Pred.Target == verdict.ActualTarget

	verdict.NeedRedirect = (verdict.ActualTaken && !verdict.Correct) ||
		(predTaken && !verdict.ActualTaken)
	if verdict.ActualTaken {
		verdict.RedirectTarget = verdict.ActualTarget
	} else {
		verdict.RedirectTarget = verdict.FallThrough
	}

	// Control flow always records its outcome; a false positive is
	// corrected by writing the entry back as not-taken.
	verdict.UpdateBTB = verdict.ControlFlow || predTaken

	verdict.RestoreRAS = verdict.NeedRedirect && !inst.IsCall()
	verdict.CorrectivePop = verdict.RestoreRAS && inst.IsReturn()

	verdict.Halt = verdict.ActualTaken && verdict.ActualTarget == in.PC
	return verdict
}
