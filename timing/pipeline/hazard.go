package pipeline

// Decision tells one pipeline register what to do at the end of the
// cycle.
type Decision uint8

const (
	// DecisionAdvance latches the upstream stage's output.
	DecisionAdvance Decision = iota

	// DecisionHold keeps the current contents for another cycle.
	DecisionHold

	// DecisionBubble clears the register.
	DecisionBubble
)

func (d Decision) String() string {
	switch d {
	case DecisionAdvance:
		return "advance"
	case DecisionHold:
		return "hold"
	case DecisionBubble:
		return "bubble"
	}
	return "invalid"
}

// HazardInputs is everything the controller needs for one cycle,
// gathered before any stage effect is applied. All fields describe
// the current state only; the controller never looks at the pipeline
// itself.
type HazardInputs struct {
	// Reset clears the whole pipeline.
	Reset bool

	// Trap means the memory-access instruction raises an exception
	// this cycle. Everything younger is wrong-path, including the
	// trapping instruction's own packet.
	Trap       bool
	TrapTarget uint32

	// MRet means the memory-access instruction is a trap return. It
	// retires normally while everything younger is flushed.
	MRet       bool
	MRetTarget uint32

	// MemBusy means the memory-access instruction needs more cycles.
	MemBusy bool

	// ExecRedirect means the execute-stage verifier found the fetch
	// path wrong.
	ExecRedirect       bool
	ExecRedirectTarget uint32

	// ExecBusy means the execute instruction occupies its unit beyond
	// this cycle.
	ExecBusy bool

	// LoadUse means the decode instruction needs a value the execute
	// instruction only produces in the memory-access stage.
	LoadUse bool

	// ReturnRedirect means predecode found a return whose predicted
	// target differs from the fetch in flight.
	ReturnRedirect       bool
	ReturnRedirectTarget uint32
}

// Decisions is the per-register decision vector for one cycle, plus
// the fetch redirect if any. Each field names the register it
// controls, not the stage that feeds it.
type Decisions struct {
	Fetch      Decision
	Predecode  Decision
	Decode     Decision
	Execute    Decision
	MemAccess  Decision
	Writeback  Decision
	Redirect   bool
	RedirectPC uint32
}

// HazardController turns the gathered hazard inputs into one decision
// vector. Exactly one rule applies per cycle, chosen by a fixed
// priority: reset, then trap or trap return, then memory busy, then
// execute redirect, then execute busy, then load-use, then return
// redirect. Ordering matters because an older instruction's stall or
// flush makes every younger condition moot for the cycle. The
// controller is stateless.
type HazardController struct{}

// NewHazardController creates a controller.
func NewHazardController() *HazardController {
	return &HazardController{}
}

// Decide resolves one cycle.
func (h *HazardController) Decide(in HazardInputs) Decisions {
	switch {
	case in.Reset:
		return Decisions{
			Fetch:     DecisionBubble,
			Predecode: DecisionBubble,
			Decode:    DecisionBubble,
			Execute:   DecisionBubble,
			MemAccess: DecisionBubble,
			Writeback: DecisionBubble,
		}

	case in.Trap:
		// The faulting packet writes no architectural result, so it
		// drains as a bubble along with everything younger. Fetch
		// restarts at the handler.
		return Decisions{
			Fetch:      DecisionAdvance,
			Predecode:  DecisionBubble,
			Decode:     DecisionBubble,
			Execute:    DecisionBubble,
			MemAccess:  DecisionBubble,
			Writeback:  DecisionBubble,
			Redirect:   true,
			RedirectPC: in.TrapTarget,
		}

	case in.MRet:
		// Unlike a trap, the return itself retires.
		return Decisions{
			Fetch:      DecisionAdvance,
			Predecode:  DecisionBubble,
			Decode:     DecisionBubble,
			Execute:    DecisionBubble,
			MemAccess:  DecisionBubble,
			Writeback:  DecisionAdvance,
			Redirect:   true,
			RedirectPC: in.MRetTarget,
		}

	case in.MemBusy:
		// The oldest instruction is stuck, so everything holds.
		// Writeback drains: nothing arrives from memory access.
		return Decisions{
			Fetch:     DecisionHold,
			Predecode: DecisionHold,
			Decode:    DecisionHold,
			Execute:   DecisionHold,
			MemAccess: DecisionHold,
			Writeback: DecisionBubble,
		}

	case in.ExecRedirect:
		// The resolved instruction proceeds; the three fetch-side
		// stages carried the wrong path.
		return Decisions{
			Fetch:      DecisionAdvance,
			Predecode:  DecisionBubble,
			Decode:     DecisionBubble,
			Execute:    DecisionBubble,
			MemAccess:  DecisionAdvance,
			Writeback:  DecisionAdvance,
			Redirect:   true,
			RedirectPC: in.ExecRedirectTarget,
		}

	case in.ExecBusy:
		// Execute keeps its instruction; memory access drains a
		// bubble behind it.
		return Decisions{
			Fetch:     DecisionHold,
			Predecode: DecisionHold,
			Decode:    DecisionHold,
			Execute:   DecisionHold,
			MemAccess: DecisionBubble,
			Writeback: DecisionAdvance,
		}

	case in.LoadUse:
		// The producer advances; the dependent waits one cycle in
		// decode while a bubble fills execute.
		return Decisions{
			Fetch:     DecisionHold,
			Predecode: DecisionHold,
			Decode:    DecisionHold,
			Execute:   DecisionBubble,
			MemAccess: DecisionAdvance,
			Writeback: DecisionAdvance,
		}

	case in.ReturnRedirect:
		// Only the fetch in flight is wrong; the return itself moves
		// on with its RAS prediction attached.
		return Decisions{
			Fetch:      DecisionAdvance,
			Predecode:  DecisionBubble,
			Decode:     DecisionAdvance,
			Execute:    DecisionAdvance,
			MemAccess:  DecisionAdvance,
			Writeback:  DecisionAdvance,
			Redirect:   true,
			RedirectPC: in.ReturnRedirectTarget,
		}
	}

	return Decisions{
		Fetch:     DecisionAdvance,
		Predecode: DecisionAdvance,
		Decode:    DecisionAdvance,
		Execute:   DecisionAdvance,
		MemAccess: DecisionAdvance,
		Writeback: DecisionAdvance,
	}
}
