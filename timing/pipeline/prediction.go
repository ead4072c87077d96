package pipeline

// PredictionSource identifies which structure produced a branch
// prediction. The verifier treats the sources differently: a wrong
// RAS prediction triggers a corrective pop on top of the checkpoint
// restore, while a wrong BTB prediction only needs the restore.
type PredictionSource uint8

const (
	// PredNone marks an instruction fetched with no prediction; the
	// fetch stage assumed fall-through.
	PredNone PredictionSource = iota

	// PredBTB marks a target predicted by the branch target buffer at
	// fetch time.
	PredBTB

	// PredRAS marks a return target supplied by the return address
	// stack during predecode.
	PredRAS
)

func (s PredictionSource) String() string {
	switch s {
	case PredNone:
		return "none"
	case PredBTB:
		return "btb"
	case PredRAS:
		return "ras"
	}
	return "invalid"
}

// RASCheckpoint is a snapshot of the return address stack taken before
// an instruction's own speculative push or pop. Restoring it rewinds
// every stack mutation made by the instruction and anything younger.
type RASCheckpoint struct {
	Top   int
	Count int
}

// Prediction is the metadata pinned to an instruction at fetch and
// carried alongside it until the execute stage verifies the outcome.
type Prediction struct {
	// Taken is true when the front end steered fetch away from
	// fall-through.
	Taken bool

	// Target is the predicted next PC. Meaningful only when Taken.
	Target uint32

	// Source records which predictor spoke.
	Source PredictionSource

	// Checkpoint is the RAS state from before this instruction's own
	// speculative stack operations.
	Checkpoint RASCheckpoint
}
