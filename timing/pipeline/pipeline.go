// Package pipeline implements a cycle-accurate model of a six-stage
// in-order RV32 pipeline: fetch, predecode, decode, execute, memory
// access and writeback.
//
// Architectural state lives in the emu package and every result is
// computed with the same helpers the emulator executes with, so the
// two models agree instruction for instruction; this package adds only
// the clock. Each Tick gathers the cycle's hazards from current state,
// asks the hazard controller for one decision vector, evaluates the
// stages oldest-first, and latches the six stage registers at the end.
package pipeline

import (
	"fmt"
	"io"

	"github.com/twosigma/frost-sub002/emu"
	"github.com/twosigma/frost-sub002/insts"
	"github.com/twosigma/frost-sub002/timing/cache"
	"github.com/twosigma/frost-sub002/timing/latency"
)

// Statistics tracks pipeline performance counters.
type Statistics struct {
	Cycles       uint64
	Instructions uint64

	// Stalls is the total number of held cycles, broken down by cause
	// below.
	Stalls        uint64
	LoadUseStalls uint64
	ExecStalls    uint64
	MemStalls     uint64

	// Flushes counts execute-stage redirects, TrapFlushes counts trap
	// and trap-return drains, and ReturnRedirects counts the one-cycle
	// fetch resteers for returns at predecode.
	Flushes         uint64
	TrapFlushes     uint64
	ReturnRedirects uint64

	BranchResolutions    uint64
	BranchMispredictions uint64
}

// CPI returns cycles per instruction.
func (s Statistics) CPI() float64 {
	if s.Instructions == 0 {
		return 0
	}
	return float64(s.Cycles) / float64(s.Instructions)
}

// BranchAccuracy returns the percentage of resolved control-flow
// instructions whose predicted path was already correct.
func (s Statistics) BranchAccuracy() float64 {
	if s.BranchResolutions == 0 {
		return 0
	}
	correct := s.BranchResolutions - s.BranchMispredictions
	return float64(correct) / float64(s.BranchResolutions) * 100
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithLatencyTable supplies the execution-unit latency table.
func WithLatencyTable(table *latency.Table) PipelineOption {
	return func(p *Pipeline) {
		p.table = table
	}
}

// WithTimingConfig builds the latency table from config. The BTB and
// RAS are sized from the same config.
func WithTimingConfig(config *latency.TimingConfig) PipelineOption {
	return func(p *Pipeline) {
		p.table = latency.NewTableWithConfig(config)
	}
}

// WithCache configures the data-cache geometry and timings.
func WithCache(config cache.Config) PipelineOption {
	return func(p *Pipeline) {
		p.dcache = cache.New(config)
	}
}

// WithCSRFile shares a CSR file with another model instead of using a
// fresh one.
func WithCSRFile(csr *emu.CSRFile) PipelineOption {
	return func(p *Pipeline) {
		p.csr = csr
	}
}

// WithInvariantChecks makes structural violations panic instead of
// silently corrupting the model: double issue to a busy unit, a
// memory access released early, a pending result with no unit to
// deliver it.
func WithInvariantChecks() PipelineOption {
	return func(p *Pipeline) {
		p.invariantChecks = true
	}
}

// WithTrace writes a one-line stage snapshot per cycle to w.
func WithTrace(w io.Writer) PipelineOption {
	return func(p *Pipeline) {
		p.trace = w
	}
}

// Pipeline is the six-stage model. It owns the speculation machinery
// and the stage registers; architectural state is shared with the
// caller.
type Pipeline struct {
	regFile *emu.RegFile
	memory  *emu.Memory
	csr     *emu.CSRFile
	decoder *insts.Decoder
	table   *latency.Table
	dcache  *cache.Cache

	btb      *BTB
	ras      *ReturnAddressStack
	tracker  *CompletionTracker
	hazards  *HazardController
	forward  *ForwardingNetwork
	verifier *Verifier

	fetchStage     *FetchStage
	predecodeStage *PredecodeStage
	decodeStage    *DecodeStage
	executeStage   *ExecuteStage
	memStage       *MemAccessStage
	writebackStage *WritebackStage

	fetch     FetchRegister
	predecode PredecodeRegister
	decode    DecodeRegister
	execute   ExecuteRegister
	memAccess MemAccessRegister
	writeback WritebackRegister

	// pc is the next fetch address when no redirect overrides it.
	pc uint32

	// Execute-stage occupancy. exIssued marks that the current
	// occupant already started its unit operation; exUnit remembers
	// which unit, for cancellation on a trap flush.
	exIssued bool
	exUnit   latency.UnitClass

	wfiActive    bool
	wfiRemaining int

	// Memory-access occupancy. The cache is accessed once, on the
	// first cycle; maRemaining then counts down the latency.
	maStarted   bool
	maRemaining int

	reservation emu.Reservation

	invariantChecks bool
	trace           io.Writer

	stats    Statistics
	halted   bool
	exitCode int
}

// NewPipeline creates a pipeline over the given architectural state.
func NewPipeline(regFile *emu.RegFile, memory *emu.Memory, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		regFile: regFile,
		memory:  memory,
		csr:     emu.NewCSRFile(),
		decoder: insts.NewDecoder(),
		table:   latency.NewTable(),
		dcache:  cache.New(cache.DefaultConfig()),
	}

	for _, opt := range opts {
		opt(p)
	}

	config := p.table.Config()
	p.btb = NewBTB(config.BTBEntries)
	p.ras = NewReturnAddressStack(config.RASDepth)
	p.tracker = NewCompletionTracker()
	p.tracker.SetInvariantChecks(p.invariantChecks)
	p.hazards = NewHazardController()
	p.forward = NewForwardingNetwork()
	p.verifier = NewVerifier()

	p.fetchStage = NewFetchStage(memory, p.btb)
	p.predecodeStage = NewPredecodeStage(p.decoder, p.ras)
	p.decodeStage = NewDecodeStage(regFile)
	p.executeStage = NewExecuteStage(p.csr)
	p.memStage = NewMemAccessStage(memory, p.csr)
	p.writebackStage = NewWritebackStage(regFile)

	return p
}

// PC returns the next fetch address.
func (p *Pipeline) PC() uint32 {
	return p.pc
}

// SetPC sets the next fetch address.
func (p *Pipeline) SetPC(pc uint32) {
	p.pc = pc
}

// Stats returns a copy of the performance counters.
func (p *Pipeline) Stats() Statistics {
	return p.stats
}

// BTBStats returns the branch target buffer counters.
func (p *Pipeline) BTBStats() BTBStats {
	return p.btb.Stats()
}

// RASStats returns the return address stack counters.
func (p *Pipeline) RASStats() RASStats {
	return p.ras.Stats()
}

// CacheStats returns the data cache counters.
func (p *Pipeline) CacheStats() cache.Statistics {
	return p.dcache.Stats()
}

// LatencyTable returns the execution-unit latency table in use.
func (p *Pipeline) LatencyTable() *latency.Table {
	return p.table
}

// CSRFile returns the CSR file the pipeline executes against.
func (p *Pipeline) CSRFile() *emu.CSRFile {
	return p.csr
}

// Halted reports whether the modeled program has exited.
func (p *Pipeline) Halted() bool {
	return p.halted
}

// ExitCode returns the exit status once Halted is true.
func (p *Pipeline) ExitCode() int {
	return p.exitCode
}

// GetFetch returns the fetch register.
func (p *Pipeline) GetFetch() *FetchRegister {
	return &p.fetch
}

// GetPredecode returns the predecode register.
func (p *Pipeline) GetPredecode() *PredecodeRegister {
	return &p.predecode
}

// GetDecode returns the decode register.
func (p *Pipeline) GetDecode() *DecodeRegister {
	return &p.decode
}

// GetExecute returns the execute register.
func (p *Pipeline) GetExecute() *ExecuteRegister {
	return &p.execute
}

// GetMemAccess returns the memory-access register.
func (p *Pipeline) GetMemAccess() *MemAccessRegister {
	return &p.memAccess
}

// GetWriteback returns the writeback register.
func (p *Pipeline) GetWriteback() *WritebackRegister {
	return &p.writeback
}

// Run ticks the pipeline until the program halts and returns the exit
// code.
func (p *Pipeline) Run() int {
	for !p.halted {
		p.Tick()
	}
	return p.exitCode
}

// RunCycles ticks the pipeline for at most the given number of
// cycles. It returns true if the pipeline is still running.
func (p *Pipeline) RunCycles(cycles uint64) bool {
	for i := uint64(0); i < cycles && !p.halted; i++ {
		p.Tick()
	}
	return !p.halted
}

// tickPlan is everything decided during hazard gathering, before any
// stage effect is applied: the hazard inputs themselves, the
// predecoded instruction, the forwarded execute operands and the
// control-flow verdict. Stage evaluation consumes the plan so no
// value is computed twice from different state.
type tickPlan struct {
	inputs HazardInputs

	pdInst *insts.Instruction

	rs1, rs2    uint32
	unit        latency.UnitClass
	unitLatency int

	verify  bool
	verdict Verdict
}

// Tick executes one cycle.
//
// Order within the cycle: the completion tracker advances and any
// finished unit result is delivered to the memory-access packet;
// hazards are gathered from the resulting state and turned into one
// decision vector; the stages evaluate oldest-first, each computing
// the packet it hands downstream with its side effects gated on the
// decisions; finally the stage registers latch. Evaluating writeback
// before decode makes a retiring value visible to the same-cycle
// register read, which is why the forwarding network needs no path
// from beyond the writeback register.
func (p *Pipeline) Tick() {
	if p.halted {
		return
	}

	p.stats.Cycles++
	p.csr.Cycle++

	p.tracker.Tick()
	p.deliverUnitResult()

	plan := p.gatherHazards()
	d := p.hazards.Decide(plan.inputs)
	p.countDecision(&plan)

	if p.trace != nil {
		p.traceTick(d)
	}

	// Writeback retires unconditionally: no decision ever holds it.
	if p.writeback.Valid {
		p.writebackStage.Writeback(&p.writeback)
		if p.writeback.Halt {
			p.halted = true
			p.exitCode = int(p.regFile.ReadReg(10))
		} else {
			p.stats.Instructions++
			p.csr.InstRet++
		}
	}

	var nextWriteback WritebackRegister
	if p.memAccess.Valid {
		switch {
		case plan.inputs.Trap:
			p.applyTrap(&p.memAccess)
		case plan.inputs.MRet:
			p.csr.MRet()
			nextWriteback = p.packetToWriteback(&p.memAccess)
		case d.Writeback == DecisionAdvance:
			nextWriteback = p.evalMemAccess(&p.memAccess)
		default:
			p.progressMemAccess(&p.memAccess)
		}
	}

	var nextMemAccess MemAccessRegister
	if p.execute.Valid {
		nextMemAccess = p.evalExecute(&plan, d)
	}

	var nextExecute ExecuteRegister
	if p.decode.Valid && d.Execute == DecisionAdvance {
		nextExecute = p.decodeStage.Decode(&p.decode)
	}

	var nextDecode DecodeRegister
	if p.predecode.Valid && d.Decode == DecisionAdvance {
		nextDecode = p.predecodeStage.Predecode(&p.predecode, plan.pdInst)
	}

	// The fetch issued last cycle completes now: the word arrives as
	// the packet moves into predecode.
	var nextPredecode PredecodeRegister
	if p.fetch.Valid && d.Predecode == DecisionAdvance {
		nextPredecode = PredecodeRegister{
			Valid: true,
			PC:    p.fetch.PC,
			Word:  p.memory.Read32(p.fetch.PC),
			Pred:  p.fetch.Pred,
		}
	}

	var nextFetch FetchRegister
	if d.Fetch == DecisionAdvance {
		pc := p.pc
		if d.Redirect {
			pc = d.RedirectPC
		}
		nextFetch, p.pc = p.fetchStage.Fetch(pc)
	}

	p.latchFetch(d.Fetch, nextFetch)
	p.latchPredecode(d.Predecode, nextPredecode)
	p.latchDecode(d.Decode, nextDecode)
	p.latchExecute(d.Execute, nextExecute)
	p.latchMemAccess(d.MemAccess, nextMemAccess)
	p.latchWriteback(d.Writeback, nextWriteback)
}

// gatherHazards inspects the current state and builds the cycle's
// plan. It is a pure pre-pass: nothing here mutates the pipeline,
// the predictors, the cache or the CSR file.
func (p *Pipeline) gatherHazards() tickPlan {
	var plan tickPlan

	// Memory-access occupant: trap, trap return, or busy access.
	if p.memAccess.Valid {
		ma := &p.memAccess
		switch {
		case ma.Exception.Valid:
			plan.inputs.Trap = true
			plan.inputs.TrapTarget = p.csr.MTVec
		case ma.Inst.Op == insts.OpMRET:
			plan.inputs.MRet = true
			plan.inputs.MRetTarget = p.csr.MEPC
		case isMemoryOp(ma.Inst):
			remaining := p.maRemaining
			if !p.maStarted {
				remaining = p.dcache.Probe(ma.MemAddr).Latency + p.amoPenalty(ma.Inst)
			}
			plan.inputs.MemBusy = remaining > 1
		}
	}

	// Execute occupant: forwarded operands, unit occupancy and the
	// control-flow verdict. A faulted packet just drains.
	if p.execute.Valid && !p.execute.Exception.Valid {
		ex := &p.execute
		plan.rs1, plan.rs2 = p.forwardOperands(ex)

		plan.unit = p.table.UnitFor(ex.Inst)
		if plan.unit != latency.UnitNone {
			if p.exIssued {
				plan.inputs.ExecBusy = p.tracker.Busy(plan.unit) &&
					!p.tracker.CompletingNextCycle(plan.unit) &&
					!p.tracker.ResultValid(plan.unit)
			} else {
				plan.unitLatency = p.table.Latency(ex.Inst, plan.rs1)
				plan.inputs.ExecBusy = plan.unitLatency > 1
			}
		}
		if ex.Inst.Op == insts.OpWFI {
			remaining := p.wfiRemaining
			if !p.wfiActive {
				remaining = p.table.Config().WFIWakeLatency
			}
			plan.inputs.ExecBusy = remaining > 1
		}

		// Verification waits for the unit to finish so a false-positive
		// prediction on a multi-cycle instruction cannot release it
		// early.
		if !plan.inputs.ExecBusy &&
			(ex.Inst.IsBranch() || ex.Inst.IsJump() || ex.Pred.Taken) {
			plan.verify = true
			plan.verdict = p.verifier.Verify(VerifyInput{
				PC:       ex.PC,
				Inst:     ex.Inst,
				Pred:     ex.Pred,
				Rs1Value: plan.rs1,
				Rs2Value: plan.rs2,
			})
			if plan.verdict.NeedRedirect {
				plan.inputs.ExecRedirect = true
				plan.inputs.ExecRedirectTarget = plan.verdict.RedirectTarget
			}
		}

		if p.decode.Valid {
			plan.inputs.LoadUse = loadUseHazard(ex.Inst, p.decode.Inst)
		}
	}

	// Predecode occupant: a return whose target the fetch in flight
	// does not already cover needs a resteer.
	if p.predecode.Valid {
		plan.pdInst = p.predecodeStage.Expand(p.predecode.Word)
		if plan.pdInst.IsReturn() {
			if target, ok := p.ras.Top(); ok {
				if !p.fetch.Valid || p.fetch.PC != target {
					plan.inputs.ReturnRedirect = true
					plan.inputs.ReturnRedirectTarget = target
				}
			}
		}
	}

	return plan
}

// forwardOperands resolves the execute occupant's source values,
// consulting the forwarding network only for registers the
// instruction actually reads.
func (p *Pipeline) forwardOperands(ex *ExecuteRegister) (uint32, uint32) {
	inst := ex.Inst
	rs1, rs2 := ex.Rs1Value, ex.Rs2Value
	switch {
	case inst.ReadsIntRs1():
		rs1, _ = p.forward.Operand(inst.Rs1, false, rs1, &p.memAccess, p.tracker, &p.writeback)
	case inst.ReadsFPRs1():
		rs1, _ = p.forward.Operand(inst.Rs1, true, rs1, &p.memAccess, p.tracker, &p.writeback)
	}
	switch {
	case inst.ReadsIntRs2():
		rs2, _ = p.forward.Operand(inst.Rs2, false, rs2, &p.memAccess, p.tracker, &p.writeback)
	case inst.ReadsFPRs2():
		rs2, _ = p.forward.Operand(inst.Rs2, true, rs2, &p.memAccess, p.tracker, &p.writeback)
	}
	return rs1, rs2
}

// loadUseHazard reports whether the decode occupant needs a register
// the execute occupant only produces during memory access.
func loadUseHazard(producer, dependent *insts.Instruction) bool {
	if !resultAtMemAccess(producer) {
		return false
	}
	if producer.WritesIntReg() {
		if dependent.ReadsIntRs1() && dependent.Rs1 == producer.Rd {
			return true
		}
		if dependent.ReadsIntRs2() && dependent.Rs2 == producer.Rd {
			return true
		}
	}
	if producer.WritesFPReg() {
		if dependent.ReadsFPRs1() && dependent.Rs1 == producer.Rd {
			return true
		}
		if dependent.ReadsFPRs2() && dependent.Rs2 == producer.Rd {
			return true
		}
	}
	return false
}

func isMemoryOp(inst *insts.Instruction) bool {
	return inst.IsLoad() || inst.IsStore() || inst.IsAMO()
}

// amoPenalty is the extra cycle a read-modify-write atomic spends
// turning the line around. LR and SC behave as a plain load and
// store.
func (p *Pipeline) amoPenalty(inst *insts.Instruction) int {
	if inst.IsAMO() && inst.Op != insts.OpLRW && inst.Op != insts.OpSCW {
		return 1
	}
	return 0
}

func memWrites(inst *insts.Instruction) bool {
	return inst.IsStore() || (inst.IsAMO() && inst.Op != insts.OpLRW)
}

// deliverUnitResult completes the handoff of a multi-cycle result:
// the unit finished last cycle and the value lands in the
// memory-access packet now.
func (p *Pipeline) deliverUnitResult() {
	if !p.memAccess.Valid || !p.memAccess.ResultPending {
		return
	}
	unit := p.table.UnitFor(p.memAccess.Inst)
	if p.invariantChecks && !p.tracker.ResultValid(unit) {
		panic(fmt.Sprintf("pipeline: pending result at PC=0x%08X with idle %s unit", p.memAccess.PC, unit))
	}
	value, _, _ := p.tracker.Collect(unit)
	p.memAccess.Result = value
	p.memAccess.ResultPending = false
}

// progressMemAccess advances a memory operation by one cycle,
// touching the cache exactly once on the first.
func (p *Pipeline) progressMemAccess(ma *MemAccessRegister) {
	if !isMemoryOp(ma.Inst) {
		return
	}
	if !p.maStarted {
		p.maStarted = true
		result := p.dcache.Access(ma.MemAddr, memWrites(ma.Inst))
		p.maRemaining = result.Latency + p.amoPenalty(ma.Inst)
	}
	p.maRemaining--
}

// evalMemAccess finishes the occupant's final cycle: the data phase
// runs and the packet is handed to writeback.
func (p *Pipeline) evalMemAccess(ma *MemAccessRegister) WritebackRegister {
	p.progressMemAccess(ma)
	if p.invariantChecks && isMemoryOp(ma.Inst) && p.maRemaining != 0 {
		panic(fmt.Sprintf("pipeline: memory access at PC=0x%08X released %d cycles early", ma.PC, p.maRemaining))
	}
	ma.Result = p.memStage.Access(ma, &p.reservation)
	p.maStarted = false
	p.maRemaining = 0
	return p.packetToWriteback(ma)
}

func (p *Pipeline) packetToWriteback(ma *MemAccessRegister) WritebackRegister {
	inst := ma.Inst
	return WritebackRegister{
		Valid:     true,
		PC:        ma.PC,
		Inst:      inst,
		Rd:        inst.Rd,
		FP:        inst.WritesFPReg(),
		Value:     ma.Result,
		WritesReg: inst.WritesIntReg() || inst.WritesFPReg(),
		Halt:      ma.Halt,
	}
}

// applyTrap resolves the faulting packet: vector into the handler,
// or halt when none is installed. An environment call with no handler
// is the hosted exit convention; any other unhandled cause is an
// error exit.
func (p *Pipeline) applyTrap(ma *MemAccessRegister) {
	exc := ma.Exception
	if p.csr.MTVec == 0 {
		p.halted = true
		switch exc.Cause {
		case emu.CauseECallM, emu.CauseBreakpoint:
			p.exitCode = int(p.regFile.ReadReg(10))
		default:
			p.exitCode = -1
		}
		return
	}
	p.csr.TakeTrap(exc.Cause, exc.Tval, ma.PC)
}

// evalExecute runs the execute occupant for one cycle. Progression
// effects (operand refresh, unit issue, WFI countdown) happen even
// while held; the handoff packet matters only when the decision lets
// the instruction advance.
func (p *Pipeline) evalExecute(plan *tickPlan, d Decisions) MemAccessRegister {
	ex := &p.execute
	advancing := d.MemAccess == DecisionAdvance

	// A bubble decision without a handoff means the packet is being
	// flushed by an older instruction's trap: any in-flight unit
	// operation dies with it.
	if !advancing && d.Execute == DecisionBubble {
		p.cancelExecute()
		return MemAccessRegister{}
	}

	if ex.Exception.Valid {
		if !advancing {
			return MemAccessRegister{}
		}
		return MemAccessRegister{Valid: true, PC: ex.PC, Inst: ex.Inst, Exception: ex.Exception}
	}

	inst := ex.Inst

	// Holding the stage may outlive the forwarding sources the
	// operands came from, so the latched values are refreshed with
	// this cycle's resolution.
	ex.Rs1Value = plan.rs1
	ex.Rs2Value = plan.rs2

	if inst.Op == insts.OpWFI && !p.wfiActive {
		p.wfiActive = true
		p.wfiRemaining = p.table.Config().WFIWakeLatency
	}
	if p.wfiActive {
		p.wfiRemaining--
	}

	if plan.unit != latency.UnitNone && !p.exIssued {
		result := p.executeStage.UnitResult(plan.unit, inst.Op, plan.rs1, plan.rs2)
		p.tracker.Issue(plan.unit, inst.Rd, inst.WritesFPReg(), result, plan.unitLatency)
		p.exIssued = true
		p.exUnit = plan.unit
	}

	if !advancing {
		return MemAccessRegister{}
	}

	ma := MemAccessRegister{Valid: true, PC: ex.PC, Inst: inst}
	switch {
	case inst.Op == insts.OpWFI:
		p.wfiActive = false
		p.wfiRemaining = 0

	case plan.unit != latency.UnitNone:
		p.exIssued = false
		if p.tracker.ResultValid(plan.unit) {
			// A downstream stall blocked the release on the completing
			// cycle; the result is already on the bus.
			ma.Result, _, _ = p.tracker.Collect(plan.unit)
		} else {
			ma.ResultPending = true
		}

	default:
		out := p.executeStage.Execute(inst, ex.PC, plan.rs1, plan.rs2)
		ma.Result = out.Result
		ma.StoreValue = out.StoreValue
		ma.MemAddr = out.MemAddr
		ma.Exception = out.Exception
	}

	if plan.verify {
		p.applyVerdict(ex, plan)
		ma.Halt = plan.verdict.Halt
	}

	return ma
}

// cancelExecute abandons whatever the execute occupant started.
func (p *Pipeline) cancelExecute() {
	if p.exIssued {
		p.tracker.Cancel(p.exUnit)
		p.exIssued = false
	}
	p.wfiActive = false
	p.wfiRemaining = 0
}

// applyVerdict commits the verifier's resolution on the cycle the
// instruction leaves execute: one BTB update, the stack repair it
// asked for, and the prediction counters.
func (p *Pipeline) applyVerdict(ex *ExecuteRegister, plan *tickPlan) {
	v := &plan.verdict
	if v.UpdateBTB {
		p.btb.Update(ex.PC, v.ActualTaken, v.ActualTarget)
	}
	if v.RestoreRAS {
		if v.CorrectivePop {
			p.ras.RecoverReturn(ex.Pred.Checkpoint)
		} else {
			p.ras.Restore(ex.Pred.Checkpoint)
		}
	}
	if v.ControlFlow {
		p.stats.BranchResolutions++
		if v.NeedRedirect {
			p.stats.BranchMispredictions++
		}
	}
}

func (p *Pipeline) countDecision(plan *tickPlan) {
	in := &plan.inputs
	switch {
	case in.Trap, in.MRet:
		p.stats.TrapFlushes++
	case in.MemBusy:
		p.stats.Stalls++
		p.stats.MemStalls++
	case in.ExecRedirect:
		p.stats.Flushes++
	case in.ExecBusy:
		p.stats.Stalls++
		p.stats.ExecStalls++
	case in.LoadUse:
		p.stats.Stalls++
		p.stats.LoadUseStalls++
	case in.ReturnRedirect:
		p.stats.ReturnRedirects++
	}
}

func (p *Pipeline) latchFetch(d Decision, next FetchRegister) {
	switch d {
	case DecisionAdvance:
		p.fetch = next
	case DecisionBubble:
		p.fetch.Clear()
	}
}

func (p *Pipeline) latchPredecode(d Decision, next PredecodeRegister) {
	switch d {
	case DecisionAdvance:
		p.predecode = next
	case DecisionBubble:
		p.predecode.Clear()
	}
}

func (p *Pipeline) latchDecode(d Decision, next DecodeRegister) {
	switch d {
	case DecisionAdvance:
		p.decode = next
	case DecisionBubble:
		p.decode.Clear()
	}
}

func (p *Pipeline) latchExecute(d Decision, next ExecuteRegister) {
	switch d {
	case DecisionAdvance:
		p.execute = next
	case DecisionBubble:
		p.execute.Clear()
	}
}

func (p *Pipeline) latchMemAccess(d Decision, next MemAccessRegister) {
	switch d {
	case DecisionAdvance:
		p.memAccess = next
	case DecisionBubble:
		p.memAccess.Clear()
	}
}

func (p *Pipeline) latchWriteback(d Decision, next WritebackRegister) {
	switch d {
	case DecisionAdvance:
		p.writeback = next
	case DecisionBubble:
		p.writeback.Clear()
	}
}

// traceTick writes one line of stage occupancy.
func (p *Pipeline) traceTick(d Decisions) {
	slot := func(valid bool, pc uint32) string {
		if !valid {
			return "--------"
		}
		return fmt.Sprintf("%08x", pc)
	}
	fmt.Fprintf(p.trace, "cycle %6d  wb=%s ma=%s ex=%s id=%s pd=%s if=%s",
		p.stats.Cycles,
		slot(p.writeback.Valid, p.writeback.PC),
		slot(p.memAccess.Valid, p.memAccess.PC),
		slot(p.execute.Valid, p.execute.PC),
		slot(p.decode.Valid, p.decode.PC),
		slot(p.predecode.Valid, p.predecode.PC),
		slot(p.fetch.Valid, p.fetch.PC))
	if d.Redirect {
		fmt.Fprintf(p.trace, "  redirect->%08x", d.RedirectPC)
	}
	fmt.Fprintln(p.trace)
}

// Reset clears the pipeline state: registers, predictors, occupancy
// counters and statistics. Architectural state is left alone; it
// belongs to the caller.
func (p *Pipeline) Reset() {
	p.fetch.Clear()
	p.predecode.Clear()
	p.decode.Clear()
	p.execute.Clear()
	p.memAccess.Clear()
	p.writeback.Clear()
	p.pc = 0
	p.exIssued = false
	p.exUnit = latency.UnitNone
	p.wfiActive = false
	p.wfiRemaining = 0
	p.maStarted = false
	p.maRemaining = 0
	p.reservation = emu.Reservation{}
	p.btb.Reset()
	p.ras.Reset()
	p.tracker.Reset()
	p.dcache.Reset()
	p.stats = Statistics{}
	p.halted = false
	p.exitCode = 0
}
