// Package core exposes the timed CPU model behind a small facade, so
// callers drive one object instead of assembling pipeline parts.
package core

import (
	"github.com/twosigma/frost-sub002/emu"
	"github.com/twosigma/frost-sub002/timing/pipeline"
)

// Stats carries the headline numbers only. The full breakdown by stall
// and redirect cause stays on the pipeline's own Statistics.
type Stats struct {
	Cycles       uint64
	Instructions uint64
	Stalls       uint64
	Flushes      uint64
}

// CPI returns cycles per retired instruction, or 0 before anything
// retires.
func (s Stats) CPI() float64 {
	if s.Instructions == 0 {
		return 0
	}
	return float64(s.Cycles) / float64(s.Instructions)
}

// Core is one timed RV32 hart: a six-stage pipeline over shared
// architectural state. The Pipeline field stays exported for callers
// that need the detailed statistics or trace hooks.
type Core struct {
	Pipeline *pipeline.Pipeline

	regFile *emu.RegFile
	memory  *emu.Memory
}

// NewCore builds a core over the given architectural state, passing
// pipeline options through unchanged.
func NewCore(regFile *emu.RegFile, memory *emu.Memory, opts ...pipeline.PipelineOption) *Core {
	return &Core{
		Pipeline: pipeline.NewPipeline(regFile, memory, opts...),
		regFile:  regFile,
		memory:   memory,
	}
}

// RegFile exposes the architectural registers for inspection after a
// run.
func (c *Core) RegFile() *emu.RegFile {
	return c.regFile
}

// LoadProgram places a program image at entry and points fetch at it.
func (c *Core) LoadProgram(entry uint32, program []byte) {
	for i, b := range program {
		c.memory.Write8(entry+uint32(i), b)
	}
	c.SetPC(entry)
}

// SetPC redirects fetch to pc.
func (c *Core) SetPC(pc uint32) {
	c.Pipeline.SetPC(pc)
}

// PC reports the next fetch address.
func (c *Core) PC() uint32 {
	return c.Pipeline.PC()
}

// Tick advances the core by one cycle.
func (c *Core) Tick() {
	c.Pipeline.Tick()
}

// Halted reports whether the program has exited.
func (c *Core) Halted() bool {
	return c.Pipeline.Halted()
}

// ExitCode reports the exit code once Halted is true.
func (c *Core) ExitCode() int {
	return c.Pipeline.ExitCode()
}

// Stats summarizes the pipeline statistics into the headline set.
func (c *Core) Stats() Stats {
	pipeStats := c.Pipeline.Stats()
	return Stats{
		Cycles:       pipeStats.Cycles,
		Instructions: pipeStats.Instructions,
		Stalls:       pipeStats.Stalls,
		Flushes:      pipeStats.Flushes,
	}
}

// Run ticks until the program exits and returns its exit code.
func (c *Core) Run() int {
	return c.Pipeline.Run()
}

// RunCycles ticks at most the given number of cycles and reports
// whether the core is still running.
func (c *Core) RunCycles(cycles uint64) bool {
	return c.Pipeline.RunCycles(cycles)
}

// Reset returns the core to its power-on state.
func (c *Core) Reset() {
	c.Pipeline.Reset()
}
