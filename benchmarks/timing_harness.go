// Package benchmarks provides the CPI measurement harness and the
// canonical kernel set used to characterize the pipeline.
package benchmarks

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/twosigma/frost-sub002/emu"
	"github.com/twosigma/frost-sub002/timing/pipeline"
)

// Version is stamped into JSON reports.
const Version = "0.1.0"

// Every kernel is loaded at programAddr and started with x2 seeding
// stackTop, clear of the program image.
const (
	programAddr uint32 = 0x1000
	stackTop    uint32 = 0x10000
)

// BenchmarkResult captures everything the harness measured for one
// kernel: retirement counts, the stall and flush breakdown, predictor
// and cache traffic, and the wall-clock cost of simulating it.
type BenchmarkResult struct {
	Name        string `json:"name"`
	Description string `json:"description"`

	// Headline numbers from the pipeline's statistics.
	SimulatedCycles     uint64  `json:"simulated_cycles"`
	InstructionsRetired uint64  `json:"instructions_retired"`
	CPI                 float64 `json:"cpi"`

	// Stall cycles by cause. StallCycles is the sum of the three.
	StallCycles   uint64 `json:"stall_cycles"`
	LoadUseStalls uint64 `json:"load_use_stalls"`
	ExecStalls    uint64 `json:"exec_stalls"`
	MemStalls     uint64 `json:"mem_stalls"`

	// Front-end disruption counts.
	PipelineFlushes uint64 `json:"pipeline_flushes"`
	TrapFlushes     uint64 `json:"trap_flushes"`
	ReturnRedirects uint64 `json:"return_redirects"`

	// Verifier traffic, omitted from JSON for branch-free kernels.
	BranchResolutions     uint64  `json:"branch_resolutions,omitempty"`
	BranchMispredictions  uint64  `json:"branch_mispredictions,omitempty"`
	BranchAccuracyPercent float64 `json:"branch_accuracy_percent,omitempty"`

	// Data-cache traffic.
	DCacheHits   uint64 `json:"dcache_hits,omitempty"`
	DCacheMisses uint64 `json:"dcache_misses,omitempty"`

	ExitCode int           `json:"exit_code"`
	WallTime time.Duration `json:"wall_time_ns"`
}

// Benchmark is one self-contained kernel: machine code, optional
// architectural setup, and the exit code that proves it ran correctly.
type Benchmark struct {
	Name        string
	Description string

	// Setup runs after the stack pointer seed and before the run, so a
	// kernel can stage registers and data memory.
	Setup func(regFile *emu.RegFile, memory *emu.Memory)

	// Program is raw RV32 machine code, placed at programAddr.
	Program []byte

	// ExpectedExit is checked by the validation tests, not by the
	// harness itself.
	ExpectedExit int
}

// HarnessConfig controls how the harness builds pipelines and where it
// reports.
type HarnessConfig struct {
	// PipelineOptions apply to every pipeline the harness builds, so a
	// whole suite runs under one timing configuration.
	PipelineOptions []pipeline.PipelineOption

	// Output receives result listings and progress lines. Defaults to
	// os.Stdout.
	Output io.Writer

	// Verbose announces each kernel before it runs.
	Verbose bool
}

// DefaultConfig writes to stdout with no extra pipeline options.
func DefaultConfig() HarnessConfig {
	return HarnessConfig{Output: os.Stdout}
}

// Harness owns a kernel list and runs each one on a fresh pipeline.
type Harness struct {
	config     HarnessConfig
	benchmarks []Benchmark
}

// NewHarness builds a harness around the given configuration.
func NewHarness(config HarnessConfig) *Harness {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	return &Harness{config: config}
}

// AddBenchmark registers one kernel.
func (h *Harness) AddBenchmark(b Benchmark) {
	h.benchmarks = append(h.benchmarks, b)
}

// AddBenchmarks registers a kernel set in order.
func (h *Harness) AddBenchmarks(benchmarks []Benchmark) {
	h.benchmarks = append(h.benchmarks, benchmarks...)
}

// RunAll runs every registered kernel and collects the results.
func (h *Harness) RunAll() []BenchmarkResult {
	results := make([]BenchmarkResult, 0, len(h.benchmarks))
	for _, bench := range h.benchmarks {
		results = append(results, h.runBenchmark(bench))
	}
	return results
}

// runBenchmark executes one kernel on fresh architectural state and a
// fresh pipeline.
func (h *Harness) runBenchmark(bench Benchmark) BenchmarkResult {
	regFile := &emu.RegFile{}
	memory := emu.NewMemory()

	// Stack pointer first, so a kernel's Setup may override it.
	regFile.WriteReg(2, stackTop)
	if bench.Setup != nil {
		bench.Setup(regFile, memory)
	}
	memory.LoadSegment(programAddr, bench.Program)

	pipe := pipeline.NewPipeline(regFile, memory, h.config.PipelineOptions...)
	pipe.SetPC(programAddr)

	if h.config.Verbose {
		_, _ = fmt.Fprintf(h.config.Output, "running %s...\n", bench.Name)
	}

	start := time.Now()
	exitCode := pipe.Run()
	wallTime := time.Since(start)

	stats := pipe.Stats()
	dcache := pipe.CacheStats()
	return BenchmarkResult{
		Name:                  bench.Name,
		Description:           bench.Description,
		SimulatedCycles:       stats.Cycles,
		InstructionsRetired:   stats.Instructions,
		CPI:                   stats.CPI(),
		StallCycles:           stats.Stalls,
		LoadUseStalls:         stats.LoadUseStalls,
		ExecStalls:            stats.ExecStalls,
		MemStalls:             stats.MemStalls,
		PipelineFlushes:       stats.Flushes,
		TrapFlushes:           stats.TrapFlushes,
		ReturnRedirects:       stats.ReturnRedirects,
		BranchResolutions:     stats.BranchResolutions,
		BranchMispredictions:  stats.BranchMispredictions,
		BranchAccuracyPercent: stats.BranchAccuracy(),
		DCacheHits:            dcache.Hits,
		DCacheMisses:          dcache.Misses,
		ExitCode:              exitCode,
		WallTime:              wallTime,
	}
}

// PrintResults writes one labeled block per result.
func (h *Harness) PrintResults(results []BenchmarkResult) {
	w := h.config.Output
	_, _ = fmt.Fprintln(w, "=== Pipeline Benchmark Results ===")
	_, _ = fmt.Fprintln(w, "")

	for _, r := range results {
		_, _ = fmt.Fprintf(w, "Benchmark: %s\n", r.Name)
		_, _ = fmt.Fprintf(w, "  Description: %s\n", r.Description)
		_, _ = fmt.Fprintf(w, "  Exit Code: %d\n", r.ExitCode)
		_, _ = fmt.Fprintln(w, "  --- Timing ---")
		_, _ = fmt.Fprintf(w, "  Simulated Cycles:     %d\n", r.SimulatedCycles)
		_, _ = fmt.Fprintf(w, "  Instructions Retired: %d\n", r.InstructionsRetired)
		_, _ = fmt.Fprintf(w, "  CPI:                  %.3f\n", r.CPI)
		_, _ = fmt.Fprintf(w, "  Stall Cycles:         %d\n", r.StallCycles)
		_, _ = fmt.Fprintf(w, "  Load-Use Stalls:      %d\n", r.LoadUseStalls)
		_, _ = fmt.Fprintf(w, "  Exec Stalls:          %d\n", r.ExecStalls)
		_, _ = fmt.Fprintf(w, "  Mem Stalls:           %d\n", r.MemStalls)
		_, _ = fmt.Fprintf(w, "  Pipeline Flushes:     %d\n", r.PipelineFlushes)
		_, _ = fmt.Fprintf(w, "  Trap Flushes:         %d\n", r.TrapFlushes)
		_, _ = fmt.Fprintf(w, "  Return Redirects:     %d\n", r.ReturnRedirects)

		if r.DCacheHits > 0 || r.DCacheMisses > 0 {
			_, _ = fmt.Fprintln(w, "  --- D-Cache ---")
			_, _ = fmt.Fprintf(w, "  Hits:   %d\n", r.DCacheHits)
			_, _ = fmt.Fprintf(w, "  Misses: %d\n", r.DCacheMisses)
		}

		if r.BranchResolutions > 0 {
			_, _ = fmt.Fprintln(w, "  --- Branch Verifier ---")
			_, _ = fmt.Fprintf(w, "  Resolutions:     %d\n", r.BranchResolutions)
			_, _ = fmt.Fprintf(w, "  Mispredictions:  %d\n", r.BranchMispredictions)
			_, _ = fmt.Fprintf(w, "  Accuracy:        %.1f%%\n", r.BranchAccuracyPercent)
		}

		_, _ = fmt.Fprintf(w, "  Wall Time: %v\n", r.WallTime)
		_, _ = fmt.Fprintln(w, "")
	}
}

// PrintCSV writes a header plus one row per result, for spreadsheets
// and for diffing runs under different timing configurations.
func (h *Harness) PrintCSV(results []BenchmarkResult) {
	w := h.config.Output
	_, _ = fmt.Fprintln(w,
		"name,cycles,instructions,cpi,stalls,load_use_stalls,exec_stalls,mem_stalls,"+
			"flushes,trap_flushes,return_redirects,branch_resolutions,"+
			"branch_mispredictions,dcache_hits,dcache_misses,exit_code")

	for _, r := range results {
		_, _ = fmt.Fprintf(w, "%s,%d,%d,%.3f,%d,%d,%d,%d,%d,%d,%d,%d,%d,%d,%d,%d\n",
			r.Name,
			r.SimulatedCycles,
			r.InstructionsRetired,
			r.CPI,
			r.StallCycles,
			r.LoadUseStalls,
			r.ExecStalls,
			r.MemStalls,
			r.PipelineFlushes,
			r.TrapFlushes,
			r.ReturnRedirects,
			r.BranchResolutions,
			r.BranchMispredictions,
			r.DCacheHits,
			r.DCacheMisses,
			r.ExitCode,
		)
	}
}

// BuildProgram lays out instruction words as little-endian bytes ready
// for LoadSegment.
func BuildProgram(instrs ...uint32) []byte {
	program := make([]byte, 0, len(instrs)*4)
	for _, inst := range instrs {
		program = binary.LittleEndian.AppendUint32(program, inst)
	}
	return program
}

// BenchmarkReport is the JSON document PrintJSON emits: run metadata,
// the raw results, and suite-level aggregates.
type BenchmarkReport struct {
	Metadata ReportMetadata    `json:"metadata"`
	Results  []BenchmarkResult `json:"results"`
	Summary  ReportSummary     `json:"summary"`
}

// ReportMetadata stamps when and under which simulator version a suite
// ran.
type ReportMetadata struct {
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// ReportSummary aggregates across the whole suite. AverageCPI is
// cycle-weighted: total cycles over total instructions, not a mean of
// per-kernel CPIs.
type ReportSummary struct {
	TotalBenchmarks   int           `json:"total_benchmarks"`
	TotalCycles       uint64        `json:"total_cycles"`
	TotalInstructions uint64        `json:"total_instructions"`
	AverageCPI        float64       `json:"average_cpi"`
	TotalWallTime     time.Duration `json:"total_wall_time_ns"`
}

// PrintJSON writes the full report document, indented for direct
// check-in as a calibration artifact.
func (h *Harness) PrintJSON(results []BenchmarkResult) error {
	var totalCycles, totalInstructions uint64
	var totalWallTime time.Duration
	for _, r := range results {
		totalCycles += r.SimulatedCycles
		totalInstructions += r.InstructionsRetired
		totalWallTime += r.WallTime
	}

	avgCPI := float64(0)
	if totalInstructions > 0 {
		avgCPI = float64(totalCycles) / float64(totalInstructions)
	}

	report := BenchmarkReport{
		Metadata: ReportMetadata{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   Version,
		},
		Results: results,
		Summary: ReportSummary{
			TotalBenchmarks:   len(results),
			TotalCycles:       totalCycles,
			TotalInstructions: totalInstructions,
			AverageCPI:        avgCPI,
			TotalWallTime:     totalWallTime,
		},
	}

	encoder := json.NewEncoder(h.config.Output)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}
