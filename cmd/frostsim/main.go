// Package main provides the frostsim command line interface.
// frostsim is a cycle-level model of a six-stage in-order RV32IMC
// pipeline with a functional reference interpreter beside it.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/pprof"
	"strings"

	"github.com/spf13/cobra"

	"github.com/twosigma/frost-sub002/benchmarks"
	"github.com/twosigma/frost-sub002/emu"
	"github.com/twosigma/frost-sub002/loader"
	"github.com/twosigma/frost-sub002/report"
	"github.com/twosigma/frost-sub002/timing/latency"
	"github.com/twosigma/frost-sub002/timing/pipeline"
)

// Version is stamped by the build.
var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "frostsim",
		Short:   "Cycle-level RV32IMC pipeline simulator",
		Version: Version,
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	var opts runOptions

	runCmd := &cobra.Command{
		Use:   "run <program.elf>",
		Short: "Run an RV32 ELF binary on the timing pipeline",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			os.Exit(runProgram(args[0], opts))
		},
	}
	runCmd.Flags().Uint64Var(&opts.maxCycles, "max-cycles", 0,
		"Stop after this many cycles (0 = run to completion)")
	runCmd.Flags().StringVar(&opts.configPath, "timing-config", "",
		"Path to a timing configuration JSON file")
	runCmd.Flags().StringVar(&opts.reportPath, "report", "",
		"Write an HTML statistics report to this path")
	runCmd.Flags().StringVar(&opts.tracePath, "trace", "",
		"Write a per-cycle stage trace to this path")
	runCmd.Flags().StringVar(&opts.cpuProfile, "cpuprofile", "",
		"Write a CPU profile of the simulator to this path")
	runCmd.Flags().BoolVar(&opts.compare, "compare", false,
		"Replay on the reference interpreter and fail on architectural divergence")
	runCmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false,
		"Verbose output")

	configCmd := &cobra.Command{
		Use:   "config <path>",
		Short: "Write the default timing configuration as JSON",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			if err := writeDefaultConfig(args[0]); err != nil {
				fmt.Fprintf(os.Stderr, "Error writing config: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("Wrote default timing configuration to %s\n", args[0])
		},
	}

	var (
		csvOutput  bool
		jsonOutput bool
		coreOnly   bool
		verbose    bool
	)
	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "Run the microbenchmark suite on the timing pipeline",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			runBenchmarks(os.Stdout, csvOutput, jsonOutput, coreOnly, verbose)
		},
	}
	benchCmd.Flags().BoolVar(&csvOutput, "csv", false, "Output results in CSV format")
	benchCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output results in JSON format")
	benchCmd.Flags().BoolVar(&coreOnly, "core", false, "Run only the three core kernels")
	benchCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Per-benchmark progress lines")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(benchCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

type runOptions struct {
	maxCycles  uint64
	configPath string
	reportPath string
	tracePath  string
	cpuProfile string
	compare    bool
	verbose    bool
}

// reportSampleInterval is how often the counters are sampled for the
// HTML report, balancing chart resolution against page size.
const reportSampleInterval = 256

// refInstructionLimit bounds the reference interpreter during
// comparison so a diverging program cannot hang it.
const refInstructionLimit = 500_000_000

// runProgram loads an ELF binary, runs it on the timing pipeline and
// prints the statistics report. The return value is the simulated
// program's exit code, or 1 when the tool itself fails.
func runProgram(programPath string, o runOptions) int {
	prog, err := loader.Load(programPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading program: %v\n", err)
		return 1
	}

	if o.verbose {
		fmt.Printf("Loaded: %s\n", programPath)
		fmt.Printf("Entry point: 0x%X\n", prog.EntryPoint)
		fmt.Printf("Segments: %d\n", len(prog.Segments))
	}

	timingConfig := latency.DefaultTimingConfig()
	if o.configPath != "" {
		timingConfig, err = latency.LoadConfig(o.configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading timing config: %v\n", err)
			return 1
		}
	}

	if o.cpuProfile != "" {
		f, err := os.Create(o.cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating CPU profile: %v\n", err)
			return 1
		}
		defer func() { _ = f.Close() }()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Error starting CPU profile: %v\n", err)
			return 1
		}
		defer pprof.StopCPUProfile()
	}

	memory := emu.NewMemory()
	prog.LoadInto(memory)

	regFile := &emu.RegFile{}
	regFile.WriteReg(2, prog.InitialSP)

	pipelineOpts := []pipeline.PipelineOption{
		pipeline.WithTimingConfig(timingConfig),
	}

	if o.tracePath != "" {
		f, err := os.Create(o.tracePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating trace file: %v\n", err)
			return 1
		}
		defer func() { _ = f.Close() }()
		pipelineOpts = append(pipelineOpts, pipeline.WithTrace(f))
	}

	pipe := pipeline.NewPipeline(regFile, memory, pipelineOpts...)
	pipe.SetPC(prog.EntryPoint)

	series := tickUntilDone(pipe, o.maxCycles, o.reportPath != "")
	if !pipe.Halted() {
		fmt.Fprintf(os.Stderr, "Cycle limit reached after %d cycles\n", pipe.Stats().Cycles)
		return 1
	}
	exitCode := pipe.ExitCode()

	printStats(programPath, exitCode, pipe)

	if o.reportPath != "" {
		if err := writeReport(o.reportPath, filepath.Base(programPath), series); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing report: %v\n", err)
			return 1
		}
		fmt.Printf("\nReport written to %s\n", o.reportPath)
	}

	if o.compare {
		if err := compareReference(prog, exitCode, regFile); err != nil {
			fmt.Fprintf(os.Stderr, "Reference comparison FAILED: %v\n", err)
			return 1
		}
		fmt.Printf("\nReference comparison: architectural state matches\n")
	}

	return exitCode
}

// tickUntilDone runs the pipeline until it halts or the cycle budget
// is spent, sampling the counters for the report when asked.
func tickUntilDone(pipe *pipeline.Pipeline, maxCycles uint64, sample bool) report.Series {
	var series report.Series

	for !pipe.Halted() {
		step := uint64(reportSampleInterval)
		if maxCycles > 0 {
			remaining := maxCycles - pipe.Stats().Cycles
			if remaining == 0 {
				break
			}
			if remaining < step {
				step = remaining
			}
		}
		pipe.RunCycles(step)
		if sample {
			series = append(series, report.SampleOf(pipe.Stats()))
		}
	}

	return series
}

// printStats prints the timing report.
func printStats(programPath string, exitCode int, pipe *pipeline.Pipeline) {
	stats := pipe.Stats()

	totalCycles := stats.Cycles
	if totalCycles == 0 {
		totalCycles = 1
	}
	pct := func(n uint64) float64 {
		return 100.0 * float64(n) / float64(totalCycles)
	}

	fmt.Printf("\n")
	fmt.Printf("Program: %s\n", programPath)
	fmt.Printf("Exit code: %d\n", exitCode)
	fmt.Printf("Total Instructions: %d\n", stats.Instructions)
	fmt.Printf("Total Cycles: %d\n", stats.Cycles)
	fmt.Printf("CPI: %.2f\n", stats.CPI())
	fmt.Printf("\n")
	fmt.Printf("Stall breakdown:\n")
	fmt.Printf("  Load-use stalls:  %8d cycles (%5.1f%%)\n",
		stats.LoadUseStalls, pct(stats.LoadUseStalls))
	fmt.Printf("  Execute stalls:   %8d cycles (%5.1f%%)\n",
		stats.ExecStalls, pct(stats.ExecStalls))
	fmt.Printf("  Memory stalls:    %8d cycles (%5.1f%%)\n",
		stats.MemStalls, pct(stats.MemStalls))
	fmt.Printf("\n")
	fmt.Printf("Pipeline events:\n")
	fmt.Printf("  Branch flushes:   %8d\n", stats.Flushes)
	fmt.Printf("  Trap flushes:     %8d\n", stats.TrapFlushes)
	fmt.Printf("  Return redirects: %8d\n", stats.ReturnRedirects)
	fmt.Printf("\n")
	fmt.Printf("Branch prediction:\n")
	fmt.Printf("  Resolved:         %8d\n", stats.BranchResolutions)
	fmt.Printf("  Mispredicted:     %8d\n", stats.BranchMispredictions)
	fmt.Printf("  Accuracy:         %7.1f%%\n", stats.BranchAccuracy())

	cacheStats := pipe.CacheStats()
	hitRate := 0.0
	if cacheStats.Accesses > 0 {
		hitRate = 100.0 * float64(cacheStats.Hits) / float64(cacheStats.Accesses)
	}
	fmt.Printf("\n")
	fmt.Printf("Data cache:\n")
	fmt.Printf("  Accesses:         %8d\n", cacheStats.Accesses)
	fmt.Printf("  Hits:             %8d (%5.1f%%)\n", cacheStats.Hits, hitRate)
	fmt.Printf("  Misses:           %8d\n", cacheStats.Misses)
	fmt.Printf("  Evictions:        %8d\n", cacheStats.Evictions)
}

// writeReport renders the HTML statistics report.
func writeReport(path, program string, series report.Series) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := report.Render(f, report.Snapshot{Program: program, Series: series}); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// compareReference replays the program on the functional interpreter
// and reports any architectural divergence against the pipeline's
// final state.
func compareReference(prog *loader.Program, pipeExit int, pipeRegs *emu.RegFile) error {
	memory := emu.NewMemory()
	prog.LoadInto(memory)

	emulator := emu.NewEmulator(
		emu.WithMemory(memory),
		emu.WithPC(prog.EntryPoint),
		emu.WithStackPointer(prog.InitialSP),
		emu.WithMaxInstructions(refInstructionLimit),
	)
	refExit := emulator.Run()

	var diffs []string
	if refExit != pipeExit {
		diffs = append(diffs, fmt.Sprintf("  exit code: pipeline=%d reference=%d",
			pipeExit, refExit))
	}
	refRegs := emulator.RegFile()
	for r := 1; r < 32; r++ {
		if pipeRegs.X[r] != refRegs.X[r] {
			diffs = append(diffs, fmt.Sprintf("  x%d: pipeline=0x%08X reference=0x%08X",
				r, pipeRegs.X[r], refRegs.X[r]))
		}
	}
	if len(diffs) > 0 {
		return fmt.Errorf("architectural divergence:\n%s", strings.Join(diffs, "\n"))
	}
	return nil
}

// writeDefaultConfig writes the default timing configuration as JSON,
// ready to be edited and fed back through --timing-config.
func writeDefaultConfig(path string) error {
	return latency.DefaultTimingConfig().SaveConfig(path)
}

// runBenchmarks runs the microbenchmark suite and prints results in
// the requested format.
func runBenchmarks(w io.Writer, csvOutput, jsonOutput, coreOnly, verbose bool) {
	config := benchmarks.DefaultConfig()
	config.Output = w
	config.Verbose = verbose

	harness := benchmarks.NewHarness(config)
	if coreOnly {
		harness.AddBenchmarks(benchmarks.GetCoreBenchmarks())
	} else {
		harness.AddBenchmarks(benchmarks.GetMicrobenchmarks())
	}

	results := harness.RunAll()

	switch {
	case jsonOutput:
		if err := harness.PrintJSON(results); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing JSON results: %v\n", err)
		}
	case csvOutput:
		harness.PrintCSV(results)
	default:
		harness.PrintResults(results)
	}
}
