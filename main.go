// Package main provides the entry point for frostsim.
// frostsim is a cycle-level model of a six-stage in-order RV32IMC
// pipeline, with a functional reference interpreter beside it.
//
// For the full CLI, use: go run ./cmd/frostsim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("frostsim - RV32 pipeline simulator")
	fmt.Println("")
	fmt.Println("Usage: frostsim <command>")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  run <program.elf>  Run an ELF binary on the timing pipeline")
	fmt.Println("  bench              Run the microbenchmark suite")
	fmt.Println("  config <path>      Write the default timing configuration")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/frostsim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/frostsim' instead.")
	}
}
