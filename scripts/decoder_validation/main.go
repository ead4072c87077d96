// Measures decode throughput and allocation cost for the standard and
// compressed decode paths.
package main

import (
	"fmt"
	"runtime"
	"time"

	"github.com/twosigma/frost-sub002/insts"
)

// sink keeps the compiler from discarding the measured decode calls.
var sink *insts.Instruction

func measure(name string, decodes int, fn func()) {
	runtime.GC()
	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)

	start := time.Now()
	fn()
	elapsed := time.Since(start)

	runtime.ReadMemStats(&after)

	allocs := after.Mallocs - before.Mallocs
	allocated := after.TotalAlloc - before.TotalAlloc

	fmt.Printf("%s:\n", name)
	fmt.Printf("  Decode operations:      %d\n", decodes)
	fmt.Printf("  Time elapsed:           %v\n", elapsed)
	fmt.Printf("  Decodes per second:     %.0f\n", float64(decodes)/elapsed.Seconds())
	fmt.Printf("  Allocations per decode: %.3f\n", float64(allocs)/float64(decodes))
	fmt.Printf("  Bytes per decode:       %.1f\n", float64(allocated)/float64(decodes))
}

func main() {
	decoder := insts.NewDecoder()

	// A mix covering the formats the fetch stage sees most.
	words := []uint32{
		insts.EncodeADDI(6, 5, 42),
		insts.EncodeADD(3, 1, 2),
		insts.EncodeLW(8, 2, 16),
		insts.EncodeBNE(8, 7, -12),
	}

	// Fetch windows alternating compressed and standard encodings.
	windows := []uint32{
		0x0505, // c.addi x10, 1
		insts.EncodeMUL(3, 1, 2),
		0x852E, // c.mv x10, x11
		insts.EncodeSW(7, 2, 8),
	}

	// Warm up
	for i := 0; i < 1000; i++ {
		sink = decoder.Decode(words[0])
	}

	const iterations = 100000

	fmt.Println("Decoder Throughput Validation")
	fmt.Println("=============================")

	measure("Standard decode path", iterations*len(words), func() {
		for i := 0; i < iterations; i++ {
			for _, w := range words {
				sink = decoder.Decode(w)
			}
		}
	})

	fmt.Println()

	measure("Fetch window decode path", iterations*len(windows), func() {
		for i := 0; i < iterations; i++ {
			for _, w := range windows {
				sink = decoder.DecodeWindow(w)
			}
		}
	})

	_ = sink
}
