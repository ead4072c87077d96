package benchmarks

import (
	"github.com/twosigma/frost-sub002/emu"
	"github.com/twosigma/frost-sub002/insts"
)

// GetMicrobenchmarks returns the standard kernel set. Each kernel
// targets one pipeline characteristic; every program exits through
// ECALL with the result in a0.
func GetMicrobenchmarks() []Benchmark {
	return []Benchmark{
		arithmeticSequential(),
		dependencyChain(),
		tightLoop(),
		loadUse(),
		functionCalls(),
		divideBound(),
		memoryStride(),
		mixedOperations(),
	}
}

// GetCoreBenchmarks returns a minimal set of 3 kernels for quick
// validation: a tight loop, a call-heavy kernel and a divide-bound
// kernel.
func GetCoreBenchmarks() []Benchmark {
	return []Benchmark{
		tightLoop(),
		functionCalls(),
		divideBound(),
	}
}

// 1. Arithmetic Sequential - independent ADDIs, no hazards.
func arithmeticSequential() Benchmark {
	return Benchmark{
		Name:        "arithmetic_sequential",
		Description: "20 independent ADDIs across five registers - measures issue throughput",
		Program: BuildProgram(
			insts.EncodeADDI(5, 5, 1),
			insts.EncodeADDI(6, 6, 1),
			insts.EncodeADDI(7, 7, 1),
			insts.EncodeADDI(8, 8, 1),
			insts.EncodeADDI(9, 9, 1),
			insts.EncodeADDI(5, 5, 1),
			insts.EncodeADDI(6, 6, 1),
			insts.EncodeADDI(7, 7, 1),
			insts.EncodeADDI(8, 8, 1),
			insts.EncodeADDI(9, 9, 1),
			insts.EncodeADDI(5, 5, 1),
			insts.EncodeADDI(6, 6, 1),
			insts.EncodeADDI(7, 7, 1),
			insts.EncodeADDI(8, 8, 1),
			insts.EncodeADDI(9, 9, 1),
			insts.EncodeADDI(5, 5, 1),
			insts.EncodeADDI(6, 6, 1),
			insts.EncodeADDI(7, 7, 1),
			insts.EncodeADDI(8, 8, 1),
			insts.EncodeADDI(9, 9, 1),

			// fold the five counters into a0
			insts.EncodeADD(10, 5, 6),
			insts.EncodeADD(10, 10, 7),
			insts.EncodeADD(10, 10, 8),
			insts.EncodeADD(10, 10, 9),
			insts.EncodeECALL(),
		),
		ExpectedExit: 20,
	}
}

// 2. Dependency Chain - every ADDI reads the previous result.
func dependencyChain() Benchmark {
	return Benchmark{
		Name:         "dependency_chain",
		Description:  "20 dependent ADDIs (a0 = a0 + 1) - measures forwarding latency",
		Program:      buildDependencyChain(20),
		ExpectedExit: 20,
	}
}

func buildDependencyChain(n int) []byte {
	instrs := make([]uint32, 0, n+1)
	for i := 0; i < n; i++ {
		instrs = append(instrs, insts.EncodeADDI(10, 10, 1))
	}
	instrs = append(instrs, insts.EncodeECALL())
	return BuildProgram(instrs...)
}

// 3. Tight Loop - a real counted loop; the backward branch trains the
// BTB after one cold miss.
func tightLoop() Benchmark {
	return Benchmark{
		Name:        "tight_loop",
		Description: "16-iteration countdown loop - measures branch prediction",
		Program: BuildProgram(
			insts.EncodeADDI(5, 0, 16), // x5 = i = 16
			insts.EncodeADDI(10, 0, 0), // a0 = sum = 0
			insts.EncodeADD(10, 10, 5), // sum += i
			insts.EncodeADDI(5, 5, -1), // i--
			insts.EncodeBNE(5, 0, -8),  // while i != 0
			insts.EncodeECALL(),
		),
		ExpectedExit: 136,
	}
}

// 4. Load-Use - each load's consumer is adjacent, one stall per pair.
func loadUse() Benchmark {
	return Benchmark{
		Name:        "load_use",
		Description: "10 adjacent LW/ADD pairs - measures the load-use penalty",
		Setup: func(regFile *emu.RegFile, memory *emu.Memory) {
			regFile.WriteReg(6, 0x8000)
			for i := uint32(0); i < 10; i++ {
				memory.Write32(0x8000+4*i, i+1)
			}
		},
		Program:      buildLoadUseKernel(10),
		ExpectedExit: 55,
	}
}

func buildLoadUseKernel(n int) []byte {
	instrs := make([]uint32, 0, 2*n+1)
	for i := 0; i < n; i++ {
		instrs = append(instrs, insts.EncodeLW(7, 6, int32(4*i)))
		instrs = append(instrs, insts.EncodeADD(10, 10, 7))
	}
	instrs = append(instrs, insts.EncodeECALL())
	return BuildProgram(instrs...)
}

// 5. Function Calls - JAL/JALR pairs exercising the RAS.
func functionCalls() Benchmark {
	return Benchmark{
		Name:        "function_calls",
		Description: "5 call/return pairs - measures call overhead and return prediction",
		Program: BuildProgram(
			insts.EncodeJAL(1, 24), // call add_one
			insts.EncodeJAL(1, 20),
			insts.EncodeJAL(1, 16),
			insts.EncodeJAL(1, 12),
			insts.EncodeJAL(1, 8),
			insts.EncodeECALL(),

			// add_one
			insts.EncodeADDI(10, 10, 1),
			insts.EncodeJALR(0, 1, 0),
		),
		ExpectedExit: 5,
	}
}

// 6. Divide Bound - chained divides serialize on the divider.
func divideBound() Benchmark {
	return Benchmark{
		Name:        "divide_bound",
		Description: "3 chained DIVs - measures divider occupancy stalls",
		Program: BuildProgram(
			insts.EncodeLUI(5, 1), // x5 = 4096
			insts.EncodeADDI(6, 0, 3),
			insts.EncodeDIV(7, 5, 6), // 1365
			insts.EncodeDIV(8, 7, 6), // 455
			insts.EncodeDIV(9, 8, 6), // 151
			insts.EncodeADD(10, 0, 9),
			insts.EncodeECALL(),
		),
		ExpectedExit: 151,
	}
}

// 7. Memory Stride - store/load pairs one cache line apart, so every
// pair opens a new line.
func memoryStride() Benchmark {
	return Benchmark{
		Name:        "memory_stride",
		Description: "8 SW/LW pairs with 64-byte stride - measures miss latency",
		Setup: func(regFile *emu.RegFile, memory *emu.Memory) {
			regFile.WriteReg(6, 0x8000)
			regFile.WriteReg(10, 42)
		},
		Program:      buildStrideKernel(8, 64),
		ExpectedExit: 42,
	}
}

func buildStrideKernel(pairs int, stride int32) []byte {
	instrs := make([]uint32, 0, 2*pairs+1)
	for i := 0; i < pairs; i++ {
		offset := int32(i) * stride
		instrs = append(instrs, insts.EncodeSW(10, 6, offset))
		instrs = append(instrs, insts.EncodeLW(10, 6, offset))
	}
	instrs = append(instrs, insts.EncodeECALL())
	return BuildProgram(instrs...)
}

// 8. Mixed Operations - compute, store, load and call, the shape of
// real code.
func mixedOperations() Benchmark {
	return Benchmark{
		Name:        "mixed_operations",
		Description: "Mix of ADDI, SW/LW, ADD and JAL - realistic workload characteristics",
		Setup: func(regFile *emu.RegFile, memory *emu.Memory) {
			regFile.WriteReg(6, 0x8000)
		},
		Program: BuildProgram(
			// iteration 1: compute, store, load back, accumulate, call
			insts.EncodeADDI(7, 10, 10),
			insts.EncodeSW(7, 6, 0),
			insts.EncodeLW(8, 6, 0),
			insts.EncodeADD(10, 10, 8),
			insts.EncodeJAL(1, 44),

			// iteration 2
			insts.EncodeADDI(7, 10, 10),
			insts.EncodeSW(7, 6, 4),
			insts.EncodeLW(8, 6, 4),
			insts.EncodeADD(10, 10, 8),
			insts.EncodeJAL(1, 24),

			// iteration 3
			insts.EncodeADDI(7, 10, 10),
			insts.EncodeSW(7, 6, 8),
			insts.EncodeLW(8, 6, 8),
			insts.EncodeADD(10, 10, 8),

			insts.EncodeECALL(),

			// add_five
			insts.EncodeADDI(10, 10, 5),
			insts.EncodeJALR(0, 1, 0),
		),
		// iter1: x7=10, a0=10, call +5 -> 15
		// iter2: x7=25, a0=40, call +5 -> 45
		// iter3: x7=55, a0=100
		ExpectedExit: 100,
	}
}
