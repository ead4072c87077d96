// Package main provides a standalone accuracy check for the simulator.
// It cross-checks the two decoder entry points against each other, the
// timing pipeline against the reference emulator, and the branch
// predictor structures for determinism, exiting nonzero on any mismatch.
package main

import (
	"fmt"
	"os"

	"github.com/twosigma/frost-sub002/emu"
	"github.com/twosigma/frost-sub002/insts"
	"github.com/twosigma/frost-sub002/timing/pipeline"
)

// sameInstruction compares every decoded field, including the FP
// register class flags.
func sameInstruction(a, b *insts.Instruction) bool {
	return a.Raw == b.Raw &&
		a.Op == b.Op &&
		a.Format == b.Format &&
		a.Rd == b.Rd &&
		a.Rs1 == b.Rs1 &&
		a.Rs2 == b.Rs2 &&
		a.Imm == b.Imm &&
		a.CSR == b.CSR &&
		a.RdFP == b.RdFP &&
		a.Rs1FP == b.Rs1FP &&
		a.Rs2FP == b.Rs2FP &&
		a.Compressed == b.Compressed
}

// testDecoderPaths validates that Decode and DecodeWindow agree on
// standard encodings, and that the compressed path ignores the high
// half of the fetch window.
func testDecoderPaths() bool {
	decoder := insts.NewDecoder()

	// Standard 32-bit encodings across the major formats.
	words := []uint32{
		0x00100093, // addi x1, x0, 1
		0x002081B3, // add x3, x1, x2
		0x022081B3, // mul x3, x1, x2
		0x00852283, // lw x5, 8(x10)
		0x00552623, // sw x5, 12(x10)
		0x00208463, // beq x1, x2, +8
		0x010000EF, // jal x1, +16
		0x00008067, // jalr x0, 0(x1)
		0x123452B7, // lui x5, 0x12345
		0x300312F3, // csrrw x5, mstatus, x6
	}

	fmt.Println("Checking decoder path consistency...")

	for i, word := range words {
		direct := decoder.Decode(word)
		windowed := decoder.DecodeWindow(word)

		if !sameInstruction(direct, windowed) {
			fmt.Printf("FAIL case %d: path mismatch for 0x%08X\n", i, word)
			fmt.Printf("  Decode():       %+v\n", direct)
			fmt.Printf("  DecodeWindow(): %+v\n", windowed)
			return false
		}

		fmt.Printf("PASS case %d: 0x%08X decodes as %v on both paths\n",
			i, word, direct.Op)
	}

	// Compressed encodings in the low half of a fetch window. The
	// decode must not depend on whatever the high half carries.
	halves := []uint16{
		0x4081, // c.li x1, 0
		0x0505, // c.addi x10, 1
		0x852E, // c.mv x10, x11
		0x952E, // c.add x10, x11
		0x8082, // c.jr x1
	}

	for i, half := range halves {
		clean := decoder.DecodeWindow(uint32(half))
		noisy := decoder.DecodeWindow(0xFFFF0000 | uint32(half))

		if !sameInstruction(clean, noisy) {
			fmt.Printf("FAIL compressed case %d: high half leaked into 0x%04X\n", i, half)
			return false
		}
		if !clean.Compressed || clean.Size() != 2 {
			fmt.Printf("FAIL compressed case %d: 0x%04X not marked compressed\n", i, half)
			return false
		}

		fmt.Printf("PASS compressed case %d: 0x%04X expands to %v\n",
			i, half, clean.Op)
	}

	return true
}

// loadWords writes a program into memory one word at a time.
func loadWords(memory *emu.Memory, base uint32, words []uint32) {
	for i, word := range words {
		memory.Write32(base+uint32(i*4), word)
	}
}

// testExecutionEquivalence runs the same program through the timing
// pipeline and the reference emulator and requires identical
// architectural state at exit.
func testExecutionEquivalence() bool {
	fmt.Println("\nChecking pipeline against the reference emulator...")

	const basePC = 0x1000
	const dataAddr = 0x8000

	// The kernel exercises a load-use pair, a store-to-load round
	// trip, and an always-taken branch over a poison write to x9.
	program := []uint32{
		insts.EncodeADDI(6, 5, 1),  // x6 = x5 + 1
		insts.EncodeSLLI(7, 6, 2),  // x7 = x6 << 2
		insts.EncodeSW(7, 2, 0),    // mem[sp] = x7
		insts.EncodeLW(8, 2, 0),    // x8 = mem[sp]
		insts.EncodeBEQ(8, 7, 8),   // always taken
		insts.EncodeADDI(9, 0, 99), // skipped when the branch behaves
		insts.EncodeADD(10, 8, 6),  // a0 = x8 + x6
		insts.EncodeECALL(),        // exit(a0)
	}

	testValues := []uint32{0, 1, 42, 0xFFFFFFFF}

	for i, initial := range testValues {
		// Fresh state per model so stores cannot leak across runs.
		pipeRegs := &emu.RegFile{}
		pipeRegs.WriteReg(2, dataAddr)
		pipeRegs.WriteReg(5, initial)
		pipeMem := emu.NewMemory()
		loadWords(pipeMem, basePC, program)

		pipe := pipeline.NewPipeline(pipeRegs, pipeMem)
		pipe.SetPC(basePC)
		pipeExit := pipe.Run()

		refMem := emu.NewMemory()
		loadWords(refMem, basePC, program)
		ref := emu.NewEmulator(
			emu.WithMemory(refMem),
			emu.WithPC(basePC),
			emu.WithStackPointer(dataAddr),
			emu.WithMaxInstructions(10000),
		)
		ref.RegFile().WriteReg(5, initial)
		refExit := ref.Run()

		if pipeExit != refExit {
			fmt.Printf("FAIL case %d: exit mismatch: pipeline %d, emulator %d\n",
				i, pipeExit, refExit)
			return false
		}

		refRegs := ref.RegFile()
		for r := 1; r < 32; r++ {
			if pipeRegs.X[r] != refRegs.X[r] {
				fmt.Printf("FAIL case %d: x%d mismatch: pipeline %#x, emulator %#x\n",
					i, r, pipeRegs.X[r], refRegs.X[r])
				return false
			}
		}

		fmt.Printf("PASS case %d: x5=%d exits %d with matching registers\n",
			i, initial, pipeExit)
	}

	return true
}

// testPredictorDeterminism drives two identically configured branch
// target buffers and return address stacks through the same stimulus
// and requires matching predictions, including after a reset.
func testPredictorDeterminism() bool {
	fmt.Println("\nChecking branch predictor determinism...")

	btb1 := pipeline.NewBTB(16)
	btb2 := pipeline.NewBTB(16)

	pcs := []uint32{0x1000, 0x1004, 0x1008, 0x100C}
	target := uint32(0x2000)

	// Cold lookups, then identical training.
	for i, pc := range pcs {
		p1 := btb1.Lookup(pc)
		p2 := btb2.Lookup(pc)
		if p1 != p2 {
			fmt.Printf("FAIL: cold lookup mismatch at PC 0x%X\n", pc)
			return false
		}
		btb1.Update(pc, i%2 == 0, target)
		btb2.Update(pc, i%2 == 0, target)
	}

	for _, pc := range pcs {
		p1 := btb1.Lookup(pc)
		p2 := btb2.Lookup(pc)
		if p1 != p2 {
			fmt.Printf("FAIL: trained lookup mismatch at PC 0x%X\n", pc)
			return false
		}
		fmt.Printf("PASS: PC 0x%X predicts consistently (taken=%v, target=0x%X)\n",
			pc, p1.Taken, p1.Target)
	}

	btb1.Reset()
	btb2.Reset()

	for _, pc := range pcs {
		p1 := btb1.Lookup(pc)
		p2 := btb2.Lookup(pc)
		if p1 != p2 || p1.Taken {
			fmt.Printf("FAIL: post-reset lookup at PC 0x%X should fall through\n", pc)
			return false
		}
	}
	fmt.Println("PASS: buffer reset restores fall-through predictions")

	ras1 := pipeline.NewReturnAddressStack(8)
	ras2 := pipeline.NewReturnAddressStack(8)

	returns := []uint32{0x1004, 0x2008, 0x300C}
	for _, addr := range returns {
		ras1.Push(addr)
		ras2.Push(addr)
	}
	for i := range returns {
		want := returns[len(returns)-1-i]
		a1, ok1 := ras1.Pop()
		a2, ok2 := ras2.Pop()
		if a1 != a2 || ok1 != ok2 || !ok1 || a1 != want {
			fmt.Printf("FAIL: return stack pop %d: got 0x%X and 0x%X, want 0x%X\n",
				i, a1, a2, want)
			return false
		}
	}
	if _, ok := ras1.Pop(); ok {
		fmt.Println("FAIL: drained return stack should report empty")
		return false
	}
	fmt.Println("PASS: return stack pops mirror pushes in LIFO order")

	return true
}

func main() {
	fmt.Println("frostsim accuracy validation")
	fmt.Println("============================")

	allPassed := true

	if !testDecoderPaths() {
		allPassed = false
	}
	if !testExecutionEquivalence() {
		allPassed = false
	}
	if !testPredictorDeterminism() {
		allPassed = false
	}

	fmt.Println("\n============================")
	if allPassed {
		fmt.Println("ALL ACCURACY CHECKS PASSED")
		os.Exit(0)
	}
	fmt.Println("ACCURACY CHECKS FAILED")
	os.Exit(1)
}
