package pipeline_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/twosigma/frost-sub002/emu"
	"github.com/twosigma/frost-sub002/insts"
	"github.com/twosigma/frost-sub002/timing/pipeline"
)

// runBoth executes the same program on the functional emulator and on
// the pipeline, each against its own memory, and hands back both
// machines for comparison.
type bothResult struct {
	pipeCode int
	emuCode  int
	pipeRegs *emu.RegFile
	emuRegs  *emu.RegFile
	pipeMem  *emu.Memory
	emuMem   *emu.Memory
}

func runBoth(words ...uint32) bothResult {
	pipeMem := emu.NewMemory()
	emuMem := emu.NewMemory()
	for i, w := range words {
		pipeMem.Write32(0x1000+uint32(4*i), w)
		emuMem.Write32(0x1000+uint32(4*i), w)
	}

	emulator := emu.NewEmulator(
		emu.WithMemory(emuMem),
		emu.WithPC(0x1000),
		emu.WithMaxInstructions(100000),
	)
	emuCode := emulator.Run()

	pipeRegs := &emu.RegFile{}
	pipe := pipeline.NewPipeline(pipeRegs, pipeMem,
		pipeline.WithInvariantChecks())
	pipe.SetPC(0x1000)
	pipeCode := pipe.Run()

	return bothResult{
		pipeCode: pipeCode,
		emuCode:  emuCode,
		pipeRegs: pipeRegs,
		emuRegs:  emulator.RegFile(),
		pipeMem:  pipeMem,
		emuMem:   emuMem,
	}
}

func expectSameState(r bothResult) {
	ExpectWithOffset(1, r.pipeCode).To(Equal(r.emuCode))
	for reg := uint8(1); reg < 32; reg++ {
		ExpectWithOffset(1, r.pipeRegs.ReadReg(reg)).
			To(Equal(r.emuRegs.ReadReg(reg)), "x%d", reg)
	}
}

var _ = Describe("Pipeline vs emulator", func() {
	It("should match on a fibonacci loop with memory traffic", func() {
		r := runBoth(
			insts.EncodeADDI(5, 0, 10), // iterations
			insts.EncodeADDI(6, 0, 0),
			insts.EncodeADDI(7, 0, 1),
			insts.EncodeLUI(8, 0x2000), // store cursor
			insts.EncodeADD(9, 6, 7),   // loop
			insts.EncodeADD(6, 0, 7),
			insts.EncodeADD(7, 0, 9),
			insts.EncodeSW(9, 8, 0),
			insts.EncodeLW(10, 8, 0),
			insts.EncodeADDI(8, 8, 4),
			insts.EncodeADDI(5, 5, -1),
			insts.EncodeBNE(5, 0, -28),
			insts.EncodeMUL(11, 6, 7),
			insts.EncodeDIV(12, 11, 6),
			selfLoop(),
		)

		expectSameState(r)
		for addr := uint32(0x2000); addr < 0x2028; addr += 4 {
			Expect(r.pipeMem.Read32(addr)).To(Equal(r.emuMem.Read32(addr)))
		}
		Expect(r.pipeRegs.ReadReg(6)).To(Equal(uint32(55)))
		Expect(r.pipeRegs.ReadReg(7)).To(Equal(uint32(89)))
	})

	It("should match on call and return", func() {
		r := runBoth(
			insts.EncodeADDI(10, 0, 0),
			insts.EncodeJAL(1, 16), // call 0x1014
			insts.EncodeADDI(10, 10, 5),
			selfLoop(),
			insts.EncodeNOP(),           // padding
			insts.EncodeADDI(10, 0, 37), // fn
			insts.EncodeJALR(0, 1, 0),
		)

		expectSameState(r)
		Expect(r.pipeCode).To(Equal(42))
	})

	It("should match on compressed arithmetic", func() {
		pipeMem := emu.NewMemory()
		emuMem := emu.NewMemory()
		for _, m := range []*emu.Memory{pipeMem, emuMem} {
			m.Write16(0x1000, 0x429D) // c.li x5, 7
			m.Write16(0x1002, 0x0285) // c.addi x5, 1
			m.Write32(0x1004, selfLoop())
		}

		emulator := emu.NewEmulator(
			emu.WithMemory(emuMem), emu.WithPC(0x1000))
		emuCode := emulator.Run()

		pipeRegs := &emu.RegFile{}
		pipe := pipeline.NewPipeline(pipeRegs, pipeMem,
			pipeline.WithInvariantChecks())
		pipe.SetPC(0x1000)

		Expect(pipe.Run()).To(Equal(emuCode))
		Expect(pipeRegs.ReadReg(5)).To(Equal(emulator.RegFile().ReadReg(5)))
		Expect(pipeRegs.ReadReg(5)).To(Equal(uint32(8)))
	})
})
