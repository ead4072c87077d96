package core_test

import (
	"encoding/binary"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/twosigma/frost-sub002/emu"
	"github.com/twosigma/frost-sub002/insts"
	"github.com/twosigma/frost-sub002/timing/core"
	"github.com/twosigma/frost-sub002/timing/pipeline"
)

func image(words ...uint32) []byte {
	var buf []byte
	for _, w := range words {
		buf = binary.LittleEndian.AppendUint32(buf, w)
	}
	return buf
}

var _ = Describe("Core", func() {
	var (
		regFile *emu.RegFile
		memory  *emu.Memory
		c       *core.Core
	)

	BeforeEach(func() {
		regFile = &emu.RegFile{}
		memory = emu.NewMemory()
		c = core.NewCore(regFile, memory)
	})

	It("should expose the pipeline and the register file", func() {
		Expect(c.Pipeline).NotTo(BeNil())
		Expect(c.RegFile()).To(BeIdenticalTo(regFile))
	})

	It("should come up running", func() {
		Expect(c.Halted()).To(BeFalse())
	})

	It("should fetch from wherever SetPC pointed", func() {
		c.SetPC(0x2000)
		Expect(c.PC()).To(Equal(uint32(0x2000)))
	})

	Describe("Tick", func() {
		It("should retire work one cycle at a time", func() {
			c.LoadProgram(0x1000, image(
				insts.EncodeADDI(1, 0, 42),
				insts.EncodeJAL(0, 0),
			))

			for i := 0; i < 10; i++ {
				c.Tick()
			}

			Expect(c.RegFile().ReadReg(1)).To(Equal(uint32(42)))
		})

		It("should count every cycle in the stats", func() {
			c.LoadProgram(0x1000, image(
				insts.EncodeADDI(1, 0, 42),
				insts.EncodeNOP(),
			))

			c.Tick()
			c.Tick()
			c.Tick()

			Expect(c.Stats().Cycles).To(Equal(uint64(3)))
		})
	})

	Describe("Run", func() {
		It("should drain the program and report a0 as the exit code", func() {
			c.LoadProgram(0x1000, image(
				insts.EncodeADDI(10, 0, 10),
				insts.EncodeJAL(0, 0),
			))

			exitCode := c.Run()

			Expect(c.Halted()).To(BeTrue())
			Expect(exitCode).To(Equal(10))
			Expect(c.ExitCode()).To(Equal(10))
		})

		It("should start from the entry point LoadProgram recorded", func() {
			c.LoadProgram(0x1000, image(
				insts.EncodeADDI(10, 0, 3),
				insts.EncodeADDI(10, 10, 4),
				insts.EncodeJAL(0, 0),
			))

			Expect(c.PC()).To(Equal(uint32(0x1000)))
			Expect(c.Run()).To(Equal(7))
		})
	})

	Describe("RunCycles", func() {
		It("should report that work remains when the budget runs out", func() {
			words := make([]uint32, 10)
			for i := range words {
				words[i] = insts.EncodeNOP()
			}
			c.LoadProgram(0x1000, image(words...))

			Expect(c.RunCycles(5)).To(BeTrue())
			Expect(c.Halted()).To(BeFalse())
			Expect(c.Stats().Cycles).To(Equal(uint64(5)))
		})

		It("should give back unused budget after a halt", func() {
			c.LoadProgram(0x1000, image(
				insts.EncodeADDI(10, 0, 0),
				insts.EncodeJAL(0, 0),
			))

			Expect(c.RunCycles(100)).To(BeFalse())
			Expect(c.Halted()).To(BeTrue())
		})
	})

	Describe("Reset", func() {
		It("should zero the counters and leave the core running", func() {
			words := make([]uint32, 5)
			for i := range words {
				words[i] = insts.EncodeNOP()
			}
			c.LoadProgram(0x1000, image(words...))

			c.RunCycles(4)
			Expect(c.Stats().Cycles).To(BeNumerically(">", 0))

			c.Reset()

			after := c.Stats()
			Expect(after.Cycles).To(BeZero())
			Expect(after.Instructions).To(BeZero())
			Expect(c.Halted()).To(BeFalse())
		})
	})

	It("should pass pipeline options through", func() {
		csr := emu.NewCSRFile()
		c = core.NewCore(regFile, memory, pipeline.WithCSRFile(csr))

		Expect(c.Pipeline.CSRFile()).To(BeIdenticalTo(csr))
	})
})

var _ = Describe("Stats", func() {
	It("should compute cycles per instruction", func() {
		s := core.Stats{Cycles: 10, Instructions: 4}
		Expect(s.CPI()).To(Equal(2.5))
	})

	It("should report zero CPI before anything retires", func() {
		s := core.Stats{Cycles: 10}
		Expect(s.CPI()).To(Equal(0.0))
	})
})
