package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/twosigma/frost-sub002/emu"
)

var _ = Describe("CSRFile", func() {
	var csr *emu.CSRFile

	BeforeEach(func() {
		csr = emu.NewCSRFile()
	})

	It("should start with machine mode in mstatus.MPP", func() {
		status, ok := csr.Read(emu.CSRMStatus)
		Expect(ok).To(BeTrue())
		Expect(status & emu.MStatusMPP).To(Equal(emu.MStatusMPP))
	})

	It("should read and write the scratch register", func() {
		Expect(csr.Write(emu.CSRMScratch, 0xCAFEBABE)).To(BeTrue())
		value, ok := csr.Read(emu.CSRMScratch)
		Expect(ok).To(BeTrue())
		Expect(value).To(Equal(uint32(0xCAFEBABE)))
	})

	It("should expose the counters in split halves", func() {
		csr.Cycle = 0x1_0000_0002
		low, _ := csr.Read(emu.CSRCycle)
		high, _ := csr.Read(emu.CSRCycleH)
		Expect(low).To(Equal(uint32(2)))
		Expect(high).To(Equal(uint32(1)))
	})

	It("should reject unknown addresses", func() {
		_, ok := csr.Read(0x7C0)
		Expect(ok).To(BeFalse())
		Expect(csr.Write(0x7C0, 1)).To(BeFalse())
	})

	It("should reject writes to read-only CSRs", func() {
		Expect(csr.Write(emu.CSRMHartID, 7)).To(BeFalse())
	})

	Describe("TakeTrap", func() {
		It("should vector to mtvec and save state", func() {
			csr.MTVec = 0x100
			csr.MStatus |= emu.MStatusMIE

			target := csr.TakeTrap(emu.CauseIllegalInstruction, 0xBAD, 0x2000)

			Expect(target).To(Equal(uint32(0x100)))
			Expect(csr.MEPC).To(Equal(uint32(0x2000)))
			Expect(csr.MCause).To(Equal(emu.CauseIllegalInstruction))
			Expect(csr.MTVal).To(Equal(uint32(0xBAD)))
			Expect(csr.MStatus & emu.MStatusMIE).To(BeZero())
			Expect(csr.MStatus & emu.MStatusMPIE).NotTo(BeZero())
		})
	})

	Describe("MRet", func() {
		It("should restore the interrupt enable and return to mepc", func() {
			csr.MTVec = 0x100
			csr.MStatus |= emu.MStatusMIE
			csr.TakeTrap(emu.CauseECallM, 0, 0x3000)
			csr.MEPC = 0x3004

			target := csr.MRet()

			Expect(target).To(Equal(uint32(0x3004)))
			Expect(csr.MStatus & emu.MStatusMIE).NotTo(BeZero())
		})
	})
})
