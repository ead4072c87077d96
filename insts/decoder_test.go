package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/twosigma/frost-sub002/insts"
)

var _ = Describe("Decoder", func() {
	var decoder *insts.Decoder

	BeforeEach(func() {
		decoder = insts.NewDecoder()
	})

	Describe("Immediate ALU", func() {
		// ADDI x1, x0, 42 -> 0x02A00093
		// Encoding: imm12=42, rs1=0, funct3=000, rd=1
		It("should decode ADDI x1, x0, 42", func() {
			inst := decoder.Decode(0x02A00093)

			Expect(inst.Op).To(Equal(insts.OpADDI))
			Expect(inst.Format).To(Equal(insts.FormatI))
			Expect(inst.Rd).To(Equal(uint8(1)))
			Expect(inst.Rs1).To(Equal(uint8(0)))
			Expect(inst.Imm).To(Equal(int32(42)))
		})

		// ADDI x1, x2, -1 -> imm12=0xFFF
		It("should sign-extend negative immediates", func() {
			inst := decoder.Decode(insts.EncodeADDI(1, 2, -1))

			Expect(inst.Op).To(Equal(insts.OpADDI))
			Expect(inst.Imm).To(Equal(int32(-1)))
		})

		// The canonical NOP is ADDI x0, x0, 0 -> 0x00000013
		It("should decode the canonical NOP", func() {
			inst := decoder.Decode(0x00000013)

			Expect(inst.Op).To(Equal(insts.OpADDI))
			Expect(inst.Rd).To(Equal(uint8(0)))
			Expect(inst.Imm).To(Equal(int32(0)))
		})

		It("should decode shift immediates with the shamt field", func() {
			inst := decoder.Decode(insts.EncodeSRAI(3, 4, 7))

			Expect(inst.Op).To(Equal(insts.OpSRAI))
			Expect(inst.Rd).To(Equal(uint8(3)))
			Expect(inst.Rs1).To(Equal(uint8(4)))
			Expect(inst.Imm).To(Equal(int32(7)))
		})
	})

	Describe("Register ALU", func() {
		// ADD x3, x1, x2 -> 0x002081B3
		// Encoding: funct7=0, rs2=2, rs1=1, funct3=000, rd=3
		It("should decode ADD x3, x1, x2", func() {
			inst := decoder.Decode(0x002081B3)

			Expect(inst.Op).To(Equal(insts.OpADD))
			Expect(inst.Format).To(Equal(insts.FormatR))
			Expect(inst.Rd).To(Equal(uint8(3)))
			Expect(inst.Rs1).To(Equal(uint8(1)))
			Expect(inst.Rs2).To(Equal(uint8(2)))
		})

		It("should distinguish SUB and SRA by funct7", func() {
			Expect(decoder.Decode(insts.EncodeSUB(1, 2, 3)).Op).To(Equal(insts.OpSUB))
			Expect(decoder.Decode(insts.EncodeSRA(1, 2, 3)).Op).To(Equal(insts.OpSRA))
			Expect(decoder.Decode(insts.EncodeSRL(1, 2, 3)).Op).To(Equal(insts.OpSRL))
		})

		// MUL x5, x6, x7 -> 0x027302B3 (funct7=0000001)
		It("should decode the M extension", func() {
			inst := decoder.Decode(0x027302B3)

			Expect(inst.Op).To(Equal(insts.OpMUL))
			Expect(inst.Rd).To(Equal(uint8(5)))
			Expect(inst.Rs1).To(Equal(uint8(6)))
			Expect(inst.Rs2).To(Equal(uint8(7)))

			Expect(decoder.Decode(insts.EncodeDIV(5, 6, 7)).Op).To(Equal(insts.OpDIV))
			Expect(decoder.Decode(insts.EncodeREMU(5, 6, 7)).Op).To(Equal(insts.OpREMU))
		})

		It("should decode the Zba/Zbs/Zbb/Zicond subsets", func() {
			Expect(decoder.Decode(insts.EncodeSH2ADD(1, 2, 3)).Op).To(Equal(insts.OpSH2ADD))
			Expect(decoder.Decode(insts.EncodeBEXT(1, 2, 3)).Op).To(Equal(insts.OpBEXT))
			Expect(decoder.Decode(insts.EncodeANDN(1, 2, 3)).Op).To(Equal(insts.OpANDN))
			Expect(decoder.Decode(insts.EncodeMINU(1, 2, 3)).Op).To(Equal(insts.OpMINU))
			Expect(decoder.Decode(insts.EncodeCZEROEQZ(1, 2, 3)).Op).To(Equal(insts.OpCZEROEQZ))
		})
	})

	Describe("Loads and stores", func() {
		// LW x5, 8(x2) -> 0x00812283
		It("should decode LW x5, 8(x2)", func() {
			inst := decoder.Decode(0x00812283)

			Expect(inst.Op).To(Equal(insts.OpLW))
			Expect(inst.Format).To(Equal(insts.FormatLoad))
			Expect(inst.Rd).To(Equal(uint8(5)))
			Expect(inst.Rs1).To(Equal(uint8(2)))
			Expect(inst.Imm).To(Equal(int32(8)))
			Expect(inst.IsLoad()).To(BeTrue())
		})

		// SW x5, 12(x2) -> 0x00512623
		It("should decode SW x5, 12(x2)", func() {
			inst := decoder.Decode(0x00512623)

			Expect(inst.Op).To(Equal(insts.OpSW))
			Expect(inst.Format).To(Equal(insts.FormatStore))
			Expect(inst.Rs1).To(Equal(uint8(2)))
			Expect(inst.Rs2).To(Equal(uint8(5)))
			Expect(inst.Imm).To(Equal(int32(12)))
			Expect(inst.IsStore()).To(BeTrue())
		})

		It("should decode negative store offsets", func() {
			inst := decoder.Decode(insts.EncodeSB(7, 8, -4))

			Expect(inst.Op).To(Equal(insts.OpSB))
			Expect(inst.Imm).To(Equal(int32(-4)))
		})
	})

	Describe("Branches and jumps", func() {
		// BEQ x1, x2, +8 -> 0x00208463
		It("should decode BEQ x1, x2, +8", func() {
			inst := decoder.Decode(0x00208463)

			Expect(inst.Op).To(Equal(insts.OpBEQ))
			Expect(inst.Format).To(Equal(insts.FormatBranch))
			Expect(inst.Rs1).To(Equal(uint8(1)))
			Expect(inst.Rs2).To(Equal(uint8(2)))
			Expect(inst.Imm).To(Equal(int32(8)))
			Expect(inst.IsBranch()).To(BeTrue())
		})

		It("should decode backward branch offsets", func() {
			inst := decoder.Decode(insts.EncodeBNE(3, 4, -16))

			Expect(inst.Op).To(Equal(insts.OpBNE))
			Expect(inst.Imm).To(Equal(int32(-16)))
		})

		// JAL x1, +16 -> 0x010000EF
		It("should decode JAL x1, +16 as a call", func() {
			inst := decoder.Decode(0x010000EF)

			Expect(inst.Op).To(Equal(insts.OpJAL))
			Expect(inst.Rd).To(Equal(uint8(1)))
			Expect(inst.Imm).To(Equal(int32(16)))
			Expect(inst.IsJump()).To(BeTrue())
			Expect(inst.IsCall()).To(BeTrue())
			Expect(inst.IsReturn()).To(BeFalse())
		})

		// JALR x0, 0(x1) -> 0x00008067, the canonical RET
		It("should decode JALR x0, 0(x1) as a return", func() {
			inst := decoder.Decode(0x00008067)

			Expect(inst.Op).To(Equal(insts.OpJALR))
			Expect(inst.IsReturn()).To(BeTrue())
			Expect(inst.IsCall()).To(BeFalse())
		})

		It("should classify JALR link-register combinations", func() {
			// jalr x1, 0(x3): call through a non-link base
			call := decoder.Decode(insts.EncodeJALR(1, 3, 0))
			Expect(call.IsCall()).To(BeTrue())
			Expect(call.IsReturn()).To(BeFalse())

			// jalr x1, 0(x5): pop then push (coroutine swap)
			swap := decoder.Decode(insts.EncodeJALR(1, 5, 0))
			Expect(swap.IsCall()).To(BeTrue())
			Expect(swap.IsReturn()).To(BeTrue())

			// jalr x1, 0(x1): re-link through the same register, push only
			relink := decoder.Decode(insts.EncodeJALR(1, 1, 0))
			Expect(relink.IsCall()).To(BeTrue())
			Expect(relink.IsReturn()).To(BeFalse())

			// jalr x6, 0(x3): plain indirect jump, neither
			plain := decoder.Decode(insts.EncodeJALR(6, 3, 0))
			Expect(plain.IsCall()).To(BeFalse())
			Expect(plain.IsReturn()).To(BeFalse())
		})

		It("should decode JAL with negative offsets", func() {
			inst := decoder.Decode(insts.EncodeJAL(0, -32))

			Expect(inst.Op).To(Equal(insts.OpJAL))
			Expect(inst.Imm).To(Equal(int32(-32)))
			Expect(inst.IsCall()).To(BeFalse())
		})
	})

	Describe("Upper immediates", func() {
		// LUI x1, 0x12345 -> 0x123450B7
		It("should decode LUI x1, 0x12345", func() {
			inst := decoder.Decode(0x123450B7)

			Expect(inst.Op).To(Equal(insts.OpLUI))
			Expect(inst.Rd).To(Equal(uint8(1)))
			Expect(inst.Imm).To(Equal(int32(0x12345000)))
		})

		It("should decode AUIPC", func() {
			inst := decoder.Decode(insts.EncodeAUIPC(2, 0x1000))

			Expect(inst.Op).To(Equal(insts.OpAUIPC))
			Expect(inst.Imm).To(Equal(int32(0x1000)))
		})
	})

	Describe("System and CSR", func() {
		It("should decode ECALL, EBREAK, MRET and WFI", func() {
			Expect(decoder.Decode(0x00000073).Op).To(Equal(insts.OpECALL))
			Expect(decoder.Decode(0x00100073).Op).To(Equal(insts.OpEBREAK))
			Expect(decoder.Decode(0x30200073).Op).To(Equal(insts.OpMRET))
			Expect(decoder.Decode(0x10500073).Op).To(Equal(insts.OpWFI))
		})

		// CSRRW x1, mscratch, x2 -> 0x340110F3
		It("should decode CSRRW x1, mscratch, x2", func() {
			inst := decoder.Decode(0x340110F3)

			Expect(inst.Op).To(Equal(insts.OpCSRRW))
			Expect(inst.Format).To(Equal(insts.FormatCSR))
			Expect(inst.Rd).To(Equal(uint8(1)))
			Expect(inst.Rs1).To(Equal(uint8(2)))
			Expect(inst.CSR).To(Equal(uint16(0x340)))
		})

		It("should carry the uimm of immediate CSR forms in Rs1", func() {
			inst := decoder.Decode(insts.EncodeCSRRWI(1, 0x340, 13))

			Expect(inst.Op).To(Equal(insts.OpCSRRWI))
			Expect(inst.Rs1).To(Equal(uint8(13)))
			Expect(inst.ReadsIntRs1()).To(BeFalse())
		})
	})

	Describe("Atomics", func() {
		It("should decode LR.W and SC.W", func() {
			lr := decoder.Decode(insts.EncodeLRW(3, 4))
			Expect(lr.Op).To(Equal(insts.OpLRW))
			Expect(lr.Rs1).To(Equal(uint8(4)))
			Expect(lr.ReadsIntRs2()).To(BeFalse())

			sc := decoder.Decode(insts.EncodeSCW(3, 5, 4))
			Expect(sc.Op).To(Equal(insts.OpSCW))
			Expect(sc.Rs2).To(Equal(uint8(5)))
			Expect(sc.ReadsIntRs2()).To(BeTrue())
		})

		It("should decode the AMO read-modify-write family", func() {
			Expect(decoder.Decode(insts.EncodeAMOADDW(1, 2, 3)).Op).To(Equal(insts.OpAMOADDW))
			Expect(decoder.Decode(insts.EncodeAMOSWAPW(1, 2, 3)).Op).To(Equal(insts.OpAMOSWAPW))
			Expect(decoder.Decode(insts.EncodeAMOMAXUW(1, 2, 3)).Op).To(Equal(insts.OpAMOMAXUW))

			inst := decoder.Decode(insts.EncodeAMOANDW(1, 2, 3))
			Expect(inst.Format).To(Equal(insts.FormatAMO))
			Expect(inst.IsAMO()).To(BeTrue())
			Expect(inst.Rd).To(Equal(uint8(1)))
			Expect(inst.Rs2).To(Equal(uint8(2)))
			Expect(inst.Rs1).To(Equal(uint8(3)))
		})
	})

	Describe("Floating point", func() {
		It("should decode FLW and FSW with FP operand mapping", func() {
			flw := decoder.Decode(insts.EncodeFLW(1, 2, 8))
			Expect(flw.Op).To(Equal(insts.OpFLW))
			Expect(flw.RdFP).To(BeTrue())
			Expect(flw.WritesFPReg()).To(BeTrue())
			Expect(flw.ReadsIntRs1()).To(BeTrue())

			fsw := decoder.Decode(insts.EncodeFSW(3, 2, 12))
			Expect(fsw.Op).To(Equal(insts.OpFSW))
			Expect(fsw.Rs2FP).To(BeTrue())
			Expect(fsw.ReadsFPRs2()).To(BeTrue())
			Expect(fsw.ReadsIntRs1()).To(BeTrue())
		})

		It("should decode FP compute operations", func() {
			add := decoder.Decode(insts.EncodeFADDS(1, 2, 3))
			Expect(add.Op).To(Equal(insts.OpFADDS))
			Expect(add.RdFP).To(BeTrue())
			Expect(add.ReadsFPRs1()).To(BeTrue())
			Expect(add.ReadsFPRs2()).To(BeTrue())

			sqrt := decoder.Decode(insts.EncodeFSQRTS(1, 2))
			Expect(sqrt.Op).To(Equal(insts.OpFSQRTS))
			Expect(sqrt.ReadsFPRs2()).To(BeFalse())
		})

		It("should route compares and moves to the integer file", func() {
			feq := decoder.Decode(insts.EncodeFEQS(1, 2, 3))
			Expect(feq.Op).To(Equal(insts.OpFEQS))
			Expect(feq.RdFP).To(BeFalse())
			Expect(feq.WritesIntReg()).To(BeTrue())

			fmvwx := decoder.Decode(insts.EncodeFMVWX(1, 2))
			Expect(fmvwx.Op).To(Equal(insts.OpFMVWX))
			Expect(fmvwx.RdFP).To(BeTrue())
			Expect(fmvwx.ReadsIntRs1()).To(BeTrue())

			fmvxw := decoder.Decode(insts.EncodeFMVXW(1, 2))
			Expect(fmvxw.Op).To(Equal(insts.OpFMVXW))
			Expect(fmvxw.RdFP).To(BeFalse())
			Expect(fmvxw.ReadsFPRs1()).To(BeTrue())
		})
	})

	Describe("Unknown encodings", func() {
		It("should mark unrecognized words as OpUnknown", func() {
			Expect(decoder.Decode(0xFFFFFFFF).Op).To(Equal(insts.OpUnknown))
			Expect(decoder.Decode(0x0000007F).Op).To(Equal(insts.OpUnknown))
		})

		It("should reject a malformed SLLI funct7", func() {
			// SLLI with funct7=0100000 is not a valid RV32I encoding.
			word := insts.EncodeSLLI(1, 2, 3) | 0x40000000
			Expect(decoder.Decode(word).Op).To(Equal(insts.OpUnknown))
		})
	})
})
