package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/twosigma/frost-sub002/insts"
)

var _ = Describe("Compressed Expansion", func() {
	var decoder *insts.Decoder

	BeforeEach(func() {
		decoder = insts.NewDecoder()
	})

	expand := func(half uint16) uint32 {
		word, ok := insts.ExpandCompressed(half)
		Expect(ok).To(BeTrue())
		return word
	}

	It("should recognize compressed encodings by the low two bits", func() {
		Expect(insts.IsCompressed(0x0505)).To(BeTrue())
		Expect(insts.IsCompressed(0x8082)).To(BeTrue())
		Expect(insts.IsCompressed(0x0013)).To(BeFalse()) // low half of a NOP
	})

	It("should reject the all-zero defined-illegal encoding", func() {
		_, ok := insts.ExpandCompressed(0)
		Expect(ok).To(BeFalse())
	})

	// C.ADDI a0, 1 -> 0x0505
	It("should expand C.ADDI a0, 1", func() {
		Expect(expand(0x0505)).To(Equal(insts.EncodeADDI(10, 10, 1)))
	})

	// C.LW a0, 0(a1) -> 0x4188
	It("should expand C.LW a0, 0(a1)", func() {
		Expect(expand(0x4188)).To(Equal(insts.EncodeLW(10, 11, 0)))
	})

	// C.JR ra -> 0x8082, the compressed RET
	It("should expand C.JR ra to JALR x0, 0(x1)", func() {
		word := expand(0x8082)
		Expect(word).To(Equal(insts.EncodeJALR(0, 1, 0)))

		inst := decoder.DecodeWindow(0x8082)
		Expect(inst.Op).To(Equal(insts.OpJALR))
		Expect(inst.IsReturn()).To(BeTrue())
		Expect(inst.Compressed).To(BeTrue())
		Expect(inst.Size()).To(Equal(uint32(2)))
	})

	// C.MV a0, a1 -> 0x852E; C.ADD a0, a1 -> 0x952E
	It("should expand C.MV and C.ADD", func() {
		Expect(expand(0x852E)).To(Equal(insts.EncodeADD(10, 0, 11)))
		Expect(expand(0x952E)).To(Equal(insts.EncodeADD(10, 10, 11)))
	})

	// C.EBREAK -> 0x9002
	It("should expand C.EBREAK", func() {
		Expect(expand(0x9002)).To(Equal(insts.EncodeEBREAK()))
	})

	It("should expand C.LI and C.LUI", func() {
		// c.li a0, -3: funct3=010, imm[5]=1, rd=10, imm[4:0]=11101
		inst := decoder.DecodeWindow(uint32(0x5575))
		Expect(inst.Op).To(Equal(insts.OpADDI))
		Expect(inst.Rd).To(Equal(uint8(10)))
		Expect(inst.Rs1).To(Equal(uint8(0)))
		Expect(inst.Imm).To(Equal(int32(-3)))

		// c.lui a0, 1: funct3=011, rd=10, nzimm[17]=0, nzimm[16:12]=00001
		lui := decoder.DecodeWindow(uint32(0x6505))
		Expect(lui.Op).To(Equal(insts.OpLUI))
		Expect(lui.Imm).To(Equal(int32(1 << 12)))
	})

	It("should expand C.ADDI16SP and C.ADDI4SPN", func() {
		// c.addi16sp 32: rd=2, nzimm=32 -> imm[5]=1 at inst[2]
		sp := decoder.DecodeWindow(uint32(0x6105))
		Expect(sp.Op).To(Equal(insts.OpADDI))
		Expect(sp.Rd).To(Equal(uint8(2)))
		Expect(sp.Rs1).To(Equal(uint8(2)))
		Expect(sp.Imm).To(Equal(int32(32)))

		// c.addi4spn a0, sp, 4: uimm[2]=1 at inst[6]
		spn := decoder.DecodeWindow(uint32(0x0048))
		Expect(spn.Op).To(Equal(insts.OpADDI))
		Expect(spn.Rd).To(Equal(uint8(10)))
		Expect(spn.Rs1).To(Equal(uint8(2)))
		Expect(spn.Imm).To(Equal(int32(4)))
	})

	It("should expand the register-register quadrant 1 group", func() {
		// c.sub a0, a1: 100 0 11 010 00 011 01
		sub := expand(0x8D0D)
		Expect(sub).To(Equal(insts.EncodeSUB(10, 10, 11)))

		// c.and a0, a1: bits [6:5] = 11
		and := expand(0x8D6D)
		Expect(and).To(Equal(insts.EncodeAND(10, 10, 11)))
	})

	It("should expand C.BEQZ and C.BNEZ with scaled offsets", func() {
		// c.beqz a0, +8: offset[3]=1 -> inst[11:10]=01
		beqz := decoder.DecodeWindow(uint32(0xC501))
		Expect(beqz.Op).To(Equal(insts.OpBEQ))
		Expect(beqz.Rs1).To(Equal(uint8(10)))
		Expect(beqz.Rs2).To(Equal(uint8(0)))
		Expect(beqz.Imm).To(Equal(int32(8)))

		// c.bnez a0, -4
		bnez := decoder.DecodeWindow(uint32(0xFD75))
		Expect(bnez.Op).To(Equal(insts.OpBNE))
		Expect(bnez.Imm).To(Equal(int32(-4)))
	})

	It("should expand C.J and C.JAL", func() {
		// c.j +16
		j := decoder.DecodeWindow(uint32(0xA811))
		Expect(j.Op).To(Equal(insts.OpJAL))
		Expect(j.Rd).To(Equal(uint8(0)))
		Expect(j.Imm).To(Equal(int32(16)))

		// c.jal +16 links through ra and is a call
		jal := decoder.DecodeWindow(uint32(0x2811))
		Expect(jal.Op).To(Equal(insts.OpJAL))
		Expect(jal.Rd).To(Equal(uint8(1)))
		Expect(jal.Imm).To(Equal(int32(16)))
		Expect(jal.IsCall()).To(BeTrue())
	})

	It("should expand C.LWSP and C.SWSP", func() {
		// c.lwsp a0, 8(sp): uimm[4:2]=010 -> inst[6:4]=010
		lwsp := decoder.DecodeWindow(uint32(0x4522))
		Expect(lwsp.Op).To(Equal(insts.OpLW))
		Expect(lwsp.Rd).To(Equal(uint8(10)))
		Expect(lwsp.Rs1).To(Equal(uint8(2)))
		Expect(lwsp.Imm).To(Equal(int32(8)))

		// c.swsp a0, 12(sp): uimm[5:2]=0011 -> inst[12:9]
		swsp := decoder.DecodeWindow(uint32(0xC62A))
		Expect(swsp.Op).To(Equal(insts.OpSW))
		Expect(swsp.Rs2).To(Equal(uint8(10)))
		Expect(swsp.Rs1).To(Equal(uint8(2)))
		Expect(swsp.Imm).To(Equal(int32(12)))
	})

	It("should reject reserved shift encodings", func() {
		// c.slli with shamt[5]=1 is reserved on RV32
		_, ok := insts.ExpandCompressed(0x1502)
		Expect(ok).To(BeFalse())
	})

	It("should mark an unexpandable half-word as unknown", func() {
		inst := decoder.DecodeWindow(uint32(0x0000))
		Expect(inst.Op).To(Equal(insts.OpUnknown))
		Expect(inst.Compressed).To(BeTrue())
	})
})
