package insts

// RVC expansion. Every 16-bit encoding maps to exactly one 32-bit
// equivalent, so the expander builds the replacement with the Encode
// helpers and lets the regular decoder classify it.

// IsCompressed reports whether the low half of a fetch window holds a
// 16-bit encoding (bits [1:0] != 11).
func IsCompressed(half uint16) bool {
	return half&0x3 != 0x3
}

// Compressed register fields map 3 bits onto x8-x15.

func creg(bits uint16) uint8 { return uint8(bits&0x7) + 8 }

func crdRs1(half uint16) uint8 { return uint8((half >> 7) & 0x1F) } // bits [11:7]
func crs2(half uint16) uint8   { return uint8((half >> 2) & 0x1F) } // bits [6:2]

func crdPrime(half uint16) uint8  { return creg(half >> 2) } // bits [4:2]
func crs1Prime(half uint16) uint8 { return creg(half >> 7) } // bits [9:7]

// ciImm extracts the sign-extended CI immediate, bits [12|6:2].
func ciImm(half uint16) int32 {
	imm := (uint32(half>>12)&0x1)<<5 | (uint32(half>>2) & 0x1F)
	return int32(imm<<26) >> 26
}

// cjOffset extracts the sign-extended CJ jump offset,
// bits [12|8|10:9|6|7|2|11:3] mapping to offset[11|10|9:8|7|6|5|4|3:1].
func cjOffset(half uint16) int32 {
	h := uint32(half)
	imm := ((h >> 12) & 0x1 << 11) |
		((h >> 11) & 0x1 << 4) |
		((h >> 9) & 0x3 << 8) |
		((h >> 8) & 0x1 << 10) |
		((h >> 7) & 0x1 << 6) |
		((h >> 6) & 0x1 << 7) |
		((h >> 3) & 0x7 << 1) |
		((h >> 2) & 0x1 << 5)
	return int32(imm<<20) >> 20
}

// cbOffset extracts the sign-extended CB branch offset,
// bits [12|11:10|6:5|4:3|2] mapping to offset[8|4:3|7:6|2:1|5].
func cbOffset(half uint16) int32 {
	h := uint32(half)
	imm := ((h >> 12) & 0x1 << 8) |
		((h >> 10) & 0x3 << 3) |
		((h >> 5) & 0x3 << 6) |
		((h >> 3) & 0x3 << 1) |
		((h >> 2) & 0x1 << 5)
	return int32(imm<<23) >> 23
}

// ExpandCompressed expands a 16-bit encoding to its 32-bit equivalent.
// It returns ok=false for encodings outside the supported subset and for
// the all-zero defined-illegal encoding.
func ExpandCompressed(half uint16) (uint32, bool) {
	if half == 0 {
		return 0, false
	}

	funct3 := (half >> 13) & 0x7

	switch half & 0x3 { // quadrant, bits [1:0]
	case 0x0:
		return expandQuadrant0(half, funct3)
	case 0x1:
		return expandQuadrant1(half, funct3)
	case 0x2:
		return expandQuadrant2(half, funct3)
	}
	return 0, false
}

func expandQuadrant0(half, funct3 uint16) (uint32, bool) {
	h := uint32(half)

	switch funct3 {
	case 0x0: // C.ADDI4SPN: addi rd', x2, nzuimm
		// nzuimm[5:4|9:6|2|3] = inst[12:11|10:7|6|5]
		uimm := ((h >> 11) & 0x3 << 4) |
			((h >> 7) & 0xF << 6) |
			((h >> 6) & 0x1 << 2) |
			((h >> 5) & 0x1 << 3)
		if uimm == 0 {
			return 0, false
		}
		return EncodeADDI(crdPrime(half), 2, int32(uimm)), true

	case 0x2: // C.LW: lw rd', offset(rs1')
		// offset[5:3|2|6] = inst[12:10|6|5]
		uimm := ((h >> 10) & 0x7 << 3) |
			((h >> 6) & 0x1 << 2) |
			((h >> 5) & 0x1 << 6)
		return EncodeLW(crdPrime(half), crs1Prime(half), int32(uimm)), true

	case 0x6: // C.SW: sw rs2', offset(rs1')
		uimm := ((h >> 10) & 0x7 << 3) |
			((h >> 6) & 0x1 << 2) |
			((h >> 5) & 0x1 << 6)
		return EncodeSW(crdPrime(half), crs1Prime(half), int32(uimm)), true
	}
	return 0, false
}

func expandQuadrant1(half, funct3 uint16) (uint32, bool) {
	h := uint32(half)
	rd := crdRs1(half)

	switch funct3 {
	case 0x0: // C.NOP / C.ADDI: addi rd, rd, nzimm
		return EncodeADDI(rd, rd, ciImm(half)), true

	case 0x1: // C.JAL (RV32): jal x1, offset
		return EncodeJAL(1, cjOffset(half)), true

	case 0x2: // C.LI: addi rd, x0, imm
		return EncodeADDI(rd, 0, ciImm(half)), true

	case 0x3:
		if rd == 2 {
			// C.ADDI16SP: addi x2, x2, nzimm
			// nzimm[9|4|6|8:7|5] = inst[12|6|5|4:3|2]
			imm := ((h >> 12) & 0x1 << 9) |
				((h >> 6) & 0x1 << 4) |
				((h >> 5) & 0x1 << 6) |
				((h >> 3) & 0x3 << 7) |
				((h >> 2) & 0x1 << 5)
			simm := int32(imm<<22) >> 22
			if simm == 0 {
				return 0, false
			}
			return EncodeADDI(2, 2, simm), true
		}
		// C.LUI: lui rd, nzimm
		// nzimm[17|16:12] = inst[12|6:2]
		imm := ((h >> 12) & 0x1 << 17) | ((h >> 2) & 0x1F << 12)
		simm := int32(imm<<14) >> 14
		if simm == 0 {
			return 0, false
		}
		return EncodeLUI(rd, simm), true

	case 0x4:
		rdp := crs1Prime(half)
		// funct2 in bits [11:10] selects the ALU operation.
		switch (half >> 10) & 0x3 {
		case 0x0: // C.SRLI
			if (half>>12)&0x1 != 0 {
				return 0, false // shamt[5] reserved on RV32
			}
			return EncodeSRLI(rdp, rdp, uint8((half>>2)&0x1F)), true
		case 0x1: // C.SRAI
			if (half>>12)&0x1 != 0 {
				return 0, false
			}
			return EncodeSRAI(rdp, rdp, uint8((half>>2)&0x1F)), true
		case 0x2: // C.ANDI
			return EncodeANDI(rdp, rdp, ciImm(half)), true
		case 0x3:
			if (half>>12)&0x1 != 0 {
				return 0, false // RV64 C.SUBW/C.ADDW
			}
			rs2p := crdPrime(half)
			switch (half >> 5) & 0x3 { // bits [6:5]
			case 0x0:
				return EncodeSUB(rdp, rdp, rs2p), true
			case 0x1:
				return EncodeXOR(rdp, rdp, rs2p), true
			case 0x2:
				return EncodeOR(rdp, rdp, rs2p), true
			case 0x3:
				return EncodeAND(rdp, rdp, rs2p), true
			}
		}

	case 0x5: // C.J: jal x0, offset
		return EncodeJAL(0, cjOffset(half)), true

	case 0x6: // C.BEQZ: beq rs1', x0, offset
		return EncodeBEQ(crs1Prime(half), 0, cbOffset(half)), true

	case 0x7: // C.BNEZ: bne rs1', x0, offset
		return EncodeBNE(crs1Prime(half), 0, cbOffset(half)), true
	}
	return 0, false
}

func expandQuadrant2(half, funct3 uint16) (uint32, bool) {
	h := uint32(half)
	rd := crdRs1(half)
	rs2 := crs2(half)

	switch funct3 {
	case 0x0: // C.SLLI: slli rd, rd, shamt
		if (half>>12)&0x1 != 0 {
			return 0, false // shamt[5] reserved on RV32
		}
		return EncodeSLLI(rd, rd, uint8((half>>2)&0x1F)), true

	case 0x2: // C.LWSP: lw rd, offset(x2)
		if rd == 0 {
			return 0, false
		}
		// offset[5|4:2|7:6] = inst[12|6:4|3:2]
		uimm := ((h >> 12) & 0x1 << 5) |
			((h >> 4) & 0x7 << 2) |
			((h >> 2) & 0x3 << 6)
		return EncodeLW(rd, 2, int32(uimm)), true

	case 0x4:
		if (half>>12)&0x1 == 0 {
			if rs2 == 0 {
				// C.JR: jalr x0, 0(rs1)
				if rd == 0 {
					return 0, false
				}
				return EncodeJALR(0, rd, 0), true
			}
			// C.MV: add rd, x0, rs2
			return EncodeADD(rd, 0, rs2), true
		}
		if rd == 0 && rs2 == 0 {
			return EncodeEBREAK(), true // C.EBREAK
		}
		if rs2 == 0 {
			// C.JALR: jalr x1, 0(rs1)
			return EncodeJALR(1, rd, 0), true
		}
		// C.ADD: add rd, rd, rs2
		return EncodeADD(rd, rd, rs2), true

	case 0x6: // C.SWSP: sw rs2, offset(x2)
		// offset[5:2|7:6] = inst[12:9|8:7]
		uimm := ((h >> 9) & 0xF << 2) |
			((h >> 7) & 0x3 << 6)
		return EncodeSW(rs2, 2, int32(uimm)), true
	}
	return 0, false
}

// DecodeWindow decodes the instruction at the start of a 32-bit fetch
// window: either a 16-bit compressed encoding in the low half or a full
// 32-bit word. Expanded instructions keep Compressed=true so that
// fall-through addresses advance by 2.
func (d *Decoder) DecodeWindow(window uint32) *Instruction {
	if !IsCompressed(uint16(window)) {
		return d.Decode(window)
	}

	word, ok := ExpandCompressed(uint16(window))
	if !ok {
		return &Instruction{
			Raw:        window & 0xFFFF,
			Op:         OpUnknown,
			Format:     FormatUnknown,
			Compressed: true,
		}
	}

	inst := d.Decode(word)
	inst.Compressed = true
	return inst
}
