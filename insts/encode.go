package insts

// Instruction word builders used by the compressed-instruction expander,
// test programs and benchmarks. Arguments follow assembler operand order:
// loads are (rd, rs1, offset), stores are (rs2, rs1, offset) for
// "sw rs2, offset(rs1)".

// encodeR builds funct7 | rs2 | rs1 | funct3 | rd | opcode.
func encodeR(opcode, f3, f7 uint32, rd, rs1, rs2 uint8) uint32 {
	return f7<<25 | uint32(rs2)<<20 | uint32(rs1)<<15 | f3<<12 |
		uint32(rd)<<7 | opcode
}

// encodeI builds imm[11:0] | rs1 | funct3 | rd | opcode.
func encodeI(opcode, f3 uint32, rd, rs1 uint8, imm int32) uint32 {
	return uint32(imm)&0xFFF<<20 | uint32(rs1)<<15 | f3<<12 |
		uint32(rd)<<7 | opcode
}

// encodeS builds imm[11:5] | rs2 | rs1 | funct3 | imm[4:0] | opcode.
func encodeS(opcode, f3 uint32, rs1, rs2 uint8, imm int32) uint32 {
	u := uint32(imm)
	return (u>>5)&0x7F<<25 | uint32(rs2)<<20 | uint32(rs1)<<15 | f3<<12 |
		(u&0x1F)<<7 | opcode
}

// encodeB builds imm[12|10:5] | rs2 | rs1 | funct3 | imm[4:1|11] | opcode.
func encodeB(opcode, f3 uint32, rs1, rs2 uint8, offset int32) uint32 {
	u := uint32(offset)
	return (u>>12)&0x1<<31 | (u>>5)&0x3F<<25 | uint32(rs2)<<20 |
		uint32(rs1)<<15 | f3<<12 | (u>>1)&0xF<<8 | (u>>11)&0x1<<7 | opcode
}

// encodeU builds imm[31:12] | rd | opcode.
func encodeU(opcode uint32, rd uint8, imm int32) uint32 {
	return uint32(imm)&0xFFFFF000 | uint32(rd)<<7 | opcode
}

// encodeJ builds imm[20|10:1|11|19:12] | rd | opcode.
func encodeJ(opcode uint32, rd uint8, offset int32) uint32 {
	u := uint32(offset)
	return (u>>20)&0x1<<31 | (u>>1)&0x3FF<<21 | (u>>11)&0x1<<20 |
		(u>>12)&0xFF<<12 | uint32(rd)<<7 | opcode
}

// EncodeLUI builds "lui rd, imm" where imm supplies bits [31:12].
func EncodeLUI(rd uint8, imm int32) uint32 { return encodeU(opcodeLUI, rd, imm) }

// EncodeAUIPC builds "auipc rd, imm" where imm supplies bits [31:12].
func EncodeAUIPC(rd uint8, imm int32) uint32 { return encodeU(opcodeAUIPC, rd, imm) }

// EncodeJAL builds "jal rd, offset" with a byte offset from the jump.
func EncodeJAL(rd uint8, offset int32) uint32 { return encodeJ(opcodeJAL, rd, offset) }

// EncodeJALR builds "jalr rd, imm(rs1)".
func EncodeJALR(rd, rs1 uint8, imm int32) uint32 {
	return encodeI(opcodeJALR, 0x0, rd, rs1, imm)
}

// Branch builders: "bxx rs1, rs2, offset" with a byte offset.

func EncodeBEQ(rs1, rs2 uint8, offset int32) uint32 {
	return encodeB(opcodeBranch, 0x0, rs1, rs2, offset)
}

func EncodeBNE(rs1, rs2 uint8, offset int32) uint32 {
	return encodeB(opcodeBranch, 0x1, rs1, rs2, offset)
}

func EncodeBLT(rs1, rs2 uint8, offset int32) uint32 {
	return encodeB(opcodeBranch, 0x4, rs1, rs2, offset)
}

func EncodeBGE(rs1, rs2 uint8, offset int32) uint32 {
	return encodeB(opcodeBranch, 0x5, rs1, rs2, offset)
}

func EncodeBLTU(rs1, rs2 uint8, offset int32) uint32 {
	return encodeB(opcodeBranch, 0x6, rs1, rs2, offset)
}

func EncodeBGEU(rs1, rs2 uint8, offset int32) uint32 {
	return encodeB(opcodeBranch, 0x7, rs1, rs2, offset)
}

// Load builders: "lx rd, offset(rs1)".

func EncodeLB(rd, rs1 uint8, offset int32) uint32 {
	return encodeI(opcodeLoad, 0x0, rd, rs1, offset)
}

func EncodeLH(rd, rs1 uint8, offset int32) uint32 {
	return encodeI(opcodeLoad, 0x1, rd, rs1, offset)
}

func EncodeLW(rd, rs1 uint8, offset int32) uint32 {
	return encodeI(opcodeLoad, 0x2, rd, rs1, offset)
}

func EncodeLBU(rd, rs1 uint8, offset int32) uint32 {
	return encodeI(opcodeLoad, 0x4, rd, rs1, offset)
}

func EncodeLHU(rd, rs1 uint8, offset int32) uint32 {
	return encodeI(opcodeLoad, 0x5, rd, rs1, offset)
}

// Store builders: "sx rs2, offset(rs1)".

func EncodeSB(rs2, rs1 uint8, offset int32) uint32 {
	return encodeS(opcodeStore, 0x0, rs1, rs2, offset)
}

func EncodeSH(rs2, rs1 uint8, offset int32) uint32 {
	return encodeS(opcodeStore, 0x1, rs1, rs2, offset)
}

func EncodeSW(rs2, rs1 uint8, offset int32) uint32 {
	return encodeS(opcodeStore, 0x2, rs1, rs2, offset)
}

// Immediate ALU builders: "xxxi rd, rs1, imm".

func EncodeADDI(rd, rs1 uint8, imm int32) uint32 {
	return encodeI(opcodeOpImm, 0x0, rd, rs1, imm)
}

func EncodeSLTI(rd, rs1 uint8, imm int32) uint32 {
	return encodeI(opcodeOpImm, 0x2, rd, rs1, imm)
}

func EncodeSLTIU(rd, rs1 uint8, imm int32) uint32 {
	return encodeI(opcodeOpImm, 0x3, rd, rs1, imm)
}

func EncodeXORI(rd, rs1 uint8, imm int32) uint32 {
	return encodeI(opcodeOpImm, 0x4, rd, rs1, imm)
}

func EncodeORI(rd, rs1 uint8, imm int32) uint32 {
	return encodeI(opcodeOpImm, 0x6, rd, rs1, imm)
}

func EncodeANDI(rd, rs1 uint8, imm int32) uint32 {
	return encodeI(opcodeOpImm, 0x7, rd, rs1, imm)
}

func EncodeSLLI(rd, rs1, shamt uint8) uint32 {
	return encodeI(opcodeOpImm, 0x1, rd, rs1, int32(shamt&0x1F))
}

func EncodeSRLI(rd, rs1, shamt uint8) uint32 {
	return encodeI(opcodeOpImm, 0x5, rd, rs1, int32(shamt&0x1F))
}

func EncodeSRAI(rd, rs1, shamt uint8) uint32 {
	return encodeI(opcodeOpImm, 0x5, rd, rs1, int32(shamt&0x1F)|0x400)
}

// Register ALU builders: "xxx rd, rs1, rs2".

func EncodeADD(rd, rs1, rs2 uint8) uint32 { return encodeR(opcodeOp, 0x0, 0x00, rd, rs1, rs2) }
func EncodeSUB(rd, rs1, rs2 uint8) uint32 { return encodeR(opcodeOp, 0x0, 0x20, rd, rs1, rs2) }
func EncodeSLL(rd, rs1, rs2 uint8) uint32 { return encodeR(opcodeOp, 0x1, 0x00, rd, rs1, rs2) }
func EncodeSLT(rd, rs1, rs2 uint8) uint32 { return encodeR(opcodeOp, 0x2, 0x00, rd, rs1, rs2) }
func EncodeSLTU(rd, rs1, rs2 uint8) uint32 { return encodeR(opcodeOp, 0x3, 0x00, rd, rs1, rs2) }
func EncodeXOR(rd, rs1, rs2 uint8) uint32 { return encodeR(opcodeOp, 0x4, 0x00, rd, rs1, rs2) }
func EncodeSRL(rd, rs1, rs2 uint8) uint32 { return encodeR(opcodeOp, 0x5, 0x00, rd, rs1, rs2) }
func EncodeSRA(rd, rs1, rs2 uint8) uint32 { return encodeR(opcodeOp, 0x5, 0x20, rd, rs1, rs2) }
func EncodeOR(rd, rs1, rs2 uint8) uint32 { return encodeR(opcodeOp, 0x6, 0x00, rd, rs1, rs2) }
func EncodeAND(rd, rs1, rs2 uint8) uint32 { return encodeR(opcodeOp, 0x7, 0x00, rd, rs1, rs2) }

// M extension builders.

func EncodeMUL(rd, rs1, rs2 uint8) uint32 { return encodeR(opcodeOp, 0x0, 0x01, rd, rs1, rs2) }
func EncodeMULH(rd, rs1, rs2 uint8) uint32 { return encodeR(opcodeOp, 0x1, 0x01, rd, rs1, rs2) }
func EncodeMULHSU(rd, rs1, rs2 uint8) uint32 { return encodeR(opcodeOp, 0x2, 0x01, rd, rs1, rs2) }
func EncodeMULHU(rd, rs1, rs2 uint8) uint32 { return encodeR(opcodeOp, 0x3, 0x01, rd, rs1, rs2) }
func EncodeDIV(rd, rs1, rs2 uint8) uint32 { return encodeR(opcodeOp, 0x4, 0x01, rd, rs1, rs2) }
func EncodeDIVU(rd, rs1, rs2 uint8) uint32 { return encodeR(opcodeOp, 0x5, 0x01, rd, rs1, rs2) }
func EncodeREM(rd, rs1, rs2 uint8) uint32 { return encodeR(opcodeOp, 0x6, 0x01, rd, rs1, rs2) }
func EncodeREMU(rd, rs1, rs2 uint8) uint32 { return encodeR(opcodeOp, 0x7, 0x01, rd, rs1, rs2) }

// Zba/Zbs/Zbb/Zicond builders.

func EncodeSH1ADD(rd, rs1, rs2 uint8) uint32 { return encodeR(opcodeOp, 0x2, 0x10, rd, rs1, rs2) }
func EncodeSH2ADD(rd, rs1, rs2 uint8) uint32 { return encodeR(opcodeOp, 0x4, 0x10, rd, rs1, rs2) }
func EncodeSH3ADD(rd, rs1, rs2 uint8) uint32 { return encodeR(opcodeOp, 0x6, 0x10, rd, rs1, rs2) }
func EncodeBSET(rd, rs1, rs2 uint8) uint32 { return encodeR(opcodeOp, 0x1, 0x14, rd, rs1, rs2) }
func EncodeBCLR(rd, rs1, rs2 uint8) uint32 { return encodeR(opcodeOp, 0x1, 0x24, rd, rs1, rs2) }
func EncodeBINV(rd, rs1, rs2 uint8) uint32 { return encodeR(opcodeOp, 0x1, 0x34, rd, rs1, rs2) }
func EncodeBEXT(rd, rs1, rs2 uint8) uint32 { return encodeR(opcodeOp, 0x5, 0x24, rd, rs1, rs2) }
func EncodeANDN(rd, rs1, rs2 uint8) uint32 { return encodeR(opcodeOp, 0x7, 0x20, rd, rs1, rs2) }
func EncodeORN(rd, rs1, rs2 uint8) uint32 { return encodeR(opcodeOp, 0x6, 0x20, rd, rs1, rs2) }
func EncodeXNOR(rd, rs1, rs2 uint8) uint32 { return encodeR(opcodeOp, 0x4, 0x20, rd, rs1, rs2) }
func EncodeMIN(rd, rs1, rs2 uint8) uint32 { return encodeR(opcodeOp, 0x4, 0x05, rd, rs1, rs2) }
func EncodeMINU(rd, rs1, rs2 uint8) uint32 { return encodeR(opcodeOp, 0x5, 0x05, rd, rs1, rs2) }
func EncodeMAX(rd, rs1, rs2 uint8) uint32 { return encodeR(opcodeOp, 0x6, 0x05, rd, rs1, rs2) }
func EncodeMAXU(rd, rs1, rs2 uint8) uint32 { return encodeR(opcodeOp, 0x7, 0x05, rd, rs1, rs2) }

func EncodeCZEROEQZ(rd, rs1, rs2 uint8) uint32 { return encodeR(opcodeOp, 0x5, 0x07, rd, rs1, rs2) }
func EncodeCZERONEZ(rd, rs1, rs2 uint8) uint32 { return encodeR(opcodeOp, 0x7, 0x07, rd, rs1, rs2) }

// System builders.

func EncodeFENCE() uint32 { return encodeI(opcodeMiscMem, 0x0, 0, 0, 0x0FF) }
func EncodeECALL() uint32 { return encodeI(opcodeSystem, 0x0, 0, 0, 0x000) }
func EncodeEBREAK() uint32 { return encodeI(opcodeSystem, 0x0, 0, 0, 0x001) }
func EncodeMRET() uint32 { return encodeI(opcodeSystem, 0x0, 0, 0, 0x302) }
func EncodeWFI() uint32 { return encodeI(opcodeSystem, 0x0, 0, 0, 0x105) }

// EncodeNOP builds the canonical no-op "addi x0, x0, 0".
func EncodeNOP() uint32 { return EncodeADDI(0, 0, 0) }

// Zicsr builders: register forms take rs1, immediate forms take a 5-bit uimm.

func EncodeCSRRW(rd uint8, csr uint16, rs1 uint8) uint32 {
	return encodeI(opcodeSystem, 0x1, rd, rs1, int32(csr))
}

func EncodeCSRRS(rd uint8, csr uint16, rs1 uint8) uint32 {
	return encodeI(opcodeSystem, 0x2, rd, rs1, int32(csr))
}

func EncodeCSRRC(rd uint8, csr uint16, rs1 uint8) uint32 {
	return encodeI(opcodeSystem, 0x3, rd, rs1, int32(csr))
}

func EncodeCSRRWI(rd uint8, csr uint16, uimm uint8) uint32 {
	return encodeI(opcodeSystem, 0x5, rd, uimm&0x1F, int32(csr))
}

func EncodeCSRRSI(rd uint8, csr uint16, uimm uint8) uint32 {
	return encodeI(opcodeSystem, 0x6, rd, uimm&0x1F, int32(csr))
}

func EncodeCSRRCI(rd uint8, csr uint16, uimm uint8) uint32 {
	return encodeI(opcodeSystem, 0x7, rd, uimm&0x1F, int32(csr))
}

// A extension builders: "amoxxx.w rd, rs2, (rs1)".

func encodeAMO(funct5 uint32, rd, rs1, rs2 uint8) uint32 {
	return encodeR(opcodeAMO, 0x2, funct5<<2, rd, rs1, rs2)
}

func EncodeLRW(rd, rs1 uint8) uint32 { return encodeAMO(0x02, rd, rs1, 0) }
func EncodeSCW(rd, rs2, rs1 uint8) uint32 { return encodeAMO(0x03, rd, rs1, rs2) }
func EncodeAMOSWAPW(rd, rs2, rs1 uint8) uint32 { return encodeAMO(0x01, rd, rs1, rs2) }
func EncodeAMOADDW(rd, rs2, rs1 uint8) uint32 { return encodeAMO(0x00, rd, rs1, rs2) }
func EncodeAMOXORW(rd, rs2, rs1 uint8) uint32 { return encodeAMO(0x04, rd, rs1, rs2) }
func EncodeAMOANDW(rd, rs2, rs1 uint8) uint32 { return encodeAMO(0x0C, rd, rs1, rs2) }
func EncodeAMOORW(rd, rs2, rs1 uint8) uint32 { return encodeAMO(0x08, rd, rs1, rs2) }
func EncodeAMOMINW(rd, rs2, rs1 uint8) uint32 { return encodeAMO(0x10, rd, rs1, rs2) }
func EncodeAMOMAXW(rd, rs2, rs1 uint8) uint32 { return encodeAMO(0x14, rd, rs1, rs2) }
func EncodeAMOMINUW(rd, rs2, rs1 uint8) uint32 { return encodeAMO(0x18, rd, rs1, rs2) }
func EncodeAMOMAXUW(rd, rs2, rs1 uint8) uint32 { return encodeAMO(0x1C, rd, rs1, rs2) }

// F extension builders.

func EncodeFLW(rd, rs1 uint8, offset int32) uint32 {
	return encodeI(opcodeLoadFP, 0x2, rd, rs1, offset)
}

func EncodeFSW(rs2, rs1 uint8, offset int32) uint32 {
	return encodeS(opcodeStoreFP, 0x2, rs1, rs2, offset)
}

func EncodeFADDS(rd, rs1, rs2 uint8) uint32 { return encodeR(opcodeOpFP, 0x0, 0x00, rd, rs1, rs2) }
func EncodeFSUBS(rd, rs1, rs2 uint8) uint32 { return encodeR(opcodeOpFP, 0x0, 0x04, rd, rs1, rs2) }
func EncodeFMULS(rd, rs1, rs2 uint8) uint32 { return encodeR(opcodeOpFP, 0x0, 0x08, rd, rs1, rs2) }
func EncodeFDIVS(rd, rs1, rs2 uint8) uint32 { return encodeR(opcodeOpFP, 0x0, 0x0C, rd, rs1, rs2) }
func EncodeFSQRTS(rd, rs1 uint8) uint32 { return encodeR(opcodeOpFP, 0x0, 0x2C, rd, rs1, 0) }
func EncodeFSGNJS(rd, rs1, rs2 uint8) uint32 { return encodeR(opcodeOpFP, 0x0, 0x10, rd, rs1, rs2) }
func EncodeFSGNJNS(rd, rs1, rs2 uint8) uint32 {
	return encodeR(opcodeOpFP, 0x1, 0x10, rd, rs1, rs2)
}
func EncodeFSGNJXS(rd, rs1, rs2 uint8) uint32 {
	return encodeR(opcodeOpFP, 0x2, 0x10, rd, rs1, rs2)
}
func EncodeFMINS(rd, rs1, rs2 uint8) uint32 { return encodeR(opcodeOpFP, 0x0, 0x14, rd, rs1, rs2) }
func EncodeFMAXS(rd, rs1, rs2 uint8) uint32 { return encodeR(opcodeOpFP, 0x1, 0x14, rd, rs1, rs2) }
func EncodeFEQS(rd, rs1, rs2 uint8) uint32 { return encodeR(opcodeOpFP, 0x2, 0x50, rd, rs1, rs2) }
func EncodeFLTS(rd, rs1, rs2 uint8) uint32 { return encodeR(opcodeOpFP, 0x1, 0x50, rd, rs1, rs2) }
func EncodeFLES(rd, rs1, rs2 uint8) uint32 { return encodeR(opcodeOpFP, 0x0, 0x50, rd, rs1, rs2) }
func EncodeFCVTWS(rd, rs1 uint8) uint32 { return encodeR(opcodeOpFP, 0x0, 0x60, rd, rs1, 0) }
func EncodeFCVTSW(rd, rs1 uint8) uint32 { return encodeR(opcodeOpFP, 0x0, 0x68, rd, rs1, 0) }
func EncodeFMVXW(rd, rs1 uint8) uint32 { return encodeR(opcodeOpFP, 0x0, 0x70, rd, rs1, 0) }
func EncodeFMVWX(rd, rs1 uint8) uint32 { return encodeR(opcodeOpFP, 0x0, 0x78, rd, rs1, 0) }
