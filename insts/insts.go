// Package insts provides RV32 instruction definitions and decoding.
//
// This package implements decoding of RV32 machine code into structured
// instruction representations. It covers:
//   - RV32I base: ALU, loads/stores, branches, jumps, fences, system
//   - M: multiply/divide
//   - A: LR/SC and AMO word forms
//   - F: single-precision load/store, compute, compare, convert, move
//   - Zicsr: CSR read-modify-write
//   - Zba/Zbs/Zbb (register subsets) and Zicond
//   - C: 16-bit compressed encodings via ExpandCompressed
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	inst := decoder.Decode(0x02A00093) // ADDI x1, x0, 42
//	fmt.Printf("Op: %v, Rd: %d, Rs1: %d, Imm: %d\n", inst.Op, inst.Rd, inst.Rs1, inst.Imm)
package insts

var opNames = map[Op]string{
	OpUnknown: "unknown",
	OpLUI:     "lui", OpAUIPC: "auipc", OpJAL: "jal", OpJALR: "jalr",
	OpBEQ: "beq", OpBNE: "bne", OpBLT: "blt", OpBGE: "bge",
	OpBLTU: "bltu", OpBGEU: "bgeu",
	OpLB: "lb", OpLH: "lh", OpLW: "lw", OpLBU: "lbu", OpLHU: "lhu",
	OpSB: "sb", OpSH: "sh", OpSW: "sw",
	OpADDI: "addi", OpSLTI: "slti", OpSLTIU: "sltiu", OpXORI: "xori",
	OpORI: "ori", OpANDI: "andi", OpSLLI: "slli", OpSRLI: "srli",
	OpSRAI: "srai",
	OpADD:  "add", OpSUB: "sub", OpSLL: "sll", OpSLT: "slt",
	OpSLTU: "sltu", OpXOR: "xor", OpSRL: "srl", OpSRA: "sra",
	OpOR: "or", OpAND: "and",
	OpFENCE: "fence", OpECALL: "ecall", OpEBREAK: "ebreak",
	OpMUL: "mul", OpMULH: "mulh", OpMULHSU: "mulhsu", OpMULHU: "mulhu",
	OpDIV: "div", OpDIVU: "divu", OpREM: "rem", OpREMU: "remu",
	OpLRW: "lr.w", OpSCW: "sc.w", OpAMOSWAPW: "amoswap.w",
	OpAMOADDW: "amoadd.w", OpAMOXORW: "amoxor.w", OpAMOANDW: "amoand.w",
	OpAMOORW: "amoor.w", OpAMOMINW: "amomin.w", OpAMOMAXW: "amomax.w",
	OpAMOMINUW: "amominu.w", OpAMOMAXUW: "amomaxu.w",
	OpFLW: "flw", OpFSW: "fsw", OpFADDS: "fadd.s", OpFSUBS: "fsub.s",
	OpFMULS: "fmul.s", OpFDIVS: "fdiv.s", OpFSQRTS: "fsqrt.s",
	OpFSGNJS: "fsgnj.s", OpFSGNJNS: "fsgnjn.s", OpFSGNJXS: "fsgnjx.s",
	OpFMINS: "fmin.s", OpFMAXS: "fmax.s",
	OpFEQS: "feq.s", OpFLTS: "flt.s", OpFLES: "fle.s",
	OpFCVTWS: "fcvt.w.s", OpFCVTSW: "fcvt.s.w",
	OpFMVXW: "fmv.x.w", OpFMVWX: "fmv.w.x",
	OpCSRRW: "csrrw", OpCSRRS: "csrrs", OpCSRRC: "csrrc",
	OpCSRRWI: "csrrwi", OpCSRRSI: "csrrsi", OpCSRRCI: "csrrci",
	OpMRET: "mret", OpWFI: "wfi",
	OpSH1ADD: "sh1add", OpSH2ADD: "sh2add", OpSH3ADD: "sh3add",
	OpBSET: "bset", OpBCLR: "bclr", OpBINV: "binv", OpBEXT: "bext",
	OpANDN: "andn", OpORN: "orn", OpXNOR: "xnor",
	OpMIN: "min", OpMINU: "minu", OpMAX: "max", OpMAXU: "maxu",
	OpCZEROEQZ: "czero.eqz", OpCZERONEZ: "czero.nez",
}

// String returns the assembler mnemonic for the operation.
func (o Op) String() string {
	if name, ok := opNames[o]; ok {
		return name
	}
	return "unknown"
}
