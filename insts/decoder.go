// Package insts provides RV32 instruction definitions and decoding.
package insts

// Op represents a RISC-V operation.
type Op uint16

// RV32 operations.
const (
	OpUnknown Op = iota

	// RV32I
	OpLUI
	OpAUIPC
	OpJAL
	OpJALR
	OpBEQ
	OpBNE
	OpBLT
	OpBGE
	OpBLTU
	OpBGEU
	OpLB
	OpLH
	OpLW
	OpLBU
	OpLHU
	OpSB
	OpSH
	OpSW
	OpADDI
	OpSLTI
	OpSLTIU
	OpXORI
	OpORI
	OpANDI
	OpSLLI
	OpSRLI
	OpSRAI
	OpADD
	OpSUB
	OpSLL
	OpSLT
	OpSLTU
	OpXOR
	OpSRL
	OpSRA
	OpOR
	OpAND
	OpFENCE
	OpECALL
	OpEBREAK

	// M extension
	OpMUL
	OpMULH
	OpMULHSU
	OpMULHU
	OpDIV
	OpDIVU
	OpREM
	OpREMU

	// A extension (word forms)
	OpLRW
	OpSCW
	OpAMOSWAPW
	OpAMOADDW
	OpAMOXORW
	OpAMOANDW
	OpAMOORW
	OpAMOMINW
	OpAMOMAXW
	OpAMOMINUW
	OpAMOMAXUW

	// F extension (single precision subset)
	OpFLW
	OpFSW
	OpFADDS
	OpFSUBS
	OpFMULS
	OpFDIVS
	OpFSQRTS
	OpFSGNJS
	OpFSGNJNS
	OpFSGNJXS
	OpFMINS
	OpFMAXS
	OpFEQS
	OpFLTS
	OpFLES
	OpFCVTWS
	OpFCVTSW
	OpFMVXW
	OpFMVWX

	// Zicsr
	OpCSRRW
	OpCSRRS
	OpCSRRC
	OpCSRRWI
	OpCSRRSI
	OpCSRRCI

	// Privileged
	OpMRET
	OpWFI

	// Zba
	OpSH1ADD
	OpSH2ADD
	OpSH3ADD

	// Zbs (register forms)
	OpBSET
	OpBCLR
	OpBINV
	OpBEXT

	// Zbb (register-register subset)
	OpANDN
	OpORN
	OpXNOR
	OpMIN
	OpMINU
	OpMAX
	OpMAXU

	// Zicond
	OpCZEROEQZ
	OpCZERONEZ

	numOps
)

// Format represents an instruction encoding format.
type Format uint8

// Instruction formats.
const (
	FormatUnknown Format = iota
	FormatR        // Register-register ALU
	FormatI        // Immediate ALU
	FormatLoad     // Integer load
	FormatStore    // Integer store
	FormatBranch   // Conditional branch
	FormatU        // LUI / AUIPC
	FormatJAL      // Jump and link (PC-relative)
	FormatJALR     // Jump and link register (indirect)
	FormatAMO      // Atomic read-modify-write / LR / SC
	FormatFLoad    // Floating-point load
	FormatFStore   // Floating-point store
	FormatFR       // Floating-point compute / move / compare
	FormatCSR      // Zicsr read-modify-write
	FormatSystem   // ECALL / EBREAK / MRET / WFI
	FormatFence    // FENCE (no-op in this model)
)

// Major opcodes, bits [6:0].
const (
	opcodeLUI     = 0x37
	opcodeAUIPC   = 0x17
	opcodeJAL     = 0x6F
	opcodeJALR    = 0x67
	opcodeBranch  = 0x63
	opcodeLoad    = 0x03
	opcodeStore   = 0x23
	opcodeOpImm   = 0x13
	opcodeOp      = 0x33
	opcodeMiscMem = 0x0F
	opcodeSystem  = 0x73
	opcodeAMO     = 0x2F
	opcodeLoadFP  = 0x07
	opcodeStoreFP = 0x27
	opcodeOpFP    = 0x53
)

// Link registers for call/return classification (x1=ra, x5=t0 alternate link).
func isLinkReg(r uint8) bool {
	return r == 1 || r == 5
}

// Instruction represents a decoded RV32 instruction.
type Instruction struct {
	Raw    uint32 // 32-bit encoding (expanded if compressed)
	Op     Op     // Operation
	Format Format // Encoding format

	Rd  uint8 // Destination register
	Rs1 uint8 // First source register
	Rs2 uint8 // Second source register

	Imm int32  // Sign-extended immediate
	CSR uint16 // CSR address for Zicsr operations

	// FP operand mapping: true when the field addresses the
	// floating-point register file instead of the integer file.
	RdFP  bool
	Rs1FP bool
	Rs2FP bool

	Compressed bool // Expanded from a 16-bit encoding
}

// Size returns the instruction's footprint in the instruction stream.
func (i *Instruction) Size() uint32 {
	if i.Compressed {
		return 2
	}
	return 4
}

// FallThrough returns the address of the next sequential instruction.
func (i *Instruction) FallThrough(pc uint32) uint32 {
	return pc + i.Size()
}

// IsBranch reports whether the instruction is a conditional branch.
func (i *Instruction) IsBranch() bool {
	return i.Format == FormatBranch
}

// IsJump reports whether the instruction is an unconditional jump.
func (i *Instruction) IsJump() bool {
	return i.Format == FormatJAL || i.Format == FormatJALR
}

// IsCall reports whether the instruction pushes a return address
// (jump with a link-register destination).
func (i *Instruction) IsCall() bool {
	return i.IsJump() && isLinkReg(i.Rd)
}

// IsReturn reports whether the instruction pops a return address.
// Per the RISC-V calling hint table: an indirect jump through a link
// register pops, unless it re-links through the same register.
func (i *Instruction) IsReturn() bool {
	if i.Format != FormatJALR || !isLinkReg(i.Rs1) {
		return false
	}
	return !isLinkReg(i.Rd) || i.Rd != i.Rs1
}

// IsLoad reports whether the instruction reads data memory into a register.
func (i *Instruction) IsLoad() bool {
	return i.Format == FormatLoad || i.Format == FormatFLoad
}

// IsStore reports whether the instruction writes data memory.
func (i *Instruction) IsStore() bool {
	return i.Format == FormatStore || i.Format == FormatFStore
}

// IsAMO reports whether the instruction is an atomic memory operation
// (including LR/SC).
func (i *Instruction) IsAMO() bool {
	return i.Format == FormatAMO
}

// WritesIntReg reports whether the instruction writes a non-zero integer
// register.
func (i *Instruction) WritesIntReg() bool {
	if i.RdFP || i.Rd == 0 {
		return false
	}
	switch i.Format {
	case FormatR, FormatI, FormatLoad, FormatU, FormatJAL, FormatJALR,
		FormatAMO, FormatCSR:
		return true
	case FormatFR:
		// Comparisons, int conversions and FP-to-int moves land in
		// the integer file.
		return true
	}
	return false
}

// WritesFPReg reports whether the instruction writes a floating-point
// register.
func (i *Instruction) WritesFPReg() bool {
	return i.RdFP
}

// ReadsIntRs1 reports whether the instruction reads Rs1 from the integer
// register file.
func (i *Instruction) ReadsIntRs1() bool {
	if i.Rs1FP {
		return false
	}
	switch i.Format {
	case FormatR, FormatI, FormatLoad, FormatStore, FormatBranch,
		FormatJALR, FormatAMO, FormatFLoad, FormatFStore:
		return true
	case FormatCSR:
		// Immediate CSR forms carry uimm in the rs1 field.
		return i.Op == OpCSRRW || i.Op == OpCSRRS || i.Op == OpCSRRC
	case FormatFR:
		// Int-to-FP moves and conversions read an integer source.
		return i.Op == OpFMVWX || i.Op == OpFCVTSW
	}
	return false
}

// ReadsIntRs2 reports whether the instruction reads Rs2 from the integer
// register file.
func (i *Instruction) ReadsIntRs2() bool {
	if i.Rs2FP {
		return false
	}
	switch i.Format {
	case FormatR, FormatStore, FormatBranch:
		return true
	case FormatAMO:
		return i.Op != OpLRW
	}
	return false
}

// ReadsFPRs1 reports whether the instruction reads Rs1 from the
// floating-point register file.
func (i *Instruction) ReadsFPRs1() bool {
	return i.Rs1FP
}

// ReadsFPRs2 reports whether the instruction reads Rs2 from the
// floating-point register file.
func (i *Instruction) ReadsFPRs2() bool {
	return i.Rs2FP
}

// Decoder decodes RV32 machine code into instructions.
type Decoder struct{}

// NewDecoder creates a new RV32 instruction decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode decodes a 32-bit RV32 instruction word. Compressed encodings must
// be expanded with ExpandCompressed first. Unrecognized encodings yield
// OpUnknown, which executes as an illegal-instruction exception.
func (d *Decoder) Decode(word uint32) *Instruction {
	inst := &Instruction{Raw: word, Op: OpUnknown, Format: FormatUnknown}

	switch word & 0x7F { // bits [6:0]
	case opcodeLUI:
		d.decodeLUI(word, inst)
	case opcodeAUIPC:
		d.decodeAUIPC(word, inst)
	case opcodeJAL:
		d.decodeJAL(word, inst)
	case opcodeJALR:
		d.decodeJALR(word, inst)
	case opcodeBranch:
		d.decodeBranch(word, inst)
	case opcodeLoad:
		d.decodeLoad(word, inst)
	case opcodeStore:
		d.decodeStore(word, inst)
	case opcodeOpImm:
		d.decodeOpImm(word, inst)
	case opcodeOp:
		d.decodeOp(word, inst)
	case opcodeMiscMem:
		d.decodeMiscMem(word, inst)
	case opcodeSystem:
		d.decodeSystem(word, inst)
	case opcodeAMO:
		d.decodeAMO(word, inst)
	case opcodeLoadFP:
		d.decodeLoadFP(word, inst)
	case opcodeStoreFP:
		d.decodeStoreFP(word, inst)
	case opcodeOpFP:
		d.decodeOpFP(word, inst)
	}

	return inst
}

// Field extraction helpers.

func rdField(word uint32) uint8  { return uint8((word >> 7) & 0x1F) }  // bits [11:7]
func rs1Field(word uint32) uint8 { return uint8((word >> 15) & 0x1F) } // bits [19:15]
func rs2Field(word uint32) uint8 { return uint8((word >> 20) & 0x1F) } // bits [24:20]
func funct3(word uint32) uint32  { return (word >> 12) & 0x7 }         // bits [14:12]
func funct7(word uint32) uint32  { return (word >> 25) & 0x7F }        // bits [31:25]

// immI extracts the sign-extended I-type immediate, bits [31:20].
func immI(word uint32) int32 {
	return int32(word) >> 20
}

// immS extracts the sign-extended S-type immediate, bits [31:25|11:7].
func immS(word uint32) int32 {
	return (int32(word) >> 25 << 5) | int32((word>>7)&0x1F)
}

// immB extracts the sign-extended B-type immediate,
// bits [31|7|30:25|11:8] scaled by 2.
func immB(word uint32) int32 {
	imm := (((word >> 31) & 0x1) << 12) |
		(((word >> 7) & 0x1) << 11) |
		(((word >> 25) & 0x3F) << 5) |
		(((word >> 8) & 0xF) << 1)
	return int32(imm<<19) >> 19
}

// immU extracts the U-type immediate, bits [31:12] already in position.
func immU(word uint32) int32 {
	return int32(word & 0xFFFFF000)
}

// immJ extracts the sign-extended J-type immediate,
// bits [31|19:12|20|30:21] scaled by 2.
func immJ(word uint32) int32 {
	imm := (((word >> 31) & 0x1) << 20) |
		(((word >> 12) & 0xFF) << 12) |
		(((word >> 20) & 0x1) << 11) |
		(((word >> 21) & 0x3FF) << 1)
	return int32(imm<<11) >> 11
}

// decodeLUI decodes LUI.
// Format: imm[31:12] | rd | 0110111
func (d *Decoder) decodeLUI(word uint32, inst *Instruction) {
	inst.Op = OpLUI
	inst.Format = FormatU
	inst.Rd = rdField(word)
	inst.Imm = immU(word)
}

// decodeAUIPC decodes AUIPC.
// Format: imm[31:12] | rd | 0010111
func (d *Decoder) decodeAUIPC(word uint32, inst *Instruction) {
	inst.Op = OpAUIPC
	inst.Format = FormatU
	inst.Rd = rdField(word)
	inst.Imm = immU(word)
}

// decodeJAL decodes JAL.
// Format: imm[20|10:1|11|19:12] | rd | 1101111
func (d *Decoder) decodeJAL(word uint32, inst *Instruction) {
	inst.Op = OpJAL
	inst.Format = FormatJAL
	inst.Rd = rdField(word)
	inst.Imm = immJ(word)
}

// decodeJALR decodes JALR.
// Format: imm[11:0] | rs1 | 000 | rd | 1100111
func (d *Decoder) decodeJALR(word uint32, inst *Instruction) {
	if funct3(word) != 0 {
		return
	}
	inst.Op = OpJALR
	inst.Format = FormatJALR
	inst.Rd = rdField(word)
	inst.Rs1 = rs1Field(word)
	inst.Imm = immI(word)
}

// decodeBranch decodes BEQ/BNE/BLT/BGE/BLTU/BGEU.
// Format: imm[12|10:5] | rs2 | rs1 | funct3 | imm[4:1|11] | 1100011
func (d *Decoder) decodeBranch(word uint32, inst *Instruction) {
	ops := [8]Op{OpBEQ, OpBNE, OpUnknown, OpUnknown, OpBLT, OpBGE, OpBLTU, OpBGEU}
	op := ops[funct3(word)]
	if op == OpUnknown {
		return
	}
	inst.Op = op
	inst.Format = FormatBranch
	inst.Rs1 = rs1Field(word)
	inst.Rs2 = rs2Field(word)
	inst.Imm = immB(word)
}

// decodeLoad decodes LB/LH/LW/LBU/LHU.
// Format: imm[11:0] | rs1 | funct3 | rd | 0000011
func (d *Decoder) decodeLoad(word uint32, inst *Instruction) {
	ops := [8]Op{OpLB, OpLH, OpLW, OpUnknown, OpLBU, OpLHU, OpUnknown, OpUnknown}
	op := ops[funct3(word)]
	if op == OpUnknown {
		return
	}
	inst.Op = op
	inst.Format = FormatLoad
	inst.Rd = rdField(word)
	inst.Rs1 = rs1Field(word)
	inst.Imm = immI(word)
}

// decodeStore decodes SB/SH/SW.
// Format: imm[11:5] | rs2 | rs1 | funct3 | imm[4:0] | 0100011
func (d *Decoder) decodeStore(word uint32, inst *Instruction) {
	ops := [8]Op{OpSB, OpSH, OpSW, OpUnknown, OpUnknown, OpUnknown, OpUnknown, OpUnknown}
	op := ops[funct3(word)]
	if op == OpUnknown {
		return
	}
	inst.Op = op
	inst.Format = FormatStore
	inst.Rs1 = rs1Field(word)
	inst.Rs2 = rs2Field(word)
	inst.Imm = immS(word)
}

// decodeOpImm decodes immediate ALU operations.
// Format: imm[11:0] | rs1 | funct3 | rd | 0010011
func (d *Decoder) decodeOpImm(word uint32, inst *Instruction) {
	inst.Format = FormatI
	inst.Rd = rdField(word)
	inst.Rs1 = rs1Field(word)
	inst.Imm = immI(word)

	switch funct3(word) {
	case 0x0:
		inst.Op = OpADDI
	case 0x2:
		inst.Op = OpSLTI
	case 0x3:
		inst.Op = OpSLTIU
	case 0x4:
		inst.Op = OpXORI
	case 0x6:
		inst.Op = OpORI
	case 0x7:
		inst.Op = OpANDI
	case 0x1: // SLLI: funct7 must be 0
		if funct7(word) != 0x00 {
			inst.Op = OpUnknown
			inst.Format = FormatUnknown
			return
		}
		inst.Op = OpSLLI
		inst.Imm = int32(rs2Field(word)) // shamt, bits [24:20]
	case 0x5: // SRLI/SRAI distinguished by funct7
		switch funct7(word) {
		case 0x00:
			inst.Op = OpSRLI
		case 0x20:
			inst.Op = OpSRAI
		default:
			inst.Op = OpUnknown
			inst.Format = FormatUnknown
			return
		}
		inst.Imm = int32(rs2Field(word)) // shamt, bits [24:20]
	}
}

// rALUOp selects a register-register operation from funct7/funct3.
func rALUOp(f7, f3 uint32) Op {
	type key struct{ f7, f3 uint32 }
	k := key{f7, f3}
	switch k {
	// RV32I
	case key{0x00, 0x0}:
		return OpADD
	case key{0x20, 0x0}:
		return OpSUB
	case key{0x00, 0x1}:
		return OpSLL
	case key{0x00, 0x2}:
		return OpSLT
	case key{0x00, 0x3}:
		return OpSLTU
	case key{0x00, 0x4}:
		return OpXOR
	case key{0x00, 0x5}:
		return OpSRL
	case key{0x20, 0x5}:
		return OpSRA
	case key{0x00, 0x6}:
		return OpOR
	case key{0x00, 0x7}:
		return OpAND
	// M
	case key{0x01, 0x0}:
		return OpMUL
	case key{0x01, 0x1}:
		return OpMULH
	case key{0x01, 0x2}:
		return OpMULHSU
	case key{0x01, 0x3}:
		return OpMULHU
	case key{0x01, 0x4}:
		return OpDIV
	case key{0x01, 0x5}:
		return OpDIVU
	case key{0x01, 0x6}:
		return OpREM
	case key{0x01, 0x7}:
		return OpREMU
	// Zba
	case key{0x10, 0x2}:
		return OpSH1ADD
	case key{0x10, 0x4}:
		return OpSH2ADD
	case key{0x10, 0x6}:
		return OpSH3ADD
	// Zbs
	case key{0x14, 0x1}:
		return OpBSET
	case key{0x24, 0x1}:
		return OpBCLR
	case key{0x34, 0x1}:
		return OpBINV
	case key{0x24, 0x5}:
		return OpBEXT
	// Zbb
	case key{0x20, 0x7}:
		return OpANDN
	case key{0x20, 0x6}:
		return OpORN
	case key{0x20, 0x4}:
		return OpXNOR
	case key{0x05, 0x4}:
		return OpMIN
	case key{0x05, 0x5}:
		return OpMINU
	case key{0x05, 0x6}:
		return OpMAX
	case key{0x05, 0x7}:
		return OpMAXU
	// Zicond
	case key{0x07, 0x5}:
		return OpCZEROEQZ
	case key{0x07, 0x7}:
		return OpCZERONEZ
	}
	return OpUnknown
}

// decodeOp decodes register-register ALU operations.
// Format: funct7 | rs2 | rs1 | funct3 | rd | 0110011
func (d *Decoder) decodeOp(word uint32, inst *Instruction) {
	op := rALUOp(funct7(word), funct3(word))
	if op == OpUnknown {
		return
	}
	inst.Op = op
	inst.Format = FormatR
	inst.Rd = rdField(word)
	inst.Rs1 = rs1Field(word)
	inst.Rs2 = rs2Field(word)
}

// decodeMiscMem decodes FENCE, which this model treats as a no-op.
// Format: fm | pred | succ | rs1 | 000 | rd | 0001111
func (d *Decoder) decodeMiscMem(word uint32, inst *Instruction) {
	if funct3(word) != 0 {
		return
	}
	inst.Op = OpFENCE
	inst.Format = FormatFence
}

// decodeSystem decodes ECALL/EBREAK/MRET/WFI and the Zicsr operations.
// Format: funct12 | rs1 | funct3 | rd | 1110011
func (d *Decoder) decodeSystem(word uint32, inst *Instruction) {
	f3 := funct3(word)
	if f3 == 0 {
		if rdField(word) != 0 || rs1Field(word) != 0 {
			return
		}
		switch word >> 20 { // funct12, bits [31:20]
		case 0x000:
			inst.Op = OpECALL
		case 0x001:
			inst.Op = OpEBREAK
		case 0x302:
			inst.Op = OpMRET
		case 0x105:
			inst.Op = OpWFI
		default:
			return
		}
		inst.Format = FormatSystem
		return
	}

	ops := [8]Op{OpUnknown, OpCSRRW, OpCSRRS, OpCSRRC, OpUnknown, OpCSRRWI, OpCSRRSI, OpCSRRCI}
	op := ops[f3]
	if op == OpUnknown {
		return
	}
	inst.Op = op
	inst.Format = FormatCSR
	inst.Rd = rdField(word)
	inst.Rs1 = rs1Field(word) // register source, or uimm for the I forms
	inst.CSR = uint16(word >> 20)
}

// decodeAMO decodes LR.W/SC.W and the AMO read-modify-write operations.
// Format: funct5 | aq | rl | rs2 | rs1 | 010 | rd | 0101111
func (d *Decoder) decodeAMO(word uint32, inst *Instruction) {
	if funct3(word) != 0x2 { // word width only
		return
	}

	var op Op
	switch word >> 27 { // funct5, bits [31:27]
	case 0x02:
		if rs2Field(word) != 0 {
			return
		}
		op = OpLRW
	case 0x03:
		op = OpSCW
	case 0x01:
		op = OpAMOSWAPW
	case 0x00:
		op = OpAMOADDW
	case 0x04:
		op = OpAMOXORW
	case 0x0C:
		op = OpAMOANDW
	case 0x08:
		op = OpAMOORW
	case 0x10:
		op = OpAMOMINW
	case 0x14:
		op = OpAMOMAXW
	case 0x18:
		op = OpAMOMINUW
	case 0x1C:
		op = OpAMOMAXUW
	default:
		return
	}

	inst.Op = op
	inst.Format = FormatAMO
	inst.Rd = rdField(word)
	inst.Rs1 = rs1Field(word)
	inst.Rs2 = rs2Field(word)
}

// decodeLoadFP decodes FLW.
// Format: imm[11:0] | rs1 | 010 | rd | 0000111
func (d *Decoder) decodeLoadFP(word uint32, inst *Instruction) {
	if funct3(word) != 0x2 {
		return
	}
	inst.Op = OpFLW
	inst.Format = FormatFLoad
	inst.Rd = rdField(word)
	inst.Rs1 = rs1Field(word)
	inst.Imm = immI(word)
	inst.RdFP = true
}

// decodeStoreFP decodes FSW.
// Format: imm[11:5] | rs2 | rs1 | 010 | imm[4:0] | 0100111
func (d *Decoder) decodeStoreFP(word uint32, inst *Instruction) {
	if funct3(word) != 0x2 {
		return
	}
	inst.Op = OpFSW
	inst.Format = FormatFStore
	inst.Rs1 = rs1Field(word)
	inst.Rs2 = rs2Field(word)
	inst.Imm = immS(word)
	inst.Rs2FP = true
}

// decodeOpFP decodes single-precision FP compute, compare, convert and
// move operations.
// Format: funct7 | rs2 | rs1 | rm/funct3 | rd | 1010011
func (d *Decoder) decodeOpFP(word uint32, inst *Instruction) {
	inst.Rd = rdField(word)
	inst.Rs1 = rs1Field(word)
	inst.Rs2 = rs2Field(word)

	// Defaults for the common case: all operands in the FP file.
	inst.RdFP = true
	inst.Rs1FP = true
	inst.Rs2FP = true

	set := func(op Op) {
		inst.Op = op
		inst.Format = FormatFR
	}

	switch funct7(word) {
	case 0x00:
		set(OpFADDS)
	case 0x04:
		set(OpFSUBS)
	case 0x08:
		set(OpFMULS)
	case 0x0C:
		set(OpFDIVS)
	case 0x2C: // FSQRT.S: rs2 must be 0
		if rs2Field(word) != 0 {
			break
		}
		set(OpFSQRTS)
		inst.Rs2FP = false
	case 0x10: // sign injection
		switch funct3(word) {
		case 0x0:
			set(OpFSGNJS)
		case 0x1:
			set(OpFSGNJNS)
		case 0x2:
			set(OpFSGNJXS)
		}
	case 0x14: // min/max
		switch funct3(word) {
		case 0x0:
			set(OpFMINS)
		case 0x1:
			set(OpFMAXS)
		}
	case 0x50: // compares write the integer file
		switch funct3(word) {
		case 0x2:
			set(OpFEQS)
		case 0x1:
			set(OpFLTS)
		case 0x0:
			set(OpFLES)
		}
		inst.RdFP = false
	case 0x60: // FCVT.W.S: FP source, integer destination
		if rs2Field(word) != 0 {
			break
		}
		set(OpFCVTWS)
		inst.RdFP = false
		inst.Rs2FP = false
	case 0x68: // FCVT.S.W: integer source, FP destination
		if rs2Field(word) != 0 {
			break
		}
		set(OpFCVTSW)
		inst.Rs1FP = false
		inst.Rs2FP = false
	case 0x70: // FMV.X.W
		if rs2Field(word) != 0 || funct3(word) != 0 {
			break
		}
		set(OpFMVXW)
		inst.RdFP = false
		inst.Rs2FP = false
	case 0x78: // FMV.W.X
		if rs2Field(word) != 0 || funct3(word) != 0 {
			break
		}
		set(OpFMVWX)
		inst.Rs1FP = false
		inst.Rs2FP = false
	}

	if inst.Op == OpUnknown {
		inst.Format = FormatUnknown
		inst.RdFP = false
		inst.Rs1FP = false
		inst.Rs2FP = false
		inst.Rd = 0
		inst.Rs1 = 0
		inst.Rs2 = 0
	}
}
