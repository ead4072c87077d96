package emu

import (
	"math"

	"github.com/twosigma/frost-sub002/insts"
)

// IntALU computes a single-cycle integer operation. The b operand is
// the rs2 value for register forms and the sign-extended immediate for
// immediate forms; shifts use only the low five bits of b.
func IntALU(op insts.Op, a, b uint32) uint32 {
	switch op {
	case insts.OpADD, insts.OpADDI:
		return a + b
	case insts.OpSUB:
		return a - b
	case insts.OpSLL, insts.OpSLLI:
		return a << (b & 31)
	case insts.OpSRL, insts.OpSRLI:
		return a >> (b & 31)
	case insts.OpSRA, insts.OpSRAI:
		return uint32(int32(a) >> (b & 31))
	case insts.OpSLT, insts.OpSLTI:
		return boolBit(int32(a) < int32(b))
	case insts.OpSLTU, insts.OpSLTIU:
		return boolBit(a < b)
	case insts.OpXOR, insts.OpXORI:
		return a ^ b
	case insts.OpOR, insts.OpORI:
		return a | b
	case insts.OpAND, insts.OpANDI:
		return a & b

	// Zba shifted adds. a is the index operand (rs1), b the base.
	case insts.OpSH1ADD:
		return (a << 1) + b
	case insts.OpSH2ADD:
		return (a << 2) + b
	case insts.OpSH3ADD:
		return (a << 3) + b

	// Zbb logic and min/max.
	case insts.OpANDN:
		return a &^ b
	case insts.OpORN:
		return a | ^b
	case insts.OpXNOR:
		return ^(a ^ b)
	case insts.OpMIN:
		if int32(a) < int32(b) {
			return a
		}
		return b
	case insts.OpMAX:
		if int32(a) > int32(b) {
			return a
		}
		return b
	case insts.OpMINU:
		if a < b {
			return a
		}
		return b
	case insts.OpMAXU:
		if a > b {
			return a
		}
		return b

	// Zbs single-bit operations.
	case insts.OpBSET:
		return a | 1<<(b&31)
	case insts.OpBCLR:
		return a &^ (1 << (b & 31))
	case insts.OpBINV:
		return a ^ 1<<(b&31)
	case insts.OpBEXT:
		return (a >> (b & 31)) & 1

	// Zicond conditional zeroing.
	case insts.OpCZEROEQZ:
		if b == 0 {
			return 0
		}
		return a
	case insts.OpCZERONEZ:
		if b != 0 {
			return 0
		}
		return a
	}
	return 0
}

// MulDiv computes an M-extension operation. Division follows the RV32
// convention: divide by zero yields all ones for the quotient and the
// dividend for the remainder, and MinInt32/-1 wraps without trapping.
func MulDiv(op insts.Op, a, b uint32) uint32 {
	switch op {
	case insts.OpMUL:
		return a * b
	case insts.OpMULH:
		return uint32((int64(int32(a)) * int64(int32(b))) >> 32)
	case insts.OpMULHSU:
		return uint32((int64(int32(a)) * int64(b)) >> 32)
	case insts.OpMULHU:
		return uint32((uint64(a) * uint64(b)) >> 32)
	case insts.OpDIV:
		if b == 0 {
			return 0xFFFFFFFF
		}
		if a == 0x80000000 && b == 0xFFFFFFFF {
			return 0x80000000
		}
		return uint32(int32(a) / int32(b))
	case insts.OpDIVU:
		if b == 0 {
			return 0xFFFFFFFF
		}
		return a / b
	case insts.OpREM:
		if b == 0 {
			return a
		}
		if a == 0x80000000 && b == 0xFFFFFFFF {
			return 0
		}
		return uint32(int32(a) % int32(b))
	case insts.OpREMU:
		if b == 0 {
			return a
		}
		return a % b
	}
	return 0
}

// BranchTaken evaluates a conditional branch over the two source
// values.
func BranchTaken(op insts.Op, a, b uint32) bool {
	switch op {
	case insts.OpBEQ:
		return a == b
	case insts.OpBNE:
		return a != b
	case insts.OpBLT:
		return int32(a) < int32(b)
	case insts.OpBGE:
		return int32(a) >= int32(b)
	case insts.OpBLTU:
		return a < b
	case insts.OpBGEU:
		return a >= b
	}
	return false
}

// canonicalNaN is the quiet NaN produced by RV32F arithmetic.
const canonicalNaN = 0x7FC00000

func isNaN32(bits uint32) bool {
	return bits&0x7F800000 == 0x7F800000 && bits&0x007FFFFF != 0
}

func fpBits(f float32) uint32 {
	bits := math.Float32bits(f)
	if isNaN32(bits) {
		return canonicalNaN
	}
	return bits
}

// FPALU computes a single-precision operation on raw register bits.
// Arithmetic NaN results are canonicalized; compares and the
// FP-to-integer conversion return integer-file values.
func FPALU(op insts.Op, a, b uint32) uint32 {
	fa := math.Float32frombits(a)
	fb := math.Float32frombits(b)
	switch op {
	case insts.OpFADDS:
		return fpBits(fa + fb)
	case insts.OpFSUBS:
		return fpBits(fa - fb)
	case insts.OpFMULS:
		return fpBits(fa * fb)
	case insts.OpFDIVS:
		return fpBits(fa / fb)
	case insts.OpFSQRTS:
		return fpBits(float32(math.Sqrt(float64(fa))))
	case insts.OpFSGNJS:
		return a&0x7FFFFFFF | b&0x80000000
	case insts.OpFSGNJNS:
		return a&0x7FFFFFFF | ^b&0x80000000
	case insts.OpFSGNJXS:
		return a ^ b&0x80000000
	case insts.OpFMINS:
		return fpMin(a, b)
	case insts.OpFMAXS:
		return fpMax(a, b)
	case insts.OpFEQS:
		return boolBit(!isNaN32(a) && !isNaN32(b) && fa == fb)
	case insts.OpFLTS:
		return boolBit(!isNaN32(a) && !isNaN32(b) && fa < fb)
	case insts.OpFLES:
		return boolBit(!isNaN32(a) && !isNaN32(b) && fa <= fb)
	case insts.OpFCVTWS:
		return fcvtWS(fa)
	case insts.OpFCVTSW:
		return fpBits(float32(int32(a)))
	case insts.OpFMVXW, insts.OpFMVWX:
		return a
	}
	return 0
}

// fpMin implements FMIN.S: a NaN operand loses to the other operand,
// two NaNs produce the canonical NaN, and -0 orders below +0.
func fpMin(a, b uint32) uint32 {
	switch {
	case isNaN32(a) && isNaN32(b):
		return canonicalNaN
	case isNaN32(a):
		return b
	case isNaN32(b):
		return a
	}
	fa := math.Float32frombits(a)
	fb := math.Float32frombits(b)
	if fa == fb {
		return a | b // -0 wins over +0
	}
	if fa < fb {
		return a
	}
	return b
}

func fpMax(a, b uint32) uint32 {
	switch {
	case isNaN32(a) && isNaN32(b):
		return canonicalNaN
	case isNaN32(a):
		return b
	case isNaN32(b):
		return a
	}
	fa := math.Float32frombits(a)
	fb := math.Float32frombits(b)
	if fa == fb {
		return a & b // +0 wins over -0
	}
	if fa > fb {
		return a
	}
	return b
}

// fcvtWS converts to a signed word, truncating toward zero. NaN and
// out-of-range inputs saturate the way the F extension requires.
func fcvtWS(f float32) uint32 {
	switch {
	case f != f:
		return 0x7FFFFFFF
	case f >= 2147483648:
		return 0x7FFFFFFF
	case f < -2147483648:
		return 0x80000000
	}
	return uint32(int32(f))
}

// AMOALU combines the loaded word with the rs2 operand of an atomic
// read-modify-write.
func AMOALU(op insts.Op, loaded, operand uint32) uint32 {
	switch op {
	case insts.OpAMOSWAPW:
		return operand
	case insts.OpAMOADDW:
		return loaded + operand
	case insts.OpAMOXORW:
		return loaded ^ operand
	case insts.OpAMOANDW:
		return loaded & operand
	case insts.OpAMOORW:
		return loaded | operand
	case insts.OpAMOMINW:
		if int32(loaded) < int32(operand) {
			return loaded
		}
		return operand
	case insts.OpAMOMAXW:
		if int32(loaded) > int32(operand) {
			return loaded
		}
		return operand
	case insts.OpAMOMINUW:
		if loaded < operand {
			return loaded
		}
		return operand
	case insts.OpAMOMAXUW:
		if loaded > operand {
			return loaded
		}
		return operand
	}
	return loaded
}

// CSRValue computes the value a Zicsr operation writes back and
// whether the write happens at all. The operand is the rs1 value, or
// the zero-extended uimm for the immediate forms; the set/clear forms
// skip the write entirely when the rs1/uimm field is zero.
func CSRValue(op insts.Op, old, operand uint32, rs1Field uint8) (uint32, bool) {
	switch op {
	case insts.OpCSRRW, insts.OpCSRRWI:
		return operand, true
	case insts.OpCSRRS, insts.OpCSRRSI:
		return old | operand, rs1Field != 0
	case insts.OpCSRRC, insts.OpCSRRCI:
		return old &^ operand, rs1Field != 0
	}
	return old, false
}

func boolBit(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
