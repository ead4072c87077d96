// Package emu provides functional RV32 emulation.
package emu

// RegFile represents the RV32 register state. It contains 32 integer
// registers (x0-x31), 32 single-precision floating-point registers
// (f0-f31), and the program counter (PC).
type RegFile struct {
	// X holds the integer registers x0-x31.
	// X[0] is the zero register, which always reads as 0.
	X [32]uint32

	// F holds the floating-point registers f0-f31 as raw IEEE 754
	// single-precision bit patterns.
	F [32]uint32

	// PC is the program counter.
	PC uint32
}

// ReadReg reads an integer register. Register 0 always returns 0.
func (r *RegFile) ReadReg(reg uint8) uint32 {
	if reg == 0 || reg >= 32 {
		return 0
	}
	return r.X[reg]
}

// WriteReg writes an integer register. Writes to register 0 are ignored.
func (r *RegFile) WriteReg(reg uint8, value uint32) {
	if reg == 0 || reg >= 32 {
		return
	}
	r.X[reg] = value
}

// ReadFReg reads a floating-point register as a raw bit pattern.
func (r *RegFile) ReadFReg(reg uint8) uint32 {
	if reg >= 32 {
		return 0
	}
	return r.F[reg]
}

// WriteFReg writes a floating-point register as a raw bit pattern.
func (r *RegFile) WriteFReg(reg uint8, value uint32) {
	if reg >= 32 {
		return
	}
	r.F[reg] = value
}
