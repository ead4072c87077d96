// Package emu provides functional RV32 emulation.
package emu

// Machine-mode CSR addresses.
const (
	CSRMStatus  uint16 = 0x300
	CSRMISA     uint16 = 0x301
	CSRMIE      uint16 = 0x304
	CSRMTVec    uint16 = 0x305
	CSRMScratch uint16 = 0x340
	CSRMEPC     uint16 = 0x341
	CSRMCause   uint16 = 0x342
	CSRMTVal    uint16 = 0x343
	CSRMIP      uint16 = 0x344

	CSRMCycle    uint16 = 0xB00
	CSRMInstRet  uint16 = 0xB02
	CSRMCycleH   uint16 = 0xB80
	CSRMInstRetH uint16 = 0xB82

	CSRCycle    uint16 = 0xC00
	CSRInstRet  uint16 = 0xC02
	CSRCycleH   uint16 = 0xC80
	CSRInstRetH uint16 = 0xC82

	CSRMVendorID uint16 = 0xF11
	CSRMArchID   uint16 = 0xF12
	CSRMImpID    uint16 = 0xF13
	CSRMHartID   uint16 = 0xF14
)

// mstatus fields. The model runs machine mode only, so MPP is
// hardwired to 11.
const (
	MStatusMIE  uint32 = 1 << 3
	MStatusMPIE uint32 = 1 << 7
	MStatusMPP  uint32 = 3 << 11
)

// Exception causes, as written to mcause.
const (
	CauseMisalignedFetch    uint32 = 0
	CauseIllegalInstruction uint32 = 2
	CauseBreakpoint         uint32 = 3
	CauseLoadMisaligned     uint32 = 4
	CauseStoreMisaligned    uint32 = 6
	CauseECallM             uint32 = 11
)

// misaValue advertises RV32IMAFC plus the implemented extensions:
// MXL=1 (RV32) and the A, C, F, I, M extension bits.
const misaValue uint32 = 0x4000_0000 | 1<<0 | 1<<2 | 1<<5 | 1<<8 | 1<<12

// CSRFile holds the machine-mode control and status registers. The
// counter fields are advanced by the owning model: the emulator counts
// one cycle per instruction, the pipelined model one per tick.
type CSRFile struct {
	MStatus  uint32
	MIE      uint32
	MTVec    uint32
	MScratch uint32
	MEPC     uint32
	MCause   uint32
	MTVal    uint32
	MIP      uint32

	Cycle   uint64
	InstRet uint64
}

// NewCSRFile creates a CSR file in its reset state.
func NewCSRFile() *CSRFile {
	return &CSRFile{MStatus: MStatusMPP}
}

// Read returns the value of the CSR at addr. The second return value
// is false for unimplemented addresses, which raise an
// illegal-instruction exception in the caller.
func (c *CSRFile) Read(addr uint16) (uint32, bool) {
	switch addr {
	case CSRMStatus:
		return c.MStatus, true
	case CSRMISA:
		return misaValue, true
	case CSRMIE:
		return c.MIE, true
	case CSRMTVec:
		return c.MTVec, true
	case CSRMScratch:
		return c.MScratch, true
	case CSRMEPC:
		return c.MEPC, true
	case CSRMCause:
		return c.MCause, true
	case CSRMTVal:
		return c.MTVal, true
	case CSRMIP:
		return c.MIP, true
	case CSRMCycle, CSRCycle:
		return uint32(c.Cycle), true
	case CSRMCycleH, CSRCycleH:
		return uint32(c.Cycle >> 32), true
	case CSRMInstRet, CSRInstRet:
		return uint32(c.InstRet), true
	case CSRMInstRetH, CSRInstRetH:
		return uint32(c.InstRet >> 32), true
	case CSRMVendorID, CSRMArchID, CSRMImpID:
		return 0, true
	case CSRMHartID:
		return 0, true
	}
	return 0, false
}

// Write stores value into the CSR at addr, applying the WARL masks.
// It returns false for unimplemented or read-only addresses, which
// raise an illegal-instruction exception in the caller.
func (c *CSRFile) Write(addr uint16, value uint32) bool {
	switch addr {
	case CSRMStatus:
		c.MStatus = value&(MStatusMIE|MStatusMPIE) | MStatusMPP
	case CSRMISA:
		// WARL: the extension set is fixed.
	case CSRMIE:
		c.MIE = value
	case CSRMTVec:
		// Direct mode only; the mode bits read as zero.
		c.MTVec = value &^ 3
	case CSRMScratch:
		c.MScratch = value
	case CSRMEPC:
		c.MEPC = value &^ 1
	case CSRMCause:
		c.MCause = value
	case CSRMTVal:
		c.MTVal = value
	case CSRMIP:
		c.MIP = value
	case CSRMCycle:
		c.Cycle = c.Cycle&^0xFFFFFFFF | uint64(value)
	case CSRMCycleH:
		c.Cycle = c.Cycle&0xFFFFFFFF | uint64(value)<<32
	case CSRMInstRet:
		c.InstRet = c.InstRet&^0xFFFFFFFF | uint64(value)
	case CSRMInstRetH:
		c.InstRet = c.InstRet&0xFFFFFFFF | uint64(value)<<32
	default:
		return false
	}
	return true
}

// Writable reports whether a write to addr would succeed, without
// performing it. The pipelined model uses this to flag illegal CSR
// writes at execute time, before the write itself happens in the
// memory-access stage.
func (c *CSRFile) Writable(addr uint16) bool {
	switch addr {
	case CSRMStatus, CSRMISA, CSRMIE, CSRMTVec, CSRMScratch,
		CSRMEPC, CSRMCause, CSRMTVal, CSRMIP,
		CSRMCycle, CSRMCycleH, CSRMInstRet, CSRMInstRetH:
		return true
	}
	return false
}

// TakeTrap records an exception and returns the trap vector. mepc,
// mcause and mtval capture the faulting context; mstatus.MPIE saves
// the interrupt-enable bit, which is then cleared.
func (c *CSRFile) TakeTrap(cause, tval, pc uint32) uint32 {
	c.MEPC = pc &^ 1
	c.MCause = cause
	c.MTVal = tval
	if c.MStatus&MStatusMIE != 0 {
		c.MStatus |= MStatusMPIE
	} else {
		c.MStatus &^= MStatusMPIE
	}
	c.MStatus &^= MStatusMIE
	return c.MTVec
}

// MRet unwinds the most recent trap: mstatus.MIE is restored from MPIE
// and the resume address is mepc.
func (c *CSRFile) MRet() uint32 {
	if c.MStatus&MStatusMPIE != 0 {
		c.MStatus |= MStatusMIE
	} else {
		c.MStatus &^= MStatusMIE
	}
	c.MStatus |= MStatusMPIE
	return c.MEPC
}
