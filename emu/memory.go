// Package emu provides functional RV32 emulation.
package emu

import (
	"github.com/twosigma/frost-sub002/insts"
)

// Page granularity of the sparse backing store.
const (
	pageSize  = 4096
	pageShift = 12
	pageMask  = pageSize - 1
)

// Memory is a sparse byte store covering the 32-bit address space.
// Pages are allocated on first write; reads from unmapped pages return
// zero. All multi-byte accesses are little-endian and may cross page
// boundaries.
type Memory struct {
	pages map[uint32]*[pageSize]byte
}

// NewMemory creates an empty memory.
func NewMemory() *Memory {
	return &Memory{pages: make(map[uint32]*[pageSize]byte)}
}

func (m *Memory) page(addr uint32) *[pageSize]byte {
	return m.pages[addr>>pageShift]
}

func (m *Memory) pageForWrite(addr uint32) *[pageSize]byte {
	index := addr >> pageShift
	p := m.pages[index]
	if p == nil {
		p = new([pageSize]byte)
		m.pages[index] = p
	}
	return p
}

// Read8 reads a byte.
func (m *Memory) Read8(addr uint32) uint8 {
	p := m.page(addr)
	if p == nil {
		return 0
	}
	return p[addr&pageMask]
}

// Write8 writes a byte.
func (m *Memory) Write8(addr uint32, value uint8) {
	m.pageForWrite(addr)[addr&pageMask] = value
}

// Read16 reads a little-endian halfword.
func (m *Memory) Read16(addr uint32) uint16 {
	return uint16(m.Read8(addr)) | uint16(m.Read8(addr+1))<<8
}

// Write16 writes a little-endian halfword.
func (m *Memory) Write16(addr uint32, value uint16) {
	m.Write8(addr, uint8(value))
	m.Write8(addr+1, uint8(value>>8))
}

// Read32 reads a little-endian word.
func (m *Memory) Read32(addr uint32) uint32 {
	return uint32(m.Read16(addr)) | uint32(m.Read16(addr+2))<<16
}

// Write32 writes a little-endian word.
func (m *Memory) Write32(addr uint32, value uint32) {
	m.Write16(addr, uint16(value))
	m.Write16(addr+2, uint16(value>>16))
}

// LoadSegment copies a program segment into memory at the given address.
func (m *Memory) LoadSegment(addr uint32, data []byte) {
	for i, b := range data {
		m.Write8(addr+uint32(i), b)
	}
}

// Reservation tracks the address registered by LR.W. Any store clears
// it; SC.W succeeds only while it covers the store address.
type Reservation struct {
	Valid bool
	Addr  uint32
}

// AccessSize returns the memory footprint in bytes of a load, store or
// atomic operation, and 0 for anything else.
func AccessSize(op insts.Op) uint32 {
	switch op {
	case insts.OpLB, insts.OpLBU, insts.OpSB:
		return 1
	case insts.OpLH, insts.OpLHU, insts.OpSH:
		return 2
	case insts.OpLW, insts.OpSW, insts.OpFLW, insts.OpFSW,
		insts.OpLRW, insts.OpSCW, insts.OpAMOSWAPW, insts.OpAMOADDW,
		insts.OpAMOXORW, insts.OpAMOANDW, insts.OpAMOORW,
		insts.OpAMOMINW, insts.OpAMOMAXW, insts.OpAMOMINUW,
		insts.OpAMOMAXUW:
		return 4
	}
	return 0
}

// Misaligned reports whether addr violates the natural alignment of the
// given memory operation.
func Misaligned(op insts.Op, addr uint32) bool {
	size := AccessSize(op)
	return size > 1 && addr&(size-1) != 0
}

// LoadFromMemory performs a load and returns the register writeback
// value, applying the sign or zero extension the operation calls for.
// The pipelined model shares this helper so both sides agree on every
// load result.
func LoadFromMemory(mem *Memory, op insts.Op, addr uint32) uint32 {
	switch op {
	case insts.OpLB:
		return uint32(int32(int8(mem.Read8(addr))))
	case insts.OpLBU:
		return uint32(mem.Read8(addr))
	case insts.OpLH:
		return uint32(int32(int16(mem.Read16(addr))))
	case insts.OpLHU:
		return uint32(mem.Read16(addr))
	case insts.OpLW, insts.OpFLW:
		return mem.Read32(addr)
	}
	return 0
}

// StoreToMemory performs a store of the low bytes of value.
func StoreToMemory(mem *Memory, op insts.Op, addr, value uint32) {
	switch op {
	case insts.OpSB:
		mem.Write8(addr, uint8(value))
	case insts.OpSH:
		mem.Write16(addr, uint16(value))
	case insts.OpSW, insts.OpFSW:
		mem.Write32(addr, value)
	}
}
