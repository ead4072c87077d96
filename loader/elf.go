// Package loader reads RV32 ELF executables into simulator memory.
package loader

import (
	"debug/elf"
	"errors"
	"fmt"
	"io"

	"github.com/twosigma/frost-sub002/emu"
)

// Load validation failures. Callers match them with errors.Is.
var (
	// ErrNotELF32 is returned for ELF files of the wrong class.
	ErrNotELF32 = errors.New("not a 32-bit ELF file")
	// ErrNotLittleEndian is returned for big-endian ELF files.
	ErrNotLittleEndian = errors.New("not a little-endian ELF file")
	// ErrNotRISCV is returned for ELF files built for another machine.
	ErrNotRISCV = errors.New("not a RISC-V ELF file")
)

// SegmentFlags carries a segment's protection bits, translated from
// the ELF program header.
type SegmentFlags uint32

// Protection bits in SegmentFlags.
const (
	SegmentFlagExecute SegmentFlags = 1 << iota
	SegmentFlagWrite
	SegmentFlagRead
)

// DefaultStackTop is where InitialSP points when nothing overrides it,
// a conventional high address in the 32-bit user range.
const DefaultStackTop = 0x7FFFF000

// DefaultStackSize bounds the stack region below DefaultStackTop.
const DefaultStackSize = 8 * 1024 * 1024

// Segment is one PT_LOAD region: its load address, its file-backed
// bytes, and the in-memory span reserved for it.
type Segment struct {
	VirtAddr uint32
	Data     []byte

	// MemSize may exceed len(Data); the tail is BSS and loads as
	// zeros.
	MemSize uint32

	Flags SegmentFlags
}

// Program is a parsed executable: where to start, what to map, and the
// stack seed for x2.
type Program struct {
	EntryPoint uint32
	Segments   []Segment
	InitialSP  uint32
}

// LoadInto maps every segment, zero-filling the BSS tail where MemSize
// exceeds the file data.
func (p *Program) LoadInto(memory *emu.Memory) {
	for _, seg := range p.Segments {
		memory.LoadSegment(seg.VirtAddr, seg.Data)
		for i := uint32(len(seg.Data)); i < seg.MemSize; i++ {
			memory.Write8(seg.VirtAddr+i, 0)
		}
	}
}

// Load parses an RV32 ELF executable. The returned Program is not yet
// in memory; call LoadInto.
func Load(path string) (*Program, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening ELF: %w", err)
	}
	defer func() { _ = f.Close() }()

	switch {
	case f.Class != elf.ELFCLASS32:
		return nil, fmt.Errorf("%w (class: %v)", ErrNotELF32, f.Class)
	case f.Data != elf.ELFDATA2LSB:
		return nil, fmt.Errorf("%w (encoding: %v)", ErrNotLittleEndian, f.Data)
	case f.Machine != elf.EM_RISCV:
		return nil, fmt.Errorf("%w (machine type: %v)", ErrNotRISCV, f.Machine)
	}

	prog := &Program{
		EntryPoint: uint32(f.Entry),
		InitialSP:  DefaultStackTop,
	}

	for _, phdr := range f.Progs {
		if phdr.Type != elf.PT_LOAD {
			continue
		}
		seg, err := readSegment(phdr)
		if err != nil {
			return nil, err
		}
		prog.Segments = append(prog.Segments, seg)
	}

	return prog, nil
}

// readSegment pulls one PT_LOAD segment's file bytes and translates
// its protection flags.
func readSegment(phdr *elf.Prog) (Segment, error) {
	data := make([]byte, phdr.Filesz)
	if phdr.Filesz > 0 {
		n, err := phdr.ReadAt(data, 0)
		if err != nil && err != io.EOF {
			return Segment{}, fmt.Errorf("reading segment at 0x%x: %w", phdr.Vaddr, err)
		}
		if uint64(n) != phdr.Filesz {
			return Segment{}, fmt.Errorf("segment at 0x%x: read %d of %d bytes",
				phdr.Vaddr, n, phdr.Filesz)
		}
	}

	return Segment{
		VirtAddr: uint32(phdr.Vaddr),
		Data:     data,
		MemSize:  uint32(phdr.Memsz),
		Flags:    protFlags(phdr.Flags),
	}, nil
}

// protFlags translates ELF p_flags into SegmentFlags.
func protFlags(f elf.ProgFlag) SegmentFlags {
	var flags SegmentFlags
	if f&elf.PF_X != 0 {
		flags |= SegmentFlagExecute
	}
	if f&elf.PF_W != 0 {
		flags |= SegmentFlagWrite
	}
	if f&elf.PF_R != 0 {
		flags |= SegmentFlagRead
	}
	return flags
}
