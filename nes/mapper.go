package nes

import "fmt"

// MapperID identifies a cartridge's bank-switching scheme, taken from the
// upper nibble of iNES flags 6 (the ID's low nibble) and the upper nibble of
// flags 7 (the ID's high nibble).
type MapperID byte

const (
	MapperNROM MapperID = 0
)

// Mapper dispatches by ID rather than through an interface: the original
// implementation this spec is drawn from models mappers as a tagged enum
// matched in a handful of functions, and with only NROM implemented a
// switch on MapperID reads the same way without the indirection of a
// one-member interface.
type Mapper struct {
	ID       MapperID
	PrgBanks byte
	ChrBanks byte
}

// NewMapper constructs the mapper named by id. An unrecognized id is a load
// error — spec.md requires unknown mappers to fail cartridge construction
// rather than silently falling back to NROM.
func NewMapper(id MapperID, prgBanks, chrBanks byte) (*Mapper, error) {
	switch id {
	case MapperNROM:
		return &Mapper{ID: id, PrgBanks: prgBanks, ChrBanks: chrBanks}, nil
	default:
		return nil, fmt.Errorf("unsupported mapper id %d", id)
	}
}

// CpuMapRead and CpuMapWrite translate a CPU-bus address (0x8000-0xFFFF)
// into an offset into PRG-ROM. NROM mirrors the 16KiB bank across both
// halves of the window only when exactly one bank is present; a 32KiB cart
// addresses the full window directly.
func (m *Mapper) CpuMapRead(addr uint16) (uint16, bool) {
	switch m.ID {
	case MapperNROM:
		if addr < 0x8000 {
			return 0, false
		}
		if m.PrgBanks == 1 {
			return addr & 0x3FFF, true
		}
		return addr & 0x7FFF, true
	}
	return 0, false
}

// CpuMapWrite is identical to CpuMapRead for NROM: the cartridge itself
// decides (in Cartridge.cpuWrite) that ROM writes are discarded.
func (m *Mapper) CpuMapWrite(addr uint16) (uint16, bool) {
	return m.CpuMapRead(addr)
}

func (m *Mapper) PpuMapRead(addr uint16) (uint16, bool) {
	switch m.ID {
	case MapperNROM:
		if addr <= 0x1FFF {
			return addr, true
		}
	}
	return 0, false
}

func (m *Mapper) PpuMapWrite(addr uint16) (uint16, bool) {
	switch m.ID {
	case MapperNROM:
		// NROM only ever ships CHR-ROM, which the PPU cannot write to; a
		// cart with zero CHR banks (CHR-RAM) accepts the write instead.
		if addr <= 0x1FFF && m.ChrBanks == 0 {
			return addr, true
		}
	}
	return 0, false
}
