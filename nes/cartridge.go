package nes

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io/ioutil"
	"strings"
	"time"
)

// Mirroring is the cartridge's nametable mirroring arrangement, decoded
// from iNES flags 6. FourScreen wins over the Horizontal/Vertical bit
// whenever both are present.
type Mirroring byte

const (
	MirrorHorizontal Mirroring = iota
	MirrorVertical
	MirrorFourScreen
)

// Cartridge owns PRG-ROM, PRG-RAM, and CHR memory, and routes both the CPU
// and PPU buses through its mapper.
type Cartridge struct {
	prgMem []byte
	prgRam []byte
	chrMem []byte

	Mirroring Mirroring
	Battery   bool

	mapper *Mapper
}

// CartridgeHeader is the 16-byte iNES v1 header.
// reference: https://wiki.nesdev.com/w/index.php/INES
type CartridgeHeader struct {
	Name         [4]byte
	PrgRomChunks byte
	ChrRomChunks byte
	Mapper1      byte
	Mapper2      byte
	PrgRamSize   byte
	TvSystem1    byte
	TvSystem2    byte
	Unused       [5]byte
}

const (
	trainerSize = 512
	prgBankSize = 16 * 1024
	chrBankSize = 8 * 1024
	prgRamUnit  = 8 * 1024
	headerSize  = 16

	trainerFlag    byte = 0x1 << 2
	fourScreenFlag byte = 0x1 << 3
	verticalFlag   byte = 0x1 << 0
	batteryFlag    byte = 0x1 << 1
)

// NewCartridge loads and parses an iNES v1 ROM image from disk.
func NewCartridge(filepath string) (*Cartridge, error) {
	defer TimeTrack(time.Now())

	data, err := ioutil.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("nes: unable to open %s: %w", filepath, err)
	}
	return parseCartridge(data)
}

// NewTestCartridge builds a minimal NROM cartridge directly from a
// whitespace-separated hex byte string, the same way the original
// implementation's test harness loads a short machine-code program without
// a full iNES image. The program is placed at the start of the single
// 16KiB PRG-ROM bank (CPU address 0x8000), and the reset vector is pointed
// there automatically, so a caller need only supply the instruction bytes.
func NewTestCartridge(program string) (*Cartridge, error) {
	fields := strings.Fields(program)
	raw := make([]byte, len(fields))
	for i, f := range fields {
		b, err := hex.DecodeString(f)
		if err != nil || len(b) != 1 {
			return nil, fmt.Errorf("nes: invalid hex byte %q in test program", f)
		}
		raw[i] = b[0]
	}

	prg := make([]byte, prgBankSize)
	copy(prg, raw)

	// Reset vector lives at 0xFFFC/0xFFFD, which NROM's single-bank mirror
	// maps to offsets 0x3FFC/0x3FFD of this 16KiB bank.
	prg[prgBankSize-4] = 0x00
	prg[prgBankSize-3] = 0x80

	mapper, err := NewMapper(MapperNROM, 1, 1)
	if err != nil {
		return nil, err
	}

	return &Cartridge{
		prgMem:    prg,
		prgRam:    make([]byte, prgRamUnit),
		chrMem:    make([]byte, chrBankSize),
		Mirroring: MirrorHorizontal,
		mapper:    mapper,
	}, nil
}

func parseCartridge(data []byte) (*Cartridge, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("nes: file too short to contain an iNES header")
	}

	buf := bytes.NewBuffer(data)

	header := new(CartridgeHeader)
	if err := binary.Read(buf, binary.BigEndian, header); err != nil {
		return nil, fmt.Errorf("nes: unable to parse header: %w", err)
	}

	if string(header.Name[:3]) != "NES" || header.Name[3] != 0x1A {
		return nil, fmt.Errorf("nes: missing iNES magic bytes")
	}

	hasTrainer := header.Mapper1&trainerFlag != 0

	expectedLen := headerSize + int(header.PrgRomChunks)*prgBankSize + int(header.ChrRomChunks)*chrBankSize
	if hasTrainer {
		expectedLen += trainerSize
	}
	if len(data) < expectedLen {
		return nil, fmt.Errorf("nes: truncated ROM image: want at least %d bytes, have %d", expectedLen, len(data))
	}

	if hasTrainer {
		// Trainer data predates most mappers' use cases and is unused by
		// spec.md's supported feature set; skip past it.
		if _, err := buf.Read(make([]byte, trainerSize)); err != nil {
			return nil, fmt.Errorf("nes: unable to read trainer data: %w", err)
		}
	}

	mapperLo := header.Mapper1 >> 4
	mapperHi := header.Mapper2 >> 4
	mapperID := MapperID(mapperHi<<4 | mapperLo)

	mapper, err := NewMapper(mapperID, header.PrgRomChunks, header.ChrRomChunks)
	if err != nil {
		return nil, fmt.Errorf("nes: %w", err)
	}

	cart := &Cartridge{
		mapper:  mapper,
		Battery: header.Mapper1&batteryFlag != 0,
	}

	switch {
	case header.Mapper1&fourScreenFlag != 0:
		cart.Mirroring = MirrorFourScreen
	case header.Mapper1&verticalFlag != 0:
		cart.Mirroring = MirrorVertical
	default:
		cart.Mirroring = MirrorHorizontal
	}

	cart.prgMem = make([]byte, prgBankSize*int(header.PrgRomChunks))
	if err := binary.Read(buf, binary.BigEndian, cart.prgMem); err != nil {
		return nil, fmt.Errorf("nes: unable to read PRG-ROM: %w", err)
	}

	cart.chrMem = make([]byte, chrBankSize*int(header.ChrRomChunks))
	if err := binary.Read(buf, binary.BigEndian, cart.chrMem); err != nil {
		return nil, fmt.Errorf("nes: unable to read CHR-ROM: %w", err)
	}
	if header.ChrRomChunks == 0 {
		// No CHR-ROM banks: the board carries 8KiB of CHR-RAM instead.
		cart.chrMem = make([]byte, chrBankSize)
	}

	prgRamBanks := header.PrgRamSize
	if prgRamBanks == 0 {
		prgRamBanks = 1
	}
	cart.prgRam = make([]byte, prgRamUnit*int(prgRamBanks))

	return cart, nil
}

const (
	prgRamMinAddr uint16 = 0x6000
	prgRamMaxAddr uint16 = 0x7FFF
)

func (c *Cartridge) cpuRead(addr uint16) byte {
	if addr >= prgRamMinAddr && addr <= prgRamMaxAddr {
		return c.prgRam[addr-prgRamMinAddr]
	}
	if mapped, ok := c.mapper.CpuMapRead(addr); ok {
		return c.prgMem[mapped]
	}
	return 0
}

func (c *Cartridge) cpuWrite(addr uint16, data byte) {
	if addr >= prgRamMinAddr && addr <= prgRamMaxAddr {
		c.prgRam[addr-prgRamMinAddr] = data
		return
	}
	// Writes that land in ROM space are discarded; cartridges have no
	// bank-select registers until a mapper beyond NROM is added.
}

func (c *Cartridge) ppuRead(addr uint16) byte {
	if mapped, ok := c.mapper.PpuMapRead(addr); ok {
		return c.chrMem[mapped]
	}
	return 0
}

func (c *Cartridge) ppuWrite(addr uint16, data byte) {
	if mapped, ok := c.mapper.PpuMapWrite(addr); ok {
		c.chrMem[mapped] = data
	}
}
