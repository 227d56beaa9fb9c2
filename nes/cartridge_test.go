package nes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildINES assembles a minimal well-formed iNES v1 image in memory so
// tests never depend on a ROM fixture on disk.
func buildINES(flags6, flags7, prgBanks, chrBanks byte) []byte {
	header := []byte{'N', 'E', 'S', 0x1A, prgBanks, chrBanks, flags6, flags7, 0, 0, 0, 0, 0, 0, 0, 0}
	data := make([]byte, 0, len(header)+int(prgBanks)*prgBankSize+int(chrBanks)*chrBankSize)
	data = append(data, header...)
	data = append(data, make([]byte, int(prgBanks)*prgBankSize)...)
	data = append(data, make([]byte, int(chrBanks)*chrBankSize)...)
	return data
}

// Seed test 6: a 24KiB iNES v1 image with header 4E 45 53 1A 01 01 01 00
// loads as mapper 0, one PRG bank, one CHR bank, and CPU 0xC000 mirrors
// CPU 0x8000 — the 16KiB-bank mirror NROM applies when PrgBanks == 1.
func TestSeedINESLoader(t *testing.T) {
	data := buildINES(0x01, 0x00, 1, 1)
	require.Len(t, data, 24*1024+16)

	cart, err := parseCartridge(data)
	require.NoError(t, err)

	assert.Equal(t, MapperNROM, cart.mapper.ID)
	assert.Equal(t, byte(1), cart.mapper.PrgBanks)
	assert.Equal(t, byte(1), cart.mapper.ChrBanks)

	cart.prgMem[0x0010] = 0xAB
	assert.Equal(t, byte(0xAB), cart.cpuRead(0xC010))
	assert.Equal(t, byte(0xAB), cart.cpuRead(0x8010))
}

func TestCartridgeRejectsUnknownMapper(t *testing.T) {
	data := buildINES(0xF0, 0xF0, 1, 1) // mapper ID 0xFF

	_, err := parseCartridge(data)
	assert.Error(t, err)
}

func TestCartridgeRejectsTruncatedFile(t *testing.T) {
	data := buildINES(0x00, 0x00, 2, 1)
	data = data[:len(data)-100] // drop the tail of CHR-ROM

	_, err := parseCartridge(data)
	assert.Error(t, err)
}

func TestCartridgeRejectsMissingMagic(t *testing.T) {
	data := buildINES(0x00, 0x00, 1, 1)
	data[0] = 'X'

	_, err := parseCartridge(data)
	assert.Error(t, err)
}

func TestCartridgeFourScreenWinsOverMirroringBit(t *testing.T) {
	data := buildINES(fourScreenFlag|verticalFlag, 0x00, 1, 1)

	cart, err := parseCartridge(data)
	require.NoError(t, err)

	assert.Equal(t, MirrorFourScreen, cart.Mirroring)
}

func TestCartridgeTrainerIsSkipped(t *testing.T) {
	header := []byte{'N', 'E', 'S', 0x1A, 1, 1, trainerFlag, 0x00, 0, 0, 0, 0, 0, 0, 0, 0}
	data := append([]byte{}, header...)
	data = append(data, make([]byte, trainerSize)...)
	data = append(data, make([]byte, prgBankSize)...)
	data = append(data, make([]byte, chrBankSize)...)
	data[16+5] = 0xCD // a trainer byte, must not leak into PRG-ROM
	data[16+trainerSize] = 0xEF

	cart, err := parseCartridge(data)
	require.NoError(t, err)

	assert.Equal(t, byte(0xEF), cart.prgMem[0])
}

func TestNewTestCartridgePointsResetVectorAtProgram(t *testing.T) {
	cart, err := NewTestCartridge("A9 01")
	require.NoError(t, err)

	assert.Equal(t, byte(0xA9), cart.cpuRead(0x8000))
	lo := cart.cpuRead(0xFFFC)
	hi := cart.cpuRead(0xFFFD)
	assert.Equal(t, uint16(0x8000), uint16(hi)<<8|uint16(lo))
}

func TestPRGRAMIsReadWrite(t *testing.T) {
	cart, err := NewTestCartridge("")
	require.NoError(t, err)

	cart.cpuWrite(0x6000, 0x99)
	assert.Equal(t, byte(0x99), cart.cpuRead(0x6000))
}
