package nes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusRunsLoadedProgram(t *testing.T) {
	cart, err := NewTestCartridge("A2 0A 8E 00 00 A2 03 8E 01 00 AC 00 00 A9 00 18 6D 01 00 88 D0 FA 8D 02 00 EA EA EA")
	require.NoError(t, err)

	bus := NewBus(false, false)
	bus.InsertCartridge(cart)
	bus.Reset()

	runInstructions(bus.Cpu, 38)

	got := bus.CpuRead(0x0002)
	assert.Equal(t, byte(30), got)
}

func TestBusRAMMirroring(t *testing.T) {
	bus := NewBus(false, false)

	bus.CpuWrite(0x0000, 0x42)

	assert.Equal(t, byte(0x42), bus.CpuRead(0x0800))
	assert.Equal(t, byte(0x42), bus.CpuRead(0x1800))
}

func TestBusPPURegisterMirroring(t *testing.T) {
	bus := NewBus(false, false)

	bus.CpuWrite(0x2000, 0x80) // PPUCTRL: enable NMI-on-vblank
	bus.CpuWrite(0x2008, 0x00) // mirrors 0x2000

	assert.Equal(t, PpuReg(0x00), bus.Ppu.ctrl)
}

func TestBusDiagnosticBytes(t *testing.T) {
	bus := NewBus(false, false)

	bus.CpuWrite(0x0002, 0x00)
	bus.CpuWrite(0x0003, 0x07)

	a, b := bus.DiagnosticBytes(0x0002, 0x0003)
	assert.Equal(t, byte(0x00), a)
	assert.Equal(t, byte(0x07), b)
}

func TestControllerShiftRegisterProtocol(t *testing.T) {
	bus := NewBus(false, false)
	bus.Controller.buttonState[keyA] = true
	bus.Controller.buttonState[keyStart] = true

	bus.CpuWrite(0x4016, 1) // strobe high: continuously latch
	bus.CpuWrite(0x4016, 0) // strobe low: freeze and start shifting

	first := bus.CpuRead(0x4016)
	assert.Equal(t, byte(1), first&0x01, "A is the first bit out")

	for i := 0; i < 2; i++ {
		bus.CpuRead(0x4016)
	}
	fourth := bus.CpuRead(0x4016)
	assert.Equal(t, byte(1), fourth&0x01, "Start is the fourth bit out")
}
