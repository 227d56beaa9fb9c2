package nes

import (
	"bytes"
	"fmt"
	"time"
)

// Bus wires the CPU, PPU, cartridge, and controller together on a shared
// address space, the same single-owner layout the teacher repo used for its
// devices.
type Bus struct {
	Cpu        *CPU
	Ppu        *Ppu
	Ram        [2 * 1024]byte
	Cart       *Cartridge
	Controller *Controller
	Disp       *Display

	ClockCount uint64

	isDebug   bool
	isLogging bool
}

const (
	ramMinAddr uint16 = 0x0000
	ramMaxAddr uint16 = 0x1FFF
	ramMirror  uint16 = 0x07FF

	ppuMinAddr uint16 = 0x2000
	ppuMaxAddr uint16 = 0x3FFF
	ppuMirror  uint16 = 0x0007

	apuIoMinAddr uint16 = 0x4000
	apuIoMaxAddr uint16 = 0x4017

	controllerPort1 uint16 = 0x4016
	controllerPort2 uint16 = 0x4017

	// Cartridge space starts at 0x4020 per spec.md §4.3; the cartridge
	// itself decides what to do with PRG-RAM (0x6000+) versus PRG-ROM
	// (0x8000+) reads within that range.
	cartMinAddr uint16 = 0x4020
	cartMaxAddr uint16 = 0xFFFF

	fps float64 = 60.0
)

func NewBus(isDebug, isLogging bool) *Bus {
	cpu := NewCPU()

	bus := &Bus{
		Cpu:        cpu,
		Ppu:        NewPpu(),
		Controller: NewController(),
		isDebug:    isDebug,
		isLogging:  isLogging,
	}

	cpu.ConnectBus(bus)

	return bus
}

// Run drives the emulator at a steady frame rate, rendering each completed
// PPU frame to the display and sampling controller input once per frame.
func (b *Bus) Run() {
	display := NewDisplay(b.isDebug)
	b.Disp = display
	b.Ppu.ConnectDisplay(display)

	intervalInMilli := (1 / fps) * 1000
	interval := time.Duration(intervalInMilli) * time.Millisecond

	var t time.Time
	for !display.window.Closed() {
		t = time.Now()
		for !b.Ppu.frameComplete {
			b.Clock()
		}

		b.Controller.updateControllerInput(b.Disp.window)

		if b.isDebug {
			b.DrawDebugPanel()
		}
		b.Disp.UpdateScreen()

		if elapsed := time.Since(t); elapsed < interval {
			time.Sleep(interval - elapsed)
		}

		b.Ppu.frameComplete = false
	}
}

// CpuRead implements the CPU-side memory map from spec.md §4.3: 2KiB
// internal RAM mirrored across 0x0000-0x1FFF, 8 PPU registers mirrored
// across 0x2000-0x3FFF, APU/IO pass-through at 0x4000-0x4017 (including the
// two controller shift-register ports), and everything from 0x4020 up
// delegated to the cartridge.
func (b *Bus) CpuRead(addr uint16) byte {
	switch {
	case addr >= ramMinAddr && addr <= ramMaxAddr:
		return b.Ram[addr&ramMirror]
	case addr >= ppuMinAddr && addr <= ppuMaxAddr:
		return b.Ppu.cpuRead(ppuMinAddr + (addr & ppuMirror))
	case addr == controllerPort1:
		return b.Controller.readPort1()
	case addr == controllerPort2:
		return b.Controller.readPort2()
	case addr >= apuIoMinAddr && addr <= apuIoMaxAddr:
		return 0
	case addr >= cartMinAddr && addr <= cartMaxAddr:
		if b.Cart != nil {
			return b.Cart.cpuRead(addr)
		}
		return 0
	}
	return 0
}

func (b *Bus) CpuWrite(addr uint16, data byte) {
	switch {
	case addr >= ramMinAddr && addr <= ramMaxAddr:
		b.Ram[addr&ramMirror] = data
	case addr >= ppuMinAddr && addr <= ppuMaxAddr:
		b.Ppu.cpuWrite(ppuMinAddr+(addr&ppuMirror), data)
	case addr == controllerPort1:
		b.Controller.writeStrobe(data)
	case addr == controllerPort2:
		// Port 2 strobe is unused by this emulator's single-controller model.
	case addr >= apuIoMinAddr && addr <= apuIoMaxAddr:
		// APU registers are accepted and discarded; spec.md's Non-goals
		// exclude audio synthesis.
	case addr >= cartMinAddr && addr <= cartMaxAddr:
		if b.Cart != nil {
			b.Cart.cpuWrite(addr, data)
		}
	}
}

// InsertCartridge attaches a cartridge to both the CPU and PPU sides of the
// bus.
func (b *Bus) InsertCartridge(cart *Cartridge) {
	b.Cart = cart
	b.Ppu.ConnectCartridge(cart)
}

func (b *Bus) Reset() {
	b.Cpu.Reset()
	b.ClockCount = 0
}

// Clock advances the bus by one PPU cycle, ticking the CPU at a third of
// that rate and delivering NMI the instant the PPU raises it.
func (b *Bus) Clock() {
	b.Ppu.Clock()

	if b.ClockCount%3 == 0 {
		b.Cpu.Step()
	}

	if b.Ppu.nmi {
		b.Ppu.nmi = false
		b.Cpu.NMI()
	}

	b.ClockCount++
}

// DiagnosticBytes reads two arbitrary bus addresses for test harnesses that
// poll known memory locations for a pass/fail code, generalizing the
// teacher's nestest-specific address pair (0x02/0x03) to any ROM's
// convention.
func (b *Bus) DiagnosticBytes(addr1, addr2 uint16) (byte, byte) {
	return b.CpuRead(addr1), b.CpuRead(addr2)
}

func (b *Bus) DrawDebugPanel() {
	patternTable0 := b.Ppu.GetPatternTable(0)
	patternTable1 := b.Ppu.GetPatternTable(1)

	b.Disp.DrawDebugRGBA(8, int(gameH)-128-8, patternTable0)
	b.Disp.DrawDebugRGBA(128+16, int(gameH)-128-8, patternTable1)

	b.Disp.debugRegText.Clear()
	b.Disp.WriteRegDebugString(b.getCpuDebugString())
	b.Disp.WriteInstDebugString(Disassemble(b.Cpu, b.Cpu.PC, 10))
}

func (b *Bus) getCpuDebugString() string {
	var buf bytes.Buffer

	s := b.Cpu.Snapshot()
	buf.WriteString(fmt.Sprintf("Flags: %08b\n", s.P))
	buf.WriteString(fmt.Sprintf("PC: %#04X\n", s.PC))
	buf.WriteString(fmt.Sprintf("A: %#02X\n", s.A))
	buf.WriteString(fmt.Sprintf("X: %#02X\n", s.X))
	buf.WriteString(fmt.Sprintf("Y: %#02X\n", s.Y))
	buf.WriteString(fmt.Sprintf("SP: %#02X\n\n", s.SP))
	buf.WriteString(fmt.Sprintf("Cycle Count: %d\n\n", b.ClockCount))

	return buf.String()
}
