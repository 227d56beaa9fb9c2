package nes

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/davecgh/go-spew/spew"
)

// debugModel is a bubbletea model driving the bus one CPU instruction at a
// time, grounded on the example pack's CPU-stepping TUI. Unlike that
// reference, stepping here goes through Bus.Clock (so the PPU/NMI timing
// stays consistent with normal Run()) rather than calling an opcode directly.
type debugModel struct {
	bus    *Bus
	prevPC uint16
}

func NewDebugger(bus *Bus) *tea.Program {
	return tea.NewProgram(debugModel{bus: bus})
}

func (m debugModel) Init() tea.Cmd {
	return nil
}

func (m debugModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ", "j":
			m.prevPC = m.bus.Cpu.PC
			// Finish any in-flight cycles, clock until the next opcode is
			// fetched, then clock until that instruction retires.
			for m.bus.Cpu.cycles > 0 {
				m.bus.Clock()
			}
			for m.bus.Cpu.cycles == 0 {
				m.bus.Clock()
			}
			for m.bus.Cpu.cycles > 0 {
				m.bus.Clock()
			}
		case "r":
			m.bus.Reset()
		}
	}
	return m, nil
}

func (m debugModel) registers() string {
	s := m.bus.Cpu.Snapshot()
	return fmt.Sprintf(
		"PC: %#04X (was %#04X)\nA:  %#02X\nX:  %#02X\nY:  %#02X\nSP: %#02X\nP:  %08b\nN V U B D I Z C\nCycles: %d\n",
		s.PC, m.prevPC, s.A, s.X, s.Y, s.SP, s.P, m.bus.ClockCount,
	)
}

func (m debugModel) View() string {
	listing := Disassemble(m.bus.Cpu, m.bus.Cpu.PC, 12)

	op := m.bus.Cpu.Lookup(m.bus.Cpu.read(m.bus.Cpu.PC))

	return lipgloss.JoinVertical(
		lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, listing, m.registers()),
		"",
		"space/j: step    r: reset    q: quit",
		spew.Sdump(op),
	)
}
