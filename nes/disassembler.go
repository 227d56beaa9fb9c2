package nes

import (
	"bytes"
	"fmt"
)

// Disassemble renders up to n instructions starting at addr into a
// human-readable listing, one per line, advancing past each instruction's
// operand bytes the same way the decode loop itself would.
//
// Much help from https://github.com/OneLoneCoder/olcNES
func Disassemble(cpu *CPU, addr uint16, n int) string {
	var out bytes.Buffer

	a := uint32(addr)
	for i := 0; i < n && a <= 0xFFFF; i++ {
		lineAddr := uint16(a)
		opcode := cpu.read(lineAddr)
		a++

		inst := cpu.instLookup[opcode]
		out.WriteString(fmt.Sprintf("$%04X: %s ", lineAddr, inst.Name))

		switch inst.Mode {
		case IMP:
			out.WriteString("{IMP}")
		case IMM:
			value := cpu.read(uint16(a))
			a++
			out.WriteString(fmt.Sprintf("#$%02X {IMM}", value))
		case REL:
			value := cpu.read(uint16(a))
			a++
			out.WriteString(fmt.Sprintf("$%02X [$%04X] {REL}", value, uint16(a)+uint16(int8(value))))
		case ZP0:
			lo := cpu.read(uint16(a))
			a++
			out.WriteString(fmt.Sprintf("$%02X {ZP0}", lo))
		case ZPX:
			lo := cpu.read(uint16(a))
			a++
			out.WriteString(fmt.Sprintf("$%02X, X {ZPX}", lo))
		case ZPY:
			lo := cpu.read(uint16(a))
			a++
			out.WriteString(fmt.Sprintf("$%02X, Y {ZPY}", lo))
		case ABS:
			lo := cpu.read(uint16(a))
			a++
			hi := cpu.read(uint16(a))
			a++
			out.WriteString(fmt.Sprintf("$%04X {ABS}", uint16(hi)<<8|uint16(lo)))
		case ABX:
			lo := cpu.read(uint16(a))
			a++
			hi := cpu.read(uint16(a))
			a++
			out.WriteString(fmt.Sprintf("$%04X, X {ABX}", uint16(hi)<<8|uint16(lo)))
		case ABY:
			lo := cpu.read(uint16(a))
			a++
			hi := cpu.read(uint16(a))
			a++
			out.WriteString(fmt.Sprintf("$%04X, Y {ABY}", uint16(hi)<<8|uint16(lo)))
		case IND:
			lo := cpu.read(uint16(a))
			a++
			hi := cpu.read(uint16(a))
			a++
			out.WriteString(fmt.Sprintf("($%04X) {IND}", uint16(hi)<<8|uint16(lo)))
		case IZX:
			lo := cpu.read(uint16(a))
			a++
			out.WriteString(fmt.Sprintf("($%02X, X) {IZX}", lo))
		case IZY:
			lo := cpu.read(uint16(a))
			a++
			out.WriteString(fmt.Sprintf("($%02X), Y {IZY}", lo))
		}

		out.WriteByte('\n')
	}

	return out.String()
}
