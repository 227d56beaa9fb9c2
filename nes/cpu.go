package nes

// CPU is a MOS 6502 decode/execute engine. Its register file is kept as
// plain scalars, not a struct of bitfields — the status register is a
// single byte manipulated with named bit masks (see flags.go).
type CPU struct {
	PC uint16 // Program Counter
	SP byte   // Stack Pointer, implicitly offset by stackBase
	A  byte   // Accumulator
	X  byte   // Index register X
	Y  byte   // Index register Y
	P  byte   // Processor status

	bus *Bus

	cycles        byte   // remaining clocks for the current instruction
	opcode        byte   // opcode byte of the current instruction
	addrAbs       uint16 // resolved absolute address
	addrRel       uint16 // sign-extended branch offset
	fetched       byte   // operand byte consumed by ALU ops
	isImpliedAddr bool    // current instruction's operand is A, not memory
	cycleCount    uint64 // total clocks executed, for debug/trace only

	instLookup [256]Instruction
}

const (
	stackBase     uint16 = 0x0100
	resetVectAddr uint16 = 0xFFFC
	irqVectAddr   uint16 = 0xFFFE
	nmiVectAddr   uint16 = 0xFFFA
)

// Instruction is one row of the 256-entry opcode table: a mnemonic paired
// with an addressing-mode handler and an operation handler, plus the base
// cycle count. Dispatch is by function value, not a mode/operation tag
// switch — Go's bound methods give first-class function pointers over
// mutable receivers, so the table can hold them directly the way the
// teacher repo does, without reflection or a central switch.
type Instruction struct {
	Name     string
	Mode     AddrMode
	AddrMode func() byte
	Execute  func() byte
	Cycles   byte
}

// NewCPU constructs a CPU with its instruction table wired up. The CPU is
// inert until ConnectBus attaches it to a Bus.
func NewCPU() *CPU {
	cpu := &CPU{}

	cpu.instLookup = [256]Instruction{
		{"BRK", IMP, cpu.amIMP, cpu.opBRK, 7}, {"ORA", IZX, cpu.amIZX, cpu.opORA, 6}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"ORA", ZP0, cpu.amZP0, cpu.opORA, 3}, {"ASL", ZP0, cpu.amZP0, cpu.opASL, 5}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"PHP", IMP, cpu.amIMP, cpu.opPHP, 3}, {"ORA", IMM, cpu.amIMM, cpu.opORA, 2}, {"ASL", IMP, cpu.amIMP, cpu.opASL, 2}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"ORA", ABS, cpu.amABS, cpu.opORA, 4}, {"ASL", ABS, cpu.amABS, cpu.opASL, 6}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2},
		{"BPL", REL, cpu.amREL, cpu.opBPL, 2}, {"ORA", IZY, cpu.amIZY, cpu.opORA, 5}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"ORA", ZPX, cpu.amZPX, cpu.opORA, 4}, {"ASL", ZPX, cpu.amZPX, cpu.opASL, 6}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"CLC", IMP, cpu.amIMP, cpu.opCLC, 2}, {"ORA", ABY, cpu.amABY, cpu.opORA, 4}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"ORA", ABX, cpu.amABX, cpu.opORA, 4}, {"ASL", ABX, cpu.amABX, cpu.opASL, 7}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2},
		{"JSR", ABS, cpu.amABS, cpu.opJSR, 6}, {"AND", IZX, cpu.amIZX, cpu.opAND, 6}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"BIT", ZP0, cpu.amZP0, cpu.opBIT, 3}, {"AND", ZP0, cpu.amZP0, cpu.opAND, 3}, {"ROL", ZP0, cpu.amZP0, cpu.opROL, 5}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"PLP", IMP, cpu.amIMP, cpu.opPLP, 4}, {"AND", IMM, cpu.amIMM, cpu.opAND, 2}, {"ROL", IMP, cpu.amIMP, cpu.opROL, 2}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"BIT", ABS, cpu.amABS, cpu.opBIT, 4}, {"AND", ABS, cpu.amABS, cpu.opAND, 4}, {"ROL", ABS, cpu.amABS, cpu.opROL, 6}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2},
		{"BMI", REL, cpu.amREL, cpu.opBMI, 2}, {"AND", IZY, cpu.amIZY, cpu.opAND, 5}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"AND", ZPX, cpu.amZPX, cpu.opAND, 4}, {"ROL", ZPX, cpu.amZPX, cpu.opROL, 6}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"SEC", IMP, cpu.amIMP, cpu.opSEC, 2}, {"AND", ABY, cpu.amABY, cpu.opAND, 4}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"AND", ABX, cpu.amABX, cpu.opAND, 4}, {"ROL", ABX, cpu.amABX, cpu.opROL, 7}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2},
		{"RTI", IMP, cpu.amIMP, cpu.opRTI, 6}, {"EOR", IZX, cpu.amIZX, cpu.opEOR, 6}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"EOR", ZP0, cpu.amZP0, cpu.opEOR, 3}, {"LSR", ZP0, cpu.amZP0, cpu.opLSR, 5}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"PHA", IMP, cpu.amIMP, cpu.opPHA, 3}, {"EOR", IMM, cpu.amIMM, cpu.opEOR, 2}, {"LSR", IMP, cpu.amIMP, cpu.opLSR, 2}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"JMP", ABS, cpu.amABS, cpu.opJMP, 3}, {"EOR", ABS, cpu.amABS, cpu.opEOR, 4}, {"LSR", ABS, cpu.amABS, cpu.opLSR, 6}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2},
		{"BVC", REL, cpu.amREL, cpu.opBVC, 2}, {"EOR", IZY, cpu.amIZY, cpu.opEOR, 5}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"EOR", ZPX, cpu.amZPX, cpu.opEOR, 4}, {"LSR", ZPX, cpu.amZPX, cpu.opLSR, 6}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"CLI", IMP, cpu.amIMP, cpu.opCLI, 2}, {"EOR", ABY, cpu.amABY, cpu.opEOR, 4}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"EOR", ABX, cpu.amABX, cpu.opEOR, 4}, {"LSR", ABX, cpu.amABX, cpu.opLSR, 7}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2},
		{"RTS", IMP, cpu.amIMP, cpu.opRTS, 6}, {"ADC", IZX, cpu.amIZX, cpu.opADC, 6}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"ADC", ZP0, cpu.amZP0, cpu.opADC, 3}, {"ROR", ZP0, cpu.amZP0, cpu.opROR, 5}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"PLA", IMP, cpu.amIMP, cpu.opPLA, 4}, {"ADC", IMM, cpu.amIMM, cpu.opADC, 2}, {"ROR", IMP, cpu.amIMP, cpu.opROR, 2}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"JMP", IND, cpu.amIND, cpu.opJMP, 5}, {"ADC", ABS, cpu.amABS, cpu.opADC, 4}, {"ROR", ABS, cpu.amABS, cpu.opROR, 6}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2},
		{"BVS", REL, cpu.amREL, cpu.opBVS, 2}, {"ADC", IZY, cpu.amIZY, cpu.opADC, 5}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"ADC", ZPX, cpu.amZPX, cpu.opADC, 4}, {"ROR", ZPX, cpu.amZPX, cpu.opROR, 6}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"SEI", IMP, cpu.amIMP, cpu.opSEI, 2}, {"ADC", ABY, cpu.amABY, cpu.opADC, 4}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"ADC", ABX, cpu.amABX, cpu.opADC, 4}, {"ROR", ABX, cpu.amABX, cpu.opROR, 7}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2},
		{"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"STA", IZX, cpu.amIZX, cpu.opSTA, 6}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"STY", ZP0, cpu.amZP0, cpu.opSTY, 3}, {"STA", ZP0, cpu.amZP0, cpu.opSTA, 3}, {"STX", ZP0, cpu.amZP0, cpu.opSTX, 3}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"DEY", IMP, cpu.amIMP, cpu.opDEY, 2}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"TXA", IMP, cpu.amIMP, cpu.opTXA, 2}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"STY", ABS, cpu.amABS, cpu.opSTY, 4}, {"STA", ABS, cpu.amABS, cpu.opSTA, 4}, {"STX", ABS, cpu.amABS, cpu.opSTX, 4}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2},
		{"BCC", REL, cpu.amREL, cpu.opBCC, 2}, {"STA", IZY, cpu.amIZY, cpu.opSTA, 6}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"STY", ZPX, cpu.amZPX, cpu.opSTY, 4}, {"STA", ZPX, cpu.amZPX, cpu.opSTA, 4}, {"STX", ZPY, cpu.amZPY, cpu.opSTX, 4}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"TYA", IMP, cpu.amIMP, cpu.opTYA, 2}, {"STA", ABY, cpu.amABY, cpu.opSTA, 5}, {"TXS", IMP, cpu.amIMP, cpu.opTXS, 2}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"STA", ABX, cpu.amABX, cpu.opSTA, 5}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2},
		{"LDY", IMM, cpu.amIMM, cpu.opLDY, 2}, {"LDA", IZX, cpu.amIZX, cpu.opLDA, 6}, {"LDX", IMM, cpu.amIMM, cpu.opLDX, 2}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"LDY", ZP0, cpu.amZP0, cpu.opLDY, 3}, {"LDA", ZP0, cpu.amZP0, cpu.opLDA, 3}, {"LDX", ZP0, cpu.amZP0, cpu.opLDX, 3}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"TAY", IMP, cpu.amIMP, cpu.opTAY, 2}, {"LDA", IMM, cpu.amIMM, cpu.opLDA, 2}, {"TAX", IMP, cpu.amIMP, cpu.opTAX, 2}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"LDY", ABS, cpu.amABS, cpu.opLDY, 4}, {"LDA", ABS, cpu.amABS, cpu.opLDA, 4}, {"LDX", ABS, cpu.amABS, cpu.opLDX, 4}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2},
		{"BCS", REL, cpu.amREL, cpu.opBCS, 2}, {"LDA", IZY, cpu.amIZY, cpu.opLDA, 5}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"LDY", ZPX, cpu.amZPX, cpu.opLDY, 4}, {"LDA", ZPX, cpu.amZPX, cpu.opLDA, 4}, {"LDX", ZPY, cpu.amZPY, cpu.opLDX, 4}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"CLV", IMP, cpu.amIMP, cpu.opCLV, 2}, {"LDA", ABY, cpu.amABY, cpu.opLDA, 4}, {"TSX", IMP, cpu.amIMP, cpu.opTSX, 2}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"LDY", ABX, cpu.amABX, cpu.opLDY, 4}, {"LDA", ABX, cpu.amABX, cpu.opLDA, 4}, {"LDX", ABY, cpu.amABY, cpu.opLDX, 4}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2},
		{"CPY", IMM, cpu.amIMM, cpu.opCPY, 2}, {"CMP", IZX, cpu.amIZX, cpu.opCMP, 6}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"CPY", ZP0, cpu.amZP0, cpu.opCPY, 3}, {"CMP", ZP0, cpu.amZP0, cpu.opCMP, 3}, {"DEC", ZP0, cpu.amZP0, cpu.opDEC, 5}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"INY", IMP, cpu.amIMP, cpu.opINY, 2}, {"CMP", IMM, cpu.amIMM, cpu.opCMP, 2}, {"DEX", IMP, cpu.amIMP, cpu.opDEX, 2}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"CPY", ABS, cpu.amABS, cpu.opCPY, 4}, {"CMP", ABS, cpu.amABS, cpu.opCMP, 4}, {"DEC", ABS, cpu.amABS, cpu.opDEC, 6}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2},
		{"BNE", REL, cpu.amREL, cpu.opBNE, 2}, {"CMP", IZY, cpu.amIZY, cpu.opCMP, 5}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"CMP", ZPX, cpu.amZPX, cpu.opCMP, 4}, {"DEC", ZPX, cpu.amZPX, cpu.opDEC, 6}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"CLD", IMP, cpu.amIMP, cpu.opCLD, 2}, {"CMP", ABY, cpu.amABY, cpu.opCMP, 4}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"CMP", ABX, cpu.amABX, cpu.opCMP, 4}, {"DEC", ABX, cpu.amABX, cpu.opDEC, 7}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2},
		{"CPX", IMM, cpu.amIMM, cpu.opCPX, 2}, {"SBC", IZX, cpu.amIZX, cpu.opSBC, 6}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"CPX", ZP0, cpu.amZP0, cpu.opCPX, 3}, {"SBC", ZP0, cpu.amZP0, cpu.opSBC, 3}, {"INC", ZP0, cpu.amZP0, cpu.opINC, 5}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"INX", IMP, cpu.amIMP, cpu.opINX, 2}, {"SBC", IMM, cpu.amIMM, cpu.opSBC, 2}, {"NOP", IMP, cpu.amIMP, cpu.opNOP, 2}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"CPX", ABS, cpu.amABS, cpu.opCPX, 4}, {"SBC", ABS, cpu.amABS, cpu.opSBC, 4}, {"INC", ABS, cpu.amABS, cpu.opINC, 6}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2},
		{"BEQ", REL, cpu.amREL, cpu.opBEQ, 2}, {"SBC", IZY, cpu.amIZY, cpu.opSBC, 5}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"SBC", ZPX, cpu.amZPX, cpu.opSBC, 4}, {"INC", ZPX, cpu.amZPX, cpu.opINC, 6}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"SED", IMP, cpu.amIMP, cpu.opSED, 2}, {"SBC", ABY, cpu.amABY, cpu.opSBC, 4}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2}, {"SBC", ABX, cpu.amABX, cpu.opSBC, 4}, {"INC", ABX, cpu.amABX, cpu.opINC, 7}, {"XXX", IMP, cpu.amIMP, cpu.opXXX, 2},
	}

	return cpu
}

// ConnectBus attaches the CPU to the bus it reads and writes through. The
// bus owns the CPU, PPU, and cartridge as a single-owner shared-reference
// design (spec.md §9 accepts either this or explicit-parameter passing);
// this keeps the instruction table's closures simple bound methods.
func (cpu *CPU) ConnectBus(b *Bus) { cpu.bus = b }

func (cpu *CPU) read(addr uint16) byte       { return cpu.bus.CpuRead(addr) }
func (cpu *CPU) write(addr uint16, v byte)   { cpu.bus.CpuWrite(addr, v) }

func (cpu *CPU) readWord(addr uint16) uint16 {
	lo := cpu.read(addr)
	hi := cpu.read(addr + 1)
	return uint16(hi)<<8 | uint16(lo)
}

// fetch loads the ALU operand from the address resolved by the addressing
// mode, unless the mode is implied/accumulator, in which case the operand
// is already A.
func (cpu *CPU) fetch() {
	if !cpu.isImpliedAddr {
		cpu.fetched = cpu.read(cpu.addrAbs)
	}
}

// storeResult writes a shift/rotate result back to A (implied/accumulator
// mode) or to the resolved memory address.
func (cpu *CPU) storeResult(v byte) {
	if cpu.isImpliedAddr {
		cpu.A = v
	} else {
		cpu.write(cpu.addrAbs, v)
	}
}

func (cpu *CPU) stackPush(v byte) {
	cpu.write(stackBase|uint16(cpu.SP), v)
	cpu.SP--
}

func (cpu *CPU) stackPop() byte {
	cpu.SP++
	return cpu.read(stackBase | uint16(cpu.SP))
}

// Reset loads PC from the reset vector, clears the register file, and
// schedules the 8 cycles reset takes per spec.md §4.2.
func (cpu *CPU) Reset() {
	cpu.A = 0x00
	cpu.X = 0x00
	cpu.Y = 0x00
	cpu.SP = 0xFD
	cpu.P = byte(StatusFlagU)

	cpu.PC = cpu.readWord(resetVectAddr)

	cpu.addrAbs = 0x0000
	cpu.addrRel = 0x0000
	cpu.fetched = 0x00
	cpu.isImpliedAddr = false

	cpu.cycles = 8
}

// pushInterruptFrame is the push sequence shared by IRQ, NMI, and BRK: PC
// hi, PC lo, then P with U set and B set or cleared as the caller specifies.
func (cpu *CPU) pushInterruptFrame(breakFlag bool) {
	cpu.stackPush(byte(cpu.PC >> 8))
	cpu.stackPush(byte(cpu.PC))

	status := cpu.P | byte(StatusFlagU)
	if breakFlag {
		status |= byte(StatusFlagB)
	} else {
		status &^= byte(StatusFlagB)
	}
	cpu.stackPush(status)
}

// IRQ is a no-op while the interrupt-disable flag is set.
func (cpu *CPU) IRQ() {
	if cpu.getFlag(StatusFlagI) != 0 {
		return
	}

	cpu.pushInterruptFrame(false)
	cpu.setFlag(StatusFlagI, true)
	cpu.PC = cpu.readWord(irqVectAddr)
	cpu.cycles = 7
}

// NMI is unconditional.
func (cpu *CPU) NMI() {
	cpu.pushInterruptFrame(false)
	cpu.setFlag(StatusFlagI, true)
	cpu.PC = cpu.readWord(nmiVectAddr)
	cpu.cycles = 8
}

// Step advances the machine by one clock. If an instruction is mid-flight
// it just burns a cycle; otherwise it fetches, decodes, and executes the
// next one, charging the combined page-crossing penalty.
func (cpu *CPU) Step() {
	if cpu.cycles == 0 {
		cpu.opcode = cpu.read(cpu.PC)
		cpu.PC++

		inst := cpu.instLookup[cpu.opcode]
		cpu.cycles = inst.Cycles

		cpu.isImpliedAddr = false
		modePenalty := inst.AddrMode()
		opPenalty := inst.Execute()

		cpu.cycles += modePenalty & opPenalty
	}

	cpu.cycleCount++
	cpu.cycles--
}

// StepToNextInstruction finishes any cycles still pending (an in-flight
// instruction or the reset sequence), then runs the next instruction to
// completion. Debug-only: real hardware has no such primitive.
func (cpu *CPU) StepToNextInstruction() {
	for cpu.cycles > 0 {
		cpu.Step()
	}
	cpu.Step()
	for cpu.cycles > 0 {
		cpu.Step()
	}
}

// Snapshot is the debug hook from spec.md §6: a point-in-time view of the
// register file plus the in-flight opcode and remaining cycles.
type Snapshot struct {
	A, X, Y, SP, P byte
	PC             uint16
	Opcode         byte
	Cycles         byte
}

func (cpu *CPU) Snapshot() Snapshot {
	return Snapshot{
		A: cpu.A, X: cpu.X, Y: cpu.Y, SP: cpu.SP, P: cpu.P,
		PC: cpu.PC, Opcode: cpu.opcode, Cycles: cpu.cycles,
	}
}

// Lookup exposes one row of the instruction table to the disassembler and
// debugger without exporting the table itself.
func (cpu *CPU) Lookup(opcode byte) Instruction {
	return cpu.instLookup[opcode]
}
