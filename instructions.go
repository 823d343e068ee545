package tchip8

import (
	"fmt"
	"io"
)

type instruction func(cpu *Cpu, op OpCode) error

// families is indexed by the top nibble of the opcode
var families = [16]instruction{
	0x0: execSystem,
	0x1: opJp,
	0x2: opCall,
	0x3: opSeByte,
	0x4: opSneByte,
	0x5: opSeReg,
	0x6: opLdByte,
	0x7: opAddByte,
	0x8: execAlu,
	0x9: opSneReg,
	0xA: opLdI,
	0xB: opJpV0,
	0xC: opRnd,
	0xD: opDrw,
	0xE: execKey,
	0xF: execMisc,
}

var systemOps = map[OpCode]instruction{
	0x00E0: opCls,
	0x00EE: opRet,
}

// aluOps is indexed by the low nibble of 8xyN
var aluOps = [16]instruction{
	0x0: opLdReg,
	0x1: opOr,
	0x2: opAnd,
	0x3: opXor,
	0x4: opAddReg,
	0x5: opSub,
	0x6: opShr,
	0x7: opSubn,
	0xE: opShl,
}

var keyOps = map[byte]instruction{
	0x9E: opSkp,
	0xA1: opSknp,
}

var miscOps = map[byte]instruction{
	0x07: opLdVxDt,
	0x0A: opLdVxK,
	0x15: opLdDtVx,
	0x18: opLdStVx,
	0x1E: opAddIVx,
	0x29: opLdFVx,
	0x33: opLdBVx,
	0x55: opStoreRegisters,
	0x65: opLoadRegisters,
}

// Execute runs a single decoded instruction against the current state,
// without fetching it. PC is expected to already point past it.
// Unknown opcodes do nothing.
func (cpu *Cpu) Execute(op OpCode, keys KeyboardState) (bool, error) {
	cpu.keys = keys
	cpu.drawn = false

	if err := families[op.Family()](cpu, op); err != nil {
		return false, err
	}

	return cpu.drawn, nil
}

func execSystem(cpu *Cpu, op OpCode) error {
	if ins, ok := systemOps[op]; ok {
		return ins(cpu, op)
	}

	// SYS addr :: Jump to a machine code routine at nnn.
	// This instruction is only used on the old computers on which Chip-8 was originally implemented.
	if cpu.MachineRoutineInterpreter != nil {
		return cpu.MachineRoutineInterpreter(op, cpu)
	}

	return nil
}

func execAlu(cpu *Cpu, op OpCode) error {
	if ins := aluOps[op.N()]; ins != nil {
		return ins(cpu, op)
	}

	return nil
}

func execKey(cpu *Cpu, op OpCode) error {
	if ins, ok := keyOps[op.KK()]; ok {
		return ins(cpu, op)
	}

	return nil
}

func execMisc(cpu *Cpu, op OpCode) error {
	if ins, ok := miscOps[op.KK()]; ok {
		return ins(cpu, op)
	}

	return nil
}

// CLS :: Clear the display.
func opCls(cpu *Cpu, op OpCode) error {
	cpu.screen.clear()
	cpu.drawn = true

	return nil
}

// RET :: Return from a subroutine.
func opRet(cpu *Cpu, op OpCode) error {
	if cpu.Sp == 0 {
		return &StackFault{Sp: cpu.Sp, Err: ErrStackUnderflow}
	}
	cpu.Sp--
	cpu.Pc = cpu.Stack[cpu.Sp]

	return nil
}

// JP addr :: Jump to location nnn.
func opJp(cpu *Cpu, op OpCode) error {
	cpu.Pc = op.NNN()

	return nil
}

// CALL addr :: Call subroutine at nnn.
func opCall(cpu *Cpu, op OpCode) error {
	if cpu.Sp >= StackSize {
		return &StackFault{Sp: cpu.Sp, Err: ErrStackOverflow}
	}
	cpu.Stack[cpu.Sp] = cpu.Pc
	cpu.Sp++

	cpu.Pc = op.NNN()

	return nil
}

// SE Vx, byte :: Skip next instruction if Vx = kk.
func opSeByte(cpu *Cpu, op OpCode) error {
	if cpu.V[op.X()] == op.KK() {
		cpu.Pc += 2
	}

	return nil
}

// SNE Vx, byte :: Skip next instruction if Vx != kk.
func opSneByte(cpu *Cpu, op OpCode) error {
	if cpu.V[op.X()] != op.KK() {
		cpu.Pc += 2
	}

	return nil
}

// SE Vx, Vy :: Skip next instruction if Vx = Vy.
func opSeReg(cpu *Cpu, op OpCode) error {
	if op.N() != 0 {
		return nil
	}

	if cpu.V[op.X()] == cpu.V[op.Y()] {
		cpu.Pc += 2
	}

	return nil
}

// SNE Vx, Vy :: Skip next instruction if Vx != Vy.
func opSneReg(cpu *Cpu, op OpCode) error {
	if op.N() != 0 {
		return nil
	}

	if cpu.V[op.X()] != cpu.V[op.Y()] {
		cpu.Pc += 2
	}

	return nil
}

// LD Vx, byte :: Set Vx = kk.
func opLdByte(cpu *Cpu, op OpCode) error {
	cpu.V[op.X()] = op.KK()

	return nil
}

// ADD Vx, byte :: Set Vx = Vx + kk. VF is not touched.
func opAddByte(cpu *Cpu, op OpCode) error {
	cpu.V[op.X()] += op.KK()

	return nil
}

// LD Vx, Vy :: Set Vx = Vy.
func opLdReg(cpu *Cpu, op OpCode) error {
	cpu.V[op.X()] = cpu.V[op.Y()]

	return nil
}

// OR Vx, Vy :: Set Vx = Vx OR Vy.
func opOr(cpu *Cpu, op OpCode) error {
	cpu.V[op.X()] |= cpu.V[op.Y()]
	if cpu.Quirks.Has(QuirkVfReset) {
		cpu.V[0xF] = 0
	}

	return nil
}

// AND Vx, Vy :: Set Vx = Vx AND Vy.
func opAnd(cpu *Cpu, op OpCode) error {
	cpu.V[op.X()] &= cpu.V[op.Y()]
	if cpu.Quirks.Has(QuirkVfReset) {
		cpu.V[0xF] = 0
	}

	return nil
}

// XOR Vx, Vy :: Set Vx = Vx XOR Vy.
func opXor(cpu *Cpu, op OpCode) error {
	cpu.V[op.X()] ^= cpu.V[op.Y()]
	if cpu.Quirks.Has(QuirkVfReset) {
		cpu.V[0xF] = 0
	}

	return nil
}

// ADD Vx, Vy :: Set Vx = Vx + Vy, set VF = carry.
func opAddReg(cpu *Cpu, op OpCode) error {
	r := uint16(cpu.V[op.X()]) + uint16(cpu.V[op.Y()])
	cpu.V[op.X()] = byte(r & 0x00FF)
	cpu.V[0xF] = byte(r >> 8)

	return nil
}

// SUB Vx, Vy :: Set Vx = Vx - Vy, set VF = NOT borrow.
func opSub(cpu *Cpu, op OpCode) error {
	x, y := op.X(), op.Y()
	carry := cpu.V[x] >= cpu.V[y]
	cpu.V[x] = cpu.V[x] - cpu.V[y]
	cpu.V[0xF] = bool2byte(carry)

	return nil
}

// SHR Vx {, Vy} :: Set Vx = Vy SHR 1, set VF = the bit shifted out.
func opShr(cpu *Cpu, op OpCode) error {
	src := cpu.V[op.Y()]
	if cpu.Quirks.Has(QuirkShiftInPlace) {
		src = cpu.V[op.X()]
	}

	cpu.V[op.X()] = src >> 1
	cpu.V[0xF] = src & 0b00000001

	return nil
}

// SUBN Vx, Vy :: Set Vy = Vy - Vx, set VF = NOT borrow.
func opSubn(cpu *Cpu, op OpCode) error {
	x, y := op.X(), op.Y()
	carry := cpu.V[y] >= cpu.V[x]
	r := cpu.V[y] - cpu.V[x]

	if cpu.Quirks.Has(QuirkSubnWritesVx) {
		cpu.V[x] = r
	} else {
		cpu.V[y] = r
	}
	cpu.V[0xF] = bool2byte(carry)

	return nil
}

// SHL Vx {, Vy} :: Set Vx = Vy SHL 1, set VF = the bit shifted out.
func opShl(cpu *Cpu, op OpCode) error {
	src := cpu.V[op.Y()]
	if cpu.Quirks.Has(QuirkShiftInPlace) {
		src = cpu.V[op.X()]
	}

	cpu.V[op.X()] = src << 1
	cpu.V[0xF] = (src & 0b10000000) >> 7

	return nil
}

// LD I, addr :: Set I = nnn.
func opLdI(cpu *Cpu, op OpCode) error {
	cpu.I = op.NNN()

	return nil
}

// JP V0, addr :: Jump to location nnn + V0.
func opJpV0(cpu *Cpu, op OpCode) error {
	if cpu.Quirks.Has(QuirkJumpUsesVx) {
		cpu.Pc = uint16(cpu.V[op.X()]) + op.NNN()
	} else {
		cpu.Pc = uint16(cpu.V[0]) + op.NNN()
	}

	return nil
}

// RND Vx, byte :: Set Vx = random byte AND kk.
func opRnd(cpu *Cpu, op OpCode) error {
	buff := [1]byte{}
	if _, err := io.ReadFull(cpu.Rand, buff[:]); err != nil {
		return fmt.Errorf("reading random byte: %w", err)
	}

	cpu.V[op.X()] = buff[0] & op.KK()

	return nil
}

// DRW Vx, Vy, nibble :: Display n-byte sprite starting at memory location I at (Vx, Vy), set VF = collision.
// The start position wraps around the screen, the sprite itself is clipped at the borders.
func opDrw(cpu *Cpu, op OpCode) error {
	n := int(op.N())
	if !inBounds(cpu.I, n) {
		return &MemoryFault{Address: cpu.I, Size: n, Access: AccessRead}
	}

	x, y := cpu.V[op.X()], cpu.V[op.Y()]
	cpu.V[0xF] = 0
	collision := cpu.screen.drawSprite(x, y, cpu.Memory[cpu.I:int(cpu.I)+n])
	cpu.V[0xF] = bool2byte(collision)
	cpu.drawn = true

	return nil
}

// SKP Vx :: Skip next instruction if key with the value of Vx is pressed.
func opSkp(cpu *Cpu, op OpCode) error {
	if cpu.keys.IsPressed(cpu.V[op.X()]) {
		cpu.Pc += 2
	}

	return nil
}

// SKNP Vx :: Skip next instruction if key with the value of Vx is not pressed.
func opSknp(cpu *Cpu, op OpCode) error {
	if !cpu.keys.IsPressed(cpu.V[op.X()]) {
		cpu.Pc += 2
	}

	return nil
}

// LD Vx, DT :: Set Vx = delay timer value.
func opLdVxDt(cpu *Cpu, op OpCode) error {
	cpu.V[op.X()] = cpu.Dt

	return nil
}

// LD Vx, K :: Wait for a key press, store the value of the key in Vx.
// Waiting means running this same instruction again on the next cycle.
func opLdVxK(cpu *Cpu, op OpCode) error {
	k, pressed := cpu.keys.Lowest()
	if !pressed {
		cpu.Pc -= 2
		return nil
	}

	cpu.V[op.X()] = k

	return nil
}

// LD DT, Vx :: Set delay timer = Vx.
func opLdDtVx(cpu *Cpu, op OpCode) error {
	cpu.Dt = cpu.V[op.X()]

	return nil
}

// LD ST, Vx :: Set sound timer = Vx.
func opLdStVx(cpu *Cpu, op OpCode) error {
	cpu.St = cpu.V[op.X()]

	return nil
}

// ADD I, Vx :: Set I = I + Vx, saturating. VF = 1 when I leaves the address space.
func opAddIVx(cpu *Cpu, op OpCode) error {
	r := uint32(cpu.I) + uint32(cpu.V[op.X()])
	cpu.I = uint16(min(r, 0xFFFF))

	if cpu.I > 0x0FFF {
		cpu.V[0xF] = 1
	}

	return nil
}

// LD F, Vx :: Set I = location of sprite for digit Vx.
func opLdFVx(cpu *Cpu, op OpCode) error {
	cpu.I = FontAddress + uint16(cpu.V[op.X()])*FontGlyphSize

	return nil
}

// LD B, Vx :: Store BCD representation of Vx in memory locations I, I+1, and I+2.
func opLdBVx(cpu *Cpu, op OpCode) error {
	if !inBounds(cpu.I, 3) {
		return &MemoryFault{Address: cpu.I, Size: 3, Access: AccessWrite}
	}

	v := cpu.V[op.X()]
	cpu.Memory[cpu.I+0] = v / 100
	cpu.Memory[cpu.I+1] = (v / 10) % 10
	cpu.Memory[cpu.I+2] = v % 10

	return nil
}

// LD [I], Vx :: Store registers V0 through Vx in memory starting at location I.
func opStoreRegisters(cpu *Cpu, op OpCode) error {
	n := int(op.X()) + 1
	if !inBounds(cpu.I, n) {
		return &MemoryFault{Address: cpu.I, Size: n, Access: AccessWrite}
	}

	copy(cpu.Memory[cpu.I:], cpu.V[:n])
	if cpu.Quirks.Has(QuirkMemoryMovesIndex) {
		cpu.I += uint16(n)
	}

	return nil
}

// LD Vx, [I] :: Read registers V0 through Vx from memory starting at location I.
func opLoadRegisters(cpu *Cpu, op OpCode) error {
	n := int(op.X()) + 1
	if !inBounds(cpu.I, n) {
		return &MemoryFault{Address: cpu.I, Size: n, Access: AccessRead}
	}

	copy(cpu.V[:n], cpu.Memory[cpu.I:])
	if cpu.Quirks.Has(QuirkMemoryMovesIndex) {
		cpu.I += uint16(n)
	}

	return nil
}
