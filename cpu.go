package tchip8

import (
	"crypto/rand"
	"io"
)

const StackSize = 256

// MachineRoutineInterpreter runs the 0nnn SYS instructions
type MachineRoutineInterpreter func(opCode OpCode, cpu *Cpu) error

// Chip-8 CPU
type Cpu struct {
	Memory *Memory
	// V 8-bit registers
	V [16]byte
	// I 16-bit register (12-bit usable)
	I uint16
	// Delay timer register
	Dt byte
	// Sound timer register
	St byte
	// Program counter
	Pc uint16
	// Stack pointer, the next free slot
	Sp uint16
	// Stack
	Stack [StackSize]uint16

	// Rand is the source of RND, crypto/rand by default
	Rand   io.Reader
	Quirks Quirks

	MachineRoutineInterpreter MachineRoutineInterpreter

	screen Screen
	keys   KeyboardState
	drawn  bool
	cycles uint
}

func NewCpu(memory *Memory) *Cpu {
	return &Cpu{
		Memory: memory,

		Pc: StartOfProgram,

		Rand:   rand.Reader,
		Quirks: DefaultQuirks,
	}
}

func (cpu Cpu) IsSoundTimerActive() bool {
	return cpu.St > 0
}

func (cpu Cpu) IsDelayTimerActive() bool {
	return cpu.Dt > 0
}

func (cpu Cpu) Cycles() uint {
	return cpu.cycles
}

// Display returns a copy of the screen
func (cpu *Cpu) Display() Screen {
	return cpu.screen
}

// LoadProgram loads the program into memory and resets the registers.
// Nothing changes if the program does not fit.
func (cpu *Cpu) LoadProgram(program []byte) error {
	if err := cpu.Memory.LoadProgram(program); err != nil {
		return err
	}

	cpu.Reset()
	return nil
}

// Reset puts the registers, stack, timers and screen back to their power-on state.
// Memory is kept.
func (cpu *Cpu) Reset() {
	cpu.V = [16]byte{}
	cpu.I = 0
	cpu.Dt = 0
	cpu.St = 0
	cpu.Pc = StartOfProgram
	cpu.Sp = 0
	cpu.Stack = [StackSize]uint16{}
	cpu.screen.clear()
	cpu.keys = KeyboardState{}
	cpu.drawn = false
	cpu.cycles = 0
}

// CurrentOpCode returns the opcode at PC without executing it
func (cpu *Cpu) CurrentOpCode() (OpCode, bool) {
	if !inBounds(cpu.Pc, 2) {
		return 0, false
	}

	return OpCode(uint16(cpu.Memory[cpu.Pc])<<8 | uint16(cpu.Memory[cpu.Pc+1])), true
}

// Step runs one fetch-decode-execute cycle with the given keys held down.
// It reports whether the screen changed. On error PC is left on the
// faulting instruction.
func (cpu *Cpu) Step(keys KeyboardState) (bool, error) {
	pc := cpu.Pc
	op, ok := cpu.CurrentOpCode()
	if !ok {
		return false, &MemoryFault{Pc: pc, Address: pc, Size: 2, Access: AccessFetch}
	}
	cpu.Pc += 2

	drawn, err := cpu.Execute(op, keys)
	if err != nil {
		cpu.Pc = pc
		return false, locate(err, op, pc)
	}
	cpu.cycles++

	return drawn, nil
}

// Tick decrements both timers, never below zero.
// It reports whether the sound timer was running before the tick.
func (cpu *Cpu) Tick() bool {
	beep := cpu.St > 0

	if cpu.Dt > 0 {
		cpu.Dt--
	}
	if cpu.St > 0 {
		cpu.St--
	}

	return beep
}

func bool2byte(b bool) byte {
	if b {
		return 1
	}

	return 0
}
