package tchip8

import (
	"errors"
	"fmt"
	"strings"
)

var ErrProgramDoesNotFitIntoMemory = errors.New("the program does not fit into memory")

// LoadError is returned when a program image cannot be loaded.
type LoadError struct {
	Size     int
	Capacity int
}

func (err *LoadError) Error() string {
	return fmt.Sprintf("%s: program is %d bytes, %d available", ErrProgramDoesNotFitIntoMemory, err.Size, err.Capacity)
}

func (err *LoadError) Unwrap() error {
	return ErrProgramDoesNotFitIntoMemory
}

const (
	MemorySize     = 4096
	StartOfProgram = 0x200
	// FontAddress is where the built-in glyphs live
	FontAddress = 0x000
	// FontGlyphSize is the number of bytes of each glyph
	FontGlyphSize = 5
)

// MaxProgramSize is the largest image LoadProgram accepts
const MaxProgramSize = MemorySize - StartOfProgram

type Memory [MemorySize]byte

var font = [16 * FontGlyphSize]byte{
	// 0
	0xF0, 0x90, 0x90, 0x90, 0xF0,
	// 1
	0x20, 0x60, 0x20, 0x20, 0x70,
	// 2
	0xF0, 0x10, 0xF0, 0x80, 0xF0,
	// 3
	0xF0, 0x10, 0xF0, 0x10, 0xF0,
	// 4
	0x90, 0x90, 0xF0, 0x10, 0x10,
	// 5
	0xF0, 0x80, 0xF0, 0x10, 0xF0,
	// 6
	0xF0, 0x80, 0xF0, 0x90, 0xF0,
	// 7
	0xF0, 0x10, 0x20, 0x40, 0x40,
	// 8
	0xF0, 0x90, 0xF0, 0x90, 0xF0,
	// 9
	0xF0, 0x90, 0xF0, 0x10, 0xF0,
	// A
	0xF0, 0x90, 0xF0, 0x90, 0x90,
	// B
	0xE0, 0x90, 0xE0, 0x90, 0xE0,
	// C
	0xF0, 0x80, 0x80, 0x80, 0xF0,
	// D
	0xE0, 0x90, 0x90, 0x90, 0xE0,
	// E
	0xF0, 0x80, 0xF0, 0x80, 0xF0,
	// F
	0xF0, 0x80, 0xF0, 0x80, 0x80,
}

// Font returns a copy of the built-in glyph table
func Font() [16 * FontGlyphSize]byte {
	return font
}

// NewMemory creates a zeroed memory of 4096 bytes with the font table loaded
func NewMemory() *Memory {
	m := &Memory{}
	m.loadFont()

	return m
}

func (mem *Memory) loadFont() {
	copy(mem[FontAddress:], font[:])
}

func (mem Memory) Clone() *Memory {
	m := &Memory{}

	copy(m[:], mem[:])

	return m
}

func (mem Memory) String() string {
	sb := strings.Builder{}

	sb.WriteString("[ ")
	for _, b := range mem[:StartOfProgram] {
		sb.WriteString(fmt.Sprintf("%X ", b))
	}
	sb.WriteString("]\n")
	sb.WriteString("[ ")
	for _, b := range mem[StartOfProgram:] {
		sb.WriteString(fmt.Sprintf("%X ", b))
	}
	sb.WriteString("]")

	return sb.String()
}

func (mem Memory) IsEqual(other Memory) bool {
	return mem == other
}

// LoadProgram clears the program area and copies the program to 0x200.
// Memory is left untouched when the program is too large.
func (mem *Memory) LoadProgram(program []byte) error {
	if len(program) > MaxProgramSize {
		return &LoadError{Size: len(program), Capacity: MaxProgramSize}
	}

	clear(mem[:])
	mem.loadFont()
	copy(mem[StartOfProgram:], program)

	return nil
}

// inBounds reports whether the n bytes starting at addr are addressable
func inBounds(addr uint16, n int) bool {
	return int(addr)+n <= MemorySize
}
