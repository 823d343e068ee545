package tchip8

import (
	"errors"
	"fmt"
)

var ErrStackUnderflow = errors.New("stack underflow: try to pop an empty stack")
var ErrStackOverflow = errors.New("stack overflow: try to push to a full stack")
var ErrMemoryOutOfBounds = errors.New("memory access out of bounds")

// StackFault is returned by CALL on a full stack and by RET on an empty one
type StackFault struct {
	OpCode OpCode
	Pc     uint16
	Sp     uint16
	// Err is either ErrStackOverflow or ErrStackUnderflow
	Err error
}

func (f *StackFault) Error() string {
	return fmt.Sprintf("%s: opcode=%04X at PC=%03X, SP=%d", f.Err, uint16(f.OpCode), f.Pc, f.Sp)
}

func (f *StackFault) Unwrap() error {
	return f.Err
}

type Access byte

const (
	AccessFetch Access = iota
	AccessRead
	AccessWrite
)

func (a Access) String() string {
	switch a {
	case AccessFetch:
		return "fetch"
	case AccessRead:
		return "read"
	case AccessWrite:
		return "write"
	}

	return "unknown"
}

// MemoryFault is returned when an instruction touches memory past 0xFFF
type MemoryFault struct {
	OpCode  OpCode
	Pc      uint16
	Address uint16
	Size    int
	Access  Access
}

func (f *MemoryFault) Error() string {
	return fmt.Sprintf("%s: %s of %d bytes at %04X by opcode=%04X at PC=%03X",
		ErrMemoryOutOfBounds, f.Access, f.Size, f.Address, uint16(f.OpCode), f.Pc)
}

func (f *MemoryFault) Unwrap() error {
	return ErrMemoryOutOfBounds
}

// locate fills in where the faulting instruction was fetched from
func locate(err error, op OpCode, pc uint16) error {
	var sf *StackFault
	if errors.As(err, &sf) {
		sf.OpCode = op
		sf.Pc = pc
	}

	var mf *MemoryFault
	if errors.As(err, &mf) {
		mf.OpCode = op
		mf.Pc = pc
	}

	return err
}
