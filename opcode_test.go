package tchip8_test

import (
	"testing"

	"github.com/guslan/tchip8"
)

func TestOpCodeFields(t *testing.T) {
	op := tchip8.OpCode(0xD123)

	if op.Family() != 0xD || op.X() != 0x1 || op.Y() != 0x2 || op.N() != 0x3 {
		t.Fatalf(`unexpected nibbles %X %X %X %X`, op.Family(), op.X(), op.Y(), op.N())
	}
	if op.KK() != 0x23 || op.NNN() != 0x123 {
		t.Fatalf(`unexpected kk=%02X nnn=%03X`, op.KK(), op.NNN())
	}
}

func TestOpCodeString(t *testing.T) {
	tests := []struct {
		op   tchip8.OpCode
		want string
	}{
		{0x00E0, "CLS"},
		{0x00EE, "RET"},
		{0x0123, "SYS 123"},
		{0x1ABC, "JP ABC"},
		{0x2ABC, "CALL ABC"},
		{0x3A42, "SE VA, 42"},
		{0x4A42, "SNE VA, 42"},
		{0x5AB0, "SE VA, VB"},
		{0x5AB1, "DW 5AB1"},
		{0x6A42, "LD VA, 42"},
		{0x7A42, "ADD VA, 42"},
		{0x8AB4, "ADD VA, VB"},
		{0x8AB7, "SUBN VA, VB"},
		{0x8ABE, "SHL VA, VB"},
		{0x8AB9, "DW 8AB9"},
		{0x9AB0, "SNE VA, VB"},
		{0xA123, "LD I, 123"},
		{0xB123, "JP V0, 123"},
		{0xCA0F, "RND VA, 0F"},
		{0xDAB5, "DRW VA, VB, 5"},
		{0xEA9E, "SKP VA"},
		{0xEAA1, "SKNP VA"},
		{0xEA00, "DW EA00"},
		{0xFA07, "LD VA, DT"},
		{0xFA0A, "LD VA, K"},
		{0xFA1E, "ADD I, VA"},
		{0xFA33, "LD B, VA"},
		{0xFA55, "LD [I], VA"},
		{0xFA65, "LD VA, [I]"},
		{0xFAFF, "DW FAFF"},
	}

	for _, tt := range tests {
		if got := tt.op.String(); got != tt.want {
			t.Errorf(`OpCode(%04X).String() = %q, expected %q`, uint16(tt.op), got, tt.want)
		}
	}
}

func TestQuirks(t *testing.T) {
	q, err := tchip8.ParseQuirks("vf-reset, shift-in-place")
	if err != nil {
		t.Fatalf(`ParseQuirks() returned an error %v`, err)
	}
	if !q.Has(tchip8.QuirkVfReset) || !q.Has(tchip8.QuirkShiftInPlace) || q.Has(tchip8.QuirkJumpUsesVx) {
		t.Fatalf(`unexpected quirks %s`, q)
	}
	if q.String() != "vf-reset,shift-in-place" {
		t.Fatalf(`q.String() = %q`, q.String())
	}

	if q, err := tchip8.ParseQuirks(""); err != nil || q != tchip8.DefaultQuirks {
		t.Fatalf(`ParseQuirks("") = %v, %v`, q, err)
	}
	if tchip8.DefaultQuirks.String() != "none" {
		t.Fatalf(`DefaultQuirks.String() = %q`, tchip8.DefaultQuirks.String())
	}
	if _, err := tchip8.ParseQuirks("fast"); err == nil {
		t.Fatalf(`ParseQuirks("fast") should fail`)
	}
}
