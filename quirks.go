package tchip8

import (
	"fmt"
	"strings"
)

// Quirks toggles the historical variations of a few instructions.
// The zero value is the reference behaviour:
//   - 8xy6/8xyE shift Vy into Vx
//   - 8xy7 stores Vy-Vx into Vy
//   - Bnnn jumps to nnn+V0
//   - Fx55/Fx65 leave I untouched
//   - 8xy1/8xy2/8xy3 leave VF untouched
type Quirks uint8

const (
	// QuirkVfReset makes OR, AND and XOR clear VF
	QuirkVfReset Quirks = 1 << iota
	// QuirkMemoryMovesIndex makes Fx55 and Fx65 leave I at I+x+1
	QuirkMemoryMovesIndex
	// QuirkJumpUsesVx makes Bxnn jump to xnn+Vx
	QuirkJumpUsesVx
	// QuirkShiftInPlace makes 8xy6 and 8xyE shift Vx, ignoring Vy
	QuirkShiftInPlace
	// QuirkSubnWritesVx makes 8xy7 store its result into Vx
	QuirkSubnWritesVx
)

const DefaultQuirks Quirks = 0

var quirkNames = []struct {
	q    Quirks
	name string
}{
	{QuirkVfReset, "vf-reset"},
	{QuirkMemoryMovesIndex, "memory-moves-index"},
	{QuirkJumpUsesVx, "jump-uses-vx"},
	{QuirkShiftInPlace, "shift-in-place"},
	{QuirkSubnWritesVx, "subn-writes-vx"},
}

func (q Quirks) Has(flag Quirks) bool {
	return q&flag > 0
}

func (q Quirks) String() string {
	names := make([]string, 0, len(quirkNames))
	for _, qn := range quirkNames {
		if q.Has(qn.q) {
			names = append(names, qn.name)
		}
	}

	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ",")
}

// ParseQuirks reads a comma separated list of quirk names
func ParseQuirks(s string) (Quirks, error) {
	var q Quirks
	if s == "" || s == "none" {
		return q, nil
	}

outer:
	for _, name := range strings.Split(s, ",") {
		name = strings.TrimSpace(name)
		for _, qn := range quirkNames {
			if qn.name == name {
				q |= qn.q
				continue outer
			}
		}
		return 0, fmt.Errorf("unknown quirk %q", name)
	}

	return q, nil
}
