package terminal

import (
	"io"
	"sync"
)

const bell = "\x07"

// Buzzer rings the terminal bell every time the sound starts
type Buzzer struct {
	mu        sync.Mutex
	out       io.Writer
	isPlaying bool
}

func NewBuzzer(out io.Writer) *Buzzer {
	return &Buzzer{out: out}
}

// Boot implements tchip8.Buzzer.
func (b *Buzzer) Boot() error {
	return nil
}

// Play implements tchip8.Buzzer.
func (b *Buzzer) Play() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.isPlaying {
		return
	}
	b.isPlaying = true
	io.WriteString(b.out, bell)
}

// Stop implements tchip8.Buzzer.
func (b *Buzzer) Stop() {
	b.mu.Lock()
	b.isPlaying = false
	b.mu.Unlock()
}
