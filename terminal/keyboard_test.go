package terminal_test

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/guslan/tchip8"
	"github.com/guslan/tchip8/terminal"
	"github.com/retroenv/retrogolib/assert"
)

type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time {
	return c.now
}

func newKeyboard(in io.Reader, c *clock, hold time.Duration) *terminal.Keyboard {
	return terminal.NewKeyboard(in, func(config *terminal.KeyboardConfig) {
		config.Clock = c.Now
		config.Hold = hold
	})
}

func TestKeyboardReportsEachKeyOnce(t *testing.T) {
	c := &clock{now: time.Unix(100, 0)}
	kb := newKeyboard(strings.NewReader(""), c, terminal.DefaultHold)

	kb.Feed('w')
	state := kb.State()
	assert.True(t, state[0x5])
	assert.Equal(t, tchip8.KeyboardState{}, kb.State())

	// a second keystroke is a second press, even with no time elapsed
	kb.Feed('w')
	assert.True(t, kb.State()[0x5])
	assert.False(t, kb.State()[0x5])
}

func TestKeyboardWaitForKeySeesOnePress(t *testing.T) {
	// keeps the reader blocked, an exhausted input asks to quit
	in, out := io.Pipe()
	t.Cleanup(func() { out.Close() })
	kb := newKeyboard(in, &clock{now: time.Unix(100, 0)}, terminal.DefaultHold)

	console := tchip8.NewConsole(tchip8.NewCpu(tchip8.NewMemory()), tchip8.NewDummyDisplay(), kb, tchip8.NewDummyBuzzer())
	assert.NoError(t, console.Boot())
	assert.NoError(t, console.LoadProgram([]byte{
		// count key presses in v1
		0xF0, 0x0A,
		0x71, 0x01,
		0x12, 0x00,
	}))

	kb.Feed('e')
	for i := 0; i < 30; i++ {
		assert.NoError(t, console.LoopOnce())
	}
	assert.Equal(t, byte(1), console.Cpu.V[1])
	assert.Equal(t, byte(0x6), console.Cpu.V[0])
}

func TestKeyboardHoldsKeys(t *testing.T) {
	c := &clock{now: time.Unix(100, 0)}
	kb := newKeyboard(strings.NewReader(""), c, 100*time.Millisecond)

	kb.Feed('q')
	kb.Feed('v')

	state := kb.State()
	assert.True(t, state[0x4])
	assert.True(t, state[0xF])
	assert.False(t, state[0x0])
	assert.False(t, kb.QuitRequested())

	c.now = c.now.Add(99 * time.Millisecond)
	assert.True(t, kb.State()[0x4])

	c.now = c.now.Add(time.Millisecond)
	assert.Equal(t, tchip8.KeyboardState{}, kb.State())
}

func TestKeyboardQuitsOnUnmappedKey(t *testing.T) {
	tests := []struct {
		name string
		key  rune
	}{
		{"escape", 0x1B},
		{"ctrl-c", 0x03},
		{"letter", 'p'},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kb := newKeyboard(strings.NewReader(""), &clock{now: time.Unix(0, 0)}, terminal.DefaultHold)
			kb.Feed(tt.key)
			assert.True(t, kb.QuitRequested())
		})
	}
}

func TestKeyboardReadsInput(t *testing.T) {
	c := &clock{now: time.Unix(100, 0)}
	kb := newKeyboard(bytes.NewBufferString("x1"), c, terminal.DefaultHold)

	assert.NoError(t, kb.Boot())

	// the reader quits once the input is exhausted
	deadline := time.Now().Add(time.Second)
	for !kb.QuitRequested() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	assert.True(t, kb.QuitRequested())

	state := kb.State()
	assert.True(t, state[0x0])
	assert.True(t, state[0x1])
}

func TestBuzzerRingsOncePerSound(t *testing.T) {
	var out bytes.Buffer
	b := terminal.NewBuzzer(&out)
	assert.NoError(t, b.Boot())

	b.Play()
	b.Play()
	assert.Equal(t, "\x07", out.String())

	b.Stop()
	b.Play()
	assert.Equal(t, "\x07\x07", out.String())
}
