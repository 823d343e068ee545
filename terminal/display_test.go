package terminal_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/guslan/tchip8"
	"github.com/guslan/tchip8/terminal"
	"github.com/retroenv/retrogolib/assert"
)

type fakeSize struct {
	cols, rows int
	calls      int
	// grows to a usable size after a few calls
	growAfter int
}

func (s *fakeSize) Size() (int, int, error) {
	s.calls++
	if s.growAfter > 0 && s.calls > s.growAfter {
		s.cols, s.rows = terminal.MinColumns, terminal.MinRows
	}

	return s.cols, s.rows, nil
}

func newDisplay(out *bytes.Buffer, size *fakeSize) *terminal.Display {
	return terminal.NewDisplay(out, func(config *terminal.DisplayConfig) {
		config.Size = size.Size
		config.PollInterval = time.Millisecond
	})
}

func TestDisplayFullRender(t *testing.T) {
	var out bytes.Buffer
	d := newDisplay(&out, &fakeSize{cols: 80, rows: 24})

	var screen tchip8.Screen
	screen[0][0] = true
	screen[1][0] = true
	screen[0][1] = true
	screen[1][2] = true

	assert.NoError(t, d.Render(screen))

	s := out.String()
	assert.True(t, strings.Contains(s, "\x1b[2J"))
	assert.True(t, strings.Contains(s, terminal.DefaultColorScheme.Foreground))
	assert.True(t, strings.Contains(s, "\x1b[1;1H█▀▄ "))
	assert.Equal(t, 1, strings.Count(s, "█"))
	// one cursor move per text row
	assert.Equal(t, terminal.MinRows, strings.Count(s, "H"))
}

func TestDisplayDiffRender(t *testing.T) {
	var out bytes.Buffer
	d := newDisplay(&out, &fakeSize{cols: 80, rows: 24})

	var screen tchip8.Screen
	assert.NoError(t, d.Render(screen))
	out.Reset()

	screen[5][10] = true
	assert.NoError(t, d.Render(screen))

	s := out.String()
	assert.False(t, strings.Contains(s, "\x1b[2J"))
	assert.True(t, strings.Contains(s, "\x1b[3;11H▄"))
	assert.Equal(t, 1, strings.Count(s, "H"))

	// nothing changed
	out.Reset()
	assert.NoError(t, d.Render(screen))
	assert.Equal(t, 0, strings.Count(out.String(), "H"))
}

func TestDisplayRedrawsWhenResized(t *testing.T) {
	var out bytes.Buffer
	size := &fakeSize{cols: 80, rows: 24}
	d := newDisplay(&out, size)

	var screen tchip8.Screen
	assert.NoError(t, d.Render(screen))

	size.cols = 100
	out.Reset()
	assert.NoError(t, d.Render(screen))
	assert.True(t, strings.Contains(out.String(), "\x1b[2J"))
	assert.Equal(t, terminal.MinRows, strings.Count(out.String(), "H"))
}

func TestDisplayWaitsForTerminalSize(t *testing.T) {
	var out bytes.Buffer
	size := &fakeSize{cols: 40, rows: 10, growAfter: 3}
	d := newDisplay(&out, size)

	var screen tchip8.Screen
	assert.NoError(t, d.Render(screen))

	s := out.String()
	assert.Equal(t, 1, strings.Count(s, "Expected at least a 64x16 terminal, current one is 40x10"))
	assert.Equal(t, 4, size.calls)
}

func TestDisplaySizeError(t *testing.T) {
	var out bytes.Buffer
	errSize := errors.New("no tty")
	d := terminal.NewDisplay(&out, func(config *terminal.DisplayConfig) {
		config.Size = func() (int, int, error) {
			return 0, 0, errSize
		}
	})

	err := d.Render(tchip8.Screen{})
	assert.True(t, errors.Is(err, errSize))
}

func TestParseColorScheme(t *testing.T) {
	tests := []struct {
		name string
		want terminal.ColorScheme
	}{
		{"black-white", terminal.BlackWhite},
		{"orange_yellow", terminal.OrangeYellow},
		{" Black-Green ", terminal.BlackGreen},
	}
	for _, tt := range tests {
		got, err := terminal.ParseColorScheme(tt.name)
		assert.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := terminal.ParseColorScheme("pink")
	assert.Error(t, err, `unknown color scheme "pink", expected one of black-white, orange-yellow, black-green`)
	assert.Equal(t, "\x1b[38;2;174;94;22m", terminal.OrangeYellow.Foreground)
}
