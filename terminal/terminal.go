// Package terminal implements the console components on top of a text
// terminal: a half-block display, a keyboard read from the tty in raw mode
// and a buzzer that rings the terminal bell.
package terminal

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/term"
	"golang.org/x/sys/unix"
)

const DefaultDevice = "/dev/tty"

// SizeFunc returns the size of the terminal in cells
type SizeFunc func() (cols, rows int, err error)

// Terminal reads keys from the tty in raw mode and writes to the standard
// output.
type Terminal struct {
	tty *term.Term
	out *os.File
}

// Open puts device in raw mode. Close must be called to restore it.
func Open(device string) (*Terminal, error) {
	tty, err := term.Open(device, term.RawMode)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", device, err)
	}

	return &Terminal{
		tty: tty,
		out: os.Stdout,
	}, nil
}

// Read implements io.Reader.
func (t *Terminal) Read(p []byte) (int, error) {
	return t.tty.Read(p)
}

// Write implements io.Writer.
func (t *Terminal) Write(p []byte) (int, error) {
	return t.out.Write(p)
}

// Size implements SizeFunc for the output terminal
func (t *Terminal) Size() (int, int, error) {
	ws, err := unix.IoctlGetWinsize(int(t.out.Fd()), unix.TIOCGWINSZ)
	if err != nil {
		return 0, 0, fmt.Errorf("reading the terminal size: %w", err)
	}

	return int(ws.Col), int(ws.Row), nil
}

// Close restores the original mode of the tty
func (t *Terminal) Close() error {
	if err := t.tty.Restore(); err != nil {
		t.tty.Close()
		return fmt.Errorf("restoring the terminal: %w", err)
	}

	return t.tty.Close()
}

var _ io.ReadWriter = (*Terminal)(nil)
