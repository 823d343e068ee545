package terminal

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/guslan/tchip8"
)

const (
	// MinColumns and MinRows are the cells needed to show the whole screen,
	// two pixel rows per text row
	MinColumns = tchip8.ScreenWidth
	MinRows    = tchip8.ScreenHeight / 2
)

const (
	clearScreen = "\x1b[2J"
	hideCursor  = "\x1b[?25l"
	showCursor  = "\x1b[?25h"
	resetColors = "\x1b[0m"
)

type DisplayConfig struct {
	Scheme ColorScheme
	// Size reports the terminal size, a large fixed size by default
	Size SizeFunc
	// PollInterval is the time between size checks while the terminal is too small
	PollInterval time.Duration
	Logger       *slog.Logger
}
type DisplayConfigCb func(config *DisplayConfig)

// Display draws the screen with half-block characters so that every text
// cell holds two square pixels.
type Display struct {
	out    io.Writer
	scheme ColorScheme
	size   SizeFunc
	poll   time.Duration
	logger *slog.Logger

	last     tchip8.Screen
	lastCols int
	lastRows int
	// dirty forces a full redraw on the next render
	dirty bool
	buff  []byte
}

func NewDisplay(out io.Writer, configs ...DisplayConfigCb) *Display {
	config := &DisplayConfig{
		Scheme: DefaultColorScheme,
		Size: func() (int, int, error) {
			return MinColumns, MinRows, nil
		},
		PollInterval: 250 * time.Millisecond,
		Logger:       slog.Default(),
	}
	for _, cb := range configs {
		cb(config)
	}

	return &Display{
		out:    out,
		scheme: config.Scheme,
		size:   config.Size,
		poll:   config.PollInterval,
		logger: config.Logger,
		dirty:  true,
		buff:   make([]byte, 0, 4*MinColumns*MinRows+256),
	}
}

// Boot implements tchip8.Display.
func (d *Display) Boot() error {
	_, err := io.WriteString(d.out, clearScreen+hideCursor+"\x1b[1;1H")
	d.dirty = true

	return err
}

// Close restores the colours and the cursor
func (d *Display) Close() error {
	_, err := io.WriteString(d.out, resetColors+clearScreen+"\x1b[1;1H"+showCursor)

	return err
}

// Render implements tchip8.Display.
// The whole screen is redrawn when the terminal size changed, otherwise
// only the cells that differ from the previous render are written.
func (d *Display) Render(screen tchip8.Screen) error {
	cols, rows, err := d.waitForSize()
	if err != nil {
		return err
	}

	full := d.dirty || cols != d.lastCols || rows != d.lastRows

	buff := d.buff[:0]
	if full {
		buff = append(buff, resetColors+clearScreen...)
	}
	buff = append(buff, d.scheme.Background...)
	buff = append(buff, d.scheme.Foreground...)

	for row := 0; row < MinRows; row++ {
		// cursor is only moved when the next cell is not adjacent to the last one written
		next := -1
		for col := 0; col < MinColumns; col++ {
			top, bottom := screen[2*row][col], screen[2*row+1][col]
			if !full && top == d.last[2*row][col] && bottom == d.last[2*row+1][col] {
				continue
			}

			if col != next {
				buff = fmt.Appendf(buff, "\x1b[%d;%dH", row+1, col+1)
			}
			buff = append(buff, halfBlock(top, bottom)...)
			next = col + 1
		}
	}
	buff = append(buff, resetColors...)
	d.buff = buff

	if _, err := d.out.Write(buff); err != nil {
		d.dirty = true
		return fmt.Errorf("writing to the terminal: %w", err)
	}

	d.last = screen
	d.lastCols, d.lastRows = cols, rows
	d.dirty = false

	return nil
}

// waitForSize blocks until the terminal is large enough for the screen
func (d *Display) waitForSize() (int, int, error) {
	warned := [2]int{-1, -1}
	for {
		cols, rows, err := d.size()
		if err != nil {
			return 0, 0, err
		}
		if cols >= MinColumns && rows >= MinRows {
			return cols, rows, nil
		}

		if warned != [2]int{cols, rows} {
			d.logger.Warn("terminal too small",
				slog.Int("columns", cols),
				slog.Int("rows", rows))
			msg := fmt.Sprintf("%s%s\x1b[1;1HExpected at least a %dx%d terminal, current one is %dx%d",
				resetColors, clearScreen, MinColumns, MinRows, cols, rows)
			if _, err := io.WriteString(d.out, msg); err != nil {
				return 0, 0, fmt.Errorf("writing to the terminal: %w", err)
			}
			warned = [2]int{cols, rows}
		}
		d.dirty = true

		time.Sleep(d.poll)
	}
}

func halfBlock(top, bottom bool) string {
	switch {
	case top && bottom:
		return "█"
	case top:
		return "▀"
	case bottom:
		return "▄"
	default:
		return " "
	}
}
