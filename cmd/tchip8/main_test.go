package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/guslan/tchip8"
	"github.com/guslan/tchip8/terminal"
	"github.com/retroenv/retrogolib/assert"
)

func TestPlayRejectsOversizedProgramBeforeOpeningTerminal(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	opened := false

	err := play(context.Background(), optionFlags{}, logger, make([]byte, tchip8.MaxProgramSize+1), func() (*terminal.Terminal, error) {
		opened = true
		return nil, errors.New("no tty")
	})

	var load *tchip8.LoadError
	assert.True(t, errors.As(err, &load))
	assert.False(t, opened)
}

func TestPlayReportsTerminalErrors(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	errTty := errors.New("no tty")

	err := play(context.Background(), optionFlags{}, logger, []byte{0x12, 0x00}, func() (*terminal.Terminal, error) {
		return nil, errTty
	})
	assert.True(t, errors.Is(err, errTty))
}
