/*
 *   Copyright (c) 2024 Gustavo Lopez <git.gustavolopez.xyz@gmail.com>
 *   All rights reserved.
 */

// Package main runs a CHIP-8 program in the terminal
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/guslan/tchip8"
	"github.com/guslan/tchip8/terminal"
	"github.com/retroenv/retrogolib/buildinfo"
)

var (
	version = "0.1.0"
	commit  = ""
	date    = ""
)

type optionFlags struct {
	input string

	colors  terminal.ColorScheme
	speed   uint
	hold    time.Duration
	quirks  tchip8.Quirks
	logFile string
	debug   bool
	trace   bool
}

func main() {
	os.Exit(run())
}

func readArguments() optionFlags {
	flags := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	options := optionFlags{}

	colors := flags.String("colors", terminal.DefaultColorScheme.Name, fmt.Sprintf("color scheme, one of %s", strings.Join(terminal.ColorSchemeNames(), ", ")))
	quirks := flags.String("quirks", "", "comma separated quirks: vf-reset, memory-moves-index, jump-uses-vx, shift-in-place, subn-writes-vx")
	flags.UintVar(&options.speed, "speed", tchip8.DefaultSpeed, fmt.Sprintf("instructions per second, in the range [%d, %d]", tchip8.MinSpeed, tchip8.MaxSpeed))
	flags.DurationVar(&options.hold, "hold", terminal.DefaultHold, "keep typed keys down for this long, 0 reports each keystroke once")
	flags.StringVar(&options.logFile, "log", "", "write logs to this file, the terminal is used by the display")
	flags.BoolVar(&options.debug, "debug", false, "log at debug level")
	flags.BoolVar(&options.trace, "trace", false, "log every instruction, implies -debug")
	showVersion := flags.Bool("version", false, "print the version and exit")

	err := flags.Parse(os.Args[1:])
	if *showVersion {
		printBanner()
		os.Exit(0)
	}

	args := flags.Args()
	if err != nil || len(args) != 1 {
		printBanner()
		fmt.Printf("usage: tchip8 [options] <program>\n\n")
		flags.PrintDefaults()
		os.Exit(1)
	}
	options.input = args[0]

	if options.colors, err = terminal.ParseColorScheme(*colors); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if options.quirks, err = tchip8.ParseQuirks(*quirks); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	return options
}

func printBanner() {
	fmt.Println("[---------------------------------]")
	fmt.Println("[ tchip8 - CHIP-8 in the terminal ]")
	fmt.Printf("[---------------------------------]\n\n")
	fmt.Printf("version: %s\n\n", buildinfo.Version(version, commit, date))
}

// newLogger logs to the file named by -log, or nowhere
func newLogger(options optionFlags) (*slog.Logger, io.Closer, error) {
	level := slog.LevelInfo
	if options.debug || options.trace {
		level = slog.LevelDebug
	}

	if options.logFile == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), io.NopCloser(nil), nil
	}

	f, err := os.OpenFile(options.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	return slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})), f, nil
}

func run() int {
	options := readArguments()

	logger, logCloser, err := newLogger(options)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer logCloser.Close()
	slog.SetDefault(logger)

	program, err := os.ReadFile(options.input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid path %q: %v\n", options.input, err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = play(ctx, options, logger, program, func() (*terminal.Terminal, error) {
		return terminal.Open(terminal.DefaultDevice)
	})
	if err != nil {
		logger.Error("the program stopped", slog.Any("error", err))
		fmt.Fprintln(os.Stderr, err)

		var load *tchip8.LoadError
		if errors.As(err, &load) {
			return 2
		}
		return 1
	}

	return 0
}

// play owns the terminal: it is restored before returning.
// The program is loaded before the terminal is opened, so a bad image
// leaves the terminal untouched.
func play(ctx context.Context, options optionFlags, logger *slog.Logger, program []byte, open func() (*terminal.Terminal, error)) error {
	cpu := tchip8.NewCpu(tchip8.NewMemory())
	if err := cpu.LoadProgram(program); err != nil {
		return err
	}

	tty, err := open()
	if err != nil {
		return err
	}
	defer tty.Close()

	display := terminal.NewDisplay(tty, func(config *terminal.DisplayConfig) {
		config.Scheme = options.colors
		config.Size = tty.Size
		config.Logger = logger
	})
	defer display.Close()

	keyboard := terminal.NewKeyboard(tty, func(config *terminal.KeyboardConfig) {
		config.Hold = options.hold
		config.Logger = logger
	})

	console := tchip8.NewConsole(
		cpu,
		display,
		keyboard,
		terminal.NewBuzzer(tty),
		func(config *tchip8.ConsoleConfig) {
			config.Speed = options.speed
			config.Quirks = options.quirks
			config.Trace = options.trace
			config.Logger = logger
		},
	)

	if err := console.Boot(); err != nil {
		return err
	}
	// draws the blank screen on the booted display
	console.Reset()

	logger.Info("running",
		slog.String("program", options.input),
		slog.Uint64("speed", uint64(console.SpeedInHz())),
		slog.String("quirks", options.quirks.String()))

	return console.Loop(ctx)
}
