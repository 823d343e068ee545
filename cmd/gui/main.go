package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/guslan/tchip8"
	"github.com/guslan/tchip8/gui"
)

func main() {
	autostart := flag.Bool("start", false, "Starts the console automatically if there is a program loaded (defaults = false).")
	debug := flag.Bool("debug", false, "Show debug information for the console (defaults = false).")
	trace := flag.Bool("trace", false, "Log every instruction, implies -debug (defaults = false).")
	initialSpeed := flag.Uint("speed", tchip8.DefaultSpeed, fmt.Sprintf("The starting speed of the CPU in Hz. It has to be in the range [%d, %d] (defaults = %d).", tchip8.MinSpeed, tchip8.MaxSpeed, tchip8.DefaultSpeed))
	quirks := flag.String("quirks", "", "Comma separated quirks (defaults = none).")

	flag.Parse()

	level := slog.LevelInfo
	if *debug || *trace {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	q, err := tchip8.ParseQuirks(*quirks)
	if err != nil {
		logger.Error("parsing quirks", slog.Any("error", err))
		os.Exit(1)
	}

	app := gui.NewApp(func(config *gui.AppConfig) {
		config.Speed = *initialSpeed
		config.Quirks = q
		config.Trace = *trace
		config.Logger = logger
	})

	if flag.NArg() > 0 {
		app.Load(flag.Arg(0))
	}

	app.Run(*autostart)
}
