/*
 *   Copyright (c) 2024 Gustavo Lopez <git.gustavolopez.xyz@gmail.com>
 *   All rights reserved.
 */
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/guslan/tchip8"
	"github.com/guslan/tchip8/web"
	"github.com/retroenv/retrogolib/buildinfo"
)

var (
	version = "0.1.0"
	commit  = ""
	date    = ""
)

func main() {
	port := flag.Int("port", 9999, "The port of the server (default = 9999)")
	speed := flag.Uint("speed", tchip8.DefaultSpeed, fmt.Sprintf("Speed in cycles per second (default = %d)", tchip8.DefaultSpeed))
	quirks := flag.String("quirks", "", "Comma separated quirks (default = none)")
	static := flag.String("static", "./static", "The directory served on / (default = ./static)")
	debug := flag.Bool("debug", true, "Serve the debugger on /debugger and /events (default = true)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{}))
	slog.SetDefault(logger)
	logger.Info("tchip8 web", slog.String("version", buildinfo.Version(version, commit, date)))

	if flag.NArg() < 1 {
		logger.Error("must provide the path to a rom as an argument")
		os.Exit(1)
	}

	q, err := tchip8.ParseQuirks(*quirks)
	if err != nil {
		logger.Error("parsing quirks", slog.Any("error", err))
		os.Exit(1)
	}

	program, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		logger.Error("reading the program", slog.Any("error", err))
		os.Exit(1)
	}

	server := web.NewServer(tchip8.NewMemory(), func(config *web.ServerConfig) {
		config.Speed = *speed
		config.Quirks = q
		config.UseDebugger = *debug
		config.StaticDir = *static
		config.Logger = logger
	})

	if err := server.LoadProgram(program); err != nil {
		logger.Error("loading the program", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Listen(ctx, *port); err != nil {
		logger.Error("serving", slog.Any("error", err))
		os.Exit(1)
	}
}
