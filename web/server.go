// Package web serves the console over HTTP: the screen and the keypad over
// a websocket, the controls as plain endpoints and an optional debugger.
package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/guslan/tchip8"
)

var upgrader = websocket.Upgrader{} // use default options

type ServerConfig struct {
	Speed       uint
	Quirks      tchip8.Quirks
	UseDebugger bool
	// StaticDir is served on /, nothing is served when empty
	StaticDir string
	Logger    *slog.Logger
}
type ServerConfigCb func(config *ServerConfig)

type Server struct {
	*tchip8.InMemoryKeyboard
	*tchip8.DummyBuzzer

	console  *tchip8.Console
	display  *socketDisplay
	debugger *HttpDebugger
	logger   *slog.Logger

	mux *http.ServeMux
	// resumed wakes up the loop after a reset
	resumed chan struct{}
}

func NewServer(mem *tchip8.Memory, configs ...ServerConfigCb) *Server {
	config := &ServerConfig{
		Speed:       tchip8.DefaultSpeed,
		Quirks:      tchip8.DefaultQuirks,
		UseDebugger: false,
		StaticDir:   "./static",
		Logger:      slog.Default(),
	}
	for _, cb := range configs {
		cb(config)
	}

	s := &Server{
		InMemoryKeyboard: tchip8.NewInMemoryKeyboard(),
		DummyBuzzer:      tchip8.NewDummyBuzzer(),

		display: newSocketDisplay(),
		logger:  config.Logger,

		mux:     http.NewServeMux(),
		resumed: make(chan struct{}, 1),
	}

	s.console = tchip8.NewConsole(tchip8.NewCpu(mem), s.display, s.InMemoryKeyboard, s.DummyBuzzer, func(c *tchip8.ConsoleConfig) {
		c.Speed = config.Speed
		c.Quirks = config.Quirks
		c.Logger = config.Logger
	})
	if config.UseDebugger {
		s.debugger = NewHttpDebugger(s.console, config.Logger)
	}

	s.routes(config.StaticDir)

	return s
}

func (server *Server) routes(staticDir string) {
	if staticDir != "" {
		server.mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	}

	server.mux.HandleFunc("/start", server.control("starting", func() error {
		server.console.Start()
		return nil
	}))
	server.mux.HandleFunc("/stop", server.control("stopping", func() error {
		server.console.Stop()
		return nil
	}))
	server.mux.HandleFunc("/reset", server.control("stopping and resetting", func() error {
		server.console.Stop()
		server.console.Reset()
		server.resume()
		return nil
	}))
	server.mux.HandleFunc("/step", server.control("single frame", server.console.LoopOnce))
	server.mux.HandleFunc("/display", server.serveDisplay)

	if server.debugger != nil {
		server.mux.HandleFunc("/debugger", server.debugger.ServeWebsocket)
		server.mux.HandleFunc("/events", server.debugger.ServeEvents)
		server.mux.HandleFunc("/memory", server.serveMemory)
	}
}

func allowCors(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Expose-Headers", "Content-Type")

	w.Header().Set("Cache-Control", "no-cache")
}

func (server *Server) control(name string, action func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		allowCors(w)

		server.logger.Info(name)
		if err := action(); err != nil {
			server.logger.Error(name, slog.Any("error", err))
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// serveMemory dumps the memory as hexadecimal text
func (server *Server) serveMemory(w http.ResponseWriter, r *http.Request) {
	allowCors(w)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	mem := server.console.Memory()
	fmt.Fprintln(w, mem.String())
}

// serveDisplay sends every screen as 256 packed bytes and reads the keypad
// as 2 bytes masks, key 0 being the most significant bit.
func (server *Server) serveDisplay(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		server.logger.Error("upgrading the display connection", slog.Any("error", err))
		return
	}
	defer conn.Close()

	server.logger.Info("connecting to display")
	screens := server.display.subscribe()
	defer server.display.screens.unsubscribe(screens)

	done := readLoop(conn, func(msg []byte) {
		if len(msg) != 2 {
			server.logger.Warn("ignoring keypad message", slog.Int("length", len(msg)))
			return
		}
		server.InMemoryKeyboard.Set(tchip8.KeyboardStateFromMask(uint16(msg[0])<<8 | uint16(msg[1])))
	})

	for {
		select {
		case screen := <-screens:
			if err := conn.WriteMessage(websocket.BinaryMessage, screen.Pack()); err != nil {
				server.logger.Error("writing the screen", slog.Any("error", err))
				return
			}
		case <-done:
			server.logger.Info("disconnecting from display")
			return
		case <-r.Context().Done():
			return
		}
	}
}

// readLoop hands every incoming message to handle and closes the returned
// channel once the connection is gone
func readLoop(conn *websocket.Conn, handle func(msg []byte)) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if handle != nil {
				handle(msg)
			}
		}
	}()

	return done
}

func closed(conn *websocket.Conn) <-chan struct{} {
	return readLoop(conn, nil)
}

func (server *Server) resume() {
	select {
	case server.resumed <- struct{}{}:
	default:
	}
}

// Handler returns the routes of the server
func (server *Server) Handler() http.Handler {
	return server.mux
}

func (server *Server) Console() *tchip8.Console {
	return server.console
}

func (server *Server) Boot() error {
	return server.console.Boot()
}

// LoadProgram loads the program into memory and sets the PC to the start-of-program address
func (server *Server) LoadProgram(program []byte) error {
	if err := server.console.LoadProgram(program); err != nil {
		return err
	}
	server.resume()

	return nil
}

// Run loops the console, paused until /start is requested.
// After a failed cycle it waits for a reset.
func (server *Server) Run(ctx context.Context) error {
	if err := server.console.Boot(); err != nil {
		return err
	}
	server.console.Stop()

	for {
		err := server.console.Loop(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			server.logger.Error("the program stopped", slog.Any("error", err))
		}

		select {
		case <-server.resumed:
		case <-ctx.Done():
			return nil
		}
	}
}

// Listen serves on port until the context is cancelled
func (server *Server) Listen(ctx context.Context, port int) error {
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           server.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() {
		errCh <- server.Run(ctx)
	}()
	go func() {
		server.logger.Info("listening on port", slog.Int("port", port))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return httpServer.Shutdown(shutdownCtx)
}
