package web

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/guslan/tchip8"
)

// Event is the state of the CPU right after a cycle
type Event struct {
	OpCode      tchip8.OpCode `json:"opcode"`
	Instruction string        `json:"instruction"`
	Pc          uint16        `json:"pc"`
	V           [16]byte      `json:"v"`
	I           uint16        `json:"i"`
	Sp          uint16        `json:"sp"`
	Stack       []uint16      `json:"stack"`
	Dt          byte          `json:"dt"`
	St          byte          `json:"st"`
	Cycles      uint          `json:"cycles"`
	Error       string        `json:"error,omitempty"`
}

// MarshalBinary encodes the event big endian:
// opcode, pc, V0..VF, I, sp, the sp stack entries, dt, st, screen width and
// height, then the instruction mnemonic.
func (e Event) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 0, 32+2*len(e.Stack)+len(e.Instruction))

	buf = append(buf, byte(e.OpCode>>8), byte(e.OpCode))
	buf = append(buf, byte(e.Pc>>8), byte(e.Pc))
	buf = append(buf, e.V[:]...)
	buf = append(buf, byte(e.I>>8), byte(e.I))
	buf = append(buf, byte(e.Sp>>8), byte(e.Sp))
	for _, addr := range e.Stack {
		buf = append(buf, byte(addr>>8), byte(addr))
	}
	buf = append(buf, e.Dt, e.St)
	buf = append(buf, tchip8.ScreenWidth, tchip8.ScreenHeight)
	buf = append(buf, e.Instruction...)

	return buf, nil
}

// HttpDebugger streams an Event after every cycle of the console, over a
// websocket in binary form and as server-sent events in JSON.
type HttpDebugger struct {
	console *tchip8.Console
	logger  *slog.Logger

	// SendEvery skips events, 1 sends all of them
	SendEvery uint

	current tchip8.OpCode
	events  *broadcaster[Event]
}

// NewHttpDebugger registers the hooks on the console and pauses it
func NewHttpDebugger(console *tchip8.Console, logger *slog.Logger) *HttpDebugger {
	d := &HttpDebugger{
		console:   console,
		logger:    logger,
		SendEvery: 1,
		events:    newBroadcaster[Event](),
	}

	console.AddBeforeCycleHook(d.beforeCycle)
	console.AddAfterCycleHook(d.afterCycle)
	console.AddErrorHook(d.onError)

	console.Stop()

	return d
}

func (d *HttpDebugger) beforeCycle(console *tchip8.Console) {
	d.current, _ = console.Cpu.CurrentOpCode()
}

func (d *HttpDebugger) afterCycle(console *tchip8.Console) {
	if d.SendEvery > 1 && console.Cpu.Cycles()%d.SendEvery != 0 {
		return
	}

	d.events.publish(d.newEvent(console.Cpu, nil))
}

func (d *HttpDebugger) onError(console *tchip8.Console) {
	d.events.publish(d.newEvent(console.Cpu, console.CycleError()))
}

func (d *HttpDebugger) newEvent(cpu *tchip8.Cpu, err error) Event {
	e := Event{
		OpCode:      d.current,
		Instruction: d.current.String(),
		Pc:          cpu.Pc,
		V:           cpu.V,
		I:           cpu.I,
		Sp:          cpu.Sp,
		Stack:       append([]uint16(nil), cpu.Stack[:min(int(cpu.Sp), len(cpu.Stack))]...),
		Dt:          cpu.Dt,
		St:          cpu.St,
		Cycles:      cpu.Cycles(),
	}
	if err != nil {
		e.Error = err.Error()
	}

	return e
}

// ServeWebsocket sends every event as a binary message
func (d *HttpDebugger) ServeWebsocket(w http.ResponseWriter, r *http.Request) {
	events := d.events.subscribe()
	defer d.events.unsubscribe(events)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		d.logger.Error("upgrading the debugger connection", slog.Any("error", err))
		return
	}
	defer conn.Close()

	d.logger.Info("connecting to debugger")

	done := closed(conn)
	for {
		select {
		case e := <-events:
			msg, _ := e.MarshalBinary()
			if err := conn.WriteMessage(websocket.BinaryMessage, msg); err != nil {
				d.logger.Error("writing debugger message", slog.Any("error", err))
				return
			}
		case <-done:
			d.logger.Info("disconnecting from debugger")
			return
		case <-r.Context().Done():
			return
		}
	}
}

// ServeEvents streams every event as a server-sent event
func (d *HttpDebugger) ServeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	events := d.events.subscribe()
	defer d.events.unsubscribe(events)

	allowCors(w)
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case e := <-events:
			data, err := json.Marshal(e)
			if err != nil {
				d.logger.Error("encoding event", slog.Any("error", err))
				return
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
