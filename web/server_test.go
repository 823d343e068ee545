package web_test

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/guslan/tchip8"
	"github.com/guslan/tchip8/web"
	"github.com/retroenv/retrogolib/assert"
)

var drawGlyph = []byte{
	// I = glyph 0
	0xA0, 0x00,
	// draw it at V0, V0
	0xD0, 0x05,
	// loop forever
	0x12, 0x04,
}

func newServer(t *testing.T, program []byte, debugger bool) (*web.Server, *httptest.Server) {
	t.Helper()

	s := web.NewServer(tchip8.NewMemory(), func(config *web.ServerConfig) {
		config.UseDebugger = debugger
		config.StaticDir = ""
	})
	assert.NoError(t, s.LoadProgram(program))
	assert.NoError(t, s.Boot())

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	return s, ts
}

func dial(t *testing.T, ts *httptest.Server, path string) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+path, nil)
	assert.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return conn
}

func post(t *testing.T, ts *httptest.Server, path string) *http.Response {
	t.Helper()

	resp, err := http.Post(ts.URL+path, "text/plain", nil)
	assert.NoError(t, err)
	resp.Body.Close()

	return resp
}

func TestDisplaySocketSendsScreens(t *testing.T) {
	_, ts := newServer(t, drawGlyph, false)
	conn := dial(t, ts, "/display")

	post(t, ts, "/step")
	post(t, ts, "/step")

	assert.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		kind, msg, err := conn.ReadMessage()
		assert.NoError(t, err)
		assert.Equal(t, websocket.BinaryMessage, kind)
		assert.Equal(t, 256, len(msg))

		if msg[0] == 0 {
			// blank screen sent on connection
			continue
		}

		assert.Equal(t, byte(0xF0), msg[0])
		assert.Equal(t, byte(0x90), msg[8])
		assert.Equal(t, byte(0xF0), msg[32])
		return
	}
}

func TestDisplaySocketReadsKeypad(t *testing.T) {
	s, ts := newServer(t, drawGlyph, false)
	conn := dial(t, ts, "/display")

	// keys 1 and F
	assert.NoError(t, conn.WriteMessage(websocket.BinaryMessage, []byte{0b01000000, 0b00000001}))

	deadline := time.Now().Add(2 * time.Second)
	for s.State() == (tchip8.KeyboardState{}) && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	state := s.State()
	assert.True(t, state[0x1])
	assert.True(t, state[0xF])
	assert.False(t, state[0x0])
}

func TestControlEndpoints(t *testing.T) {
	s, ts := newServer(t, []byte{0x00, 0xEE}, false)
	console := s.Console()

	resp := post(t, ts, "/start")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.True(t, console.IsRunning())

	post(t, ts, "/stop")
	assert.False(t, console.IsRunning())

	// returning with an empty stack fails
	resp = post(t, ts, "/step")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.True(t, errors.Is(console.LastError(), tchip8.ErrStackUnderflow))

	resp = post(t, ts, "/reset")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.NoError(t, console.LastError())
	assert.Equal(t, uint16(tchip8.StartOfProgram), console.Snapshot().Pc)
}

func TestDebuggerSocket(t *testing.T) {
	_, ts := newServer(t, drawGlyph, true)
	conn := dial(t, ts, "/debugger")

	post(t, ts, "/step")

	assert.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	assert.NoError(t, err)

	// opcode, then pc
	assert.Equal(t, []byte{0xA0, 0x00, 0x02, 0x02}, msg[:4])
	assert.True(t, strings.HasSuffix(string(msg), "LD I, 000"))
}

func TestDebuggerEvents(t *testing.T) {
	_, ts := newServer(t, drawGlyph, true)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/events", nil)
	assert.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	post(t, ts, "/step")
	post(t, ts, "/step")

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}

		var e web.Event
		assert.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &e))
		if e.Cycles < 2 {
			continue
		}
		assert.Equal(t, "DRW V0, V0, 5", e.Instruction)
		assert.Equal(t, uint16(0x204), e.Pc)
		return
	}
	t.Fatalf(`no event received: %v`, scanner.Err())
}

func TestMemoryDump(t *testing.T) {
	_, ts := newServer(t, drawGlyph, true)

	resp, err := http.Get(ts.URL + "/memory")
	assert.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)
	// the font, then the program
	assert.True(t, strings.HasPrefix(string(body), "[ F0 90 90 90 F0 "))
	assert.True(t, strings.Contains(string(body), "]\n[ A0 0 D0 5 12 4 0 "))
}

func TestEventMarshalBinary(t *testing.T) {
	e := web.Event{
		OpCode:      0x2345,
		Instruction: "CALL 345",
		Pc:          0x345,
		I:           0xABC,
		Sp:          1,
		Stack:       []uint16{0x202},
		Dt:          3,
		St:          4,
	}
	e.V[0xF] = 1

	msg, err := e.MarshalBinary()
	assert.NoError(t, err)

	want := []byte{0x23, 0x45, 0x03, 0x45}
	want = append(want, make([]byte, 15)...)
	want = append(want, 1)
	want = append(want, 0x0A, 0xBC, 0x00, 0x01, 0x02, 0x02, 3, 4, 64, 32)
	want = append(want, "CALL 345"...)
	assert.Equal(t, want, msg)
}
