package terminal

import (
	"bufio"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/guslan/tchip8"
)

const ctrlC = 0x03

// DefaultHold keeps keys down for a single poll
const DefaultHold = 0

type KeyboardConfig struct {
	Layout tchip8.KeyboardLayout
	// Hold keeps a key pressed for a while after the poll that reported it,
	// terminals never report key releases
	Hold   time.Duration
	Clock  func() time.Time
	Logger *slog.Logger
}
type KeyboardConfigCb func(config *KeyboardConfig)

// Keyboard reads runes from the terminal and maps them to the keypad.
// Any rune outside of the layout asks the console to quit.
type Keyboard struct {
	in     io.Reader
	lookup map[rune]byte
	hold   time.Duration
	clock  func() time.Time
	logger *slog.Logger

	mu        sync.Mutex
	pressedAt [16]time.Time
	// pending keys were typed but not polled yet
	pending [16]bool
	quit      bool
	booted    bool
}

func NewKeyboard(in io.Reader, configs ...KeyboardConfigCb) *Keyboard {
	config := &KeyboardConfig{
		Layout: tchip8.DefaultKeyboardLayout,
		Hold:   DefaultHold,
		Clock:  time.Now,
		Logger: slog.Default(),
	}
	for _, cb := range configs {
		cb(config)
	}

	return &Keyboard{
		in:     in,
		lookup: tchip8.LookupMap(config.Layout),
		hold:   config.Hold,
		clock:  config.Clock,
		logger: config.Logger,
	}
}

// Boot implements tchip8.Keyboard.
// It starts reading the terminal in the background.
func (kb *Keyboard) Boot() error {
	kb.mu.Lock()
	defer kb.mu.Unlock()

	if kb.booted {
		return nil
	}
	kb.booted = true

	go kb.listen()

	return nil
}

func (kb *Keyboard) listen() {
	r := bufio.NewReader(kb.in)
	for {
		ch, _, err := r.ReadRune()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				kb.logger.Error("reading the terminal", slog.Any("error", err))
			}
			kb.mu.Lock()
			kb.quit = true
			kb.mu.Unlock()
			return
		}

		kb.Feed(ch)
	}
}

// Feed handles a rune typed on the terminal
func (kb *Keyboard) Feed(ch rune) {
	kb.mu.Lock()
	defer kb.mu.Unlock()

	k, ok := kb.lookup[ch]
	if !ok || ch == ctrlC {
		kb.logger.Debug("quit key", slog.String("key", string(ch)))
		kb.quit = true
		return
	}

	kb.pressedAt[k] = kb.clock()
	kb.pending[k] = true
}

// State implements tchip8.Keyboard.
// Every typed key is reported by exactly one call, or for the hold window
// when it is longer.
func (kb *Keyboard) State() tchip8.KeyboardState {
	kb.mu.Lock()
	defer kb.mu.Unlock()

	var state tchip8.KeyboardState
	now := kb.clock()
	for k, at := range kb.pressedAt {
		state[k] = kb.pending[k] || (!at.IsZero() && now.Sub(at) < kb.hold)
		kb.pending[k] = false
	}

	return state
}

// QuitRequested implements tchip8.Quitter.
func (kb *Keyboard) QuitRequested() bool {
	kb.mu.Lock()
	defer kb.mu.Unlock()

	return kb.quit
}
