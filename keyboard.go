package tchip8

import "sync"

// KeyboardState is a snapshot of the 16 keys of the hexadecimal keypad
type KeyboardState [16]bool

// IsPressed reports whether key k is down. Keys above 0xF are never pressed.
func (s KeyboardState) IsPressed(k byte) bool {
	if k > 15 {
		return false
	}
	return s[k]
}

// Lowest returns the lowest pressed key
func (s KeyboardState) Lowest() (byte, bool) {
	for k, pressed := range s {
		if pressed {
			return byte(k), true
		}
	}

	return 0, false
}

// Mask packs the state into 16 bits, key 0 being the most significant
func (s KeyboardState) Mask() uint16 {
	var m uint16
	for k, pressed := range s {
		if pressed {
			m |= 0b1000000000000000 >> k
		}
	}

	return m
}

// KeyboardStateFromMask is the inverse of Mask
func KeyboardStateFromMask(m uint16) KeyboardState {
	var s KeyboardState
	for k := range s {
		s[k] = m&(0b1000000000000000>>k) > 0
	}

	return s
}

type Keyboard interface {
	// Boot initializes the component
	Boot() error
	// State returns the keys pressed right now
	State() KeyboardState
}

// Quitter is implemented by keyboards that can ask the console to stop
type Quitter interface {
	QuitRequested() bool
}

// KeyboardLayout lists, for every key 0x0..0xF, the rune that presses it
type KeyboardLayout [16]rune

// DefaultKeyboardLayout maps the left side of a QWERTY keyboard:
//
//	1 2 3 4      1 2 3 C
//	q w e r  ->  4 5 6 D
//	a s d f      7 8 9 E
//	z x c v      A 0 B F
var DefaultKeyboardLayout = KeyboardLayout{
	'x', '1', '2', '3',
	'q', 'w', 'e', 'a',
	's', 'd', 'z', 'c',
	'4', 'r', 'f', 'v',
}

// LookupMap returns the inverse of the layout
func LookupMap(layout KeyboardLayout) map[rune]byte {
	m := make(map[rune]byte, len(layout))
	for k, r := range layout {
		m[r] = byte(k)
	}

	return m
}

// InMemoryKeyboard is a keyboard whose state is set programmatically.
// It is safe for concurrent use.
type InMemoryKeyboard struct {
	mu    sync.RWMutex
	state KeyboardState
}

func NewInMemoryKeyboard() *InMemoryKeyboard {
	return &InMemoryKeyboard{}
}

// Boot implements Keyboard.
func (kb *InMemoryKeyboard) Boot() error {
	return nil
}

// State implements Keyboard.
func (kb *InMemoryKeyboard) State() KeyboardState {
	kb.mu.RLock()
	defer kb.mu.RUnlock()

	return kb.state
}

func (kb *InMemoryKeyboard) Set(state KeyboardState) {
	kb.mu.Lock()
	kb.state = state
	kb.mu.Unlock()
}

func (kb *InMemoryKeyboard) Press(k byte) {
	if k > 15 {
		return
	}

	kb.mu.Lock()
	kb.state[k] = true
	kb.mu.Unlock()
}

func (kb *InMemoryKeyboard) Release(k byte) {
	if k > 15 {
		return
	}

	kb.mu.Lock()
	kb.state[k] = false
	kb.mu.Unlock()
}
