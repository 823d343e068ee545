package tchip8

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

var ErrConsoleIsNotBooted = errors.New("the console has not been booted properly")

const (
	DefaultSpeed uint = 500
	MaxSpeed     uint = 700
	MinSpeed     uint = 5
)

type ConsoleConfig struct {
	// Speed in instructions per second
	Speed  uint
	Quirks Quirks
	// Trace logs every instruction at debug level
	Trace bool
	// Clock drives the 60 Hz timers, time.Now by default
	Clock  func() time.Time
	Logger *slog.Logger
}
type ConsoleConfigCb func(config *ConsoleConfig)

// Console drives a Cpu: it feeds it the keyboard, paces its cycles,
// renders the screen and ticks the timers at 60 Hz.
type Console struct {
	Cpu *Cpu

	Display  Display
	Keyboard Keyboard
	Buzzer   Buzzer

	mu sync.Mutex

	speedInHz uint
	step      time.Duration
	frames    uint

	timers   TickAccumulator
	lastTick time.Time
	clock    func() time.Time

	trace  bool
	logger *slog.Logger

	isBooted  bool
	isPaused  bool
	lastError error

	// Hooks that run before every frame
	beforeFrameHooks []Hook
	// Hooks that run before every cycle
	beforeCycleHooks []Hook
	// Hooks that run after every cycle
	afterCycleHooks []Hook
	// Hooks that run after every frame
	afterFrameHooks []Hook
	// Hooks that run after an error
	errorHooks []Hook
}

func NewConsole(cpu *Cpu, display Display, keyboard Keyboard, buzzer Buzzer, configs ...ConsoleConfigCb) *Console {
	config := &ConsoleConfig{
		Speed:  DefaultSpeed,
		Quirks: cpu.Quirks,
		Trace:  false,
		Clock:  time.Now,
		Logger: slog.Default(),
	}
	for _, cb := range configs {
		cb(config)
	}

	cpu.Quirks = config.Quirks

	console := &Console{
		Cpu: cpu,

		Display:  display,
		Keyboard: keyboard,
		Buzzer:   buzzer,

		clock:  config.Clock,
		trace:  config.Trace,
		logger: config.Logger,

		beforeFrameHooks: make([]Hook, 0),
		beforeCycleHooks: make([]Hook, 0),
		afterCycleHooks:  make([]Hook, 0),
		afterFrameHooks:  make([]Hook, 0),
		errorHooks:       make([]Hook, 0),
	}
	console.SetSpeedInHz(config.Speed)

	return console
}

func (console *Console) IsRunning() bool {
	console.mu.Lock()
	defer console.mu.Unlock()

	return !console.isPaused
}

func (console *Console) SpeedInHz() uint {
	console.mu.Lock()
	defer console.mu.Unlock()

	return console.speedInHz
}

// SetSpeedInHz sets the number of cycles per second, clamped to [MinSpeed, MaxSpeed]
func (console *Console) SetSpeedInHz(inHz uint) {
	inHz = min(max(inHz, MinSpeed), MaxSpeed)

	console.mu.Lock()
	console.speedInHz = inHz
	console.step = time.Second / time.Duration(inHz)
	console.mu.Unlock()
}

func (console *Console) Frames() uint {
	console.mu.Lock()
	defer console.mu.Unlock()

	return console.frames
}

func (console *Console) LastError() error {
	console.mu.Lock()
	defer console.mu.Unlock()

	return console.lastError
}

// CycleError returns the error of the last cycle without locking the
// console. It is meant to be called from hooks.
func (console *Console) CycleError() error {
	return console.lastError
}

// Snapshot returns a copy of the CPU registers and screen
func (console *Console) Snapshot() Cpu {
	console.mu.Lock()
	defer console.mu.Unlock()

	return *console.Cpu
}

// Memory returns a copy of the memory
func (console *Console) Memory() Memory {
	console.mu.Lock()
	defer console.mu.Unlock()

	return *console.Cpu.Memory
}

// Boot initializes all the components
// If the console was already booted, this method is a noop
func (console *Console) Boot() error {
	console.mu.Lock()
	defer console.mu.Unlock()

	if console.isBooted {
		return nil
	}

	if err := console.Display.Boot(); err != nil {
		return fmt.Errorf("booting display: %w", err)
	}

	if err := console.Keyboard.Boot(); err != nil {
		return fmt.Errorf("booting keyboard: %w", err)
	}

	if err := console.Buzzer.Boot(); err != nil {
		return fmt.Errorf("booting buzzer: %w", err)
	}

	console.isBooted = true

	return nil
}

// LoadProgram loads the program into memory and resets the console
func (console *Console) LoadProgram(program []byte) error {
	console.mu.Lock()
	defer console.mu.Unlock()

	if err := console.Cpu.LoadProgram(program); err != nil {
		return err
	}
	console.reset()

	return nil
}

func (console *Console) Reset() {
	console.mu.Lock()
	defer console.mu.Unlock()

	console.Cpu.Reset()
	console.reset()
}

func (console *Console) reset() {
	console.frames = 0
	console.lastError = nil
	console.timers.Reset()
	console.lastTick = time.Time{}
	console.Buzzer.Stop()

	if err := console.Display.Render(console.Cpu.Display()); err != nil {
		console.logger.Error("rendering the screen", slog.Any("error", err))
	}
}

func (console *Console) Start() {
	console.mu.Lock()
	console.isPaused = false
	console.mu.Unlock()
}

func (console *Console) Stop() {
	console.mu.Lock()
	console.isPaused = true
	console.lastTick = time.Time{}
	console.mu.Unlock()
}

// Loop runs cycles at the current speed until the context is cancelled,
// the keyboard asks to quit or a cycle fails.
func (console *Console) Loop(ctx context.Context) error {
	console.mu.Lock()
	if !console.isBooted {
		console.mu.Unlock()
		return ErrConsoleIsNotBooted
	}
	if err := console.lastError; err != nil {
		console.mu.Unlock()
		return err
	}
	console.mu.Unlock()

	var last time.Time

	for {
		if ctx.Err() != nil {
			return nil
		}

		console.mu.Lock()
		done, err := console.runNextCycle()
		step := console.step
		console.mu.Unlock()

		if err != nil {
			return err
		} else if done {
			return nil
		}

		// Prevent the CPU from running faster than expected
		time.Sleep(max(step-time.Since(last), 0))
		last = time.Now()
	}
}

// LoopOnce runs a single cycle bypassing the pause state
func (console *Console) LoopOnce() error {
	console.mu.Lock()
	defer console.mu.Unlock()

	if !console.isBooted {
		return ErrConsoleIsNotBooted
	}

	if console.lastError != nil {
		return console.lastError
	}

	prev := console.isPaused
	console.isPaused = false
	defer func(console *Console, prev bool) {
		console.isPaused = prev
	}(console, prev)

	_, err := console.runNextCycle()
	return err
}

func (console *Console) runNextCycle() (bool, error) {
	console.runBeforeFrameHooks()

	if console.isPaused {
		return false, nil
	}

	if q, ok := console.Keyboard.(Quitter); ok && q.QuitRequested() {
		console.logger.Info("quit requested from the keyboard")
		return true, nil
	}

	keys := console.Keyboard.State()

	console.runBeforeCycleHooks()
	if console.trace {
		op, _ := console.Cpu.CurrentOpCode()
		console.logger.Debug("cycle",
			slog.String("pc", fmt.Sprintf("%03X", console.Cpu.Pc)),
			slog.String("opcode", fmt.Sprintf("%04X", uint16(op))),
			slog.String("instruction", op.String()))
	}

	drawn, err := console.Cpu.Step(keys)
	if err != nil {
		console.lastError = err
		console.runErrorHooks()
		return false, err
	}
	console.runAfterCycleHooks()

	if drawn {
		if err := console.Display.Render(console.Cpu.Display()); err != nil {
			err = fmt.Errorf("rendering the screen: %w", err)
			console.lastError = err
			console.runErrorHooks()
			return false, err
		}
	}

	console.tickTimers()

	console.frames++
	console.runAfterFrameHooks()

	return false, nil
}

// tickTimers runs one timer tick for every 1/60 s elapsed since the last
// call, independently of the number of cycles in between.
func (console *Console) tickTimers() {
	now := console.clock()
	if console.lastTick.IsZero() {
		console.lastTick = now
		return
	}

	ticks := console.timers.Add(now.Sub(console.lastTick))
	console.lastTick = now
	if ticks == 0 {
		return
	}

	beep := false
	for i := 0; i < ticks; i++ {
		beep = console.Cpu.Tick() || beep
	}

	if beep {
		console.Buzzer.Play()
	} else {
		console.Buzzer.Stop()
	}
}
