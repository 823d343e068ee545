package gui

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/guslan/tchip8"
)

const (
	ToolbarGap       = 5
	ToolbarBtnWidth  = 80
	ToolbarBtnHeight = 40
	ToolbarHeight    = 50
	ToolbarBtnOffset = ToolbarBtnWidth + ToolbarGap

	ScreenPixelSize = 15
	ScreenPositionX = 0
	ScreenPositionY = ToolbarHeight + 1

	MessageBarGap   = 5
	MessageBarHeigh = 30
)

var MessageBarBgColor = rl.DarkGray
var MessageBarInfoColor = rl.SkyBlue
var MessageBarSuccessColor = rl.Lime
var MessageBarWarningColor = rl.Gold
var MessageBarErrorColor = rl.Red

type MessageType byte

const (
	MessageInfo MessageType = iota
	MessageSuccess
	MessageWarning
	MessageError
)

type AppConfig struct {
	Speed  uint
	Quirks tchip8.Quirks
	Layout tchip8.KeyboardLayout
	// Trace logs every instruction
	Trace  bool
	Logger *slog.Logger
}
type AppConfigCb func(config *AppConfig)

type App struct {
	*tchip8.InMemoryKeyboard

	console *tchip8.Console
	logger  *slog.Logger

	// Speed factor
	// Speed in Hz is speedFactor+1 * 5
	speedFactor float32

	// raylib key code to keypad key
	keyboardLookupMap map[int32]byte

	// Window width and height
	winW, winH int

	// Toolbar
	startBtn, stopBtn, stepBtn, restBtn bool

	loadedProgramPath string

	// guards what the console goroutine shares with the UI loop
	mu               sync.Mutex
	screen           tchip8.Screen
	isBeeping        bool
	lastMessage      string
	lastMessageColor rl.Color

	resumed chan struct{}
}

func speedFactorToHz(s float32) uint {
	return uint((s + 1) * 5)
}

func hzToSpeedFactor(hz uint) float32 {
	return float32(hz)/5 - 1
}

func NewApp(configs ...AppConfigCb) *App {
	config := &AppConfig{
		Speed:  tchip8.DefaultSpeed,
		Quirks: tchip8.DefaultQuirks,
		Layout: tchip8.DefaultKeyboardLayout,
		Trace:  false,
		Logger: slog.Default(),
	}
	for _, cb := range configs {
		cb(config)
	}

	app := &App{
		InMemoryKeyboard:  tchip8.NewInMemoryKeyboard(),
		logger:            config.Logger,
		speedFactor:       hzToSpeedFactor(config.Speed),
		keyboardLookupMap: keyboardLookupMap(config.Layout),
		resumed:           make(chan struct{}, 1),
	}

	app.console = tchip8.NewConsole(tchip8.NewCpu(tchip8.NewMemory()), app, app.InMemoryKeyboard, app, func(c *tchip8.ConsoleConfig) {
		c.Speed = config.Speed
		c.Quirks = config.Quirks
		c.Trace = config.Trace
		c.Logger = config.Logger
	})
	app.console.AddErrorHook(func(console *tchip8.Console) {
		app.showMessage(console.CycleError().Error(), MessageError)
	})

	app.updateWindowSize()

	return app
}

// Run starts the console paused and runs the UI loop until the window is closed
func (app *App) Run(autostart bool) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := app.console.Boot(); err != nil {
		app.logger.Error("booting the console", slog.Any("error", err))
		return
	}
	if !autostart || !app.hasProgramLoaded() {
		app.console.Stop()
	}

	go app.loop(ctx)

	rl.InitWindow(int32(app.winW), int32(app.winH), "tchip8")
	defer rl.CloseWindow()

	rl.SetTargetFPS(60)
	for !rl.WindowShouldClose() {
		rl.BeginDrawing()

		rl.ClearBackground(rl.Black)

		app.handleFileLoad()
		app.handleActions()
		app.handleKeyPress()
		app.updateCpuSpeed()

		// Sections are drawn from the bottom up so the toolbar stays on top
		app.drawMessageBar()
		app.drawScreen()
		app.drawToolbar()

		rl.EndDrawing()
	}
}

// loop runs the console until ctx is done, waiting for a reset after a failure
func (app *App) loop(ctx context.Context) {
	app.logger.Info("starting console loop")
	for {
		err := app.console.Loop(ctx)
		if err == nil {
			return
		}
		app.logger.Error("the program stopped", slog.Any("error", err))

		select {
		case <-app.resumed:
		case <-ctx.Done():
			return
		}
	}
}

func (app *App) resume() {
	select {
	case app.resumed <- struct{}{}:
	default:
	}
}

func (app *App) Load(path string) {
	program, err := os.ReadFile(path)
	if err != nil {
		app.logger.Error("Error loading program", slog.String("path", path), slog.Any("error", err))
		app.showMessage(fmt.Sprintf("Could not read '%s'", path), MessageError)
		return
	}

	if err = app.console.LoadProgram(program); err != nil {
		app.logger.Error("Error loading program", slog.String("path", path), slog.Any("error", err))
		app.showMessage(err.Error(), MessageError)
		return
	}
	app.resume()

	app.loadedProgramPath = path
	app.logger.Info("Program loaded", slog.String("path", path))
	app.showMessage(fmt.Sprintf("Program '%s' loaded", app.loadedProgramPath), MessageInfo)

	app.console.Start()
}

func (app *App) updateWindowSize() {
	app.winW = tchip8.ScreenWidth * ScreenPixelSize
	app.winH = tchip8.ScreenHeight*ScreenPixelSize + ToolbarHeight + MessageBarHeigh
	app.logger.Info("Updating window size", slog.Int("width", app.winW), slog.Int("height", app.winH))
}

func (app *App) handleFileLoad() {
	if rl.IsFileDropped() {
		files := rl.LoadDroppedFiles()
		defer rl.UnloadDroppedFiles()

		app.logger.Info("Files were dropped", "files", strings.Join(files, ","))

		if len(files) > 0 {
			app.Load(files[0])
		}
	}
}

func (app *App) hasProgramLoaded() bool {
	return len(app.loadedProgramPath) > 0
}

func (app *App) handleActions() {
	if app.startBtn {
		if app.hasProgramLoaded() {
			app.console.Start()
			app.logger.Info("Starting the console")
		} else {
			app.showMessage("There is no program loaded", MessageError)
		}
	}
	if app.stopBtn {
		app.console.Stop()
		app.logger.Info("Stopping the console")
	}
	if app.restBtn {
		app.console.Reset()
		app.resume()
		app.showMessage("Program reset", MessageSuccess)
		app.logger.Info("Resetting the program to the beginning")
	}
	if app.stepBtn {
		if err := app.console.LoopOnce(); err != nil {
			app.showMessage(err.Error(), MessageError)
		}
		app.logger.Info("Running a single frame")
	}
}

func (app *App) handleKeyPress() {
	var state tchip8.KeyboardState
	for code, key := range app.keyboardLookupMap {
		state[key] = rl.IsKeyDown(code)
	}
	app.InMemoryKeyboard.Set(state)
}

func (app *App) updateCpuSpeed() {
	app.console.SetSpeedInHz(speedFactorToHz(app.speedFactor))
}

const (
	MinSpeed = float32(tchip8.MinSpeed/5) - 1
	MaxSpeed = float32(tchip8.MaxSpeed/5) - 1
)

func (app *App) drawToolbar() {
	rl.DrawRectangle(0, 0, int32(rl.GetScreenWidth()), ToolbarHeight, rl.Gray)

	app.startBtn = gui.Button(
		rl.NewRectangle(ToolbarGap+ToolbarBtnOffset*0, ToolbarGap, ToolbarBtnWidth, ToolbarBtnHeight),
		gui.IconText(gui.ICON_PLAYER_PLAY, "Start"),
	)
	app.stopBtn = gui.Button(
		rl.NewRectangle(ToolbarGap+ToolbarBtnOffset*1, ToolbarGap, ToolbarBtnWidth, ToolbarBtnHeight),
		gui.IconText(gui.ICON_PLAYER_STOP, "Stop"),
	)
	app.stepBtn = gui.Button(
		rl.NewRectangle(ToolbarGap+ToolbarBtnOffset*2, ToolbarGap, ToolbarBtnWidth, ToolbarBtnHeight),
		gui.IconText(gui.ICON_PLAYER_NEXT, "Step"),
	)
	app.restBtn = gui.Button(
		rl.NewRectangle(ToolbarGap+ToolbarBtnOffset*3, ToolbarGap, ToolbarBtnWidth, ToolbarBtnHeight),
		gui.IconText(gui.ICON_ROTATE, "Reset"),
	)

	status := "Stopped"
	if app.console.IsRunning() {
		status = "Running"
	}
	app.mu.Lock()
	if app.isBeeping {
		status += " ~"
	}
	app.mu.Unlock()
	gui.Label(
		rl.NewRectangle(ToolbarGap+ToolbarBtnOffset*4, ToolbarGap, ToolbarBtnWidth, ToolbarBtnHeight),
		status,
	)

	gui.Label(
		rl.NewRectangle(float32(app.winW)-ToolbarGap-150, 26, 50, 20),
		fmt.Sprintf("%d Hz", speedFactorToHz(app.speedFactor)),
	)

	if gui.Button(
		rl.NewRectangle(float32(app.winW)-ToolbarGap-150+50, 26, 50, 20),
		gui.IconText(gui.ICON_ROTATE, ""),
	) {
		app.speedFactor = hzToSpeedFactor(tchip8.DefaultSpeed)
	}

	app.speedFactor = gui.Slider(
		rl.NewRectangle(float32(app.winW)-ToolbarGap-150, ToolbarGap, 100, 20),
		fmt.Sprintf("%d Hz", tchip8.MinSpeed), fmt.Sprintf("%d Hz", tchip8.MaxSpeed),
		app.speedFactor,
		MinSpeed,
		MaxSpeed,
	)
}

func (app *App) showMessage(msg string, mType MessageType) {
	app.mu.Lock()
	defer app.mu.Unlock()

	app.lastMessage = msg
	switch mType {
	case MessageInfo:
		app.lastMessageColor = MessageBarInfoColor

	case MessageSuccess:
		app.lastMessageColor = MessageBarSuccessColor

	case MessageWarning:
		app.lastMessageColor = MessageBarWarningColor

	case MessageError:
		app.lastMessageColor = MessageBarErrorColor
	}
}

func (app *App) drawMessageBar() {
	app.mu.Lock()
	msg, color := app.lastMessage, app.lastMessageColor
	app.mu.Unlock()

	rl.DrawRectangle(
		0,
		int32(app.winH)-MessageBarHeigh,
		int32(app.winW),
		MessageBarHeigh,
		MessageBarBgColor,
	)

	rl.DrawText(
		msg,
		MessageBarGap,
		int32(app.winH)-MessageBarHeigh+MessageBarGap,
		16,
		color,
	)
}
