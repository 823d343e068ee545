package gui

import (
	"unicode"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/guslan/tchip8"
)

var ScreenBgColor = rl.Gold
var ScreenPixelColor = rl.Yellow

// Boot implements tchip8.Display and tchip8.Buzzer.
func (app *App) Boot() error {
	return nil
}

// Render implements tchip8.Display.
func (app *App) Render(screen tchip8.Screen) error {
	app.mu.Lock()
	app.screen = screen
	app.mu.Unlock()

	return nil
}

// Play implements tchip8.Buzzer.
func (app *App) Play() {
	app.mu.Lock()
	app.isBeeping = true
	app.mu.Unlock()
}

// Stop implements tchip8.Buzzer.
func (app *App) Stop() {
	app.mu.Lock()
	app.isBeeping = false
	app.mu.Unlock()
}

func (app *App) drawScreen() {
	app.mu.Lock()
	screen := app.screen
	app.mu.Unlock()

	for y, row := range screen {
		for x, lit := range row {
			color := ScreenBgColor
			if lit {
				color = ScreenPixelColor
			}

			rl.DrawRectangle(
				ScreenPositionX+ScreenPixelSize*int32(x),
				ScreenPositionY+ScreenPixelSize*int32(y),
				ScreenPixelSize,
				ScreenPixelSize,
				color)
		}
	}
}

// keyCode returns the raylib key for a letter or a digit.
// Raylib uses the ASCII code of the upper case character.
func keyCode(r rune) (int32, bool) {
	switch {
	case r >= '0' && r <= '9':
		return int32(r), true
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		return int32(unicode.ToUpper(r)), true
	default:
		return 0, false
	}
}

func keyboardLookupMap(layout tchip8.KeyboardLayout) map[int32]byte {
	m := make(map[int32]byte, len(layout))
	for r, k := range tchip8.LookupMap(layout) {
		if code, ok := keyCode(r); ok {
			m[code] = k
		}
	}

	return m
}
