package terminal

import (
	"fmt"
	"strings"
)

// ColorScheme holds the escape sequences that set the colour of lit pixels
// (foreground) and of the background
type ColorScheme struct {
	Name       string
	Foreground string
	Background string
}

func rgb(layer, r, g, b int) string {
	return fmt.Sprintf("\x1b[%d;2;%d;%d;%dm", layer, r, g, b)
}

var (
	BlackWhite = ColorScheme{
		Name:       "black-white",
		Foreground: "\x1b[30m",
		Background: "\x1b[47m",
	}
	OrangeYellow = ColorScheme{
		Name:       "orange-yellow",
		Foreground: rgb(38, 174, 94, 22),
		Background: rgb(48, 253, 195, 45),
	}
	BlackGreen = ColorScheme{
		Name:       "black-green",
		Foreground: "\x1b[32m",
		Background: "\x1b[40m",
	}
)

var DefaultColorScheme = BlackWhite

var colorSchemes = []ColorScheme{BlackWhite, OrangeYellow, BlackGreen}

// ColorSchemeNames lists the accepted names, for usage messages
func ColorSchemeNames() []string {
	names := make([]string, len(colorSchemes))
	for i, s := range colorSchemes {
		names[i] = s.Name
	}

	return names
}

// ParseColorScheme accepts the scheme name with dashes or underscores
func ParseColorScheme(name string) (ColorScheme, error) {
	name = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
	for _, s := range colorSchemes {
		if s.Name == name {
			return s, nil
		}
	}

	return ColorScheme{}, fmt.Errorf("unknown color scheme %q, expected one of %s", name, strings.Join(ColorSchemeNames(), ", "))
}
