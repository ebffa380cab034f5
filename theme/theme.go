// Package theme holds the built-in xterm.js color palettes served by
// GET /api/themes and GET /api/themes/<name>.
package theme

import "sort"

// Colors is the subset of xterm.js ITheme fields the frontend needs to
// repaint the terminal on theme switch.
type Colors struct {
	Background          string `json:"background"`
	Foreground          string `json:"foreground"`
	Cursor              string `json:"cursor"`
	SelectionBackground string `json:"selectionBackground"`
}

const DefaultName = "default"

var builtin = map[string]Colors{
	"default": {
		Background:          "#000000",
		Foreground:          "#ffffff",
		Cursor:              "#ffffff",
		SelectionBackground: "#4d4d4d",
	},
	"dracula": {
		Background:          "#282a36",
		Foreground:          "#f8f8f2",
		Cursor:              "#f8f8f0",
		SelectionBackground: "#44475a",
	},
	"nord": {
		Background:          "#2e3440",
		Foreground:          "#d8dee9",
		Cursor:              "#d8dee9",
		SelectionBackground: "#434c5e",
	},
	"solarized-dark": {
		Background:          "#002b36",
		Foreground:          "#839496",
		Cursor:              "#839496",
		SelectionBackground: "#073642",
	},
	"monokai": {
		Background:          "#272822",
		Foreground:          "#f8f8f2",
		Cursor:              "#f8f8f0",
		SelectionBackground: "#49483e",
	},
}

// Names returns the built-in theme names, sorted, for GET /api/themes.
func Names() []string {
	names := make([]string, 0, len(builtin))
	for name := range builtin {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get looks up a theme by name for GET /api/themes/<name>.
func Get(name string) (Colors, bool) {
	c, ok := builtin[name]
	return c, ok
}
