package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/muesli/termenv"
)

// SetTerminalBackground sets the terminal's default background color, so
// every ANSI reset and unstyled cell falls back to the app palette instead
// of the terminal's configured default. Returns a function that restores
// the original default.
//
// Works in kitty, alacritty, foot, wezterm, ghostty, iTerm2, Windows
// Terminal and most other modern emulators; terminals that ignore OSC 11
// keep their own background and lose nothing else.
func SetTerminalBackground(hexColor string) func() {
	return setTermBg(os.Stdout, hexColor)
}

// setTermBg writes to the given writer so tests can capture the sequences.
func setTermBg(w io.Writer, hexColor string) func() {
	if hexColor == "" {
		return func() {}
	}
	termenv.NewOutput(w).SetBackgroundColor(termenv.RGBColor(hexColor))

	return func() {
		// OSC 111 restores the configured default. termenv carries no
		// helper for it, hence the raw sequence.
		fmt.Fprint(w, "\033]111\033\\")
	}
}
