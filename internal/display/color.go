// Package display renders prayer lists for the terminal using raw ANSI
// escape codes.
//
// It respects the NO_COLOR environment variable (https://no-color.org/) and
// disables color when stdout is piped or redirected.
package display

import (
	"os"
)

// ANSI escape codes for styling.
const (
	reset  = "\033[0m"
	bold   = "\033[1m"
	dim    = "\033[2m"
	red    = "\033[31m"
	yellow = "\033[33m"
	cyan   = "\033[36m"
	fgGray = "\033[90m" // bright black = gray
)

// enabled reports whether color output is active.
// It is set once at init time.
var enabled bool

func init() {
	enabled = shouldEnable()
}

// shouldEnable determines whether to use color output.
func shouldEnable() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if _, ok := os.LookupEnv("FORCE_COLOR"); ok {
		return true
	}
	return isTerminal(os.Stdout)
}

// isTerminal reports whether f is a character device.
func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

// SetEnabled overrides the auto-detected color state.
// --json and --yaml force plain output through it.
func SetEnabled(b bool) {
	enabled = b
}

// Enabled reports whether color output is currently active.
func Enabled() bool {
	return enabled
}

// wrap applies an ANSI code around text, only when colors are enabled.
func wrap(code, text string) string {
	if !enabled {
		return text
	}
	return code + text + reset
}

// Bold renders table headers and the location line.
func Bold(text string) string {
	return wrap(bold, text)
}

// Dim renders separators and the full place name.
func Dim(text string) string {
	return wrap(dim, text)
}

// Red renders error banners.
func Red(text string) string {
	return wrap(red, text)
}

// Yellow renders the loading indicator and warnings.
func Yellow(text string) string {
	return wrap(yellow, text)
}

// Gray renders rows that are shown but never announced, such as Sunrise
// and Qiyam.
func Gray(text string) string {
	return wrap(fgGray, text)
}

// Accent marks the next prayer.
func Accent(text string) string {
	if !enabled {
		return text
	}
	return bold + cyan + text + reset
}
