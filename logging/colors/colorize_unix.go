//go:build !windows
// +build !windows

package colors

import "fmt"

var disabled bool

// EnableColor turns ANSI escape codes back on for non-windows systems, which we know support them
func EnableColor() {
	disabled = false
}

// DisableColor turns off ANSI escape codes for Colorize. Used by tests that assert on raw message content.
func DisableColor() {
	disabled = true
}

// Colorize returns the string s wrapped in ANSI code c for non-windows systems
// Source: https://github.com/rs/zerolog/blob/4fff5db29c3403bc26dee9895e12a108aacc0203/console.go
func Colorize(s any, c Color) string {
	if disabled {
		return fmt.Sprintf("%v", s)
	}
	return fmt.Sprintf("\x1b[%dm%v\x1b[0m", c, s)
}
