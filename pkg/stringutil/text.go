// Package stringutil provides some string based helpers.
package stringutil

import (
	"strings"
)

// ScrubPrintable removes every rune outside of tab, printable ASCII
// (0x20-0x7e) and the latin-1 supplement (0x80-0xff). Discord rejects audit
// log reasons containing control characters, so anything a user can paste
// into a reason field gets filtered through this first.
func ScrubPrintable(data string) string {
	var builder strings.Builder

	builder.Grow(len(data))

	for _, char := range data {
		if char == '\t' || (char >= 0x20 && char <= 0x7e) || (char >= 0x80 && char <= 0xff) {
			builder.WriteRune(char)
		}
	}

	return builder.String()
}

// Truncate returns data cut down to at most maxLen runes.
func Truncate(data string, maxLen int) string {
	runes := []rune(data)
	if len(runes) > maxLen {
		return string(runes[:maxLen])
	}

	return data
}
