// internal/util/util.go
package util

import (
	"strings"
	"unicode/utf8"
)

// TruncateRunes truncates a string to a maximum number of runes,
// appending an ellipsis if truncated.
func TruncateRunes(text string, maxRunes int) string {
	if utf8.RuneCountInString(text) <= maxRunes {
		return text
	}
	runes := []rune(text)
	return string(runes[:maxRunes]) + "…"
}

// CollapseWhitespace flattens runs of whitespace, including newlines, into
// single spaces so multi-line descriptions render as one line.
func CollapseWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
