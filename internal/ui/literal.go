package ui

import (
	"regexp"
	"strings"
	"unicode"
)

// CSI, OSC and other two-byte escape sequences.
var escapeRegexp = regexp.MustCompile(`\x1b(\[[0-?]*[ -/]*[@-~]|\][^\x07\x1b]*(\x07|\x1b\\)?|[@-Z\\-_])`)

// Literal makes user text safe to print: escape sequences are dropped and
// every remaining control character becomes a space, so stored content is
// always shown as-is and can never restyle or move the terminal cursor.
func Literal(s string) string {
	s = escapeRegexp.ReplaceAllString(s, "")
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
}

// Truncate shortens s to at most n cells, marking the cut with "...".
func Truncate(s string, n int) string {
	r := []rune(s)
	if n <= 3 || len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
