package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLiteral(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Buy milk", "Buy milk"},
		{"markup stays literal", "<b>bold</b> & <script>", "<b>bold</b> & <script>"},
		{"sgr color", "\x1b[31mred\x1b[0m", "red"},
		{"cursor movement", "a\x1b[2Jb\x1b[10;5Hc", "abc"},
		{"osc title", "x\x1b]0;pwned\x07y", "xy"},
		{"osc st terminator", "x\x1b]8;;http://e\x1b\\link", "xlink"},
		{"newlines and tabs", "one\ntwo\tthree\r", "one two three "},
		{"bell and nul", "a\x07b\x00c", "a b c"},
		{"unicode kept", "café ☕", "café ☕"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Literal(tt.in))
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abcdefg...", Truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "ééé...", Truncate("éééééééé", 6))
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "█████░░░░░  50%", ProgressBar(1, 2, 10))
	assert.Equal(t, "░░░░░   0%", ProgressBar(0, 0, 1))
	assert.Equal(t, "██████████ 100%", ProgressBar(3, 3, 10))
}

func TestPanel(t *testing.T) {
	require.NoError(t, SetTheme("mono"))
	defer SetTheme("classic")

	var buf bytes.Buffer
	Panel(&buf, []string{"ab", "\x1b[1mabcd\x1b[0m"})
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "+------+", lines[0])
	assert.Equal(t, "| ab   |", lines[1])
	assert.Equal(t, "+------+", lines[3])
}

func TestSetTheme(t *testing.T) {
	defer SetTheme("classic")
	require.NoError(t, SetTheme("NEON"))
	assert.Equal(t, "◼", Current().BoxChecked)
	err := SetTheme("vaporwave")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "classic, mono, neon")
}

func TestOKAndFail(t *testing.T) {
	SetColorForcing(false, true)
	defer SetColorForcing(false, false)

	var buf bytes.Buffer
	OK(&buf, "added")
	Fail(&buf, "nope")
	assert.Equal(t, "✔ added\n✖ nope\n", buf.String())
}
