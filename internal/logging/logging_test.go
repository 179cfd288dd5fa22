package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLevels(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, Options{Level: "warn", Prefix: "host"})
	require.NoError(t, err)

	l.Info("hidden")
	l.Warn("shown", "op", "add-todo")
	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "host")
	assert.Contains(t, out, "add-todo")
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(&bytes.Buffer{}, Options{Level: "chatty"})
	assert.Error(t, err)
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "todo.log")
	l, closer, err := Open(Options{Path: path, Level: "debug"})
	require.NoError(t, err)
	l.Debug("saving todos", "path", "/tmp/x")
	require.NoError(t, closer.Close())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "level=debug")
	assert.Contains(t, string(b), `msg="saving todos"`)
	assert.Contains(t, string(b), "time=")
}
