package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/tada/internal/cli"
	"github.com/Makepad-fr/tada/internal/model"
)

// run executes the root command against a data directory with an empty
// config file, so the user's own settings never leak in.
func run(t *testing.T, dir, stdin string, args ...string) (string, error) {
	t.Helper()
	for _, k := range []string{"TODO_DATA_DIR", "TODO_THEME", "TODO_LOG_LEVEL"} {
		t.Setenv(k, "")
	}
	lsGroup, lsFilter, flagInProcess = false, "all", false

	cfg := filepath.Join(dir, "config.toml")
	if _, err := os.Stat(cfg); os.IsNotExist(err) {
		require.NoError(t, os.WriteFile(cfg, []byte("theme = \"mono\"\n"), 0o644))
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(append(args, "--config", cfg, "--data-dir", dir))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func readTodos(t *testing.T, dir string) []model.Item {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(dir, "todos.json"))
	require.NoError(t, err)
	var items []model.Item
	require.NoError(t, json.Unmarshal(b, &items))
	return items
}

func TestAddAndList(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "", "add", "  Buy", "milk  ")
	require.NoError(t, err)
	assert.Contains(t, out, "added")

	items := readTodos(t, dir)
	require.Len(t, items, 1)
	assert.Equal(t, "Buy milk", items[0].Text)
	assert.False(t, items[0].Completed)

	out, err = run(t, dir, "", "ls")
	require.NoError(t, err)
	assert.Contains(t, out, " 1. [ ] Buy milk")
	assert.Contains(t, out, "Total 1")
}

func TestAddBlankFails(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, dir, "", "add", "   ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty title")
}

func TestDoneEditRemoveClear(t *testing.T) {
	dir := t.TempDir()
	for _, text := range []string{"one", "two", "three"} {
		_, err := run(t, dir, "", "add", text)
		require.NoError(t, err)
	}

	_, err := run(t, dir, "", "done", "1")
	require.NoError(t, err)
	_, err = run(t, dir, "", "done", "3")
	require.NoError(t, err)

	out, err := run(t, dir, "", "ls", "--filter", "active")
	require.NoError(t, err)
	assert.Contains(t, out, " 2. [ ] two", "rows keep their full-list numbers")
	assert.NotContains(t, out, "one")

	out, err = run(t, dir, "", "ls", "--group")
	require.NoError(t, err)
	assert.Contains(t, out, "Pending")
	assert.Contains(t, out, " 3. [x] three")

	_, err = run(t, dir, "", "edit", "2", "deux")
	require.NoError(t, err)
	assert.Equal(t, "deux", readTodos(t, dir)[1].Text)

	out, err = run(t, dir, "", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "cleared 2")
	items := readTodos(t, dir)
	require.Len(t, items, 1)
	assert.Equal(t, "deux", items[0].Text)

	_, err = run(t, dir, "", "rm", "1")
	require.NoError(t, err)
	assert.Empty(t, readTodos(t, dir))
}

func TestBadIndex(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, dir, "", "add", "only")
	require.NoError(t, err)

	_, err = run(t, dir, "", "rm", "2")
	assert.ErrorIs(t, err, cli.ErrIndex)

	_, err = run(t, dir, "", "done", "first")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad index")
}

func TestBadFilterAndTheme(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, dir, "", "ls", "--filter", "done")
	assert.Error(t, err)

	_, err = run(t, dir, "", "ls", "--theme", "sepia")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown theme")
	flagTheme = ""
	rootCmd.PersistentFlags().Lookup("theme").Changed = false
}

func TestHostServesStdin(t *testing.T) {
	dir := t.TempDir()
	in := `{"id":"a","op":"add-todo","args":[{"text":"from host"}]}` + "\n" +
		`{"id":"b","op":"get-todos"}` + "\n" +
		`{"id":"c","op":"rename-todo"}` + "\n"

	out, err := run(t, dir, in, "host")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)

	var add, get, bad struct {
		ID     string          `json:"id"`
		Result json.RawMessage `json:"result"`
		Error  string          `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &add))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &get))
	require.NoError(t, json.Unmarshal([]byte(lines[2]), &bad))

	assert.Equal(t, "a", add.ID)
	assert.Contains(t, string(add.Result), `"text":"from host"`)
	assert.Equal(t, "b", get.ID)
	assert.Contains(t, string(get.Result), "from host")
	assert.Equal(t, "c", bad.ID)
	assert.NotEmpty(t, bad.Error)

	assert.Len(t, readTodos(t, dir), 1)
	assert.FileExists(t, filepath.Join(dir, "todo.log"), "host logs to the data directory")
}
