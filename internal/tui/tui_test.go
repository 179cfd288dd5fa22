package tui

import (
	"context"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/tada/internal/controller"
	"github.com/Makepad-fr/tada/internal/ipc"
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/store/jsonstore"
)

func newModel(t *testing.T, seed ...model.Item) (*Model, *jsonstore.Store) {
	t.Helper()
	ctx := context.Background()
	st := jsonstore.New(filepath.Join(t.TempDir(), jsonstore.DefaultFileName))
	if len(seed) > 0 {
		require.NoError(t, st.ReplaceAll(ctx, seed))
	}
	client := ipc.Pipe(ctx, st, nil)
	t.Cleanup(func() { client.Close() })

	ctrl := controller.New(client, nil)
	require.NoError(t, ctrl.Load(ctx))
	m := New(ctx, ctrl)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return m, st
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "ctrl+u":
		return tea.KeyMsg{Type: tea.KeyCtrlU}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m *Model, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = m.Update(keyMsg(k))
	}
	return cmd
}

func typeText(m *Model, s string) {
	for _, r := range s {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func texts(items []model.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Text)
	}
	return out
}

func TestAddFlow(t *testing.T) {
	m, st := newModel(t)

	press(m, "a")
	require.True(t, m.adding)
	typeText(m, "  Buy milk  ")
	press(m, "enter")

	assert.False(t, m.adding)
	assert.Empty(t, m.input.Value(), "input is cleared after adding")
	assert.Equal(t, []string{"Buy milk"}, texts(m.ctrl.Items()))

	onDisk, err := st.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Buy milk"}, texts(onDisk))
	assert.Contains(t, m.View(), "Buy milk")
	assert.Contains(t, m.View(), "1 task")
}

func TestAddBlankStaysOpen(t *testing.T) {
	m, _ := newModel(t)

	press(m, "a")
	typeText(m, "   ")
	press(m, "enter")
	assert.True(t, m.adding)
	assert.Equal(t, "Title cannot be empty", m.status)
	assert.Empty(t, m.ctrl.Items())

	press(m, "esc")
	assert.False(t, m.adding)
}

func TestToggleDeleteAndClear(t *testing.T) {
	m, st := newModel(t,
		model.Item{ID: "1", Text: "one"},
		model.Item{ID: "2", Text: "two"},
		model.Item{ID: "3", Text: "three"},
	)

	press(m, "space")
	it, _ := m.ctrl.Item("1")
	assert.True(t, it.Completed)

	press(m, "down", "down", "x")
	it, _ = m.ctrl.Item("3")
	assert.True(t, it.Completed)
	assert.Contains(t, m.View(), "C clear completed")

	press(m, "C")
	assert.Equal(t, []string{"two"}, texts(m.ctrl.Items()))
	assert.NotContains(t, m.View(), "clear completed")

	press(m, "d")
	assert.Empty(t, m.ctrl.Items())
	assert.Contains(t, m.View(), "No tasks yet")

	onDisk, err := st.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, onDisk)
}

func TestInlineEdit(t *testing.T) {
	m, _ := newModel(t, model.Item{ID: "1", Text: "draft"})

	press(m, "e")
	require.Equal(t, "1", m.ctrl.Editing())
	assert.Equal(t, "draft", m.edit.Value())

	press(m, "ctrl+u")
	typeText(m, "final")
	press(m, "enter")
	assert.Empty(t, m.ctrl.Editing())
	assert.Equal(t, []string{"final"}, texts(m.ctrl.Items()))

	press(m, "e")
	typeText(m, "ignored")
	press(m, "esc")
	assert.Empty(t, m.ctrl.Editing())
	assert.Equal(t, []string{"final"}, texts(m.ctrl.Items()))

	press(m, "e", "ctrl+u", "enter")
	assert.Empty(t, m.ctrl.Items(), "saving blank text deletes")
}

func TestFilterKeys(t *testing.T) {
	m, _ := newModel(t,
		model.Item{ID: "1", Text: "open"},
		model.Item{ID: "2", Text: "closed", Completed: true},
	)

	press(m, "3")
	assert.Equal(t, controller.FilterCompleted, m.ctrl.Filter())
	assert.Len(t, m.list.Items(), 1)
	assert.Contains(t, m.View(), "closed")
	assert.NotContains(t, m.View(), "open")

	press(m, "2")
	assert.Equal(t, controller.FilterActive, m.ctrl.Filter())
	press(m, "space")
	assert.Contains(t, m.View(), "Nothing left to do.")
	assert.Contains(t, m.View(), "2 tasks", "stats count the whole list")

	press(m, "tab")
	assert.Equal(t, controller.FilterCompleted, m.ctrl.Filter())
	press(m, "1")
	assert.Equal(t, controller.FilterAll, m.ctrl.Filter())
	assert.Len(t, m.list.Items(), 2)
}

func TestTextIsRenderedLiterally(t *testing.T) {
	m, _ := newModel(t, model.Item{ID: "1", Text: "\x1b[2J<b>evil</b>\x1b]0;title\x07"})
	view := m.View()
	assert.NotContains(t, view, "\x1b[2J")
	assert.NotContains(t, view, "\x1b]0;")
	assert.Contains(t, view, "<b>evil</b>")
}

func TestQuit(t *testing.T) {
	m, _ := newModel(t)
	cmd := press(m, "q")
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
