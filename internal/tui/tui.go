// Package tui renders the presentation controller as a Bubble Tea program.
package tui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/Makepad-fr/tada/internal/controller"
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/ui"
)

// Max characters accepted by the add and edit inputs.
const charLimit = 200

// listItem adapts a cached Item to bubbles/list.Item
type listItem struct{ model.Item }

func (i listItem) FilterValue() string { return i.Text }

type keyMap struct {
	Add, Edit, Toggle, Delete, Clear key.Binding
	All, Active, Completed, Cycle    key.Binding
	Quit                             key.Binding
}

func (k keyMap) help() []key.Binding {
	return []key.Binding{k.Add, k.Toggle, k.Edit, k.Delete, k.Clear, k.Cycle, k.Quit}
}

var keys = keyMap{
	Add:       key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
	Edit:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
	Toggle:    key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "toggle")),
	Delete:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	Clear:     key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "clear completed")),
	All:       key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "all")),
	Active:    key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "active")),
	Completed: key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "completed")),
	Cycle:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab/1-3", "filter")),
	Quit:      key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

// Model is the Bubble Tea model. Controller calls run inside Update and wait
// for their round trip, so the controller is only ever touched from one
// goroutine.
type Model struct {
	ctx  context.Context
	ctrl *controller.Controller

	list   list.Model
	input  textinput.Model // add
	edit   textinput.Model // inline edit
	adding bool
	status string // last failure or hint, cleared on the next key

	width, height int
}

// New builds a Model over an already loaded controller.
func New(ctx context.Context, ctrl *controller.Controller) *Model {
	w, h := widthHeight()
	m := &Model{ctx: ctx, ctrl: ctrl, width: w, height: h}

	m.list = list.New(nil, itemDelegate{m: m}, w, h)
	m.list.SetShowTitle(false)
	m.list.SetShowHelp(false)
	m.list.SetShowStatusBar(false)
	m.list.SetFilteringEnabled(false)
	m.list.SetShowPagination(true)
	m.list.Styles.PaginationStyle = helpStyle
	m.list.KeyMap.Quit.SetEnabled(false)

	m.input = textinput.New()
	m.input.Prompt = "> "
	m.input.Placeholder = "What needs to be done?"
	m.input.CharLimit = charLimit

	m.edit = textinput.New()
	m.edit.Prompt = ""
	m.edit.CharLimit = charLimit

	m.refresh()
	return m
}

// Run loads the collection and runs the program until the user quits.
func Run(ctx context.Context, ctrl *controller.Controller, opts ...tea.ProgramOption) error {
	// A failed load starts the list empty; the controller has logged it.
	_ = ctrl.Load(ctx)
	m := New(ctx, ctrl)
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	_, err := tea.NewProgram(m, opts...).Run()
	return err
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.adding {
			return m.updateAdding(msg)
		}
		if m.ctrl.Editing() != "" {
			return m.updateEditing(msg)
		}
		return m.updateBrowsing(msg)
	}

	// cursor blink and similar messages go to whichever input has focus
	var cmd tea.Cmd
	switch {
	case m.adding:
		m.input, cmd = m.input.Update(msg)
	case m.ctrl.Editing() != "":
		m.edit, cmd = m.edit.Update(msg)
	}
	return m, cmd
}

func (m *Model) updateAdding(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		ok, err := m.ctrl.Add(m.ctx, m.input.Value())
		switch {
		case err != nil:
			m.fail("add", err)
		case !ok:
			m.status = "Title cannot be empty"
		default:
			m.input.SetValue("")
			m.input.Blur()
			m.adding = false
			m.status = ""
			m.refresh()
			m.list.Select(len(m.list.Items()) - 1)
		}
		return m, nil
	case "esc":
		m.adding = false
		m.input.SetValue("")
		m.input.Blur()
		m.status = ""
		m.resize()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if err := m.ctrl.SaveEdit(m.ctx, m.ctrl.Editing(), m.edit.Value()); err != nil {
			m.fail("save", err)
		}
		m.edit.Blur()
		m.refresh()
		return m, nil
	case "esc":
		m.ctrl.CancelEdit()
		m.edit.Blur()
		m.refresh()
		return m, nil
	}
	var cmd tea.Cmd
	m.edit, cmd = m.edit.Update(msg)
	return m, cmd
}

func (m *Model) updateBrowsing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Add):
		m.adding = true
		m.input.SetValue("")
		m.resize()
		return m, m.input.Focus()

	case key.Matches(msg, keys.Toggle):
		if it, ok := m.selected(); ok {
			if err := m.ctrl.Toggle(m.ctx, it.ID); err != nil {
				m.fail("toggle", err)
			}
			m.refresh()
		}
		return m, nil

	case key.Matches(msg, keys.Edit):
		if it, ok := m.selected(); ok {
			m.ctrl.BeginEdit(it.ID)
			m.edit.SetValue(it.Text)
			m.edit.CursorEnd()
			m.refresh()
			return m, m.edit.Focus()
		}
		return m, nil

	case key.Matches(msg, keys.Delete):
		if it, ok := m.selected(); ok {
			if err := m.ctrl.Delete(m.ctx, it.ID); err != nil {
				m.fail("delete", err)
			}
			m.refresh()
		}
		return m, nil

	case key.Matches(msg, keys.Clear):
		if m.ctrl.View().ClearCompleted {
			if err := m.ctrl.ClearCompleted(m.ctx); err != nil {
				m.fail("clear completed", err)
			}
			m.refresh()
		}
		return m, nil

	case key.Matches(msg, keys.All):
		return m.setFilter(controller.FilterAll)
	case key.Matches(msg, keys.Active):
		return m.setFilter(controller.FilterActive)
	case key.Matches(msg, keys.Completed):
		return m.setFilter(controller.FilterCompleted)
	case key.Matches(msg, keys.Cycle):
		return m.setFilter(m.ctrl.Filter().Next())
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) setFilter(f controller.Filter) (tea.Model, tea.Cmd) {
	m.ctrl.SetFilter(f)
	m.refresh()
	m.list.Select(0)
	return m, nil
}

func (m *Model) fail(what string, err error) {
	m.status = fmt.Sprintf("%s failed: %v", what, err)
}

func (m *Model) selected() (model.Item, bool) {
	li, ok := m.list.SelectedItem().(listItem)
	if !ok {
		return model.Item{}, false
	}
	return li.Item, true
}

// refresh re-projects the controller into the list.
func (m *Model) refresh() {
	v := m.ctrl.View()
	items := make([]list.Item, 0, len(v.Items))
	for _, it := range v.Items {
		items = append(items, listItem{it})
	}
	idx := m.list.Index()
	m.list.SetItems(items)
	if idx >= len(items) {
		idx = len(items) - 1
	}
	if idx >= 0 {
		m.list.Select(idx)
	}
	m.resize()
}

func (m *Model) resize() {
	// header, tabs, blank line, footer lines and the panel border
	reserved := 8
	if m.adding {
		reserved += 3
	}
	h := m.height - reserved
	if h < 1 {
		h = 1
	}
	m.list.SetSize(m.width-4, h)
	m.input.Width = m.width - 10
	m.edit.Width = m.width - 14
}

// View implements tea.Model.
func (m *Model) View() string {
	v := m.ctrl.View()

	var b strings.Builder
	b.WriteString(header(v))
	b.WriteString("\n")
	b.WriteString(tabs(v.Filter))
	b.WriteString("\n\n")

	if v.Empty {
		b.WriteString(mutedStyle.Render(emptyMessage(v.Filter)))
		b.WriteString("\n")
	} else {
		b.WriteString(m.list.View())
		b.WriteString("\n")
	}

	if m.adding {
		title := "Add new item"
		if m.status != "" {
			title += "  " + errorStyle.Render(m.status)
		}
		b.WriteString(border.Render(title + "\n" + m.input.View()))
		b.WriteString("\n")
	} else if m.status != "" {
		b.WriteString(errorStyle.Render(m.status))
		b.WriteString("\n")
	}

	b.WriteString(helpLine(v))
	return border.Render(b.String())
}

func header(v controller.View) string {
	return fmt.Sprintf("%s   %s %s  %s %s",
		titleStyle.Render("Todos"),
		accentStyle.Render("•"), v.TotalLabel(),
		successStyle.Render("✔"), v.CompletedLabel(),
	)
}

func tabs(active controller.Filter) string {
	names := []controller.Filter{controller.FilterAll, controller.FilterActive, controller.FilterCompleted}
	out := make([]string, 0, len(names))
	for i, f := range names {
		label := fmt.Sprintf("%d %s", i+1, strings.ToUpper(string(f[:1]))+string(f[1:]))
		if f == active {
			out = append(out, activeTab.Render(label))
		} else {
			out = append(out, tabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, out...)
}

func emptyMessage(f controller.Filter) string {
	switch f {
	case controller.FilterActive:
		return "Nothing left to do."
	case controller.FilterCompleted:
		return "No completed tasks."
	}
	return "No tasks yet. Press a to add one."
}

func helpLine(v controller.View) string {
	var parts []string
	for _, b := range keys.help() {
		if b.Help() == keys.Clear.Help() && !v.ClearCompleted {
			continue
		}
		parts = append(parts, b.Help().Key+" "+b.Help().Desc)
	}
	return helpStyle.Render(strings.Join(parts, " • "))
}

// Custom delegate to control how items render (single line)
type itemDelegate struct{ m *Model }

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(listItem)
	if !ok {
		return
	}

	prefix := "  "
	if index == m.Index() {
		prefix = selectedStyle.Render(">") + " "
	}

	box := mutedStyle.Render(boxUnchecked)
	if it.Completed {
		box = successStyle.Render(boxChecked)
	}

	var text string
	switch {
	case it.ID == d.m.ctrl.Editing():
		text = d.m.edit.View()
	case it.Completed:
		text = doneStyle.Render(ui.Literal(it.Text))
	default:
		text = pendingStyle.Render(ui.Literal(it.Text))
	}
	fmt.Fprint(w, prefix+box+" "+text)
}

// widthHeight reports the terminal size, 80x24 when unknown.
func widthHeight() (int, int) {
	w, h := 80, 24
	if tw, th, err := term.GetSize(int(os.Stdout.Fd())); err == nil && tw > 0 && th > 0 {
		w, h = tw, th
	}
	return w, h
}
