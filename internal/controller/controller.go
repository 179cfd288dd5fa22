// Package controller holds the presentation-side state: a cached copy of the
// collection, the view filter and the inline-edit marker. Every mutation goes
// to the host first; the cache only changes once the host has answered.
package controller

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/Makepad-fr/tada/internal/model"
)

// API is the host boundary as seen from the presentation side.
type API interface {
	GetTodos(ctx context.Context) ([]model.Item, error)
	AddTodo(ctx context.Context, text string) (model.Item, error)
	UpdateTodo(ctx context.Context, id string, p model.Patch) (model.Item, bool, error)
	DeleteTodo(ctx context.Context, id string) (bool, error)
}

// Filter selects which cached items are shown.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

// ParseFilter maps a name to a Filter; unknown names are an error.
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(s))); f {
	case FilterAll, FilterActive, FilterCompleted:
		return f, nil
	}
	return "", fmt.Errorf("unknown filter %q", s)
}

// Next returns the filter after f in all → active → completed order.
func (f Filter) Next() Filter {
	switch f {
	case FilterAll:
		return FilterActive
	case FilterActive:
		return FilterCompleted
	}
	return FilterAll
}

// Keep reports whether it passes the filter.
func (f Filter) Keep(it model.Item) bool {
	switch f {
	case FilterActive:
		return !it.Completed
	case FilterCompleted:
		return it.Completed
	}
	return true
}

// Controller is not safe for concurrent use; the UI drives it from one
// goroutine and each call waits for its round trip.
type Controller struct {
	api     API
	log     *log.Logger
	items   []model.Item
	filter  Filter
	editing string
}

// New returns a Controller with an empty cache and the "all" filter.
func New(api API, l *log.Logger) *Controller {
	if l == nil {
		l = log.New(io.Discard)
	}
	return &Controller{api: api, log: l, items: []model.Item{}, filter: FilterAll}
}

// Load replaces the cache with the host's collection. On failure the cache
// is left empty.
func (c *Controller) Load(ctx context.Context) error {
	items, err := c.api.GetTodos(ctx)
	if err != nil {
		c.items = []model.Item{}
		c.log.Error("failed to load todos", "err", err)
		return err
	}
	if items == nil {
		items = []model.Item{}
	}
	c.items = items
	return nil
}

// Add creates an item from the trimmed text. It reports false, without
// touching the host, when nothing is left after trimming.
func (c *Controller) Add(ctx context.Context, text string) (bool, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return false, nil
	}
	it, err := c.api.AddTodo(ctx, text)
	if err != nil {
		c.log.Error("failed to add todo", "err", err)
		return false, err
	}
	c.items = append(c.items, it)
	return true, nil
}

// Toggle flips the completion flag of a cached item.
func (c *Controller) Toggle(ctx context.Context, id string) error {
	i := c.index(id)
	if i < 0 {
		return nil
	}
	it, found, err := c.api.UpdateTodo(ctx, id, model.SetCompleted(!c.items[i].Completed))
	if err != nil {
		c.log.Error("failed to toggle todo", "id", id, "err", err)
		return err
	}
	if found {
		c.replace(it)
	}
	return nil
}

// Delete removes an item. The host's answer is not inspected; only a failed
// round trip keeps the item cached.
func (c *Controller) Delete(ctx context.Context, id string) error {
	if _, err := c.api.DeleteTodo(ctx, id); err != nil {
		c.log.Error("failed to delete todo", "id", id, "err", err)
		return err
	}
	c.drop(func(it model.Item) bool { return it.ID == id })
	if c.editing == id {
		c.editing = ""
	}
	return nil
}

// BeginEdit marks id as the row in inline-edit mode.
func (c *Controller) BeginEdit(id string) {
	if c.index(id) >= 0 {
		c.editing = id
	}
}

// CancelEdit leaves edit mode without saving.
func (c *Controller) CancelEdit() { c.editing = "" }

// SaveEdit stores new text for id. Text that trims to nothing deletes the item.
// Edit mode ends whether or not the update succeeded.
func (c *Controller) SaveEdit(ctx context.Context, id, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		c.editing = ""
		return c.Delete(ctx, id)
	}
	defer func() { c.editing = "" }()

	it, found, err := c.api.UpdateTodo(ctx, id, model.SetText(text))
	if err != nil {
		c.log.Error("failed to update todo", "id", id, "err", err)
		return err
	}
	if found {
		c.replace(it)
	}
	return nil
}

// ClearCompleted deletes every completed item, one request at a time. The
// cache is only pruned once all deletes went through.
func (c *Controller) ClearCompleted(ctx context.Context) error {
	var done []string
	for _, it := range c.items {
		if it.Completed {
			done = append(done, it.ID)
		}
	}
	for _, id := range done {
		if _, err := c.api.DeleteTodo(ctx, id); err != nil {
			c.log.Error("failed to clear completed todos", "id", id, "err", err)
			return err
		}
	}
	c.drop(func(it model.Item) bool { return it.Completed })
	if c.editing != "" && c.index(c.editing) < 0 {
		c.editing = ""
	}
	return nil
}

// SetFilter changes the view filter. The host is not involved.
func (c *Controller) SetFilter(f Filter) { c.filter = f }

// CycleFilter advances to the next filter.
func (c *Controller) CycleFilter() { c.filter = c.filter.Next() }

// Filter returns the current view filter.
func (c *Controller) Filter() Filter { return c.filter }

// Editing returns the id in edit mode, or "".
func (c *Controller) Editing() string { return c.editing }

// Items returns a copy of the unfiltered cache.
func (c *Controller) Items() []model.Item {
	out := make([]model.Item, len(c.items))
	copy(out, c.items)
	return out
}

// Item returns the cached item with id.
func (c *Controller) Item(id string) (model.Item, bool) {
	if i := c.index(id); i >= 0 {
		return c.items[i], true
	}
	return model.Item{}, false
}

func (c *Controller) index(id string) int {
	for i, it := range c.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func (c *Controller) replace(it model.Item) {
	if i := c.index(it.ID); i >= 0 {
		c.items[i] = it
	}
}

func (c *Controller) drop(match func(model.Item) bool) {
	kept := make([]model.Item, 0, len(c.items))
	for _, it := range c.items {
		if !match(it) {
			kept = append(kept, it)
		}
	}
	c.items = kept
}
