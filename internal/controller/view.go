package controller

import (
	"fmt"

	"github.com/Makepad-fr/tada/internal/model"
)

// View is everything a renderer needs, derived from the cache alone.
type View struct {
	Items          []model.Item // cache filtered by Filter, in cache order
	Filter         Filter
	EditingID      string
	Total          int // over the unfiltered cache
	Completed      int // over the unfiltered cache
	Empty          bool
	ClearCompleted bool // whether the clear-completed control is offered
}

// View projects the current state.
func (c *Controller) View() View {
	v := View{
		Items:     Apply(c.filter, c.items),
		Filter:    c.filter,
		EditingID: c.editing,
		Total:     len(c.items),
	}
	for _, it := range c.items {
		if it.Completed {
			v.Completed++
		}
	}
	v.Empty = len(v.Items) == 0
	v.ClearCompleted = v.Completed > 0
	return v
}

// Apply returns the items passing f, preserving order.
func Apply(f Filter, items []model.Item) []model.Item {
	out := make([]model.Item, 0, len(items))
	for _, it := range items {
		if f.Keep(it) {
			out = append(out, it)
		}
	}
	return out
}

// TotalLabel reads "1 task" or "N tasks".
func (v View) TotalLabel() string {
	if v.Total == 1 {
		return "1 task"
	}
	return fmt.Sprintf("%d tasks", v.Total)
}

// CompletedLabel reads "N completed".
func (v View) CompletedLabel() string { return fmt.Sprintf("%d completed", v.Completed) }
