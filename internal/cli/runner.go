package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/Makepad-fr/tada/internal/controller"
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/ui"
)

// Options tune output behavior from flags.
type Options struct {
	Group bool // list grouped by pending/done
}

// ErrIndex is returned for a 1-based index outside the list.
var ErrIndex = errors.New("index out of range")

// Runner carries out one-shot commands through a loaded controller, so they
// follow the same rules (trimming, delete-on-blank) as the interactive UI.
type Runner struct {
	ctrl *controller.Controller
	out  io.Writer
}

// NewRunner returns a Runner printing to out.
func NewRunner(ctrl *controller.Controller, out io.Writer) *Runner {
	return &Runner{ctrl: ctrl, out: out}
}

// -------------- subcommand impls ----------------

// List prints the framed list with a progress header.
func (r *Runner) List(f controller.Filter, opt Options) {
	r.ctrl.SetFilter(f)
	v := r.ctrl.View()
	t := ui.Current()

	header := fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		ui.C(t.Title, "Todos"),
		ui.C(t.Success, t.SymDone), v.Completed,
		ui.C(t.Pending, t.SymUnchecked), v.Total-v.Completed,
		ui.C(t.Accent, "Total"), v.Total,
	)

	var lines []string
	lines = append(lines, header)
	lines = append(lines, ui.C(t.Muted, ui.ProgressBar(v.Completed, v.Total, 28)))
	lines = append(lines, "")

	if opt.Group {
		lines = append(lines, groupLines(r.ctrl.Items(), v.Items)...)
	} else {
		lines = append(lines, flatLines(r.ctrl.Items(), v.Items)...)
	}
	lines = append(lines, "")
	lines = append(lines, ui.C(t.Muted, "Tip: add with `todo add \"Buy milk\"`"))
	ui.Panel(r.out, lines)
}

// Add creates an item from title.
func (r *Runner) Add(ctx context.Context, title string) error {
	ok, err := r.ctrl.Add(ctx, title)
	if err != nil {
		return fmt.Errorf("add: %w", err)
	}
	if !ok {
		return errors.New("add: empty title")
	}
	ui.OK(r.out, "added")
	return nil
}

// Toggle flips the item at a 1-based index of the full list.
func (r *Runner) Toggle(ctx context.Context, userIndex int) error {
	it, err := r.at(userIndex)
	if err != nil {
		return err
	}
	if err := r.ctrl.Toggle(ctx, it.ID); err != nil {
		return fmt.Errorf("toggle: %w", err)
	}
	ui.OK(r.out, "toggled")
	return nil
}

// Edit replaces the text of the item at userIndex; blank text removes it.
func (r *Runner) Edit(ctx context.Context, userIndex int, text string) error {
	it, err := r.at(userIndex)
	if err != nil {
		return err
	}
	if err := r.ctrl.SaveEdit(ctx, it.ID, text); err != nil {
		return fmt.Errorf("edit: %w", err)
	}
	if _, still := r.ctrl.Item(it.ID); !still {
		ui.OK(r.out, "removed")
		return nil
	}
	ui.OK(r.out, "updated")
	return nil
}

// Remove deletes the item at userIndex.
func (r *Runner) Remove(ctx context.Context, userIndex int) error {
	it, err := r.at(userIndex)
	if err != nil {
		return err
	}
	if err := r.ctrl.Delete(ctx, it.ID); err != nil {
		return fmt.Errorf("rm: %w", err)
	}
	ui.OK(r.out, "removed")
	return nil
}

// ClearCompleted drops every completed item.
func (r *Runner) ClearCompleted(ctx context.Context) error {
	n := r.ctrl.View().Completed
	if err := r.ctrl.ClearCompleted(ctx); err != nil {
		return fmt.Errorf("clear: %w", err)
	}
	ui.OK(r.out, fmt.Sprintf("cleared %d", n))
	return nil
}

func (r *Runner) at(userIndex int) (model.Item, error) {
	items := r.ctrl.Items()
	if userIndex < 1 || userIndex > len(items) {
		return model.Item{}, fmt.Errorf("%w: have %d, got %d", ErrIndex, len(items), userIndex)
	}
	return items[userIndex-1], nil
}

// -------------- rendering helpers --------------

// flatLines renders shown, numbering each row by its place in all so the
// numbers stay valid for done/rm whatever the filter.
func flatLines(all, shown []model.Item) []string {
	if len(shown) == 0 {
		return []string{ui.C(ui.Current().Muted, "no items")}
	}
	pos := make(map[string]int, len(all))
	for i, it := range all {
		pos[it.ID] = i + 1
	}
	out := make([]string, 0, len(shown))
	for _, it := range shown {
		idx := fmt.Sprintf("%2d.", pos[it.ID])
		box := ui.Current().BoxUnchecked
		color := ui.Current().Muted
		if it.Completed {
			box, color = ui.Current().BoxChecked, ui.Current().Success
		}
		title := ui.Truncate(ui.Literal(it.Text), 80)
		out = append(out, fmt.Sprintf("%s %s %s", ui.Dim(idx), ui.C(color, box), title))
	}
	return out
}

func groupLines(all, shown []model.Item) []string {
	var pend, done []model.Item
	for _, it := range shown {
		if it.Completed {
			done = append(done, it)
		} else {
			pend = append(pend, it)
		}
	}
	var lines []string
	lines = append(lines, ui.C(ui.Current().Accent, "Pending"))
	if len(pend) == 0 {
		lines = append(lines, ui.C(ui.Current().Muted, "(none)"))
	} else {
		lines = append(lines, flatLines(all, pend)...)
	}
	lines = append(lines, "")
	lines = append(lines, ui.C(ui.Current().Accent, "Done"))
	if len(done) == 0 {
		lines = append(lines, ui.C(ui.Current().Muted, "(none)"))
	} else {
		lines = append(lines, flatLines(all, done)...)
	}
	return lines
}
