package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Makepad-fr/tada/internal/cli"
	"github.com/Makepad-fr/tada/internal/controller"
	"github.com/Makepad-fr/tada/internal/ipc"
)

var lsCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List tasks",
	Long: `List tasks with a progress bar.

Row numbers refer to the full list, so they can be passed to done, edit
and rm whatever filter is shown.

Examples:
  todo ls
  todo ls --group
  todo ls --filter active`,
	Args: cobra.NoArgs,
	RunE: runLs,
}

var addCmd = &cobra.Command{
	Use:   "add <text>...",
	Short: "Add a task",
	Long: `Add a task. Words are joined with spaces and surrounding blanks trimmed.

Examples:
  todo add "Buy milk"
  todo add call the plumber`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

var doneCmd = &cobra.Command{
	Use:   "done <n>",
	Short: "Toggle the completed state of task n",
	Args:  cobra.ExactArgs(1),
	RunE:  runDone,
}

var editCmd = &cobra.Command{
	Use:   "edit <n> <text>...",
	Short: "Replace the text of task n (blank text removes it)",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runEdit,
}

var rmCmd = &cobra.Command{
	Use:   "rm <n>",
	Short: "Remove task n",
	Args:  cobra.ExactArgs(1),
	RunE:  runRm,
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every completed task",
	Args:  cobra.NoArgs,
	RunE:  runClear,
}

var (
	lsGroup  bool
	lsFilter string
)

func init() {
	lsCmd.Flags().BoolVar(&lsGroup, "group", false, "group output by pending/done")
	lsCmd.Flags().StringVar(&lsFilter, "filter", "all", "show all, active or completed")

	rootCmd.AddCommand(lsCmd, addCmd, doneCmd, editCmd, rmCmd, clearCmd)
}

// withRunner serves the todo file in-process and hands a loaded runner to fn.
func withRunner(cmd *cobra.Command, fn func(ctx context.Context, r *cli.Runner) error) error {
	e, err := setup(cmd, "", false)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := cmd.Context()
	client := ipc.Pipe(ctx, e.store(), e.log)
	defer client.Close()

	ctrl := controller.New(client, e.log)
	if err := ctrl.Load(ctx); err != nil {
		return err
	}
	return fn(ctx, cli.NewRunner(ctrl, cmd.OutOrStdout()))
}

func parseIndex(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("bad index %q: want a number from `todo ls`", s)
	}
	return n, nil
}

func runLs(cmd *cobra.Command, args []string) error {
	f, err := controller.ParseFilter(lsFilter)
	if err != nil {
		return err
	}
	return withRunner(cmd, func(_ context.Context, r *cli.Runner) error {
		r.List(f, cli.Options{Group: lsGroup})
		return nil
	})
}

func runAdd(cmd *cobra.Command, args []string) error {
	return withRunner(cmd, func(ctx context.Context, r *cli.Runner) error {
		return r.Add(ctx, strings.Join(args, " "))
	})
}

func runDone(cmd *cobra.Command, args []string) error {
	n, err := parseIndex(args[0])
	if err != nil {
		return err
	}
	return withRunner(cmd, func(ctx context.Context, r *cli.Runner) error {
		return r.Toggle(ctx, n)
	})
}

func runEdit(cmd *cobra.Command, args []string) error {
	n, err := parseIndex(args[0])
	if err != nil {
		return err
	}
	return withRunner(cmd, func(ctx context.Context, r *cli.Runner) error {
		return r.Edit(ctx, n, strings.Join(args[1:], " "))
	})
}

func runRm(cmd *cobra.Command, args []string) error {
	n, err := parseIndex(args[0])
	if err != nil {
		return err
	}
	return withRunner(cmd, func(ctx context.Context, r *cli.Runner) error {
		return r.Remove(ctx, n)
	})
}

func runClear(cmd *cobra.Command, args []string) error {
	return withRunner(cmd, func(ctx context.Context, r *cli.Runner) error {
		return r.ClearCompleted(ctx)
	})
}
