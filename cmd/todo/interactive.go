package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/Makepad-fr/tada/internal/controller"
	"github.com/Makepad-fr/tada/internal/ipc"
	"github.com/Makepad-fr/tada/internal/tui"
)

func runInteractive(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	e, err := setup(cmd, "tui", true)
	if err != nil {
		return err
	}
	defer e.Close()

	var client *ipc.Client
	if flagInProcess {
		client = ipc.Pipe(ctx, e.store(), e.log)
	} else {
		self, err := os.Executable()
		if err != nil {
			return fmt.Errorf("%w: %v", errNoExecutable, err)
		}
		host := exec.CommandContext(ctx, self, hostArgs(e)...)
		host.Env = os.Environ()
		if client, err = ipc.Spawn(host, e.log); err != nil {
			return err
		}
		e.log.Info("host started", "pid", host.Process.Pid)
	}
	defer client.Close()

	ctrl := controller.New(client, e.log)
	f, err := controller.ParseFilter(e.cfg.Filter)
	if err != nil {
		e.log.Warn("ignoring configured filter", "err", err)
		f = controller.FilterAll
	}
	ctrl.SetFilter(f)

	return tui.Run(ctx, ctrl)
}
