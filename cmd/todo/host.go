package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Makepad-fr/tada/internal/ipc"
)

var hostCmd = &cobra.Command{
	Use:    "host",
	Short:  "Serve the todo file on stdin/stdout",
	Hidden: true,
	Args:   cobra.NoArgs,
	RunE:   runHost,
}

func init() {
	rootCmd.AddCommand(hostCmd)
}

// runHost answers one request per line until stdin closes. Stdout carries
// responses only; logs go to the log file.
func runHost(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd, "host", true)
	if err != nil {
		return err
	}
	defer e.Close()

	e.log.Info("serving", "file", e.cfg.DataPath(), "pid", os.Getpid())
	err = ipc.NewServer(e.store(), e.log).Serve(cmd.Context(), ipc.Stdio(cmd.InOrStdin(), cmd.OutOrStdout()))
	e.log.Info("stopped", "err", err)
	return err
}
