// Package main is the entry point for the todo CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/Makepad-fr/tada/internal/config"
	"github.com/Makepad-fr/tada/internal/logging"
	"github.com/Makepad-fr/tada/internal/store/jsonstore"
	"github.com/Makepad-fr/tada/internal/ui"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		ui.Fail(os.Stderr, err.Error())
		stop()
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "todo",
	Short: "todo - a small terminal to-do list",
	Long: `todo keeps a list of tasks in a JSON file under your config directory.

Run without a subcommand to open the interactive list. The list talks to a
separate host process that owns the file; --in-process serves it from the
same process instead.`,
	Version:       Version,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runInteractive,
}

var (
	flagConfig    string
	flagDataDir   string
	flagTheme     string
	flagLogLevel  string
	flagInProcess bool
)

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SetVersionTemplate("todo version {{.Version}}\n")

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "config file (.toml or .yaml)")
	pf.StringVar(&flagDataDir, "data-dir", "", "directory holding the todo file")
	pf.StringVar(&flagTheme, "theme", "", "color theme (classic, neon, mono)")
	pf.StringVar(&flagLogLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.Flags().BoolVar(&flagInProcess, "in-process", false, "serve the todo file from this process")
}

// env is what every command needs once flags are parsed.
type env struct {
	cfg      *config.Config
	log      *log.Logger
	closeLog io.Closer
}

func (e *env) Close() error { return e.closeLog.Close() }

// store opens the todo file named by the config.
func (e *env) store() *jsonstore.Store {
	return jsonstore.New(e.cfg.DataPath(),
		jsonstore.WithAtomicWrites(e.cfg.AtomicWrites),
		jsonstore.WithLogger(e.log),
	)
}

// setup resolves the config (defaults, file, environment, then flags),
// selects the theme and opens the logger. Commands that own the terminal
// pass toFile so log lines do not land on the screen.
func setup(cmd *cobra.Command, prefix string, toFile bool) (*env, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if f := cmd.Flag("data-dir"); f != nil && f.Changed {
		cfg.DataDir = flagDataDir
	}
	if f := cmd.Flag("theme"); f != nil && f.Changed {
		cfg.Theme = flagTheme
	}
	if f := cmd.Flag("log-level"); f != nil && f.Changed {
		cfg.LogLevel = flagLogLevel
	}
	if err := ui.SetTheme(cfg.Theme); err != nil {
		return nil, err
	}

	opts := logging.Options{Level: cfg.LogLevel, Prefix: prefix}
	if toFile {
		opts.Path = cfg.LogPath()
	}
	var (
		l      *log.Logger
		closer io.Closer
	)
	if toFile && opts.Path == "" {
		// File logging is off; keep the screen clean.
		l, closer = logging.Discard(), io.NopCloser(nil)
	} else if l, closer, err = logging.Open(opts); err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}
	return &env{cfg: cfg, log: l, closeLog: closer}, nil
}

// hostArgs rebuilds the flags a spawned host needs to resolve the same file.
func hostArgs(e *env) []string {
	args := []string{"host", "--data-dir", e.cfg.DataDir, "--log-level", e.cfg.LogLevel}
	if flagConfig != "" {
		args = append(args, "--config", flagConfig)
	}
	return args
}

var errNoExecutable = errors.New("cannot locate own executable to start the host")
