package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/activity-timeline/internal/config"
	"github.com/Tiliavir/activity-timeline/internal/storage"
	"github.com/Tiliavir/activity-timeline/internal/timeline"
)

// version is overridden at build time with -ldflags "-X .../cmd.version=...".
var version = "dev"

// Exit codes.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // bad input, unknown id
	ExitCommandError = 2 // configuration or storage could not be used
)

// exitError carries the process exit code for an error.
type exitError struct {
	code int
	msg  string
	err  error
}

func (e *exitError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

func (e *exitError) Unwrap() error { return e.err }

func failure(format string, a ...any) error {
	return &exitError{code: ExitFailure, msg: fmt.Sprintf(format, a...)}
}

func commandError(msg string, err error) error {
	return &exitError{code: ExitCommandError, msg: msg, err: err}
}

func exitCode(err error) int {
	var e *exitError
	if errors.As(err, &e) {
		return e.code
	}
	return ExitFailure
}

var (
	flagBackend string
	flagDataDir string
	flagDB      string
	flagConfig  string
	flagVerbose bool
)

var (
	// clock drives the default month and entry timestamps.
	clock clockwork.Clock = clockwork.NewRealClock()
	// store is opened before every command and closed by run.
	store *timeline.Store
)

var rootCmd = &cobra.Command{
	Use:   "tl",
	Short: "tl – a personal timeline of things to learn, play, watch and read",
	Long: `tl keeps a month-by-month list of activities and tracks each one from
not_started through in_progress to completed.
Data is stored as a single JSON document in ~/.tl/ (or SQLite, see --backend).`,
	Version:           version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: openTimeline,
}

// Execute is the entry point called from main.
func Execute() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit code. The store
// is always closed so that deferred writes reach the disk.
func run(args []string, stdout, stderr io.Writer) int {
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.Execute()
	if cerr := closeTimeline(); cerr != nil {
		err = errors.Join(err, commandError("saving timeline", cerr))
	}
	if err == nil {
		return ExitSuccess
	}
	fmt.Fprintln(stderr, "Error:", err)
	return exitCode(err)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagBackend, "backend", "", "Storage backend: file, sqlite, memory (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "Directory for timeline data (default ~/.tl)")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "SQLite database file (default <data-dir>/timeline.db)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default ~/.tl/config.json)")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Log debug output to stderr")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(mvCmd)
	rootCmd.AddCommand(nextCmd)
	rootCmd.AddCommand(pruneCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(mcpCmd)
}

func loadConfig() (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if flagConfig != "" {
		cfg, err = config.LoadFrom(flagConfig)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return cfg, err
	}

	if flagBackend != "" {
		cfg.Storage.Backend = flagBackend
	}
	if flagDataDir != "" {
		cfg.Storage.DataDir = flagDataDir
	}
	if flagDB != "" {
		cfg.Storage.DBPath = flagDB
	}
	if flagVerbose {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}

// openTimeline loads configuration, installs the logger and restores the timeline.
func openTimeline(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return commandError("loading config", err)
	}

	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: cfg.LogLevel()}))
	slog.SetDefault(logger)

	adapter, err := storage.Open(storage.Options{
		Backend: cfg.Storage.Backend,
		DataDir: cfg.Storage.DataDir,
		DBPath:  cfg.Storage.DBPath,
	})
	if err != nil {
		return commandError("opening storage", err)
	}

	store = timeline.New(adapter,
		timeline.WithClock(clock),
		timeline.WithLogger(logger),
		timeline.WithKey(cfg.Storage.Key),
	)
	if _, err := store.Load(); err != nil {
		return commandError("reading timeline", err)
	}
	logger.Debug("timeline opened", "backend", cfg.Storage.Backend, "months", store.Count())
	return nil
}

func closeTimeline() error {
	if store == nil {
		return nil
	}
	err := store.Close()
	store = nil
	return err
}
