// Package cli wires the ingest commands together.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/fragmede/ingest/internal/config"
	"github.com/fragmede/ingest/internal/history"
	"github.com/fragmede/ingest/internal/logging"
	"github.com/fragmede/ingest/internal/source"
)

// RegistryFunc builds the available sources.
type RegistryFunc func(cfg *config.Config, log *slog.Logger) []source.Source

// runtime is the state shared by every command once flags are parsed.
type runtime struct {
	// flags
	configPath string
	envFile    string
	logLevel   string
	logFile    string
	noHistory  bool

	registry RegistryFunc

	cfg *config.Config
	log *slog.Logger

	mu      sync.Mutex // guards history and closers; `all` records concurrently
	history *history.DB
	closers []io.Closer
}

// NewRootCmd builds the command tree. A nil registry means source.Registry.
func NewRootCmd(registry RegistryFunc) *cobra.Command {
	if registry == nil {
		registry = source.Registry
	}
	rt := &runtime{registry: registry}

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Fetch the top item of tech news and research sources with their discussions",
		Long: `ingest pulls the current top item from a news or research source and prints
it as a plain-text record: title, body and, where the source has them, the best
comment threads flattened under depth and breadth limits.

Quick Start:
  ingest sources                  # List sources
  ingest fetch hackernews         # Top HN story with its best comments
  ingest all --json               # Every enabled source as JSON
  ingest view devto               # Browse sources interactively`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return rt.setup(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&rt.configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	cmd.PersistentFlags().StringVar(&rt.envFile, "env-file", ".env", "dotenv file with API keys; existing variables win")
	cmd.PersistentFlags().StringVar(&rt.logLevel, "log-level", "", "log level: debug, info, warn, error (default from config)")
	cmd.PersistentFlags().StringVar(&rt.logFile, "log-file", "", "write logs to this file instead of stderr")
	cmd.PersistentFlags().BoolVar(&rt.noHistory, "no-history", false, "do not record this run in the history database")

	cmd.AddCommand(
		newFetchCmd(rt),
		newAllCmd(rt),
		newViewCmd(rt),
		newSourcesCmd(rt),
		newHistoryCmd(rt),
	)
	// Close the log file and history whether or not the command failed;
	// cobra skips post-run hooks on error.
	for _, sub := range cmd.Commands() {
		run := sub.RunE
		sub.RunE = func(cmd *cobra.Command, args []string) error {
			return errors.Join(run(cmd, args), rt.close())
		}
	}
	return cmd
}

// Execute runs the root command until it finishes or the process is
// interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := NewRootCmd(nil).ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}

func (rt *runtime) setup(cmd *cobra.Command) error {
	if err := config.LoadDotEnv(rt.envFile); err != nil {
		return err
	}
	cfg, err := config.Load(rt.configPath)
	if err != nil {
		return err
	}
	rt.cfg = cfg

	level := cfg.LogLevel
	if rt.logLevel != "" {
		level = rt.logLevel
	}
	logPath := cfg.LogPath
	if rt.logFile != "" {
		logPath = rt.logFile
	}
	var w io.Writer = cmd.ErrOrStderr()
	if logPath != "" {
		f, err := logging.OpenFile(logPath)
		if err != nil {
			return err
		}
		rt.closers = append(rt.closers, f)
		w = f
	}
	rt.log, err = logging.New(level, w)
	if err != nil {
		return err
	}
	return nil
}

// openHistory opens the run log unless it is disabled. Failure to open it
// is logged and never fails the command.
func (rt *runtime) openHistory() *history.DB {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.history != nil || rt.noHistory || rt.cfg.HistoryPath == "" {
		return rt.history
	}
	db, err := history.Open(rt.cfg.HistoryPath)
	if err != nil {
		rt.log.Warn("history disabled", slog.String("path", rt.cfg.HistoryPath), slog.Any("error", err))
		rt.noHistory = true
		return nil
	}
	rt.history = db
	rt.closers = append(rt.closers, db)
	return db
}

func (rt *runtime) close() error {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		errs = append(errs, rt.closers[i].Close())
	}
	rt.closers = nil
	rt.history = nil
	return errors.Join(errs...)
}

// sources builds the registry with the effective config.
func (rt *runtime) sources() []source.Source {
	return rt.registry(rt.cfg, rt.log)
}

// fetch runs one source and records the outcome in the history.
func (rt *runtime) fetch(ctx context.Context, src source.Source) (*source.Record, error) {
	start := time.Now()
	rec, err := src.Fetch(ctx)
	rt.record(ctx, src.Name(), rec, err, start, time.Since(start))
	return rec, err
}

func (rt *runtime) record(ctx context.Context, name string, rec *source.Record, err error, start time.Time, took time.Duration) {
	db := rt.openHistory()
	if db == nil {
		return
	}
	run := history.Run{
		Source:    name,
		StartedAt: start,
		Duration:  took,
		Status:    history.StatusOK,
	}
	switch {
	case errors.Is(err, source.ErrNoContent):
		run.Status = history.StatusNoContent
	case errors.Is(err, source.ErrMissingCredential):
		run.Status = history.StatusSkipped
		run.Error = err.Error()
	case err != nil:
		run.Status = history.StatusError
		run.Error = err.Error()
	}
	if rec != nil {
		run.RootID = rec.Stats.RootID
		run.Fetches = rec.Stats.Fetches
		run.Blocks = rec.Stats.Blocks
	}
	// Recording must not be cut short by an interrupted fetch.
	if _, herr := db.Record(context.WithoutCancel(ctx), run); herr != nil {
		rt.log.Warn("recording run", slog.String("source", name), slog.Any("error", herr))
	}
}
