package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/fragmede/ingest/internal/report"
	"github.com/fragmede/ingest/internal/source"
)

// result is one source's outcome in `all` output.
type result struct {
	Source  string         `json:"source"`
	Record  *source.Record `json:"record,omitempty"`
	Error   string         `json:"error,omitempty"`
	Skipped bool           `json:"skipped,omitempty"` // no API key

	err  error
	took time.Duration
}

func newAllCmd(rt *runtime) *cobra.Command {
	var (
		tf threadFlags
		of outputFlags
	)

	cmd := &cobra.Command{
		Use:   "all",
		Short: "Fetch every enabled source",
		Long: `Fetch every enabled source concurrently and print the records in
registry order. A failing source is reported in place and does not stop the
others; the command exits non-zero if any source failed. Sources whose API
key is not set are reported as skipped and do not count as failures.

Sources are limited by [sources] enabled in the config file, and parallelism by
the concurrency setting.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := tf.apply(cmd, rt); err != nil {
				return err
			}
			sources, err := source.Enabled(rt.sources(), rt.cfg.Sources.Enabled)
			if err != nil {
				return err
			}

			results := make([]result, len(sources))
			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(rt.cfg.Concurrency)
			for i, src := range sources {
				g.Go(func() error {
					start := time.Now()
					rec, err := rt.fetch(ctx, src)
					results[i] = result{Source: src.Name(), Record: rec, err: err, took: time.Since(start)}
					// Source failures are reported per result, never through the group.
					return nil
				})
			}
			_ = g.Wait()

			failed := 0
			for i := range results {
				r := &results[i]
				switch {
				case errors.Is(r.err, source.ErrNoContent):
					r.Error = source.NoContent
				case errors.Is(r.err, source.ErrMissingCredential):
					r.Error = r.err.Error()
					r.Skipped = true
				case r.err != nil:
					r.Error = r.err.Error()
					failed++
				}
				rt.log.Info("source done",
					slog.String("source", r.Source),
					slog.Duration("took", r.took.Round(time.Millisecond)),
					slog.Bool("ok", r.err == nil),
					slog.Bool("skipped", r.Skipped))
			}

			out := cmd.OutOrStdout()
			if of.json {
				if err := report.WriteJSON(out, results); err != nil {
					return err
				}
			} else {
				p := report.NewPrinter(out, of.width)
				for _, r := range results {
					var perr error
					if r.err != nil {
						perr = p.PrintError(r.Source, r.err)
					} else {
						perr = p.Print(r.Record)
					}
					if perr != nil {
						return perr
					}
				}
			}

			if err := cmd.Context().Err(); err != nil {
				return err
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d sources failed", failed, len(results))
			}
			return nil
		},
	}
	tf.register(cmd)
	of.register(cmd)
	return cmd
}
