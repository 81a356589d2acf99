package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fragmede/ingest/internal/report"
	"github.com/fragmede/ingest/internal/source"
)

func newFetchCmd(rt *runtime) *cobra.Command {
	var (
		tf threadFlags
		of outputFlags
	)

	cmd := &cobra.Command{
		Use:   "fetch <source>",
		Short: "Fetch the top item of one source",
		Long: `Fetch the current top item of a source and print it.

A source with nothing to show prints "(No content available)" and exits 0.

Examples:
  ingest fetch hackernews
  ingest fetch hackernews --max-depth 0 --max-comments 5
  ingest fetch arxiv --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := tf.apply(cmd, rt); err != nil {
				return err
			}
			src, ok := source.Lookup(rt.sources(), args[0])
			if !ok {
				return fmt.Errorf("unknown source %q (see 'ingest sources')", args[0])
			}

			rec, err := rt.fetch(cmd.Context(), src)
			out := cmd.OutOrStdout()
			if errors.Is(err, source.ErrNoContent) {
				if of.json {
					return report.WriteJSON(out, result{Source: src.Name(), Error: source.NoContent})
				}
				_, werr := fmt.Fprintln(out, source.NoContent)
				return werr
			}
			if err != nil {
				return err
			}
			if of.json {
				return report.WriteJSON(out, rec)
			}
			return report.NewPrinter(out, of.width).Print(rec)
		},
	}
	tf.register(cmd)
	of.register(cmd)
	return cmd
}
