package cli

import (
	"fmt"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/fragmede/ingest/internal/source"
	"github.com/fragmede/ingest/internal/ui"
)

func newViewCmd(rt *runtime) *cobra.Command {
	var tf threadFlags

	cmd := &cobra.Command{
		Use:   "view [source]",
		Short: "Browse sources in a full-screen pager",
		Long: `Open an interactive pager with one tab per enabled source. Sources are
fetched when their tab is first shown.

Keys: tab/shift+tab switch source, r refresh, o open in browser,
w toggle wrapping, q quit.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := tf.apply(cmd, rt); err != nil {
				return err
			}
			sources, err := source.Enabled(rt.sources(), rt.cfg.Sources.Enabled)
			if err != nil {
				return err
			}
			start := 0
			if len(args) == 1 {
				start = -1
				for i, name := range source.Names(sources) {
					if name == args[0] {
						start = i
					}
				}
				if start < 0 {
					return fmt.Errorf("unknown source %q (see 'ingest sources')", args[0])
				}
			}

			ctx := cmd.Context()
			onResult := func(name string, rec *source.Record, err error, took time.Duration) {
				rt.log.Debug("view fetch", slog.String("source", name), slog.Duration("took", took))
				rt.record(ctx, name, rec, err, time.Now().Add(-took), took)
			}

			app := ui.NewApp(ctx, sources, start, onResult)
			p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
			_, err = p.Run()
			return err
		},
	}
	tf.register(cmd)
	return cmd
}
