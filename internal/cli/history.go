package cli

import (
	"errors"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/fragmede/ingest/internal/history"
	"github.com/fragmede/ingest/internal/report"
)

func newHistoryCmd(rt *runtime) *cobra.Command {
	var (
		limit   int
		name    string
		prune   time.Duration
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent fetches",
		Long: `Show recent fetches recorded in the history database, newest first.

Examples:
  ingest history
  ingest history --source hackernews --limit 5
  ingest history --prune 720h`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if rt.noHistory {
				return errors.New("history is disabled (--no-history)")
			}
			db := rt.openHistory()
			if db == nil {
				return errors.New("history database unavailable")
			}
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if prune > 0 {
				n, err := db.Prune(ctx, time.Now().Add(-prune))
				if err != nil {
					return err
				}
				rt.log.Info("pruned history", "runs", n)
			}

			runs, err := db.Recent(ctx, name, limit)
			if err != nil {
				return err
			}
			if jsonOut {
				return report.WriteJSON(out, runs)
			}
			_, err = out.Write([]byte(historyTable(runs) + "\n"))
			return err
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "runs to show")
	cmd.Flags().StringVar(&name, "source", "", "only show this source")
	cmd.Flags().DurationVar(&prune, "prune", 0, "first delete runs older than this")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print JSON")
	return cmd
}

func historyTable(runs []history.Run) string {
	if len(runs) == 0 {
		return "No runs recorded."
	}
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		status := r.Status
		if r.Error != "" {
			status += ": " + r.Error
		}
		rows = append(rows, []string{
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Source,
			r.RootID,
			r.Duration.Round(time.Millisecond).String(),
			strconv.Itoa(r.Fetches),
			strconv.Itoa(r.Blocks),
			status,
		})
	}
	header := lipgloss.NewStyle().Bold(true).Foreground(report.Accent)
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("STARTED", "SOURCE", "ROOT", "TOOK", "FETCHES", "BLOCKS", "STATUS").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		String()
}
