package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fragmede/ingest/internal/report"
	"github.com/fragmede/ingest/internal/source"
)

type sourceInfo struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Enabled     bool   `json:"enabled"`
}

func newSourcesCmd(rt *runtime) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "sources",
		Short: "List available sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			all := rt.sources()
			enabled, err := source.Enabled(all, rt.cfg.Sources.Enabled)
			if err != nil {
				return err
			}
			on := make(map[string]bool, len(enabled))
			for _, s := range enabled {
				on[s.Name()] = true
			}

			infos := make([]sourceInfo, 0, len(all))
			for _, s := range all {
				info := sourceInfo{Name: s.Name(), Enabled: on[s.Name()]}
				if d, ok := s.(source.Describer); ok {
					info.Description = d.Description()
				}
				infos = append(infos, info)
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				return report.WriteJSON(out, infos)
			}
			for _, info := range infos {
				mark := " "
				if !info.Enabled {
					mark = "-"
				}
				if _, err := fmt.Fprintf(out, "%s %-12s %s\n", mark, info.Name, info.Description); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print JSON")
	return cmd
}
