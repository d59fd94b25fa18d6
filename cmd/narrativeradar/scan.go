package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	dom "narrativeradar/internal/services/narratives/domain"

	"github.com/spf13/cobra"
)

func scanCmd() *cobra.Command {
	var (
		asJSON bool
		cached bool
	)
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Collect signals, score narratives and store a snapshot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.close()

			res, err := s.svc.Run(cmd.Context(), !cached)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			return printResult(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full result as JSON")
	cmd.Flags().BoolVar(&cached, "cached", false, "reuse a cached result when one is fresh")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printResult renders the ranked narratives and the idea list
func printResult(w io.Writer, r dom.Result) error {
	fmt.Fprintf(w, "run %s at %s (%s)\n\n", r.RunID, r.GeneratedAt.Format("2006-01-02 15:04:05 MST"), r.Period)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tNARRATIVE\tSCORE\tSIGNALS\tSOURCES\tTREND")
	for i, n := range r.Narratives {
		trend := n.Delta
		if trend != "" {
			trend = fmt.Sprintf("%s (%+.1f)", trend, n.ScoreChange)
		}
		name := n.Name
		if n.Discovered {
			name += " *"
		}
		fmt.Fprintf(tw, "%d\t%s\t%.1f\t%d\t%d\t%s\n", i+1, name, n.Score, n.SignalCount, n.SourceDiversity, trend)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(r.Ideas) == 0 {
		return nil
	}
	fmt.Fprintln(w, "\nideas:")
	for i, it := range r.Ideas {
		fmt.Fprintf(w, "%d. %s [%s, %.1f]\n   %s\n", i+1, it.Title, it.TiedNarrative, it.NarrativeScore, it.Description)
	}
	return nil
}
