package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func snapshotsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "snapshots", Short: "Inspect stored run snapshots"}
	cmd.AddCommand(snapshotsListCmd())
	cmd.AddCommand(snapshotsShowCmd())
	return cmd
}

func snapshotsListCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List snapshots, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.close()

			infos, err := s.svc.Snapshots(cmd.Context(), limit)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTIMESTAMP\tNARRATIVES\tIDEAS")
			for _, in := range infos {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", in.ID, in.Timestamp.Format("2006-01-02 15:04:05"), in.NarrativeCount, in.IdeaCount)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum snapshots to list")
	return cmd
}

func snapshotsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print one snapshot as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.close()

			snap, err := s.svc.Snapshot(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), snap)
		},
	}
}
