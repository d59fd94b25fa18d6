package main

import (
	"fmt"

	"narrativeradar/internal/core/catalog"

	"github.com/spf13/cobra"
)

func catalogCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "catalog", Short: "Work with the embedded theme catalog"}
	cmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Parse and validate the embedded catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := catalog.Load()
			if err != nil {
				return err
			}
			keywords := 0
			for _, th := range c.Themes {
				keywords += len(th.Keywords)
			}
			fmt.Fprintf(cmd.OutOrStdout(),
				"catalog v%d ok: %d themes, %d keywords, %d stop words, %d probes, %d idea templates\n",
				c.Version, len(c.Themes), keywords, len(c.StopWords), len(c.Probes), len(c.Ideas))
			return nil
		},
	})
	return cmd
}
