package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fantalab/listone/internal/domain/player"
	"github.com/fantalab/listone/internal/infrastructure/rawcache"
)

func newStatusCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show cache freshness and configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := root.buildApp()
			if err != nil {
				return err
			}

			stats := make([]rawcache.Stat, 0, len(player.AllSources))
			for _, src := range player.AllSources {
				stats = append(stats, a.Cache.Describe(src))
			}
			renderCacheStats(cmd.OutOrStdout(), stats)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "\nData dir:        %s\n", a.Config.DataDir)
			fmt.Fprintf(out, "Output dir:      %s\n", a.Config.OutputDir)
			fmt.Fprintf(out, "Staleness:       %s\n", a.Config.Fetch.Staleness)
			fmt.Fprintf(out, "Price authority: %s\n", a.Config.Analysis.PriceAuthority)
			fmt.Fprintf(out, "Shortlist size:  %d\n", a.Config.Analysis.TopN)

			creds := "configured"
			if err := a.Config.RequireFstatsCredentials(); err != nil {
				creds = "missing"
			}
			fmt.Fprintf(out, "FSTATS login:    %s\n", creds)
			return nil
		},
	}
}
