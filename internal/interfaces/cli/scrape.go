package cli

import (
	"github.com/spf13/cobra"

	"github.com/fantalab/listone/internal/usecase"
)

func newScrapeCommand(root *rootOptions) *cobra.Command {
	var (
		sourceFlag string
		force      bool
	)

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Fetch raw source data into the local cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := root.buildApp()
			if err != nil {
				return err
			}

			sources, err := parseSources(sourceFlag)
			if err != nil {
				return err
			}
			sources, err = checkCredentials(a, sources, cmd.Flags().Changed("source"))
			if err != nil {
				return err
			}

			diags := usecase.NewDiagnostics()
			outcome, err := a.Fetch.Fetch(cmd.Context(), sources, force, diags)
			if err != nil {
				return err
			}

			for src, records := range outcome.Records {
				a.Logger.Info("source cached", "source", src, "records", len(records))
			}
			for _, src := range outcome.Failed {
				a.Logger.Error("source failed", "source", src)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&sourceFlag, "source", "all", "sources to fetch: fpedia, fstats, or all")
	cmd.Flags().BoolVar(&force, "force", false, "refetch even when the cache is fresh")
	return cmd
}
