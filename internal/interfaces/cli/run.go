package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/fantalab/listone/internal/app"
	"github.com/fantalab/listone/internal/domain/player"
	"github.com/fantalab/listone/internal/usecase"
)

func newRunCommand(root *rootOptions) *cobra.Command {
	var (
		sourceFlag  string
		forceScrape bool
		top         int
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch, reconcile, score, and export in one pass",
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

			result, err := a.Pipeline.Run(cmd.Context(), usecase.RunOptions{
				Sources:    sources,
				ForceFetch: forceScrape,
			})
			if err != nil {
				return err
			}

			shortlist := result.Shortlist
			if cmd.Flags().Changed("top") {
				shortlist = usecase.NewExportService(top).Rank(result.Players)
			}

			if err := writeExports(a, result, shortlist); err != nil {
				return err
			}

			renderPlayers(cmd.OutOrStdout(), shortlist)
			renderSummary(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().StringVar(&sourceFlag, "source", "all", "sources to use: fpedia, fstats, or all")
	cmd.Flags().BoolVar(&forceScrape, "force-scrape", false, "refetch even when the cache is fresh")
	cmd.Flags().IntVar(&top, "top", 0, "override the shortlist size")
	return cmd
}

// writeExports produces the run artifacts: ranked shortlist, the full
// unified set, one projection per contributing source, and the
// reconciliation report.
func writeExports(a *app.App, result usecase.Result, shortlist []usecase.ExportRecord) error {
	now := time.Now()

	if _, err := a.Exporter.WriteJSON("shortlist", a.Export.BuildEnvelope("unified", shortlist, now)); err != nil {
		return err
	}
	if _, err := a.Exporter.WriteExcel("shortlist", a.Export.BuildEnvelope("unified", shortlist, now)); err != nil {
		return err
	}

	full := a.Export.Project(result.Players)
	if _, err := a.Exporter.WriteJSON("players_full", a.Export.BuildEnvelope("unified", full, now)); err != nil {
		return err
	}

	for _, src := range player.AllSources {
		records := a.Export.Filter(result.Players, usecase.InspectFilter{Source: src})
		if len(records) == 0 {
			continue
		}
		env := a.Export.BuildEnvelope(string(src), records, now)
		if _, err := a.Exporter.WriteJSON("players_"+string(src), env); err != nil {
			return err
		}
		if _, err := a.Exporter.WriteExcel("players_"+string(src), env); err != nil {
			return err
		}
	}

	_, err := a.Exporter.WriteReport("reconcile_report", result.Report, result.Diagnostics)
	return err
}
