package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fantalab/listone/internal/domain/player"
	"github.com/fantalab/listone/internal/infrastructure/export"
	"github.com/fantalab/listone/internal/usecase"
)

func newAnalyzeCommand(root *rootOptions) *cobra.Command {
	var (
		sourceFlag string
		outputDir  string
		top        int
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Reconcile and score the cached data without refetching",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := root.buildApp()
			if err != nil {
				return err
			}

			sources, err := parseSources(sourceFlag)
			if err != nil {
				return err
			}

			bySource := map[player.Source][]player.RawRecord{}
			for _, src := range sources {
				records, _, ok, err := a.Cache.Load(src)
				if err != nil {
					return err
				}
				if !ok {
					a.Logger.Warn("no cache artifact", "source", src)
					continue
				}
				bySource[src] = records
			}
			if len(bySource) == 0 {
				return fmt.Errorf("%w: run scrape first", usecase.ErrNoCachedData)
			}

			diags := usecase.NewDiagnostics()
			players := a.Reconcile.Reconcile(bySource, diags)
			a.Scoring.Score(players)

			exportSvc := a.Export
			if cmd.Flags().Changed("top") {
				exportSvc = usecase.NewExportService(top)
			}
			shortlist := exportSvc.Rank(players)

			result := usecase.Result{
				Players:     players,
				Shortlist:   shortlist,
				Report:      usecase.BuildReport(players),
				Diagnostics: diags.Items(),
			}

			if cmd.Flags().Changed("output") {
				a.Exporter = export.NewExporter(outputDir, a.Logger)
			}
			if err := writeExports(a, result, shortlist); err != nil {
				return err
			}

			renderPlayers(cmd.OutOrStdout(), shortlist)
			renderSummary(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().StringVar(&sourceFlag, "source", "all", "sources to analyze: fpedia, fstats, or all")
	cmd.Flags().StringVar(&outputDir, "output", "", "override the export directory")
	cmd.Flags().IntVar(&top, "top", 0, "override the shortlist size")
	return cmd
}
