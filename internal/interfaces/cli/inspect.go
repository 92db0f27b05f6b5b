package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fantalab/listone/internal/domain/player"
	"github.com/fantalab/listone/internal/usecase"
)

func newInspectCommand(root *rootOptions) *cobra.Command {
	var (
		sourceFlag string
		roleFlag   string
		teamFlag   string
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Browse one source's cached players",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := root.buildApp()
			if err != nil {
				return err
			}

			src := player.Source(sourceFlag)
			if src != player.SourceFpedia && src != player.SourceFstats {
				return fmt.Errorf("unknown source %q (use fpedia or fstats)", sourceFlag)
			}

			records, _, ok, err := a.Cache.Load(src)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w for %s: run scrape first", usecase.ErrNoCachedData, src)
			}

			filter := usecase.InspectFilter{Source: src, Team: teamFlag, Limit: limit}
			if roleFlag != "" {
				role, valid := player.NormalizeRole(roleFlag)
				if !valid {
					return fmt.Errorf("unknown role %q", roleFlag)
				}
				filter.Role = role
			}

			diags := usecase.NewDiagnostics()
			players := a.Reconcile.Reconcile(map[player.Source][]player.RawRecord{src: records}, diags)
			a.Scoring.Score(players)

			renderPlayers(cmd.OutOrStdout(), a.Export.Filter(players, filter))
			return nil
		},
	}

	cmd.Flags().StringVar(&sourceFlag, "source", "", "source to inspect: fpedia or fstats")
	cmd.Flags().StringVar(&roleFlag, "role", "", "filter by role")
	cmd.Flags().StringVar(&teamFlag, "team", "", "filter by team")
	cmd.Flags().IntVar(&limit, "limit", 0, "cap the number of rows")
	_ = cmd.MarkFlagRequired("source")
	return cmd
}
