// Package cli wires the cobra command tree.
package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fantalab/listone/internal/app"
	"github.com/fantalab/listone/internal/config"
	"github.com/fantalab/listone/internal/domain/player"
	"github.com/fantalab/listone/internal/platform/logging"
)

type rootOptions struct {
	configFile string
	verbose    bool
}

func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "listone",
		Short:         "Serie A fantasy auction shortlist builder",
		Long:          "listone merges player data from FPEDIA and FSTATS, scores every player's auction value, and exports ranked shortlists.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configFile, "config-file", "c", "config.yaml", "path to the configuration file")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(
		newRunCommand(opts),
		newScrapeCommand(opts),
		newAnalyzeCommand(opts),
		newInspectCommand(opts),
		newStatusCommand(opts),
	)
	return cmd
}

// buildApp loads configuration and wires the services. Called lazily by
// each subcommand so --help never needs a config file.
func (o *rootOptions) buildApp() (*app.App, error) {
	level := logging.LevelInfo
	if o.verbose {
		level = logging.LevelDebug
	}
	logger := logging.NewConsole(level)
	logging.SetDefault(logger)

	cfg, err := config.Load(o.configFile)
	if err != nil {
		return nil, err
	}
	return app.New(cfg, logger), nil
}

// parseSources resolves the --source flag. "all" means every known
// source.
func parseSources(raw string) ([]player.Source, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" || raw == "all" {
		return player.AllSources, nil
	}

	var sources []player.Source
	for _, part := range strings.Split(raw, ",") {
		src := player.Source(strings.TrimSpace(part))
		switch src {
		case player.SourceFpedia, player.SourceFstats:
			sources = append(sources, src)
		default:
			return nil, fmt.Errorf("unknown source %q (use fpedia, fstats, or all)", part)
		}
	}
	return sources, nil
}

// checkCredentials drops FSTATS from an implicit source list when its
// credentials are missing, but fails when the user asked for it by name.
func checkCredentials(a *app.App, sources []player.Source, explicit bool) ([]player.Source, error) {
	if err := a.Config.RequireFstatsCredentials(); err == nil {
		return sources, nil
	}

	var kept []player.Source
	for _, src := range sources {
		if src == player.SourceFstats {
			if explicit {
				return nil, fmt.Errorf("source fstats requested but FSTATS_USERNAME/FSTATS_PASSWORD are not set")
			}
			a.Logger.Warn("skipping fstats, credentials not configured")
			continue
		}
		kept = append(kept, src)
	}
	if len(kept) == 0 {
		return nil, fmt.Errorf("no usable sources: fstats credentials are not set")
	}
	return kept, nil
}
