package usecase

import (
	"context"

	"github.com/fantalab/listone/internal/domain/player"
	"github.com/fantalab/listone/internal/platform/logging"
)

// PipelineService chains the full run: fetch the sources, reconcile
// identities, score, and build the shortlist. A partial source failure
// degrades the run instead of failing it.
type PipelineService struct {
	fetch     *FetchService
	reconcile *ReconcileService
	scoring   *ScoringService
	export    *ExportService
	logger    *logging.Logger
}

func NewPipelineService(fetch *FetchService, reconcile *ReconcileService, scoring *ScoringService, export *ExportService, logger *logging.Logger) *PipelineService {
	if logger == nil {
		logger = logging.Default()
	}
	return &PipelineService{
		fetch:     fetch,
		reconcile: reconcile,
		scoring:   scoring,
		export:    export,
		logger:    logger,
	}
}

type RunOptions struct {
	Sources    []player.Source
	ForceFetch bool
}

type Result struct {
	Players       []player.UnifiedPlayer
	Shortlist     []ExportRecord
	Report        Report
	Diagnostics   []Diagnostic
	FailedSources []player.Source
	Degraded      bool
}

func (s *PipelineService) Run(ctx context.Context, opts RunOptions) (Result, error) {
	sources := opts.Sources
	if len(sources) == 0 {
		sources = player.AllSources
	}

	diags := NewDiagnostics()
	outcome, err := s.fetch.Fetch(ctx, sources, opts.ForceFetch, diags)
	if err != nil {
		return Result{Diagnostics: diags.Items(), FailedSources: outcome.Failed}, err
	}

	players := s.reconcile.Reconcile(outcome.Records, diags)
	s.scoring.Score(players)
	shortlist := s.export.Rank(players)
	report := BuildReport(players)

	s.logger.Info("pipeline complete",
		"players", report.Total,
		"shortlist", len(shortlist),
		"exact", report.Exact,
		"fuzzy", report.Fuzzy,
		"single_source", report.SingleSource,
		"degraded", len(outcome.Failed) > 0)

	return Result{
		Players:       players,
		Shortlist:     shortlist,
		Report:        report,
		Diagnostics:   diags.Items(),
		FailedSources: outcome.Failed,
		Degraded:      len(outcome.Failed) > 0,
	}, nil
}
