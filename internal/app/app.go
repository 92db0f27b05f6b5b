// Package app assembles the pipeline from configuration.
package app

import (
	"net/http"

	"github.com/fantalab/listone/external/fpedia"
	"github.com/fantalab/listone/external/fstats"
	"github.com/fantalab/listone/internal/config"
	"github.com/fantalab/listone/internal/infrastructure/export"
	"github.com/fantalab/listone/internal/infrastructure/rawcache"
	"github.com/fantalab/listone/internal/platform/logging"
	"github.com/fantalab/listone/internal/usecase"
)

// App holds the wired services behind every command.
type App struct {
	Config    config.Config
	Logger    *logging.Logger
	Cache     *rawcache.Store
	Pipeline  *usecase.PipelineService
	Fetch     *usecase.FetchService
	Reconcile *usecase.ReconcileService
	Scoring   *usecase.ScoringService
	Export    *usecase.ExportService
	Exporter  *export.Exporter
}

func New(cfg config.Config, logger *logging.Logger) *App {
	if logger == nil {
		logger = logging.Default()
	}

	cache := rawcache.NewStore(cfg.DataDir)
	httpClient := &http.Client{Timeout: cfg.Fetch.RequestTimeout}

	fpediaClient := fpedia.NewClient(fpedia.ClientConfig{
		HTTPClient:   httpClient,
		BaseURL:      cfg.Fpedia.BaseURL,
		RolePages:    cfg.Fpedia.RolePages,
		CurrentYear:  cfg.Analysis.AnnoCorrente,
		MaxWorkers:   cfg.Fetch.MaxWorkers,
		MaxRetries:   cfg.Fetch.RetryAttempts,
		RequestDelay: cfg.Fetch.RequestDelay,
		UserAgent:    cfg.Fetch.UserAgent,
		Logger:       logger,
	})

	fstatsClient := fstats.NewClient(fstats.ClientConfig{
		HTTPClient:   httpClient,
		BaseURL:      cfg.Fstats.BaseURL,
		Username:     cfg.Fstats.Username,
		Password:     cfg.Fstats.Password,
		Season:       cfg.Fstats.Season,
		PageSize:     cfg.Fstats.PageSize,
		Timeout:      cfg.Fetch.RequestTimeout,
		MaxRetries:   cfg.Fetch.RetryAttempts,
		RequestDelay: cfg.Fetch.RequestDelay,
		Logger:       logger,
	})

	fetch := usecase.NewFetchService(cache, cfg.Fetch.Staleness, logger, fpediaClient, fstatsClient)
	reconcile := usecase.NewReconcileService(
		cfg.Analysis.SimilarityThreshold,
		cfg.PriceAuthoritySource(),
		logger,
	)
	scoring := usecase.NewScoringService(
		cfg.Analysis.PesoFantamedia,
		cfg.Analysis.PesoPunteggio,
		cfg.Analysis.PriceFloor,
		logger,
	)
	exportSvc := usecase.NewExportService(cfg.Analysis.TopN)

	return &App{
		Config:    cfg,
		Logger:    logger,
		Cache:     cache,
		Pipeline:  usecase.NewPipelineService(fetch, reconcile, scoring, exportSvc, logger),
		Fetch:     fetch,
		Reconcile: reconcile,
		Scoring:   scoring,
		Export:    exportSvc,
		Exporter:  export.NewExporter(cfg.OutputDir, logger),
	}
}
