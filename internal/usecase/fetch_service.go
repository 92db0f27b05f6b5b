package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/fantalab/listone/internal/domain/player"
	"github.com/fantalab/listone/internal/infrastructure/rawcache"
	"github.com/fantalab/listone/internal/platform/logging"
)

// SourceAdapter fetches one provider's raw player listing. Warnings carry
// rows or pages the adapter skipped without failing the whole fetch.
type SourceAdapter interface {
	Source() player.Source
	FetchPlayers(ctx context.Context) (records []player.RawRecord, warnings []string, err error)
}

type FetchService struct {
	adapters  map[player.Source]SourceAdapter
	cache     *rawcache.Store
	staleness time.Duration
	logger    *logging.Logger
}

func NewFetchService(cache *rawcache.Store, staleness time.Duration, logger *logging.Logger, adapters ...SourceAdapter) *FetchService {
	bySource := make(map[player.Source]SourceAdapter, len(adapters))
	for _, a := range adapters {
		bySource[a.Source()] = a
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &FetchService{
		adapters:  bySource,
		cache:     cache,
		staleness: staleness,
		logger:    logger,
	}
}

// FetchOutcome holds per-source record sets plus the sources that yielded
// nothing at all.
type FetchOutcome struct {
	Records map[player.Source][]player.RawRecord
	Failed  []player.Source
}

// Fetch resolves every requested source concurrently. A fresh cache
// artifact short-circuits the network unless force is set; a live fetch
// failure falls back to a stale artifact when one exists. Only when every
// source ends up empty does Fetch return an error.
func (s *FetchService) Fetch(ctx context.Context, sources []player.Source, force bool, diags *Diagnostics) (FetchOutcome, error) {
	if len(sources) == 0 {
		return FetchOutcome{}, fmt.Errorf("%w: no sources requested", ErrInvalidInput)
	}
	for _, src := range sources {
		if _, ok := s.adapters[src]; !ok {
			return FetchOutcome{}, fmt.Errorf("%w: %s", ErrUnknownSource, src)
		}
	}

	outcome := FetchOutcome{Records: make(map[player.Source][]player.RawRecord, len(sources))}

	var (
		mu sync.Mutex
		wg conc.WaitGroup
	)
	for _, src := range sources {
		src := src
		wg.Go(func() {
			records, ok := s.fetchOne(ctx, src, force, diags)
			mu.Lock()
			defer mu.Unlock()
			if ok {
				outcome.Records[src] = records
			} else {
				outcome.Failed = append(outcome.Failed, src)
			}
		})
	}
	wg.Wait()

	if len(outcome.Records) == 0 {
		return outcome, fmt.Errorf("%w: %v", ErrAllSourcesFailed, outcome.Failed)
	}
	return outcome, nil
}

func (s *FetchService) fetchOne(ctx context.Context, src player.Source, force bool, diags *Diagnostics) ([]player.RawRecord, bool) {
	if !force && s.cache.Fresh(src, s.staleness) {
		records, fetchedAt, ok, err := s.cache.Load(src)
		if err == nil && ok {
			s.logger.Info("using cached listing", "source", src, "fetched_at", fetchedAt, "records", len(records))
			return records, true
		}
		if err != nil {
			diags.Add("fetch", string(src), SeverityWarning, "cache artifact unreadable, refetching: %v", err)
		}
	}

	adapter := s.adapters[src]
	records, warnings, err := adapter.FetchPlayers(ctx)
	for _, w := range warnings {
		diags.Add("fetch", string(src), SeverityWarning, "%s", w)
	}
	if err == nil {
		if saveErr := s.cache.Save(src, records); saveErr != nil {
			diags.Add("fetch", string(src), SeverityWarning, "failed to cache listing: %v", saveErr)
		}
		return records, true
	}

	diags.Add("fetch", string(src), SeverityError, "fetch failed: %v", err)
	s.logger.Warn("source fetch failed", "source", src, "error", err)

	records, fetchedAt, ok, cacheErr := s.cache.Load(src)
	if cacheErr == nil && ok {
		diags.Add("fetch", string(src), SeverityWarning,
			"falling back to stale cache from %s", fetchedAt.Format(time.RFC3339))
		return records, true
	}
	return nil, false
}
