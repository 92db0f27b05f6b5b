package usecase

import (
	"sort"
	"time"

	"github.com/fantalab/listone/internal/domain/player"
)

// ExportRecord is one row of the flattened output tables. The metric
// columns split by season: fanta average, plain match grade, cumulative
// index, and appearances for the running season, fantamedia and
// appearances for the completed one.
type ExportRecord struct {
	Rank                int      `json:"rank,omitempty"`
	Name                string   `json:"name"`
	Team                string   `json:"team"`
	Role                string   `json:"role"`
	Price               *float64 `json:"price"`
	FantaAvg            *float64 `json:"fanta_avg"`
	MatchAvg            *float64 `json:"match_avg"`
	Rating              *float64 `json:"rating"`
	Presences           *float64 `json:"presences"`
	FantamediaPrevious  *float64 `json:"fantamedia_previous"`
	AppearancesPrevious *float64 `json:"appearances_previous"`
	ConvenienceIndex    *float64 `json:"convenience_index"`
	Confidence          string   `json:"confidence"`
	Sources             []string `json:"sources"`
}

// Envelope wraps an export with its provenance metadata.
type Envelope struct {
	Source       string         `json:"source"`
	TotalPlayers int            `json:"total_players"`
	GeneratedAt  time.Time      `json:"generated_at"`
	Columns      []string       `json:"columns"`
	Players      []ExportRecord `json:"players"`
}

// ExportColumns is the column order shared by every writer.
var ExportColumns = []string{
	"rank", "name", "team", "role", "price",
	"fanta_avg", "match_avg", "rating", "presences",
	"fantamedia_previous", "appearances_previous",
	"convenience_index", "confidence", "sources",
}

type ExportService struct {
	topN int
}

func NewExportService(topN int) *ExportService {
	return &ExportService{topN: topN}
}

// Rank builds the shortlist: players without an index are dropped, the
// rest sort by index, then price, then name, and the list truncates to
// the configured size.
func (s *ExportService) Rank(players []player.UnifiedPlayer) []ExportRecord {
	var records []ExportRecord
	for _, p := range players {
		if p.ConvenienceIndex == nil {
			continue
		}
		records = append(records, toRecord(p))
	}

	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if *a.ConvenienceIndex != *b.ConvenienceIndex {
			return *a.ConvenienceIndex > *b.ConvenienceIndex
		}
		ap, bp := priceOrZero(a.Price), priceOrZero(b.Price)
		if ap != bp {
			return ap > bp
		}
		return a.Name < b.Name
	})

	if s.topN > 0 && len(records) > s.topN {
		records = records[:s.topN]
	}
	for i := range records {
		records[i].Rank = i + 1
	}
	return records
}

// Project flattens every player, scored or not, keeping the reconciler's
// ordering. Used by the full and per-source exports and by inspect.
func (s *ExportService) Project(players []player.UnifiedPlayer) []ExportRecord {
	records := make([]ExportRecord, 0, len(players))
	for _, p := range players {
		records = append(records, toRecord(p))
	}
	return records
}

// InspectFilter narrows the flattened output for interactive inspection.
type InspectFilter struct {
	Source player.Source
	Role   player.Role
	Team   string
	Limit  int
}

// Filter applies an inspect filter on top of Project's ordering.
func (s *ExportService) Filter(players []player.UnifiedPlayer, f InspectFilter) []ExportRecord {
	var records []ExportRecord
	for _, p := range players {
		if f.Source != "" && !p.HasSource(f.Source) {
			continue
		}
		if f.Role != "" && p.Role != f.Role {
			continue
		}
		if f.Team != "" && p.Identity.Team != player.NormalizeTeam(f.Team) {
			continue
		}
		records = append(records, toRecord(p))
		if f.Limit > 0 && len(records) == f.Limit {
			break
		}
	}
	return records
}

func (s *ExportService) BuildEnvelope(source string, records []ExportRecord, now time.Time) Envelope {
	return Envelope{
		Source:       source,
		TotalPlayers: len(records),
		GeneratedAt:  now.UTC(),
		Columns:      ExportColumns,
		Players:      records,
	}
}

func toRecord(p player.UnifiedPlayer) ExportRecord {
	sources := make([]string, 0, len(p.MetricsBySource))
	for _, src := range player.AllSources {
		if p.HasSource(src) {
			sources = append(sources, string(src))
		}
	}

	fp := p.SourceMetrics(player.SourceFpedia)
	fs := p.SourceMetrics(player.SourceFstats)

	fantaAvg := metricPtr(fs, player.KeyFantaAvg)
	if fantaAvg == nil {
		fantaAvg = metricPtr(fp, player.KeyFantamediaCurrent)
	}
	presences := metricPtr(fs, player.KeyPresences)
	if presences == nil {
		presences = metricPtr(fp, player.KeyAppearancesCurrent)
	}

	return ExportRecord{
		Name:                p.DisplayName,
		Team:                p.Team,
		Role:                string(p.Role),
		Price:               p.Price,
		FantaAvg:            fantaAvg,
		MatchAvg:            metricPtr(fs, player.KeyAvg),
		Rating:              metricPtr(fp, player.KeyRating),
		Presences:           presences,
		FantamediaPrevious:  metricPtr(fp, player.KeyFantamediaPrevious),
		AppearancesPrevious: metricPtr(fp, player.KeyAppearancesPrevious),
		ConvenienceIndex:    p.ConvenienceIndex,
		Confidence:          string(p.Confidence),
		Sources:             sources,
	}
}

func metricPtr(m player.Metrics, key string) *float64 {
	if v, ok := m.Lookup(key); ok {
		return &v
	}
	return nil
}

func priceOrZero(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
