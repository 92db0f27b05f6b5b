package player

import "fmt"

// Source identifies a data provider.
type Source string

const (
	SourceFpedia Source = "fpedia"
	SourceFstats Source = "fstats"
)

// AllSources lists the providers in fetch-priority order.
var AllSources = []Source{SourceFpedia, SourceFstats}

func validSource(s Source) bool {
	for _, src := range AllSources {
		if s == src {
			return true
		}
	}
	return false
}

// Role is the fixed role vocabulary shared by both providers after
// normalization.
type Role string

const (
	RoleGoalkeeper Role = "Goalkeeper"
	RoleDefender   Role = "Defender"
	RoleMidfielder Role = "Midfielder"
	RoleForward    Role = "Forward"
)

var AllRoles = []Role{RoleGoalkeeper, RoleDefender, RoleMidfielder, RoleForward}

func validRole(r Role) bool {
	for _, role := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

// MatchConfidence records how reconciliation decided two records describe
// the same player.
type MatchConfidence string

const (
	ConfidenceExact        MatchConfidence = "exact"
	ConfidenceFuzzy        MatchConfidence = "fuzzy"
	ConfidenceSingleSource MatchConfidence = "single_source"
)

// Metrics is an open mapping of named season statistics. The key vocabulary
// differs per source; see keys.go.
type Metrics map[string]float64

// Lookup returns the metric value and whether the key is present.
func (m Metrics) Lookup(key string) (float64, bool) {
	if m == nil {
		return 0, false
	}
	v, ok := m[key]
	return v, ok
}

// RawRecord is one player row as fetched from a provider, before
// reconciliation. Seq preserves ingestion order inside a source so that
// duplicate merging and fuzzy tie-breaks stay deterministic.
type RawRecord struct {
	Source  Source   `json:"source"`
	Name    string   `json:"name"`
	RoleRaw string   `json:"role_raw"`
	TeamRaw string   `json:"team_raw"`
	Price   *float64 `json:"price,omitempty"`
	Metrics Metrics  `json:"metrics"`
	Seq     int      `json:"seq"`
}

func (r RawRecord) Validate() error {
	if !validSource(r.Source) {
		return fmt.Errorf("invalid record source: %s", r.Source)
	}
	if r.Name == "" {
		return fmt.Errorf("record name is required")
	}
	if r.Price != nil && *r.Price < 0 {
		return fmt.Errorf("record price must not be negative")
	}
	return nil
}

// Identity is the canonical matching key for a real player. It is derived,
// never persisted on its own.
type Identity struct {
	Name string
	Role Role
	Team string
}

// UnifiedPlayer is the merged cross-source entity. ConvenienceIndex is nil
// until the scoring stage runs, and stays nil when required inputs are
// missing.
type UnifiedPlayer struct {
	Identity         Identity
	DisplayName      string
	Team             string
	Role             Role
	Price            *float64
	MetricsBySource  map[Source]Metrics
	ConvenienceIndex *float64
	Confidence       MatchConfidence
}

// SourceMetrics returns the metric map reported by one source, which may be
// nil for single-source players.
func (p UnifiedPlayer) SourceMetrics(src Source) Metrics {
	if p.MetricsBySource == nil {
		return nil
	}
	return p.MetricsBySource[src]
}

// HasSource reports whether the player carries data from the given source.
func (p UnifiedPlayer) HasSource(src Source) bool {
	_, ok := p.MetricsBySource[src]
	return ok
}

func (p UnifiedPlayer) Validate() error {
	if p.DisplayName == "" {
		return fmt.Errorf("player display name is required")
	}
	if !validRole(p.Role) {
		return fmt.Errorf("invalid player role: %s", p.Role)
	}
	switch p.Confidence {
	case ConfidenceSingleSource:
		if len(p.MetricsBySource) != 1 {
			return fmt.Errorf("single-source player must carry exactly one source, got %d", len(p.MetricsBySource))
		}
	case ConfidenceExact, ConfidenceFuzzy:
		if len(p.MetricsBySource) != 2 {
			return fmt.Errorf("%s player must carry both sources, got %d", p.Confidence, len(p.MetricsBySource))
		}
	default:
		return fmt.Errorf("invalid match confidence: %s", p.Confidence)
	}
	if p.ConvenienceIndex != nil && *p.ConvenienceIndex < 0 {
		return fmt.Errorf("convenience index must not be negative")
	}
	return nil
}
