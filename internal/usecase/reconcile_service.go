package usecase

import (
	"fmt"
	"sort"

	"github.com/fantalab/listone/internal/domain/player"
	"github.com/fantalab/listone/internal/platform/logging"
	"github.com/fantalab/listone/internal/platform/textnorm"
)

const (
	teamAgreementBoost = 0.10

	// Minimum length for a shared name token to join two records on its
	// own, without team agreement.
	partialTokenMinLen = 4
)

// ReconcileService merges the per-source listings into one unified player
// set. Identity runs on normalized names and roles: an exact pass joins
// records sharing the normalized (name, role) key, a fuzzy pass joins the
// leftovers by name similarity and then by shared name tokens, and
// whatever remains is kept single-source.
type ReconcileService struct {
	threshold      float64
	priceAuthority player.Source
	logger         *logging.Logger
}

func NewReconcileService(threshold float64, priceAuthority player.Source, logger *logging.Logger) *ReconcileService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ReconcileService{
		threshold:      threshold,
		priceAuthority: priceAuthority,
		logger:         logger,
	}
}

type normRecord struct {
	raw player.RawRecord
	id  player.Identity
}

func (s *ReconcileService) Reconcile(bySource map[player.Source][]player.RawRecord, diags *Diagnostics) []player.UnifiedPlayer {
	primary := s.prepare(player.SourceFpedia, bySource[player.SourceFpedia], diags)
	secondary := s.prepare(player.SourceFstats, bySource[player.SourceFstats], diags)

	var unified []player.UnifiedPlayer
	matchedSecondary := make([]bool, len(secondary))

	// Exact pass on the normalized (name, role) key.
	secondaryByKey := map[string][]int{}
	for i, rec := range secondary {
		key := rec.id.Name + "|" + string(rec.id.Role)
		secondaryByKey[key] = append(secondaryByKey[key], i)
	}

	var unmatchedPrimary []normRecord
	for _, p := range primary {
		key := p.id.Name + "|" + string(p.id.Role)
		idx := pickExact(p, secondary, secondaryByKey[key], matchedSecondary)
		if idx < 0 {
			unmatchedPrimary = append(unmatchedPrimary, p)
			continue
		}
		matchedSecondary[idx] = true
		sec := secondary[idx]
		unified = append(unified, s.merge(p, &sec, player.ConfidenceExact, diags))
	}

	// Fuzzy pass over the leftovers, same role only. Whole-string
	// similarity first, shared name tokens as the second chance.
	for _, p := range unmatchedPrimary {
		idx := s.pickFuzzy(p, secondary, matchedSecondary)
		if idx < 0 {
			idx = s.pickPartial(p, secondary, matchedSecondary)
		}
		if idx < 0 {
			unified = append(unified, s.merge(p, nil, player.ConfidenceSingleSource, diags))
			continue
		}
		matchedSecondary[idx] = true
		sec := secondary[idx]
		s.logger.Debug("fuzzy match",
			"primary", p.raw.Name, "secondary", sec.raw.Name, "role", p.id.Role)
		unified = append(unified, s.merge(p, &sec, player.ConfidenceFuzzy, diags))
	}

	for i, sec := range secondary {
		if !matchedSecondary[i] {
			unified = append(unified, s.merge(sec, nil, player.ConfidenceSingleSource, diags))
		}
	}

	sortUnified(unified)
	return unified
}

// prepare validates, normalizes, and deduplicates one source's records.
// When a source repeats an identity the latest row wins.
func (s *ReconcileService) prepare(src player.Source, records []player.RawRecord, diags *Diagnostics) []normRecord {
	byIdentity := map[string]normRecord{}
	var order []string

	for _, raw := range records {
		if err := raw.Validate(); err != nil {
			diags.Add("reconcile", string(src), SeverityWarning, "dropped record: %v", err)
			continue
		}
		id, ok := player.NormalizeIdentity(raw)
		if !ok {
			diags.Add("reconcile", string(src), SeverityWarning,
				"dropped %q: unrecognized role %q", raw.Name, raw.RoleRaw)
			continue
		}
		key := id.Name + "|" + string(id.Role)
		if prev, exists := byIdentity[key]; exists {
			diags.Add("reconcile", string(src), SeverityWarning,
				"duplicate entry for %q, keeping the later row", raw.Name)
			if raw.Seq > prev.raw.Seq {
				byIdentity[key] = normRecord{raw: raw, id: id}
			}
			continue
		}
		byIdentity[key] = normRecord{raw: raw, id: id}
		order = append(order, key)
	}

	out := make([]normRecord, 0, len(order))
	for _, key := range order {
		out = append(out, byIdentity[key])
	}
	return out
}

// pickExact chooses among same-key candidates. Only a consistent team
// qualifies for an exact match: equal, or missing on either side. A
// conflicting team drops the pair down to the fuzzy pass.
func pickExact(p normRecord, secondary []normRecord, candidates []int, matched []bool) int {
	for _, idx := range candidates {
		if matched[idx] {
			continue
		}
		secTeam := secondary[idx].id.Team
		if secTeam == p.id.Team || secTeam == "" || p.id.Team == "" {
			return idx
		}
	}
	return -1
}

// pickFuzzy finds the most similar unmatched secondary record with the
// same role. Team agreement adds a fixed boost, scores cap at 1. Equal
// scores break on team agreement, then ingestion order.
func (s *ReconcileService) pickFuzzy(p normRecord, secondary []normRecord, matched []bool) int {
	best := -1
	bestScore := 0.0
	bestTeam := false

	for idx, sec := range secondary {
		if matched[idx] || sec.id.Role != p.id.Role {
			continue
		}
		score := textnorm.Similarity(p.id.Name, sec.id.Name)
		teamMatch := sec.id.Team == p.id.Team
		if teamMatch {
			score += teamAgreementBoost
			if score > 1 {
				score = 1
			}
		}
		if score < s.threshold {
			continue
		}
		better := score > bestScore ||
			(score == bestScore && teamMatch && !bestTeam) ||
			(score == bestScore && teamMatch == bestTeam && best >= 0 && sec.raw.Seq < secondary[best].raw.Seq)
		if best < 0 || better {
			best, bestScore, bestTeam = idx, score, teamMatch
		}
	}
	return best
}

// pickPartial joins leftovers sharing a name token, covering the
// surname-only listing one provider uses against the other's full name.
// Any shared token qualifies when the teams agree; without team agreement
// the token must be at least partialTokenMinLen runes. Candidates with
// team agreement win, then the longest shared token, then ingestion order.
func (s *ReconcileService) pickPartial(p normRecord, secondary []normRecord, matched []bool) int {
	pTokens := textnorm.Tokens(p.id.Name)

	best := -1
	bestLen := 0
	bestTeam := false

	for idx, sec := range secondary {
		if matched[idx] || sec.id.Role != p.id.Role {
			continue
		}
		shared := longestSharedToken(pTokens, textnorm.Tokens(sec.id.Name))
		if shared == 0 {
			continue
		}
		teamMatch := sec.id.Team == p.id.Team
		if !teamMatch && shared < partialTokenMinLen {
			continue
		}
		better := (teamMatch && !bestTeam) ||
			(teamMatch == bestTeam && shared > bestLen) ||
			(teamMatch == bestTeam && shared == bestLen && best >= 0 && sec.raw.Seq < secondary[best].raw.Seq)
		if best < 0 || better {
			best, bestLen, bestTeam = idx, shared, teamMatch
		}
	}
	return best
}

func longestSharedToken(a, b []string) int {
	longest := 0
	for _, ta := range a {
		for _, tb := range b {
			if ta == tb && len(ta) > longest {
				longest = len(ta)
			}
		}
	}
	return longest
}

func (s *ReconcileService) merge(p normRecord, sec *normRecord, confidence player.MatchConfidence, diags *Diagnostics) player.UnifiedPlayer {
	u := player.UnifiedPlayer{
		Identity:    p.id,
		DisplayName: p.raw.Name,
		Team:        player.DisplayTeam(p.id.Team),
		Role:        p.id.Role,
		Confidence:  confidence,
		MetricsBySource: map[player.Source]player.Metrics{
			p.raw.Source: p.raw.Metrics,
		},
	}

	if sec != nil {
		u.MetricsBySource[sec.raw.Source] = sec.raw.Metrics
	}

	u.Price = s.resolvePrice(p, sec, diags)
	return u
}

// resolvePrice follows the configured authority source, falling back to
// whichever side has a quotation. A disagreement between the two sources
// is reported but the authority value stands.
func (s *ReconcileService) resolvePrice(p normRecord, sec *normRecord, diags *Diagnostics) *float64 {
	prices := map[player.Source]*float64{p.raw.Source: p.raw.Price}
	if sec != nil {
		prices[sec.raw.Source] = sec.raw.Price
	}

	authority := prices[s.priceAuthority]
	var other *float64
	for src, price := range prices {
		if src != s.priceAuthority {
			other = price
		}
	}

	if authority != nil && other != nil && *authority != *other {
		diags.Add("reconcile", "", SeverityInfo,
			"price discrepancy for %s: %s=%.1f other=%.1f",
			p.raw.Name, s.priceAuthority, *authority, *other)
	}
	if authority != nil {
		return authority
	}
	return other
}

var roleOrder = map[player.Role]int{
	player.RoleGoalkeeper: 0,
	player.RoleDefender:   1,
	player.RoleMidfielder: 2,
	player.RoleForward:    3,
}

func sortUnified(players []player.UnifiedPlayer) {
	sort.SliceStable(players, func(i, j int) bool {
		a, b := players[i], players[j]
		if roleOrder[a.Role] != roleOrder[b.Role] {
			return roleOrder[a.Role] < roleOrder[b.Role]
		}
		if a.Identity.Name != b.Identity.Name {
			return a.Identity.Name < b.Identity.Name
		}
		return a.Identity.Team < b.Identity.Team
	})
}

// Report summarizes a reconciliation run for the audit artifact.
type Report struct {
	Total        int `json:"total"`
	Exact        int `json:"exact"`
	Fuzzy        int `json:"fuzzy"`
	SingleSource int `json:"single_source"`
}

func BuildReport(players []player.UnifiedPlayer) Report {
	r := Report{Total: len(players)}
	for _, p := range players {
		switch p.Confidence {
		case player.ConfidenceExact:
			r.Exact++
		case player.ConfidenceFuzzy:
			r.Fuzzy++
		case player.ConfidenceSingleSource:
			r.SingleSource++
		}
	}
	return r
}

func (r Report) String() string {
	return fmt.Sprintf("total=%d exact=%d fuzzy=%d single_source=%d",
		r.Total, r.Exact, r.Fuzzy, r.SingleSource)
}
