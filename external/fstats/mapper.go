package fstats

import (
	"fmt"
	"strings"

	"github.com/fantalab/listone/internal/domain/player"
)

// mapRow turns one API row into a RawRecord. Rows without a usable name,
// role, or team are rejected so the reconciler never sees them.
func mapRow(row map[string]any) (player.RawRecord, error) {
	name := strings.TrimSpace(strings.TrimSpace(getString(row, "firstname")) + " " + strings.TrimSpace(getString(row, "lastname")))
	if name == "" {
		name = strings.TrimSpace(getString(row, "name"))
	}
	if name == "" {
		return player.RawRecord{}, fmt.Errorf("row missing player name")
	}

	role := strings.TrimSpace(getString(row, "fantacalcioPosition"))
	if role == "" {
		role = strings.TrimSpace(getString(row, "position"))
	}
	if role == "" {
		return player.RawRecord{}, fmt.Errorf("row for %q missing role", name)
	}

	team := teamName(row["team"])
	if team == "" {
		return player.RawRecord{}, fmt.Errorf("row for %q missing team", name)
	}

	rec := player.RawRecord{
		Source:  player.SourceFstats,
		Name:    name,
		RoleRaw: role,
		TeamRaw: team,
		Metrics: player.Metrics{},
	}

	if price, ok := getFloat(row, "initialQuotation"); ok {
		rec.Price = &price
	}

	copyFloat(row, rec.Metrics, "fantacalcioRanking", player.KeyFantaAvg)
	copyFloat(row, rec.Metrics, "fantacalcioFantaindex", player.KeyFantaIndex)
	copyFloat(row, rec.Metrics, "pagella", player.KeyAvg)
	copyFloat(row, rec.Metrics, "presences", player.KeyPresences)
	copyFloat(row, rec.Metrics, "goals", player.KeyGoals)
	copyFloat(row, rec.Metrics, "assists", player.KeyAssists)
	copyFloat(row, rec.Metrics, "yellowCards", player.KeyYellowCards)
	copyFloat(row, rec.Metrics, "redCards", player.KeyRedCards)
	copyFloat(row, rec.Metrics, "xgFromOpenPlays", player.KeyExpectedGoals)
	copyFloat(row, rec.Metrics, "xA", player.KeyExpectedAssists)
	copyFloat(row, rec.Metrics, "gkCleanSheets", player.KeyCleanSheets)
	copyFloat(row, rec.Metrics, "gkConcededGoals", player.KeyGoalsConceded)
	copyFloat(row, rec.Metrics, "gkPenaltiesSaved", player.KeyPenaltiesSaved)

	return rec, nil
}

// teamName accepts both shapes the API has shipped, a plain string and an
// object with a name field.
func teamName(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case map[string]any:
		return strings.TrimSpace(getString(t, "name"))
	}
	return ""
}

func copyFloat(row map[string]any, metrics player.Metrics, field, key string) {
	if v, ok := getFloat(row, field); ok {
		metrics[key] = v
	}
}

func getString(row map[string]any, field string) string {
	if v, ok := row[field].(string); ok {
		return v
	}
	return ""
}

func getFloat(row map[string]any, field string) (float64, bool) {
	switch v := row[field].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, false
		}
		var f float64
		if _, err := fmt.Sscanf(s, "%g", &f); err == nil {
			return f, true
		}
	}
	return 0, false
}
