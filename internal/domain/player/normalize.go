package player

import (
	"strings"

	"github.com/fantalab/listone/internal/platform/textnorm"
)

// roleVocabulary maps folded provider role labels onto the fixed role set.
// FPEDIA uses Italian role names (singular and plural listing forms),
// FSTATS uses short position codes.
var roleVocabulary = map[string]Role{
	"portiere":       RoleGoalkeeper,
	"portieri":       RoleGoalkeeper,
	"por":            RoleGoalkeeper,
	"p":              RoleGoalkeeper,
	"gk":             RoleGoalkeeper,
	"difensore":      RoleDefender,
	"difensori":      RoleDefender,
	"dif":            RoleDefender,
	"d":              RoleDefender,
	"def":            RoleDefender,
	"centrocampista": RoleMidfielder,
	"centrocampisti": RoleMidfielder,
	"cen":            RoleMidfielder,
	"c":              RoleMidfielder,
	"mid":            RoleMidfielder,
	"trequartista":   RoleMidfielder,
	"trequartisti":   RoleMidfielder,
	"t":              RoleMidfielder,
	"attaccante":     RoleForward,
	"attaccanti":     RoleForward,
	"att":            RoleForward,
	"a":              RoleForward,
	"fwd":            RoleForward,
}

// teamAliases collapses the spellings the two providers use for the same
// club onto one canonical label. Keys and values are folded.
var teamAliases = map[string]string{
	"internazionale":    "inter",
	"fc internazionale": "inter",
	"inter milano":      "inter",
	"ac milan":          "milan",
	"ssc napoli":        "napoli",
	"as roma":           "roma",
	"ss lazio":          "lazio",
	"acf fiorentina":    "fiorentina",
	"hellas verona":     "verona",
	"us lecce":          "lecce",
	"ac monza":          "monza",
	"us sassuolo":       "sassuolo",
	"torino fc":         "torino",
	"genoa cfc":         "genoa",
	"bologna fc":        "bologna",
	"cagliari calcio":   "cagliari",
	"udinese calcio":    "udinese",
	"parma calcio":      "parma",
	"us cremonese":      "cremonese",
	"juventus fc":       "juventus",
	"atalanta bc":       "atalanta",
}

// NormalizeRole maps a raw provider role label onto the fixed vocabulary.
func NormalizeRole(raw string) (Role, bool) {
	role, ok := roleVocabulary[textnorm.Fold(raw)]
	return role, ok
}

// NormalizeTeam folds a raw team label and resolves known aliases.
func NormalizeTeam(raw string) string {
	folded := textnorm.Fold(raw)
	if canonical, ok := teamAliases[folded]; ok {
		return canonical
	}
	return folded
}

// NormalizeIdentity derives the matching key for a raw record. ok is false
// when the role label is outside the known vocabulary, in which case the
// record cannot participate in reconciliation.
func NormalizeIdentity(r RawRecord) (Identity, bool) {
	role, ok := NormalizeRole(r.RoleRaw)
	if !ok {
		return Identity{}, false
	}

	name := textnorm.Fold(r.Name)
	if name == "" {
		return Identity{}, false
	}

	return Identity{
		Name: name,
		Role: role,
		Team: NormalizeTeam(r.TeamRaw),
	}, true
}

// DisplayTeam renders a canonical team label for output, title-cased from
// the folded form.
func DisplayTeam(normalized string) string {
	if normalized == "" {
		return ""
	}
	words := strings.Fields(normalized)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
