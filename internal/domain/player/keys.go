package player

// Metric key vocabulary. Adapters normalize provider fields onto these
// names; the scoring engine looks them up and tolerates absent keys.

// FPEDIA keys. Seasons are resolved against the configured current year:
// "current" is the season ending in that year, "previous" the one before.
const (
	KeyRating              = "rating"               // editorial score, 0-100
	KeyFantamediaCurrent   = "fantamedia_current"   // fantasy average, current season
	KeyFantamediaPrevious  = "fantamedia_previous"  // fantasy average, previous season
	KeyAppearancesCurrent  = "appearances_current"  // league matches played, current season
	KeyAppearancesPrevious = "appearances_previous" // matches played, previous season
	KeySkillsBonus         = "skills_bonus"         // summed skill-tag points
	KeyGoodInvestment      = "good_investment"      // percentage, 0-100
	KeyInjuryResilience    = "injury_resilience"    // percentage, 0-100
	KeyNewSigning          = "new_signing"          // 0 or 1
	KeyInjured             = "injured"              // 0 or 1
	KeyRecommended         = "recommended"          // 0 or 1, editorial pick for next round
	KeyTrendUp             = "trend_up"             // 0 or 1
)

// FSTATS keys. The provider reports a single season of play; the adapter
// tags whether that season is the current or the previous one.
const (
	KeyFantaAvg        = "fanta_avg"   // fantasy average rating
	KeyFantaIndex      = "fanta_index" // provider composite index
	KeyAvg             = "avg"         // plain match-grade average
	KeyPresences       = "presences"
	KeyGoals           = "goals"
	KeyAssists         = "assists"
	KeyYellowCards     = "yellow_cards"
	KeyRedCards        = "red_cards"
	KeyExpectedGoals   = "xg"
	KeyExpectedAssists = "xa"
	KeyCleanSheets     = "gk_clean_sheets"
	KeyGoalsConceded   = "gk_goals_conceded"
	KeyPenaltiesSaved  = "gk_penalties_saved"
)
