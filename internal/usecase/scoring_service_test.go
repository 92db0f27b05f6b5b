package usecase

import (
	"math"
	"testing"

	"github.com/fantalab/listone/internal/domain/player"
	"github.com/fantalab/listone/internal/platform/logging"
)

func newScorer() *ScoringService {
	return NewScoringService(0.6, 0.4, 1, logging.NewNop())
}

func TestScoreBlendsSeasons(t *testing.T) {
	p := player.UnifiedPlayer{
		DisplayName: "Lautaro Martinez",
		Price:       ptr(10),
		Confidence:  player.ConfidenceExact,
		MetricsBySource: map[player.Source]player.Metrics{
			player.SourceFpedia: {
				player.KeyRating:              80,
				player.KeyFantamediaPrevious:  7,
				player.KeyAppearancesPrevious: 38,
			},
			player.SourceFstats: {
				player.KeyFantaAvg:   8,
				player.KeyFantaIndex: 90,
				player.KeyPresences:  38,
			},
		},
	}

	players := []player.UnifiedPlayer{p}
	newScorer().Score(players)

	// current: 0.6*8*10 + 0.4*90 = 84, historical: 0.6*7*10 + 0.4*80 = 74,
	// blend: 0.8*84 + 0.2*74 = 82, over price 10 and the 100 scale = 820.
	got := players[0].ConvenienceIndex
	if got == nil {
		t.Fatal("ConvenienceIndex = nil, want a value")
	}
	if math.Abs(*got-820) > 0.01 {
		t.Errorf("ConvenienceIndex = %v, want 820", *got)
	}
}

func TestScoreCurrentOnlyYieldsNoIndex(t *testing.T) {
	players := []player.UnifiedPlayer{{
		DisplayName: "Rookie",
		Price:       ptr(5),
		Confidence:  player.ConfidenceSingleSource,
		MetricsBySource: map[player.Source]player.Metrics{
			player.SourceFstats: {
				player.KeyFantaAvg:  7.5,
				player.KeyPresences: 10,
			},
		},
	}}

	newScorer().Score(players)
	if players[0].ConvenienceIndex != nil {
		t.Errorf("ConvenienceIndex = %v, want nil without historical signal", *players[0].ConvenienceIndex)
	}
}

func TestScoreHistoricalOnlyYieldsNoIndex(t *testing.T) {
	players := []player.UnifiedPlayer{{
		DisplayName: "Retired Legend",
		Price:       ptr(1),
		Confidence:  player.ConfidenceSingleSource,
		MetricsBySource: map[player.Source]player.Metrics{
			player.SourceFpedia: {
				player.KeyFantamediaPrevious:  8.2,
				player.KeyAppearancesPrevious: 35,
			},
		},
	}}

	newScorer().Score(players)
	if players[0].ConvenienceIndex != nil {
		t.Errorf("ConvenienceIndex = %v, want nil without current signal", *players[0].ConvenienceIndex)
	}
}

func TestScorePriceFloorForCheapPlayers(t *testing.T) {
	base := player.UnifiedPlayer{
		Confidence: player.ConfidenceExact,
		MetricsBySource: map[player.Source]player.Metrics{
			player.SourceFpedia: {
				player.KeyRating:              60,
				player.KeyFantamediaPrevious:  6,
				player.KeyAppearancesPrevious: 38,
			},
			player.SourceFstats: {
				player.KeyFantaAvg:  6,
				player.KeyPresences: 38,
			},
		},
	}

	free := base
	free.DisplayName = "Free Pick"
	free.Price = nil
	one := base
	one.DisplayName = "One Credit"
	one.Price = ptr(1)

	players := []player.UnifiedPlayer{free, one}
	newScorer().Score(players)

	if players[0].ConvenienceIndex == nil || players[1].ConvenienceIndex == nil {
		t.Fatal("both players should score")
	}
	if *players[0].ConvenienceIndex != *players[1].ConvenienceIndex {
		t.Errorf("missing price should score like the floor: %v vs %v",
			*players[0].ConvenienceIndex, *players[1].ConvenienceIndex)
	}
}

func TestScoreNeverGoesNegative(t *testing.T) {
	// A low-average player with few presences and cards produces a negative
	// blend; the index must clamp at zero instead of ranking below it.
	players := []player.UnifiedPlayer{{
		DisplayName: "Card Magnet",
		Role:        player.RoleForward,
		Price:       ptr(1),
		Confidence:  player.ConfidenceExact,
		MetricsBySource: map[player.Source]player.Metrics{
			player.SourceFpedia: {
				player.KeyFantamediaPrevious:  0,
				player.KeyAppearancesPrevious: 2,
			},
			player.SourceFstats: {
				player.KeyFantaAvg:    2,
				player.KeyPresences:   2,
				player.KeyYellowCards: 2,
				player.KeyRedCards:    1,
			},
		},
	}}

	newScorer().Score(players)

	got := players[0].ConvenienceIndex
	if got == nil {
		t.Fatal("ConvenienceIndex = nil, want a clamped value")
	}
	if *got != 0 {
		t.Errorf("ConvenienceIndex = %v, want 0", *got)
	}
	if err := players[0].Validate(); err != nil {
		t.Errorf("scored player failed validation: %v", err)
	}
}

func TestQualityMultiplierAdjustments(t *testing.T) {
	neutral := qualityMultiplier(player.Metrics{})
	if neutral != 1 {
		t.Errorf("neutral multiplier = %v, want 1", neutral)
	}

	boosted := qualityMultiplier(player.Metrics{
		player.KeySkillsBonus:      8,
		player.KeyTrendUp:          1,
		player.KeyInjuryResilience: 75,
	})
	if math.Abs(boosted-1.14) > 1e-9 {
		t.Errorf("boosted multiplier = %v, want 1.14", boosted)
	}

	penalized := qualityMultiplier(player.Metrics{
		player.KeySkillsBonus: -4,
		player.KeyNewSigning:  1,
		player.KeyInjured:     1,
	})
	if math.Abs(penalized-0.93) > 1e-9 {
		t.Errorf("penalized multiplier = %v, want 0.93", penalized)
	}
}

func TestRoleSupportUsesRoleSubset(t *testing.T) {
	metrics := player.Metrics{
		player.KeyPresences:      20,
		player.KeyGoals:          10,
		player.KeyAssists:        4,
		player.KeyYellowCards:    2,
		player.KeyCleanSheets:    8,
		player.KeyGoalsConceded:  15,
		player.KeyPenaltiesSaved: 2,
	}

	// Outfield: (10*3+4)/20*0.25 + 0 - (2*0.5)/20*0.2 = 0.425 - 0.01.
	outfield := roleSupport(player.RoleForward, metrics)
	if math.Abs(outfield-0.415) > 1e-9 {
		t.Errorf("outfield support = %v, want 0.415", outfield)
	}

	// Keeper: (8+2*3)/20*0.25 - 15/20*0.2 = 0.175 - 0.15.
	keeper := roleSupport(player.RoleGoalkeeper, metrics)
	if math.Abs(keeper-0.025) > 1e-9 {
		t.Errorf("keeper support = %v, want 0.025", keeper)
	}

	if got := roleSupport(player.RoleForward, player.Metrics{}); got != 0 {
		t.Errorf("support without presences = %v, want 0", got)
	}
}

func TestPresenceFactorBounds(t *testing.T) {
	if got := presenceFactor(0); got != 0 {
		t.Errorf("presenceFactor(0) = %v", got)
	}
	if got := presenceFactor(19); got != 0.5 {
		t.Errorf("presenceFactor(19) = %v, want 0.5", got)
	}
	if got := presenceFactor(50); got != 1 {
		t.Errorf("presenceFactor(50) = %v, want capped 1", got)
	}
}
