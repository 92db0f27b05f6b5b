package usecase

import (
	"math"

	"github.com/fantalab/listone/internal/domain/player"
	"github.com/fantalab/listone/internal/platform/logging"
)

const (
	currentSeasonWeight    = 0.80
	historicalSeasonWeight = 0.20
	indexScale             = 100
	fullSeasonMatches      = 38

	// Average ratings live on a ~0..10 scale while cumulative scores live
	// on ~0..100, so averages are lifted before blending.
	avgScaleLift = 10
)

// ScoringService computes the convenience index: a blend of current and
// historical per-match value, adjusted for editorial quality signals and
// normalized by auction price. Players without both a current and a
// historical signal get no index at all.
type ScoringService struct {
	avgWeight   float64
	totalWeight float64
	priceFloor  float64
	logger      *logging.Logger
}

func NewScoringService(avgWeight, totalWeight, priceFloor float64, logger *logging.Logger) *ScoringService {
	if priceFloor < 1 {
		priceFloor = 1
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ScoringService{
		avgWeight:   avgWeight,
		totalWeight: totalWeight,
		priceFloor:  priceFloor,
		logger:      logger,
	}
}

// Score fills in ConvenienceIndex for every player that has enough signal.
func (s *ScoringService) Score(players []player.UnifiedPlayer) {
	scored := 0
	for i := range players {
		players[i].ConvenienceIndex = s.indexFor(players[i])
		if players[i].ConvenienceIndex != nil {
			scored++
		}
	}
	s.logger.Info("scoring complete", "players", len(players), "scored", scored)
}

func (s *ScoringService) indexFor(p player.UnifiedPlayer) *float64 {
	fp := p.SourceMetrics(player.SourceFpedia)
	fs := p.SourceMetrics(player.SourceFstats)

	current, hasCurrent := s.currentComponent(p.Role, fp, fs)
	historical, hasHistorical := s.historicalComponent(fp)
	if !hasCurrent || !hasHistorical {
		return nil
	}

	blend := currentSeasonWeight*current + historicalSeasonWeight*historical
	blend *= qualityMultiplier(fp)

	price := s.priceFloor
	if p.Price != nil && *p.Price > price {
		price = *p.Price
	}

	index := blend / price * indexScale
	if index < 0 {
		index = 0
	}
	index = math.Round(index*100) / 100
	return &index
}

// currentComponent reads the running season. FSTATS carries the richer
// live numbers and wins over the FPEDIA equivalents when both exist.
func (s *ScoringService) currentComponent(role player.Role, fp, fs player.Metrics) (float64, bool) {
	avg, avgOK := fs.Lookup(player.KeyFantaAvg)
	if !avgOK {
		avg, avgOK = fp.Lookup(player.KeyFantamediaCurrent)
	}
	total, totalOK := fs.Lookup(player.KeyFantaIndex)
	if !totalOK {
		total, totalOK = fp.Lookup(player.KeyRating)
	}
	if !avgOK && !totalOK {
		return 0, false
	}

	factor := 1.0
	if app, ok := fs.Lookup(player.KeyPresences); ok {
		factor = presenceFactor(app)
	} else if app, ok := fp.Lookup(player.KeyAppearancesCurrent); ok {
		factor = presenceFactor(app)
	}

	component := 0.0
	if avgOK {
		component += s.avgWeight * avg * avgScaleLift * factor
	}
	if totalOK {
		component += s.totalWeight * total
	}
	component += roleSupport(role, fs) * avgScaleLift
	return component, true
}

// roleSupport adds the per-appearance detail stats on top of the rating
// signals. Goalkeepers read the keeper columns, outfield players the
// attacking ones. Absent columns contribute nothing.
func roleSupport(role player.Role, fs player.Metrics) float64 {
	presences, ok := fs.Lookup(player.KeyPresences)
	if !ok || presences <= 0 {
		return 0
	}

	if role == player.RoleGoalkeeper {
		cleanSheets, _ := fs.Lookup(player.KeyCleanSheets)
		saved, _ := fs.Lookup(player.KeyPenaltiesSaved)
		conceded, _ := fs.Lookup(player.KeyGoalsConceded)
		return (cleanSheets+saved*3)/presences*0.25 - conceded/presences*0.20
	}

	goals, _ := fs.Lookup(player.KeyGoals)
	assists, _ := fs.Lookup(player.KeyAssists)
	xg, _ := fs.Lookup(player.KeyExpectedGoals)
	xa, _ := fs.Lookup(player.KeyExpectedAssists)
	yellow, _ := fs.Lookup(player.KeyYellowCards)
	red, _ := fs.Lookup(player.KeyRedCards)

	bonus := (goals*3 + assists) / presences
	potential := (xg + xa) / presences
	malus := (yellow*0.5 + red) / presences
	return bonus*0.25 + potential*0.15 - malus*0.20
}

// historicalComponent reads the completed season, which only FPEDIA
// records.
func (s *ScoringService) historicalComponent(fp player.Metrics) (float64, bool) {
	avg, avgOK := fp.Lookup(player.KeyFantamediaPrevious)
	rating, ratingOK := fp.Lookup(player.KeyRating)
	appPrev, appOK := fp.Lookup(player.KeyAppearancesPrevious)
	if !avgOK && !(ratingOK && appOK) {
		return 0, false
	}

	factor := 1.0
	if appOK {
		factor = presenceFactor(appPrev)
	}

	component := 0.0
	if avgOK {
		component += s.avgWeight * avg * avgScaleLift * factor
	}
	if ratingOK && appOK {
		component += s.totalWeight * rating * factor
	}
	return component, true
}

// qualityMultiplier folds the editorial skill tags and status flags into
// a multiplier around 1. The adjustments mirror the site's own reading of
// a player: penalty takers and starters push up, injuries and bench risk
// push down.
func qualityMultiplier(fp player.Metrics) float64 {
	adjust, _ := fp.Lookup(player.KeySkillsBonus)

	if v, ok := fp.Lookup(player.KeyNewSigning); ok && v > 0 {
		adjust -= 2
	}
	if v, ok := fp.Lookup(player.KeyRecommended); ok && v > 0 {
		adjust++
	}
	if v, ok := fp.Lookup(player.KeyTrendUp); ok && v > 0 {
		adjust += 2
	}
	if v, ok := fp.Lookup(player.KeyInjured); ok && v > 0 {
		adjust--
	}
	if v, ok := fp.Lookup(player.KeyInjuryResilience); ok {
		switch {
		case v > 60:
			adjust += 4
		case v == 60:
			adjust += 2
		}
	}
	if v, ok := fp.Lookup(player.KeyGoodInvestment); ok && v == 60 {
		adjust += 3
	}

	m := 1 + adjust/100
	if m < 0.1 {
		m = 0.1
	}
	return m
}

func presenceFactor(appearances float64) float64 {
	if appearances <= 0 {
		return 0
	}
	f := appearances / fullSeasonMatches
	if f > 1 {
		return 1
	}
	return f
}
