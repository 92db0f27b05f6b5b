package fpedia

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/fantalab/listone/internal/domain/player"
)

// skillBonus weights the editorial skill tags shown on a player page.
var skillBonus = map[string]float64{
	"Fuoriclasse":     1,
	"Titolare":        3,
	"Buona Media":     2,
	"Goleador":        4,
	"Assistman":       2,
	"Piazzati":        2,
	"Rigorista":       5,
	"Giovane talento": 2,
	"Panchinaro":      -4,
	"Falloso":         -2,
	"Outsider":        2,
}

// parseRolePage extracts the player page URLs listed on a role index page,
// in document order.
func parseRolePage(body io.Reader) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse role page: %w", err)
	}

	var urls []string
	seen := map[string]bool{}
	doc.Find("article a").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		href = strings.TrimSpace(href)
		if !ok || href == "" || seen[href] {
			return
		}
		seen[href] = true
		urls = append(urls, href)
	})

	return urls, nil
}

// parsePlayerPage extracts one player's attributes. currentYear selects
// which of the season blocks counts as the running season. Pages missing
// the name, role, or team panels are rejected.
func parsePlayerPage(body io.Reader, currentYear int) (player.RawRecord, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return player.RawRecord{}, fmt.Errorf("parse player page: %w", err)
	}

	name := cleanText(doc.Find("h1").First().Text())
	if name == "" {
		return player.RawRecord{}, fmt.Errorf("player page missing name heading")
	}

	role := cleanText(doc.Find(".label12 span.label").First().Text())
	if role == "" {
		return player.RawRecord{}, fmt.Errorf("page for %q missing role label", name)
	}

	team := parseTeam(doc)
	if team == "" {
		return player.RawRecord{}, fmt.Errorf("page for %q missing team panel", name)
	}

	rec := player.RawRecord{
		Source:  player.SourceFpedia,
		Name:    name,
		RoleRaw: role,
		TeamRaw: team,
		Metrics: player.Metrics{},
	}

	rating := cleanText(doc.Find("div.col_one_fourth:nth-of-type(1) span.stickdan").First().Text())
	if v, ok := parseNumber(strings.TrimSuffix(rating, "/100")); ok {
		rec.Metrics[player.KeyRating] = v
	}

	parseSeasonAverages(doc, currentYear, rec.Metrics)
	parsePreviousSeasonStats(doc, rec.Metrics)
	parseExpectedPrice(doc, &rec)
	parseProgressBars(doc, rec.Metrics)
	parseFlags(doc, rec.Metrics)

	if v, ok := parseNumber(cleanText(doc.Find("div.col_one_fourth:nth-of-type(2) span.rouge").First().Text())); ok {
		rec.Metrics[player.KeyAppearancesCurrent] = v
	}

	var bonus float64
	doc.Find("span.stickdanpic").Each(func(_ int, sel *goquery.Selection) {
		bonus += skillBonus[cleanText(sel.Text())]
	})
	rec.Metrics[player.KeySkillsBonus] = bonus

	return rec, nil
}

// parseSeasonAverages walks the per-season fantamedia panels. Each panel
// carries a strong tag ending with the season label ("2024-2025") and a
// span with the average.
func parseSeasonAverages(doc *goquery.Document, currentYear int, metrics player.Metrics) {
	doc.Find("div.col_one_fourth:nth-of-type(n+2) div").Each(func(_ int, sel *goquery.Selection) {
		label := cleanText(sel.Find("strong").First().Text())
		if label == "" {
			return
		}
		parts := strings.Fields(label)
		season := parts[len(parts)-1]
		avg, ok := parseNumber(cleanText(sel.Find("span").First().Text()))
		if !ok {
			return
		}
		switch seasonEndYear(season) {
		case currentYear:
			metrics[player.KeyFantamediaCurrent] = avg
		case currentYear - 1:
			metrics[player.KeyFantamediaPrevious] = avg
		}
	})

	trend := 0.0
	if sel := doc.Find("div.col_one_fourth:nth-of-type(n+2) div i").First(); sel.Length() > 0 {
		if cls, ok := sel.Attr("class"); ok && strings.Contains(cls, "icon-arrow-up") {
			trend = 1
		}
	}
	metrics[player.KeyTrendUp] = trend
}

// parsePreviousSeasonStats reads the strong/span pairs of the completed
// season panel. Only the appearance count feeds scoring, the rest stays
// available to inspect output.
func parsePreviousSeasonStats(doc *goquery.Document, metrics player.Metrics) {
	panel := doc.Find("div.col_one_third:nth-of-type(2) div").First()
	if panel.Length() == 0 {
		return
	}
	labels := panel.Find("strong")
	values := panel.Find("span")
	labels.Each(func(i int, sel *goquery.Selection) {
		if i >= values.Length() {
			return
		}
		label := strings.TrimSuffix(cleanText(sel.Text()), ":")
		value, ok := parseNumber(cleanText(values.Eq(i).Text()))
		if !ok {
			return
		}
		if strings.EqualFold(label, "Presenze") {
			metrics[player.KeyAppearancesPrevious] = value
		}
	})
}

// parseExpectedPrice reads the forecast panel for the auction quotation.
func parseExpectedPrice(doc *goquery.Document, rec *player.RawRecord) {
	panel := doc.Find(".col_one_third.col_last div").First()
	if panel.Length() == 0 {
		return
	}
	labels := panel.Find("strong")
	values := panel.Find("span")
	labels.Each(func(i int, sel *goquery.Selection) {
		if i >= values.Length() {
			return
		}
		label := strings.TrimSuffix(cleanText(sel.Text()), ":")
		if !strings.Contains(strings.ToLower(label), "quotazione") {
			return
		}
		if v, ok := parseNumber(cleanText(values.Eq(i).Text())); ok {
			rec.Price = &v
		}
	})
}

func parseProgressBars(doc *goquery.Document, metrics player.Metrics) {
	bars := doc.Find("div.progress-percent")
	if bars.Length() > 2 {
		if v, ok := parseNumber(strings.TrimSuffix(cleanText(bars.Eq(2).Text()), "%")); ok {
			metrics[player.KeyGoodInvestment] = v
		}
	}
	if bars.Length() > 3 {
		if v, ok := parseNumber(strings.TrimSuffix(cleanText(bars.Eq(3).Text()), "%")); ok {
			metrics[player.KeyInjuryResilience] = v
		}
	}
}

func parseFlags(doc *goquery.Document, metrics player.Metrics) {
	metrics[player.KeyNewSigning] = boolMetric(doc.Find("span.new_calc").Length() > 0)

	recommended, injured := false, false
	doc.Find("img.inf_calc").Each(func(_ int, sel *goquery.Selection) {
		title, _ := sel.Attr("title")
		if strings.Contains(title, "Consigliato per la giornata") {
			recommended = true
		}
		if strings.Contains(title, "Infortunato") {
			injured = true
		}
	})
	metrics[player.KeyRecommended] = boolMetric(recommended)
	metrics[player.KeyInjured] = boolMetric(injured)
}

// parseTeam reads the club crest title, shaped "Squadra: Inter".
func parseTeam(doc *goquery.Document) string {
	var team string
	doc.Find("div.promo img").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		title, ok := sel.Attr("title")
		if !ok {
			return true
		}
		if _, after, found := strings.Cut(title, ":"); found {
			team = strings.TrimSpace(after)
			return false
		}
		return true
	})
	return team
}

// seasonEndYear parses labels like "2024-2025", or a bare year, into the
// season's closing year. Unparseable labels yield zero.
func seasonEndYear(label string) int {
	label = strings.TrimSpace(label)
	if _, after, found := strings.Cut(label, "-"); found {
		label = after
	}
	year, err := strconv.Atoi(strings.TrimSpace(label))
	if err != nil {
		return 0
	}
	return year
}

func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" || s == "-" || strings.EqualFold(s, "nd") {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func boolMetric(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
