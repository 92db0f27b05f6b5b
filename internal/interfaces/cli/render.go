package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/fantalab/listone/internal/infrastructure/rawcache"
	"github.com/fantalab/listone/internal/usecase"
)

func renderPlayers(w io.Writer, records []usecase.ExportRecord) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Player", "Team", "Role", "Price", "Avg", "Index", "Match", "Sources"})

	for _, rec := range records {
		t.AppendRow(table.Row{
			rankCell(rec.Rank),
			rec.Name,
			rec.Team,
			rec.Role,
			floatCell(rec.Price),
			floatCell(rec.FantaAvg),
			floatCell(rec.ConvenienceIndex),
			rec.Confidence,
			strings.Join(rec.Sources, ","),
		})
	}
	t.Render()
}

func renderCacheStats(w io.Writer, stats []rawcache.Stat) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Source", "Cached", "Records", "Fetched At", "Size"})

	for _, stat := range stats {
		cached := "no"
		fetched := "-"
		if stat.Exists {
			cached = "yes"
			fetched = stat.FetchedAt.Local().Format(time.RFC3339)
		}
		t.AppendRow(table.Row{
			string(stat.Source),
			cached,
			stat.Records,
			fetched,
			fmt.Sprintf("%d B", stat.SizeBytes),
		})
	}
	t.Render()
}

func renderSummary(w io.Writer, result usecase.Result) {
	fmt.Fprintf(w, "\nReconciliation: %s\n", result.Report)
	if warnings := countSeverity(result.Diagnostics, usecase.SeverityWarning); warnings > 0 {
		fmt.Fprintf(w, "Warnings: %d (see the report export for details)\n", warnings)
	}
	if result.Degraded {
		fmt.Fprintf(w, "Degraded run, failed sources: %v\n", result.FailedSources)
	}
}

func countSeverity(diags []usecase.Diagnostic, severity usecase.Severity) int {
	n := 0
	for _, d := range diags {
		if d.Severity == severity {
			n++
		}
	}
	return n
}

func rankCell(rank int) string {
	if rank == 0 {
		return "-"
	}
	return fmt.Sprintf("%d", rank)
}

func floatCell(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *v)
}
