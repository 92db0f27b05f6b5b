// Package export writes the analysis artifacts: Excel workbooks and JSON
// files for the shortlists, plus the reconciliation report.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/xuri/excelize/v2"

	"github.com/fantalab/listone/internal/platform/logging"
	"github.com/fantalab/listone/internal/usecase"
)

const playersSheet = "Players"

type Exporter struct {
	dir    string
	logger *logging.Logger
	now    func() time.Time
}

func NewExporter(dir string, logger *logging.Logger) *Exporter {
	if logger == nil {
		logger = logging.Default()
	}
	return &Exporter{dir: dir, logger: logger, now: time.Now}
}

// WriteJSON writes one envelope as an indented JSON artifact and returns
// its path.
func (e *Exporter) WriteJSON(name string, env usecase.Envelope) (string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	raw, err := sonic.MarshalIndent(env, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode %s export: %w", name, err)
	}

	path := filepath.Join(e.dir, name+".json")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", fmt.Errorf("write %s export: %w", name, err)
	}

	e.logger.Info("wrote json export", "path", path, "players", env.TotalPlayers)
	return path, nil
}

// WriteExcel writes one envelope as a single-sheet workbook.
func (e *Exporter) WriteExcel(name string, env usecase.Envelope) (string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	index, err := f.NewSheet(playersSheet)
	if err != nil {
		return "", fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return "", fmt.Errorf("drop default sheet: %w", err)
	}

	header := make([]any, len(env.Columns))
	for i, col := range env.Columns {
		header[i] = col
	}
	if err := f.SetSheetRow(playersSheet, "A1", &header); err != nil {
		return "", fmt.Errorf("write header row: %w", err)
	}

	for i, rec := range env.Players {
		row := []any{
			rec.Rank,
			rec.Name,
			rec.Team,
			rec.Role,
			cellValue(rec.Price),
			cellValue(rec.FantaAvg),
			cellValue(rec.MatchAvg),
			cellValue(rec.Rating),
			cellValue(rec.Presences),
			cellValue(rec.FantamediaPrevious),
			cellValue(rec.AppearancesPrevious),
			cellValue(rec.ConvenienceIndex),
			rec.Confidence,
			strings.Join(rec.Sources, ","),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return "", fmt.Errorf("compute row cell: %w", err)
		}
		if err := f.SetSheetRow(playersSheet, cell, &row); err != nil {
			return "", fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	path := filepath.Join(e.dir, name+".xlsx")
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}

	e.logger.Info("wrote excel export", "path", path, "players", env.TotalPlayers)
	return path, nil
}

// reportArtifact is the audit trail of one reconciliation run.
type reportArtifact struct {
	GeneratedAt time.Time            `json:"generated_at"`
	Report      usecase.Report       `json:"report"`
	Diagnostics []usecase.Diagnostic `json:"diagnostics"`
}

// WriteReport persists the reconciliation summary and every diagnostic
// collected during a run.
func (e *Exporter) WriteReport(name string, report usecase.Report, diags []usecase.Diagnostic) (string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	raw, err := sonic.MarshalIndent(reportArtifact{
		GeneratedAt: e.now().UTC(),
		Report:      report,
		Diagnostics: diags,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}

	path := filepath.Join(e.dir, name+".json")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

func cellValue(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}
