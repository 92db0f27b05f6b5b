package export

import (
	"os"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/xuri/excelize/v2"

	"github.com/fantalab/listone/internal/platform/logging"
	"github.com/fantalab/listone/internal/usecase"
)

func sampleEnvelope() usecase.Envelope {
	price := 28.0
	matchAvg := 6.9
	index := 245.5
	return usecase.Envelope{
		Source:       "unified",
		TotalPlayers: 1,
		GeneratedAt:  time.Date(2025, 8, 30, 10, 0, 0, 0, time.UTC),
		Columns:      usecase.ExportColumns,
		Players: []usecase.ExportRecord{{
			Rank:             1,
			Name:             "Lautaro Martínez",
			Team:             "Inter",
			Role:             "forward",
			Price:            &price,
			MatchAvg:         &matchAvg,
			ConvenienceIndex: &index,
			Confidence:       "exact",
			Sources:          []string{"fpedia", "fstats"},
		}},
	}
}

func TestWriteJSONRoundTrip(t *testing.T) {
	exporter := NewExporter(t.TempDir(), logging.NewNop())

	path, err := exporter.WriteJSON("shortlist", sampleEnvelope())
	if err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	var got usecase.Envelope
	if err := sonic.Unmarshal(raw, &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got.Source != "unified" || got.TotalPlayers != 1 {
		t.Errorf("envelope = %+v", got)
	}
	if len(got.Players) != 1 || got.Players[0].Name != "Lautaro Martínez" {
		t.Errorf("players = %+v", got.Players)
	}
}

func TestWriteExcel(t *testing.T) {
	exporter := NewExporter(t.TempDir(), logging.NewNop())

	path, err := exporter.WriteExcel("shortlist", sampleEnvelope())
	if err != nil {
		t.Fatalf("WriteExcel() error = %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	defer func() { _ = f.Close() }()

	header, err := f.GetCellValue(playersSheet, "B1")
	if err != nil {
		t.Fatalf("GetCellValue() error = %v", err)
	}
	if header != "name" {
		t.Errorf("header B1 = %q, want name", header)
	}
	name, err := f.GetCellValue(playersSheet, "B2")
	if err != nil {
		t.Fatalf("GetCellValue() error = %v", err)
	}
	if name != "Lautaro Martínez" {
		t.Errorf("B2 = %q", name)
	}

	// Row cells must stay aligned with the envelope's column order.
	header, err = f.GetCellValue(playersSheet, "G1")
	if err != nil {
		t.Fatalf("GetCellValue() error = %v", err)
	}
	if header != "match_avg" {
		t.Errorf("header G1 = %q, want match_avg", header)
	}
	avg, err := f.GetCellValue(playersSheet, "G2")
	if err != nil {
		t.Fatalf("GetCellValue() error = %v", err)
	}
	if avg != "6.9" {
		t.Errorf("G2 = %q, want 6.9", avg)
	}
}

func TestWriteReport(t *testing.T) {
	exporter := NewExporter(t.TempDir(), logging.NewNop())

	path, err := exporter.WriteReport("reconcile_report",
		usecase.Report{Total: 3, Exact: 2, SingleSource: 1},
		[]usecase.Diagnostic{{Stage: "reconcile", Severity: usecase.SeverityWarning, Message: "duplicate entry"}})
	if err != nil {
		t.Fatalf("WriteReport() error = %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	var got struct {
		Report      usecase.Report       `json:"report"`
		Diagnostics []usecase.Diagnostic `json:"diagnostics"`
	}
	if err := sonic.Unmarshal(raw, &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got.Report.Total != 3 || len(got.Diagnostics) != 1 {
		t.Errorf("report artifact = %+v", got)
	}
}
