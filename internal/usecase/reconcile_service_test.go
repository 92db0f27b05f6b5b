package usecase

import (
	"testing"

	"github.com/fantalab/listone/internal/domain/player"
	"github.com/fantalab/listone/internal/platform/logging"
)

func ptr(v float64) *float64 { return &v }

func rawRec(src player.Source, name, role, team string, price *float64, seq int) player.RawRecord {
	return player.RawRecord{
		Source:  src,
		Name:    name,
		RoleRaw: role,
		TeamRaw: team,
		Price:   price,
		Metrics: player.Metrics{},
		Seq:     seq,
	}
}

func newReconciler() *ReconcileService {
	return NewReconcileService(0.6, player.SourceFpedia, logging.NewNop())
}

func TestReconcileExactMatchAcrossSources(t *testing.T) {
	diags := NewDiagnostics()
	players := newReconciler().Reconcile(map[player.Source][]player.RawRecord{
		player.SourceFpedia: {
			rawRec(player.SourceFpedia, "Lautaro Martínez", "ATT", "Inter", ptr(28), 0),
		},
		player.SourceFstats: {
			rawRec(player.SourceFstats, "Lautaro Martinez", "A", "Inter", ptr(34), 0),
		},
	}, diags)

	if len(players) != 1 {
		t.Fatalf("len(players) = %d, want 1", len(players))
	}
	p := players[0]
	if p.Confidence != player.ConfidenceExact {
		t.Errorf("Confidence = %q, want exact", p.Confidence)
	}
	if p.Role != player.RoleForward {
		t.Errorf("Role = %q, want forward", p.Role)
	}
	if !p.HasSource(player.SourceFpedia) || !p.HasSource(player.SourceFstats) {
		t.Errorf("player should carry both sources, got %v", p.MetricsBySource)
	}
	if p.Price == nil || *p.Price != 28 {
		t.Errorf("Price = %v, want the authority source's 28", p.Price)
	}
	if p.DisplayName != "Lautaro Martínez" {
		t.Errorf("DisplayName = %q", p.DisplayName)
	}
}

func TestReconcileFuzzyMatchWithTeamBoost(t *testing.T) {
	diags := NewDiagnostics()
	players := newReconciler().Reconcile(map[player.Source][]player.RawRecord{
		player.SourceFpedia: {
			rawRec(player.SourceFpedia, "Nico Barella", "C", "Inter", ptr(22), 0),
		},
		player.SourceFstats: {
			rawRec(player.SourceFstats, "Nicolo Barella", "C", "Inter", ptr(23), 0),
		},
	}, diags)

	if len(players) != 1 {
		t.Fatalf("len(players) = %d, want fuzzy merge into 1", len(players))
	}
	if players[0].Confidence != player.ConfidenceFuzzy {
		t.Errorf("Confidence = %q, want fuzzy", players[0].Confidence)
	}
}

func TestReconcileTeamConflictDowngradesToFuzzy(t *testing.T) {
	diags := NewDiagnostics()
	players := newReconciler().Reconcile(map[player.Source][]player.RawRecord{
		player.SourceFpedia: {
			rawRec(player.SourceFpedia, "Romelu Lukaku", "ATT", "Napoli", ptr(25), 0),
		},
		player.SourceFstats: {
			rawRec(player.SourceFstats, "Romelu Lukaku", "A", "Roma", ptr(25), 0),
		},
	}, diags)

	// Identical name and role but conflicting teams is not an exact
	// match; the name similarity still merges the pair as fuzzy.
	if len(players) != 1 {
		t.Fatalf("len(players) = %d, want 1", len(players))
	}
	if players[0].Confidence != player.ConfidenceFuzzy {
		t.Errorf("Confidence = %q, want fuzzy", players[0].Confidence)
	}
}

func TestReconcilePartialTokenMatch(t *testing.T) {
	// FPEDIA lists the surname only; whole-string similarity stays below
	// the cutoff but the shared surname token joins the pair.
	diags := NewDiagnostics()
	players := newReconciler().Reconcile(map[player.Source][]player.RawRecord{
		player.SourceFpedia: {
			rawRec(player.SourceFpedia, "Lobotka", "C", "Napoli", ptr(14), 0),
		},
		player.SourceFstats: {
			rawRec(player.SourceFstats, "Stanislav Lobotka", "C", "Napoli", ptr(15), 0),
		},
	}, diags)

	if len(players) != 1 {
		t.Fatalf("len(players) = %d, want partial merge into 1", len(players))
	}
	if players[0].Confidence != player.ConfidenceFuzzy {
		t.Errorf("Confidence = %q, want fuzzy", players[0].Confidence)
	}
	if !players[0].HasSource(player.SourceFpedia) || !players[0].HasSource(player.SourceFstats) {
		t.Errorf("player should carry both sources, got %v", players[0].MetricsBySource)
	}
}

func TestReconcilePartialShortTokenNeedsTeamAgreement(t *testing.T) {
	diags := NewDiagnostics()
	players := newReconciler().Reconcile(map[player.Source][]player.RawRecord{
		player.SourceFpedia: {
			rawRec(player.SourceFpedia, "Mario Rui", "DIF", "Napoli", ptr(8), 0),
		},
		player.SourceFstats: {
			rawRec(player.SourceFstats, "Rui Costa", "D", "Milan", ptr(5), 0),
		},
	}, diags)

	// The only shared token is three runes and the teams disagree.
	if len(players) != 2 {
		t.Fatalf("len(players) = %d, want 2 single-source players", len(players))
	}

	diags = NewDiagnostics()
	players = newReconciler().Reconcile(map[player.Source][]player.RawRecord{
		player.SourceFpedia: {
			rawRec(player.SourceFpedia, "Mario Rui", "DIF", "Napoli", ptr(8), 0),
		},
		player.SourceFstats: {
			rawRec(player.SourceFstats, "Rui Costa", "D", "Napoli", ptr(5), 0),
		},
	}, diags)

	// Same short token with team agreement joins.
	if len(players) != 1 || players[0].Confidence != player.ConfidenceFuzzy {
		t.Fatalf("players = %+v, want one fuzzy merge", players)
	}
}

func TestReconcileBelowThresholdStaysSeparate(t *testing.T) {
	diags := NewDiagnostics()
	players := newReconciler().Reconcile(map[player.Source][]player.RawRecord{
		player.SourceFpedia: {
			rawRec(player.SourceFpedia, "Davide Frattesi", "C", "Inter", ptr(12), 0),
		},
		player.SourceFstats: {
			rawRec(player.SourceFstats, "Hakan Calhanoglu", "C", "Inter", ptr(18), 0),
		},
	}, diags)

	if len(players) != 2 {
		t.Fatalf("len(players) = %d, want 2 single-source players", len(players))
	}
	for _, p := range players {
		if p.Confidence != player.ConfidenceSingleSource {
			t.Errorf("%s: Confidence = %q, want single_source", p.DisplayName, p.Confidence)
		}
	}
}

func TestReconcileRoleGateBlocksFuzzy(t *testing.T) {
	diags := NewDiagnostics()
	players := newReconciler().Reconcile(map[player.Source][]player.RawRecord{
		player.SourceFpedia: {
			rawRec(player.SourceFpedia, "Matteo Gabbia", "DIF", "Milan", ptr(6), 0),
		},
		player.SourceFstats: {
			rawRec(player.SourceFstats, "Matteo Gabbia", "C", "Milan", ptr(6), 0),
		},
	}, diags)

	// Same name but conflicting roles must not merge.
	if len(players) != 2 {
		t.Fatalf("len(players) = %d, want 2", len(players))
	}
}

func TestReconcileDuplicateInSourceKeepsLatest(t *testing.T) {
	diags := NewDiagnostics()
	old := rawRec(player.SourceFpedia, "Paulo Dybala", "ATT", "Roma", ptr(20), 0)
	updated := rawRec(player.SourceFpedia, "Paulo Dybala", "ATT", "Roma", ptr(24), 1)

	players := newReconciler().Reconcile(map[player.Source][]player.RawRecord{
		player.SourceFpedia: {old, updated},
	}, diags)

	if len(players) != 1 {
		t.Fatalf("len(players) = %d, want 1", len(players))
	}
	if players[0].Price == nil || *players[0].Price != 24 {
		t.Errorf("Price = %v, want the later row's 24", players[0].Price)
	}
	if diags.Count(SeverityWarning) == 0 {
		t.Error("duplicate should be reported")
	}
}

func TestReconcileUnknownRoleDropped(t *testing.T) {
	diags := NewDiagnostics()
	players := newReconciler().Reconcile(map[player.Source][]player.RawRecord{
		player.SourceFpedia: {
			rawRec(player.SourceFpedia, "Mystery Man", "allenatore", "Inter", nil, 0),
			rawRec(player.SourceFpedia, "Known Man", "POR", "Inter", nil, 1),
		},
	}, diags)

	if len(players) != 1 || players[0].DisplayName != "Known Man" {
		t.Fatalf("players = %+v, want only the goalkeeper", players)
	}
	if diags.Count(SeverityWarning) == 0 {
		t.Error("unrecognized role should be reported")
	}
}

func TestReconcilePriceFallbackToOtherSource(t *testing.T) {
	diags := NewDiagnostics()
	players := newReconciler().Reconcile(map[player.Source][]player.RawRecord{
		player.SourceFpedia: {
			rawRec(player.SourceFpedia, "Mike Maignan", "POR", "Milan", nil, 0),
		},
		player.SourceFstats: {
			rawRec(player.SourceFstats, "Mike Maignan", "P", "Milan", ptr(17), 0),
		},
	}, diags)

	if len(players) != 1 {
		t.Fatalf("len(players) = %d, want 1", len(players))
	}
	if players[0].Price == nil || *players[0].Price != 17 {
		t.Errorf("Price = %v, want fallback 17", players[0].Price)
	}
}

func TestReconcileDeterministicOrder(t *testing.T) {
	diags := NewDiagnostics()
	input := map[player.Source][]player.RawRecord{
		player.SourceFpedia: {
			rawRec(player.SourceFpedia, "Zlatan Rebic", "ATT", "Milan", nil, 0),
			rawRec(player.SourceFpedia, "Alessio Cragno", "POR", "Cagliari", nil, 1),
			rawRec(player.SourceFpedia, "Bremer", "DIF", "Juventus", nil, 2),
		},
	}

	first := newReconciler().Reconcile(input, diags)
	second := newReconciler().Reconcile(input, NewDiagnostics())

	if len(first) != 3 || len(second) != 3 {
		t.Fatalf("unexpected lengths %d/%d", len(first), len(second))
	}
	wantOrder := []player.Role{player.RoleGoalkeeper, player.RoleDefender, player.RoleForward}
	for i, role := range wantOrder {
		if first[i].Role != role {
			t.Errorf("first[%d].Role = %q, want %q", i, first[i].Role, role)
		}
		if first[i].DisplayName != second[i].DisplayName {
			t.Errorf("order differs between runs at %d: %q vs %q", i, first[i].DisplayName, second[i].DisplayName)
		}
	}
}

func TestBuildReport(t *testing.T) {
	players := []player.UnifiedPlayer{
		{Confidence: player.ConfidenceExact},
		{Confidence: player.ConfidenceFuzzy},
		{Confidence: player.ConfidenceSingleSource},
		{Confidence: player.ConfidenceSingleSource},
	}
	r := BuildReport(players)
	if r.Total != 4 || r.Exact != 1 || r.Fuzzy != 1 || r.SingleSource != 2 {
		t.Errorf("report = %+v", r)
	}
}
