package fstats

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fantalab/listone/internal/domain/player"
	"github.com/fantalab/listone/internal/platform/logging"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(ClientConfig{
		HTTPClient: server.Client(),
		BaseURL:    server.URL,
		Username:   "user@example.com",
		Password:   "secret",
		Season:     "2024/25",
		PageSize:   2,
		Logger:     logging.NewNop(),
	})
}

func TestFetchPlayersPaginates(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/account/login/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("login method = %s, want POST", r.Method)
		}
		_, _ = w.Write([]byte(`{"access_token":"tok-123"}`))
	})
	mux.HandleFunc("/v1/zona/player/", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-123" {
			t.Errorf("authorization header = %q", got)
		}
		switch r.URL.Query().Get("page") {
		case "1":
			_, _ = w.Write([]byte(`{
				"count": 3,
				"next": "page=2",
				"results": [
					{"firstname":"Lautaro","lastname":"Martinez","team":{"name":"Inter"},"fantacalcioPosition":"A","initialQuotation":34,"fantacalcioRanking":8.2},
					{"firstname":"Nicolo","lastname":"Barella","team":"Inter","fantacalcioPosition":"C","initialQuotation":22}
				]
			}`))
		case "2":
			_, _ = w.Write([]byte(`{
				"count": 3,
				"next": "",
				"results": [
					{"firstname":"Mike","lastname":"Maignan","team":"Milan","fantacalcioPosition":"P","gkCleanSheets":15}
				]
			}`))
		default:
			http.Error(w, "no such page", http.StatusNotFound)
		}
	})

	client := newTestClient(t, mux)
	records, warnings, err := client.FetchPlayers(context.Background())
	if err != nil {
		t.Fatalf("FetchPlayers() error = %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("warnings = %v, want none", warnings)
	}
	if len(records) != 3 {
		t.Fatalf("len(records) = %d, want 3", len(records))
	}

	first := records[0]
	if first.Name != "Lautaro Martinez" {
		t.Errorf("Name = %q", first.Name)
	}
	if first.TeamRaw != "Inter" {
		t.Errorf("TeamRaw = %q", first.TeamRaw)
	}
	if first.Price == nil || *first.Price != 34 {
		t.Errorf("Price = %v, want 34", first.Price)
	}
	if got := first.Metrics[player.KeyFantaAvg]; got != 8.2 {
		t.Errorf("fanta avg = %v, want 8.2", got)
	}
	for i, rec := range records {
		if rec.Seq != i {
			t.Errorf("records[%d].Seq = %d", i, rec.Seq)
		}
	}
	if _, ok := records[2].Metrics[player.KeyCleanSheets]; !ok {
		t.Errorf("goalkeeper record missing clean sheets metric")
	}
}

func TestFetchPlayersSkipsMalformedRows(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/account/login/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"access_token":"tok"}`))
	})
	mux.HandleFunc("/v1/zona/player/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"count": 2,
			"next": "",
			"results": [
				{"firstname":"","lastname":"","team":"Inter","fantacalcioPosition":"A"},
				{"firstname":"Valid","lastname":"Player","team":"Roma","fantacalcioPosition":"D"}
			]
		}`))
	})

	client := newTestClient(t, mux)
	records, warnings, err := client.FetchPlayers(context.Background())
	if err != nil {
		t.Fatalf("FetchPlayers() error = %v", err)
	}
	if len(records) != 1 || records[0].Name != "Valid Player" {
		t.Fatalf("records = %+v, want only the valid row", records)
	}
	if len(warnings) != 1 {
		t.Fatalf("warnings = %v, want exactly one", warnings)
	}
}

func TestFetchPlayersLoginFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/account/login/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad credentials", http.StatusUnauthorized)
	})

	client := newTestClient(t, mux)
	_, _, err := client.FetchPlayers(context.Background())
	if err == nil {
		t.Fatal("FetchPlayers() error = nil, want login failure")
	}
	if !strings.Contains(err.Error(), "login") {
		t.Errorf("error = %v, want login context", err)
	}
}

func TestMapRowTeamShapes(t *testing.T) {
	rec, err := mapRow(map[string]any{
		"firstname":           "Paulo",
		"lastname":            "Dybala",
		"team":                map[string]any{"name": "Roma"},
		"fantacalcioPosition": "A",
	})
	if err != nil {
		t.Fatalf("mapRow() error = %v", err)
	}
	if rec.TeamRaw != "Roma" {
		t.Errorf("TeamRaw = %q, want Roma", rec.TeamRaw)
	}

	if _, err := mapRow(map[string]any{
		"firstname":           "No",
		"lastname":            "Team",
		"fantacalcioPosition": "A",
	}); err == nil {
		t.Error("mapRow() accepted a row without a team")
	}
}
