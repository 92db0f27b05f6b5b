package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}
	if cfg.Fetch.MaxWorkers != 5 {
		t.Fatalf("unexpected default max_workers: %d", cfg.Fetch.MaxWorkers)
	}
	if cfg.Analysis.PesoFantamedia != 0.6 || cfg.Analysis.PesoPunteggio != 0.4 {
		t.Fatalf("unexpected default weights: %f/%f", cfg.Analysis.PesoFantamedia, cfg.Analysis.PesoPunteggio)
	}
	if cfg.Analysis.PriceAuthority != "fpedia" {
		t.Fatalf("unexpected default price authority: %s", cfg.Analysis.PriceAuthority)
	}
}

func TestLoad_MissingFileIsFatal(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for nonexistent config file")
	}
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "listone.yaml")
	body := `
fetch:
  max_workers: 12
  request_timeout: 10s
  staleness: 1h
analysis:
  peso_fantamedia: 0.7
  peso_punteggio: 0.3
  top_n: 25
  price_authority: fstats
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Fetch.MaxWorkers != 12 {
		t.Fatalf("max_workers override lost: %d", cfg.Fetch.MaxWorkers)
	}
	if cfg.Fetch.Staleness != time.Hour {
		t.Fatalf("staleness override lost: %s", cfg.Fetch.Staleness)
	}
	if cfg.Analysis.TopN != 25 {
		t.Fatalf("top_n override lost: %d", cfg.Analysis.TopN)
	}
	if cfg.PriceAuthoritySource() != "fstats" {
		t.Fatalf("price authority override lost: %s", cfg.Analysis.PriceAuthority)
	}
}

func TestLoad_InvalidWeightsRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "listone.yaml")
	body := `
analysis:
  peso_fantamedia: 0.9
  peso_punteggio: 0.4
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for weights not summing to 1")
	}
}

func TestRequireFstatsCredentials(t *testing.T) {
	t.Setenv("FSTATS_USERNAME", "")
	t.Setenv("FSTATS_PASSWORD", "")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if err := cfg.RequireFstatsCredentials(); err == nil {
		t.Fatalf("expected credential error when env is empty")
	}

	t.Setenv("FSTATS_USERNAME", "user@example.com")
	t.Setenv("FSTATS_PASSWORD", "secret")
	cfg, err = Load("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if err := cfg.RequireFstatsCredentials(); err != nil {
		t.Fatalf("credentials present, got error: %v", err)
	}
}
