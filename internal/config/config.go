package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/fantalab/listone/internal/domain/player"
)

// Config stores runtime configuration for a pipeline run. Values come from
// defaults, an optional YAML file, and environment variables for secrets,
// in that order.
type Config struct {
	DataDir   string `yaml:"data_dir"`
	OutputDir string `yaml:"output_dir"`

	Fetch    FetchConfig    `yaml:"fetch"`
	Fpedia   FpediaConfig   `yaml:"fpedia"`
	Fstats   FstatsConfig   `yaml:"fstats"`
	Analysis AnalysisConfig `yaml:"analysis"`
}

// FetchConfig tunes network behavior shared by both source adapters.
type FetchConfig struct {
	MaxWorkers     int           `yaml:"max_workers" validate:"gte=1,lte=64"`
	RequestTimeout time.Duration `yaml:"request_timeout" validate:"gt=0"`
	RetryAttempts  int           `yaml:"retry_attempts" validate:"gte=0,lte=10"`
	RequestDelay   time.Duration `yaml:"request_delay" validate:"gte=0"`
	Staleness      time.Duration `yaml:"staleness" validate:"gt=0"`
	UserAgent      string        `yaml:"user_agent"`
}

type FpediaConfig struct {
	BaseURL   string   `yaml:"base_url" validate:"required,url"`
	RolePages []string `yaml:"role_pages" validate:"min=1"`
}

type FstatsConfig struct {
	BaseURL  string `yaml:"base_url" validate:"required,url"`
	Season   string `yaml:"season" validate:"required"`
	PageSize int    `yaml:"page_size" validate:"gte=1,lte=1000"`
	// Credentials are environment-only; never read from the YAML file.
	Username string `yaml:"-"`
	Password string `yaml:"-"`
}

// AnalysisConfig carries the operator-supplied scoring and ranking knobs.
type AnalysisConfig struct {
	PesoFantamedia      float64 `yaml:"peso_fantamedia" validate:"gt=0,lt=1"`
	PesoPunteggio       float64 `yaml:"peso_punteggio" validate:"gt=0,lt=1"`
	AnnoCorrente        int     `yaml:"anno_corrente" validate:"gte=2000,lte=2100"`
	TopN                int     `yaml:"top_n"`
	PriceFloor          float64 `yaml:"price_floor" validate:"gt=0"`
	SimilarityThreshold float64 `yaml:"similarity_threshold" validate:"gt=0,lte=1"`
	PriceAuthority      string  `yaml:"price_authority" validate:"oneof=fpedia fstats"`
}

const (
	envFstatsUsername = "FSTATS_USERNAME"
	envFstatsPassword = "FSTATS_PASSWORD"
)

// Default returns the documented default configuration.
func Default() Config {
	return Config{
		DataDir:   "data",
		OutputDir: filepath.Join("data", "output"),
		Fetch: FetchConfig{
			MaxWorkers:     5,
			RequestTimeout: 30 * time.Second,
			RetryAttempts:  3,
			RequestDelay:   time.Second,
			Staleness:      24 * time.Hour,
			UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
		},
		Fpedia: FpediaConfig{
			BaseURL: "https://www.fantacalciopedia.com",
			RolePages: []string{
				"portieri", "difensori", "centrocampisti", "trequartisti", "attaccanti",
			},
		},
		Fstats: FstatsConfig{
			BaseURL:  "https://api.app.fantagoat.it/api",
			Season:   "2024/25",
			PageSize: 500,
		},
		Analysis: AnalysisConfig{
			PesoFantamedia:      0.6,
			PesoPunteggio:       0.4,
			AnnoCorrente:        2025,
			TopN:                0,
			PriceFloor:          1,
			SimilarityThreshold: 0.6,
			PriceAuthority:      string(player.SourceFpedia),
		},
	}
}

// Load builds the effective configuration. A non-empty path must point to
// an existing YAML file; a missing file is a fatal configuration error,
// never silently ignored.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	// Best-effort .env so local runs match the original workflow; real
	// environment variables win.
	_ = godotenv.Load()
	cfg.Fstats.Username = strings.TrimSpace(os.Getenv(envFstatsUsername))
	cfg.Fstats.Password = strings.TrimSpace(os.Getenv(envFstatsPassword))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	sum := c.Analysis.PesoFantamedia + c.Analysis.PesoPunteggio
	if sum < 0.999 || sum > 1.001 {
		return fmt.Errorf("peso_fantamedia and peso_punteggio must sum to 1, got %.3f", sum)
	}
	return nil
}

// RequireFstatsCredentials fails when the FSTATS source is requested
// without credentials in the environment. Called before any fetch.
func (c Config) RequireFstatsCredentials() error {
	if c.Fstats.Username == "" || c.Fstats.Password == "" {
		return fmt.Errorf("%s and %s must be set to fetch FSTATS data", envFstatsUsername, envFstatsPassword)
	}
	return nil
}

// PriceAuthoritySource returns the source whose price wins on conflicts.
func (c Config) PriceAuthoritySource() player.Source {
	return player.Source(c.Analysis.PriceAuthority)
}

// CachePath returns the raw-cache artifact path for a source.
func (c Config) CachePath(src player.Source) string {
	return filepath.Join(c.DataDir, fmt.Sprintf("%s_raw.json", src))
}
