package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Validation.PriceRecency.Std() != 7*24*time.Hour {
		t.Errorf("price recency = %v, want 168h", cfg.Validation.PriceRecency)
	}
	if cfg.Validation.DividendLookback.Std() != 365*24*time.Hour {
		t.Errorf("dividend lookback = %v, want 8760h", cfg.Validation.DividendLookback)
	}
	if cfg.Scheduler.BatchSize != 60 {
		t.Errorf("batch size = %d, want 60", cfg.Scheduler.BatchSize)
	}
	if cfg.Dividends.YieldCeiling != 0.5 {
		t.Errorf("yield ceiling = %v, want 0.5", cfg.Dividends.YieldCeiling)
	}
	if cfg.Providers.Primary.BaseURL == "" {
		t.Error("primary provider must have a default base URL")
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
validation:
  price_recency: 48h
  concurrency: 8
scheduler:
  batch_size: 30
discovery:
  screener_url: https://screener.example.com/api
  curated_symbols: [KO, T]
providers:
  primary:
    name: custom
    base_url: https://data.example.com
  fallbacks:
    - name: backup
      base_url: https://backup.example.com
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Validation.PriceRecency.Std() != 48*time.Hour {
		t.Errorf("price recency = %v, want 48h", cfg.Validation.PriceRecency)
	}
	if cfg.Validation.Concurrency != 8 {
		t.Errorf("concurrency = %d, want 8", cfg.Validation.Concurrency)
	}
	if cfg.Scheduler.BatchSize != 30 {
		t.Errorf("batch size = %d, want 30", cfg.Scheduler.BatchSize)
	}
	if len(cfg.Discovery.CuratedSymbols) != 2 {
		t.Errorf("curated symbols = %v", cfg.Discovery.CuratedSymbols)
	}
	if cfg.Providers.Primary.Name != "custom" {
		t.Errorf("primary name = %s", cfg.Providers.Primary.Name)
	}
	if len(cfg.Providers.Fallbacks) != 1 || cfg.Providers.Fallbacks[0].Name != "backup" {
		t.Errorf("fallbacks = %+v", cfg.Providers.Fallbacks)
	}

	// Untouched sections keep their defaults.
	if cfg.Validation.DividendLookback.Std() != 365*24*time.Hour {
		t.Errorf("dividend lookback = %v, want default", cfg.Validation.DividendLookback)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
database:
  postgres_dsn: postgres://file/db
`)
	t.Setenv("DIVCATALOG_POSTGRES_DSN", "postgres://env/db")
	t.Setenv("DIVCATALOG_BATCH_SIZE", "15")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Database.PostgresDSN != "postgres://env/db" {
		t.Errorf("dsn = %s, env must win", cfg.Database.PostgresDSN)
	}
	if cfg.Scheduler.BatchSize != 15 {
		t.Errorf("batch size = %d, want 15 from env", cfg.Scheduler.BatchSize)
	}
}

func TestLoad_RejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"zero recency":   "validation:\n  price_recency: 0s\n",
		"no concurrency": "validation:\n  concurrency: -1\n",
		"bad ceiling":    "dividends:\n  yield_ceiling: 0\n",
		"zero batch":     "scheduler:\n  batch_size: -5\n",
		"empty provider": "providers:\n  primary:\n    base_url: \"\"\n",
	}
	for name, content := range cases {
		if _, err := Load(writeConfig(t, content)); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}
