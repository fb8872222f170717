// Package config loads the service configuration from a YAML file with
// environment-variable overrides. Every field has a working default so
// the tool runs against memory stores with zero configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration decodes YAML durations given as strings ("30s", "1m") or as
// integer nanoseconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("parse duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}

	var n int64
	if err := value.Decode(&n); err != nil {
		return fmt.Errorf("duration must be a string like 30s or nanoseconds: %w", err)
	}
	*d = Duration(n)
	return nil
}

// Std returns the standard library representation.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the full service configuration.
type Config struct {
	Database   DatabaseConfig   `yaml:"database"`
	Providers  ProvidersConfig  `yaml:"providers"`
	Discovery  DiscoveryConfig  `yaml:"discovery"`
	Validation ValidationConfig `yaml:"validation"`
	Dividends  DividendsConfig  `yaml:"dividends"`
	Scheduler  SchedulerConfig  `yaml:"scheduler"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// DatabaseConfig holds connection strings for both stores.
type DatabaseConfig struct {
	PostgresDSN   string `yaml:"postgres_dsn"`
	ClickhouseDSN string `yaml:"clickhouse_dsn"`
}

// ProviderConfig describes one market-data provider endpoint.
type ProviderConfig struct {
	Name       string   `yaml:"name"`
	BaseURL    string   `yaml:"base_url"`
	APIKey     string   `yaml:"api_key"`
	Timeout    Duration `yaml:"timeout"`
	MaxRetries int      `yaml:"max_retries"`
}

// ProvidersConfig holds the primary provider and its fallbacks, tried
// in order.
type ProvidersConfig struct {
	Primary   ProviderConfig   `yaml:"primary"`
	Fallbacks []ProviderConfig `yaml:"fallbacks"`
}

// DiscoveryConfig holds the candidate source endpoints.
type DiscoveryConfig struct {
	ScreenerURL     string   `yaml:"screener_url"`
	CalendarURL     string   `yaml:"calendar_url"`
	CuratedSymbols  []string `yaml:"curated_symbols"`
	CuratedExchange string   `yaml:"curated_exchange"`
}

// ValidationConfig holds the acceptance thresholds and worker count.
type ValidationConfig struct {
	PriceRecency     Duration `yaml:"price_recency"`
	DividendLookback Duration `yaml:"dividend_lookback"`
	Concurrency      int      `yaml:"concurrency"`
}

// DividendsConfig holds dividend normalization settings.
type DividendsConfig struct {
	// YieldCeiling is the derived annual yield above which a record is
	// flagged for review, as a fraction (0.5 means 50%).
	YieldCeiling float64 `yaml:"yield_ceiling"`
}

// SchedulerConfig holds provider throttling settings.
type SchedulerConfig struct {
	BatchSize       int      `yaml:"batch_size"`
	InterBatchDelay Duration `yaml:"inter_batch_delay"`
	QuotaCooldown   Duration `yaml:"quota_cooldown"`
	MaxQuotaPauses  int      `yaml:"max_quota_pauses"`
}

// MetricsConfig holds the Prometheus scrape endpoint address.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the configuration defaults.
func Default() *Config {
	return &Config{
		Providers: ProvidersConfig{
			Primary: ProviderConfig{
				Name:       "eodhd",
				BaseURL:    "https://eodhd.com/api",
				Timeout:    Duration(30 * time.Second),
				MaxRetries: 3,
			},
		},
		Discovery: DiscoveryConfig{
			CuratedExchange: "NYSE",
		},
		Validation: ValidationConfig{
			PriceRecency:     Duration(7 * 24 * time.Hour),
			DividendLookback: Duration(365 * 24 * time.Hour),
			Concurrency:      4,
		},
		Dividends: DividendsConfig{
			YieldCeiling: 0.5,
		},
		Scheduler: SchedulerConfig{
			BatchSize:       60,
			InterBatchDelay: Duration(1 * time.Minute),
			QuotaCooldown:   Duration(5 * time.Minute),
			MaxQuotaPauses:  10,
		},
		Metrics: MetricsConfig{
			Addr: ":9090",
		},
	}
}

// Load reads configuration from path (optional), then applies
// environment overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides fields from DIVCATALOG_* environment variables.
// Secrets and DSNs typically arrive this way rather than in the file.
func (c *Config) applyEnv() {
	setString(&c.Database.PostgresDSN, "DIVCATALOG_POSTGRES_DSN")
	setString(&c.Database.ClickhouseDSN, "DIVCATALOG_CLICKHOUSE_DSN")
	setString(&c.Providers.Primary.BaseURL, "DIVCATALOG_PROVIDER_URL")
	setString(&c.Providers.Primary.APIKey, "DIVCATALOG_PROVIDER_API_KEY")
	setString(&c.Discovery.ScreenerURL, "DIVCATALOG_SCREENER_URL")
	setString(&c.Discovery.CalendarURL, "DIVCATALOG_CALENDAR_URL")
	setString(&c.Metrics.Addr, "DIVCATALOG_METRICS_ADDR")
	setInt(&c.Scheduler.BatchSize, "DIVCATALOG_BATCH_SIZE")
	setInt(&c.Validation.Concurrency, "DIVCATALOG_CONCURRENCY")
}

// Validate rejects configurations that cannot work.
func (c *Config) Validate() error {
	if c.Providers.Primary.BaseURL == "" {
		return fmt.Errorf("providers.primary.base_url is required")
	}
	for i, f := range c.Providers.Fallbacks {
		if f.BaseURL == "" {
			return fmt.Errorf("providers.fallbacks[%d].base_url is required", i)
		}
	}
	if c.Validation.PriceRecency <= 0 {
		return fmt.Errorf("validation.price_recency must be positive")
	}
	if c.Validation.DividendLookback <= 0 {
		return fmt.Errorf("validation.dividend_lookback must be positive")
	}
	if c.Validation.Concurrency <= 0 {
		return fmt.Errorf("validation.concurrency must be positive")
	}
	if c.Dividends.YieldCeiling <= 0 || c.Dividends.YieldCeiling > 10 {
		return fmt.Errorf("dividends.yield_ceiling must be in (0, 10]")
	}
	if c.Scheduler.BatchSize <= 0 {
		return fmt.Errorf("scheduler.batch_size must be positive")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
