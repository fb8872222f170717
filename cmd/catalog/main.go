// Package main runs the dividend securities catalog tool:
// - discovery: find, validate and catalog dividend-paying symbols
// - dividend-update: refresh dividend and split history for the catalog
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/nguyenngoctoan/high-yield-dividend-analysis-sub005/internal/config"
	"github.com/nguyenngoctoan/high-yield-dividend-analysis-sub005/internal/discovery"
	"github.com/nguyenngoctoan/high-yield-dividend-analysis-sub005/internal/normalization"
	"github.com/nguyenngoctoan/high-yield-dividend-analysis-sub005/internal/observability"
	"github.com/nguyenngoctoan/high-yield-dividend-analysis-sub005/internal/orchestrator"
	"github.com/nguyenngoctoan/high-yield-dividend-analysis-sub005/internal/pipeline"
	"github.com/nguyenngoctoan/high-yield-dividend-analysis-sub005/internal/provider"
	"github.com/nguyenngoctoan/high-yield-dividend-analysis-sub005/internal/scheduler"
	"github.com/nguyenngoctoan/high-yield-dividend-analysis-sub005/internal/storage"
	chstore "github.com/nguyenngoctoan/high-yield-dividend-analysis-sub005/internal/storage/clickhouse"
	"github.com/nguyenngoctoan/high-yield-dividend-analysis-sub005/internal/storage/memory"
	"github.com/nguyenngoctoan/high-yield-dividend-analysis-sub005/internal/storage/migrations"
	pgstore "github.com/nguyenngoctoan/high-yield-dividend-analysis-sub005/internal/storage/postgres"

	"github.com/shopspring/decimal"
)

// allStores holds all storage implementations.
type allStores struct {
	catalog    storage.CatalogStore
	exclusions storage.ExclusionStore
	dividends  storage.DividendStore
	splits     storage.SplitStore
	history    storage.DividendHistoryStore
}

func main() {
	// Load .env file if exists
	loadEnvFile()

	mode := flag.String("mode", "discovery", "Run mode: discovery, dividend-update or price-update")
	configPath := flag.String("config", "", "Path to YAML config file")
	revalidate := flag.String("revalidate", "", "Comma-separated excluded symbols to re-admit into validation")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL/ClickHouse")
	metricsAddr := flag.String("metrics-addr", "", "Prometheus metrics HTTP address (overrides config)")
	verbose := flag.Bool("verbose", false, "Verbose output")
	flag.Parse()

	logger := log.New(os.Stdout, "[catalog] ", log.LstdFlags|log.Lshortfile)

	runMode, err := orchestrator.ParseMode(*mode)
	if err != nil {
		logger.Fatal(err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	if *metricsAddr != "" {
		cfg.Metrics.Addr = *metricsAddr
	}
	if !*useMemory && cfg.Database.PostgresDSN == "" {
		logger.Fatal("postgres DSN is required (set DIVCATALOG_POSTGRES_DSN or use --use-memory)")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stores, cleanup, err := createStores(ctx, cfg, *useMemory, logger)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	metrics := observability.NewMetrics("")
	go startHTTPServer(cfg.Metrics.Addr, logger)

	orch := buildOrchestrator(cfg, stores, metrics, *verbose, logger)

	// Channel to signal completion
	done := make(chan struct{})

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, stopping after the current batch...", sig)
		orch.Stop()

		// Wait for second signal for immediate shutdown
		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			cancel()
		case <-time.After(5 * time.Minute):
			logger.Println("Graceful stop timed out, cancelling")
			cancel()
		case <-done:
			// Normal shutdown completed
		}
	}()

	start := time.Now()
	summary, err := orch.Run(ctx, runMode, parseOverrides(*revalidate))
	close(done)

	printSummary(logger, summary, time.Since(start))

	if err != nil && err != context.Canceled {
		logger.Fatalf("Run failed: %v", err)
	}
	logger.Println("Done")
}

// createStores creates all required stores, running migrations first.
func createStores(ctx context.Context, cfg *config.Config, useMemory bool, logger *log.Logger) (*allStores, func(), error) {
	if useMemory {
		stores := &allStores{
			catalog:    memory.NewCatalogStore(),
			exclusions: memory.NewExclusionStore(),
			dividends:  memory.NewDividendStore(),
			splits:     memory.NewSplitStore(),
			history:    memory.NewDividendHistoryStore(),
		}
		return stores, func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, cfg.Database.PostgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("run postgres migrations: %w", err)
	}

	stores := &allStores{
		catalog:    pgstore.NewCatalogStore(pool),
		exclusions: pgstore.NewExclusionStore(pool),
		dividends:  pgstore.NewDividendStore(pool),
		splits:     pgstore.NewSplitStore(pool),
	}
	cleanup := func() { pool.Close() }

	// ClickHouse is the optional analytics sink; the relational side is
	// fully functional without it.
	if cfg.Database.ClickhouseDSN != "" {
		conn, err := chstore.NewConn(ctx, cfg.Database.ClickhouseDSN)
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
		}
		if err := migrations.RunClickhouseMigrations(ctx, conn); err != nil {
			conn.Close()
			pool.Close()
			return nil, nil, fmt.Errorf("run clickhouse migrations: %w", err)
		}
		stores.history = chstore.NewDividendHistoryStore(conn)
		cleanup = func() {
			conn.Close()
			pool.Close()
		}
	} else {
		logger.Println("No ClickHouse DSN configured, dividend history analytics disabled")
	}

	return stores, cleanup, nil
}

// buildOrchestrator wires every component from the configuration.
func buildOrchestrator(cfg *config.Config, stores *allStores, metrics *observability.Metrics, verbose bool, logger *log.Logger) *orchestrator.Orchestrator {
	discard := log.New(os.Stdout, "", 0)
	if !verbose {
		discard = log.New(discardWriter{}, "", 0)
	}

	providers := make([]provider.Provider, 0, 1+len(cfg.Providers.Fallbacks))
	for _, pc := range append([]config.ProviderConfig{cfg.Providers.Primary}, cfg.Providers.Fallbacks...) {
		opts := []provider.ClientOption{}
		if pc.Timeout > 0 {
			opts = append(opts, provider.WithTimeout(pc.Timeout.Std()))
		}
		if pc.MaxRetries > 0 {
			opts = append(opts, provider.WithMaxRetries(pc.MaxRetries))
		}
		providers = append(providers, provider.NewHTTPClient(pc.Name, pc.BaseURL, pc.APIKey, opts...))
	}
	chain := provider.NewChain(logger, providers...)

	var adapters []discovery.Adapter
	if cfg.Discovery.ScreenerURL != "" {
		adapters = append(adapters, discovery.NewScreenerAdapter("screener", cfg.Discovery.ScreenerURL, nil))
	}
	if len(cfg.Discovery.CuratedSymbols) > 0 {
		adapters = append(adapters, discovery.NewCuratedAdapter("curated", cfg.Discovery.CuratedSymbols, cfg.Discovery.CuratedExchange))
	}
	if cfg.Discovery.CalendarURL != "" {
		adapters = append(adapters, discovery.NewCalendarAdapter("calendar", cfg.Discovery.CalendarURL, nil))
	}
	aggregator := discovery.NewAggregator(adapters, discovery.WithLogger(logger))

	sched := scheduler.New(scheduler.Options{
		BatchSize:       cfg.Scheduler.BatchSize,
		InterBatchDelay: cfg.Scheduler.InterBatchDelay.Std(),
		QuotaCooldown:   cfg.Scheduler.QuotaCooldown.Std(),
		MaxQuotaPauses:  cfg.Scheduler.MaxQuotaPauses,
		Logger:          logger,
	})

	validator := pipeline.NewValidator(chain, pipeline.Policy{
		PriceRecency:     cfg.Validation.PriceRecency.Std(),
		DividendLookback: cfg.Validation.DividendLookback.Std(),
	})

	discoveryPipeline := pipeline.New(pipeline.Options{
		Aggregator:  aggregator,
		Filter:      pipeline.NewCorpusFilter(stores.catalog, stores.exclusions),
		Validator:   validator,
		Writer:      pipeline.NewCatalogWriter(stores.catalog, stores.exclusions),
		Scheduler:   sched,
		Concurrency: cfg.Validation.Concurrency,
		Metrics:     metrics,
		Logger:      logger,
	})

	refresher := normalization.NewRunner(normalization.RunnerOptions{
		Provider:   chain,
		Normalizer: normalization.NewNormalizer(decimal.NewFromFloat(cfg.Dividends.YieldCeiling)),
		Dividends:  stores.dividends,
		Splits:     stores.splits,
		History:    stores.history,
		Logger:     discard,
	})

	return orchestrator.New(orchestrator.Options{
		Discovery: discoveryPipeline,
		Refresher: refresher,
		Catalog:   stores.catalog,
		Scheduler: sched,
		Metrics:   metrics,
		Logger:    logger,
	})
}

// parseOverrides parses the --revalidate flag into an override set.
func parseOverrides(raw string) map[string]bool {
	overrides := make(map[string]bool)
	for _, sym := range strings.Split(raw, ",") {
		sym = strings.ToUpper(strings.TrimSpace(sym))
		if sym != "" {
			overrides[sym] = true
		}
	}
	return overrides
}

// printSummary reports mode-specific counters.
func printSummary(logger *log.Logger, summary *orchestrator.Summary, elapsed time.Duration) {
	if summary == nil {
		return
	}
	switch {
	case summary.Discovery != nil:
		r := summary.Discovery
		logger.Printf("Discovery finished in %v: %d discovered, %d already processed, %d accepted, %d excluded, %d failed, %d skipped",
			elapsed, r.Discovered, r.AlreadyProcessed, r.Accepted, r.Excluded, r.Failed, r.Skipped)
	case summary.Refresh != nil:
		r := summary.Refresh
		logger.Printf("Dividend refresh finished in %v: %d symbols, %d dividends, %d splits, %d flagged, %d failed, %d skipped",
			elapsed, r.Symbols, r.Dividends, r.Splits, r.Flagged, r.Failed, r.Skipped)
	}
}

// startHTTPServer starts the HTTP server for health/metrics.
func startHTTPServer(addr string, logger *log.Logger) {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", observability.Handler())

	logger.Printf("Starting HTTP server on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		logger.Printf("HTTP server error: %v", err)
	}
}

// discardWriter drops verbose per-symbol refresh output.
type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Don't override existing env vars
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
