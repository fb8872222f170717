// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Discovery metrics
	CandidatesDiscovered *prometheus.CounterVec
	AdapterFailures      prometheus.Counter
	MalformedCandidates  prometheus.Counter

	// Validation metrics
	CandidatesAccepted  prometheus.Counter
	CandidatesExcluded  prometheus.Counter
	ValidationFailures  prometheus.Counter
	AlreadyProcessed    prometheus.Counter
	QuotaPauses         prometheus.Counter

	// Dividend metrics
	DividendsUpserted  prometheus.Counter
	DividendsFlagged   prometheus.Counter
	SplitsRecorded     prometheus.Counter
	MalformedDividends prometheus.Counter

	// Run metrics
	RunsTotal    *prometheus.CounterVec
	RunDuration  *prometheus.HistogramVec
}

// NewMetrics creates a new Metrics instance with all metrics registered
// on the default registry.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "dividend_catalog"
	}

	return &Metrics{
		CandidatesDiscovered: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "discovery",
			Name:      "candidates_total",
			Help:      "Raw candidate tuples seen, by discovery source",
		}, []string{"source"}),
		AdapterFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "discovery",
			Name:      "adapter_failures_total",
			Help:      "Discovery adapters that errored and were skipped",
		}),
		MalformedCandidates: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "discovery",
			Name:      "malformed_candidates_total",
			Help:      "Candidate tuples dropped by symbol normalization",
		}),
		CandidatesAccepted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "validation",
			Name:      "accepted_total",
			Help:      "Candidates accepted into the catalog",
		}),
		CandidatesExcluded: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "validation",
			Name:      "excluded_total",
			Help:      "Candidates written to the exclusion ledger",
		}),
		ValidationFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "validation",
			Name:      "failures_total",
			Help:      "Candidates that failed validation transiently (retried next run)",
		}),
		AlreadyProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "validation",
			Name:      "already_processed_total",
			Help:      "Candidates skipped because the catalog or ledger already has them",
		}),
		QuotaPauses: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "quota_pauses_total",
			Help:      "Times the scheduler paused on provider quota-exceeded",
		}),
		DividendsUpserted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dividends",
			Name:      "upserted_total",
			Help:      "Dividend records written",
		}),
		DividendsFlagged: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dividends",
			Name:      "flagged_total",
			Help:      "Dividend records flagged by the derived-yield sanity check",
		}),
		SplitsRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dividends",
			Name:      "splits_recorded_total",
			Help:      "New stock split events recorded",
		}),
		MalformedDividends: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dividends",
			Name:      "malformed_total",
			Help:      "Provider dividend records skipped as unparseable",
		}),
		RunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "runs",
			Name:      "total",
			Help:      "Pipeline runs, by mode and outcome",
		}, []string{"mode", "outcome"}),
		RunDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "runs",
			Name:      "duration_seconds",
			Help:      "Pipeline run duration by mode",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}, []string{"mode"}),
	}
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
