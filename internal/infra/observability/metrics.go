package observability

import (
	"time"

	"github.com/joaodariop/foour-tax-sub000/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the classification service.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration  *prometheus.HistogramVec
	externalErrors   *prometheus.CounterVec
	cacheHits        *prometheus.CounterVec
	cacheMisses      *prometheus.CounterVec
	classifications  *prometheus.CounterVec
	inconsistencies  *prometheus.CounterVec
	violationsPerRun prometheus.Histogram
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "classifier_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		externalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "classifier_external_errors_total",
				Help: "Total errors from external services.",
			},
			[]string{"service"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "classifier_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "classifier_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		classifications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "classifier_classifications_total",
				Help: "Total classification verdicts by profile.",
			},
			[]string{"profile"},
		),
		inconsistencies: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "classifier_inconsistencies_created_total",
				Help: "Total inconsistency cases persisted, by severity.",
			},
			[]string{"severity"},
		),
		violationsPerRun: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "classifier_violations_per_run",
				Help:    "Number of violated rules per flagged classification.",
				Buckets: []float64{1, 2, 3, 5, 8, 13, 21},
			},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrExternalError increments the external error counter.
func (m *Metrics) IncrExternalError(service string) {
	m.externalErrors.WithLabelValues(service).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// RecordVerdict counts one classification outcome and, for flagged
// runs, the size of its violation list.
func (m *Metrics) RecordVerdict(profile string, violations int) {
	m.classifications.WithLabelValues(profile).Inc()
	if violations > 0 {
		m.violationsPerRun.Observe(float64(violations))
	}
}

// IncrInconsistencyCreated counts one persisted review case.
func (m *Metrics) IncrInconsistencyCreated(severity string) {
	m.inconsistencies.WithLabelValues(severity).Inc()
}

// GetClassificationSnapshot returns cumulative classification counters
// for the GET /v1/metrics/classification endpoint.
func (m *Metrics) GetClassificationSnapshot() *domain.ClassificationStats {
	autonomous := getCounterValue(m.classifications, string(domain.ProfileAutonomous))
	flagged := getCounterValue(m.classifications, string(domain.ProfileInconsistency))
	saved := getCounterValue(m.inconsistencies, domain.SeverityMedium) +
		getCounterValue(m.inconsistencies, domain.SeverityLow) +
		getCounterValue(m.inconsistencies, domain.SeverityHigh) +
		getCounterValue(m.inconsistencies, domain.SeverityCritical)
	priceHits := getCounterValue(m.cacheHits, "price")
	priceMisses := getCounterValue(m.cacheMisses, "price")

	total := autonomous + flagged
	reviewRate := float64(0)
	if total > 0 {
		reviewRate = flagged / total
	}
	cacheHitRate := float64(0)
	if priceHits+priceMisses > 0 {
		cacheHitRate = priceHits / (priceHits + priceMisses)
	}

	return &domain.ClassificationStats{
		TotalClassifications: int64(total),
		Autonomous:           int64(autonomous),
		FlaggedForReview:     int64(flagged),
		ReviewRate:           reviewRate,
		InconsistenciesSaved: int64(saved),
		PriceCacheHitRate:    cacheHitRate,
		Period:               "all_time",
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	counter := cv.WithLabelValues(label)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
