package providers

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"nodup/internal/structures"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	ObservePersistenceDuration(duration time.Duration)
	IncOutcome(status string)
	IncImageLookup(result string)
	AddImageEvictions(mode string, count int)
	IncSkippedRecords(store string)
}

type MetricsProvider struct {
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	cacheHits           prometheus.Counter
	cacheMisses         prometheus.Counter
	persistenceDuration prometheus.Histogram
	outcomes            *prometheus.CounterVec
	imageLookups        *prometheus.CounterVec
	imageEvictions      *prometheus.CounterVec
	skippedRecords      *prometheus.CounterVec
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) ObservePersistenceDuration(duration time.Duration) {
	m.persistenceDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) IncOutcome(status string) {
	m.outcomes.WithLabelValues(status).Inc()
}

func (m *MetricsProvider) IncImageLookup(result string) {
	m.imageLookups.WithLabelValues(result).Inc()
}

func (m *MetricsProvider) AddImageEvictions(mode string, count int) {
	m.imageEvictions.WithLabelValues(mode).Add(float64(count))
}

func (m *MetricsProvider) IncSkippedRecords(store string) {
	m.skippedRecords.WithLabelValues(store).Inc()
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	return &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "nodup_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "nodup_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "nodup_cache_hits_total",
			Help: "Total number of leaderboard cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "nodup_cache_misses_total",
			Help: "Total number of leaderboard cache misses",
		}),

		persistenceDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "nodup_backup_duration_seconds",
			Help:    "Duration of snapshot backups in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		outcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "nodup_outcomes_total",
			Help: "Processed items by outcome",
		}, []string{"status"}),

		imageLookups: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "nodup_image_lookups_total",
			Help: "Perceptual index lookups by result",
		}, []string{"result"}),

		imageEvictions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "nodup_image_evictions_total",
			Help: "Expired perceptual index entries by eviction mode",
		}, []string{"mode"}),

		skippedRecords: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "nodup_skipped_records_total",
			Help: "Stored records skipped because they failed to decode",
		}, []string{"store"}),
	}
}

// noopMetrics is used when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) ObservePersistenceDuration(_ time.Duration)       {}
func (n *noopMetrics) IncOutcome(_ string)                              {}
func (n *noopMetrics) IncImageLookup(_ string)                          {}
func (n *noopMetrics) AddImageEvictions(_ string, _ int)                {}
func (n *noopMetrics) IncSkippedRecords(_ string)                       {}

// NewNoopMetrics returns a metrics provider that records nothing.
func NewNoopMetrics() MetricsProviderInterface {
	return &noopMetrics{}
}
