// Package metrics provides Prometheus metrics for a radar run.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector of the radar.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         *prometheus.Registry

	// Taste profile
	likedSongsProcessed prometheus.Counter
	likedSongsTooOld    prometheus.Counter
	profileArtists      prometheus.Gauge
	graphCacheHits      prometheus.Counter
	graphCacheMisses    prometheus.Counter

	// Collaborators
	upstreamRequests    *prometheus.CounterVec
	upstreamLatency     *prometheus.HistogramVec
	circuitBreakerState *prometheus.GaugeVec

	// Worker pools
	workerTasks   *prometheus.CounterVec
	workerLatency *prometheus.HistogramVec
	workerActive  *prometheus.GaugeVec

	// Release pipeline
	releaseCandidates *prometheus.CounterVec
	releasesAdmitted  *prometheus.CounterVec
	releasesRejected  *prometheus.CounterVec
	releaseListSize   *prometheus.GaugeVec

	// Run
	runDuration prometheus.Gauge
	lastRunUnix prometheus.Gauge
	runFailures prometheus.Counter
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "soltify",
		subsystem:        "radar",
		histogramBuckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		constLabels:      map[string]string{},
		registry:         prometheus.NewRegistry(),
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// Registry returns the registry the manager's collectors live on.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.likedSongsProcessed = m.counter("liked_songs_processed_total", "Liked songs that contributed to the taste profile")
	m.likedSongsTooOld = m.counter("liked_songs_too_old_total", "Liked songs skipped because they are older than the max age")
	m.profileArtists = m.gauge("profile_artists", "Number of artists in the taste profile")
	m.graphCacheHits = m.counter("graph_cache_hits_total", "Related-artist lookups served from the cache")
	m.graphCacheMisses = m.counter("graph_cache_misses_total", "Related-artist lookups that went to the source")

	m.upstreamRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "upstream_requests_total",
		Help:        "Calls into external collaborators by source and outcome",
		ConstLabels: m.constLabels,
	}, []string{"source", "outcome"})

	m.upstreamLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "upstream_latency_milliseconds",
		Help:        "Latency of calls into external collaborators",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"source"})

	m.circuitBreakerState = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "circuit_breaker_state",
		Help:        "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		ConstLabels: m.constLabels,
	}, []string{"name"})

	m.workerTasks = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "worker_tasks_total",
		Help:        "Tasks run by worker pools by pool and outcome",
		ConstLabels: m.constLabels,
	}, []string{"pool", "outcome"})

	m.workerLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "worker_task_latency_milliseconds",
		Help:        "Latency of worker pool tasks",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"pool"})

	m.workerActive = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "worker_active",
		Help:        "Workers currently running in each pool",
		ConstLabels: m.constLabels,
	}, []string{"pool"})

	m.releaseCandidates = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "release_candidates_total",
		Help:        "Candidate releases evaluated by the gate",
		ConstLabels: m.constLabels,
	}, []string{"source"})

	m.releasesAdmitted = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "releases_admitted_total",
		Help:        "Releases admitted by the gate by source and reason",
		ConstLabels: m.constLabels,
	}, []string{"source", "reason"})

	m.releasesRejected = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "releases_rejected_total",
		Help:        "Releases rejected by the gate by reason",
		ConstLabels: m.constLabels,
	}, []string{"reason"})

	m.releaseListSize = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "release_list_size",
		Help:        "Releases held in each list by state",
		ConstLabels: m.constLabels,
	}, []string{"kind", "state"})

	m.runDuration = m.gauge("run_duration_seconds", "Duration of the last run")
	m.lastRunUnix = m.gauge("last_run_timestamp_seconds", "Unix time of the last successful run")
	m.runFailures = m.counter("run_failures_total", "Runs aborted by an error")
}

// RecordLikedSongProcessed counts a liked song that earned points.
func RecordLikedSongProcessed() {
	globalManager.likedSongsProcessed.Inc()
}

// RecordLikedSongTooOld counts a liked song skipped for its age.
func RecordLikedSongTooOld() {
	globalManager.likedSongsTooOld.Inc()
}

// UpdateProfileArtists sets the taste profile size.
func UpdateProfileArtists(count int) {
	globalManager.profileArtists.Set(float64(count))
}

// RecordGraphCacheHit counts a related-artist lookup served from the cache.
func RecordGraphCacheHit() {
	globalManager.graphCacheHits.Inc()
}

// RecordGraphCacheMiss counts a related-artist lookup that hit the source.
func RecordGraphCacheMiss() {
	globalManager.graphCacheMisses.Inc()
}

// RecordUpstreamRequest records one collaborator call.
func RecordUpstreamRequest(source, outcome string, latency time.Duration) {
	globalManager.upstreamRequests.WithLabelValues(source, outcome).Inc()
	globalManager.upstreamLatency.WithLabelValues(source).Observe(float64(latency) / float64(time.Millisecond))
}

// UpdateCircuitBreakerState sets the state gauge of a named breaker.
func UpdateCircuitBreakerState(name string, state float64) {
	globalManager.circuitBreakerState.WithLabelValues(name).Set(state)
}

// RecordWorkerTask records one finished pool task.
func RecordWorkerTask(pool, outcome string, latency time.Duration) {
	globalManager.workerTasks.WithLabelValues(pool, outcome).Inc()
	globalManager.workerLatency.WithLabelValues(pool).Observe(float64(latency) / float64(time.Millisecond))
}

// UpdateWorkerActive sets the number of running workers of a pool.
func UpdateWorkerActive(pool string, n int) {
	globalManager.workerActive.WithLabelValues(pool).Set(float64(n))
}

// RecordReleaseCandidate counts a candidate release entering the gate.
func RecordReleaseCandidate(source string) {
	globalManager.releaseCandidates.WithLabelValues(source).Inc()
}

// RecordReleaseAdmitted counts an admitted release.
func RecordReleaseAdmitted(source, reason string) {
	globalManager.releasesAdmitted.WithLabelValues(source, reason).Inc()
}

// RecordReleaseRejected counts a rejected release.
func RecordReleaseRejected(reason string) {
	globalManager.releasesRejected.WithLabelValues(reason).Inc()
}

// UpdateReleaseListSize sets the active and removed counts of a release list.
func UpdateReleaseListSize(kind string, active, removed int) {
	globalManager.releaseListSize.WithLabelValues(kind, "active").Set(float64(active))
	globalManager.releaseListSize.WithLabelValues(kind, "removed").Set(float64(removed))
}

// RecordRunCompleted records the duration and completion time of a run.
func RecordRunCompleted(duration time.Duration, at time.Time) {
	globalManager.runDuration.Set(duration.Seconds())
	globalManager.lastRunUnix.Set(float64(at.Unix()))
}

// RecordRunFailure counts an aborted run.
func RecordRunFailure() {
	globalManager.runFailures.Inc()
}

// WriteTextfile writes the current metrics in the text exposition format,
// for the node exporter textfile collector.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, customRegistry); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteTextfile, err)
	}
	return nil
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
