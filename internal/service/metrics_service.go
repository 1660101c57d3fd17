package service

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/timetable-api/internal/models"
)

// MetricsService owns the Prometheus registry for HTTP and scheduler metrics.
// A nil *MetricsService is valid and records nothing.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheLookups    *prometheus.CounterVec
	materialized    prometheus.Counter
	allocations     *prometheus.CounterVec
	conflicts       *prometheus.CounterVec
	registrations   *prometheus.CounterVec
	gridCache       *prometheus.CounterVec
}

// NewMetricsService registers all collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for conflict cache lookups",
		Buckets: prometheus.DefBuckets,
	})

	cacheLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_lookups_total",
		Help: "Conflict cache lookups by result",
	}, []string{"result"})

	materialized := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "timetable_slots_materialized_total",
		Help: "Schedule slots created by the materializer",
	})

	allocations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetable_allocations_total",
		Help: "Allocation decisions by resource and outcome",
	}, []string{"resource", "outcome"})

	conflicts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetable_conflicts_detected_total",
		Help: "Conflicts reported by detection and allocation",
	}, []string{"type"})

	registrations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetable_registrations_total",
		Help: "Course registration attempts by outcome",
	}, []string{"outcome"})

	gridCache := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetable_grid_cache_total",
		Help: "Time grid memo lookups by result",
	}, []string{"result"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheLookups, materialized,
		allocations, conflicts, registrations, gridCache, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheLatency:    cacheLatency,
		cacheLookups:    cacheLookups,
		materialized:    materialized,
		allocations:     allocations,
		conflicts:       conflicts,
		registrations:   registrations,
		gridCache:       gridCache,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registry exposes the underlying registry, mainly for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveHTTPRequest records request latency and count.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation records a cache lookup.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	m.cacheLookups.WithLabelValues(hitLabel(hit)).Inc()
}

// AddMaterialized counts created slots.
func (m *MetricsService) AddMaterialized(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.materialized.Add(float64(n))
}

// RecordAllocation counts one room or faculty decision.
func (m *MetricsService) RecordAllocation(resource, outcome string) {
	if m == nil {
		return
	}
	m.allocations.WithLabelValues(resource, outcome).Inc()
}

// RecordConflicts counts conflicts by type.
func (m *MetricsService) RecordConflicts(conflicts []models.Conflict) {
	if m == nil {
		return
	}
	for _, c := range conflicts {
		m.conflicts.WithLabelValues(string(c.Type)).Inc()
	}
}

// RecordRegistration counts a registration attempt.
func (m *MetricsService) RecordRegistration(outcome string) {
	if m == nil {
		return
	}
	m.registrations.WithLabelValues(outcome).Inc()
}

// RecordGridCache counts a grid memo lookup.
func (m *MetricsService) RecordGridCache(hit bool) {
	if m == nil {
		return
	}
	m.gridCache.WithLabelValues(hitLabel(hit)).Inc()
}

func hitLabel(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}
