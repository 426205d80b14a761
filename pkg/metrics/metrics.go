// Package metrics provides Prometheus metrics for the participants
// dashboard service. A single Manager owns a private registry; the rest of
// the codebase records through package-level helpers so call sites stay
// one-liners.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metric namespace constants.
const (
	namespace = "festidash"

	subsystemHTTP = "http"
	subsystemSync = "sync"
	subsystemGeo  = "geo"
	subsystemSys  = "system"
)

// Manager owns every metric and the registry they live in.
type Manager struct {
	registry *prometheus.Registry

	// HTTP surface
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Refresh pipeline
	syncTotal       prometheus.Counter
	syncErrors      prometheus.Counter
	syncDuration    prometheus.Histogram
	lastSyncUnix    prometheus.Gauge
	snapshotSaves   prometheus.Counter
	snapshotErrors  prometheus.Counter
	participants    prometheus.Gauge
	scanned         prometheus.Gauge
	withPostalCode  prometheus.Gauge
	withBirthDate   prometheus.Gauge

	// Commune lookups
	geoLookups      prometheus.Counter
	geoLookupErrors prometheus.Counter
	geoCacheHits    prometheus.Counter

	// Runtime health
	memoryBytes prometheus.Gauge
	goroutines  prometheus.Gauge
}

// NewManager builds a Manager with its own registry.
func NewManager() *Manager {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Manager{
		registry: registry,

		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystemHTTP,
			Name: "requests_total",
			Help: "HTTP requests by endpoint, method and status code.",
		}, []string{"endpoint", "method", "status"}),
		httpRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: subsystemHTTP,
			Name:    "request_duration_ms",
			Help:    "HTTP request latency in milliseconds.",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		}, []string{"endpoint", "method"}),

		syncTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystemSync,
			Name: "refreshes_total",
			Help: "Completed refresh attempts, failures included.",
		}),
		syncErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystemSync,
			Name: "refresh_errors_total",
			Help: "Failed refresh attempts.",
		}),
		syncDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: subsystemSync,
			Name:    "refresh_duration_ms",
			Help:    "Full refresh latency in milliseconds.",
			Buckets: []float64{100, 250, 500, 1000, 2500, 5000, 10000, 30000},
		}),
		lastSyncUnix: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: subsystemSync,
			Name: "last_success_unix",
			Help: "Unix time of the last successful refresh.",
		}),
		snapshotSaves: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystemSync,
			Name: "snapshot_saves_total",
			Help: "Snapshots persisted to the store.",
		}),
		snapshotErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystemSync,
			Name: "snapshot_save_errors_total",
			Help: "Snapshot persistence failures.",
		}),
		participants: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: subsystemSync,
			Name: "participants_total",
			Help: "Participants in the current collection.",
		}),
		scanned: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: subsystemSync,
			Name: "participants_scanned",
			Help: "Participants checked in at the gate.",
		}),
		withPostalCode: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: subsystemSync,
			Name: "participants_with_postal_code",
			Help: "Participants with a derivable postal code.",
		}),
		withBirthDate: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: subsystemSync,
			Name: "participants_with_birth_date",
			Help: "Participants with a derivable birth date.",
		}),

		geoLookups: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystemGeo,
			Name: "lookups_total",
			Help: "Successful commune lookups.",
		}),
		geoLookupErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystemGeo,
			Name: "lookup_errors_total",
			Help: "Failed commune lookups (skipped codes).",
		}),
		geoCacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystemGeo,
			Name: "cache_hits_total",
			Help: "Commune lookups served from the memo cache.",
		}),

		memoryBytes: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: subsystemSys,
			Name: "memory_bytes",
			Help: "Allocated heap bytes.",
		}),
		goroutines: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: subsystemSys,
			Name: "goroutines",
			Help: "Current goroutine count.",
		}),
	}
}

var (
	defaultManager *Manager
	managerOnce    sync.Once
)

// get returns the process-wide manager, creating it on first use.
func get() *Manager {
	managerOnce.Do(func() {
		defaultManager = NewManager()
	})
	return defaultManager
}

// GetRegistry exposes the registry for the /healthz handler.
func GetRegistry() *prometheus.Registry {
	return get().registry
}

// RecordHTTPRequest counts one served request.
func RecordHTTPRequest(endpoint, method, status string) {
	get().httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

// RecordHTTPRequestDuration observes one request latency in milliseconds.
func RecordHTTPRequestDuration(endpoint, method string, ms float64) {
	get().httpRequestDuration.WithLabelValues(endpoint, method).Observe(ms)
}

// RecordRefresh records one refresh attempt and its latency.
func RecordRefresh(ms float64, failed bool) {
	m := get()
	m.syncTotal.Inc()
	m.syncDuration.Observe(ms)
	if failed {
		m.syncErrors.Inc()
	}
}

// UpdateLastSyncTime marks the time of the last successful refresh.
func UpdateLastSyncTime(unix int64) {
	get().lastSyncUnix.Set(float64(unix))
}

// RecordSnapshotSave records a snapshot persistence attempt.
func RecordSnapshotSave(failed bool) {
	m := get()
	if failed {
		m.snapshotErrors.Inc()
		return
	}
	m.snapshotSaves.Inc()
}

// UpdateParticipantCounts publishes the summary counters of the current
// collection.
func UpdateParticipantCounts(total, scanned, withPostalCode, withBirthDate int) {
	m := get()
	m.participants.Set(float64(total))
	m.scanned.Set(float64(scanned))
	m.withPostalCode.Set(float64(withPostalCode))
	m.withBirthDate.Set(float64(withBirthDate))
}

// RecordGeoLookup counts a successful commune lookup.
func RecordGeoLookup() { get().geoLookups.Inc() }

// RecordGeoLookupError counts a skipped postal code.
func RecordGeoLookupError() { get().geoLookupErrors.Inc() }

// RecordGeoCacheHit counts a lookup served from the memo cache.
func RecordGeoCacheHit() { get().geoCacheHits.Inc() }

// UpdateSystemMemoryUsage publishes allocated heap bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	get().memoryBytes.Set(float64(bytes))
}

// UpdateSystemGoroutineCount publishes the goroutine count.
func UpdateSystemGoroutineCount(n int) {
	get().goroutines.Set(float64(n))
}
