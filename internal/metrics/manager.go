package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fetch results used as label values
const (
	FetchOK     = "ok"
	FetchCached = "cached"
	FetchError  = "error"
)

// Manager owns the run metrics. A disabled Manager accepts every call and records nothing.
type Manager struct {
	namespace string
	buckets   []float64
	enabled   bool
	registry  *prometheus.Registry

	fetches       *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	items         *prometheus.CounterVec
	itemDuration  prometheus.Histogram
	images        *prometheus.CounterVec
	lastRun       prometheus.Gauge
}

// NewManager creates a Manager on its own registry unless one is given
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "phonespec",
		buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		enabled:   true,
		registry:  prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.fetches = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "fetches_total",
		Help:      "Page fetches by source and result",
	}, []string{"source", "result"})

	m.fetchDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "fetch_duration_seconds",
		Help:      "Page fetch latency",
		Buckets:   m.buckets,
	}, []string{"source"})

	m.items = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "items_total",
		Help:      "Processed items by source and status",
	}, []string{"source", "status"})

	m.itemDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "item_duration_seconds",
		Help:      "Time to process one item end to end",
		Buckets:   m.buckets,
	})

	m.images = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "image_backfill_total",
		Help:      "Image backfill outcomes",
	}, []string{"outcome"})

	m.lastRun = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix time the last run finished",
	})
}

// ObserveFetch records one fetch
func (m *Manager) ObserveFetch(source string, d time.Duration, fromCache bool, err error) {
	if !m.enabled {
		return
	}
	result := FetchOK
	switch {
	case err != nil:
		result = FetchError
	case fromCache:
		result = FetchCached
	}
	m.fetches.WithLabelValues(source, result).Inc()
	if !fromCache {
		m.fetchDuration.WithLabelValues(source).Observe(d.Seconds())
	}
}

// ObserveItem records one processed item
func (m *Manager) ObserveItem(source, status string, d time.Duration) {
	if !m.enabled {
		return
	}
	m.items.WithLabelValues(source, status).Inc()
	m.itemDuration.Observe(d.Seconds())
}

// ObserveBackfill adds image backfill outcome counts
func (m *Manager) ObserveBackfill(updated, skipped, notFound, failed int) {
	if !m.enabled {
		return
	}
	m.images.WithLabelValues("updated").Add(float64(updated))
	m.images.WithLabelValues("skipped").Add(float64(skipped))
	m.images.WithLabelValues("not_found").Add(float64(notFound))
	m.images.WithLabelValues("failed").Add(float64(failed))
}

// RunFinished stamps the end of a run
func (m *Manager) RunFinished(t time.Time) {
	if !m.enabled {
		return
	}
	m.lastRun.Set(float64(t.Unix()))
}

// Registry returns the registry metrics are gathered from
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile dumps every metric to path for the node_exporter textfile collector
func (m *Manager) WriteTextfile(path string) error {
	if !m.enabled {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
