// Package metrics holds the prometheus collectors for fetches, reports, and the dashboard.
package metrics

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "abyss"

var (
	registerOnce   sync.Once
	fetchRequests  *prometheus.CounterVec
	fetchDuration  *prometheus.HistogramVec
	reportsWritten *prometheus.CounterVec
	dashboardRows  prometheus.Gauge
)

// MustRegister registers the collectors with the default registry. Safe to call more than once.
func MustRegister() {
	registerOnce.Do(func() {
		fetchRequests = registerCounterVec(prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "fetch",
				Name:      "requests_total",
				Help:      "Upstream fetches by source and result.",
			},
			[]string{"source", "status"},
		))
		fetchDuration = registerHistogramVec(prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "fetch",
				Name:      "duration_seconds",
				Help:      "Upstream fetch latency by source.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"source"},
		))
		reportsWritten = registerCounterVec(prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "report",
				Name:      "written_total",
				Help:      "Static report files written, by report.",
			},
			[]string{"report"},
		))
		dashboardRows = registerGauge(prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "dashboard",
			Name:      "rows",
			Help:      "Rows in the utilization table currently served.",
		}))

		registerRuntimeCollectors()
	})
}

// ObserveFetch records one upstream fetch.
func ObserveFetch(source string, duration time.Duration, err error) {
	if fetchRequests == nil || fetchDuration == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	label := normalizeLabel(source, "unknown")
	fetchRequests.WithLabelValues(label, status).Inc()
	fetchDuration.WithLabelValues(label).Observe(duration.Seconds())
}

// RecordReport counts a written report file.
func RecordReport(report string) {
	if reportsWritten == nil {
		return
	}
	reportsWritten.WithLabelValues(normalizeLabel(report, "unknown")).Inc()
}

// SetDashboardRows publishes the number of rows served by the dashboard.
func SetDashboardRows(n int) {
	if dashboardRows == nil {
		return
	}
	dashboardRows.Set(float64(n))
}

func normalizeLabel(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}

func registerCounterVec(vec *prometheus.CounterVec) *prometheus.CounterVec {
	if err := prometheus.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing
			}
		}
		panic(err)
	}
	return vec
}

func registerHistogramVec(vec *prometheus.HistogramVec) *prometheus.HistogramVec {
	if err := prometheus.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing
			}
		}
		panic(err)
	}
	return vec
}

func registerGauge(g prometheus.Gauge) prometheus.Gauge {
	if err := prometheus.Register(g); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing
			}
		}
		panic(err)
	}
	return g
}

func registerRuntimeCollectors() {
	for _, c := range []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		if err := prometheus.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				panic(err)
			}
		}
	}
}
