package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	importRows = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "backend_import_rows_total",
		Help: "CSV import rows by outcome",
	}, []string{"outcome"}) // inserted / failed / skipped

	queryClassified = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "backend_query_classified_total",
		Help: "Query classifications by label",
	}, []string{"label"})

	queryLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "backend_query_latency_ms",
		Help:    "End-to-end /api/query latency in milliseconds",
		Buckets: []float64{50, 100, 250, 500, 1000, 2000, 5000, 10000, 30000},
	}, []string{"stage"}) // classify / retrieve / total

	cacheHits = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "backend_answer_cache_total",
		Help: "Answer cache lookups",
	}, []string{"result"}) // hit / miss

	upstreamErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "backend_upstream_errors_total",
		Help: "Failures of outbound model calls",
	}, []string{"component"})
)

func ensureRegistered() {
	once.Do(func() {
		prometheus.MustRegister(importRows, queryClassified, queryLatency, cacheHits, upstreamErrors)
	})
}

// IncImportRow records one row outcome during CSV import.
func IncImportRow(outcome string) {
	ensureRegistered()
	importRows.WithLabelValues(outcome).Inc()
}

// IncClassified records the label assigned to a query.
func IncClassified(label string) {
	ensureRegistered()
	queryClassified.WithLabelValues(label).Inc()
}

// ObserveQueryStage records latency for one stage of the query path.
func ObserveQueryStage(stage string, start time.Time) {
	ensureRegistered()
	queryLatency.WithLabelValues(stage).Observe(float64(time.Since(start).Milliseconds()))
}

// IncCache records an answer cache lookup result.
func IncCache(result string) {
	ensureRegistered()
	cacheHits.WithLabelValues(result).Inc()
}

// IncUpstreamError counts a failed outbound model call.
func IncUpstreamError(component string) {
	ensureRegistered()
	upstreamErrors.WithLabelValues(component).Inc()
}
