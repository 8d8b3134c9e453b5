package dataset

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// metricsDataset holds Prometheus metrics for query planning and cursors.
type metricsDataset struct {
	once sync.Once

	queries     *prometheus.CounterVec
	pushdowns   *prometheus.CounterVec
	fallbacks   *prometheus.CounterVec
	skipped     prometheus.Counter
	openCursors prometheus.Gauge
}

var dsMetrics metricsDataset

func (m *metricsDataset) init() {
	m.once.Do(func() {
		m.queries = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "geofeat_queries_total", Help: "Dataset operations by kind"}, []string{"op"})
		m.pushdowns = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "geofeat_pushdown_total", Help: "Clauses evaluated by the store"}, []string{"clause"})
		m.fallbacks = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "geofeat_fallback_total", Help: "Clauses evaluated in software"}, []string{"clause"})
		m.skipped = prometheus.NewCounter(prometheus.CounterOpts{Name: "geofeat_skipped_records_total", Help: "Undecodable records skipped by lenient reads"})
		m.openCursors = prometheus.NewGauge(prometheus.GaugeOpts{Name: "geofeat_open_cursors", Help: "Cursors holding a native statement or inserter"})

		prometheus.MustRegister(m.queries, m.pushdowns, m.fallbacks, m.skipped, m.openCursors)
	})
}

// record helpers
func recordQuery(op string) { dsMetrics.init(); dsMetrics.queries.WithLabelValues(op).Inc() }
func recordSkipped()        { dsMetrics.init(); dsMetrics.skipped.Inc() }
func cursorOpened()         { dsMetrics.init(); dsMetrics.openCursors.Inc() }
func cursorClosed()         { dsMetrics.init(); dsMetrics.openCursors.Dec() }

func recordClause(clause string, pushed bool) {
	dsMetrics.init()
	if pushed {
		dsMetrics.pushdowns.WithLabelValues(clause).Inc()
		return
	}
	dsMetrics.fallbacks.WithLabelValues(clause).Inc()
}
