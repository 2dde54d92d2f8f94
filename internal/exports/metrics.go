package exports

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records export outcomes and sizes.
type Metrics struct {
	exports *prometheus.CounterVec
	rows    prometheus.Histogram
}

// NewMetrics registers the export collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		exports: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pestilab_exports_total",
			Help: "Export attempts by format and outcome (ok, empty, failed).",
		}, []string{"format", "outcome"}),
		rows: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "pestilab_export_rows",
			Help:    "Rows per successful export.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),
	}
}

func (m *Metrics) observe(f Format, outcome string, rows int) {
	if m == nil {
		return
	}
	m.exports.WithLabelValues(string(f), outcome).Inc()
	if outcome == "ok" {
		m.rows.Observe(float64(rows))
	}
}
