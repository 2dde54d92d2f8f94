package layout

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts renders and symbols that failed to encode.
type Metrics struct {
	renders  *prometheus.CounterVec
	failures *prometheus.CounterVec
}

// NewMetrics registers the layout collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		renders: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pestilab_label_renders_total",
			Help: "Label layouts rendered, by mode (card or sheet).",
		}, []string{"mode"}),
		failures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pestilab_symbol_failures_total",
			Help: "Barcode and QR symbols that could not be encoded.",
		}, []string{"kind"}),
	}
}

func (m *Metrics) rendered(mode string) {
	if m == nil {
		return
	}
	m.renders.WithLabelValues(mode).Inc()
}

func (m *Metrics) failed(kind Kind) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(string(kind)).Inc()
}
