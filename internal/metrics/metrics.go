package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the engine's Prometheus collectors, registered on the
// default registry served at /metrics.
type Metrics struct {
	ScansTotal      *prometheus.CounterVec
	ReaderConnected *prometheus.GaugeVec
	CurrentlyInside prometheus.Gauge
}

// New registers and returns the collectors. Call once per process.
func New() *Metrics {
	return &Metrics{
		ScansTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rfidattend",
			Name:      "scans_total",
			Help:      "Processed tag scans by outcome.",
		}, []string{"outcome"}),
		ReaderConnected: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "rfidattend",
			Name:      "reader_connected",
			Help:      "Reader connectivity (1 connected, 0 disconnected).",
		}, []string{"reader_id"}),
		CurrentlyInside: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "rfidattend",
			Name:      "currently_inside",
			Help:      "Open attendance sessions for the current day.",
		}),
	}
}

// ScanProcessed counts one scan outcome.
func (m *Metrics) ScanProcessed(outcome string) {
	m.ScansTotal.WithLabelValues(outcome).Inc()
}

// ReaderStatus records a connectivity flip.
func (m *Metrics) ReaderStatus(readerID string, connected bool) {
	v := 0.0
	if connected {
		v = 1.0
	}
	m.ReaderConnected.WithLabelValues(readerID).Set(v)
}
