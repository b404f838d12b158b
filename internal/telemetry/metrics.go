package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	ShipmentsTotal    *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	CarrierErrors     *prometheus.CounterVec
}

// NewMetrics creates and registers Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		ShipmentsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dispatch_shipments_total",
				Help: "Total number of shipment operations by operation, carrier, and status",
			},
			[]string{"operation", "carrier", "status"},
		),
		OperationDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dispatch_operation_duration_seconds",
				Help:    "Operation duration in seconds by operation and carrier",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "carrier"},
		),
		CarrierErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dispatch_carrier_errors_total",
				Help: "Total carrier API errors by carrier and error kind",
			},
			[]string{"carrier", "kind"},
		),
	}
}

// RecordOperation records a shipment operation metric.
func (m *Metrics) RecordOperation(operation, carrier, status string, duration float64) {
	m.ShipmentsTotal.WithLabelValues(operation, carrier, status).Inc()
	m.OperationDuration.WithLabelValues(operation, carrier).Observe(duration)
}

// RecordError records a carrier error metric.
func (m *Metrics) RecordError(carrier, kind string) {
	m.CarrierErrors.WithLabelValues(carrier, kind).Inc()
}
