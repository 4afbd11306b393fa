package logger

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// OperationTotal counts maintenance operations by outcome
	OperationTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "equipcore_operation_total",
			Help: "Total number of maintenance operations",
		},
		[]string{"operation", "status"},
	)

	// OperationDuration measures maintenance operation latency
	OperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "equipcore_operation_duration_seconds",
			Help:    "Maintenance operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// ReconstructionRecords observes how many records feed each incident
	// reconstruction pass
	ReconstructionRecords = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "equipcore_reconstruction_records",
			Help:    "Number of records per incident reconstruction pass",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
		},
	)

	// EquipmentByStatus tracks equipment count by status
	EquipmentByStatus = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "equipcore_equipment_by_status",
			Help: "Number of equipment by status",
		},
		[]string{"status"},
	)

	// CacheHitTotal counts equipment cache hits and misses
	CacheHitTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "equipcore_cache_hit_total",
			Help: "Total number of cache hits and misses",
		},
		[]string{"result"}, // "hit" or "miss"
	)
)

// InitMetrics registers Prometheus metrics
func InitMetrics() {
	prometheus.MustRegister(OperationTotal)
	prometheus.MustRegister(OperationDuration)
	prometheus.MustRegister(ReconstructionRecords)
	prometheus.MustRegister(EquipmentByStatus)
	prometheus.MustRegister(CacheHitTotal)
}

// MetricsHandler returns HTTP handler for Prometheus metrics
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
