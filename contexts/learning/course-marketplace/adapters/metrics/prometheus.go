package metrics

import (
	"time"

	"academy/contexts/learning/course-marketplace/domain/entities"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the course marketplace.
// Tracks use-case outcomes/latency and payment settlement outcomes.
type Metrics struct {
	OperationsTotal   *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	SettlementsTotal  *prometheus.CounterVec
}

// New registers the marketplace collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		OperationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "academy_marketplace_operations_total",
			Help: "Total marketplace operations by operation and outcome",
		}, []string{"operation", "outcome"}),
		OperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "academy_marketplace_operation_duration_seconds",
			Help:    "Duration of marketplace operations (purchase includes the payment call)",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"operation"}),
		SettlementsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "academy_marketplace_settlements_total",
			Help: "Total payment attempts by terminal status",
		}, []string{"status"}),
	}
}

// ObserveOperation records one execution. Call with time.Now() taken at the
// start of the operation.
func (m *Metrics) ObserveOperation(operation string, outcome string, started time.Time) {
	m.OperationsTotal.WithLabelValues(operation, outcome).Inc()
	m.OperationDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}

func (m *Metrics) IncSettlement(status entities.TransactionStatus) {
	m.SettlementsTotal.WithLabelValues(string(status)).Inc()
}
