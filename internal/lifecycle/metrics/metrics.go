package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label value for successful operations. Failures are labelled with
// their error code.
const OutcomeOK = "ok"

// Metrics provides observability for lifecycle operations across all entity kinds.
type Metrics struct {
	Operations       *prometheus.CounterVec
	OperationLatency *prometheus.HistogramVec
	RecordsCreated   *prometheus.CounterVec
	StaleWrites      *prometheus.CounterVec
}

// New registers the lifecycle metrics with reg. Pass prometheus.DefaultRegisterer
// in production and a fresh prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Operations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "channelling_lifecycle_operations_total",
			Help: "Lifecycle operations by entity kind, operation and outcome",
		}, []string{"kind", "op", "outcome"}),
		OperationLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "channelling_lifecycle_operation_duration_seconds",
			Help:    "Duration of lifecycle operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"kind", "op"}),
		RecordsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "channelling_records_created_total",
			Help: "Total number of records created",
		}, []string{"kind"}),
		StaleWrites: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "channelling_stale_writes_total",
			Help: "Updates rejected because the caller held an outdated version",
		}, []string{"kind"}),
	}
}

// Observe records one finished operation. Call with time.Now() taken at the
// start of the operation.
func (m *Metrics) Observe(kind, op, outcome string, start time.Time) {
	m.Operations.WithLabelValues(kind, op, outcome).Inc()
	m.OperationLatency.WithLabelValues(kind, op).Observe(time.Since(start).Seconds())
}

// IncrementCreated records a successful create.
func (m *Metrics) IncrementCreated(kind string) {
	m.RecordsCreated.WithLabelValues(kind).Inc()
}

// IncrementStaleWrite records a rejected stale update.
func (m *Metrics) IncrementStaleWrite(kind string) {
	m.StaleWrites.WithLabelValues(kind).Inc()
}
