package app

import (
	"strconv"
	"time"

	"github.com/cavelabs/cave/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects the execution statistics of a Ledger.
type Metrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewMetrics creates the ledger collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cave",
			Name:      "operations_total",
			Help:      "Number of executed operations by phase, message path and result code.",
		}, []string{"phase", "path", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "cave",
			Name:      "operation_duration_seconds",
			Help:      "Time spent executing an operation.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"phase", "path"}),
	}
	reg.MustRegister(m.operations, m.duration)
	return m
}

// observe records one execution. A nil Metrics records nothing.
func (m *Metrics) observe(phase, path string, start time.Time, err error) {
	if m == nil {
		return
	}
	code, _ := errors.ABCIInfo(err, false)
	m.operations.WithLabelValues(phase, path, strconv.FormatUint(uint64(code), 10)).Inc()
	m.duration.WithLabelValues(phase, path).Observe(time.Since(start).Seconds())
}
