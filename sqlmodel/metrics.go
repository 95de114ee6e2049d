package sqlmodel

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts the statements a DB executes. A nil *Metrics records
// nothing.
type Metrics struct {
	Statements   *prometheus.CounterVec
	Failures     *prometheus.CounterVec
	RowsInserted prometheus.Counter
}

// Statement kinds used as the "kind" label.
const (
	statementCreate = "create"
	statementInsert = "insert"
	statementExec   = "exec"
)

// NewMetrics creates the counters and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Statements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sqlmodel",
			Name:      "statements_total",
			Help:      "Total number of statements executed, by kind.",
		}, []string{"kind"}),
		Failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sqlmodel",
			Name:      "statement_failures_total",
			Help:      "Total number of statements that failed, by kind.",
		}, []string{"kind"}),
		RowsInserted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sqlmodel",
			Name:      "rows_inserted_total",
			Help:      "Total number of rows inserted.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Statements, m.Failures, m.RowsInserted)
	}
	return m
}

func (m *Metrics) observe(kind string, err error) {
	if m == nil {
		return
	}
	m.Statements.WithLabelValues(kind).Inc()
	if err != nil {
		m.Failures.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) inserted(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.RowsInserted.Add(float64(n))
}
