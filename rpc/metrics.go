package rpc

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"xdao.co/zkcred/credential"
)

// Metrics holds Prometheus collectors for the validation service.
type Metrics struct {
	Validations       *prometheus.CounterVec
	ValidationLatency prometheus.Histogram
	Commits           *prometheus.CounterVec
}

// NewMetrics registers the collectors with reg. A nil reg uses the default registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		Validations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "zkcred_validations_total",
			Help: "Validation runs, labeled by result and abort code",
		}, []string{"result", "code"}),
		ValidationLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "zkcred_validation_seconds",
			Help:    "Latency of decode plus validation in seconds",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		}),
		Commits: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "zkcred_journal_commits_total",
			Help: "Journal commits of accepted outputs, labeled by result",
		}, []string{"result"}),
	}
}

func (m *Metrics) observeValidation(err error, d time.Duration) {
	if m == nil {
		return
	}
	m.ValidationLatency.Observe(d.Seconds())
	m.Validations.WithLabelValues(resultLabel(err), string(credential.CodeOf(err))).Inc()
}

func (m *Metrics) observeCommit(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.Commits.WithLabelValues("error").Inc()
		return
	}
	m.Commits.WithLabelValues("ok").Inc()
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "accepted"
	case credential.IsKind(err, credential.KindInternal), credential.CodeOf(err) == "":
		return "error"
	default:
		return "rejected"
	}
}
