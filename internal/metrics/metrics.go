// Package metrics holds the domain Prometheus collectors. A nil *Metrics is valid
// and records nothing, which keeps tests free of registry setup.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	uploads       *prometheus.CounterVec
	signatures    *prometheus.CounterVec
	verifications *prometheus.CounterVec
	confirmations *prometheus.HistogramVec
	indexed       prometheus.Counter
}

// New registers the domain collectors on reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "suidoc_uploads_total",
			Help: "Document uploads by result.",
		}, []string{"result"}),
		signatures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "suidoc_signatures_total",
			Help: "Signature submissions by result.",
		}, []string{"result"}),
		verifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "suidoc_verifications_total",
			Help: "Signature verifications by outcome.",
		}, []string{"valid"}),
		confirmations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "suidoc_chain_confirmation_seconds",
			Help:    "Time from transaction submission to confirmation.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		}, []string{"function", "result"}),
		indexed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "suidoc_indexed_signature_events_total",
			Help: "On-chain signature events written to the index.",
		}),
	}

	for _, c := range []prometheus.Collector{m.uploads, m.signatures, m.verifications, m.confirmations, m.indexed} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *Metrics) Upload(err error) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(result(err)).Inc()
}

func (m *Metrics) Signature(err error) {
	if m == nil {
		return
	}
	m.signatures.WithLabelValues(result(err)).Inc()
}

func (m *Metrics) Verification(valid bool) {
	if m == nil {
		return
	}
	v := "false"
	if valid {
		v = "true"
	}
	m.verifications.WithLabelValues(v).Inc()
}

// Confirmation records how long a Move call took to confirm.
func (m *Metrics) Confirmation(function string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.confirmations.WithLabelValues(function, result(err)).Observe(d.Seconds())
}

func (m *Metrics) Indexed(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.indexed.Add(float64(n))
}
