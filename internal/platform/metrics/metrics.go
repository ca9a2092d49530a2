package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments shared across features. Feature
// services receive this via their constructors; a nil *Metrics disables
// recording, which keeps unit tests free of registry collisions.
type Metrics struct {
	IdentitiesRegistered *prometheus.CounterVec
	BindingsCreated      prometheus.Counter
	ShiftsStarted        *prometheus.CounterVec
	ShiftsEnded          *prometheus.CounterVec
	ScansTotal           *prometheus.CounterVec
	RiskScore            prometheus.Histogram
	RequestDuration      *prometheus.HistogramVec
}

// New creates and registers all instruments on the default registry.
func New() *Metrics {
	return &Metrics{
		IdentitiesRegistered: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "shifttrust_identities_registered_total",
			Help: "Identities registered, by role.",
		}, []string{"role"}),
		BindingsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "shifttrust_bindings_created_total",
			Help: "Workplace bindings created.",
		}),
		ShiftsStarted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "shifttrust_shifts_started_total",
			Help: "Shifts started, by risk bucket.",
		}, []string{"bucket"}),
		ShiftsEnded: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "shifttrust_shifts_ended_total",
			Help: "Shifts ended, by trigger (supervisor|expiry).",
		}, []string{"trigger"}),
		ScansTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "shifttrust_scans_total",
			Help: "Token verification scans, by caller role and outcome.",
		}, []string{"role", "outcome"}),
		RiskScore: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "shifttrust_risk_score",
			Help:    "Risk scores computed at shift start.",
			Buckets: []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "shifttrust_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status class.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}

// ObserveScan records a scan outcome. Safe on a nil receiver.
func (m *Metrics) ObserveScan(role, outcome string) {
	if m == nil {
		return
	}
	m.ScansTotal.WithLabelValues(role, outcome).Inc()
}

// ObserveShiftStart records a started shift and its score. Safe on nil.
func (m *Metrics) ObserveShiftStart(bucket string, score int) {
	if m == nil {
		return
	}
	m.ShiftsStarted.WithLabelValues(bucket).Inc()
	m.RiskScore.Observe(float64(score))
}

// ObserveShiftEnd records an ended shift. Safe on nil.
func (m *Metrics) ObserveShiftEnd(trigger string) {
	if m == nil {
		return
	}
	m.ShiftsEnded.WithLabelValues(trigger).Inc()
}

// ObserveRegistration records a registration. Safe on nil.
func (m *Metrics) ObserveRegistration(role string) {
	if m == nil {
		return
	}
	m.IdentitiesRegistered.WithLabelValues(role).Inc()
}

// ObserveBinding records a created binding. Safe on nil.
func (m *Metrics) ObserveBinding() {
	if m == nil {
		return
	}
	m.BindingsCreated.Inc()
}
