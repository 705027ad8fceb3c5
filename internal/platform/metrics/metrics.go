package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	VisitorsRegistered prometheus.Counter
	VisitorsCheckedOut prometheus.Counter
	AdmissionRejected  *prometheus.CounterVec
	AuditFailures      prometheus.Counter
	OperatorLogins     prometheus.Counter
	RequestDuration    *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		VisitorsRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "portaria_visitors_registered_total",
			Help: "Total number of visitor registrations accepted",
		}),
		VisitorsCheckedOut: promauto.NewCounter(prometheus.CounterOpts{
			Name: "portaria_visitors_checked_out_total",
			Help: "Total number of visitor checkouts completed",
		}),
		AdmissionRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "portaria_admission_rejected_total",
			Help: "Registrations rejected by the admission policy, by reason",
		}, []string{"reason"}),
		AuditFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "portaria_audit_log_failures_total",
			Help: "Audit log appends or sink publishes that failed and were swallowed",
		}),
		OperatorLogins: promauto.NewCounter(prometheus.CounterOpts{
			Name: "portaria_operator_logins_total",
			Help: "Successful operator logins",
		}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "portaria_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}

// IncrementVisitorsRegistered increments the registration counter by 1.
func (m *Metrics) IncrementVisitorsRegistered() {
	if m != nil {
		m.VisitorsRegistered.Inc()
	}
}

// IncrementVisitorsCheckedOut increments the checkout counter by 1.
func (m *Metrics) IncrementVisitorsCheckedOut() {
	if m != nil {
		m.VisitorsCheckedOut.Inc()
	}
}

// IncrementAdmissionRejected counts a rejected registration by reason code.
func (m *Metrics) IncrementAdmissionRejected(reason string) {
	if m != nil {
		m.AdmissionRejected.WithLabelValues(reason).Inc()
	}
}

// IncrementAuditFailures counts a swallowed audit failure.
func (m *Metrics) IncrementAuditFailures() {
	if m != nil {
		m.AuditFailures.Inc()
	}
}

// IncrementOperatorLogins counts a successful login.
func (m *Metrics) IncrementOperatorLogins() {
	if m != nil {
		m.OperatorLogins.Inc()
	}
}

// ObserveRequest records one HTTP request observation.
func (m *Metrics) ObserveRequest(route, status string, d time.Duration) {
	if m != nil {
		m.RequestDuration.WithLabelValues(route, status).Observe(d.Seconds())
	}
}
