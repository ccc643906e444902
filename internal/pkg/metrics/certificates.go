package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CertificateMetrics records leaving certificate issuance.
type CertificateMetrics struct {
	issued     *prometheus.CounterVec
	collisions prometheus.Counter
	failures   *prometheus.CounterVec
	duration   prometheus.Histogram
}

// NewCertificateMetrics registers the issuance metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewCertificateMetrics(reg prometheus.Registerer) *CertificateMetrics {
	if reg == nil {
		return &CertificateMetrics{}
	}
	issued := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "leaving_certificates_issued_total",
		Help: "Leaving certificates issued, by reason.",
	}, []string{"reason"})
	collisions := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "leaving_certificate_number_collisions_total",
		Help: "Certificate number collisions that triggered a retry.",
	})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "leaving_certificate_issue_failures_total",
		Help: "Failed issuance attempts, by error kind.",
	}, []string{"kind"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "leaving_certificate_issue_duration_seconds",
		Help:    "Time spent issuing a leaving certificate.",
		Buckets: prometheus.DefBuckets,
	})
	reg.MustRegister(issued, collisions, failures, duration)
	return &CertificateMetrics{
		issued:     issued,
		collisions: collisions,
		failures:   failures,
		duration:   duration,
	}
}

func (m *CertificateMetrics) IncIssued(reason string) {
	if m == nil || m.issued == nil {
		return
	}
	m.issued.WithLabelValues(normalizeLabel(reason)).Inc()
}

func (m *CertificateMetrics) IncCollision() {
	if m == nil || m.collisions == nil {
		return
	}
	m.collisions.Inc()
}

func (m *CertificateMetrics) IncFailure(kind string) {
	if m == nil || m.failures == nil {
		return
	}
	m.failures.WithLabelValues(normalizeLabel(kind)).Inc()
}

func (m *CertificateMetrics) ObserveDuration(d time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.Observe(d.Seconds())
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
