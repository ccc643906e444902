package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCertificateMetrics_Counts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCertificateMetrics(reg)

	m.IncIssued("transfer")
	m.IncIssued("transfer")
	m.IncIssued("")
	m.IncCollision()
	m.IncFailure("CONFLICT")
	m.ObserveDuration(15 * time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.issued.WithLabelValues("transfer")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.issued.WithLabelValues("unknown")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.collisions))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("CONFLICT")))
}

func TestCertificateMetrics_NilSafe(t *testing.T) {
	var m *CertificateMetrics
	m.IncIssued("other")
	m.IncCollision()
	m.IncFailure("x")
	m.ObserveDuration(time.Second)

	empty := NewCertificateMetrics(nil)
	empty.IncIssued("other")
	empty.IncCollision()
}
