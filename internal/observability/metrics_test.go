package observability

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/complaint-service/internal/config"
)

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics()

	m.RecordSubmission("WiFi")
	m.RecordSubmission("WiFi")
	m.RecordTransition("Submitted", "Resolved")
	m.RecordNotification("welcome")
	m.RecordPersistenceFailure("save")
	m.RecordRequest("/complaints", "GET", 200, 5*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.complaintsSubmitted.WithLabelValues("WiFi")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.statusTransitions.WithLabelValues("Submitted", "Resolved")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.notifications.WithLabelValues("welcome")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.persistenceFailures.WithLabelValues("save")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestCount.WithLabelValues("/complaints", "GET", "200")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordSubmission("Food")
		m.RecordError("/x", "GET", "NOT_FOUND")
		m.RecordScheduledTask("fired")
	})
}

func TestMetricsHandlerExposesRegistry(t *testing.T) {
	m := NewMetrics()
	m.RecordNotification("broadcast")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `complaints_notifications_dispatched_total{type="broadcast"} 1`))
}

func TestNewLoggerFallsBackOnBadLevel(t *testing.T) {
	logger, err := NewLogger(config.LoggerConfig{Level: "loud", Encoding: "json"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(0))
}
