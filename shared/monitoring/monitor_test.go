package monitoring

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

func TestMonitorHealth(t *testing.T) {
	m := NewMonitor(zaptest.NewLogger(t))
	assert.True(t, m.IsHealthy())
	assert.Equal(t, "No runs yet", m.GetStatusSummary())

	m.RecordCriticalFailure(errors.New("yt-dlp missing"), time.Second)
	assert.False(t, m.IsHealthy())
	assert.Contains(t, m.GetStatusSummary(), "Last run failed")

	m.RecordPartialFailure(errors.New("no captions yet"), time.Second)
	assert.False(t, m.IsHealthy(), "partial failures do not change health")

	m.RecordSuccess("analysis a1b2c3d4 saved", time.Second)
	assert.True(t, m.IsHealthy())
	assert.Contains(t, m.GetStatusSummary(), "(2 runs, 1 failed)")

	runs := m.Metrics().RunsTotal
	assert.Equal(t, 1.0, testutil.ToFloat64(runs.WithLabelValues(ResultSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(runs.WithLabelValues(ResultPartial)))
	assert.Equal(t, 1.0, testutil.ToFloat64(runs.WithLabelValues(ResultCritical)))
	assert.Greater(t, testutil.ToFloat64(m.Metrics().LastSuccess), 0.0)
}

func TestHealthServerHandler(t *testing.T) {
	m := NewMonitor(zaptest.NewLogger(t))
	h := NewHealthServer(m, 0, zaptest.NewLogger(t))
	srv := httptest.NewServer(h.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	m.RecordCriticalFailure(errors.New("boom"), time.Millisecond)

	resp, err = http.Get(srv.URL + "/health")
	assert.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	resp.Body.Close()

	resp, err = http.Get(srv.URL + "/metrics")
	assert.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)
	resp.Body.Close()
	assert.Contains(t, string(body), `pinescript_agents_runs_total{result="critical"} 1`)

	resp, err = http.Get(srv.URL + "/status")
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/plain", resp.Header.Get("Content-Type"))
	resp.Body.Close()
}
