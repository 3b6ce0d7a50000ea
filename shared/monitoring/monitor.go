package monitoring

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

type Monitor struct {
	mu             sync.RWMutex
	logger         *zap.Logger
	metrics        *Metrics
	lastRunSuccess bool
	lastRunTime    time.Time
	runs           int
	failures       int
}

func NewMonitor(logger *zap.Logger) *Monitor {
	return &Monitor{logger: logger, metrics: NewMetrics()}
}

// Metrics returns the Prometheus metrics fed by this monitor.
func (m *Monitor) Metrics() *Metrics {
	return m.metrics
}

func (m *Monitor) RecordSuccess(summary string, duration time.Duration) {
	m.mu.Lock()
	m.lastRunSuccess = true
	m.lastRunTime = time.Now()
	m.runs++
	m.mu.Unlock()
	m.metrics.observe(ResultSuccess, duration)

	m.logger.Info("✅ run completed successfully", zap.String("summary", summary), zap.Duration("duration", duration))
}

// RecordPartialFailure logs without changing the health status.
func (m *Monitor) RecordPartialFailure(err error, duration time.Duration) {
	m.metrics.observe(ResultPartial, duration)
	m.logger.Warn("⚠️ partial failure", zap.Error(err), zap.Duration("duration", duration))
}

func (m *Monitor) RecordCriticalFailure(err error, duration time.Duration) {
	m.mu.Lock()
	m.lastRunSuccess = false
	m.lastRunTime = time.Now()
	m.runs++
	m.failures++
	m.mu.Unlock()
	m.metrics.observe(ResultCritical, duration)

	m.logger.Error("🚨 critical failure", zap.Error(err), zap.Duration("duration", duration))
}

func (m *Monitor) IsHealthy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.lastRunTime.IsZero() {
		return true // no runs yet
	}
	return m.lastRunSuccess
}

func (m *Monitor) GetStatusSummary() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.lastRunTime.IsZero() {
		return "No runs yet"
	}

	if m.lastRunSuccess {
		return fmt.Sprintf("✅ Last run: %s (%d runs, %d failed)", m.lastRunTime.Format("Jan 2 15:04"), m.runs, m.failures)
	}
	return fmt.Sprintf("❌ Last run failed: %s (%d runs, %d failed)", m.lastRunTime.Format("Jan 2 15:04"), m.runs, m.failures)
}
