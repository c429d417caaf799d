package queue

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	m := NewMetrics()
	assert.True(t, m.IsHealthy(), "idle pool is healthy")

	m.RecordJobProcessed(10*time.Millisecond, nil)
	m.RecordJobProcessed(30*time.Millisecond, errors.New("failed"))
	m.RecordJobRetried()
	m.RecordJobDropped()
	m.RecordWorkerActivity(0, true)
	m.RecordWorkerActivity(1, false)

	summary := m.GetMetricsSummary()
	assert.Equal(t, int64(2), summary.JobsProcessed)
	assert.Equal(t, int64(1), summary.JobsFailed)
	assert.Equal(t, int64(1), summary.JobsRetried)
	assert.Equal(t, int64(1), summary.JobsDropped)
	assert.Equal(t, (20 * time.Millisecond).String(), summary.AverageProcessingTime)
	assert.InDelta(t, 50.0, summary.ErrorRate, 0.001)
	assert.Equal(t, map[int]float64{0: 1, 1: 0}, summary.WorkerUtilization)

	status := m.GetHealthStatus()
	assert.False(t, status.IsHealthy)
	assert.InDelta(t, 0.5, status.ErrorRate, 0.001)

	summary.WorkerUtilization[0] = 42
	assert.Equal(t, 1.0, m.GetMetricsSummary().WorkerUtilization[0], "summary must not alias internal state")

	m.Reset()
	summary = m.GetMetricsSummary()
	assert.Zero(t, summary.JobsProcessed)
	assert.Empty(t, summary.WorkerUtilization)
	assert.True(t, m.IsHealthy())
}
