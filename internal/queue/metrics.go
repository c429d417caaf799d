package queue

import (
	"sync"
	"time"
)

// Metrics tracks throughput and health of the worker pool
type Metrics struct {
	mu                    sync.RWMutex
	JobsProcessed         int64
	JobsFailed            int64
	JobsRetried           int64
	JobsDropped           int64
	AverageProcessingTime time.Duration
	LastProcessingTime    time.Time
	WorkerUtilization     map[int]float64
	totalProcessingTime   time.Duration
	processingCycles      int64
	startedAt             time.Time
}

// HealthStatus represents the health status of the worker pool
type HealthStatus struct {
	IsHealthy             bool      `json:"is_healthy"`
	LastProcessingTime    time.Time `json:"last_processing_time"`
	JobsFailed            int64     `json:"jobs_failed"`
	AverageProcessingTime string    `json:"average_processing_time"`
	ErrorRate             float64   `json:"error_rate"`
}

// MetricsSummary provides a summary of worker pool metrics
type MetricsSummary struct {
	JobsProcessed         int64           `json:"jobs_processed"`
	JobsFailed            int64           `json:"jobs_failed"`
	JobsRetried           int64           `json:"jobs_retried"`
	JobsDropped           int64           `json:"jobs_dropped"`
	AverageProcessingTime string          `json:"average_processing_time"`
	LastProcessingTime    time.Time       `json:"last_processing_time"`
	WorkerUtilization     map[int]float64 `json:"worker_utilization"`
	ProcessingRate        float64         `json:"processing_rate_per_minute"`
	ErrorRate             float64         `json:"error_rate_percentage"`
}

// NewMetrics creates a new metrics instance
func NewMetrics() *Metrics {
	return &Metrics{
		WorkerUtilization: make(map[int]float64),
		startedAt:         time.Now(),
	}
}

// RecordJobProcessed records one handler run, successful or not
func (m *Metrics) RecordJobProcessed(duration time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.JobsProcessed++
	if err != nil {
		m.JobsFailed++
	}
	m.LastProcessingTime = time.Now()
	m.totalProcessingTime += duration
	m.processingCycles++
	m.AverageProcessingTime = m.totalProcessingTime / time.Duration(m.processingCycles)
}

// RecordJobRetried counts a job put back on the queue
func (m *Metrics) RecordJobRetried() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.JobsRetried++
}

// RecordJobDropped counts a job abandoned after a failure
func (m *Metrics) RecordJobDropped() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.JobsDropped++
}

// RecordWorkerActivity updates worker utilization metrics
func (m *Metrics) RecordWorkerActivity(workerID int, active bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if active {
		m.WorkerUtilization[workerID] = 1.0
	} else {
		m.WorkerUtilization[workerID] = 0.0
	}
}

// IsHealthy reports whether fewer than half of the processed jobs failed.
// An idle pool is healthy.
func (m *Metrics) IsHealthy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.calculateErrorRate() < 0.5
}

// GetHealthStatus returns detailed health information
func (m *Metrics) GetHealthStatus() HealthStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()

	errorRate := m.calculateErrorRate()
	return HealthStatus{
		IsHealthy:             errorRate < 0.5,
		LastProcessingTime:    m.LastProcessingTime,
		JobsFailed:            m.JobsFailed,
		AverageProcessingTime: m.AverageProcessingTime.String(),
		ErrorRate:             errorRate,
	}
}

// GetMetricsSummary returns a comprehensive metrics summary
func (m *Metrics) GetMetricsSummary() MetricsSummary {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return MetricsSummary{
		JobsProcessed:         m.JobsProcessed,
		JobsFailed:            m.JobsFailed,
		JobsRetried:           m.JobsRetried,
		JobsDropped:           m.JobsDropped,
		AverageProcessingTime: m.AverageProcessingTime.String(),
		LastProcessingTime:    m.LastProcessingTime,
		WorkerUtilization:     m.copyWorkerUtilization(),
		ProcessingRate:        m.calculateProcessingRate(),
		ErrorRate:             m.calculateErrorRate() * 100,
	}
}

// Reset clears all counters
func (m *Metrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.JobsProcessed = 0
	m.JobsFailed = 0
	m.JobsRetried = 0
	m.JobsDropped = 0
	m.AverageProcessingTime = 0
	m.LastProcessingTime = time.Time{}
	m.WorkerUtilization = make(map[int]float64)
	m.totalProcessingTime = 0
	m.processingCycles = 0
	m.startedAt = time.Now()
}

func (m *Metrics) calculateErrorRate() float64 {
	if m.JobsProcessed == 0 {
		return 0
	}
	return float64(m.JobsFailed) / float64(m.JobsProcessed)
}

func (m *Metrics) calculateProcessingRate() float64 {
	elapsed := time.Since(m.startedAt).Minutes()
	if elapsed <= 0 {
		return 0
	}
	return float64(m.JobsProcessed) / elapsed
}

func (m *Metrics) copyWorkerUtilization() map[int]float64 {
	out := make(map[int]float64, len(m.WorkerUtilization))
	for k, v := range m.WorkerUtilization {
		out[k] = v
	}
	return out
}
