package queue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/OperacionalChopp/botchopp/internal/config"
	"github.com/OperacionalChopp/botchopp/internal/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type temporaryError struct{}

func (temporaryError) Error() string   { return "try again" }
func (temporaryError) Temporary() bool { return true }

func testQueueConfig() config.QueueConfig {
	return config.QueueConfig{
		Enabled:         true,
		Name:            "test",
		WorkerCount:     2,
		MaxAttempts:     3,
		BufferSize:      16,
		ShutdownTimeout: 5,
	}
}

func newTestPool(t *testing.T, cfg config.QueueConfig, q Queue, handler Handler, bus events.EventBus) *workerPool {
	t.Helper()
	pool, err := NewWorkerPool(cfg, q, handler, bus, zap.NewNop())
	require.NoError(t, err)
	p := pool.(*workerPool)
	p.retryDelay = func(int) time.Duration { return time.Millisecond }
	p.errorPause = time.Millisecond
	return p
}

func TestNewWorkerPool_Validation(t *testing.T) {
	handler := func(context.Context, *Job) error { return nil }

	tests := []struct {
		name    string
		mutate  func(*config.QueueConfig)
		queue   Queue
		handler Handler
		field   string
	}{
		{"zero workers", func(c *config.QueueConfig) { c.WorkerCount = 0 }, NewMemoryQueue(1), handler, "worker_count"},
		{"zero attempts", func(c *config.QueueConfig) { c.MaxAttempts = 0 }, NewMemoryQueue(1), handler, "max_attempts"},
		{"zero shutdown timeout", func(c *config.QueueConfig) { c.ShutdownTimeout = 0 }, NewMemoryQueue(1), handler, "shutdown_timeout"},
		{"nil queue", func(*config.QueueConfig) {}, nil, handler, "queue"},
		{"nil handler", func(*config.QueueConfig) {}, NewMemoryQueue(1), nil, "handler"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testQueueConfig()
			tt.mutate(&cfg)

			pool, err := NewWorkerPool(cfg, tt.queue, tt.handler, events.NewRecorder(), zap.NewNop())
			assert.Nil(t, pool)
			require.Error(t, err)

			var cfgErr *ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestWorkerPool_StartStop(t *testing.T) {
	q := NewMemoryQueue(4)
	p := newTestPool(t, testQueueConfig(), q, func(context.Context, *Job) error { return nil }, events.NewRecorder())

	err := p.Stop()
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrCodePoolNotRunning)

	require.NoError(t, p.Start(context.Background()))
	assert.True(t, p.IsRunning())

	err = p.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrCodePoolAlreadyRunning)

	require.NoError(t, p.Stop())
	assert.False(t, p.IsRunning())

	require.NoError(t, p.Start(context.Background()), "pool can be restarted")
	require.NoError(t, p.Stop())
}

func TestWorkerPool_ProcessesJobs(t *testing.T) {
	q := NewMemoryQueue(16)
	recorder := events.NewRecorder()

	var mu sync.Mutex
	seen := make(map[int]bool)
	p := newTestPool(t, testQueueConfig(), q, func(ctx context.Context, job *Job) error {
		mu.Lock()
		defer mu.Unlock()
		seen[job.UpdateID] = true
		return nil
	}, recorder)

	require.NoError(t, p.Start(context.Background()))
	defer p.Stop()

	for i := 1; i <= 5; i++ {
		require.NoError(t, q.Enqueue(context.Background(), NewJob(KindTelegramUpdate, i, []byte(`{}`))))
	}

	assert.Eventually(t, func() bool {
		return p.GetMetrics().GetMetricsSummary().JobsProcessed == 5
	}, 2*time.Second, 5*time.Millisecond)

	mu.Lock()
	assert.Len(t, seen, 5)
	mu.Unlock()

	summary := p.GetMetrics().GetMetricsSummary()
	assert.Zero(t, summary.JobsFailed)
	assert.Zero(t, recorder.Count(events.TopicJobFailed))
	assert.True(t, p.GetMetrics().IsHealthy())
}

func TestWorkerPool_RetriesTemporaryErrors(t *testing.T) {
	q := NewMemoryQueue(16)
	recorder := events.NewRecorder()

	var calls atomic.Int32
	succeeded := make(chan *Job, 1)
	p := newTestPool(t, testQueueConfig(), q, func(ctx context.Context, job *Job) error {
		if calls.Add(1) == 1 {
			return temporaryError{}
		}
		succeeded <- job
		return nil
	}, recorder)

	require.NoError(t, p.Start(context.Background()))
	defer p.Stop()

	require.NoError(t, q.Enqueue(context.Background(), NewJob(KindTelegramUpdate, 1, []byte(`{}`))))

	select {
	case job := <-succeeded:
		assert.Equal(t, 2, job.Attempts)
	case <-time.After(2 * time.Second):
		t.Fatal("job was not retried")
	}

	require.Eventually(t, func() bool {
		return recorder.Count(events.TopicJobFailed) == 1
	}, 2*time.Second, 5*time.Millisecond)
	failure := recorder.Published(events.TopicJobFailed)[0].(events.JobFailed)
	assert.False(t, failure.Dropped)
	assert.Equal(t, 1, failure.Attempts)
	assert.Equal(t, KindTelegramUpdate, failure.Kind)

	summary := p.GetMetrics().GetMetricsSummary()
	assert.Equal(t, int64(1), summary.JobsRetried)
	assert.Zero(t, summary.JobsDropped)
}

func TestWorkerPool_DropsAfterMaxAttempts(t *testing.T) {
	q := NewMemoryQueue(16)
	recorder := events.NewRecorder()
	cfg := testQueueConfig()
	cfg.WorkerCount = 1

	var calls atomic.Int32
	p := newTestPool(t, cfg, q, func(ctx context.Context, job *Job) error {
		calls.Add(1)
		return temporaryError{}
	}, recorder)

	require.NoError(t, p.Start(context.Background()))
	defer p.Stop()

	require.NoError(t, q.Enqueue(context.Background(), NewJob(KindTelegramUpdate, 1, []byte(`{}`))))

	assert.Eventually(t, func() bool {
		return recorder.Count(events.TopicJobFailed) == cfg.MaxAttempts
	}, 2*time.Second, 5*time.Millisecond)

	published := recorder.Published(events.TopicJobFailed)
	last := published[len(published)-1].(events.JobFailed)
	assert.True(t, last.Dropped)
	assert.Equal(t, cfg.MaxAttempts, last.Attempts)
	assert.Equal(t, int32(cfg.MaxAttempts), calls.Load())
	assert.Equal(t, int64(1), p.GetMetrics().GetMetricsSummary().JobsDropped)
}

func TestWorkerPool_DropsPermanentErrors(t *testing.T) {
	q := NewMemoryQueue(16)
	recorder := events.NewRecorder()

	p := newTestPool(t, testQueueConfig(), q, func(ctx context.Context, job *Job) error {
		return errors.New("malformed update")
	}, recorder)

	require.NoError(t, p.Start(context.Background()))
	defer p.Stop()

	require.NoError(t, q.Enqueue(context.Background(), NewJob(KindTelegramUpdate, 9, []byte(`{}`))))

	assert.Eventually(t, func() bool {
		return recorder.Count(events.TopicJobFailed) == 1
	}, 2*time.Second, 5*time.Millisecond)

	failure := recorder.Published(events.TopicJobFailed)[0].(events.JobFailed)
	assert.True(t, failure.Dropped)
	assert.Equal(t, 1, failure.Attempts)
	assert.Equal(t, "malformed update", failure.Error)
	assert.False(t, p.GetMetrics().IsHealthy())
}

func TestWorkerPool_RecoversFromPanics(t *testing.T) {
	q := NewMemoryQueue(16)
	recorder := events.NewRecorder()
	cfg := testQueueConfig()
	cfg.WorkerCount = 1

	processed := make(chan int, 1)
	p := newTestPool(t, cfg, q, func(ctx context.Context, job *Job) error {
		if job.UpdateID == 1 {
			panic("boom")
		}
		processed <- job.UpdateID
		return nil
	}, recorder)

	require.NoError(t, p.Start(context.Background()))
	defer p.Stop()

	require.NoError(t, q.Enqueue(context.Background(), NewJob(KindTelegramUpdate, 1, []byte(`{}`))))
	require.NoError(t, q.Enqueue(context.Background(), NewJob(KindTelegramUpdate, 2, []byte(`{}`))))

	select {
	case id := <-processed:
		assert.Equal(t, 2, id)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not survive the panic")
	}

	require.Equal(t, 1, recorder.Count(events.TopicJobFailed))
	failure := recorder.Published(events.TopicJobFailed)[0].(events.JobFailed)
	assert.True(t, failure.Dropped)
	assert.Contains(t, failure.Error, ErrCodeWorkerPanic)
}

func TestWorkerPool_StopsWhenQueueCloses(t *testing.T) {
	q := NewMemoryQueue(1)
	p := newTestPool(t, testQueueConfig(), q, func(context.Context, *Job) error { return nil }, nil)

	require.NoError(t, p.Start(context.Background()))
	require.NoError(t, q.Close())
	require.NoError(t, p.Stop())
}

func TestExponentialDelay(t *testing.T) {
	assert.Equal(t, 500*time.Millisecond, exponentialDelay(1))
	assert.Equal(t, time.Second, exponentialDelay(2))
	assert.Equal(t, 2*time.Second, exponentialDelay(3))
	assert.Equal(t, 5*time.Second, exponentialDelay(10))
}
