package queue

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/OperacionalChopp/botchopp/internal/config"
	"github.com/OperacionalChopp/botchopp/internal/events"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Handler processes one job. Errors exposing Temporary() == true put the
// job back on the queue until the attempt limit is reached.
type Handler func(ctx context.Context, job *Job) error

// WorkerPool consumes jobs from a Queue with a fixed number of workers
type WorkerPool interface {
	Start(ctx context.Context) error
	Stop() error
	IsRunning() bool
	GetMetrics() *Metrics
}

type workerPool struct {
	config   config.QueueConfig
	queue    Queue
	handler  Handler
	eventBus events.EventBus
	logger   *zap.Logger
	metrics  *Metrics

	retryDelay func(attempt int) time.Duration
	errorPause time.Duration

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	group   *errgroup.Group
	running atomic.Bool
}

// NewWorkerPool creates a pool; it does not start consuming until Start
func NewWorkerPool(cfg config.QueueConfig, q Queue, handler Handler, eventBus events.EventBus, logger *zap.Logger) (WorkerPool, error) {
	if cfg.WorkerCount <= 0 {
		return nil, NewConfigurationError("worker_count", cfg.WorkerCount, "must be greater than 0")
	}
	if cfg.MaxAttempts <= 0 {
		return nil, NewConfigurationError("max_attempts", cfg.MaxAttempts, "must be greater than 0")
	}
	if cfg.ShutdownTimeout <= 0 {
		return nil, NewConfigurationError("shutdown_timeout", cfg.ShutdownTimeout, "must be greater than 0")
	}
	if q == nil {
		return nil, NewConfigurationError("queue", nil, "is required")
	}
	if handler == nil {
		return nil, NewConfigurationError("handler", nil, "is required")
	}

	return &workerPool{
		config:     cfg,
		queue:      q,
		handler:    handler,
		eventBus:   eventBus,
		logger:     logger,
		metrics:    NewMetrics(),
		retryDelay: exponentialDelay,
		errorPause: time.Second,
	}, nil
}

// Start launches the workers
func (p *workerPool) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running.Load() {
		return NewPoolError(ErrCodePoolAlreadyRunning, "worker pool is already running")
	}

	p.ctx, p.cancel = context.WithCancel(ctx)
	p.group = new(errgroup.Group)
	p.running.Store(true)

	p.logger.Info("Starting worker pool",
		zap.String("queue", p.config.Name),
		zap.Int("worker_count", p.config.WorkerCount),
		zap.Int("max_attempts", p.config.MaxAttempts))

	for i := 0; i < p.config.WorkerCount; i++ {
		workerID := i
		p.group.Go(func() error {
			p.worker(workerID)
			return nil
		})
	}

	return nil
}

// Stop cancels the workers and waits for in-flight jobs up to the
// configured shutdown timeout
func (p *workerPool) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running.Load() {
		return NewPoolError(ErrCodePoolNotRunning, "worker pool is not running")
	}

	p.logger.Info("Stopping worker pool...")
	p.cancel()

	done := make(chan struct{})
	go func() {
		_ = p.group.Wait()
		close(done)
	}()

	defer p.running.Store(false)

	select {
	case <-done:
		p.logger.Info("Worker pool stopped successfully")
		return nil
	case <-time.After(time.Duration(p.config.ShutdownTimeout) * time.Second):
		p.logger.Warn("Worker pool shutdown timed out, some jobs may still be running")
		return NewShutdownError(p.config.ShutdownTimeout)
	}
}

func (p *workerPool) IsRunning() bool {
	return p.running.Load()
}

func (p *workerPool) GetMetrics() *Metrics {
	return p.metrics
}

func (p *workerPool) worker(workerID int) {
	logger := p.logger.With(zap.Int("worker_id", workerID))
	logger.Debug("Starting queue worker")

	for {
		job, err := p.queue.Dequeue(p.ctx)
		if err != nil {
			if p.ctx.Err() != nil || IsClosed(err) {
				logger.Debug("Queue worker stopping")
				return
			}
			logger.Error("Failed to dequeue job", zap.Error(err))
			select {
			case <-p.ctx.Done():
				return
			case <-time.After(p.errorPause):
			}
			continue
		}

		p.metrics.RecordWorkerActivity(workerID, true)
		p.process(workerID, job, logger)
		p.metrics.RecordWorkerActivity(workerID, false)
	}
}

func (p *workerPool) process(workerID int, job *Job, logger *zap.Logger) {
	job.Attempts++
	jobLogger := logger.With(
		zap.String("job_id", job.ID),
		zap.String("kind", job.Kind),
		zap.Int("attempt", job.Attempts))

	start := time.Now()
	err := p.runSafely(workerID, job)
	p.metrics.RecordJobProcessed(time.Since(start), err)

	if err == nil {
		jobLogger.Debug("Job processed", zap.Duration("duration", time.Since(start)))
		return
	}

	// the job may be picked up by another worker once re-enqueued
	attempts := job.Attempts
	dropped := true
	if IsRetryable(err) && job.Attempts < p.config.MaxAttempts {
		dropped = !p.requeue(job, jobLogger)
	}

	if dropped {
		p.metrics.RecordJobDropped()
		jobLogger.Error("Job failed, dropping", zap.Error(err))
	} else {
		p.metrics.RecordJobRetried()
		jobLogger.Warn("Job failed, retrying", zap.Error(err))
	}

	p.publishFailure(job.ID, job.Kind, attempts, err, dropped)
}

// runSafely isolates handler panics so one bad update cannot stop a worker
func (p *workerPool) runSafely(workerID int, job *Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Worker panic recovered",
				zap.Int("worker_id", workerID),
				zap.String("job_id", job.ID),
				zap.Any("panic", r))
			err = NewWorkerPanicError(workerID, job.ID, r)
		}
	}()

	// In-flight jobs finish even when Stop cancels the pool
	return p.handler(context.WithoutCancel(p.ctx), job)
}

func (p *workerPool) requeue(job *Job, logger *zap.Logger) bool {
	select {
	case <-time.After(p.retryDelay(job.Attempts)):
	case <-p.ctx.Done():
	}

	if err := p.queue.Enqueue(context.WithoutCancel(p.ctx), job); err != nil {
		logger.Error("Failed to re-enqueue job", zap.Error(err))
		return false
	}
	return true
}

func (p *workerPool) publishFailure(jobID, kind string, attempts int, err error, dropped bool) {
	if p.eventBus == nil {
		return
	}

	event := events.JobFailed{
		Event:    events.NewEvent(),
		JobID:    jobID,
		Kind:     kind,
		Attempts: attempts,
		Error:    err.Error(),
		Dropped:  dropped,
	}
	if pubErr := p.eventBus.Publish(events.TopicJobFailed, event); pubErr != nil {
		p.logger.Warn("Failed to publish job failure", zap.Error(pubErr))
	}
}

func exponentialDelay(attempt int) time.Duration {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.Reset()

	delay := b.InitialInterval
	for i := 0; i < attempt; i++ {
		delay = b.NextBackOff()
	}
	return delay
}
