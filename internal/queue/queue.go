package queue

import (
	"context"
	"sync"
)

// Queue decouples webhook receipt from update processing. A dequeued job
// is handed to exactly one consumer; no ordering is guaranteed.
type Queue interface {
	Enqueue(ctx context.Context, job *Job) error
	// Dequeue blocks until a job is available, the context is done or the
	// queue is closed, in which case ErrClosed is returned.
	Dequeue(ctx context.Context) (*Job, error)
	Len(ctx context.Context) (int64, error)
	Close() error
}

// MemoryQueue is a bounded in-process queue. Jobs are lost on restart.
type MemoryQueue struct {
	jobs     chan *Job
	done     chan struct{}
	mu       sync.RWMutex
	closed   bool
	capacity int
}

// NewMemoryQueue creates a queue holding at most capacity pending jobs
func NewMemoryQueue(capacity int) *MemoryQueue {
	if capacity <= 0 {
		capacity = 1
	}
	return &MemoryQueue{
		jobs:     make(chan *Job, capacity),
		done:     make(chan struct{}),
		capacity: capacity,
	}
}

// Enqueue adds a job without blocking; a full queue is reported as a
// temporary error
func (q *MemoryQueue) Enqueue(ctx context.Context, job *Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	select {
	case q.jobs <- job:
		return nil
	default:
		return NewFullError(q.capacity)
	}
}

func (q *MemoryQueue) Dequeue(ctx context.Context) (*Job, error) {
	select {
	case job := <-q.jobs:
		return job, nil
	case <-q.done:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (q *MemoryQueue) Len(ctx context.Context) (int64, error) {
	return int64(len(q.jobs)), nil
}

// Close stops further enqueues and wakes blocked consumers. Pending jobs
// are discarded.
func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.closed {
		q.closed = true
		close(q.done)
	}
	return nil
}
