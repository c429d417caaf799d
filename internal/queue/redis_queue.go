package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisQueue stores jobs in a Redis list. Producers LPUSH and consumers
// BRPOP, so each job is delivered to at most one consumer.
type RedisQueue struct {
	client      redis.UniversalClient
	key         string
	pollTimeout time.Duration
	closed      atomic.Bool
}

// NewRedisQueue creates a queue on the list "<prefix>:queue:<name>". The
// client is owned by the caller and is not closed by Close.
func NewRedisQueue(client redis.UniversalClient, prefix, name string, pollTimeout time.Duration) *RedisQueue {
	if pollTimeout <= 0 {
		pollTimeout = 5 * time.Second
	}
	return &RedisQueue{
		client:      client,
		key:         fmt.Sprintf("%s:queue:%s", prefix, name),
		pollTimeout: pollTimeout,
	}
}

// Key returns the Redis list holding pending jobs
func (q *RedisQueue) Key() string {
	return q.key
}

func (q *RedisQueue) Enqueue(ctx context.Context, job *Job) error {
	if q.closed.Load() {
		return ErrClosed
	}

	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode job %s: %w", job.ID, err)
	}

	if err := q.client.LPush(ctx, q.key, data).Err(); err != nil {
		return fmt.Errorf("failed to push job %s: %w", job.ID, err)
	}
	return nil
}

// Dequeue polls with BRPOP so that Close and context cancellation are
// noticed within one poll timeout
func (q *RedisQueue) Dequeue(ctx context.Context) (*Job, error) {
	for {
		if q.closed.Load() {
			return nil, ErrClosed
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, err := q.client.BRPop(ctx, q.pollTimeout, q.key).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("failed to pop job: %w", err)
		}

		// BRPOP replies with [key, value]
		if len(result) != 2 {
			return nil, NewDecodeError(fmt.Errorf("unexpected BRPOP reply of %d elements", len(result)))
		}

		var job Job
		if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
			return nil, NewDecodeError(err)
		}
		return &job, nil
	}
}

func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.key).Result()
}

func (q *RedisQueue) Close() error {
	q.closed.Store(true)
	return nil
}
