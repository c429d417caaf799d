//go:build integration

package queue

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestRedisQueue(t *testing.T) {
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { _ = client.Close() })

	q := NewRedisQueue(client, "test", "updates", time.Second)
	assert.Equal(t, "test:queue:updates", q.Key())

	first := NewJob(KindTelegramUpdate, 1, []byte(`{"update_id":1}`))
	second := NewJob(KindTelegramUpdate, 2, []byte(`{"update_id":2}`))
	require.NoError(t, q.Enqueue(ctx, first))
	require.NoError(t, q.Enqueue(ctx, second))

	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	got, err := q.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
	assert.JSONEq(t, `{"update_id":1}`, string(got.Payload))

	got, err = q.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)

	timeout, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	_, err = q.Dequeue(timeout)
	assert.Error(t, err)

	require.NoError(t, client.LPush(ctx, q.Key(), "not json").Err())
	_, err = q.Dequeue(ctx)
	var decodeErr *DecodeError
	assert.ErrorAs(t, err, &decodeErr)

	require.NoError(t, q.Close())
	_, err = q.Dequeue(ctx)
	assert.True(t, IsClosed(err))
	assert.True(t, IsClosed(q.Enqueue(ctx, first)))
}
