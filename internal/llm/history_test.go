package llm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryHistory_KeepsLastTurns(t *testing.T) {
	ctx := context.Background()
	h := NewMemoryHistory(2)

	for i, text := range []string{"a", "b", "c"} {
		require.NoError(t, h.Append(ctx, 1,
			Message{Role: RoleUser, Content: text},
			Message{Role: RoleAssistant, Content: text + "!"},
		), i)
	}

	got, err := h.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []Message{
		{Role: RoleUser, Content: "b"},
		{Role: RoleAssistant, Content: "b!"},
		{Role: RoleUser, Content: "c"},
		{Role: RoleAssistant, Content: "c!"},
	}, got)

	other, err := h.Get(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, other)

	require.NoError(t, h.Clear(ctx, 1))
	got, _ = h.Get(ctx, 1)
	assert.Empty(t, got)
}

func TestMemoryHistory_Disabled(t *testing.T) {
	ctx := context.Background()
	h := NewMemoryHistory(0)

	require.NoError(t, h.Append(ctx, 1, Message{Role: RoleUser, Content: "a"}))
	got, _ := h.Get(ctx, 1)
	assert.Empty(t, got)
}

func TestMemoryHistory_ForgetsIdleChats(t *testing.T) {
	ctx := context.Background()
	h := NewMemoryHistory(2)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return now }

	require.NoError(t, h.Append(ctx, 1, Message{Role: RoleUser, Content: "a"}))
	require.NoError(t, h.Append(ctx, 2, Message{Role: RoleUser, Content: "b"}))
	assert.Equal(t, 2, h.Size())

	now = now.Add(idleChatTTL / 2)
	require.NoError(t, h.Append(ctx, 2, Message{Role: RoleUser, Content: "c"}))

	// a new chat sweeps the ones idle past the TTL
	now = now.Add(idleChatTTL/2 + time.Second)
	require.NoError(t, h.Append(ctx, 3, Message{Role: RoleUser, Content: "d"}))
	assert.Equal(t, 2, h.Size())

	got, err := h.Get(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = h.Get(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	// an expired chat starts over instead of resuming old turns
	now = now.Add(idleChatTTL + time.Second)
	got, err = h.Get(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, h.Append(ctx, 3, Message{Role: RoleUser, Content: "e"}))
	got, err = h.Get(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, []Message{{Role: RoleUser, Content: "e"}}, got)
	assert.Equal(t, 1, h.Size())
}

func TestChatLimiter(t *testing.T) {
	l := NewChatLimiter(1, 2)

	assert.True(t, l.Allow(1))
	assert.True(t, l.Allow(1))
	assert.False(t, l.Allow(1))

	// other chats have their own bucket
	assert.True(t, l.Allow(2))
}

func TestChatLimiter_EvictsIdleChats(t *testing.T) {
	l := NewChatLimiter(60, 1)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	for chatID := int64(1); chatID <= 50; chatID++ {
		assert.True(t, l.Allow(chatID))
	}
	assert.Equal(t, 50, l.Size())

	now = now.Add(idleChatTTL + time.Second)
	assert.True(t, l.Allow(51))
	assert.Equal(t, 1, l.Size())
}

func TestChatLimiter_KeepsBucketUntilRefilled(t *testing.T) {
	// one request per hour: an empty bucket must outlive idleChatTTL
	l := NewChatLimiter(1.0/60, 1)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow(1))
	assert.False(t, l.Allow(1))

	now = now.Add(idleChatTTL + time.Second)
	assert.True(t, l.Allow(2))
	assert.False(t, l.Allow(1))
	assert.Equal(t, 2, l.Size())
}

func TestChatLimiter_Unlimited(t *testing.T) {
	l := NewChatLimiter(0, 0)
	for i := 0; i < 100; i++ {
		assert.True(t, l.Allow(1))
	}
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{name: "server error", err: NewAPIError(500, ErrorCodeServiceUnavailable, "x", ""), retryable: true},
		{name: "bad request", err: NewAPIError(400, ErrorCodeUnknown, "x", ""), retryable: false},
		{name: "network", err: NewNetworkError("op", "x", nil), retryable: true},
		{name: "upstream rate limit", err: NewRateLimitError(60, "x"), retryable: true},
		{name: "local rate limit", err: RateLimitError{Local: true}, retryable: false},
		{name: "configuration", err: NewConfigurationError("api_key", "x", ""), retryable: false},
		{name: "response", err: NewResponseError("x", "", nil), retryable: false},
		{name: "plain", err: assert.AnError, retryable: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.retryable, IsRetryable(tt.err))
			assert.Equal(t, tt.retryable, IsTemporary(tt.err))
		})
	}
}
