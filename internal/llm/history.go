package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// HistoryStore keeps the rolling per-chat conversation forwarded to the
// model. It never influences FAQ matching.
type HistoryStore interface {
	Get(ctx context.Context, chatID int64) ([]Message, error)
	Append(ctx context.Context, chatID int64, messages ...Message) error
	Clear(ctx context.Context, chatID int64) error
}

// MemoryHistory is an in-process HistoryStore bounded to the last
// maxMessages messages per chat. Chats idle for longer than idleChatTTL
// are forgotten, like the Redis store's key expiry.
type MemoryHistory struct {
	mu          sync.Mutex
	maxMessages int
	chats       map[int64]*chatHistory
	now         func() time.Time
}

type chatHistory struct {
	messages []Message
	lastSeen time.Time
}

// NewMemoryHistory creates a store keeping turns exchanges (user message
// plus reply) per chat
func NewMemoryHistory(turns int) *MemoryHistory {
	return &MemoryHistory{
		maxMessages: turns * 2,
		chats:       make(map[int64]*chatHistory),
		now:         time.Now,
	}
}

func (h *MemoryHistory) Get(ctx context.Context, chatID int64) ([]Message, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	entry, ok := h.chats[chatID]
	if !ok {
		return []Message{}, nil
	}
	if h.now().Sub(entry.lastSeen) > idleChatTTL {
		delete(h.chats, chatID)
		return []Message{}, nil
	}

	out := make([]Message, len(entry.messages))
	copy(out, entry.messages)
	return out, nil
}

func (h *MemoryHistory) Append(ctx context.Context, chatID int64, messages ...Message) error {
	if h.maxMessages <= 0 {
		return nil
	}

	now := h.now()

	h.mu.Lock()
	defer h.mu.Unlock()

	entry, ok := h.chats[chatID]
	if !ok || now.Sub(entry.lastSeen) > idleChatTTL {
		h.evictIdle(now)
		entry = &chatHistory{}
		h.chats[chatID] = entry
	}

	stored := append(entry.messages, messages...)
	if len(stored) > h.maxMessages {
		stored = append([]Message(nil), stored[len(stored)-h.maxMessages:]...)
	}
	entry.messages = stored
	entry.lastSeen = now
	return nil
}

func (h *MemoryHistory) Clear(ctx context.Context, chatID int64) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.chats, chatID)
	return nil
}

// evictIdle drops chats not seen within idleChatTTL. Callers hold mu.
func (h *MemoryHistory) evictIdle(now time.Time) {
	for chatID, entry := range h.chats {
		if now.Sub(entry.lastSeen) > idleChatTTL {
			delete(h.chats, chatID)
		}
	}
}

// Size returns the number of chats with stored history
func (h *MemoryHistory) Size() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.chats)
}

// RedisHistory stores each chat's turns as a capped Redis list of JSON
// messages, shared by every replica of the bot
type RedisHistory struct {
	client      redis.UniversalClient
	prefix      string
	maxMessages int
	ttl         time.Duration
}

// NewRedisHistory creates a Redis-backed store
func NewRedisHistory(client redis.UniversalClient, prefix string, turns int, ttl time.Duration) *RedisHistory {
	return &RedisHistory{
		client:      client,
		prefix:      prefix,
		maxMessages: turns * 2,
		ttl:         ttl,
	}
}

func (h *RedisHistory) key(chatID int64) string {
	return h.prefix + ":history:" + strconv.FormatInt(chatID, 10)
}

func (h *RedisHistory) Get(ctx context.Context, chatID int64) ([]Message, error) {
	raw, err := h.client.LRange(ctx, h.key(chatID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis history get failed: %w", err)
	}

	messages := make([]Message, 0, len(raw))
	for _, item := range raw {
		var msg Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			continue
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

func (h *RedisHistory) Append(ctx context.Context, chatID int64, messages ...Message) error {
	if h.maxMessages <= 0 || len(messages) == 0 {
		return nil
	}

	values := make([]interface{}, 0, len(messages))
	for _, msg := range messages {
		encoded, err := json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("encode history message: %w", err)
		}
		values = append(values, encoded)
	}

	key := h.key(chatID)
	pipe := h.client.TxPipeline()
	pipe.RPush(ctx, key, values...)
	pipe.LTrim(ctx, key, int64(-h.maxMessages), -1)
	if h.ttl > 0 {
		pipe.Expire(ctx, key, h.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis history append failed: %w", err)
	}
	return nil
}

func (h *RedisHistory) Clear(ctx context.Context, chatID int64) error {
	if err := h.client.Del(ctx, h.key(chatID)).Err(); err != nil {
		return fmt.Errorf("redis history clear failed: %w", err)
	}
	return nil
}
