package llm

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// idleChatTTL is how long an unused per-chat entry is kept in memory
const idleChatTTL = 30 * time.Minute

type chatBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ChatLimiter throttles delegation per chat with a token bucket each
type ChatLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	idleTTL  time.Duration
	limiters map[int64]*chatBucket
	now      func() time.Time
}

// NewChatLimiter allows perMinute requests per chat with the given burst.
// A non-positive perMinute disables limiting.
func NewChatLimiter(perMinute float64, burst int) *ChatLimiter {
	limit := rate.Inf
	if perMinute > 0 {
		limit = rate.Limit(perMinute / 60)
	}
	if burst <= 0 {
		burst = 1
	}

	// an evicted bucket comes back full, so keep it at least until it refills
	idleTTL := idleChatTTL
	if limit != rate.Inf {
		if refill := time.Duration(float64(burst) / float64(limit) * float64(time.Second)); refill > idleTTL {
			idleTTL = refill
		}
	}

	return &ChatLimiter{
		limit:    limit,
		burst:    burst,
		idleTTL:  idleTTL,
		limiters: make(map[int64]*chatBucket),
		now:      time.Now,
	}
}

// Allow reports whether chatID may make another request now
func (l *ChatLimiter) Allow(chatID int64) bool {
	now := l.now()

	l.mu.Lock()
	entry, ok := l.limiters[chatID]
	if !ok {
		l.evictIdle(now)
		entry = &chatBucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[chatID] = entry
	}
	entry.lastSeen = now
	l.mu.Unlock()

	return entry.limiter.AllowN(now, 1)
}

// evictIdle drops buckets not used within idleTTL. Callers hold mu.
func (l *ChatLimiter) evictIdle(now time.Time) {
	for chatID, entry := range l.limiters {
		if now.Sub(entry.lastSeen) > l.idleTTL {
			delete(l.limiters, chatID)
		}
	}
}

// Size returns the number of tracked chats
func (l *ChatLimiter) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}
