package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryLimiter keeps each user's last allowed post in process memory.
// It is the single-instance fallback for the Redis post limiter.
type MemoryLimiter struct {
	mu       sync.Mutex
	window   time.Duration
	lastPost map[uuid.UUID]time.Time
}

func NewMemoryLimiter(window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		window:   window,
		lastPost: make(map[uuid.UUID]time.Time),
	}
}

// Allow records now and returns true unless the previous allowed post is less than window ago.
// Rejected attempts do not move the timestamp.
func (l *MemoryLimiter) Allow(_ context.Context, userID uuid.UUID, now time.Time) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if last, ok := l.lastPost[userID]; ok && now.Sub(last) < l.window {
		return false, nil
	}
	l.lastPost[userID] = now
	l.evict(now)
	return true, nil
}

// evict drops entries that can no longer reject anything
func (l *MemoryLimiter) evict(now time.Time) {
	if len(l.lastPost) < 1024 {
		return
	}
	for id, last := range l.lastPost {
		if now.Sub(last) >= l.window {
			delete(l.lastPost, id)
		}
	}
}
