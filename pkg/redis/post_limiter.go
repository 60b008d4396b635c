package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const postLimiterPrefix = "fraud:last_post:"

// PostLimiter remembers each user's last allowed post so the spam window holds across instances
type PostLimiter struct {
	client *redis.Client
	window time.Duration
}

func NewPostLimiter(client *redis.Client, window time.Duration) *PostLimiter {
	return &PostLimiter{client: client, window: window}
}

// Allow records now as the user's last post and returns true when no post was allowed inside the window.
// A rejected attempt leaves the stored timestamp untouched.
func (l *PostLimiter) Allow(ctx context.Context, userID uuid.UUID, now time.Time) (bool, error) {
	if l.window <= 0 {
		return true, nil
	}
	return l.client.SetNX(ctx, postLimiterPrefix+userID.String(), strconv.FormatInt(now.UnixMilli(), 10), l.window).Result()
}
