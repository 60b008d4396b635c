package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const lockPrefix = "lock:"

// releaseScript deletes the lock only if it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Lock is a SET NX lease. Release only removes a lease this instance still owns.
type Lock struct {
	client *redis.Client
	token  string
}

func NewLock(client *redis.Client) *Lock {
	return &Lock{client: client, token: uuid.NewString()}
}

func (l *Lock) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return l.client.SetNX(ctx, lockPrefix+key, l.token, ttl).Result()
}

func (l *Lock) Release(ctx context.Context, key string) error {
	return releaseScript.Run(ctx, l.client, []string{lockPrefix + key}, l.token).Err()
}
