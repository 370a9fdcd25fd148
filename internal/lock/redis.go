package lock

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only while it still carries our token, so an
// expired handle never removes a lock someone else acquired since.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis is a Provider shared by every process using the same Redis.
// A name with MaxHolders n is stored as n slot keys "<prefix>:<name>:<i>".
type Redis struct {
	rdb    *redis.Client
	prefix string
}

type RedisOption func(*Redis)

// WithPrefix sets the key prefix (default "lock").
func WithPrefix(prefix string) RedisOption {
	return func(r *Redis) { r.prefix = strings.Trim(prefix, ":") }
}

// NewRedis creates a Redis-backed lock provider.
func NewRedis(rdb *redis.Client, opts ...RedisOption) *Redis {
	r := &Redis{rdb: rdb, prefix: "lock"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Redis) Acquire(ctx context.Context, name string, opts Options) (Handle, error) {
	opts = opts.WithDefaults()

	token, err := newToken()
	if err != nil {
		return nil, err
	}

	deadline := time.Now().Add(opts.Wait)
	for {
		for slot := 0; slot < opts.MaxHolders; slot++ {
			key := fmt.Sprintf("%s:%s:%d", r.prefix, name, slot)
			ok, err := r.rdb.SetNX(ctx, key, token, opts.Lease).Result()
			if err != nil {
				return nil, fmt.Errorf("acquire lock %s: %w", name, err)
			}
			if ok {
				return &redisHandle{rdb: r.rdb, key: key, token: token}, nil
			}
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, ErrConflict
		}

		wait := opts.PollInterval
		if remaining < wait {
			wait = remaining
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
}

type redisHandle struct {
	rdb   *redis.Client
	key   string
	token string
}

func (h *redisHandle) Release(ctx context.Context) error {
	if err := releaseScript.Run(ctx, h.rdb, []string{h.key}, h.token).Err(); err != nil {
		return fmt.Errorf("release lock %s: %w", h.key, err)
	}
	return nil
}

func newToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate lock token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
