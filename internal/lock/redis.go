package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultNamespace = "ghsync"

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisOption is a functional option for configuring the Redis locker.
type RedisOption func(*RedisLocker)

// WithNamespace sets the key prefix used in Redis.
func WithNamespace(ns string) RedisOption {
	return func(l *RedisLocker) {
		if ns != "" {
			l.namespace = ns
		}
	}
}

// RedisLocker implements Locker with SET NX PX, so leases are shared by every
// instance pointing at the same Redis.
type RedisLocker struct {
	client    redis.UniversalClient
	namespace string
}

// NewRedisLocker connects to redisURL (e.g. "redis://localhost:6379/0") and verifies connectivity.
func NewRedisLocker(ctx context.Context, redisURL string, opts ...RedisOption) (*RedisLocker, error) {
	redisOpts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	client := redis.NewClient(redisOpts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return NewRedisLockerFromClient(client, opts...), nil
}

// NewRedisLockerFromClient wraps an existing client.
func NewRedisLockerFromClient(client redis.UniversalClient, opts ...RedisOption) *RedisLocker {
	l := &RedisLocker{client: client, namespace: defaultNamespace}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *RedisLocker) redisKey(key string) string {
	return l.namespace + ":lock:" + key
}

func (l *RedisLocker) TryAcquire(ctx context.Context, key string, ttl time.Duration) (Lease, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.redisKey(key), token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquiring lock %s: %w", key, err)
	}
	if !ok {
		return nil, ErrNotAcquired
	}
	return &redisLease{locker: l, key: key, token: token}, nil
}

func (l *RedisLocker) Close() error {
	return l.client.Close()
}

type redisLease struct {
	locker *RedisLocker
	key    string
	token  string
}

func (l *redisLease) Key() string { return l.key }

func (l *redisLease) Release(ctx context.Context) error {
	err := releaseScript.Run(ctx, l.locker.client, []string{l.locker.redisKey(l.key)}, l.token).Err()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("releasing lock %s: %w", l.key, err)
	}
	return nil
}
