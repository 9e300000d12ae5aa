package quota

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// RedisStore is a Store backed by Redis, for multi-process deployments
// where several server instances share one quota budget.
type RedisStore struct {
	cfg    Config
	rdb    *goredis.Client
	prefix string

	now func() time.Time
}

// RedisConfig holds connection settings for the Redis-backed store.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Quota    Config
}

// NewRedisStore connects to Redis and verifies the connection with a ping.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisStore{
		cfg:    cfg.Quota.withDefaults(),
		rdb:    rdb,
		prefix: "studydeck:quota",
		now:    time.Now,
	}, nil
}

// Close releases the underlying Redis connection.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

// key embeds the window start so counters expire naturally on rollover.
func (s *RedisStore) key(userID string, now time.Time) string {
	return fmt.Sprintf("%s:%s:%d", s.prefix, userID, s.cfg.windowStart(now).Unix())
}

// Check reports current usage without consuming budget.
func (s *RedisStore) Check(ctx context.Context, userID string) (Status, error) {
	now := s.now()
	used, err := s.rdb.Get(ctx, s.key(userID, now)).Int()
	if err != nil && err != goredis.Nil {
		return Status{}, fmt.Errorf("quota check for %s: %w", userID, err)
	}
	return s.cfg.status(used, now), nil
}

// Increment consumes one unit of budget. The counter key gets a TTL of
// one window past its rollover so stale keys clean themselves up.
func (s *RedisStore) Increment(ctx context.Context, userID string) (Status, error) {
	now := s.now()
	key := s.key(userID, now)

	pipe := s.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, 2*s.cfg.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return Status{}, fmt.Errorf("quota increment for %s: %w", userID, err)
	}

	used := int(incr.Val())
	if used > s.cfg.Limit {
		// Undo the overshoot so repeated rejected requests don't
		// inflate the reported usage.
		if err := s.rdb.Decr(ctx, key).Err(); err != nil {
			return Status{}, fmt.Errorf("quota rollback for %s: %w", userID, err)
		}
		return s.cfg.status(s.cfg.Limit, now), ErrExceeded
	}
	return s.cfg.status(used, now), nil
}

// Reset clears the user's counter for the current window.
func (s *RedisStore) Reset(ctx context.Context, userID string) error {
	if err := s.rdb.Del(ctx, s.key(userID, s.now())).Err(); err != nil {
		return fmt.Errorf("quota reset for %s: %w", userID, err)
	}
	return nil
}

// Verify interface
var _ Store = (*RedisStore)(nil)
