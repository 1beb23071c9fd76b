package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
)

// RedisStore implements Store interface using Redis, for deployments with
// more than one instance behind a load balancer.
type RedisStore struct {
	client *redis.Client
	logger zerolog.Logger
}

// NewRedisStore creates a new Redis-based store
func NewRedisStore(logger zerolog.Logger, host string, port int, password string, db int, timeout time.Duration) (*RedisStore, error) {
	logger.Info().
		Str("host", host).
		Int("port", port).
		Int("db", db).
		Dur("timeout", timeout).
		Msg("Connecting to Redis")

	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Password:     password,
		DB:           db,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
		MaxRetries:   3,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{client: client, logger: logger}, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (int, time.Time, error) {
	pipe := s.client.Pipeline()
	countCmd := pipe.Get(ctx, key)
	ttlCmd := pipe.TTL(ctx, key)

	_, err := pipe.Exec(ctx)
	if err != nil && err != redis.Nil {
		s.logger.Error().Err(err).Str("key", key).Msg("Failed to get rate limit data from Redis")
		return 0, time.Now(), err
	}

	count := 0
	if val, err := countCmd.Result(); err == nil {
		count, _ = strconv.Atoi(val)
	}

	resetTime := time.Now().Add(ttlCmd.Val())
	return count, resetTime, nil
}

func (s *RedisStore) Increment(ctx context.Context, key string, resetTime time.Time) (int, error) {
	pipe := s.client.Pipeline()

	incr := pipe.Incr(ctx, key)
	pipe.PExpire(ctx, key, time.Until(resetTime))

	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("Failed to increment rate limit counter in Redis")
		return 0, err
	}

	return int(incr.Val()), nil
}

func (s *RedisStore) Reset(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("Failed to reset rate limit counter in Redis")
		return err
	}
	return nil
}

func (s *RedisStore) Close() error {
	s.logger.Info().Msg("Closing Redis connection")
	return s.client.Close()
}
