package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrLimiterUnavailable = errors.New("attempt limiter store unavailable")

// AttemptLimiter is the keyed counter service consulted by the login
// flow. Implementations must increment-and-read atomically so that
// concurrent failures from the same key are not undercounted.
type AttemptLimiter interface {
	Hit(ctx context.Context, key string) error
	TooManyAttempts(ctx context.Context, key string) (bool, error)
	AvailableIn(ctx context.Context, key string) (time.Duration, error)
	Clear(ctx context.Context, key string) error
}

type LimiterConfig struct {
	MaxAttempts int
	DecayWindow time.Duration
}

// LoginKey derives the limiter key for a client IP.
func LoginKey(ip string) string {
	return "login." + ip
}

// RedisAttemptLimiter counts attempts in a fixed decay window using
// INCR plus an EXPIRE applied on the first hit of the window.
type RedisAttemptLimiter struct {
	redis  redis.UniversalClient
	config LimiterConfig
}

func NewRedisAttemptLimiter(redisClient redis.UniversalClient, cfg LimiterConfig) *RedisAttemptLimiter {
	return &RedisAttemptLimiter{
		redis:  redisClient,
		config: cfg,
	}
}

func (l *RedisAttemptLimiter) Hit(ctx context.Context, key string) error {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLimiterUnavailable, err)
	}

	// Fixed-window semantics: set TTL only for the first hit in the window.
	if count == 1 {
		if err := l.redis.Expire(ctx, key, l.config.DecayWindow).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrLimiterUnavailable, err)
		}
	}

	return nil
}

func (l *RedisAttemptLimiter) TooManyAttempts(ctx context.Context, key string) (bool, error) {
	count, err := l.redis.Get(ctx, key).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %v", ErrLimiterUnavailable, err)
	}

	return count >= int64(l.config.MaxAttempts), nil
}

func (l *RedisAttemptLimiter) AvailableIn(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := l.redis.TTL(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrLimiterUnavailable, err)
	}
	if ttl < 0 {
		return 0, nil
	}
	return ttl, nil
}

func (l *RedisAttemptLimiter) Clear(ctx context.Context, key string) error {
	if err := l.redis.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrLimiterUnavailable, err)
	}
	return nil
}
