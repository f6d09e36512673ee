package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"grocery-analytics/internal/config"
	"grocery-analytics/internal/logger"
	"grocery-analytics/internal/redis"
)

// RateLimiter ограничивает число запросов клиента в фиксированном окне.
type RateLimiter struct {
	redis   rateRedis
	log     *logger.Logger
	enabled bool
	limit   int64
	window  time.Duration
	prefix  string
}

type rateRedis interface {
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	TTL(ctx context.Context, key string) (time.Duration, error)
	GetInt(ctx context.Context, key string) (int64, error)
}

// NewRateLimiter создает rate limiter; без Redis или при выключенной настройке пропускает все.
func NewRateLimiter(redisClient *redis.Client, log *logger.Logger, cfg *config.RateLimitConfig) *RateLimiter {
	if redisClient == nil || cfg == nil || !cfg.Enabled || cfg.Requests <= 0 || cfg.WindowSeconds <= 0 {
		return &RateLimiter{enabled: false}
	}

	return newRateLimiter(redisClient, log, cfg)
}

func newRateLimiter(store rateRedis, log *logger.Logger, cfg *config.RateLimitConfig) *RateLimiter {
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "ratelimit"
	}

	return &RateLimiter{
		redis:   store,
		log:     log,
		enabled: true,
		limit:   int64(cfg.Requests),
		window:  time.Duration(cfg.WindowSeconds) * time.Second,
		prefix:  prefix,
	}
}

// Allow учитывает запрос и сообщает, укладывается ли клиент в лимит.
func (r *RateLimiter) Allow(ctx context.Context, key string) (allowed bool, remaining int64, resetAt time.Time, err error) {
	if !r.enabled {
		return true, r.limit, time.Now().Add(r.window), nil
	}

	redisKey := r.makeKey(key)
	count, err := r.redis.Incr(ctx, redisKey)
	if err != nil {
		return false, 0, time.Time{}, fmt.Errorf("rate limiter incr failed: %w", err)
	}

	if count == 1 {
		if err := r.redis.Expire(ctx, redisKey, r.window); err != nil {
			r.log.WithError(err).WithField("key", redisKey).Warn("Failed to set rate limit ttl")
		}
	}

	remaining = r.limit - count
	if remaining < 0 {
		remaining = 0
	}

	return count <= r.limit, remaining, r.resetAt(ctx, redisKey), nil
}

// Usage возвращает использованное число запросов без учета нового.
func (r *RateLimiter) Usage(ctx context.Context, key string) (used int64, remaining int64, resetAt *time.Time, err error) {
	if !r.enabled {
		return 0, r.limit, nil, nil
	}

	redisKey := r.makeKey(key)
	count, err := r.redis.GetInt(ctx, redisKey)
	if err != nil {
		if errors.Is(err, redis.ErrCacheMiss) {
			return 0, r.limit, nil, nil
		}
		return 0, 0, nil, fmt.Errorf("rate limiter usage failed: %w", err)
	}

	reset := r.resetAt(ctx, redisKey)
	remaining = r.limit - count
	if remaining < 0 {
		remaining = 0
	}
	return count, remaining, &reset, nil
}

func (r *RateLimiter) resetAt(ctx context.Context, redisKey string) time.Time {
	ttl, err := r.redis.TTL(ctx, redisKey)
	if err != nil || ttl <= 0 {
		if err != nil {
			r.log.WithError(err).WithField("key", redisKey).Warn("Failed to get rate limit ttl")
		}
		ttl = r.window
	}
	return time.Now().Add(ttl)
}

func (r *RateLimiter) makeKey(key string) string {
	return redis.GenerateKey(r.prefix, strings.ReplaceAll(key, ":", "_"))
}

// Limit возвращает лимит окна.
func (r *RateLimiter) Limit() int64 {
	return r.limit
}

// Enabled сообщает, включено ли ограничение.
func (r *RateLimiter) Enabled() bool {
	return r.enabled
}

// ExtractClientIP получает IP клиента из X-Real-IP, X-Forwarded-For или RemoteAddr.
func ExtractClientIP(r *http.Request) string {
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if first := strings.TrimSpace(strings.Split(forwarded, ",")[0]); first != "" {
			return first
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
