package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter лимитер со скользящим окном в Redis. Счёт разделяется
// между всеми экземплярами сервиса.
type RedisLimiter struct {
	client *redis.Client
	cfg    *Config
	script *redis.Script
}

// Скрипт атомарно выбрасывает устаревшие отметки из sorted set и
// регистрирует запрос, если окно не заполнено.
const slidingWindowScript = `
local key = KEYS[1]
local limit = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local now = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)

local current = redis.call('ZCARD', key)
if current < limit then
	redis.call('ZADD', key, now, now .. ':' .. math.random())
	redis.call('EXPIRE', key, window / 1000 + 1)
	return {1, limit - current - 1}
end

return {0, 0}
`

// NewRedisLimiter подключается к Redis и проверяет соединение.
func NewRedisLimiter(cfg *Config) (*RedisLimiter, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisLimiter{
		client: client,
		cfg:    cfg,
		script: redis.NewScript(slidingWindowScript),
	}, nil
}

func limiterKey(key string) string {
	return "ratelimit:" + key
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	result, err := l.script.Run(ctx, l.client, []string{limiterKey(key)},
		l.cfg.Requests, l.cfg.Window.Milliseconds(), time.Now().UnixMilli()).Slice()
	if err != nil {
		return false, fmt.Errorf("rate limit script: %w", err)
	}
	if len(result) == 0 {
		return false, fmt.Errorf("rate limit script returned no result")
	}

	allowed, ok := result[0].(int64)
	if !ok {
		return false, fmt.Errorf("rate limit script returned %T, want int64", result[0])
	}

	return allowed == 1, nil
}

func (l *RedisLimiter) Reset(ctx context.Context, key string) error {
	return l.client.Del(ctx, limiterKey(key)).Err()
}

func (l *RedisLimiter) GetInfo(ctx context.Context, key string) (*LimitInfo, error) {
	now := time.Now()
	windowStart := now.Add(-l.cfg.Window).UnixMilli()

	count, err := l.client.ZCount(ctx, limiterKey(key),
		strconv.FormatInt(windowStart, 10), "+inf").Result()
	if err != nil {
		return nil, err
	}

	remaining := l.cfg.Requests - int(count)
	if remaining < 0 {
		remaining = 0
	}

	info := &LimitInfo{
		Limit:     l.cfg.Requests,
		Remaining: remaining,
		ResetAt:   now.Add(l.cfg.Window),
	}
	if remaining == 0 {
		info.RetryAfter = l.cfg.Window
	}

	return info, nil
}

func (l *RedisLimiter) Close() error {
	return l.client.Close()
}
