// Package ratelimit ограничивает частоту запросов на решение планов.
// Ключ лимита выбирает вызывающая сторона: HTTP middleware передаёт
// IP клиента либо идентификатор пользователя из JWT.
package ratelimit

import (
	"context"
	"errors"
	"time"
)

var (
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	ErrLimiterClosed     = errors.New("limiter is closed")
)

// Стратегии подсчёта запросов.
const (
	StrategySlidingWindow = "sliding_window"
	StrategyTokenBucket   = "token_bucket"
)

// Limiter контракт ограничителя. Реализации потокобезопасны.
type Limiter interface {
	// Allow сообщает, разрешён ли очередной запрос по ключу.
	Allow(ctx context.Context, key string) (bool, error)

	// Reset сбрасывает накопленный счёт для ключа.
	Reset(ctx context.Context, key string) error

	// GetInfo возвращает состояние лимита для заголовков X-RateLimit-*.
	GetInfo(ctx context.Context, key string) (*LimitInfo, error)

	// Close останавливает фоновые процессы лимитера.
	Close() error
}

// LimitInfo состояние лимита по одному ключу
type LimitInfo struct {
	Limit      int           `json:"limit"`
	Remaining  int           `json:"remaining"`
	ResetAt    time.Time     `json:"reset_at"`
	RetryAfter time.Duration `json:"retry_after,omitempty"`
}

// Config параметры лимитера
type Config struct {
	// Requests допустимое число запросов в окне
	Requests int `koanf:"requests"`

	// Window длительность окна
	Window time.Duration `koanf:"window"`

	// Strategy sliding_window или token_bucket
	Strategy string `koanf:"strategy"`

	// Backend memory или redis
	Backend string `koanf:"backend"`

	// BurstSize запас сверх Requests для token bucket
	BurstSize int `koanf:"burst_size"`

	// CleanupInterval период удаления неактивных ключей (memory)
	CleanupInterval time.Duration `koanf:"cleanup_interval"`

	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`
}

// DefaultConfig 100 запросов в минуту по скользящему окну.
func DefaultConfig() *Config {
	return &Config{
		Requests:        100,
		Window:          time.Minute,
		Strategy:        StrategySlidingWindow,
		Backend:         "memory",
		BurstSize:       10,
		CleanupInterval: 5 * time.Minute,
	}
}

// New создаёт лимитер по конфигурации. Неизвестный бэкенд трактуется
// как memory.
func New(cfg *Config) (Limiter, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if cfg.Backend == "redis" {
		return NewRedisLimiter(cfg)
	}
	return NewMemoryLimiter(cfg), nil
}
