// Package cache хранит байтовые значения по ключу с TTL. Основной
// потребитель - PlannerCache, который кэширует результаты решения
// планов по каноническому хэшу плана (ключи вида "solve:<hash>").
package cache

import (
	"context"
	"errors"
	"time"

	"techsel/pkg/config"
)

// Бэкенды кэша.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

var (
	// ErrKeyNotFound ключ отсутствует или истёк
	ErrKeyNotFound = errors.New("key not found")
	// ErrCacheClosed операция над закрытым кэшем
	ErrCacheClosed = errors.New("cache is closed")
)

// Cache общий контракт бэкендов. Значения непрозрачны для кэша,
// сериализация лежит на вызывающем (PlannerCache хранит JSON).
type Cache interface {
	// Get возвращает значение или ErrKeyNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set сохраняет значение; ttl <= 0 означает TTL по умолчанию.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete удаляет ключ; отсутствие ключа не является ошибкой.
	Delete(ctx context.Context, key string) error
	// Exists проверяет наличие ключа без чтения значения.
	Exists(ctx context.Context, key string) (bool, error)

	// DeleteByPattern удаляет ключи по шаблону ("solve:*") и возвращает
	// число удалённых. Используется для массовой инвалидации решений.
	DeleteByPattern(ctx context.Context, pattern string) (int64, error)

	// Stats возвращает счётчики попаданий и объём кэша.
	Stats(ctx context.Context) (*Stats, error)
	// Clear удаляет все ключи.
	Clear(ctx context.Context) error
	// Close останавливает фоновые процессы и освобождает ресурсы.
	Close() error
}

// Stats счётчики кэша
type Stats struct {
	TotalKeys    int64
	Hits         int64
	Misses       int64
	HitRate      float64
	MemoryBytes  int64
	KeysByPrefix map[string]int64
	Backend      string
}

// Options параметры создания кэша
type Options struct {
	Backend    string
	DefaultTTL time.Duration

	// Только для memory
	MaxEntries      int
	MaxMemoryBytes  int64
	CleanupInterval time.Duration

	// Только для redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPoolSize int
}

// DefaultOptions возвращает параметры по умолчанию: in-memory кэш
// на 100k решений с фоновой очисткой раз в минуту.
func DefaultOptions() *Options {
	return &Options{
		Backend:         BackendMemory,
		DefaultTTL:      5 * time.Minute,
		MaxEntries:      100000,
		MaxMemoryBytes:  256 * 1024 * 1024,
		CleanupInterval: time.Minute,
		RedisAddr:       "localhost:6379",
		RedisPoolSize:   10,
	}
}

// FromConfig строит опции из секции cache конфигурации сервиса.
func FromConfig(cfg *config.CacheConfig) *Options {
	return &Options{
		Backend:       cfg.Driver,
		DefaultTTL:    cfg.DefaultTTL,
		MaxEntries:    cfg.MaxEntries,
		RedisAddr:     cfg.Address(),
		RedisPassword: cfg.Password,
		RedisDB:       cfg.DB,
		RedisPoolSize: 10,
	}
}

// New создаёт кэш по опциям. Неизвестный бэкенд трактуется как memory,
// чтобы опечатка в конфигурации не оставила сервис без кэша.
func New(opts *Options) (Cache, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	if opts.Backend == BackendRedis {
		return NewRedisCache(opts)
	}
	return NewMemoryCache(opts), nil
}
