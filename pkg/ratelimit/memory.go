package ratelimit

import (
	"context"
	"sync"
	"time"
)

// clientState накопленный счёт по одному ключу
type clientState struct {
	tokens   float64     // token bucket
	refillAt time.Time   // момент последнего пополнения
	stamps   []time.Time // sliding window
}

// MemoryLimiter лимитер в памяти процесса. Подходит для одного
// экземпляра сервиса; для нескольких используется Redis-бэкенд.
type MemoryLimiter struct {
	mu      sync.RWMutex
	clients map[string]*clientState
	cfg     *Config
	stopCh  chan struct{}
	closed  bool
}

// NewMemoryLimiter создаёт лимитер и запускает фоновую очистку
// неактивных ключей.
func NewMemoryLimiter(cfg *Config) *MemoryLimiter {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	l := &MemoryLimiter{
		clients: make(map[string]*clientState),
		cfg:     cfg,
		stopCh:  make(chan struct{}),
	}

	go l.cleanupLoop()

	return l
}

func (l *MemoryLimiter) Allow(ctx context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return false, ErrLimiterClosed
	}

	st, ok := l.clients[key]
	if !ok {
		st = &clientState{
			tokens:   float64(l.cfg.Requests + l.cfg.BurstSize),
			refillAt: time.Now(),
		}
		l.clients[key] = st
	}

	if l.cfg.Strategy == StrategyTokenBucket {
		return l.takeToken(st), nil
	}
	return l.recordInWindow(st), nil
}

// takeToken пополняет ведро пропорционально прошедшему времени и
// забирает один токен, если он есть.
func (l *MemoryLimiter) takeToken(st *clientState) bool {
	now := time.Now()
	elapsed := now.Sub(st.refillAt)
	st.refillAt = now

	rate := float64(l.cfg.Requests) / l.cfg.Window.Seconds()
	st.tokens += elapsed.Seconds() * rate

	if ceiling := float64(l.cfg.Requests + l.cfg.BurstSize); st.tokens > ceiling {
		st.tokens = ceiling
	}

	if st.tokens < 1 {
		return false
	}
	st.tokens--
	return true
}

// recordInWindow отбрасывает устаревшие отметки и регистрирует запрос,
// если окно не заполнено.
func (l *MemoryLimiter) recordInWindow(st *clientState) bool {
	now := time.Now()
	cutoff := now.Add(-l.cfg.Window)

	live := st.stamps[:0]
	for _, ts := range st.stamps {
		if ts.After(cutoff) {
			live = append(live, ts)
		}
	}
	st.stamps = live

	if len(st.stamps) >= l.cfg.Requests {
		return false
	}
	st.stamps = append(st.stamps, now)
	return true
}

func (l *MemoryLimiter) Reset(ctx context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrLimiterClosed
	}

	delete(l.clients, key)
	return nil
}

func (l *MemoryLimiter) GetInfo(ctx context.Context, key string) (*LimitInfo, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.closed {
		return nil, ErrLimiterClosed
	}

	now := time.Now()
	info := &LimitInfo{
		Limit:     l.cfg.Requests,
		Remaining: l.cfg.Requests,
		ResetAt:   now.Add(l.cfg.Window),
	}

	st, ok := l.clients[key]
	if !ok {
		return info, nil
	}

	if l.cfg.Strategy == StrategyTokenBucket {
		info.Remaining = int(st.tokens)
	} else {
		cutoff := now.Add(-l.cfg.Window)
		used := 0
		oldest := now
		for _, ts := range st.stamps {
			if ts.After(cutoff) {
				used++
				if ts.Before(oldest) {
					oldest = ts
				}
			}
		}
		info.Remaining = l.cfg.Requests - used
		if info.Remaining <= 0 {
			// Запрос пройдёт, когда самая старая отметка покинет окно.
			info.RetryAfter = oldest.Add(l.cfg.Window).Sub(now)
		}
	}

	if info.Remaining < 0 {
		info.Remaining = 0
	}

	return info, nil
}

// Close останавливает очистку. Повторный вызов безопасен.
func (l *MemoryLimiter) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}

	l.closed = true
	close(l.stopCh)
	l.clients = nil
	return nil
}

func (l *MemoryLimiter) cleanupLoop() {
	interval := l.cfg.CleanupInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopCh:
			return
		case <-ticker.C:
			l.dropIdle()
		}
	}
}

// dropIdle удаляет ключи, не активные дольше двух окон.
func (l *MemoryLimiter) dropIdle() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}

	cutoff := time.Now().Add(-2 * l.cfg.Window)

	for key, st := range l.clients {
		live := st.stamps[:0]
		for _, ts := range st.stamps {
			if ts.After(cutoff) {
				live = append(live, ts)
			}
		}
		st.stamps = live

		if len(st.stamps) == 0 && st.refillAt.Before(cutoff) {
			delete(l.clients, key)
		}
	}
}
