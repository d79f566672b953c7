package cache

import (
	"context"
	"encoding/json"
	"time"

	"techsel/pkg/domain"
)

// PlannerCache специализированный кэш для результатов оптимизации планов
type PlannerCache struct {
	cache      Cache
	defaultTTL time.Duration
}

// CachedSelection кэшированный результат оптимизации
type CachedSelection struct {
	Revenue         int64     `json:"revenue"`
	Chosen          []string  `json:"chosen"`
	MaxFlow         int64     `json:"max_flow"`
	TechnologyCount int       `json:"technology_count"`
	DependencyCount int       `json:"dependency_count"`
	ComputedAt      time.Time `json:"computed_at"`
}

// NewPlannerCache создаёт кэш для результатов оптимизации
func NewPlannerCache(cache Cache, defaultTTL time.Duration) *PlannerCache {
	if defaultTTL <= 0 {
		defaultTTL = 10 * time.Minute
	}
	return &PlannerCache{
		cache:      cache,
		defaultTTL: defaultTTL,
	}
}

// Get получает кэшированный результат по хешу плана
func (pc *PlannerCache) Get(ctx context.Context, planHash string) (*CachedSelection, bool, error) {
	key := BuildSolveKey(planHash)

	data, err := pc.cache.Get(ctx, key)
	if err != nil {
		if err == ErrKeyNotFound {
			return nil, false, nil
		}
		return nil, false, err
	}

	var result CachedSelection
	if err := json.Unmarshal(data, &result); err != nil {
		// Повреждённый кэш удаляем, ошибку удаления игнорируем намеренно
		_ = pc.cache.Delete(ctx, key) //nolint:errcheck // best effort cleanup
		return nil, false, nil
	}

	return &result, true, nil
}

// Set сохраняет результат в кэш
func (pc *PlannerCache) Set(ctx context.Context, planHash string, result *CachedSelection, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = pc.defaultTTL
	}

	result.ComputedAt = time.Now()

	data, err := json.Marshal(result)
	if err != nil {
		return err
	}

	return pc.cache.Set(ctx, BuildSolveKey(planHash), data, ttl)
}

// Invalidate удаляет кэш для плана
func (pc *PlannerCache) Invalidate(ctx context.Context, planHash string) error {
	return pc.cache.Delete(ctx, BuildSolveKey(planHash))
}

// InvalidateAll удаляет весь кэш результатов
func (pc *PlannerCache) InvalidateAll(ctx context.Context) (int64, error) {
	return pc.cache.DeleteByPattern(ctx, "solve:*")
}

// ToSelection конвертирует кэшированный результат в Selection
func (r *CachedSelection) ToSelection() *domain.Selection {
	return &domain.Selection{
		Revenue: r.Revenue,
		Chosen:  r.Chosen,
	}
}
