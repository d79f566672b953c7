// Package service orchestrates plan optimisation: validation, caching,
// network construction, persistence and observability.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"techsel/internal/flownet"
	"techsel/internal/repository"
	"techsel/pkg/apperror"
	"techsel/pkg/cache"
	"techsel/pkg/config"
	"techsel/pkg/domain"
	"techsel/pkg/logger"
	"techsel/pkg/metrics"
	"techsel/pkg/telemetry"
)

// PlannerService решает планы выбора технологий
type PlannerService struct {
	cfg     config.SolverConfig
	repo    repository.SolutionRepository
	cache   *cache.PlannerCache
	metrics *metrics.Metrics
}

// SolveResult результат решения плана
type SolveResult struct {
	Solution *domain.Solution
	Cached   bool
}

// NewPlannerService создаёт сервис. Репозиторий и кэш опциональны:
// без них сервис решает планы, но не сохраняет и не кэширует результаты.
func NewPlannerService(cfg config.SolverConfig, repo repository.SolutionRepository, plannerCache *cache.PlannerCache) *PlannerService {
	return &PlannerService{
		cfg:     cfg,
		repo:    repo,
		cache:   plannerCache,
		metrics: metrics.Get(),
	}
}

// Solve валидирует план, решает его и возвращает выбранное множество.
// Повторное решение того же плана обслуживается из кэша.
func (s *PlannerService) Solve(ctx context.Context, plan *domain.Plan) (*SolveResult, error) {
	planHash := cache.PlanHash(plan)

	ctx, span := telemetry.StartSpan(ctx, "PlannerService.Solve",
		trace.WithAttributes(telemetry.PlanAttributes(plan.TechnologyCount(), plan.DependencyCount(), planHash)...),
	)
	defer span.End()

	if err := s.validate(ctx, plan); err != nil {
		telemetry.SetError(ctx, err)
		return nil, err
	}

	s.metrics.RecordPlanSize("solve", plan.TechnologyCount(), plan.DependencyCount())

	// Кэш
	if s.cache != nil {
		cached, found, err := s.cache.Get(ctx, planHash)
		s.metrics.RecordCacheLookup(found)
		if err == nil && found {
			telemetry.AddEvent(ctx, "cache_hit",
				attribute.Int64("revenue", cached.Revenue),
			)
			span.SetAttributes(attribute.Bool(telemetry.AttrCacheHit, true))
			s.metrics.RecordSolveOperation("cache", true, 0, cached.Revenue)

			return &SolveResult{Solution: s.solutionFromCache(planHash, cached), Cached: true}, nil
		}
		span.SetAttributes(attribute.Bool(telemetry.AttrCacheHit, false))
	}

	start := time.Now()

	nw, err := buildNetwork(plan)
	if err != nil {
		telemetry.SetError(ctx, err)
		s.metrics.RecordSolveOperation("computed", false, time.Since(start), 0)
		return nil, err
	}

	sel, err := s.optimise(ctx, nw)
	elapsed := time.Since(start)
	if err != nil {
		telemetry.SetError(ctx, err)
		s.metrics.RecordSolveOperation("computed", false, elapsed, 0)
		return nil, err
	}

	maxFlow := nw.MaxFlow()

	span.SetAttributes(telemetry.SolveAttributes(maxFlow, sel.Revenue, len(sel.Chosen))...)
	s.metrics.RecordSolveOperation("computed", true, elapsed, sel.Revenue)
	s.metrics.RecordChosen("solve", len(sel.Chosen))

	sol := &domain.Solution{
		PlanHash:        planHash,
		Revenue:         sel.Revenue,
		Chosen:          sel.Chosen,
		TechnologyCount: plan.TechnologyCount(),
		DependencyCount: plan.DependencyCount(),
		MaxFlow:         maxFlow,
		SolveDuration:   elapsed,
	}

	// Сохранение best effort: ошибка хранилища не отменяет результат
	if s.repo != nil {
		if err := s.repo.Save(ctx, sol); err != nil {
			logger.Log.Warn("Failed to persist solution", "error", err, "plan_hash", planHash)
		}
	}

	if s.cache != nil {
		entry := &cache.CachedSelection{
			Revenue:         sel.Revenue,
			Chosen:          sel.Chosen,
			MaxFlow:         maxFlow,
			TechnologyCount: plan.TechnologyCount(),
			DependencyCount: plan.DependencyCount(),
			ComputedAt:      time.Now(),
		}
		if err := s.cache.Set(ctx, planHash, entry, 0); err != nil {
			logger.Log.Warn("Failed to cache solution", "error", err, "plan_hash", planHash)
		}
	}

	return &SolveResult{Solution: sol, Cached: false}, nil
}

// optimise выполняет оптимизацию с учётом таймаута из конфигурации.
func (s *PlannerService) optimise(ctx context.Context, nw *flownet.Network) (*domain.Selection, error) {
	if s.cfg.SolveTimeout <= 0 {
		return nw.Optimise(), nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.SolveTimeout)
	defer cancel()

	done := make(chan *domain.Selection, 1)
	go func() {
		done <- nw.Optimise()
	}()

	select {
	case sel := <-done:
		return sel, nil
	case <-ctx.Done():
		return nil, apperror.Wrap(ctx.Err(), apperror.CodeTimeout,
			fmt.Sprintf("optimisation exceeded %s", s.cfg.SolveTimeout))
	}
}

func (s *PlannerService) validate(ctx context.Context, plan *domain.Plan) error {
	if plan.TechnologyCount() > s.cfg.MaxTechnologies {
		return apperror.New(apperror.CodeInvalidArgument,
			fmt.Sprintf("plan has %d technologies, limit is %d", plan.TechnologyCount(), s.cfg.MaxTechnologies))
	}
	if plan.DependencyCount() > s.cfg.MaxDependencies {
		return apperror.New(apperror.CodeInvalidArgument,
			fmt.Sprintf("plan has %d dependencies, limit is %d", plan.DependencyCount(), s.cfg.MaxDependencies))
	}

	vErrs := plan.Validate()
	telemetry.AddEvent(ctx, "plan_validated",
		telemetry.ValidationAttributes(len(vErrs.Errors), vErrs.IsValid())...,
	)

	if !vErrs.IsValid() {
		first := vErrs.Errors[0]
		if len(vErrs.Errors) > 1 {
			return first.WithDetails("validation_errors", vErrs.ErrorMessages())
		}
		return first
	}

	return nil
}

func (s *PlannerService) solutionFromCache(planHash string, cached *cache.CachedSelection) *domain.Solution {
	return &domain.Solution{
		PlanHash:        planHash,
		Revenue:         cached.Revenue,
		Chosen:          cached.Chosen,
		TechnologyCount: cached.TechnologyCount,
		DependencyCount: cached.DependencyCount,
		MaxFlow:         cached.MaxFlow,
	}
}

// buildNetwork строит поточную сеть из плана в порядке объявления.
func buildNetwork(plan *domain.Plan) (*flownet.Network, error) {
	nw := flownet.NewNetwork()

	for _, tech := range plan.Technologies {
		if err := nw.AddTechnology(tech.Name, tech.Profit, tech.Cost); err != nil {
			return nil, err
		}
	}

	for _, dep := range plan.Dependencies {
		if err := nw.AddDependency(dep.From, dep.To); err != nil {
			return nil, err
		}
	}

	return nw, nil
}

// GetSolution возвращает сохранённое решение по идентификатору.
func (s *PlannerService) GetSolution(ctx context.Context, id string) (*domain.Solution, error) {
	ctx, span := telemetry.StartSpan(ctx, "PlannerService.GetSolution")
	defer span.End()

	if s.repo == nil {
		return nil, apperror.New(apperror.CodeUnimplemented, "solution storage is not configured")
	}

	sol, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrSolutionNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, apperror.Wrap(err, apperror.CodeInternal, "failed to load solution")
	}

	return sol, nil
}

// ListSolutions возвращает страницу сохранённых решений.
func (s *PlannerService) ListSolutions(ctx context.Context, filter *domain.SolutionFilter) ([]*domain.Solution, int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "PlannerService.ListSolutions")
	defer span.End()

	if s.repo == nil {
		return nil, 0, apperror.New(apperror.CodeUnimplemented, "solution storage is not configured")
	}

	sols, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, apperror.Wrap(err, apperror.CodeInternal, "failed to list solutions")
	}

	return sols, total, nil
}
