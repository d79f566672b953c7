package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"techsel/pkg/database"
	"techsel/pkg/domain"
	"techsel/pkg/telemetry"
)

// PostgresSolutionRepository PostgreSQL реализация
type PostgresSolutionRepository struct {
	db database.DB
}

// NewPostgresSolutionRepository создаёт новый репозиторий
func NewPostgresSolutionRepository(db database.DB) *PostgresSolutionRepository {
	return &PostgresSolutionRepository{db: db}
}

func (r *PostgresSolutionRepository) Save(ctx context.Context, sol *domain.Solution) error {
	ctx, span := telemetry.StartSpan(ctx, "PostgresSolutionRepository.Save")
	defer span.End()

	query := `
		INSERT INTO solutions (
			plan_hash, revenue, max_flow, chosen,
			technology_count, dependency_count, solve_duration_ns
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query,
		sol.PlanHash,
		sol.Revenue,
		sol.MaxFlow,
		sol.Chosen,
		sol.TechnologyCount,
		sol.DependencyCount,
		sol.SolveDuration.Nanoseconds(),
	).Scan(&sol.ID, &sol.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to save solution: %w", err)
	}

	return nil
}

func (r *PostgresSolutionRepository) GetByID(ctx context.Context, id string) (*domain.Solution, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostgresSolutionRepository.GetByID")
	defer span.End()

	query := `
		SELECT
			id, plan_hash, revenue, max_flow, chosen,
			technology_count, dependency_count, solve_duration_ns, created_at
		FROM solutions
		WHERE id = $1
	`

	return r.scanSolution(r.db.QueryRow(ctx, query, id))
}

func (r *PostgresSolutionRepository) GetByPlanHash(ctx context.Context, planHash string) (*domain.Solution, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostgresSolutionRepository.GetByPlanHash")
	defer span.End()

	query := `
		SELECT
			id, plan_hash, revenue, max_flow, chosen,
			technology_count, dependency_count, solve_duration_ns, created_at
		FROM solutions
		WHERE plan_hash = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	return r.scanSolution(r.db.QueryRow(ctx, query, planHash))
}

func (r *PostgresSolutionRepository) scanSolution(row pgx.Row) (*domain.Solution, error) {
	sol := &domain.Solution{}
	var chosen pgtype.Array[string]
	var durationNs int64

	err := row.Scan(
		&sol.ID,
		&sol.PlanHash,
		&sol.Revenue,
		&sol.MaxFlow,
		&chosen,
		&sol.TechnologyCount,
		&sol.DependencyCount,
		&durationNs,
		&sol.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSolutionNotFound
		}
		return nil, fmt.Errorf("failed to get solution: %w", err)
	}

	sol.Chosen = chosen.Elements
	sol.SolveDuration = time.Duration(durationNs)

	return sol, nil
}

func (r *PostgresSolutionRepository) List(
	ctx context.Context,
	filter *domain.SolutionFilter,
) ([]*domain.Solution, int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostgresSolutionRepository.List")
	defer span.End()

	if filter == nil {
		filter = &domain.SolutionFilter{}
	}
	filter.Normalize()

	// COUNT и страница читаются в одной транзакции, чтобы total
	// соответствовал возвращённой странице.
	page, err := database.WithTransactionResult(ctx, r.db, func(tx pgx.Tx) (solutionPage, error) {
		var p solutionPage

		if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM solutions`).Scan(&p.total); err != nil {
			return p, fmt.Errorf("failed to count solutions: %w", err)
		}

		query := `
			SELECT
				id, plan_hash, revenue, max_flow, chosen,
				technology_count, dependency_count, solve_duration_ns, created_at
			FROM solutions
			ORDER BY created_at DESC
			LIMIT $1 OFFSET $2
		`

		rows, err := tx.Query(ctx, query, filter.Limit, filter.Offset)
		if err != nil {
			return p, fmt.Errorf("failed to list solutions: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			sol := &domain.Solution{}
			var chosen pgtype.Array[string]
			var durationNs int64

			err := rows.Scan(
				&sol.ID,
				&sol.PlanHash,
				&sol.Revenue,
				&sol.MaxFlow,
				&chosen,
				&sol.TechnologyCount,
				&sol.DependencyCount,
				&durationNs,
				&sol.CreatedAt,
			)
			if err != nil {
				return p, fmt.Errorf("failed to scan solution: %w", err)
			}

			sol.Chosen = chosen.Elements
			sol.SolveDuration = time.Duration(durationNs)
			p.solutions = append(p.solutions, sol)
		}

		if err := rows.Err(); err != nil {
			return p, fmt.Errorf("rows iteration error: %w", err)
		}

		return p, nil
	})
	if err != nil {
		return nil, 0, err
	}

	return page.solutions, page.total, nil
}

// solutionPage результат постраничной выборки
type solutionPage struct {
	solutions []*domain.Solution
	total     int64
}

func (r *PostgresSolutionRepository) Delete(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "PostgresSolutionRepository.Delete")
	defer span.End()

	result, err := r.db.Exec(ctx, `DELETE FROM solutions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete solution: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrSolutionNotFound
	}

	return nil
}
