package repository

import (
	"context"
	"errors"

	"techsel/pkg/domain"
)

// Стандартные ошибки
var (
	ErrSolutionNotFound = errors.New("solution not found")
)

// SolutionRepository интерфейс хранилища решённых планов
type SolutionRepository interface {
	// Save сохраняет решение и заполняет ID/CreatedAt
	Save(ctx context.Context, sol *domain.Solution) error

	// GetByID возвращает решение по идентификатору
	GetByID(ctx context.Context, id string) (*domain.Solution, error)

	// GetByPlanHash возвращает последнее решение для хэша плана
	GetByPlanHash(ctx context.Context, planHash string) (*domain.Solution, error)

	// List возвращает страницу решений и общее количество
	List(ctx context.Context, filter *domain.SolutionFilter) ([]*domain.Solution, int64, error)

	// Delete удаляет решение
	Delete(ctx context.Context, id string) error
}
