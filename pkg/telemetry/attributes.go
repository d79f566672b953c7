package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Стандартные ключи атрибутов
const (
	// План
	AttrPlanTechnologies = "plan.technologies"
	AttrPlanDependencies = "plan.dependencies"
	AttrPlanHash         = "plan.hash"

	// Оптимизация
	AttrMaxFlow     = "solve.max_flow"
	AttrRevenue     = "solve.revenue"
	AttrChosenCount = "solve.chosen_count"
	AttrCacheHit    = "solve.cache_hit"

	// Валидация
	AttrValidationErrors = "validation.errors"
	AttrValidationPassed = "validation.passed"
)

// PlanAttributes возвращает атрибуты плана
func PlanAttributes(technologies, dependencies int, hash string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrPlanTechnologies, technologies),
		attribute.Int(AttrPlanDependencies, dependencies),
		attribute.String(AttrPlanHash, hash),
	}
}

// SolveAttributes возвращает атрибуты результата оптимизации
func SolveAttributes(maxFlow, revenue int64, chosen int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int64(AttrMaxFlow, maxFlow),
		attribute.Int64(AttrRevenue, revenue),
		attribute.Int(AttrChosenCount, chosen),
	}
}

// ValidationAttributes возвращает атрибуты валидации
func ValidationAttributes(errorsCount int, passed bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrValidationErrors, errorsCount),
		attribute.Bool(AttrValidationPassed, passed),
	}
}
