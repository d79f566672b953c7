package domain

import (
	"time"
)

// Selection результат оптимизации: выручка и выбранные технологии
type Selection struct {
	Revenue int64    `json:"revenue"`
	Chosen  []string `json:"chosen"`
}

// Contains проверяет, входит ли технология в выбранное множество
func (s *Selection) Contains(name string) bool {
	for _, n := range s.Chosen {
		if n == name {
			return true
		}
	}
	return false
}

// IsEmpty проверяет, пусто ли выбранное множество
func (s *Selection) IsEmpty() bool {
	return len(s.Chosen) == 0
}

// Solution сохранённый результат решения плана
type Solution struct {
	ID              string        `json:"id"`
	PlanHash        string        `json:"plan_hash"`
	Revenue         int64         `json:"revenue"`
	Chosen          []string      `json:"chosen"`
	TechnologyCount int           `json:"technology_count"`
	DependencyCount int           `json:"dependency_count"`
	MaxFlow         int64         `json:"max_flow"`
	SolveDuration   time.Duration `json:"solve_duration_ns"`
	CreatedAt       time.Time     `json:"created_at"`
}

// SolutionFilter фильтр для постраничной выборки решений
type SolutionFilter struct {
	Limit  int
	Offset int
}

// Normalize приводит фильтр к допустимым значениям
func (f *SolutionFilter) Normalize() {
	if f.Limit <= 0 || f.Limit > 500 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
}
