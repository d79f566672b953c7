package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	"techsel/pkg/domain"
)

// PlanHash вычисляет хеш плана для использования как ключ кэша
func PlanHash(plan *domain.Plan) string {
	if plan == nil {
		return ""
	}

	data := planToCanonical(plan)
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:16])
}

// planToCanonical создаёт детерминированное представление плана.
// Технологии и зависимости сортируются, поэтому два плана с одинаковым
// содержимым в разном порядке получают одинаковый хеш.
func planToCanonical(plan *domain.Plan) []byte {
	techs := make([]domain.Technology, len(plan.Technologies))
	copy(techs, plan.Technologies)
	sort.Slice(techs, func(i, j int) bool {
		return techs[i].Name < techs[j].Name
	})

	deps := make([]domain.Dependency, len(plan.Dependencies))
	copy(deps, plan.Dependencies)
	sort.Slice(deps, func(i, j int) bool {
		if deps[i].From != deps[j].From {
			return deps[i].From < deps[j].From
		}
		return deps[i].To < deps[j].To
	})

	var result []byte
	for _, t := range techs {
		result = append(result, []byte(fmt.Sprintf("t:%s:%d:%d;", t.Name, t.Profit, t.Cost))...)
	}
	for _, d := range deps {
		result = append(result, []byte(fmt.Sprintf("d:%s>%s;", d.From, d.To))...)
	}

	return result
}

// BuildSolveKey строит ключ кэша для результата решения
func BuildSolveKey(planHash string) string {
	return fmt.Sprintf("solve:%s", planHash)
}

// QuickHash быстрый хеш для произвольных данных
func QuickHash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// ShortHash короткий хеш (16 символов)
func ShortHash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:8])
}
