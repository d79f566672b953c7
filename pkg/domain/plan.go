package domain

import (
	"techsel/pkg/apperror"
)

// Зарезервированные имена терминальных узлов сети
const (
	ReservedSourceName = "source"
	ReservedSinkName   = "sink"
)

// Technology технология из плана развития
type Technology struct {
	Name   string `json:"name"`
	Profit int64  `json:"profit"`
	Cost   int64  `json:"cost"`
}

// NetValue возвращает прибыль технологии за вычетом её стоимости
func (t *Technology) NetValue() int64 {
	return t.Profit - t.Cost
}

// Dependency зависимость между технологиями: From требует To
type Dependency struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Plan план развития: технологии и зависимости между ними
type Plan struct {
	Technologies []Technology `json:"technologies"`
	Dependencies []Dependency `json:"dependencies"`
}

// TechnologyCount возвращает количество технологий в плане
func (p *Plan) TechnologyCount() int {
	return len(p.Technologies)
}

// DependencyCount возвращает количество зависимостей в плане
func (p *Plan) DependencyCount() int {
	return len(p.Dependencies)
}

// TotalProfit возвращает суммарную потенциальную прибыль плана
func (p *Plan) TotalProfit() int64 {
	var total int64
	for i := range p.Technologies {
		total += p.Technologies[i].Profit
	}
	return total
}

// TotalCost возвращает суммарную стоимость всех технологий плана
func (p *Plan) TotalCost() int64 {
	var total int64
	for i := range p.Technologies {
		total += p.Technologies[i].Cost
	}
	return total
}

// Validate проверяет корректность плана и собирает все найденные ошибки
func (p *Plan) Validate() *apperror.ValidationErrors {
	ve := apperror.NewValidationErrors()

	if len(p.Technologies) == 0 {
		ve.Add(apperror.ErrEmptyPlan)
		return ve
	}

	seen := make(map[string]struct{}, len(p.Technologies))
	for i := range p.Technologies {
		t := &p.Technologies[i]

		if t.Name == "" {
			ve.Add(apperror.ErrEmptyTechnologyName)
			continue
		}
		if t.Name == ReservedSourceName || t.Name == ReservedSinkName {
			ve.AddErrorWithField(apperror.CodeReservedTechnologyName,
				"technology name is reserved", t.Name)
		}
		if _, dup := seen[t.Name]; dup {
			ve.AddErrorWithField(apperror.CodeDuplicateTechnology,
				"technology is already registered", t.Name)
		}
		seen[t.Name] = struct{}{}

		if t.Profit < 0 {
			ve.AddErrorWithField(apperror.CodeNegativeProfit,
				"profit cannot be negative", t.Name)
		}
		if t.Cost < 0 {
			ve.AddErrorWithField(apperror.CodeNegativeCost,
				"cost cannot be negative", t.Name)
		}
	}

	for i := range p.Dependencies {
		d := &p.Dependencies[i]
		if _, ok := seen[d.From]; !ok {
			ve.AddErrorWithField(apperror.CodeUnknownTechnology,
				"dependency references an unregistered technology", d.From)
		}
		if _, ok := seen[d.To]; !ok {
			ve.AddErrorWithField(apperror.CodeUnknownTechnology,
				"dependency references an unregistered technology", d.To)
		}
	}

	return ve
}
