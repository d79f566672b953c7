package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"

	"techsel/pkg/config"
)

// CSVGenerator генератор CSV отчётов
type CSVGenerator struct {
	BaseGenerator
}

// NewCSVGenerator создаёт новый генератор
func NewCSVGenerator(cfg config.ReportConfig) *CSVGenerator {
	return &CSVGenerator{BaseGenerator{cfg: cfg}}
}

// Format возвращает формат генератора
func (g *CSVGenerator) Format() Format {
	return FormatCSV
}

// ContentType возвращает MIME-тип
func (g *CSVGenerator) ContentType() string {
	return "text/csv"
}

// csvWriter обёртка для отслеживания ошибок
type csvWriter struct {
	w   *csv.Writer
	err error
}

func (cw *csvWriter) Write(record []string) {
	if cw.err != nil {
		return
	}
	cw.err = cw.w.Write(record)
}

func (cw *csvWriter) Flush() {
	if cw.err != nil {
		return
	}
	cw.w.Flush()
	cw.err = cw.w.Error()
}

func (cw *csvWriter) Error() error {
	return cw.err
}

// Generate генерирует CSV отчёт
func (g *CSVGenerator) Generate(_ context.Context, data *ReportData) ([]byte, error) {
	var buf bytes.Buffer
	cw := &csvWriter{w: csv.NewWriter(&buf)}

	sol := data.Solution

	cw.Write([]string{"# " + g.GetTitle(data)})
	cw.Write([]string{"Generated", g.FormatTimestamp(g.GetGeneratedAt(data))})
	cw.Write([]string{"Company", g.GetCompanyName(data)})
	cw.Write([]string{""})

	cw.Write([]string{"Solution"})
	cw.Write([]string{"ID", sol.ID})
	cw.Write([]string{"Plan Hash", sol.PlanHash})
	cw.Write([]string{"Revenue", fmt.Sprintf("%d", sol.Revenue)})
	cw.Write([]string{"Max Flow", fmt.Sprintf("%d", sol.MaxFlow)})
	cw.Write([]string{"Technologies", fmt.Sprintf("%d", sol.TechnologyCount)})
	cw.Write([]string{"Dependencies", fmt.Sprintf("%d", sol.DependencyCount)})
	cw.Write([]string{"Solve Time", g.FormatDuration(sol.SolveDuration)})
	if !sol.CreatedAt.IsZero() {
		cw.Write([]string{"Created At", g.FormatTimestamp(sol.CreatedAt)})
	}
	cw.Write([]string{""})

	cw.Write([]string{"Chosen Technologies"})
	cw.Write([]string{"#", "Name"})
	maxRows := g.MaxTableRows()
	for i, name := range sol.Chosen {
		if i >= maxRows {
			cw.Write([]string{"", fmt.Sprintf("... and %d more", len(sol.Chosen)-maxRows)})
			break
		}
		cw.Write([]string{fmt.Sprintf("%d", i+1), name})
	}
	if len(sol.Chosen) == 0 {
		cw.Write([]string{"", "none"})
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, fmt.Errorf("csv write error: %w", err)
	}

	return buf.Bytes(), nil
}
