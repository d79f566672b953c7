// Package report генерирует выгрузки сохранённых решений в CSV, Excel и PDF.
package report

import (
	"context"
	"fmt"
	"time"

	"techsel/pkg/apperror"
	"techsel/pkg/config"
	"techsel/pkg/domain"
)

// Format формат отчёта
type Format string

const (
	FormatCSV   Format = "csv"
	FormatExcel Format = "xlsx"
	FormatPDF   Format = "pdf"
)

// ParseFormat разбирает формат из query-параметра
func ParseFormat(s string) (Format, error) {
	switch s {
	case "csv":
		return FormatCSV, nil
	case "xlsx", "excel":
		return FormatExcel, nil
	case "pdf":
		return FormatPDF, nil
	default:
		return "", apperror.New(apperror.CodeInvalidArgument,
			fmt.Sprintf("unsupported report format %q", s))
	}
}

// ReportData данные для генерации отчёта
type ReportData struct {
	Solution    *domain.Solution
	Title       string
	CompanyName string
	GeneratedAt time.Time
}

// Generator интерфейс генератора отчётов
type Generator interface {
	Generate(ctx context.Context, data *ReportData) ([]byte, error)
	Format() Format
	ContentType() string
}

// New возвращает генератор для заданного формата
func New(format Format, cfg config.ReportConfig) (Generator, error) {
	switch format {
	case FormatCSV:
		return NewCSVGenerator(cfg), nil
	case FormatExcel:
		return NewExcelGenerator(cfg), nil
	case FormatPDF:
		return NewPDFGenerator(cfg), nil
	default:
		return nil, apperror.New(apperror.CodeInvalidArgument,
			fmt.Sprintf("unsupported report format %q", format))
	}
}

// BaseGenerator базовые утилиты для генераторов
type BaseGenerator struct {
	cfg config.ReportConfig
}

// GetTitle возвращает заголовок отчёта
func (b *BaseGenerator) GetTitle(data *ReportData) string {
	if data.Title != "" {
		return data.Title
	}
	return "Technology Selection Report"
}

// GetCompanyName возвращает название компании
func (b *BaseGenerator) GetCompanyName(data *ReportData) string {
	if data.CompanyName != "" {
		return data.CompanyName
	}
	if b.cfg.CompanyName != "" {
		return b.cfg.CompanyName
	}
	return "Techsel"
}

// GetGeneratedAt возвращает время генерации
func (b *BaseGenerator) GetGeneratedAt(data *ReportData) time.Time {
	if !data.GeneratedAt.IsZero() {
		return data.GeneratedAt
	}
	return time.Now()
}

// MaxTableRows возвращает лимит строк таблицы выбранных технологий
func (b *BaseGenerator) MaxTableRows() int {
	if b.cfg.MaxRowsInTable > 0 {
		return b.cfg.MaxRowsInTable
	}
	return 100
}

// FormatDuration форматирует длительность решения
func (b *BaseGenerator) FormatDuration(d time.Duration) string {
	ms := float64(d.Nanoseconds()) / 1e6
	if ms < 1000 {
		return fmt.Sprintf("%.2f ms", ms)
	}
	return fmt.Sprintf("%.2f s", ms/1000)
}

// FormatTimestamp форматирует время
func (b *BaseGenerator) FormatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}
