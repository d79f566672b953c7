package report

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"techsel/pkg/config"
)

// ExcelGenerator генератор Excel отчётов
type ExcelGenerator struct {
	BaseGenerator
}

// NewExcelGenerator создаёт новый генератор
func NewExcelGenerator(cfg config.ReportConfig) *ExcelGenerator {
	return &ExcelGenerator{BaseGenerator{cfg: cfg}}
}

// Format возвращает формат генератора
func (g *ExcelGenerator) Format() Format {
	return FormatExcel
}

// ContentType возвращает MIME-тип
func (g *ExcelGenerator) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Generate генерирует Excel отчёт
func (g *ExcelGenerator) Generate(_ context.Context, data *ReportData) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Solution"
	f.NewSheet(sheetName)
	// Удаляем дефолтный лист
	f.DeleteSheet("Sheet1")

	// Стили
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	sol := data.Solution
	row := 1

	// Заголовок
	f.SetCellValue(sheetName, cellAddr("A", row), g.GetTitle(data))
	f.MergeCell(sheetName, cellAddr("A", row), cellAddr("D", row))
	row++

	f.SetCellValue(sheetName, cellAddr("A", row), "Generated")
	f.SetCellValue(sheetName, cellAddr("B", row), g.FormatTimestamp(g.GetGeneratedAt(data)))
	row++

	f.SetCellValue(sheetName, cellAddr("A", row), "Company")
	f.SetCellValue(sheetName, cellAddr("B", row), g.GetCompanyName(data))
	row += 2

	// Результаты
	f.SetCellValue(sheetName, cellAddr("A", row), "Optimization Results")
	f.SetCellStyle(sheetName, cellAddr("A", row), cellAddr("B", row), headerStyle)
	row++

	results := []struct {
		label string
		value any
	}{
		{"ID", sol.ID},
		{"Plan Hash", sol.PlanHash},
		{"Revenue", sol.Revenue},
		{"Max Flow", sol.MaxFlow},
		{"Technologies", sol.TechnologyCount},
		{"Dependencies", sol.DependencyCount},
		{"Solve Time", g.FormatDuration(sol.SolveDuration)},
	}
	for _, r := range results {
		f.SetCellValue(sheetName, cellAddr("A", row), r.label)
		f.SetCellValue(sheetName, cellAddr("B", row), r.value)
		row++
	}
	row++

	// Таблица выбранных технологий
	f.SetCellValue(sheetName, cellAddr("A", row), "Chosen Technologies")
	f.SetCellStyle(sheetName, cellAddr("A", row), cellAddr("B", row), headerStyle)
	row++

	f.SetCellValue(sheetName, cellAddr("A", row), "#")
	f.SetCellValue(sheetName, cellAddr("B", row), "Name")
	f.SetCellStyle(sheetName, cellAddr("A", row), cellAddr("B", row), headerStyle)
	row++

	maxRows := g.MaxTableRows()
	for i, name := range sol.Chosen {
		if i >= maxRows {
			f.SetCellValue(sheetName, cellAddr("B", row),
				fmt.Sprintf("... and %d more", len(sol.Chosen)-maxRows))
			row++
			break
		}
		f.SetCellValue(sheetName, cellAddr("A", row), i+1)
		f.SetCellValue(sheetName, cellAddr("B", row), name)
		row++
	}

	f.SetColWidth(sheetName, "A", "A", 18)
	f.SetColWidth(sheetName, "B", "B", 40)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func cellAddr(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
