package report

import (
	"context"
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	marotocfg "github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/border"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/core/entity"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"techsel/pkg/config"
)

// PDFGenerator генератор PDF отчётов
type PDFGenerator struct {
	BaseGenerator
}

// NewPDFGenerator создаёт новый генератор
func NewPDFGenerator(cfg config.ReportConfig) *PDFGenerator {
	return &PDFGenerator{BaseGenerator{cfg: cfg}}
}

// Format возвращает формат генератора
func (g *PDFGenerator) Format() Format {
	return FormatPDF
}

// ContentType возвращает MIME-тип
func (g *PDFGenerator) ContentType() string {
	return "application/pdf"
}

// Стили
var (
	// Цвета
	primaryColor   = &props.Color{Red: 52, Green: 152, Blue: 219}  // #3498db
	headerBgColor  = &props.Color{Red: 44, Green: 62, Blue: 80}    // #2c3e50
	lightGrayColor = &props.Color{Red: 236, Green: 240, Blue: 241} // #ecf0f1
	darkGrayColor  = &props.Color{Red: 127, Green: 140, Blue: 141} // #7f8c8d

	// Стили текста
	titleStyle = props.Text{
		Size:  24,
		Style: fontstyle.Bold,
		Align: align.Center,
		Color: headerBgColor,
	}

	h2Style = props.Text{
		Size:  16,
		Style: fontstyle.Bold,
		Color: headerBgColor,
		Top:   5,
	}

	normalStyle = props.Text{
		Size: 10,
	}

	boldStyle = props.Text{
		Size:  10,
		Style: fontstyle.Bold,
	}

	smallStyle = props.Text{
		Size:  8,
		Color: darkGrayColor,
	}

	tableHeaderStyle = &props.Cell{
		BackgroundColor: primaryColor,
	}

	tableHeaderTextStyle = props.Text{
		Size:  9,
		Style: fontstyle.Bold,
		Color: &props.Color{Red: 255, Green: 255, Blue: 255},
		Align: align.Center,
	}

	tableCellStyle = &props.Cell{
		BorderType:  border.Bottom,
		BorderColor: lightGrayColor,
	}

	tableCellTextStyle = props.Text{
		Size: 9,
	}
)

// Generate генерирует PDF отчёт
func (g *PDFGenerator) Generate(_ context.Context, data *ReportData) ([]byte, error) {
	m := maroto.New(g.buildConfig())

	g.addHeader(m, data)
	g.addSolutionContent(m, data)
	g.addFooter(m, data)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	return doc.GetBytes(), nil
}

func (g *PDFGenerator) buildConfig() *entity.Config {
	pdf := g.cfg.PDF

	builder := marotocfg.NewBuilder()

	if pdf.EnablePageNumbers {
		builder.WithPageNumber()
	}

	switch pdf.PageSize {
	case "Letter":
		builder.WithPageSize(pagesize.Letter)
	case "Legal":
		builder.WithPageSize(pagesize.Legal)
	default:
		builder.WithPageSize(pagesize.A4)
	}

	if pdf.Orientation == "landscape" {
		builder.WithOrientation(orientation.Horizontal)
	}

	if pdf.MarginLeft > 0 {
		builder.WithLeftMargin(pdf.MarginLeft)
	}
	if pdf.MarginTop > 0 {
		builder.WithTopMargin(pdf.MarginTop)
	}
	if pdf.MarginRight > 0 {
		builder.WithRightMargin(pdf.MarginRight)
	}
	if pdf.MarginBottom > 0 {
		builder.WithBottomMargin(pdf.MarginBottom)
	}

	return builder.Build()
}

func (g *PDFGenerator) addHeader(m core.Maroto, data *ReportData) {
	m.AddRow(15,
		text.NewCol(12, g.GetTitle(data), titleStyle),
	)

	m.AddRow(5,
		line.NewCol(12),
	)

	m.AddRow(6,
		text.NewCol(6, fmt.Sprintf("Company: %s", g.GetCompanyName(data)), smallStyle),
		text.NewCol(6, fmt.Sprintf("Generated: %s", g.FormatTimestamp(g.GetGeneratedAt(data))),
			props.Text{Size: 8, Color: darkGrayColor, Align: align.Right}),
	)

	m.AddRow(8) // Отступ
}

func (g *PDFGenerator) addSolutionContent(m core.Maroto, data *ReportData) {
	sol := data.Solution

	g.addSection(m, "Optimization Results")

	g.addKeyValueTable(m, []keyValue{
		{"ID", sol.ID},
		{"Plan Hash", sol.PlanHash},
		{"Revenue", fmt.Sprintf("%d", sol.Revenue)},
		{"Max Flow", fmt.Sprintf("%d", sol.MaxFlow)},
		{"Technologies", fmt.Sprintf("%d", sol.TechnologyCount)},
		{"Dependencies", fmt.Sprintf("%d", sol.DependencyCount)},
		{"Solve Time", g.FormatDuration(sol.SolveDuration)},
	})

	m.AddRow(5)

	g.addSection(m, "Chosen Technologies")

	if len(sol.Chosen) == 0 {
		m.AddRow(6,
			text.NewCol(12, "No technologies selected", normalStyle),
		)
		return
	}

	m.AddRow(8,
		text.NewCol(2, "#", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
		text.NewCol(10, "Name", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
	)

	maxRows := g.MaxTableRows()
	for i, name := range sol.Chosen {
		if i >= maxRows {
			m.AddRow(6,
				text.NewCol(12, fmt.Sprintf("... and %d more rows", len(sol.Chosen)-maxRows), smallStyle),
			)
			break
		}

		m.AddRow(6,
			text.NewCol(2, fmt.Sprintf("%d", i+1), tableCellTextStyle).WithStyle(tableCellStyle),
			text.NewCol(10, name, tableCellTextStyle).WithStyle(tableCellStyle),
		)
	}
}

type keyValue struct {
	Key   string
	Value string
}

func (g *PDFGenerator) addKeyValueTable(m core.Maroto, items []keyValue) {
	for _, item := range items {
		m.AddRow(6,
			text.NewCol(6, item.Key, boldStyle),
			text.NewCol(6, item.Value, normalStyle),
		)
	}
}

func (g *PDFGenerator) addSection(m core.Maroto, title string) {
	m.AddRow(10,
		text.NewCol(12, title, h2Style),
	)
	m.AddRow(2,
		line.NewCol(12, props.Line{Color: primaryColor}),
	)
	m.AddRow(5)
}

func (g *PDFGenerator) addFooter(m core.Maroto, data *ReportData) {
	m.AddRow(10)
	m.AddRow(2,
		line.NewCol(12, props.Line{Color: lightGrayColor}),
	)
	m.AddRow(6,
		text.NewCol(12,
			fmt.Sprintf("Generated by %s | %s", g.GetCompanyName(data), g.FormatTimestamp(g.GetGeneratedAt(data))),
			props.Text{Size: 8, Color: darkGrayColor, Align: align.Center},
		),
	)
}
