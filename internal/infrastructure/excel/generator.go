// Package excel genera reportes como libros .xlsx.
package excel

import (
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/printshop-api/internal/application/dto"
	"github.com/xuri/excelize/v2"
)

const (
	summarySheet = "Coverage"
	sourcesSheet = "Price sources"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// PricingCoverage escribe la hoja resumen y un desglose por fuente.
func (g *Generator) PricingCoverage(rep *dto.PricingCoverageReport) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	g.writeSummary(file, rep)

	if _, err := file.NewSheet(sourcesSheet); err != nil {
		return nil, err
	}
	g.writeSources(file, rep)

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeSummary(file *excelize.File, rep *dto.PricingCoverageReport) {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(summarySheet, cell, value)
	}

	set("A1", "Report")
	set("B1", "Pricing coverage")
	set("A2", "Period start")
	set("B2", formatDate(rep.From))
	set("A3", "Period end")
	set("B3", formatDate(rep.To))
	set("A4", "Generated at")
	set("B4", rep.GeneratedAt.UTC().Format(time.RFC3339))

	tableRow := 6
	headers := []string{"Document", "Total", "With price", "Missing", "Coverage %", "Sum", "Average"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, tableRow)
		set(cell, header)
	}
	rows := []struct {
		name string
		cov  dto.CoverageDTO
	}{
		{"Jobs", rep.Jobs},
		{"Estimates", rep.Estimates},
	}
	for i, r := range rows {
		row := tableRow + 1 + i
		set(fmt.Sprintf("A%d", row), r.name)
		set(fmt.Sprintf("B%d", row), r.cov.Total)
		set(fmt.Sprintf("C%d", row), r.cov.WithPrice)
		set(fmt.Sprintf("D%d", row), r.cov.Missing)
		set(fmt.Sprintf("E%d", row), r.cov.CoveragePercent.InexactFloat64())
		set(fmt.Sprintf("F%d", row), r.cov.Sum.InexactFloat64())
		set(fmt.Sprintf("G%d", row), r.cov.Average.InexactFloat64())
	}

	invRow := tableRow + len(rows) + 2
	set(fmt.Sprintf("A%d", invRow), "Invoices")
	set(fmt.Sprintf("B%d", invRow), "Count")
	set(fmt.Sprintf("C%d", invRow), "Invoiced")
	set(fmt.Sprintf("D%d", invRow), "Paid")
	set(fmt.Sprintf("E%d", invRow), "Outstanding")
	set(fmt.Sprintf("B%d", invRow+1), rep.Invoices.Count)
	set(fmt.Sprintf("C%d", invRow+1), rep.Invoices.Invoiced.InexactFloat64())
	set(fmt.Sprintf("D%d", invRow+1), rep.Invoices.Paid.InexactFloat64())
	set(fmt.Sprintf("E%d", invRow+1), rep.Invoices.Outstanding.InexactFloat64())

	_ = file.SetColWidth(summarySheet, "A", "A", 16)
	_ = file.SetColWidth(summarySheet, "B", "G", 14)
}

func (g *Generator) writeSources(file *excelize.File, rep *dto.PricingCoverageReport) {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sourcesSheet, cell, value)
	}
	set("A1", "Document")
	set("B1", "Source")
	set("C1", "Count")

	row := 2
	for _, doc := range []struct {
		name     string
		bySource map[string]int
	}{{"Jobs", rep.Jobs.BySource}, {"Estimates", rep.Estimates.BySource}} {
		for _, src := range sortedKeys(doc.bySource) {
			set(fmt.Sprintf("A%d", row), doc.name)
			set(fmt.Sprintf("B%d", row), src)
			set(fmt.Sprintf("C%d", row), doc.bySource[src])
			row++
		}
	}
	_ = file.SetColWidth(sourcesSheet, "A", "B", 20)
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format("2006-01-02")
}
