package reports

import (
	"fmt"
	"sort"

	"bitbucket.org/kumulus/repair_costs/models"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const quarterlySheet = "Quarterly"

// QuarterlyPivot lays the quarterly summary out as quarter rows by category
// columns. Missing cells are zero.
type QuarterlyPivot struct {
	Quarters   []string
	Categories []string
	Values     [][]decimal.Decimal
}

func PivotQuarterly(rows []models.QuarterlyCategorySummary) QuarterlyPivot {
	quarterIdx := make(map[string]int)
	categoryIdx := make(map[string]int)
	var p QuarterlyPivot
	for _, r := range rows {
		if _, ok := quarterIdx[r.Quarter]; !ok {
			quarterIdx[r.Quarter] = 0
			p.Quarters = append(p.Quarters, r.Quarter)
		}
		if _, ok := categoryIdx[r.Category]; !ok {
			categoryIdx[r.Category] = 0
			p.Categories = append(p.Categories, r.Category)
		}
	}
	sort.Strings(p.Quarters)
	sort.Strings(p.Categories)
	for i, q := range p.Quarters {
		quarterIdx[q] = i
	}
	for i, c := range p.Categories {
		categoryIdx[c] = i
	}

	p.Values = make([][]decimal.Decimal, len(p.Quarters))
	for i := range p.Values {
		p.Values[i] = make([]decimal.Decimal, len(p.Categories))
	}
	for _, r := range rows {
		qi, ci := quarterIdx[r.Quarter], categoryIdx[r.Category]
		p.Values[qi][ci] = p.Values[qi][ci].Add(r.TotalCost)
	}
	return p
}

func QuarterlyChartTitle(unit string) string {
	return fmt.Sprintf("Quarterly Costs by Category (%s)", unit)
}

func QuarterlyValueLabel(unit string) string {
	return fmt.Sprintf("Total Cost (%s)", unit)
}

// exportQuarterlyChart writes the pivot table and a stacked column chart with
// one series per category.
func exportQuarterlyChart(rows []models.QuarterlyCategorySummary, unit string, filename string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", quarterlySheet); err != nil {
		return err
	}

	pivot := PivotQuarterly(rows)
	if err := f.SetCellValue(quarterlySheet, "A1", "quarter"); err != nil {
		return err
	}
	for ci, category := range pivot.Categories {
		cell, err := excelize.CoordinatesToCellName(ci+2, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(quarterlySheet, cell, category); err != nil {
			return err
		}
	}
	for qi, quarter := range pivot.Quarters {
		row := qi + 2
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(quarterlySheet, cell, quarter); err != nil {
			return err
		}
		for ci, value := range pivot.Values[qi] {
			cell, err := excelize.CoordinatesToCellName(ci+2, row)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(quarterlySheet, cell, value.InexactFloat64()); err != nil {
				return err
			}
		}
	}

	if len(pivot.Quarters) > 0 {
		chart, err := quarterlyChart(pivot, unit)
		if err != nil {
			return err
		}
		anchor, err := excelize.CoordinatesToCellName(len(pivot.Categories)+3, 2)
		if err != nil {
			return err
		}
		if err := f.AddChart(quarterlySheet, anchor, chart); err != nil {
			return err
		}
	}

	return f.SaveAs(filename)
}

func quarterlyChart(pivot QuarterlyPivot, unit string) (*excelize.Chart, error) {
	lastRow := len(pivot.Quarters) + 1
	firstQuarter, err := excelize.CoordinatesToCellName(1, 2, true)
	if err != nil {
		return nil, err
	}
	lastQuarter, err := excelize.CoordinatesToCellName(1, lastRow, true)
	if err != nil {
		return nil, err
	}
	categories := fmt.Sprintf("%s!%s:%s", quarterlySheet, firstQuarter, lastQuarter)

	series := make([]excelize.ChartSeries, 0, len(pivot.Categories))
	for ci := range pivot.Categories {
		col := ci + 2
		name, err := excelize.CoordinatesToCellName(col, 1, true)
		if err != nil {
			return nil, err
		}
		from, err := excelize.CoordinatesToCellName(col, 2, true)
		if err != nil {
			return nil, err
		}
		to, err := excelize.CoordinatesToCellName(col, lastRow, true)
		if err != nil {
			return nil, err
		}
		series = append(series, excelize.ChartSeries{
			Name:       fmt.Sprintf("%s!%s", quarterlySheet, name),
			Categories: categories,
			Values:     fmt.Sprintf("%s!%s:%s", quarterlySheet, from, to),
		})
	}

	return &excelize.Chart{
		Type:   excelize.ColStacked,
		Series: series,
		Title:  []excelize.RichTextRun{{Text: QuarterlyChartTitle(unit)}},
		Legend: excelize.ChartLegend{Position: "bottom"},
		YAxis:  excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: QuarterlyValueLabel(unit)}}},
	}, nil
}
