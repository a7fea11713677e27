package reports

import (
	"fmt"
	"path/filepath"
	"sort"

	"bitbucket.org/kumulus/repair_costs/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// CurrencyUnit is a reporting unit and the factor applied to base (TND) costs.
type CurrencyUnit struct {
	Unit       string          `json:"unit"`
	Multiplier decimal.Decimal `json:"multiplier"`
}

var DefaultEurTndRate = decimal.RequireFromString("3.2")

// DefaultCurrencyUnits returns TND, kTND, Euros and kEuros in that order.
func DefaultCurrencyUnits(eurTndRate decimal.Decimal) []CurrencyUnit {
	if !eurTndRate.IsPositive() {
		eurTndRate = DefaultEurTndRate
	}
	one := decimal.NewFromInt(1)
	thousandth := decimal.New(1, -3)
	return []CurrencyUnit{
		{Unit: "TND", Multiplier: one},
		{Unit: "kTND", Multiplier: thousandth},
		{Unit: "Euros", Multiplier: one.Div(eurTndRate)},
		{Unit: "kEuros", Multiplier: thousandth.Div(eurTndRate)},
	}
}

var detailedHeadings = []string{
	"repair_order", "create_date", "repair_category", "product_id", "product_code", "product_name",
	"origin", "destination", "category", "quantity_done", "standard_price", "cost", "adjusted_cost",
}

type DetailedRow struct {
	models.CostedMovement
	AdjustedCost decimal.Decimal `json:"adjusted_cost"`
}

func (r DetailedRow) GetCellValues() []interface{} {
	return []interface{}{
		r.RepairReference,
		r.CreatedAt,
		r.RepairCategory,
		r.ProductId,
		r.ProductCode,
		r.ProductName,
		r.Origin,
		r.Destination,
		r.SemanticCategory,
		r.Quantity,
		r.UnitCost,
		r.Cost(),
		r.AdjustedCost,
	}
}

var summaryHeadings = []string{"repair_order", "repair_category", "total_cost"}

type OrderSummaryRow struct {
	RepairOrder    string          `json:"repair_order"`
	RepairCategory string          `json:"repair_category"`
	TotalCost      decimal.Decimal `json:"total_cost"`
}

func (r OrderSummaryRow) GetCellValues() []interface{} {
	return []interface{}{r.RepairOrder, r.RepairCategory, r.TotalCost}
}

type CurrencyReport struct {
	Unit      CurrencyUnit
	Detailed  []DetailedRow
	Summary   []OrderSummaryRow
	Quarterly []models.QuarterlyCategorySummary
}

// BuildCurrencyReport recomputes every adjusted cost from the movement itself,
// so no value computed for one unit leaks into another. Rows whose adjusted
// cost is negative are left out of all three tables.
func BuildCurrencyReport(movements []models.CostedMovement, unit CurrencyUnit) CurrencyReport {
	report := CurrencyReport{Unit: unit}
	kept := make([]models.CostedMovement, 0, len(movements))
	for _, m := range movements {
		adjusted := m.AdjustedCost(unit.Multiplier)
		if adjusted.IsNegative() {
			continue
		}
		kept = append(kept, m)
		report.Detailed = append(report.Detailed, DetailedRow{CostedMovement: m, AdjustedCost: adjusted})
	}

	type key struct{ order, category string }
	sums := make(map[key]decimal.Decimal)
	for _, row := range report.Detailed {
		k := key{row.RepairReference, row.RepairCategory}
		sums[k] = sums[k].Add(row.AdjustedCost)
	}
	for k, total := range sums {
		report.Summary = append(report.Summary, OrderSummaryRow{RepairOrder: k.order, RepairCategory: k.category, TotalCost: total})
	}
	sort.Slice(report.Summary, func(i, j int) bool {
		if report.Summary[i].RepairOrder != report.Summary[j].RepairOrder {
			return report.Summary[i].RepairOrder < report.Summary[j].RepairOrder
		}
		return report.Summary[i].RepairCategory < report.Summary[j].RepairCategory
	})

	report.Quarterly = models.SummarizeByQuarter(kept, func(m models.CostedMovement) decimal.Decimal {
		return m.AdjustedCost(unit.Multiplier)
	})
	return report
}

func DetailedFilename(unit string) string {
	return fmt.Sprintf("stock_moves_detailed_%s.xlsx", unit)
}

func SummaryFilename(unit string) string {
	return fmt.Sprintf("repair_order_summary_%s.xlsx", unit)
}

func QuarterlyFilename(unit string) string {
	return fmt.Sprintf("quarterly_costs_%s.xlsx", unit)
}

// EmitCurrencyReports writes the detailed table, the order summary and the
// quarterly chart for every unit into outputDir and returns the written paths.
func EmitCurrencyReports(logger *logrus.Logger, movements []models.CostedMovement, units []CurrencyUnit, outputDir string) ([]string, error) {
	var written []string
	for _, unit := range units {
		report := BuildCurrencyReport(movements, unit)

		detailed := filepath.Join(outputDir, DetailedFilename(unit.Unit))
		if err := exportExcel(report.Detailed, detailed, "Moves", detailedHeadings...); err != nil {
			return written, fmt.Errorf("write %s: %w", detailed, err)
		}
		written = append(written, detailed)

		summary := filepath.Join(outputDir, SummaryFilename(unit.Unit))
		if err := exportExcel(report.Summary, summary, "Summary", summaryHeadings...); err != nil {
			return written, fmt.Errorf("write %s: %w", summary, err)
		}
		written = append(written, summary)

		quarterly := filepath.Join(outputDir, QuarterlyFilename(unit.Unit))
		if err := exportQuarterlyChart(report.Quarterly, unit.Unit, quarterly); err != nil {
			return written, fmt.Errorf("write %s: %w", quarterly, err)
		}
		written = append(written, quarterly)

		if logger != nil {
			logger.WithFields(logrus.Fields{
				"unit":         unit.Unit,
				"multiplier":   unit.Multiplier.String(),
				"rows":         len(report.Detailed),
				"dropped_rows": len(movements) - len(report.Detailed),
				"summary_rows": len(report.Summary),
				"quarter_rows": len(report.Quarterly),
				"output_dir":   outputDir,
			}).Info("repair_cost.report.written")
		}
	}
	return written, nil
}
