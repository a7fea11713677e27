package models

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

type QuarterlyCategorySummary struct {
	Quarter   string          `json:"quarter"`
	Category  string          `json:"category"`
	TotalCost decimal.Decimal `json:"total_cost"`
}

// QuarterLabel formats a date as its calendar quarter, e.g. "2024Q3".
func QuarterLabel(t time.Time) string {
	return fmt.Sprintf("%dQ%d", t.Year(), (int(t.Month())-1)/3+1)
}

// SummarizeByQuarter sums value(m) per (quarter, semantic category).
// Movements without a creation date are skipped and groups whose total is
// negative are dropped. Rows are sorted by quarter, then category.
func SummarizeByQuarter(movements []CostedMovement, value func(CostedMovement) decimal.Decimal) []QuarterlyCategorySummary {
	type key struct{ quarter, category string }
	totals := make(map[key]decimal.Decimal)
	for _, m := range movements {
		if !m.HasCreatedAt() {
			continue
		}
		k := key{QuarterLabel(m.CreatedAt), m.SemanticCategory}
		totals[k] = totals[k].Add(value(m))
	}

	out := make([]QuarterlyCategorySummary, 0, len(totals))
	for k, total := range totals {
		if total.IsNegative() {
			continue
		}
		out = append(out, QuarterlyCategorySummary{Quarter: k.quarter, Category: k.category, TotalCost: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Quarter != out[j].Quarter {
			return out[i].Quarter < out[j].Quarter
		}
		return out[i].Category < out[j].Category
	})
	return out
}
