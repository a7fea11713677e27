package workflow

import (
	"fmt"
	"strconv"
	"strings"

	"bitbucket.org/kumulus/repair_costs/models"
	"github.com/shopspring/decimal"
)

// TotalsKey selects how per-order totals are grouped. Grouping by reference
// merges distinct orders that share a name; order_id keeps them apart.
type TotalsKey string

const (
	TotalsByReference TotalsKey = "reference"
	TotalsByOrderId   TotalsKey = "order_id"
)

func ParseTotalsKey(s string) (TotalsKey, error) {
	switch TotalsKey(strings.ToLower(strings.TrimSpace(s))) {
	case "", TotalsByReference:
		return TotalsByReference, nil
	case TotalsByOrderId:
		return TotalsByOrderId, nil
	}
	return "", fmt.Errorf("invalid totals key %q: must be %q or %q", s, TotalsByReference, TotalsByOrderId)
}

type RepairOrderTotal struct {
	Key       string          `json:"key"`
	TotalCost decimal.Decimal `json:"total_cost"`
}

type CostAggregate struct {
	OrderTotals []RepairOrderTotal                `json:"order_totals"`
	Quarterly   []models.QuarterlyCategorySummary `json:"quarterly"`
}

// TotalFor returns zero for keys that never received a movement.
func (a CostAggregate) TotalFor(key string) decimal.Decimal {
	for _, t := range a.OrderTotals {
		if t.Key == key {
			return t.TotalCost
		}
	}
	return decimal.Zero
}

// AggregateCosts accumulates movement costs per order, in first-seen order,
// and per (quarter, category).
func AggregateCosts(movements []models.CostedMovement, key TotalsKey) CostAggregate {
	index := make(map[string]int)
	var totals []RepairOrderTotal
	for _, m := range movements {
		k := totalsKeyOf(m, key)
		i, ok := index[k]
		if !ok {
			i = len(totals)
			index[k] = i
			totals = append(totals, RepairOrderTotal{Key: k, TotalCost: decimal.Zero})
		}
		totals[i].TotalCost = totals[i].TotalCost.Add(m.Cost())
	}

	return CostAggregate{
		OrderTotals: totals,
		Quarterly:   models.SummarizeByQuarter(movements, models.CostedMovement.Cost),
	}
}

func totalsKeyOf(m models.CostedMovement, key TotalsKey) string {
	if key == TotalsByOrderId {
		return strconv.FormatInt(m.RepairOrderId, 10)
	}
	return m.RepairReference
}
