package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CostedMovement is one movement line joined with its repair order and product price.
type CostedMovement struct {
	RepairOrderId    int64           `json:"repair_order_id"`
	RepairReference  string          `json:"repair_order"`
	CreatedAt        time.Time       `json:"create_date"`
	RepairCategory   string          `json:"repair_category"`
	ProductId        *int64          `json:"product_id"`
	ProductCode      string          `json:"product_code"`
	ProductName      string          `json:"product_name"`
	Origin           string          `json:"origin"`
	Destination      string          `json:"destination"`
	SemanticCategory string          `json:"category"`
	Quantity         decimal.Decimal `json:"quantity_done"`
	UnitCost         decimal.Decimal `json:"standard_price"`
}

// Cost is always derived, never stored.
func (m CostedMovement) Cost() decimal.Decimal {
	return m.UnitCost.Mul(m.Quantity)
}

func (m CostedMovement) AdjustedCost(multiplier decimal.Decimal) decimal.Decimal {
	return m.Cost().Mul(multiplier)
}

func (m CostedMovement) HasCreatedAt() bool {
	return !m.CreatedAt.IsZero()
}
