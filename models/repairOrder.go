package models

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bitbucket.org/kumulus/repair_costs/odoo"
)

const (
	RepairOrderModel           = "repair.order"
	RepairStateDone            = "done"
	DefaultRepairCategoryField = "x_studio_catgorie_de_la_rparation"
	UnknownCategory            = "Unknown"
)

type RepairOrder struct {
	OrderId     int64     `json:"order_id"`
	Reference   string    `json:"reference"`
	CreatedAt   time.Time `json:"created_at"`
	CategoryTag string    `json:"category_tag"`
	MoveIds     []int64   `json:"move_ids"`
}

// FetchCompletedRepairOrders reads repair orders in state "done" only.
// categoryField names the custom selection field holding the repair category.
func FetchCompletedRepairOrders(ctx context.Context, fetcher RecordFetcher, categoryField string) ([]RepairOrder, error) {
	if strings.TrimSpace(categoryField) == "" {
		categoryField = DefaultRepairCategoryField
	}
	records, err := fetcher.Fetch(ctx, odoo.Query{
		Model:  RepairOrderModel,
		Domain: odoo.Domain{odoo.Where("state", "=", RepairStateDone)},
		Fields: []string{"id", "name", "create_date", "move_ids", categoryField},
	})
	if err != nil {
		return nil, fmt.Errorf("fetch repair orders: %w", err)
	}

	orders := make([]RepairOrder, 0, len(records))
	for _, r := range records {
		orders = append(orders, repairOrderFromRecord(r, categoryField))
	}
	return orders, nil
}

func repairOrderFromRecord(r odoo.Record, categoryField string) RepairOrder {
	// An empty selection comes back as false; both that and a missing key fall back.
	category, ok := r.OptionalString(categoryField)
	if !ok || category == "" {
		category = UnknownCategory
	}
	createdAt, _ := r.Time("create_date")
	return RepairOrder{
		OrderId:     r.Int64("id"),
		Reference:   r.String("name"),
		CreatedAt:   createdAt,
		CategoryTag: category,
		MoveIds:     r.Int64s("move_ids"),
	}
}
