package workflow

import (
	"context"
	"fmt"

	"bitbucket.org/kumulus/repair_costs/config"
	"bitbucket.org/kumulus/repair_costs/models"
	"bitbucket.org/kumulus/repair_costs/utils"
	"github.com/sirupsen/logrus"
)

type JoinOptions struct {
	// QuantityField is qty_done before Odoo 17 and quantity after.
	QuantityField string
}

// JoinMovements fetches the movement lines of every order in one call per
// order and joins them against the price index and the location category map.
// Orders without moves produce nothing. The first fetch error aborts the join.
func JoinMovements(
	ctx context.Context,
	logger *logrus.Logger,
	fetcher models.RecordFetcher,
	orders []models.RepairOrder,
	prices *models.ProductPriceIndex,
	categories models.LocationCategoryMap,
	opts JoinOptions,
) ([]models.CostedMovement, error) {
	if logger == nil {
		logger = config.GetLogger()
	}
	runId, _ := utils.GetRunIdFromContext(ctx)

	var movements []models.CostedMovement
	for _, order := range orders {
		if len(order.MoveIds) == 0 {
			continue
		}
		lines, err := models.FetchMovementLines(ctx, fetcher, utils.UniqueSlice(order.MoveIds), opts.QuantityField)
		if err != nil {
			return nil, fmt.Errorf("repair order %s: %w", order.Reference, err)
		}

		logger.WithFields(logrus.Fields{
			"run_id":       runId,
			"repair_order": order.Reference,
			"move_count":   len(order.MoveIds),
			"line_count":   len(lines),
		}).Debug("repair_cost.join.order")

		for _, line := range lines {
			movements = append(movements, costMovementLine(order, line, prices, categories))
		}
	}
	return movements, nil
}

func costMovementLine(order models.RepairOrder, line models.MovementLine, prices *models.ProductPriceIndex, categories models.LocationCategoryMap) models.CostedMovement {
	product := prices.Resolve(line.ProductId)
	destination := line.Destination.Path()
	return models.CostedMovement{
		RepairOrderId:    order.OrderId,
		RepairReference:  order.Reference,
		CreatedAt:        order.CreatedAt,
		RepairCategory:   order.CategoryTag,
		ProductId:        line.ProductId,
		ProductCode:      product.Code,
		ProductName:      product.Name,
		Origin:           line.Origin.Path(),
		Destination:      destination,
		SemanticCategory: categories.Resolve(destination),
		Quantity:         line.Quantity,
		UnitCost:         product.UnitCost,
	}
}
