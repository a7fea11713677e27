package workflow

import (
	"context"
	"errors"
	"fmt"

	"bitbucket.org/kumulus/repair_costs/config"
	"bitbucket.org/kumulus/repair_costs/models"
	"bitbucket.org/kumulus/repair_costs/models/reports"
	"bitbucket.org/kumulus/repair_costs/utils"
	"github.com/sirupsen/logrus"
)

type ExtractionInput struct {
	Fetcher             models.RecordFetcher
	RepairCategoryField string
	QuantityField       string
	Categories          models.LocationCategoryMap
	Currencies          []reports.CurrencyUnit
	TotalsKey           TotalsKey
	OutputDir           string
}

type ExtractionResult struct {
	OrderCount    int
	MovementCount int
	Aggregate     CostAggregate
	Artifacts     []string
	OutputDir     string
}

// RunRepairCostExtraction runs one extraction: prices and completed orders are
// fetched, every order's movement lines are joined and costed, totals are
// accumulated and one set of workbooks is written per currency unit.
// Any fetch failure aborts the run before anything is written.
func RunRepairCostExtraction(ctx context.Context, logger *logrus.Logger, input ExtractionInput) (ExtractionResult, error) {
	if logger == nil {
		logger = config.GetLogger()
	}
	result := ExtractionResult{OutputDir: input.OutputDir}
	if input.Fetcher == nil {
		return result, errors.New("extraction requires a fetcher")
	}
	if input.OutputDir == "" {
		return result, errors.New("extraction requires an output directory")
	}
	categories := input.Categories
	if len(categories) == 0 {
		categories = models.DefaultLocationCategories()
	}
	currencies := input.Currencies
	if len(currencies) == 0 {
		currencies = reports.DefaultCurrencyUnits(reports.DefaultEurTndRate)
	}
	totalsKey := input.TotalsKey
	if totalsKey == "" {
		totalsKey = TotalsByReference
	}

	runId, _ := utils.GetRunIdFromContext(ctx)
	runDate, _ := utils.GetRunDateFromContext(ctx)
	log := logger.WithFields(logrus.Fields{"run_id": runId, "run_date": runDate})
	log.WithField("output_dir", input.OutputDir).Info("repair_cost.run.start")

	prices, err := models.BuildProductPriceIndex(ctx, input.Fetcher)
	if err != nil {
		config.LogError(logger, "RepairCost", "RunRepairCostExtraction", "build price index", nil, err)
		return result, err
	}
	log.WithField("products", prices.Len()).Debug("repair_cost.prices.loaded")

	orders, err := models.FetchCompletedRepairOrders(ctx, input.Fetcher, input.RepairCategoryField)
	if err != nil {
		config.LogError(logger, "RepairCost", "RunRepairCostExtraction", "fetch repair orders", nil, err)
		return result, err
	}
	result.OrderCount = len(orders)
	log.WithField("orders", len(orders)).Info("repair_cost.orders.loaded")

	movements, err := JoinMovements(ctx, logger, input.Fetcher, orders, prices, categories, JoinOptions{QuantityField: input.QuantityField})
	if err != nil {
		config.LogError(logger, "RepairCost", "RunRepairCostExtraction", "join movements", nil, err)
		return result, err
	}
	result.MovementCount = len(movements)

	result.Aggregate = AggregateCosts(movements, totalsKey)
	for _, total := range result.Aggregate.OrderTotals {
		log.WithFields(logrus.Fields{
			"totals_key": string(totalsKey),
			"key":        total.Key,
			"total_cost": total.TotalCost.StringFixed(2),
		}).Info("repair_cost.order.total")
	}

	artifacts, err := reports.EmitCurrencyReports(logger, movements, currencies, input.OutputDir)
	result.Artifacts = artifacts
	if err != nil {
		config.LogError(logger, "RepairCost", "RunRepairCostExtraction", "emit reports", nil, err)
		return result, fmt.Errorf("emit reports: %w", err)
	}

	log.WithFields(logrus.Fields{
		"orders":     result.OrderCount,
		"movements":  result.MovementCount,
		"artifacts":  len(result.Artifacts),
		"output_dir": input.OutputDir,
	}).Info("repair_cost.run.done")
	return result, nil
}
