package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"bitbucket.org/kumulus/repair_costs/config"
	"bitbucket.org/kumulus/repair_costs/models"
	"bitbucket.org/kumulus/repair_costs/models/reports"
	"bitbucket.org/kumulus/repair_costs/odoo"
	"bitbucket.org/kumulus/repair_costs/utils"
	"bitbucket.org/kumulus/repair_costs/workflow"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

func main() {
	dateStr := flag.String("date", "", "Optional: run date (YYYY-MM-DD). Names the output directory. Defaults to today.")
	outputBase := flag.String("output", "", "Optional: base directory for output_YYYY-MM-DD (overrides OUTPUT_BASE_DIR)")
	totalsKeyStr := flag.String("totals-key", "", "Optional: group order totals by reference or order_id (overrides TOTALS_KEY)")
	tablesFile := flag.String("tables", "", "Optional: YAML file with category and currency tables (overrides REPORT_TABLES_FILE)")
	flag.Parse()

	settings, err := config.LoadSettings()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if v := strings.TrimSpace(*outputBase); v != "" {
		settings.OutputBaseDir = v
	}
	if v := strings.TrimSpace(*totalsKeyStr); v != "" {
		settings.TotalsKey = strings.ToLower(v)
	}
	if v := strings.TrimSpace(*tablesFile); v != "" {
		settings.ReportTablesFile = v
	}
	if err := settings.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := config.ConfigureLogger(settings.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "invalid LOG_LEVEL: %v\n", err)
		os.Exit(1)
	}
	logger := config.GetLogger()

	runDate := time.Now()
	if v := strings.TrimSpace(*dateStr); v != "" {
		d, err := time.Parse(utils.RunDateLayout, v)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid date: %v\n", err)
			os.Exit(1)
		}
		runDate = d
	}
	totalsKey, err := workflow.ParseTotalsKey(settings.TotalsKey)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	categories, currencies, err := reportTables(settings)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	runId := uuid.NewString()
	ctx = utils.SetRunIdInContext(ctx, runId)
	ctx = utils.SetRunDateInContext(ctx, runDate.Format(utils.RunDateLayout))

	outputDir, err := utils.RunOutputDir(settings.OutputBaseDir, runDate)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	session, err := odoo.Authenticate(ctx, odoo.Credentials{
		URL:      settings.OdooURL,
		Database: settings.OdooDatabase,
		Username: settings.OdooUsername,
		Password: settings.OdooPassword,
	}, nil)
	if err != nil {
		config.LogError(logger, "RepairCost", "main", "authenticate", nil, err)
		fmt.Fprintf(os.Stderr, "authentication failed: %v\n", err)
		os.Exit(1)
	}
	fetcher := odoo.NewFetcher(session, odoo.RetryConfig{
		MaxAttempts:  settings.FetchMaxAttempts,
		InitialDelay: settings.FetchInitialDelay,
	}, logger.WithField("run_id", runId))

	result, err := workflow.RunRepairCostExtraction(ctx, logger, workflow.ExtractionInput{
		Fetcher:             fetcher,
		RepairCategoryField: settings.RepairCategoryField,
		QuantityField:       settings.MoveLineQtyField,
		Categories:          categories,
		Currencies:          currencies,
		TotalsKey:           totalsKey,
		OutputDir:           outputDir,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "extraction failed: %v\n", err)
		os.Exit(1)
	}

	failed := false
	if settings.GCSBucket != "" {
		objects, err := utils.UploadRunArtifacts(ctx, settings.GCSBucket, settings.GCSPrefix, result.Artifacts)
		if err != nil {
			config.LogError(logger, "RepairCost", "main", "upload artifacts", settings.GCSBucket, err)
			failed = true
		} else {
			logger.WithFields(logrus.Fields{"run_id": runId, "bucket": settings.GCSBucket, "objects": len(objects)}).Info("repair_cost.archive.done")
		}
	}
	if settings.PubSub.Enabled() {
		msgId, err := config.PublishRunCompleted(ctx, settings.PubSub, config.RunCompletedMessage{
			RunId:         runId,
			RunDate:       runDate.Format(utils.RunDateLayout),
			OutputDir:     result.OutputDir,
			Artifacts:     result.Artifacts,
			MovementCount: result.MovementCount,
			OrderCount:    result.OrderCount,
			CompletedAt:   time.Now().UTC(),
		})
		if err != nil {
			config.LogError(logger, "RepairCost", "main", "publish run completed", settings.PubSub.Topic, err)
			failed = true
		} else {
			logger.WithFields(logrus.Fields{"run_id": runId, "topic": settings.PubSub.Topic, "message_id": msgId}).Info("repair_cost.notify.done")
		}
	}

	fmt.Println(result.OutputDir)
	if failed {
		os.Exit(1)
	}
}

// reportTables returns the configured tables, falling back to the built-in
// category map and currency units for whatever the file leaves out.
func reportTables(settings config.Settings) (models.LocationCategoryMap, []reports.CurrencyUnit, error) {
	categories := models.DefaultLocationCategories()
	currencies := reports.DefaultCurrencyUnits(settings.EurTndRate)
	if settings.ReportTablesFile == "" {
		return categories, currencies, nil
	}

	tables, err := config.LoadReportTables(settings.ReportTablesFile)
	if err != nil {
		return nil, nil, err
	}
	if len(tables.Categories) > 0 {
		categories = make(models.LocationCategoryMap, 0, len(tables.Categories))
		for _, c := range tables.Categories {
			categories = append(categories, models.LocationCategory{Pattern: c.Location, Label: c.Label})
		}
	}
	if len(tables.Currencies) > 0 {
		currencies = make([]reports.CurrencyUnit, 0, len(tables.Currencies))
		for _, c := range tables.Currencies {
			factor, err := c.Factor()
			if err != nil {
				return nil, nil, err
			}
			currencies = append(currencies, reports.CurrencyUnit{Unit: c.Unit, Multiplier: factor})
		}
	}
	return categories, currencies, nil
}
