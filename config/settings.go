package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const (
	DefaultOutputBaseDir    = "."
	DefaultFetchMaxAttempts = 3
	DefaultFetchDelay       = 5 * time.Second
	DefaultTotalsKey        = "reference"
	DefaultGCSPrefix        = "repair_costs"
)

// Settings is everything a run reads from the environment.
type Settings struct {
	OdooURL             string        `validate:"required,url"`
	OdooDatabase        string        `validate:"required"`
	OdooUsername        string        `validate:"required"`
	OdooPassword        string        `validate:"required"`
	RepairCategoryField string        `validate:"required"`
	MoveLineQtyField    string        `validate:"required"`
	FetchMaxAttempts    int           `validate:"min=1,max=10"`
	FetchInitialDelay   time.Duration `validate:"min=0"`
	OutputBaseDir       string        `validate:"required"`
	TotalsKey           string        `validate:"oneof=reference order_id"`
	EurTndRate          decimal.Decimal
	ReportTablesFile    string
	LogLevel            string `validate:"omitempty,oneof=trace debug info warn warning error fatal panic"`

	GCSBucket string
	GCSPrefix string
	PubSub    PubSubSettings
}

var validate = validator.New()

// LoadSettings reads .env when present and then the process environment.
func LoadSettings() (Settings, error) {
	// a missing .env is fine
	_ = godotenv.Load()
	return settingsFromEnv(os.Getenv)
}

func settingsFromEnv(getenv func(string) string) (Settings, error) {
	s := Settings{
		OdooURL:             strings.TrimSpace(getenv("ODOO_URL")),
		OdooDatabase:        getenv("ODOO_DB"),
		OdooUsername:        getenv("ODOO_USERNAME"),
		OdooPassword:        getenv("ODOO_PASSWORD"),
		RepairCategoryField: envOr(getenv, "ODOO_REPAIR_CATEGORY_FIELD", "x_studio_catgorie_de_la_rparation"),
		MoveLineQtyField:    envOr(getenv, "ODOO_MOVE_LINE_QTY_FIELD", "qty_done"),
		FetchMaxAttempts:    DefaultFetchMaxAttempts,
		FetchInitialDelay:   DefaultFetchDelay,
		OutputBaseDir:       envOr(getenv, "OUTPUT_BASE_DIR", DefaultOutputBaseDir),
		TotalsKey:           strings.ToLower(envOr(getenv, "TOTALS_KEY", DefaultTotalsKey)),
		EurTndRate:          decimal.RequireFromString("3.2"),
		ReportTablesFile:    getenv("REPORT_TABLES_FILE"),
		LogLevel:            getenv("LOG_LEVEL"),
		GCSBucket:           getenv("OUTPUT_GCS_BUCKET"),
		GCSPrefix:           envOr(getenv, "OUTPUT_GCS_PREFIX", DefaultGCSPrefix),
		PubSub: PubSubSettings{
			ProjectId:       firstEnv(getenv, "PUBSUB_PROJECT_ID", "GOOGLE_CLOUD_PROJECT", "GCP_PROJECT"),
			Topic:           getenv("PUBSUB_TOPIC"),
			CredentialsJSON: getenv("PUBSUB_CREDENTIALS_JSON"),
		},
	}

	if v := getenv("FETCH_MAX_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return s, fmt.Errorf("FETCH_MAX_ATTEMPTS: %w", err)
		}
		s.FetchMaxAttempts = n
	}
	if v := getenv("FETCH_INITIAL_DELAY"); v != "" {
		d, err := parseDelay(v)
		if err != nil {
			return s, fmt.Errorf("FETCH_INITIAL_DELAY: %w", err)
		}
		s.FetchInitialDelay = d
	}
	if v := getenv("EUR_TND_RATE"); v != "" {
		rate, err := decimal.NewFromString(v)
		if err != nil {
			return s, fmt.Errorf("EUR_TND_RATE: %w", err)
		}
		s.EurTndRate = rate
	}
	return s, nil
}

// Validate checks struct tags and the fields tags cannot express.
func (s Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	if !s.EurTndRate.IsPositive() {
		return fmt.Errorf("invalid settings: EUR_TND_RATE must be positive, got %s", s.EurTndRate)
	}
	if s.PubSub.Enabled() && s.PubSub.ProjectId == "" {
		return fmt.Errorf("invalid settings: PUBSUB_TOPIC is set but no project id")
	}
	return nil
}

// parseDelay accepts a Go duration ("5s") or a bare number of seconds ("5").
func parseDelay(v string) (time.Duration, error) {
	if secs, err := strconv.ParseFloat(v, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	return time.ParseDuration(v)
}

func envOr(getenv func(string) string, key string, fallback string) string {
	if v := strings.TrimSpace(getenv(key)); v != "" {
		return v
	}
	return fallback
}

func firstEnv(getenv func(string) string, keys ...string) string {
	for _, k := range keys {
		if v := getenv(k); v != "" {
			return v
		}
	}
	return ""
}
