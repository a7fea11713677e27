package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func envMap(values map[string]string) func(string) string {
	return func(k string) string { return values[k] }
}

func validEnv() map[string]string {
	return map[string]string{
		"ODOO_URL":      "https://erp.example.com",
		"ODOO_DB":       "prod",
		"ODOO_USERNAME": "bot@example.com",
		"ODOO_PASSWORD": "secret",
	}
}

func TestSettingsFromEnv_Defaults(t *testing.T) {
	s, err := settingsFromEnv(envMap(validEnv()))
	if err != nil {
		t.Fatalf("settingsFromEnv: %v", err)
	}
	if err := s.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if s.FetchMaxAttempts != 3 || s.FetchInitialDelay != 5*time.Second {
		t.Fatalf("unexpected retry defaults %d %s", s.FetchMaxAttempts, s.FetchInitialDelay)
	}
	if s.TotalsKey != "reference" || s.MoveLineQtyField != "qty_done" || s.OutputBaseDir != "." {
		t.Fatalf("unexpected defaults %+v", s)
	}
	if !s.EurTndRate.Equal(decimal.RequireFromString("3.2")) {
		t.Fatalf("unexpected rate %s", s.EurTndRate)
	}
	if s.PubSub.Enabled() {
		t.Fatalf("pubsub should be off without a topic")
	}
}

func TestSettingsFromEnv_Overrides(t *testing.T) {
	env := validEnv()
	env["FETCH_MAX_ATTEMPTS"] = "5"
	env["FETCH_INITIAL_DELAY"] = "250ms"
	env["TOTALS_KEY"] = "ORDER_ID"
	env["EUR_TND_RATE"] = "3.4"
	env["GOOGLE_CLOUD_PROJECT"] = "proj"
	env["PUBSUB_TOPIC"] = "repair-costs"

	s, err := settingsFromEnv(envMap(env))
	if err != nil {
		t.Fatalf("settingsFromEnv: %v", err)
	}
	if err := s.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if s.FetchMaxAttempts != 5 || s.FetchInitialDelay != 250*time.Millisecond || s.TotalsKey != "order_id" {
		t.Fatalf("unexpected overrides %+v", s)
	}
	if s.PubSub.ProjectId != "proj" || !s.PubSub.Enabled() {
		t.Fatalf("unexpected pubsub settings %+v", s.PubSub)
	}
}

func TestSettingsFromEnv_DelayInSeconds(t *testing.T) {
	env := validEnv()
	env["FETCH_INITIAL_DELAY"] = "2"
	s, err := settingsFromEnv(envMap(env))
	if err != nil {
		t.Fatalf("settingsFromEnv: %v", err)
	}
	if s.FetchInitialDelay != 2*time.Second {
		t.Fatalf("expected 2s, got %s", s.FetchInitialDelay)
	}
}

func TestSettingsValidate_Rejects(t *testing.T) {
	cases := map[string]func(env map[string]string){
		"missing url":      func(env map[string]string) { delete(env, "ODOO_URL") },
		"bad totals key":   func(env map[string]string) { env["TOTALS_KEY"] = "name" },
		"zero attempts":    func(env map[string]string) { env["FETCH_MAX_ATTEMPTS"] = "0" },
		"negative rate":    func(env map[string]string) { env["EUR_TND_RATE"] = "-1" },
		"bad log level":    func(env map[string]string) { env["LOG_LEVEL"] = "loud" },
		"topic no project": func(env map[string]string) { env["PUBSUB_TOPIC"] = "t" },
	}
	for name, mutate := range cases {
		env := validEnv()
		mutate(env)
		s, err := settingsFromEnv(envMap(env))
		if err != nil {
			t.Fatalf("%s: settingsFromEnv: %v", name, err)
		}
		if err := s.Validate(); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}

func TestSettingsFromEnv_ParseErrors(t *testing.T) {
	for _, key := range []string{"FETCH_MAX_ATTEMPTS", "FETCH_INITIAL_DELAY", "EUR_TND_RATE"} {
		env := validEnv()
		env[key] = "abc"
		if _, err := settingsFromEnv(envMap(env)); err == nil {
			t.Errorf("%s: expected parse error", key)
		}
	}
}

func TestLoadReportTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tables.yaml")
	content := `categories:
  - location: A/Stock
    label: Return
  - location: A/Scrap
    label: Scrap
currencies:
  - unit: TND
  - unit: Euros
    divisor: "3.2"
  - unit: kEuros
    multiplier: "0.001"
    divisor: "3.2"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	tables, err := LoadReportTables(path)
	if err != nil {
		t.Fatalf("LoadReportTables: %v", err)
	}
	if len(tables.Categories) != 2 || tables.Categories[0].Location != "A/Stock" || tables.Categories[1].Label != "Scrap" {
		t.Fatalf("unexpected categories %+v", tables.Categories)
	}
	want := []string{"1", "0.3125", "0.0003125"}
	for i, c := range tables.Currencies {
		f, err := c.Factor()
		if err != nil {
			t.Fatalf("%s: %v", c.Unit, err)
		}
		if !f.Equal(decimal.RequireFromString(want[i])) {
			t.Fatalf("%s factor = %s, want %s", c.Unit, f, want[i])
		}
	}
}

func TestLoadReportTables_Invalid(t *testing.T) {
	cases := map[string]string{
		"unknown field":  "categories:\n  - location: A\n    label: B\n    extra: x\n",
		"missing label":  "categories:\n  - location: A\n",
		"duplicate unit": "currencies:\n  - unit: TND\n  - unit: TND\n",
		"zero divisor":   "currencies:\n  - unit: X\n    divisor: \"0\"\n",
	}
	for name, content := range cases {
		path := filepath.Join(t.TempDir(), "tables.yaml")
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		if _, err := LoadReportTables(path); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestConfigureLogger(t *testing.T) {
	if err := ConfigureLogger(""); err != nil {
		t.Fatalf("empty level: %v", err)
	}
	if err := ConfigureLogger("debug"); err != nil {
		t.Fatalf("debug: %v", err)
	}
	if GetLogger().GetLevel().String() != "debug" {
		t.Fatalf("expected debug level, got %s", GetLogger().GetLevel())
	}
	if err := ConfigureLogger("nope"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
