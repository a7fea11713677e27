package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v2"
)

// CategoryRule maps a location path fragment to a label. File order is match order.
type CategoryRule struct {
	Location string `yaml:"location"`
	Label    string `yaml:"label"`
}

// CurrencyRate describes one reporting unit as multiplier / divisor.
// An empty multiplier or divisor reads as 1.
type CurrencyRate struct {
	Unit       string `yaml:"unit"`
	Multiplier string `yaml:"multiplier"`
	Divisor    string `yaml:"divisor"`
}

type ReportTables struct {
	Categories []CategoryRule `yaml:"categories"`
	Currencies []CurrencyRate `yaml:"currencies"`
}

func LoadReportTables(path string) (ReportTables, error) {
	var tables ReportTables
	data, err := os.ReadFile(path)
	if err != nil {
		return tables, fmt.Errorf("read report tables: %w", err)
	}
	if err := yaml.UnmarshalStrict(data, &tables); err != nil {
		return tables, fmt.Errorf("parse report tables %s: %w", path, err)
	}
	if err := tables.validate(); err != nil {
		return tables, fmt.Errorf("report tables %s: %w", path, err)
	}
	return tables, nil
}

func (t ReportTables) validate() error {
	for i, c := range t.Categories {
		if c.Location == "" || c.Label == "" {
			return fmt.Errorf("category %d: location and label are required", i)
		}
	}
	seen := make(map[string]bool)
	for i, c := range t.Currencies {
		if c.Unit == "" {
			return fmt.Errorf("currency %d: unit is required", i)
		}
		if seen[c.Unit] {
			return fmt.Errorf("currency %q listed twice", c.Unit)
		}
		seen[c.Unit] = true
		if _, err := c.Factor(); err != nil {
			return fmt.Errorf("currency %q: %w", c.Unit, err)
		}
	}
	return nil
}

// Factor returns multiplier / divisor.
func (c CurrencyRate) Factor() (decimal.Decimal, error) {
	multiplier, err := parseRatePart(c.Multiplier)
	if err != nil {
		return decimal.Zero, fmt.Errorf("multiplier: %w", err)
	}
	divisor, err := parseRatePart(c.Divisor)
	if err != nil {
		return decimal.Zero, fmt.Errorf("divisor: %w", err)
	}
	if !multiplier.IsPositive() || !divisor.IsPositive() {
		return decimal.Zero, errors.New("multiplier and divisor must be positive")
	}
	return multiplier.Div(divisor), nil
}

func parseRatePart(v string) (decimal.Decimal, error) {
	if v == "" {
		return decimal.NewFromInt(1), nil
	}
	return decimal.NewFromString(v)
}
