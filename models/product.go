package models

import (
	"context"
	"fmt"

	"bitbucket.org/kumulus/repair_costs/odoo"
	"github.com/shopspring/decimal"
)

const (
	ProductModel       = "product.product"
	UnknownProductName = "Unknown"
)

var productFields = []string{"id", "default_code", "standard_price", "name"}

type ProductPriceEntry struct {
	ProductId int64           `json:"product_id"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
}

// ProductPriceIndex is read-only once built.
type ProductPriceIndex struct {
	entries map[int64]ProductPriceEntry
}

func NewProductPriceIndex(entries []ProductPriceEntry) *ProductPriceIndex {
	idx := &ProductPriceIndex{entries: make(map[int64]ProductPriceEntry, len(entries))}
	for _, e := range entries {
		idx.entries[e.ProductId] = e
	}
	return idx
}

func (idx *ProductPriceIndex) Lookup(productId int64) (ProductPriceEntry, bool) {
	if idx == nil {
		return ProductPriceEntry{}, false
	}
	e, ok := idx.entries[productId]
	return e, ok
}

// Resolve never fails: a nil or unknown product costs 0 and is named "Unknown".
func (idx *ProductPriceIndex) Resolve(productId *int64) ProductPriceEntry {
	if productId != nil {
		if e, ok := idx.Lookup(*productId); ok {
			return e
		}
	}
	e := ProductPriceEntry{UnitCost: decimal.Zero, Name: UnknownProductName}
	if productId != nil {
		e.ProductId = *productId
	}
	return e
}

func (idx *ProductPriceIndex) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.entries)
}

// BuildProductPriceIndex reads the whole product catalogue.
func BuildProductPriceIndex(ctx context.Context, fetcher RecordFetcher) (*ProductPriceIndex, error) {
	records, err := fetcher.Fetch(ctx, odoo.Query{
		Model:  ProductModel,
		Fields: productFields,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch product prices: %w", err)
	}

	entries := make([]ProductPriceEntry, 0, len(records))
	for _, r := range records {
		entries = append(entries, ProductPriceEntry{
			ProductId: r.Int64("id"),
			UnitCost:  r.Decimal("standard_price"),
			Code:      r.String("default_code"),
			Name:      r.String("name"),
		})
	}
	return NewProductPriceIndex(entries), nil
}
