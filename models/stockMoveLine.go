package models

import (
	"context"
	"fmt"
	"strings"

	"bitbucket.org/kumulus/repair_costs/odoo"
	"github.com/shopspring/decimal"
)

const (
	StockMoveLineModel      = "stock.move.line"
	DefaultMoveLineQtyField = "qty_done"
)

type Location struct {
	Id          int64  `json:"id"`
	DisplayPath string `json:"display_path"`
}

type MovementLine struct {
	LineId      int64           `json:"line_id"`
	ProductId   *int64          `json:"product_id"`
	Origin      *Location       `json:"origin"`
	Destination *Location       `json:"destination"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// FetchMovementLines reads every line of the given stock moves in one call.
func FetchMovementLines(ctx context.Context, fetcher RecordFetcher, moveIds []int64, qtyField string) ([]MovementLine, error) {
	if len(moveIds) == 0 {
		return nil, nil
	}
	if strings.TrimSpace(qtyField) == "" {
		qtyField = DefaultMoveLineQtyField
	}
	records, err := fetcher.Fetch(ctx, odoo.Query{
		Model:  StockMoveLineModel,
		Domain: odoo.Domain{odoo.Where("move_id", "in", moveIds)},
		Fields: []string{"id", "product_id", "location_id", "location_dest_id", qtyField},
	})
	if err != nil {
		return nil, fmt.Errorf("fetch stock move lines: %w", err)
	}

	lines := make([]MovementLine, 0, len(records))
	for _, r := range records {
		lines = append(lines, movementLineFromRecord(r, qtyField))
	}
	return lines, nil
}

func movementLineFromRecord(r odoo.Record, qtyField string) MovementLine {
	line := MovementLine{
		LineId:   r.Int64("id"),
		Quantity: r.Decimal(qtyField),
	}
	if p, ok := r.Many2One("product_id"); ok {
		id := p.Id
		line.ProductId = &id
	}
	if loc, ok := r.Many2One("location_id"); ok {
		line.Origin = &Location{Id: loc.Id, DisplayPath: loc.Name}
	}
	if loc, ok := r.Many2One("location_dest_id"); ok {
		line.Destination = &Location{Id: loc.Id, DisplayPath: loc.Name}
	}
	return line
}

func (l *Location) Path() string {
	if l == nil {
		return ""
	}
	return l.DisplayPath
}
