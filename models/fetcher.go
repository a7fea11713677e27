package models

import (
	"context"

	"bitbucket.org/kumulus/repair_costs/odoo"
)

// RecordFetcher is satisfied by *odoo.Fetcher.
type RecordFetcher interface {
	Fetch(ctx context.Context, q odoo.Query) ([]odoo.Record, error)
}
