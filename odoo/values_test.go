package odoo

import (
	"testing"
	"time"
)

func TestRecord_FalseFieldsReadAsMissing(t *testing.T) {
	r := Record{
		"product_id":   false,
		"default_code": false,
		"qty_done":     false,
		"move_ids":     false,
		"create_date":  false,
	}
	if _, ok := r.Many2One("product_id"); ok {
		t.Fatal("expected false many2one to be absent")
	}
	if s := r.String("default_code"); s != "" {
		t.Fatalf("expected empty string, got %q", s)
	}
	if !r.Decimal("qty_done").IsZero() {
		t.Fatalf("expected zero quantity, got %s", r.Decimal("qty_done"))
	}
	if ids := r.Int64s("move_ids"); len(ids) != 0 {
		t.Fatalf("expected no ids, got %v", ids)
	}
	if _, ok := r.Time("create_date"); ok {
		t.Fatal("expected missing time")
	}
}

func TestRecord_DecodesValues(t *testing.T) {
	r := Record{
		"id":          int64(4),
		"move_ids":    []any{int64(1), int64(2), 3},
		"create_date": "2024-05-02 08:30:00",
		"qty_done":    2.5,
		"price":       "10.25",
	}
	if r.Int64("id") != 4 {
		t.Fatalf("unexpected id %d", r.Int64("id"))
	}
	ids := r.Int64s("move_ids")
	if len(ids) != 3 || ids[2] != 3 {
		t.Fatalf("unexpected ids %v", ids)
	}
	created, ok := r.Time("create_date")
	if !ok || !created.Equal(time.Date(2024, 5, 2, 8, 30, 0, 0, time.UTC)) {
		t.Fatalf("unexpected time %v", created)
	}
	if r.Decimal("qty_done").String() != "2.5" || r.Decimal("price").String() != "10.25" {
		t.Fatalf("unexpected decimals %s %s", r.Decimal("qty_done"), r.Decimal("price"))
	}
}
