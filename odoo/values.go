package odoo

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateTimeLayout is how Odoo serialises Datetime fields over XML-RPC.
const DateTimeLayout = "2006-01-02 15:04:05"

// Record is one row of a search_read result. Odoo sends false for empty
// fields of any type, so every accessor treats false like a missing key.
type Record map[string]any

type Many2One struct {
	Id   int64
	Name string
}

func (r Record) Int64(field string) int64 {
	id, _ := toInt64(r[field])
	return id
}

func (r Record) String(field string) string {
	s, _ := r.OptionalString(field)
	return s
}

func (r Record) OptionalString(field string) (string, bool) {
	switch v := r[field].(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	default:
		return "", false
	}
}

func (r Record) Decimal(field string) decimal.Decimal {
	switch v := r[field].(type) {
	case float64:
		return decimal.NewFromFloat(v)
	case float32:
		return decimal.NewFromFloat32(v)
	case int64:
		return decimal.NewFromInt(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return decimal.Zero
		}
		return d
	default:
		return decimal.Zero
	}
}

// Many2One decodes an [id, "display name"] pair.
func (r Record) Many2One(field string) (Many2One, bool) {
	pair, ok := r[field].([]any)
	if !ok || len(pair) == 0 {
		return Many2One{}, false
	}
	id, ok := toInt64(pair[0])
	if !ok {
		return Many2One{}, false
	}
	m := Many2One{Id: id}
	if len(pair) > 1 {
		if name, ok := pair[1].(string); ok {
			m.Name = name
		}
	}
	return m, true
}

func (r Record) Int64s(field string) []int64 {
	list, ok := r[field].([]any)
	if !ok {
		return nil
	}
	ids := make([]int64, 0, len(list))
	for _, v := range list {
		if id, ok := toInt64(v); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// Time parses a Datetime field as UTC. Missing or malformed values give the zero time.
func (r Record) Time(field string) (time.Time, bool) {
	s, ok := r.OptionalString(field)
	if !ok || strings.TrimSpace(s) == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(DateTimeLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func toInt64(v any) (int64, bool) {
	switch t := v.(type) {
	case int64:
		return t, true
	case int:
		return int64(t), true
	case int32:
		return int64(t), true
	case float64:
		return int64(t), true
	case string:
		n, err := strconv.ParseInt(t, 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}
