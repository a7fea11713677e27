package odoo

const MethodSearchRead = "search_read"

// Condition is one Odoo domain term, e.g. ("state", "=", "done").
type Condition struct {
	Field    string
	Operator string
	Value    any
}

type Domain []Condition

func Where(field, operator string, value any) Condition {
	return Condition{Field: field, Operator: operator, Value: value}
}

// Query describes one logical remote read. An empty Domain reads every record.
type Query struct {
	Model  string
	Method string
	Domain Domain
	Fields []string
	Extra  map[string]any
}

func (q Query) method() string {
	if q.Method == "" {
		return MethodSearchRead
	}
	return q.Method
}

// args encodes the positional execute_kw arguments: a single domain list.
func (q Query) args() []any {
	domain := make([]any, 0, len(q.Domain))
	for _, c := range q.Domain {
		domain = append(domain, []any{c.Field, c.Operator, encodeValue(c.Value)})
	}
	return []any{domain}
}

func (q Query) kwargs() map[string]any {
	kw := make(map[string]any, len(q.Extra)+1)
	for k, v := range q.Extra {
		kw[k] = v
	}
	if len(q.Fields) > 0 {
		fields := make([]any, 0, len(q.Fields))
		for _, f := range q.Fields {
			fields = append(fields, f)
		}
		kw["fields"] = fields
	}
	return kw
}

func encodeValue(v any) any {
	switch t := v.(type) {
	case []int64:
		out := make([]any, 0, len(t))
		for _, id := range t {
			out = append(out, id)
		}
		return out
	case []string:
		out := make([]any, 0, len(t))
		for _, s := range t {
			out = append(out, s)
		}
		return out
	default:
		return v
	}
}
