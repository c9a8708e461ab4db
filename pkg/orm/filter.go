package orm

import (
	"fmt"

	"github.com/wefthq/weft/pkg/schema"
	"github.com/wefthq/weft/pkg/store"
)

// Filter is one predicate over a decoded entity attribute.
type Filter struct {
	Field string
	Op    store.Op
	Value any
}

// Eq is shorthand for an equality filter.
func Eq(field string, value any) Filter {
	return Filter{Field: field, Op: store.OpEq, Value: value}
}

// translate maps entity-attribute predicates onto storage-level JSON
// predicates. The supported subset depends on the field's kind:
//
//	text:              =, <>, LIKE
//	boolean:           =, <>
//	integer, number:   =, <>, >, >=, <, <=  (numeric comparison)
//	timestamp:         =, <>, >, >=, <, <=  (RFC 3339 text order)
//	object, array:     none
//
// Anything outside the subset is rejected, never silently ignored.
func (c *Client) translate(filter []Filter) ([]store.Where, error) {
	var out []store.Where
	for _, f := range filter {
		field, ok := c.entity.Fields[f.Field]
		if !ok {
			return nil, fmt.Errorf("%w: %q is not a declared field of %s/%s",
				ErrUnsupportedFilter, f.Field, c.resource, c.service)
		}

		w := store.Where{Field: "data", JSONKey: f.Field, Op: f.Op, Value: f.Value}

		switch field.Kind {
		case schema.KindText:
			if f.Op != store.OpEq && f.Op != store.OpNeq && f.Op != store.OpLike {
				return nil, opError(f, field.Kind)
			}
		case schema.KindBoolean:
			if f.Op != store.OpEq && f.Op != store.OpNeq {
				return nil, opError(f, field.Kind)
			}
		case schema.KindInteger, schema.KindNumber:
			switch f.Op {
			case store.OpEq, store.OpNeq:
			case store.OpGt, store.OpGte, store.OpLt, store.OpLte:
				w.Cast = store.CastNumeric
			default:
				return nil, opError(f, field.Kind)
			}
		case schema.KindTimestamp:
			switch f.Op {
			case store.OpEq, store.OpNeq, store.OpGt, store.OpGte, store.OpLt, store.OpLte:
			default:
				return nil, opError(f, field.Kind)
			}
		default:
			return nil, fmt.Errorf("%w: cannot filter on %s field %q",
				ErrUnsupportedFilter, field.Kind, f.Field)
		}

		out = append(out, w)
	}
	return out, nil
}

func opError(f Filter, kind schema.Kind) error {
	return fmt.Errorf("%w: operator %q on %s field %q",
		ErrUnsupportedFilter, f.Op, kind, f.Field)
}
