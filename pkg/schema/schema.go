package schema

import (
	"errors"
	"fmt"
	"time"
)

// ErrSchemaValidation reports a payload that does not match an entity's
// declared structure.
var ErrSchemaValidation = errors.New("schema validation failure")

// Field declares one entity attribute.
type Field struct {
	Kind     Kind
	Required bool
}

// Entity is the structural schema of one plugin service's stored
// entities. Version is stamped on every write; reads never reject other
// versions.
type Entity struct {
	Version string
	Fields  map[string]Field
}

// Schema is a plugin's declared shape. Services is nil for plugins that
// store no entities; callers must branch on that explicitly.
type Schema struct {
	Name     string
	Services map[string]Entity
}

// HasServices reports whether the plugin declares stored entities.
func (s Schema) HasServices() bool {
	return s.Services != nil
}

// Validate checks data against the entity structure. Unknown fields and
// kind mismatches fail; a timestamp field additionally accepts an
// RFC 3339 string, the one declared coercion. Validate does not mutate
// data.
func (e Entity) Validate(data map[string]any) error {
	for name, field := range e.Fields {
		v, ok := data[name]
		if !ok || v == nil {
			if field.Required {
				return fmt.Errorf("%w: missing required field %q", ErrSchemaValidation, name)
			}
			continue
		}
		if err := checkKind(v, field.Kind); err != nil {
			return fmt.Errorf("%w: field %q: %v", ErrSchemaValidation, name, err)
		}
	}

	for name := range data {
		if _, ok := e.Fields[name]; !ok {
			return fmt.Errorf("%w: undeclared field %q", ErrSchemaValidation, name)
		}
	}
	return nil
}

func checkKind(v any, kind Kind) error {
	switch kind {
	case KindText:
		if _, ok := v.(string); !ok {
			return typeError(v, kind)
		}
	case KindInteger:
		// JSON decoding yields float64; insist it is integral.
		switch n := v.(type) {
		case int, int32, int64:
		case float64:
			if n != float64(int64(n)) {
				return typeError(v, kind)
			}
		default:
			return typeError(v, kind)
		}
	case KindNumber:
		switch v.(type) {
		case int, int32, int64, float32, float64:
		default:
			return typeError(v, kind)
		}
	case KindBoolean:
		if _, ok := v.(bool); !ok {
			return typeError(v, kind)
		}
	case KindTimestamp:
		switch t := v.(type) {
		case time.Time:
		case string:
			if _, err := time.Parse(time.RFC3339, t); err != nil {
				return fmt.Errorf("not an RFC 3339 timestamp: %q", t)
			}
		default:
			return typeError(v, kind)
		}
	case KindObject:
		if _, ok := v.(map[string]any); !ok {
			return typeError(v, kind)
		}
	case KindArray:
		if _, ok := v.([]any); !ok {
			return typeError(v, kind)
		}
	default:
		return fmt.Errorf("unknown kind %v", kind)
	}
	return nil
}

func typeError(v any, kind Kind) error {
	return fmt.Errorf("expected %s, got %T", kind, v)
}
