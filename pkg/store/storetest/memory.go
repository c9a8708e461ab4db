// Package storetest provides an in-memory store.Adapter for unit tests.
// It mirrors the behavioral contract of the PostgreSQL adapter closely
// enough for isolation, upsert and round-trip tests to run without a
// database.
package storetest

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/wefthq/weft/pkg/store"
)

// Memory is an in-memory Adapter. Safe for concurrent use.
type Memory struct {
	mu      sync.Mutex
	tables  map[string][]store.Row
	uniques map[string][][]string
}

func New() *Memory {
	return &Memory{
		tables:  map[string][]store.Row{},
		uniques: map[string][][]string{},
	}
}

// AddUnique registers a uniqueness constraint checked on Insert and used
// to detect conflicts the way the database would.
func (m *Memory) AddUnique(table string, columns ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uniques[table] = append(m.uniques[table], columns)
}

func (m *Memory) FindOne(ctx context.Context, table string, where []store.Where) (store.Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, row := range m.tables[table] {
		ok, err := matches(row, where)
		if err != nil {
			return nil, err
		}
		if ok {
			return cloneRow(row), nil
		}
	}
	return nil, nil
}

func (m *Memory) FindMany(ctx context.Context, table string, where []store.Where, sorts []store.Sort, page store.Page) ([]store.Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []store.Row{}
	for _, row := range m.tables[table] {
		ok, err := matches(row, where)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, cloneRow(row))
		}
	}

	for i := len(sorts) - 1; i >= 0; i-- {
		s := sorts[i]
		sort.SliceStable(out, func(a, b int) bool {
			less := compare(out[a][s.Field], out[b][s.Field]) < 0
			if s.Desc {
				return !less
			}
			return less
		})
	}

	if page.Offset > 0 {
		if page.Offset >= len(out) {
			return []store.Row{}, nil
		}
		out = out[page.Offset:]
	}
	if page.Limit > 0 && page.Limit < len(out) {
		out = out[:page.Limit]
	}
	return out, nil
}

func (m *Memory) Insert(ctx context.Context, table string, data store.Row) (store.Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if conflict := m.conflicting(table, data); conflict != nil {
		return nil, fmt.Errorf("%w: %s(%s)", store.ErrConstraintViolation, table, strings.Join(conflict, ","))
	}
	row := cloneRow(data)
	m.tables[table] = append(m.tables[table], row)
	return cloneRow(row), nil
}

func (m *Memory) Update(ctx context.Context, table string, where []store.Where, data store.Row) (store.Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, row := range m.tables[table] {
		ok, err := matches(row, where)
		if err != nil {
			return nil, err
		}
		if ok {
			for k, v := range data {
				row[k] = v
			}
			return cloneRow(row), nil
		}
	}
	return nil, nil
}

func (m *Memory) Upsert(ctx context.Context, table string, conflictColumns []string, data store.Row) (store.Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	skip := map[string]bool{"id": true, "created_at": true}
	for _, c := range conflictColumns {
		skip[c] = true
	}

	for _, row := range m.tables[table] {
		conflict := len(conflictColumns) > 0
		for _, c := range conflictColumns {
			if !equal(row[c], data[c]) {
				conflict = false
				break
			}
		}
		if conflict {
			for k, v := range data {
				if !skip[k] {
					row[k] = v
				}
			}
			return cloneRow(row), nil
		}
	}

	row := cloneRow(data)
	m.tables[table] = append(m.tables[table], row)
	return cloneRow(row), nil
}

func (m *Memory) DeleteMany(ctx context.Context, table string, where []store.Where) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.tables[table][:0]
	var removed int64
	for _, row := range m.tables[table] {
		ok, err := matches(row, where)
		if err != nil {
			return 0, err
		}
		if ok {
			removed++
		} else {
			kept = append(kept, row)
		}
	}
	m.tables[table] = kept
	return removed, nil
}

func (m *Memory) Count(ctx context.Context, table string, where []store.Where) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for _, row := range m.tables[table] {
		ok, err := matches(row, where)
		if err != nil {
			return 0, err
		}
		if ok {
			n++
		}
	}
	return n, nil
}

// Transaction runs fn against a snapshot copy; the copy replaces the live
// tables only if fn succeeds, which mirrors rollback-on-error semantics.
func (m *Memory) Transaction(ctx context.Context, fn func(tx store.Adapter) error) error {
	m.mu.Lock()
	snapshot := &Memory{
		tables:  map[string][]store.Row{},
		uniques: m.uniques,
	}
	for t, rows := range m.tables {
		copied := make([]store.Row, len(rows))
		for i, r := range rows {
			copied[i] = cloneRow(r)
		}
		snapshot.tables[t] = copied
	}
	m.mu.Unlock()

	if err := fn(snapshot); err != nil {
		return err
	}

	m.mu.Lock()
	m.tables = snapshot.tables
	m.mu.Unlock()
	return nil
}

func (m *Memory) conflicting(table string, data store.Row) []string {
	for _, cols := range m.uniques[table] {
		for _, row := range m.tables[table] {
			same := true
			for _, c := range cols {
				if !equal(row[c], data[c]) {
					same = false
					break
				}
			}
			if same {
				return cols
			}
		}
	}
	return nil
}

func matches(row store.Row, where []store.Where) (bool, error) {
	for _, w := range where {
		v := row[w.Field]
		if w.JSONKey != "" {
			doc := map[string]any{}
			switch raw := v.(type) {
			case string:
				_ = json.Unmarshal([]byte(raw), &doc)
			case []byte:
				_ = json.Unmarshal(raw, &doc)
			case map[string]any:
				doc = raw
			}
			v = doc[w.JSONKey]
		}
		switch w.Op {
		case store.OpEq:
			if !equal(v, w.Value) {
				return false, nil
			}
		case store.OpNeq:
			if equal(v, w.Value) {
				return false, nil
			}
		case store.OpGt:
			if compare(v, w.Value) <= 0 {
				return false, nil
			}
		case store.OpGte:
			if compare(v, w.Value) < 0 {
				return false, nil
			}
		case store.OpLt:
			if compare(v, w.Value) >= 0 {
				return false, nil
			}
		case store.OpLte:
			if compare(v, w.Value) > 0 {
				return false, nil
			}
		case store.OpIn:
			in := false
			for _, candidate := range toSlice(w.Value) {
				if equal(v, candidate) {
					in = true
					break
				}
			}
			if !in {
				return false, nil
			}
		case store.OpLike:
			s, _ := v.(string)
			pattern, _ := w.Value.(string)
			if !like(s, pattern) {
				return false, nil
			}
		default:
			return false, fmt.Errorf("unknown operator %q", w.Op)
		}
	}
	return true, nil
}

func equal(a, b any) bool {
	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Equal(tb)
		}
	}
	if isNumber(a) && isNumber(b) {
		return toFloat(a) == toFloat(b)
	}
	return a == b
}

func compare(a, b any) int {
	if isNumber(a) && isNumber(b) {
		fa, fb := toFloat(a), toFloat(b)
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	}
	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Compare(tb)
		}
	}
	sa := fmt.Sprintf("%v", a)
	sb := fmt.Sprintf("%v", b)
	return strings.Compare(sa, sb)
}

func isNumber(v any) bool {
	switch v.(type) {
	case int, int32, int64, float32, float64:
		return true
	}
	return false
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case float32:
		return float64(n)
	case float64:
		return n
	}
	return 0
}

func toSlice(v any) []any {
	switch s := v.(type) {
	case []any:
		return s
	case []string:
		out := make([]any, len(s))
		for i, e := range s {
			out[i] = e
		}
		return out
	}
	return []any{v}
}

// like supports the % wildcard only, which is all the adapters emit.
func like(s, pattern string) bool {
	parts := strings.Split(pattern, "%")
	if len(parts) == 1 {
		return s == pattern
	}
	if !strings.HasPrefix(s, parts[0]) {
		return false
	}
	s = s[len(parts[0]):]
	for _, p := range parts[1 : len(parts)-1] {
		idx := strings.Index(s, p)
		if idx < 0 {
			return false
		}
		s = s[idx+len(p):]
	}
	return strings.HasSuffix(s, parts[len(parts)-1])
}

func cloneRow(r store.Row) store.Row {
	out := make(store.Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
