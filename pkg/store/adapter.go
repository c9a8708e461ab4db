package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

// Row is a single database row as seen by the generic adapter. Typed
// decoding happens in the layers above.
type Row map[string]any

// Op is a comparison operator usable in a where clause.
type Op string

const (
	OpEq   Op = "="
	OpNeq  Op = "<>"
	OpGt   Op = ">"
	OpGte  Op = ">="
	OpLt   Op = "<"
	OpLte  Op = "<="
	OpIn   Op = "IN"
	OpLike Op = "LIKE"
)

// Cast selects a storage-level cast for a JSON predicate.
type Cast string

// CastNumeric compares a JSON value numerically instead of as text.
const CastNumeric Cast = "numeric"

// Where is a single (field, operator, value) predicate. A slice of Where
// clauses is always a conjunction. When JSONKey is set the predicate
// targets a key inside the JSON document stored in Field rather than the
// column itself.
type Where struct {
	Field   string
	JSONKey string
	Op      Op
	Value   any
	Cast    Cast
}

// Eq is shorthand for the most common clause.
func Eq(field string, value any) Where {
	return Where{Field: field, Op: OpEq, Value: value}
}

// Sort orders a FindMany result by one column.
type Sort struct {
	Field string
	Desc  bool
}

// Page bounds a FindMany result. The zero value means no bound.
type Page struct {
	Limit  int
	Offset int
}

// ErrConstraintViolation reports a uniqueness conflict on insert.
var ErrConstraintViolation = errors.New("constraint violation")

// ErrTenantMismatch reports a write that carried a tenant id different
// from the one the scope is bound to.
var ErrTenantMismatch = errors.New("tenant mismatch")

// Adapter is the minimal CRUD contract implemented once per physical
// database. Absent rows are represented as nil results, never as errors.
// Driver and transport errors propagate unchanged; retry policy belongs
// to the host application.
type Adapter interface {
	// FindOne returns the first row matching the conjunction of where
	// clauses, or nil if nothing matches.
	FindOne(ctx context.Context, table string, where []Where) (Row, error)

	// FindMany returns all matching rows; an empty result is an empty
	// slice, not an error.
	FindMany(ctx context.Context, table string, where []Where, sort []Sort, page Page) ([]Row, error)

	// Insert stores data as a new row. The caller supplies the full row,
	// including its id. Uniqueness conflicts surface as
	// ErrConstraintViolation.
	Insert(ctx context.Context, table string, data Row) (Row, error)

	// Update applies data to the rows matching where and returns the
	// post-update row, or nil if nothing matched.
	Update(ctx context.Context, table string, where []Where, data Row) (Row, error)

	// Upsert inserts data, resolving a conflict on conflictColumns by
	// updating the existing row in the database. Conflict-key columns,
	// id and created_at are never overwritten on conflict.
	Upsert(ctx context.Context, table string, conflictColumns []string, data Row) (Row, error)

	// DeleteMany removes all matching rows and returns how many were
	// removed. Zero matches is not an error.
	DeleteMany(ctx context.Context, table string, where []Where) (int64, error)

	// Count returns the number of matching rows.
	Count(ctx context.Context, table string, where []Where) (int64, error)

	// Transaction runs fn against a transactional adapter. Any error
	// returned by fn rolls back all writes made through that handle.
	Transaction(ctx context.Context, fn func(tx Adapter) error) error
}

var identRgx = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// validIdent rejects anything that is not a plain SQL identifier. Field
// and table names come from code and schemas, never from callers of the
// platform, but the adapter stays fail-closed regardless.
func validIdent(name string) error {
	if !identRgx.MatchString(name) {
		return fmt.Errorf("invalid identifier %q", name)
	}
	return nil
}
