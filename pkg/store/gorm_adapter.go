package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jackc/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// pgUniqueViolation is the PostgreSQL error code for unique_violation.
const pgUniqueViolation = "23505"

// GormAdapter implements Adapter on top of a GORM PostgreSQL connection.
type GormAdapter struct {
	db *gorm.DB
}

func NewGormAdapter(db *gorm.DB) *GormAdapter {
	return &GormAdapter{db: db}
}

// buildWhere renders a conjunction of clauses into a single SQL condition
// and its bind arguments.
func buildWhere(where []Where) (string, []any, error) {
	if len(where) == 0 {
		return "", nil, nil
	}

	var (
		parts []string
		args  []any
	)
	for _, w := range where {
		if err := validIdent(w.Field); err != nil {
			return "", nil, err
		}

		target := w.Field
		value := w.Value
		if w.JSONKey != "" {
			if err := validIdent(w.JSONKey); err != nil {
				return "", nil, err
			}
			target = fmt.Sprintf("%s ->> '%s'", w.Field, w.JSONKey)
			if w.Cast == CastNumeric {
				target = fmt.Sprintf("(%s)::numeric", target)
			} else {
				// ->> yields text; bind the canonical JSON text form.
				value = jsonText(value)
			}
		}

		switch w.Op {
		case OpEq, OpNeq, OpGt, OpGte, OpLt, OpLte, OpLike:
			parts = append(parts, fmt.Sprintf("%s %s ?", target, w.Op))
		case OpIn:
			parts = append(parts, fmt.Sprintf("%s IN ?", target))
		default:
			return "", nil, fmt.Errorf("unknown operator %q", w.Op)
		}
		args = append(args, value)
	}

	return strings.Join(parts, " AND "), args, nil
}

// jsonText renders a scalar the way postgres' ->> operator renders it.
func jsonText(v any) any {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return v
}

func (a *GormAdapter) query(ctx context.Context, table string, where []Where) (*gorm.DB, error) {
	if err := validIdent(table); err != nil {
		return nil, err
	}

	q := a.db.WithContext(ctx).Table(table)
	cond, args, err := buildWhere(where)
	if err != nil {
		return nil, err
	}
	if cond != "" {
		q = q.Where(cond, args...)
	}
	return q, nil
}

func (a *GormAdapter) FindOne(ctx context.Context, table string, where []Where) (Row, error) {
	q, err := a.query(ctx, table, where)
	if err != nil {
		return nil, err
	}

	row := Row{}
	if err := q.Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return row, nil
}

func (a *GormAdapter) FindMany(ctx context.Context, table string, where []Where, sorts []Sort, page Page) ([]Row, error) {
	q, err := a.query(ctx, table, where)
	if err != nil {
		return nil, err
	}

	for _, s := range sorts {
		if err := validIdent(s.Field); err != nil {
			return nil, err
		}
		order := s.Field
		if s.Desc {
			order += " DESC"
		}
		q = q.Order(order)
	}
	if page.Limit > 0 {
		q = q.Limit(page.Limit)
	}
	if page.Offset > 0 {
		q = q.Offset(page.Offset)
	}

	rows := []Row{}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (a *GormAdapter) Insert(ctx context.Context, table string, data Row) (Row, error) {
	if err := validIdent(table); err != nil {
		return nil, err
	}

	payload := map[string]any(cloneRow(data))
	if err := a.db.WithContext(ctx).Table(table).Create(payload).Error; err != nil {
		return nil, translatePgError(err)
	}
	return Row(payload), nil
}

func (a *GormAdapter) Update(ctx context.Context, table string, where []Where, data Row) (Row, error) {
	var out Row
	err := a.Transaction(ctx, func(tx Adapter) error {
		current, err := tx.FindOne(ctx, table, where)
		if err != nil || current == nil {
			return err
		}

		gtx := tx.(*GormAdapter)
		q, err := gtx.query(ctx, table, where)
		if err != nil {
			return err
		}
		if err := q.Updates(map[string]any(cloneRow(data))).Error; err != nil {
			return translatePgError(err)
		}

		// Refetch by primary key so the caller sees the stored row.
		if id, ok := current["id"]; ok {
			out, err = tx.FindOne(ctx, table, []Where{Eq("id", id)})
			return err
		}
		merged := cloneRow(current)
		for k, v := range data {
			merged[k] = v
		}
		out = merged
		return nil
	})
	return out, err
}

func (a *GormAdapter) Upsert(ctx context.Context, table string, conflictColumns []string, data Row) (Row, error) {
	if err := validIdent(table); err != nil {
		return nil, err
	}

	conflict := make([]clause.Column, 0, len(conflictColumns))
	skip := map[string]bool{"id": true, "created_at": true}
	for _, c := range conflictColumns {
		if err := validIdent(c); err != nil {
			return nil, err
		}
		conflict = append(conflict, clause.Column{Name: c})
		skip[c] = true
	}

	var updated []string
	for k := range data {
		if !skip[k] {
			updated = append(updated, k)
		}
	}
	// Stable column order keeps the generated SQL deterministic.
	sort.Strings(updated)

	payload := map[string]any(cloneRow(data))
	err := a.db.WithContext(ctx).Table(table).
		Clauses(clause.OnConflict{
			Columns:   conflict,
			DoUpdates: clause.AssignmentColumns(updated),
		}).
		Create(payload).Error
	if err != nil {
		return nil, translatePgError(err)
	}
	return Row(payload), nil
}

func (a *GormAdapter) DeleteMany(ctx context.Context, table string, where []Where) (int64, error) {
	if err := validIdent(table); err != nil {
		return 0, err
	}

	cond, args, err := buildWhere(where)
	if err != nil {
		return 0, err
	}

	sql := "DELETE FROM " + table
	if cond != "" {
		sql += " WHERE " + cond
	}
	res := a.db.WithContext(ctx).Exec(sql, args...)
	return res.RowsAffected, res.Error
}

func (a *GormAdapter) Count(ctx context.Context, table string, where []Where) (int64, error) {
	q, err := a.query(ctx, table, where)
	if err != nil {
		return 0, err
	}

	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (a *GormAdapter) Transaction(ctx context.Context, fn func(tx Adapter) error) error {
	return a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormAdapter{db: tx})
	})
}

// translatePgError maps PostgreSQL unique violations onto the adapter
// error taxonomy. Everything else propagates unchanged.
func translatePgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return fmt.Errorf("%w: %s", ErrConstraintViolation, pgErr.ConstraintName)
	}
	return err
}

func cloneRow(r Row) Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
