package store

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newMockAdapter opens a GORM connection over sqlmock. Default
// transactions are skipped so the expected SQL stays flat.
func newMockAdapter(t *testing.T) (*GormAdapter, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gdb, err := gorm.Open(
		postgres.New(postgres.Config{Conn: db, PreferSimpleProtocol: true}),
		&gorm.Config{
			SkipDefaultTransaction: true,
			Logger:                 logger.Default.LogMode(logger.Silent),
		},
	)
	require.NoError(t, err)

	return NewGormAdapter(gdb), mock
}

func TestGormAdapterFindOne(t *testing.T) {
	adapter, mock := newMockAdapter(t)

	mock.ExpectQuery(`SELECT \* FROM "resources" WHERE tenant_id = \$1 AND resource_id = \$2`).
		WithArgs("t1", "ts-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "resource_id"}).
			AddRow("row-1", "t1", "ts-1"))

	row, err := adapter.FindOne(context.Background(), "resources", []Where{
		Eq("tenant_id", "t1"),
		Eq("resource_id", "ts-1"),
	})
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, "row-1", row["id"])

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormAdapterFindOneAbsentIsNil(t *testing.T) {
	adapter, mock := newMockAdapter(t)

	mock.ExpectQuery(`SELECT \* FROM "resources"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	row, err := adapter.FindOne(context.Background(), "resources", []Where{Eq("id", "nope")})
	require.NoError(t, err)
	assert.Nil(t, row)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormAdapterInsertConstraintViolation(t *testing.T) {
	adapter, mock := newMockAdapter(t)

	mock.ExpectExec(`INSERT INTO "resources"`).
		WillReturnError(&pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "resources_tuple_key"})

	_, err := adapter.Insert(context.Background(), "resources", Row{
		"id":          "row-1",
		"tenant_id":   "t1",
		"resource_id": "ts-1",
	})
	require.ErrorIs(t, err, ErrConstraintViolation)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormAdapterDeleteManyCount(t *testing.T) {
	adapter, mock := newMockAdapter(t)

	mock.ExpectExec(`DELETE FROM resources WHERE tenant_id = \$1`).
		WithArgs("t1").
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := adapter.DeleteMany(context.Background(), "resources", []Where{Eq("tenant_id", "t1")})
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormAdapterDeleteManyZeroMatchesIsNotError(t *testing.T) {
	adapter, mock := newMockAdapter(t)

	mock.ExpectExec(`DELETE FROM resources`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	n, err := adapter.DeleteMany(context.Background(), "resources", []Where{Eq("id", "nope")})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestGormAdapterCount(t *testing.T) {
	adapter, mock := newMockAdapter(t)

	mock.ExpectQuery(`SELECT count\(.+\) FROM "events" WHERE event_type = \$1`).
		WithArgs("slack.messages.post").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	n, err := adapter.Count(context.Background(), "events", []Where{Eq("event_type", "slack.messages.post")})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestGormAdapterRejectsHostileIdentifiers(t *testing.T) {
	adapter, _ := newMockAdapter(t)
	ctx := context.Background()

	_, err := adapter.FindOne(ctx, "resources; DROP TABLE resources", nil)
	require.Error(t, err)

	_, err = adapter.FindOne(ctx, "resources", []Where{Eq("id = '' OR 1=1 --", "x")})
	require.Error(t, err)
}

func TestBuildWhere(t *testing.T) {
	cond, args, err := buildWhere([]Where{
		Eq("tenant_id", "t1"),
		{Field: "created_at", Op: OpGte, Value: "2026-01-01"},
		{Field: "status", Op: OpIn, Value: []string{"completed", "failed"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "tenant_id = ? AND created_at >= ? AND status IN ?", cond)
	assert.Len(t, args, 3)
}
