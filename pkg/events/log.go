package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wefthq/weft/pkg/model"
	"github.com/wefthq/weft/pkg/store"
)

// Log appends and queries the events table.
type Log struct {
	db     store.Adapter
	logger *zap.Logger
}

// New builds a Log over an adapter, typically a tenant scope. A nil
// logger falls back to the process-global one.
func New(db store.Adapter, logger *zap.Logger) *Log {
	if logger == nil {
		logger = zap.L()
	}
	return &Log{db: db, logger: logger}
}

// Append records one plugin operation. It is best-effort: marshal or
// insert failures are reported through the logger and swallowed, so the
// operation being described is never rolled back or blocked by its own
// audit trail.
func (l *Log) Append(ctx context.Context, tenantID, eventType string, payload any, status Status) {
	raw, err := json.Marshal(payload)
	if err != nil {
		l.logger.Warn("event payload not serializable; event dropped",
			zap.String("event_type", eventType),
			zap.String("tenant_id", tenantID),
			zap.Error(err),
		)
		return
	}

	event := &model.Event{
		ID:        uuid.NewString(),
		TenantID:  tenantID,
		EventType: eventType,
		Payload:   raw,
		Status:    status.String(),
		CreatedAt: time.Now().UTC(),
	}

	if _, err := l.db.Insert(ctx, event.TableName(), event.Row()); err != nil {
		l.logger.Warn("event append failed",
			zap.String("event_type", eventType),
			zap.String("tenant_id", tenantID),
			zap.Error(err),
		)
	}
}

// Query returns events filtered by tenant and/or event type, newest
// first. Empty filter arguments are skipped. Used by idempotency
// inspection and tests; mirrors the adapter's FindMany surface.
func (l *Log) Query(ctx context.Context, tenantID, eventType string, page store.Page) ([]*model.Event, error) {
	var where []store.Where
	if tenantID != "" {
		where = append(where, store.Eq("tenant_id", tenantID))
	}
	if eventType != "" {
		where = append(where, store.Eq("event_type", eventType))
	}

	rows, err := l.db.FindMany(ctx, model.Event{}.TableName(), where,
		[]store.Sort{{Field: "created_at", Desc: true}}, page)
	if err != nil {
		return nil, err
	}

	out := make([]*model.Event, len(rows))
	for i, row := range rows {
		out[i] = model.EventFromRow(row)
	}
	return out, nil
}
