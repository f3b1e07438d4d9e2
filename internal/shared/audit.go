package shared

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditEvent represents a record stored in audit_logs.
type AuditEvent struct {
	ID       uuid.UUID
	Actor    string
	Action   string
	Entity   string
	EntityID string
	Meta     map[string]any
	At       time.Time
}

// AuditLogger writes mutation events into audit_logs.
type AuditLogger struct {
	pool *pgxpool.Pool
}

// NewAuditLogger returns a new AuditLogger.
func NewAuditLogger(pool *pgxpool.Pool) *AuditLogger {
	return &AuditLogger{pool: pool}
}

// Record persists the event. A nil logger is a no-op so services stay
// usable in tests without an audit sink.
func (l *AuditLogger) Record(ctx context.Context, ev AuditEvent) error {
	if l == nil || l.pool == nil {
		return nil
	}
	if ev.Action == "" || ev.Entity == "" || ev.EntityID == "" {
		return errors.New("audit event requires action/entity/entity_id")
	}
	if ev.ID == uuid.Nil {
		ev.ID = uuid.New()
	}
	metaJSON, err := json.Marshal(ev.Meta)
	if err != nil {
		return err
	}
	_, err = l.pool.Exec(ctx,
		`INSERT INTO audit_logs (id, actor, action, entity, entity_id, meta, occurred_at)
		 VALUES ($1, $2, $3, $4, $5, $6, COALESCE(NULLIF($7, '0001-01-01 00:00:00+00'::timestamptz), NOW()))`,
		ev.ID, ev.Actor, ev.Action, ev.Entity, ev.EntityID, metaJSON, ev.At)
	return err
}
