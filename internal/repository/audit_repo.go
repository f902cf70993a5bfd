package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"film_api/internal/models"
	"film_api/internal/repository/db"

	"github.com/google/uuid"
)

type AuditRepository struct {
	db      *sql.DB
	dialect db.Dialect
}

func NewAuditRepository(conn *sql.DB, dialect db.Dialect) *AuditRepository {
	return &AuditRepository{db: conn, dialect: dialect}
}

var _ AuditRepo = (*AuditRepository)(nil)

const (
	insertAuditEventSQL = `
		INSERT INTO audit_events (id, occurred_at, action, resource, resource_id, actor, meta)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	selectAuditEventsSQL = `SELECT id, occurred_at, action, resource, resource_id, actor, meta FROM audit_events`
)

// Append inserts a new event. If EventID or OccurredAt are empty, they’re set.
func (r *AuditRepository) Append(ctx context.Context, e models.AuditEvent) error {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	} else {
		e.OccurredAt = e.OccurredAt.UTC()
	}

	var metaPtr *string
	if e.Metadata != nil {
		b, err := json.Marshal(e.Metadata)
		if err != nil {
			return fmt.Errorf("marshal audit metadata: %w", err)
		}
		s := string(b)
		metaPtr = &s
	}

	_, err := r.db.ExecContext(ctx, rebind(r.dialect, insertAuditEventSQL),
		e.EventID,
		e.OccurredAt,
		strings.ToUpper(strings.TrimSpace(e.Action)),
		strings.ToLower(strings.TrimSpace(e.Resource)),
		e.ResourceID,
		e.Actor,
		metaPtr,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// List returns events filtered by [from, to] (inclusive), action and resource, ordered ASC.
func (r *AuditRepository) List(ctx context.Context, f AuditQuery) ([]models.AuditEvent, error) {
	var (
		conds []string
		args  []any
	)

	if !f.From.IsZero() {
		conds = append(conds, "occurred_at >= ?")
		args = append(args, f.From.UTC())
	}
	if !f.To.IsZero() {
		conds = append(conds, "occurred_at <= ?")
		args = append(args, f.To.UTC())
	}
	if action := strings.ToUpper(strings.TrimSpace(f.Action)); action != "" {
		conds = append(conds, "action = ?")
		args = append(args, action)
	}
	if resource := strings.ToLower(strings.TrimSpace(f.Resource)); resource != "" {
		conds = append(conds, "resource = ?")
		args = append(args, resource)
	}

	q := selectAuditEventsSQL
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY occurred_at ASC, id ASC"

	rows, err := r.db.QueryContext(ctx, rebind(r.dialect, q), args...)
	if err != nil {
		return nil, fmt.Errorf("select audit events: %w", err)
	}
	defer rows.Close()

	out := make([]models.AuditEvent, 0, 64)
	for rows.Next() {
		var ev models.AuditEvent
		var metaStr sql.NullString
		if err := rows.Scan(&ev.EventID, &ev.OccurredAt, &ev.Action, &ev.Resource, &ev.ResourceID, &ev.Actor, &metaStr); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		ev.OccurredAt = ev.OccurredAt.UTC()

		if metaStr.Valid && metaStr.String != "" {
			var v any
			if err := json.Unmarshal([]byte(metaStr.String), &v); err == nil {
				ev.Metadata = v
			} else {
				ev.Metadata = metaStr.String // keep raw if malformed
			}
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return out, nil
}
