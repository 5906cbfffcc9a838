package postgres

import (
	"context"
	"database/sql"
	"fmt"

	id "recouvro/pkg/domain"
	audit "recouvro/pkg/platform/audit"
)

// Store persists audit events in PostgreSQL. Rows are append-only; there is
// deliberately no update or delete path.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const insertEvent = `
INSERT INTO audit_events (
	category, occurred_at, dossier_id, action, bailiff_name,
	stage, amount, detail, request_id, client_ip, user_agent
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	_, err := s.db.ExecContext(ctx, insertEvent,
		string(event.Category),
		event.Timestamp,
		event.DossierID.String(),
		string(event.Action),
		event.BailiffName,
		event.Stage,
		event.Amount,
		event.Detail,
		event.RequestID,
		event.ClientIP,
		event.UserAgent,
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

const selectByDossier = `
SELECT category, occurred_at, dossier_id, action, bailiff_name,
	stage, amount, detail, request_id, client_ip, user_agent
FROM audit_events
WHERE dossier_id = $1
ORDER BY occurred_at ASC`

func (s *Store) ListByDossier(ctx context.Context, dossierID id.DossierID) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx, selectByDossier, dossierID.String())
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var event audit.Event
		var rawID, category, action string
		if err := rows.Scan(
			&category,
			&event.Timestamp,
			&rawID,
			&action,
			&event.BailiffName,
			&event.Stage,
			&event.Amount,
			&event.Detail,
			&event.RequestID,
			&event.ClientIP,
			&event.UserAgent,
		); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Category = audit.EventCategory(category)
		event.Action = audit.Action(action)
		parsed, err := id.ParseDossierID(rawID)
		if err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.DossierID = parsed
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	return events, nil
}

// Schema returns the DDL for the audit table. Applied by the integration test
// harness and by deployment migrations.
func Schema() string {
	return `
CREATE TABLE IF NOT EXISTS audit_events (
	id           BIGSERIAL PRIMARY KEY,
	category     TEXT        NOT NULL,
	occurred_at  TIMESTAMPTZ NOT NULL,
	dossier_id   UUID        NOT NULL,
	action       TEXT        NOT NULL,
	bailiff_name TEXT        NOT NULL DEFAULT '',
	stage        TEXT        NOT NULL DEFAULT '',
	amount       DOUBLE PRECISION NOT NULL DEFAULT 0,
	detail       TEXT        NOT NULL DEFAULT '',
	request_id   TEXT        NOT NULL DEFAULT '',
	client_ip    TEXT        NOT NULL DEFAULT '',
	user_agent   TEXT        NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_audit_events_dossier ON audit_events (dossier_id, occurred_at);`
}
