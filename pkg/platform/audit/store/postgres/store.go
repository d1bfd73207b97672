package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	audit "deedgate/pkg/platform/audit"
)

// Store implements audit.Store using PostgreSQL.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Append inserts an audit event into the audit_events table.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	query := `
		INSERT INTO audit_events (id, timestamp, actor, action, record_hash, decision, reason, request_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.New(),
		event.Timestamp,
		event.Actor,
		event.Action,
		event.RecordHash,
		event.Decision,
		event.Reason,
		event.RequestID,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListByRecordHash returns the trail of one record hash, oldest first.
func (s *Store) ListByRecordHash(ctx context.Context, hash string) ([]audit.Event, error) {
	query := `
		SELECT timestamp, actor, action, record_hash, decision, reason, request_id
		FROM audit_events
		WHERE record_hash = $1
		ORDER BY timestamp ASC
	`
	rows, err := s.db.QueryContext(ctx, query, hash)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// ListRecent returns the N most recent events, newest first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	query := `
		SELECT timestamp, actor, action, record_hash, decision, reason, request_id
		FROM audit_events
		ORDER BY timestamp DESC
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]audit.Event, error) {
	var events []audit.Event
	for rows.Next() {
		var event audit.Event
		err := rows.Scan(
			&event.Timestamp,
			&event.Actor,
			&event.Action,
			&event.RecordHash,
			&event.Decision,
			&event.Reason,
			&event.RequestID,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
