package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	// DefaultRecentLimit applies when Recent is called with a non-positive limit.
	DefaultRecentLimit = 50
	// MaxRecentLimit caps Recent.
	MaxRecentLimit = 500
)

// Repository persists audit events.
type Repository interface {
	Record(ctx context.Context, event Event) error
	Recent(ctx context.Context, limit int) ([]Event, error)
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed audit repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const schema = `CREATE TABLE IF NOT EXISTS qr_events (
    id          UUID PRIMARY KEY,
    kind        TEXT NOT NULL,
    outcome     TEXT NOT NULL,
    reason      TEXT NOT NULL DEFAULT '',
    fingerprint TEXT NOT NULL DEFAULT '',
    request_id  TEXT NOT NULL DEFAULT '',
    created_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS qr_events_created_at_idx ON qr_events (created_at DESC);`

// Migrate creates the events table if it does not exist.
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	_, err := r.db.Exec(ctx, schema)
	return err
}

// Record inserts a single event.
func (r *PostgresRepository) Record(ctx context.Context, event Event) error {
	id, err := uuid.Parse(event.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO qr_events (id, kind, outcome, reason, fingerprint, request_id, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, event.Kind, event.Outcome, event.Reason, event.Fingerprint, event.RequestID, event.CreatedAt.UTC())
	return err
}

// Recent returns the newest events first.
func (r *PostgresRepository) Recent(ctx context.Context, limit int) ([]Event, error) {
	limit = clampLimit(limit)
	rows, err := r.db.Query(ctx, `SELECT id, kind, outcome, reason, fingerprint, request_id, created_at
        FROM qr_events ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]Event, 0, limit)
	for rows.Next() {
		var (
			id        uuid.UUID
			createdAt time.Time
			e         Event
		)
		if err := rows.Scan(&id, &e.Kind, &e.Outcome, &e.Reason, &e.Fingerprint, &e.RequestID, &createdAt); err != nil {
			return nil, err
		}
		e.ID = id.String()
		e.CreatedAt = createdAt.UTC()
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultRecentLimit
	case limit > MaxRecentLimit:
		return MaxRecentLimit
	default:
		return limit
	}
}
