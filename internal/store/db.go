package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// DB wraps sql.DB for Postgres using pgx.
type DB struct {
	Client *sql.DB
}

// NewDB opens a Postgres pool and pings it within timeout.
func NewDB(ctx context.Context, connString string, timeout time.Duration) (*DB, error) {
	db, err := sql.Open("pgx", connString)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	pctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return &DB{Client: db}, nil
}

// schema is idempotent. Registrations reference events without ON DELETE
// CASCADE; the service removes them before deleting an event.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id          BIGSERIAL PRIMARY KEY,
	name        VARCHAR(100) NOT NULL,
	email       VARCHAR(255) NOT NULL UNIQUE,
	password    TEXT NOT NULL,
	role        VARCHAR(20) NOT NULL CHECK (role IN ('student', 'faculty', 'admin')),
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS events (
	id          BIGSERIAL PRIMARY KEY,
	title       VARCHAR(200) NOT NULL,
	description TEXT NOT NULL,
	event_date  DATE NOT NULL,
	deadline    DATE NOT NULL,
	link        VARCHAR(500) NOT NULL,
	created_by  BIGINT NOT NULL REFERENCES users(id),
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS registration (
	id            BIGSERIAL PRIMARY KEY,
	email         VARCHAR(255) NOT NULL,
	student_name  VARCHAR(100) NOT NULL,
	event_id      BIGINT NOT NULL REFERENCES events(id),
	proof_image   TEXT NOT NULL,
	registered_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS registration_email_event_uq ON registration(email, event_id);
CREATE INDEX IF NOT EXISTS registration_event_idx ON registration(event_id);
CREATE INDEX IF NOT EXISTS events_created_by_idx ON events(created_by);
CREATE INDEX IF NOT EXISTS events_event_date_idx ON events(event_date DESC);
`

// Migrate creates the portal tables if they do not exist.
func (d *DB) Migrate(ctx context.Context) error {
	if _, err := d.Client.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Healthy verifies the database answers within ctx.
func (d *DB) Healthy(ctx context.Context) bool {
	if d == nil || d.Client == nil {
		return false
	}
	return d.Client.PingContext(ctx) == nil
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	if d == nil || d.Client == nil {
		return nil
	}
	return d.Client.Close()
}
