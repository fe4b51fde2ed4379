package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPool creates and pings a new pgx connection pool.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// Schema creates the dispatch tables. Statements are idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS agents (
	id         BIGINT PRIMARY KEY,
	name       TEXT NOT NULL DEFAULT '',
	approval   TEXT NOT NULL,
	capacity   INT NOT NULL CHECK (capacity >= 0),
	online     BOOLEAN NOT NULL DEFAULT false,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS orders (
	id                TEXT PRIMARY KEY,
	status            TEXT NOT NULL,
	assigned_agent_id BIGINT,
	customer_id       BIGINT NOT NULL DEFAULT 0,
	pharmacy_id       BIGINT NOT NULL DEFAULT 0,
	pickup_lat        DOUBLE PRECISION NOT NULL,
	pickup_lng        DOUBLE PRECISION NOT NULL,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
	CONSTRAINT orders_assignee CHECK ((assigned_agent_id IS NOT NULL) = (status IN ('assigned', 'in_progress')))
);
CREATE INDEX IF NOT EXISTS orders_status_idx ON orders (status);
CREATE INDEX IF NOT EXISTS orders_agent_idx ON orders (assigned_agent_id) WHERE assigned_agent_id IS NOT NULL;

CREATE TABLE IF NOT EXISTS notification_events (
	seq        BIGSERIAL PRIMARY KEY,
	id         UUID NOT NULL UNIQUE,
	target     TEXT NOT NULL,
	type       TEXT NOT NULL,
	payload    JSONB NOT NULL,
	delivered  BOOLEAN NOT NULL DEFAULT false,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS notification_events_pending_idx ON notification_events (target, seq) WHERE NOT delivered;
`

// EnsureSchema applies Schema.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	if _, err := db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
