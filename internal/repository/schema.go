package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS workflow_events (
	id          BIGSERIAL PRIMARY KEY,
	event_id    TEXT NOT NULL UNIQUE,
	type        TEXT NOT NULL,
	order_id    TEXT NOT NULL,
	driver_id   TEXT NOT NULL DEFAULT '',
	product_id  TEXT NOT NULL DEFAULT '',
	collected   BOOLEAN,
	status      TEXT NOT NULL DEFAULT '',
	outcome     TEXT NOT NULL,
	error_kind  TEXT NOT NULL DEFAULT '',
	occurred_at TIMESTAMPTZ NOT NULL,
	recorded_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS workflow_events_order_idx ON workflow_events (order_id, occurred_at);

CREATE TABLE IF NOT EXISTS order_states (
	order_id   TEXT PRIMARY KEY,
	driver_id  TEXT NOT NULL DEFAULT '',
	status     TEXT NOT NULL,
	last_event TEXT NOT NULL,
	events     INTEGER NOT NULL DEFAULT 0,
	failures   INTEGER NOT NULL DEFAULT 0,
	updated_at TIMESTAMPTZ NOT NULL
);
`

// Migrate creates the journal tables when they are missing.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate journal schema: %w", err)
	}
	return nil
}
