package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// One statement per entry: pgx runs Exec over the extended protocol, which
// takes a single command at a time.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS prints (
		id                 UUID PRIMARY KEY,
		name               TEXT NOT NULL,
		url                TEXT,
		quantity_available INT  NOT NULL DEFAULT 0 CHECK (quantity_available >= 0),
		code               TEXT,
		created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at         TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id                UUID PRIMARY KEY,
		user_id           TEXT NOT NULL,
		print_id          UUID NOT NULL REFERENCES prints(id) ON DELETE CASCADE,
		quantity          INT  NOT NULL CHECK (quantity >= 1),
		description       TEXT,
		photos_link       TEXT,
		status            TEXT NOT NULL DEFAULT 'pending',
		created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
		status_updated_at TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS orders_user_id_idx  ON orders (user_id)`,
	`CREATE INDEX IF NOT EXISTS orders_print_id_idx ON orders (print_id)`,
	`CREATE TABLE IF NOT EXISTS app_settings (
		key        TEXT PRIMARY KEY,
		value      TEXT,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`INSERT INTO app_settings (key, value) VALUES
		('announcement_header', 'Please submit your orders by the end of the month!'),
		('how_to_use', 'Browse available prints, specify your requirements, and submit orders. Administrators will process your orders and update their status.')
	ON CONFLICT (key) DO NOTHING`,
}

// EnsureSchema creates the tables if they do not exist yet.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
