package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"
)

// migrations is an ordered list of idempotent SQL statements.
// Each statement runs inside its own transaction.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id         TEXT        PRIMARY KEY,
		email      TEXT        NOT NULL UNIQUE,
		name       TEXT        NOT NULL DEFAULT '',
		phone      TEXT        NOT NULL DEFAULT '',
		role       TEXT        NOT NULL DEFAULT 'GUEST',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS properties (
		id            TEXT           PRIMARY KEY,
		host_id       TEXT           NOT NULL REFERENCES users(id),
		title         TEXT           NOT NULL,
		description   TEXT           NOT NULL DEFAULT '',
		property_type TEXT           NOT NULL,
		address       TEXT           NOT NULL DEFAULT '',
		city          TEXT           NOT NULL DEFAULT '',
		country       TEXT           NOT NULL DEFAULT '',
		latitude      DOUBLE PRECISION,
		longitude     DOUBLE PRECISION,
		base_price    NUMERIC(12, 2) NOT NULL CHECK (base_price > 0),
		currency      CHAR(3)        NOT NULL DEFAULT 'USD',
		max_guests    INTEGER        NOT NULL CHECK (max_guests >= 1),
		bedrooms      INTEGER        NOT NULL DEFAULT 0,
		bathrooms     INTEGER        NOT NULL DEFAULT 0,
		amenities     TEXT[]         NOT NULL DEFAULT '{}',
		images        TEXT[]         NOT NULL DEFAULT '{}',
		status        TEXT           NOT NULL DEFAULT 'ACTIVE',
		created_at    TIMESTAMPTZ    NOT NULL DEFAULT NOW(),
		updated_at    TIMESTAMPTZ    NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_properties_host ON properties(host_id)`,
	`CREATE INDEX IF NOT EXISTS idx_properties_city ON properties(LOWER(city))`,
	`CREATE TABLE IF NOT EXISTS property_calendar (
		property_id TEXT           NOT NULL REFERENCES properties(id) ON DELETE CASCADE,
		date        DATE           NOT NULL,
		price       NUMERIC(12, 2) CHECK (price IS NULL OR price > 0),
		available   BOOLEAN        NOT NULL DEFAULT TRUE,
		note        TEXT           NOT NULL DEFAULT '',
		PRIMARY KEY (property_id, date)
	)`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id                  TEXT           PRIMARY KEY,
		property_id         TEXT           NOT NULL REFERENCES properties(id),
		guest_id            TEXT           NOT NULL REFERENCES users(id),
		host_id             TEXT           NOT NULL REFERENCES users(id),
		check_in            DATE           NOT NULL,
		check_out           DATE           NOT NULL,
		guests              INTEGER        NOT NULL CHECK (guests >= 1),
		total_price         NUMERIC(12, 2) NOT NULL,
		currency            CHAR(3)        NOT NULL,
		status              TEXT           NOT NULL DEFAULT 'PENDING',
		special_requests    TEXT           NOT NULL DEFAULT '',
		cancellation_reason TEXT           NOT NULL DEFAULT '',
		created_at          TIMESTAMPTZ    NOT NULL DEFAULT NOW(),
		updated_at          TIMESTAMPTZ    NOT NULL DEFAULT NOW(),
		CHECK (check_out > check_in)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_property_dates ON bookings(property_id, check_in, check_out)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_guest ON bookings(guest_id)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_host ON bookings(host_id)`,
	`CREATE TABLE IF NOT EXISTS payments (
		id              TEXT           PRIMARY KEY,
		booking_id      TEXT           NOT NULL REFERENCES bookings(id),
		user_id         TEXT           NOT NULL REFERENCES users(id),
		amount          NUMERIC(12, 2) NOT NULL CHECK (amount > 0),
		refunded_amount NUMERIC(12, 2) NOT NULL DEFAULT 0,
		currency        CHAR(3)        NOT NULL,
		method          TEXT           NOT NULL,
		status          TEXT           NOT NULL DEFAULT 'PENDING',
		provider        TEXT           NOT NULL DEFAULT '',
		provider_ref    TEXT           NOT NULL DEFAULT '',
		failure_reason  TEXT           NOT NULL DEFAULT '',
		created_at      TIMESTAMPTZ    NOT NULL DEFAULT NOW(),
		updated_at      TIMESTAMPTZ    NOT NULL DEFAULT NOW(),
		CHECK (refunded_amount <= amount)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_payments_booking ON payments(booking_id)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id         TEXT        PRIMARY KEY,
		user_id    TEXT        NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		type       TEXT        NOT NULL,
		title      TEXT        NOT NULL,
		message    TEXT        NOT NULL,
		data       JSONB       NOT NULL DEFAULT '{}',
		is_read    BOOLEAN     NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		read_at    TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_user_unread ON notifications(user_id, is_read)`,
}

// Migrate applies every migration in order.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, m := range migrations {
		if err := applyMigration(ctx, db, m); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	log.Info().Int("count", len(migrations)).Msg("Database migrations applied")
	return nil
}

func applyMigration(ctx context.Context, db *sql.DB, stmt string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, stmt); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
