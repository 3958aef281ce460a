package database

import (
	"context"
	"fmt"
)

// BookingSeatUniqueConstraint guards against two bookings owning the same show seat.
const BookingSeatUniqueConstraint = "uk_booking_seats_show_seat"

// BookingReferenceUniqueConstraint is the name Postgres gives the UNIQUE
// column constraint on bookings.reference.
const BookingReferenceUniqueConstraint = "bookings_reference_key"

var schemaStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS pgcrypto`,

	`CREATE TABLE IF NOT EXISTS theatres (
		id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name       VARCHAR(255) NOT NULL,
		city       VARCHAR(255) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS seats (
		id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		theatre_id  UUID NOT NULL REFERENCES theatres(id),
		row_label   VARCHAR(10) NOT NULL,
		seat_number INT NOT NULL,
		seat_type   VARCHAR(20) NOT NULL DEFAULT 'REGULAR',
		is_active   BOOLEAN NOT NULL DEFAULT TRUE,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT uk_seats_theatre_row_number UNIQUE (theatre_id, row_label, seat_number)
	)`,

	`CREATE TABLE IF NOT EXISTS shows (
		id              UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		theatre_id      UUID NOT NULL REFERENCES theatres(id),
		movie_title     VARCHAR(255) NOT NULL DEFAULT '',
		start_time      TIMESTAMPTZ NOT NULL,
		available_seats INT NOT NULL DEFAULT 0,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS show_seats (
		id              UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		show_id         UUID NOT NULL REFERENCES shows(id),
		seat_id         UUID NOT NULL REFERENCES seats(id),
		status          VARCHAR(20) NOT NULL DEFAULT 'AVAILABLE',
		held_by_user_id VARCHAR(255),
		hold_expires_at TIMESTAMPTZ,
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT uk_show_seats_show_seat UNIQUE (show_id, seat_id)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_show_seats_held_expiry
		ON show_seats (hold_expires_at) WHERE status = 'HELD'`,

	`CREATE TABLE IF NOT EXISTS bookings (
		id               UUID PRIMARY KEY,
		reference        VARCHAR(40) NOT NULL UNIQUE,
		show_id          UUID NOT NULL REFERENCES shows(id),
		user_id          VARCHAR(255) NOT NULL,
		email            VARCHAR(255),
		phone_number     VARCHAR(32),
		status           VARCHAR(20) NOT NULL,
		seats_booked     INT NOT NULL,
		reminder_sent_at TIMESTAMPTZ,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS booking_seats (
		id         UUID PRIMARY KEY,
		booking_id UUID NOT NULL REFERENCES bookings(id),
		show_id    UUID NOT NULL REFERENCES shows(id),
		seat_id    UUID NOT NULL REFERENCES seats(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT ` + BookingSeatUniqueConstraint + ` UNIQUE (show_id, seat_id)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_bookings_reminder_pending
		ON bookings (show_id) WHERE reminder_sent_at IS NULL`,
}

// MigrateSchema creates the tables when missing. Safe to run on every start.
func MigrateSchema(ctx context.Context, db Querier) error {
	for i, stmt := range schemaStatements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i, err)
		}
	}
	return nil
}
