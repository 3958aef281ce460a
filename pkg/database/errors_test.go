package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	dup := &pgconn.PgError{Code: "23505", ConstraintName: "uk_booking_seats_show_seat"}
	wrapped := fmt.Errorf("insert booking seat: %w", dup)

	assert.True(t, IsUniqueViolation(wrapped, ""))
	assert.True(t, IsUniqueViolation(wrapped, "uk_booking_seats_show_seat"))
	assert.False(t, IsUniqueViolation(wrapped, BookingReferenceUniqueConstraint))
	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: "23505", ConstraintName: BookingReferenceUniqueConstraint}, BookingReferenceUniqueConstraint))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}, ""))
	assert.False(t, IsUniqueViolation(errors.New("boom"), ""))
	assert.False(t, IsUniqueViolation(nil, ""))
}
