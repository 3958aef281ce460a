package entity

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
)

type Booking struct {
	BaseSimple
	Reference      string        `db:"reference"` // BOOK-YYYYMMDD-HHMMSS-XXXXXXXX
	ShowID         uuid.UUID     `db:"show_id"`
	UserID         string        `db:"user_id"`
	Email          *string       `db:"email"`
	PhoneNumber    *string       `db:"phone_number"`
	Status         BookingStatus `db:"status"`
	SeatsBooked    int           `db:"seats_booked"`
	ReminderSentAt *time.Time    `db:"reminder_sent_at"`

	SeatIDs []uuid.UUID `db:"-"`
}
