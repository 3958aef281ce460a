package entity

import "github.com/google/uuid"

type BookingSeat struct {
	BaseSimple
	BookingID uuid.UUID `db:"booking_id"`
	ShowID    uuid.UUID `db:"show_id"`
	SeatID    uuid.UUID `db:"seat_id"`
}
