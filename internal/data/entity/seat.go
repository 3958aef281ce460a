package entity

import (
	"strconv"

	"github.com/google/uuid"
)

type SeatType string

const (
	SeatTypeRegular  SeatType = "REGULAR"
	SeatTypePremium  SeatType = "PREMIUM"
	SeatTypeRecliner SeatType = "RECLINER"
)

// Seat is a physical seat of a theatre. Only IsActive ever changes.
type Seat struct {
	BaseSimple
	TheatreID  uuid.UUID `db:"theatre_id"`
	RowLabel   string    `db:"row_label"`   // A, B, C, etc.
	SeatNumber int       `db:"seat_number"` // 1, 2, 3, etc.
	SeatType   SeatType  `db:"seat_type"`
	IsActive   bool      `db:"is_active"`
}

// Label is the printable seat name, e.g. A7.
func (s *Seat) Label() string {
	return s.RowLabel + strconv.Itoa(s.SeatNumber)
}
