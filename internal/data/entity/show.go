package entity

import (
	"time"

	"github.com/google/uuid"
)

type Show struct {
	BaseSimple
	TheatreID      uuid.UUID `db:"theatre_id"`
	MovieTitle     string    `db:"movie_title"`
	StartTime      time.Time `db:"start_time"`
	AvailableSeats int       `db:"available_seats"` // advisory, display only

	Theatre *Theatre `db:"-"`
}
