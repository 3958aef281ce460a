// Package seed builds a small deterministic catalog for local runs.
package seed

import (
	"time"

	"seat-reservation/internal/data/entity"

	"github.com/google/uuid"
)

// Catalog is a theatre with its seats and shows.
type Catalog struct {
	Theatre *entity.Theatre
	Seats   []*entity.Seat
	Shows   []*entity.Show
}

var namespace = uuid.MustParse("9f1d2c4e-7a3b-4c5d-8e6f-0a1b2c3d4e5f")

func id(name string) uuid.UUID {
	return uuid.NewSHA1(namespace, []byte(name))
}

// Demo returns one theatre with rows A-E of ten seats and two shows starting
// one and three hours after now. Row E is recliners, D is premium.
func Demo(now time.Time) *Catalog {
	theatre := &entity.Theatre{
		BaseSimple: entity.BaseSimple{ID: id("theatre:grand"), CreatedAt: now},
		Name:       "Grand Cinema",
		City:       "Hyderabad",
	}

	var seats []*entity.Seat
	for _, row := range []string{"A", "B", "C", "D", "E"} {
		seatType := entity.SeatTypeRegular
		switch row {
		case "D":
			seatType = entity.SeatTypePremium
		case "E":
			seatType = entity.SeatTypeRecliner
		}
		for n := 1; n <= 10; n++ {
			seat := &entity.Seat{
				TheatreID:  theatre.ID,
				RowLabel:   row,
				SeatNumber: n,
				SeatType:   seatType,
				IsActive:   true,
			}
			seat.ID = id("seat:" + seat.Label())
			seat.CreatedAt = now
			seats = append(seats, seat)
		}
	}

	start := now.Truncate(time.Minute)
	shows := []*entity.Show{
		{
			BaseSimple:     entity.BaseSimple{ID: id("show:evening"), CreatedAt: now},
			TheatreID:      theatre.ID,
			MovieTitle:     "The Long Intermission",
			StartTime:      start.Add(1 * time.Hour),
			AvailableSeats: len(seats),
			Theatre:        theatre,
		},
		{
			BaseSimple:     entity.BaseSimple{ID: id("show:late"), CreatedAt: now},
			TheatreID:      theatre.ID,
			MovieTitle:     "Midnight Matinee",
			StartTime:      start.Add(3 * time.Hour),
			AvailableSeats: len(seats),
			Theatre:        theatre,
		},
	}

	return &Catalog{Theatre: theatre, Seats: seats, Shows: shows}
}
