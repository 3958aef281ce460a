// Package event carries the booking confirmed event from the confirmation
// engine to the notification side, in process or through RabbitMQ.
package event

import (
	"context"
	"sort"
	"strconv"
	"time"
)

// BookingConfirmedQueue is the durable queue the event is published to.
const BookingConfirmedQueue = "booking.confirmed"

type SeatInfo struct {
	SeatID     string `json:"seatId"`
	RowLabel   string `json:"rowLabel"`
	SeatNumber int    `json:"seatNumber"`
	SeatType   string `json:"seatType"`
}

// Label is the printable seat name, e.g. A7. Falls back to the id when
// the catalog lookup did not provide a row.
func (s SeatInfo) Label() string {
	if s.RowLabel == "" {
		return s.SeatID
	}
	return s.RowLabel + strconv.Itoa(s.SeatNumber)
}

type BookingConfirmed struct {
	BookingID     string     `json:"bookingId"`
	Reference     string     `json:"reference"`
	ShowID        string     `json:"showId"`
	UserID        string     `json:"userId"`
	Email         string     `json:"email,omitempty"`
	PhoneNumber   string     `json:"phoneNumber,omitempty"`
	MovieTitle    string     `json:"movieTitle"`
	TheatreName   string     `json:"theatreName"`
	TheatreCity   string     `json:"theatreCity"`
	ShowStartTime time.Time  `json:"showStartTime"`
	Seats         []SeatInfo `json:"seats"`
	ConfirmedAt   time.Time  `json:"confirmedAt"`
	CorrelationID string     `json:"correlationId,omitempty"`
}

// SeatLabels returns the sorted printable seat names.
func (e BookingConfirmed) SeatLabels() []string {
	labels := make([]string, 0, len(e.Seats))
	for _, s := range e.Seats {
		labels = append(labels, s.Label())
	}
	sort.Strings(labels)
	return labels
}

// Publisher hands the event to whoever delivers notifications. Callers treat
// a returned error as log-only.
type Publisher interface {
	PublishBookingConfirmed(ctx context.Context, ev BookingConfirmed) error
}

// Handler consumes a booking confirmed event.
type Handler func(ctx context.Context, ev BookingConfirmed) error
