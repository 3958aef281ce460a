// Package notification delivers booking confirmations and show reminders
// through email, SMS, voice calls and the log.
package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"seat-reservation/internal/event"
)

// ErrSkipped is returned when a notifier lacks the contact it needs.
var ErrSkipped = errors.New("notification skipped")

// Notifier sends the booking confirmation over one channel.
type Notifier interface {
	Name() string
	NotifyBookingConfirmed(ctx context.Context, ev event.BookingConfirmed) error
}

// Reminder is a show reminder for one booking.
type Reminder struct {
	BookingID   string
	Reference   string
	PhoneNumber string
	MovieTitle  string
	TheatreName string
	TheatreCity string
	StartTime   time.Time
	SeatLabels  []string
}

// ReminderSender delivers show reminders.
type ReminderSender interface {
	SendReminder(ctx context.Context, r Reminder) error
}

const showTimeLayout = "Mon 02 Jan 2006 15:04 MST"

func confirmationText(ev event.BookingConfirmed) string {
	return fmt.Sprintf(
		"Booking confirmed! Ref: %s\nMovie: %s\nTheatre: %s, %s\nShow: %s\nSeats: %s",
		ev.Reference,
		ev.MovieTitle,
		ev.TheatreName,
		ev.TheatreCity,
		ev.ShowStartTime.Format(showTimeLayout),
		strings.Join(ev.SeatLabels(), ", "),
	)
}

func reminderText(r Reminder) string {
	return fmt.Sprintf(
		"Hello, this is a reminder for booking %s. %s starts at %s, %s at %s. Your seats are %s. Enjoy the show!",
		r.Reference,
		r.MovieTitle,
		r.TheatreName,
		r.TheatreCity,
		r.StartTime.Format("15:04"),
		strings.Join(r.SeatLabels, ", "),
	)
}
