package notification

import (
	"context"
	"strings"

	"seat-reservation/internal/event"

	"go.uber.org/zap"
)

// ConsoleNotifier writes the notification to the log. Always available.
type ConsoleNotifier struct {
	log *zap.Logger
}

func NewConsoleNotifier(log *zap.Logger) *ConsoleNotifier {
	return &ConsoleNotifier{log: log.With(zap.String("notifier", "console"))}
}

func (n *ConsoleNotifier) Name() string { return "console" }

func (n *ConsoleNotifier) NotifyBookingConfirmed(_ context.Context, ev event.BookingConfirmed) error {
	n.log.Info("Booking confirmed",
		zap.String("booking_id", ev.BookingID),
		zap.String("reference", ev.Reference),
		zap.String("user_id", ev.UserID),
		zap.String("movie", ev.MovieTitle),
		zap.Time("show_start", ev.ShowStartTime),
		zap.String("seats", strings.Join(ev.SeatLabels(), ",")),
	)
	return nil
}

func (n *ConsoleNotifier) SendReminder(_ context.Context, r Reminder) error {
	n.log.Info("Show reminder",
		zap.String("booking_id", r.BookingID),
		zap.String("phone", r.PhoneNumber),
		zap.String("message", reminderText(r)),
	)
	return nil
}
