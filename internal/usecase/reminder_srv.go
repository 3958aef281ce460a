package usecase

import (
	"context"
	"fmt"
	"time"

	"seat-reservation/internal/data/entity"
	"seat-reservation/internal/data/repository"
	"seat-reservation/internal/notification"
	"seat-reservation/pkg/metrics"

	"go.uber.org/zap"
)

const (
	DefaultReminderOffset   = 30 * time.Minute
	DefaultReminderInterval = time.Minute
)

// ReminderScheduler calls booked users shortly before their show starts.
// A reminder is claimed in the store before it is sent so that it goes out
// at most once across instances.
type ReminderScheduler struct {
	catalog  repository.CatalogReader
	bookings repository.BookingRepository
	sender   notification.ReminderSender
	offset   time.Duration
	interval time.Duration
	metrics  *metrics.Metrics
	now      func() time.Time
	log      *zap.Logger
}

func NewReminderScheduler(repo *repository.Repository, deps Dependencies, log *zap.Logger) *ReminderScheduler {
	r := &ReminderScheduler{
		catalog:  repo.Catalog,
		bookings: repo.Booking,
		sender:   deps.ReminderSender,
		offset:   deps.Reminder.Offset,
		interval: deps.Reminder.Interval,
		metrics:  deps.Metrics,
		now:      deps.clock(),
		log:      log.With(zap.String("service", "reminder")),
	}
	if r.offset <= 0 {
		r.offset = DefaultReminderOffset
	}
	if r.interval <= 0 {
		r.interval = DefaultReminderInterval
	}
	return r
}

// Enabled reports whether a sender is configured.
func (r *ReminderScheduler) Enabled() bool {
	return r.sender != nil
}

func (r *ReminderScheduler) Run(ctx context.Context) error {
	if !r.Enabled() {
		r.log.Info("Reminder scheduler disabled, no sender configured")
		return nil
	}
	r.log.Info("Reminder scheduler started",
		zap.Duration("offset", r.offset),
		zap.Duration("interval", r.interval),
	)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info("Reminder scheduler stopped")
			return nil
		case <-ticker.C:
			if _, err := r.RunOnce(ctx); err != nil && ctx.Err() == nil {
				r.log.Error("Reminder run failed", zap.Error(err))
			}
		}
	}
}

// RunOnce sends reminders for every unreminded booking whose show starts in
// [now, now+offset] and returns how many were sent. A late or skipped tick is
// caught up by the next one; the claim keeps each reminder to a single send.
func (r *ReminderScheduler) RunOnce(ctx context.Context) (int, error) {
	if !r.Enabled() {
		return 0, nil
	}

	now := r.now()
	due, err := r.bookings.FindDueReminders(ctx, now, now.Add(r.offset))
	if err != nil {
		return 0, fmt.Errorf("find due reminders: %w", err)
	}

	sent := 0
	for _, booking := range due {
		if ctx.Err() != nil {
			return sent, ctx.Err()
		}
		ok, err := r.remind(ctx, booking)
		if err != nil {
			r.log.Error("Failed to send reminder",
				zap.Error(err),
				zap.String("booking_id", booking.ID.String()),
			)
			continue
		}
		if ok {
			sent++
		}
	}
	return sent, nil
}

func (r *ReminderScheduler) remind(ctx context.Context, booking *entity.Booking) (bool, error) {
	if booking.PhoneNumber == nil || *booking.PhoneNumber == "" {
		return false, nil
	}

	claimed, err := r.bookings.MarkReminderSent(ctx, booking.ID, r.now())
	if err != nil {
		return false, fmt.Errorf("mark reminder sent: %w", err)
	}
	if !claimed {
		return false, nil
	}

	show, err := r.catalog.FindShowByID(ctx, booking.ShowID)
	if err != nil {
		return false, fmt.Errorf("find show: %w", err)
	}
	if show == nil {
		return false, fmt.Errorf("show %s %w", booking.ShowID, ErrNotFound)
	}

	reminder := notification.Reminder{
		BookingID:   booking.ID.String(),
		Reference:   booking.Reference,
		PhoneNumber: *booking.PhoneNumber,
		MovieTitle:  show.MovieTitle,
		StartTime:   show.StartTime,
	}
	if show.Theatre != nil {
		reminder.TheatreName = show.Theatre.Name
		reminder.TheatreCity = show.Theatre.City
	}

	seats, err := r.catalog.FindSeatsByIDs(ctx, booking.SeatIDs)
	if err != nil {
		r.log.Warn("Failed to load seat labels", zap.Error(err), zap.String("booking_id", booking.ID.String()))
	}
	for _, seat := range seats {
		reminder.SeatLabels = append(reminder.SeatLabels, seat.Label())
	}

	if err := r.sender.SendReminder(ctx, reminder); err != nil {
		return false, fmt.Errorf("send reminder: %w", err)
	}

	r.metrics.IncReminderSent()
	r.log.Info("Reminder sent",
		zap.String("booking_id", reminder.BookingID),
		zap.String("reference", reminder.Reference),
	)
	return true, nil
}
