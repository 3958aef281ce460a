package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"seat-reservation/internal/data/entity"
	"seat-reservation/internal/data/memstore"
	"seat-reservation/internal/data/seed"
	"seat-reservation/internal/dto/request"
	"seat-reservation/internal/event"
	"seat-reservation/internal/notification"
	"seat-reservation/pkg/metrics"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []event.BookingConfirmed
	err    error
}

func (p *recordingPublisher) PublishBookingConfirmed(_ context.Context, ev event.BookingConfirmed) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) published() []event.BookingConfirmed {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]event.BookingConfirmed(nil), p.events...)
}

type recordingReminderSender struct {
	mu        sync.Mutex
	reminders []notification.Reminder
	err       error
}

func (s *recordingReminderSender) SendReminder(_ context.Context, r notification.Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.reminders = append(s.reminders, r)
	return nil
}

func (s *recordingReminderSender) sent() []notification.Reminder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]notification.Reminder(nil), s.reminders...)
}

type fixture struct {
	store     *memstore.Store
	catalog   *seed.Catalog
	show      *entity.Show
	clock     *fakeClock
	publisher *recordingPublisher
	reminders *recordingReminderSender
	metrics   *metrics.Metrics
	svc       *Service
}

var fixtureStart = time.Date(2026, time.March, 14, 18, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	t.Helper()

	clock := &fakeClock{now: fixtureStart}
	store := memstore.New(zap.NewNop())
	catalog := seed.Demo(clock.Now())
	store.SeedCatalog(catalog)

	f := &fixture{
		store:     store,
		catalog:   catalog,
		show:      catalog.Shows[0],
		clock:     clock,
		publisher: &recordingPublisher{},
		reminders: &recordingReminderSender{},
		metrics:   metrics.New(),
	}
	f.svc = NewService(store.Repository(), Dependencies{
		Publisher:          f.publisher,
		ReminderSender:     f.reminders,
		Metrics:            f.metrics,
		Clock:              clock.Now,
		DefaultHoldMinutes: 10,
		SweepInterval:      time.Minute,
	}, zap.NewNop())
	return f
}

// seats maps labels like "A1" to seat id strings.
func (f *fixture) seats(t *testing.T, labels ...string) []string {
	t.Helper()
	byLabel := make(map[string]string, len(f.catalog.Seats))
	for _, seat := range f.catalog.Seats {
		byLabel[seat.Label()] = seat.ID.String()
	}
	out := make([]string, len(labels))
	for i, label := range labels {
		id, ok := byLabel[label]
		require.True(t, ok, "unknown seat %s", label)
		out[i] = id
	}
	return out
}

func (f *fixture) hold(t *testing.T, userID string, minutes int, labels ...string) error {
	t.Helper()
	_, err := f.svc.Hold.HoldSeats(context.Background(), f.show.ID.String(), &request.HoldSeatsRequest{
		SeatIDs:     f.seats(t, labels...),
		HoldMinutes: &minutes,
		UserID:      userID,
	})
	return err
}

func (f *fixture) confirm(t *testing.T, userID string, labels ...string) error {
	t.Helper()
	_, err := f.svc.Booking.ConfirmBooking(context.Background(), &request.ConfirmBookingRequest{
		ShowID:  f.show.ID.String(),
		SeatIDs: f.seats(t, labels...),
		UserID:  userID,
	})
	return err
}

// row reads the committed inventory row of a seat, nil when never touched.
func (f *fixture) row(t *testing.T, label string) *entity.ShowSeat {
	t.Helper()
	seatID := uuid.MustParse(f.seats(t, label)[0])
	rows, err := f.store.FindShowSeats(context.Background(), f.show.ID)
	require.NoError(t, err)
	for _, row := range rows {
		if row.SeatID == seatID {
			return row
		}
	}
	return nil
}

func (f *fixture) status(t *testing.T, label string) entity.ShowSeatStatus {
	t.Helper()
	row := f.row(t, label)
	if row == nil {
		return entity.ShowSeatAvailable
	}
	return row.Status
}

func intPtr(n int) *int {
	return &n
}
