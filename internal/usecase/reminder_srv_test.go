package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"seat-reservation/internal/dto/request"
	"seat-reservation/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func bookWithPhone(t *testing.T, f *fixture, user, phone string, labels ...string) string {
	t.Helper()
	require.NoError(t, f.hold(t, user, 5, labels...))
	resp, err := f.svc.Booking.ConfirmBooking(context.Background(), &request.ConfirmBookingRequest{
		ShowID:      f.show.ID.String(),
		SeatIDs:     f.seats(t, labels...),
		UserID:      user,
		PhoneNumber: phone,
	})
	require.NoError(t, err)
	return resp.BookingID
}

func newReminderScheduler(f *fixture) *ReminderScheduler {
	return NewReminderScheduler(f.store.Repository(), Dependencies{
		ReminderSender: f.reminders,
		Metrics:        f.metrics,
		Clock:          f.clock.Now,
		Reminder:       utils.ReminderConfig{Offset: time.Hour},
	}, zap.NewNop())
}

func TestReminderRunOnce_SendsOncePerBooking(t *testing.T) {
	f := newFixture(t)
	bookingID := bookWithPhone(t, f, "u1", "9876543210", "C1", "C2")
	bookWithPhone(t, f, "u2", "", "C3")

	scheduler := newReminderScheduler(f)

	sent, err := scheduler.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	reminders := f.reminders.sent()
	require.Len(t, reminders, 1)
	r := reminders[0]
	assert.Equal(t, bookingID, r.BookingID)
	assert.Equal(t, "9876543210", r.PhoneNumber)
	assert.Equal(t, "The Long Intermission", r.MovieTitle)
	assert.Equal(t, "Grand Cinema", r.TheatreName)
	assert.ElementsMatch(t, []string{"C1", "C2"}, r.SeatLabels)

	sent, err = scheduler.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Len(t, f.reminders.sent(), 1)

	detail, err := f.svc.Booking.GetBookingByID(context.Background(), bookingID)
	require.NoError(t, err)
	assert.NotNil(t, detail.ReminderSentAt)
}

func TestReminderRunOnce_ShowBeyondOffset(t *testing.T) {
	f := newFixture(t)
	bookWithPhone(t, f, "u1", "9876543210", "C1")

	scheduler := NewReminderScheduler(f.store.Repository(), Dependencies{
		ReminderSender: f.reminders,
		Clock:          f.clock.Now,
		Reminder:       utils.ReminderConfig{Offset: 30 * time.Minute},
	}, zap.NewNop())

	sent, err := scheduler.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sent, "show starts in an hour")

	f.clock.Advance(30 * time.Minute)
	sent, err = scheduler.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
}

func TestReminderRunOnce_LateTickCatchesUp(t *testing.T) {
	f := newFixture(t)
	bookWithPhone(t, f, "u1", "9876543210", "C1")

	// the scan that should have run at the offset mark never happened
	f.clock.Advance(10 * time.Minute)

	sent, err := newReminderScheduler(f).RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
}

func TestReminderRunOnce_StartedShowIsSkipped(t *testing.T) {
	f := newFixture(t)
	bookWithPhone(t, f, "u1", "9876543210", "C1")
	f.clock.Advance(61 * time.Minute)

	sent, err := newReminderScheduler(f).RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sent)
}

func TestReminderRunOnce_SendErrorIsNotRetried(t *testing.T) {
	f := newFixture(t)
	bookWithPhone(t, f, "u1", "9876543210", "C1")
	f.reminders.err = errors.New("twilio down")

	scheduler := newReminderScheduler(f)
	sent, err := scheduler.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sent)

	f.reminders.err = nil
	sent, err = scheduler.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sent)
}

func TestReminderScheduler_DisabledWithoutSender(t *testing.T) {
	f := newFixture(t)
	scheduler := NewReminderScheduler(f.store.Repository(), Dependencies{Clock: f.clock.Now}, zap.NewNop())

	assert.False(t, scheduler.Enabled())
	require.NoError(t, scheduler.Run(context.Background()))
}
