package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"seat-reservation/internal/data/entity"
	"seat-reservation/internal/data/repository"
	"seat-reservation/internal/dto/request"
	"seat-reservation/internal/event"
	"seat-reservation/pkg/utils"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestConfirmBooking_RoundTrip(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.hold(t, "u1", 5, "A1", "A2"))
	f.clock.Advance(time.Minute)

	ctx := utils.SetCorrelationIDContext(context.Background(), "corr-1")
	resp, err := f.svc.Booking.ConfirmBooking(ctx, &request.ConfirmBookingRequest{
		ShowID:      f.show.ID.String(),
		SeatIDs:     f.seats(t, "A2", "A1"),
		UserID:      "u1",
		Email:       " u1@example.com ",
		PhoneNumber: "9876543210",
	})
	require.NoError(t, err)

	assert.Equal(t, entity.BookingStatusConfirmed, resp.Status)
	assert.Equal(t, f.show.ID.String(), resp.ShowID)
	assert.ElementsMatch(t, f.seats(t, "A1", "A2"), resp.SeatIDs)
	assert.True(t, strings.HasPrefix(resp.Reference, "BOOK-20260314-180100-"), resp.Reference)

	for _, label := range []string{"A1", "A2"} {
		row := f.row(t, label)
		assert.Equal(t, entity.ShowSeatBooked, row.Status)
		assert.Nil(t, row.HeldByUserID)
		assert.Nil(t, row.HoldExpiresAt)
	}

	show, err := f.store.FindShowByID(context.Background(), f.show.ID)
	require.NoError(t, err)
	assert.Equal(t, 48, show.AvailableSeats)

	detail, err := f.svc.Booking.GetBookingByID(context.Background(), resp.BookingID)
	require.NoError(t, err)
	assert.Equal(t, resp.Reference, detail.Reference)
	assert.Equal(t, 2, detail.SeatsBooked)
	require.NotNil(t, detail.Email)
	assert.Equal(t, "u1@example.com", *detail.Email)
	assert.ElementsMatch(t, resp.SeatIDs, detail.SeatIDs)

	events := f.publisher.published()
	require.Len(t, events, 1)
	ev := events[0]
	assert.Equal(t, resp.BookingID, ev.BookingID)
	assert.Equal(t, "Grand Cinema", ev.TheatreName)
	assert.Equal(t, "9876543210", ev.PhoneNumber)
	assert.Equal(t, "corr-1", ev.CorrelationID)
	assert.Equal(t, []string{"A1", "A2"}, ev.SeatLabels())
}

func TestConfirmBooking_RequiresOwnActiveHold(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, f *fixture)
	}{
		{"never held", func(t *testing.T, f *fixture) {}},
		{"held by someone else", func(t *testing.T, f *fixture) {
			require.NoError(t, f.hold(t, "u2", 5, "A1", "A2"))
		}},
		{"partly held", func(t *testing.T, f *fixture) {
			require.NoError(t, f.hold(t, "u1", 5, "A1"))
		}},
		{"hold expired", func(t *testing.T, f *fixture) {
			require.NoError(t, f.hold(t, "u1", 5, "A1", "A2"))
			f.clock.Advance(5 * time.Minute)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setup(t, f)

			err := f.confirm(t, "u1", "A1", "A2")
			require.ErrorIs(t, err, ErrNoValidHold)

			assert.NotEqual(t, entity.ShowSeatBooked, f.status(t, "A1"))
			assert.NotEqual(t, entity.ShowSeatBooked, f.status(t, "A2"))
			assert.Empty(t, f.publisher.published())
		})
	}
}

func TestConfirmBooking_RejectsBadInput(t *testing.T) {
	f := newFixture(t)
	a1 := f.seats(t, "A1")

	tests := []struct {
		name   string
		req    request.ConfirmBookingRequest
		target error
	}{
		{"missing show", request.ConfirmBookingRequest{SeatIDs: a1, UserID: "u1"}, ErrValidation},
		{"bad email", request.ConfirmBookingRequest{ShowID: f.show.ID.String(), SeatIDs: a1, UserID: "u1", Email: "not-an-email"}, ErrValidation},
		{"blank user", request.ConfirmBookingRequest{ShowID: f.show.ID.String(), SeatIDs: a1}, ErrValidation},
		{"unknown show", request.ConfirmBookingRequest{ShowID: uuid.NewString(), SeatIDs: a1, UserID: "u1"}, ErrNotFound},
		{"foreign seat", request.ConfirmBookingRequest{ShowID: f.show.ID.String(), SeatIDs: []string{uuid.NewString()}, UserID: "u1"}, ErrInvalidSeats},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			_, err := f.svc.Booking.ConfirmBooking(context.Background(), &req)
			require.ErrorIs(t, err, tt.target)
		})
	}
}

func TestBookedIsPermanent(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.hold(t, "u1", 5, "B1"))
	require.NoError(t, f.confirm(t, "u1", "B1"))

	require.ErrorIs(t, f.hold(t, "u2", 5, "B1"), ErrSeatConflict)
	require.ErrorIs(t, f.hold(t, "u1", 5, "B1"), ErrSeatConflict)
	require.ErrorIs(t, f.confirm(t, "u1", "B1"), ErrNoValidHold)

	_, err := f.svc.Hold.ReleaseSeats(context.Background(), f.show.ID.String(), &request.ReleaseSeatsRequest{
		SeatIDs: f.seats(t, "B1"),
		UserID:  "u1",
	})
	require.ErrorIs(t, err, ErrSeatConflict)

	f.clock.Advance(time.Hour)
	_, err = f.svc.Sweeper.SweepOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, entity.ShowSeatBooked, f.status(t, "B1"))
}

// Two users, three seats: the first confirms, the second keeps what is left.
func TestHoldConfirmScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.svc.Hold.HoldSeats(ctx, f.show.ID.String(), &request.HoldSeatsRequest{
		SeatIDs:     f.seats(t, "A1", "A2"),
		HoldMinutes: intPtr(5),
		UserID:      "U1",
	})
	require.NoError(t, err)
	for _, seat := range resp.Seats {
		assert.InDelta(t, 300, seat.RemainingSeconds, 1)
	}

	err = f.hold(t, "U2", 5, "A2", "A3")
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, f.seats(t, "A2"), conflict.SeatIDStrings())

	require.NoError(t, f.confirm(t, "U1", "A1", "A2"))
	assert.Equal(t, entity.ShowSeatBooked, f.status(t, "A1"))
	assert.Equal(t, entity.ShowSeatBooked, f.status(t, "A2"))

	err = f.hold(t, "U2", 5, "A2", "A3")
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, f.seats(t, "A2"), conflict.SeatIDStrings())

	require.NoError(t, f.hold(t, "U2", 5, "A3"))
	assert.Equal(t, entity.ShowSeatHeld, f.status(t, "A3"))
}

func TestConfirmBooking_PublishFailureDoesNotFailBooking(t *testing.T) {
	f := newFixture(t)
	f.publisher.err = errors.New("broker down")
	require.NoError(t, f.hold(t, "u1", 5, "E1"))

	require.NoError(t, f.confirm(t, "u1", "E1"))
	assert.Equal(t, entity.ShowSeatBooked, f.status(t, "E1"))
	assert.Len(t, f.publisher.published(), 1)

	expected := `
# HELP seat_reservation_event_publish_failures_total Booking confirmed events that could not be published.
# TYPE seat_reservation_event_publish_failures_total counter
seat_reservation_event_publish_failures_total 1
`
	require.NoError(t, testutil.GatherAndCompare(f.metrics.Registry, strings.NewReader(expected),
		"seat_reservation_event_publish_failures_total"))
}

func TestConfirmBooking_CancelledContextAfterCommitStillPublishes(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.hold(t, "u1", 5, "E2"))

	ctx, cancel := context.WithCancel(context.Background())
	publisher := &cancellingPublisher{cancel: cancel, next: f.publisher}
	f.svc = NewService(f.store.Repository(), Dependencies{
		Publisher: publisher,
		Clock:     f.clock.Now,
	}, zap.NewNop())

	_, err := f.svc.Booking.ConfirmBooking(ctx, &request.ConfirmBookingRequest{
		ShowID:  f.show.ID.String(),
		SeatIDs: f.seats(t, "E2"),
		UserID:  "u1",
	})
	require.NoError(t, err)
	assert.NoError(t, publisher.ctxErr)
}

// cancellingPublisher cancels the request context before delivering.
type cancellingPublisher struct {
	cancel context.CancelFunc
	next   *recordingPublisher
	ctxErr error
}

func (p *cancellingPublisher) PublishBookingConfirmed(ctx context.Context, ev event.BookingConfirmed) error {
	p.cancel()
	p.ctxErr = ctx.Err()
	return p.next.PublishBookingConfirmed(ctx, ev)
}

func TestGetBookingByID(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Booking.GetBookingByID(context.Background(), "nope")
	require.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.Booking.GetBookingByID(context.Background(), uuid.NewString())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestConfirmBooking_DuplicateBookingSeatRollsBack(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.hold(t, "u1", 5, "D4", "D5"))

	// a booking row that bypassed the inventory, e.g. a stale writer
	d5 := uuid.MustParse(f.seats(t, "D5")[0])
	err := f.store.WithinTx(context.Background(), func(ctx context.Context, tx repository.InventoryTx) error {
		stale := &entity.Booking{BaseSimple: entity.BaseSimple{ID: uuid.New()}, ShowID: f.show.ID, UserID: "ghost", Status: entity.BookingStatusConfirmed, SeatsBooked: 1}
		return tx.InsertBooking(ctx, stale, []*entity.BookingSeat{{BookingID: stale.ID, ShowID: f.show.ID, SeatID: d5}})
	})
	require.NoError(t, err)

	err = f.confirm(t, "u1", "D4", "D5")
	require.ErrorIs(t, err, ErrAlreadyBooked)

	assert.Equal(t, entity.ShowSeatHeld, f.status(t, "D4"))
	assert.Equal(t, entity.ShowSeatHeld, f.status(t, "D5"))
	assert.Empty(t, f.publisher.published())

	show, err := f.store.FindShowByID(context.Background(), f.show.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, show.AvailableSeats)
}

func TestConfirmBooking_RetriesOnReferenceCollision(t *testing.T) {
	f := newFixture(t)
	svc := f.svc.Booking.(*bookingService)
	calls := 0
	svc.reference = func(time.Time) string {
		calls++
		if calls <= 2 {
			return "BOOK-TAKEN"
		}
		return "BOOK-FRESH"
	}

	require.NoError(t, f.hold(t, "u1", 5, "A1"))
	require.NoError(t, f.confirm(t, "u1", "A1"))

	require.NoError(t, f.hold(t, "u2", 5, "A2"))
	resp, err := f.svc.Booking.ConfirmBooking(context.Background(), &request.ConfirmBookingRequest{
		ShowID:  f.show.ID.String(),
		SeatIDs: f.seats(t, "A2"),
		UserID:  "u2",
	})
	require.NoError(t, err)
	assert.Equal(t, "BOOK-FRESH", resp.Reference)
	assert.Equal(t, 3, calls)
	assert.Equal(t, entity.ShowSeatBooked, f.status(t, "A2"))

	show, err := f.store.FindShowByID(context.Background(), f.show.ID)
	require.NoError(t, err)
	assert.Equal(t, 48, show.AvailableSeats)
	assert.Len(t, f.publisher.published(), 2)
}

func TestConfirmBooking_ReferenceCollisionsExhausted(t *testing.T) {
	f := newFixture(t)
	f.svc.Booking.(*bookingService).reference = func(time.Time) string { return "BOOK-TAKEN" }

	require.NoError(t, f.hold(t, "u1", 5, "A1"))
	require.NoError(t, f.confirm(t, "u1", "A1"))

	require.NoError(t, f.hold(t, "u2", 5, "A2"))
	err := f.confirm(t, "u2", "A2")
	require.ErrorIs(t, err, repository.ErrDuplicateReference)
	assert.NotErrorIs(t, err, ErrAlreadyBooked)

	row := f.row(t, "A2")
	assert.Equal(t, entity.ShowSeatHeld, row.Status, "failed confirm keeps the hold")
	show, err := f.store.FindShowByID(context.Background(), f.show.ID)
	require.NoError(t, err)
	assert.Equal(t, 49, show.AvailableSeats)
}

func TestConfirmBooking_BurstGetsDistinctReferences(t *testing.T) {
	f := newFixture(t)
	labels := []string{"A1", "A2", "A3", "A4", "A5", "A6", "A7", "A8", "A9", "A10"}
	for i, label := range labels {
		require.NoError(t, f.hold(t, fmt.Sprintf("u%d", i), 5, label))
	}

	refs := make(map[string]bool, len(labels))
	for i, label := range labels {
		resp, err := f.svc.Booking.ConfirmBooking(context.Background(), &request.ConfirmBookingRequest{
			ShowID:  f.show.ID.String(),
			SeatIDs: f.seats(t, label),
			UserID:  fmt.Sprintf("u%d", i),
		})
		require.NoError(t, err)
		assert.False(t, refs[resp.Reference], "duplicate reference %s", resp.Reference)
		refs[resp.Reference] = true
	}
}

// stalledPublisher never returns until its context ends.
type stalledPublisher struct{}

func (stalledPublisher) PublishBookingConfirmed(ctx context.Context, _ event.BookingConfirmed) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestConfirmBooking_UnreachableBrokerDoesNotDelayResponse(t *testing.T) {
	f := newFixture(t)
	async := event.NewAsyncPublisher(stalledPublisher{}, 16, f.metrics, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = async.Run(ctx) }()

	f.svc = NewService(f.store.Repository(), Dependencies{
		Publisher:          async,
		Metrics:            f.metrics,
		Clock:              f.clock.Now,
		DefaultHoldMinutes: 10,
	}, zap.NewNop())

	for i, label := range []string{"B1", "B2", "B3"} {
		user := fmt.Sprintf("u%d", i)
		require.NoError(t, f.hold(t, user, 5, label))

		start := time.Now()
		require.NoError(t, f.confirm(t, user, label))
		assert.Less(t, time.Since(start), 500*time.Millisecond)
		assert.Equal(t, entity.ShowSeatBooked, f.status(t, label))
	}
}
