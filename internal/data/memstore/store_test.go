package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"seat-reservation/internal/data/entity"
	"seat-reservation/internal/data/repository"
	"seat-reservation/internal/data/seed"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newSeededStore(t *testing.T) (*Store, *seed.Catalog) {
	t.Helper()
	s := New(zap.NewNop())
	c := seed.Demo(time.Now())
	s.SeedCatalog(c)
	return s, c
}

func showOf(t *testing.T, s *Store, id uuid.UUID) *entity.Show {
	t.Helper()
	show, err := s.FindShowByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, show)
	return show
}

func TestCatalog_Reads(t *testing.T) {
	s, c := newSeededStore(t)
	ctx := context.Background()

	show := showOf(t, s, c.Shows[0].ID)
	require.NotNil(t, show.Theatre)
	assert.Equal(t, "Grand Cinema", show.Theatre.Name)

	missing, err := s.FindShowByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)

	s.SetSeatActive(c.Seats[0].ID, false)
	seats, err := s.FindActiveSeatsByTheatre(ctx, c.Theatre.ID)
	require.NoError(t, err)
	require.Len(t, seats, 49)
	assert.Equal(t, "A2", seats[0].Label())
	assert.Equal(t, "E10", seats[48].Label())
}

func TestWithinTx_RollbackDiscardsWrites(t *testing.T) {
	s, c := newSeededStore(t)
	ctx := context.Background()
	show := showOf(t, s, c.Shows[0].ID)
	seatID := c.Seats[0].ID
	boom := errors.New("boom")

	err := s.WithinTx(ctx, func(ctx context.Context, tx repository.InventoryTx) error {
		rows, err := tx.LockShowSeats(ctx, show, []uuid.UUID{seatID})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		rows[0].Hold("alice", time.Now().Add(time.Minute), time.Now())
		require.NoError(t, tx.SaveShowSeats(ctx, rows))
		return boom
	})
	require.ErrorIs(t, err, boom)

	rows, err := s.FindShowSeats(ctx, show.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1, "materialized row survives rollback")
	assert.Equal(t, entity.ShowSeatAvailable, rows[0].Status)
}

func TestLockShowSeats_FiltersForeignAndInactiveSeats(t *testing.T) {
	s, c := newSeededStore(t)
	ctx := context.Background()
	show := showOf(t, s, c.Shows[0].ID)

	foreign := &entity.Seat{TheatreID: uuid.New(), RowLabel: "Z", SeatNumber: 1, IsActive: true}
	foreign.ID = uuid.New()
	s.AddSeat(foreign)
	s.SetSeatActive(c.Seats[1].ID, false)

	err := s.WithinTx(ctx, func(ctx context.Context, tx repository.InventoryTx) error {
		rows, err := tx.LockShowSeats(ctx, show, []uuid.UUID{c.Seats[0].ID, c.Seats[1].ID, foreign.ID, uuid.New()})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, c.Seats[0].ID, rows[0].SeatID)
		return nil
	})
	require.NoError(t, err)
}

func TestLockShowSeats_BlocksUntilCommit(t *testing.T) {
	s, c := newSeededStore(t)
	ctx := context.Background()
	show := showOf(t, s, c.Shows[0].ID)
	seatID := c.Seats[0].ID

	locked := make(chan struct{})
	proceed := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- s.WithinTx(ctx, func(ctx context.Context, tx repository.InventoryTx) error {
			rows, err := tx.LockShowSeats(ctx, show, []uuid.UUID{seatID})
			if err != nil {
				return err
			}
			close(locked)
			<-proceed
			rows[0].Book(time.Now())
			return tx.SaveShowSeats(ctx, rows)
		})
	}()
	<-locked

	waitCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	err := s.WithinTx(waitCtx, func(ctx context.Context, tx repository.InventoryTx) error {
		_, err := tx.LockShowSeats(ctx, show, []uuid.UUID{seatID})
		return err
	})
	require.ErrorIs(t, err, context.DeadlineExceeded)

	close(proceed)
	require.NoError(t, <-done)

	err = s.WithinTx(ctx, func(ctx context.Context, tx repository.InventoryTx) error {
		rows, err := tx.LockShowSeats(ctx, show, []uuid.UUID{seatID})
		require.NoError(t, err)
		assert.Equal(t, entity.ShowSeatBooked, rows[0].Status)
		return nil
	})
	require.NoError(t, err)
}

func TestClearExpiredHolds_SkipsLockedRows(t *testing.T) {
	s, c := newSeededStore(t)
	ctx := context.Background()
	show := showOf(t, s, c.Shows[0].ID)
	now := time.Now()
	past := now.Add(-time.Minute)

	ids := []uuid.UUID{c.Seats[0].ID, c.Seats[1].ID}
	require.NoError(t, s.WithinTx(ctx, func(ctx context.Context, tx repository.InventoryTx) error {
		rows, err := tx.LockShowSeats(ctx, show, ids)
		require.NoError(t, err)
		for _, row := range rows {
			row.Hold("alice", past, past.Add(-time.Minute))
		}
		return tx.SaveShowSeats(ctx, rows)
	}))

	locked := make(chan struct{})
	proceed := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- s.WithinTx(ctx, func(ctx context.Context, tx repository.InventoryTx) error {
			if _, err := tx.LockShowSeats(ctx, show, ids[:1]); err != nil {
				return err
			}
			close(locked)
			<-proceed
			return nil
		})
	}()
	<-locked

	cleared, err := s.ClearExpiredHolds(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), cleared)

	close(proceed)
	require.NoError(t, <-done)

	cleared, err = s.ClearExpiredHolds(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), cleared)

	cleared, err = s.ClearExpiredHolds(ctx, now)
	require.NoError(t, err)
	assert.Zero(t, cleared, "sweeping is idempotent")
}

func TestInsertBooking_DuplicateSeat(t *testing.T) {
	s, c := newSeededStore(t)
	ctx := context.Background()
	show := c.Shows[0]
	seatID := c.Seats[0].ID

	book := func() error {
		return s.WithinTx(ctx, func(ctx context.Context, tx repository.InventoryTx) error {
			b := &entity.Booking{
				BaseSimple:  entity.BaseSimple{ID: uuid.New(), CreatedAt: time.Now()},
				Reference:   "BOOK-1",
				ShowID:      show.ID,
				UserID:      "alice",
				Status:      entity.BookingStatusConfirmed,
				SeatsBooked: 1,
			}
			seats := []*entity.BookingSeat{{BookingID: b.ID, ShowID: show.ID, SeatID: seatID}}
			if err := tx.InsertBooking(ctx, b, seats); err != nil {
				return err
			}
			return tx.DecrementAvailableSeats(ctx, show.ID, 1)
		})
	}

	require.NoError(t, book())
	err := book()
	require.ErrorIs(t, err, repository.ErrDuplicateBookingSeat)

	reloaded := showOf(t, s, show.ID)
	assert.Equal(t, 49, reloaded.AvailableSeats, "failed booking leaves the counter alone")
}

func TestInsertBooking_DuplicateReference(t *testing.T) {
	s, c := newSeededStore(t)
	ctx := context.Background()
	show := c.Shows[0]

	book := func(seatID uuid.UUID) error {
		return s.WithinTx(ctx, func(ctx context.Context, tx repository.InventoryTx) error {
			b := &entity.Booking{
				BaseSimple:  entity.BaseSimple{ID: uuid.New(), CreatedAt: time.Now()},
				Reference:   "BOOK-SAME",
				ShowID:      show.ID,
				UserID:      "alice",
				Status:      entity.BookingStatusConfirmed,
				SeatsBooked: 1,
			}
			return tx.InsertBooking(ctx, b, []*entity.BookingSeat{{BookingID: b.ID, ShowID: show.ID, SeatID: seatID}})
		})
	}

	require.NoError(t, book(c.Seats[0].ID))
	err := book(c.Seats[1].ID)
	require.ErrorIs(t, err, repository.ErrDuplicateReference)
	assert.NotErrorIs(t, err, repository.ErrDuplicateBookingSeat)

	// two bookings staged in one transaction collide as well
	err = s.WithinTx(ctx, func(ctx context.Context, tx repository.InventoryTx) error {
		for _, seat := range c.Seats[2:4] {
			b := &entity.Booking{
				BaseSimple: entity.BaseSimple{ID: uuid.New(), CreatedAt: time.Now()},
				Reference:  "BOOK-STAGED",
				ShowID:     show.ID,
				UserID:     "bob",
				Status:     entity.BookingStatusConfirmed,
			}
			if err := tx.InsertBooking(ctx, b, []*entity.BookingSeat{{BookingID: b.ID, ShowID: show.ID, SeatID: seat.ID}}); err != nil {
				return err
			}
		}
		return nil
	})
	require.ErrorIs(t, err, repository.ErrDuplicateReference)
}

func TestDecrementAvailableSeats_FloorsAtZero(t *testing.T) {
	s, c := newSeededStore(t)
	ctx := context.Background()
	show := c.Shows[0]

	require.NoError(t, s.WithinTx(ctx, func(ctx context.Context, tx repository.InventoryTx) error {
		return tx.DecrementAvailableSeats(ctx, show.ID, 500)
	}))
	assert.Equal(t, 0, showOf(t, s, show.ID).AvailableSeats)
}

func TestReminderClaim(t *testing.T) {
	s, c := newSeededStore(t)
	ctx := context.Background()
	show := c.Shows[0]
	phone := "+15550001111"

	require.NoError(t, s.WithinTx(ctx, func(ctx context.Context, tx repository.InventoryTx) error {
		b := &entity.Booking{
			BaseSimple:  entity.BaseSimple{ID: uuid.New()},
			ShowID:      show.ID,
			UserID:      "bob",
			PhoneNumber: &phone,
			Status:      entity.BookingStatusConfirmed,
			SeatsBooked: 1,
		}
		return tx.InsertBooking(ctx, b, []*entity.BookingSeat{{BookingID: b.ID, ShowID: show.ID, SeatID: c.Seats[2].ID}})
	}))

	due, err := s.FindDueReminders(ctx, show.StartTime.Add(-time.Minute), show.StartTime)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, []uuid.UUID{c.Seats[2].ID}, due[0].SeatIDs)

	ok, err := s.MarkReminderSent(ctx, due[0].ID, time.Now())
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = s.MarkReminderSent(ctx, due[0].ID, time.Now())
	require.NoError(t, err)
	assert.False(t, ok)

	due, err = s.FindDueReminders(ctx, show.StartTime.Add(-time.Minute), show.StartTime)
	require.NoError(t, err)
	assert.Empty(t, due)
}
