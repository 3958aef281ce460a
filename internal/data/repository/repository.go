package repository

import (
	"context"
	"errors"
	"time"

	"seat-reservation/internal/data/entity"
	"seat-reservation/pkg/database"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrDuplicateBookingSeat is returned by InsertBooking when a seat of the
// show already belongs to another booking.
var ErrDuplicateBookingSeat = errors.New("show seat already booked")

// ErrDuplicateReference is returned by InsertBooking when the booking
// reference is already taken. The transaction can be retried with a new one.
var ErrDuplicateReference = errors.New("booking reference already taken")

// CatalogReader is the read-only view of theatres, seats and shows.
// Lookups by id return nil, nil when nothing matches.
type CatalogReader interface {
	FindShowByID(ctx context.Context, showID uuid.UUID) (*entity.Show, error)
	FindActiveSeatsByTheatre(ctx context.Context, theatreID uuid.UUID) ([]*entity.Seat, error)
	FindSeatsByIDs(ctx context.Context, seatIDs []uuid.UUID) ([]*entity.Seat, error)
}

// InventoryStore owns show_seats and runs the transactional unit of work.
type InventoryStore interface {
	// WithinTx runs fn in one transaction; row locks taken through tx are
	// held until fn returns. An error from fn discards every write.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx InventoryTx) error) error

	// EnsureShowSeats creates AVAILABLE rows for every active seat of the
	// show's theatre that has none yet. Existing rows are left untouched.
	EnsureShowSeats(ctx context.Context, show *entity.Show) error

	FindShowSeats(ctx context.Context, showID uuid.UUID) ([]*entity.ShowSeat, error)

	// ClearExpiredHolds turns every HELD row with hold_expires_at < now back
	// into AVAILABLE, skipping rows locked by an in-flight transaction.
	ClearExpiredHolds(ctx context.Context, now time.Time) (int64, error)
}

// InventoryTx is the write side available inside WithinTx.
type InventoryTx interface {
	// LockShowSeats materializes missing rows and locks the rows of seatIDs in
	// ascending seat id order. Seats outside the show's theatre or inactive
	// are left out of the result.
	LockShowSeats(ctx context.Context, show *entity.Show, seatIDs []uuid.UUID) ([]*entity.ShowSeat, error)
	SaveShowSeats(ctx context.Context, rows []*entity.ShowSeat) error
	InsertBooking(ctx context.Context, booking *entity.Booking, seats []*entity.BookingSeat) error
	DecrementAvailableSeats(ctx context.Context, showID uuid.UUID, n int) error
}

type BookingRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	// FindDueReminders lists confirmed bookings with a phone number, no
	// reminder yet, whose show starts within [from, to].
	FindDueReminders(ctx context.Context, from, to time.Time) ([]*entity.Booking, error)
	// MarkReminderSent claims the reminder; false means someone else did.
	MarkReminderSent(ctx context.Context, bookingID uuid.UUID, at time.Time) (bool, error)
}

type Repository struct {
	Catalog   CatalogReader
	Inventory InventoryStore
	Booking   BookingRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		Catalog:   NewCatalogRepository(db, log),
		Inventory: NewInventoryRepository(db, log),
		Booking:   NewBookingRepository(db, log),
	}
}
