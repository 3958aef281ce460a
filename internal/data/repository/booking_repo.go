package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"seat-reservation/internal/data/entity"
	"seat-reservation/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const bookingColumns = `b.id, b.reference, b.show_id, b.user_id, b.email, b.phone_number, b.status, b.seats_booked, b.reminder_sent_at, b.created_at`

type bookingRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBookingRepository(db database.PgxIface, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings b WHERE b.id = $1`

	booking, err := scanBooking(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by ID",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return nil, fmt.Errorf("find booking by ID %s: %w", id, err)
	}

	if booking.SeatIDs, err = r.findSeatIDs(ctx, id); err != nil {
		return nil, err
	}

	return booking, nil
}

func (r *bookingRepository) FindDueReminders(ctx context.Context, from, to time.Time) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings b
		JOIN shows s ON s.id = b.show_id
		WHERE b.status = 'CONFIRMED'
		  AND b.reminder_sent_at IS NULL
		  AND b.phone_number IS NOT NULL AND b.phone_number <> ''
		  AND s.start_time BETWEEN $1 AND $2
		ORDER BY s.start_time
	`

	rows, err := r.db.Query(ctx, query, from, to)
	if err != nil {
		r.log.Error("Failed to find due reminders", zap.Error(err))
		return nil, fmt.Errorf("find due reminders: %w", err)
	}
	defer rows.Close()

	var bookings []*entity.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			r.log.Error("Failed to scan booking row", zap.Error(err))
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate booking rows: %w", err)
	}

	for _, booking := range bookings {
		if booking.SeatIDs, err = r.findSeatIDs(ctx, booking.ID); err != nil {
			return nil, err
		}
	}

	return bookings, nil
}

func (r *bookingRepository) findSeatIDs(ctx context.Context, bookingID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx,
		`SELECT seat_id FROM booking_seats WHERE booking_id = $1 ORDER BY seat_id`, bookingID)
	if err != nil {
		r.log.Error("Failed to find booking seats",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
		return nil, fmt.Errorf("find booking seats for %s: %w", bookingID, err)
	}

	seatIDs, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, fmt.Errorf("scan booking seats for %s: %w", bookingID, err)
	}
	return seatIDs, nil
}

func (r *bookingRepository) MarkReminderSent(ctx context.Context, bookingID uuid.UUID, at time.Time) (bool, error) {
	query := `UPDATE bookings SET reminder_sent_at = $2 WHERE id = $1 AND reminder_sent_at IS NULL`

	tag, err := r.db.Exec(ctx, query, bookingID, at)
	if err != nil {
		r.log.Error("Failed to mark reminder sent",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
		return false, fmt.Errorf("mark reminder sent for %s: %w", bookingID, err)
	}

	return tag.RowsAffected() == 1, nil
}

func scanBooking(row pgx.Row) (*entity.Booking, error) {
	var booking entity.Booking
	err := row.Scan(
		&booking.ID,
		&booking.Reference,
		&booking.ShowID,
		&booking.UserID,
		&booking.Email,
		&booking.PhoneNumber,
		&booking.Status,
		&booking.SeatsBooked,
		&booking.ReminderSentAt,
		&booking.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}
