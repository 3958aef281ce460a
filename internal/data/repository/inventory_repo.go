package repository

import (
	"context"
	"fmt"
	"time"

	"seat-reservation/internal/data/entity"
	"seat-reservation/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const showSeatColumns = `ss.id, ss.show_id, ss.seat_id, ss.status, ss.held_by_user_id, ss.hold_expires_at, ss.updated_at`

type inventoryRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewInventoryRepository(db database.PgxIface, log *zap.Logger) InventoryStore {
	return &inventoryRepository{
		db:  db,
		log: log.With(zap.String("repository", "inventory")),
	}
}

func (r *inventoryRepository) WithinTx(ctx context.Context, fn func(ctx context.Context, tx InventoryTx) error) error {
	return database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(ctx, &inventoryTx{tx: tx, log: r.log})
	})
}

func (r *inventoryRepository) EnsureShowSeats(ctx context.Context, show *entity.Show) error {
	query := `
		INSERT INTO show_seats (show_id, seat_id, status, updated_at)
		SELECT $1, s.id, 'AVAILABLE', NOW()
		FROM seats s
		WHERE s.theatre_id = $2 AND s.is_active
		ORDER BY s.id
		ON CONFLICT (show_id, seat_id) DO NOTHING
	`

	tag, err := r.db.Exec(ctx, query, show.ID, show.TheatreID)
	if err != nil {
		r.log.Error("Failed to ensure show seats",
			zap.Error(err),
			zap.String("show_id", show.ID.String()),
		)
		return fmt.Errorf("ensure show seats for show %s: %w", show.ID, err)
	}

	if tag.RowsAffected() > 0 {
		r.log.Debug("Show seats materialized",
			zap.String("show_id", show.ID.String()),
			zap.Int64("created", tag.RowsAffected()),
		)
	}
	return nil
}

func (r *inventoryRepository) FindShowSeats(ctx context.Context, showID uuid.UUID) ([]*entity.ShowSeat, error) {
	query := `SELECT ` + showSeatColumns + ` FROM show_seats ss WHERE ss.show_id = $1`

	rows, err := r.db.Query(ctx, query, showID)
	if err != nil {
		r.log.Error("Failed to find show seats",
			zap.Error(err),
			zap.String("show_id", showID.String()),
		)
		return nil, fmt.Errorf("find show seats for show %s: %w", showID, err)
	}

	return scanShowSeats(rows)
}

func (r *inventoryRepository) ClearExpiredHolds(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE show_seats
		SET status = 'AVAILABLE', held_by_user_id = NULL, hold_expires_at = NULL, updated_at = $1
		WHERE id IN (
			SELECT id FROM show_seats
			WHERE status = 'HELD' AND hold_expires_at < $1
			FOR UPDATE SKIP LOCKED
		)
	`

	tag, err := r.db.Exec(ctx, query, now)
	if err != nil {
		r.log.Error("Failed to clear expired holds", zap.Error(err))
		return 0, fmt.Errorf("clear expired holds: %w", err)
	}

	return tag.RowsAffected(), nil
}

// ==================== TRANSACTION ====================

type inventoryTx struct {
	tx  pgx.Tx
	log *zap.Logger
}

func (t *inventoryTx) LockShowSeats(ctx context.Context, show *entity.Show, seatIDs []uuid.UUID) ([]*entity.ShowSeat, error) {
	if len(seatIDs) == 0 {
		return nil, nil
	}

	insert := `
		INSERT INTO show_seats (show_id, seat_id, status, updated_at)
		SELECT $1, s.id, 'AVAILABLE', NOW()
		FROM seats s
		WHERE s.theatre_id = $2 AND s.is_active AND s.id = ANY($3)
		ORDER BY s.id
		ON CONFLICT (show_id, seat_id) DO NOTHING
	`
	if _, err := t.tx.Exec(ctx, insert, show.ID, show.TheatreID, seatIDs); err != nil {
		t.log.Error("Failed to materialize show seats",
			zap.Error(err),
			zap.String("show_id", show.ID.String()),
		)
		return nil, fmt.Errorf("materialize show seats: %w", err)
	}

	lock := `
		SELECT ` + showSeatColumns + `
		FROM show_seats ss
		JOIN seats s ON s.id = ss.seat_id
		WHERE ss.show_id = $1 AND ss.seat_id = ANY($2) AND s.theatre_id = $3 AND s.is_active
		ORDER BY ss.seat_id
		FOR UPDATE OF ss
	`
	rows, err := t.tx.Query(ctx, lock, show.ID, seatIDs, show.TheatreID)
	if err != nil {
		t.log.Error("Failed to lock show seats",
			zap.Error(err),
			zap.String("show_id", show.ID.String()),
		)
		return nil, fmt.Errorf("lock show seats: %w", err)
	}

	return scanShowSeats(rows)
}

func (t *inventoryTx) SaveShowSeats(ctx context.Context, rows []*entity.ShowSeat) error {
	query := `
		UPDATE show_seats
		SET status = $2, held_by_user_id = $3, hold_expires_at = $4, updated_at = $5
		WHERE id = $1
	`

	batch := &pgx.Batch{}
	for _, row := range rows {
		batch.Queue(query, row.ID, row.Status, row.HeldByUserID, row.HoldExpiresAt, row.UpdatedAt)
	}

	br := t.tx.SendBatch(ctx, batch)
	for _, row := range rows {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			t.log.Error("Failed to save show seat",
				zap.Error(err),
				zap.String("show_seat_id", row.ID.String()),
			)
			return fmt.Errorf("save show seat %s: %w", row.ID, err)
		}
	}

	if err := br.Close(); err != nil {
		return fmt.Errorf("close show seat batch: %w", err)
	}
	return nil
}

func (t *inventoryTx) InsertBooking(ctx context.Context, booking *entity.Booking, seats []*entity.BookingSeat) error {
	query := `
		INSERT INTO bookings (id, reference, show_id, user_id, email, phone_number, status, seats_booked, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := t.tx.Exec(ctx, query,
		booking.ID,
		booking.Reference,
		booking.ShowID,
		booking.UserID,
		booking.Email,
		booking.PhoneNumber,
		booking.Status,
		booking.SeatsBooked,
		booking.CreatedAt,
	)
	if database.IsUniqueViolation(err, database.BookingReferenceUniqueConstraint) {
		t.log.Warn("Booking reference collision", zap.String("reference", booking.Reference))
		return fmt.Errorf("create booking %s: %w", booking.Reference, ErrDuplicateReference)
	}
	if err != nil {
		t.log.Error("Failed to create booking",
			zap.Error(err),
			zap.String("reference", booking.Reference),
			zap.String("user_id", booking.UserID),
		)
		return fmt.Errorf("create booking %s: %w", booking.Reference, err)
	}

	seatQuery := `
		INSERT INTO booking_seats (id, booking_id, show_id, seat_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	for _, bs := range seats {
		_, err := t.tx.Exec(ctx, seatQuery, bs.ID, bs.BookingID, bs.ShowID, bs.SeatID, bs.CreatedAt)
		if database.IsUniqueViolation(err, database.BookingSeatUniqueConstraint) {
			t.log.Warn("Seat already booked for show",
				zap.String("show_id", bs.ShowID.String()),
				zap.String("seat_id", bs.SeatID.String()),
			)
			return fmt.Errorf("insert booking seat %s: %w", bs.SeatID, ErrDuplicateBookingSeat)
		}
		if err != nil {
			t.log.Error("Failed to create booking seat",
				zap.Error(err),
				zap.String("booking_id", bs.BookingID.String()),
			)
			return fmt.Errorf("create booking seat %s: %w", bs.SeatID, err)
		}
	}

	return nil
}

func (t *inventoryTx) DecrementAvailableSeats(ctx context.Context, showID uuid.UUID, n int) error {
	query := `UPDATE shows SET available_seats = GREATEST(available_seats - $2, 0) WHERE id = $1`

	if _, err := t.tx.Exec(ctx, query, showID, n); err != nil {
		t.log.Error("Failed to decrement available seats",
			zap.Error(err),
			zap.String("show_id", showID.String()),
		)
		return fmt.Errorf("decrement available seats for show %s: %w", showID, err)
	}
	return nil
}

func scanShowSeats(rows pgx.Rows) ([]*entity.ShowSeat, error) {
	defer rows.Close()

	var result []*entity.ShowSeat
	for rows.Next() {
		var row entity.ShowSeat
		if err := rows.Scan(
			&row.ID,
			&row.ShowID,
			&row.SeatID,
			&row.Status,
			&row.HeldByUserID,
			&row.HoldExpiresAt,
			&row.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan show seat row: %w", err)
		}
		result = append(result, &row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate show seat rows: %w", err)
	}

	return result, nil
}
