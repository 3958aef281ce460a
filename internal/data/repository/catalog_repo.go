package repository

import (
	"context"
	"errors"
	"fmt"

	"seat-reservation/internal/data/entity"
	"seat-reservation/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type catalogRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewCatalogRepository(db database.PgxIface, log *zap.Logger) CatalogReader {
	return &catalogRepository{
		db:  db,
		log: log.With(zap.String("repository", "catalog")),
	}
}

func (r *catalogRepository) FindShowByID(ctx context.Context, showID uuid.UUID) (*entity.Show, error) {
	query := `
		SELECT s.id, s.theatre_id, s.movie_title, s.start_time, s.available_seats, s.created_at,
		       t.id, t.name, t.city, t.created_at
		FROM shows s
		JOIN theatres t ON t.id = s.theatre_id
		WHERE s.id = $1
	`

	var show entity.Show
	var theatre entity.Theatre
	err := r.db.QueryRow(ctx, query, showID).Scan(
		&show.ID,
		&show.TheatreID,
		&show.MovieTitle,
		&show.StartTime,
		&show.AvailableSeats,
		&show.CreatedAt,
		&theatre.ID,
		&theatre.Name,
		&theatre.City,
		&theatre.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find show by ID",
			zap.Error(err),
			zap.String("show_id", showID.String()),
		)
		return nil, fmt.Errorf("find show by ID %s: %w", showID, err)
	}

	show.Theatre = &theatre
	return &show, nil
}

func (r *catalogRepository) FindActiveSeatsByTheatre(ctx context.Context, theatreID uuid.UUID) ([]*entity.Seat, error) {
	query := `
		SELECT id, theatre_id, row_label, seat_number, seat_type, is_active, created_at
		FROM seats
		WHERE theatre_id = $1 AND is_active
		ORDER BY row_label, seat_number
	`

	rows, err := r.db.Query(ctx, query, theatreID)
	if err != nil {
		r.log.Error("Failed to find seats by theatre",
			zap.Error(err),
			zap.String("theatre_id", theatreID.String()),
		)
		return nil, fmt.Errorf("find seats by theatre %s: %w", theatreID, err)
	}

	return scanSeats(rows)
}

func (r *catalogRepository) FindSeatsByIDs(ctx context.Context, seatIDs []uuid.UUID) ([]*entity.Seat, error) {
	if len(seatIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT id, theatre_id, row_label, seat_number, seat_type, is_active, created_at
		FROM seats
		WHERE id = ANY($1)
		ORDER BY row_label, seat_number
	`

	rows, err := r.db.Query(ctx, query, seatIDs)
	if err != nil {
		r.log.Error("Failed to find seats by IDs", zap.Error(err), zap.Int("count", len(seatIDs)))
		return nil, fmt.Errorf("find seats by IDs: %w", err)
	}

	return scanSeats(rows)
}

func scanSeats(rows pgx.Rows) ([]*entity.Seat, error) {
	defer rows.Close()

	var seats []*entity.Seat
	for rows.Next() {
		var seat entity.Seat
		if err := rows.Scan(
			&seat.ID,
			&seat.TheatreID,
			&seat.RowLabel,
			&seat.SeatNumber,
			&seat.SeatType,
			&seat.IsActive,
			&seat.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan seat row: %w", err)
		}
		seats = append(seats, &seat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate seat rows: %w", err)
	}

	return seats, nil
}
