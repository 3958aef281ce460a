package repository

import (
	"context"
	"fmt"

	"seat-reservation/internal/data/seed"
	"seat-reservation/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// SeedCatalog inserts the catalog rows, skipping ids that already exist.
func SeedCatalog(ctx context.Context, db database.PgxIface, catalog *seed.Catalog, log *zap.Logger) error {
	return database.WithTx(ctx, db, func(tx pgx.Tx) error {
		t := catalog.Theatre
		if _, err := tx.Exec(ctx,
			`INSERT INTO theatres (id, name, city, created_at) VALUES ($1, $2, $3, $4) ON CONFLICT (id) DO NOTHING`,
			t.ID, t.Name, t.City, t.CreatedAt,
		); err != nil {
			return fmt.Errorf("seed theatre: %w", err)
		}

		for _, s := range catalog.Seats {
			if _, err := tx.Exec(ctx,
				`INSERT INTO seats (id, theatre_id, row_label, seat_number, seat_type, is_active, created_at)
				 VALUES ($1, $2, $3, $4, $5, $6, $7) ON CONFLICT (id) DO NOTHING`,
				s.ID, s.TheatreID, s.RowLabel, s.SeatNumber, s.SeatType, s.IsActive, s.CreatedAt,
			); err != nil {
				return fmt.Errorf("seed seat %s: %w", s.Label(), err)
			}
		}

		for _, sh := range catalog.Shows {
			if _, err := tx.Exec(ctx,
				`INSERT INTO shows (id, theatre_id, movie_title, start_time, available_seats, created_at)
				 VALUES ($1, $2, $3, $4, $5, $6) ON CONFLICT (id) DO NOTHING`,
				sh.ID, sh.TheatreID, sh.MovieTitle, sh.StartTime, sh.AvailableSeats, sh.CreatedAt,
			); err != nil {
				return fmt.Errorf("seed show %s: %w", sh.ID, err)
			}
		}

		log.Info("Demo catalog seeded",
			zap.String("theatre_id", t.ID.String()),
			zap.Int("seats", len(catalog.Seats)),
			zap.Int("shows", len(catalog.Shows)),
		)
		return nil
	})
}
