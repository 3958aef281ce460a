package usecase

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"seat-reservation/internal/data/entity"
	"seat-reservation/internal/data/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// parseSeatIDs turns the requested ids into a sorted, duplicate-free list.
// Sorting gives every transaction the same lock order.
func parseSeatIDs(raw []string) ([]uuid.UUID, error) {
	if len(raw) == 0 {
		return nil, newValidationError(map[string]string{"seatIds": "Must contain at least 1 item(s)"})
	}

	ids := make([]uuid.UUID, 0, len(raw))
	seen := make(map[uuid.UUID]bool, len(raw))
	for i, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, newValidationError(map[string]string{fmt.Sprintf("seatIds[%d]", i): "Must be a valid UUID"})
		}
		if seen[id] {
			return nil, fmt.Errorf("%w: seat %s requested more than once", ErrInvalidSeats, id)
		}
		seen[id] = true
		ids = append(ids, id)
	}

	sortSeatIDs(ids)
	return ids, nil
}

func sortSeatIDs(ids []uuid.UUID) {
	sort.Slice(ids, func(i, j int) bool { return bytes.Compare(ids[i][:], ids[j][:]) < 0 })
}

// seatLocker acquires the inventory rows for a request inside a transaction.
type seatLocker struct {
	log *zap.Logger
}

// acquire locks one row per seat id, creating missing rows first. It fails
// with ErrInvalidSeats when a seat does not belong to the show's theatre.
func (l seatLocker) acquire(ctx context.Context, tx repository.InventoryTx, show *entity.Show, seatIDs []uuid.UUID) ([]*entity.ShowSeat, error) {
	rows, err := tx.LockShowSeats(ctx, show, seatIDs)
	if err != nil {
		return nil, fmt.Errorf("lock seats: %w", err)
	}

	if len(rows) != len(seatIDs) {
		found := make(map[uuid.UUID]bool, len(rows))
		for _, row := range rows {
			found[row.SeatID] = true
		}
		var missing []string
		for _, id := range seatIDs {
			if !found[id] {
				missing = append(missing, id.String())
			}
		}
		l.log.Warn("Seats do not belong to show",
			zap.String("show_id", show.ID.String()),
			zap.Strings("seat_ids", missing),
		)
		return nil, fmt.Errorf("%w: %d seat(s) do not belong to show %s", ErrInvalidSeats, len(missing), show.ID)
	}

	for _, row := range rows {
		if row.ShowID != show.ID {
			l.log.Error("Locked row belongs to another show",
				zap.String("show_id", show.ID.String()),
				zap.String("row_show_id", row.ShowID.String()),
				zap.String("seat_id", row.SeatID.String()),
			)
			return nil, fmt.Errorf("%w: seat %s is not part of show %s", ErrInvalidSeats, row.SeatID, show.ID)
		}
	}

	return rows, nil
}
