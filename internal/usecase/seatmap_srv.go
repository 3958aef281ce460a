package usecase

import (
	"context"
	"fmt"
	"time"

	"seat-reservation/internal/data/entity"
	"seat-reservation/internal/data/repository"
	"seat-reservation/internal/dto/response"
	"seat-reservation/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type SeatMapService interface {
	GetSeatMap(ctx context.Context, showID, viewerUserID string) (*response.SeatMapResponse, error)
}

type seatMapService struct {
	catalog   repository.CatalogReader
	inventory repository.InventoryStore
	locker    seatLocker
	now       func() time.Time
	log       *zap.Logger
}

func NewSeatMapService(repo *repository.Repository, deps Dependencies, log *zap.Logger) SeatMapService {
	log = log.With(zap.String("service", "seatmap"))
	return &seatMapService{
		catalog:   repo.Catalog,
		inventory: repo.Inventory,
		locker:    seatLocker{log: log},
		now:       deps.clock(),
		log:       log,
	}
}

func (s *seatMapService) GetSeatMap(ctx context.Context, showID, viewerUserID string) (*response.SeatMapResponse, error) {
	show, err := loadShow(ctx, s.catalog, showID)
	if err != nil {
		return nil, err
	}

	seats, err := s.catalog.FindActiveSeatsByTheatre(ctx, show.TheatreID)
	if err != nil {
		return nil, fmt.Errorf("find seats: %w", err)
	}

	if err := s.inventory.EnsureShowSeats(ctx, show); err != nil {
		return nil, fmt.Errorf("ensure show seats: %w", err)
	}

	rows, err := s.inventory.FindShowSeats(ctx, show.ID)
	if err != nil {
		return nil, fmt.Errorf("find show seats: %w", err)
	}

	now := s.now()
	bySeat := make(map[uuid.UUID]*entity.ShowSeat, len(rows))
	var expired []uuid.UUID
	for _, row := range rows {
		if row.ShowID != show.ID {
			s.log.Warn("Ignoring inventory row of another show",
				zap.String("show_id", show.ID.String()),
				zap.String("row_show_id", row.ShowID.String()),
				zap.String("seat_id", row.SeatID.String()),
			)
			continue
		}
		bySeat[row.SeatID] = row
		if row.IsExpiredHold(now) {
			expired = append(expired, row.SeatID)
		}
	}

	if len(expired) > 0 {
		s.reclaimExpired(ctx, show, expired)
	}

	resp := &response.SeatMapResponse{
		ShowID:     show.ID.String(),
		Rows:       []string{},
		SeatTypes:  []entity.SeatType{},
		Seats:      make([]response.SeatMapSeat, 0, len(seats)),
		ServerTime: now,
	}
	if show.Theatre != nil {
		resp.Theatre = response.TheatreSummary{
			ID:   show.Theatre.ID.String(),
			Name: show.Theatre.Name,
			City: show.Theatre.City,
		}
	}

	seenRow := make(map[string]bool)
	seenType := make(map[entity.SeatType]bool)
	for _, seat := range seats {
		if !seenRow[seat.RowLabel] {
			seenRow[seat.RowLabel] = true
			resp.Rows = append(resp.Rows, seat.RowLabel)
		}
		if !seenType[seat.SeatType] {
			seenType[seat.SeatType] = true
			resp.SeatTypes = append(resp.SeatTypes, seat.SeatType)
		}

		item := response.SeatMapSeat{
			SeatID:     seat.ID.String(),
			RowLabel:   seat.RowLabel,
			SeatNumber: seat.SeatNumber,
			SeatType:   seat.SeatType,
			Status:     entity.ShowSeatAvailable,
		}
		if row, ok := bySeat[seat.ID]; ok {
			item.Status = row.DisplayStatus(now)
			if item.Status == entity.ShowSeatHeld {
				item.HeldByCurrentUser = viewerUserID != "" && row.IsHeldBy(viewerUserID, now)
				item.HoldExpiresAt = row.HoldExpiresAt
				item.RemainingSeconds = utils.RemainingSeconds(row.HoldExpiresAt, now)
			}
		}
		resp.Seats = append(resp.Seats, item)
	}

	return resp, nil
}

// reclaimExpired downgrades holds the map already shows as AVAILABLE. The
// condition is checked again under lock; a failure only delays the sweeper's work.
func (s *seatMapService) reclaimExpired(ctx context.Context, show *entity.Show, seatIDs []uuid.UUID) {
	sortSeatIDs(seatIDs)

	var reclaimed int
	err := s.inventory.WithinTx(ctx, func(ctx context.Context, tx repository.InventoryTx) error {
		rows, err := s.locker.acquire(ctx, tx, show, seatIDs)
		if err != nil {
			return err
		}

		now := s.now()
		var changed []*entity.ShowSeat
		for _, row := range rows {
			if row.IsExpiredHold(now) {
				row.Release(now)
				changed = append(changed, row)
			}
		}
		if len(changed) == 0 {
			return nil
		}
		reclaimed = len(changed)
		return tx.SaveShowSeats(ctx, changed)
	})
	if err != nil {
		s.log.Warn("Failed to reclaim expired holds",
			zap.Error(err),
			zap.String("show_id", show.ID.String()),
		)
		return
	}

	if reclaimed > 0 {
		s.log.Info("Reclaimed expired holds",
			zap.String("show_id", show.ID.String()),
			zap.Int("count", reclaimed),
		)
	}
}
