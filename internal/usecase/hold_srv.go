package usecase

import (
	"context"
	"fmt"
	"time"

	"seat-reservation/internal/data/entity"
	"seat-reservation/internal/data/repository"
	"seat-reservation/internal/dto/request"
	"seat-reservation/internal/dto/response"
	"seat-reservation/pkg/metrics"
	"seat-reservation/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Hold length bounds, in minutes. The request tag enforces the same range.
const (
	MinHoldMinutes     = 5
	MaxHoldMinutes     = 10
	DefaultHoldMinutes = 10
)

type HoldService interface {
	HoldSeats(ctx context.Context, showID string, req *request.HoldSeatsRequest) (*response.HoldSeatsResponse, error)
	ReleaseSeats(ctx context.Context, showID string, req *request.ReleaseSeatsRequest) (*response.ReleaseSeatsResponse, error)
}

type holdService struct {
	catalog        repository.CatalogReader
	inventory      repository.InventoryStore
	locker         seatLocker
	defaultMinutes int
	metrics        *metrics.Metrics
	now            func() time.Time
	log            *zap.Logger
}

func NewHoldService(repo *repository.Repository, deps Dependencies, log *zap.Logger) HoldService {
	log = log.With(zap.String("service", "hold"))

	defaultMinutes := deps.DefaultHoldMinutes
	if defaultMinutes < MinHoldMinutes || defaultMinutes > MaxHoldMinutes {
		defaultMinutes = DefaultHoldMinutes
	}

	return &holdService{
		catalog:        repo.Catalog,
		inventory:      repo.Inventory,
		locker:         seatLocker{log: log},
		defaultMinutes: defaultMinutes,
		metrics:        deps.Metrics,
		now:            deps.clock(),
		log:            log,
	}
}

func (s *holdService) HoldSeats(ctx context.Context, showID string, req *request.HoldSeatsRequest) (*response.HoldSeatsResponse, error) {
	start := time.Now()
	resp, err := s.holdSeats(ctx, showID, req)
	s.metrics.ObserveOperation("hold", resultOf(err), time.Since(start).Seconds(), len(req.SeatIDs))
	return resp, err
}

func (s *holdService) holdSeats(ctx context.Context, showID string, req *request.HoldSeatsRequest) (*response.HoldSeatsResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Hold seats validation failed", zap.Any("errors", errs))
		return nil, newValidationError(errs)
	}

	seatIDs, err := parseSeatIDs(req.SeatIDs)
	if err != nil {
		return nil, err
	}

	show, err := loadShow(ctx, s.catalog, showID)
	if err != nil {
		return nil, err
	}

	minutes := s.defaultMinutes
	if req.HoldMinutes != nil {
		minutes = *req.HoldMinutes
	}

	var (
		held      []*entity.ShowSeat
		expiresAt time.Time
		now       time.Time
	)
	err = s.inventory.WithinTx(ctx, func(ctx context.Context, tx repository.InventoryTx) error {
		rows, err := s.locker.acquire(ctx, tx, show, seatIDs)
		if err != nil {
			return err
		}

		// the clock is read after the locks so a long wait cannot extend a hold
		now = s.now()
		expiresAt = now.Add(time.Duration(minutes) * time.Minute)

		var conflicts []uuid.UUID
		for _, row := range rows {
			if row.Status == entity.ShowSeatBooked || row.IsActiveHold(now) {
				conflicts = append(conflicts, row.SeatID)
			}
		}
		if len(conflicts) > 0 {
			return &ConflictError{Message: "Some seats are not available", SeatIDs: conflicts}
		}

		for _, row := range rows {
			row.Hold(req.UserID, expiresAt, now)
		}
		if err := tx.SaveShowSeats(ctx, rows); err != nil {
			return fmt.Errorf("save held seats: %w", err)
		}

		held = rows
		return nil
	})
	if err != nil {
		s.logFailure("Hold seats failed", err, show.ID, req.UserID)
		return nil, err
	}

	s.log.Info("Seats held",
		zap.String("show_id", show.ID.String()),
		zap.String("user_id", req.UserID),
		zap.Int("seat_count", len(held)),
		zap.Time("hold_expires_at", expiresAt),
	)

	seats := make([]response.SeatHoldStatus, len(held))
	for i, row := range held {
		seats[i] = response.SeatHoldStatusFrom(row, utils.RemainingSeconds(row.HoldExpiresAt, now))
	}

	return &response.HoldSeatsResponse{
		ShowID:        show.ID.String(),
		HoldExpiresAt: expiresAt,
		Seats:         seats,
	}, nil
}

func (s *holdService) ReleaseSeats(ctx context.Context, showID string, req *request.ReleaseSeatsRequest) (*response.ReleaseSeatsResponse, error) {
	start := time.Now()
	resp, err := s.releaseSeats(ctx, showID, req)
	s.metrics.ObserveOperation("release", resultOf(err), time.Since(start).Seconds(), len(req.SeatIDs))
	return resp, err
}

func (s *holdService) releaseSeats(ctx context.Context, showID string, req *request.ReleaseSeatsRequest) (*response.ReleaseSeatsResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Release seats validation failed", zap.Any("errors", errs))
		return nil, newValidationError(errs)
	}

	seatIDs, err := parseSeatIDs(req.SeatIDs)
	if err != nil {
		return nil, err
	}

	show, err := loadShow(ctx, s.catalog, showID)
	if err != nil {
		return nil, err
	}

	var released []*entity.ShowSeat
	err = s.inventory.WithinTx(ctx, func(ctx context.Context, tx repository.InventoryTx) error {
		rows, err := s.locker.acquire(ctx, tx, show, seatIDs)
		if err != nil {
			return err
		}

		now := s.now()
		var conflicts []uuid.UUID
		for _, row := range rows {
			if !row.IsHeldBy(req.UserID, now) {
				conflicts = append(conflicts, row.SeatID)
			}
		}
		if len(conflicts) > 0 {
			return &ConflictError{Message: "Seats are not held by this user or the hold has expired", SeatIDs: conflicts}
		}

		for _, row := range rows {
			row.Release(now)
		}
		if err := tx.SaveShowSeats(ctx, rows); err != nil {
			return fmt.Errorf("save released seats: %w", err)
		}

		released = rows
		return nil
	})
	if err != nil {
		s.logFailure("Release seats failed", err, show.ID, req.UserID)
		return nil, err
	}

	s.log.Info("Seats released",
		zap.String("show_id", show.ID.String()),
		zap.String("user_id", req.UserID),
		zap.Int("seat_count", len(released)),
	)

	seats := make([]response.SeatHoldStatus, len(released))
	for i, row := range released {
		seats[i] = response.SeatHoldStatusFrom(row, 0)
	}

	return &response.ReleaseSeatsResponse{
		ShowID: show.ID.String(),
		Seats:  seats,
	}, nil
}

func (s *holdService) logFailure(msg string, err error, showID uuid.UUID, userID string) {
	fields := []zap.Field{
		zap.Error(err),
		zap.String("show_id", showID.String()),
		zap.String("user_id", userID),
	}
	if resultOf(err) == metrics.ResultError {
		s.log.Error(msg, fields...)
		return
	}
	s.log.Warn(msg, fields...)
}
