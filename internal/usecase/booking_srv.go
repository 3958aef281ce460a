package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"seat-reservation/internal/data/entity"
	"seat-reservation/internal/data/repository"
	"seat-reservation/internal/dto/request"
	"seat-reservation/internal/dto/response"
	"seat-reservation/internal/event"
	"seat-reservation/pkg/metrics"
	"seat-reservation/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BookingService interface {
	ConfirmBooking(ctx context.Context, req *request.ConfirmBookingRequest) (*response.ConfirmBookingResponse, error)
	GetBookingByID(ctx context.Context, bookingID string) (*response.BookingDetailResponse, error)
}

type bookingService struct {
	catalog   repository.CatalogReader
	inventory repository.InventoryStore
	bookings  repository.BookingRepository
	locker    seatLocker
	publisher event.Publisher
	metrics   *metrics.Metrics
	now       func() time.Time
	reference func(time.Time) string
	log       *zap.Logger
}

// referenceAttempts bounds how often a confirm is retried after its
// generated reference collided with an existing booking.
const referenceAttempts = 3

func NewBookingService(repo *repository.Repository, deps Dependencies, log *zap.Logger) BookingService {
	log = log.With(zap.String("service", "booking"))

	publisher := deps.Publisher
	if publisher == nil {
		publisher = event.NopPublisher{}
	}

	return &bookingService{
		catalog:   repo.Catalog,
		inventory: repo.Inventory,
		bookings:  repo.Booking,
		locker:    seatLocker{log: log},
		publisher: publisher,
		metrics:   deps.Metrics,
		now:       deps.clock(),
		reference: utils.GenerateBookingReference,
		log:       log,
	}
}

// ==================== CONFIRM ====================

func (s *bookingService) ConfirmBooking(ctx context.Context, req *request.ConfirmBookingRequest) (*response.ConfirmBookingResponse, error) {
	start := time.Now()
	resp, err := s.confirmBooking(ctx, req)
	s.metrics.ObserveOperation("confirm", resultOf(err), time.Since(start).Seconds(), len(req.SeatIDs))
	return resp, err
}

func (s *bookingService) confirmBooking(ctx context.Context, req *request.ConfirmBookingRequest) (*response.ConfirmBookingResponse, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)

	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Confirm booking validation failed", zap.Any("errors", errs))
		return nil, newValidationError(errs)
	}

	seatIDs, err := parseSeatIDs(req.SeatIDs)
	if err != nil {
		return nil, err
	}

	show, err := loadShow(ctx, s.catalog, req.ShowID)
	if err != nil {
		return nil, err
	}

	booking := &entity.Booking{
		BaseSimple:  entity.BaseSimple{ID: utils.GenerateUUID()},
		ShowID:      show.ID,
		UserID:      req.UserID,
		Email:       optional(req.Email),
		PhoneNumber: optional(req.PhoneNumber),
		Status:      entity.BookingStatusConfirmed,
		SeatsBooked: len(seatIDs),
		SeatIDs:     seatIDs,
	}

	for attempt := 1; ; attempt++ {
		err = s.commitBooking(ctx, show, booking, seatIDs)
		if !errors.Is(err, repository.ErrDuplicateReference) || attempt == referenceAttempts {
			break
		}
		s.log.Warn("Booking reference taken, retrying",
			zap.String("reference", booking.Reference),
			zap.Int("attempt", attempt),
		)
	}
	// the unique constraint can fire on insert or at commit
	if errors.Is(err, repository.ErrDuplicateBookingSeat) {
		err = fmt.Errorf("%w: %v", ErrAlreadyBooked, err)
	}
	if err != nil {
		fields := []zap.Field{
			zap.Error(err),
			zap.String("show_id", show.ID.String()),
			zap.String("user_id", req.UserID),
		}
		if resultOf(err) == metrics.ResultError {
			s.log.Error("Confirm booking failed", fields...)
		} else {
			s.log.Warn("Confirm booking rejected", fields...)
		}
		return nil, err
	}

	s.log.Info("Booking confirmed",
		zap.String("booking_id", booking.ID.String()),
		zap.String("reference", booking.Reference),
		zap.String("show_id", show.ID.String()),
		zap.String("user_id", req.UserID),
		zap.Int("seat_count", booking.SeatsBooked),
	)

	s.publishConfirmed(ctx, show, booking)

	return &response.ConfirmBookingResponse{
		BookingID: booking.ID.String(),
		Reference: booking.Reference,
		ShowID:    show.ID.String(),
		SeatIDs:   response.UUIDStrings(seatIDs),
		Status:    booking.Status,
	}, nil
}

// commitBooking runs one confirm transaction with a freshly generated
// reference: every seat must carry the user's live hold.
func (s *bookingService) commitBooking(ctx context.Context, show *entity.Show, booking *entity.Booking, seatIDs []uuid.UUID) error {
	return s.inventory.WithinTx(ctx, func(ctx context.Context, tx repository.InventoryTx) error {
		rows, err := s.locker.acquire(ctx, tx, show, seatIDs)
		if err != nil {
			return err
		}

		now := s.now()
		for _, row := range rows {
			if !row.IsHeldBy(booking.UserID, now) {
				s.log.Warn("Seat has no valid hold for user",
					zap.String("show_id", show.ID.String()),
					zap.String("seat_id", row.SeatID.String()),
					zap.String("user_id", booking.UserID),
					zap.String("status", string(row.Status)),
				)
				return ErrNoValidHold
			}
		}

		booking.CreatedAt = now
		booking.Reference = s.reference(now)

		seats := make([]*entity.BookingSeat, len(rows))
		for i, row := range rows {
			seats[i] = &entity.BookingSeat{
				BaseSimple: entity.BaseSimple{ID: utils.GenerateUUID(), CreatedAt: now},
				BookingID:  booking.ID,
				ShowID:     show.ID,
				SeatID:     row.SeatID,
			}
		}
		if err := tx.InsertBooking(ctx, booking, seats); err != nil {
			return fmt.Errorf("insert booking: %w", err)
		}

		for _, row := range rows {
			row.Book(now)
		}
		if err := tx.SaveShowSeats(ctx, rows); err != nil {
			return fmt.Errorf("save booked seats: %w", err)
		}

		if err := tx.DecrementAvailableSeats(ctx, show.ID, len(rows)); err != nil {
			return fmt.Errorf("decrement available seats: %w", err)
		}
		return nil
	})
}

// publishConfirmed runs after commit. Nothing it does can change the
// outcome of the booking.
func (s *bookingService) publishConfirmed(ctx context.Context, show *entity.Show, booking *entity.Booking) {
	ctx = context.WithoutCancel(ctx)

	ev := event.BookingConfirmed{
		BookingID:     booking.ID.String(),
		Reference:     booking.Reference,
		ShowID:        show.ID.String(),
		UserID:        booking.UserID,
		Email:         deref(booking.Email),
		PhoneNumber:   deref(booking.PhoneNumber),
		MovieTitle:    show.MovieTitle,
		ShowStartTime: show.StartTime,
		ConfirmedAt:   booking.CreatedAt,
		CorrelationID: utils.GetCorrelationIDFromContext(ctx),
	}
	if show.Theatre != nil {
		ev.TheatreName = show.Theatre.Name
		ev.TheatreCity = show.Theatre.City
	}
	ev.Seats = s.seatInfo(ctx, booking.SeatIDs)

	if err := s.publisher.PublishBookingConfirmed(ctx, ev); err != nil {
		s.metrics.IncPublishFailure()
		s.log.Error("Failed to publish booking confirmed event",
			zap.Error(err),
			zap.String("booking_id", ev.BookingID),
		)
	}
}

// seatInfo resolves seat labels; a failed lookup degrades to bare ids.
func (s *bookingService) seatInfo(ctx context.Context, seatIDs []uuid.UUID) []event.SeatInfo {
	byID := make(map[uuid.UUID]*entity.Seat, len(seatIDs))
	seats, err := s.catalog.FindSeatsByIDs(ctx, seatIDs)
	if err != nil {
		s.log.Warn("Failed to load seat labels", zap.Error(err))
	}
	for _, seat := range seats {
		byID[seat.ID] = seat
	}

	out := make([]event.SeatInfo, len(seatIDs))
	for i, id := range seatIDs {
		out[i] = event.SeatInfo{SeatID: id.String()}
		if seat, ok := byID[id]; ok {
			out[i].RowLabel = seat.RowLabel
			out[i].SeatNumber = seat.SeatNumber
			out[i].SeatType = string(seat.SeatType)
		}
	}
	return out
}

// ==================== QUERY ====================

func (s *bookingService) GetBookingByID(ctx context.Context, bookingID string) (*response.BookingDetailResponse, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, newValidationError(map[string]string{"id": "Must be a valid UUID"})
	}

	booking, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to get booking", zap.Error(err), zap.String("booking_id", bookingID))
		return nil, fmt.Errorf("find booking: %w", err)
	}
	if booking == nil {
		return nil, fmt.Errorf("booking %s %w", bookingID, ErrNotFound)
	}

	return response.BookingToDetailResponse(booking), nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
