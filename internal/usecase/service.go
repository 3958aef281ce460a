package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"seat-reservation/internal/data/entity"
	"seat-reservation/internal/data/repository"
	"seat-reservation/internal/event"
	"seat-reservation/internal/notification"
	"seat-reservation/pkg/metrics"
	"seat-reservation/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Dependencies are the collaborators shared by the services. Zero values
// are usable: no events, no reminders, no metrics, the wall clock.
type Dependencies struct {
	Publisher          event.Publisher
	ReminderSender     notification.ReminderSender
	Metrics            *metrics.Metrics
	Clock              func() time.Time
	DefaultHoldMinutes int
	SweepInterval      time.Duration
	Reminder           utils.ReminderConfig
}

func (d Dependencies) clock() func() time.Time {
	if d.Clock != nil {
		return d.Clock
	}
	return time.Now
}

type Service struct {
	Hold     HoldService
	Booking  BookingService
	SeatMap  SeatMapService
	Sweeper  *ExpirySweeper
	Reminder *ReminderScheduler
}

func NewService(repo *repository.Repository, deps Dependencies, log *zap.Logger) *Service {
	return &Service{
		Hold:     NewHoldService(repo, deps, log),
		Booking:  NewBookingService(repo, deps, log),
		SeatMap:  NewSeatMapService(repo, deps, log),
		Sweeper:  NewExpirySweeper(repo.Inventory, deps, log),
		Reminder: NewReminderScheduler(repo, deps, log),
	}
}

// loadShow resolves the show id of a request, with its theatre.
func loadShow(ctx context.Context, catalog repository.CatalogReader, showID string) (*entity.Show, error) {
	id, err := uuid.Parse(showID)
	if err != nil {
		return nil, newValidationError(map[string]string{"showId": "Must be a valid UUID"})
	}

	show, err := catalog.FindShowByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find show: %w", err)
	}
	if show == nil {
		return nil, fmt.Errorf("show %s %w", showID, ErrNotFound)
	}
	return show, nil
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case errors.Is(err, ErrSeatConflict), errors.Is(err, ErrNoValidHold), errors.Is(err, ErrAlreadyBooked):
		return metrics.ResultConflict
	case errors.Is(err, ErrValidation), errors.Is(err, ErrNotFound), errors.Is(err, ErrInvalidSeats):
		return metrics.ResultRejected
	default:
		return metrics.ResultError
	}
}
