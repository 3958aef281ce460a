package notification

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"seat-reservation/internal/event"

	"go.uber.org/zap"
)

// Dispatcher fans one event out to every notifier, each on its own
// goroutine. A failing or panicking notifier never affects the others.
type Dispatcher struct {
	notifiers []Notifier
	log       *zap.Logger
	wg        sync.WaitGroup
}

func NewDispatcher(log *zap.Logger, notifiers ...Notifier) *Dispatcher {
	return &Dispatcher{
		notifiers: notifiers,
		log:       log.With(zap.String("service", "notification")),
	}
}

// Dispatch starts the deliveries and returns immediately. It satisfies
// event.Handler.
func (d *Dispatcher) Dispatch(ctx context.Context, ev event.BookingConfirmed) error {
	ctx = context.WithoutCancel(ctx)

	d.log.Info("Dispatching booking notifications",
		zap.String("booking_id", ev.BookingID),
		zap.Bool("has_email", ev.Email != ""),
		zap.Bool("has_phone", ev.PhoneNumber != ""),
		zap.String("correlation_id", ev.CorrelationID),
	)

	for _, n := range d.notifiers {
		d.wg.Add(1)
		go func(n Notifier) {
			defer d.wg.Done()
			d.deliver(ctx, n, ev)
		}(n)
	}
	return nil
}

func (d *Dispatcher) deliver(ctx context.Context, n Notifier, ev event.BookingConfirmed) {
	log := d.log.With(zap.String("notifier", n.Name()), zap.String("booking_id", ev.BookingID))

	err := func() (err error) {
		defer func() {
			if p := recover(); p != nil {
				err = fmt.Errorf("notifier panic: %v", p)
			}
		}()
		return n.NotifyBookingConfirmed(ctx, ev)
	}()

	switch {
	case err == nil:
		log.Info("Notification sent")
	case errors.Is(err, ErrSkipped):
		log.Warn("Notification skipped", zap.Error(err))
	default:
		log.Error("Notification failed", zap.Error(err))
	}
}

// Wait blocks until every started delivery has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
