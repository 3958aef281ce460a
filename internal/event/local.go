package event

import (
	"context"

	"go.uber.org/zap"
)

// LocalPublisher delivers events to an in-process handler.
type LocalPublisher struct {
	handler Handler
	log     *zap.Logger
}

func NewLocalPublisher(handler Handler, log *zap.Logger) *LocalPublisher {
	return &LocalPublisher{
		handler: handler,
		log:     log.With(zap.String("publisher", "local")),
	}
}

func (p *LocalPublisher) PublishBookingConfirmed(ctx context.Context, ev BookingConfirmed) error {
	p.log.Debug("Booking confirmed event published",
		zap.String("booking_id", ev.BookingID),
		zap.String("correlation_id", ev.CorrelationID),
	)
	return p.handler(ctx, ev)
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) PublishBookingConfirmed(context.Context, BookingConfirmed) error { return nil }
