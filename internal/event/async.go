package event

import (
	"context"
	"errors"
	"time"

	"seat-reservation/pkg/metrics"

	"go.uber.org/zap"
)

const (
	DefaultPublishBuffer  = 1024
	DefaultPublishTimeout = 10 * time.Second
	drainTimeout          = 5 * time.Second
)

// ErrPublishQueueFull is returned when the buffer is full and the event is dropped.
var ErrPublishQueueFull = errors.New("publish queue full")

// AsyncPublisher queues events and hands them to the wrapped publisher on a
// single background goroutine, so a slow broker never delays the caller.
type AsyncPublisher struct {
	next    Publisher
	queue   chan BookingConfirmed
	timeout time.Duration
	metrics *metrics.Metrics
	log     *zap.Logger
}

func NewAsyncPublisher(next Publisher, buffer int, m *metrics.Metrics, log *zap.Logger) *AsyncPublisher {
	if buffer <= 0 {
		buffer = DefaultPublishBuffer
	}
	return &AsyncPublisher{
		next:    next,
		queue:   make(chan BookingConfirmed, buffer),
		timeout: DefaultPublishTimeout,
		metrics: m,
		log:     log.With(zap.String("publisher", "async")),
	}
}

// PublishBookingConfirmed enqueues ev without blocking.
func (p *AsyncPublisher) PublishBookingConfirmed(_ context.Context, ev BookingConfirmed) error {
	select {
	case p.queue <- ev:
		return nil
	default:
		return ErrPublishQueueFull
	}
}

// Run delivers queued events until ctx is done, then drains what is left
// within a bounded time.
func (p *AsyncPublisher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			p.drain()
			return nil
		case ev := <-p.queue:
			p.deliver(context.Background(), ev)
		}
	}
}

func (p *AsyncPublisher) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()

	for {
		select {
		case ev := <-p.queue:
			if ctx.Err() != nil {
				p.log.Warn("Dropping queued event on shutdown", zap.String("booking_id", ev.BookingID))
				p.metrics.IncPublishFailure()
				continue
			}
			p.deliver(ctx, ev)
		default:
			return
		}
	}
}

func (p *AsyncPublisher) deliver(ctx context.Context, ev BookingConfirmed) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.next.PublishBookingConfirmed(ctx, ev); err != nil {
		p.metrics.IncPublishFailure()
		p.log.Error("Failed to publish booking confirmed event",
			zap.Error(err),
			zap.String("booking_id", ev.BookingID),
			zap.String("correlation_id", ev.CorrelationID),
		)
	}
}
