package event

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// DialTimeout bounds the TCP connect and the AMQP handshake.
const DialTimeout = 5 * time.Second

func dial(url string, timeout time.Duration) (*amqp.Connection, error) {
	return amqp.DialConfig(url, amqp.Config{
		Dial:      amqp.DefaultDial(timeout),
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
	})
}

// AMQPPublisher publishes persistent JSON messages to the booking.confirmed
// queue over one long-lived connection, reopened on demand.
type AMQPPublisher struct {
	url         string
	dialTimeout time.Duration
	log         *zap.Logger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewAMQPPublisher(url string, log *zap.Logger) *AMQPPublisher {
	return &AMQPPublisher{
		url:         url,
		dialTimeout: DialTimeout,
		log:         log.With(zap.String("publisher", "amqp")),
	}
}

func (p *AMQPPublisher) PublishBookingConfirmed(ctx context.Context, ev BookingConfirmed) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal booking confirmed event: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp.Persistent,
		Timestamp:     time.Now().UTC(),
		MessageId:     ev.BookingID,
		CorrelationId: ev.CorrelationID,
		Body:          body,
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// one retry on a fresh channel covers a broker restart between publishes
	for attempt := 0; attempt < 2; attempt++ {
		ch, err := p.channel()
		if err != nil {
			return err
		}

		err = ch.PublishWithContext(ctx, "", BookingConfirmedQueue, false, false, msg)
		if err == nil {
			p.log.Debug("Booking confirmed event published",
				zap.String("booking_id", ev.BookingID),
				zap.String("correlation_id", ev.CorrelationID),
			)
			return nil
		}

		p.log.Warn("Publish failed, resetting channel", zap.Error(err), zap.Int("attempt", attempt+1))
		p.reset()
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("publish booking confirmed: %w", err)
		}
	}

	return fmt.Errorf("publish booking confirmed %s: retries exhausted", ev.BookingID)
}

// channel returns an open channel with the queue declared. Caller holds p.mu.
func (p *AMQPPublisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}

	if p.conn == nil || p.conn.IsClosed() {
		conn, err := dial(p.url, p.dialTimeout)
		if err != nil {
			return nil, fmt.Errorf("dial broker: %w", err)
		}
		p.conn = conn
	}

	ch, err := p.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := declareQueue(ch); err != nil {
		_ = ch.Close()
		return nil, err
	}

	p.ch = ch
	return ch, nil
}

func (p *AMQPPublisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
	return nil
}

func declareQueue(ch *amqp.Channel) error {
	_, err := ch.QueueDeclare(
		BookingConfirmedQueue, // name
		true,                  // durable
		false,                 // autoDelete
		false,                 // exclusive
		false,                 // noWait
		nil,                   // args
	)
	if err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	return nil
}

// ==================== CONSUMER ====================

// Consumer reads booking.confirmed and hands each event to the handler.
// Malformed or failing messages are rejected without requeue.
type Consumer struct {
	url     string
	handler Handler
	log     *zap.Logger
}

func NewConsumer(url string, handler Handler, log *zap.Logger) *Consumer {
	return &Consumer{
		url:     url,
		handler: handler,
		log:     log.With(zap.String("consumer", BookingConfirmedQueue)),
	}
}

// Run reconnects with exponential backoff until ctx is done.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := dial(c.url, DialTimeout)
		if err != nil {
			c.log.Warn("Failed to dial broker", zap.Error(err), zap.Duration("retry_in", backoff))
			if !sleepCtx(ctx, backoff) {
				return nil
			}
			backoff = min(backoff*2, 30*time.Second)
			continue
		}
		backoff = time.Second

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return nil
		}
		c.log.Warn("Consume loop ended, reconnecting", zap.Error(err))
		if !sleepCtx(ctx, 2*time.Second) {
			return nil
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.log.Warn("Set QoS failed", zap.Error(err))
	}

	if err := declareQueue(ch); err != nil {
		return err
	}

	msgs, err := ch.Consume(BookingConfirmedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	c.log.Info("Consuming booking confirmed events")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.handle(ctx, d.Body); err != nil {
				c.log.Error("Handle message failed", zap.Error(err), zap.String("message_id", d.MessageId))
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, body []byte) error {
	var ev BookingConfirmed
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	return c.handler(ctx, ev)
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
