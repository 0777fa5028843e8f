package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/iliyamo/hotel-booking/internal/queue"
)

// EventPublisher emits booking events.  Failures are reported to the caller,
// which treats them as non-fatal.
type EventPublisher interface {
	PublishBookingCreated(ctx context.Context, ev queue.BookingCreatedEvent) error
}

// NoopPublisher drops every event.  Used when EVENTS_ENABLED is false.
type NoopPublisher struct{}

func (NoopPublisher) PublishBookingCreated(context.Context, queue.BookingCreatedEvent) error {
	return nil
}

// AMQPPublisher publishes persistent JSON messages to a durable queue on
// the default exchange.  It dials per publish and sits behind a circuit
// breaker so a dead broker costs one fast failure instead of a dial timeout
// on every booking.
type AMQPPublisher struct {
	url   string
	queue string
	cb    *gobreaker.CircuitBreaker
	log   zerolog.Logger
}

// NewAMQPPublisher returns a publisher for url/queueName.
func NewAMQPPublisher(url, queueName string, log zerolog.Logger) *AMQPPublisher {
	p := &AMQPPublisher{url: url, queue: queueName, log: log}
	p.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "amqp-publisher",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(c gobreaker.Counts) bool { return c.ConsecutiveFailures >= 3 },
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	})
	return p
}

// PublishBookingCreated sends ev.  When the breaker is open it returns
// gobreaker.ErrOpenState without touching the network.
func (p *AMQPPublisher) PublishBookingCreated(ctx context.Context, ev queue.BookingCreatedEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = p.cb.Execute(func() (interface{}, error) {
		return nil, p.publish(ctx, body)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			p.log.Debug().Str("booking_id", ev.BookingID).Msg("rabbitmq: breaker open, event dropped")
		} else {
			p.log.Warn().Err(err).Str("booking_id", ev.BookingID).Msg("rabbitmq: publish failed")
		}
		return err
	}
	return nil
}

func (p *AMQPPublisher) publish(ctx context.Context, body []byte) error {
	conn, err := amqp.DialConfig(p.url, amqp.Config{Dial: amqp.DefaultDial(3 * time.Second)})
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	// Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		return err
	}
	return ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
}
