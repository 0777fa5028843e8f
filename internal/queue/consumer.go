// Package queue contains the background consumer that listens to the
// booking.created queue and appends one record per booking to the booking
// log.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// StartBookingConsumer connects to url, declares the queue (durable) and
// writes every delivered BookingCreatedEvent to sink.  It reconnects with
// exponential backoff and returns ctx.Err() once ctx is cancelled.  Messages
// that fail to decode are rejected without requeue so a poison message
// cannot spin the loop.
func StartBookingConsumer(ctx context.Context, url, queueName string, log, sink zerolog.Logger) error {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Warn().Err(err).Dur("retry_in", backoff).Msg("booking-consumer: failed to dial broker")
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = consumeLoop(ctx, conn, queueName, log, sink)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warn().Err(err).Msg("booking-consumer: consume loop ended; reconnecting")
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, queueName string, log, sink zerolog.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Warn().Err(err).Msg("booking-consumer: set QoS failed")
	}
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(queueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}
	log.Info().Str("queue", queueName).Msg("booking-consumer: consuming")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := handleMessage(d.Body, sink); err != nil {
				log.Error().Err(err).Msg("booking-consumer: handle message failed")
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func handleMessage(body []byte, sink zerolog.Logger) error {
	var ev BookingCreatedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.BookingID == "" {
		return errors.New("event without booking_id")
	}
	sink.Info().
		Str("booking_id", ev.BookingID).
		Str("user_id", ev.UserID).
		Str("hotel_id", ev.HotelID).
		Str("hotel", ev.HotelName).
		Str("city", ev.City).
		Str("check_in", ev.CheckInDate).
		Str("check_out", ev.CheckOutDate).
		Str("room_type", ev.RoomType).
		Int("persons", ev.PersonCount).
		Float64("total", ev.TotalPrice).
		Str("created_at", ev.CreatedAt).
		Msg("Booking created")
	return nil
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
