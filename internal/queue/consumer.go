package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// LogFile is the name of the file, inside the configured directory, that
// booking events are appended to.
const LogFile = "booking.log"

const maxBackoff = 30 * time.Second

// Consumer reads BookingQueue and appends one line per event to
// <Dir>/booking.log.
type Consumer struct {
	URL string
	Dir string
}

// Run connects to the broker and consumes until ctx is cancelled.  Dial
// failures are retried with a doubling delay capped at 30s; a closed
// delivery channel triggers a reconnect.  Run returns ctx.Err() on
// shutdown.
func (c *Consumer) Run(ctx context.Context) error {
	delay := time.Second
	for {
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			log.Printf("booking-consumer: dial broker: %v; retrying in %s", err, delay)
			if !sleep(ctx, delay) {
				return ctx.Err()
			}
			delay = min(delay*2, maxBackoff)
			continue
		}
		delay = time.Second

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Printf("booking-consumer: consume loop ended: %v; reconnecting", err)
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
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

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("booking-consumer: set QoS: %v", err)
	}
	if _, err := ch.QueueDeclare(BookingQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.ConsumeWithContext(ctx, BookingQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := handleMessage(c.Dir, d.Body); err != nil {
				log.Printf("booking-consumer: handle message: %v", err)
				_ = d.Nack(false, false) // drop, requeueing a bad payload would loop
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func handleMessage(dir string, body []byte) error {
	var ev BookingCreatedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.BookingID == "" {
		return errors.New("event has no booking_id")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	f, err := os.OpenFile(filepath.Join(dir, LogFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(formatLine(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

func formatLine(ev BookingCreatedEvent) string {
	return fmt.Sprintf("[%s] Booking created | booking_id=%s | user_id=%s | hotel_id=%s | room_id=%s | stay=%s..%s | guests=%d | total=%.2f | payment=%q\n",
		ev.CreatedAt.UTC().Format(time.RFC3339), ev.BookingID, ev.UserID, ev.HotelID, ev.RoomID,
		ev.CheckInDate.Format(time.DateOnly), ev.CheckOutDate.Format(time.DateOnly),
		ev.Guests, ev.TotalPrice, ev.PaymentMethod)
}
