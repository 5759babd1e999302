// Package service holds adapters from the booking workflow to external
// systems.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/hotel-booking/internal/model"
	"github.com/iliyamo/hotel-booking/internal/queue"
)

// QueuePublisher publishes booking events to RabbitMQ.  It dials the broker
// for every event, so a broker outage never outlives the request that hit
// it.  It satisfies booking.Publisher.
type QueuePublisher struct {
	URL string
}

// NewQueuePublisher returns nil when url is empty, which disables events.
func NewQueuePublisher(url string) *QueuePublisher {
	if url == "" {
		return nil
	}
	return &QueuePublisher{URL: url}
}

// BookingCreated publishes a persistent BookingCreatedEvent to
// queue.BookingQueue through the default exchange.
func (p *QueuePublisher) BookingCreated(ctx context.Context, b *model.Booking) error {
	body, err := json.Marshal(queue.NewBookingCreatedEvent(b))
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	conn, err := amqp.Dial(p.URL)
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(
		queue.BookingQueue, // name
		true,               // durable
		false,              // autoDelete
		false,              // exclusive
		false,              // noWait
		nil,                // args
	); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    b.ID,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queue.BookingQueue, false, false, pub); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}
