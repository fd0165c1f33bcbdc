package events

import (
	"context"
	"fmt"
	"time"

	"clinicbook/pkg/kafka"
	"clinicbook/pkg/logger"
	"clinicbook/pkg/middleware"
	"clinicbook/pkg/model"
)

// MessagePublisher is satisfied by *kafka.Producer.
type MessagePublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	producer MessagePublisher
	source   string
	log      *logger.Logger
	now      func() time.Time
}

func NewKafkaPublisher(producer MessagePublisher, source string, log *logger.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		producer: producer,
		source:   source,
		log:      log,
		now:      time.Now,
	}
}

func (p *KafkaPublisher) BookingCreated(ctx context.Context, booking *model.Booking) error {
	now := p.now()
	return p.publish(ctx, booking.ID, createdEvent(booking, now), now)
}

func (p *KafkaPublisher) BookingDeleted(ctx context.Context, id string) error {
	now := p.now()
	return p.publish(ctx, id, deletedEvent(id, now), now)
}

// publish stamps the record with the event's occurrence time so the Kafka
// timestamp and occurred_at agree.
func (p *KafkaPublisher) publish(ctx context.Context, key string, event BookingEvent, occurredAt time.Time) error {
	msg, err := kafka.NewMessage().
		WithKey(key).
		WithValue(event).
		WithEventType(event.EventType).
		WithSource(p.source).
		WithSchemaVersion(SchemaVersion).
		WithCorrelationID(middleware.RequestIDFromContext(ctx)).
		WithTimestamp(occurredAt).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build %s event: %w", event.EventType, err)
	}

	if err := p.producer.Publish(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.EventType, err)
	}

	p.log.Debug("Booking event published",
		"event_type", event.EventType,
		"booking_id", event.BookingID,
		"event_id", msg.GetEventID(),
	)
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
