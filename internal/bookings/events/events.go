// Package events announces booking changes to downstream consumers.
package events

import (
	"context"
	"time"

	"clinicbook/pkg/model"
)

const (
	TypeBookingCreated = "booking.created"
	TypeBookingDeleted = "booking.deleted"

	SchemaVersion = "1"
)

// BookingEvent is the JSON payload carried on the bookings topic.
// Deleted events only carry the booking id and the occurrence time.
type BookingEvent struct {
	EventType   string `json:"event_type"`
	BookingID   string `json:"booking_id"`
	Resource    string `json:"resource,omitempty"`
	Start       string `json:"start,omitempty"`
	End         string `json:"end,omitempty"`
	RequestedBy string `json:"requested_by,omitempty"`
	OccurredAt  string `json:"occurred_at"`
}

func createdEvent(b *model.Booking, now time.Time) BookingEvent {
	return BookingEvent{
		EventType:   TypeBookingCreated,
		BookingID:   b.ID,
		Resource:    b.Resource,
		Start:       model.FormatInstant(b.Start),
		End:         model.FormatInstant(b.End),
		RequestedBy: b.RequestedBy,
		OccurredAt:  model.FormatInstant(now),
	}
}

func deletedEvent(id string, now time.Time) BookingEvent {
	return BookingEvent{
		EventType:  TypeBookingDeleted,
		BookingID:  id,
		OccurredAt: model.FormatInstant(now),
	}
}

type Publisher interface {
	BookingCreated(ctx context.Context, booking *model.Booking) error
	BookingDeleted(ctx context.Context, id string) error
	Close() error
}

// NoopPublisher is used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) BookingCreated(context.Context, *model.Booking) error { return nil }
func (NoopPublisher) BookingDeleted(context.Context, string) error         { return nil }
func (NoopPublisher) Close() error                                         { return nil }
