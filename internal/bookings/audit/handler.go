// Package audit turns booking events into a structured audit trail.
package audit

import (
	"context"
	"fmt"

	"clinicbook/internal/bookings/events"
	"clinicbook/pkg/kafka"
	"clinicbook/pkg/logger"
)

// NewHandler returns a consumer handler that writes one audit line per
// booking event. Unknown event types and malformed payloads are permanent
// failures and end up in the DLQ.
func NewHandler(log *logger.Logger) kafka.MessageHandler {
	return func(ctx context.Context, msg kafka.Message) error {
		var event events.BookingEvent
		if err := msg.DecodeValue(&event); err != nil {
			return err
		}
		if event.BookingID == "" {
			return kafka.NewPermanentError("invalid message: booking_id missing", nil)
		}

		switch event.EventType {
		case events.TypeBookingCreated:
			log.Info("AUDIT booking created",
				"booking_id", event.BookingID,
				"resource", event.Resource,
				"start", event.Start,
				"end", event.End,
				"requested_by", event.RequestedBy,
				"occurred_at", event.OccurredAt,
				"event_id", msg.GetEventID(),
				"correlation_id", msg.GetCorrelationID(),
			)
		case events.TypeBookingDeleted:
			log.Info("AUDIT booking deleted",
				"booking_id", event.BookingID,
				"occurred_at", event.OccurredAt,
				"event_id", msg.GetEventID(),
				"correlation_id", msg.GetCorrelationID(),
			)
		default:
			return kafka.NewPermanentError(fmt.Sprintf("invalid message: unknown event type %q", event.EventType), nil)
		}
		return nil
	}
}
