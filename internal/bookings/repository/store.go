package repository

import (
	"context"

	"clinicbook/pkg/model"
)

// ScheduleStore owns the booking records. It performs no conflict checks:
// callers must prove a booking admissible before Insert.
type ScheduleStore interface {
	Insert(ctx context.Context, booking *model.Booking) error
	// Remove reports whether a booking with id existed.
	Remove(ctx context.Context, id string) (bool, error)
	// List returns copies sorted by start ascending.
	List(ctx context.Context, filter model.BookingFilter) ([]*model.Booking, error)
}
