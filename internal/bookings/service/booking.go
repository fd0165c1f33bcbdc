package service

import (
	"context"
	"errors"
	"sync"
	"time"

	bookingserrors "clinicbook/internal/bookings/errors"
	"clinicbook/internal/bookings/events"
	"clinicbook/internal/bookings/repository"
	"clinicbook/internal/bookings/schedule"
	"clinicbook/internal/bookings/validator"
	"clinicbook/pkg/config"
	apperrors "clinicbook/pkg/errors"
	"clinicbook/pkg/model"
	"clinicbook/pkg/sanitizer"

	"github.com/google/uuid"
)

const (
	msgSlotConflict      = "A booking already exists in this time frame. Please choose a different time"
	msgMissingID         = "Missing id"
	msgMissingAvailParam = "resource and date required"

	detachedTimeout = 5 * time.Second
)

type BookingService interface {
	Create(ctx context.Context, req *model.CreateBookingRequest) (*model.Booking, error)
	List(ctx context.Context, filter model.BookingFilter) ([]*model.Booking, error)
	Delete(ctx context.Context, id string) error
	Availability(ctx context.Context, resource, date string) ([]model.Slot, error)
	Resources() []string
}

// bookingService serializes admissions and deletions behind mu so the
// conflict check and the insert it guards are atomic. Reads share the lock.
type bookingService struct {
	mu        sync.RWMutex
	store     repository.ScheduleStore
	validator *validator.BookingValidator
	publisher events.Publisher
	cfg       *config.Config
	newID     func() (string, error)
}

func NewBookingService(
	store repository.ScheduleStore,
	validator *validator.BookingValidator,
	publisher events.Publisher,
	cfg *config.Config,
) BookingService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &bookingService{
		store:     store,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
		newID:     newBookingID,
	}
}

// newBookingID returns a UUIDv7, so ids sort in creation order.
func newBookingID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

func (s *bookingService) Create(ctx context.Context, req *model.CreateBookingRequest) (*model.Booking, error) {
	interval, err := s.validator.ValidateCreate(req)
	if err != nil {
		return nil, toAppError(err)
	}

	id, err := s.newID()
	if err != nil {
		return nil, apperrors.Internal("Failed to generate booking id", err)
	}

	booking := &model.Booking{
		ID:          id,
		Resource:    req.Resource,
		Start:       model.NormalizeInstant(interval.Start),
		End:         model.NormalizeInstant(interval.End),
		RequestedBy: sanitizer.TrimAndNormalize(req.RequestedBy),
	}

	if err := s.admit(ctx, booking); err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"resource", booking.Resource,
		"start", model.FormatInstant(booking.Start),
		"end", model.FormatInstant(booking.End),
	)

	s.publish(ctx, events.TypeBookingCreated, booking.ID, func(ctx context.Context) error {
		return s.publisher.BookingCreated(ctx, booking)
	})
	return booking, nil
}

// admit runs the conflict gate and the insert under the write lock. A caller
// that has given up must not leave a booking behind: the context is checked
// before each step and a commit that lands after the deadline is undone.
func (s *bookingService) admit(ctx context.Context, booking *model.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return s.abandoned(booking, err)
	}

	existing, err := s.store.List(ctx, model.BookingFilter{Resource: booking.Resource})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return s.abandoned(booking, ctxErr)
		}
		s.cfg.Log.Error("Failed to load schedule for conflict check", "resource", booking.Resource, "error", err)
		return apperrors.Internal("Failed to create booking", err)
	}

	candidate := schedule.Interval{Start: booking.Start, End: booking.End}
	if schedule.Conflicts(candidate, booking.Resource, existing, s.cfg.BookingBuffer) {
		s.cfg.Log.Info("Booking rejected, slot taken",
			"resource", booking.Resource,
			"start", model.FormatInstant(booking.Start),
			"end", model.FormatInstant(booking.End),
		)
		return apperrors.Conflict(apperrors.CodeSlotConflict, msgSlotConflict).WithCause(bookingserrors.ErrSlotConflict)
	}

	if err := ctx.Err(); err != nil {
		return s.abandoned(booking, err)
	}

	if err := s.store.Insert(ctx, booking); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			// The write may still have reached the backend.
			s.rollback(ctx, booking)
			return s.abandoned(booking, ctxErr)
		}
		s.cfg.Log.Error("Failed to insert booking", "id", booking.ID, "error", err)
		return apperrors.Internal("Failed to create booking", err)
	}

	if err := ctx.Err(); err != nil {
		s.rollback(ctx, booking)
		return s.abandoned(booking, err)
	}
	return nil
}

func (s *bookingService) abandoned(booking *model.Booking, err error) error {
	s.cfg.Log.Warn("Booking abandoned, request context done",
		"id", booking.ID,
		"resource", booking.Resource,
		"error", err,
	)
	return apperrors.RequestTimeout(err)
}

// rollback removes a booking whose request expired mid-commit. It runs on a
// detached context since the request one is already done.
func (s *bookingService) rollback(ctx context.Context, booking *model.Booking) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), detachedTimeout)
	defer cancel()

	if _, err := s.store.Remove(ctx, booking.ID); err != nil {
		s.cfg.Log.Error("Failed to roll back abandoned booking", "id", booking.ID, "error", err)
	}
}

func (s *bookingService) List(ctx context.Context, filter model.BookingFilter) ([]*model.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bookings, err := s.store.List(ctx, filter)
	if err != nil {
		s.cfg.Log.Error("Failed to list bookings", "resource", filter.Resource, "date", filter.Date, "error", err)
		return nil, apperrors.Internal("Failed to retrieve bookings", err)
	}
	return bookings, nil
}

func (s *bookingService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.MissingParameter(msgMissingID).WithCause(bookingserrors.ErrMissingParameter)
	}

	s.mu.Lock()
	if err := ctx.Err(); err != nil {
		s.mu.Unlock()
		return apperrors.RequestTimeout(err)
	}
	removed, err := s.store.Remove(ctx, id)
	s.mu.Unlock()

	if err != nil {
		s.cfg.Log.Error("Failed to delete booking", "id", id, "error", err)
		return apperrors.Internal("Failed to delete booking", err)
	}
	if !removed {
		return apperrors.NotFoundWithID("Booking", id).WithCause(bookingserrors.ErrNotFound)
	}

	s.cfg.Log.Info("Booking deleted successfully", "id", id)

	s.publish(ctx, events.TypeBookingDeleted, id, func(ctx context.Context) error {
		return s.publisher.BookingDeleted(ctx, id)
	})
	return nil
}

func (s *bookingService) Availability(ctx context.Context, resource, date string) ([]model.Slot, error) {
	if resource == "" || date == "" {
		return nil, apperrors.MissingParameter(msgMissingAvailParam).WithCause(bookingserrors.ErrMissingParameter)
	}
	if err := s.validator.ValidateResource(resource); err != nil {
		return nil, toAppError(err)
	}
	dayStart, err := s.validator.ValidateDay(date)
	if err != nil {
		return nil, toAppError(err)
	}

	s.mu.RLock()
	existing, err := s.store.List(ctx, model.BookingFilter{Resource: resource})
	s.mu.RUnlock()
	if err != nil {
		s.cfg.Log.Error("Failed to load schedule for availability", "resource", resource, "error", err)
		return nil, apperrors.Internal("Failed to compute availability", err)
	}

	return schedule.FreeSlots(dayStart, s.cfg.SlotWidth, resource, existing, s.cfg.BookingBuffer), nil
}

func (s *bookingService) Resources() []string {
	return s.validator.Resources()
}

// publish announces a committed change. The change already happened, so a
// broker failure is logged and never returned to the caller.
func (s *bookingService) publish(ctx context.Context, eventType, id string, send func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), detachedTimeout)
	defer cancel()

	if err := send(ctx); err != nil {
		s.cfg.Log.Warn("Failed to publish booking event",
			"event_type", eventType,
			"id", id,
			"error", err,
		)
	}
}

var gateCodes = []struct {
	sentinel error
	code     string
}{
	{bookingserrors.ErrInvalidResource, apperrors.CodeInvalidResource},
	{bookingserrors.ErrInvalidDate, apperrors.CodeInvalidDate},
	{bookingserrors.ErrInvalidOrdering, apperrors.CodeInvalidOrdering},
	{bookingserrors.ErrDurationTooShort, apperrors.CodeDurationTooShort},
	{bookingserrors.ErrDurationTooLong, apperrors.CodeDurationTooLong},
}

// toAppError maps a validator rejection to its client-facing error kind.
func toAppError(err error) error {
	var verr *validator.ValidationError
	if !errors.As(err, &verr) {
		return apperrors.Internal("Failed to validate booking", err)
	}
	for _, g := range gateCodes {
		if errors.Is(verr, g.sentinel) {
			return apperrors.BadRequest(g.code, verr.Message).WithCause(g.sentinel)
		}
	}
	return apperrors.InvalidInput(verr.Message).WithCause(verr)
}
