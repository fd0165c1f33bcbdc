package validator

import (
	"fmt"
	"time"

	bookingserrors "clinicbook/internal/bookings/errors"
	"clinicbook/internal/bookings/schedule"
	"clinicbook/pkg/logger"
	"clinicbook/pkg/model"

	"github.com/go-playground/validator/v10"
)

const (
	tagResource = "resource"
	tagInstant  = "instant"
)

// ValidationError names the rejected field and carries the user-facing
// message. It unwraps to one of the booking sentinel errors.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (v *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

func (v *ValidationError) Unwrap() error {
	return v.Err
}

type BookingValidator struct {
	validate    *validator.Validate
	resources   []string
	allowed     map[string]bool
	minDuration time.Duration
	maxDuration time.Duration
	logger      *logger.Logger
}

func NewBookingValidator(resources []string, minDuration, maxDuration time.Duration, log *logger.Logger) *BookingValidator {
	allowed := make(map[string]bool, len(resources))
	for _, r := range resources {
		allowed[r] = true
	}

	v := validator.New()
	if err := v.RegisterValidation(tagResource, func(fl validator.FieldLevel) bool {
		return allowed[fl.Field().String()]
	}); err != nil {
		log.Fatal("Failed to register 'resource' validator", "error", err)
	}
	if err := v.RegisterValidation(tagInstant, func(fl validator.FieldLevel) bool {
		_, err := model.ParseInstant(fl.Field().String())
		return err == nil
	}); err != nil {
		log.Fatal("Failed to register 'instant' validator", "error", err)
	}

	log.Info("Booking validator initialized successfully",
		"resources", resources,
		"min_duration", minDuration,
		"max_duration", maxDuration,
	)

	return &BookingValidator{
		validate:    v,
		resources:   append([]string(nil), resources...),
		allowed:     allowed,
		minDuration: minDuration,
		maxDuration: maxDuration,
		logger:      log,
	}
}

// ValidateCreate runs the structural admission gates in order and stops at
// the first failure: resource, instants, ordering, duration. The conflict
// gate needs the live schedule and is applied by the caller.
func (v *BookingValidator) ValidateCreate(req *model.CreateBookingRequest) (schedule.Interval, error) {
	if err := v.ValidateResource(req.Resource); err != nil {
		return schedule.Interval{}, err
	}

	if v.validate.Var(req.Start, "required,"+tagInstant) != nil {
		return schedule.Interval{}, invalidDate("Start")
	}
	if v.validate.Var(req.End, "required,"+tagInstant) != nil {
		return schedule.Interval{}, invalidDate("End")
	}
	start, _ := model.ParseInstant(req.Start)
	end, _ := model.ParseInstant(req.End)

	if !end.After(start) {
		return schedule.Interval{}, &ValidationError{
			Field:   "End",
			Message: "End time can't be before the start time",
			Err:     bookingserrors.ErrInvalidOrdering,
		}
	}

	duration := end.Sub(start)
	if duration < v.minDuration {
		return schedule.Interval{}, &ValidationError{
			Field:   "End",
			Message: "Minimum duration is " + describe(v.minDuration),
			Err:     bookingserrors.ErrDurationTooShort,
		}
	}
	if duration > v.maxDuration {
		return schedule.Interval{}, &ValidationError{
			Field:   "End",
			Message: "Maximum duration is " + describe(v.maxDuration),
			Err:     bookingserrors.ErrDurationTooLong,
		}
	}

	return schedule.Interval{Start: start, End: end}, nil
}

func (v *BookingValidator) ValidateResource(resource string) error {
	if err := v.validate.Var(resource, "required,"+tagResource); err != nil {
		return &ValidationError{
			Field:   "Resource",
			Message: "Invalid resource",
			Err:     bookingserrors.ErrInvalidResource,
		}
	}
	return nil
}

// ValidateDay parses a YYYY-MM-DD calendar day into its UTC midnight.
func (v *BookingValidator) ValidateDay(date string) (time.Time, error) {
	day, err := model.ParseDate(date)
	if err != nil {
		return time.Time{}, invalidDate("Date")
	}
	return day, nil
}

// Resources returns the bookable resource names in configuration order.
func (v *BookingValidator) Resources() []string {
	return append([]string(nil), v.resources...)
}

func invalidDate(field string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: "Invalid date",
		Err:     bookingserrors.ErrInvalidDate,
	}
}

// describe renders a duration the way the user-facing messages phrase it,
// e.g. "15 minutes" or "2 hours".
func describe(d time.Duration) string {
	if d >= time.Hour && d%time.Hour == 0 {
		return plural(int(d/time.Hour), "hour")
	}
	return plural(int(d/time.Minute), "minute")
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
