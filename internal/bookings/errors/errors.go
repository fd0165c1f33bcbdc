package errors

import "errors"

var (
	ErrInvalidResource = errors.New("resource is not bookable")

	ErrInvalidDate = errors.New("instant cannot be parsed")

	ErrInvalidOrdering = errors.New("end time must be after start time")

	ErrDurationTooShort = errors.New("booking shorter than minimum duration")

	ErrDurationTooLong = errors.New("booking longer than maximum duration")

	ErrSlotConflict = errors.New("booking overlaps an existing booking")

	ErrNotFound = errors.New("booking not found")

	ErrMissingParameter = errors.New("required parameter missing")
)
