package model

import (
	"errors"
	"time"
)

const (
	// InstantLayout is the canonical rendering of every stored instant:
	// UTC, millisecond precision, "Z" suffix.
	InstantLayout = "2006-01-02T15:04:05.000Z07:00"
	DateLayout    = "2006-01-02"
)

var ErrUnparseableInstant = errors.New("unparseable instant")

// Accepted input forms, most specific first. Zone-less forms are read as UTC.
var instantLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	DateLayout,
}

// ParseInstant parses s into a normalized instant.
func ParseInstant(s string) (time.Time, error) {
	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return NormalizeInstant(t), nil
		}
	}
	return time.Time{}, ErrUnparseableInstant
}

// ParseDate parses a YYYY-MM-DD calendar day and returns its UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, ErrUnparseableInstant
	}
	return t.UTC(), nil
}

func NormalizeInstant(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

func FormatInstant(t time.Time) string {
	return t.UTC().Format(InstantLayout)
}
