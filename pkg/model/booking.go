package model

import (
	"strings"
	"time"

	"github.com/goccy/go-json"
)

type Booking struct {
	ID          string    `bson:"_id"`
	Resource    string    `bson:"resource"`
	Start       time.Time `bson:"start"`
	End         time.Time `bson:"end"`
	RequestedBy string    `bson:"requested_by"`
}

// CreateBookingRequest is the raw shape a caller submits. Instants are
// strings so the admission gates decide what parses.
type CreateBookingRequest struct {
	Resource    string `json:"resource"`
	Start       string `json:"start"`
	End         string `json:"end"`
	RequestedBy string `json:"requestedBy"`
}

type BookingFilter struct {
	Resource string
	Date     string
}

// Matches applies the filter: exact resource, and a literal prefix match of
// Date against the canonical start string.
func (f BookingFilter) Matches(b *Booking) bool {
	if f.Resource != "" && b.Resource != f.Resource {
		return false
	}
	if f.Date != "" && !strings.HasPrefix(FormatInstant(b.Start), f.Date) {
		return false
	}
	return true
}

type bookingJSON struct {
	ID          string `json:"id"`
	Resource    string `json:"resource"`
	Start       string `json:"start"`
	End         string `json:"end"`
	RequestedBy string `json:"requestedBy"`
}

func (b Booking) MarshalJSON() ([]byte, error) {
	return json.Marshal(bookingJSON{
		ID:          b.ID,
		Resource:    b.Resource,
		Start:       FormatInstant(b.Start),
		End:         FormatInstant(b.End),
		RequestedBy: b.RequestedBy,
	})
}

type Slot struct {
	Start time.Time
	End   time.Time
}

type slotJSON struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func (s Slot) MarshalJSON() ([]byte, error) {
	return json.Marshal(slotJSON{
		Start: FormatInstant(s.Start),
		End:   FormatInstant(s.End),
	})
}
