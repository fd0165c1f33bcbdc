// Package schedule holds the pure booking rules: buffered overlap between a
// candidate interval and the live bookings of one resource, and the free
// fixed-width slots of a day derived from it.
package schedule

import (
	"time"

	"clinicbook/pkg/model"
)

// Interval is a half-open span [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Conflicts reports whether candidate overlaps any booking on resource once
// each existing booking is widened by buffer on both sides. The candidate
// itself is never widened.
func Conflicts(candidate Interval, resource string, existing []*model.Booking, buffer time.Duration) bool {
	for _, b := range existing {
		if b.Resource != resource {
			continue
		}
		if overlaps(candidate.Start, candidate.End, b.Start.Add(-buffer), b.End.Add(buffer)) {
			return true
		}
	}
	return false
}

func overlaps(start1, end1, start2, end2 time.Time) bool {
	return start1.Before(end2) && end1.After(start2)
}
