package schedule

import (
	"time"

	"clinicbook/pkg/model"
)

const day = 24 * time.Hour

// FreeSlots walks the day starting at dayStart in steps of width and returns
// every slot that Conflicts does not reject, in ascending order. The slot
// boundaries get no buffer of their own.
func FreeSlots(dayStart time.Time, width time.Duration, resource string, existing []*model.Booking, buffer time.Duration) []model.Slot {
	dayEnd := dayStart.Add(day)
	slots := make([]model.Slot, 0, int(day/width))

	for start := dayStart; start.Before(dayEnd); start = start.Add(width) {
		slot := Interval{Start: start, End: start.Add(width)}
		if Conflicts(slot, resource, existing, buffer) {
			continue
		}
		slots = append(slots, model.Slot{Start: slot.Start, End: slot.End})
	}
	return slots
}
