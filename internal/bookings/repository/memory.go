package repository

import (
	"context"
	"slices"
	"sync"

	"clinicbook/pkg/model"
)

type memoryScheduleStore struct {
	mu       sync.RWMutex
	bookings []model.Booking
}

func NewMemoryScheduleStore() ScheduleStore {
	return &memoryScheduleStore{}
}

func (s *memoryScheduleStore) Insert(ctx context.Context, booking *model.Booking) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.bookings = append(s.bookings, *booking)
	return nil
}

func (s *memoryScheduleStore) Remove(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.bookings, func(b model.Booking) bool { return b.ID == id })
	if idx == -1 {
		return false, nil
	}
	s.bookings = slices.Delete(s.bookings, idx, idx+1)
	return true, nil
}

func (s *memoryScheduleStore) List(ctx context.Context, filter model.BookingFilter) ([]*model.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*model.Booking, 0, len(s.bookings))
	for i := range s.bookings {
		if !filter.Matches(&s.bookings[i]) {
			continue
		}
		b := s.bookings[i]
		result = append(result, &b)
	}

	sortByStart(result)
	return result, nil
}

// sortByStart orders bookings by start, keeping insertion order for ties.
func sortByStart(bookings []*model.Booking) {
	slices.SortStableFunc(bookings, func(a, b *model.Booking) int {
		return a.Start.Compare(b.Start)
	})
}
