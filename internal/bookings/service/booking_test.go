package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	bookingserrors "clinicbook/internal/bookings/errors"
	"clinicbook/internal/bookings/repository"
	"clinicbook/internal/bookings/validator"
	"clinicbook/pkg/config"
	apperrors "clinicbook/pkg/errors"
	"clinicbook/pkg/logger"
	"clinicbook/pkg/model"
)

type recordingPublisher struct {
	mu      sync.Mutex
	created []string
	deleted []string
	err     error
}

func (p *recordingPublisher) BookingCreated(_ context.Context, b *model.Booking) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.created = append(p.created, b.ID)
	return p.err
}

func (p *recordingPublisher) BookingDeleted(_ context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deleted = append(p.deleted, id)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

type failingStore struct {
	repository.ScheduleStore
}

func (failingStore) List(context.Context, model.BookingFilter) ([]*model.Booking, error) {
	return nil, errors.New("connection lost")
}

func (failingStore) Remove(context.Context, string) (bool, error) {
	return false, errors.New("connection lost")
}

func testConfig() *config.Config {
	return &config.Config{
		Resources:          config.DefaultResources,
		BookingBuffer:      config.DefaultBookingBuffer,
		BookingMinDuration: config.DefaultBookingMinDuration,
		BookingMaxDuration: config.DefaultBookingMaxDuration,
		SlotWidth:          config.DefaultSlotWidth,
		Log:                logger.Discard(),
	}
}

func newTestService(store repository.ScheduleStore, publisher *recordingPublisher) *bookingService {
	cfg := testConfig()
	v := validator.NewBookingValidator(cfg.Resources, cfg.BookingMinDuration, cfg.BookingMaxDuration, cfg.Log)
	return NewBookingService(store, v, publisher, cfg).(*bookingService)
}

func req(resource, start, end string) *model.CreateBookingRequest {
	return &model.CreateBookingRequest{Resource: resource, Start: start, End: end, RequestedBy: "front desk"}
}

func mustCreate(t *testing.T, svc BookingService, r *model.CreateBookingRequest) *model.Booking {
	t.Helper()
	b, err := svc.Create(context.Background(), r)
	if err != nil {
		t.Fatalf("create %s %s-%s failed: %v", r.Resource, r.Start, r.End, err)
	}
	return b
}

func TestCreate_ThenListContainsItOnce(t *testing.T) {
	svc := newTestService(repository.NewMemoryScheduleStore(), &recordingPublisher{})
	created := mustCreate(t, svc, req("Dental", "2025-03-01T09:00:00Z", "2025-03-01T09:30:00Z"))

	if created.ID == "" {
		t.Fatal("expected an id")
	}

	bookings, err := svc.List(context.Background(), model.BookingFilter{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	count := 0
	for _, b := range bookings {
		if b.ID == created.ID {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected booking exactly once, found %d", count)
	}
}

func TestCreate_NormalizesInput(t *testing.T) {
	svc := newTestService(repository.NewMemoryScheduleStore(), &recordingPublisher{})

	b := mustCreate(t, svc, &model.CreateBookingRequest{
		Resource:    "Surgery",
		Start:       "2025-03-01T11:00:00.123456+02:00",
		End:         "2025-03-01T09:45:00Z",
		RequestedBy: "  Dr.   Rivera ",
	})

	if got := model.FormatInstant(b.Start); got != "2025-03-01T09:00:00.123Z" {
		t.Errorf("unexpected normalized start %s", got)
	}
	if b.RequestedBy != "Dr. Rivera" {
		t.Errorf("unexpected requester %q", b.RequestedBy)
	}
}

func TestCreate_BufferedConflicts(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
		wantErr    bool
	}{
		{"inside trailing buffer", "2025-03-01T09:35:00Z", "2025-03-01T09:50:00Z", true},
		{"exactly at trailing buffer edge", "2025-03-01T09:40:00Z", "2025-03-01T09:55:00Z", false},
		{"ends inside leading buffer", "2025-03-01T08:00:00Z", "2025-03-01T09:05:00Z", true},
		{"ends at leading buffer edge", "2025-03-01T08:35:00Z", "2025-03-01T08:50:00Z", false},
		{"other resource same time", "2025-03-01T09:00:00Z", "2025-03-01T09:30:00Z", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(repository.NewMemoryScheduleStore(), &recordingPublisher{})
			mustCreate(t, svc, req("Dental", "2025-03-01T09:00:00Z", "2025-03-01T09:30:00Z"))

			resource := "Dental"
			if tt.name == "other resource same time" {
				resource = "Pediatrics"
			}
			_, err := svc.Create(context.Background(), req(resource, tt.start, tt.end))

			if tt.wantErr {
				if !apperrors.HasCode(err, apperrors.CodeSlotConflict) {
					t.Fatalf("expected SLOT_CONFLICT, got %v", err)
				}
				if !errors.Is(err, bookingserrors.ErrSlotConflict) {
					t.Error("expected error to wrap ErrSlotConflict")
				}
				if apperrors.AsAppError(err).Message != msgSlotConflict {
					t.Errorf("unexpected message %q", apperrors.AsAppError(err).Message)
				}
			} else if err != nil {
				t.Fatalf("expected admission, got %v", err)
			}
		})
	}
}

func TestCreate_DurationBounds(t *testing.T) {
	tests := []struct {
		end      string
		wantCode string
	}{
		{"2025-03-01T09:14:00Z", apperrors.CodeDurationTooShort},
		{"2025-03-01T09:15:00Z", ""},
		{"2025-03-01T11:00:00Z", ""},
		{"2025-03-01T11:01:00Z", apperrors.CodeDurationTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.end, func(t *testing.T) {
			svc := newTestService(repository.NewMemoryScheduleStore(), &recordingPublisher{})
			_, err := svc.Create(context.Background(), req("Medicine", "2025-03-01T09:00:00Z", tt.end))

			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("expected admission, got %v", err)
				}
				return
			}
			if !apperrors.HasCode(err, tt.wantCode) {
				t.Fatalf("expected %s, got %v", tt.wantCode, err)
			}
			if apperrors.AsAppError(err).StatusCode() != 400 {
				t.Errorf("expected 400, got %d", apperrors.AsAppError(err).StatusCode())
			}
		})
	}
}

func TestCreate_GateCodes(t *testing.T) {
	tests := []struct {
		name     string
		r        *model.CreateBookingRequest
		wantCode string
		wantMsg  string
	}{
		{"resource", req("Cardiology", "2025-03-01T09:00:00Z", "2025-03-01T09:30:00Z"), apperrors.CodeInvalidResource, "Invalid resource"},
		{"date", req("Dental", "tomorrow", "2025-03-01T09:30:00Z"), apperrors.CodeInvalidDate, "Invalid date"},
		{"ordering", req("Dental", "2025-03-01T09:30:00Z", "2025-03-01T09:00:00Z"), apperrors.CodeInvalidOrdering, "End time can't be before the start time"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(repository.NewMemoryScheduleStore(), &recordingPublisher{})
			_, err := svc.Create(context.Background(), tt.r)
			appErr := apperrors.AsAppError(err)
			if appErr.Code != tt.wantCode || appErr.Message != tt.wantMsg {
				t.Errorf("got %s %q, want %s %q", appErr.Code, appErr.Message, tt.wantCode, tt.wantMsg)
			}
		})
	}
}

func TestCreate_RejectionLeavesStoreUnchanged(t *testing.T) {
	svc := newTestService(repository.NewMemoryScheduleStore(), &recordingPublisher{})
	mustCreate(t, svc, req("Dental", "2025-03-01T09:00:00Z", "2025-03-01T09:30:00Z"))

	_, _ = svc.Create(context.Background(), req("Dental", "2025-03-01T09:10:00Z", "2025-03-01T09:40:00Z"))
	_, _ = svc.Create(context.Background(), req("Dental", "2025-03-01T12:00:00Z", "2025-03-01T12:05:00Z"))

	bookings, _ := svc.List(context.Background(), model.BookingFilter{})
	if len(bookings) != 1 {
		t.Errorf("expected 1 booking, got %d", len(bookings))
	}
}

func TestDelete_ThenSameIntervalSucceeds(t *testing.T) {
	publisher := &recordingPublisher{}
	svc := newTestService(repository.NewMemoryScheduleStore(), publisher)
	r := req("Surgery", "2025-03-01T14:00:00Z", "2025-03-01T15:00:00Z")
	b := mustCreate(t, svc, r)

	if err := svc.Delete(context.Background(), b.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	mustCreate(t, svc, r)

	if len(publisher.deleted) != 1 || publisher.deleted[0] != b.ID {
		t.Errorf("expected delete event for %s, got %v", b.ID, publisher.deleted)
	}
	if len(publisher.created) != 2 {
		t.Errorf("expected 2 created events, got %d", len(publisher.created))
	}
}

func TestDelete_Errors(t *testing.T) {
	svc := newTestService(repository.NewMemoryScheduleStore(), &recordingPublisher{})

	err := svc.Delete(context.Background(), "")
	if !apperrors.HasCode(err, apperrors.CodeMissingParameter) || apperrors.AsAppError(err).Message != msgMissingID {
		t.Errorf("expected MISSING_PARAMETER %q, got %v", msgMissingID, err)
	}

	err = svc.Delete(context.Background(), "does-not-exist")
	if !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
	if !errors.Is(err, bookingserrors.ErrNotFound) {
		t.Error("expected error to wrap ErrNotFound")
	}
}

func TestList_SortedForAnyInsertionOrder(t *testing.T) {
	svc := newTestService(repository.NewMemoryScheduleStore(), &recordingPublisher{})

	for _, hour := range []string{"15", "08", "12", "10", "17"} {
		mustCreate(t, svc, req("Pediatrics", "2025-03-01T"+hour+":00:00Z", "2025-03-01T"+hour+":30:00Z"))
	}

	bookings, _ := svc.List(context.Background(), model.BookingFilter{Resource: "Pediatrics"})
	if len(bookings) != 5 {
		t.Fatalf("expected 5 bookings, got %d", len(bookings))
	}
	for i := 1; i < len(bookings); i++ {
		if bookings[i].Start.Before(bookings[i-1].Start) {
			t.Fatalf("not sorted at index %d", i)
		}
	}
}

func TestList_DateIsPrefixMatch(t *testing.T) {
	svc := newTestService(repository.NewMemoryScheduleStore(), &recordingPublisher{})
	mustCreate(t, svc, req("Dental", "2025-03-01T09:00:00Z", "2025-03-01T09:30:00Z"))
	mustCreate(t, svc, req("Dental", "2025-03-02T09:00:00Z", "2025-03-02T09:30:00Z"))

	tests := []struct {
		date string
		want int
	}{
		{"2025-03-01", 1},
		{"2025-03", 2},
		{"2025-03-01T09", 1},
		{"03/01/2025", 0},
	}
	for _, tt := range tests {
		bookings, err := svc.List(context.Background(), model.BookingFilter{Date: tt.date})
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(bookings) != tt.want {
			t.Errorf("date %q: expected %d, got %d", tt.date, tt.want, len(bookings))
		}
	}
}

func TestAvailability(t *testing.T) {
	svc := newTestService(repository.NewMemoryScheduleStore(), &recordingPublisher{})

	slots, err := svc.Availability(context.Background(), "Dental", "2025-03-01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 96 {
		t.Fatalf("expected 96 slots on an empty day, got %d", len(slots))
	}

	mustCreate(t, svc, req("Dental", "2025-03-01T09:00:00Z", "2025-03-01T09:30:00Z"))

	slots, _ = svc.Availability(context.Background(), "Dental", "2025-03-01")
	if len(slots) != 92 {
		t.Errorf("expected 92 slots, got %d", len(slots))
	}

	slots, _ = svc.Availability(context.Background(), "Surgery", "2025-03-01")
	if len(slots) != 96 {
		t.Errorf("other resources unaffected, got %d", len(slots))
	}
}

func TestAvailability_Errors(t *testing.T) {
	svc := newTestService(repository.NewMemoryScheduleStore(), &recordingPublisher{})

	tests := []struct {
		name, resource, date string
		wantCode             string
	}{
		{"missing resource", "", "2025-03-01", apperrors.CodeMissingParameter},
		{"missing date", "Dental", "", apperrors.CodeMissingParameter},
		{"unknown resource", "Cardiology", "2025-03-01", apperrors.CodeInvalidResource},
		{"bad date", "Dental", "tomorrow", apperrors.CodeInvalidDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Availability(context.Background(), tt.resource, tt.date)
			if !apperrors.HasCode(err, tt.wantCode) {
				t.Errorf("expected %s, got %v", tt.wantCode, err)
			}
		})
	}
}

func TestConcurrentIdenticalCreates(t *testing.T) {
	for round := 0; round < 20; round++ {
		svc := newTestService(repository.NewMemoryScheduleStore(), &recordingPublisher{})

		var wg sync.WaitGroup
		start := make(chan struct{})
		errs := make([]error, 2)
		for i := range errs {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				<-start
				_, errs[i] = svc.Create(context.Background(), req("Emergency Care", "2025-03-01T09:00:00Z", "2025-03-01T10:00:00Z"))
			}(i)
		}
		close(start)
		wg.Wait()

		successes, conflicts := 0, 0
		for _, err := range errs {
			switch {
			case err == nil:
				successes++
			case apperrors.HasCode(err, apperrors.CodeSlotConflict):
				conflicts++
			default:
				t.Fatalf("unexpected error: %v", err)
			}
		}
		if successes != 1 || conflicts != 1 {
			t.Fatalf("round %d: expected 1 success and 1 conflict, got %d and %d", round, successes, conflicts)
		}
	}
}

func TestConcurrentReadsAndWrites(t *testing.T) {
	svc := newTestService(repository.NewMemoryScheduleStore(), &recordingPublisher{})
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	for i := 0; i < 24; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			start := base.Add(time.Duration(i) * time.Hour)
			_, _ = svc.Create(context.Background(), req("Dental", model.FormatInstant(start), model.FormatInstant(start.Add(30*time.Minute))))
		}(i)
		go func() {
			defer wg.Done()
			_, _ = svc.Availability(context.Background(), "Dental", "2025-03-01")
		}()
	}
	wg.Wait()

	bookings, _ := svc.List(context.Background(), model.BookingFilter{Resource: "Dental"})
	if len(bookings) != 24 {
		t.Errorf("expected 24 hourly bookings, got %d", len(bookings))
	}
}

func TestPublishFailureDoesNotFailOperation(t *testing.T) {
	publisher := &recordingPublisher{err: errors.New("broker down")}
	svc := newTestService(repository.NewMemoryScheduleStore(), publisher)

	b, err := svc.Create(context.Background(), req("Dental", "2025-03-01T09:00:00Z", "2025-03-01T09:30:00Z"))
	if err != nil {
		t.Fatalf("create must succeed when publishing fails, got %v", err)
	}
	if err := svc.Delete(context.Background(), b.ID); err != nil {
		t.Fatalf("delete must succeed when publishing fails, got %v", err)
	}
}

func TestStoreFailureIsInternal(t *testing.T) {
	svc := newTestService(failingStore{}, &recordingPublisher{})

	_, err := svc.Create(context.Background(), req("Dental", "2025-03-01T09:00:00Z", "2025-03-01T09:30:00Z"))
	if !apperrors.HasCode(err, apperrors.CodeInternal) {
		t.Errorf("expected INTERNAL_ERROR from create, got %v", err)
	}
	if _, err := svc.List(context.Background(), model.BookingFilter{}); !apperrors.HasCode(err, apperrors.CodeInternal) {
		t.Errorf("expected INTERNAL_ERROR from list, got %v", err)
	}
	if err := svc.Delete(context.Background(), "x"); !apperrors.HasCode(err, apperrors.CodeInternal) {
		t.Errorf("expected INTERNAL_ERROR from delete, got %v", err)
	}
}

func TestCreate_IDGenerationFailure(t *testing.T) {
	svc := newTestService(repository.NewMemoryScheduleStore(), &recordingPublisher{})
	svc.newID = func() (string, error) { return "", errors.New("entropy exhausted") }

	_, err := svc.Create(context.Background(), req("Dental", "2025-03-01T09:00:00Z", "2025-03-01T09:30:00Z"))
	if !apperrors.HasCode(err, apperrors.CodeInternal) {
		t.Errorf("expected INTERNAL_ERROR, got %v", err)
	}
}

// expiringStore commits the insert and then lets the request deadline pass,
// the way a slow backend write outlives its caller.
type expiringStore struct {
	repository.ScheduleStore
	cancel context.CancelFunc
}

func (s *expiringStore) Insert(ctx context.Context, b *model.Booking) error {
	if err := s.ScheduleStore.Insert(ctx, b); err != nil {
		return err
	}
	s.cancel()
	return nil
}

func TestCreate_ContextDoneBeforeAdmission(t *testing.T) {
	store := repository.NewMemoryScheduleStore()
	publisher := &recordingPublisher{}
	svc := newTestService(store, publisher)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Create(ctx, req("Dental", "2025-03-01T09:00:00Z", "2025-03-01T09:30:00Z"))
	if !apperrors.HasCode(err, apperrors.CodeRequestTimeout) {
		t.Fatalf("expected REQUEST_TIMEOUT, got %v", err)
	}

	bookings, _ := store.List(context.Background(), model.BookingFilter{})
	if len(bookings) != 0 {
		t.Errorf("expected nothing stored, got %d bookings", len(bookings))
	}
	if len(publisher.created) != 0 {
		t.Errorf("expected no event for an abandoned booking, got %v", publisher.created)
	}
}

func TestCreate_DeadlineDuringInsertRollsBack(t *testing.T) {
	inner := repository.NewMemoryScheduleStore()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	publisher := &recordingPublisher{}
	svc := newTestService(&expiringStore{ScheduleStore: inner, cancel: cancel}, publisher)

	_, err := svc.Create(ctx, req("Dental", "2025-03-01T09:00:00Z", "2025-03-01T09:30:00Z"))
	if !apperrors.HasCode(err, apperrors.CodeRequestTimeout) {
		t.Fatalf("expected REQUEST_TIMEOUT, got %v", err)
	}

	bookings, _ := inner.List(context.Background(), model.BookingFilter{})
	if len(bookings) != 0 {
		t.Fatalf("expected the late commit to be rolled back, got %d bookings", len(bookings))
	}
	if len(publisher.created) != 0 {
		t.Errorf("expected no event for an abandoned booking, got %v", publisher.created)
	}

	retry := newTestService(inner, publisher)
	if _, err := retry.Create(context.Background(), req("Dental", "2025-03-01T09:00:00Z", "2025-03-01T09:30:00Z")); err != nil {
		t.Errorf("retry of the abandoned interval should be admitted, got %v", err)
	}
}

func TestDelete_ContextDoneKeepsBooking(t *testing.T) {
	svc := newTestService(repository.NewMemoryScheduleStore(), &recordingPublisher{})
	b := mustCreate(t, svc, req("Dental", "2025-03-01T09:00:00Z", "2025-03-01T09:30:00Z"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := svc.Delete(ctx, b.ID); !apperrors.HasCode(err, apperrors.CodeRequestTimeout) {
		t.Fatalf("expected REQUEST_TIMEOUT, got %v", err)
	}
	bookings, _ := svc.List(context.Background(), model.BookingFilter{})
	if len(bookings) != 1 {
		t.Errorf("expected booking to survive an expired delete, got %d", len(bookings))
	}
}
