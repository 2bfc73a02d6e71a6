package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/vlasove/meetroom/internal/models"
)

// fakeStore — хранилище в памяти для тестов ядра.
type fakeStore struct {
	mu           sync.Mutex
	reservations map[uuid.UUID]models.Reservation
}

func newFakeStore() *fakeStore {
	return &fakeStore{reservations: make(map[uuid.UUID]models.Reservation)}
}

func (f *fakeStore) ListByRoom(_ context.Context, roomNumber int) ([]models.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.Reservation
	for _, r := range f.reservations {
		if r.RoomNumber == roomNumber {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]models.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.Reservation
	for _, r := range f.reservations {
		if r.OwnerID == ownerID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) FindByID(_ context.Context, id uuid.UUID) (*models.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	r, ok := f.reservations[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := r
	return &copied, nil
}

func (f *fakeStore) Insert(_ context.Context, r *models.Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.reservations[r.ID] = *r
	return nil
}

func (f *fakeStore) Update(_ context.Context, r *models.Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.reservations[r.ID]; !ok {
		return ErrNotFound
	}
	f.reservations[r.ID] = *r
	return nil
}

func (f *fakeStore) Delete(_ context.Context, r *models.Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.reservations, r.ID)
	return nil
}

func (f *fakeStore) get(t *testing.T, id uuid.UUID) models.Reservation {
	t.Helper()

	f.mu.Lock()
	defer f.mu.Unlock()

	r, ok := f.reservations[id]
	if !ok {
		t.Fatalf("reservation %s not found in store", id)
	}
	return r
}

type fakeUsers struct {
	names map[uuid.UUID]string
}

func (f *fakeUsers) FullName(_ context.Context, id uuid.UUID) (string, error) {
	name, ok := f.names[id]
	if !ok {
		return "", fmt.Errorf("unknown user %s", id)
	}
	return name, nil
}

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

func newTestService(now time.Time) (*Service, *fakeStore, *fakeUsers, *fixedClock) {
	store := newFakeStore()
	users := &fakeUsers{names: make(map[uuid.UUID]string)}
	clock := &fixedClock{now: now}
	return NewService(store, users, clock), store, users, clock
}

func TestCreateReservation_OK(t *testing.T) {
	svc, store, _, _ := newTestService(at(9, 0))
	owner := uuid.New()

	res, err := svc.CreateReservation(context.Background(), CreateRequest{
		OwnerID:    owner,
		RoomNumber: 101,
		Start:      at(10, 0),
		End:        at(11, 0),
		Title:      "standup",
		Comment:    "weekly",
	})
	if err != nil {
		t.Fatalf("CreateReservation: %v", err)
	}
	if res.ID == uuid.Nil {
		t.Fatal("expected assigned id")
	}

	stored := store.get(t, res.ID)
	if stored.OwnerID != owner || stored.RoomNumber != 101 || stored.Title != "standup" {
		t.Fatalf("stored reservation mismatch: %+v", stored)
	}
}

func TestCreateReservation_DurationRejectedBeforeStore(t *testing.T) {
	svc, store, _, _ := newTestService(at(9, 0))

	_, err := svc.CreateReservation(context.Background(), CreateRequest{
		OwnerID:    uuid.New(),
		RoomNumber: 101,
		Start:      at(10, 0),
		End:        at(10, 10),
	})
	if !errors.Is(err, ErrTooShort) {
		t.Fatalf("expected ErrTooShort, got %v", err)
	}

	_, err = svc.CreateReservation(context.Background(), CreateRequest{
		OwnerID:    uuid.New(),
		RoomNumber: 101,
		Start:      at(10, 0),
		End:        at(10, 0).Add(25 * time.Hour),
	})
	if !errors.Is(err, ErrTooLong) {
		t.Fatalf("expected ErrTooLong, got %v", err)
	}

	if len(store.reservations) != 0 {
		t.Fatal("invalid requests must not reach the store")
	}
}

func TestCreateReservation_Conflicts(t *testing.T) {
	svc, _, _, _ := newTestService(at(9, 0))
	owner := uuid.New()

	if _, err := svc.CreateReservation(context.Background(), CreateRequest{
		OwnerID: owner, RoomNumber: 101, Start: at(10, 0), End: at(11, 0), Title: "a",
	}); err != nil {
		t.Fatalf("seed reservation: %v", err)
	}

	// Пересечение в той же комнате
	_, err := svc.CreateReservation(context.Background(), CreateRequest{
		OwnerID: uuid.New(), RoomNumber: 101, Start: at(10, 30), End: at(11, 30), Title: "b",
	})
	if !errors.Is(err, ErrSlotUnavailable) {
		t.Fatalf("expected ErrSlotUnavailable, got %v", err)
	}

	// Встык — без конфликта
	if _, err := svc.CreateReservation(context.Background(), CreateRequest{
		OwnerID: uuid.New(), RoomNumber: 101, Start: at(11, 0), End: at(12, 0), Title: "c",
	}); err != nil {
		t.Fatalf("back-to-back reservation rejected: %v", err)
	}

	// Тот же интервал в другой комнате
	if _, err := svc.CreateReservation(context.Background(), CreateRequest{
		OwnerID: uuid.New(), RoomNumber: 102, Start: at(10, 0), End: at(11, 0), Title: "d",
	}); err != nil {
		t.Fatalf("other room rejected: %v", err)
	}
}

func TestCancelOrEnd_BeforeStart_Deletes(t *testing.T) {
	svc, store, _, _ := newTestService(at(9, 0))
	owner := uuid.New()

	res, err := svc.CreateReservation(context.Background(), CreateRequest{
		OwnerID: owner, RoomNumber: 101, Start: at(10, 0), End: at(11, 0), Title: "a",
	})
	if err != nil {
		t.Fatalf("CreateReservation: %v", err)
	}

	result, err := svc.CancelOrEndReservation(context.Background(), owner, res.ID)
	if err != nil {
		t.Fatalf("CancelOrEndReservation: %v", err)
	}
	if result.Outcome != OutcomeDeleted {
		t.Fatalf("expected OutcomeDeleted, got %v", result.Outcome)
	}
	if result.RoomNumber != 101 {
		t.Fatalf("expected room 101 in result, got %d", result.RoomNumber)
	}
	if len(store.reservations) != 0 {
		t.Fatal("reservation must be removed from the store")
	}
}

func TestCancelOrEnd_InProgress_Truncates(t *testing.T) {
	svc, store, _, clock := newTestService(at(9, 0))
	owner := uuid.New()

	res, err := svc.CreateReservation(context.Background(), CreateRequest{
		OwnerID: owner, RoomNumber: 101, Start: at(10, 0), End: at(11, 0), Title: "a",
	})
	if err != nil {
		t.Fatalf("CreateReservation: %v", err)
	}

	clock.now = at(10, 30)

	result, err := svc.CancelOrEndReservation(context.Background(), owner, res.ID)
	if err != nil {
		t.Fatalf("CancelOrEndReservation: %v", err)
	}
	if result.Outcome != OutcomeTruncated {
		t.Fatalf("expected OutcomeTruncated, got %v", result.Outcome)
	}
	if !result.EndTime.Equal(at(10, 30)) {
		t.Fatalf("expected EndTime %v, got %v", at(10, 30), result.EndTime)
	}

	stored := store.get(t, res.ID)
	if !stored.EndTime.Equal(at(10, 30)) {
		t.Fatalf("persisted EndTime = %v, want %v", stored.EndTime, at(10, 30))
	}
}

func TestCancelOrEnd_AlreadyEnded_NoOp(t *testing.T) {
	svc, store, _, clock := newTestService(at(9, 0))
	owner := uuid.New()

	res, err := svc.CreateReservation(context.Background(), CreateRequest{
		OwnerID: owner, RoomNumber: 101, Start: at(10, 0), End: at(11, 0), Title: "a",
	})
	if err != nil {
		t.Fatalf("CreateReservation: %v", err)
	}

	clock.now = at(12, 0)

	result, err := svc.CancelOrEndReservation(context.Background(), owner, res.ID)
	if err != nil {
		t.Fatalf("CancelOrEndReservation: %v", err)
	}
	if result.Outcome != OutcomeAlreadyEnded {
		t.Fatalf("expected OutcomeAlreadyEnded, got %v", result.Outcome)
	}

	stored := store.get(t, res.ID)
	if !stored.EndTime.Equal(at(11, 0)) {
		t.Fatal("ended reservation must stay untouched")
	}
}

func TestCancelOrEnd_NotOwner(t *testing.T) {
	svc, store, _, clock := newTestService(at(9, 0))
	owner := uuid.New()

	res, err := svc.CreateReservation(context.Background(), CreateRequest{
		OwnerID: owner, RoomNumber: 101, Start: at(10, 0), End: at(11, 0), Title: "a",
	})
	if err != nil {
		t.Fatalf("CreateReservation: %v", err)
	}

	// В любой момент относительно интервала брони
	for _, now := range []time.Time{at(9, 30), at(10, 30), at(12, 0)} {
		clock.now = now

		_, err := svc.CancelOrEndReservation(context.Background(), uuid.New(), res.ID)
		if !errors.Is(err, ErrNotOwner) {
			t.Fatalf("at %v: expected ErrNotOwner, got %v", now, err)
		}

		stored := store.get(t, res.ID)
		if !stored.EndTime.Equal(at(11, 0)) {
			t.Fatalf("at %v: foreign cancel must not mutate the reservation", now)
		}
	}
}

func TestCancelOrEnd_NotFound(t *testing.T) {
	svc, _, _, _ := newTestService(at(9, 0))

	_, err := svc.CancelOrEndReservation(context.Background(), uuid.New(), uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListActiveForUser(t *testing.T) {
	svc, _, _, _ := newTestService(at(0, 0))
	owner := uuid.New()
	other := uuid.New()

	seed := []CreateRequest{
		{OwnerID: owner, RoomNumber: 101, Start: at(14, 0), End: at(15, 0), Title: "later"},
		{OwnerID: owner, RoomNumber: 102, Start: at(8, 0), End: at(9, 0), Title: "ended"},
		{OwnerID: owner, RoomNumber: 103, Start: at(10, 0), End: at(11, 0), Title: "soon"},
		{OwnerID: other, RoomNumber: 101, Start: at(16, 0), End: at(17, 0), Title: "foreign"},
	}
	for _, req := range seed {
		if _, err := svc.CreateReservation(context.Background(), req); err != nil {
			t.Fatalf("seed %q: %v", req.Title, err)
		}
	}

	active, err := svc.ListActiveForUser(context.Background(), owner, at(9, 0))
	if err != nil {
		t.Fatalf("ListActiveForUser: %v", err)
	}

	if len(active) != 2 {
		t.Fatalf("expected 2 active reservations, got %d", len(active))
	}
	// По возрастанию времени начала
	if active[0].Title != "soon" || active[1].Title != "later" {
		t.Fatalf("wrong order: %q, %q", active[0].Title, active[1].Title)
	}
	for _, r := range active {
		if !r.EndTime.After(at(9, 0)) {
			t.Fatalf("reservation %q ended before asOf", r.Title)
		}
	}
}

func TestOccupiedSlots(t *testing.T) {
	svc, _, users, _ := newTestService(at(0, 0))
	owner := uuid.New()
	users.names[owner] = "Ivan Petrov"

	res, err := svc.CreateReservation(context.Background(), CreateRequest{
		OwnerID: owner, RoomNumber: 101, Start: at(10, 0), End: at(11, 0), Title: "standup",
	})
	if err != nil {
		t.Fatalf("CreateReservation: %v", err)
	}

	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	slots, err := svc.OccupiedSlots(context.Background(), 101, day)
	if err != nil {
		t.Fatalf("OccupiedSlots: %v", err)
	}

	if len(slots) != 1 {
		t.Fatalf("expected 1 slot, got %d", len(slots))
	}
	slot := slots[0]
	if !slot.Start.Equal(res.StartTime) || !slot.End.Equal(res.EndTime) {
		t.Fatalf("slot interval mismatch: %+v", slot)
	}
	if slot.OwnerName != "Ivan Petrov" || slot.Title != "standup" {
		t.Fatalf("slot attribution mismatch: %+v", slot)
	}

	if empty, err := svc.OccupiedSlots(context.Background(), 101, day.AddDate(0, 0, 1)); err != nil || len(empty) != 0 {
		t.Fatalf("next day must be empty, got %v, %v", empty, err)
	}
	if empty, err := svc.OccupiedSlots(context.Background(), 102, day); err != nil || len(empty) != 0 {
		t.Fatalf("other room must be empty, got %v, %v", empty, err)
	}
}

// Бронь через полночь ищется по дате окончания, не начала.
func TestOccupiedSlots_MidnightSpanFiledUnderEndDate(t *testing.T) {
	svc, _, users, _ := newTestService(time.Date(2025, 3, 9, 12, 0, 0, 0, time.UTC))
	owner := uuid.New()
	users.names[owner] = "Anna Sidorova"

	start := time.Date(2025, 3, 9, 23, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 10, 1, 0, 0, 0, time.UTC)

	if _, err := svc.CreateReservation(context.Background(), CreateRequest{
		OwnerID: owner, RoomNumber: 101, Start: start, End: end, Title: "night sync",
	}); err != nil {
		t.Fatalf("CreateReservation: %v", err)
	}

	startDay := time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)
	endDay := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	slots, err := svc.OccupiedSlots(context.Background(), 101, startDay)
	if err != nil {
		t.Fatalf("OccupiedSlots: %v", err)
	}
	if len(slots) != 0 {
		t.Fatal("reservation must not be listed under its start date")
	}

	slots, err = svc.OccupiedSlots(context.Background(), 101, endDay)
	if err != nil {
		t.Fatalf("OccupiedSlots: %v", err)
	}
	if len(slots) != 1 {
		t.Fatalf("expected reservation under its end date, got %d slots", len(slots))
	}
}

// Два одновременных запроса на пересекающиеся интервалы: проходит ровно один.
func TestCreateReservation_ConcurrentOverlap(t *testing.T) {
	svc, store, _, _ := newTestService(at(9, 0))

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.CreateReservation(context.Background(), CreateRequest{
				OwnerID: uuid.New(), RoomNumber: 101, Start: at(10, 0), End: at(11, 0), Title: "race",
			})
		}(i)
	}
	wg.Wait()

	var ok int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrSlotUnavailable):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if ok != 1 {
		t.Fatalf("expected exactly one successful booking, got %d", ok)
	}
	if len(store.reservations) != 1 {
		t.Fatalf("expected 1 stored reservation, got %d", len(store.reservations))
	}
}
