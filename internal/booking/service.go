package booking

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vlasove/meetroom/internal/models"
)

// Store — коллаборатор-хранилище броней. Реализация на GORM в internal/database.
type Store interface {
	// Все брони комнаты (для проверки конфликтов и расписания).
	ListByRoom(ctx context.Context, roomNumber int) ([]models.Reservation, error)
	// Все брони пользователя.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Reservation, error)
	// Бронь по ID; ErrNotFound, если её нет.
	FindByID(ctx context.Context, id uuid.UUID) (*models.Reservation, error)
	Insert(ctx context.Context, r *models.Reservation) error
	Update(ctx context.Context, r *models.Reservation) error
	Delete(ctx context.Context, r *models.Reservation) error
}

// UserDirectory отдаёт отображаемое имя владельца брони
type UserDirectory interface {
	FullName(ctx context.Context, id uuid.UUID) (string, error)
}

type Service struct {
	store Store
	users UserDirectory
	clock Clock

	// Пер-комнатные мьютексы: проверка конфликта и запись брони
	// должны быть атомарны в рамках одной комнаты.
	mu       sync.Mutex
	roomLock map[int]*sync.Mutex
}

func NewService(store Store, users UserDirectory, clock Clock) *Service {
	return &Service{
		store:    store,
		users:    users,
		clock:    clock,
		roomLock: make(map[int]*sync.Mutex),
	}
}

func (s *Service) lockRoom(roomNumber int) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.roomLock[roomNumber]
	if !ok {
		l = &sync.Mutex{}
		s.roomLock[roomNumber] = l
	}
	return l
}

type CreateRequest struct {
	OwnerID    uuid.UUID
	RoomNumber int
	Start      time.Time
	End        time.Time
	Title      string
	Comment    string
}

// CreateReservation проверяет длительность и конфликты и сохраняет новую бронь.
// Возвращает ErrTooLong/ErrTooShort/ErrSlotUnavailable как обычные значения.
func (s *Service) CreateReservation(ctx context.Context, req CreateRequest) (*models.Reservation, error) {
	if err := ValidateInterval(req.Start, req.End); err != nil {
		return nil, err
	}

	// Чтение существующих броней и запись новой сериализуются по комнате,
	// иначе два пересекающихся запроса могут одновременно пройти проверку.
	l := s.lockRoom(req.RoomNumber)
	l.Lock()
	defer l.Unlock()

	existing, err := s.store.ListByRoom(ctx, req.RoomNumber)
	if err != nil {
		return nil, err
	}

	if HasConflict(req.RoomNumber, req.Start, req.End, existing) {
		return nil, ErrSlotUnavailable
	}

	res := &models.Reservation{
		ID:         uuid.New(),
		RoomNumber: req.RoomNumber,
		OwnerID:    req.OwnerID,
		StartTime:  req.Start,
		EndTime:    req.End,
		Title:      req.Title,
		Comment:    req.Comment,
		CreatedAt:  s.clock.Now(),
	}

	if err := s.store.Insert(ctx, res); err != nil {
		return nil, err
	}

	return res, nil
}

type CancelOutcome int

const (
	// Бронь удалена: отмена до её начала.
	OutcomeDeleted CancelOutcome = iota + 1
	// Бронь шла и завершена досрочно: EndTime = now.
	OutcomeTruncated
	// Бронь уже закончилась сама, ничего не изменено.
	OutcomeAlreadyEnded
)

type CancelResult struct {
	Outcome    CancelOutcome
	RoomNumber int
	// Новое время окончания при OutcomeTruncated.
	EndTime time.Time
}

// CancelOrEndReservation отменяет бронь до начала, досрочно завершает идущую
// и ничего не делает с уже закончившейся. Отменить бронь может только владелец.
func (s *Service) CancelOrEndReservation(ctx context.Context, requesterID, reservationID uuid.UUID) (CancelResult, error) {
	res, err := s.store.FindByID(ctx, reservationID)
	if err != nil {
		return CancelResult{}, err
	}

	if res.OwnerID != requesterID {
		return CancelResult{}, ErrNotOwner
	}

	// Время берём в момент выполнения: между отправкой запроса и его
	// обработкой бронь могла успеть начаться или закончиться.
	now := s.clock.Now()

	result := CancelResult{RoomNumber: res.RoomNumber}

	switch {
	case now.Before(res.StartTime):
		if err := s.store.Delete(ctx, res); err != nil {
			return CancelResult{}, err
		}
		result.Outcome = OutcomeDeleted

	case now.Before(res.EndTime):
		res.EndTime = now
		if err := s.store.Update(ctx, res); err != nil {
			return CancelResult{}, err
		}
		result.Outcome = OutcomeTruncated
		result.EndTime = now

	default:
		result.Outcome = OutcomeAlreadyEnded
	}

	return result, nil
}

// ListActiveForUser возвращает брони пользователя, не закончившиеся на момент asOf,
// по возрастанию времени начала
func (s *Service) ListActiveForUser(ctx context.Context, userID uuid.UUID, asOf time.Time) ([]models.Reservation, error) {
	all, err := s.store.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	active := make([]models.Reservation, 0, len(all))
	for _, r := range all {
		if r.EndTime.After(asOf) {
			active = append(active, r)
		}
	}

	sort.Slice(active, func(i, j int) bool {
		return active[i].StartTime.Before(active[j].StartTime)
	})

	return active, nil
}
