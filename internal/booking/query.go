package booking

import (
	"context"
	"sort"
	"time"
)

// OccupiedSlot — занятый интервал комнаты для отображения расписания
type OccupiedSlot struct {
	Start     time.Time `json:"start_time"`
	End       time.Time `json:"end_time"`
	OwnerName string    `json:"booked_by"`
	Title     string    `json:"event_name"`
}

// OccupiedSlots возвращает занятые интервалы комнаты на указанную дату.
// Дата сравнивается по времени окончания брони: бронь через полночь
// видна под датой своего окончания.
func (s *Service) OccupiedSlots(ctx context.Context, roomNumber int, date time.Time) ([]OccupiedSlot, error) {
	reservations, err := s.store.ListByRoom(ctx, roomNumber)
	if err != nil {
		return nil, err
	}

	slots := make([]OccupiedSlot, 0, len(reservations))
	for _, r := range reservations {
		if !sameDate(r.EndTime, date) {
			continue
		}

		name, err := s.users.FullName(ctx, r.OwnerID)
		if err != nil {
			return nil, err
		}

		slots = append(slots, OccupiedSlot{
			Start:     r.StartTime,
			End:       r.EndTime,
			OwnerName: name,
			Title:     r.Title,
		})
	}

	sort.Slice(slots, func(i, j int) bool {
		return slots[i].Start.Before(slots[j].Start)
	})

	return slots, nil
}

func sameDate(t, date time.Time) bool {
	y1, m1, d1 := t.Date()
	y2, m2, d2 := date.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
