package booking

import (
	"time"

	"github.com/vlasove/meetroom/internal/models"
)

// Overlaps — пересечение полуоткрытых интервалов [s1,e1) и [s2,e2).
// Брони встык (e1 == s2) пересечением не считаются.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && e1.After(s2)
}

// HasConflict сообщает, пересекается ли кандидат с существующими бронями комнаты
func HasConflict(roomNumber int, start, end time.Time, existing []models.Reservation) bool {
	for _, r := range existing {
		if r.RoomNumber != roomNumber {
			continue
		}
		if Overlaps(start, end, r.StartTime, r.EndTime) {
			return true
		}
	}
	return false
}
