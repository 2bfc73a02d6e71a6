package dto

import (
	"fmt"
	"strings"
	"time"
)

// Формат времени формы бронирования: "2006-01-02T15:04".
const bookingTimeLayout = "2006-01-02T15:04"

// BookingTime парсит метки времени формы, чтобы ядро получало
// только типизированные time.Time.
type BookingTime struct {
	time.Time
}

func (t *BookingTime) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := time.Parse(bookingTimeLayout, s)
	if err != nil {
		return fmt.Errorf("invalid time %q, expected %s", s, bookingTimeLayout)
	}
	t.Time = parsed
	return nil
}

func (t BookingTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.Format(bookingTimeLayout) + `"`), nil
}

type BookRoomRequest struct {
	RoomNumber int         `json:"room_number" binding:"required,gt=0"`
	StartTime  BookingTime `json:"start_time" binding:"required"`
	EndTime    BookingTime `json:"end_time" binding:"required"`
	Title      string      `json:"title" binding:"required,max=200"`
	Comment    string      `json:"comment" binding:"max=1000"`
}
