package booking

import "time"

const (
	// Минимальная и максимальная длительность брони.
	// Границы включительно: ровно 15 минут и ровно 24 часа допустимы.
	MinDuration = 15 * time.Minute
	MaxDuration = 24 * time.Hour
)

// ValidateInterval проверяет длительность интервала до любых обращений к хранилищу
func ValidateInterval(start, end time.Time) error {
	d := end.Sub(start)
	if d > MaxDuration {
		return ErrTooLong
	}
	if d < MinDuration {
		return ErrTooShort
	}
	return nil
}
