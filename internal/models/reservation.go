package models

import (
	"github.com/google/uuid"
	"time"
)

// Reservation — бронь переговорной на полуоткрытый интервал [StartTime, EndTime).
// EndTime меняется один раз, при досрочном завершении брони.
type Reservation struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	RoomNumber int       `gorm:"not null;index"`
	OwnerID    uuid.UUID `gorm:"type:uuid;not null;index"`
	StartTime  time.Time `gorm:"not null"`
	EndTime    time.Time `gorm:"not null;index"`
	Title      string    `gorm:"not null"`
	Comment    string
	CreatedAt  time.Time

	// Связи
	Owner *User `gorm:"foreignKey:OwnerID"`
}
