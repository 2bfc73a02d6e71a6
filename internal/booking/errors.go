package booking

import "errors"

var (
	ErrTooLong         = errors.New("reservation is longer than 24 hours")
	ErrTooShort        = errors.New("reservation is shorter than 15 minutes")
	ErrSlotUnavailable = errors.New("slot is already booked")
	ErrNotOwner        = errors.New("reservation belongs to another user")
	ErrNotFound        = errors.New("reservation not found")
)
