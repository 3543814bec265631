package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	ErrDuplicate = errors.New("user already holds a booking for this slot")

	ErrSlotFull = errors.New("slot is fully booked")
)
