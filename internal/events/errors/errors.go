package errors

import "errors"

var (
	ErrNotFound       = errors.New("event not found")
	ErrInvalidID      = errors.New("invalid event ID format")
	ErrDuplicateBlock = errors.New("block already exists")
)
