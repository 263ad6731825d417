package models

import "errors"

var (
	// ErrSlotUnavailable means the slot was consumed or withdrawn; the caller
	// should reload the slot list.
	ErrSlotUnavailable   = errors.New("slot unavailable")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("validation failed")
	ErrConflict          = errors.New("already exists")
	ErrForbidden         = errors.New("permission denied")

	// ErrNotificationDeliveryFailed is only ever logged.
	ErrNotificationDeliveryFailed = errors.New("notification delivery failed")
)
