package errors

import "errors"

var (
	ErrInvalidInput         = errors.New("invalid notification input")
	ErrNotificationNotFound = errors.New("notification not found")
)
