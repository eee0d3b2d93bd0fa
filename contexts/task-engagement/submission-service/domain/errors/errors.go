package errors

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrSubmissionNotFound     = errors.New("submission not found")
	ErrMemberNotFound         = errors.New("member not found")
	ErrTaskNotFound           = errors.New("task not found")
	ErrInvalidSubmissionInput = errors.New("invalid submission input")
	ErrInvalidTaskInput       = errors.New("invalid task input")
	ErrInvalidDecision        = errors.New("invalid moderation decision")
	ErrUnauthorizedActor      = errors.New("actor is not authorized")
	ErrInactiveMember         = errors.New("member is not active")
	ErrAlreadyCompleted       = errors.New("task already completed by member")
	ErrRateLimited            = errors.New("submission rate limit reached")
	ErrDuplicatePending       = errors.New("a pending submission already exists for this task")
	ErrDuplicateTask          = errors.New("task title already exists")
	ErrObjectStoreUnavailable = errors.New("object store unavailable")
	ErrInconsistentState      = errors.New("submission references a missing member or task")
)

// RateLimitError carries how long the member has to wait before the window
// resets. It matches ErrRateLimited with errors.Is.
type RateLimitError struct {
	RetryAfter time.Duration
	Quota      int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf(
		"daily submission limit reached (%d per day), please wait %s before submitting again",
		e.Quota,
		FormatRetryAfter(e.RetryAfter),
	)
}

func (e *RateLimitError) Unwrap() error {
	return ErrRateLimited
}

// FormatRetryAfter renders a wait time as hours and minutes, e.g. "23h 5m".
func FormatRetryAfter(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hours := int(d / time.Hour)
	minutes := int((d % time.Hour) / time.Minute)
	return fmt.Sprintf("%dh %dm", hours, minutes)
}
