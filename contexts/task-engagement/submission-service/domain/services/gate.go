package services

import (
	"time"

	"questboard/contexts/task-engagement/submission-service/domain/entities"
	domainerrors "questboard/contexts/task-engagement/submission-service/domain/errors"
)

const (
	DefaultQuota  = 3
	DefaultWindow = 24 * time.Hour
)

// SubmissionGate decides whether a member may open a new submission. Rules
// are evaluated in order and the first failure wins.
type SubmissionGate struct {
	Quota  int
	Window time.Duration
}

func NewSubmissionGate(quota int, window time.Duration) SubmissionGate {
	return SubmissionGate{Quota: quota, Window: window}
}

// Admit returns the member with its window fields advanced for one more
// submission. The caller persists the result together with the submission.
func (g SubmissionGate) Admit(member entities.Member, task entities.Task, now time.Time) (entities.Member, error) {
	if member.HasCompleted(task.TaskID) {
		return member, domainerrors.ErrAlreadyCompleted
	}

	quota := g.quota()
	window := g.window()
	now = now.UTC()

	admitted := member.Clone()
	if admitted.WindowStartedAt == nil || !now.Before(admitted.WindowStartedAt.Add(window)) {
		admitted.SubmissionCountInWindow = 0
		admitted.WindowStartedAt = &now
	}
	if admitted.SubmissionCountInWindow >= quota {
		return member, &domainerrors.RateLimitError{
			RetryAfter: admitted.WindowStartedAt.Add(window).Sub(now),
			Quota:      quota,
		}
	}
	admitted.SubmissionCountInWindow++
	return admitted, nil
}

// Preview runs the same rules without handing back the advanced member. It
// lets callers reject before doing any external work.
func (g SubmissionGate) Preview(member entities.Member, task entities.Task, now time.Time) error {
	_, err := g.Admit(member, task, now)
	return err
}

// Remaining reports how many submissions are left in the member's current
// window and when that window resets, if one is open.
func (g SubmissionGate) Remaining(member entities.Member, now time.Time) (int, *time.Time) {
	quota := g.quota()
	if member.WindowStartedAt == nil {
		return quota, nil
	}
	resetsAt := member.WindowStartedAt.Add(g.window()).UTC()
	if !now.UTC().Before(resetsAt) {
		return quota, nil
	}
	remaining := quota - member.SubmissionCountInWindow
	if remaining < 0 {
		remaining = 0
	}
	return remaining, &resetsAt
}

func (g SubmissionGate) quota() int {
	if g.Quota <= 0 {
		return DefaultQuota
	}
	return g.Quota
}

func (g SubmissionGate) window() time.Duration {
	if g.Window <= 0 {
		return DefaultWindow
	}
	return g.Window
}
