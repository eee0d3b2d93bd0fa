package services

import (
	"errors"
	"testing"
	"time"

	"questboard/contexts/task-engagement/submission-service/domain/entities"
	domainerrors "questboard/contexts/task-engagement/submission-service/domain/errors"
)

var gateNow = time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)

func TestAdmitOpensWindowOnFirstSubmission(t *testing.T) {
	gate := NewSubmissionGate(3, 24*time.Hour)
	member := entities.Member{MemberID: "m-1", Active: true}

	admitted, err := gate.Admit(member, entities.Task{TaskID: "t-1"}, gateNow)
	if err != nil {
		t.Fatalf("admit: %v", err)
	}
	if admitted.SubmissionCountInWindow != 1 {
		t.Fatalf("expected count 1, got %d", admitted.SubmissionCountInWindow)
	}
	if admitted.WindowStartedAt == nil || !admitted.WindowStartedAt.Equal(gateNow) {
		t.Fatalf("expected window to start at %s, got %v", gateNow, admitted.WindowStartedAt)
	}
	if member.WindowStartedAt != nil || member.SubmissionCountInWindow != 0 {
		t.Fatalf("admit must not mutate its input")
	}
}

func TestAdmitRejectsCompletedTaskBeforeQuota(t *testing.T) {
	gate := NewSubmissionGate(1, time.Hour)
	started := gateNow.Add(-time.Minute)
	member := entities.Member{
		MemberID:                "m-1",
		SubmissionCountInWindow: 1,
		WindowStartedAt:         &started,
		CompletedTaskIDs:        []string{"t-1"},
	}

	_, err := gate.Admit(member, entities.Task{TaskID: "t-1"}, gateNow)
	if !errors.Is(err, domainerrors.ErrAlreadyCompleted) {
		t.Fatalf("expected ErrAlreadyCompleted, got %v", err)
	}
}

func TestAdmitRejectsOverQuotaWithRetryAfter(t *testing.T) {
	gate := NewSubmissionGate(3, 24*time.Hour)
	started := gateNow.Add(-(54*time.Minute + 59*time.Second))
	member := entities.Member{
		MemberID:                "m-1",
		SubmissionCountInWindow: 3,
		WindowStartedAt:         &started,
	}

	_, err := gate.Admit(member, entities.Task{TaskID: "t-2"}, gateNow)
	var limitErr *domainerrors.RateLimitError
	if !errors.As(err, &limitErr) {
		t.Fatalf("expected RateLimitError, got %v", err)
	}
	if !errors.Is(err, domainerrors.ErrRateLimited) {
		t.Fatalf("expected error to match ErrRateLimited")
	}
	want := 23*time.Hour + 5*time.Minute + time.Second
	if limitErr.RetryAfter != want {
		t.Fatalf("expected retry after %s, got %s", want, limitErr.RetryAfter)
	}
	if got := limitErr.Error(); got != "daily submission limit reached (3 per day), please wait 23h 5m before submitting again" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestAdmitResetsWindowAtBoundary(t *testing.T) {
	gate := NewSubmissionGate(3, 24*time.Hour)
	started := gateNow.Add(-24 * time.Hour)
	member := entities.Member{
		MemberID:                "m-1",
		SubmissionCountInWindow: 3,
		WindowStartedAt:         &started,
	}

	admitted, err := gate.Admit(member, entities.Task{TaskID: "t-2"}, gateNow)
	if err != nil {
		t.Fatalf("expected window to reset exactly at its end, got %v", err)
	}
	if admitted.SubmissionCountInWindow != 1 || !admitted.WindowStartedAt.Equal(gateNow) {
		t.Fatalf("expected fresh window, got count=%d start=%v", admitted.SubmissionCountInWindow, admitted.WindowStartedAt)
	}
}

func TestAdmitCountsWithinOpenWindow(t *testing.T) {
	gate := NewSubmissionGate(3, 24*time.Hour)
	started := gateNow.Add(-2 * time.Hour)
	member := entities.Member{
		MemberID:                "m-1",
		SubmissionCountInWindow: 2,
		WindowStartedAt:         &started,
	}

	admitted, err := gate.Admit(member, entities.Task{TaskID: "t-2"}, gateNow)
	if err != nil {
		t.Fatalf("admit: %v", err)
	}
	if admitted.SubmissionCountInWindow != 3 {
		t.Fatalf("expected count 3, got %d", admitted.SubmissionCountInWindow)
	}
	if !admitted.WindowStartedAt.Equal(started) {
		t.Fatalf("window start must not move inside the window")
	}
}

func TestRemainingReportsQuotaAndReset(t *testing.T) {
	gate := NewSubmissionGate(3, 24*time.Hour)

	remaining, resetsAt := gate.Remaining(entities.Member{MemberID: "m-1"}, gateNow)
	if remaining != 3 || resetsAt != nil {
		t.Fatalf("expected full quota without reset time, got %d %v", remaining, resetsAt)
	}

	started := gateNow.Add(-time.Hour)
	member := entities.Member{MemberID: "m-1", SubmissionCountInWindow: 2, WindowStartedAt: &started}
	remaining, resetsAt = gate.Remaining(member, gateNow)
	if remaining != 1 {
		t.Fatalf("expected 1 remaining, got %d", remaining)
	}
	if resetsAt == nil || !resetsAt.Equal(started.Add(24*time.Hour)) {
		t.Fatalf("unexpected reset time %v", resetsAt)
	}

	remaining, resetsAt = gate.Remaining(member, started.Add(24*time.Hour))
	if remaining != 3 || resetsAt != nil {
		t.Fatalf("expected expired window to report full quota, got %d %v", remaining, resetsAt)
	}
}

func TestZeroGateFallsBackToDefaults(t *testing.T) {
	var gate SubmissionGate
	started := gateNow.Add(-time.Hour)
	member := entities.Member{MemberID: "m-1", SubmissionCountInWindow: DefaultQuota, WindowStartedAt: &started}

	_, err := gate.Admit(member, entities.Task{TaskID: "t-1"}, gateNow)
	var limitErr *domainerrors.RateLimitError
	if !errors.As(err, &limitErr) {
		t.Fatalf("expected default quota to apply, got %v", err)
	}
	if limitErr.RetryAfter != DefaultWindow-time.Hour {
		t.Fatalf("unexpected retry after %s", limitErr.RetryAfter)
	}
}
