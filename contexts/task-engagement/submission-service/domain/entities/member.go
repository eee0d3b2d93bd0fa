package entities

import (
	"sort"
	"strings"
	"time"
)

// Member is the submission-side projection of an identity. The score and the
// completion set are only changed by a moderation decision; the window
// fields are only changed by submission creation.
type Member struct {
	MemberID                string
	Email                   string
	DisplayName             string
	Active                  bool
	CumulativeScore         int
	SubmissionCountInWindow int
	WindowStartedAt         *time.Time
	CompletedTaskIDs        []string
	CreatedAt               time.Time
}

func (m Member) ValidateCreate() bool {
	return strings.TrimSpace(m.MemberID) != ""
}

func (m Member) HasCompleted(taskID string) bool {
	taskID = strings.TrimSpace(taskID)
	for _, id := range m.CompletedTaskIDs {
		if id == taskID {
			return true
		}
	}
	return false
}

// WithCompleted returns a copy of m whose completion set contains taskID.
func (m Member) WithCompleted(taskID string) Member {
	if m.HasCompleted(taskID) {
		return m
	}
	completed := make([]string, 0, len(m.CompletedTaskIDs)+1)
	completed = append(completed, m.CompletedTaskIDs...)
	completed = append(completed, strings.TrimSpace(taskID))
	sort.Strings(completed)
	m.CompletedTaskIDs = completed
	return m
}

// Clone returns a deep copy so callers can stage changes.
func (m Member) Clone() Member {
	out := m
	if m.WindowStartedAt != nil {
		startedAt := *m.WindowStartedAt
		out.WindowStartedAt = &startedAt
	}
	out.CompletedTaskIDs = append([]string(nil), m.CompletedTaskIDs...)
	return out
}

// LedgerEntry is one credit applied to a member's cumulative score.
type LedgerEntry struct {
	EntryID      string
	MemberID     string
	SubmissionID string
	TaskID       string
	Points       int
	Reason       string
	CreatedAt    time.Time
}

// Standing summarises a member for the member-facing views.
type Standing struct {
	Member         Member
	Rank           int
	RemainingQuota int
	WindowResetsAt *time.Time
	Ledger         []LedgerEntry
}

type LeaderboardEntry struct {
	MemberID        string
	DisplayName     string
	CumulativeScore int
	CompletedTasks  int
	Rank            int
}
