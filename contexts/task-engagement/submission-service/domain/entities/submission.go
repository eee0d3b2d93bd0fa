package entities

import (
	"strings"
	"time"
)

type SubmissionState string

const (
	SubmissionStatePending  SubmissionState = "pending"
	SubmissionStateAccepted SubmissionState = "accepted"
	SubmissionStateRefused  SubmissionState = "refused"
)

// Outcome is a moderation verdict. Both outcomes are terminal.
type Outcome string

const (
	OutcomeAccept Outcome = "accept"
	OutcomeRefuse Outcome = "refuse"
)

func (o Outcome) Valid() bool {
	return o == OutcomeAccept || o == OutcomeRefuse
}

// TerminalState is the state a pending submission takes when decided with o.
func (o Outcome) TerminalState() SubmissionState {
	if o == OutcomeAccept {
		return SubmissionStateAccepted
	}
	return SubmissionStateRefused
}

// Submission is a member's claim that a task was completed, backed by an
// uploaded artifact. Only pending submissions are persisted; a decided
// submission is deleted once its effects are folded into member state.
type Submission struct {
	SubmissionID     string
	MemberID         string
	TaskID           string
	BlobReference    string
	OriginalFilename string
	ContentType      string
	SizeBytes        int64
	State            SubmissionState
	CreatedAt        time.Time
}

func (s Submission) ValidateCreate() bool {
	return strings.TrimSpace(s.SubmissionID) != "" &&
		strings.TrimSpace(s.MemberID) != "" &&
		strings.TrimSpace(s.TaskID) != "" &&
		strings.TrimSpace(s.BlobReference) != "" &&
		s.State == SubmissionStatePending
}

// Decision is the snapshot a store hands to the moderation workflow while the
// submission row is locked.
type Decision struct {
	Submission Submission
	Member     Member
	Task       Task
	Outcome    Outcome
	DecidedAt  time.Time
	DecidedBy  string
}

// SubmissionView is a submission joined with its owner and task on the read side.
type SubmissionView struct {
	Submission Submission
	Member     Member
	Task       Task
}
