package ports

import (
	"context"
	"time"

	"questboard/contexts/task-engagement/submission-service/domain/entities"
	contractsv1 "questboard/contracts/gen/events/v1"
)

type EventEnvelope = contractsv1.Envelope

type SubmissionFilter struct {
	MemberID string
	TaskID   string
}

// AdmitFunc runs against the freshly locked member row and returns the member
// to persist alongside the new submission.
type AdmitFunc func(member entities.Member) (entities.Member, error)

// ApplyDecisionFunc folds a decision into member state. It runs inside the
// store's transaction, with the submission row locked, and must not call
// anything outside the scope it is handed.
type ApplyDecisionFunc func(ctx context.Context, scope DecisionScope, decision entities.Decision) error

type MemberDirectory interface {
	GetMember(ctx context.Context, memberID string) (entities.Member, error)
	// EnsureMember creates the member on first sight and otherwise refreshes
	// the profile fields (email, display name, active) from the identity.
	EnsureMember(ctx context.Context, member entities.Member) (entities.Member, error)
}

type TaskCatalog interface {
	CreateTask(ctx context.Context, task entities.Task) error
	GetTask(ctx context.Context, taskID string) (entities.Task, error)
	GetTaskByTitle(ctx context.Context, title string) (entities.Task, error)
	ListTasks(ctx context.Context) ([]entities.Task, error)
}

type SubmissionStore interface {
	// CreateSubmission locks the owner, runs admit, rejects a second pending
	// submission for the same task, then writes submission, member window and
	// event together.
	CreateSubmission(ctx context.Context, submission entities.Submission, admit AdmitFunc, event EventEnvelope) error
	GetSubmission(ctx context.Context, submissionID string) (entities.Submission, error)
	// ListSubmissions returns pending submissions in creation order.
	ListSubmissions(ctx context.Context, filter SubmissionFilter) ([]entities.Submission, error)
	// TransitionAndDelete locks the submission, hands the decision to apply
	// and deletes the row. Nothing is persisted if apply fails.
	TransitionAndDelete(ctx context.Context, submissionID string, outcome entities.Outcome, decidedBy string, decidedAt time.Time, apply ApplyDecisionFunc) (entities.Decision, error)
}

type ScoreLedger interface {
	// Credit adds the entry's points to the member and returns the new total.
	Credit(ctx context.Context, entry entities.LedgerEntry) (int, error)
}

type CompletionRecorder interface {
	MarkTaskCompleted(ctx context.Context, memberID string, taskID string) error
}

type OutboxWriter interface {
	AppendOutbox(ctx context.Context, envelope EventEnvelope) error
}

// DecisionScope is the transactional view a store exposes to ApplyDecisionFunc.
type DecisionScope interface {
	ScoreLedger
	CompletionRecorder
	OutboxWriter
}

type LedgerReader interface {
	ListLedgerEntries(ctx context.Context, memberID string) ([]entities.LedgerEntry, error)
	ListLeaderboard(ctx context.Context, limit int, offset int) ([]entities.LeaderboardEntry, error)
	// MemberRank is 1 + the number of active members ranked ahead of memberID.
	MemberRank(ctx context.Context, memberID string) (int, error)
}

type OutboxMessage struct {
	OutboxID    string
	EventType   string
	Payload     []byte
	CreatedAt   time.Time
	PublishedAt *time.Time
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type Repository interface {
	MemberDirectory
	TaskCatalog
	SubmissionStore
	LedgerReader
	OutboxRepository
}

// ObjectStore holds evidence files. Store returns an opaque reference that
// Remove accepts back.
type ObjectStore interface {
	Store(ctx context.Context, blob entities.Blob) (string, error)
	Remove(ctx context.Context, reference string) error
}

type Notifier interface {
	Notify(ctx context.Context, memberID string, message string) error
}

type Metrics interface {
	SubmissionCreated()
	SubmissionRejected(reason string)
	SubmissionDecided(outcome string, points int)
	SideEffectFailed(effect string)
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

type EventSubscriber interface {
	Subscribe(ctx context.Context, topic string, consumerGroup string, handler func(context.Context, EventEnvelope) error) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
