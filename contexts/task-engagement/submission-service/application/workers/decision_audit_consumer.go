package workers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	application "questboard/contexts/task-engagement/submission-service/application"
	"questboard/contexts/task-engagement/submission-service/ports"
)

const (
	submissionDecidedTopic       = "submission.decided"
	defaultDecisionAuditConsumer = "submission-service-decision-audit-cg"
)

type DecisionAuditRecord struct {
	EventID        string
	SubmissionID   string
	MemberID       string
	TaskID         string
	Outcome        string
	PointsCredited int
	DecidedBy      string
}

// DecisionAuditConsumer turns submission.decided events into audit log lines.
type DecisionAuditConsumer struct {
	Subscriber    ports.EventSubscriber
	ConsumerGroup string
	Logger        *slog.Logger
	// OnRecord, when set, receives every decoded record after it is logged.
	OnRecord func(DecisionAuditRecord)
}

func (c DecisionAuditConsumer) Start(ctx context.Context) error {
	group := strings.TrimSpace(c.ConsumerGroup)
	if group == "" {
		group = defaultDecisionAuditConsumer
	}
	return c.Subscriber.Subscribe(ctx, submissionDecidedTopic, group, c.handle)
}

func (c DecisionAuditConsumer) handle(_ context.Context, event ports.EventEnvelope) error {
	var payload struct {
		SubmissionID   string `json:"submission_id"`
		MemberID       string `json:"member_id"`
		TaskID         string `json:"task_id"`
		Outcome        string `json:"outcome"`
		PointsCredited int    `json:"points_credited"`
		DecidedBy      string `json:"decided_by"`
	}
	if err := event.DecodeData(&payload); err != nil {
		return fmt.Errorf("decode submission.decided payload: %w", err)
	}
	if strings.TrimSpace(payload.SubmissionID) == "" {
		return fmt.Errorf("submission.decided payload missing submission_id")
	}

	record := DecisionAuditRecord{
		EventID:        event.EventID,
		SubmissionID:   payload.SubmissionID,
		MemberID:       payload.MemberID,
		TaskID:         payload.TaskID,
		Outcome:        payload.Outcome,
		PointsCredited: payload.PointsCredited,
		DecidedBy:      payload.DecidedBy,
	}
	application.ResolveLogger(c.Logger).Info("moderation decision recorded",
		"event", "submission_decision_audited",
		"module", "task-engagement/submission-service",
		"layer", "worker",
		"event_id", record.EventID,
		"submission_id", record.SubmissionID,
		"member_id", record.MemberID,
		"task_id", record.TaskID,
		"outcome", record.Outcome,
		"points_credited", record.PointsCredited,
		"decided_by", record.DecidedBy,
		"occurred_at", event.OccurredAt,
	)
	if c.OnRecord != nil {
		c.OnRecord(record)
	}
	return nil
}
