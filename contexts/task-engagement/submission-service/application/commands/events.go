package commands

import (
	"time"

	"questboard/contexts/task-engagement/submission-service/ports"
	contractsv1 "questboard/contracts/gen/events/v1"
)

const (
	EventSubmissionCreated = "submission.created"
	EventSubmissionDecided = "submission.decided"
)

func newSubmissionEnvelope(
	eventID string,
	eventType string,
	submissionID string,
	occurredAt time.Time,
	data map[string]any,
) (ports.EventEnvelope, error) {
	return contractsv1.New(eventID, eventType, "submission-service", "submission_id", submissionID, occurredAt, data)
}
