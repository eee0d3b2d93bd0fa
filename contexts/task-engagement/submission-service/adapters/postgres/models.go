package postgresadapter

import (
	"time"

	"questboard/contexts/task-engagement/submission-service/domain/entities"
)

type memberModel struct {
	MemberID                string     `gorm:"column:member_id;primaryKey"`
	Email                   string     `gorm:"column:email"`
	DisplayName             string     `gorm:"column:display_name;index"`
	Active                  bool       `gorm:"column:active"`
	CumulativeScore         int        `gorm:"column:cumulative_score;not null;default:0;index"`
	SubmissionCountInWindow int        `gorm:"column:submission_count_in_window;not null;default:0"`
	WindowStartedAt         *time.Time `gorm:"column:window_started_at"`
	CreatedAt               time.Time  `gorm:"column:created_at"`
}

func (memberModel) TableName() string {
	return "members"
}

func (m memberModel) toEntity(completed []string) entities.Member {
	return entities.Member{
		MemberID:                m.MemberID,
		Email:                   m.Email,
		DisplayName:             m.DisplayName,
		Active:                  m.Active,
		CumulativeScore:         m.CumulativeScore,
		SubmissionCountInWindow: m.SubmissionCountInWindow,
		WindowStartedAt:         normalizeOptionalTime(m.WindowStartedAt),
		CompletedTaskIDs:        completed,
		CreatedAt:               m.CreatedAt.UTC(),
	}
}

type memberCompletionModel struct {
	MemberID    string    `gorm:"column:member_id;primaryKey"`
	TaskID      string    `gorm:"column:task_id;primaryKey"`
	CompletedAt time.Time `gorm:"column:completed_at"`
}

func (memberCompletionModel) TableName() string {
	return "member_completions"
}

type taskModel struct {
	TaskID      string    `gorm:"column:task_id;primaryKey"`
	Title       string    `gorm:"column:title;uniqueIndex"`
	Description string    `gorm:"column:description"`
	PointValue  int       `gorm:"column:point_value"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (taskModel) TableName() string {
	return "tasks"
}

func (m taskModel) toEntity() entities.Task {
	return entities.Task{
		TaskID:      m.TaskID,
		Title:       m.Title,
		Description: m.Description,
		PointValue:  m.PointValue,
		CreatedAt:   m.CreatedAt.UTC(),
	}
}

// submissionModel only ever holds pending rows; the unique index backs the
// one-pending-submission-per-task rule.
type submissionModel struct {
	SubmissionID     string    `gorm:"column:submission_id;primaryKey"`
	MemberID         string    `gorm:"column:member_id;uniqueIndex:idx_submissions_member_task"`
	TaskID           string    `gorm:"column:task_id;uniqueIndex:idx_submissions_member_task;index"`
	BlobReference    string    `gorm:"column:blob_reference"`
	OriginalFilename string    `gorm:"column:original_filename"`
	ContentType      string    `gorm:"column:content_type"`
	SizeBytes        int64     `gorm:"column:size_bytes"`
	State            string    `gorm:"column:state"`
	CreatedAt        time.Time `gorm:"column:created_at;index"`
}

func (submissionModel) TableName() string {
	return "submissions"
}

func submissionModelFromEntity(submission entities.Submission) submissionModel {
	return submissionModel{
		SubmissionID:     submission.SubmissionID,
		MemberID:         submission.MemberID,
		TaskID:           submission.TaskID,
		BlobReference:    submission.BlobReference,
		OriginalFilename: submission.OriginalFilename,
		ContentType:      submission.ContentType,
		SizeBytes:        submission.SizeBytes,
		State:            string(submission.State),
		CreatedAt:        submission.CreatedAt.UTC(),
	}
}

func (m submissionModel) toEntity() entities.Submission {
	return entities.Submission{
		SubmissionID:     m.SubmissionID,
		MemberID:         m.MemberID,
		TaskID:           m.TaskID,
		BlobReference:    m.BlobReference,
		OriginalFilename: m.OriginalFilename,
		ContentType:      m.ContentType,
		SizeBytes:        m.SizeBytes,
		State:            entities.SubmissionState(m.State),
		CreatedAt:        m.CreatedAt.UTC(),
	}
}

type ledgerEntryModel struct {
	EntryID      string    `gorm:"column:entry_id;primaryKey"`
	MemberID     string    `gorm:"column:member_id;index"`
	SubmissionID string    `gorm:"column:submission_id"`
	TaskID       string    `gorm:"column:task_id"`
	Points       int       `gorm:"column:points"`
	Reason       string    `gorm:"column:reason"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (ledgerEntryModel) TableName() string {
	return "score_ledger"
}

func (m ledgerEntryModel) toEntity() entities.LedgerEntry {
	return entities.LedgerEntry{
		EntryID:      m.EntryID,
		MemberID:     m.MemberID,
		SubmissionID: m.SubmissionID,
		TaskID:       m.TaskID,
		Points:       m.Points,
		Reason:       m.Reason,
		CreatedAt:    m.CreatedAt.UTC(),
	}
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status;index"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "submission_outbox"
}
