package http

type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	PointValue  int    `json:"point_value"`
}

type TaskDTO struct {
	TaskID      string `json:"task_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	PointValue  int    `json:"point_value"`
	CreatedAt   string `json:"created_at"`
}

type CreateTaskResponse struct {
	Task TaskDTO `json:"task"`
}

type ListTasksResponse struct {
	Items []TaskDTO `json:"items"`
}

type MemberSummaryDTO struct {
	MemberID    string `json:"member_id"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"display_name"`
}

type SubmissionDTO struct {
	SubmissionID     string            `json:"submission_id"`
	TaskID           string            `json:"task_id"`
	MemberID         string            `json:"member_id"`
	State            string            `json:"state"`
	OriginalFilename string            `json:"original_filename,omitempty"`
	ContentType      string            `json:"content_type"`
	SizeBytes        int64             `json:"size_bytes"`
	BlobReference    string            `json:"blob_reference,omitempty"`
	CreatedAt        string            `json:"created_at"`
	Task             *TaskDTO          `json:"task,omitempty"`
	Member           *MemberSummaryDTO `json:"member,omitempty"`
}

type SubmitTaskResponse struct {
	Message    string        `json:"message"`
	Submission SubmissionDTO `json:"submission"`
}

type GetSubmissionResponse struct {
	Submission SubmissionDTO `json:"submission"`
}

type ListSubmissionsResponse struct {
	Items []SubmissionDTO `json:"items"`
}

type DecisionResponse struct {
	Message         string `json:"message"`
	SubmissionID    string `json:"submission_id"`
	MemberID        string `json:"member_id"`
	TaskID          string `json:"task_id"`
	Outcome         string `json:"outcome"`
	PointsCredited  int    `json:"points_credited"`
	CumulativeScore int    `json:"cumulative_score"`
	DecidedAt       string `json:"decided_at"`
}

type LedgerEntryDTO struct {
	EntryID      string `json:"entry_id"`
	SubmissionID string `json:"submission_id"`
	TaskID       string `json:"task_id"`
	Points       int    `json:"points"`
	Reason       string `json:"reason"`
	CreatedAt    string `json:"created_at"`
}

type StandingResponse struct {
	MemberID         string           `json:"member_id"`
	DisplayName      string           `json:"display_name"`
	CumulativeScore  int              `json:"cumulative_score"`
	Rank             int              `json:"rank"`
	CompletedTaskIDs []string         `json:"completed_task_ids"`
	RemainingQuota   int              `json:"remaining_quota"`
	WindowResetsAt   string           `json:"window_resets_at,omitempty"`
	Ledger           []LedgerEntryDTO `json:"ledger"`
}

type LeaderboardEntryDTO struct {
	Rank            int    `json:"rank"`
	MemberID        string `json:"member_id"`
	DisplayName     string `json:"display_name"`
	CumulativeScore int    `json:"cumulative_score"`
	CompletedTasks  int    `json:"completed_tasks"`
}

type LeaderboardResponse struct {
	Items []LeaderboardEntryDTO `json:"items"`
}
