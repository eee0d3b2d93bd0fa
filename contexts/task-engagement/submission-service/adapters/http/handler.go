package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"questboard/contexts/task-engagement/submission-service/application/commands"
	"questboard/contexts/task-engagement/submission-service/application/queries"
	"questboard/contexts/task-engagement/submission-service/domain/entities"
	httptransport "questboard/contexts/task-engagement/submission-service/transport/http"
)

type Handler struct {
	SubmitTask       commands.SubmitTaskUseCase
	DecideSubmission commands.DecideSubmissionUseCase
	CreateTask       commands.CreateTaskUseCase
	EnsureMember     commands.EnsureMemberUseCase
	Queries          queries.QueryUseCase
	Logger           *slog.Logger
}

func (h Handler) SubmitTaskHandler(
	ctx context.Context,
	actor commands.Actor,
	taskTitle string,
	blob entities.Blob,
) (httptransport.SubmitTaskResponse, error) {
	item, err := h.SubmitTask.Execute(ctx, commands.SubmitTaskCommand{
		Actor:     actor,
		TaskTitle: taskTitle,
		Blob:      blob,
	})
	if err != nil {
		return httptransport.SubmitTaskResponse{}, err
	}
	return httptransport.SubmitTaskResponse{
		Message:    "submission received and pending review",
		Submission: mapSubmission(item),
	}, nil
}

func (h Handler) DecideSubmissionHandler(
	ctx context.Context,
	actor commands.Actor,
	submissionID string,
	outcome entities.Outcome,
) (httptransport.DecisionResponse, error) {
	result, err := h.DecideSubmission.Execute(ctx, commands.DecideSubmissionCommand{
		SubmissionID: submissionID,
		Outcome:      outcome,
		Actor:        actor,
	})
	if err != nil {
		return httptransport.DecisionResponse{}, err
	}
	decision := result.Decision
	return httptransport.DecisionResponse{
		Message:         result.Message,
		SubmissionID:    decision.Submission.SubmissionID,
		MemberID:        decision.Member.MemberID,
		TaskID:          decision.Task.TaskID,
		Outcome:         string(decision.Outcome),
		PointsCredited:  result.PointsCredited,
		CumulativeScore: result.NewScore,
		DecidedAt:       decision.DecidedAt.Format(time.RFC3339),
	}, nil
}

func (h Handler) CreateTaskHandler(ctx context.Context, req httptransport.CreateTaskRequest) (httptransport.CreateTaskResponse, error) {
	task, err := h.CreateTask.Execute(ctx, commands.CreateTaskCommand{
		Title:       req.Title,
		Description: req.Description,
		PointValue:  req.PointValue,
	})
	if err != nil {
		return httptransport.CreateTaskResponse{}, err
	}
	return httptransport.CreateTaskResponse{Task: mapTask(task)}, nil
}

func (h Handler) ListTasksHandler(ctx context.Context) (httptransport.ListTasksResponse, error) {
	items, err := h.Queries.ListTasks(ctx)
	if err != nil {
		return httptransport.ListTasksResponse{}, err
	}
	result := make([]httptransport.TaskDTO, 0, len(items))
	for _, item := range items {
		result = append(result, mapTask(item))
	}
	return httptransport.ListTasksResponse{Items: result}, nil
}

func (h Handler) GetSubmissionHandler(ctx context.Context, submissionID string) (httptransport.GetSubmissionResponse, error) {
	view, err := h.Queries.GetSubmission(ctx, submissionID)
	if err != nil {
		return httptransport.GetSubmissionResponse{}, err
	}
	return httptransport.GetSubmissionResponse{Submission: mapSubmissionView(view)}, nil
}

// ListSubmissionsHandler lists every pending submission, or only those for
// taskTitle when it is set.
func (h Handler) ListSubmissionsHandler(ctx context.Context, taskTitle string) (httptransport.ListSubmissionsResponse, error) {
	var (
		views []entities.SubmissionView
		err   error
	)
	if taskTitle != "" {
		views, err = h.Queries.ListSubmissionsByTask(ctx, taskTitle)
	} else {
		views, err = h.Queries.ListSubmissions(ctx)
	}
	if err != nil {
		return httptransport.ListSubmissionsResponse{}, err
	}
	result := make([]httptransport.SubmissionDTO, 0, len(views))
	for _, view := range views {
		result = append(result, mapSubmissionView(view))
	}
	return httptransport.ListSubmissionsResponse{Items: result}, nil
}

func (h Handler) StandingHandler(ctx context.Context, memberID string) (httptransport.StandingResponse, error) {
	standing, err := h.Queries.MemberStanding(ctx, memberID)
	if err != nil {
		return httptransport.StandingResponse{}, err
	}
	ledger := make([]httptransport.LedgerEntryDTO, 0, len(standing.Ledger))
	for _, entry := range standing.Ledger {
		ledger = append(ledger, httptransport.LedgerEntryDTO{
			EntryID:      entry.EntryID,
			SubmissionID: entry.SubmissionID,
			TaskID:       entry.TaskID,
			Points:       entry.Points,
			Reason:       entry.Reason,
			CreatedAt:    entry.CreatedAt.Format(time.RFC3339),
		})
	}
	completed := append([]string{}, standing.Member.CompletedTaskIDs...)
	response := httptransport.StandingResponse{
		MemberID:         standing.Member.MemberID,
		DisplayName:      standing.Member.DisplayName,
		CumulativeScore:  standing.Member.CumulativeScore,
		Rank:             standing.Rank,
		CompletedTaskIDs: completed,
		RemainingQuota:   standing.RemainingQuota,
		Ledger:           ledger,
	}
	if standing.WindowResetsAt != nil {
		response.WindowResetsAt = standing.WindowResetsAt.Format(time.RFC3339)
	}
	return response, nil
}

func (h Handler) LeaderboardHandler(ctx context.Context, limit int, offset int) (httptransport.LeaderboardResponse, error) {
	items, err := h.Queries.Leaderboard(ctx, limit, offset)
	if err != nil {
		return httptransport.LeaderboardResponse{}, err
	}
	result := make([]httptransport.LeaderboardEntryDTO, 0, len(items))
	for _, item := range items {
		result = append(result, httptransport.LeaderboardEntryDTO{
			Rank:            item.Rank,
			MemberID:        item.MemberID,
			DisplayName:     item.DisplayName,
			CumulativeScore: item.CumulativeScore,
			CompletedTasks:  item.CompletedTasks,
		})
	}
	return httptransport.LeaderboardResponse{Items: result}, nil
}

func (h Handler) EnsureMemberHandler(ctx context.Context, cmd commands.EnsureMemberCommand) (entities.Member, error) {
	return h.EnsureMember.Execute(ctx, cmd)
}

func mapTask(item entities.Task) httptransport.TaskDTO {
	return httptransport.TaskDTO{
		TaskID:      item.TaskID,
		Title:       item.Title,
		Description: item.Description,
		PointValue:  item.PointValue,
		CreatedAt:   item.CreatedAt.Format(time.RFC3339),
	}
}

func mapSubmission(item entities.Submission) httptransport.SubmissionDTO {
	return httptransport.SubmissionDTO{
		SubmissionID:     item.SubmissionID,
		TaskID:           item.TaskID,
		MemberID:         item.MemberID,
		State:            string(item.State),
		OriginalFilename: item.OriginalFilename,
		ContentType:      item.ContentType,
		SizeBytes:        item.SizeBytes,
		CreatedAt:        item.CreatedAt.Format(time.RFC3339),
	}
}

func mapSubmissionView(view entities.SubmissionView) httptransport.SubmissionDTO {
	dto := mapSubmission(view.Submission)
	dto.BlobReference = view.Submission.BlobReference
	task := mapTask(view.Task)
	dto.Task = &task
	dto.Member = &httptransport.MemberSummaryDTO{
		MemberID:    view.Member.MemberID,
		Email:       view.Member.Email,
		DisplayName: view.Member.DisplayName,
	}
	return dto
}
