package queries

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	application "questboard/contexts/task-engagement/submission-service/application"
	"questboard/contexts/task-engagement/submission-service/domain/entities"
	domainerrors "questboard/contexts/task-engagement/submission-service/domain/errors"
	"questboard/contexts/task-engagement/submission-service/domain/services"
	"questboard/contexts/task-engagement/submission-service/ports"
)

const (
	defaultLeaderboardLimit = 50
	maxLeaderboardLimit     = 200
)

type QueryUseCase struct {
	Repository ports.Repository
	Gate       services.SubmissionGate
	Clock      ports.Clock
	Logger     *slog.Logger
}

func (uc QueryUseCase) GetSubmission(ctx context.Context, submissionID string) (entities.SubmissionView, error) {
	submission, err := uc.Repository.GetSubmission(ctx, strings.TrimSpace(submissionID))
	if err != nil {
		return entities.SubmissionView{}, err
	}
	return uc.resolve(ctx, submission)
}

// ListSubmissions returns every pending submission with its owner and task,
// oldest first.
func (uc QueryUseCase) ListSubmissions(ctx context.Context) ([]entities.SubmissionView, error) {
	items, err := uc.Repository.ListSubmissions(ctx, ports.SubmissionFilter{})
	if err != nil {
		return nil, err
	}
	return uc.resolveAll(ctx, items)
}

func (uc QueryUseCase) ListSubmissionsByTask(ctx context.Context, taskTitle string) ([]entities.SubmissionView, error) {
	title := strings.TrimSpace(taskTitle)
	if title == "" {
		return nil, domainerrors.ErrTaskNotFound
	}
	task, err := uc.Repository.GetTaskByTitle(ctx, title)
	if err != nil {
		return nil, err
	}
	items, err := uc.Repository.ListSubmissions(ctx, ports.SubmissionFilter{TaskID: task.TaskID})
	if err != nil {
		return nil, err
	}
	return uc.resolveAll(ctx, items)
}

func (uc QueryUseCase) ListTasks(ctx context.Context) ([]entities.Task, error) {
	return uc.Repository.ListTasks(ctx)
}

func (uc QueryUseCase) MemberStanding(ctx context.Context, memberID string) (entities.Standing, error) {
	member, err := uc.Repository.GetMember(ctx, strings.TrimSpace(memberID))
	if err != nil {
		return entities.Standing{}, err
	}
	ledger, err := uc.Repository.ListLedgerEntries(ctx, member.MemberID)
	if err != nil {
		return entities.Standing{}, err
	}
	rank, err := uc.Repository.MemberRank(ctx, member.MemberID)
	if err != nil {
		return entities.Standing{}, err
	}
	remaining, resetsAt := uc.Gate.Remaining(member, uc.Clock.Now())
	return entities.Standing{
		Member:         member,
		Rank:           rank,
		RemainingQuota: remaining,
		WindowResetsAt: resetsAt,
		Ledger:         ledger,
	}, nil
}

// Leaderboard ranks active members by score, ties broken by display name.
func (uc QueryUseCase) Leaderboard(ctx context.Context, limit int, offset int) ([]entities.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = defaultLeaderboardLimit
	}
	if limit > maxLeaderboardLimit {
		limit = maxLeaderboardLimit
	}
	if offset < 0 {
		offset = 0
	}
	return uc.Repository.ListLeaderboard(ctx, limit, offset)
}

func (uc QueryUseCase) resolveAll(ctx context.Context, items []entities.Submission) ([]entities.SubmissionView, error) {
	views := make([]entities.SubmissionView, 0, len(items))
	for _, item := range items {
		view, err := uc.resolve(ctx, item)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

func (uc QueryUseCase) resolve(ctx context.Context, submission entities.Submission) (entities.SubmissionView, error) {
	member, err := uc.Repository.GetMember(ctx, submission.MemberID)
	if err != nil {
		return entities.SubmissionView{}, uc.orphaned(submission, err)
	}
	task, err := uc.Repository.GetTask(ctx, submission.TaskID)
	if err != nil {
		return entities.SubmissionView{}, uc.orphaned(submission, err)
	}
	return entities.SubmissionView{Submission: submission, Member: member, Task: task}, nil
}

func (uc QueryUseCase) orphaned(submission entities.Submission, err error) error {
	if !errors.Is(err, domainerrors.ErrMemberNotFound) && !errors.Is(err, domainerrors.ErrTaskNotFound) {
		return err
	}
	application.ResolveLogger(uc.Logger).Error("submission references missing data",
		"event", "submission_orphan_detected",
		"module", "task-engagement/submission-service",
		"layer", "application",
		"submission_id", submission.SubmissionID,
		"member_id", submission.MemberID,
		"task_id", submission.TaskID,
		"error", err.Error(),
	)
	return fmt.Errorf("%w: submission %s: %v", domainerrors.ErrInconsistentState, submission.SubmissionID, err)
}
