package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	application "questboard/contexts/task-engagement/submission-service/application"
	"questboard/contexts/task-engagement/submission-service/domain/entities"
	domainerrors "questboard/contexts/task-engagement/submission-service/domain/errors"
	"questboard/contexts/task-engagement/submission-service/ports"
)

type DecideSubmissionCommand struct {
	SubmissionID string
	Outcome      entities.Outcome
	Actor        Actor
}

type DecideSubmissionResult struct {
	Decision       entities.Decision
	PointsCredited int
	NewScore       int
	Message        string
}

// DecideSubmissionUseCase is the moderation workflow. Score and completion
// changes commit together with the deletion of the submission; blob cleanup
// and the member notification run afterwards and never fail the decision.
type DecideSubmissionUseCase struct {
	Repository  ports.Repository
	ObjectStore ports.ObjectStore
	Notifier    ports.Notifier
	Clock       ports.Clock
	IDGen       ports.IDGenerator
	Metrics     ports.Metrics
	Logger      *slog.Logger
}

func (uc DecideSubmissionUseCase) Execute(ctx context.Context, cmd DecideSubmissionCommand) (DecideSubmissionResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	metrics := application.ResolveMetrics(uc.Metrics)

	submissionID := strings.TrimSpace(cmd.SubmissionID)
	actorID := cmd.Actor.id()
	if actorID == "" {
		return DecideSubmissionResult{}, domainerrors.ErrUnauthorizedActor
	}
	if !cmd.Actor.Active {
		return DecideSubmissionResult{}, domainerrors.ErrInactiveMember
	}
	if submissionID == "" || !cmd.Outcome.Valid() {
		return DecideSubmissionResult{}, domainerrors.ErrInvalidDecision
	}

	entryID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return DecideSubmissionResult{}, err
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return DecideSubmissionResult{}, err
	}
	now := uc.Clock.Now().UTC()

	result := DecideSubmissionResult{}
	apply := func(ctx context.Context, scope ports.DecisionScope, decision entities.Decision) error {
		if decision.Outcome == entities.OutcomeAccept {
			points := decision.Task.PointValue
			total, err := scope.Credit(ctx, entities.LedgerEntry{
				EntryID:      entryID,
				MemberID:     decision.Member.MemberID,
				SubmissionID: decision.Submission.SubmissionID,
				TaskID:       decision.Task.TaskID,
				Points:       points,
				Reason:       "task accepted: " + decision.Task.Title,
				CreatedAt:    now,
			})
			if err != nil {
				return err
			}
			if err := scope.MarkTaskCompleted(ctx, decision.Member.MemberID, decision.Task.TaskID); err != nil {
				return err
			}
			result.PointsCredited = points
			result.NewScore = total
		} else {
			result.NewScore = decision.Member.CumulativeScore
		}

		event, err := newSubmissionEnvelope(eventID, EventSubmissionDecided, decision.Submission.SubmissionID, now, map[string]any{
			"submission_id":   decision.Submission.SubmissionID,
			"member_id":       decision.Member.MemberID,
			"task_id":         decision.Task.TaskID,
			"task_title":      decision.Task.Title,
			"outcome":         string(decision.Outcome),
			"points_credited": result.PointsCredited,
			"cumulative":      result.NewScore,
			"decided_by":      decision.DecidedBy,
			"blob_reference":  decision.Submission.BlobReference,
		})
		if err != nil {
			return err
		}
		return scope.AppendOutbox(ctx, event)
	}

	decision, err := uc.Repository.TransitionAndDelete(ctx, submissionID, cmd.Outcome, actorID, now, apply)
	if err != nil {
		logger.Warn("moderation decision rejected",
			"event", "submission_decision_failed",
			"module", "task-engagement/submission-service",
			"layer", "application",
			"submission_id", submissionID,
			"outcome", string(cmd.Outcome),
			"actor_id", actorID,
			"error", err.Error(),
		)
		return DecideSubmissionResult{}, err
	}
	result.Decision = decision
	metrics.SubmissionDecided(string(decision.Outcome), result.PointsCredited)

	logger.Info("submission decided",
		"event", "submission_decided",
		"module", "task-engagement/submission-service",
		"layer", "application",
		"submission_id", decision.Submission.SubmissionID,
		"member_id", decision.Member.MemberID,
		"task_id", decision.Task.TaskID,
		"outcome", string(decision.Outcome),
		"points_credited", result.PointsCredited,
		"actor_id", actorID,
	)

	uc.removeEvidence(ctx, decision, logger)
	uc.notifyMember(ctx, decision, logger)

	if decision.Outcome == entities.OutcomeAccept {
		result.Message = fmt.Sprintf("submission accepted, %d points credited", result.PointsCredited)
	} else {
		result.Message = "submission refused"
	}
	return result, nil
}

func (uc DecideSubmissionUseCase) removeEvidence(ctx context.Context, decision entities.Decision, logger *slog.Logger) {
	if uc.ObjectStore == nil {
		return
	}
	reference := decision.Submission.BlobReference
	if err := uc.ObjectStore.Remove(ctx, reference); err != nil {
		application.ResolveMetrics(uc.Metrics).SideEffectFailed("blob_remove")
		logger.Warn("evidence cleanup failed",
			"event", "submission_blob_remove_failed",
			"module", "task-engagement/submission-service",
			"layer", "application",
			"submission_id", decision.Submission.SubmissionID,
			"blob_reference", reference,
			"error", err.Error(),
		)
	}
}

func (uc DecideSubmissionUseCase) notifyMember(ctx context.Context, decision entities.Decision, logger *slog.Logger) {
	if uc.Notifier == nil {
		return
	}
	if err := uc.Notifier.Notify(ctx, decision.Member.MemberID, DecisionMessage(decision.Outcome, decision.Task.Title)); err != nil {
		application.ResolveMetrics(uc.Metrics).SideEffectFailed("notify")
		logger.Warn("member notification failed",
			"event", "submission_notify_failed",
			"module", "task-engagement/submission-service",
			"layer", "application",
			"submission_id", decision.Submission.SubmissionID,
			"member_id", decision.Member.MemberID,
			"error", err.Error(),
		)
	}
}

// DecisionMessage is the text a member receives about a decided submission.
func DecisionMessage(outcome entities.Outcome, taskTitle string) string {
	if outcome == entities.OutcomeAccept {
		return fmt.Sprintf("Congratulations! Your task \"%s\" has been approved and completed successfully!", taskTitle)
	}
	return fmt.Sprintf("Your submission for task \"%s\" has been reviewed and was not accepted.", taskTitle)
}
