package commands

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

const DefaultMaxBlobBytes int64 = 50 << 20

type SubmitTaskCommand struct {
	Actor     Actor
	TaskTitle string
	Blob      entities.Blob
}

type SubmitTaskUseCase struct {
	Repository   ports.Repository
	ObjectStore  ports.ObjectStore
	Gate         services.SubmissionGate
	Clock        ports.Clock
	IDGen        ports.IDGenerator
	Metrics      ports.Metrics
	MaxBlobBytes int64
	Logger       *slog.Logger
}

func (uc SubmitTaskUseCase) Execute(ctx context.Context, cmd SubmitTaskCommand) (entities.Submission, error) {
	logger := application.ResolveLogger(uc.Logger)
	metrics := application.ResolveMetrics(uc.Metrics)

	submission, err := uc.execute(ctx, cmd, logger)
	if err != nil {
		metrics.SubmissionRejected(rejectionReason(err))
		return entities.Submission{}, err
	}
	metrics.SubmissionCreated()
	return submission, nil
}

func (uc SubmitTaskUseCase) execute(ctx context.Context, cmd SubmitTaskCommand, logger *slog.Logger) (entities.Submission, error) {
	title := strings.TrimSpace(cmd.TaskTitle)
	blob := cmd.Blob
	blob.ContentType = entities.NormalizeContentType(blob.ContentType)
	blob.Filename = strings.TrimSpace(blob.Filename)
	if title == "" || !blob.Validate(uc.maxBlobBytes()) {
		return entities.Submission{}, domainerrors.ErrInvalidSubmissionInput
	}
	memberID := cmd.Actor.id()
	if memberID == "" {
		return entities.Submission{}, domainerrors.ErrUnauthorizedActor
	}
	if !cmd.Actor.Active {
		return entities.Submission{}, domainerrors.ErrInactiveMember
	}

	member, err := uc.Repository.GetMember(ctx, memberID)
	if err != nil {
		return entities.Submission{}, err
	}
	if !member.Active {
		return entities.Submission{}, domainerrors.ErrInactiveMember
	}
	task, err := uc.Repository.GetTaskByTitle(ctx, title)
	if err != nil {
		return entities.Submission{}, err
	}

	now := uc.Clock.Now().UTC()
	if err := uc.Gate.Preview(member, task, now); err != nil {
		return entities.Submission{}, err
	}

	reference, err := uc.ObjectStore.Store(ctx, blob)
	if err != nil {
		logger.Error("evidence upload failed",
			"event", "submission_blob_store_failed",
			"module", "task-engagement/submission-service",
			"layer", "application",
			"member_id", memberID,
			"task_id", task.TaskID,
			"error", err.Error(),
		)
		return entities.Submission{}, fmt.Errorf("%w: %v", domainerrors.ErrObjectStoreUnavailable, err)
	}

	submission, err := uc.persist(ctx, member.MemberID, task, blob, reference)
	if err != nil {
		uc.discardBlob(ctx, reference, logger)
		return entities.Submission{}, err
	}

	logger.Info("submission created",
		"event", "submission_created",
		"module", "task-engagement/submission-service",
		"layer", "application",
		"submission_id", submission.SubmissionID,
		"member_id", submission.MemberID,
		"task_id", submission.TaskID,
	)
	return submission, nil
}

func (uc SubmitTaskUseCase) persist(
	ctx context.Context,
	memberID string,
	task entities.Task,
	blob entities.Blob,
	reference string,
) (entities.Submission, error) {
	submissionID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Submission{}, err
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Submission{}, err
	}
	now := uc.Clock.Now().UTC()
	submission := entities.Submission{
		SubmissionID:     submissionID,
		MemberID:         memberID,
		TaskID:           task.TaskID,
		BlobReference:    reference,
		OriginalFilename: blob.Filename,
		ContentType:      blob.ContentType,
		SizeBytes:        int64(len(blob.Data)),
		State:            entities.SubmissionStatePending,
		CreatedAt:        now,
	}
	if !submission.ValidateCreate() {
		return entities.Submission{}, domainerrors.ErrInvalidSubmissionInput
	}
	event, err := newSubmissionEnvelope(eventID, EventSubmissionCreated, submissionID, now, map[string]any{
		"submission_id": submissionID,
		"member_id":     memberID,
		"task_id":       task.TaskID,
		"content_type":  submission.ContentType,
		"size_bytes":    submission.SizeBytes,
	})
	if err != nil {
		return entities.Submission{}, err
	}

	admit := func(locked entities.Member) (entities.Member, error) {
		return uc.Gate.Admit(locked, task, now)
	}
	if err := uc.Repository.CreateSubmission(ctx, submission, admit, event); err != nil {
		return entities.Submission{}, err
	}
	return submission, nil
}

func (uc SubmitTaskUseCase) discardBlob(ctx context.Context, reference string, logger *slog.Logger) {
	if err := uc.ObjectStore.Remove(ctx, reference); err != nil {
		application.ResolveMetrics(uc.Metrics).SideEffectFailed("blob_discard")
		logger.Warn("orphaned evidence could not be removed",
			"event", "submission_blob_discard_failed",
			"module", "task-engagement/submission-service",
			"layer", "application",
			"blob_reference", reference,
			"error", err.Error(),
		)
	}
}

func (uc SubmitTaskUseCase) maxBlobBytes() int64 {
	if uc.MaxBlobBytes <= 0 {
		return DefaultMaxBlobBytes
	}
	return uc.MaxBlobBytes
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domainerrors.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, domainerrors.ErrAlreadyCompleted):
		return "already_completed"
	case errors.Is(err, domainerrors.ErrDuplicatePending):
		return "duplicate_pending"
	case errors.Is(err, domainerrors.ErrInactiveMember):
		return "inactive_member"
	case errors.Is(err, domainerrors.ErrTaskNotFound), errors.Is(err, domainerrors.ErrMemberNotFound):
		return "not_found"
	case errors.Is(err, domainerrors.ErrInvalidSubmissionInput):
		return "invalid_input"
	case errors.Is(err, domainerrors.ErrObjectStoreUnavailable):
		return "object_store"
	default:
		return "other"
	}
}
