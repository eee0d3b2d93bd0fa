package commands

import (
	"context"
	"log/slog"
	"strings"

	application "questboard/contexts/task-engagement/submission-service/application"
	"questboard/contexts/task-engagement/submission-service/domain/entities"
	domainerrors "questboard/contexts/task-engagement/submission-service/domain/errors"
	"questboard/contexts/task-engagement/submission-service/ports"
)

type EnsureMemberCommand struct {
	MemberID    string
	Email       string
	DisplayName string
	Active      bool
}

// EnsureMemberUseCase provisions the member record the first time an
// identity is seen and keeps its profile in sync afterwards.
type EnsureMemberUseCase struct {
	Repository ports.Repository
	Clock      ports.Clock
	Logger     *slog.Logger
}

func (uc EnsureMemberUseCase) Execute(ctx context.Context, cmd EnsureMemberCommand) (entities.Member, error) {
	logger := application.ResolveLogger(uc.Logger)
	member := entities.Member{
		MemberID:    strings.TrimSpace(cmd.MemberID),
		Email:       strings.ToLower(strings.TrimSpace(cmd.Email)),
		DisplayName: strings.TrimSpace(cmd.DisplayName),
		Active:      cmd.Active,
		CreatedAt:   uc.Clock.Now().UTC(),
	}
	if !member.ValidateCreate() {
		return entities.Member{}, domainerrors.ErrUnauthorizedActor
	}
	if member.DisplayName == "" {
		member.DisplayName = member.Email
	}
	stored, err := uc.Repository.EnsureMember(ctx, member)
	if err != nil {
		logger.Error("member provisioning failed",
			"event", "member_ensure_failed",
			"module", "task-engagement/submission-service",
			"layer", "application",
			"member_id", member.MemberID,
			"error", err.Error(),
		)
		return entities.Member{}, err
	}
	return stored, nil
}
