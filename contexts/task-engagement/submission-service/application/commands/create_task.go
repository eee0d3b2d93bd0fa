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

type CreateTaskCommand struct {
	Title       string
	Description string
	PointValue  int
}

type CreateTaskUseCase struct {
	Repository ports.Repository
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

func (uc CreateTaskUseCase) Execute(ctx context.Context, cmd CreateTaskCommand) (entities.Task, error) {
	logger := application.ResolveLogger(uc.Logger)
	taskID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Task{}, err
	}
	task := entities.Task{
		TaskID:      taskID,
		Title:       strings.TrimSpace(cmd.Title),
		Description: strings.TrimSpace(cmd.Description),
		PointValue:  cmd.PointValue,
		CreatedAt:   uc.Clock.Now().UTC(),
	}
	if !task.ValidateCreate() {
		return entities.Task{}, domainerrors.ErrInvalidTaskInput
	}
	if err := uc.Repository.CreateTask(ctx, task); err != nil {
		return entities.Task{}, err
	}
	logger.Info("task created",
		"event", "task_created",
		"module", "task-engagement/submission-service",
		"layer", "application",
		"task_id", task.TaskID,
		"point_value", task.PointValue,
	)
	return task, nil
}
