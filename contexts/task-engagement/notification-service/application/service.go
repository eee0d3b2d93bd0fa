package application

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"questboard/contexts/task-engagement/notification-service/domain/entities"
	domainerrors "questboard/contexts/task-engagement/notification-service/domain/errors"
	"questboard/contexts/task-engagement/notification-service/ports"
)

const maxMessageLength = 2000

type Service struct {
	Repo   ports.Repository
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

// Notify records an unread message for memberID.
func (s Service) Notify(ctx context.Context, memberID string, message string) (entities.Notification, error) {
	logger := ResolveLogger(s.Logger)
	message = strings.TrimSpace(message)
	if len(message) > maxMessageLength {
		message = message[:maxMessageLength]
	}
	notificationID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return entities.Notification{}, err
	}
	notification := entities.Notification{
		NotificationID: notificationID,
		MemberID:       strings.TrimSpace(memberID),
		Message:        message,
		CreatedAt:      s.now(),
	}
	if !notification.ValidateCreate() {
		return entities.Notification{}, domainerrors.ErrInvalidInput
	}
	if err := s.Repo.CreateNotification(ctx, notification); err != nil {
		logger.Error("notification create failed",
			"event", "notification_create_failed",
			"module", "task-engagement/notification-service",
			"layer", "application",
			"member_id", notification.MemberID,
			"error", err.Error(),
		)
		return entities.Notification{}, err
	}
	logger.Info("notification created",
		"event", "notification_created",
		"module", "task-engagement/notification-service",
		"layer", "application",
		"notification_id", notification.NotificationID,
		"member_id", notification.MemberID,
	)
	return notification, nil
}

func (s Service) ListMemberNotifications(ctx context.Context, memberID string) ([]entities.Notification, error) {
	memberID = strings.TrimSpace(memberID)
	if memberID == "" {
		return nil, domainerrors.ErrInvalidInput
	}
	return s.Repo.ListNotifications(ctx, memberID)
}

func (s Service) MarkRead(ctx context.Context, memberID string, notificationIDs []string) (int, error) {
	memberID = strings.TrimSpace(memberID)
	if memberID == "" {
		return 0, domainerrors.ErrInvalidInput
	}
	ids := make([]string, 0, len(notificationIDs))
	seen := make(map[string]struct{}, len(notificationIDs))
	for _, id := range notificationIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return 0, domainerrors.ErrInvalidInput
	}
	return s.Repo.MarkRead(ctx, memberID, ids, s.now())
}

func (s Service) DeleteAll(ctx context.Context, memberID string) (int, error) {
	memberID = strings.TrimSpace(memberID)
	if memberID == "" {
		return 0, domainerrors.ErrInvalidInput
	}
	deleted, err := s.Repo.DeleteAll(ctx, memberID)
	if err != nil {
		return 0, err
	}
	ResolveLogger(s.Logger).Info("notifications cleared",
		"event", "notifications_deleted",
		"module", "task-engagement/notification-service",
		"layer", "application",
		"member_id", memberID,
		"deleted_count", deleted,
	)
	return deleted, nil
}

func (s Service) UnreadCount(ctx context.Context, memberID string) (int, error) {
	memberID = strings.TrimSpace(memberID)
	if memberID == "" {
		return 0, domainerrors.ErrInvalidInput
	}
	return s.Repo.CountUnread(ctx, memberID)
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}
