package ports

import (
	"context"
	"time"

	"questboard/contexts/task-engagement/notification-service/domain/entities"
)

type Repository interface {
	CreateNotification(ctx context.Context, notification entities.Notification) error
	// ListNotifications returns a member's notifications, newest first.
	ListNotifications(ctx context.Context, memberID string) ([]entities.Notification, error)
	// MarkRead flags the given notifications as read and returns how many
	// changed. IDs owned by another member are ignored.
	MarkRead(ctx context.Context, memberID string, notificationIDs []string, readAt time.Time) (int, error)
	DeleteAll(ctx context.Context, memberID string) (int, error)
	CountUnread(ctx context.Context, memberID string) (int, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
