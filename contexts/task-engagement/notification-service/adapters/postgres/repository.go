package postgresadapter

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"questboard/contexts/task-engagement/notification-service/domain/entities"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) Migrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&notificationModel{})
}

func (r *Repository) CreateNotification(ctx context.Context, notification entities.Notification) error {
	row := notificationModel{
		NotificationID: notification.NotificationID,
		MemberID:       notification.MemberID,
		Message:        notification.Message,
		Read:           notification.Read,
		CreatedAt:      notification.CreatedAt.UTC(),
	}
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r *Repository) ListNotifications(ctx context.Context, memberID string) ([]entities.Notification, error) {
	var rows []notificationModel
	if err := r.db.WithContext(ctx).
		Where("member_id = ?", strings.TrimSpace(memberID)).
		Order("created_at DESC").
		Order("notification_id DESC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	items := make([]entities.Notification, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) MarkRead(ctx context.Context, memberID string, notificationIDs []string, readAt time.Time) (int, error) {
	if len(notificationIDs) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Model(&notificationModel{}).
		Where("member_id = ?", strings.TrimSpace(memberID)).
		Where("notification_id IN ?", notificationIDs).
		Where("is_read = ?", false).
		Updates(map[string]any{
			"is_read": true,
			"read_at": readAt.UTC(),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return int(result.RowsAffected), nil
}

func (r *Repository) DeleteAll(ctx context.Context, memberID string) (int, error) {
	result := r.db.WithContext(ctx).
		Where("member_id = ?", strings.TrimSpace(memberID)).
		Delete(&notificationModel{})
	if result.Error != nil {
		return 0, result.Error
	}
	return int(result.RowsAffected), nil
}

func (r *Repository) CountUnread(ctx context.Context, memberID string) (int, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&notificationModel{}).
		Where("member_id = ?", strings.TrimSpace(memberID)).
		Where("is_read = ?", false).
		Count(&count).
		Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

type notificationModel struct {
	NotificationID string     `gorm:"column:notification_id;primaryKey"`
	MemberID       string     `gorm:"column:member_id;index:idx_notifications_member_created"`
	Message        string     `gorm:"column:message"`
	Read           bool       `gorm:"column:is_read"`
	CreatedAt      time.Time  `gorm:"column:created_at;index:idx_notifications_member_created"`
	ReadAt         *time.Time `gorm:"column:read_at"`
}

func (notificationModel) TableName() string {
	return "notifications"
}

func (m notificationModel) toEntity() entities.Notification {
	item := entities.Notification{
		NotificationID: m.NotificationID,
		MemberID:       m.MemberID,
		Message:        m.Message,
		Read:           m.Read,
		CreatedAt:      m.CreatedAt.UTC(),
	}
	if m.ReadAt != nil {
		at := m.ReadAt.UTC()
		item.ReadAt = &at
	}
	return item
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
