package bootstrap

import (
	"context"

	notificationapp "questboard/contexts/task-engagement/notification-service/application"
	"questboard/contexts/task-engagement/submission-service/domain/entities"
	"questboard/internal/platform/objectstore"
)

// evidenceStore adapts a platform object store to the submission-service
// ObjectStore port.
type evidenceStore struct {
	store objectstore.Store
}

func (e evidenceStore) Store(ctx context.Context, blob entities.Blob) (string, error) {
	return e.store.Put(ctx, objectstore.Object{
		Data:        blob.Data,
		ContentType: blob.ContentType,
		Filename:    blob.Filename,
	})
}

func (e evidenceStore) Remove(ctx context.Context, reference string) error {
	return e.store.Delete(ctx, reference)
}

// notificationBridge delivers moderation messages through the
// notification-service inbox.
type notificationBridge struct {
	service notificationapp.Service
}

func (n notificationBridge) Notify(ctx context.Context, memberID string, message string) error {
	_, err := n.service.Notify(ctx, memberID, message)
	return err
}
