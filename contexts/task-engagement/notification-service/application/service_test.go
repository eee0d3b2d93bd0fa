package application

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"questboard/contexts/task-engagement/notification-service/adapters/memory"
	domainerrors "questboard/contexts/task-engagement/notification-service/domain/errors"
)

type tickingClock struct {
	now time.Time
}

func (c *tickingClock) Now() time.Time {
	c.now = c.now.Add(time.Second)
	return c.now
}

func newTestService() (Service, *memory.Store) {
	store := memory.NewStore(nil)
	return Service{
		Repo:  store,
		Clock: &tickingClock{now: time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)},
		IDGen: store,
	}, store
}

func TestNotifyStoresUnreadMessage(t *testing.T) {
	service, _ := newTestService()

	notification, err := service.Notify(context.Background(), " m-1 ", "  Your task was approved  ")
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if notification.MemberID != "m-1" || notification.Message != "Your task was approved" || notification.Read {
		t.Fatalf("unexpected notification %+v", notification)
	}

	unread, err := service.UnreadCount(context.Background(), "m-1")
	if err != nil || unread != 1 {
		t.Fatalf("expected one unread, got %d %v", unread, err)
	}
}

func TestNotifyRejectsBlankInputAndTruncatesLongMessages(t *testing.T) {
	service, _ := newTestService()

	if _, err := service.Notify(context.Background(), "", "hello"); !errors.Is(err, domainerrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for missing member, got %v", err)
	}
	if _, err := service.Notify(context.Background(), "m-1", "   "); !errors.Is(err, domainerrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank message, got %v", err)
	}

	notification, err := service.Notify(context.Background(), "m-1", strings.Repeat("x", 2500))
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(notification.Message) != 2000 {
		t.Fatalf("expected message truncated to 2000, got %d", len(notification.Message))
	}
}

func TestListMarkReadAndDeleteAreScopedToMember(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	first, _ := service.Notify(ctx, "m-1", "first")
	second, _ := service.Notify(ctx, "m-1", "second")
	other, _ := service.Notify(ctx, "m-2", "other")

	items, err := service.ListMemberNotifications(ctx, "m-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 2 || items[0].NotificationID != second.NotificationID || items[1].NotificationID != first.NotificationID {
		t.Fatalf("expected newest first, got %+v", items)
	}

	updated, err := service.MarkRead(ctx, "m-1", []string{first.NotificationID, first.NotificationID, " ", other.NotificationID})
	if err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if updated != 1 {
		t.Fatalf("expected only the member's own notification to change, got %d", updated)
	}
	if unread, _ := service.UnreadCount(ctx, "m-2"); unread != 1 {
		t.Fatalf("other member's notification must stay unread")
	}
	if _, err := service.MarkRead(ctx, "m-1", []string{" "}); !errors.Is(err, domainerrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty id list, got %v", err)
	}

	deleted, err := service.DeleteAll(ctx, "m-1")
	if err != nil || deleted != 2 {
		t.Fatalf("expected 2 deleted, got %d %v", deleted, err)
	}
	if items, _ := service.ListMemberNotifications(ctx, "m-2"); len(items) != 1 {
		t.Fatalf("delete must not touch other members")
	}
}
