package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"questboard/contexts/task-engagement/notification-service/domain/entities"

	"github.com/google/uuid"
)

type Store struct {
	mu    sync.RWMutex
	items map[string]entities.Notification
	seq   map[string]int64
	next  int64
}

func NewStore(seed []entities.Notification) *Store {
	store := &Store{
		items: make(map[string]entities.Notification, len(seed)),
		seq:   make(map[string]int64, len(seed)),
	}
	for _, item := range seed {
		store.next++
		store.items[item.NotificationID] = item
		store.seq[item.NotificationID] = store.next
	}
	return store
}

func (s *Store) CreateNotification(_ context.Context, notification entities.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.next++
	s.items[notification.NotificationID] = notification
	s.seq[notification.NotificationID] = s.next
	return nil
}

func (s *Store) ListNotifications(_ context.Context, memberID string) ([]entities.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.Notification, 0)
	for _, item := range s.items {
		if item.MemberID == memberID {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return s.seq[items[i].NotificationID] > s.seq[items[j].NotificationID]
	})
	return items, nil
}

func (s *Store) MarkRead(_ context.Context, memberID string, notificationIDs []string, readAt time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := 0
	for _, id := range notificationIDs {
		item, ok := s.items[id]
		if !ok || item.MemberID != memberID || item.Read {
			continue
		}
		at := readAt.UTC()
		item.Read = true
		item.ReadAt = &at
		s.items[id] = item
		changed++
	}
	return changed, nil
}

func (s *Store) DeleteAll(_ context.Context, memberID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := 0
	for id, item := range s.items {
		if item.MemberID == memberID {
			delete(s.items, id)
			delete(s.seq, id)
			deleted++
		}
	}
	return deleted, nil
}

func (s *Store) CountUnread(_ context.Context, memberID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, item := range s.items {
		if item.MemberID == memberID && !item.Read {
			count++
		}
	}
	return count, nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
