package objectstore

import (
	"context"
	"sync"
	"time"
)

const memoryBucket = "local"

// MemoryStore keeps objects in process memory. PutErr and DeleteErr, when
// set, are returned instead of touching the store.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string]Object
	prefix  string

	PutErr    error
	DeleteErr error
}

func NewMemoryStore(prefix string) *MemoryStore {
	return &MemoryStore{
		objects: make(map[string]Object),
		prefix:  prefix,
	}
}

func (s *MemoryStore) Put(_ context.Context, object Object) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.PutErr != nil {
		return "", s.PutErr
	}
	ref := Reference{Scheme: "mem", Bucket: memoryBucket, Key: ObjectKey(s.prefix, object.Filename, time.Now())}
	object.Data = append([]byte(nil), object.Data...)
	s.objects[ref.String()] = object
	return ref.String(), nil
}

func (s *MemoryStore) Delete(_ context.Context, reference string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	if _, err := resolveReference(reference, "mem", memoryBucket); err != nil {
		return err
	}
	delete(s.objects, reference)
	return nil
}

func (s *MemoryStore) Get(reference string) (Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	object, ok := s.objects[reference]
	if !ok {
		return Object{}, ErrObjectNotFound
	}
	return object, nil
}

func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}
