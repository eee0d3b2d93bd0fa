package objectstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/storage"
)

// GCSStore keeps evidence files in a Google Cloud Storage bucket. The client
// authenticates with application default credentials.
type GCSStore struct {
	client *storage.Client
	bucket string
	prefix string
}

type GCSConfig struct {
	Bucket string
	Prefix string
}

func NewGCSStore(ctx context.Context, cfg GCSConfig) (*GCSStore, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}
	return &GCSStore{
		client: client,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
	}, nil
}

func (s *GCSStore) Put(ctx context.Context, object Object) (string, error) {
	key := ObjectKey(s.prefix, object.Filename, time.Now())
	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = object.ContentType
	if w.ContentType == "" {
		w.ContentType = "application/octet-stream"
	}
	if _, err := w.Write(object.Data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("gcs write %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("gcs close %s: %w", key, err)
	}
	return Reference{Scheme: "gs", Bucket: s.bucket, Key: key}.String(), nil
}

func (s *GCSStore) Delete(ctx context.Context, reference string) error {
	ref, err := resolveReference(reference, "gs", s.bucket)
	if err != nil {
		return err
	}
	err = s.client.Bucket(ref.Bucket).Object(ref.Key).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("gcs delete %s: %w", reference, err)
	}
	return nil
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}
