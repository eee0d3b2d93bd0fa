package objectstore

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidReference = errors.New("invalid object reference")
	ErrObjectNotFound   = errors.New("object not found")
)

// Object is an evidence file on its way into storage.
type Object struct {
	Data        []byte
	ContentType string
	Filename    string
}

// Store is implemented by every backend. Put returns a reference of the form
// scheme://bucket/key that Delete accepts back. Deleting a missing object is
// not an error.
type Store interface {
	Put(ctx context.Context, object Object) (string, error)
	Delete(ctx context.Context, reference string) error
}

// Reference is a parsed object reference.
type Reference struct {
	Scheme string
	Bucket string
	Key    string
}

func (r Reference) String() string {
	return r.Scheme + "://" + r.Bucket + "/" + r.Key
}

func ParseReference(raw string) (Reference, error) {
	scheme, rest, ok := strings.Cut(strings.TrimSpace(raw), "://")
	if !ok || scheme == "" {
		return Reference{}, fmt.Errorf("%w: %q", ErrInvalidReference, raw)
	}
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return Reference{}, fmt.Errorf("%w: %q", ErrInvalidReference, raw)
	}
	return Reference{Scheme: scheme, Bucket: bucket, Key: key}, nil
}

// ObjectKey builds a collision-free key under prefix, partitioned by day and
// keeping the original file extension.
func ObjectKey(prefix string, filename string, now time.Time) string {
	ext := strings.ToLower(path.Ext(path.Base(strings.ReplaceAll(filename, "\\", "/"))))
	if len(ext) > 10 || strings.ContainsAny(ext, " ?#%") {
		ext = ""
	}
	name := now.UTC().Format("2006/01/02") + "/" + uuid.NewString() + ext
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}

func resolveReference(raw string, scheme string, bucket string) (Reference, error) {
	ref, err := ParseReference(raw)
	if err != nil {
		return Reference{}, err
	}
	if ref.Scheme != scheme || ref.Bucket != bucket {
		return Reference{}, fmt.Errorf("%w: %q does not belong to %s://%s", ErrInvalidReference, raw, scheme, bucket)
	}
	return ref, nil
}
