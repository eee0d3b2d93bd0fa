package entities

import (
	"strings"
	"time"
)

// Task is immutable reference data. Title is unique and is the lookup key
// members submit against.
type Task struct {
	TaskID      string
	Title       string
	Description string
	PointValue  int
	CreatedAt   time.Time
}

func (t Task) ValidateCreate() bool {
	return strings.TrimSpace(t.TaskID) != "" &&
		strings.TrimSpace(t.Title) != "" &&
		t.PointValue >= 0
}

// Blob is an uploaded evidence file before it reaches the object store.
type Blob struct {
	Data        []byte
	ContentType string
	Filename    string
}

var allowedContentTypes = map[string]struct{}{
	"image/jpeg":      {},
	"image/png":       {},
	"image/gif":       {},
	"application/pdf": {},
	"text/plain":      {},
}

// NormalizeContentType lowercases the media type and drops parameters such as charset.
func NormalizeContentType(contentType string) string {
	value := strings.ToLower(strings.TrimSpace(contentType))
	if idx := strings.Index(value, ";"); idx >= 0 {
		value = strings.TrimSpace(value[:idx])
	}
	return value
}

func (b Blob) Validate(maxBytes int64) bool {
	if len(b.Data) == 0 {
		return false
	}
	if maxBytes > 0 && int64(len(b.Data)) > maxBytes {
		return false
	}
	_, ok := allowedContentTypes[NormalizeContentType(b.ContentType)]
	return ok
}
