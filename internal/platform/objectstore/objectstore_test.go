package objectstore

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectKeyPartitionsByDayAndKeepsExtension(t *testing.T) {
	now := time.Date(2026, time.March, 10, 23, 30, 0, 0, time.FixedZone("PST", -8*3600))

	key := ObjectKey("/submissions/", "Evidence.PNG", now)
	assert.True(t, strings.HasPrefix(key, "submissions/2026/03/11/"), key)
	assert.True(t, strings.HasSuffix(key, ".png"), key)

	assert.False(t, strings.Contains(ObjectKey("", `C:\docs\proof.pdf`, now), `\`))
	assert.True(t, strings.HasSuffix(ObjectKey("", `C:\docs\proof.pdf`, now), ".pdf"))
	assert.True(t, strings.HasPrefix(ObjectKey("", "a.txt", now), "2026/03/11/"))
	assert.NotEqual(t, ObjectKey("", "a.txt", now), ObjectKey("", "a.txt", now))

	weird := ObjectKey("", "file.averyverylongextension", now)
	assert.Equal(t, -1, strings.LastIndex(weird[strings.LastIndex(weird, "/"):], "."))
}

func TestParseReference(t *testing.T) {
	ref, err := ParseReference("s3://bucket/a/b/c.png")
	require.NoError(t, err)
	assert.Equal(t, Reference{Scheme: "s3", Bucket: "bucket", Key: "a/b/c.png"}, ref)
	assert.Equal(t, "s3://bucket/a/b/c.png", ref.String())

	for _, raw := range []string{"", "bucket/key", "s3://bucket", "s3:///key", "://bucket/key"} {
		_, err := ParseReference(raw)
		assert.ErrorIs(t, err, ErrInvalidReference, raw)
	}
}

func TestMemoryStorePutGetDelete(t *testing.T) {
	store := NewMemoryStore("submissions")
	data := []byte("proof")

	reference, err := store.Put(context.Background(), Object{Data: data, ContentType: "text/plain", Filename: "proof.txt"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(reference, "mem://local/submissions/"), reference)

	data[0] = 'X'
	object, err := store.Get(reference)
	require.NoError(t, err)
	assert.Equal(t, "proof", string(object.Data), "stored bytes must be copied")

	require.NoError(t, store.Delete(context.Background(), reference))
	assert.Equal(t, 0, store.Len())
	require.NoError(t, store.Delete(context.Background(), reference), "deleting twice is not an error")

	_, err = store.Get(reference)
	assert.ErrorIs(t, err, ErrObjectNotFound)
	assert.ErrorIs(t, store.Delete(context.Background(), "s3://other/key"), ErrInvalidReference)
}

func TestMemoryStoreInjectedFailures(t *testing.T) {
	store := NewMemoryStore("")
	store.PutErr = errors.New("disk full")
	_, err := store.Put(context.Background(), Object{Data: []byte("x")})
	assert.EqualError(t, err, "disk full")

	store.PutErr = nil
	store.DeleteErr = errors.New("locked")
	reference, err := store.Put(context.Background(), Object{Data: []byte("x")})
	require.NoError(t, err)
	assert.EqualError(t, store.Delete(context.Background(), reference), "locked")
	assert.Equal(t, 1, store.Len())
}

type s3Call struct {
	method      string
	path        string
	contentType string
	body        string
}

func TestS3StoreTalksToCompatibleEndpoint(t *testing.T) {
	var (
		mu    sync.Mutex
		calls []s3Call
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		calls = append(calls, s3Call{method: r.Method, path: r.URL.Path, contentType: r.Header.Get("Content-Type"), body: string(body)})
		mu.Unlock()
		switch r.Method {
		case http.MethodPut:
			w.Header().Set("ETag", `"etag"`)
			w.WriteHeader(http.StatusOK)
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	defer server.Close()

	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")

	store, err := NewS3Store(context.Background(), S3Config{
		Bucket:   "evidence",
		Region:   "us-east-1",
		Endpoint: server.URL,
		Prefix:   "submissions",
	})
	require.NoError(t, err)

	reference, err := store.Put(context.Background(), Object{Data: []byte("proof"), ContentType: "text/plain", Filename: "proof.txt"})
	require.NoError(t, err)
	ref, err := ParseReference(reference)
	require.NoError(t, err)
	assert.Equal(t, "s3", ref.Scheme)
	assert.Equal(t, "evidence", ref.Bucket)
	assert.True(t, strings.HasPrefix(ref.Key, "submissions/"), ref.Key)

	require.NoError(t, store.Delete(context.Background(), reference))
	assert.ErrorIs(t, store.Delete(context.Background(), "s3://another-bucket/key"), ErrInvalidReference)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, calls, 2)
	assert.Equal(t, http.MethodPut, calls[0].method)
	assert.Equal(t, "/evidence/"+ref.Key, calls[0].path)
	assert.Equal(t, "text/plain", calls[0].contentType)
	assert.Contains(t, calls[0].body, "proof")
	assert.Equal(t, http.MethodDelete, calls[1].method)
	assert.Equal(t, "/evidence/"+ref.Key, calls[1].path)
}
