package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	notificationservice "questboard/contexts/task-engagement/notification-service"
	submissionservice "questboard/contexts/task-engagement/submission-service"
	"questboard/contexts/task-engagement/submission-service/adapters/memory"
	"questboard/contexts/task-engagement/submission-service/domain/entities"
	"questboard/internal/platform/auth"
	"questboard/internal/platform/objectstore"
	"questboard/internal/platform/throttle"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type blobStore struct {
	store *objectstore.MemoryStore
}

func (b blobStore) Store(ctx context.Context, blob entities.Blob) (string, error) {
	return b.store.Put(ctx, objectstore.Object{Data: blob.Data, ContentType: blob.ContentType, Filename: blob.Filename})
}

func (b blobStore) Remove(ctx context.Context, reference string) error {
	return b.store.Delete(ctx, reference)
}

type inboxNotifier struct {
	module notificationservice.Module
}

func (n inboxNotifier) Notify(ctx context.Context, memberID string, message string) error {
	_, err := n.module.Service.Notify(ctx, memberID, message)
	return err
}

type countingObserver struct {
	routes []string
}

func (o *countingObserver) Throttled(route string) {
	o.routes = append(o.routes, route)
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("connection refused") }

type testServer struct {
	server   *Server
	blobs    *objectstore.MemoryStore
	verifier *auth.Verifier
}

func newTestServer(t *testing.T, mutate func(*Options)) *testServer {
	t.Helper()
	blobs := objectstore.NewMemoryStore("submissions")
	notifications := notificationservice.NewInMemoryModule(nil)
	submissions := submissionservice.NewInMemoryModule(memory.Seed{
		Tasks: []entities.Task{
			{TaskID: "task-tree", Title: "Plant a tree", PointValue: 50},
			{TaskID: "task-park", Title: "Clean the park", PointValue: 30},
			{TaskID: "task-read", Title: "Read a book", PointValue: 10},
			{TaskID: "task-walk", Title: "Walk a dog", PointValue: 5},
		},
	}, blobStore{store: blobs}, inboxNotifier{module: notifications}, nil)

	verifier := auth.NewVerifier(testSecret, "questboard")
	opts := Options{
		Submissions:    submissions,
		Notifications:  notifications,
		Verifier:       verifier,
		MaxUploadBytes: 1 << 20,
	}
	if mutate != nil {
		mutate(&opts)
	}
	return &testServer{server: New(opts), blobs: blobs, verifier: verifier}
}

func (ts *testServer) token(t *testing.T, memberID string, role string) string {
	t.Helper()
	token, err := ts.verifier.Issue(auth.Principal{MemberID: memberID, Email: memberID + "@example.com", Name: memberID, Role: role, Active: true}, time.Hour)
	require.NoError(t, err)
	return token
}

func (ts *testServer) do(t *testing.T, req *http.Request, token string) *httptest.ResponseRecorder {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.server.mux.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) submit(t *testing.T, token string, title string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("task_title", title))
	if data != nil {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", `form-data; name="file"; filename="proof.txt"`)
		header.Set("Content-Type", "text/plain")
		part, err := writer.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/submissions", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return ts.do(t, req, token)
}

type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, target any) {
	t.Helper()
	env := decodeEnvelope(t, rec)
	require.Equal(t, "success", env.Status, rec.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, target))
}

func TestHealthReportsDatabaseState(t *testing.T) {
	ts := newTestServer(t, nil)
	rec := ts.do(t, httptest.NewRequest(http.MethodGet, "/healthz", nil), "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	ts = newTestServer(t, func(o *Options) { o.Database = failingPinger{} })
	rec = ts.do(t, httptest.NewRequest(http.MethodGet, "/healthz", nil), "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "DATABASE_UNAVAILABLE", decodeEnvelope(t, rec).Error.Code)
}

func TestAuthenticationErrors(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(t, httptest.NewRequest(http.MethodGet, "/v1/tasks", nil), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", decodeEnvelope(t, rec).Error.Code)

	rec = ts.do(t, httptest.NewRequest(http.MethodGet, "/v1/tasks", nil), "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_TOKEN", decodeEnvelope(t, rec).Error.Code)

	rec = ts.do(t, httptest.NewRequest(http.MethodGet, "/v1/submissions", nil), ts.token(t, "alice", auth.RoleMember))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", decodeEnvelope(t, rec).Error.Code)

	unconfigured := newTestServer(t, func(o *Options) { o.Verifier = nil })
	rec = unconfigured.do(t, httptest.NewRequest(http.MethodGet, "/v1/tasks", nil), "anything")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "AUTH_NOT_CONFIGURED", decodeEnvelope(t, rec).Error.Code)
}

func TestSubmissionLifecycleOverHTTP(t *testing.T) {
	ts := newTestServer(t, nil)
	alice := ts.token(t, "alice", auth.RoleMember)
	mod := ts.token(t, "mod", auth.RoleModerator)

	rec := ts.submit(t, alice, "Plant a tree", []byte("I planted an oak"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var submitted struct {
		Message    string `json:"message"`
		Submission struct {
			SubmissionID string `json:"submission_id"`
			State        string `json:"state"`
			ContentType  string `json:"content_type"`
		} `json:"submission"`
	}
	decodeData(t, rec, &submitted)
	assert.Equal(t, "pending", submitted.Submission.State)
	assert.Equal(t, "text/plain", submitted.Submission.ContentType)
	assert.Equal(t, 1, ts.blobs.Len())

	rec = ts.submit(t, alice, "Plant a tree", []byte("again"))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "DUPLICATE_PENDING", decodeEnvelope(t, rec).Error.Code)
	assert.Equal(t, 1, ts.blobs.Len(), "duplicate evidence must be discarded")

	rec = ts.do(t, httptest.NewRequest(http.MethodGet, "/v1/submissions?task_title=Plant+a+tree", nil), mod)
	require.Equal(t, http.StatusOK, rec.Code)
	var listed struct {
		Items []struct {
			SubmissionID string `json:"submission_id"`
			Member       struct {
				MemberID string `json:"member_id"`
			} `json:"member"`
		} `json:"items"`
	}
	decodeData(t, rec, &listed)
	require.Len(t, listed.Items, 1)
	assert.Equal(t, "alice", listed.Items[0].Member.MemberID)

	rec = ts.do(t, httptest.NewRequest(http.MethodPost, "/v1/submissions/"+submitted.Submission.SubmissionID+"/accept", nil), mod)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var decided struct {
		Message         string `json:"message"`
		PointsCredited  int    `json:"points_credited"`
		CumulativeScore int    `json:"cumulative_score"`
	}
	decodeData(t, rec, &decided)
	assert.Equal(t, "submission accepted, 50 points credited", decided.Message)
	assert.Equal(t, 50, decided.CumulativeScore)
	assert.Equal(t, 0, ts.blobs.Len(), "decided evidence must be removed")

	rec = ts.do(t, httptest.NewRequest(http.MethodPost, "/v1/submissions/"+submitted.Submission.SubmissionID+"/refuse", nil), mod)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "SUBMISSION_NOT_FOUND", decodeEnvelope(t, rec).Error.Code)

	rec = ts.do(t, httptest.NewRequest(http.MethodGet, "/v1/me/notifications", nil), alice)
	require.Equal(t, http.StatusOK, rec.Code)
	var inbox struct {
		Items []struct {
			NotificationID string `json:"notification_id"`
			Message        string `json:"message"`
		} `json:"items"`
		UnreadCount int `json:"unread_count"`
	}
	decodeData(t, rec, &inbox)
	require.Len(t, inbox.Items, 1)
	assert.Equal(t, 1, inbox.UnreadCount)
	assert.Equal(t, "Congratulations! Your task \"Plant a tree\" has been approved and completed successfully!", inbox.Items[0].Message)

	markBody, _ := json.Marshal(map[string]any{"notification_ids": []string{inbox.Items[0].NotificationID}})
	rec = ts.do(t, httptest.NewRequest(http.MethodPost, "/v1/me/notifications/read", bytes.NewReader(markBody)), alice)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var marked struct {
		Updated int `json:"updated"`
	}
	decodeData(t, rec, &marked)
	assert.Equal(t, 1, marked.Updated)

	rec = ts.do(t, httptest.NewRequest(http.MethodGet, "/v1/me/standing", nil), alice)
	require.Equal(t, http.StatusOK, rec.Code)
	var standing struct {
		CumulativeScore  int      `json:"cumulative_score"`
		Rank             int      `json:"rank"`
		CompletedTaskIDs []string `json:"completed_task_ids"`
		RemainingQuota   int      `json:"remaining_quota"`
	}
	decodeData(t, rec, &standing)
	assert.Equal(t, 50, standing.CumulativeScore)
	assert.Equal(t, 1, standing.Rank)
	assert.Equal(t, []string{"task-tree"}, standing.CompletedTaskIDs)
	assert.Equal(t, 2, standing.RemainingQuota)

	rec = ts.submit(t, alice, "Plant a tree", []byte("once more"))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "ALREADY_COMPLETED", decodeEnvelope(t, rec).Error.Code)

	rec = ts.do(t, httptest.NewRequest(http.MethodDelete, "/v1/me/notifications", nil), alice)
	require.Equal(t, http.StatusOK, rec.Code)
	var cleared struct {
		Deleted int `json:"deleted"`
	}
	decodeData(t, rec, &cleared)
	assert.Equal(t, 1, cleared.Deleted)
}

func TestSubmitRateLimitReturnsRetryAfter(t *testing.T) {
	ts := newTestServer(t, nil)
	alice := ts.token(t, "alice", auth.RoleMember)

	for _, title := range []string{"Plant a tree", "Clean the park", "Read a book"} {
		rec := ts.submit(t, alice, title, []byte("proof"))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}
	rec := ts.submit(t, alice, "Walk a dog", []byte("proof"))
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "RATE_LIMITED", env.Error.Code)
	assert.Contains(t, env.Error.Message, "daily submission limit reached (3 per day), please wait 23h 59m")
	assert.EqualValues(t, 3, env.Error.Details["quota"])
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestSubmitValidatesUpload(t *testing.T) {
	ts := newTestServer(t, func(o *Options) { o.MaxUploadBytes = 4 })
	alice := ts.token(t, "alice", auth.RoleMember)

	rec := ts.submit(t, alice, "Plant a tree", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "FILE_REQUIRED", decodeEnvelope(t, rec).Error.Code)

	rec = ts.submit(t, alice, "Plant a tree", []byte("too large"))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "FILE_TOO_LARGE", decodeEnvelope(t, rec).Error.Code)

	rec = ts.submit(t, alice, "Unknown task", []byte("ok"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "TASK_NOT_FOUND", decodeEnvelope(t, rec).Error.Code)

	req := httptest.NewRequest(http.MethodPost, "/v1/submissions", bytes.NewBufferString("plain body"))
	req.Header.Set("Content-Type", "text/plain")
	rec = ts.do(t, req, alice)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_MULTIPART", decodeEnvelope(t, rec).Error.Code)
	assert.Equal(t, 0, ts.blobs.Len())
}

func TestUploadThrottleRejectsBursts(t *testing.T) {
	observer := &countingObserver{}
	ts := newTestServer(t, func(o *Options) {
		o.UploadLimiter = throttle.NewLocalLimiter(throttle.Policy{PerMinute: 1, Burst: 1})
		o.Throttled = observer
	})
	alice := ts.token(t, "alice", auth.RoleMember)
	bob := ts.token(t, "bob", auth.RoleMember)

	rec := ts.submit(t, alice, "Plant a tree", []byte("proof"))
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = ts.submit(t, alice, "Clean the park", []byte("proof"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "TOO_MANY_REQUESTS", decodeEnvelope(t, rec).Error.Code)
	assert.Equal(t, []string{"submit"}, observer.routes)

	rec = ts.submit(t, bob, "Clean the park", []byte("proof"))
	assert.Equal(t, http.StatusCreated, rec.Code, "throttle buckets are per member")
}

func TestModeratorManagesCatalog(t *testing.T) {
	ts := newTestServer(t, nil)
	mod := ts.token(t, "mod", auth.RoleModerator)

	rec := ts.do(t, httptest.NewRequest(http.MethodPost, "/v1/tasks", bytes.NewBufferString(`{"title":"Recycle","point_value":20}`)), mod)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = ts.do(t, httptest.NewRequest(http.MethodPost, "/v1/tasks", bytes.NewBufferString(`{"title":"Recycle","point_value":5}`)), mod)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "DUPLICATE_TASK", decodeEnvelope(t, rec).Error.Code)

	rec = ts.do(t, httptest.NewRequest(http.MethodPost, "/v1/tasks", bytes.NewBufferString(`{"title":"X","bogus":1}`)), mod)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_JSON", decodeEnvelope(t, rec).Error.Code)

	rec = ts.do(t, httptest.NewRequest(http.MethodGet, "/v1/tasks", nil), mod)
	require.Equal(t, http.StatusOK, rec.Code)
	var tasks struct {
		Items []struct {
			Title string `json:"title"`
		} `json:"items"`
	}
	decodeData(t, rec, &tasks)
	assert.Len(t, tasks.Items, 5)

	rec = ts.do(t, httptest.NewRequest(http.MethodGet, "/v1/leaderboard?limit=abc", nil), mod)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_PAGINATION", decodeEnvelope(t, rec).Error.Code)

	rec = ts.do(t, httptest.NewRequest(http.MethodGet, "/v1/leaderboard?limit=10", nil), mod)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsRouteIsMounted(t *testing.T) {
	ts := newTestServer(t, func(o *Options) {
		o.MetricsHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("questboard_up 1\n"))
		})
	})
	rec := ts.do(t, httptest.NewRequest(http.MethodGet, "/metrics", nil), "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "questboard_up")
}
