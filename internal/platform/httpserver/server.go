package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	notificationservice "questboard/contexts/task-engagement/notification-service"
	submissionservice "questboard/contexts/task-engagement/submission-service"
	"questboard/internal/platform/auth"
	"questboard/internal/platform/throttle"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "questboard/internal/platform/httpserver/docs"
)

const defaultMaxUploadBytes int64 = 50 << 20

// Pinger reports whether the backing database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ThrottleObserver is told about every request rejected by the upload limiter.
type ThrottleObserver interface {
	Throttled(route string)
}

type Options struct {
	Submissions    submissionservice.Module
	Notifications  notificationservice.Module
	Verifier       *auth.Verifier
	UploadLimiter  throttle.Limiter
	Throttled      ThrottleObserver
	Database       Pinger
	MetricsHandler http.Handler
	MaxUploadBytes int64
	Addr           string
	Logger         *slog.Logger
}

type Server struct {
	mux            *http.ServeMux
	logger         *slog.Logger
	addr           string
	submissions    submissionservice.Module
	notifications  notificationservice.Module
	verifier       *auth.Verifier
	uploadLimiter  throttle.Limiter
	throttled      ThrottleObserver
	database       Pinger
	maxUploadBytes int64
}

func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	addr := opts.Addr
	if addr == "" {
		addr = ":8080"
	}
	maxUpload := opts.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = defaultMaxUploadBytes
	}

	s := &Server{
		mux:            http.NewServeMux(),
		logger:         logger,
		addr:           addr,
		submissions:    opts.Submissions,
		notifications:  opts.Notifications,
		verifier:       opts.Verifier,
		uploadLimiter:  opts.UploadLimiter,
		throttled:      opts.Throttled,
		database:       opts.Database,
		maxUploadBytes: maxUpload,
	}
	s.registerRoutes(opts.MetricsHandler)
	return s
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	s.logger.Info("http server stopping",
		"event", "http_server_stopping",
		"module", "internal/platform/httpserver",
		"layer", "platform",
	)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) registerRoutes(metricsHandler http.Handler) {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	if metricsHandler != nil {
		s.mux.Handle("GET /metrics", metricsHandler)
	}
	s.mux.HandleFunc("GET /healthz", s.handleHealth)

	s.mux.HandleFunc("GET /v1/tasks", s.member(s.handleListTasks))
	s.mux.HandleFunc("POST /v1/tasks", s.moderator(s.handleCreateTask))

	s.mux.HandleFunc("POST /v1/submissions", s.member(s.throttle("submit", s.handleSubmitTask)))
	s.mux.HandleFunc("GET /v1/submissions", s.moderator(s.handleListSubmissions))
	s.mux.HandleFunc("GET /v1/submissions/{submission_id}", s.moderator(s.handleGetSubmission))
	s.mux.HandleFunc("POST /v1/submissions/{submission_id}/accept", s.moderator(s.handleAcceptSubmission))
	s.mux.HandleFunc("POST /v1/submissions/{submission_id}/refuse", s.moderator(s.handleRefuseSubmission))

	s.mux.HandleFunc("GET /v1/me/standing", s.member(s.handleStanding))
	s.mux.HandleFunc("GET /v1/leaderboard", s.member(s.handleLeaderboard))

	s.mux.HandleFunc("GET /v1/me/notifications", s.member(s.handleListNotifications))
	s.mux.HandleFunc("POST /v1/me/notifications/read", s.member(s.handleMarkNotificationsRead))
	s.mux.HandleFunc("DELETE /v1/me/notifications", s.member(s.handleDeleteNotifications))
}

// handleHealth godoc
// @Summary Liveness and database reachability
// @Tags system
// @Produce json
// @Success 200 {object} healthResponse
// @Failure 503 {object} errorEnvelope
// @Router /healthz [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.database != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.database.Ping(ctx); err != nil {
			s.logger.Warn("database ping failed",
				"event", "health_db_ping_failed",
				"module", "internal/platform/httpserver",
				"layer", "platform",
				"error", err.Error(),
			)
			writeError(w, http.StatusServiceUnavailable, "DATABASE_UNAVAILABLE", "database is unreachable", nil)
			return
		}
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}
