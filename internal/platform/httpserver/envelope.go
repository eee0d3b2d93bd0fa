package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	notificationerrors "questboard/contexts/task-engagement/notification-service/domain/errors"
	submissionerrors "questboard/contexts/task-engagement/submission-service/domain/errors"
)

type errorEnvelope struct {
	Status    string    `json:"status"`
	Error     errorBody `json:"error"`
	Timestamp string    `json:"timestamp"`
}

type errorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

type successEnvelope struct {
	Status    string `json:"status"`
	Data      any    `json:"data"`
	Timestamp string `json:"timestamp"`
}

type healthResponse struct {
	Status string `json:"status"`
}

func writeSuccess(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, successEnvelope{
		Status:    "success",
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func writeError(w http.ResponseWriter, status int, code string, message string, details map[string]any) {
	writeJSON(w, status, errorEnvelope{
		Status: "error",
		Error: errorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var rateLimited *submissionerrors.RateLimitError
	switch {
	case errors.As(err, &rateLimited):
		seconds := int(rateLimited.RetryAfter.Round(time.Second) / time.Second)
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
		writeError(w, http.StatusTooManyRequests, "RATE_LIMITED", rateLimited.Error(), map[string]any{
			"retry_after":         submissionerrors.FormatRetryAfter(rateLimited.RetryAfter),
			"retry_after_seconds": seconds,
			"quota":               rateLimited.Quota,
		})
	case errors.Is(err, submissionerrors.ErrSubmissionNotFound):
		writeError(w, http.StatusNotFound, "SUBMISSION_NOT_FOUND", err.Error(), nil)
	case errors.Is(err, submissionerrors.ErrTaskNotFound):
		writeError(w, http.StatusNotFound, "TASK_NOT_FOUND", err.Error(), nil)
	case errors.Is(err, submissionerrors.ErrMemberNotFound):
		writeError(w, http.StatusNotFound, "MEMBER_NOT_FOUND", err.Error(), nil)
	case errors.Is(err, notificationerrors.ErrNotificationNotFound):
		writeError(w, http.StatusNotFound, "NOTIFICATION_NOT_FOUND", err.Error(), nil)
	case errors.Is(err, submissionerrors.ErrAlreadyCompleted):
		writeError(w, http.StatusConflict, "ALREADY_COMPLETED", err.Error(), nil)
	case errors.Is(err, submissionerrors.ErrDuplicatePending):
		writeError(w, http.StatusConflict, "DUPLICATE_PENDING", err.Error(), nil)
	case errors.Is(err, submissionerrors.ErrDuplicateTask):
		writeError(w, http.StatusConflict, "DUPLICATE_TASK", err.Error(), nil)
	case errors.Is(err, submissionerrors.ErrInactiveMember):
		writeError(w, http.StatusForbidden, "INACTIVE_MEMBER", err.Error(), nil)
	case errors.Is(err, submissionerrors.ErrUnauthorizedActor):
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", err.Error(), nil)
	case errors.Is(err, submissionerrors.ErrInvalidSubmissionInput),
		errors.Is(err, submissionerrors.ErrInvalidTaskInput),
		errors.Is(err, submissionerrors.ErrInvalidDecision),
		errors.Is(err, notificationerrors.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
	case errors.Is(err, submissionerrors.ErrObjectStoreUnavailable):
		writeError(w, http.StatusServiceUnavailable, "OBJECT_STORE_UNAVAILABLE", "evidence storage is unavailable, try again later", nil)
	case errors.Is(err, submissionerrors.ErrInconsistentState):
		s.logInternal(r, err)
		writeError(w, http.StatusInternalServerError, "INCONSISTENT_STATE", "submission references missing records", nil)
	default:
		s.logInternal(r, err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error", nil)
	}
}

func (s *Server) logInternal(r *http.Request, err error) {
	s.logger.Error("request failed",
		"event", "http_request_failed",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"method", r.Method,
		"path", r.URL.Path,
		"error", fmt.Sprint(err),
	)
}
