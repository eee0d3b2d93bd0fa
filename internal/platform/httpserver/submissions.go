package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"questboard/contexts/task-engagement/submission-service/domain/entities"
	submissionhttp "questboard/contexts/task-engagement/submission-service/transport/http"
)

// multipart framing allowance on top of the file itself
const multipartOverhead int64 = 1 << 20

// handleListTasks godoc
// @Summary List the task catalog
// @Tags tasks
// @Security BearerAuth
// @Produce json
// @Success 200 {object} submissionhttp.ListTasksResponse
// @Router /v1/tasks [get]
func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	resp, err := s.submissions.Handler.ListTasksHandler(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, resp)
}

// handleCreateTask godoc
// @Summary Add a task to the catalog
// @Tags tasks
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body submissionhttp.CreateTaskRequest true "task"
// @Success 201 {object} submissionhttp.CreateTaskResponse
// @Failure 409 {object} errorEnvelope
// @Router /v1/tasks [post]
func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req submissionhttp.CreateTaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.submissions.Handler.CreateTaskHandler(r.Context(), req)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusCreated, resp)
}

// handleSubmitTask godoc
// @Summary Submit evidence for a task
// @Tags submissions
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param task_title formData string true "task title"
// @Param file formData file true "evidence"
// @Success 201 {object} submissionhttp.SubmitTaskResponse
// @Failure 409 {object} errorEnvelope
// @Failure 429 {object} errorEnvelope
// @Router /v1/submissions [post]
func (s *Server) handleSubmitTask(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes+multipartOverhead)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds the upload limit", map[string]any{
				"max_bytes": s.maxUploadBytes,
			})
			return
		}
		writeError(w, http.StatusBadRequest, "INVALID_MULTIPART", "request must be multipart/form-data", nil)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "FILE_REQUIRED", "file field is required", nil)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, s.maxUploadBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_MULTIPART", "file could not be read", nil)
		return
	}
	if int64(len(data)) > s.maxUploadBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds the upload limit", map[string]any{
			"max_bytes": s.maxUploadBytes,
		})
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	resp, err := s.submissions.Handler.SubmitTaskHandler(r.Context(), actor, r.FormValue("task_title"), entities.Blob{
		Data:        data,
		ContentType: contentType,
		Filename:    header.Filename,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusCreated, resp)
}

// handleListSubmissions godoc
// @Summary List pending submissions
// @Tags submissions
// @Security BearerAuth
// @Produce json
// @Param task_title query string false "restrict to one task"
// @Success 200 {object} submissionhttp.ListSubmissionsResponse
// @Router /v1/submissions [get]
func (s *Server) handleListSubmissions(w http.ResponseWriter, r *http.Request) {
	taskTitle := strings.TrimSpace(r.URL.Query().Get("task_title"))
	resp, err := s.submissions.Handler.ListSubmissionsHandler(r.Context(), taskTitle)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, resp)
}

// handleGetSubmission godoc
// @Summary Fetch one pending submission
// @Tags submissions
// @Security BearerAuth
// @Produce json
// @Param submission_id path string true "submission id"
// @Success 200 {object} submissionhttp.GetSubmissionResponse
// @Failure 404 {object} errorEnvelope
// @Router /v1/submissions/{submission_id} [get]
func (s *Server) handleGetSubmission(w http.ResponseWriter, r *http.Request) {
	resp, err := s.submissions.Handler.GetSubmissionHandler(r.Context(), r.PathValue("submission_id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, resp)
}

// handleAcceptSubmission godoc
// @Summary Accept a submission and credit its points
// @Tags submissions
// @Security BearerAuth
// @Produce json
// @Param submission_id path string true "submission id"
// @Success 200 {object} submissionhttp.DecisionResponse
// @Failure 404 {object} errorEnvelope
// @Router /v1/submissions/{submission_id}/accept [post]
func (s *Server) handleAcceptSubmission(w http.ResponseWriter, r *http.Request) {
	s.decide(w, r, entities.OutcomeAccept)
}

// handleRefuseSubmission godoc
// @Summary Refuse a submission
// @Tags submissions
// @Security BearerAuth
// @Produce json
// @Param submission_id path string true "submission id"
// @Success 200 {object} submissionhttp.DecisionResponse
// @Failure 404 {object} errorEnvelope
// @Router /v1/submissions/{submission_id}/refuse [post]
func (s *Server) handleRefuseSubmission(w http.ResponseWriter, r *http.Request) {
	s.decide(w, r, entities.OutcomeRefuse)
}

func (s *Server) decide(w http.ResponseWriter, r *http.Request, outcome entities.Outcome) {
	actor, _ := actorFrom(r.Context())
	resp, err := s.submissions.Handler.DecideSubmissionHandler(r.Context(), actor, r.PathValue("submission_id"), outcome)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, resp)
}

// handleStanding godoc
// @Summary Score, rank and remaining submissions for the caller
// @Tags members
// @Security BearerAuth
// @Produce json
// @Success 200 {object} submissionhttp.StandingResponse
// @Router /v1/me/standing [get]
func (s *Server) handleStanding(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r.Context())
	resp, err := s.submissions.Handler.StandingHandler(r.Context(), actor.MemberID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, resp)
}

// handleLeaderboard godoc
// @Summary Members ordered by cumulative score
// @Tags members
// @Security BearerAuth
// @Produce json
// @Param limit query int false "page size (max 200)"
// @Param offset query int false "rows to skip"
// @Success 200 {object} submissionhttp.LeaderboardResponse
// @Router /v1/leaderboard [get]
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit, ok := parseNonNegative(w, query.Get("limit"), "limit")
	if !ok {
		return
	}
	offset, ok := parseNonNegative(w, query.Get("offset"), "offset")
	if !ok {
		return
	}
	resp, err := s.submissions.Handler.LeaderboardHandler(r.Context(), limit, offset)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, resp)
}

func parseNonNegative(w http.ResponseWriter, raw string, name string) (int, bool) {
	if raw == "" {
		return 0, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		writeError(w, http.StatusBadRequest, "INVALID_PAGINATION", name+" must be a non-negative integer", nil)
		return 0, false
	}
	return value, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, target any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "request body must be valid JSON", nil)
		return false
	}
	return true
}
