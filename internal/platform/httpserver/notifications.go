package httpserver

import (
	"net/http"

	notificationhttp "questboard/contexts/task-engagement/notification-service/transport/http"
)

// handleListNotifications godoc
// @Summary Notifications for the caller, newest first
// @Tags notifications
// @Security BearerAuth
// @Produce json
// @Success 200 {object} notificationhttp.ListNotificationsResponse
// @Router /v1/me/notifications [get]
func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r.Context())
	resp, err := s.notifications.Handler.ListNotificationsHandler(r.Context(), actor.MemberID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, resp)
}

// handleMarkNotificationsRead godoc
// @Summary Mark notifications as read
// @Tags notifications
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body notificationhttp.MarkReadRequest true "ids"
// @Success 200 {object} notificationhttp.MarkReadResponse
// @Router /v1/me/notifications/read [post]
func (s *Server) handleMarkNotificationsRead(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r.Context())
	var req notificationhttp.MarkReadRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.notifications.Handler.MarkReadHandler(r.Context(), actor.MemberID, req)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, resp)
}

// handleDeleteNotifications godoc
// @Summary Delete every notification of the caller
// @Tags notifications
// @Security BearerAuth
// @Produce json
// @Success 200 {object} notificationhttp.DeleteAllResponse
// @Router /v1/me/notifications [delete]
func (s *Server) handleDeleteNotifications(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r.Context())
	resp, err := s.notifications.Handler.DeleteAllHandler(r.Context(), actor.MemberID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, resp)
}
