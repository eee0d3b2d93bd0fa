package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"questboard/contexts/task-engagement/notification-service/application"
	httptransport "questboard/contexts/task-engagement/notification-service/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) ListNotificationsHandler(ctx context.Context, memberID string) (httptransport.ListNotificationsResponse, error) {
	items, err := h.Service.ListMemberNotifications(ctx, memberID)
	if err != nil {
		return httptransport.ListNotificationsResponse{}, err
	}
	resp := httptransport.ListNotificationsResponse{
		Items: make([]httptransport.NotificationDTO, 0, len(items)),
	}
	for _, item := range items {
		dto := httptransport.NotificationDTO{
			NotificationID: item.NotificationID,
			Message:        item.Message,
			Read:           item.Read,
			CreatedAt:      item.CreatedAt.UTC().Format(time.RFC3339),
		}
		if item.ReadAt != nil {
			dto.ReadAt = item.ReadAt.UTC().Format(time.RFC3339)
		}
		if !item.Read {
			resp.UnreadCount++
		}
		resp.Items = append(resp.Items, dto)
	}
	return resp, nil
}

func (h Handler) MarkReadHandler(
	ctx context.Context,
	memberID string,
	req httptransport.MarkReadRequest,
) (httptransport.MarkReadResponse, error) {
	updated, err := h.Service.MarkRead(ctx, memberID, req.NotificationIDs)
	if err != nil {
		return httptransport.MarkReadResponse{}, err
	}
	return httptransport.MarkReadResponse{Updated: updated}, nil
}

func (h Handler) DeleteAllHandler(ctx context.Context, memberID string) (httptransport.DeleteAllResponse, error) {
	deleted, err := h.Service.DeleteAll(ctx, memberID)
	if err != nil {
		return httptransport.DeleteAllResponse{}, err
	}
	return httptransport.DeleteAllResponse{Deleted: deleted}, nil
}
