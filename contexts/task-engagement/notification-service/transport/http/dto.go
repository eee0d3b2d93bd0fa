package http

type NotificationDTO struct {
	NotificationID string `json:"notification_id"`
	Message        string `json:"message"`
	Read           bool   `json:"read"`
	CreatedAt      string `json:"created_at"`
	ReadAt         string `json:"read_at,omitempty"`
}

type ListNotificationsResponse struct {
	Items       []NotificationDTO `json:"items"`
	UnreadCount int               `json:"unread_count"`
}

type MarkReadRequest struct {
	NotificationIDs []string `json:"notification_ids"`
}

type MarkReadResponse struct {
	Updated int `json:"updated"`
}

type DeleteAllResponse struct {
	Deleted int `json:"deleted"`
}
