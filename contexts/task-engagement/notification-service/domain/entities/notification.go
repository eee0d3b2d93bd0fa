package entities

import (
	"strings"
	"time"
)

// Notification is one message in a member's inbox.
type Notification struct {
	NotificationID string
	MemberID       string
	Message        string
	Read           bool
	CreatedAt      time.Time
	ReadAt         *time.Time
}

func (n Notification) ValidateCreate() bool {
	return strings.TrimSpace(n.NotificationID) != "" &&
		strings.TrimSpace(n.MemberID) != "" &&
		strings.TrimSpace(n.Message) != ""
}
