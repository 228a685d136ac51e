package entity

import (
	"time"

	"github.com/google/uuid"
)

// Notification is an append-only fact: content is never edited after
// creation, only the read flag flips.
type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id,omitempty"`
	Message   string           `json:"message"`
	Read      bool             `json:"read"`
	Link      string           `json:"link,omitempty"`
	Meta      NotificationMeta `json:"meta"`
	CreatedAt time.Time        `json:"created_at"`
}

type NotificationMeta struct {
	FollowUpID string `json:"followUpId,omitempty"`
}

func NewNotification(message, link, followUpID string) *Notification {
	return &Notification{
		ID:        uuid.New().String(),
		Message:   message,
		Read:      false,
		Link:      link,
		Meta:      NotificationMeta{FollowUpID: followUpID},
		CreatedAt: time.Now(),
	}
}
