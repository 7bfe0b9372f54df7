package dto

import (
	"encoding/json"
	"time"
)

// NotificationDTO represents one in-app notification
type NotificationDTO struct {
	ID             uint            `json:"id"`
	UUID           string          `json:"uuid"`
	Type           string          `json:"type" example:"approval_requested"`
	Title          string          `json:"title"`
	Message        string          `json:"message"`
	IsRead         *bool           `json:"is_read"`
	SuggestionID   *uint           `json:"suggestion_id,omitempty"`
	SuggestionUUID *string         `json:"suggestion_uuid,omitempty"`
	Payload        json.RawMessage `json:"payload,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// ListNotificationsRequest represents filters for the notification inbox
type ListNotificationsRequest struct {
	UnreadOnly bool `query:"unread_only"`
	Page       int  `query:"page" validate:"omitempty,min=1"`
	PageSize   int  `query:"page_size" validate:"omitempty,min=1,max=100"`
}

// ListNotificationsResponse represents a page of notifications
type ListNotificationsResponse struct {
	Notifications []NotificationDTO `json:"notifications"`
	UnreadCount   int64             `json:"unread_count"`
	Pagination    PaginationDTO     `json:"pagination"`
}

// MarkNotificationReadResponse represents the acknowledgment of a read
type MarkNotificationReadResponse struct {
	ID     uint `json:"id"`
	IsRead bool `json:"is_read"`
}
