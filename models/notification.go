package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/petrodesk/petrodesk/utils"
	"gorm.io/gorm"
)

// NotificationType categorizes in-app notifications
type NotificationType string

const (
	NotificationApprovalRequested  NotificationType = "approval_requested"
	NotificationSuggestionApproved NotificationType = "suggestion_approved"
	NotificationSuggestionRejected NotificationType = "suggestion_rejected"
	NotificationSystem             NotificationType = "system"
)

// String returns the string representation of the type
func (t NotificationType) String() string {
	return string(t)
}

// Valid checks if the type is valid
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationApprovalRequested, NotificationSuggestionApproved,
		NotificationSuggestionRejected, NotificationSystem:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for NotificationType
func (t *NotificationType) Scan(value any) error {
	if value == nil {
		*t = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*t = NotificationType(v)
	case []byte:
		*t = NotificationType(string(v))
	default:
		return fmt.Errorf("cannot scan %T into NotificationType", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for NotificationType
func (t NotificationType) Value() (driver.Value, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid NotificationType: %s", t)
	}
	return string(t), nil
}

// Notification is one in-app notification row. DedupKey carries a unique
// index so dispatch retries for the same (suggestion, status, recipient)
// insert at most one row.
type Notification struct {
	ID           uint             `gorm:"primaryKey" json:"id"`
	UUID         uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:uk_notifications_uuid" json:"uuid"`
	RecipientID  uint             `gorm:"not null;index:idx_notifications_recipient_id" json:"recipient_id"`
	Recipient    *User            `gorm:"foreignKey:RecipientID;references:ID" json:"recipient,omitempty"`
	Type         NotificationType `gorm:"size:32;not null;index:idx_notifications_type" json:"type"`
	Title        string           `gorm:"size:255;not null" json:"title"`
	Message      string           `gorm:"type:text;not null" json:"message"`
	IsRead       *bool            `gorm:"default:false;index:idx_notifications_is_read" json:"is_read"`
	SuggestionID *uint            `gorm:"index:idx_notifications_suggestion_id" json:"suggestion_id,omitempty"`
	Payload      json.RawMessage  `gorm:"type:jsonb" json:"payload,omitempty"`
	DedupKey     *string          `gorm:"size:255;uniqueIndex:uk_notifications_dedup_key" json:"-"`
	CreatedAt    time.Time        `gorm:"default:CURRENT_TIMESTAMP;index:idx_notifications_created_at" json:"created_at"`
	ExpiresAt    *time.Time       `gorm:"index:idx_notifications_expires_at" json:"expires_at,omitempty"`
}

func (Notification) TableName() string {
	return "notifications"
}

// BeforeCreate is called before creating a new record
func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.UUID == uuid.Nil {
		n.UUID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = utils.UTCNow()
	}
	return nil
}

// IsExpired reports whether the notification passed its expiry
func (n *Notification) IsExpired() bool {
	return utils.IsExpiredPtr(n.ExpiresAt)
}

// NotificationFilter represents filter criteria for notification queries
type NotificationFilter struct {
	ID            *uint
	RecipientID   *uint
	Type          *NotificationType
	IsRead        *bool
	SuggestionID  *uint
	DedupKey      *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	ExpiresBefore *time.Time
}
