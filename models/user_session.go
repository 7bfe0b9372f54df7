package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/petrodesk/petrodesk/utils"
)

// UserSession tracks one signed-in session and its token pair
type UserSession struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	CorrelationID  uuid.UUID       `gorm:"type:uuid;not null;index:idx_sessions_correlation_id" json:"correlation_id"`
	UserID         uint            `gorm:"not null;index:idx_sessions_user_id" json:"user_id"`
	User           *User           `gorm:"foreignKey:UserID;references:ID" json:"user,omitempty"`
	SessionToken   string          `gorm:"size:255;not null;uniqueIndex:uk_sessions_session_token" json:"-"`
	RefreshToken   *string         `gorm:"size:255;uniqueIndex:uk_sessions_refresh_token" json:"-"`
	DeviceInfo     json.RawMessage `gorm:"type:jsonb" json:"device_info,omitempty"`
	IPAddress      *string         `gorm:"type:inet" json:"ip_address,omitempty"`
	UserAgent      *string         `gorm:"type:text" json:"user_agent,omitempty"`
	IsActive       *bool           `gorm:"default:true;index:idx_sessions_is_active" json:"is_active"`
	CreatedAt      time.Time       `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	LastAccessedAt time.Time       `gorm:"default:CURRENT_TIMESTAMP" json:"last_accessed_at"`
	ExpiresAt      time.Time       `gorm:"not null;index:idx_sessions_expires_at" json:"expires_at"`
}

func (UserSession) TableName() string {
	return "user_sessions"
}

// IsExpired reports whether the session passed its expiry
func (s *UserSession) IsExpired() bool {
	return utils.IsExpired(s.ExpiresAt)
}

// IsValid reports whether the session is active and unexpired
func (s *UserSession) IsValid() bool {
	return utils.IsTrue(s.IsActive) && !s.IsExpired()
}

// UserSessionFilter represents filter criteria for session queries
type UserSessionFilter struct {
	ID            *uint
	CorrelationID *uuid.UUID
	UserID        *uint
	IsActive      *bool
	IsExpired     *bool
	ExpiresBefore *time.Time
}
