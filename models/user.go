package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/petrodesk/petrodesk/utils"
	"gorm.io/gorm"
)

// User represents an authenticated principal (seller, supervisor, director, admin)
type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	UUID         uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uk_users_uuid" json:"uuid"`
	Email        string     `gorm:"size:255;not null;uniqueIndex:uk_users_email" json:"email"`
	FullName     string     `gorm:"size:255;not null" json:"full_name"`
	PasswordHash string     `gorm:"size:255;not null" json:"-"`
	ProfileID    uint       `gorm:"not null;index:idx_users_profile_id" json:"profile_id"`
	Profile      *Profile   `gorm:"foreignKey:ProfileID;references:ID" json:"profile,omitempty"`
	StationID    *uint      `gorm:"index:idx_users_station_id" json:"station_id,omitempty"`
	Station      *Station   `gorm:"foreignKey:StationID;references:ID" json:"station,omitempty"`
	IsActive     *bool      `gorm:"default:true;index:idx_users_is_active" json:"is_active"`
	CreatedAt    time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// BeforeCreate is called before creating a new record
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.UUID == uuid.Nil {
		u.UUID = uuid.New()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = utils.UTCNow()
	}
	return nil
}

// UserFilter represents filter criteria for user queries
type UserFilter struct {
	ID        *uint
	UUID      *uuid.UUID
	Email     *string
	ProfileID *uint
	StationID *uint
	IsActive  *bool
}
