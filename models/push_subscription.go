package models

import (
	"time"

	"github.com/petrodesk/petrodesk/utils"
	"gorm.io/gorm"
)

// DeviceClass groups push subscriptions by delivery surface
type DeviceClass string

const (
	DeviceClassWeb     DeviceClass = "web"
	DeviceClassAndroid DeviceClass = "android"
	DeviceClassIOS     DeviceClass = "ios"
)

// Valid checks if the device class is valid
func (d DeviceClass) Valid() bool {
	return d == DeviceClassWeb || d == DeviceClassAndroid || d == DeviceClassIOS
}

// PushSubscription is a device's current delivery address for push
// notifications. The unique index on (user_id, token) keeps at most one live
// row per (user, token) pair; rotation removes prior rows for the same
// user+device class before the new token is inserted.
type PushSubscription struct {
	ID              uint        `gorm:"primaryKey" json:"id"`
	UserID          uint        `gorm:"not null;uniqueIndex:uk_push_subscriptions_user_token;index:idx_push_subscriptions_user_id" json:"user_id"`
	User            *User       `gorm:"foreignKey:UserID;references:ID" json:"user,omitempty"`
	Token           string      `gorm:"size:512;not null;uniqueIndex:uk_push_subscriptions_user_token" json:"-"`
	DeviceClass     DeviceClass `gorm:"size:16;not null;default:'web';index:idx_push_subscriptions_device_class" json:"device_class"`
	UserAgent       *string     `gorm:"type:text" json:"user_agent,omitempty"`
	Platform        *string     `gorm:"size:64" json:"platform,omitempty"`
	CreatedAt       time.Time   `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	LastRefreshedAt time.Time   `gorm:"default:CURRENT_TIMESTAMP;index:idx_push_subscriptions_last_refreshed" json:"last_refreshed_at"`
}

func (PushSubscription) TableName() string {
	return "push_subscriptions"
}

// BeforeCreate is called before creating a new record
func (p *PushSubscription) BeforeCreate(tx *gorm.DB) error {
	now := utils.UTCNow()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.LastRefreshedAt.IsZero() {
		p.LastRefreshedAt = now
	}
	if p.DeviceClass == "" {
		p.DeviceClass = DeviceClassWeb
	}
	return nil
}

// IsStale reports whether the subscription has gone unrefreshed beyond ttl
func (p *PushSubscription) IsStale(ttl time.Duration) bool {
	return utils.UTCNow().Sub(p.LastRefreshedAt) > ttl
}

// PushSubscriptionFilter represents filter criteria for subscription queries
type PushSubscriptionFilter struct {
	ID              *uint
	UserID          *uint
	Token           *string
	DeviceClass     *DeviceClass
	RefreshedBefore *time.Time
}
