package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/petrodesk/petrodesk/utils"
	"gorm.io/gorm"
)

// Client is a fleet or wholesale customer a price suggestion may target
type Client struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UUID      uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uk_clients_uuid" json:"uuid"`
	Name      string     `gorm:"size:255;not null" json:"name"`
	CNPJ      *string    `gorm:"size:18;uniqueIndex:uk_clients_cnpj" json:"cnpj,omitempty"`
	StationID *uint      `gorm:"index:idx_clients_station_id" json:"station_id,omitempty"`
	Station   *Station   `gorm:"foreignKey:StationID;references:ID" json:"station,omitempty"`
	IsActive  *bool      `gorm:"default:true;index:idx_clients_is_active" json:"is_active"`
	CreatedAt time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

func (Client) TableName() string {
	return "clients"
}

// BeforeCreate is called before creating a new record
func (c *Client) BeforeCreate(tx *gorm.DB) error {
	if c.UUID == uuid.Nil {
		c.UUID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = utils.UTCNow()
	}
	return nil
}

// ClientFilter represents filter criteria for client queries
type ClientFilter struct {
	ID        *uint
	UUID      *uuid.UUID
	Name      *string
	StationID *uint
	IsActive  *bool
}
