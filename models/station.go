package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/petrodesk/petrodesk/utils"
	"gorm.io/gorm"
)

// Station is a fuel station managed by the platform
type Station struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UUID      uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uk_stations_uuid" json:"uuid"`
	Name      string     `gorm:"size:255;not null" json:"name"`
	CNPJ      *string    `gorm:"size:18;uniqueIndex:uk_stations_cnpj" json:"cnpj,omitempty"`
	City      string     `gorm:"size:128;not null;index:idx_stations_city" json:"city"`
	State     string     `gorm:"size:2;not null" json:"state"`
	Latitude  *float64   `json:"latitude,omitempty"`
	Longitude *float64   `json:"longitude,omitempty"`
	IsActive  *bool      `gorm:"default:true;index:idx_stations_is_active" json:"is_active"`
	CreatedAt time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

func (Station) TableName() string {
	return "stations"
}

// BeforeCreate is called before creating a new record
func (s *Station) BeforeCreate(tx *gorm.DB) error {
	if s.UUID == uuid.Nil {
		s.UUID = uuid.New()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = utils.UTCNow()
	}
	return nil
}

// StationFilter represents filter criteria for station queries
type StationFilter struct {
	ID       *uint
	UUID     *uuid.UUID
	Name     *string
	City     *string
	State    *string
	IsActive *bool
}
