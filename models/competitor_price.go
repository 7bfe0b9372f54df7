package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/petrodesk/petrodesk/utils"
	"gorm.io/gorm"
)

// CompetitorPrice is one observed competitor price, collected during field
// research and rendered on the map view by the frontend
type CompetitorPrice struct {
	ID             uint        `gorm:"primaryKey" json:"id"`
	UUID           uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:uk_competitor_prices_uuid" json:"uuid"`
	StationID      uint        `gorm:"not null;index:idx_competitor_prices_station_id" json:"station_id"`
	Station        *Station    `gorm:"foreignKey:StationID;references:ID" json:"station,omitempty"`
	CompetitorName string      `gorm:"size:255;not null" json:"competitor_name"`
	ProductCode    ProductCode `gorm:"size:32;not null;index:idx_competitor_prices_product" json:"product_code"`
	Price          float64     `gorm:"not null" json:"price"`
	PhotoURL       *string     `gorm:"type:text" json:"photo_url,omitempty"`
	Latitude       *float64    `json:"latitude,omitempty"`
	Longitude      *float64    `json:"longitude,omitempty"`
	ResearcherID   uint        `gorm:"not null;index:idx_competitor_prices_researcher_id" json:"researcher_id"`
	Researcher     *User       `gorm:"foreignKey:ResearcherID;references:ID" json:"researcher,omitempty"`
	ObservedAt     time.Time   `gorm:"not null;index:idx_competitor_prices_observed_at" json:"observed_at"`
	CreatedAt      time.Time   `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (CompetitorPrice) TableName() string {
	return "competitor_prices"
}

// BeforeCreate is called before creating a new record
func (c *CompetitorPrice) BeforeCreate(tx *gorm.DB) error {
	if c.UUID == uuid.Nil {
		c.UUID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = utils.UTCNow()
	}
	if c.ObservedAt.IsZero() {
		c.ObservedAt = c.CreatedAt
	}
	return nil
}

// CompetitorPriceFilter represents filter criteria for competitor price queries
type CompetitorPriceFilter struct {
	ID             *uint
	StationID      *uint
	ProductCode    *ProductCode
	CompetitorName *string
	ResearcherID   *uint
	ObservedAfter  *time.Time
	ObservedBefore *time.Time
}
