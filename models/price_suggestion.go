package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/petrodesk/petrodesk/utils"
	"gorm.io/gorm"
)

// SuggestionStatus represents the status of a price suggestion
type SuggestionStatus string

const (
	SuggestionStatusDraft      SuggestionStatus = "draft"
	SuggestionStatusPending    SuggestionStatus = "pending"
	SuggestionStatusInApproval SuggestionStatus = "in_approval"
	SuggestionStatusApproved   SuggestionStatus = "approved"
	SuggestionStatusRejected   SuggestionStatus = "rejected"
)

// String returns the string representation of the status
func (s SuggestionStatus) String() string {
	return string(s)
}

// Valid checks if the status is valid
func (s SuggestionStatus) Valid() bool {
	switch s {
	case SuggestionStatusDraft, SuggestionStatusPending,
		SuggestionStatusInApproval, SuggestionStatusApproved,
		SuggestionStatusRejected:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transitions are possible
func (s SuggestionStatus) IsTerminal() bool {
	return s == SuggestionStatusApproved || s == SuggestionStatusRejected
}

// Scan implements the sql.Scanner interface for SuggestionStatus
func (s *SuggestionStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = SuggestionStatus(v)
	case []byte:
		*s = SuggestionStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into SuggestionStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for SuggestionStatus
func (s SuggestionStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid SuggestionStatus: %s", s)
	}
	return string(s), nil
}

// ProductCode identifies a fuel product
type ProductCode string

const (
	ProductGasolinaComum     ProductCode = "gasolina_comum"
	ProductGasolinaAditivada ProductCode = "gasolina_aditivada"
	ProductEtanol            ProductCode = "etanol"
	ProductDieselS10         ProductCode = "diesel_s10"
	ProductDieselS500        ProductCode = "diesel_s500"
	ProductGNV               ProductCode = "gnv"
)

// String returns the string representation of the product code
func (p ProductCode) String() string {
	return string(p)
}

// Valid checks if the product code belongs to the allowed set
func (p ProductCode) Valid() bool {
	switch p {
	case ProductGasolinaComum, ProductGasolinaAditivada, ProductEtanol,
		ProductDieselS10, ProductDieselS500, ProductGNV:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for ProductCode
func (p *ProductCode) Scan(value any) error {
	if value == nil {
		*p = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*p = ProductCode(v)
	case []byte:
		*p = ProductCode(string(v))
	default:
		return fmt.Errorf("cannot scan %T into ProductCode", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for ProductCode
func (p ProductCode) Value() (driver.Value, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("invalid ProductCode: %s", p)
	}
	return string(p), nil
}

// PriceSuggestion represents a proposed price change awaiting approval
type PriceSuggestion struct {
	ID              uint             `gorm:"primaryKey" json:"id"`
	UUID            uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:uk_price_suggestions_uuid" json:"uuid"`
	StationID       uint             `gorm:"not null;index:idx_price_suggestions_station_id" json:"station_id"`
	Station         *Station         `gorm:"foreignKey:StationID;references:ID" json:"station,omitempty"`
	ClientID        *uint            `gorm:"index:idx_price_suggestions_client_id" json:"client_id,omitempty"`
	Client          *Client          `gorm:"foreignKey:ClientID;references:ID" json:"client,omitempty"`
	ProductCode     ProductCode      `gorm:"size:32;not null;index:idx_price_suggestions_product" json:"product_code"`
	CostPrice       float64          `gorm:"not null" json:"cost_price"`
	FinalPrice      float64          `gorm:"not null" json:"final_price"`
	Margin          float64          `gorm:"not null" json:"margin"`
	PaymentMethodID *uint            `json:"payment_method_id,omitempty"`
	PaymentMethod   *PaymentMethod   `gorm:"foreignKey:PaymentMethodID;references:ID" json:"payment_method,omitempty"`
	Observations    *string          `gorm:"type:text" json:"observations,omitempty"`
	Attachments     pq.StringArray   `gorm:"type:text[]" json:"attachments,omitempty"`
	BatchID         *uuid.UUID       `gorm:"type:uuid;index:idx_price_suggestions_batch_id" json:"batch_id,omitempty"`
	BatchName       *string          `gorm:"size:255" json:"batch_name,omitempty"`
	Status          SuggestionStatus `gorm:"size:32;not null;default:'pending';index:idx_price_suggestions_status" json:"status"`
	CurrentLevel    int              `gorm:"not null;default:0" json:"current_level"`
	CreatedByID     uint             `gorm:"not null;index:idx_price_suggestions_created_by" json:"created_by_id"`
	CreatedBy       *User            `gorm:"foreignKey:CreatedByID;references:ID" json:"created_by,omitempty"`
	CreatedAt       time.Time        `gorm:"default:CURRENT_TIMESTAMP;index:idx_price_suggestions_created_at" json:"created_at"`
	UpdatedAt       *time.Time       `json:"updated_at,omitempty"`

	// Relations
	Approvals []PriceApproval `gorm:"foreignKey:SuggestionID" json:"approvals,omitempty"`
}

func (PriceSuggestion) TableName() string {
	return "price_suggestions"
}

// BeforeCreate is called before creating a new record
func (s *PriceSuggestion) BeforeCreate(tx *gorm.DB) error {
	if s.UUID == uuid.Nil {
		s.UUID = uuid.New()
	}
	if s.Status == "" {
		s.Status = SuggestionStatusPending
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = utils.UTCNow()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (s *PriceSuggestion) BeforeUpdate(tx *gorm.DB) error {
	s.UpdatedAt = utils.UTCNowPtr()
	return nil
}

// IsTerminal reports whether the suggestion reached a terminal state
func (s *PriceSuggestion) IsTerminal() bool {
	return s.Status.IsTerminal()
}

// IsEditable checks if the suggestion can still be edited by its creator.
// Any recorded decision makes the suggestion immutable to edits.
func (s *PriceSuggestion) IsEditable() bool {
	return s.Status == SuggestionStatusDraft || s.Status == SuggestionStatusPending
}

// CanTransitionTo checks if the suggestion can transition to the given status
func (s *PriceSuggestion) CanTransitionTo(newStatus SuggestionStatus) bool {
	switch s.Status {
	case SuggestionStatusDraft:
		return newStatus == SuggestionStatusPending
	case SuggestionStatusPending:
		return newStatus == SuggestionStatusInApproval ||
			newStatus == SuggestionStatusApproved ||
			newStatus == SuggestionStatusRejected
	case SuggestionStatusInApproval:
		return newStatus == SuggestionStatusApproved ||
			newStatus == SuggestionStatusRejected
	default:
		return false
	}
}

// GetStatusDisplayName returns a human-readable status name
func (s *PriceSuggestion) GetStatusDisplayName() string {
	switch s.Status {
	case SuggestionStatusDraft:
		return "Draft"
	case SuggestionStatusPending:
		return "Pending"
	case SuggestionStatusInApproval:
		return "In Approval"
	case SuggestionStatusApproved:
		return "Approved"
	case SuggestionStatusRejected:
		return "Rejected"
	default:
		return "Unknown"
	}
}

// PriceSuggestionFilter represents filter criteria for suggestion queries
type PriceSuggestionFilter struct {
	ID            *uint
	UUID          *uuid.UUID
	StationID     *uint
	ClientID      *uint
	ProductCode   *ProductCode
	Status        *SuggestionStatus
	CurrentLevel  *int
	BatchID       *uuid.UUID
	CreatedByID   *uint
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
