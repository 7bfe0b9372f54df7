package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/petrodesk/petrodesk/utils"
	"gorm.io/gorm"
)

// ApprovalDecision is the outcome recorded at one approval level
type ApprovalDecision string

const (
	DecisionApproved ApprovalDecision = "approved"
	DecisionRejected ApprovalDecision = "rejected"
)

// String returns the string representation of the decision
func (d ApprovalDecision) String() string {
	return string(d)
}

// Valid checks if the decision is valid
func (d ApprovalDecision) Valid() bool {
	return d == DecisionApproved || d == DecisionRejected
}

// Scan implements the sql.Scanner interface for ApprovalDecision
func (d *ApprovalDecision) Scan(value any) error {
	if value == nil {
		*d = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*d = ApprovalDecision(v)
	case []byte:
		*d = ApprovalDecision(string(v))
	default:
		return fmt.Errorf("cannot scan %T into ApprovalDecision", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for ApprovalDecision
func (d ApprovalDecision) Value() (driver.Value, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("invalid ApprovalDecision: %s", d)
	}
	return string(d), nil
}

// PriceApproval is the append-only decision record for one approval level.
// The unique index on (suggestion_id, level) is the guard against concurrent
// decisions at the same level: the loser's insert fails and surfaces as a
// conflict.
type PriceApproval struct {
	ID           uint             `gorm:"primaryKey" json:"id"`
	SuggestionID uint             `gorm:"not null;uniqueIndex:uk_price_approvals_suggestion_level;index:idx_price_approvals_suggestion_id" json:"suggestion_id"`
	Suggestion   *PriceSuggestion `gorm:"foreignKey:SuggestionID;references:ID" json:"suggestion,omitempty"`
	Level        int              `gorm:"not null;uniqueIndex:uk_price_approvals_suggestion_level" json:"level"`
	ApproverID   uint             `gorm:"not null;index:idx_price_approvals_approver_id" json:"approver_id"`
	Approver     *User            `gorm:"foreignKey:ApproverID;references:ID" json:"approver,omitempty"`
	Decision     ApprovalDecision `gorm:"size:32;not null" json:"decision"`
	Observation  *string          `gorm:"type:text" json:"observation,omitempty"`
	CreatedAt    time.Time        `gorm:"default:CURRENT_TIMESTAMP;index:idx_price_approvals_created_at" json:"created_at"`
}

func (PriceApproval) TableName() string {
	return "price_approvals"
}

// BeforeCreate is called before creating a new record
func (a *PriceApproval) BeforeCreate(tx *gorm.DB) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = utils.UTCNow()
	}
	return nil
}

// PriceApprovalFilter represents filter criteria for approval queries
type PriceApprovalFilter struct {
	ID           *uint
	SuggestionID *uint
	Level        *int
	ApproverID   *uint
	Decision     *ApprovalDecision
}
