package models

import (
	"time"

	"github.com/petrodesk/petrodesk/utils"
	"gorm.io/gorm"
)

// ApprovalProfileOrder is one entry of the ordered approval chain.
// Active rows form a dense 1-based sequence by OrderPosition; inactive rows
// keep their stale position and are skipped when resolving the next level.
type ApprovalProfileOrder struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	ProfileName   string     `gorm:"size:64;not null;uniqueIndex:uk_approval_order_profile" json:"profile_name"`
	OrderPosition int        `gorm:"not null;index:idx_approval_order_position" json:"order_position"`
	IsActive      *bool      `gorm:"default:true;index:idx_approval_order_is_active" json:"is_active"`
	CreatedAt     time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}

func (ApprovalProfileOrder) TableName() string {
	return "approval_profile_order"
}

// BeforeUpdate is called before updating a record
func (o *ApprovalProfileOrder) BeforeUpdate(tx *gorm.DB) error {
	o.UpdatedAt = utils.UTCNowPtr()
	return nil
}

// ApprovalProfileOrderFilter represents filter criteria for approval order queries
type ApprovalProfileOrderFilter struct {
	ID          *uint
	ProfileName *string
	IsActive    *bool
}

// OrderSnapshot is a versioned, immutable read of the approval chain.
// Decide operations take a snapshot up front and re-validate the version
// before committing a level advance.
type OrderSnapshot struct {
	Rows    []ApprovalProfileOrder `json:"rows"`
	Version int64                  `json:"version"`
}

// FirstActiveLevel returns the lowest active order position, or 0 when the
// chain has no active rows
func (s *OrderSnapshot) FirstActiveLevel() int {
	level := 0
	for _, row := range s.Rows {
		if !utils.IsTrue(row.IsActive) {
			continue
		}
		if level == 0 || row.OrderPosition < level {
			level = row.OrderPosition
		}
	}
	return level
}

// NextActiveLevel returns the lowest active order position strictly greater
// than the given level, or 0 when none exists
func (s *OrderSnapshot) NextActiveLevel(after int) int {
	next := 0
	for _, row := range s.Rows {
		if !utils.IsTrue(row.IsActive) || row.OrderPosition <= after {
			continue
		}
		if next == 0 || row.OrderPosition < next {
			next = row.OrderPosition
		}
	}
	return next
}

// ActiveProfileAt returns the profile name holding the given active position
func (s *OrderSnapshot) ActiveProfileAt(level int) (string, bool) {
	for _, row := range s.Rows {
		if utils.IsTrue(row.IsActive) && row.OrderPosition == level {
			return row.ProfileName, true
		}
	}
	return "", false
}

// PositionOf returns the order position of the given profile and whether the
// row is active
func (s *OrderSnapshot) PositionOf(profileName string) (int, bool) {
	for _, row := range s.Rows {
		if row.ProfileName == profileName {
			return row.OrderPosition, utils.IsTrue(row.IsActive)
		}
	}
	return 0, false
}
