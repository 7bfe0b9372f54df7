// Package models contains domain entities and business models for the fuel pricing system
package models

import (
	"time"
)

// Profile role names
const (
	ProfileVendedor   = "vendedor"
	ProfileSupervisor = "supervisor"
	ProfileGerente    = "gerente"
	ProfileDiretor    = "diretor"
	ProfileAdmin      = "admin"
)

// Capability is a named permission attached to a profile
type Capability string

const (
	CapabilityApprove             Capability = "approve"
	CapabilityRegisterPrice       Capability = "register_price"
	CapabilityEditPrice           Capability = "edit_price"
	CapabilityRegisterCompetitor  Capability = "register_competitor"
	CapabilityManageApprovalOrder Capability = "manage_approval_order"
	CapabilityViewMap             Capability = "view_map"
	CapabilityViewReports         Capability = "view_reports"
)

// CapabilitySet is the resolved, closed set of capabilities for a profile.
// It is resolved once per request and passed through the call chain.
type CapabilitySet map[Capability]bool

// Has reports whether the capability is present
func (s CapabilitySet) Has(c Capability) bool {
	return s[c]
}

// Profile represents a named role with its capability flags
type Profile struct {
	ID                     uint       `gorm:"primaryKey" json:"id"`
	Name                   string     `gorm:"size:64;not null;uniqueIndex:uk_profiles_name" json:"name"`
	DisplayName            string     `gorm:"size:128;not null" json:"display_name"`
	CanApprove             *bool      `gorm:"default:false" json:"can_approve"`
	CanRegisterPrice       *bool      `gorm:"default:false" json:"can_register_price"`
	CanEditPrice           *bool      `gorm:"default:false" json:"can_edit_price"`
	CanRegisterCompetitor  *bool      `gorm:"default:false" json:"can_register_competitor"`
	CanManageApprovalOrder *bool      `gorm:"default:false" json:"can_manage_approval_order"`
	CanViewMap             *bool      `gorm:"default:true" json:"can_view_map"`
	CanViewReports         *bool      `gorm:"default:false" json:"can_view_reports"`
	MaxApprovalMargin      *float64   `json:"max_approval_margin,omitempty"`
	CreatedAt              time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt              *time.Time `json:"updated_at,omitempty"`
}

func (Profile) TableName() string {
	return "profiles"
}

// Capabilities resolves the boolean flags into a closed capability set
func (p *Profile) Capabilities() CapabilitySet {
	set := CapabilitySet{}
	add := func(flag *bool, c Capability) {
		if flag != nil && *flag {
			set[c] = true
		}
	}
	add(p.CanApprove, CapabilityApprove)
	add(p.CanRegisterPrice, CapabilityRegisterPrice)
	add(p.CanEditPrice, CapabilityEditPrice)
	add(p.CanRegisterCompetitor, CapabilityRegisterCompetitor)
	add(p.CanManageApprovalOrder, CapabilityManageApprovalOrder)
	add(p.CanViewMap, CapabilityViewMap)
	add(p.CanViewReports, CapabilityViewReports)
	return set
}

// ProfileFilter represents filter criteria for profile queries
type ProfileFilter struct {
	ID         *uint
	Name       *string
	CanApprove *bool
}
