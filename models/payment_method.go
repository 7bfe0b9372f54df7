package models

import (
	"time"
)

// PaymentMethod is a payment condition a suggested price applies to
type PaymentMethod struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Name        string     `gorm:"size:128;not null;uniqueIndex:uk_payment_methods_name" json:"name"`
	DisplayName string     `gorm:"size:128;not null" json:"display_name"`
	IsActive    *bool      `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

func (PaymentMethod) TableName() string {
	return "payment_methods"
}

// Default payment method names
const (
	PaymentMethodCash   = "a_vista"
	PaymentMethodCredit = "credito"
	PaymentMethodDebit  = "debito"
	PaymentMethodTerm   = "a_prazo"
)

// PaymentMethodFilter represents filter criteria for payment method queries
type PaymentMethodFilter struct {
	ID       *uint
	Name     *string
	IsActive *bool
}
