package dto

import "time"

// SubmitSuggestionRequest represents one proposed price change
type SubmitSuggestionRequest struct {
	StationID       uint     `json:"station_id" validate:"required" example:"1"`
	ClientID        *uint    `json:"client_id,omitempty" example:"42"`
	ProductCode     string   `json:"product_code" validate:"required,oneof=gasolina_comum gasolina_aditivada etanol diesel_s10 diesel_s500 gnv" example:"gasolina_comum"`
	CostPrice       float64  `json:"cost_price" validate:"required,gt=0" example:"5.123"`
	FinalPrice      float64  `json:"final_price" validate:"required,gt=0" example:"5.899"`
	PaymentMethodID *uint    `json:"payment_method_id,omitempty" example:"1"`
	Observations    *string  `json:"observations,omitempty" validate:"omitempty,max=2000"`
	Attachments     []string `json:"attachments,omitempty" validate:"omitempty,dive,url,max=10"`
}

// SubmitBatchRequest represents a batch of suggestions submitted together
type SubmitBatchRequest struct {
	BatchName   *string                   `json:"batch_name,omitempty" validate:"omitempty,max=255" example:"Reajuste semanal"`
	Suggestions []SubmitSuggestionRequest `json:"suggestions" validate:"required,min=1,max=50,dive"`
}

// EditSuggestionRequest represents an in-place edit of an undecided suggestion
type EditSuggestionRequest struct {
	CostPrice       *float64 `json:"cost_price,omitempty" validate:"omitempty,gt=0"`
	FinalPrice      *float64 `json:"final_price,omitempty" validate:"omitempty,gt=0"`
	PaymentMethodID *uint    `json:"payment_method_id,omitempty"`
	Observations    *string  `json:"observations,omitempty" validate:"omitempty,max=2000"`
	Attachments     []string `json:"attachments,omitempty" validate:"omitempty,dive,url,max=10"`
}

// ApprovalDTO represents one recorded decision on a suggestion
type ApprovalDTO struct {
	Level        int        `json:"level"`
	ApproverID   uint       `json:"approver_id"`
	ApproverName string     `json:"approver_name,omitempty"`
	Profile      string     `json:"profile,omitempty"`
	Decision     string     `json:"decision" example:"approved"`
	Observation  *string    `json:"observation,omitempty"`
	DecidedAt    *time.Time `json:"decided_at,omitempty"`
}

// SuggestionDTO represents a price suggestion in API responses
type SuggestionDTO struct {
	UUID              string        `json:"uuid"`
	StationID         uint          `json:"station_id"`
	StationName       string        `json:"station_name,omitempty"`
	ClientID          *uint         `json:"client_id,omitempty"`
	ProductCode       string        `json:"product_code"`
	CostPrice         float64       `json:"cost_price"`
	FinalPrice        float64       `json:"final_price"`
	Margin            float64       `json:"margin"`
	Currency          string        `json:"currency" example:"BRL"`
	PaymentMethodID   *uint         `json:"payment_method_id,omitempty"`
	Observations      *string       `json:"observations,omitempty"`
	Attachments       []string      `json:"attachments,omitempty"`
	BatchID           *string       `json:"batch_id,omitempty"`
	BatchName         *string       `json:"batch_name,omitempty"`
	Status            string        `json:"status" example:"in_approval"`
	StatusDisplayName string        `json:"status_display_name" example:"In Approval"`
	CurrentLevel      int           `json:"current_level"`
	CreatedByID       uint          `json:"created_by_id"`
	CreatedByName     string        `json:"created_by_name,omitempty"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         *time.Time    `json:"updated_at,omitempty"`
	Approvals         []ApprovalDTO `json:"approvals,omitempty"`
}

// SubmitSuggestionResponse represents the response after submitting one suggestion
type SubmitSuggestionResponse struct {
	Suggestion SuggestionDTO `json:"suggestion"`
}

// SubmitBatchResponse represents the response after submitting a batch
type SubmitBatchResponse struct {
	BatchID     string          `json:"batch_id"`
	Suggestions []SuggestionDTO `json:"suggestions"`
}

// EditSuggestionResponse represents the response after editing a suggestion
type EditSuggestionResponse struct {
	Suggestion SuggestionDTO `json:"suggestion"`
}

// ListSuggestionsRequest represents filters for listing suggestions
type ListSuggestionsRequest struct {
	StationID   *uint   `query:"station_id"`
	ProductCode *string `query:"product_code" validate:"omitempty,oneof=gasolina_comum gasolina_aditivada etanol diesel_s10 diesel_s500 gnv"`
	Status      *string `query:"status" validate:"omitempty,oneof=draft pending in_approval approved rejected"`
	CreatedByID *uint   `query:"created_by_id"`
	Page        int     `query:"page" validate:"omitempty,min=1"`
	PageSize    int     `query:"page_size" validate:"omitempty,min=1,max=100"`
}

// ListSuggestionsResponse represents a page of suggestions
type ListSuggestionsResponse struct {
	Suggestions []SuggestionDTO `json:"suggestions"`
	Pagination  PaginationDTO   `json:"pagination"`
}

// GetSuggestionResponse represents a single suggestion with its decision history
type GetSuggestionResponse struct {
	Suggestion SuggestionDTO `json:"suggestion"`
}
