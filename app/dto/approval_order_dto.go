package dto

// ApprovalOrderRowDTO represents one entry of the approval chain
type ApprovalOrderRowDTO struct {
	ID            uint   `json:"id"`
	ProfileName   string `json:"profile_name" example:"supervisor"`
	OrderPosition int    `json:"order_position" example:"1"`
	IsActive      *bool  `json:"is_active"`
}

// ListApprovalOrderResponse represents the current approval chain and its version
type ListApprovalOrderResponse struct {
	Rows    []ApprovalOrderRowDTO `json:"rows"`
	Version int64                 `json:"version"`
}

// ReorderApprovalOrderRequest assigns new positions to the chain rows.
// The input must list every existing row exactly once, and positions of
// active rows must form a dense 1-based sequence.
type ReorderApprovalOrderRequest struct {
	Positions []ApprovalOrderPositionDTO `json:"positions" validate:"required,min=1,dive"`
}

// ApprovalOrderPositionDTO pairs a row with its new position
type ApprovalOrderPositionDTO struct {
	ID            uint `json:"id" validate:"required"`
	OrderPosition int  `json:"order_position" validate:"required,min=1"`
}

// SetApprovalOrderActiveRequest toggles one row in or out of the chain
type SetApprovalOrderActiveRequest struct {
	IsActive bool `json:"is_active"`
}

// AddApprovalOrderRequest appends a profile to the end of the chain
type AddApprovalOrderRequest struct {
	ProfileName string `json:"profile_name" validate:"required,max=64" example:"gerente"`
}

// ApprovalOrderMutationResponse represents the chain after a registry change
type ApprovalOrderMutationResponse struct {
	Rows    []ApprovalOrderRowDTO `json:"rows"`
	Version int64                 `json:"version"`
}
