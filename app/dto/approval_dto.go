package dto

// DecideRequest represents one approval decision on a suggestion
type DecideRequest struct {
	Decision    string  `json:"decision" validate:"required,oneof=approved rejected" example:"approved"`
	Observation *string `json:"observation,omitempty" validate:"omitempty,max=2000"`
}

// DecideResponse represents the suggestion after a decision was applied
type DecideResponse struct {
	Suggestion SuggestionDTO `json:"suggestion"`
}

// BatchDecideRequest represents one decision applied to every undecided
// suggestion of a batch
type BatchDecideRequest struct {
	BatchID     string  `json:"batch_id" validate:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	Decision    string  `json:"decision" validate:"required,oneof=approved rejected" example:"approved"`
	Observation *string `json:"observation,omitempty" validate:"omitempty,max=2000"`
}

// BatchDecideResult is the per-suggestion outcome of a batch decision
type BatchDecideResult struct {
	SuggestionUUID string `json:"suggestion_uuid"`
	Success        bool   `json:"success"`
	Status         string `json:"status,omitempty"`
	ErrorCode      string `json:"error_code,omitempty"`
	ErrorMessage   string `json:"error_message,omitempty"`
}

// BatchDecideResponse represents the partial results of a batch decision
type BatchDecideResponse struct {
	BatchID string              `json:"batch_id"`
	Decided int                 `json:"decided"`
	Failed  int                 `json:"failed"`
	Results []BatchDecideResult `json:"results"`
}

// RepairResponse represents the outcome of re-anchoring a stranded suggestion
type RepairResponse struct {
	Suggestion SuggestionDTO `json:"suggestion"`
	Repaired   bool          `json:"repaired"`
}

// PendingApprovalsRequest represents filters for the approver work queue
type PendingApprovalsRequest struct {
	StationID *uint `query:"station_id"`
	Page      int   `query:"page" validate:"omitempty,min=1"`
	PageSize  int   `query:"page_size" validate:"omitempty,min=1,max=100"`
}

// PendingApprovalsResponse represents suggestions awaiting the caller's decision
type PendingApprovalsResponse struct {
	Suggestions []SuggestionDTO `json:"suggestions"`
	Pagination  PaginationDTO   `json:"pagination"`
}
