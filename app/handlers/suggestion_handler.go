package handlers

import (
	"log"

	"github.com/petrodesk/petrodesk/app/dto"
	"github.com/petrodesk/petrodesk/app/middleware"
	businessflow "github.com/petrodesk/petrodesk/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// SuggestionHandlerInterface defines the contract for price suggestion handlers
type SuggestionHandlerInterface interface {
	Submit(c fiber.Ctx) error
	SubmitBatch(c fiber.Ctx) error
	Edit(c fiber.Ctx) error
	List(c fiber.Ctx) error
	Get(c fiber.Ctx) error
}

// SuggestionHandler handles price suggestion HTTP requests
type SuggestionHandler struct {
	suggestionFlow businessflow.SuggestionFlow
	validator      *validator.Validate
}

// NewSuggestionHandler creates a new suggestion handler
func NewSuggestionHandler(suggestionFlow businessflow.SuggestionFlow) *SuggestionHandler {
	return &SuggestionHandler{
		suggestionFlow: suggestionFlow,
		validator:      validator.New(),
	}
}

// Submit registers a single price suggestion
// @Summary Submit Price Suggestion
// @Description Register a new price suggestion and route it into the approval chain
// @Tags Suggestions
// @Accept json
// @Produce json
// @Param request body dto.SubmitSuggestionRequest true "Suggestion data"
// @Success 201 {object} dto.APIResponse{data=dto.SubmitSuggestionResponse} "Suggestion submitted"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 422 {object} dto.APIResponse "Approval chain is empty"
// @Router /api/v1/suggestions [post]
func (h *SuggestionHandler) Submit(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	var req dto.SubmitSuggestionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationDetails(err))
	}

	result, err := h.suggestionFlow.Submit(createRequestContext(c, "/api/v1/suggestions"), &req, userID, clientMetadata(c))
	if err != nil {
		if businessflow.IsApprovalChainEmpty(err) {
			return errorResponse(c, fiber.StatusUnprocessableEntity, "No active approval chain is configured", "CONFIGURATION_ERROR", nil)
		}

		log.Println("Suggestion submit failed", err)
		return flowErrorResponse(c, err, "Failed to submit suggestion")
	}

	middleware.RecordSuggestionSubmitted(1)

	return successResponse(c, fiber.StatusCreated, "Suggestion submitted", result)
}

// SubmitBatch registers several suggestions atomically under one batch ID
// @Summary Submit Suggestion Batch
// @Description Register up to 50 suggestions atomically under one batch
// @Tags Suggestions
// @Accept json
// @Produce json
// @Param request body dto.SubmitBatchRequest true "Batch data"
// @Success 201 {object} dto.APIResponse{data=dto.SubmitBatchResponse} "Batch submitted"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Router /api/v1/suggestions/batch [post]
func (h *SuggestionHandler) SubmitBatch(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	var req dto.SubmitBatchRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationDetails(err))
	}

	result, err := h.suggestionFlow.SubmitBatch(createRequestContext(c, "/api/v1/suggestions/batch"), &req, userID, clientMetadata(c))
	if err != nil {
		if businessflow.IsApprovalChainEmpty(err) {
			return errorResponse(c, fiber.StatusUnprocessableEntity, "No active approval chain is configured", "CONFIGURATION_ERROR", nil)
		}

		log.Println("Batch submit failed", err)
		return flowErrorResponse(c, err, "Failed to submit batch")
	}

	middleware.RecordSuggestionSubmitted(len(result.Suggestions))

	return successResponse(c, fiber.StatusCreated, "Batch submitted", result)
}

// Edit updates an undecided suggestion in place
// @Summary Edit Price Suggestion
// @Description Edit a suggestion that has not received any decision yet
// @Tags Suggestions
// @Accept json
// @Produce json
// @Param uuid path string true "Suggestion UUID"
// @Param request body dto.EditSuggestionRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=dto.EditSuggestionResponse} "Suggestion updated"
// @Failure 409 {object} dto.APIResponse "Suggestion already decided"
// @Router /api/v1/suggestions/{uuid} [put]
func (h *SuggestionHandler) Edit(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	suggestionUUID := c.Params("uuid")
	if suggestionUUID == "" {
		return errorResponse(c, fiber.StatusBadRequest, "Suggestion UUID is required", "INVALID_REQUEST", nil)
	}

	var req dto.EditSuggestionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationDetails(err))
	}

	result, err := h.suggestionFlow.Edit(createRequestContext(c, "/api/v1/suggestions/:uuid"), suggestionUUID, &req, userID, clientMetadata(c))
	if err != nil {
		log.Println("Suggestion edit failed", err)
		return flowErrorResponse(c, err, "Failed to edit suggestion")
	}

	return successResponse(c, fiber.StatusOK, "Suggestion updated", result)
}

// List returns a filtered page of suggestions visible to the caller
// @Summary List Price Suggestions
// @Description List suggestions, scoped to own submissions unless the caller can approve
// @Tags Suggestions
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.ListSuggestionsResponse} "Suggestions listed"
// @Router /api/v1/suggestions [get]
func (h *SuggestionHandler) List(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	var req dto.ListSuggestionsRequest
	if err := c.Bind().Query(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationDetails(err))
	}

	result, err := h.suggestionFlow.List(createRequestContext(c, "/api/v1/suggestions"), &req, userID)
	if err != nil {
		log.Println("Suggestion list failed", err)
		return flowErrorResponse(c, err, "Failed to list suggestions")
	}

	return successResponse(c, fiber.StatusOK, "Suggestions listed", result)
}

// Get returns one suggestion with its decision history
// @Summary Get Price Suggestion
// @Description Return one suggestion with its full approval history
// @Tags Suggestions
// @Produce json
// @Param uuid path string true "Suggestion UUID"
// @Success 200 {object} dto.APIResponse{data=dto.GetSuggestionResponse} "Suggestion found"
// @Failure 404 {object} dto.APIResponse "Suggestion not found"
// @Router /api/v1/suggestions/{uuid} [get]
func (h *SuggestionHandler) Get(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	suggestionUUID := c.Params("uuid")
	if suggestionUUID == "" {
		return errorResponse(c, fiber.StatusBadRequest, "Suggestion UUID is required", "INVALID_REQUEST", nil)
	}

	result, err := h.suggestionFlow.Get(createRequestContext(c, "/api/v1/suggestions/:uuid"), suggestionUUID, userID)
	if err != nil {
		log.Println("Suggestion get failed", err)
		return flowErrorResponse(c, err, "Failed to load suggestion")
	}

	return successResponse(c, fiber.StatusOK, "Suggestion found", result)
}
