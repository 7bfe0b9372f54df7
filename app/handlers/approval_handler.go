package handlers

import (
	"log"

	"github.com/petrodesk/petrodesk/app/dto"
	"github.com/petrodesk/petrodesk/app/middleware"
	businessflow "github.com/petrodesk/petrodesk/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// ApprovalHandlerInterface defines the contract for approval decision handlers
type ApprovalHandlerInterface interface {
	Decide(c fiber.Ctx) error
	BatchDecide(c fiber.Ctx) error
	Repair(c fiber.Ctx) error
	PendingApprovals(c fiber.Ctx) error
}

// ApprovalHandler handles approval decision HTTP requests
type ApprovalHandler struct {
	approvalFlow businessflow.ApprovalFlow
	validator    *validator.Validate
}

// NewApprovalHandler creates a new approval handler
func NewApprovalHandler(approvalFlow businessflow.ApprovalFlow) *ApprovalHandler {
	return &ApprovalHandler{
		approvalFlow: approvalFlow,
		validator:    validator.New(),
	}
}

// Decide records an approval or rejection at the suggestion's current level
// @Summary Decide on Suggestion
// @Description Approve or reject a suggestion at its current approval level
// @Tags Approvals
// @Accept json
// @Produce json
// @Param uuid path string true "Suggestion UUID"
// @Param request body dto.DecideRequest true "Decision"
// @Success 200 {object} dto.APIResponse{data=dto.DecideResponse} "Decision recorded"
// @Failure 403 {object} dto.APIResponse "Caller is not the level approver"
// @Failure 409 {object} dto.APIResponse "Level already decided or chain changed"
// @Router /api/v1/suggestions/{uuid}/decide [post]
func (h *ApprovalHandler) Decide(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	suggestionUUID := c.Params("uuid")
	if suggestionUUID == "" {
		return errorResponse(c, fiber.StatusBadRequest, "Suggestion UUID is required", "INVALID_REQUEST", nil)
	}

	var req dto.DecideRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationDetails(err))
	}

	result, err := h.approvalFlow.Decide(createRequestContext(c, "/api/v1/suggestions/:uuid/decide"), suggestionUUID, &req, userID, clientMetadata(c))
	if err != nil {
		if businessflow.IsSuggestionAlreadyDecided(err) {
			return errorResponse(c, fiber.StatusConflict, "This level has already been decided", "CONFLICT", nil)
		}
		if businessflow.IsApprovalChainChanged(err) {
			return errorResponse(c, fiber.StatusConflict, "The approval chain changed, reload and retry", "CONFLICT", nil)
		}
		if businessflow.IsNotLevelApprover(err) {
			return errorResponse(c, fiber.StatusForbidden, "Caller is not the approver for the current level", "UNAUTHORIZED", nil)
		}

		log.Println("Decision failed", err)
		return flowErrorResponse(c, err, "Failed to record decision")
	}

	middleware.RecordDecision(req.Decision)

	return successResponse(c, fiber.StatusOK, "Decision recorded", result)
}

// BatchDecide applies one decision to every undecided suggestion of a batch
// @Summary Decide on Batch
// @Description Apply one decision to every eligible suggestion of a batch, with per-item results
// @Tags Approvals
// @Accept json
// @Produce json
// @Param request body dto.BatchDecideRequest true "Batch decision"
// @Success 200 {object} dto.APIResponse{data=dto.BatchDecideResponse} "Batch processed"
// @Failure 404 {object} dto.APIResponse "Batch not found"
// @Router /api/v1/approvals/batch [post]
func (h *ApprovalHandler) BatchDecide(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	var req dto.BatchDecideRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationDetails(err))
	}

	result, err := h.approvalFlow.BatchDecide(createRequestContext(c, "/api/v1/approvals/batch"), &req, userID, clientMetadata(c))
	if err != nil {
		log.Println("Batch decision failed", err)
		return flowErrorResponse(c, err, "Failed to process batch decision")
	}

	for i := 0; i < result.Decided; i++ {
		middleware.RecordDecision(req.Decision)
	}

	return successResponse(c, fiber.StatusOK, "Batch processed", result)
}

// Repair re-anchors a stranded suggestion onto the current approval chain
// @Summary Repair Stranded Suggestion
// @Description Recompute a suggestion's position after the approval chain changed underneath it
// @Tags Approvals
// @Produce json
// @Param uuid path string true "Suggestion UUID"
// @Success 200 {object} dto.APIResponse{data=dto.RepairResponse} "Suggestion repaired"
// @Failure 409 {object} dto.APIResponse "Suggestion is not stranded"
// @Router /api/v1/suggestions/{uuid}/repair [post]
func (h *ApprovalHandler) Repair(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	suggestionUUID := c.Params("uuid")
	if suggestionUUID == "" {
		return errorResponse(c, fiber.StatusBadRequest, "Suggestion UUID is required", "INVALID_REQUEST", nil)
	}

	result, err := h.approvalFlow.Repair(createRequestContext(c, "/api/v1/suggestions/:uuid/repair"), suggestionUUID, userID, clientMetadata(c))
	if err != nil {
		log.Println("Repair failed", err)
		return flowErrorResponse(c, err, "Failed to repair suggestion")
	}

	return successResponse(c, fiber.StatusOK, "Suggestion repaired", result)
}

// PendingApprovals lists suggestions currently waiting on the caller's profile
// @Summary List Pending Approvals
// @Description List suggestions whose current level matches the caller's profile
// @Tags Approvals
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.PendingApprovalsResponse} "Pending approvals listed"
// @Router /api/v1/approvals/pending [get]
func (h *ApprovalHandler) PendingApprovals(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	var req dto.PendingApprovalsRequest
	if err := c.Bind().Query(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationDetails(err))
	}

	result, err := h.approvalFlow.PendingApprovals(createRequestContext(c, "/api/v1/approvals/pending"), &req, userID)
	if err != nil {
		log.Println("Pending approvals failed", err)
		return flowErrorResponse(c, err, "Failed to list pending approvals")
	}

	return successResponse(c, fiber.StatusOK, "Pending approvals listed", result)
}
