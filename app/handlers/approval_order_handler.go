package handlers

import (
	"log"
	"strconv"

	"github.com/petrodesk/petrodesk/app/dto"
	"github.com/petrodesk/petrodesk/app/middleware"
	businessflow "github.com/petrodesk/petrodesk/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// ApprovalOrderHandlerInterface defines the contract for the chain registry handlers
type ApprovalOrderHandlerInterface interface {
	List(c fiber.Ctx) error
	Reorder(c fiber.Ctx) error
	SetActive(c fiber.Ctx) error
	Add(c fiber.Ctx) error
}

// ApprovalOrderHandler handles approval chain registry HTTP requests
type ApprovalOrderHandler struct {
	orderFlow businessflow.ApprovalOrderFlow
	validator *validator.Validate
}

// NewApprovalOrderHandler creates a new approval order handler
func NewApprovalOrderHandler(orderFlow businessflow.ApprovalOrderFlow) *ApprovalOrderHandler {
	return &ApprovalOrderHandler{
		orderFlow: orderFlow,
		validator: validator.New(),
	}
}

// List returns all chain rows plus the current registry version
// @Summary List Approval Chain
// @Description Return the approval chain rows and the registry version
// @Tags ApprovalOrder
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.ListApprovalOrderResponse} "Chain listed"
// @Router /api/v1/approval-order [get]
func (h *ApprovalOrderHandler) List(c fiber.Ctx) error {
	result, err := h.orderFlow.List(createRequestContext(c, "/api/v1/approval-order"))
	if err != nil {
		log.Println("Approval order list failed", err)
		return flowErrorResponse(c, err, "Failed to list approval chain")
	}

	return successResponse(c, fiber.StatusOK, "Chain listed", result)
}

// Reorder assigns new positions to the active chain rows
// @Summary Reorder Approval Chain
// @Description Assign new dense positions to the active chain rows
// @Tags ApprovalOrder
// @Accept json
// @Produce json
// @Param request body dto.ReorderApprovalOrderRequest true "New positions"
// @Success 200 {object} dto.APIResponse{data=dto.ApprovalOrderMutationResponse} "Chain reordered"
// @Failure 400 {object} dto.APIResponse "Positions are not dense"
// @Router /api/v1/approval-order/reorder [put]
func (h *ApprovalOrderHandler) Reorder(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	var req dto.ReorderApprovalOrderRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationDetails(err))
	}

	result, err := h.orderFlow.Reorder(createRequestContext(c, "/api/v1/approval-order/reorder"), &req, userID, clientMetadata(c))
	if err != nil {
		log.Println("Approval order reorder failed", err)
		return flowErrorResponse(c, err, "Failed to reorder approval chain")
	}

	return successResponse(c, fiber.StatusOK, "Chain reordered", result)
}

// SetActive toggles one row in or out of the active chain
// @Summary Toggle Chain Row
// @Description Activate or deactivate one approval chain row
// @Tags ApprovalOrder
// @Accept json
// @Produce json
// @Param id path int true "Row ID"
// @Param request body dto.SetApprovalOrderActiveRequest true "Active flag"
// @Success 200 {object} dto.APIResponse{data=dto.ApprovalOrderMutationResponse} "Row updated"
// @Failure 404 {object} dto.APIResponse "Row not found"
// @Router /api/v1/approval-order/{id}/active [put]
func (h *ApprovalOrderHandler) SetActive(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	rowID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid row ID", "INVALID_REQUEST", nil)
	}

	var req dto.SetApprovalOrderActiveRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	result, err := h.orderFlow.SetActive(createRequestContext(c, "/api/v1/approval-order/:id/active"), uint(rowID), &req, userID, clientMetadata(c))
	if err != nil {
		log.Println("Approval order toggle failed", err)
		return flowErrorResponse(c, err, "Failed to update approval chain row")
	}

	return successResponse(c, fiber.StatusOK, "Row updated", result)
}

// Add appends a profile to the end of the chain
// @Summary Add Chain Row
// @Description Append an approver profile to the end of the approval chain
// @Tags ApprovalOrder
// @Accept json
// @Produce json
// @Param request body dto.AddApprovalOrderRequest true "Profile to add"
// @Success 201 {object} dto.APIResponse{data=dto.ApprovalOrderMutationResponse} "Row added"
// @Failure 409 {object} dto.APIResponse "Profile already in chain"
// @Router /api/v1/approval-order [post]
func (h *ApprovalOrderHandler) Add(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	var req dto.AddApprovalOrderRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationDetails(err))
	}

	result, err := h.orderFlow.Add(createRequestContext(c, "/api/v1/approval-order"), &req, userID, clientMetadata(c))
	if err != nil {
		log.Println("Approval order add failed", err)
		return flowErrorResponse(c, err, "Failed to add approval chain row")
	}

	return successResponse(c, fiber.StatusCreated, "Row added", result)
}
