package handlers

import (
	"log"

	"github.com/petrodesk/petrodesk/app/dto"
	"github.com/petrodesk/petrodesk/app/middleware"
	businessflow "github.com/petrodesk/petrodesk/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// PushHandlerInterface defines the contract for push token handlers
type PushHandlerInterface interface {
	Register(c fiber.Ctx) error
	Revoke(c fiber.Ctx) error
	ListSubscriptions(c fiber.Ctx) error
}

// PushHandler handles push token lifecycle HTTP requests
type PushHandler struct {
	pushFlow  businessflow.PushFlow
	validator *validator.Validate
}

// NewPushHandler creates a new push handler
func NewPushHandler(pushFlow businessflow.PushFlow) *PushHandler {
	return &PushHandler{
		pushFlow:  pushFlow,
		validator: validator.New(),
	}
}

// Register records or refreshes a device push token
// @Summary Register Push Token
// @Description Register a push token, rotating any previous token for the same device class
// @Tags Push
// @Accept json
// @Produce json
// @Param request body dto.RegisterPushTokenRequest true "Token data"
// @Success 200 {object} dto.APIResponse{data=dto.RegisterPushTokenResponse} "Token registered"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Router /api/v1/push/tokens [post]
func (h *PushHandler) Register(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	var req dto.RegisterPushTokenRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationDetails(err))
	}

	result, err := h.pushFlow.RegisterToken(createRequestContext(c, "/api/v1/push/tokens"), &req, userID, clientMetadata(c))
	if err != nil {
		log.Println("Push token registration failed", err)
		return flowErrorResponse(c, err, "Failed to register push token")
	}

	return successResponse(c, fiber.StatusOK, "Token registered", result)
}

// Revoke removes one of the caller's push tokens
// @Summary Revoke Push Token
// @Description Remove one of the caller's registered push tokens
// @Tags Push
// @Accept json
// @Produce json
// @Param request body dto.RevokePushTokenRequest true "Token to revoke"
// @Success 200 {object} dto.APIResponse{data=dto.RevokePushTokenResponse} "Token revoked"
// @Failure 404 {object} dto.APIResponse "Token not found"
// @Router /api/v1/push/tokens [delete]
func (h *PushHandler) Revoke(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	var req dto.RevokePushTokenRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationDetails(err))
	}

	result, err := h.pushFlow.RevokeToken(createRequestContext(c, "/api/v1/push/tokens"), &req, userID, clientMetadata(c))
	if err != nil {
		log.Println("Push token revocation failed", err)
		return flowErrorResponse(c, err, "Failed to revoke push token")
	}

	return successResponse(c, fiber.StatusOK, "Token revoked", result)
}

// ListSubscriptions returns the caller's registered devices
// @Summary List Push Subscriptions
// @Description List the caller's registered device tokens
// @Tags Push
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.ListPushSubscriptionsResponse} "Subscriptions listed"
// @Router /api/v1/push/tokens [get]
func (h *PushHandler) ListSubscriptions(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	result, err := h.pushFlow.ListSubscriptions(createRequestContext(c, "/api/v1/push/tokens"), userID)
	if err != nil {
		log.Println("Push subscription list failed", err)
		return flowErrorResponse(c, err, "Failed to list push subscriptions")
	}

	return successResponse(c, fiber.StatusOK, "Subscriptions listed", result)
}
