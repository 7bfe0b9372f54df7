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

// NotificationHandlerInterface defines the contract for notification inbox handlers
type NotificationHandlerInterface interface {
	List(c fiber.Ctx) error
	MarkRead(c fiber.Ctx) error
	Delete(c fiber.Ctx) error
}

// NotificationHandler handles notification inbox HTTP requests
type NotificationHandler struct {
	notificationFlow businessflow.NotificationFlow
	validator        *validator.Validate
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notificationFlow businessflow.NotificationFlow) *NotificationHandler {
	return &NotificationHandler{
		notificationFlow: notificationFlow,
		validator:        validator.New(),
	}
}

// List returns a page of the caller's notifications
// @Summary List Notifications
// @Description List the caller's notifications with the unread total
// @Tags Notifications
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.ListNotificationsResponse} "Notifications listed"
// @Router /api/v1/notifications [get]
func (h *NotificationHandler) List(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	var req dto.ListNotificationsRequest
	if err := c.Bind().Query(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationDetails(err))
	}

	result, err := h.notificationFlow.List(createRequestContext(c, "/api/v1/notifications"), &req, userID)
	if err != nil {
		log.Println("Notification list failed", err)
		return flowErrorResponse(c, err, "Failed to list notifications")
	}

	return successResponse(c, fiber.StatusOK, "Notifications listed", result)
}

// MarkRead flags one notification as read
// @Summary Mark Notification Read
// @Description Mark one of the caller's notifications as read
// @Tags Notifications
// @Produce json
// @Param id path int true "Notification ID"
// @Success 200 {object} dto.APIResponse{data=dto.MarkNotificationReadResponse} "Notification marked read"
// @Failure 404 {object} dto.APIResponse "Notification not found"
// @Router /api/v1/notifications/{id}/read [put]
func (h *NotificationHandler) MarkRead(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	notificationID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid notification ID", "INVALID_REQUEST", nil)
	}

	result, err := h.notificationFlow.MarkRead(createRequestContext(c, "/api/v1/notifications/:id/read"), uint(notificationID), userID)
	if err != nil {
		log.Println("Notification mark read failed", err)
		return flowErrorResponse(c, err, "Failed to mark notification read")
	}

	return successResponse(c, fiber.StatusOK, "Notification marked read", result)
}

// Delete removes one notification from the caller's inbox
// @Summary Delete Notification
// @Description Delete one of the caller's notifications
// @Tags Notifications
// @Produce json
// @Param id path int true "Notification ID"
// @Success 200 {object} dto.APIResponse "Notification deleted"
// @Failure 404 {object} dto.APIResponse "Notification not found"
// @Router /api/v1/notifications/{id} [delete]
func (h *NotificationHandler) Delete(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	notificationID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid notification ID", "INVALID_REQUEST", nil)
	}

	if err := h.notificationFlow.Delete(createRequestContext(c, "/api/v1/notifications/:id"), uint(notificationID), userID); err != nil {
		log.Println("Notification delete failed", err)
		return flowErrorResponse(c, err, "Failed to delete notification")
	}

	return successResponse(c, fiber.StatusOK, "Notification deleted", nil)
}
