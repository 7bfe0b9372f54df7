package handlers

import (
	"log"
	"time"

	"github.com/petrodesk/petrodesk/app/dto"
	"github.com/petrodesk/petrodesk/app/middleware"
	businessflow "github.com/petrodesk/petrodesk/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// ReportHandlerInterface defines the contract for report handlers
type ReportHandlerInterface interface {
	ExportSuggestions(c fiber.Ctx) error
}

// ReportHandler handles report export HTTP requests
type ReportHandler struct {
	reportFlow businessflow.ReportFlow
	validator  *validator.Validate
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportFlow businessflow.ReportFlow) *ReportHandler {
	return &ReportHandler{
		reportFlow: reportFlow,
		validator:  validator.New(),
	}
}

// ExportSuggestions streams a spreadsheet of the filtered suggestions
// @Summary Export Suggestions
// @Description Export filtered suggestions and their decision history as XLSX
// @Tags Reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary "Spreadsheet"
// @Failure 403 {object} dto.APIResponse "Caller cannot export reports"
// @Router /api/v1/reports/suggestions [get]
func (h *ReportHandler) ExportSuggestions(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	var req dto.ExportSuggestionsRequest
	if err := c.Bind().Query(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationDetails(err))
	}

	// Exports walk the full result set, allow more time than regular requests
	ctx := createRequestContextWithTimeout(c, "/api/v1/reports/suggestions", 2*time.Minute)

	result, err := h.reportFlow.ExportSuggestions(ctx, &req, userID)
	if err != nil {
		log.Println("Suggestion export failed", err)
		return flowErrorResponse(c, err, "Failed to export suggestions")
	}

	c.Set("Content-Type", result.ContentType)
	c.Set("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	return c.Status(fiber.StatusOK).Send(result.Content)
}
