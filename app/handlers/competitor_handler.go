package handlers

import (
	"log"

	"github.com/petrodesk/petrodesk/app/dto"
	"github.com/petrodesk/petrodesk/app/middleware"
	businessflow "github.com/petrodesk/petrodesk/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// CompetitorHandlerInterface defines the contract for competitor research handlers
type CompetitorHandlerInterface interface {
	Register(c fiber.Ctx) error
	List(c fiber.Ctx) error
}

// CompetitorHandler handles competitor price research HTTP requests
type CompetitorHandler struct {
	competitorFlow businessflow.CompetitorPriceFlow
	validator      *validator.Validate
}

// NewCompetitorHandler creates a new competitor handler
func NewCompetitorHandler(competitorFlow businessflow.CompetitorPriceFlow) *CompetitorHandler {
	return &CompetitorHandler{
		competitorFlow: competitorFlow,
		validator:      validator.New(),
	}
}

// Register records one observed competitor price
// @Summary Register Competitor Price
// @Description Record a competitor price observation with optional photo and coordinates
// @Tags Competitors
// @Accept json
// @Produce json
// @Param request body dto.RegisterCompetitorPriceRequest true "Observation data"
// @Success 201 {object} dto.APIResponse{data=dto.RegisterCompetitorPriceResponse} "Observation registered"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Router /api/v1/competitors/prices [post]
func (h *CompetitorHandler) Register(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	var req dto.RegisterCompetitorPriceRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationDetails(err))
	}

	result, err := h.competitorFlow.Register(createRequestContext(c, "/api/v1/competitors/prices"), &req, userID, clientMetadata(c))
	if err != nil {
		log.Println("Competitor price registration failed", err)
		return flowErrorResponse(c, err, "Failed to register competitor price")
	}

	return successResponse(c, fiber.StatusCreated, "Observation registered", result)
}

// List returns a page of competitor observations for the map view
// @Summary List Competitor Prices
// @Description List competitor price observations for the map view
// @Tags Competitors
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.ListCompetitorPricesResponse} "Observations listed"
// @Router /api/v1/competitors/prices [get]
func (h *CompetitorHandler) List(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	var req dto.ListCompetitorPricesRequest
	if err := c.Bind().Query(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationDetails(err))
	}

	result, err := h.competitorFlow.List(createRequestContext(c, "/api/v1/competitors/prices"), &req, userID)
	if err != nil {
		log.Println("Competitor price list failed", err)
		return flowErrorResponse(c, err, "Failed to list competitor prices")
	}

	return successResponse(c, fiber.StatusOK, "Observations listed", result)
}
