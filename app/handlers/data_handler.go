package handlers

import (
	"log"

	businessflow "github.com/petrodesk/petrodesk/business_flow"
	"github.com/gofiber/fiber/v3"
)

// DataHandlerInterface defines the contract for reference data handlers
type DataHandlerInterface interface {
	ListStations(c fiber.Ctx) error
	ListClients(c fiber.Ctx) error
	ListPaymentMethods(c fiber.Ctx) error
}

// DataHandler serves the reference data used by the suggestion form
type DataHandler struct {
	dataFlow businessflow.DataFlow
}

// NewDataHandler creates a new reference data handler
func NewDataHandler(dataFlow businessflow.DataFlow) *DataHandler {
	return &DataHandler{dataFlow: dataFlow}
}

// ListStations lists the active stations
// @Summary List Stations
// @Tags Data
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.ListStationsResponse} "Stations listed"
// @Router /api/v1/data/stations [get]
func (h *DataHandler) ListStations(c fiber.Ctx) error {
	result, err := h.dataFlow.ListStations(createRequestContext(c, "/api/v1/data/stations"))
	if err != nil {
		log.Println("Station list failed", err)
		return flowErrorResponse(c, err, "Failed to list stations")
	}

	return successResponse(c, fiber.StatusOK, "Stations listed", result)
}

// ListClients lists the active clients
// @Summary List Clients
// @Tags Data
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.ListClientsResponse} "Clients listed"
// @Router /api/v1/data/clients [get]
func (h *DataHandler) ListClients(c fiber.Ctx) error {
	result, err := h.dataFlow.ListClients(createRequestContext(c, "/api/v1/data/clients"))
	if err != nil {
		log.Println("Client list failed", err)
		return flowErrorResponse(c, err, "Failed to list clients")
	}

	return successResponse(c, fiber.StatusOK, "Clients listed", result)
}

// ListPaymentMethods lists the active payment methods
// @Summary List Payment Methods
// @Tags Data
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.ListPaymentMethodsResponse} "Payment methods listed"
// @Router /api/v1/data/payment-methods [get]
func (h *DataHandler) ListPaymentMethods(c fiber.Ctx) error {
	result, err := h.dataFlow.ListPaymentMethods(createRequestContext(c, "/api/v1/data/payment-methods"))
	if err != nil {
		log.Println("Payment method list failed", err)
		return flowErrorResponse(c, err, "Failed to list payment methods")
	}

	return successResponse(c, fiber.StatusOK, "Payment methods listed", result)
}
