package businessflow

import (
	"context"

	"github.com/petrodesk/petrodesk/app/dto"
	"github.com/petrodesk/petrodesk/repository"
)

// DataFlow serves the reference data the mobile clients need to build
// the suggestion form
type DataFlow interface {
	ListStations(ctx context.Context) (*dto.ListStationsResponse, error)
	ListClients(ctx context.Context) (*dto.ListClientsResponse, error)
	ListPaymentMethods(ctx context.Context) (*dto.ListPaymentMethodsResponse, error)
}

// DataFlowImpl implements the reference data business flow
type DataFlowImpl struct {
	stationRepo       repository.StationRepository
	clientRepo        repository.ClientRepository
	paymentMethodRepo repository.PaymentMethodRepository
}

// NewDataFlow creates a new reference data flow instance
func NewDataFlow(
	stationRepo repository.StationRepository,
	clientRepo repository.ClientRepository,
	paymentMethodRepo repository.PaymentMethodRepository,
) DataFlow {
	return &DataFlowImpl{
		stationRepo:       stationRepo,
		clientRepo:        clientRepo,
		paymentMethodRepo: paymentMethodRepo,
	}
}

// ListStations returns all active stations
func (df *DataFlowImpl) ListStations(ctx context.Context) (*dto.ListStationsResponse, error) {
	stations, err := df.stationRepo.ListActive(ctx)
	if err != nil {
		return nil, NewBusinessError("STATION_LIST_FAILED", "Failed to list stations", err)
	}

	out := make([]dto.StationDTO, 0, len(stations))
	for _, station := range stations {
		out = append(out, dto.StationDTO{
			ID:        station.ID,
			UUID:      station.UUID.String(),
			Name:      station.Name,
			CNPJ:      station.CNPJ,
			City:      station.City,
			State:     station.State,
			Latitude:  station.Latitude,
			Longitude: station.Longitude,
		})
	}

	return &dto.ListStationsResponse{Stations: out}, nil
}

// ListClients returns all active clients
func (df *DataFlowImpl) ListClients(ctx context.Context) (*dto.ListClientsResponse, error) {
	clients, err := df.clientRepo.ListActive(ctx)
	if err != nil {
		return nil, NewBusinessError("CLIENT_LIST_FAILED", "Failed to list clients", err)
	}

	out := make([]dto.ClientDTO, 0, len(clients))
	for _, client := range clients {
		out = append(out, dto.ClientDTO{
			ID:        client.ID,
			UUID:      client.UUID.String(),
			Name:      client.Name,
			CNPJ:      client.CNPJ,
			StationID: client.StationID,
		})
	}

	return &dto.ListClientsResponse{Clients: out}, nil
}

// ListPaymentMethods returns all active payment methods
func (df *DataFlowImpl) ListPaymentMethods(ctx context.Context) (*dto.ListPaymentMethodsResponse, error) {
	methods, err := df.paymentMethodRepo.ListActive(ctx)
	if err != nil {
		return nil, NewBusinessError("PAYMENT_METHOD_LIST_FAILED", "Failed to list payment methods", err)
	}

	out := make([]dto.PaymentMethodDTO, 0, len(methods))
	for _, method := range methods {
		out = append(out, dto.PaymentMethodDTO{
			ID:          method.ID,
			Name:        method.Name,
			DisplayName: method.DisplayName,
		})
	}

	return &dto.ListPaymentMethodsResponse{PaymentMethods: out}, nil
}
