package dto

// StationDTO represents a fuel station in API responses
type StationDTO struct {
	ID        uint     `json:"id"`
	UUID      string   `json:"uuid"`
	Name      string   `json:"name"`
	CNPJ      *string  `json:"cnpj,omitempty"`
	City      string   `json:"city"`
	State     string   `json:"state" example:"SP"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// ListStationsResponse lists the active stations
type ListStationsResponse struct {
	Stations []StationDTO `json:"stations"`
}

// ClientDTO represents a fleet or wholesale client in API responses
type ClientDTO struct {
	ID        uint    `json:"id"`
	UUID      string  `json:"uuid"`
	Name      string  `json:"name"`
	CNPJ      *string `json:"cnpj,omitempty"`
	StationID *uint   `json:"station_id,omitempty"`
}

// ListClientsResponse lists the active clients
type ListClientsResponse struct {
	Clients []ClientDTO `json:"clients"`
}

// PaymentMethodDTO represents a payment condition in API responses
type PaymentMethodDTO struct {
	ID          uint   `json:"id"`
	Name        string `json:"name" example:"a_vista"`
	DisplayName string `json:"display_name" example:"À vista"`
}

// ListPaymentMethodsResponse lists the active payment methods
type ListPaymentMethodsResponse struct {
	PaymentMethods []PaymentMethodDTO `json:"payment_methods"`
}
