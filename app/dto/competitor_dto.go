package dto

import "time"

// RegisterCompetitorPriceRequest records one observed competitor price
type RegisterCompetitorPriceRequest struct {
	StationID      uint       `json:"station_id" validate:"required"`
	CompetitorName string     `json:"competitor_name" validate:"required,max=255" example:"Posto Ipiranga Centro"`
	ProductCode    string     `json:"product_code" validate:"required,oneof=gasolina_comum gasolina_aditivada etanol diesel_s10 diesel_s500 gnv"`
	Price          float64    `json:"price" validate:"required,gt=0" example:"5.79"`
	PhotoURL       *string    `json:"photo_url,omitempty" validate:"omitempty,url"`
	Latitude       *float64   `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude      *float64   `json:"longitude,omitempty" validate:"omitempty,longitude"`
	ObservedAt     *time.Time `json:"observed_at,omitempty"`
}

// CompetitorPriceDTO represents one competitor observation in API responses
type CompetitorPriceDTO struct {
	ID             uint      `json:"id"`
	UUID           string    `json:"uuid"`
	StationID      uint      `json:"station_id"`
	CompetitorName string    `json:"competitor_name"`
	ProductCode    string    `json:"product_code"`
	Price          float64   `json:"price"`
	Currency       string    `json:"currency" example:"BRL"`
	PhotoURL       *string   `json:"photo_url,omitempty"`
	Latitude       *float64  `json:"latitude,omitempty"`
	Longitude      *float64  `json:"longitude,omitempty"`
	ResearcherID   uint      `json:"researcher_id"`
	ResearcherName string    `json:"researcher_name,omitempty"`
	ObservedAt     time.Time `json:"observed_at"`
}

// RegisterCompetitorPriceResponse represents the stored observation
type RegisterCompetitorPriceResponse struct {
	CompetitorPrice CompetitorPriceDTO `json:"competitor_price"`
}

// ListCompetitorPricesRequest represents filters for competitor observations
type ListCompetitorPricesRequest struct {
	StationID   *uint   `query:"station_id"`
	ProductCode *string `query:"product_code" validate:"omitempty,oneof=gasolina_comum gasolina_aditivada etanol diesel_s10 diesel_s500 gnv"`
	Page        int     `query:"page" validate:"omitempty,min=1"`
	PageSize    int     `query:"page_size" validate:"omitempty,min=1,max=100"`
}

// ListCompetitorPricesResponse represents a page of competitor observations
type ListCompetitorPricesResponse struct {
	CompetitorPrices []CompetitorPriceDTO `json:"competitor_prices"`
	Pagination       PaginationDTO        `json:"pagination"`
}
