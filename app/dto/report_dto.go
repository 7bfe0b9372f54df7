package dto

// ExportSuggestionsRequest represents filters for the XLSX export
type ExportSuggestionsRequest struct {
	StationID   *uint   `query:"station_id"`
	ProductCode *string `query:"product_code" validate:"omitempty,oneof=gasolina_comum gasolina_aditivada etanol diesel_s10 diesel_s500 gnv"`
	Status      *string `query:"status" validate:"omitempty,oneof=draft pending in_approval approved rejected"`
	From        *string `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To          *string `query:"to" validate:"omitempty,datetime=2006-01-02"`
}

// ExportSuggestionsResponse carries the generated spreadsheet
type ExportSuggestionsResponse struct {
	FileName    string `json:"file_name" example:"sugestoes_2026-08-31.xlsx"`
	ContentType string `json:"content_type" example:"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"`
	Content     []byte `json:"-"`
}
