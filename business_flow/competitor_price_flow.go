package businessflow

import (
	"context"
	"fmt"

	"github.com/petrodesk/petrodesk/app/dto"
	"github.com/petrodesk/petrodesk/app/services"
	"github.com/petrodesk/petrodesk/models"
	"github.com/petrodesk/petrodesk/repository"
	"github.com/petrodesk/petrodesk/utils"
)

// CompetitorPriceFlow handles competitor price research records
type CompetitorPriceFlow interface {
	Register(ctx context.Context, request *dto.RegisterCompetitorPriceRequest, actorID uint, metadata *ClientMetadata) (*dto.RegisterCompetitorPriceResponse, error)
	List(ctx context.Context, request *dto.ListCompetitorPricesRequest, actorID uint) (*dto.ListCompetitorPricesResponse, error)
}

// CompetitorPriceFlowImpl implements the competitor price business flow
type CompetitorPriceFlowImpl struct {
	competitorRepo    repository.CompetitorPriceRepository
	stationRepo       repository.StationRepository
	permissionService services.PermissionService
}

// NewCompetitorPriceFlow creates a new competitor price flow instance
func NewCompetitorPriceFlow(
	competitorRepo repository.CompetitorPriceRepository,
	stationRepo repository.StationRepository,
	permissionService services.PermissionService,
) CompetitorPriceFlow {
	return &CompetitorPriceFlowImpl{
		competitorRepo:    competitorRepo,
		stationRepo:       stationRepo,
		permissionService: permissionService,
	}
}

// Register stores one observed competitor price
func (cf *CompetitorPriceFlowImpl) Register(ctx context.Context, request *dto.RegisterCompetitorPriceRequest, actorID uint, metadata *ClientMetadata) (*dto.RegisterCompetitorPriceResponse, error) {
	permissions, err := cf.permissionService.Resolve(ctx, actorID)
	if err != nil {
		return nil, NewBusinessError("COMPETITOR_PERMISSION_CHECK_FAILED", "Permission check failed", err)
	}
	if !permissions.Has(models.CapabilityRegisterCompetitor) {
		return nil, NewBusinessError("COMPETITOR_FORBIDDEN", "Caller cannot register competitor prices", ErrPermissionDenied)
	}

	productCode := models.ProductCode(request.ProductCode)
	if !productCode.Valid() {
		return nil, NewBusinessError("COMPETITOR_VALIDATION_FAILED", "Competitor price validation failed", ErrInvalidProductCode)
	}

	station, err := cf.stationRepo.ByID(ctx, request.StationID)
	if err != nil {
		return nil, NewBusinessError("COMPETITOR_REGISTER_FAILED", "Failed to register competitor price", err)
	}
	if station == nil || !utils.IsTrue(station.IsActive) {
		return nil, NewBusinessError("COMPETITOR_REGISTER_FAILED", "Failed to register competitor price", ErrStationNotFound)
	}

	record := &models.CompetitorPrice{
		StationID:      request.StationID,
		CompetitorName: request.CompetitorName,
		ProductCode:    productCode,
		Price:          request.Price,
		PhotoURL:       request.PhotoURL,
		Latitude:       request.Latitude,
		Longitude:      request.Longitude,
		ResearcherID:   actorID,
	}
	if request.ObservedAt != nil {
		record.ObservedAt = utils.TimeToUTC(*request.ObservedAt)
	}

	if err := cf.competitorRepo.Save(ctx, record); err != nil {
		return nil, NewBusinessError("COMPETITOR_REGISTER_FAILED", "Failed to register competitor price", err)
	}

	return &dto.RegisterCompetitorPriceResponse{
		CompetitorPrice: ToCompetitorPriceDTO(*record),
	}, nil
}

// List returns a page of competitor observations for the map view
func (cf *CompetitorPriceFlowImpl) List(ctx context.Context, request *dto.ListCompetitorPricesRequest, actorID uint) (*dto.ListCompetitorPricesResponse, error) {
	permissions, err := cf.permissionService.Resolve(ctx, actorID)
	if err != nil {
		return nil, NewBusinessError("COMPETITOR_PERMISSION_CHECK_FAILED", "Permission check failed", err)
	}
	if !permissions.Has(models.CapabilityViewMap) {
		return nil, NewBusinessError("COMPETITOR_FORBIDDEN", "Caller cannot view the competitor map", ErrPermissionDenied)
	}

	page, pageSize, err := NormalizePagination(request.Page, request.PageSize)
	if err != nil {
		return nil, NewBusinessError("COMPETITOR_LIST_VALIDATION_FAILED", "List validation failed", err)
	}

	filter := models.CompetitorPriceFilter{StationID: request.StationID}
	if request.ProductCode != nil {
		code := models.ProductCode(*request.ProductCode)
		if !code.Valid() {
			return nil, NewBusinessError("COMPETITOR_LIST_VALIDATION_FAILED",
				fmt.Sprintf("Invalid product code: %s", *request.ProductCode), ErrInvalidProductCode)
		}
		filter.ProductCode = &code
	}

	total, err := cf.competitorRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("COMPETITOR_LIST_FAILED", "Failed to list competitor prices", err)
	}

	records, err := cf.competitorRepo.ByFilter(ctx, filter, "observed_at DESC", pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("COMPETITOR_LIST_FAILED", "Failed to list competitor prices", err)
	}

	out := make([]dto.CompetitorPriceDTO, 0, len(records))
	for _, record := range records {
		out = append(out, ToCompetitorPriceDTO(*record))
	}

	return &dto.ListCompetitorPricesResponse{
		CompetitorPrices: out,
		Pagination: dto.PaginationDTO{
			Page:     page,
			PageSize: pageSize,
			Total:    total,
		},
	}, nil
}
