package repository

import (
	"context"

	"github.com/petrodesk/petrodesk/models"
	"gorm.io/gorm"
)

// CompetitorPriceRepositoryImpl implements the CompetitorPriceRepository interface
type CompetitorPriceRepositoryImpl struct {
	*BaseRepository[models.CompetitorPrice, models.CompetitorPriceFilter]
}

// NewCompetitorPriceRepository creates a new competitor price repository
func NewCompetitorPriceRepository(db *gorm.DB) CompetitorPriceRepository {
	return &CompetitorPriceRepositoryImpl{
		BaseRepository: NewBaseRepository[models.CompetitorPrice, models.CompetitorPriceFilter](db),
	}
}

// ListByStation retrieves observed competitor prices around one station
func (r *CompetitorPriceRepositoryImpl) ListByStation(ctx context.Context, stationID uint, limit, offset int) ([]*models.CompetitorPrice, error) {
	filter := models.CompetitorPriceFilter{StationID: &stationID}
	return r.ByFilter(ctx, filter, "observed_at DESC", limit, offset)
}

func (r *CompetitorPriceRepositoryImpl) applyFilter(db *gorm.DB, filter models.CompetitorPriceFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.StationID != nil {
		db = db.Where("station_id = ?", *filter.StationID)
	}
	if filter.ProductCode != nil {
		db = db.Where("product_code = ?", *filter.ProductCode)
	}
	if filter.CompetitorName != nil {
		db = db.Where("competitor_name = ?", *filter.CompetitorName)
	}
	if filter.ResearcherID != nil {
		db = db.Where("researcher_id = ?", *filter.ResearcherID)
	}
	if filter.ObservedAfter != nil {
		db = db.Where("observed_at >= ?", *filter.ObservedAfter)
	}
	if filter.ObservedBefore != nil {
		db = db.Where("observed_at <= ?", *filter.ObservedBefore)
	}
	return db
}

// ByFilter retrieves competitor prices based on filter criteria
func (r *CompetitorPriceRepositoryImpl) ByFilter(ctx context.Context, filter models.CompetitorPriceFilter, orderBy string, limit, offset int) ([]*models.CompetitorPrice, error) {
	db := r.getDB(ctx)

	var prices []*models.CompetitorPrice
	query := r.applyFilter(db, filter)

	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	query = query.Preload("Researcher")

	err := query.Find(&prices).Error
	if err != nil {
		return nil, err
	}

	return prices, nil
}

// Count returns the number of competitor prices matching the filter
func (r *CompetitorPriceRepositoryImpl) Count(ctx context.Context, filter models.CompetitorPriceFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	query := r.applyFilter(db.Model(&models.CompetitorPrice{}), filter)

	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any competitor price matching the filter exists
func (r *CompetitorPriceRepositoryImpl) Exists(ctx context.Context, filter models.CompetitorPriceFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
