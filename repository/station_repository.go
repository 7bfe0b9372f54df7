package repository

import (
	"context"

	"github.com/petrodesk/petrodesk/models"
	"github.com/petrodesk/petrodesk/utils"
	"gorm.io/gorm"
)

// StationRepositoryImpl implements the StationRepository interface
type StationRepositoryImpl struct {
	*BaseRepository[models.Station, models.StationFilter]
}

// NewStationRepository creates a new station repository
func NewStationRepository(db *gorm.DB) StationRepository {
	return &StationRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Station, models.StationFilter](db),
	}
}

// ListActive retrieves all active stations ordered by name
func (r *StationRepositoryImpl) ListActive(ctx context.Context) ([]*models.Station, error) {
	filter := models.StationFilter{IsActive: utils.ToPtr(true)}
	return r.ByFilter(ctx, filter, "name ASC", 0, 0)
}

func (r *StationRepositoryImpl) applyFilter(db *gorm.DB, filter models.StationFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		db = db.Where("uuid = ?", *filter.UUID)
	}
	if filter.Name != nil {
		db = db.Where("name = ?", *filter.Name)
	}
	if filter.City != nil {
		db = db.Where("city = ?", *filter.City)
	}
	if filter.State != nil {
		db = db.Where("state = ?", *filter.State)
	}
	if filter.IsActive != nil {
		db = db.Where("is_active = ?", *filter.IsActive)
	}
	return db
}

// ByFilter retrieves stations based on filter criteria
func (r *StationRepositoryImpl) ByFilter(ctx context.Context, filter models.StationFilter, orderBy string, limit, offset int) ([]*models.Station, error) {
	db := r.getDB(ctx)

	var stations []*models.Station
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

	err := query.Find(&stations).Error
	if err != nil {
		return nil, err
	}

	return stations, nil
}

// Count returns the number of stations matching the filter
func (r *StationRepositoryImpl) Count(ctx context.Context, filter models.StationFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	query := r.applyFilter(db.Model(&models.Station{}), filter)

	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any station matching the filter exists
func (r *StationRepositoryImpl) Exists(ctx context.Context, filter models.StationFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
