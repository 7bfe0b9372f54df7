package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/petrodesk/petrodesk/models"
	"github.com/petrodesk/petrodesk/utils"
	"gorm.io/gorm"
)

// PriceSuggestionRepositoryImpl implements the PriceSuggestionRepository interface
type PriceSuggestionRepositoryImpl struct {
	*BaseRepository[models.PriceSuggestion, models.PriceSuggestionFilter]
}

// NewPriceSuggestionRepository creates a new price suggestion repository
func NewPriceSuggestionRepository(db *gorm.DB) PriceSuggestionRepository {
	return &PriceSuggestionRepositoryImpl{
		BaseRepository: NewBaseRepository[models.PriceSuggestion, models.PriceSuggestionFilter](db),
	}
}

// ByID retrieves a suggestion by ID with its relations preloaded
func (r *PriceSuggestionRepositoryImpl) ByID(ctx context.Context, id uint) (*models.PriceSuggestion, error) {
	db := r.getDB(ctx)

	var suggestion models.PriceSuggestion
	err := db.Preload("Station").
		Preload("CreatedBy").
		Preload("CreatedBy.Profile").
		Last(&suggestion, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &suggestion, nil
}

// ByUUID retrieves a suggestion by UUID
func (r *PriceSuggestionRepositoryImpl) ByUUID(ctx context.Context, uuidStr string) (*models.PriceSuggestion, error) {
	parsedUUID, err := utils.ParseUUID(uuidStr)
	if err != nil {
		return nil, err
	}

	filter := models.PriceSuggestionFilter{UUID: &parsedUUID}
	suggestions, err := r.ByFilter(ctx, filter, "", 0, 0)
	if err != nil {
		return nil, err
	}
	if len(suggestions) == 0 {
		return nil, nil
	}
	return suggestions[0], nil
}

// ByBatchID retrieves every suggestion sharing a batch id
func (r *PriceSuggestionRepositoryImpl) ByBatchID(ctx context.Context, batchID uuid.UUID) ([]*models.PriceSuggestion, error) {
	filter := models.PriceSuggestionFilter{BatchID: &batchID}
	return r.ByFilter(ctx, filter, "id ASC", 0, 0)
}

// Update updates a suggestion
func (r *PriceSuggestionRepositoryImpl) Update(ctx context.Context, suggestion models.PriceSuggestion) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	suggestion.UpdatedAt = utils.UTCNowPtr()

	err = db.Save(&suggestion).Error
	if err != nil {
		return err
	}

	return nil
}

// UpdateStatusLevel updates only the status and required level of a suggestion
func (r *PriceSuggestionRepositoryImpl) UpdateStatusLevel(ctx context.Context, id uint, status models.SuggestionStatus, level int) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	err = db.Model(&models.PriceSuggestion{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":        status,
			"current_level": level,
			"updated_at":    utils.UTCNow(),
		}).Error
	if err != nil {
		return err
	}

	return nil
}

func (r *PriceSuggestionRepositoryImpl) applyFilter(db *gorm.DB, filter models.PriceSuggestionFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		db = db.Where("uuid = ?", *filter.UUID)
	}
	if filter.StationID != nil {
		db = db.Where("station_id = ?", *filter.StationID)
	}
	if filter.ClientID != nil {
		db = db.Where("client_id = ?", *filter.ClientID)
	}
	if filter.ProductCode != nil {
		db = db.Where("product_code = ?", *filter.ProductCode)
	}
	if filter.Status != nil {
		db = db.Where("status = ?", *filter.Status)
	}
	if filter.CurrentLevel != nil {
		db = db.Where("current_level = ?", *filter.CurrentLevel)
	}
	if filter.BatchID != nil {
		db = db.Where("batch_id = ?", *filter.BatchID)
	}
	if filter.CreatedByID != nil {
		db = db.Where("created_by_id = ?", *filter.CreatedByID)
	}
	if filter.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		db = db.Where("created_at <= ?", *filter.CreatedBefore)
	}
	return db
}

// ByFilter retrieves suggestions based on filter criteria
func (r *PriceSuggestionRepositoryImpl) ByFilter(ctx context.Context, filter models.PriceSuggestionFilter, orderBy string, limit, offset int) ([]*models.PriceSuggestion, error) {
	db := r.getDB(ctx)

	var suggestions []*models.PriceSuggestion
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

	query = query.Preload("Station").
		Preload("CreatedBy").
		Preload("CreatedBy.Profile")

	err := query.Find(&suggestions).Error
	if err != nil {
		return nil, err
	}

	return suggestions, nil
}

// Count returns the number of suggestions matching the filter
func (r *PriceSuggestionRepositoryImpl) Count(ctx context.Context, filter models.PriceSuggestionFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	query := r.applyFilter(db.Model(&models.PriceSuggestion{}), filter)

	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any suggestion matching the filter exists
func (r *PriceSuggestionRepositoryImpl) Exists(ctx context.Context, filter models.PriceSuggestionFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
