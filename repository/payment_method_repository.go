package repository

import (
	"context"

	"github.com/petrodesk/petrodesk/models"
	"github.com/petrodesk/petrodesk/utils"
	"gorm.io/gorm"
)

// PaymentMethodRepositoryImpl implements the PaymentMethodRepository interface
type PaymentMethodRepositoryImpl struct {
	*BaseRepository[models.PaymentMethod, models.PaymentMethodFilter]
}

// NewPaymentMethodRepository creates a new payment method repository
func NewPaymentMethodRepository(db *gorm.DB) PaymentMethodRepository {
	return &PaymentMethodRepositoryImpl{
		BaseRepository: NewBaseRepository[models.PaymentMethod, models.PaymentMethodFilter](db),
	}
}

// ListActive retrieves all active payment methods
func (r *PaymentMethodRepositoryImpl) ListActive(ctx context.Context) ([]*models.PaymentMethod, error) {
	filter := models.PaymentMethodFilter{IsActive: utils.ToPtr(true)}
	return r.ByFilter(ctx, filter, "id ASC", 0, 0)
}

func (r *PaymentMethodRepositoryImpl) applyFilter(db *gorm.DB, filter models.PaymentMethodFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.Name != nil {
		db = db.Where("name = ?", *filter.Name)
	}
	if filter.IsActive != nil {
		db = db.Where("is_active = ?", *filter.IsActive)
	}
	return db
}

// ByFilter retrieves payment methods based on filter criteria
func (r *PaymentMethodRepositoryImpl) ByFilter(ctx context.Context, filter models.PaymentMethodFilter, orderBy string, limit, offset int) ([]*models.PaymentMethod, error) {
	db := r.getDB(ctx)

	var methods []*models.PaymentMethod
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

	err := query.Find(&methods).Error
	if err != nil {
		return nil, err
	}

	return methods, nil
}

// Count returns the number of payment methods matching the filter
func (r *PaymentMethodRepositoryImpl) Count(ctx context.Context, filter models.PaymentMethodFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	query := r.applyFilter(db.Model(&models.PaymentMethod{}), filter)

	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any payment method matching the filter exists
func (r *PaymentMethodRepositoryImpl) Exists(ctx context.Context, filter models.PaymentMethodFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
