package repository

import (
	"context"
	"fmt"

	"github.com/petrodesk/petrodesk/models"
	"github.com/petrodesk/petrodesk/utils"
	"gorm.io/gorm"
)

// ApprovalOrderRepositoryImpl implements the ApprovalOrderRepository interface
type ApprovalOrderRepositoryImpl struct {
	*BaseRepository[models.ApprovalProfileOrder, models.ApprovalProfileOrderFilter]
}

// NewApprovalOrderRepository creates a new approval order repository
func NewApprovalOrderRepository(db *gorm.DB) ApprovalOrderRepository {
	return &ApprovalOrderRepositoryImpl{
		BaseRepository: NewBaseRepository[models.ApprovalProfileOrder, models.ApprovalProfileOrderFilter](db),
	}
}

// ListOrdered retrieves all rows, active and inactive, sorted by position
func (r *ApprovalOrderRepositoryImpl) ListOrdered(ctx context.Context) ([]*models.ApprovalProfileOrder, error) {
	return r.ByFilter(ctx, models.ApprovalProfileOrderFilter{}, "order_position ASC", 0, 0)
}

// UpdatePositions rewrites order_position for every given row id. Callers are
// expected to pass a full permutation; this runs inside one transaction so a
// failed rewrite leaves the registry unchanged.
func (r *ApprovalOrderRepositoryImpl) UpdatePositions(ctx context.Context, positions map[uint]int) error {
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

	now := utils.UTCNow()
	for id, pos := range positions {
		res := db.Model(&models.ApprovalProfileOrder{}).
			Where("id = ?", id).
			Updates(map[string]any{
				"order_position": pos,
				"updated_at":     now,
			})
		if res.Error != nil {
			err = res.Error
			return err
		}
		if res.RowsAffected == 0 {
			err = fmt.Errorf("approval order row %d not found", id)
			return err
		}
	}

	return nil
}

// SetActive toggles a single row without renumbering
func (r *ApprovalOrderRepositoryImpl) SetActive(ctx context.Context, id uint, active bool) error {
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

	res := db.Model(&models.ApprovalProfileOrder{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"is_active":  active,
			"updated_at": utils.UTCNow(),
		})
	if res.Error != nil {
		err = res.Error
		return err
	}
	if res.RowsAffected == 0 {
		err = fmt.Errorf("approval order row %d not found", id)
		return err
	}

	return nil
}

// MaxPosition returns the highest order_position across all rows, 0 when empty
func (r *ApprovalOrderRepositoryImpl) MaxPosition(ctx context.Context) (int, error) {
	db := r.getDB(ctx)

	var max *int
	err := db.Model(&models.ApprovalProfileOrder{}).
		Select("MAX(order_position)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

func (r *ApprovalOrderRepositoryImpl) applyFilter(db *gorm.DB, filter models.ApprovalProfileOrderFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.ProfileName != nil {
		db = db.Where("profile_name = ?", *filter.ProfileName)
	}
	if filter.IsActive != nil {
		db = db.Where("is_active = ?", *filter.IsActive)
	}
	return db
}

// ByFilter retrieves approval order rows based on filter criteria
func (r *ApprovalOrderRepositoryImpl) ByFilter(ctx context.Context, filter models.ApprovalProfileOrderFilter, orderBy string, limit, offset int) ([]*models.ApprovalProfileOrder, error) {
	db := r.getDB(ctx)

	var rows []*models.ApprovalProfileOrder
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

	err := query.Find(&rows).Error
	if err != nil {
		return nil, err
	}

	return rows, nil
}

// Count returns the number of rows matching the filter
func (r *ApprovalOrderRepositoryImpl) Count(ctx context.Context, filter models.ApprovalProfileOrderFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	query := r.applyFilter(db.Model(&models.ApprovalProfileOrder{}), filter)

	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any row matching the filter exists
func (r *ApprovalOrderRepositoryImpl) Exists(ctx context.Context, filter models.ApprovalProfileOrderFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
