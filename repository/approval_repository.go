package repository

import (
	"context"

	"github.com/petrodesk/petrodesk/models"
	"gorm.io/gorm"
)

// PriceApprovalRepositoryImpl implements the PriceApprovalRepository interface
type PriceApprovalRepositoryImpl struct {
	*BaseRepository[models.PriceApproval, models.PriceApprovalFilter]
}

// NewPriceApprovalRepository creates a new price approval repository
func NewPriceApprovalRepository(db *gorm.DB) PriceApprovalRepository {
	return &PriceApprovalRepositoryImpl{
		BaseRepository: NewBaseRepository[models.PriceApproval, models.PriceApprovalFilter](db),
	}
}

// BySuggestionAndLevel retrieves the decision recorded at one level, if any
func (r *PriceApprovalRepositoryImpl) BySuggestionAndLevel(ctx context.Context, suggestionID uint, level int) (*models.PriceApproval, error) {
	filter := models.PriceApprovalFilter{SuggestionID: &suggestionID, Level: &level}
	approvals, err := r.ByFilter(ctx, filter, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(approvals) == 0 {
		return nil, nil
	}
	return approvals[0], nil
}

// ListBySuggestion retrieves the decision trail for a suggestion in level order
func (r *PriceApprovalRepositoryImpl) ListBySuggestion(ctx context.Context, suggestionID uint) ([]*models.PriceApproval, error) {
	filter := models.PriceApprovalFilter{SuggestionID: &suggestionID}
	return r.ByFilter(ctx, filter, "level ASC", 0, 0)
}

func (r *PriceApprovalRepositoryImpl) applyFilter(db *gorm.DB, filter models.PriceApprovalFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.SuggestionID != nil {
		db = db.Where("suggestion_id = ?", *filter.SuggestionID)
	}
	if filter.Level != nil {
		db = db.Where("level = ?", *filter.Level)
	}
	if filter.ApproverID != nil {
		db = db.Where("approver_id = ?", *filter.ApproverID)
	}
	if filter.Decision != nil {
		db = db.Where("decision = ?", *filter.Decision)
	}
	return db
}

// ByFilter retrieves approvals based on filter criteria
func (r *PriceApprovalRepositoryImpl) ByFilter(ctx context.Context, filter models.PriceApprovalFilter, orderBy string, limit, offset int) ([]*models.PriceApproval, error) {
	db := r.getDB(ctx)

	var approvals []*models.PriceApproval
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

	query = query.Preload("Approver").
		Preload("Approver.Profile")

	err := query.Find(&approvals).Error
	if err != nil {
		return nil, err
	}

	return approvals, nil
}

// Count returns the number of approvals matching the filter
func (r *PriceApprovalRepositoryImpl) Count(ctx context.Context, filter models.PriceApprovalFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	query := r.applyFilter(db.Model(&models.PriceApproval{}), filter)

	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any approval matching the filter exists
func (r *PriceApprovalRepositoryImpl) Exists(ctx context.Context, filter models.PriceApprovalFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
