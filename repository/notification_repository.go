package repository

import (
	"context"
	"time"

	"github.com/petrodesk/petrodesk/models"
	"github.com/petrodesk/petrodesk/utils"
	"gorm.io/gorm"
)

// NotificationRepositoryImpl implements the NotificationRepository interface
type NotificationRepositoryImpl struct {
	*BaseRepository[models.Notification, models.NotificationFilter]
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &NotificationRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Notification, models.NotificationFilter](db),
	}
}

// ListByRecipient retrieves notifications for one recipient, newest first
func (r *NotificationRepositoryImpl) ListByRecipient(ctx context.Context, recipientID uint, unreadOnly bool, limit, offset int) ([]*models.Notification, error) {
	filter := models.NotificationFilter{RecipientID: &recipientID}
	if unreadOnly {
		filter.IsRead = utils.ToPtr(false)
	}
	return r.ByFilter(ctx, filter, "created_at DESC", limit, offset)
}

// MarkRead flips the read flag for one notification owned by the recipient.
// The flag is monotonic; there is no unread operation.
func (r *NotificationRepositoryImpl) MarkRead(ctx context.Context, id, recipientID uint) error {
	db := r.getDB(ctx)
	return db.Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		Update("is_read", true).Error
}

// DeleteByRecipient removes one notification owned by the recipient
func (r *NotificationRepositoryImpl) DeleteByRecipient(ctx context.Context, id, recipientID uint) error {
	db := r.getDB(ctx)
	return db.Where("id = ? AND recipient_id = ?", id, recipientID).
		Delete(&models.Notification{}).Error
}

// DeleteExpired removes notifications past their expiry, returning the count
func (r *NotificationRepositoryImpl) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	db := r.getDB(ctx)
	res := db.Where("expires_at IS NOT NULL AND expires_at <= ?", now).
		Delete(&models.Notification{})
	return res.RowsAffected, res.Error
}

func (r *NotificationRepositoryImpl) applyFilter(db *gorm.DB, filter models.NotificationFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.RecipientID != nil {
		db = db.Where("recipient_id = ?", *filter.RecipientID)
	}
	if filter.Type != nil {
		db = db.Where("type = ?", *filter.Type)
	}
	if filter.IsRead != nil {
		db = db.Where("is_read = ?", *filter.IsRead)
	}
	if filter.SuggestionID != nil {
		db = db.Where("suggestion_id = ?", *filter.SuggestionID)
	}
	if filter.DedupKey != nil {
		db = db.Where("dedup_key = ?", *filter.DedupKey)
	}
	if filter.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		db = db.Where("created_at <= ?", *filter.CreatedBefore)
	}
	if filter.ExpiresBefore != nil {
		db = db.Where("expires_at <= ?", *filter.ExpiresBefore)
	}
	return db
}

// ByFilter retrieves notifications based on filter criteria
func (r *NotificationRepositoryImpl) ByFilter(ctx context.Context, filter models.NotificationFilter, orderBy string, limit, offset int) ([]*models.Notification, error) {
	db := r.getDB(ctx)

	var notifications []*models.Notification
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

	err := query.Find(&notifications).Error
	if err != nil {
		return nil, err
	}

	return notifications, nil
}

// Count returns the number of notifications matching the filter
func (r *NotificationRepositoryImpl) Count(ctx context.Context, filter models.NotificationFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	query := r.applyFilter(db.Model(&models.Notification{}), filter)

	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any notification matching the filter exists
func (r *NotificationRepositoryImpl) Exists(ctx context.Context, filter models.NotificationFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
