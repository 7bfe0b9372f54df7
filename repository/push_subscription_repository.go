package repository

import (
	"context"
	"time"

	"github.com/petrodesk/petrodesk/models"
	"gorm.io/gorm"
)

// PushSubscriptionRepositoryImpl implements the PushSubscriptionRepository interface
type PushSubscriptionRepositoryImpl struct {
	*BaseRepository[models.PushSubscription, models.PushSubscriptionFilter]
}

// NewPushSubscriptionRepository creates a new push subscription repository
func NewPushSubscriptionRepository(db *gorm.DB) PushSubscriptionRepository {
	return &PushSubscriptionRepositoryImpl{
		BaseRepository: NewBaseRepository[models.PushSubscription, models.PushSubscriptionFilter](db),
	}
}

// ByUserAndToken retrieves the subscription for one exact (user, token) pair.
// The token refresh path checks this before delete+insert to stay idempotent.
func (r *PushSubscriptionRepositoryImpl) ByUserAndToken(ctx context.Context, userID uint, token string) (*models.PushSubscription, error) {
	filter := models.PushSubscriptionFilter{UserID: &userID, Token: &token}
	subs, err := r.ByFilter(ctx, filter, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(subs) == 0 {
		return nil, nil
	}
	return subs[0], nil
}

// ListByUser retrieves all live subscriptions of one user
func (r *PushSubscriptionRepositoryImpl) ListByUser(ctx context.Context, userID uint) ([]*models.PushSubscription, error) {
	filter := models.PushSubscriptionFilter{UserID: &userID}
	return r.ByFilter(ctx, filter, "created_at ASC", 0, 0)
}

// ListByUsers retrieves live subscriptions for a set of users in one query
func (r *PushSubscriptionRepositoryImpl) ListByUsers(ctx context.Context, userIDs []uint) ([]*models.PushSubscription, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	db := r.getDB(ctx)
	var subs []*models.PushSubscription
	err := db.Where("user_id IN ?", userIDs).Find(&subs).Error
	if err != nil {
		return nil, err
	}
	return subs, nil
}

// TouchRefreshed stamps a subscription as refreshed
func (r *PushSubscriptionRepositoryImpl) TouchRefreshed(ctx context.Context, id uint, at time.Time) error {
	db := r.getDB(ctx)
	return db.Model(&models.PushSubscription{}).
		Where("id = ?", id).
		Update("last_refreshed_at", at).Error
}

// DeleteByUserAndClass removes every subscription of one user on one device
// class. Token rotation runs this before inserting the replacement token.
func (r *PushSubscriptionRepositoryImpl) DeleteByUserAndClass(ctx context.Context, userID uint, class models.DeviceClass) error {
	db := r.getDB(ctx)
	return db.Where("user_id = ? AND device_class = ?", userID, class).
		Delete(&models.PushSubscription{}).Error
}

// DeleteByUserAndToken removes one exact (user, token) subscription
func (r *PushSubscriptionRepositoryImpl) DeleteByUserAndToken(ctx context.Context, userID uint, token string) error {
	db := r.getDB(ctx)
	return db.Where("user_id = ? AND token = ?", userID, token).
		Delete(&models.PushSubscription{}).Error
}

// DeleteByToken removes every subscription carrying the token, regardless of
// owner. Used when the push provider reports the token invalid.
func (r *PushSubscriptionRepositoryImpl) DeleteByToken(ctx context.Context, token string) error {
	db := r.getDB(ctx)
	return db.Where("token = ?", token).
		Delete(&models.PushSubscription{}).Error
}

// DeleteRefreshedBefore prunes subscriptions unrefreshed since the cutoff
func (r *PushSubscriptionRepositoryImpl) DeleteRefreshedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	db := r.getDB(ctx)
	res := db.Where("last_refreshed_at < ?", cutoff).
		Delete(&models.PushSubscription{})
	return res.RowsAffected, res.Error
}

func (r *PushSubscriptionRepositoryImpl) applyFilter(db *gorm.DB, filter models.PushSubscriptionFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.UserID != nil {
		db = db.Where("user_id = ?", *filter.UserID)
	}
	if filter.Token != nil {
		db = db.Where("token = ?", *filter.Token)
	}
	if filter.DeviceClass != nil {
		db = db.Where("device_class = ?", *filter.DeviceClass)
	}
	if filter.RefreshedBefore != nil {
		db = db.Where("last_refreshed_at < ?", *filter.RefreshedBefore)
	}
	return db
}

// ByFilter retrieves subscriptions based on filter criteria
func (r *PushSubscriptionRepositoryImpl) ByFilter(ctx context.Context, filter models.PushSubscriptionFilter, orderBy string, limit, offset int) ([]*models.PushSubscription, error) {
	db := r.getDB(ctx)

	var subs []*models.PushSubscription
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

	err := query.Find(&subs).Error
	if err != nil {
		return nil, err
	}

	return subs, nil
}

// Count returns the number of subscriptions matching the filter
func (r *PushSubscriptionRepositoryImpl) Count(ctx context.Context, filter models.PushSubscriptionFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	query := r.applyFilter(db.Model(&models.PushSubscription{}), filter)

	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any subscription matching the filter exists
func (r *PushSubscriptionRepositoryImpl) Exists(ctx context.Context, filter models.PushSubscriptionFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
