package businessflow

import (
	"context"
	"fmt"

	"github.com/petrodesk/petrodesk/app/dto"
	"github.com/petrodesk/petrodesk/models"
	"github.com/petrodesk/petrodesk/repository"
	"github.com/petrodesk/petrodesk/utils"
	"gorm.io/gorm"
)

// PushFlow manages the push token lifecycle.
//
// Clients re-report their token periodically; a known (user, token) pair
// only refreshes its timestamp. A new token for an already-registered
// device class rotates the old rows out before inserting, so one device
// holds at most one live token.
type PushFlow interface {
	RegisterToken(ctx context.Context, request *dto.RegisterPushTokenRequest, actorID uint, metadata *ClientMetadata) (*dto.RegisterPushTokenResponse, error)
	RevokeToken(ctx context.Context, request *dto.RevokePushTokenRequest, actorID uint, metadata *ClientMetadata) (*dto.RevokePushTokenResponse, error)
	ListSubscriptions(ctx context.Context, actorID uint) (*dto.ListPushSubscriptionsResponse, error)
}

// PushFlowImpl implements the push subscription business flow
type PushFlowImpl struct {
	subscriptionRepo repository.PushSubscriptionRepository
	auditRepo        repository.AuditLogRepository
	db               *gorm.DB
}

// NewPushFlow creates a new push flow instance
func NewPushFlow(
	subscriptionRepo repository.PushSubscriptionRepository,
	auditRepo repository.AuditLogRepository,
	db *gorm.DB,
) PushFlow {
	return &PushFlowImpl{
		subscriptionRepo: subscriptionRepo,
		auditRepo:        auditRepo,
		db:               db,
	}
}

// RegisterToken records or refreshes a device token. Re-registering the
// same token is idempotent; a different token rotates the device class.
func (pf *PushFlowImpl) RegisterToken(ctx context.Context, request *dto.RegisterPushTokenRequest, actorID uint, metadata *ClientMetadata) (*dto.RegisterPushTokenResponse, error) {
	deviceClass := models.DeviceClass(request.DeviceClass)
	if !deviceClass.Valid() {
		return nil, NewBusinessError("PUSH_REGISTER_VALIDATION_FAILED", "Push registration validation failed", ErrInvalidDeviceClass)
	}
	if request.Token == "" {
		return nil, NewBusinessError("PUSH_REGISTER_VALIDATION_FAILED", "Push registration validation failed", ErrInvalidDeviceClass)
	}

	var subscription *models.PushSubscription
	var rotated bool

	err := repository.WithTransaction(ctx, pf.db, func(ctx context.Context) error {
		existing, err := pf.subscriptionRepo.ByUserAndToken(ctx, actorID, request.Token)
		if err != nil {
			return err
		}
		if existing != nil {
			// Same token, just a refresh
			now := utils.UTCNow()
			if err := pf.subscriptionRepo.TouchRefreshed(ctx, existing.ID, now); err != nil {
				return err
			}
			existing.LastRefreshedAt = now
			subscription = existing
			return nil
		}

		// New token: rotate out any previous token for this device class
		if err := pf.subscriptionRepo.DeleteByUserAndClass(ctx, actorID, deviceClass); err != nil {
			return err
		}
		rotated = true

		var userAgent *string
		if metadata != nil && metadata.UserAgent != "" {
			userAgent = &metadata.UserAgent
		}

		subscription = &models.PushSubscription{
			UserID:      actorID,
			Token:       request.Token,
			DeviceClass: deviceClass,
			UserAgent:   userAgent,
			Platform:    request.Platform,
		}
		if err := pf.subscriptionRepo.Save(ctx, subscription); err != nil {
			if repository.IsUniqueViolation(err) {
				// Concurrent registration of the same token won the race,
				// treat it as a refresh
				concurrent, lookupErr := pf.subscriptionRepo.ByUserAndToken(ctx, actorID, request.Token)
				if lookupErr != nil {
					return lookupErr
				}
				if concurrent != nil {
					subscription = concurrent
					rotated = false
					return pf.subscriptionRepo.TouchRefreshed(ctx, concurrent.ID, utils.UTCNow())
				}
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, NewBusinessError("PUSH_REGISTER_FAILED", "Failed to register push token", err)
	}

	if rotated {
		pf.logPushAction(ctx, actorID, models.AuditActionPushTokenRegistered,
			fmt.Sprintf("Push token registered for device class %s", deviceClass), metadata)
	}

	return &dto.RegisterPushTokenResponse{
		Registered:    true,
		Rotated:       rotated,
		DeviceClass:   string(subscription.DeviceClass),
		LastRefreshed: subscription.LastRefreshedAt,
	}, nil
}

// RevokeToken removes one of the caller's push tokens
func (pf *PushFlowImpl) RevokeToken(ctx context.Context, request *dto.RevokePushTokenRequest, actorID uint, metadata *ClientMetadata) (*dto.RevokePushTokenResponse, error) {
	existing, err := pf.subscriptionRepo.ByUserAndToken(ctx, actorID, request.Token)
	if err != nil {
		return nil, NewBusinessError("PUSH_REVOKE_FAILED", "Failed to revoke push token", err)
	}
	if existing == nil {
		return nil, NewBusinessError("PUSH_REVOKE_FAILED", "Failed to revoke push token", ErrSubscriptionNotFound)
	}

	if err := pf.subscriptionRepo.DeleteByUserAndToken(ctx, actorID, request.Token); err != nil {
		return nil, NewBusinessError("PUSH_REVOKE_FAILED", "Failed to revoke push token", err)
	}

	pf.logPushAction(ctx, actorID, models.AuditActionPushTokenRevoked,
		fmt.Sprintf("Push token revoked for device class %s", existing.DeviceClass), metadata)

	return &dto.RevokePushTokenResponse{Revoked: true}, nil
}

// ListSubscriptions returns the caller's registered devices
func (pf *PushFlowImpl) ListSubscriptions(ctx context.Context, actorID uint) (*dto.ListPushSubscriptionsResponse, error) {
	subscriptions, err := pf.subscriptionRepo.ListByUser(ctx, actorID)
	if err != nil {
		return nil, NewBusinessError("PUSH_LIST_FAILED", "Failed to list push subscriptions", err)
	}

	out := make([]dto.PushSubscriptionDTO, 0, len(subscriptions))
	for _, sub := range subscriptions {
		out = append(out, dto.PushSubscriptionDTO{
			ID:              sub.ID,
			DeviceClass:     string(sub.DeviceClass),
			Platform:        sub.Platform,
			CreatedAt:       sub.CreatedAt,
			LastRefreshedAt: sub.LastRefreshedAt,
		})
	}

	return &dto.ListPushSubscriptionsResponse{Subscriptions: out}, nil
}

func (pf *PushFlowImpl) logPushAction(ctx context.Context, actorID uint, action, description string, metadata *ClientMetadata) {
	ipAddress := "127.0.0.1"
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	audit := &models.AuditLog{
		UserID:      &actorID,
		Action:      action,
		Description: &description,
		Success:     utils.ToPtr(true),
		IPAddress:   &ipAddress,
		UserAgent:   &userAgent,
	}
	_ = pf.auditRepo.Save(ctx, audit)
}
