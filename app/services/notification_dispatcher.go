package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/petrodesk/petrodesk/models"
	"github.com/petrodesk/petrodesk/repository"
	"github.com/petrodesk/petrodesk/utils"
)

// NotificationDispatcher fans out workflow transitions to in-app
// notifications and push delivery
type NotificationDispatcher interface {
	NotifyApprovalRequested(ctx context.Context, suggestion *models.PriceSuggestion, profileName string, level int) error
	NotifyTerminal(ctx context.Context, suggestion *models.PriceSuggestion, deciderName string) error
}

// NotificationDispatcherImpl implements NotificationDispatcher
type NotificationDispatcherImpl struct {
	notificationRepo repository.NotificationRepository
	subscriptionRepo repository.PushSubscriptionRepository
	userRepo         repository.UserRepository
	pushService      PushService
	pushTimeout      time.Duration
}

// NewNotificationDispatcher creates a new notification dispatcher
func NewNotificationDispatcher(
	notificationRepo repository.NotificationRepository,
	subscriptionRepo repository.PushSubscriptionRepository,
	userRepo repository.UserRepository,
	pushService PushService,
) NotificationDispatcher {
	return &NotificationDispatcherImpl{
		notificationRepo: notificationRepo,
		subscriptionRepo: subscriptionRepo,
		userRepo:         userRepo,
		pushService:      pushService,
		pushTimeout:      15 * time.Second,
	}
}

type suggestionPayload struct {
	SuggestionUUID string  `json:"suggestion_uuid"`
	StationID      uint    `json:"station_id"`
	ProductCode    string  `json:"product_code"`
	FinalPrice     float64 `json:"final_price"`
	Status         string  `json:"status"`
	Level          int     `json:"level,omitempty"`
}

// NotifyApprovalRequested notifies every active user holding the profile
// responsible for the given level. Dedup keys make redelivery a no-op.
func (d *NotificationDispatcherImpl) NotifyApprovalRequested(ctx context.Context, suggestion *models.PriceSuggestion, profileName string, level int) error {
	recipients, err := d.userRepo.ListActiveByProfileName(ctx, profileName)
	if err != nil {
		return fmt.Errorf("failed to resolve approval audience: %w", err)
	}
	if len(recipients) == 0 {
		log.Printf("No active approvers with profile %s for suggestion %s at level %d", profileName, suggestion.UUID, level)
		return nil
	}

	title := "Aprovação de preço pendente"
	message := fmt.Sprintf("Sugestão de preço para %s aguarda sua decisão (R$ %.3f)",
		suggestion.ProductCode, suggestion.FinalPrice)

	payload, _ := json.Marshal(suggestionPayload{
		SuggestionUUID: suggestion.UUID.String(),
		StationID:      suggestion.StationID,
		ProductCode:    suggestion.ProductCode.String(),
		FinalPrice:     suggestion.FinalPrice,
		Status:         suggestion.Status.String(),
		Level:          level,
	})

	delivered := make([]uint, 0, len(recipients))
	for _, recipient := range recipients {
		dedupKey := fmt.Sprintf("approval_requested:%d:level:%d:user:%d", suggestion.ID, level, recipient.ID)
		created, err := d.insertNotification(ctx, &models.Notification{
			RecipientID:  recipient.ID,
			Type:         models.NotificationApprovalRequested,
			Title:        title,
			Message:      message,
			SuggestionID: &suggestion.ID,
			Payload:      payload,
			DedupKey:     &dedupKey,
			ExpiresAt:    utils.ToPtr(utils.UTCNowAdd(utils.NotificationExpiry)),
		})
		if err != nil {
			return err
		}
		if created {
			delivered = append(delivered, recipient.ID)
		}
	}

	d.pushToUsers(delivered, title, message, map[string]string{
		"type":            models.NotificationApprovalRequested.String(),
		"suggestion_uuid": suggestion.UUID.String(),
	})

	return nil
}

// NotifyTerminal notifies the suggestion creator about the final outcome
func (d *NotificationDispatcherImpl) NotifyTerminal(ctx context.Context, suggestion *models.PriceSuggestion, deciderName string) error {
	var notifType models.NotificationType
	var title, message string

	switch suggestion.Status {
	case models.SuggestionStatusApproved:
		notifType = models.NotificationSuggestionApproved
		title = "Sugestão de preço aprovada"
		message = fmt.Sprintf("Sua sugestão para %s (R$ %.3f) foi aprovada por %s",
			suggestion.ProductCode, suggestion.FinalPrice, deciderName)
	case models.SuggestionStatusRejected:
		notifType = models.NotificationSuggestionRejected
		title = "Sugestão de preço rejeitada"
		message = fmt.Sprintf("Sua sugestão para %s (R$ %.3f) foi rejeitada por %s",
			suggestion.ProductCode, suggestion.FinalPrice, deciderName)
	default:
		return fmt.Errorf("cannot dispatch terminal notification for status %s", suggestion.Status)
	}

	payload, _ := json.Marshal(suggestionPayload{
		SuggestionUUID: suggestion.UUID.String(),
		StationID:      suggestion.StationID,
		ProductCode:    suggestion.ProductCode.String(),
		FinalPrice:     suggestion.FinalPrice,
		Status:         suggestion.Status.String(),
	})

	dedupKey := fmt.Sprintf("%s:%d:user:%d", notifType, suggestion.ID, suggestion.CreatedByID)
	created, err := d.insertNotification(ctx, &models.Notification{
		RecipientID:  suggestion.CreatedByID,
		Type:         notifType,
		Title:        title,
		Message:      message,
		SuggestionID: &suggestion.ID,
		Payload:      payload,
		DedupKey:     &dedupKey,
		ExpiresAt:    utils.ToPtr(utils.UTCNowAdd(utils.NotificationExpiry)),
	})
	if err != nil {
		return err
	}

	if created {
		d.pushToUsers([]uint{suggestion.CreatedByID}, title, message, map[string]string{
			"type":            notifType.String(),
			"suggestion_uuid": suggestion.UUID.String(),
		})
	}

	return nil
}

// insertNotification persists one notification row. A dedup key collision
// means the row already exists and is reported as not created.
func (d *NotificationDispatcherImpl) insertNotification(ctx context.Context, notification *models.Notification) (bool, error) {
	err := d.notificationRepo.Save(ctx, notification)
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to save notification: %w", err)
	}
	return true, nil
}

// pushToUsers delivers push messages in the background. Delivery failures
// never fail the originating workflow transition.
func (d *NotificationDispatcherImpl) pushToUsers(userIDs []uint, title, message string, data map[string]string) {
	if d.pushService == nil || len(userIDs) == 0 {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), d.pushTimeout)
		defer cancel()

		subscriptions, err := d.subscriptionRepo.ListByUsers(ctx, userIDs)
		if err != nil {
			log.Printf("Failed to list push subscriptions: %v", err)
			return
		}

		for _, sub := range subscriptions {
			err := d.pushService.Send(ctx, PushMessage{
				Token: sub.Token,
				Title: title,
				Body:  message,
				Data:  data,
			})
			if err == nil {
				continue
			}
			if errors.Is(err, ErrPushInvalidToken) {
				// Provider rejected the token for good, drop the subscription
				if delErr := d.subscriptionRepo.DeleteByToken(ctx, sub.Token); delErr != nil {
					log.Printf("Failed to remove invalid push token for user %d: %v", sub.UserID, delErr)
				}
				continue
			}
			log.Printf("Push delivery failed for user %d: %v", sub.UserID, err)
		}
	}()
}
