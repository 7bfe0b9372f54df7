package businessflow

import (
	"context"

	"github.com/petrodesk/petrodesk/app/dto"
	"github.com/petrodesk/petrodesk/models"
	"github.com/petrodesk/petrodesk/repository"
	"github.com/petrodesk/petrodesk/utils"
)

// NotificationFlow handles the in-app notification inbox
type NotificationFlow interface {
	List(ctx context.Context, request *dto.ListNotificationsRequest, actorID uint) (*dto.ListNotificationsResponse, error)
	MarkRead(ctx context.Context, notificationID uint, actorID uint) (*dto.MarkNotificationReadResponse, error)
	Delete(ctx context.Context, notificationID uint, actorID uint) error
}

// NotificationFlowImpl implements the notification business flow
type NotificationFlowImpl struct {
	notificationRepo repository.NotificationRepository
}

// NewNotificationFlow creates a new notification flow instance
func NewNotificationFlow(notificationRepo repository.NotificationRepository) NotificationFlow {
	return &NotificationFlowImpl{notificationRepo: notificationRepo}
}

// List returns a page of the caller's notifications plus the unread total
func (nf *NotificationFlowImpl) List(ctx context.Context, request *dto.ListNotificationsRequest, actorID uint) (*dto.ListNotificationsResponse, error) {
	page, pageSize, err := NormalizePagination(request.Page, request.PageSize)
	if err != nil {
		return nil, NewBusinessError("NOTIFICATION_LIST_VALIDATION_FAILED", "List validation failed", err)
	}

	notifications, err := nf.notificationRepo.ListByRecipient(ctx, actorID, request.UnreadOnly, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("NOTIFICATION_LIST_FAILED", "Failed to list notifications", err)
	}

	filter := models.NotificationFilter{RecipientID: &actorID}
	if request.UnreadOnly {
		filter.IsRead = utils.ToPtr(false)
	}
	total, err := nf.notificationRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("NOTIFICATION_LIST_FAILED", "Failed to count notifications", err)
	}

	unreadCount, err := nf.notificationRepo.Count(ctx, models.NotificationFilter{
		RecipientID: &actorID,
		IsRead:      utils.ToPtr(false),
	})
	if err != nil {
		return nil, NewBusinessError("NOTIFICATION_LIST_FAILED", "Failed to count unread notifications", err)
	}

	out := make([]dto.NotificationDTO, 0, len(notifications))
	for _, notification := range notifications {
		out = append(out, ToNotificationDTO(*notification))
	}

	return &dto.ListNotificationsResponse{
		Notifications: out,
		UnreadCount:   unreadCount,
		Pagination: dto.PaginationDTO{
			Page:     page,
			PageSize: pageSize,
			Total:    total,
		},
	}, nil
}

// MarkRead flags one of the caller's notifications as read
func (nf *NotificationFlowImpl) MarkRead(ctx context.Context, notificationID uint, actorID uint) (*dto.MarkNotificationReadResponse, error) {
	exists, err := nf.notificationRepo.Exists(ctx, models.NotificationFilter{
		ID:          &notificationID,
		RecipientID: &actorID,
	})
	if err != nil {
		return nil, NewBusinessError("NOTIFICATION_MARK_READ_FAILED", "Failed to mark notification read", err)
	}
	if !exists {
		return nil, NewBusinessError("NOTIFICATION_MARK_READ_FAILED", "Failed to mark notification read", ErrNotificationNotFound)
	}

	if err := nf.notificationRepo.MarkRead(ctx, notificationID, actorID); err != nil {
		return nil, NewBusinessError("NOTIFICATION_MARK_READ_FAILED", "Failed to mark notification read", err)
	}

	return &dto.MarkNotificationReadResponse{ID: notificationID, IsRead: true}, nil
}

// Delete removes one of the caller's notifications
func (nf *NotificationFlowImpl) Delete(ctx context.Context, notificationID uint, actorID uint) error {
	exists, err := nf.notificationRepo.Exists(ctx, models.NotificationFilter{
		ID:          &notificationID,
		RecipientID: &actorID,
	})
	if err != nil {
		return NewBusinessError("NOTIFICATION_DELETE_FAILED", "Failed to delete notification", err)
	}
	if !exists {
		return NewBusinessError("NOTIFICATION_DELETE_FAILED", "Failed to delete notification", ErrNotificationNotFound)
	}

	if err := nf.notificationRepo.DeleteByRecipient(ctx, notificationID, actorID); err != nil {
		return NewBusinessError("NOTIFICATION_DELETE_FAILED", "Failed to delete notification", err)
	}

	return nil
}
