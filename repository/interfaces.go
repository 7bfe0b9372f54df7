// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/petrodesk/petrodesk/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// ProfileRepository defines operations for role profiles
type ProfileRepository interface {
	Repository[models.Profile, models.ProfileFilter]
	ByName(ctx context.Context, name string) (*models.Profile, error)
}

// UserRepository defines operations for users
type UserRepository interface {
	Repository[models.User, models.UserFilter]
	ByEmail(ctx context.Context, email string) (*models.User, error)
	ByUUID(ctx context.Context, uuid string) (*models.User, error)
	ListActiveByProfileName(ctx context.Context, profileName string) ([]*models.User, error)
	UpdateLastLogin(ctx context.Context, userID uint, at time.Time) error
}

// ApprovalOrderRepository defines operations for the approval chain registry
type ApprovalOrderRepository interface {
	Repository[models.ApprovalProfileOrder, models.ApprovalProfileOrderFilter]
	ListOrdered(ctx context.Context) ([]*models.ApprovalProfileOrder, error)
	UpdatePositions(ctx context.Context, positions map[uint]int) error
	SetActive(ctx context.Context, id uint, active bool) error
	MaxPosition(ctx context.Context) (int, error)
}

// PriceSuggestionRepository defines operations for price suggestions
type PriceSuggestionRepository interface {
	Repository[models.PriceSuggestion, models.PriceSuggestionFilter]
	ByUUID(ctx context.Context, uuid string) (*models.PriceSuggestion, error)
	ByBatchID(ctx context.Context, batchID uuid.UUID) ([]*models.PriceSuggestion, error)
	Update(ctx context.Context, suggestion models.PriceSuggestion) error
	UpdateStatusLevel(ctx context.Context, id uint, status models.SuggestionStatus, level int) error
}

// PriceApprovalRepository defines operations for decision records
type PriceApprovalRepository interface {
	Repository[models.PriceApproval, models.PriceApprovalFilter]
	BySuggestionAndLevel(ctx context.Context, suggestionID uint, level int) (*models.PriceApproval, error)
	ListBySuggestion(ctx context.Context, suggestionID uint) ([]*models.PriceApproval, error)
}

// NotificationRepository defines operations for notifications
type NotificationRepository interface {
	Repository[models.Notification, models.NotificationFilter]
	ListByRecipient(ctx context.Context, recipientID uint, unreadOnly bool, limit, offset int) ([]*models.Notification, error)
	MarkRead(ctx context.Context, id, recipientID uint) error
	DeleteByRecipient(ctx context.Context, id, recipientID uint) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// PushSubscriptionRepository defines operations for push subscriptions
type PushSubscriptionRepository interface {
	Repository[models.PushSubscription, models.PushSubscriptionFilter]
	ByUserAndToken(ctx context.Context, userID uint, token string) (*models.PushSubscription, error)
	ListByUser(ctx context.Context, userID uint) ([]*models.PushSubscription, error)
	ListByUsers(ctx context.Context, userIDs []uint) ([]*models.PushSubscription, error)
	TouchRefreshed(ctx context.Context, id uint, at time.Time) error
	DeleteByUserAndClass(ctx context.Context, userID uint, class models.DeviceClass) error
	DeleteByUserAndToken(ctx context.Context, userID uint, token string) error
	DeleteByToken(ctx context.Context, token string) error
	DeleteRefreshedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// StationRepository defines operations for stations
type StationRepository interface {
	Repository[models.Station, models.StationFilter]
	ListActive(ctx context.Context) ([]*models.Station, error)
}

// ClientRepository defines operations for clients
type ClientRepository interface {
	Repository[models.Client, models.ClientFilter]
	ListActive(ctx context.Context) ([]*models.Client, error)
}

// PaymentMethodRepository defines operations for payment methods
type PaymentMethodRepository interface {
	Repository[models.PaymentMethod, models.PaymentMethodFilter]
	ListActive(ctx context.Context) ([]*models.PaymentMethod, error)
}

// CompetitorPriceRepository defines operations for competitor price research
type CompetitorPriceRepository interface {
	Repository[models.CompetitorPrice, models.CompetitorPriceFilter]
	ListByStation(ctx context.Context, stationID uint, limit, offset int) ([]*models.CompetitorPrice, error)
}

// UserSessionRepository defines operations for user sessions
type UserSessionRepository interface {
	Repository[models.UserSession, models.UserSessionFilter]
	BySessionToken(ctx context.Context, token string) (*models.UserSession, error)
	ByRefreshToken(ctx context.Context, token string) (*models.UserSession, error)
	ExpireSession(ctx context.Context, sessionID uint) error
	ExpireAllUserSessions(ctx context.Context, userID uint) error
	CleanupExpiredSessions(ctx context.Context) error
}

// AuditLogRepository defines operations for audit logs
type AuditLogRepository interface {
	Repository[models.AuditLog, models.AuditLogFilter]
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.AuditLog, error)
	ListFailedActions(ctx context.Context, limit, offset int) ([]*models.AuditLog, error)
}
