// Package businessflow contains the core business logic and use cases for authentication workflows
package businessflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/petrodesk/petrodesk/app/dto"
	"github.com/petrodesk/petrodesk/app/services"
	"github.com/petrodesk/petrodesk/models"
	"github.com/petrodesk/petrodesk/repository"
	"github.com/petrodesk/petrodesk/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// LoginFlow handles user authentication and session lifecycle operations
type LoginFlow interface {
	Signin(ctx context.Context, request *dto.SigninRequest, metadata *ClientMetadata) (*dto.SigninResponse, error)
	Signout(ctx context.Context, accessToken string, userID uint, metadata *ClientMetadata) (*dto.SignoutResponse, error)
	RefreshToken(ctx context.Context, request *dto.RefreshTokenRequest, metadata *ClientMetadata) (*dto.RefreshTokenResponse, error)
	CheckAuth(ctx context.Context, userID uint) (*dto.CheckAuthResponse, error)
}

// LoginFlowImpl implements the login business flow
type LoginFlowImpl struct {
	userRepo          repository.UserRepository
	sessionRepo       repository.UserSessionRepository
	auditRepo         repository.AuditLogRepository
	tokenService      services.TokenService
	permissionService services.PermissionService
	db                *gorm.DB
}

// NewLoginFlow creates a new login flow instance
func NewLoginFlow(
	userRepo repository.UserRepository,
	sessionRepo repository.UserSessionRepository,
	auditRepo repository.AuditLogRepository,
	tokenService services.TokenService,
	permissionService services.PermissionService,
	db *gorm.DB,
) LoginFlow {
	return &LoginFlowImpl{
		userRepo:          userRepo,
		sessionRepo:       sessionRepo,
		auditRepo:         auditRepo,
		tokenService:      tokenService,
		permissionService: permissionService,
		db:                db,
	}
}

// Signin authenticates a user with email and password
func (lf *LoginFlowImpl) Signin(ctx context.Context, request *dto.SigninRequest, metadata *ClientMetadata) (*dto.SigninResponse, error) {
	if err := lf.validateSigninRequest(request); err != nil {
		return nil, NewBusinessError("SIGNIN_VALIDATION_FAILED", "Signin validation failed", err)
	}

	var user *models.User

	resp, err := lf.withSigninTransaction(ctx, func(ctx context.Context) (*dto.SigninResponse, error) {
		var err error
		user, err = lf.userRepo.ByEmail(ctx, strings.TrimSpace(strings.ToLower(request.Email)))
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, ErrUserNotFound
		}

		if !utils.IsTrue(user.IsActive) {
			return nil, ErrAccountInactive
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(request.Password)); err != nil {
			return nil, ErrIncorrectPassword
		}

		session, err := lf.createSession(ctx, user.ID, metadata)
		if err != nil {
			return nil, err
		}

		if err := lf.userRepo.UpdateLastLogin(ctx, user.ID, utils.UTCNow()); err != nil {
			return nil, err
		}

		permissions, err := lf.permissionService.Resolve(ctx, user.ID)
		if err != nil {
			return nil, err
		}

		return &dto.SigninResponse{
			User:    ToAuthUserDTO(*user, permissions),
			Session: ToSessionDTO(*session),
		}, nil
	})

	if err != nil {
		errMsg := fmt.Sprintf("Signin failed: %s", err.Error())
		_ = lf.logAuthAttempt(ctx, user, models.AuditActionLoginFailed, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("SIGNIN_FAILED", "Signin failed", err)
	}

	msg := fmt.Sprintf("User signed in successfully: %d", resp.User.ID)
	_ = lf.logAuthAttempt(ctx, user, models.AuditActionLoginSuccess, msg, true, nil, metadata)

	return resp, nil
}

// Signout terminates the calling session and revokes its access token
func (lf *LoginFlowImpl) Signout(ctx context.Context, accessToken string, userID uint, metadata *ClientMetadata) (*dto.SignoutResponse, error) {
	session, err := lf.sessionRepo.BySessionToken(ctx, accessToken)
	if err != nil {
		return nil, NewBusinessError("SIGNOUT_FAILED", "Signout failed", err)
	}
	if session == nil || session.UserID != userID {
		return nil, NewBusinessError("SIGNOUT_FAILED", "Signout failed", ErrSessionNotFound)
	}

	if err := lf.sessionRepo.ExpireSession(ctx, session.ID); err != nil {
		return nil, NewBusinessError("SIGNOUT_FAILED", "Signout failed", err)
	}

	_ = lf.tokenService.RevokeToken(accessToken)
	if session.RefreshToken != nil {
		_ = lf.tokenService.RevokeToken(*session.RefreshToken)
	}

	msg := fmt.Sprintf("User signed out: %d", userID)
	_ = lf.logAuthAttempt(ctx, session.User, models.AuditActionLogout, msg, true, nil, metadata)

	return &dto.SignoutResponse{SignedOutAt: utils.UTCNow()}, nil
}

// RefreshToken exchanges a valid refresh token for a fresh token pair
func (lf *LoginFlowImpl) RefreshToken(ctx context.Context, request *dto.RefreshTokenRequest, metadata *ClientMetadata) (*dto.RefreshTokenResponse, error) {
	if request.RefreshToken == "" {
		return nil, NewBusinessError("REFRESH_VALIDATION_FAILED", "Refresh validation failed", ErrRefreshTokenInvalid)
	}

	claims, err := lf.tokenService.ValidateToken(request.RefreshToken)
	if err != nil {
		return nil, NewBusinessError("REFRESH_FAILED", "Refresh failed", ErrRefreshTokenInvalid)
	}
	if claims.TokenType != "refresh" {
		return nil, NewBusinessError("REFRESH_FAILED", "Refresh failed", ErrRefreshTokenInvalid)
	}

	resp, err := lf.withRefreshTransaction(ctx, func(ctx context.Context) (*dto.RefreshTokenResponse, error) {
		session, err := lf.sessionRepo.ByRefreshToken(ctx, request.RefreshToken)
		if err != nil {
			return nil, err
		}
		if session == nil || !utils.IsTrue(session.IsActive) {
			return nil, ErrSessionNotFound
		}
		if session.IsExpired() {
			return nil, ErrSessionExpired
		}

		user := session.User
		if user == nil {
			user, err = lf.userRepo.ByID(ctx, session.UserID)
			if err != nil {
				return nil, err
			}
		}
		if user == nil {
			return nil, ErrUserNotFound
		}
		if !utils.IsTrue(user.IsActive) {
			return nil, ErrAccountInactive
		}

		// Rotate: retire the old session, issue a new pair
		if err := lf.sessionRepo.ExpireSession(ctx, session.ID); err != nil {
			return nil, err
		}
		_ = lf.tokenService.RevokeToken(request.RefreshToken)

		newSession, err := lf.createSession(ctx, user.ID, metadata)
		if err != nil {
			return nil, err
		}

		permissions, err := lf.permissionService.Resolve(ctx, user.ID)
		if err != nil {
			return nil, err
		}

		return &dto.RefreshTokenResponse{
			User:    ToAuthUserDTO(*user, permissions),
			Session: ToSessionDTO(*newSession),
		}, nil
	})

	if err != nil {
		return nil, NewBusinessError("REFRESH_FAILED", "Refresh failed", err)
	}

	return resp, nil
}

// CheckAuth returns the authenticated user's profile and capabilities
func (lf *LoginFlowImpl) CheckAuth(ctx context.Context, userID uint) (*dto.CheckAuthResponse, error) {
	user, err := lf.userRepo.ByID(ctx, userID)
	if err != nil {
		return nil, NewBusinessError("CHECK_AUTH_FAILED", "Auth check failed", err)
	}
	if user == nil {
		return nil, NewBusinessError("CHECK_AUTH_FAILED", "Auth check failed", ErrUserNotFound)
	}

	permissions, err := lf.permissionService.Resolve(ctx, userID)
	if err != nil {
		return nil, NewBusinessError("CHECK_AUTH_FAILED", "Auth check failed", err)
	}

	return &dto.CheckAuthResponse{
		Authenticated: true,
		User:          ToAuthUserDTO(*user, permissions),
	}, nil
}

// Private helper methods

func (lf *LoginFlowImpl) createSession(ctx context.Context, userID uint, metadata *ClientMetadata) (*models.UserSession, error) {
	accessToken, refreshToken, err := lf.tokenService.GenerateTokens(userID)
	if err != nil {
		return nil, err
	}

	expiresAt := utils.UTCNowAdd(utils.SessionTimeout)

	ipAddress := "127.0.0.1"
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	session := &models.UserSession{
		UserID:        userID,
		CorrelationID: uuid.New(),
		SessionToken:  accessToken,
		RefreshToken:  &refreshToken,
		ExpiresAt:     expiresAt,
		IsActive:      utils.ToPtr(true),
		IPAddress:     &ipAddress,
		UserAgent:     &userAgent,
	}

	if err := lf.sessionRepo.Save(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}

func (lf *LoginFlowImpl) logAuthAttempt(ctx context.Context, user *models.User, action string, description string, success bool, errMsg *string, metadata *ClientMetadata) error {
	var userID *uint
	if user != nil {
		userID = &user.ID
	}

	ipAddress := "127.0.0.1"
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	audit := &models.AuditLog{
		UserID:       userID,
		Action:       action,
		Description:  &description,
		Success:      utils.ToPtr(success),
		IPAddress:    &ipAddress,
		UserAgent:    &userAgent,
		ErrorMessage: errMsg,
	}

	requestID := ctx.Value(RequestIDKey)
	if requestID != nil {
		requestIDStr, ok := requestID.(string)
		if ok {
			audit.RequestID = &requestIDStr
		}
	}

	return lf.auditRepo.Save(ctx, audit)
}

func (lf *LoginFlowImpl) withSigninTransaction(ctx context.Context, fn func(context.Context) (*dto.SigninResponse, error)) (*dto.SigninResponse, error) {
	var result *dto.SigninResponse
	var fnErr error

	err := repository.WithTransaction(ctx, lf.db, func(ctx context.Context) error {
		result, fnErr = fn(ctx)
		return fnErr
	})

	if err != nil {
		return nil, err
	}
	return result, fnErr
}

func (lf *LoginFlowImpl) withRefreshTransaction(ctx context.Context, fn func(context.Context) (*dto.RefreshTokenResponse, error)) (*dto.RefreshTokenResponse, error) {
	var result *dto.RefreshTokenResponse
	var fnErr error

	err := repository.WithTransaction(ctx, lf.db, func(ctx context.Context) error {
		result, fnErr = fn(ctx)
		return fnErr
	})

	if err != nil {
		return nil, err
	}
	return result, fnErr
}

func (lf *LoginFlowImpl) validateSigninRequest(request *dto.SigninRequest) error {
	if request.Email == "" {
		return ErrUserNotFound
	}
	if request.Password == "" {
		return ErrIncorrectPassword
	}
	return nil
}
