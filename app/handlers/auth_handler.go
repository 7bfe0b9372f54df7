package handlers

import (
	"log"

	"github.com/petrodesk/petrodesk/app/dto"
	"github.com/petrodesk/petrodesk/app/middleware"
	businessflow "github.com/petrodesk/petrodesk/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// AuthHandlerInterface defines the contract for authentication handlers
type AuthHandlerInterface interface {
	Signin(c fiber.Ctx) error
	RefreshToken(c fiber.Ctx) error
	Signout(c fiber.Ctx) error
	CheckAuth(c fiber.Ctx) error
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	loginFlow businessflow.LoginFlow
	validator *validator.Validate
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(loginFlow businessflow.LoginFlow) *AuthHandler {
	return &AuthHandler{
		loginFlow: loginFlow,
		validator: validator.New(),
	}
}

// Signin handles user login
// @Summary User Login
// @Description Authenticate with email and password
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.SigninRequest true "Login credentials"
// @Success 200 {object} dto.APIResponse{data=dto.SigninResponse} "Login successful"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 401 {object} dto.APIResponse "Invalid credentials"
// @Router /api/v1/auth/signin [post]
func (h *AuthHandler) Signin(c fiber.Ctx) error {
	var req dto.SigninRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationDetails(err))
	}

	result, err := h.loginFlow.Signin(createRequestContext(c, "/api/v1/auth/signin"), &req, clientMetadata(c))
	if err != nil {
		if businessflow.IsUserNotFound(err) || businessflow.IsIncorrectPassword(err) {
			// Same response for both so the endpoint does not leak which
			// emails exist
			return errorResponse(c, fiber.StatusUnauthorized, "Invalid credentials", "INVALID_CREDENTIALS", nil)
		}
		if businessflow.IsAccountInactive(err) {
			return errorResponse(c, fiber.StatusUnauthorized, "Account is inactive", "ACCOUNT_INACTIVE", nil)
		}

		log.Println("Signin failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Login failed", "LOGIN_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Login successful", result)
}

// RefreshToken rotates the session token pair
// @Summary Refresh Tokens
// @Description Exchange a refresh token for a fresh token pair
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} dto.APIResponse{data=dto.RefreshTokenResponse} "Tokens refreshed"
// @Failure 401 {object} dto.APIResponse "Invalid or expired refresh token"
// @Router /api/v1/auth/refresh [post]
func (h *AuthHandler) RefreshToken(c fiber.Ctx) error {
	var req dto.RefreshTokenRequest
	if err := c.Bind().JSON(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationDetails(err))
	}

	result, err := h.loginFlow.RefreshToken(createRequestContext(c, "/api/v1/auth/refresh"), &req, clientMetadata(c))
	if err != nil {
		code := businessflow.CodeOf(err)
		if code == businessflow.CodeUnauthorized || code == businessflow.CodeNotFound {
			return errorResponse(c, fiber.StatusUnauthorized, "Invalid or expired refresh token", "REFRESH_TOKEN_INVALID", nil)
		}

		log.Println("Token refresh failed", err)
		return errorResponse(c, fiber.StatusInternalServerError, "Token refresh failed", "REFRESH_FAILED", nil)
	}

	return successResponse(c, fiber.StatusOK, "Tokens refreshed", result)
}

// Signout terminates the current session
// @Summary User Logout
// @Description Expire the current session and revoke its tokens
// @Tags Authentication
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.SignoutResponse} "Signed out"
// @Failure 401 {object} dto.APIResponse "Authentication required"
// @Router /api/v1/auth/signout [post]
func (h *AuthHandler) Signout(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}
	accessToken, _ := middleware.GetAccessTokenFromContext(c)

	result, err := h.loginFlow.Signout(createRequestContext(c, "/api/v1/auth/signout"), accessToken, userID, clientMetadata(c))
	if err != nil {
		log.Println("Signout failed", err)
		return flowErrorResponse(c, err, "Signout failed")
	}

	return successResponse(c, fiber.StatusOK, "Signed out", result)
}

// CheckAuth reports whether the current token is still valid
// @Summary Check Authentication
// @Description Return the authenticated user's profile and permissions
// @Tags Authentication
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.CheckAuthResponse} "Authenticated"
// @Failure 401 {object} dto.APIResponse "Authentication required"
// @Router /api/v1/auth/check [get]
func (h *AuthHandler) CheckAuth(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return errorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	result, err := h.loginFlow.CheckAuth(createRequestContext(c, "/api/v1/auth/check"), userID)
	if err != nil {
		log.Println("Auth check failed", err)
		return flowErrorResponse(c, err, "Auth check failed")
	}

	return successResponse(c, fiber.StatusOK, "Authenticated", result)
}
