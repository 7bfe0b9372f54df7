// Package dto contains Data Transfer Objects for API request and response structures
package dto

import "time"

// SigninRequest represents the request payload for user signin
type SigninRequest struct {
	Email    string `json:"email" validate:"required,email,max=255" example:"vendedor@posto.com.br"`
	Password string `json:"password" validate:"required,min=8,max=100" example:"SecurePass123!"`
}

// AuthUserDTO represents user information returned in auth responses
type AuthUserDTO struct {
	ID          uint     `json:"id" example:"123"`
	UUID        string   `json:"uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	Email       string   `json:"email" example:"vendedor@posto.com.br"`
	FullName    string   `json:"full_name" example:"João da Silva"`
	Profile     string   `json:"profile" example:"vendedor"`
	ProfileName string   `json:"profile_display_name" example:"Vendedor"`
	StationID   *uint    `json:"station_id,omitempty" example:"1"`
	IsActive    *bool    `json:"is_active" example:"true"`
	Permissions []string `json:"permissions"`
	CreatedAt   string   `json:"created_at" example:"2024-01-15T10:30:00Z"`
}

// SessionDTO represents the token pair issued on signin
type SessionDTO struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type" example:"Bearer"`
	ExpiresIn    int    `json:"expires_in" example:"86400"`
	CreatedAt    string `json:"created_at" example:"2024-01-15T10:30:00Z"`
}

// SigninResponse represents the successful signin response
type SigninResponse struct {
	User    AuthUserDTO `json:"user"`
	Session SessionDTO  `json:"session"`
}

// RefreshTokenRequest represents the request to exchange a refresh token
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

// RefreshTokenResponse represents the response with a fresh token pair
type RefreshTokenResponse struct {
	User    AuthUserDTO `json:"user"`
	Session SessionDTO  `json:"session"`
}

// SignoutResponse represents the response after session termination
type SignoutResponse struct {
	SignedOutAt time.Time `json:"signed_out_at"`
}

// CheckAuthResponse represents the current session introspection response
type CheckAuthResponse struct {
	Authenticated bool        `json:"authenticated"`
	User          AuthUserDTO `json:"user"`
}
