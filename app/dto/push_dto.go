package dto

import "time"

// RegisterPushTokenRequest reports a device's current push token.
// Sessions re-send it periodically so the refresh timestamp stays current.
type RegisterPushTokenRequest struct {
	Token       string  `json:"token" validate:"required,max=512"`
	DeviceClass string  `json:"device_class" validate:"required,oneof=web android ios" example:"web"`
	Platform    *string `json:"platform,omitempty" validate:"omitempty,max=64" example:"Chrome 126"`
}

// RegisterPushTokenResponse represents the registration outcome
type RegisterPushTokenResponse struct {
	Registered    bool      `json:"registered"`
	Rotated       bool      `json:"rotated"`
	DeviceClass   string    `json:"device_class"`
	LastRefreshed time.Time `json:"last_refreshed_at"`
}

// RevokePushTokenRequest removes one push token of the calling user
type RevokePushTokenRequest struct {
	Token string `json:"token" validate:"required,max=512"`
}

// RevokePushTokenResponse represents the revocation outcome
type RevokePushTokenResponse struct {
	Revoked bool `json:"revoked"`
}

// PushSubscriptionDTO represents one registered device token
type PushSubscriptionDTO struct {
	ID              uint      `json:"id"`
	DeviceClass     string    `json:"device_class"`
	Platform        *string   `json:"platform,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	LastRefreshedAt time.Time `json:"last_refreshed_at"`
}

// ListPushSubscriptionsResponse lists the calling user's registered devices
type ListPushSubscriptionsResponse struct {
	Subscriptions []PushSubscriptionDTO `json:"subscriptions"`
}
