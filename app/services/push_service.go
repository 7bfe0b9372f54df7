package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Push delivery error constants
var (
	ErrPushInvalidToken = errors.New("push token is invalid or no longer registered")
	ErrPushRateLimited  = errors.New("push provider rate limit exceeded")
	ErrPushUnavailable  = errors.New("push provider unavailable")
)

// PushMessage is one notification handed to the provider
type PushMessage struct {
	Token string            `json:"token"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

// PushService delivers push notifications to registered device tokens
type PushService interface {
	Send(ctx context.Context, message PushMessage) error
}

// PushProviderConfig holds push provider configuration
type PushProviderConfig struct {
	BaseURL   string
	ServerKey string
	Timeout   time.Duration
}

// HTTPPushService implements PushService against an FCM-compatible HTTP endpoint
type HTTPPushService struct {
	config     PushProviderConfig
	httpClient *http.Client
}

// NewHTTPPushService creates a push service backed by an HTTP provider
func NewHTTPPushService(config PushProviderConfig) PushService {
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}
	return &HTTPPushService{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

type pushSendRequest struct {
	To           string            `json:"to"`
	Notification pushNotification  `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
}

type pushNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type pushSendResponse struct {
	Success int `json:"success"`
	Failure int `json:"failure"`
	Results []struct {
		MessageID string `json:"message_id,omitempty"`
		Error     string `json:"error,omitempty"`
	} `json:"results"`
}

// Send delivers one message to one device token
func (s *HTTPPushService) Send(ctx context.Context, message PushMessage) error {
	if message.Token == "" {
		return ErrPushInvalidToken
	}

	payload := pushSendRequest{
		To: message.Token,
		Notification: pushNotification{
			Title: message.Title,
			Body:  message.Body,
		},
		Data: message.Data,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal push request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.BaseURL+"/fcm/send", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+s.config.ServerKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPushUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read push response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return ErrPushRateLimited
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: status %d", ErrPushUnavailable, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("push send failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var result pushSendResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return fmt.Errorf("failed to decode push response: %w", err)
	}

	if result.Failure > 0 && len(result.Results) > 0 {
		switch result.Results[0].Error {
		case "NotRegistered", "InvalidRegistration", "MismatchSenderId":
			return ErrPushInvalidToken
		default:
			return fmt.Errorf("push delivery failed: %s", result.Results[0].Error)
		}
	}

	return nil
}

// MockPushService implements PushService for development and testing
type MockPushService struct {
	SentMessages  []PushMessage
	FailTokens    map[string]error
	DefaultResult error
}

// NewMockPushService creates a mock push service
func NewMockPushService() *MockPushService {
	return &MockPushService{
		FailTokens: make(map[string]error),
	}
}

// Send records the message and returns the configured result
func (s *MockPushService) Send(_ context.Context, message PushMessage) error {
	if err, ok := s.FailTokens[message.Token]; ok {
		return err
	}
	s.SentMessages = append(s.SentMessages, message)
	return s.DefaultResult
}
