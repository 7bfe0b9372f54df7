// Package businessflow contains the business logic for the application.
package businessflow

import (
	"sort"
	"time"

	"github.com/petrodesk/petrodesk/app/dto"
	"github.com/petrodesk/petrodesk/app/services"
	"github.com/petrodesk/petrodesk/models"
	"github.com/petrodesk/petrodesk/utils"
)

const RequestIDKey = "X-Request-ID"

// ClientMetadata holds all client-related information for audit logging and session tracking
type ClientMetadata struct {
	IPAddress  string            `json:"ip_address"`
	UserAgent  string            `json:"user_agent"`
	DeviceInfo map[string]string `json:"device_info,omitempty"`
	RequestID  string            `json:"request_id,omitempty"`
	SessionID  string            `json:"session_id,omitempty"`
	Additional map[string]string `json:"additional,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		DeviceInfo: make(map[string]string),
		Additional: make(map[string]string),
	}
}

// AddDeviceInfo adds device information to the metadata
func (cm *ClientMetadata) AddDeviceInfo(key, value string) {
	if cm.DeviceInfo == nil {
		cm.DeviceInfo = make(map[string]string)
	}
	cm.DeviceInfo[key] = value
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// SetSessionID sets the session ID
func (cm *ClientMetadata) SetSessionID(sessionID string) {
	cm.SessionID = sessionID
}

// ToAuthUserDTO converts a user model to AuthUserDTO for authentication responses
func ToAuthUserDTO(user models.User, permissions *services.PermissionSet) dto.AuthUserDTO {
	out := dto.AuthUserDTO{
		ID:        user.ID,
		UUID:      user.UUID.String(),
		Email:     user.Email,
		FullName:  user.FullName,
		StationID: user.StationID,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}

	if user.Profile != nil {
		out.Profile = user.Profile.Name
		out.ProfileName = user.Profile.DisplayName
	}

	if permissions != nil {
		caps := make([]string, 0, len(permissions.Capabilities))
		for _, c := range permissions.Capabilities {
			caps = append(caps, string(c))
		}
		sort.Strings(caps)
		out.Permissions = caps
	}

	return out
}

// ToSessionDTO converts a session model to its token-pair DTO
func ToSessionDTO(session models.UserSession) dto.SessionDTO {
	refreshToken := ""
	if session.RefreshToken != nil {
		refreshToken = *session.RefreshToken
	}

	return dto.SessionDTO{
		AccessToken:  session.SessionToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(time.Until(session.ExpiresAt).Seconds()),
		CreatedAt:    session.CreatedAt.Format(time.RFC3339),
	}
}

// ToSuggestionDTO converts a suggestion model with its decision history
func ToSuggestionDTO(s models.PriceSuggestion) dto.SuggestionDTO {
	out := dto.SuggestionDTO{
		UUID:              s.UUID.String(),
		StationID:         s.StationID,
		ClientID:          s.ClientID,
		ProductCode:       s.ProductCode.String(),
		CostPrice:         s.CostPrice,
		FinalPrice:        s.FinalPrice,
		Margin:            s.Margin,
		Currency:          utils.BRLCurrency,
		PaymentMethodID:   s.PaymentMethodID,
		Observations:      s.Observations,
		Attachments:       s.Attachments,
		BatchName:         s.BatchName,
		Status:            s.Status.String(),
		StatusDisplayName: s.GetStatusDisplayName(),
		CurrentLevel:      s.CurrentLevel,
		CreatedByID:       s.CreatedByID,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}

	if s.Station != nil {
		out.StationName = s.Station.Name
	}
	if s.CreatedBy != nil {
		out.CreatedByName = s.CreatedBy.FullName
	}
	if s.BatchID != nil {
		out.BatchID = utils.ToPtr(s.BatchID.String())
	}

	for _, approval := range s.Approvals {
		out.Approvals = append(out.Approvals, ToApprovalDTO(approval))
	}

	return out
}

// ToApprovalDTO converts one decision record
func ToApprovalDTO(a models.PriceApproval) dto.ApprovalDTO {
	out := dto.ApprovalDTO{
		Level:       a.Level,
		ApproverID:  a.ApproverID,
		Decision:    a.Decision.String(),
		Observation: a.Observation,
		DecidedAt:   utils.ToPtr(a.CreatedAt),
	}

	if a.Approver != nil {
		out.ApproverName = a.Approver.FullName
		if a.Approver.Profile != nil {
			out.Profile = a.Approver.Profile.Name
		}
	}

	return out
}

// ToNotificationDTO converts a notification model
func ToNotificationDTO(n models.Notification) dto.NotificationDTO {
	return dto.NotificationDTO{
		ID:           n.ID,
		UUID:         n.UUID.String(),
		Type:         n.Type.String(),
		Title:        n.Title,
		Message:      n.Message,
		IsRead:       n.IsRead,
		SuggestionID: n.SuggestionID,
		Payload:      n.Payload,
		CreatedAt:    n.CreatedAt,
	}
}

// ToCompetitorPriceDTO converts a competitor observation model
func ToCompetitorPriceDTO(c models.CompetitorPrice) dto.CompetitorPriceDTO {
	out := dto.CompetitorPriceDTO{
		ID:             c.ID,
		UUID:           c.UUID.String(),
		StationID:      c.StationID,
		CompetitorName: c.CompetitorName,
		ProductCode:    c.ProductCode.String(),
		Price:          c.Price,
		Currency:       utils.BRLCurrency,
		PhotoURL:       c.PhotoURL,
		Latitude:       c.Latitude,
		Longitude:      c.Longitude,
		ResearcherID:   c.ResearcherID,
		ObservedAt:     c.ObservedAt,
	}

	if c.Researcher != nil {
		out.ResearcherName = c.Researcher.FullName
	}

	return out
}

// ToApprovalOrderRowDTO converts one approval chain row
func ToApprovalOrderRowDTO(row models.ApprovalProfileOrder) dto.ApprovalOrderRowDTO {
	return dto.ApprovalOrderRowDTO{
		ID:            row.ID,
		ProfileName:   row.ProfileName,
		OrderPosition: row.OrderPosition,
		IsActive:      row.IsActive,
	}
}

// NormalizePagination applies defaults and bounds to page parameters
func NormalizePagination(page, pageSize int) (int, int, error) {
	if page == 0 {
		page = 1
	}
	if pageSize == 0 {
		pageSize = 20
	}
	if page < 1 {
		return 0, 0, ErrInvalidPage
	}
	if pageSize < 1 || pageSize > 100 {
		return 0, 0, ErrInvalidPageSize
	}
	return page, pageSize, nil
}
