// Package testing provides test utilities and database setup for testing the pricing system
package testing

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	mathrand "math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/petrodesk/petrodesk/models"
	"github.com/petrodesk/petrodesk/utils"
	"golang.org/x/crypto/bcrypt"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateDefaultProfiles inserts the five standard profiles with their
// capability flags
func (tf *TestFixtures) CreateDefaultProfiles() error {
	profiles := []*models.Profile{
		{
			Name:                  models.ProfileVendedor,
			DisplayName:           "Vendedor",
			CanRegisterPrice:      utils.ToPtr(true),
			CanEditPrice:          utils.ToPtr(true),
			CanRegisterCompetitor: utils.ToPtr(true),
			CanViewMap:            utils.ToPtr(true),
		},
		{
			Name:                  models.ProfileSupervisor,
			DisplayName:           "Supervisor",
			CanApprove:            utils.ToPtr(true),
			CanRegisterPrice:      utils.ToPtr(true),
			CanRegisterCompetitor: utils.ToPtr(true),
			CanViewMap:            utils.ToPtr(true),
			CanViewReports:        utils.ToPtr(true),
		},
		{
			Name:              models.ProfileGerente,
			DisplayName:       "Gerente",
			CanApprove:        utils.ToPtr(true),
			CanViewMap:        utils.ToPtr(true),
			CanViewReports:    utils.ToPtr(true),
			MaxApprovalMargin: utils.ToPtr(0.15),
		},
		{
			Name:           models.ProfileDiretor,
			DisplayName:    "Diretor",
			CanApprove:     utils.ToPtr(true),
			CanViewMap:     utils.ToPtr(true),
			CanViewReports: utils.ToPtr(true),
		},
		{
			Name:                   models.ProfileAdmin,
			DisplayName:            "Administrador",
			CanApprove:             utils.ToPtr(true),
			CanRegisterPrice:       utils.ToPtr(true),
			CanEditPrice:           utils.ToPtr(true),
			CanRegisterCompetitor:  utils.ToPtr(true),
			CanManageApprovalOrder: utils.ToPtr(true),
			CanViewMap:             utils.ToPtr(true),
			CanViewReports:         utils.ToPtr(true),
		},
	}

	for _, profile := range profiles {
		if err := tf.DB.DB.Create(profile).Error; err != nil {
			return fmt.Errorf("failed to insert profile %s: %w", profile.Name, err)
		}
	}

	return nil
}

// CreateTestStation creates an active station with a unique CNPJ
func (tf *TestFixtures) CreateTestStation(name string) (*models.Station, error) {
	cnpj := fmt.Sprintf("%014d", mathrand.Int63n(90000000000000)+10000000000000)

	station := &models.Station{
		Name:     name,
		CNPJ:     &cnpj,
		City:     "Campinas",
		State:    "SP",
		IsActive: utils.ToPtr(true),
	}

	if err := tf.DB.DB.Create(station).Error; err != nil {
		return nil, fmt.Errorf("failed to create test station: %w", err)
	}

	return station, nil
}

// CreateTestClient creates an active client attached to a station
func (tf *TestFixtures) CreateTestClient(name string, stationID uint) (*models.Client, error) {
	client := &models.Client{
		Name:      name,
		StationID: &stationID,
		IsActive:  utils.ToPtr(true),
	}

	if err := tf.DB.DB.Create(client).Error; err != nil {
		return nil, fmt.Errorf("failed to create test client: %w", err)
	}

	return client, nil
}

// CreateTestPaymentMethod creates an active payment method
func (tf *TestFixtures) CreateTestPaymentMethod(name, displayName string) (*models.PaymentMethod, error) {
	method := &models.PaymentMethod{
		Name:        name,
		DisplayName: displayName,
		IsActive:    utils.ToPtr(true),
	}

	if err := tf.DB.DB.Create(method).Error; err != nil {
		return nil, fmt.Errorf("failed to create test payment method: %w", err)
	}

	return method, nil
}

// CreateTestUser creates an active user holding the named profile
func (tf *TestFixtures) CreateTestUser(profileName string, stationID *uint) (*models.User, error) {
	var profile models.Profile
	err := tf.DB.DB.Where("name = ?", profileName).Last(&profile).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find profile %s: %w", profileName, err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("TestPass123!"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	randomDigits := fmt.Sprintf("%09d", mathrand.Intn(900000000)+100000000)

	user := &models.User{
		Email:        fmt.Sprintf("user.%s.%s@petrodesk.com.br", profileName, randomDigits),
		FullName:     "Usuario de Teste",
		PasswordHash: string(hashedPassword),
		ProfileID:    profile.ID,
		StationID:    stationID,
		IsActive:     utils.ToPtr(true),
	}

	if err := tf.DB.DB.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create test user: %w", err)
	}

	return user, nil
}

// CreateApprovalChain installs an active chain with the given profiles in
// order, replacing any existing rows
func (tf *TestFixtures) CreateApprovalChain(profileNames ...string) error {
	if err := tf.DB.DB.Exec("TRUNCATE TABLE approval_profile_order RESTART IDENTITY").Error; err != nil {
		return fmt.Errorf("failed to clear approval chain: %w", err)
	}

	for i, name := range profileNames {
		row := &models.ApprovalProfileOrder{
			ProfileName:   name,
			OrderPosition: i + 1,
			IsActive:      utils.ToPtr(true),
		}
		if err := tf.DB.DB.Create(row).Error; err != nil {
			return fmt.Errorf("failed to create chain row %s: %w", name, err)
		}
	}

	return nil
}

// CreateTestSuggestion creates a pending suggestion created by the given user
func (tf *TestFixtures) CreateTestSuggestion(stationID, createdByID uint, level int) (*models.PriceSuggestion, error) {
	suggestion := &models.PriceSuggestion{
		StationID:    stationID,
		ProductCode:  models.ProductGasolinaComum,
		CostPrice:    5.10,
		FinalPrice:   5.89,
		Margin:       0.1549,
		Status:       models.SuggestionStatusPending,
		CurrentLevel: level,
		CreatedByID:  createdByID,
	}

	if err := tf.DB.DB.Create(suggestion).Error; err != nil {
		return nil, fmt.Errorf("failed to create test suggestion: %w", err)
	}

	return suggestion, nil
}

// GenerateSecureToken returns a URL-safe random token
func GenerateSecureToken(length int) (string, error) {
	b := make([]byte, length)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// CreateTestSession creates an active session for the given user
func (tf *TestFixtures) CreateTestSession(userID uint) (*models.UserSession, error) {
	sessionToken, err := GenerateSecureToken(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate secure session token: %w", err)
	}

	refreshToken, err := GenerateSecureToken(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate secure refresh token: %w", err)
	}

	ipAddress := "127.0.0.1"
	userAgent := "Test User Agent"

	session := &models.UserSession{
		CorrelationID: uuid.New(),
		UserID:        userID,
		SessionToken:  sessionToken,
		RefreshToken:  &refreshToken,
		ExpiresAt:     time.Now().Add(24 * time.Hour),
		IsActive:      utils.ToPtr(true),
		IPAddress:     &ipAddress,
		UserAgent:     &userAgent,
	}

	if err := tf.DB.DB.Create(session).Error; err != nil {
		return nil, fmt.Errorf("failed to create test session: %w", err)
	}

	return session, nil
}

// CreateTestSubscription creates a push subscription for the given user
func (tf *TestFixtures) CreateTestSubscription(userID uint, token string, deviceClass models.DeviceClass) (*models.PushSubscription, error) {
	subscription := &models.PushSubscription{
		UserID:      userID,
		Token:       token,
		DeviceClass: deviceClass,
	}

	if err := tf.DB.DB.Create(subscription).Error; err != nil {
		return nil, fmt.Errorf("failed to create test subscription: %w", err)
	}

	return subscription, nil
}
