package businessflow_test

import (
	"time"

	"github.com/petrodesk/petrodesk/app/services"
	businessflow "github.com/petrodesk/petrodesk/business_flow"
	"github.com/petrodesk/petrodesk/config"
	"github.com/petrodesk/petrodesk/repository"
	testingutil "github.com/petrodesk/petrodesk/testing"
)

// testEnv wires the full flow stack against a disposable database. The
// Redis client is nil, so permission and chain caches fall through to the
// database on every call.
type testEnv struct {
	fixtures *testingutil.TestFixtures

	suggestionRepo   repository.PriceSuggestionRepository
	approvalRepo     repository.PriceApprovalRepository
	orderRepo        repository.ApprovalOrderRepository
	notificationRepo repository.NotificationRepository
	subscriptionRepo repository.PushSubscriptionRepository
	sessionRepo      repository.UserSessionRepository

	tokenService      services.TokenService
	permissionService services.PermissionService

	orderFlow        businessflow.ApprovalOrderFlow
	loginFlow        businessflow.LoginFlow
	suggestionFlow   businessflow.SuggestionFlow
	approvalFlow     businessflow.ApprovalFlow
	pushFlow         businessflow.PushFlow
	notificationFlow businessflow.NotificationFlow
	competitorFlow   businessflow.CompetitorPriceFlow
	dataFlow         businessflow.DataFlow
	reportFlow       businessflow.ReportFlow
}

func newTestEnv(testDB *testingutil.TestDB) (*testEnv, error) {
	profileRepo := repository.NewProfileRepository(testDB.DB)
	userRepo := repository.NewUserRepository(testDB.DB)
	sessionRepo := repository.NewUserSessionRepository(testDB.DB)
	auditRepo := repository.NewAuditLogRepository(testDB.DB)
	orderRepo := repository.NewApprovalOrderRepository(testDB.DB)
	suggestionRepo := repository.NewPriceSuggestionRepository(testDB.DB)
	approvalRepo := repository.NewPriceApprovalRepository(testDB.DB)
	notificationRepo := repository.NewNotificationRepository(testDB.DB)
	subscriptionRepo := repository.NewPushSubscriptionRepository(testDB.DB)
	stationRepo := repository.NewStationRepository(testDB.DB)
	clientRepo := repository.NewClientRepository(testDB.DB)
	paymentMethodRepo := repository.NewPaymentMethodRepository(testDB.DB)
	competitorRepo := repository.NewCompetitorPriceRepository(testDB.DB)

	tokenService, err := services.NewTokenService(
		1*time.Hour, 24*time.Hour,
		"petrodesk-test", "petrodesk-test-api",
		false, "", "", "test-secret-key-for-tests-only-0123456789",
	)
	if err != nil {
		return nil, err
	}

	permissionService := services.NewPermissionService(userRepo, nil, time.Minute)
	dispatcher := services.NewNotificationDispatcher(notificationRepo, subscriptionRepo, userRepo, services.NewMockPushService())

	cacheConfig := &config.CacheConfig{}

	orderFlow := businessflow.NewApprovalOrderFlow(
		orderRepo, profileRepo, auditRepo, permissionService, nil, cacheConfig, testDB.DB,
	)

	env := &testEnv{
		fixtures:          testingutil.NewTestFixtures(testDB),
		suggestionRepo:    suggestionRepo,
		approvalRepo:      approvalRepo,
		orderRepo:         orderRepo,
		notificationRepo:  notificationRepo,
		subscriptionRepo:  subscriptionRepo,
		sessionRepo:       sessionRepo,
		tokenService:      tokenService,
		permissionService: permissionService,
		orderFlow:         orderFlow,
		loginFlow: businessflow.NewLoginFlow(
			userRepo, sessionRepo, auditRepo, tokenService, permissionService, testDB.DB,
		),
		suggestionFlow: businessflow.NewSuggestionFlow(
			suggestionRepo, approvalRepo, stationRepo, clientRepo, paymentMethodRepo,
			auditRepo, permissionService, orderFlow, dispatcher, testDB.DB,
		),
		approvalFlow: businessflow.NewApprovalFlow(
			suggestionRepo, approvalRepo, auditRepo, permissionService, orderFlow, dispatcher, testDB.DB,
		),
		pushFlow:         businessflow.NewPushFlow(subscriptionRepo, auditRepo, testDB.DB),
		notificationFlow: businessflow.NewNotificationFlow(notificationRepo),
		competitorFlow:   businessflow.NewCompetitorPriceFlow(competitorRepo, stationRepo, permissionService),
		dataFlow:         businessflow.NewDataFlow(stationRepo, clientRepo, paymentMethodRepo),
		reportFlow:       businessflow.NewReportFlow(suggestionRepo, approvalRepo, permissionService),
	}

	return env, nil
}

func testMetadata() *businessflow.ClientMetadata {
	return businessflow.NewClientMetadata("127.0.0.1", "Test User Agent")
}
