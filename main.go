// Package main provides the main entry point for the PetroDesk pricing backend
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/petrodesk/petrodesk/app/handlers"
	"github.com/petrodesk/petrodesk/app/middleware"
	"github.com/petrodesk/petrodesk/app/router"
	"github.com/petrodesk/petrodesk/app/scheduler"
	"github.com/petrodesk/petrodesk/app/services"
	businessflow "github.com/petrodesk/petrodesk/business_flow"
	"github.com/petrodesk/petrodesk/config"
	"github.com/petrodesk/petrodesk/repository"
	"github.com/petrodesk/petrodesk/utils"
	"github.com/redis/go-redis/v9"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Application represents the main application structure
type Application struct {
	router    *router.FiberRouter
	config    *config.ProductionConfig
	server    *fiber.App
	stopFuncs []func()
}

func main() {
	log.Println("Starting PetroDesk application...")

	// Load production configuration
	cfg, err := config.LoadProductionConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	setupLogging(cfg.Logging)

	// Initialize application
	app, err := initializeApplication(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	// Setup routes
	app.router.SetupRoutes()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		log.Printf("Server starting on %s", address)

		if err := app.server.Listen(address); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Println("Shutting down gracefully...")

	// Stop background workers
	for _, fn := range app.stopFuncs {
		fn()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.server.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// setupLogging points the standard logger at a rotating file when configured
func setupLogging(cfg config.LoggingConfig) {
	if cfg.Output == "stdout" || cfg.FilePath == "" {
		return
	}

	rotator := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}

	switch cfg.Output {
	case "file":
		log.SetOutput(rotator)
	default:
		log.SetOutput(io.MultiWriter(os.Stdout, rotator))
	}
}

// initializeDatabase initializes the database connection with connection pooling
func initializeDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB for connection pooling configuration
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// Test the connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Printf("Database connection established with %d max open connections, %d max idle connections",
		cfg.MaxOpenConns, cfg.MaxIdleConns)

	return db, nil
}

// initializeCache initializes the Cache client and verifies connectivity
func initializeCache(cfg config.CacheConfig) (*redis.Client, error) {
	if !cfg.Enabled || cfg.Provider != "redis" {
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	// Override DB if provided in config
	opt.DB = cfg.RedisDB

	rc := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Printf("Redis connection established to %s (db=%d)", cfg.RedisURL, cfg.RedisDB)
	return rc, nil
}

// startCacheHealthMonitor starts a background goroutine that periodically pings Redis
// to detect connectivity issues. The returned cancel function stops the monitor.
func startCacheHealthMonitor(parent context.Context, client *redis.Client, interval time.Duration) func() {
	monitorCtx, cancel := context.WithCancel(parent)
	if interval <= 0 {
		interval = 30 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-monitorCtx.Done():
				return
			case <-ticker.C:
				ctx, c := context.WithTimeout(context.Background(), 3*time.Second)
				if err := client.Ping(ctx).Err(); err != nil {
					log.Printf("Redis healthcheck failed: %v", err)
				}
				c()
			}
		}
	}()
	return cancel
}

// initializePushService initializes the push delivery service
func initializePushService(cfg config.PushConfig) services.PushService {
	if !cfg.Enabled {
		return services.NewMockPushService()
	}

	return services.NewHTTPPushService(services.PushProviderConfig{
		BaseURL:   cfg.BaseURL,
		ServerKey: cfg.ServerKey,
		Timeout:   cfg.Timeout,
	})
}

// initializeApplication initializes the main application components
func initializeApplication(cfg *config.ProductionConfig) (*Application, error) {
	var stopFuncs []func()

	// Initialize database
	db, err := initializeDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}

	rc, err := initializeCache(cfg.Cache)
	if err != nil {
		return nil, err
	}

	if rc != nil {
		cancel := startCacheHealthMonitor(context.Background(), rc, cfg.Cache.CleanupInterval)
		stopFuncs = append(stopFuncs, cancel)
	}

	// Initialize repositories
	profileRepo := repository.NewProfileRepository(db)
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewUserSessionRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)
	orderRepo := repository.NewApprovalOrderRepository(db)
	suggestionRepo := repository.NewPriceSuggestionRepository(db)
	approvalRepo := repository.NewPriceApprovalRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	subscriptionRepo := repository.NewPushSubscriptionRepository(db)
	stationRepo := repository.NewStationRepository(db)
	clientRepo := repository.NewClientRepository(db)
	paymentMethodRepo := repository.NewPaymentMethodRepository(db)
	competitorRepo := repository.NewCompetitorPriceRepository(db)

	// Initialize services
	pushService := initializePushService(cfg.Push)
	permissionService := services.NewPermissionService(userRepo, rc, utils.PermissionCacheTTL)
	dispatcher := services.NewNotificationDispatcher(notificationRepo, subscriptionRepo, userRepo, pushService)

	// Initialize token service
	tokenService, err := services.NewTokenService(
		cfg.JWT.AccessTokenTTL,
		cfg.JWT.RefreshTokenTTL,
		cfg.JWT.Issuer,
		cfg.JWT.Audience,
		cfg.JWT.UseRSAKeys,
		cfg.JWT.PrivateKey,
		cfg.JWT.PublicKey,
		cfg.JWT.SecretKey,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}

	log.Printf("Token service initialized with issuer: %s, audience: %s", cfg.JWT.Issuer, cfg.JWT.Audience)

	// Initialize flows
	orderFlow := businessflow.NewApprovalOrderFlow(
		orderRepo,
		profileRepo,
		auditRepo,
		permissionService,
		rc,
		&cfg.Cache,
		db,
	)

	loginFlow := businessflow.NewLoginFlow(
		userRepo,
		sessionRepo,
		auditRepo,
		tokenService,
		permissionService,
		db,
	)

	suggestionFlow := businessflow.NewSuggestionFlow(
		suggestionRepo,
		approvalRepo,
		stationRepo,
		clientRepo,
		paymentMethodRepo,
		auditRepo,
		permissionService,
		orderFlow,
		dispatcher,
		db,
	)

	approvalFlow := businessflow.NewApprovalFlow(
		suggestionRepo,
		approvalRepo,
		auditRepo,
		permissionService,
		orderFlow,
		dispatcher,
		db,
	)

	notificationFlow := businessflow.NewNotificationFlow(notificationRepo)

	pushFlow := businessflow.NewPushFlow(subscriptionRepo, auditRepo, db)

	competitorFlow := businessflow.NewCompetitorPriceFlow(competitorRepo, stationRepo, permissionService)

	dataFlow := businessflow.NewDataFlow(stationRepo, clientRepo, paymentMethodRepo)

	reportFlow := businessflow.NewReportFlow(suggestionRepo, approvalRepo, permissionService)

	// Seed the default approval chain on first boot
	seedCtx, seedCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer seedCancel()
	if err := orderFlow.SeedDefaultChain(seedCtx); err != nil {
		return nil, fmt.Errorf("failed to seed approval chain: %w", err)
	}

	// Initialize handlers
	h := router.Handlers{
		Auth:          handlers.NewAuthHandler(loginFlow),
		Suggestion:    handlers.NewSuggestionHandler(suggestionFlow),
		Approval:      handlers.NewApprovalHandler(approvalFlow),
		ApprovalOrder: handlers.NewApprovalOrderHandler(orderFlow),
		Notification:  handlers.NewNotificationHandler(notificationFlow),
		Push:          handlers.NewPushHandler(pushFlow),
		Data:          handlers.NewDataHandler(dataFlow),
		Competitor:    handlers.NewCompetitorHandler(competitorFlow),
		Report:        handlers.NewReportHandler(reportFlow),
	}

	// Initialize auth middleware
	authMiddleware := middleware.NewAuthMiddleware(tokenService, permissionService)

	// Initialize router
	appRouter := router.NewFiberRouter(h, authMiddleware, cfg.Security.AllowedOrigins)

	if cfg.Maintenance.Enabled {
		sched := scheduler.NewMaintenanceScheduler(subscriptionRepo, notificationRepo, sessionRepo, log.Default(), cfg.Maintenance.Interval)
		stopScheduler := sched.Start(context.Background())
		stopFuncs = append(stopFuncs, stopScheduler)
	}

	// Create application struct from FiberRouter
	fiberRouter := appRouter.(*router.FiberRouter)
	application := &Application{
		router:    fiberRouter,
		config:    cfg,
		server:    fiberRouter.GetApp(),
		stopFuncs: stopFuncs,
	}

	return application, nil
}
