// Package router provides HTTP routing, middleware configuration, and server setup for the web application
package router

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"os"
	"strings"
	"time"

	"github.com/petrodesk/petrodesk/app/dto"
	"github.com/petrodesk/petrodesk/app/handlers"
	"github.com/petrodesk/petrodesk/app/middleware"
	"github.com/petrodesk/petrodesk/utils"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/compress"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/helmet"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router interface for HTTP routing
type Router interface {
	SetupRoutes()
	Start(address string) error
	GetApp() *fiber.App
}

// Handlers bundles every handler the router mounts
type Handlers struct {
	Auth          handlers.AuthHandlerInterface
	Suggestion    handlers.SuggestionHandlerInterface
	Approval      handlers.ApprovalHandlerInterface
	ApprovalOrder handlers.ApprovalOrderHandlerInterface
	Notification  handlers.NotificationHandlerInterface
	Push          handlers.PushHandlerInterface
	Data          handlers.DataHandlerInterface
	Competitor    handlers.CompetitorHandlerInterface
	Report        handlers.ReportHandlerInterface
}

// FiberRouter implements Router using Fiber v3
type FiberRouter struct {
	app            *fiber.App
	handlers       Handlers
	authMiddleware *middleware.AuthMiddleware
	corsOrigins    []string
}

// NewFiberRouter creates a new Fiber router
func NewFiberRouter(h Handlers, authMiddleware *middleware.AuthMiddleware, corsOrigins []string) Router {
	app := fiber.New(fiber.Config{
		AppName:      "PetroDesk API",
		ServerHeader: "PetroDesk",
		ErrorHandler: errorHandler,
		BodyLimit:    4 * 1024 * 1024, // 4MB
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})

	if len(corsOrigins) == 0 {
		corsOrigins = []string{"https://app.petrodesk.com.br"}
	}

	return &FiberRouter{
		app:            app,
		handlers:       h,
		authMiddleware: authMiddleware,
		corsOrigins:    corsOrigins,
	}
}

// SetupRoutes configures all application routes
func (r *FiberRouter) SetupRoutes() {
	log.Println("Setting up routes...")

	// Global middleware
	r.setupMiddleware()

	// API routes
	api := r.app.Group("/api/v1")

	// Health check route (no rate limiting)
	api.Get("/health", r.healthCheck)

	// Prometheus metrics
	r.app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// API documentation route (development only)
	if os.Getenv("APP_ENV") == "development" || os.Getenv("APP_ENV") == "local" {
		api.Get("/docs", r.getAPIDocumentation)
		log.Println("API documentation enabled for development")
	}

	// Apply general rate limiting to all API routes
	api.Use(limiter.New(limiter.Config{
		Max:        2000,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP() // Rate limit by IP
		},
		LimitReached: func(c fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.APIResponse{
				Success: false,
				Message: "Too many requests. Please try again later.",
				Error: dto.ErrorDetail{
					Code: "RATE_LIMIT_EXCEEDED",
				},
			})
		},
		Next: func(c fiber.Ctx) bool {
			// Skip rate limiting for health checks
			return c.Path() == "/api/v1/health"
		},
	}))

	// Auth routes with stricter rate limiting
	auth := api.Group("/auth")

	auth.Use(limiter.New(limiter.Config{
		Max:        20,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.APIResponse{
				Success: false,
				Message: "Too many requests. Please try again later.",
				Error: dto.ErrorDetail{
					Code: "RATE_LIMIT_EXCEEDED",
				},
			})
		},
	}))

	// Auth endpoints
	auth.Post("/signin", r.handlers.Auth.Signin)
	auth.Post("/refresh", r.handlers.Auth.RefreshToken)
	auth.Post("/signout", r.handlers.Auth.Signout, r.authMiddleware.Authenticate())
	auth.Get("/check", r.handlers.Auth.CheckAuth, r.authMiddleware.Authenticate())

	authenticated := r.authMiddleware.Authenticate()

	// Price suggestion endpoints
	suggestions := api.Group("/suggestions", authenticated)
	suggestions.Post("/", r.handlers.Suggestion.Submit)
	suggestions.Post("/batch", r.handlers.Suggestion.SubmitBatch)
	suggestions.Get("/", r.handlers.Suggestion.List)
	suggestions.Get("/:uuid", r.handlers.Suggestion.Get)
	suggestions.Put("/:uuid", r.handlers.Suggestion.Edit)
	suggestions.Post("/:uuid/decide", r.handlers.Approval.Decide)
	suggestions.Post("/:uuid/repair", r.handlers.Approval.Repair)

	// Approval endpoints
	approvals := api.Group("/approvals", authenticated)
	approvals.Get("/pending", r.handlers.Approval.PendingApprovals)
	approvals.Post("/batch", r.handlers.Approval.BatchDecide)

	// Chain registry endpoints
	order := api.Group("/approval-order", authenticated)
	order.Get("/", r.handlers.ApprovalOrder.List)
	order.Post("/", r.handlers.ApprovalOrder.Add)
	order.Put("/reorder", r.handlers.ApprovalOrder.Reorder)
	order.Put("/:id/active", r.handlers.ApprovalOrder.SetActive)

	// Notification inbox endpoints
	notifications := api.Group("/notifications", authenticated)
	notifications.Get("/", r.handlers.Notification.List)
	notifications.Put("/:id/read", r.handlers.Notification.MarkRead)
	notifications.Delete("/:id", r.handlers.Notification.Delete)

	// Push token endpoints
	push := api.Group("/push", authenticated)
	push.Post("/tokens", r.handlers.Push.Register)
	push.Delete("/tokens", r.handlers.Push.Revoke)
	push.Get("/tokens", r.handlers.Push.ListSubscriptions)

	// Reference data endpoints
	data := api.Group("/data", authenticated)
	data.Get("/stations", r.handlers.Data.ListStations)
	data.Get("/clients", r.handlers.Data.ListClients)
	data.Get("/payment-methods", r.handlers.Data.ListPaymentMethods)

	// Competitor research endpoints
	competitors := api.Group("/competitors", authenticated)
	competitors.Post("/prices", r.handlers.Competitor.Register)
	competitors.Get("/prices", r.handlers.Competitor.List)

	// Report endpoints
	reports := api.Group("/reports", authenticated)
	reports.Get("/suggestions", r.handlers.Report.ExportSuggestions)

	// Not found handler
	r.app.Use(r.notFoundHandler)

	log.Println("Routes configured successfully")
}

// SetupMiddleware configures global middleware
func (r *FiberRouter) setupMiddleware() {
	// Request ID middleware - must be first
	r.app.Use(requestid.New(requestid.Config{
		Header: "X-Request-ID",
		Generator: func() string {
			return generateRequestID()
		},
	}))

	// Security headers middleware
	r.app.Use(helmet.New(helmet.Config{
		XSSProtection:             "1; mode=block",
		ContentTypeNosniff:        "nosniff",
		XFrameOptions:             "DENY",
		HSTSMaxAge:                31536000, // 1 year
		HSTSExcludeSubdomains:     false,
		ContentSecurityPolicy:     "default-src 'self'; frame-ancestors 'none';",
		ReferrerPolicy:            "strict-origin-when-cross-origin",
		CrossOriginEmbedderPolicy: "require-corp",
		CrossOriginOpenerPolicy:   "same-origin",
		CrossOriginResourcePolicy: "cross-origin",
		OriginAgentCluster:        "?1",
		XDNSPrefetchControl:       "off",
		XDownloadOptions:          "noopen",
		XPermittedCrossDomain:     "none",
	}))

	// CORS middleware with production settings
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: r.corsOrigins,
		AllowMethods: []string{
			"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
			"Authorization",
			"X-Requested-With",
			"X-Request-ID",
			"Cache-Control",
		},
		ExposeHeaders: []string{
			"X-Request-ID",
			"X-Response-Time",
			"Content-Disposition",
		},
		AllowCredentials: true,
		MaxAge:           utils.CORSMaxAge,
	}))

	// Compression middleware for performance
	r.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
		Next: func(c fiber.Ctx) bool {
			// Spreadsheet exports are already compressed
			contentType := c.Get("Content-Type")
			return contains(contentType, "image/") ||
				contains(contentType, "spreadsheetml")
		},
	}))

	// Request metrics
	r.app.Use(middleware.Metrics())

	// Advanced logging middleware
	r.app.Use(logger.New(logger.Config{
		Format:     `{"time":"${time}","pid":"${pid}","request_id":"${locals:requestid}","level":"info","method":"${method}","path":"${path}","protocol":"${protocol}","ip":"${ip}","user_agent":"${ua}","status":${status},"latency":"${latency}","bytes_in":${bytesReceived},"bytes_out":${bytesSent},"referer":"${referer}"}` + "\n",
		TimeFormat: time.RFC3339,
		TimeZone:   "UTC",
		Next: func(c fiber.Ctx) bool {
			// Skip logging for health checks in production
			return c.Path() == "/api/v1/health"
		},
	}))

	// Custom security middleware
	r.app.Use(r.securityMiddleware)

	// Recovery middleware with custom error handling
	r.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e interface{}) {
			// Log panic with request context
			log.Printf(`{"time":"%s","level":"error","request_id":"%s","event":"panic","error":"%v","path":"%s","method":"%s","ip":"%s"}`,
				utils.UTCNow().Format(time.RFC3339),
				c.Locals("requestid"),
				e,
				c.Path(),
				c.Method(),
				c.IP(),
			)
		},
	}))
}

// Custom security middleware
func (r *FiberRouter) securityMiddleware(c fiber.Ctx) error {
	c.Set("X-Response-Time", utils.UTCNow().Format(time.RFC3339))
	c.Set("Server", "PetroDesk")

	return c.Next()
}

// Start starts the HTTP server
func (r *FiberRouter) Start(address string) error {
	log.Printf("Starting server on %s", address)
	return r.app.Listen(address)
}

// GetApp returns the Fiber app instance
func (r *FiberRouter) GetApp() *fiber.App {
	return r.app
}

// Health check endpoint
func (r *FiberRouter) healthCheck(c fiber.Ctx) error {
	return c.JSON(dto.APIResponse{
		Success: true,
		Message: "Service is healthy",
		Data: fiber.Map{
			"status":    "ok",
			"timestamp": utils.UTCNow().Unix(),
			"version":   "1.0.0",
			"service":   "petrodesk-api",
		},
	})
}

// API documentation endpoint
func (r *FiberRouter) getAPIDocumentation(c fiber.Ctx) error {
	docs := GetRouteDocumentation()
	return c.JSON(dto.APIResponse{
		Success: true,
		Message: "API documentation retrieved successfully",
		Data: fiber.Map{
			"title":       "PetroDesk API Documentation",
			"version":     "1.0.0",
			"description": "Fuel price suggestion and approval workflow API",
			"endpoints":   docs,
		},
	})
}

// Not found handler
func (r *FiberRouter) notFoundHandler(c fiber.Ctx) error {
	requestID := c.Locals("requestid")

	return c.Status(fiber.StatusNotFound).JSON(dto.APIResponse{
		Success: false,
		Message: "The requested resource was not found",
		Error: dto.ErrorDetail{
			Code: "NOT_FOUND",
			Details: fiber.Map{
				"path":       c.Path(),
				"method":     c.Method(),
				"request_id": requestID,
			},
		},
	})
}

// Global error handler
func errorHandler(c fiber.Ctx, err error) error {
	// Default error code
	code := fiber.StatusInternalServerError

	// Retrieve the custom status code if it's a fiber.*Error
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	// Log the error
	log.Printf("Error %d: %v", code, err)

	// Get RequestID for tracing
	requestID := c.Locals("requestid")

	// Return JSON error response
	return c.Status(code).JSON(dto.APIResponse{
		Success: false,
		Message: "An internal server error occurred",
		Error: dto.ErrorDetail{
			Code: "INTERNAL_ERROR",
			Details: fiber.Map{
				"timestamp":  utils.UTCNow().Unix(),
				"request_id": requestID,
			},
		},
	})
}

// Helper functions

// generateRequestID creates a unique request ID
func generateRequestID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// contains checks if a string contains a substring
func contains(str, substr string) bool {
	return strings.Contains(str, substr)
}

// GetRouteDocumentation returns API documentation
func GetRouteDocumentation() []map[string]any {
	return []map[string]any{
		{
			"method":      "POST",
			"path":        "/api/v1/auth/signin",
			"description": "Authenticate with email and password",
			"parameters": map[string]any{
				"email":    "string (required) - Email address",
				"password": "string (required) - User password",
			},
		},
		{
			"method":      "POST",
			"path":        "/api/v1/auth/refresh",
			"description": "Exchange a refresh token for a fresh token pair",
			"parameters": map[string]any{
				"refresh_token": "string (required) - Refresh token from signin",
			},
		},
		{
			"method":      "POST",
			"path":        "/api/v1/suggestions",
			"description": "Submit a price suggestion into the approval chain",
			"parameters": map[string]any{
				"station_id":        "number (required) - Target station",
				"product_code":      "string (required) - gasolina_comum|gasolina_aditivada|etanol|diesel_s10|diesel_s500|gnv",
				"cost_price":        "number (required) - Cost price in BRL",
				"final_price":       "number (required) - Suggested pump price in BRL",
				"client_id":         "number (optional) - Fleet client",
				"payment_method_id": "number (optional) - Payment condition",
				"observations":      "string (optional) - Free text, max 2000 chars",
			},
		},
		{
			"method":      "POST",
			"path":        "/api/v1/suggestions/:uuid/decide",
			"description": "Approve or reject a suggestion at its current level",
			"parameters": map[string]any{
				"decision":    "string (required) - approved|rejected",
				"observation": "string (optional) - Decision note",
			},
		},
		{
			"method":      "GET",
			"path":        "/api/v1/approvals/pending",
			"description": "List suggestions waiting on the caller's profile",
			"parameters": map[string]any{
				"station_id": "number (optional) - Filter by station",
				"page":       "number (optional) - Page number",
				"page_size":  "number (optional) - Page size, max 100",
			},
		},
		{
			"method":      "GET",
			"path":        "/api/v1/approval-order",
			"description": "List the approval chain rows and registry version",
			"parameters":  map[string]any{},
		},
		{
			"method":      "GET",
			"path":        "/api/v1/health",
			"description": "Health check endpoint",
			"parameters":  map[string]any{},
		},
	}
}
