package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fixmarket/marketplace-system/internal/api/handler"
	"github.com/fixmarket/marketplace-system/internal/api/middleware"
	"github.com/fixmarket/marketplace-system/internal/core/domain"
	"github.com/fixmarket/marketplace-system/internal/core/service"
	"github.com/fixmarket/marketplace-system/internal/infrastructure/config"
	mongorepo "github.com/fixmarket/marketplace-system/internal/infrastructure/db/mongo"
	redisinfra "github.com/fixmarket/marketplace-system/internal/infrastructure/db/redis"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(db *mongo.Database, rdb *redis.Client, cfg *config.Config, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("marketplace"))

	limiter := redisinfra.NewRateLimiter(rdb, cfg.RateLimitPerMinute, time.Minute)
	e.Use(middleware.RateLimit(limiter))

	// --- Repositories ---
	userRepo := mongorepo.NewUserRepository(db)
	jobRepo := mongorepo.NewJobRepository(db)
	paymentRepo := mongorepo.NewPaymentRepository(db)
	disputeRepo := mongorepo.NewDisputeRepository(db)
	notificationRepo := mongorepo.NewNotificationRepository(db)

	// --- Services ---
	notificationService := service.NewNotificationService(notificationRepo, log)
	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL)
	jobService := service.NewJobService(jobRepo, userRepo, notificationService, cfg.UrgentJobTTL, log)
	paymentService := service.NewPaymentService(paymentRepo, jobRepo, notificationService, cfg.FeeRate, log)
	disputeService := service.NewDisputeService(disputeRepo, paymentRepo, paymentService, notificationService, log)
	ratingService := service.NewRatingService(userRepo, jobRepo, log)

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(authService)
	jobHandler := handler.NewJobHandler(jobService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	disputeHandler := handler.NewDisputeHandler(disputeService)
	userHandler := handler.NewUserHandler(ratingService, userRepo)
	notificationHandler := handler.NewNotificationHandler(notificationService)

	auth := middleware.Auth(cfg.JWTSecret)
	clientOnly := middleware.RBAC(domain.RoleClient)
	professionalOnly := middleware.RBAC(domain.RoleProfessional)
	adminOnly := middleware.RBAC(domain.RoleAdmin)
	anyParty := middleware.RBAC(domain.RoleClient, domain.RoleProfessional, domain.RoleAdmin)

	// --- Public routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)
	e.GET("/health", healthHandler.Liveness)            // is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // are dependencies up?

	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Jobs ---
	jobs := e.Group("/v1/jobs", auth)
	jobs.POST("", jobHandler.Create, clientOnly)
	jobs.GET("", jobHandler.Browse, professionalOnly)
	jobs.GET("/mine", jobHandler.ListMine, clientOnly)
	jobs.GET("/:id", jobHandler.Get, anyParty)
	jobs.POST("/:id/proposals", jobHandler.SubmitProposal, professionalOnly)
	jobs.POST("/:id/proposals/:pid/accept", jobHandler.AcceptProposal, clientOnly)
	jobs.POST("/:id/complete", jobHandler.Complete, professionalOnly)
	jobs.POST("/:id/cancel", jobHandler.Cancel, middleware.RBAC(domain.RoleClient, domain.RoleProfessional))

	// --- Escrow ---
	escrow := e.Group("/v1/escrow", auth)
	escrow.POST("", paymentHandler.Fund, clientOnly)
	escrow.GET("", paymentHandler.List, anyParty)
	escrow.GET("/earnings", paymentHandler.Earnings, professionalOnly)
	escrow.POST("/:id/release", paymentHandler.Release, clientOnly)
	escrow.POST("/:id/refund", paymentHandler.Refund, middleware.RBAC(domain.RoleClient, domain.RoleProfessional))

	// --- Disputes ---
	disputes := e.Group("/v1/disputes", auth)
	disputes.POST("", disputeHandler.Open, middleware.RBAC(domain.RoleClient, domain.RoleProfessional))
	disputes.GET("", disputeHandler.List, adminOnly)
	disputes.POST("/:id/review", disputeHandler.Review, adminOnly)
	disputes.POST("/:id/resolve", disputeHandler.Resolve, adminOnly)

	// --- Users & ratings ---
	users := e.Group("/v1/users", auth)
	users.GET("/:id", userHandler.Profile, anyParty)
	users.PUT("/me", userHandler.UpdateProfile, anyParty)
	users.POST("/:id/ratings", userHandler.SubmitRating, middleware.RBAC(domain.RoleClient, domain.RoleProfessional))

	// --- Notifications ---
	notifications := e.Group("/v1/notifications", auth, anyParty)
	notifications.GET("", notificationHandler.List)
	notifications.POST("/:id/read", notificationHandler.MarkRead)
	notifications.POST("/read-all", notificationHandler.MarkAllRead)

	return e
}
