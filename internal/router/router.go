package router

import (
	"fmt"

	"github.com/anonto42/capsule-social/backend/internal/activity"
	"github.com/anonto42/capsule-social/backend/internal/cache"
	"github.com/anonto42/capsule-social/backend/internal/handlers"
	"github.com/anonto42/capsule-social/backend/internal/metrics"
	"github.com/anonto42/capsule-social/backend/internal/middleware"
	"github.com/anonto42/capsule-social/backend/internal/repositories"
	"github.com/anonto42/capsule-social/backend/internal/visibility"
	"github.com/anonto42/capsule-social/backend/pkg/assets"
	"github.com/anonto42/capsule-social/backend/pkg/config"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

// Dependencies are the connections and shared components the routes are built from
type Dependencies struct {
	Config   *config.Config
	Postgres *gorm.DB
	Redis    *redis.Client              // nil disables the friend cache
	Firebase middleware.IDTokenVerifier // nil disables Firebase ID tokens
	Metrics  *metrics.Metrics
	Logger   *zap.Logger
}

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo, logger *zap.Logger, m *metrics.Metrics) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.RequestID())
	e.Use(middleware.RequestLogger(logger))
	e.Use(m.Middleware())
	e.Use(eMiddleware.CORS())
	e.HTTPErrorHandler = handlers.NewHTTPErrorHandler(logger)
	logger.Info("global middleware configured")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, deps Dependencies) error {
	cfg, pgdb, logger := deps.Config, deps.Postgres, deps.Logger

	if err := repositories.AutoMigrate(pgdb); err != nil {
		return fmt.Errorf("failed to auto migrate models: %w", err)
	}
	logger.Info("PostgreSQL auto-migrations completed")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(pgdb)
	capsuleRepo := repositories.NewPostgresCapsuleRepository(pgdb)
	commentRepo := repositories.NewPostgresCommentRepository(pgdb)
	friendshipRepo := repositories.NewPostgresFriendshipRepository(pgdb)
	membershipRepo := repositories.NewPostgresMembershipRepository(pgdb)

	var friends visibility.FriendSource = friendshipRepo
	var invalidator handlers.FriendCacheInvalidator
	if deps.Redis != nil {
		friendCache := cache.NewFriendCache(deps.Redis, friendshipRepo, cfg.FriendCacheTTL, logger)
		friends, invalidator = friendCache, friendCache
		logger.Info("friend cache enabled", zap.Duration("ttl", cfg.FriendCacheTTL))
	}

	// --- Authentication ---
	var verifiers []middleware.TokenVerifier
	if cfg.JWTSecret != "" {
		verifiers = append(verifiers, middleware.NewJWTVerifier(cfg.JWTSecret))
	} else {
		logger.Warn("JWT_SECRET not set, JWT authentication disabled")
	}
	if deps.Firebase != nil {
		verifiers = append(verifiers, middleware.NewFirebaseVerifier(deps.Firebase, userRepo))
	}
	auth := middleware.NewAuthenticator(logger, verifiers...)

	// --- Shared services ---
	filter := visibility.NewFilter(friends, membershipRepo)
	avatars := assets.NewURLResolver(cfg.AssetBaseURL)
	assembler := activity.NewAssembler(filter, commentRepo, userRepo, capsuleRepo, avatars,
		activity.WithLogger(logger.Named("activity")),
		activity.WithDegradedCounter(deps.Metrics.FeedDegradedItems),
	)

	api := e.Group("/api/v1")

	// Comment routes
	commentHandler := handlers.NewCommentHandler(commentRepo, capsuleRepo, userRepo, filter, avatars)
	commentHandler.RegisterCommentRoutes(api, auth.Required(), auth.Optional(), commentRateLimiter(cfg.CommentRateLimit))
	logger.Info("comment routes configured")

	// Activity feed routes
	activityHandler := handlers.NewActivityHandler(assembler)
	activityHandler.RegisterActivityRoutes(api, auth.Optional())
	logger.Info("activity routes configured")

	// Friendship routes
	friendshipHandler := handlers.NewFriendshipHandler(friendshipRepo, userRepo, friends, invalidator, avatars, logger)
	friendshipHandler.RegisterFriendshipRoutes(api, auth.Required())
	logger.Info("friendship routes configured")

	return nil
}

// commentRateLimiter throttles comment creation per signed-in user.
func commentRateLimiter(perSecond float64) echo.MiddlewareFunc {
	store := eMiddleware.NewRateLimiterMemoryStoreWithConfig(eMiddleware.RateLimiterMemoryStoreConfig{
		Rate:  rate.Limit(perSecond),
		Burst: int(perSecond) + 1,
	})
	return eMiddleware.RateLimiterWithConfig(eMiddleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return middleware.ViewerFromContext(c).String(), nil
		},
	})
}
