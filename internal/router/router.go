package router

import (
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"
	"github.com/teamsn/socialnetwork/internal/handlers"
	"github.com/teamsn/socialnetwork/internal/middleware"
	"github.com/teamsn/socialnetwork/internal/models"
	"github.com/teamsn/socialnetwork/internal/notifications"
	"github.com/teamsn/socialnetwork/internal/realtime"
	"github.com/teamsn/socialnetwork/internal/repositories"
	"github.com/teamsn/socialnetwork/pkg/token"
	"gorm.io/gorm"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	log.Info().Msg("global middleware configured")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, db *gorm.DB, hub *realtime.Hub, publisher realtime.Publisher, tokens *token.Service) error {
	// AutoMigrate PostgreSQL models
	err := db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.CommentLike{},
		&models.Follow{},
		&models.FollowRequest{},
		&models.Notification{},
	)
	if err != nil {
		return err
	}
	if err := repositories.EnsureNotificationIndexes(db); err != nil {
		return err
	}
	log.Info().Msg("auto-migrations completed for all models")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(db)
	postRepo := repositories.NewPostgresPostRepository(db)
	commentRepo := repositories.NewPostgresCommentRepository(db)
	likeRepo := repositories.NewPostgresLikeRepository(db)
	commentLikeRepo := repositories.NewPostgresCommentLikeRepository(db)
	followRepo := repositories.NewPostgresFollowRepository(db)
	notificationRepo := repositories.NewPostgresNotificationRepository(db)

	dispatcher := notifications.NewDispatcher(notificationRepo, userRepo, postRepo, commentRepo, publisher)
	privacyGate := handlers.NewPrivacyGate(followRepo)

	// --- Real-time channel endpoints (handshake-authenticated) ---
	channelAuth := realtime.NewAuthenticator(tokens, userRepo)
	channelHandler := realtime.NewChannelHandler(hub, channelAuth, dispatcher)
	channelHandler.RegisterChannelRoutes(e)
	log.Info().Msg("real-time channel endpoints configured")

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	authHandler := handlers.NewAuthHandler(userRepo, tokens)
	authHandler.RegisterAuthRoutes(authGroup)
	log.Info().Msg("auth routes configured")

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware(tokens))

	userHandler := handlers.NewUserHandler(userRepo)
	userHandler.RegisterProfileRoutes(api)

	postHandler := handlers.NewPostHandler(postRepo, userRepo, dispatcher, privacyGate)
	postHandler.RegisterPostRoutes(api)

	commentHandler := handlers.NewCommentHandler(commentRepo, commentLikeRepo, postRepo, userRepo, dispatcher, privacyGate)
	commentHandler.RegisterCommentRoutes(api)

	likeHandler := handlers.NewLikeHandler(likeRepo, postRepo, userRepo, dispatcher, privacyGate)
	likeHandler.RegisterLikeRoutes(api)

	followHandler := handlers.NewFollowHandler(followRepo, userRepo, dispatcher)
	followHandler.RegisterFollowRoutes(api)

	notificationHandler := handlers.NewNotificationHandler(dispatcher)
	notificationHandler.RegisterNotificationRoutes(api)

	log.Info().Msg("all routes configured")
	return nil
}
