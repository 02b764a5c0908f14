package router

import (
	"context"
	"fmt"
	"strings"

	"github.com/anonto42/nano-social/backend/internal/handlers"
	"github.com/anonto42/nano-social/backend/internal/middleware"
	"github.com/anonto42/nano-social/backend/internal/notifications"
	"github.com/anonto42/nano-social/backend/internal/observability"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"github.com/anonto42/nano-social/backend/internal/session"
	"github.com/anonto42/nano-social/backend/internal/storage"
	"github.com/anonto42/nano-social/backend/pkg/config"
	"github.com/anonto42/nano-social/backend/pkg/firebase"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"
)

const uploadsPath = "/uploads"

// Repositories groups the Mongo-backed stores.
type Repositories struct {
	Users         repositories.UserRepository
	Posts         repositories.PostRepository
	Notifications repositories.NotificationRepository
}

func NewRepositories(db *mongo.Database) *Repositories {
	return &Repositories{
		Users:         repositories.NewMongoUserRepository(db),
		Posts:         repositories.NewMongoPostRepository(db),
		Notifications: repositories.NewMongoNotificationRepository(db),
	}
}

// EnsureIndexes creates the unique and listing indexes for every collection.
func (r *Repositories) EnsureIndexes(ctx context.Context) error {
	if err := r.Users.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("users indexes: %w", err)
	}
	if err := r.Posts.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("posts indexes: %w", err)
	}
	if err := r.Notifications.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("notifications indexes: %w", err)
	}
	return nil
}

// SetupRoutes configures all application routes and injects dependencies.
// fb may be nil, in which case Firebase login is not offered and images are kept on disk.
func SetupRoutes(e *echo.Echo, cfg *config.Config, db *config.DB, repos *Repositories, fb *firebase.App) {
	e.GET("/health", handlers.NewHealthHandler(db).HealthCheck)

	sessions := session.NewManager(cfg.JWTSecret, cfg.SessionTTL, cfg.IsProduction())
	protect := middleware.ProtectRoute(sessions, repos.Users)
	limiter := middleware.NewRateLimiter(db.Redis, cfg.AuthRateLimit, cfg.AuthRateWindow, cfg.RateLimitEnabled())
	notifier := notifications.NewService(repos.Notifications, notifications.NewNotifier(db.Redis))

	images := imageStore(e, cfg, fb)

	var verifier middleware.IDTokenVerifier
	if fb != nil {
		verifier = fb.AuthClient
	}

	authGroup := e.Group("/api/auth")
	handlers.NewAuthHandler(repos.Users, sessions, verifier).RegisterAuthRoutes(authGroup, protect, limiter.Middleware("auth"))

	users := e.Group("/api/users", protect)
	handlers.NewUserHandler(repos.Users, images).RegisterUserRoutes(users)
	handlers.NewFollowHandler(repos.Users, notifier).RegisterFollowRoutes(users)

	posts := e.Group("/api/posts", protect)
	handlers.NewPostHandler(repos.Posts, images).RegisterPostRoutes(posts)
	handlers.NewFeedHandler(repos.Posts, repos.Users).RegisterFeedRoutes(posts)
	handlers.NewCommentHandler(repos.Posts).RegisterCommentRoutes(posts)
	handlers.NewLikeHandler(repos.Posts, repos.Users, notifier).RegisterLikeRoutes(posts)

	notificationGroup := e.Group("/api/notifications", protect)
	handlers.NewNotificationHandler(repos.Notifications, repos.Users).RegisterNotificationRoutes(notificationGroup)

	observability.Logger.Info("routes configured",
		"firebase_login", verifier != nil,
		"rate_limit", cfg.RateLimitEnabled(),
		"routes", len(e.Routes()),
	)
}

// imageStore prefers the Firebase bucket; otherwise images are written under
// cfg.ImageUploadDir and served from /uploads.
func imageStore(e *echo.Echo, cfg *config.Config, fb *firebase.App) storage.ImageStore {
	if fb != nil && fb.Bucket != nil {
		observability.Logger.Info("storing images in firebase", "bucket", fb.BucketName)
		return storage.NewFirebaseImageStore(fb.Bucket, fb.BucketName, cfg.MaxUploadBytes())
	}

	e.Static(uploadsPath, cfg.ImageUploadDir)
	baseURL := strings.TrimRight(cfg.PublicBaseURL, "/") + uploadsPath
	observability.Logger.Info("storing images on disk", "dir", cfg.ImageUploadDir, "url", baseURL)
	return storage.NewLocalImageStore(cfg.ImageUploadDir, baseURL, cfg.MaxUploadBytes())
}
