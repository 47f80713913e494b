// internal/app/server.go
package app

import (
	"context"
	"fmt"
	"time"

	"userhub-service/internal/config"
	"userhub-service/internal/db"
	userHandler "userhub-service/internal/handlers/user"
	"userhub-service/internal/middleware"
	"userhub-service/internal/pkg/jwt"
	"userhub-service/internal/pkg/ratelimit"
	"userhub-service/internal/pkg/security"
	"userhub-service/internal/repository/postgres"
	"userhub-service/internal/service/email"
	userUsecase "userhub-service/internal/service/user"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type Server struct {
	cfg    config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
	pool   *pgxpool.Pool
}

func NewServer() *Server {
	cfg := config.Load()
	engine := gin.New()
	return &Server{cfg: cfg, engine: engine}
}

func (s *Server) Start() error {
	ctx := context.Background()

	// ----- Logger -----
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync()
	s.logger = logger

	// ----- PostgreSQL -----
	pool, err := postgres.Connect(ctx, s.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	s.pool = pool
	logger.Info("connected to PostgreSQL")

	// ----- Redis -----
	redisClient, err := db.NewRedisClient(db.RedisConfig{
		Addr:     s.cfg.RedisAddr,
		Password: s.cfg.RedisPass,
		DB:       0,
		PoolSize: 10,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	logger.Info("connected to Redis")

	// ----- JWT Manager -----
	jwtManager, err := jwt.Build(s.cfg.JWT)
	if err != nil {
		return fmt.Errorf("failed to build JWT manager: %w", err)
	}

	// ----- Rate Limiter -----
	rateLimiter := ratelimit.NewLimiter(redisClient)

	// ----- Email -----
	emailSender := email.NewSender(
		s.cfg.SMTPHost,
		s.cfg.SMTPPort,
		s.cfg.SMTPUser,
		s.cfg.SMTPPass,
		s.cfg.SMTPFromName,
		s.cfg.SMTPSecure,
	)
	mailer := userUsecase.NewMailer(emailSender, logger, s.cfg.BaseURL)

	// ----- Repository -----
	userRepo := postgres.NewUserRepository(pool)

	// ----- Service -----
	hasher := security.NewHasher(s.cfg.PasswordHashCost)
	userService := userUsecase.NewService(
		userRepo,
		hasher,
		jwtManager,
		mailer,
		s.cfg.MaxLoginAttempts,
		logger,
	)

	// ----- Bootstrap admin -----
	if err := s.seedAdmin(userService); err != nil {
		logger.Error("failed to seed admin account", zap.Error(err))
		// Startup proceeds; the admin can be seeded on the next boot.
	}

	// ----- Handlers & Middleware -----
	handler := userHandler.NewHandler(userService, rateLimiter, logger)
	authMiddleware := middleware.NewAuthMiddleware(jwtManager.Verifier)

	s.engine.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
		middleware.CORSMiddleware(),
	)

	SetupRouter(s.engine, &Handlers{
		UserHandler:    handler,
		AuthMiddleware: authMiddleware,
	})

	logger.Info("server starting", zap.String("addr", s.cfg.HTTPAddr))
	return s.engine.Run(s.cfg.HTTPAddr)
}

// Shutdown releases the connection pools.
func (s *Server) Shutdown() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Server) seedAdmin(svc *userUsecase.Service) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if s.cfg.AdminEmail == "" || s.cfg.AdminPassword == "" {
		s.logger.Warn("ADMIN_EMAIL/ADMIN_PASSWORD not set, skipping admin bootstrap")
		return nil
	}
	return svc.EnsureAdminExists(ctx, s.cfg.AdminEmail, s.cfg.AdminPassword, s.cfg.AdminNickname)
}
