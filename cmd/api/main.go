package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/identity-service/internal/api/http"
	"github.com/spec-kit/identity-service/internal/api/http/handlers"
	"github.com/spec-kit/identity-service/internal/auth"
	"github.com/spec-kit/identity-service/internal/config"
	"github.com/spec-kit/identity-service/internal/events"
	"github.com/spec-kit/identity-service/internal/observability"
	"github.com/spec-kit/identity-service/internal/persistence"
	"github.com/spec-kit/identity-service/internal/repository"
	"github.com/spec-kit/identity-service/internal/service"
	"github.com/spec-kit/identity-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	if cfg.Auth.IsInsecureSecret() {
		logger.Warn("AUTH_JWT_SECRET not set; running on the insecure default signing secret")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// the dial loop runs in the background; block here until the store
	// is ready or the retry budget is spent
	mongo := persistence.NewMongo(cfg.Mongo, logger)
	if err := mongo.WaitReady(ctx); err != nil {
		logger.Fatal("failed to connect document store", zap.Error(err))
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		mongo.Close(shutdownCtx)
	}()

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	userRepo := repository.NewUserRepository(mongo)
	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, userRepo)

	userService := service.NewUserService(*cfg, service.Dependencies{
		UserRepo:     userRepo,
		TokenManager: tokenManager,
		Cache:        redis,
		Dispatcher:   dispatcher,
		Logger:       logger,
	})
	auditService := service.NewAuditService(dispatcher, logger)
	worker.StartAuditWorker(auditService)

	authMiddleware := auth.NewMiddleware(tokenManager, userRepo, metrics)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, mongo, redis),
		Users:          handlers.NewUsersHandler(userService),
		Auth:           handlers.NewAuthHandler(userService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
