package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/admin-console/api/swagger"
	"github.com/noah-isme/admin-console/internal/backend"
	"github.com/noah-isme/admin-console/internal/handler"
	internalmiddleware "github.com/noah-isme/admin-console/internal/middleware"
	"github.com/noah-isme/admin-console/internal/repository"
	"github.com/noah-isme/admin-console/internal/service"
	"github.com/noah-isme/admin-console/pkg/cache"
	"github.com/noah-isme/admin-console/pkg/config"
	"github.com/noah-isme/admin-console/pkg/logger"
	corsmiddleware "github.com/noah-isme/admin-console/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/admin-console/pkg/middleware/requestid"
)

// @title Admin Console API
// @version 0.1.0
// @description Backend-for-frontend serving the role-based admin console
// @BasePath /console/api
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	var metrics *service.MetricsService
	if cfg.Metrics.Enabled {
		metrics = service.NewMetricsService()
	}

	client := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout, logr, metrics)
	sessionRepo := newSessionRepository(cfg, logr)
	if closer, ok := sessionRepo.(interface{ Close() error }); ok {
		defer closer.Close() //nolint:errcheck
	}

	validate := service.NewValidator()
	workspaces := service.NewWorkspaceRegistry(
		cfg.Session.WorkspaceSize,
		cfg.Session.TTL,
		service.NewScreenBuilder(client, cfg.Screens, metrics, logr),
		logr,
	)
	sessions := service.NewSessionService(sessionRepo, client, workspaces, metrics, validate, logr)
	accounts := service.NewAccountService(client, sessions, validate, logr)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics))

	metricsHandler := handler.NewMetricsHandler(metrics)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	if metrics != nil {
		r.GET("/metrics", metricsHandler.Prometheus)
	}

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	routes := handler.NewRoutes(sessions, accounts, workspaces, metrics, internalmiddleware.Session(sessions, cfg.Session, logr), logr)
	routes.Register(r.Group(cfg.APIPrefix))

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "backend", cfg.Backend.BaseURL, "session_store", cfg.Session.Store)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

func newSessionRepository(cfg *config.Config, logr *zap.Logger) repository.SessionRepository {
	if cfg.Session.Store == config.SessionStoreMemory {
		return repository.NewMemorySessionRepository(cfg.Session.WorkspaceSize, cfg.Session.TTL)
	}
	client, err := cache.NewRedis(context.Background(), cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, keeping sessions in memory", zap.Error(err))
		return repository.NewMemorySessionRepository(cfg.Session.WorkspaceSize, cfg.Session.TTL)
	}
	return repository.NewRedisSessionRepository(client, cfg.Session.TTL, logr)
}
