package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/ams-api/api/swagger"
	"github.com/noah-isme/ams-api/internal/handler"
	"github.com/noah-isme/ams-api/internal/middleware"
	"github.com/noah-isme/ams-api/internal/models"
	"github.com/noah-isme/ams-api/internal/repository"
	"github.com/noah-isme/ams-api/internal/service"
	"github.com/noah-isme/ams-api/pkg/cache"
	"github.com/noah-isme/ams-api/pkg/config"
	"github.com/noah-isme/ams-api/pkg/database"
	"github.com/noah-isme/ams-api/pkg/logger"
	"github.com/noah-isme/ams-api/pkg/mailer"
	corsmiddleware "github.com/noah-isme/ams-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/ams-api/pkg/middleware/requestid"
)

// @title AMS API
// @version 1.0.0
// @description Apprenticeship matching: ranked openings for students, ranked applicants for companies.
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Fatal("failed to connect redis", zap.Error(err))
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	validate := models.NewValidator()
	metrics := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Matching.CacheTTL, logr, cfg.Matching.CacheEnabled && cacheRepo.Available())

	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	openingRepo := repository.NewOpeningRepository(db)
	applicationRepo := repository.NewApplicationRepository(db)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	studentSvc := service.NewStudentService(studentRepo, cacheSvc, validate, logr)
	openingSvc := service.NewOpeningService(openingRepo, cacheSvc, validate, logr, cfg.Matching.DefaultDeadline)
	matchingSvc := service.NewMatchingService(service.MatchingDeps{
		Students:     studentSvc,
		Openings:     openingSvc,
		OpeningRepo:  openingRepo,
		StudentRepo:  studentRepo,
		Applications: applicationRepo,
		Cache:        cacheSvc,
		Metrics:      metrics,
		Logger:       logr,
		CacheTTL:     cfg.Matching.CacheTTL,
	})

	notifier := service.NewNotificationService(cfg.Notifications, mailer.New(cfg.Notifications, logr), metrics, logr)
	notifier.Start(ctx)
	defer notifier.Stop()

	applicationSvc := service.NewApplicationService(applicationRepo, openingRepo, studentSvc, openingSvc, notifier, cacheSvc, metrics, logr)
	exportSvc := service.NewExportService(matchingSvc, logr, cfg.Exports.Enabled)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	checks := map[string]handler.Pinger{"postgres": db}
	if cacheRepo.Available() {
		checks["redis"] = handler.PingFunc(cacheRepo.Ping)
	}

	handler.RegisterRoutes(r, cfg.APIPrefix, handler.Handlers{
		Auth:         handler.NewAuthHandler(authSvc),
		Students:     handler.NewStudentHandler(studentSvc),
		Openings:     handler.NewOpeningHandler(openingSvc),
		Matching:     handler.NewMatchingHandler(matchingSvc),
		Applications: handler.NewApplicationHandler(applicationSvc),
		Exports:      handler.NewExportHandler(exportSvc),
		Metrics:      handler.NewMetricsHandler(metrics, checks),
	}, authSvc)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Error("server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
