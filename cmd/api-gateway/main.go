package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/lavideas/kaizen-api/api/swagger"
	"github.com/lavideas/kaizen-api/internal/handler"
	"github.com/lavideas/kaizen-api/internal/middleware"
	"github.com/lavideas/kaizen-api/internal/models"
	"github.com/lavideas/kaizen-api/internal/repository"
	"github.com/lavideas/kaizen-api/internal/service"
	"github.com/lavideas/kaizen-api/internal/workflow"
	"github.com/lavideas/kaizen-api/pkg/cache"
	"github.com/lavideas/kaizen-api/pkg/config"
	"github.com/lavideas/kaizen-api/pkg/database"
	"github.com/lavideas/kaizen-api/pkg/logger"
	corsmiddleware "github.com/lavideas/kaizen-api/pkg/middleware/cors"
	reqidmiddleware "github.com/lavideas/kaizen-api/pkg/middleware/requestid"
)

// @title Kaizen Suggestion API
// @version 1.0.0
// @description Employee improvement-suggestion workflow with rewards
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, stats cache disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()

	suggestionRepo := repository.NewSuggestionRepository(db)
	rewardRepo := repository.NewRewardRepository(db)
	userRepo := repository.NewUserRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient)

	engine, err := workflow.NewEngine(cfg.Workflow, logr)
	if err != nil {
		logr.Sugar().Fatalw("invalid workflow configuration", "error", err)
	}

	metricsSvc := service.NewMetricsService()
	notificationSvc := service.NewNotificationService(cfg.Notifications, logr)
	rewardSvc := service.NewRewardService(rewardRepo, userRepo, metricsSvc, validate, logr, cfg.Rewards.AllowMultiplePerSuggestion)
	dispatcher := service.NewEffectDispatcher(rewardSvc, notificationSvc, logr)
	suggestionSvc := service.NewSuggestionService(suggestionRepo, engine, dispatcher, userRepo, metricsSvc, validate, logr, cfg.Workflow.SubmissionPoints)
	statsSvc := service.NewStatsService(suggestionRepo, rewardRepo, cacheRepo, cfg.Stats.CacheTTL, logr)
	exportSvc := service.NewExportService(suggestionRepo, userRepo, logr)
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "kaizen-api",
	})

	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()
	notificationSvc.Start(rootCtx)
	defer notificationSvc.Stop()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	authHandler := handler.NewAuthHandler(authSvc)
	suggestionHandler := handler.NewSuggestionHandler(suggestionSvc)
	rewardHandler := handler.NewRewardHandler(rewardSvc)
	statsHandler := handler.NewStatsHandler(statsSvc, exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)
	auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)

	api.GET("/users",
		middleware.JWT(authSvc),
		middleware.RequireRoles(models.RoleExecutive),
		authHandler.Users)

	suggestions := api.Group("/suggestions", middleware.JWT(authSvc))
	suggestions.POST("", suggestionHandler.Create)
	suggestions.GET("", suggestionHandler.List)
	suggestions.GET("/status/:status", suggestionHandler.ListByStatus)
	suggestions.GET("/user/:userId",
		middleware.RequireRoles(models.RoleManager, models.RoleExecutive, middleware.RoleSelf),
		suggestionHandler.ListByUser)
	suggestions.GET("/:id", suggestionHandler.Get)
	suggestions.POST("/:id/transitions", suggestionHandler.Transition)
	suggestions.PATCH("/:id/feasibility",
		middleware.RequireRoles(models.RoleManager, models.RoleExecutive),
		suggestionHandler.SubmitFeasibility)
	suggestions.PATCH("/:id",
		middleware.RequireRoles(models.RoleExecutive),
		suggestionHandler.Update)

	rewards := api.Group("/rewards", middleware.JWT(authSvc))
	rewards.POST("",
		middleware.RequireRoles(models.RoleExecutive),
		middleware.Audit(userRepo, models.AuditActionRewardGrant, "reward"),
		rewardHandler.Grant)
	rewards.GET("/suggestion/:suggestionId", rewardHandler.ListBySuggestion)
	rewards.GET("/user/:userId",
		middleware.RequireRoles(models.RoleManager, models.RoleExecutive, middleware.RoleSelf),
		rewardHandler.ListByUser)

	stats := api.Group("/stats", middleware.JWT(authSvc))
	stats.GET("/suggestions", statsHandler.Suggestions)
	stats.GET("/top-contributors", statsHandler.TopContributors)
	stats.GET("/export",
		middleware.RequireRoles(models.RoleManager, models.RoleExecutive),
		statsHandler.Export)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
