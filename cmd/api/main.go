package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/resolvedesk/complaint-api/api/swagger"
	"github.com/resolvedesk/complaint-api/internal/handler"
	"github.com/resolvedesk/complaint-api/internal/middleware"
	"github.com/resolvedesk/complaint-api/internal/models"
	"github.com/resolvedesk/complaint-api/internal/repository"
	"github.com/resolvedesk/complaint-api/internal/service"
	"github.com/resolvedesk/complaint-api/pkg/cache"
	"github.com/resolvedesk/complaint-api/pkg/config"
	"github.com/resolvedesk/complaint-api/pkg/database"
	"github.com/resolvedesk/complaint-api/pkg/logger"
	corsmiddleware "github.com/resolvedesk/complaint-api/pkg/middleware/cors"
	reqidmiddleware "github.com/resolvedesk/complaint-api/pkg/middleware/requestid"
)

// @title Complaint Hub API
// @version 1.0.0
// @description Complaint lifecycle and analytics aggregation service
// @BasePath /api/v1
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		redisClient = nil
	}

	validate := validator.New()

	metricsService := service.NewMetricsService()
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	cacheService := service.NewCacheService(cacheRepo, metricsService, cfg.Analytics.CacheTTL, logr, cfg.Analytics.CacheEnabled && redisClient != nil)

	userRepo := repository.NewUserRepository(db)
	complaintRepo := repository.NewComplaintRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)

	authService := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	complaintService := service.NewComplaintService(complaintRepo, cacheService, validate, logr)
	analyticsService := service.NewAnalyticsService(analyticsRepo, cacheService, cfg.Analytics.CacheTTL, logr)
	dashboardService := service.NewDashboardService(complaintRepo, cacheService, cfg.Dashboard.CacheTTL, cfg.Dashboard.RecentLimit, logr)
	exportService := service.NewExportService(complaintRepo, cfg.Exports.MaxRows, logr)

	authHandler := handler.NewAuthHandler(authService)
	complaintHandler := handler.NewComplaintHandler(complaintService)
	adminHandler := handler.NewAdminHandler(complaintService, dashboardService, exportService)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService)
	metricsHandler := handler.NewMetricsHandler(metricsService)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
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
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.GET("/me", middleware.JWT(authService), authHandler.Me)

	complaints := api.Group("/complaints", middleware.JWT(authService))
	complaints.POST("", complaintHandler.Submit)
	complaints.GET("", complaintHandler.List)
	complaints.GET("/:id", complaintHandler.Get)

	admin := api.Group("/admin", middleware.JWT(authService), middleware.RequireRoles(models.RoleAdmin))
	admin.GET("/complaints", adminHandler.List)
	admin.GET("/complaints/export", adminHandler.Export)
	admin.GET("/complaints/:id", adminHandler.Get)
	admin.PATCH("/complaints/:id", adminHandler.Update)
	admin.DELETE("/complaints/:id", adminHandler.Delete)
	admin.POST("/complaints/:id/assign", adminHandler.Assign)
	admin.POST("/complaints/:id/respond", adminHandler.Respond)
	admin.GET("/dashboard", adminHandler.Dashboard)
	admin.GET("/analytics/category-stats", analyticsHandler.CategoryStats)
	admin.GET("/analytics/monthly-trends", analyticsHandler.MonthlyTrends)
	admin.GET("/analytics/frequent-issues", analyticsHandler.FrequentIssues)
	admin.GET("/analytics/priority-stats", analyticsHandler.PriorityStats)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
