package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/krs-admin-api/api/swagger"
	"github.com/noah-isme/krs-admin-api/internal/handler"
	"github.com/noah-isme/krs-admin-api/internal/middleware"
	"github.com/noah-isme/krs-admin-api/internal/repository"
	"github.com/noah-isme/krs-admin-api/internal/service"
	"github.com/noah-isme/krs-admin-api/pkg/cache"
	"github.com/noah-isme/krs-admin-api/pkg/config"
	"github.com/noah-isme/krs-admin-api/pkg/database"
	"github.com/noah-isme/krs-admin-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/krs-admin-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/krs-admin-api/pkg/middleware/requestid"
)

// @title KRS Admin API
// @version 1.0.0
// @description Course enrollment administration backend
// @BasePath /api
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			// Option caching is best-effort, run without it.
			logr.Sugar().Warnw("redis unavailable, continuing without option cache", "error", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	courseRepo := repository.NewCourseRepository(db)

	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, studentRepo, courseRepo, cacheRepo, metricsSvc, validate, logr)
	studentSvc := service.NewStudentService(studentRepo, cacheRepo, cfg.Options.CacheTTL, metricsSvc, logr)
	courseSvc := service.NewCourseService(courseRepo, cacheRepo, cfg.Options.CacheTTL, metricsSvc, logr)
	exportSvc := service.NewExportService(enrollmentRepo, nil, nil, cfg.Export.MaxRows, logr)

	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentSvc, exportSvc)
	studentHandler := handler.NewStudentHandler(studentSvc)
	courseHandler := handler.NewCourseHandler(courseSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.GET("/enrollments", enrollmentHandler.List)
		api.GET("/enrollments/export", enrollmentHandler.Export)
		api.POST("/enrollments", enrollmentHandler.Create)
		api.PUT("/enrollments/:id", enrollmentHandler.Update)
		api.DELETE("/enrollments/:id", enrollmentHandler.Delete)

		api.GET("/students", studentHandler.List)
		api.GET("/courses", courseHandler.List)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
