package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	_ "github.com/classtrack/classtrack-api/api/swagger"
	"github.com/classtrack/classtrack-api/internal/handler"
	"github.com/classtrack/classtrack-api/internal/middleware"
	"github.com/classtrack/classtrack-api/internal/repository"
	"github.com/classtrack/classtrack-api/internal/service"
	"github.com/classtrack/classtrack-api/pkg/cache"
	"github.com/classtrack/classtrack-api/pkg/config"
	"github.com/classtrack/classtrack-api/pkg/database"
	"github.com/classtrack/classtrack-api/pkg/logger"
	corsmiddleware "github.com/classtrack/classtrack-api/pkg/middleware/cors"
	reqidmiddleware "github.com/classtrack/classtrack-api/pkg/middleware/requestid"
)

// @title ClassTrack API
// @version 0.1.0
// @description Classroom homework tracking service
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

	mongoClient, db, err := database.NewMongo(cfg.Mongo)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect mongodb", "error", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = database.Close(ctx, mongoClient)
	}()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect redis", "error", err)
	}
	defer redisClient.Close() //nolint:errcheck

	validate := validator.New()

	teacherRepo := repository.NewTeacherRepository(db)
	studentRepo := repository.NewStudentRepository(db, logr, cfg.Tracking.StreamBuffer)
	homeworkRepo := repository.NewHomeworkRepository(db)
	sessionRepo := repository.NewSessionRepository(redisClient, cfg.Session.TTL)

	metricsSvc := service.NewMetricsService()
	fanoutSvc := service.NewFanoutService(studentRepo, homeworkRepo, metricsSvc, logr)
	authSvc := service.NewAuthService(teacherRepo, sessionRepo, validate, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	teacherSvc := service.NewTeacherService(teacherRepo, validate, logr)
	accessSvc := service.NewAccessService(teacherRepo, sessionRepo, logr)
	studentSvc := service.NewStudentService(studentRepo, fanoutSvc, validate, logr, cfg.Import.MaxRows)
	homeworkSvc := service.NewHomeworkService(homeworkRepo, fanoutSvc, validate, logr)
	trackingSvc := service.NewTrackingService(studentRepo, homeworkRepo, logr)
	bulkSvc := service.NewBulkService(studentRepo, homeworkRepo, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	profileHandler := handler.NewProfileHandler(teacherSvc, accessSvc)
	adminHandler := handler.NewAdminHandler(accessSvc)
	studentHandler := handler.NewStudentHandler(studentSvc, bulkSvc)
	homeworkHandler := handler.NewHomeworkHandler(homeworkSvc, bulkSvc)
	trackingHandler := handler.NewTrackingHandler(trackingSvc, metricsSvc)

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
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := mongoClient.Ping(ctx, readpref.Primary()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "store unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc))

	protected.GET("/profile", profileHandler.Get)
	protected.PUT("/profile", profileHandler.Update)
	protected.POST("/profile/admins", profileHandler.Promote)
	protected.DELETE("/profile/admins", profileHandler.Revoke)

	protected.GET("/students", studentHandler.List)
	protected.POST("/students", studentHandler.Create)
	protected.PUT("/students/:id", studentHandler.Update)
	protected.DELETE("/students/:id", studentHandler.Delete)
	protected.POST("/students/import", studentHandler.Import)
	protected.PUT("/students/selection", studentHandler.Selection)
	protected.POST("/students/bulk-delete", studentHandler.BulkDelete)

	protected.GET("/homework", homeworkHandler.List)
	protected.POST("/homework", homeworkHandler.Create)
	protected.PUT("/homework/:id", homeworkHandler.Update)
	protected.DELETE("/homework/:id", homeworkHandler.Delete)
	protected.PUT("/homework/selection", homeworkHandler.Selection)
	protected.POST("/homework/bulk-delete", homeworkHandler.BulkDelete)

	protected.GET("/tracking", trackingHandler.Snapshot)
	protected.GET("/tracking/stream", trackingHandler.Stream)
	protected.POST("/tracking/toggle", trackingHandler.Toggle)
	protected.GET("/tracking/export", trackingHandler.Export)

	protected.GET("/admin/teachers", adminHandler.ListTeachers)
	protected.POST("/admin/impersonate/:id", adminHandler.Impersonate)
	protected.DELETE("/admin/impersonate", adminHandler.Return)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
