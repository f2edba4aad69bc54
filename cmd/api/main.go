package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/studyhub/studyhub-backend/internal/config"
	"github.com/studyhub/studyhub-backend/internal/handler"
	"github.com/studyhub/studyhub-backend/internal/middleware"
	"github.com/studyhub/studyhub-backend/internal/migration"
	"github.com/studyhub/studyhub-backend/internal/repository"
	"github.com/studyhub/studyhub-backend/internal/scheduler"
	"github.com/studyhub/studyhub-backend/internal/service"
	"github.com/studyhub/studyhub-backend/internal/ws"
	"github.com/studyhub/studyhub-backend/pkg/jwt"
	pkglogger "github.com/studyhub/studyhub-backend/pkg/logger"
	pkgredis "github.com/studyhub/studyhub-backend/pkg/redis"
)

// @title           StudyHub Backend API
// @version         1.0
// @description     StudyHub real-time messaging and notification API
//
// @BasePath        /api/v1
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// getConfigPath returns config file path based on APP_ENV environment variable
func getConfigPath() string {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf("configs/config.%s.yaml", env)
}

func main() {
	config.LoadDotEnv()

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	pkglogger.Init(env)
	zlog := pkglogger.GetLogger()

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	zlog.Info().Str("config", configPath).Msg("configuration loaded")

	// MySQL
	db, err := gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := migration.Run(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	zlog.Info().Msg("connected to MySQL")

	// Redis (optional: hub falls back to local-only delivery,
	// notification counts to uncached reads)
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		client, err := pkgredis.NewClient(
			cfg.Redis.Host,
			cfg.Redis.Port,
			cfg.Redis.Password,
			cfg.Redis.DB,
			cfg.Redis.PoolSize,
		)
		if err != nil {
			zlog.Warn().Err(err).Msg("Redis unavailable, continuing without it")
		} else {
			redisClient = client
			zlog.Info().Msg("connected to Redis")
		}
	}

	// Repositories
	messageRepo := repository.NewMessageRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	memberRepo := repository.NewMemberRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	eventRepo := repository.NewEventRepository(db)

	// WebSocket hub
	hub := ws.NewHub(redisClient, groupRepo)
	hub.Run()
	defer hub.Stop()

	// Services
	jwtManager := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.ExpiresIn, cfg.JWT.RefreshIn)
	messageSvc := service.NewMessageService(messageRepo, memberRepo, groupRepo, hub)
	notificationSvc := service.NewNotificationService(notificationRepo, hub, redisClient)
	authSvc := service.NewAuthService(memberRepo, jwtManager)

	// Reminder scheduler
	schedulerCtx, cancelScheduler := context.WithCancel(context.Background())
	defer cancelScheduler()
	if cfg.Scheduler.Enabled {
		reminder := scheduler.NewReminder(eventRepo, groupRepo, notificationSvc, scheduler.Config{
			TickInterval: cfg.Scheduler.TickInterval,
			DedupWindow:  cfg.Scheduler.DedupWindow,
			ErrorBackoff: cfg.Scheduler.ErrorBackoff,
		})
		go reminder.Run(schedulerCtx)
	}

	// Router
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	allowOrigins := cfg.CORS.AllowOrigins
	if allowOrigins == "" {
		allowOrigins = "http://localhost:3000"
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     splitAndTrim(allowOrigins, ","),
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		ExposeHeaders:    []string{"X-Request-ID"},
		MaxAge:           86400 * time.Second,
	}))

	router.Use(middleware.Metrics())
	router.Use(middleware.RequestLogger())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "studyhub-backend",
			"time":    time.Now().Unix(),
		})
	})
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	messageHandler := handler.NewMessageHandler(messageSvc)
	notificationHandler := handler.NewNotificationHandler(notificationSvc)
	wsHandler := handler.NewWSHandler(hub)

	router.POST("/api/v1/auth/login", authHandler.Login)
	router.GET("/ws", middleware.JWTAuth(jwtManager), wsHandler.Serve)

	api := router.Group("/api/v1")
	api.Use(middleware.JWTAuth(jwtManager))

	messages := api.Group("/messages")
	messages.POST("", messageHandler.SendDirect)
	messages.GET("/conversations", messageHandler.ListConversations)
	messages.GET("/with/:userID", messageHandler.ListConversation)
	messages.POST("/:id/read", messageHandler.MarkRead)
	messages.POST("/conversations/:userID/read", messageHandler.MarkConversationRead)
	messages.DELETE("/:id", messageHandler.Delete)

	groups := api.Group("/groups")
	groups.POST("/:id/messages", messageHandler.SendGroup)
	groups.GET("/:id/messages", messageHandler.ListGroupMessages)
	groups.DELETE("/:id/messages/:messageID", messageHandler.DeleteGroupMessage)

	notifications := api.Group("/notifications")
	notifications.GET("", notificationHandler.List)
	notifications.GET("/unviewed-count", notificationHandler.UnviewedCount)
	notifications.POST("/:id/viewed", notificationHandler.MarkViewed)
	notifications.POST("/viewed-all", notificationHandler.MarkAllViewed)
	notifications.DELETE("/:id", notificationHandler.Delete)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		zlog.Info().Int("port", cfg.Server.Port).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown: stop the scheduler sleep immediately, drain HTTP
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zlog.Info().Msg("shutting down")

	cancelScheduler()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error().Err(err).Msg("server shutdown")
	}
}

func splitAndTrim(s, sep string) []string {
	parts := strings.Split(s, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
