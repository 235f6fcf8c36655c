package main

import (
	"context"
	"log"
	"time"

	"feedback-system/internal/cache"
	"feedback-system/internal/config"
	"feedback-system/internal/database"
	"feedback-system/internal/handler"
	"feedback-system/internal/middleware"
	"feedback-system/internal/repository"
	"feedback-system/internal/service"
	"feedback-system/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	if err := logger.Init(!cfg.IsProduction()); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Database connection with bounded retries; failure here is fatal.
	connectCtx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	db := database.New(cfg.MongoURI, cfg.MongoDatabase)
	if err := db.Connect(connectCtx); err != nil {
		cancel()
		logger.Log.Fatal("Database connection failed", zap.Error(err))
	}
	if err := db.EnsureIndexes(connectCtx); err != nil {
		cancel()
		logger.Log.Fatal("Index creation failed", zap.Error(err))
	}
	cancel()
	defer func() {
		if err := db.Disconnect(context.Background()); err != nil {
			logger.Log.Warn("Database disconnect failed", zap.Error(err))
		}
	}()

	// Dashboard cache is optional; the server runs fine without Redis.
	var dashboardCache *cache.DashboardCache
	if cfg.RedisURL != "" {
		var err error
		dashboardCache, err = cache.NewDashboardCache(cfg.RedisURL, cfg.DashboardCacheTTL)
		if err != nil {
			logger.Log.Warn("Dashboard cache unavailable, continuing without it", zap.Error(err))
		} else {
			defer dashboardCache.Close()
		}
	}

	// Repositories
	userRepo := repository.NewMongoUserRepository(db.Database())
	feedbackRepo := repository.NewMongoFeedbackRepository(db.Database())
	dashboardRepo := repository.NewMongoDashboardRepository(db.Database())

	// Services
	userService := service.NewUserService(userRepo, feedbackRepo, cfg.JWTAccessSecret, cfg.JWTRefreshSecret)
	feedbackService := service.NewFeedbackService(feedbackRepo)
	dashboardService := service.NewDashboardService(dashboardRepo, dashboardCache)

	// Handlers
	userHandler := handler.NewUserHandler(userService, cfg.IsProduction())
	feedbackHandler := handler.NewFeedbackHandler(feedbackService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)
	healthHandler := handler.NewHealthHandler(db)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestLogger(),
		middleware.SecurityHeaders(),
		middleware.HSTS(cfg.IsProduction()),
	)
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	authRequired := middleware.Authenticate(userRepo, cfg.JWTAccessSecret)

	router.GET("/health", healthHandler.Health)

	api := router.Group("/api")

	user := api.Group("/user")
	{
		user.POST("/register", userHandler.Register)
		user.POST("/login", userHandler.Login)
		user.POST("/logout", userHandler.Logout)
		user.GET("/all", userHandler.ListAll)
		user.PATCH("/update", authRequired, userHandler.Update)
		user.GET("/me", authRequired, userHandler.Me)
	}

	feedback := api.Group("/feedback")
	{
		feedback.POST("", authRequired, feedbackHandler.Create)
		feedback.GET("", feedbackHandler.List)
		feedback.GET("/user/:id", feedbackHandler.ListByUser)
		feedback.GET("/:id", feedbackHandler.Get)
		feedback.PATCH("/:id", authRequired, feedbackHandler.Update)
		feedback.DELETE("/:id", authRequired, feedbackHandler.Delete)
	}

	api.GET("/dashboard", dashboardHandler.Get)

	logger.Log.Info("Server starting", zap.String("port", cfg.ServerPort))
	if err := router.Run(cfg.ServerPort); err != nil {
		logger.Log.Fatal("Server failed", zap.Error(err))
	}
}
