// backend/cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/placement-portal/campus-assist/internal/api/handlers"
	"github.com/placement-portal/campus-assist/internal/chat"
	"github.com/placement-portal/campus-assist/internal/config"
	"github.com/placement-portal/campus-assist/internal/database"
	"github.com/placement-portal/campus-assist/internal/health"
	"github.com/placement-portal/campus-assist/internal/knowledge"
	"github.com/placement-portal/campus-assist/internal/middleware"
	"github.com/placement-portal/campus-assist/internal/migration"
	"github.com/placement-portal/campus-assist/internal/openrouter"
	"github.com/placement-portal/campus-assist/internal/repository"
	"github.com/placement-portal/campus-assist/internal/services"
	"github.com/placement-portal/campus-assist/pkg/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	utils.InitLogger()
	logger := utils.GetLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}
	if err := cfg.ValidateOpenRouter(); err != nil {
		logger.WithError(err).Fatal("Invalid configuration")
	}

	dbManager, err := database.NewManager(&database.Config{
		DatabaseURL: cfg.Database.URL,
		RedisURL:    cfg.Redis.URL,
		LogLevel:    os.Getenv("LOG_LEVEL"),
	}, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer dbManager.Close()

	migrator := migration.NewRunner(dbManager, logger)
	if err := migrator.RunMigrations("migrations"); err != nil {
		logger.WithError(err).Fatal("Database migration failed")
	}

	repoManager := repository.NewRepositoryManager(dbManager.DB)
	cache := database.NewCache(dbManager.Redis, logger)

	completer := openrouter.NewClient(
		cfg.OpenRouter.BaseURL,
		cfg.OpenRouter.APIKey,
		cfg.OpenRouter.Referer,
		cfg.OpenRouter.AppTitle,
		logger,
	)
	searcher := knowledge.NewService(
		knowledge.NewClient(cfg.VectorSearch.BaseURL, cfg.VectorSearch.APIKey, logger),
		logger,
	)
	orchestrator := chat.NewOrchestrator(completer, cfg.OpenRouter.PrimaryModel, cfg.OpenRouter.FallbackModel, logger)

	chatService := services.NewChatService(
		orchestrator,
		searcher,
		repoManager.StudentContext,
		repoManager.Conversation,
		repoManager.ChatQuery,
		logger,
	)
	chatHandler := handlers.NewChatHandler(chatService, cache, logger)

	healthChecker := health.NewHealthChecker(dbManager, repoManager.SystemHealth, logger, cfg.OpenRouter.BaseURL, cfg.VectorSearch.BaseURL)

	healthCtx, stopHealth := context.WithCancel(context.Background())
	defer stopHealth()
	go healthChecker.PeriodicHealthCheck(healthCtx, 30*time.Second)

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORS(cfg.Server.AllowedOrigin))

	rateLimiter := middleware.NewRateLimiter(cfg.Server.RateLimit)

	router.GET("/health", func(c *gin.Context) {
		if cached, err := healthChecker.CheckCached(c.Request.Context()); err == nil {
			c.JSON(http.StatusOK, cached)
			return
		}
		c.JSON(http.StatusOK, healthChecker.CheckAll())
	})

	api := router.Group("/api/v1")
	api.Use(rateLimiter.RateLimit())
	{
		api.POST("/chat", chatHandler.HandleChat)
		api.GET("/suggestions", chatHandler.HandleSuggestions)
		api.GET("/capabilities", chatHandler.HandleCapabilities)
		api.GET("/cache/stats", chatHandler.HandleCacheStats)
	}

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("Starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	stopHealth()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Forced shutdown")
	}

	logger.Info("Server stopped")
}
