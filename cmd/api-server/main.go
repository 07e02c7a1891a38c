package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"novelhub/database"
	"novelhub/internal/config"
	"novelhub/internal/events"
	"novelhub/internal/microservices/http-api/handler"
	"novelhub/internal/microservices/http-api/middleware"
	"novelhub/internal/microservices/http-api/repository"
	"novelhub/internal/microservices/http-api/service"
	"novelhub/internal/microservices/websocket"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "could not load config:", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "invalid config:", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	db, err := database.ConnectDB(cfg, logger)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	redisClient, err := events.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		logger.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	// repositories
	userRepo := repository.NewUserRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	novelRepo := repository.NewNovelRepository(db)
	chapterRepo := repository.NewChapterRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	ratingRepo := repository.NewRatingRepository(db)
	favoriteRepo := repository.NewFavoriteRepository(db)

	// services
	publisher := events.NewPublisher(redisClient)
	authService := service.NewAuthService(userRepo, refreshTokenRepo, cfg)
	commentService := service.NewCommentService(commentRepo, novelRepo, chapterRepo, publisher, logger)
	novelService := service.NewNovelService(novelRepo, chapterRepo)
	ratingService := service.NewRatingService(ratingRepo, novelRepo)
	favoriteService := service.NewFavoriteService(favoriteRepo, novelRepo)

	// live push: redis pub/sub feeds the websocket hub so every instance
	// sees comments created on any instance
	hub := websocket.NewHub(logger)
	subscriber := events.NewSubscriber(redisClient, hub, logger)
	subCtx, stopSubscriber := context.WithCancel(context.Background())
	defer stopSubscriber()
	go func() {
		if err := subscriber.Run(subCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("comment event subscriber stopped", "error", err)
		}
	}()

	router := setupRouter(cfg, hub, authService, commentService, novelService, ratingService, favoriteService)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: router,
	}

	go func() {
		logger.Info("api server listening", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	stopSubscriber()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", "error", err)
	}
}

func setupRouter(
	cfg *config.Config,
	hub *websocket.Hub,
	authService service.AuthService,
	commentService service.CommentService,
	novelService service.NovelService,
	ratingService service.RatingService,
	favoriteService service.FavoriteService,
) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(corsMiddleware(cfg.CORSOrigins))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":     "ok",
			"ws_clients": hub.ClientCount(),
			"ws_topics":  hub.TopicCount(),
		})
	})

	router.GET("/ws", websocket.WSHandler(hub))

	authHandler := handler.NewAuthHandler(authService)
	commentHandler := handler.NewCommentHandler(commentService)
	novelHandler := handler.NewNovelHandler(novelService)
	ratingHandler := handler.NewRatingHandler(ratingService)
	favoriteHandler := handler.NewFavoriteHandler(favoriteService)

	public := router.Group("/api")
	{
		authHandler.RegisterRoutes(public)
		novelHandler.RegisterPublicRoutes(public)
		commentHandler.RegisterPublicRoutes(public)
	}

	commentLimiter := middleware.NewRateLimiter(cfg.CommentRateRPS, cfg.CommentRateBurst)
	protected := router.Group("/api")
	protected.Use(middleware.AuthMiddleware(authService))
	protected.Use(commentLimiter.Middleware())
	{
		commentHandler.RegisterProtectedRoutes(protected)
		ratingHandler.RegisterRoutes(protected)
		favoriteHandler.RegisterRoutes(protected)
	}

	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(authService))
	admin.Use(middleware.RequireAdmin())
	{
		novelHandler.RegisterAdminRoutes(admin)
	}

	return router
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if allowed[origin] {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
