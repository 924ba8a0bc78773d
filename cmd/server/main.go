package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"boarddash/internal/cache"
	"boarddash/internal/config"
	"boarddash/internal/db"
	"boarddash/internal/logging"
	"boarddash/internal/router"
	"boarddash/internal/services"
	"boarddash/internal/store"
	"boarddash/internal/utils"
	"boarddash/internal/views"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := logging.Init(cfg.Logging); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	logger := logging.L()
	defer logger.Sync()

	// Initialize Database
	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	if err := db.SeedCategories(conn, cfg.SeedCategories); err != nil {
		logger.Fatal("Failed to seed categories", zap.Error(err))
	}
	sqlDB, err := conn.DB()
	if err != nil {
		logger.Fatal("Failed to get sql.DB", zap.Error(err))
	}

	rdb, err := cache.NewRedisClient(context.Background(), cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect redis", zap.Error(err))
	}
	if rdb == nil {
		logger.Info("REDIS_URL not set, rate limiting disabled")
	} else {
		defer rdb.Close()
	}

	renderCache, err := utils.NewRenderCache(500)
	if err != nil {
		logger.Fatal("Failed to create render cache", zap.Error(err))
	}

	s := store.New(conn)
	reactions := services.NewReactionService(s)

	gin.SetMode(cfg.GinMode)
	r := gin.New()

	// Load Templates using Multitemplate
	renderer, err := views.Load(cfg.TemplatesDir)
	if err != nil {
		logger.Fatal("Failed to load templates", zap.Error(err))
	}
	r.HTMLRender = renderer
	r.Static("/static", cfg.StaticDir)

	router.Setup(r, router.Deps{
		Store:         s,
		Analytics:     services.NewAnalyticsService(s, cfg.Location()),
		Accounts:      services.NewAccountService(s),
		Board:         services.NewBoardService(s, reactions),
		Reactions:     reactions,
		Renderer:      utils.NewContentRenderer(renderCache),
		DB:            sqlDB,
		SessionSecret: cfg.SessionSecret,
		CookieSecure:  cfg.CookieSecure,
		Redis:         rdb,
		RateLimit:     cfg.Redis.RatePerMinute,
		RateWindow:    cfg.Redis.RateLimitWindow,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", zap.String("port", cfg.Port), zap.String("timezone", cfg.TimeZone))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
}
