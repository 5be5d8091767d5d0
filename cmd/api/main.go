package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/anjiri1684/teacheron/cache"
	config "github.com/anjiri1684/teacheron/configs"
	"github.com/anjiri1684/teacheron/database"
	"github.com/anjiri1684/teacheron/events"
	"github.com/anjiri1684/teacheron/handlers"
	"github.com/anjiri1684/teacheron/jobs"
	"github.com/anjiri1684/teacheron/middleware"
	"github.com/anjiri1684/teacheron/notifications"
	"github.com/anjiri1684/teacheron/routes"
	"github.com/anjiri1684/teacheron/services"
	"github.com/anjiri1684/teacheron/validation"
	"github.com/anjiri1684/teacheron/websocket"
)

func main() {
	cfg := config.Load()
	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	if cfg.JWTSecret == "" {
		logger.Error("JWT_SECRET must be set")
		os.Exit(1)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		logger.Error("migration failed", "error", err)
		os.Exit(1)
	}
	if err := database.SeedAdmin(db, cfg, logger); err != nil {
		logger.Error("admin seed failed", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Error("invalid REDIS_URL", "error", err)
			os.Exit(1)
		}
		redisClient = redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unavailable, response cache disabled", "error", err)
			redisClient.Close()
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}
	responseCache := cache.New(redisClient, cfg.CacheTTL, logger)

	bus := events.NewBus(logger)
	defer bus.Close()

	svc := services.New(services.Deps{
		DB:        db,
		Validator: validation.New(),
		Events:    bus,
		Cache:     responseCache,
		Logger:    logger,
		Auth:      services.AuthConfig{JWTSecret: cfg.JWTSecret, JWTExpiry: cfg.JWTExpiry},
	})

	hub := websocket.NewHub(svc.Users, cfg.PresenceTimeout/2, logger)
	go hub.Run(ctx)

	dispatcher := notifications.NewDispatcher(bus, svc.Users, notifications.NewMailer(cfg, logger), hub, logger)
	if err := dispatcher.Start(ctx); err != nil {
		logger.Error("notification dispatcher failed", "error", err)
		os.Exit(1)
	}

	scheduler, err := jobs.NewScheduler(cfg, svc, logger)
	if err != nil {
		logger.Error("scheduler setup failed", "error", err)
		os.Exit(1)
	}
	scheduler.Start()

	app := routes.NewApp(cfg, routes.Deps{
		Handler:   handlers.New(svc, cfg, logger),
		Protected: middleware.Protected(cfg.JWTSecret, cfg.CookieName, svc.Users),
		Cache:     responseCache,
		Hub:       hub,
	}, logger)

	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		<-scheduler.Stop().Done()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Error("server shutdown failed", "error", err)
		}
	}()

	logger.Info("server starting", "port", cfg.Port, "env", cfg.Environment)
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
