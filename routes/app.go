package routes

import (
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	config "github.com/anjiri1684/teacheron/configs"
	"github.com/anjiri1684/teacheron/handlers"
	"github.com/anjiri1684/teacheron/metrics"
)

// NewApp builds the Fiber application with the shared middleware stack and
// every route mounted.
func NewApp(cfg *config.Config, d Deps, log *slog.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:       "TeacherOn",
		CaseSensitive: true,
		ReadTimeout:   15 * time.Second,
		WriteTimeout:  15 * time.Second,
		IdleTimeout:   60 * time.Second,
		ErrorHandler:  handlers.ErrorHandler(log),
	})

	app.Use(recover.New())
	app.Use(cors.New(corsConfig(cfg.CORSOrigins)))
	if !cfg.IsProduction() || cfg.LogLevel == "debug" {
		app.Use(logger.New(logger.Config{
			TimeFormat: "2006-01-02 15:04:05",
			TimeZone:   "UTC",
			Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		}))
	}
	app.Use(metrics.Middleware())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", metrics.Handler())

	Register(app, d)
	return app
}

// corsConfig allows credentials only for an explicit origin list. A wildcard
// anywhere in the list opens the API to every origin without cookies.
func corsConfig(origins string) cors.Config {
	cfg := cors.Config{
		AllowOrigins:     strings.TrimSpace(origins),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowMethods:     "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		AllowCredentials: true,
		MaxAge:           86400,
	}
	if cfg.AllowOrigins == "" {
		cfg.AllowOrigins = "*"
	}
	for _, o := range strings.Split(cfg.AllowOrigins, ",") {
		if strings.TrimSpace(o) == "*" {
			cfg.AllowOrigins = "*"
			cfg.AllowCredentials = false
			break
		}
	}
	return cfg
}
