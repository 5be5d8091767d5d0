package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/anjiri1684/teacheron/cache"
	"github.com/anjiri1684/teacheron/handlers"
	"github.com/anjiri1684/teacheron/websocket"
)

// Deps carries what the route groups mount.
type Deps struct {
	Handler   *handlers.Handler
	Protected fiber.Handler
	Cache     *cache.ResponseCache
	Hub       *websocket.Hub
}

// Register mounts every API route under /api.
func Register(app *fiber.App, d Deps) {
	api := app.Group("/api")

	AuthRoutes(api, d)
	ProfileRoutes(api, d)
	PublicRoutes(api, d)
	TeacherRoutes(api, d)
	JobRoutes(api, d)
	MessagingRoutes(api, d)
	ReviewRoutes(api, d)
	AdminRoutes(api, d)
	UploadRoutes(api, d)
}
