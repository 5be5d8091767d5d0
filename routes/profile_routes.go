package routes

import "github.com/gofiber/fiber/v2"

func ProfileRoutes(api fiber.Router, d Deps) {
	users := api.Group("/users", d.Protected)
	users.Put("/me", d.Handler.UpdateMe)
	users.Post("/me/presence", d.Handler.Presence)
	users.Get("/:id", d.Handler.GetUser)
}
