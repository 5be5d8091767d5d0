package routes

import "github.com/gofiber/fiber/v2"

func ReviewRoutes(api fiber.Router, d Deps) {
	api.Post("/reviews", d.Protected, d.Handler.CreateReview)
}
