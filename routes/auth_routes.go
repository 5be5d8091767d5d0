package routes

import "github.com/gofiber/fiber/v2"

func AuthRoutes(api fiber.Router, d Deps) {
	auth := api.Group("/auth")
	auth.Post("/register", d.Handler.Register)
	auth.Post("/login", d.Handler.Login)
	auth.Post("/logout", d.Protected, d.Handler.Logout)
	auth.Get("/me", d.Protected, d.Handler.Me)
}
