package routes

import "github.com/gofiber/fiber/v2"

func UploadRoutes(api fiber.Router, d Deps) {
	api.Get("/uploads/signature", d.Protected, d.Handler.UploadSignature)
}
