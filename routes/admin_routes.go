package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/anjiri1684/teacheron/middleware"
)

func AdminRoutes(api fiber.Router, d Deps) {
	admin := api.Group("/admin", d.Protected, middleware.AdminRequired())

	users := admin.Group("/users")
	users.Get("", d.Handler.ListUsers)
	users.Put("/:id/status", d.Handler.SetUserStatus)

	tutors := admin.Group("/tutors")
	tutors.Get("/pending", d.Handler.ListPendingTutors)
	tutors.Put("/:id/approval", d.Handler.DecideTutor)

	admin.Delete("/reviews/:id", d.Handler.DeleteReview)
}
