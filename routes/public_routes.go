package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/anjiri1684/teacheron/cache"
)

// PublicRoutes are the anonymous tutor discovery endpoints. Responses are
// cached until a tutor profile or review changes.
func PublicRoutes(api fiber.Router, d Deps) {
	tutors := api.Group("/tutors", d.Cache.Middleware(cache.GroupTutors))
	tutors.Get("", d.Handler.SearchTutors)
	tutors.Get("/:id", d.Handler.GetTutor)
	tutors.Get("/:id/reviews", d.Handler.GetTutorReviews)
}
