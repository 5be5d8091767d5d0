package routes

import "github.com/gofiber/fiber/v2"

func TeacherRoutes(api fiber.Router, d Deps) {
	profile := api.Group("/tutor/profile/me", d.Protected)
	profile.Get("", d.Handler.GetMyTutorProfile)
	profile.Put("", d.Handler.UpdateMyTutorProfile)
	profile.Post("/resubmit", d.Handler.ResubmitTutorProfile)
}
