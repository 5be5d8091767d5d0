package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/anjiri1684/teacheron/cache"
)

func JobRoutes(api fiber.Router, d Deps) {
	jobs := api.Group("/jobs")
	jobs.Get("", d.Cache.Middleware(cache.GroupJobs), d.Handler.ListJobs)
	jobs.Post("", d.Protected, d.Handler.CreateJob)
	jobs.Get("/mine", d.Protected, d.Handler.MyJobs)
	jobs.Get("/:id", d.Cache.Middleware(cache.GroupJobs), d.Handler.GetJob)
	jobs.Put("/:id", d.Protected, d.Handler.UpdateJob)
	jobs.Post("/:id/complete", d.Protected, d.Handler.CompleteJob)
	jobs.Post("/:id/cancel", d.Protected, d.Handler.CancelJob)

	bids := jobs.Group("/:id/bids", d.Protected)
	bids.Get("", d.Handler.ListJobBids)
	bids.Post("", d.Handler.SubmitBid)
	bids.Post("/:bidId/accept", d.Handler.AcceptBid)
	bids.Post("/:bidId/reject", d.Handler.RejectBid)

	api.Get("/bids/mine", d.Protected, d.Handler.MyBids)
}
