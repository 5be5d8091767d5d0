package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/anjiri1684/teacheron/validation"
)

func (h *Handler) ListJobs(c *fiber.Ctx) error {
	var req validation.JobSearchRequest
	if err := parseQuery(c, &req); err != nil {
		return err
	}
	page, err := h.svc.Jobs.List(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": "success", "data": page.Data, "meta": page.Meta})
}

func (h *Handler) CreateJob(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req validation.CreateJobRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	job, err := h.svc.Jobs.Create(c.UserContext(), user, req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"status": "success", "data": job})
}

func (h *Handler) GetJob(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	job, err := h.svc.Jobs.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": "success", "data": job})
}

func (h *Handler) UpdateJob(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req validation.UpdateJobRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	job, err := h.svc.Jobs.Update(c.UserContext(), user, id, req)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": "success", "data": job})
}

func (h *Handler) MyJobs(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	jobs, err := h.svc.Jobs.ListMine(c.UserContext(), user)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": "success", "data": jobs})
}

func (h *Handler) CompleteJob(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	job, err := h.svc.Jobs.Complete(c.UserContext(), user, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": "success", "data": job})
}

func (h *Handler) CancelJob(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	job, err := h.svc.Jobs.Cancel(c.UserContext(), user, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": "success", "data": job})
}

func (h *Handler) ListJobBids(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	bids, err := h.svc.Jobs.ListBids(c.UserContext(), user, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": "success", "data": bids})
}

func (h *Handler) SubmitBid(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req validation.CreateBidRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	bid, err := h.svc.Jobs.SubmitBid(c.UserContext(), user, id, req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"status": "success", "data": bid})
}

func (h *Handler) AcceptBid(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	jobID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	bidID, err := paramID(c, "bidId")
	if err != nil {
		return err
	}
	job, err := h.svc.Jobs.AcceptBid(c.UserContext(), user, jobID, bidID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": "success", "data": job})
}

func (h *Handler) RejectBid(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	jobID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	bidID, err := paramID(c, "bidId")
	if err != nil {
		return err
	}
	bid, err := h.svc.Jobs.RejectBid(c.UserContext(), user, jobID, bidID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": "success", "data": bid})
}

func (h *Handler) MyBids(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	bids, err := h.svc.Jobs.ListMyBids(c.UserContext(), user)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": "success", "data": bids})
}
