package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/anjiri1684/teacheron/validation"
)

// SearchTutors lists approved tutors. Query: subject, location, sort, page, limit.
func (h *Handler) SearchTutors(c *fiber.Ctx) error {
	var req validation.TutorSearchRequest
	if err := parseQuery(c, &req); err != nil {
		return err
	}
	page, err := h.svc.Tutors.Search(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": "success", "data": page.Data, "meta": page.Meta})
}

func (h *Handler) GetTutor(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	profile, err := h.svc.Tutors.GetApproved(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": "success", "data": profile})
}

func (h *Handler) GetTutorReviews(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	page, err := h.svc.Reviews.ListForTutor(c.UserContext(), id, c.QueryInt("page", 1), c.QueryInt("limit", 20))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": "success", "data": page.Data, "meta": page.Meta})
}

func (h *Handler) GetMyTutorProfile(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	profile, err := h.svc.Tutors.GetOwn(c.UserContext(), user)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": "success", "data": profile})
}

func (h *Handler) UpdateMyTutorProfile(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req validation.TutorProfileRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	profile, err := h.svc.Tutors.UpdateOwn(c.UserContext(), user, req)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": "success", "data": profile})
}

func (h *Handler) ResubmitTutorProfile(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	profile, err := h.svc.Tutors.Resubmit(c.UserContext(), user)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": "success", "data": profile})
}
