package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/anjiri1684/teacheron/validation"
)

func (h *Handler) CreateReview(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req validation.CreateReviewRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	review, err := h.svc.Reviews.Create(c.UserContext(), user, req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"status": "success", "data": review})
}
