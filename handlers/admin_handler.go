package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/anjiri1684/teacheron/models"
	"github.com/anjiri1684/teacheron/validation"
)

func (h *Handler) ListUsers(c *fiber.Ctx) error {
	admin, err := currentUser(c)
	if err != nil {
		return err
	}
	var req validation.UserSearchRequest
	if err := parseQuery(c, &req); err != nil {
		return err
	}
	page, err := h.svc.Admin.ListUsers(c.UserContext(), admin, req)
	if err != nil {
		return err
	}
	users := make([]models.AdminUserView, len(page.Data))
	for i := range page.Data {
		users[i] = page.Data[i].AdminView()
	}
	return c.JSON(fiber.Map{"status": "success", "data": users, "meta": page.Meta})
}

func (h *Handler) SetUserStatus(c *fiber.Ctx) error {
	admin, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req validation.UserStatusRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, err := h.svc.Admin.SetUserStatus(c.UserContext(), admin, id, req)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": "success", "data": user.AdminView()})
}

func (h *Handler) ListPendingTutors(c *fiber.Ctx) error {
	admin, err := currentUser(c)
	if err != nil {
		return err
	}
	profiles, err := h.svc.Admin.ListPendingTutors(c.UserContext(), admin)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": "success", "data": profiles})
}

func (h *Handler) DecideTutor(c *fiber.Ctx) error {
	admin, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req validation.ApprovalDecisionRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	profile, err := h.svc.Admin.DecideTutor(c.UserContext(), admin, id, req)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": "success", "data": profile})
}

func (h *Handler) DeleteReview(c *fiber.Ctx) error {
	admin, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Reviews.Delete(c.UserContext(), admin, id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
