package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/anjiri1684/teacheron/validation"
)

func (h *Handler) GetUser(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	user, err := h.svc.Users.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": "success", "data": user})
}

func (h *Handler) UpdateMe(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req validation.UpdateUserRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	updated, err := h.svc.Users.UpdateProfile(c.UserContext(), user, req)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": "success", "data": updated})
}

// Presence is the HTTP heartbeat for clients that do not hold a websocket.
func (h *Handler) Presence(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req validation.PresenceRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := h.svc.Users.Heartbeat(c.UserContext(), user, req.Online); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": "success", "online": req.Online})
}
