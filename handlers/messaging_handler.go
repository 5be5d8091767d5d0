package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/anjiri1684/teacheron/validation"
)

func (h *Handler) SendMessage(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req validation.SendMessageRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	msg, err := h.svc.Messages.Send(c.UserContext(), user, req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"status": "success", "data": msg})
}

func (h *Handler) GetConversations(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	list, err := h.svc.Messages.Conversations(c.UserContext(), user)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": "success", "data": list})
}

func (h *Handler) GetConversation(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	other, err := paramID(c, "userId")
	if err != nil {
		return err
	}
	msgs, err := h.svc.Messages.Conversation(c.UserContext(), user, other)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": "success", "data": msgs})
}

func (h *Handler) MarkConversationRead(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	other, err := paramID(c, "userId")
	if err != nil {
		return err
	}
	n, err := h.svc.Messages.MarkRead(c.UserContext(), user, other)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": "success", "marked": n})
}

func (h *Handler) UnreadCount(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	n, err := h.svc.Messages.UnreadCount(c.UserContext(), user)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": "success", "unread": n})
}
