package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/anjiri1684/teacheron/validation"
)

func (h *Handler) Register(c *fiber.Ctx) error {
	var req validation.RegisterRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, err := h.svc.Users.Register(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"status": "success", "data": user})
}

// Login returns the token in the body and also sets it as an HttpOnly cookie
// so browser clients can rely on credentials: include.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req validation.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, token, err := h.svc.Users.Authenticate(c.UserContext(), req)
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.cfg.JWTExpiry),
		HTTPOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(fiber.Map{"status": "success", "token": token, "data": user})
}

func (h *Handler) Logout(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.svc.Users.SetPresence(c.UserContext(), user.ID, false); err != nil {
		h.logger.WarnContext(c.UserContext(), "presence update failed", "user_id", user.ID, "error", err)
	}
	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(fiber.Map{"status": "success", "message": "logged out"})
}

func (h *Handler) Me(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": "success", "data": user})
}
