package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/anjiri1684/teacheron/apperrors"
	config "github.com/anjiri1684/teacheron/configs"
	"github.com/anjiri1684/teacheron/middleware"
	"github.com/anjiri1684/teacheron/models"
	"github.com/anjiri1684/teacheron/services"
)

// Handler adapts HTTP requests to service calls. It holds no state of its own.
type Handler struct {
	svc    *services.Services
	cfg    *config.Config
	logger *slog.Logger
}

func New(svc *services.Services, cfg *config.Config, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, cfg: cfg, logger: logger}
}

func currentUser(c *fiber.Ctx) (*models.User, error) {
	user := middleware.CurrentUser(c)
	if user == nil {
		return nil, apperrors.Unauthenticated("not signed in")
	}
	return user, nil
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "cannot parse request body")
	}
	return nil
}

func parseQuery(c *fiber.Ctx, out any) error {
	if err := c.QueryParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid query parameters")
	}
	return nil
}

func paramID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	return services.ParseID(name, c.Params(name))
}

// ErrorHandler renders every error as {"status":"error","code","message"}.
// Validation errors add "fields"; unexpected errors are logged and reported
// without detail.
func ErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		body := fiber.Map{"status": "error"}

		var fe *fiber.Error
		var verr *apperrors.ValidationError
		code := apperrors.HTTPStatus(err)
		switch {
		case errors.As(err, &fe):
			code = fe.Code
			body["message"] = fe.Message
		case errors.As(err, &verr):
			body["message"] = "validation failed"
			body["fields"] = verr.FieldMap()
		case code == fiber.StatusInternalServerError:
			logger.ErrorContext(c.UserContext(), "request failed",
				"method", c.Method(), "path", c.Path(), "error", err)
			body["message"] = "internal server error"
		default:
			body["message"] = err.Error()
		}
		body["code"] = code
		return c.Status(code).JSON(body)
	}
}
