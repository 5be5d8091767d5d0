package middleware

import (
	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v3"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/anjiri1684/teacheron/apperrors"
	"github.com/anjiri1684/teacheron/models"
	"github.com/anjiri1684/teacheron/services"
)

// CurrentUserKey is the Locals key holding the authenticated *models.User.
const CurrentUserKey = "currentUser"

// Protected verifies the JWT from the Authorization header or the session
// cookie and loads the account it names.
func Protected(secret, cookieName string, users *services.UserService) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:     []byte(secret),
		TokenLookup:    "header:Authorization,cookie:" + cookieName,
		AuthScheme:     "Bearer",
		ErrorHandler:   jwtError,
		SuccessHandler: loadUser(users),
	})
}

func jwtError(c *fiber.Ctx, err error) error {
	if err.Error() == "Missing or malformed JWT" {
		return apperrors.Unauthenticated("missing or malformed token")
	}
	return apperrors.Unauthenticated("invalid or expired token")
}

func loadUser(users *services.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := c.Locals("user").(*jwt.Token)
		if !ok {
			return apperrors.Unauthenticated("missing token")
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return apperrors.Unauthenticated("invalid token claims")
		}
		raw, _ := claims["user_id"].(string)
		id, err := uuid.Parse(raw)
		if err != nil {
			return apperrors.Unauthenticated("invalid token subject")
		}

		user, err := users.Get(c.UserContext(), id)
		if err != nil {
			if apperrors.HTTPStatus(err) == fiber.StatusNotFound {
				return apperrors.Unauthenticated("account no longer exists")
			}
			return err
		}
		if user.IsBanned() {
			return apperrors.Forbidden("account is banned")
		}

		c.Locals(CurrentUserKey, user)
		return c.Next()
	}
}

// CurrentUser returns the account loaded by Protected, or nil.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(CurrentUserKey).(*models.User)
	return user
}

func AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return apperrors.Unauthenticated("not signed in")
		}
		if user.Role != models.RoleAdmin {
			return apperrors.Forbidden("admin access required")
		}
		return c.Next()
	}
}
