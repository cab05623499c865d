package middleware

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/krishkalaria12/snap-album/access"
	"github.com/krishkalaria12/snap-album/apperr"
	"github.com/krishkalaria12/snap-album/models"
)

const principalKey = "principal"

type TokenParser interface {
	ParseToken(tokenStr string) (access.Principal, error)
}

type UserFinder interface {
	FindByID(ctx context.Context, userID uint) (models.User, error)
}

// AuthMiddleware accepts either a bearer token or a session cookie and
// stores the principal in the request locals. The user row is reloaded on
// every request: a deleted user is a 401 and the role always comes from the
// row, not from the token or session.
func AuthMiddleware(store *session.Store, tokens TokenParser, users UserFinder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var p access.Principal
		authHeader := c.Get(fiber.HeaderAuthorization)

		if tokenStr, ok := strings.CutPrefix(authHeader, "Bearer "); ok && tokenStr != "" {
			var err error
			if p, err = tokens.ParseToken(tokenStr); err != nil {
				return unauthorized(c)
			}
		} else {
			var ok bool
			if p, ok = sessionPrincipal(c, store); !ok {
				return unauthorized(c)
			}
		}

		user, err := users.FindByID(c.UserContext(), p.UserID)
		if errors.Is(err, apperr.ErrNotFound) {
			return unauthorized(c)
		}
		if err != nil {
			log.Printf("%s %s: load user %d: %v", c.Method(), c.Path(), p.UserID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
		}

		c.Locals(principalKey, access.Principal{
			UserID:   user.UserID,
			Username: user.Username,
			Role:     access.ParseRole(user.Role),
		})
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
}

// Principal returns the identity AuthMiddleware attached to c.
func Principal(c *fiber.Ctx) (access.Principal, bool) {
	p, ok := c.Locals(principalKey).(access.Principal)
	return p, ok && p.UserID != 0
}
