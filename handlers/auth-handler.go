package handler

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/krishkalaria12/snap-album/auth"
	"github.com/krishkalaria12/snap-album/middleware"
)

// Login checks the credentials, starts a session and also hands out a bearer
// token for clients that do not keep cookies.
func (h *Handler) Login(c *fiber.Ctx) error {
	type LoginData struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	input := new(LoginData)
	if err := c.BodyParser(input); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid JSON body")
	}
	if input.Username == "" || input.Password == "" {
		return fail(c, fiber.StatusBadRequest, "Username and password must be provided")
	}

	p, err := h.auth.Authenticate(c.UserContext(), input.Username, input.Password)
	if err != nil {
		if auth.IsInvalidCredentials(err) {
			return fail(c, fiber.StatusUnauthorized, "Invalid username or password")
		}
		return failErr(c, err)
	}

	tokenStr, err := h.auth.IssueToken(p)
	if err != nil {
		return failErr(c, err)
	}

	if err := middleware.StartSession(c, h.sessions, p); err != nil {
		log.Printf("Failed to start session for user %d: %v", p.UserID, err)
		return fail(c, fiber.StatusInternalServerError, internalError)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message":  "Login successful",
		"user_id":  p.UserID,
		"username": p.Username,
		"role":     p.Role,
		"token":    tokenStr,
	})
}

func (h *Handler) Logout(c *fiber.Ctx) error {
	if err := middleware.EndSession(c, h.sessions); err != nil {
		log.Printf("Failed to destroy session: %v", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) Me(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return failErr(c, err)
	}
	return c.JSON(p)
}
