package handler

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/krishkalaria12/snap-album/access"
	"github.com/krishkalaria12/snap-album/apperr"
	"github.com/krishkalaria12/snap-album/auth"
	"github.com/krishkalaria12/snap-album/middleware"
	"github.com/krishkalaria12/snap-album/repository"
	"github.com/krishkalaria12/snap-album/storage"
)

const usernameTaken = "Username already exists"

func (h *Handler) ListUsers(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return failErr(c, err)
	}
	if err := access.AdminOnly(p).Err("Forbidden"); err != nil {
		return failErr(c, err)
	}

	users, err := h.users.FindAll(c.UserContext())
	if err != nil {
		return failErr(c, err)
	}
	return c.JSON(users)
}

func (h *Handler) GetUser(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return failErr(c, err)
	}
	id, err := parseID(c, "user_id")
	if err != nil {
		return failErr(c, err)
	}
	if err := access.SelfOrAdmin(p, id).Err("Forbidden"); err != nil {
		return failErr(c, err)
	}

	user, err := h.users.FindByID(c.UserContext(), id)
	if err != nil {
		return failErr(c, err)
	}
	return c.JSON(user)
}

func (h *Handler) CreateUser(c *fiber.Ctx) error {
	type NewUser struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	input := new(NewUser)
	if err := c.BodyParser(input); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid JSON body")
	}
	if input.Username == "" || input.Password == "" {
		return fail(c, fiber.StatusBadRequest, "Username, password must be provided")
	}

	id, err := h.auth.CreateUser(c.UserContext(), input.Username, input.Password)
	if errors.Is(err, apperr.ErrConflict) {
		return fail(c, fiber.StatusConflict, usernameTaken)
	}
	if err != nil {
		return failErr(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User created successfully",
		"user_id": id,
	})
}

func (h *Handler) UpdateUser(c *fiber.Ctx) error {
	type UpdateUser struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}

	p, err := principal(c)
	if err != nil {
		return failErr(c, err)
	}
	id, err := parseID(c, "user_id")
	if err != nil {
		return failErr(c, err)
	}

	input := new(UpdateUser)
	if err := c.BodyParser(input); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid JSON body")
	}
	if err := access.SelfOrAdmin(p, id).Err("Forbidden"); err != nil {
		return failErr(c, err)
	}

	var update repository.UserUpdate
	if input.Username != "" {
		update.Username = &input.Username
	}
	if input.Password != "" {
		hash, err := auth.HashPassword(input.Password)
		if err != nil {
			return failErr(c, apperr.Storage("hash password", err))
		}
		update.PasswordHash = &hash
	}
	if input.Role != "" {
		if err := access.AdminOnly(p).Err("Forbidden"); err != nil {
			return failErr(c, err)
		}
		role := access.Role(input.Role)
		if !role.Valid() {
			return fail(c, fiber.StatusBadRequest, "Invalid role")
		}
		update.Role = &role
	}
	if update.Empty() {
		return fail(c, fiber.StatusBadRequest, "No fields to update")
	}

	err = h.users.Update(c.UserContext(), id, update)
	if errors.Is(err, apperr.ErrConflict) {
		return fail(c, fiber.StatusConflict, usernameTaken)
	}
	if err != nil {
		return failErr(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DeleteUser removes the account with everything it owns, then its files.
func (h *Handler) DeleteUser(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return failErr(c, err)
	}
	id, err := parseID(c, "user_id")
	if err != nil {
		return failErr(c, err)
	}
	if err := access.SelfOrAdmin(p, id).Err("Forbidden"); err != nil {
		return failErr(c, err)
	}

	if err := h.users.Delete(c.UserContext(), id); err != nil {
		return failErr(c, err)
	}

	if err := h.store.DeletePrefix(c.UserContext(), storage.UserPrefix(id)); err != nil {
		log.Printf("Failed to remove files of user %d: %v", id, err)
	}
	if id == p.UserID {
		if err := middleware.EndSession(c, h.sessions); err != nil {
			log.Printf("Failed to destroy session: %v", err)
		}
	}
	return c.SendStatus(fiber.StatusNoContent)
}
