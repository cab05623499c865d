package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const missingName = "Invalid JSON body or missing name"

type tagInput struct {
	Name string `json:"name"`
}

func (h *Handler) ListTags(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return failErr(c, err)
	}

	tags, err := h.tags.FindAllByOwner(c.UserContext(), p.UserID)
	if err != nil {
		return failErr(c, err)
	}
	return c.JSON(tags)
}

func (h *Handler) CreateTag(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return failErr(c, err)
	}

	var input tagInput
	if err := c.BodyParser(&input); err != nil || strings.TrimSpace(input.Name) == "" {
		return fail(c, fiber.StatusBadRequest, missingName)
	}

	tag, err := h.tags.Create(c.UserContext(), p.UserID, strings.TrimSpace(input.Name))
	if err != nil {
		return failErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Tag created successfully",
		"tag_id":  tag.TagID,
	})
}

func (h *Handler) RenameTag(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return failErr(c, err)
	}
	id, err := parseID(c, "tag_id")
	if err != nil {
		return failErr(c, err)
	}

	var input tagInput
	if err := c.BodyParser(&input); err != nil || strings.TrimSpace(input.Name) == "" {
		return fail(c, fiber.StatusBadRequest, missingName)
	}

	if err := h.tags.Rename(c.UserContext(), id, p.UserID, strings.TrimSpace(input.Name)); err != nil {
		return failErr(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) DeleteTag(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return failErr(c, err)
	}
	id, err := parseID(c, "tag_id")
	if err != nil {
		return failErr(c, err)
	}

	if err := h.tags.Delete(c.UserContext(), id, p.UserID); err != nil {
		return failErr(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
