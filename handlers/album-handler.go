package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/krishkalaria12/snap-album/apperr"
	"github.com/krishkalaria12/snap-album/models"
	"github.com/krishkalaria12/snap-album/repository"
)

const (
	albumNotFoundDenied = "Album not found or access denied"
	missingTitle        = "Invalid JSON body or missing title"
)

type albumInput struct {
	Title string `json:"title"`
}

func (h *Handler) CreateAlbum(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return failErr(c, err)
	}

	var input albumInput
	if err := c.BodyParser(&input); err != nil || input.Title == "" {
		return fail(c, fiber.StatusBadRequest, missingTitle)
	}

	album := models.Album{UserID: p.UserID, Title: input.Title}
	if err := h.albums.Create(c.UserContext(), &album); err != nil {
		return failErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Album created successfully",
		"album_id": album.AlbumID,
	})
}

func (h *Handler) ListAlbums(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return failErr(c, err)
	}

	albums, err := h.albums.FindAllByOwner(c.UserContext(), p.UserID)
	if err != nil {
		return failErr(c, err)
	}
	return c.JSON(albums)
}

func (h *Handler) GetAlbum(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return failErr(c, err)
	}
	id, err := parseID(c, "album_id")
	if err != nil {
		return failErr(c, err)
	}

	album, err := h.albums.FindByID(c.UserContext(), id, p.UserID)
	if err != nil {
		return failErr(c, err)
	}
	return c.JSON(album)
}

func (h *Handler) UpdateAlbum(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return failErr(c, err)
	}
	id, err := parseID(c, "album_id")
	if err != nil {
		return failErr(c, err)
	}

	var input albumInput
	if err := c.BodyParser(&input); err != nil || input.Title == "" {
		return fail(c, fiber.StatusBadRequest, missingTitle)
	}

	err = h.albums.Update(c.UserContext(), id, p.UserID, repository.AlbumUpdate{Title: &input.Title})
	if err != nil {
		return failErr(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) DeleteAlbum(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return failErr(c, err)
	}
	id, err := parseID(c, "album_id")
	if err != nil {
		return failErr(c, err)
	}

	if err := h.albums.Delete(c.UserContext(), id, p.UserID); err != nil {
		return failErr(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) GetPhotosFromAlbum(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return failErr(c, err)
	}
	id, err := parseID(c, "album_id")
	if err != nil {
		return failErr(c, err)
	}

	photos := make([]models.Photo, 0)
	err = h.albumPhotos.ListRight(c.UserContext(), id, p.UserID, &photos)
	if errors.Is(err, apperr.ErrNotFoundOrForbidden) {
		return fail(c, fiber.StatusNotFound, albumNotFoundDenied)
	}
	if err != nil {
		return failErr(c, err)
	}
	return c.JSON(newPhotoResponses(photos))
}

func (h *Handler) AddPhotoToAlbum(c *fiber.Ctx) error {
	type PhotoRef struct {
		PhotoID flexID `json:"photo_id"`
	}

	p, err := principal(c)
	if err != nil {
		return failErr(c, err)
	}
	id, err := parseID(c, "album_id")
	if err != nil {
		return failErr(c, err)
	}

	var input PhotoRef
	if err := c.BodyParser(&input); err != nil || input.PhotoID == 0 {
		return fail(c, fiber.StatusBadRequest, "Invalid JSON body or missing photo_id")
	}

	if err := h.albumPhotos.Link(c.UserContext(), id, uint(input.PhotoID), p.UserID); err != nil {
		return failErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Photo added to album successfully"})
}

func (h *Handler) RemovePhotoFromAlbum(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return failErr(c, err)
	}
	albumID, err := parseID(c, "album_id")
	if err != nil {
		return failErr(c, err)
	}
	photoID, err := parseID(c, "photo_id")
	if err != nil {
		return failErr(c, err)
	}

	if err := h.albumPhotos.Unlink(c.UserContext(), albumID, photoID, p.UserID); err != nil {
		return failErr(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) ListAlbumTags(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return failErr(c, err)
	}

	pairs, err := h.albumTags.ListAllByOwner(c.UserContext(), p.UserID)
	if err != nil {
		return failErr(c, err)
	}
	return c.JSON(pairsJSON(pairs, "album_id", "tag_id"))
}

func (h *Handler) GetTagsForAlbum(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return failErr(c, err)
	}
	id, err := parseID(c, "album_id")
	if err != nil {
		return failErr(c, err)
	}

	tags := make([]models.Tag, 0)
	err = h.albumTags.ListRight(c.UserContext(), id, p.UserID, &tags)
	if errors.Is(err, apperr.ErrNotFoundOrForbidden) {
		return fail(c, fiber.StatusForbidden, albumNotFoundDenied)
	}
	if err != nil {
		return failErr(c, err)
	}
	return c.JSON(tags)
}

func (h *Handler) AddTagToAlbum(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return failErr(c, err)
	}
	id, err := parseID(c, "album_id")
	if err != nil {
		return failErr(c, err)
	}

	var input tagRef
	if err := c.BodyParser(&input); err != nil || input.TagID == 0 {
		return fail(c, fiber.StatusBadRequest, "Invalid JSON body or missing tag_id")
	}

	if err := h.albumTags.Link(c.UserContext(), id, uint(input.TagID), p.UserID); err != nil {
		return failErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Tag added to album successfully"})
}

func (h *Handler) RemoveTagFromAlbum(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return failErr(c, err)
	}
	albumID, err := parseID(c, "album_id")
	if err != nil {
		return failErr(c, err)
	}
	tagID, err := parseID(c, "tag_id")
	if err != nil {
		return failErr(c, err)
	}

	if err := h.albumTags.Unlink(c.UserContext(), albumID, tagID, p.UserID); err != nil {
		return failErr(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
