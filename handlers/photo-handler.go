package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"mime/multipart"
	"path"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/krishkalaria12/snap-album/access"
	"github.com/krishkalaria12/snap-album/apperr"
	"github.com/krishkalaria12/snap-album/models"
	"github.com/krishkalaria12/snap-album/repository"
	"github.com/krishkalaria12/snap-album/storage"
	"gorm.io/datatypes"
)

const (
	photoNotFound       = "Photo not found"
	photoNotFoundDenied = "Photo not found or access denied"
)

type photoResponse struct {
	PhotoID     uint            `json:"photo_id"`
	UserID      uint            `json:"user_id"`
	Filepath    string          `json:"filepath"`
	Title       string          `json:"title"`
	CaptureDate string          `json:"capture_date"`
	CaptureTime *datatypes.Time `json:"capture_time"`
	Latitude    *float64        `json:"latitude"`
	Longitude   *float64        `json:"longitude"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func newPhotoResponse(p models.Photo) photoResponse {
	return photoResponse{
		PhotoID:     p.PhotoID,
		UserID:      p.UserID,
		Filepath:    p.Filepath,
		Title:       p.Title,
		CaptureDate: time.Time(p.CaptureDate).Format(time.DateOnly),
		CaptureTime: p.CaptureTime,
		Latitude:    p.Latitude,
		Longitude:   p.Longitude,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func newPhotoResponses(photos []models.Photo) []photoResponse {
	out := make([]photoResponse, 0, len(photos))
	for _, p := range photos {
		out = append(out, newPhotoResponse(p))
	}
	return out
}

func (h *Handler) ListPhotos(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return failErr(c, err)
	}

	photos, err := h.photos.FindAllByOwner(c.UserContext(), p.UserID)
	if err != nil {
		return failErr(c, err)
	}
	return c.JSON(newPhotoResponses(photos))
}

func (h *Handler) GetPhoto(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return failErr(c, err)
	}
	id, err := parseID(c, "photo_id")
	if err != nil {
		return failErr(c, err)
	}

	photo, err := h.photos.FindByID(c.UserContext(), id, p.UserID)
	if errors.Is(err, apperr.ErrNotFoundOrForbidden) {
		return fail(c, fiber.StatusNotFound, photoNotFound)
	}
	if err != nil {
		return failErr(c, err)
	}
	return c.JSON(newPhotoResponse(photo))
}

func (h *Handler) DownloadPhoto(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return failErr(c, err)
	}
	id, err := parseID(c, "photo_id")
	if err != nil {
		return failErr(c, err)
	}

	photo, err := h.photos.FindByID(c.UserContext(), id, p.UserID)
	if err != nil {
		return failErr(c, err)
	}
	if !access.OwnerOnly(p, photo.UserID).Allowed() {
		return fail(c, fiber.StatusNotFound, photoNotFoundDenied)
	}

	rc, err := h.store.Open(c.UserContext(), photo.Filepath)
	if errors.Is(err, storage.ErrNotFound) {
		log.Printf("File %s of photo %d is missing", photo.Filepath, photo.PhotoID)
		return fail(c, fiber.StatusNotFound, photoNotFoundDenied)
	}
	if err != nil {
		return failErr(c, apperr.Storage("open photo file", err))
	}

	c.Attachment(path.Base(photo.Filepath))
	return c.SendStream(rc)
}

type photoMetadata struct {
	Title       string                         `json:"title"`
	CaptureDate string                         `json:"capture_date"`
	CaptureTime string                         `json:"capture_time"`
	Latitude    repository.Nullable[flexFloat] `json:"latitude"`
	Longitude   repository.Nullable[flexFloat] `json:"longitude"`
}

// uploadedFile returns the "file" part, or the first file part of any name.
func uploadedFile(form *multipart.Form) *multipart.FileHeader {
	if files := form.File["file"]; len(files) > 0 {
		return files[0]
	}
	for _, files := range form.File {
		if len(files) > 0 {
			return files[0]
		}
	}
	return nil
}

func (md photoMetadata) photo(ownerID uint, key string) (models.Photo, error) {
	photo := models.Photo{UserID: ownerID, Filepath: key, Title: md.Title}

	date, err := parseDate(md.CaptureDate)
	if err != nil {
		return models.Photo{}, err
	}
	photo.CaptureDate = date

	if md.CaptureTime != "" {
		t, err := parseTimeOfDay(md.CaptureTime)
		if err != nil {
			return models.Photo{}, err
		}
		photo.CaptureTime = &t
	}

	lat, err := coordinate("latitude", md.Latitude, 90)
	if err != nil {
		return models.Photo{}, err
	}
	lng, err := coordinate("longitude", md.Longitude, 180)
	if err != nil {
		return models.Photo{}, err
	}
	if lat.Valid {
		photo.Latitude = &lat.Value
	}
	if lng.Valid {
		photo.Longitude = &lng.Value
	}
	return photo, nil
}

func (h *Handler) saveUpload(ctx context.Context, file *multipart.FileHeader, key string) error {
	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()
	return h.store.Save(ctx, key, src)
}

// UploadPhoto writes the file first and then inserts its row; when the insert
// fails the file is deleted again. No transaction is held open while the file
// is written.
func (h *Handler) UploadPhoto(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return failErr(c, err)
	}

	form, err := c.MultipartForm()
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "No file uploaded")
	}
	file := uploadedFile(form)
	if file == nil {
		return fail(c, fiber.StatusBadRequest, "No file uploaded")
	}

	var raw string
	if values := form.Value["metadata"]; len(values) > 0 {
		raw = values[0]
	}
	if raw == "" {
		return fail(c, fiber.StatusBadRequest, "No metadata provided")
	}
	var md photoMetadata
	if err := json.Unmarshal([]byte(raw), &md); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid metadata")
	}
	if md.Title == "" || md.CaptureDate == "" {
		return fail(c, fiber.StatusBadRequest, "Title and capture date must be provided")
	}

	ext, ok := storage.Extension(file.Filename)
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid file type")
	}

	key := storage.NewPhotoKey(p.UserID, ext)
	photo, err := md.photo(p.UserID, key)
	if err != nil {
		return failErr(c, err)
	}

	ctx := c.UserContext()
	if err := h.saveUpload(ctx, file, key); err != nil {
		return failErr(c, apperr.Storage("store upload", err))
	}
	if err := h.photos.Create(ctx, &photo); err != nil {
		if delErr := h.store.Delete(ctx, key); delErr != nil {
			log.Printf("Failed to remove orphaned file %s: %v", key, delErr)
		}
		return failErr(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Photo uploaded successfully",
		"photo_id": photo.PhotoID,
	})
}

func (h *Handler) UpdatePhoto(c *fiber.Ctx) error {
	type UpdatePhoto struct {
		Title       string                         `json:"title"`
		CaptureDate string                         `json:"capture_date"`
		CaptureTime repository.Nullable[string]    `json:"capture_time"`
		Latitude    repository.Nullable[flexFloat] `json:"latitude"`
		Longitude   repository.Nullable[flexFloat] `json:"longitude"`
	}

	p, err := principal(c)
	if err != nil {
		return failErr(c, err)
	}
	id, err := parseID(c, "photo_id")
	if err != nil {
		return failErr(c, err)
	}

	input := new(UpdatePhoto)
	if err := c.BodyParser(input); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid JSON body")
	}

	var update repository.PhotoUpdate
	if input.Title != "" {
		update.Title = &input.Title
	}
	if input.CaptureDate != "" {
		date, err := parseDate(input.CaptureDate)
		if err != nil {
			return failErr(c, err)
		}
		update.CaptureDate = &date
	}
	switch {
	case input.CaptureTime.Set && !input.CaptureTime.Valid:
		update.CaptureTime = repository.Null[datatypes.Time]()
	case input.CaptureTime.Valid && input.CaptureTime.Value != "":
		t, err := parseTimeOfDay(input.CaptureTime.Value)
		if err != nil {
			return failErr(c, err)
		}
		update.CaptureTime = repository.Some(t)
	}
	if update.Latitude, err = coordinate("latitude", input.Latitude, 90); err != nil {
		return failErr(c, err)
	}
	if update.Longitude, err = coordinate("longitude", input.Longitude, 180); err != nil {
		return failErr(c, err)
	}

	if update.Empty() {
		return fail(c, fiber.StatusBadRequest, "No valid fields to update")
	}

	if err := h.photos.Update(c.UserContext(), id, p.UserID, update); err != nil {
		return failErr(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DeletePhoto removes the row and its associations first and the file after;
// a file that cannot be removed is only logged.
func (h *Handler) DeletePhoto(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return failErr(c, err)
	}
	id, err := parseID(c, "photo_id")
	if err != nil {
		return failErr(c, err)
	}

	photo, err := h.photos.Delete(c.UserContext(), id, p.UserID)
	if errors.Is(err, apperr.ErrNotFoundOrForbidden) {
		return fail(c, fiber.StatusNotFound, photoNotFound)
	}
	if err != nil {
		return failErr(c, err)
	}

	if err := h.store.Delete(c.UserContext(), photo.Filepath); err != nil {
		log.Printf("Failed to remove file %s of deleted photo %d: %v", photo.Filepath, photo.PhotoID, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) ListPhotoTags(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return failErr(c, err)
	}

	pairs, err := h.photoTags.ListAllByOwner(c.UserContext(), p.UserID)
	if err != nil {
		return failErr(c, err)
	}
	return c.JSON(pairsJSON(pairs, "photo_id", "tag_id"))
}

func (h *Handler) GetTagsForPhoto(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return failErr(c, err)
	}
	id, err := parseID(c, "photo_id")
	if err != nil {
		return failErr(c, err)
	}

	tags := make([]models.Tag, 0)
	err = h.photoTags.ListRight(c.UserContext(), id, p.UserID, &tags)
	if errors.Is(err, apperr.ErrNotFoundOrForbidden) {
		return fail(c, fiber.StatusForbidden, photoNotFoundDenied)
	}
	if err != nil {
		return failErr(c, err)
	}
	return c.JSON(tags)
}

type tagRef struct {
	TagID flexID `json:"tag_id"`
}

func (h *Handler) AddTagToPhoto(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return failErr(c, err)
	}
	id, err := parseID(c, "photo_id")
	if err != nil {
		return failErr(c, err)
	}

	var input tagRef
	if err := c.BodyParser(&input); err != nil || input.TagID == 0 {
		return fail(c, fiber.StatusBadRequest, "Invalid JSON body or missing tag_id")
	}

	if err := h.photoTags.Link(c.UserContext(), id, uint(input.TagID), p.UserID); err != nil {
		return failErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Tag added to photo successfully"})
}

func (h *Handler) RemoveTagFromPhoto(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return failErr(c, err)
	}
	photoID, err := parseID(c, "photo_id")
	if err != nil {
		return failErr(c, err)
	}
	tagID, err := parseID(c, "tag_id")
	if err != nil {
		return failErr(c, err)
	}

	if err := h.photoTags.Unlink(c.UserContext(), photoID, tagID, p.UserID); err != nil {
		return failErr(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
