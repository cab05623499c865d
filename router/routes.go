package router

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	handler "github.com/krishkalaria12/snap-album/handlers"
)

// NewApp creates the fiber app with the JSON error envelope used by every
// handler.
func NewApp(bodyLimitMB int) *fiber.App {
	return fiber.New(fiber.Config{
		AppName:      "snap-album",
		BodyLimit:    bodyLimitMB * 1024 * 1024,
		ErrorHandler: errorHandler,
	})
}

func errorHandler(c *fiber.Ctx, err error) error {
	var e *fiber.Error
	if errors.As(err, &e) {
		return c.Status(e.Code).JSON(fiber.Map{"error": e.Message})
	}
	log.Printf("%s %s: %v", c.Method(), c.Path(), err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
}

func SetupRoutes(app *fiber.App, h *handler.Handler, authMiddleware fiber.Handler, corsOrigins string) {
	app.Use(recover.New())

	origins := strings.TrimSpace(corsOrigins)
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Content-Type, Authorization",
		AllowCredentials: origins != "*",
	}))

	api := app.Group("/api", logger.New())

	// Auth
	api.Post("/login", h.Login)
	api.Post("/logout", h.Logout)

	// Everything below needs a session or a bearer token.
	api.Use(authMiddleware)
	api.Get("/me", h.Me)

	// User
	api.Get("/users", h.ListUsers)
	api.Get("/users/:user_id", h.GetUser)
	api.Post("/users", h.CreateUser)
	api.Put("/users/:user_id", h.UpdateUser)
	api.Delete("/users/:user_id", h.DeleteUser)

	// Photo
	api.Get("/photos", h.ListPhotos)
	api.Get("/photos/download/:photo_id", h.DownloadPhoto)
	api.Get("/photos/:photo_id", h.GetPhoto)
	api.Get("/photos/:photo_id/thumbnail", h.Thumbnail)
	api.Post("/photos", h.UploadPhoto)
	api.Put("/photos/:photo_id", h.UpdatePhoto)
	api.Delete("/photos/:photo_id", h.DeletePhoto)

	// Album
	api.Post("/albums", h.CreateAlbum)
	api.Get("/albums", h.ListAlbums)
	api.Get("/albums/:album_id", h.GetAlbum)
	api.Put("/albums/:album_id", h.UpdateAlbum)
	api.Delete("/albums/:album_id", h.DeleteAlbum)
	api.Get("/albums/:album_id/photos", h.GetPhotosFromAlbum)
	api.Post("/albums/:album_id/photos", h.AddPhotoToAlbum)
	api.Delete("/albums/:album_id/photos/:photo_id", h.RemovePhotoFromAlbum)

	// Tag
	api.Get("/tags", h.ListTags)
	api.Post("/tags", h.CreateTag)
	api.Put("/tags/:tag_id", h.RenameTag)
	api.Delete("/tags/:tag_id", h.DeleteTag)

	// Photo tags
	api.Get("/photo-tags", h.ListPhotoTags)
	api.Get("/photos/:photo_id/tags", h.GetTagsForPhoto)
	api.Post("/photos/:photo_id/tags", h.AddTagToPhoto)
	api.Delete("/photos/:photo_id/tags/:tag_id", h.RemoveTagFromPhoto)

	// Album tags
	api.Get("/album-tags", h.ListAlbumTags)
	api.Get("/albums/:album_id/tags", h.GetTagsForAlbum)
	api.Post("/albums/:album_id/tags", h.AddTagToAlbum)
	api.Delete("/albums/:album_id/tags/:tag_id", h.RemoveTagFromAlbum)
}
