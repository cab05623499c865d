package handler

import (
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/krishkalaria12/snap-album/auth"
	"github.com/krishkalaria12/snap-album/repository"
	"github.com/krishkalaria12/snap-album/storage"
	"gorm.io/gorm"
)

// Handler holds everything the HTTP handlers need. One instance serves all
// requests; its fields are safe for concurrent use.
type Handler struct {
	users  *repository.UserRepository
	photos *repository.PhotoRepository
	albums *repository.AlbumRepository
	tags   *repository.TagRepository

	photoTags   *repository.LinkRepository
	albumTags   *repository.LinkRepository
	albumPhotos *repository.LinkRepository

	store    storage.Store
	auth     *auth.Service
	sessions *session.Store
}

func New(db *gorm.DB, store storage.Store, authService *auth.Service, sessions *session.Store) *Handler {
	return &Handler{
		users:       repository.NewUserRepository(db),
		photos:      repository.NewPhotoRepository(db),
		albums:      repository.NewAlbumRepository(db),
		tags:        repository.NewTagRepository(db),
		photoTags:   repository.NewLinkRepository(db, repository.PhotoTags),
		albumTags:   repository.NewLinkRepository(db, repository.AlbumTags),
		albumPhotos: repository.NewLinkRepository(db, repository.AlbumPhotos),
		store:       store,
		auth:        authService,
		sessions:    sessions,
	}
}
