package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/krishkalaria12/snap-album/access"
	"github.com/krishkalaria12/snap-album/models"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fixture struct {
	db     *gorm.DB
	users  *UserRepository
	photos *PhotoRepository
	albums *AlbumRepository
	tags   *TagRepository

	photoTags   *LinkRepository
	albumTags   *LinkRepository
	albumPhotos *LinkRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "snap_album_test.db")
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	return &fixture{
		db:          db,
		users:       NewUserRepository(db),
		photos:      NewPhotoRepository(db),
		albums:      NewAlbumRepository(db),
		tags:        NewTagRepository(db),
		photoTags:   NewLinkRepository(db, PhotoTags),
		albumTags:   NewLinkRepository(db, AlbumTags),
		albumPhotos: NewLinkRepository(db, AlbumPhotos),
	}
}

func (f *fixture) user(t *testing.T, name string) uint {
	t.Helper()
	id, err := f.users.Create(context.Background(), name, "$2a$10$hash", access.RoleUser)
	if err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return id
}

func (f *fixture) photo(t *testing.T, owner uint, title string) models.Photo {
	t.Helper()
	p := models.Photo{
		UserID:      owner,
		Filepath:    "photos/x/" + title + ".jpg",
		Title:       title,
		CaptureDate: datatypes.Date(time.Date(2024, 5, 17, 0, 0, 0, 0, time.UTC)),
	}
	if err := f.photos.Create(context.Background(), &p); err != nil {
		t.Fatalf("create photo %s: %v", title, err)
	}
	return p
}

func (f *fixture) album(t *testing.T, owner uint, title string) models.Album {
	t.Helper()
	a := models.Album{UserID: owner, Title: title}
	if err := f.albums.Create(context.Background(), &a); err != nil {
		t.Fatalf("create album %s: %v", title, err)
	}
	return a
}

func (f *fixture) tag(t *testing.T, owner uint, name string) models.Tag {
	t.Helper()
	tag, err := f.tags.Create(context.Background(), owner, name)
	if err != nil {
		t.Fatalf("create tag %s: %v", name, err)
	}
	return tag
}

func (f *fixture) count(t *testing.T, model interface{}, where string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	if err := f.db.Model(model).Where(where, args...).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}
