package repository

import (
	"context"
	"errors"
	"time"

	"github.com/krishkalaria12/snap-album/apperr"
	"github.com/krishkalaria12/snap-album/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var errAlbumNotFound = apperr.NotFoundOrForbidden("Album not found or access denied")

type AlbumRepository struct {
	db *gorm.DB
}

func NewAlbumRepository(db *gorm.DB) *AlbumRepository {
	return &AlbumRepository{db: db}
}

type AlbumUpdate struct {
	Title *string
}

func (u AlbumUpdate) Empty() bool { return u.Title == nil }

func (r *AlbumRepository) Create(ctx context.Context, album *models.Album) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(album).Error; err != nil {
		return storageErr("create album", err)
	}
	return nil
}

func (r *AlbumRepository) FindByID(ctx context.Context, albumID, ownerID uint) (models.Album, error) {
	var album models.Album
	err := r.db.WithContext(ctx).
		Where("album_id = ? AND user_id = ?", albumID, ownerID).
		First(&album).Error
	if err != nil {
		return models.Album{}, notFoundOr(err, errAlbumNotFound, "find album")
	}
	return album, nil
}

func (r *AlbumRepository) FindAllByOwner(ctx context.Context, ownerID uint) ([]models.Album, error) {
	albums := make([]models.Album, 0)
	err := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("album_id").
		Find(&albums).Error
	if err != nil {
		return nil, storageErr("list albums", err)
	}
	return albums, nil
}

func (r *AlbumRepository) Update(ctx context.Context, albumID, ownerID uint, update AlbumUpdate) error {
	if update.Empty() {
		return apperr.Validation("No valid fields to update")
	}

	result := r.db.WithContext(ctx).
		Model(&models.Album{}).
		Where("album_id = ? AND user_id = ?", albumID, ownerID).
		Updates(map[string]interface{}{
			"title":      *update.Title,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return storageErr("update album", result.Error)
	}
	if result.RowsAffected == 0 {
		return errAlbumNotFound
	}
	return nil
}

// Delete removes the album with its tag and photo links; the photos
// themselves stay.
func (r *AlbumRepository) Delete(ctx context.Context, albumID, ownerID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owned := tx.Model(&models.Album{}).Select("album_id").Where("album_id = ? AND user_id = ?", albumID, ownerID)

		if err := tx.Where("album_id IN (?)", owned).Delete(&models.AlbumTag{}).Error; err != nil {
			return err
		}
		if err := tx.Where("album_id IN (?)", owned).Delete(&models.AlbumPhoto{}).Error; err != nil {
			return err
		}

		result := tx.Where("album_id = ? AND user_id = ?", albumID, ownerID).Delete(&models.Album{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errAlbumNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, apperr.ErrNotFoundOrForbidden) {
			return err
		}
		return storageErr("delete album", err)
	}
	return nil
}
