package repository

import (
	"context"
	"errors"
	"time"

	"github.com/krishkalaria12/snap-album/apperr"
	"github.com/krishkalaria12/snap-album/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var errPhotoNotFound = apperr.NotFoundOrForbidden("Photo not found or access denied")

type PhotoRepository struct {
	db *gorm.DB
}

func NewPhotoRepository(db *gorm.DB) *PhotoRepository {
	return &PhotoRepository{db: db}
}

// PhotoUpdate is a sparse set of columns. Title and CaptureDate are not
// nullable, so only presence matters for them.
type PhotoUpdate struct {
	Title       *string
	CaptureDate *datatypes.Date
	CaptureTime Nullable[datatypes.Time]
	Latitude    Nullable[float64]
	Longitude   Nullable[float64]
}

func (u PhotoUpdate) Empty() bool {
	return u.Title == nil && u.CaptureDate == nil &&
		!u.CaptureTime.Set && !u.Latitude.Set && !u.Longitude.Set
}

func (u PhotoUpdate) columns() map[string]interface{} {
	columns := map[string]interface{}{"updated_at": time.Now()}
	if u.Title != nil {
		columns["title"] = *u.Title
	}
	if u.CaptureDate != nil {
		columns["capture_date"] = *u.CaptureDate
	}
	if u.CaptureTime.Set {
		columns["capture_time"] = u.CaptureTime.column()
	}
	if u.Latitude.Set {
		columns["latitude"] = u.Latitude.column()
	}
	if u.Longitude.Set {
		columns["longitude"] = u.Longitude.column()
	}
	return columns
}

// Create inserts photo. The file behind photo.Filepath is stored by the
// caller, which removes it again when this fails.
func (r *PhotoRepository) Create(ctx context.Context, photo *models.Photo) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(photo).Error; err != nil {
		return storageErr("create photo", err)
	}
	return nil
}

func (r *PhotoRepository) FindByID(ctx context.Context, photoID, ownerID uint) (models.Photo, error) {
	var photo models.Photo
	err := r.db.WithContext(ctx).
		Where("photo_id = ? AND user_id = ?", photoID, ownerID).
		First(&photo).Error
	if err != nil {
		return models.Photo{}, notFoundOr(err, errPhotoNotFound, "find photo")
	}
	return photo, nil
}

func (r *PhotoRepository) FindAllByOwner(ctx context.Context, ownerID uint) ([]models.Photo, error) {
	photos := make([]models.Photo, 0)
	err := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("photo_id").
		Find(&photos).Error
	if err != nil {
		return nil, storageErr("list photos", err)
	}
	return photos, nil
}

func (r *PhotoRepository) Update(ctx context.Context, photoID, ownerID uint, update PhotoUpdate) error {
	if update.Empty() {
		return apperr.Validation("No valid fields to update")
	}

	result := r.db.WithContext(ctx).
		Model(&models.Photo{}).
		Where("photo_id = ? AND user_id = ?", photoID, ownerID).
		Updates(update.columns())
	if result.Error != nil {
		return storageErr("update photo", result.Error)
	}
	if result.RowsAffected == 0 {
		return errPhotoNotFound
	}
	return nil
}

// Delete removes the photo and its tag and album links. The deleted row is
// returned so the caller can remove the stored file.
func (r *PhotoRepository) Delete(ctx context.Context, photoID, ownerID uint) (models.Photo, error) {
	var photo models.Photo
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("photo_id = ? AND user_id = ?", photoID, ownerID).First(&photo).Error; err != nil {
			return err
		}
		if err := tx.Where("photo_id = ?", photoID).Delete(&models.PhotoTag{}).Error; err != nil {
			return err
		}
		if err := tx.Where("photo_id = ?", photoID).Delete(&models.AlbumPhoto{}).Error; err != nil {
			return err
		}

		result := tx.Where("photo_id = ? AND user_id = ?", photoID, ownerID).Delete(&models.Photo{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Photo{}, errPhotoNotFound
		}
		return models.Photo{}, storageErr("delete photo", err)
	}
	return photo, nil
}
