package repository

import (
	"context"
	"errors"

	"github.com/krishkalaria12/snap-album/apperr"
	"github.com/krishkalaria12/snap-album/models"
	"gorm.io/gorm"
)

var (
	errTagNotFound = apperr.NotFoundOrForbidden("Tag not found or access denied")
	errTagExists   = apperr.Conflict("Tag already exists")
)

// Per-owner name uniqueness is soft: both statements check for a clash in
// the statement that writes, but without a unique index two concurrent
// requests under read committed can still both succeed.
const (
	insertTagSQL = `INSERT INTO tags (user_id, name, created_at)
SELECT u.user_id, ?, CURRENT_TIMESTAMP FROM users u
WHERE u.user_id = ?
AND NOT EXISTS (SELECT 1 FROM tags t WHERE t.user_id = u.user_id AND t.name = ?)`

	renameTagSQL = `UPDATE tags SET name = ?
WHERE tag_id = ? AND user_id = ?
AND NOT EXISTS (SELECT 1 FROM tags t WHERE t.user_id = ? AND t.name = ? AND t.tag_id <> ?)`
)

type TagRepository struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) *TagRepository {
	return &TagRepository{db: db}
}

// Create adds a tag for ownerID unless the owner already has one with the
// same name, in which case it returns a Conflict.
func (r *TagRepository) Create(ctx context.Context, ownerID uint, name string) (models.Tag, error) {
	db := r.db.WithContext(ctx)

	result := db.Exec(insertTagSQL, name, ownerID, name)
	if result.Error != nil {
		return models.Tag{}, storageErr("create tag", result.Error)
	}

	tag, err := r.FindByName(ctx, ownerID, name)
	if result.RowsAffected == 0 {
		if err == nil {
			return models.Tag{}, errTagExists
		}
		if errors.Is(err, apperr.ErrNotFoundOrForbidden) {
			return models.Tag{}, apperr.NotFound("User not found")
		}
	}
	return tag, err
}

func (r *TagRepository) FindByName(ctx context.Context, ownerID uint, name string) (models.Tag, error) {
	var tag models.Tag
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND name = ?", ownerID, name).
		First(&tag).Error
	if err != nil {
		return models.Tag{}, notFoundOr(err, errTagNotFound, "find tag by name")
	}
	return tag, nil
}

func (r *TagRepository) FindByID(ctx context.Context, tagID, ownerID uint) (models.Tag, error) {
	var tag models.Tag
	err := r.db.WithContext(ctx).
		Where("tag_id = ? AND user_id = ?", tagID, ownerID).
		First(&tag).Error
	if err != nil {
		return models.Tag{}, notFoundOr(err, errTagNotFound, "find tag")
	}
	return tag, nil
}

func (r *TagRepository) FindAllByOwner(ctx context.Context, ownerID uint) ([]models.Tag, error) {
	tags := make([]models.Tag, 0)
	err := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("tag_id").
		Find(&tags).Error
	if err != nil {
		return nil, storageErr("list tags", err)
	}
	return tags, nil
}

func (r *TagRepository) Rename(ctx context.Context, tagID, ownerID uint, name string) error {
	result := r.db.WithContext(ctx).Exec(renameTagSQL, name, tagID, ownerID, ownerID, name, tagID)
	if result.Error != nil {
		return storageErr("rename tag", result.Error)
	}
	if result.RowsAffected > 0 {
		return nil
	}

	// Nothing written: either the tag is not ours or the name is taken.
	if _, err := r.FindByID(ctx, tagID, ownerID); err != nil {
		return err
	}
	return errTagExists
}

// Delete removes the tag and every photo and album link that uses it.
func (r *TagRepository) Delete(ctx context.Context, tagID, ownerID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owned := tx.Model(&models.Tag{}).Select("tag_id").Where("tag_id = ? AND user_id = ?", tagID, ownerID)

		if err := tx.Where("tag_id IN (?)", owned).Delete(&models.PhotoTag{}).Error; err != nil {
			return err
		}
		if err := tx.Where("tag_id IN (?)", owned).Delete(&models.AlbumTag{}).Error; err != nil {
			return err
		}

		result := tx.Where("tag_id = ? AND user_id = ?", tagID, ownerID).Delete(&models.Tag{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errTagNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, apperr.ErrNotFoundOrForbidden) {
			return err
		}
		return storageErr("delete tag", err)
	}
	return nil
}
