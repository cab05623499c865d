package repository

import (
	"context"
	"errors"
	"time"

	"github.com/krishkalaria12/snap-album/access"
	"github.com/krishkalaria12/snap-album/apperr"
	"github.com/krishkalaria12/snap-album/models"
	"gorm.io/gorm"
)

var errUserNotFound = apperr.NotFound("User not found")

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// UserUpdate is a sparse set of columns; nil fields are left untouched.
type UserUpdate struct {
	Username     *string
	PasswordHash *string
	Role         *access.Role
}

func (u UserUpdate) Empty() bool {
	return u.Username == nil && u.PasswordHash == nil && u.Role == nil
}

func (r *UserRepository) Create(ctx context.Context, username, passwordHash string, role access.Role) (uint, error) {
	user := models.User{
		Username:     username,
		PasswordHash: passwordHash,
		Role:         string(role),
	}

	if err := r.db.WithContext(ctx).Create(&user).Error; err != nil {
		if isUniqueViolation(err) {
			return 0, apperr.Conflict("Duplicate username")
		}
		return 0, storageErr("create user", err)
	}

	return user.UserID, nil
}

func (r *UserRepository) FindByID(ctx context.Context, userID uint) (models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&user).Error; err != nil {
		return models.User{}, notFoundOr(err, errUserNotFound, "find user")
	}
	return user, nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return models.User{}, notFoundOr(err, errUserNotFound, "find user by username")
	}
	return user, nil
}

func (r *UserRepository) FindAll(ctx context.Context) ([]models.User, error) {
	users := make([]models.User, 0)
	if err := r.db.WithContext(ctx).Order("user_id").Find(&users).Error; err != nil {
		return nil, storageErr("list users", err)
	}
	return users, nil
}

func (r *UserRepository) Update(ctx context.Context, userID uint, update UserUpdate) error {
	if update.Empty() {
		return apperr.Validation("No fields to update")
	}

	columns := map[string]interface{}{"updated_at": time.Now()}
	if update.Username != nil {
		columns["username"] = *update.Username
	}
	if update.PasswordHash != nil {
		columns["password_hash"] = *update.PasswordHash
	}
	if update.Role != nil {
		columns["role"] = string(*update.Role)
	}

	result := r.db.WithContext(ctx).Model(&models.User{}).Where("user_id = ?", userID).Updates(columns)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return apperr.Conflict("Duplicate username")
		}
		return storageErr("update user", result.Error)
	}
	if result.RowsAffected == 0 {
		return errUserNotFound
	}
	return nil
}

// Delete removes the user together with every photo, album, tag and
// association row the user owns, in one transaction.
func (r *UserRepository) Delete(ctx context.Context, userID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ownedPhotos := tx.Model(&models.Photo{}).Select("photo_id").Where("user_id = ?", userID)
		ownedAlbums := tx.Model(&models.Album{}).Select("album_id").Where("user_id = ?", userID)
		ownedTags := tx.Model(&models.Tag{}).Select("tag_id").Where("user_id = ?", userID)

		steps := []func() *gorm.DB{
			func() *gorm.DB {
				return tx.Where("photo_id IN (?) OR tag_id IN (?)", ownedPhotos, ownedTags).Delete(&models.PhotoTag{})
			},
			func() *gorm.DB {
				return tx.Where("album_id IN (?) OR tag_id IN (?)", ownedAlbums, ownedTags).Delete(&models.AlbumTag{})
			},
			func() *gorm.DB {
				return tx.Where("album_id IN (?) OR photo_id IN (?)", ownedAlbums, ownedPhotos).Delete(&models.AlbumPhoto{})
			},
			func() *gorm.DB { return tx.Where("user_id = ?", userID).Delete(&models.Photo{}) },
			func() *gorm.DB { return tx.Where("user_id = ?", userID).Delete(&models.Album{}) },
			func() *gorm.DB { return tx.Where("user_id = ?", userID).Delete(&models.Tag{}) },
		}
		for _, step := range steps {
			if err := step().Error; err != nil {
				return err
			}
		}

		result := tx.Where("user_id = ?", userID).Delete(&models.User{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errUserNotFound
		}
		return nil
	})

	if err == nil {
		return nil
	}
	if errors.Is(err, apperr.ErrNotFound) {
		return err
	}
	return storageErr("delete user", err)
}

// Promote creates username as an admin, or raises an existing account to
// admin and resets its password.
func (r *UserRepository) Promote(ctx context.Context, username, passwordHash string) (uint, error) {
	existing, err := r.FindByUsername(ctx, username)
	switch {
	case err == nil:
		role := access.RoleAdmin
		if err := r.Update(ctx, existing.UserID, UserUpdate{PasswordHash: &passwordHash, Role: &role}); err != nil {
			return 0, err
		}
		return existing.UserID, nil
	case errors.Is(err, apperr.ErrNotFound):
		return r.Create(ctx, username, passwordHash, access.RoleAdmin)
	default:
		return 0, err
	}
}
