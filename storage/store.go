// Package storage keeps photo files. Keys are slash separated and relative,
// e.g. photos/7/0b6f3c1e-....jpg, and mean the same thing on every backend.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrNotFound   = errors.New("storage: object not found")
	ErrInvalidKey = errors.New("storage: invalid key")
)

type Store interface {
	Save(ctx context.Context, key string, r io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	// DeletePrefix removes every object under prefix. A missing prefix is
	// not an error.
	DeletePrefix(ctx context.Context, prefix string) error
}

var allowedExtensions = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
	"heic": true,
	"webp": true,
}

// Extension returns the lower-cased extension of filename without the dot,
// or ok=false when it is not an accepted photo type.
func Extension(filename string) (ext string, ok bool) {
	ext = strings.ToLower(strings.TrimPrefix(path.Ext(filename), "."))
	return ext, allowedExtensions[ext]
}

// UserPrefix is the key prefix under which every photo of userID lives.
func UserPrefix(userID uint) string {
	return fmt.Sprintf("photos/%d/", userID)
}

// NewPhotoKey returns a fresh key for a photo of userID with extension ext.
func NewPhotoKey(userID uint, ext string) string {
	return UserPrefix(userID) + uuid.NewString() + "." + ext
}

func cleanKey(key string) (string, error) {
	if key == "" || strings.Contains(key, "\\") {
		return "", ErrInvalidKey
	}
	cleaned := path.Clean(key)
	if path.IsAbs(cleaned) || cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", ErrInvalidKey
	}
	return cleaned, nil
}
