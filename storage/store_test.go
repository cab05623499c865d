package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExtension(t *testing.T) {
	tests := []struct {
		name string
		ext  string
		ok   bool
	}{
		{"beach.jpg", "jpg", true},
		{"beach.JPEG", "jpeg", true},
		{"scan.Png", "png", true},
		{"IMG_0001.HEIC", "heic", true},
		{"pic.webp", "webp", true},
		{"anim.gif", "gif", false},
		{"noext", "", false},
		{"archive.tar.gz", "gz", false},
	}
	for _, tt := range tests {
		ext, ok := Extension(tt.name)
		if ext != tt.ext || ok != tt.ok {
			t.Fatalf("Extension(%q) = %q, %v; want %q, %v", tt.name, ext, ok, tt.ext, tt.ok)
		}
	}
}

func TestNewPhotoKey(t *testing.T) {
	a := NewPhotoKey(7, "png")
	b := NewPhotoKey(7, "png")
	if a == b {
		t.Fatalf("keys must be unique: %s", a)
	}
	if !strings.HasPrefix(a, "photos/7/") || !strings.HasSuffix(a, ".png") {
		t.Fatalf("unexpected key layout %s", a)
	}
}

func TestLocalStore(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s, err := NewLocalStore(filepath.Join(root, "data"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	key := NewPhotoKey(3, "jpg")
	if err := s.Save(ctx, key, strings.NewReader("jpeg bytes")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "data", filepath.FromSlash(key))); err != nil {
		t.Fatalf("file not on disk: %v", err)
	}

	rc, err := s.Open(ctx, key)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	body, _ := io.ReadAll(rc)
	rc.Close()
	if string(body) != "jpeg bytes" {
		t.Fatalf("unexpected content %q", body)
	}

	if err := s.Delete(ctx, key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Open(ctx, key); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.Delete(ctx, key); err != nil {
		t.Fatalf("deleting a missing file must succeed: %v", err)
	}
}

func TestLocalStoreDeletePrefix(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	mine := []string{NewPhotoKey(1, "jpg"), NewPhotoKey(1, "png")}
	other := NewPhotoKey(2, "jpg")
	for _, key := range append(mine, other) {
		if err := s.Save(ctx, key, strings.NewReader(key)); err != nil {
			t.Fatalf("save %s: %v", key, err)
		}
	}

	if err := s.DeletePrefix(ctx, UserPrefix(1)); err != nil {
		t.Fatalf("delete prefix: %v", err)
	}
	for _, key := range mine {
		if _, err := s.Open(ctx, key); !errors.Is(err, ErrNotFound) {
			t.Fatalf("%s survived: %v", key, err)
		}
	}
	if _, err := s.Open(ctx, other); err != nil {
		t.Fatalf("other user's file removed: %v", err)
	}
	if err := s.DeletePrefix(ctx, UserPrefix(99)); err != nil {
		t.Fatalf("missing prefix: %v", err)
	}
}

func TestLocalStoreRejectsEscapingKeys(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	for _, key := range []string{"", "../outside.jpg", "/etc/passwd", "photos/../../x", `photos\1\a.jpg`} {
		if err := s.Save(ctx, key, strings.NewReader("x")); !errors.Is(err, ErrInvalidKey) {
			t.Fatalf("Save(%q): expected ErrInvalidKey, got %v", key, err)
		}
	}
	if err := s.DeletePrefix(ctx, ""); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("empty prefix: expected ErrInvalidKey, got %v", err)
	}
}

func TestLocalStoreSaveHonoursCancel(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	key := NewPhotoKey(1, "jpg")
	if err := s.Save(ctx, key, strings.NewReader("x")); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if _, err := s.Open(context.Background(), key); !errors.Is(err, ErrNotFound) {
		t.Fatalf("partial file left behind: %v", err)
	}
}
