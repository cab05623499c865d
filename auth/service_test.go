package auth

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/krishkalaria12/snap-album/access"
	"github.com/krishkalaria12/snap-album/apperr"
	"github.com/krishkalaria12/snap-album/config"
	"github.com/krishkalaria12/snap-album/models"
	"github.com/krishkalaria12/snap-album/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T, ttl time.Duration) *Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "auth_test.db")), &gorm.Config{
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

	return NewService(repository.NewUserRepository(db), &config.Settings{
		AppURL:    "http://localhost:3000",
		JWTSecret: "test-secret",
		TokenTTL:  ttl,
	})
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, time.Hour)

	id, err := s.CreateUser(ctx, "alice", "correct horse")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	p, err := s.Authenticate(ctx, "alice", "correct horse")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if p.UserID != id || p.Username != "alice" || p.Role != access.RoleUser {
		t.Fatalf("unexpected principal %+v", p)
	}

	if _, err := s.Authenticate(ctx, "alice", "wrong"); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("wrong password: expected unauthorized, got %v", err)
	}
	if _, err := s.Authenticate(ctx, "nobody", "x"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("unknown user: expected not found, got %v", err)
	}
	if !IsInvalidCredentials(apperr.NotFound("x")) || IsInvalidCredentials(apperr.Conflict("x")) {
		t.Fatalf("IsInvalidCredentials misclassifies")
	}
}

func TestCreateUserDuplicate(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, time.Hour)

	if _, err := s.CreateUser(ctx, "alice", "a"); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := s.CreateUser(ctx, "alice", "b"); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestPasswordsAreHashed(t *testing.T) {
	hash, err := HashPassword("secret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "secret" || !checkPasswordHash("secret", hash) || checkPasswordHash("other", hash) {
		t.Fatalf("unexpected hash behaviour for %q", hash)
	}
}

func TestBootstrapAdmin(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, time.Hour)

	if _, err := s.CreateUser(ctx, "root", "old"); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := s.BootstrapAdmin(ctx, "root", "new"); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	p, err := s.Authenticate(ctx, "root", "new")
	if err != nil {
		t.Fatalf("authenticate with new password: %v", err)
	}
	if !p.IsAdmin() {
		t.Fatalf("expected admin, got %+v", p)
	}
	if _, err := s.BootstrapAdmin(ctx, "", ""); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("empty bootstrap: expected validation error, got %v", err)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	s := newTestService(t, time.Hour)
	in := access.Principal{UserID: 42, Username: "alice", Role: access.RoleAdmin}

	tokenStr, err := s.IssueToken(in)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	out, err := s.ParseToken(tokenStr)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if out != in {
		t.Fatalf("got %+v want %+v", out, in)
	}

	if _, err := s.ParseToken(tokenStr + "x"); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("tampered token: expected unauthorized, got %v", err)
	}
	if _, err := s.ParseToken("garbage"); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("garbage token: expected unauthorized, got %v", err)
	}
}

func TestTokenCarriesAudience(t *testing.T) {
	s := newTestService(t, time.Hour)
	tokenStr, err := s.IssueToken(access.Principal{UserID: 3, Username: "bob", Role: access.RoleUser})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := s.tokens.Parse(tokenStr)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(claims.Audience) != 1 || claims.Audience[0] != "http://localhost:3000" {
		t.Fatalf("unexpected audience %v", claims.Audience)
	}

	// Without an app URL the issuer doubles as audience.
	s2 := NewService(s.users, &config.Settings{JWTSecret: "test-secret", TokenTTL: time.Hour})
	tokenStr, err = s2.IssueToken(access.Principal{UserID: 3, Username: "bob", Role: access.RoleUser})
	if err != nil {
		t.Fatalf("issue without app url: %v", err)
	}
	if p, err := s2.ParseToken(tokenStr); err != nil || p.UserID != 3 {
		t.Fatalf("parse without app url: %+v %v", p, err)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	s := newTestService(t, -time.Minute)

	tokenStr, err := s.IssueToken(access.Principal{UserID: 1, Username: "alice", Role: access.RoleUser})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := s.ParseToken(tokenStr); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}
