package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "file::memory:")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("SESSION_TTL", "90m")
	t.Setenv("PORT", "not-a-number")

	s, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.DBDriver != "sqlite" {
		t.Fatalf("driver not normalised: %q", s.DBDriver)
	}
	if s.Port != 3000 {
		t.Fatalf("expected default port, got %d", s.Port)
	}
	if s.SessionTTL != 90*time.Minute {
		t.Fatalf("unexpected session ttl %v", s.SessionTTL)
	}
	if s.BodyLimitMB != 50 || s.StorageBackend != "local" {
		t.Fatalf("unexpected defaults: %+v", s)
	}
}

func TestLoadRejectsBadSettings(t *testing.T) {
	cases := map[string]map[string]string{
		"missing secret": {"DATABASE_URL": "x", "JWT_SECRET": ""},
		"bad driver":     {"DATABASE_URL": "x", "JWT_SECRET": "s", "DB_DRIVER": "oracle"},
		"gcs no bucket":  {"DATABASE_URL": "x", "JWT_SECRET": "s", "STORAGE_BACKEND": "gcs", "GSC_BUCKET_NAME": ""},
		"half admin":     {"DATABASE_URL": "x", "JWT_SECRET": "s", "ADMIN_USERNAME": "root", "ADMIN_PASSWORD": ""},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
