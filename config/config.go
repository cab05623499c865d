package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

var loadEnv sync.Once

// dotenv loads .env once; a missing file is fine, the process environment
// is used as is.
func dotenv() {
	loadEnv.Do(func() {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "Error loading .env file: %v\n", err)
		}
	})
}

type Settings struct {
	Port int
	// AppURL is the audience put into tokens.
	AppURL string

	DBDriver       string
	DatabaseURL    string
	DBMaxOpenConns int
	DBMaxIdleConns int
	DBLogLevel     string

	JWTSecret    string
	TokenTTL     time.Duration
	SessionTTL   time.Duration
	CookieSecure bool

	StorageBackend string
	PhotoDir       string
	GCSProjectID   string
	GCSBucketName  string

	BodyLimitMB int
	CORSOrigins string

	AdminUsername string
	AdminPassword string
}

// Load reads Settings from the environment, falling back to defaults for
// everything optional.
func Load() (*Settings, error) {
	dotenv()

	s := &Settings{
		Port:           getInt("PORT", 3000),
		AppURL:         get("APP_URL", "http://localhost:3000"),
		DBDriver:       strings.ToLower(get("DB_DRIVER", "postgres")),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		DBMaxOpenConns: getInt("DB_MAX_OPEN_CONNS", 10),
		DBMaxIdleConns: getInt("DB_MAX_IDLE_CONNS", 5),
		DBLogLevel:     strings.ToLower(get("DB_LOG_LEVEL", "warn")),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		TokenTTL:       getDuration("TOKEN_TTL", 24*time.Hour),
		SessionTTL:     getDuration("SESSION_TTL", 24*time.Hour),
		CookieSecure:   getBool("COOKIE_SECURE", false),
		StorageBackend: strings.ToLower(get("STORAGE_BACKEND", "local")),
		PhotoDir:       get("PHOTO_DIR", "."),
		GCSProjectID:   os.Getenv("GSC_PROJECT_ID"),
		GCSBucketName:  os.Getenv("GSC_BUCKET_NAME"),
		BodyLimitMB:    getInt("BODY_LIMIT_MB", 50),
		CORSOrigins:    get("CORS_ORIGINS", "http://localhost:3000"),
		AdminUsername:  os.Getenv("ADMIN_USERNAME"),
		AdminPassword:  os.Getenv("ADMIN_PASSWORD"),
	}

	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Settings) validate() error {
	switch s.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", s.DBDriver)
	}
	if s.DatabaseURL == "" {
		return errors.New("DATABASE_URL not set")
	}
	if s.JWTSecret == "" {
		return errors.New("JWT_SECRET not set")
	}
	switch s.StorageBackend {
	case "local":
	case "gcs":
		if s.GCSBucketName == "" {
			return errors.New("GSC_BUCKET_NAME not set")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_BACKEND %q", s.StorageBackend)
	}
	if (s.AdminUsername == "") != (s.AdminPassword == "") {
		return errors.New("ADMIN_USERNAME and ADMIN_PASSWORD must be set together")
	}
	return nil
}

func get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
