package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/krishkalaria12/snap-album/auth"
	"github.com/krishkalaria12/snap-album/config"
	"github.com/krishkalaria12/snap-album/database"
	handler "github.com/krishkalaria12/snap-album/handlers"
	"github.com/krishkalaria12/snap-album/middleware"
	"github.com/krishkalaria12/snap-album/repository"
	"github.com/krishkalaria12/snap-album/router"
	"github.com/krishkalaria12/snap-album/storage"
)

func newStore(ctx context.Context, cfg *config.Settings) (storage.Store, func() error, error) {
	if cfg.StorageBackend == "gcs" {
		gcs, err := storage.NewGCSStore(ctx, cfg.GCSProjectID, cfg.GCSBucketName)
		if err != nil {
			return nil, nil, err
		}
		return gcs, gcs.Close, nil
	}

	local, err := storage.NewLocalStore(cfg.PhotoDir)
	if err != nil {
		return nil, nil, err
	}
	return local, func() error { return nil }, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	// close the database connection
	defer func() {
		if err := database.CloseDB(db); err != nil {
			log.Printf("Error closing the database connection: %v", err)
		}
	}()

	// Run migrations
	if err := database.MigrateModels(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	store, closeStore, err := newStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to set up %s photo storage: %v", cfg.StorageBackend, err)
	}
	defer closeStore()

	users := repository.NewUserRepository(db)
	authService := auth.NewService(users, cfg)
	if cfg.AdminUsername != "" {
		if _, err := authService.BootstrapAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
			log.Fatalf("Failed to bootstrap admin %q: %v", cfg.AdminUsername, err)
		}
		log.Printf("Admin account %q is ready", cfg.AdminUsername)
	}

	sessions := middleware.NewSessionStore(cfg.SessionTTL, cfg.CookieSecure)
	h := handler.New(db, store, authService, sessions)

	app := router.NewApp(cfg.BodyLimitMB)
	router.SetupRoutes(app, h, middleware.AuthMiddleware(sessions, authService, users), cfg.CORSOrigins)

	go func() {
		<-ctx.Done()
		log.Println("Shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("Shutdown: %v", err)
		}
	}()

	log.Printf("Server is listening at the port %d", cfg.Port)
	if err := app.Listen(fmt.Sprintf(":%d", cfg.Port)); err != nil {
		log.Printf("Server stopped: %v", err)
	}
}
