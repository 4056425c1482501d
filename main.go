// Copyright 2024 - 2025, the Funix Storefront contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Storefront is a server-rendered web shop backed by MongoDB.
*/
package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"codeberg.org/funix/storefront/config"
	"codeberg.org/funix/storefront/core/audit"
	"codeberg.org/funix/storefront/server/assets"
	"codeberg.org/funix/storefront/server/middleware"
	"codeberg.org/funix/storefront/server/realtime"
	"codeberg.org/funix/storefront/server/router"
	"codeberg.org/funix/storefront/server/routes"
	"codeberg.org/funix/storefront/server/session"
	"codeberg.org/funix/storefront/server/template"
	"codeberg.org/funix/storefront/store"
)

const (
	// Values for http.Server timeouts.
	// ref: gosec: G112
	readHeaderTimeout time.Duration = 15 * time.Second
	readTimeout       time.Duration = 15 * time.Second
	writeTimeout      time.Duration = 10 * time.Second
	idleTimeout       time.Duration = 30 * time.Second

	serverShutdownDeadline time.Duration = 5 * time.Second
)

// embeddedContent holds our static web server content.
//
//go:embed assets/css assets/views
var embeddedContent embed.FS

// init assigns the embedded filesystem to the exported assets.FS variable.
//
//nolint:gochecknoinits // this is a good use of init()
func init() {
	assets.FS = embeddedContent
}

// main is the entry point of the application.
func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Application failed")
	}
}

// run orchestrates the application startup and graceful shutdown.
//
// The database connection is established and verified before the
// listener opens; a storefront that cannot reach its data has no
// business accepting requests.
//
//nolint:funlen
func run() error {
	audit.SetDefaultLogger()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	audit.Configure(cfg.Log.Level, cfg.Log.Format)

	if err := os.MkdirAll(cfg.Upload.Directory, 0o755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := store.Connect(ctx, cfg.MongoURI(), cfg.Database.ConnectTimeout)
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), serverShutdownDeadline)
		defer cancel()

		if err := client.Disconnect(disconnectCtx); err != nil {
			log.Error().Err(err).Msg("Failed to disconnect from MongoDB")
		}
	}()

	db := client.Database(cfg.Database.Name)

	sessions := store.NewSessionStore(db)
	if err := sessions.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("failed to ensure session indexes: %w", err)
	}

	users := store.NewUserStore(db)
	products := store.NewProductStore(db)

	views, err := template.NewRenderer(assets.FS)
	if err != nil {
		return fmt.Errorf("failed to parse templates: %w", err)
	}

	presenter := middleware.NewErrorPresenter(views)

	cookies := session.CookieOptions{Name: cfg.Session.CookieName}

	hub := realtime.NewHub()
	defer hub.Close()

	mux := router.NewRouter()
	mux.DefineRoutes(router.Handlers{
		Shop:            routes.NewShopHandler(products, views),
		Admin:           routes.NewAdminHandler(products, hub, views),
		Auth:            routes.NewAuthHandler(users, sessions, cookies, views),
		Errors:          routes.NewErrorPages(presenter),
		Realtime:        hub,
		Presenter:       presenter,
		UploadDirectory: cfg.Upload.Directory,
	})
	mux.RegisterMiddleware(router.Stages{
		Upload:   middleware.NewUploadStage(cfg.Upload.Directory, cfg.Upload.FieldName),
		Session:  middleware.NewSessionStage(sessions, cookies, cfg.Session.TTL, presenter),
		CSRF:     middleware.NewCSRFStage(presenter),
		Identity: middleware.NewIdentityStage(users, presenter),
	})

	// Create http.Server instance
	server := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	listener, err := (&net.ListenConfig{}).Listen(ctx, "tcp", cfg.Addr())
	if err != nil {
		return fmt.Errorf("failed to start TCP listener on %v: %w", cfg.Addr(), err)
	}

	log.Info().
		Str("address", listener.Addr().String()).
		Msg("Listening on address")

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

		return nil
	})

	group.Go(func() error {
		// Wait for a signal or a server failure.
		<-groupCtx.Done()

		log.Info().Msg("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), serverShutdownDeadline)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}

		return nil
	})

	if err := group.Wait(); err != nil {
		return err
	}

	log.Info().Msg("Server exited gracefully")

	return nil
}
