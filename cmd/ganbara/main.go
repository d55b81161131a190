// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the Ganbara restaurant site server.
// It loads configuration, connects to services, wires the publish
// pipeline, sets up routing, and starts the HTTP server with graceful
// shutdown support.
package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ganbara/internal/assets"
	"ganbara/internal/cache"
	"ganbara/internal/config"
	"ganbara/internal/database"
	"ganbara/internal/exporter"
	"ganbara/internal/handlers"
	"ganbara/internal/hero"
	"ganbara/internal/imaging"
	"ganbara/internal/models"
	"ganbara/internal/publish"
	"ganbara/internal/router"
	"ganbara/internal/session"
	"ganbara/internal/storage"
	"ganbara/internal/store"
)

// heroDefaults are the site-wide fallback texts for the hero carousel.
var heroDefaults = hero.Defaults{
	Title:    models.Localized{ES: "Asador Ganbara", EU: "Ganbara Erretegia"},
	Subtitle: models.Localized{ES: "Cocina vasca a la brasa", EU: "Brasan egindako euskal sukaldaritza"},
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"site_dir", cfg.SiteDir,
		"public_dir", cfg.PublicDir,
	)

	// Connect to PostgreSQL and run pending migrations.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Connect to Valkey (sessions + catalog cache + change feed).
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	sessionStore := session.NewStore(valkeyClient)
	catalogCache := cache.NewCatalogCache(valkeyClient, cache.DefaultCatalogTTL)

	// Data stores.
	menuStore := store.NewMenuStore(db)
	userStore := store.NewUserStore(db)
	clickStore := store.NewClickStore(db)

	// libvips powers the responsive image variants.
	imaging.Startup(0)
	defer imaging.Shutdown()

	// Publish pipeline: export the catalog, build the bundle, and
	// optionally push it to object storage.
	menuExporter := exporter.New(menuStore, cfg.SiteDir)
	pipeline := assets.New(cfg.SiteDir, cfg.PublicDir)

	var deployer publish.Deployer
	if cfg.S3Configured() {
		s3Client, err := storage.New(
			cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
			cfg.S3Bucket, cfg.PublicDir,
		)
		if err != nil {
			slog.Error("failed to initialize S3 storage", "error", err)
			os.Exit(1)
		}
		if s3Client != nil {
			deployer = s3Client
			slog.Info("s3 deploy target connected",
				"endpoint", cfg.S3Endpoint,
				"bucket", cfg.S3Bucket,
			)
		}
	} else {
		slog.Info("s3 deploy target not configured, publishing locally only")
	}

	orchestrator := publish.New(menuExporter, pipeline, deployer)

	// Keep the catalog cache warm off the menu change feed, so the
	// hero-slide endpoint sees fresh data without hitting the database.
	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()
	go warmCatalog(watchCtx, menuStore, catalogCache)

	// Handler groups.
	resolver := hero.New(heroDefaults)
	adminHandlers := handlers.NewAdmin(menuStore, catalogCache)
	authHandlers := handlers.NewAuth(sessionStore, userStore)
	analyticsHandlers := handlers.NewAnalytics(clickStore)
	publishHandlers := handlers.NewPublish(orchestrator)
	publicHandlers := handlers.NewPublic(cfg.SiteDir, cfg.PublicDir, menuStore, catalogCache, resolver)

	r := router.New(sessionStore, adminHandlers, authHandlers, analyticsHandlers, publishHandlers, publicHandlers)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

// warmCatalog consumes the live menu snapshot feed and re-serializes
// each snapshot into the catalog cache. Every admin write invalidates
// and republishes, so readers always see the newest catalog.
func warmCatalog(ctx context.Context, menuStore *store.MenuStore, catalogCache *cache.CatalogCache) {
	for items := range store.Watch(ctx, menuStore, catalogCache) {
		catalog := exporter.BuildCatalog(items)
		data, err := json.Marshal(catalog)
		if err != nil {
			slog.Error("catalog serialize failed", "error", err)
			continue
		}
		catalogCache.Set(ctx, data)
		slog.Debug("catalog cache refreshed", "items", len(items))
	}
}
