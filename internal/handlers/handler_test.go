// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler
// integration tests. Tests are skipped when PostgreSQL or Valkey are
// unavailable.
package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"ganbara/internal/cache"
	"ganbara/internal/database"
	"ganbara/internal/hero"
	"ganbara/internal/middleware"
	"ganbara/internal/models"
	"ganbara/internal/session"
	"ganbara/internal/store"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "ganbara")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "ganbara")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testValkeyClient returns a Redis client for handler tests on DB 15.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		for _, pattern := range []string{"session:*", "catalog:*"} {
			keys, _ := client.Keys(ctx, pattern).Result()
			if len(keys) > 0 {
				client.Del(ctx, keys...)
			}
		}
		client.Close()
	})

	return client
}

// testEnv holds all dependencies for handler integration tests.
type testEnv struct {
	DB       *sql.DB
	Valkey   *redis.Client
	Sessions *session.Store
	Menu     *store.MenuStore
	Users    *store.UserStore
	Clicks   *store.ClickStore
	Catalog  *cache.CatalogCache
	Admin    *Admin
	Auth     *Auth
}

// newTestEnv creates a complete test environment with handler dependencies.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)
	vk := testValkeyClient(t)

	sessions := session.NewStore(vk)
	menuStore := store.NewMenuStore(db)
	userStore := store.NewUserStore(db)
	clickStore := store.NewClickStore(db)
	catalogCache := cache.NewCatalogCache(vk, 1*time.Minute)

	return &testEnv{
		DB:       db,
		Valkey:   vk,
		Sessions: sessions,
		Menu:     menuStore,
		Users:    userStore,
		Clicks:   clickStore,
		Catalog:  catalogCache,
		Admin:    NewAdmin(menuStore, catalogCache),
		Auth:     NewAuth(sessions, userStore),
	}
}

// newTestPublic builds a Public handler group over the test env.
func newTestPublic(t *testing.T, env *testEnv, siteDir string) *Public {
	t.Helper()
	resolver := hero.New(hero.Defaults{
		Title:    models.Localized{ES: "Asador Ganbara", EU: "Ganbara Erretegia"},
		Subtitle: models.Localized{ES: "Cocina a la brasa", EU: "Brasan egindako sukaldaritza"},
	})
	return NewPublic(siteDir, siteDir, env.Menu, env.Catalog, resolver)
}

// ctxWithSession adds session data to a context using the middleware key.
func ctxWithSession(ctx context.Context, data *session.Data) context.Context {
	return context.WithValue(ctx, middleware.SessionKey, data)
}

// withChiURLParam adds a chi URL parameter to a request.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// cleanMenu removes every menu item between tests.
func cleanMenu(t *testing.T, db *sql.DB) {
	t.Helper()
	if _, err := db.Exec("DELETE FROM menu_items"); err != nil {
		t.Fatalf("clean menu_items: %v", err)
	}
}
