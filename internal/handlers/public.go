// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"ganbara/internal/cache"
	"ganbara/internal/exporter"
	"ganbara/internal/hero"
	"ganbara/internal/models"
	"ganbara/internal/store"
)

// Public serves the visitor-facing endpoints: resolved hero slides and
// the static site bundle.
type Public struct {
	siteDir   string
	publicDir string
	menu      *store.MenuStore
	catalog   *cache.CatalogCache
	resolver  *hero.Resolver
}

// NewPublic creates the public handler group.
func NewPublic(siteDir, publicDir string, menu *store.MenuStore, catalog *cache.CatalogCache, resolver *hero.Resolver) *Public {
	return &Public{
		siteDir:   siteDir,
		publicDir: publicDir,
		menu:      menu,
		catalog:   catalog,
		resolver:  resolver,
	}
}

// HeroSlides resolves the authored carousel against the live catalog.
// While the catalog is still loading the endpoint answers 503 with a
// Retry-After so clients poll instead of rendering a half carousel.
func (h *Public) HeroSlides(w http.ResponseWriter, r *http.Request) {
	descriptors := hero.LoadDescriptors(filepath.Join(h.siteDir, hero.FileName))

	catalog := h.loadCatalog(r)

	slides, err := h.resolver.Resolve(descriptors, catalog)
	if err != nil {
		if errors.Is(err, hero.ErrCatalogPending) {
			w.Header().Set("Retry-After", "2")
			writeError(w, http.StatusServiceUnavailable, "catalog_pending")
			return
		}
		slog.Error("hero resolution failed", "error", err)
		writeError(w, http.StatusInternalServerError, "hero resolution failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"slides": slides})
}

// loadCatalog returns the current catalog snapshot, from cache when
// possible, rebuilding and re-caching it from the store otherwise.
// Returns nil when the catalog cannot be produced; resolution then
// reports pending for catalog-referencing slides.
func (h *Public) loadCatalog(r *http.Request) models.Catalog {
	ctx := r.Context()

	if data, ok := h.catalog.Get(ctx); ok {
		var catalog models.Catalog
		if err := json.Unmarshal(data, &catalog); err == nil {
			return catalog
		}
		slog.Warn("cached catalog malformed, rebuilding")
		h.catalog.Invalidate(ctx)
	}

	items, err := h.menu.ListAll()
	if err != nil {
		slog.Warn("catalog rebuild failed", "error", err)
		return nil
	}
	catalog := exporter.BuildCatalog(items)

	if data, err := json.Marshal(catalog); err == nil {
		h.catalog.Set(ctx, data)
	}
	return catalog
}

// Static serves the built site bundle with per-type cache policies:
// long immutable caching for images, a week for scripts and styles, a
// short window for data files, and none for the HTML entry point.
func (h *Public) Static() http.Handler {
	fs := http.FileServer(http.Dir(h.publicDir))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", cachePolicyFor(r.URL.Path))
		fs.ServeHTTP(w, r)
	})
}

func cachePolicyFor(urlPath string) string {
	switch strings.ToLower(path.Ext(urlPath)) {
	case ".jpg", ".jpeg", ".png", ".webp", ".gif", ".svg", ".ico", ".woff", ".woff2":
		return "public, max-age=31536000, immutable"
	case ".js", ".css":
		return "public, max-age=604800"
	case ".json":
		return "public, max-age=300"
	default:
		// The HTML entry point and extension-less paths revalidate.
		return "no-cache"
	}
}
