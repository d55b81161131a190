// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// restaurant site server. It organizes routes into the public surface
// (static bundle, hero slides, analytics, publish status) and the admin
// JSON API with its auth middleware stack.
package router

import (
	"github.com/go-chi/chi/v5"

	"ganbara/internal/handlers"
	"ganbara/internal/middleware"
	"ganbara/internal/session"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(
	sessionStore *session.Store,
	admin *handlers.Admin,
	auth *handlers.Auth,
	analytics *handlers.Analytics,
	publishH *handlers.Publish,
	public *handlers.Public,
) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.LoadSession(sessionStore))

	// Public API.
	r.Get("/api/health", handlers.Health)
	r.Get("/api/publish/status", publishH.Status)
	r.Get("/api/hero-slides", public.HeroSlides)
	r.Post("/api/track-click", analytics.TrackClick)

	// Admin JSON API — CSRF-protected, auth-gated.
	r.Route("/admin/api", func(r chi.Router) {
		r.Use(middleware.CSRF)

		// Entry points reachable without a session.
		r.Post("/login", auth.Login)
		r.Post("/logout", auth.Logout)

		// 2FA enrollment and verification — after login, before 2FA.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get("/session", auth.Session)
			r.Post("/2fa/setup", auth.TwoFASetup)
			r.Post("/2fa/verify", auth.TwoFAVerify)
		})

		// Fully authenticated admin area. The admin role claim is
		// checked per request from the session, never cached client-side.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Use(middleware.Require2FA)

			r.Post("/session/refresh", auth.RefreshClaims)
			r.Get("/stats", analytics.Stats)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)

				r.Route("/menu", func(r chi.Router) {
					r.Get("/", admin.List)
					r.Post("/", admin.Create)
					r.Post("/import", admin.Import)
					r.Put("/{id}", admin.Update)
					r.Delete("/{id}", admin.Delete)
				})

				r.Post("/publish", publishH.Trigger)
			})
		})
	})

	// Everything else is the built static site.
	r.Handle("/*", public.Static())

	return r
}
