package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	apiMiddleware "github.com/phrazzld/postcraft-api/internal/api/middleware"
	"github.com/phrazzld/postcraft-api/internal/api/shared"
)

// setupRouter creates the router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.Trace(app.logger))
	r.Use(app.metrics.Middleware)

	r.Get("/healthz", app.healthz)
	r.Method(http.MethodGet, "/metrics", app.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		// Public
		r.Post("/auth/register", app.authHandler.Register)
		r.Post("/auth/login", app.authHandler.Login)

		// Protected
		r.Group(func(r chi.Router) {
			r.Use(app.authMiddleware.Authenticate)

			r.Get("/profile", app.profileHandler.GetProfile)
			r.Put("/profile", app.profileHandler.UpdateProfile)
			r.Get("/usage", app.profileHandler.GetUsage)

			r.Post("/summaries", app.contentHandler.Summarize)
			r.Post("/posts", app.contentHandler.GeneratePost)
			r.Post("/posts/tune", app.contentHandler.TunePost)
			r.Get("/posts", app.contentHandler.ListPosts)
			r.Get("/history", app.contentHandler.ListHistory)
		})
	})

	return r
}

// healthz reports whether the database is reachable.
func (app *application) healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := app.db.PingContext(ctx); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusServiceUnavailable, "Database unavailable", err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
