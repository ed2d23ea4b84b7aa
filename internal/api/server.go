// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the composition root of the HTTP transport (chi router).
  - Only this package and cmd/api import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/taibuivan/shelfsync/internal/core/author"
	"github.com/taibuivan/shelfsync/internal/core/library"
	"github.com/taibuivan/shelfsync/internal/core/rating"
	"github.com/taibuivan/shelfsync/internal/core/series"
	"github.com/taibuivan/shelfsync/internal/core/taxonomy"
	dexsync "github.com/taibuivan/shelfsync/internal/integration/mangadex"
	musync "github.com/taibuivan/shelfsync/internal/integration/mangaupdates"
	"github.com/taibuivan/shelfsync/internal/platform/config"
	"github.com/taibuivan/shelfsync/internal/platform/constants"
	"github.com/taibuivan/shelfsync/internal/platform/middleware"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
type Handlers struct {
	// Liveness is the /health handler, always 200 while the process runs.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler, 200 when Postgres and Redis answer.
	Readiness http.HandlerFunc

	// Series serves reconciliation under /external and the stored series.
	Series *series.Handler

	Authors  *author.Handler
	Taxonomy *taxonomy.Handler
	Library  *library.Handler

	// Ratings adds the batch write to /external and serves /ratings.
	Ratings *rating.Handler

	// MangaDexSync is nil when no MangaDex account is configured.
	MangaDexSync *dexsync.Handler

	// MangaUpdatesSync is nil when no MangaUpdates account is configured.
	MangaUpdatesSync *musync.Handler
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
func NewServer(ctx context.Context, cfg *config.Config, log *slog.Logger, verifier middleware.TokenVerifier, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.RateLimit(ctx))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.Authenticate(verifier))
	r.Use(middleware.CORS(cfg, middleware.SplitOrigins(cfg.ExtraOrigins)))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)

	// # Application API
	r.Route("/api/v1", func(api chi.Router) {
		// Mount hands the whole subtree over, so the rating write joins the
		// series router before it is mounted.
		external := h.Series.ExternalRoutes()
		h.Ratings.RegisterExternalRoutes(external)
		api.Mount("/external", external)

		api.Mount("/series", h.Series.Routes())
		api.Route("/authors", h.Authors.RegisterRoutes)
		api.Route("/taxonomy", h.Taxonomy.RegisterRoutes)
		api.Route("/library", h.Library.RegisterRoutes)
		api.Route("/ratings", h.Ratings.RegisterRoutes)

		if h.MangaDexSync != nil {
			api.Route("/integrations/mangadex", h.MangaDexSync.RegisterRoutes)
		}
		if h.MangaUpdatesSync != nil {
			api.Route("/integrations/mangaupdates", h.MangaUpdatesSync.RegisterRoutes)
		}
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// Handler exposes the router, used by tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server. It blocks until the server is closed.
func (s *Server) ListenAndServe() error {
	s.log.Info("server_starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}
