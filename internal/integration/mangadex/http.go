// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package mangadex

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/shelfsync/internal/platform/middleware"
	"github.com/taibuivan/shelfsync/internal/platform/respond"
	"github.com/taibuivan/shelfsync/internal/platform/sec"
)

// Handler lets an administrator trigger a run outside the cron schedule.
type Handler struct {
	syncer  *Syncer
	ratings *RatingsSyncer
}

func NewHandler(syncer *Syncer, ratings *RatingsSyncer) *Handler {
	return &Handler{syncer: syncer, ratings: ratings}
}

func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireRole(sec.RoleAdmin))
		admin.Post("/sync", handler.sync)
		admin.Post("/ratings", handler.syncRatings)
	})
}

/*
POST /api/v1/integrations/mangadex/sync (admin).

Response:
  - 200: Report
  - 409: Another run holds the lock
  - 502: MangaDex refused the credentials or is unreachable
*/
func (handler *Handler) sync(writer http.ResponseWriter, request *http.Request) {
	report, err := handler.syncer.Run(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, report)
}

/*
POST /api/v1/integrations/mangadex/ratings (admin).

Response:
  - 200: rating.Result
  - 409: Another rating run holds the lock
  - 502: MangaDex is unreachable
*/
func (handler *Handler) syncRatings(writer http.ResponseWriter, request *http.Request) {
	result, err := handler.ratings.Run(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, result)
}
