// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package mangaupdates

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/shelfsync/internal/platform/middleware"
	"github.com/taibuivan/shelfsync/internal/platform/respond"
	"github.com/taibuivan/shelfsync/internal/platform/sec"
)

// Handler lets an administrator trigger a run outside the cron schedule.
type Handler struct {
	syncer *Syncer
}

func NewHandler(syncer *Syncer) *Handler {
	return &Handler{syncer: syncer}
}

func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.With(middleware.RequireRole(sec.RoleAdmin)).Post("/sync-lists", handler.syncLists)
}

/*
POST /api/v1/integrations/mangaupdates/sync-lists (admin).

Response:
  - 200: Report
  - 409: Another run holds the lock
  - 502: MangaUpdates refused the credentials or is unreachable
*/
func (handler *Handler) syncLists(writer http.ResponseWriter, request *http.Request) {
	report, err := handler.syncer.Run(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, report)
}
