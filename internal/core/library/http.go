// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/shelfsync/internal/platform/middleware"
	requestutil "github.com/taibuivan/shelfsync/internal/platform/request"
	"github.com/taibuivan/shelfsync/internal/platform/respond"
	"github.com/taibuivan/shelfsync/internal/platform/sec"
	"github.com/taibuivan/shelfsync/internal/platform/validate"
	"github.com/taibuivan/shelfsync/pkg/pagination"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the library under /library. Writes are admin only.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/", handler.listEntries)
	router.Get("/{series_id}", handler.getEntry)

	router.Group(func(adminRoute chi.Router) {
		adminRoute.Use(middleware.RequireRole(sec.RoleAdmin))
		adminRoute.Put("/{series_id}", handler.setStatus)
		adminRoute.Delete("/{series_id}", handler.removeEntry)
	})
}

// GET /api/v1/library?status=&source=&page=&limit=
func (handler *Handler) listEntries(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)
	query := request.URL.Query()

	filter := Filter{
		Status: Status(query.Get("status")),
		Source: Source(query.Get("source")),
	}

	entries, total, err := handler.service.ListEntries(request.Context(), filter, params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, entries, pagination.NewMeta(params.Page, params.Limit, total))
}

func (handler *Handler) getEntry(writer http.ResponseWriter, request *http.Request) {
	seriesID, ok := seriesIDParam(writer, request)
	if !ok {
		return
	}

	result, err := handler.service.GetEntry(request.Context(), seriesID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, result)
}

/*
PUT /api/v1/library/{series_id} (admin).

Request:
  - status: string

Response:
  - 200: Entry
  - 400: Unknown status
  - 404: The series is not stored
*/
func (handler *Handler) setStatus(writer http.ResponseWriter, request *http.Request) {
	seriesID, ok := seriesIDParam(writer, request)
	if !ok {
		return
	}

	var body struct {
		Status Status `json:"status"`
	}
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	result, err := handler.service.SetStatus(request.Context(), seriesID, body.Status, SourceManual)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, result)
}

func (handler *Handler) removeEntry(writer http.ResponseWriter, request *http.Request) {
	seriesID, ok := seriesIDParam(writer, request)
	if !ok {
		return
	}

	if err := handler.service.RemoveEntry(request.Context(), seriesID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

func seriesIDParam(writer http.ResponseWriter, request *http.Request) (string, bool) {
	seriesID := requestutil.Param(request, FieldSeriesID)

	validator := &validate.Validator{}
	if err := validator.UUID(FieldSeriesID, seriesID).Err(); err != nil {
		respond.Error(writer, request, err)
		return "", false
	}
	return seriesID, true
}
