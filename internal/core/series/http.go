// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package series

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/shelfsync/internal/platform/middleware"
	requestutil "github.com/taibuivan/shelfsync/internal/platform/request"
	"github.com/taibuivan/shelfsync/internal/platform/respond"
	"github.com/taibuivan/shelfsync/internal/platform/sec"
	"github.com/taibuivan/shelfsync/internal/platform/validate"
	"github.com/taibuivan/shelfsync/pkg/pagination"
	querystr "github.com/taibuivan/shelfsync/pkg/query"
)

// # Handler Implementation

// Handler exposes reconciliation and the stored library over HTTP.
type Handler struct {
	service *Service
}

// NewHandler constructs a series [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// ExternalRoutes serves the reconciliation endpoints mounted at /external.
//
//   - Lookups (Public): reconcile, find by id, parse a URL.
//   - Import (Restricted): writes to the library and requires [sec.RoleAdmin].
func (handler *Handler) ExternalRoutes() chi.Router {
	router := chi.NewRouter()

	router.Post("/series/data", handler.reconcile)
	router.Post("/series/id", handler.findByAnyID)
	router.Post("/id", handler.extractID)

	router.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireRole(sec.RoleAdmin))
		admin.Post("/series/import", handler.importSeries)
	})

	return router
}

// Routes serves the stored series mounted at /series.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.listSeries)
	router.Get("/{id}", handler.getSeries)

	return router
}

// idsRequest is the body shared by the reconciliation endpoints.
type idsRequest struct {
	IDs    IDs  `json:"ids"`
	Follow bool `json:"follow"`
}

/*
POST /api/v1/external/series/data.

Description: Fetches every known provider entry and returns the merged record
together with the status observed per provider.

Request:
  - ids: map[string]string (mu, dex, mal, bato, line)
  - follow: bool (also fetch identifiers discovered along the way)

Response:
  - 200: Reconciliation
  - 400: Malformed identifiers
  - 404 / 502 / 500: Every provider failed
  - 409: Providers disagree on an identifier
*/
func (handler *Handler) reconcile(writer http.ResponseWriter, request *http.Request) {
	var body idsRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	result, err := handler.service.Reconcile(request.Context(), body.IDs, body.Follow)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, result)
}

/*
POST /api/v1/external/series/id.

Response:
  - 200: {"id": string}
  - 404: No stored series owns these identifiers
  - 409: MERGE_REQUIRED with the competing series ids
*/
func (handler *Handler) findByAnyID(writer http.ResponseWriter, request *http.Request) {
	var body idsRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	id, err := handler.service.FindByAnyID(request.Context(), body.IDs)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{"id": id})
}

// POST /api/v1/external/series/import (admin).
func (handler *Handler) importSeries(writer http.ResponseWriter, request *http.Request) {
	var body idsRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	result, err := handler.service.Import(request.Context(), body.IDs, body.Follow)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if result.Created {
		respond.Created(writer, result)
		return
	}
	respond.OK(writer, result)
}

/*
POST /api/v1/external/id.

Description: Parses a series URL shared by a user into a provider identifier.

Request:
  - url: string

Response:
  - 200: {"provider": string, "id": string}
  - 400: The URL belongs to no enabled provider
*/
func (handler *Handler) extractID(writer http.ResponseWriter, request *http.Request) {
	var body struct {
		URL string `json:"url"`
	}
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	if err := validator.Required("url", body.URL).URL("url", body.URL).Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	provider, id, err := handler.service.ExtractID(request.Context(), body.URL)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{"provider": string(provider), "id": id})
}

// GET /api/v1/series?q=&type=&genres=Action,Drama&page=&limit=
func (handler *Handler) listSeries(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)
	query := request.URL.Query()

	filter := Filter{
		Query:  query.Get("q"),
		Type:   Type(query.Get("type")),
		Genres: querystr.StringSlice(query.Get("genres")),
	}

	list, total, err := handler.service.ListSeries(request.Context(), filter, params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, list, pagination.NewMeta(params.Page, params.Limit, total))
}

// GET /api/v1/series/{id}
func (handler *Handler) getSeries(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.Param(request, "id")

	validator := &validate.Validator{}
	if err := validator.UUID("id", id).Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	series, err := handler.service.GetSeries(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, series)
}
