// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package rating

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/shelfsync/internal/platform/middleware"
	requestutil "github.com/taibuivan/shelfsync/internal/platform/request"
	"github.com/taibuivan/shelfsync/internal/platform/respond"
	"github.com/taibuivan/shelfsync/internal/platform/sec"
	"github.com/taibuivan/shelfsync/internal/platform/validate"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterExternalRoutes adds the batch write to the /external router.
func (handler *Handler) RegisterExternalRoutes(router chi.Router) {
	router.With(middleware.RequireRole(sec.RoleAdmin)).Put("/series/ratings", handler.updateRatings)
}

// RegisterRoutes mounts the read side under /ratings.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/{series_id}", handler.listRatings)
}

/*
PUT /api/v1/external/series/ratings (admin).

Request:
  - provider: string (mu, dex, mal)
  - ratings: [{id, rating, votes}]
  - user_ratings: [{id, rating}]

Response:
  - 200: Result, not_exist lists the ids with no stored series
  - 400: Unknown provider, empty batch or out of range values
*/
func (handler *Handler) updateRatings(writer http.ResponseWriter, request *http.Request) {
	var body Batch
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	result, err := handler.service.UpdateRatings(request.Context(), body)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, result)
}

// GET /api/v1/ratings/{series_id}
func (handler *Handler) listRatings(writer http.ResponseWriter, request *http.Request) {
	ratings, err := handler.service.ListRatings(request.Context(), requestutil.Param(request, FieldSeriesID))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, ratings)
}
