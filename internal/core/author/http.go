// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package author

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

func (handler *Handler) RegisterRoutes(router chi.Router) {
	// Public
	router.Get("/", handler.listAuthors)
	router.Get("/{id}", handler.getAuthor)

	// Admin only
	router.Group(func(adminRoute chi.Router) {
		adminRoute.Use(middleware.RequireRole(sec.RoleAdmin))
		adminRoute.Post("/{id}/merge/{other}", handler.mergeAuthors)
	})
}

func (handler *Handler) listAuthors(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)

	filter := Filter{
		Query: request.URL.Query().Get("q"),
	}

	authors, total, err := handler.service.ListAuthors(request.Context(), filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, authors, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

func (handler *Handler) getAuthor(writer http.ResponseWriter, request *http.Request) {
	authorID := requestutil.Param(request, FieldID)

	validator := &validate.Validator{}
	if err := validator.UUID(FieldID, authorID).Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	author, err := handler.service.GetAuthor(request.Context(), authorID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, author)
}

/*
POST /api/v1/authors/{id}/merge/{other} (admin).

Response:
  - 200: The surviving author
  - 400: Malformed ids or id == other
  - 404: Either author does not exist
  - 409: The two authors hold different identifiers for one provider
*/
func (handler *Handler) mergeAuthors(writer http.ResponseWriter, request *http.Request) {
	authorID := requestutil.Param(request, FieldID)
	otherID := requestutil.Param(request, FieldOther)

	validator := &validate.Validator{}
	if err := validator.UUID(FieldID, authorID).UUID(FieldOther, otherID).Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	author, err := handler.service.MergeAuthors(request.Context(), authorID, otherID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, author)
}
