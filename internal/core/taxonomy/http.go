// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package taxonomy

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/shelfsync/internal/core/series"
	requestutil "github.com/taibuivan/shelfsync/internal/platform/request"
	"github.com/taibuivan/shelfsync/internal/platform/respond"
	"github.com/taibuivan/shelfsync/internal/platform/validate"
)

// Handler exposes the vocabularies without touching any provider.
type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/genres", handler.listGenres)
	router.Post("/normalize", handler.normalize)
}

// GET /api/v1/taxonomy/genres
func (handler *Handler) listGenres(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, map[string]any{
		"genres": Genres(),
		"types":  series.Types,
	})
}

/*
POST /api/v1/taxonomy/normalize.

Description: Re-runs the normalizer of one provider on raw signals, which
lets stored records be re-tagged after a vocabulary change.

Request:
  - provider: string (mu, dex, mal, bato, line)
  - input: Input

Response:
  - 200: Result
  - 400: Unknown provider or malformed body
*/
func (handler *Handler) normalize(writer http.ResponseWriter, request *http.Request) {
	var body struct {
		Provider series.Provider `json:"provider"`
		Input    Input           `json:"input"`
	}
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	result, err := Normalize(body.Provider, body.Input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, result)
}
