package http

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/render"
	"github.com/vadimbarashkov/golinks/internal/adapter/metadata"
	"github.com/vadimbarashkov/golinks/internal/entity"
)

type searchUseCase interface {
	Search(ctx context.Context, query string) ([]entity.SearchResult, error)
}

type metadataFetcher interface {
	OGImage(ctx context.Context, page *url.URL) (*string, error)
}

type searchHandler struct {
	useCase searchUseCase
	fetcher metadataFetcher
}

func newSearchHandler(useCase searchUseCase, fetcher metadataFetcher) *searchHandler {
	return &searchHandler{
		useCase: useCase,
		fetcher: fetcher,
	}
}

func (h *searchHandler) search(w http.ResponseWriter, r *http.Request) {
	results, err := h.useCase.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toSearchResponse(results))
}

func (h *searchHandler) metadata(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("url")
	if target == "" {
		renderError(w, r, entity.NewValidationError("missing url"))
		return
	}

	page, err := metadata.ResolveURL(target)
	if err != nil {
		renderError(w, r, entity.NewValidationError("invalid url"))
		return
	}

	image, err := h.fetcher.OGImage(r.Context(), page)
	if err != nil {
		var statusErr *metadata.StatusError
		if errors.As(err, &statusErr) {
			render.Status(r, statusErr.StatusCode)
			render.JSON(w, r, newErrorResponse("failed to fetch page"))
			return
		}

		renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, metadataResponse{OGImage: image})
}
