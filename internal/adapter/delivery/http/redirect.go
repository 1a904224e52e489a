package http

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/vadimbarashkov/golinks/internal/entity"
)

type shortCodeResolver interface {
	ResolveShortCode(ctx context.Context, shortCode string) (*entity.Link, error)
}

type visitTracker interface {
	Track(link *entity.Link, referrer string)
}

type redirectHandler struct {
	resolver     shortCodeResolver
	tracker      visitTracker
	fallbackPath string
}

func newRedirectHandler(resolver shortCodeResolver, tracker visitTracker, fallbackPath string) *redirectHandler {
	return &redirectHandler{
		resolver:     resolver,
		tracker:      tracker,
		fallbackPath: fallbackPath,
	}
}

// redirect sends the visitor to the link destination. Unknown aliases land on
// the search page prefilled with the alias.
func (h *redirectHandler) redirect(w http.ResponseWriter, r *http.Request) {
	shortCode := chi.URLParam(r, "shortCode")

	link, err := h.resolver.ResolveShortCode(r.Context(), shortCode)
	if err != nil {
		if errors.Is(err, entity.ErrLinkNotFound) {
			http.Redirect(w, r, h.fallbackPath+"?q="+url.QueryEscape(shortCode), http.StatusFound)
			return
		}

		renderError(w, r, err)
		return
	}

	http.Redirect(w, r, link.URL, http.StatusFound)

	if h.tracker != nil {
		h.tracker.Track(link, r.Referer())
	}
}
