package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/vadimbarashkov/golinks/internal/entity"
)

type linkUseCase interface {
	CreateLink(ctx context.Context, link entity.Link) (*entity.Link, error)
	GetLink(ctx context.Context, id int64) (*entity.Link, error)
	ListLinks(ctx context.Context, filter entity.LinkFilter) (*entity.LinkPage, error)
	ModifyLink(ctx context.Context, id int64, upd entity.LinkUpdate) (*entity.Link, error)
	DeleteLink(ctx context.Context, id int64) error
}

type linkHandler struct {
	useCase  linkUseCase
	validate *validator.Validate
}

func newLinkHandler(useCase linkUseCase, validate *validator.Validate) *linkHandler {
	return &linkHandler{
		useCase:  useCase,
		validate: validate,
	}
}

func parsePage(s string) (int, error) {
	if s == "" {
		return 1, nil
	}

	page, err := strconv.Atoi(s)
	if err != nil || page < 1 {
		return 0, entity.NewValidationError("page must be a positive integer")
	}

	return page, nil
}

func (h *linkHandler) createLink(w http.ResponseWriter, r *http.Request) {
	var req createLinkRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	link, err := h.useCase.CreateLink(r.Context(), req.toEntity())
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, toLinkResponse(link))
}

func (h *linkHandler) listLinks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, err := parsePage(q.Get("page"))
	if err != nil {
		renderError(w, r, err)
		return
	}

	limit, err := entity.ParseLimit(q.Get("limit"))
	if err != nil {
		renderError(w, r, err)
		return
	}

	links, err := h.useCase.ListLinks(r.Context(), entity.LinkFilter{
		Search: q.Get("search"),
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toLinkPageResponse(links, page, limit))
}

func (h *linkHandler) getLink(w http.ResponseWriter, r *http.Request) {
	id, err := entity.ParseLinkID(chi.URLParam(r, "id"))
	if err != nil {
		renderError(w, r, err)
		return
	}

	link, err := h.useCase.GetLink(r.Context(), id)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toLinkResponse(link))
}

func (h *linkHandler) modifyLink(w http.ResponseWriter, r *http.Request) {
	id, err := entity.ParseLinkID(chi.URLParam(r, "id"))
	if err != nil {
		renderError(w, r, err)
		return
	}

	var req updateLinkRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	link, err := h.useCase.ModifyLink(r.Context(), id, req.toEntity())
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toLinkResponse(link))
}

func (h *linkHandler) deleteLink(w http.ResponseWriter, r *http.Request) {
	id, err := entity.ParseLinkID(chi.URLParam(r, "id"))
	if err != nil {
		renderError(w, r, err)
		return
	}

	if err := h.useCase.DeleteLink(r.Context(), id); err != nil {
		renderError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
