package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/vadimbarashkov/golinks/internal/entity"
)

type analyticsUseCase interface {
	AggregatedClicks(ctx context.Context, r entity.Range) (*entity.ClickSeries, error)
	LinkAnalytics(ctx context.Context, id int64, r entity.Range) (*entity.LinkAnalytics, error)
	TopLinks(ctx context.Context, r entity.Range, limit int) (*entity.UsageReport, error)
	LowUsageLinks(ctx context.Context, r entity.Range, limit int) (*entity.UsageReport, error)
	RisingLinks(ctx context.Context, r entity.Range, limit int) (*entity.UsageReport, error)
}

type analyticsHandler struct {
	useCase analyticsUseCase
}

func newAnalyticsHandler(useCase analyticsUseCase) *analyticsHandler {
	return &analyticsHandler{useCase: useCase}
}

func (h *analyticsHandler) aggregatedClicks(w http.ResponseWriter, r *http.Request) {
	rng, err := entity.ParseRange(r.URL.Query().Get("range"))
	if err != nil {
		renderError(w, r, err)
		return
	}

	series, err := h.useCase.AggregatedClicks(r.Context(), rng)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, aggregatedClicksResponse{
		Range:       series.Range,
		DailyClicks: toDailyResponse(series.DailyClicks),
		TotalClicks: series.TotalClicks,
	})
}

func (h *analyticsHandler) linkAnalytics(w http.ResponseWriter, r *http.Request) {
	id, err := entity.ParseLinkID(chi.URLParam(r, "id"))
	if err != nil {
		renderError(w, r, err)
		return
	}

	rng, err := entity.ParseRange(r.URL.Query().Get("range"))
	if err != nil {
		renderError(w, r, err)
		return
	}

	la, err := h.useCase.LinkAnalytics(r.Context(), id, rng)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, linkAnalyticsResponse{
		LinkID:      la.LinkID,
		Range:       la.Range,
		TotalVisits: la.TotalVisits,
		DailyVisits: toDailyResponse(la.DailyVisits),
	})
}

type usageFunc func(ctx context.Context, r entity.Range, limit int) (*entity.UsageReport, error)

// usageReport serves one of the ranked link usage reports.
func (h *analyticsHandler) usageReport(fn usageFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		limit, err := entity.ParseLimit(q.Get("limit"))
		if err != nil {
			renderError(w, r, err)
			return
		}

		rng, err := entity.ParseRange(q.Get("range"))
		if err != nil {
			renderError(w, r, err)
			return
		}

		report, err := fn(r.Context(), rng, limit)
		if err != nil {
			renderError(w, r, err)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, toUsageReportResponse(report))
	}
}
