// Package http provides the HTTP delivery layer for the go-links service.
// This package contains the JSON API handlers, the alias redirect, request
// validation and response formatting.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

const DefaultFallbackPath = "/-/search"

type linkService interface {
	linkUseCase
	shortCodeResolver
}

// Services bundles the application logic served over HTTP.
type Services struct {
	Links     linkService
	Search    searchUseCase
	Analytics analyticsUseCase
	Metadata  metadataFetcher
	Tracker   visitTracker
}

type Options struct {
	// FallbackPath receives unknown aliases as the q query parameter.
	FallbackPath   string
	AllowedOrigins []string
}

// NewRouter initializes and returns a new Chi router configured with middleware and routes for the go-links API.
func NewRouter(logger *httplog.Logger, svc Services, opts Options) *chi.Mux {
	if opts.FallbackPath == "" {
		opts.FallbackPath = DefaultFallbackPath
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"https://*", "http://*"}
	}

	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"POST", "GET", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Accept"},
		AllowCredentials: false,
		MaxAge:           84600,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(logger))
	r.Use(recoverer)
	r.Use(metrics)

	r.Handle("/-/metrics", promhttp.Handler())

	r.Get("/-/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/-/docs/swagger.yml"),
	))

	r.Get("/-/docs/swagger.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./docs/swagger.yml")
	})

	validate := newValidator()

	r.Route("/-/api", func(r chi.Router) {
		r.Get("/ping", handlePing)

		r.Route("/links", func(r chi.Router) {
			lh := newLinkHandler(svc.Links, validate)
			ah := newAnalyticsHandler(svc.Analytics)

			r.Get("/", lh.listLinks)
			r.Post("/", lh.createLink)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", lh.getLink)
				r.Patch("/", lh.modifyLink)
				r.Delete("/", lh.deleteLink)
				r.Get("/analytics", ah.linkAnalytics)
			})
		})

		r.Route("/analytics", func(r chi.Router) {
			h := newAnalyticsHandler(svc.Analytics)

			r.Get("/aggregated-clicks", h.aggregatedClicks)
			r.Get("/top-links", h.usageReport(svc.Analytics.TopLinks))
			r.Get("/low-usage-links", h.usageReport(svc.Analytics.LowUsageLinks))
			r.Get("/rising-links", h.usageReport(svc.Analytics.RisingLinks))
		})

		sh := newSearchHandler(svc.Search, svc.Metadata)
		r.Get("/search", sh.search)
		r.Get("/metadata", sh.metadata)
	})

	rh := newRedirectHandler(svc.Links, svc.Tracker, opts.FallbackPath)
	r.Get("/{shortCode}", rh.redirect)

	return r
}
