package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/httplog/v2"
	"github.com/jmoiron/sqlx"
	"github.com/vadimbarashkov/golinks/internal/adapter/metadata"
	"github.com/vadimbarashkov/golinks/internal/analytics"
	"github.com/vadimbarashkov/golinks/internal/config"
	"github.com/vadimbarashkov/golinks/internal/embedding"
	"github.com/vadimbarashkov/golinks/internal/search"
	"github.com/vadimbarashkov/golinks/internal/tracker"
	"github.com/vadimbarashkov/golinks/internal/usecase"
	"github.com/vadimbarashkov/golinks/pkg/postgres"
	"golang.org/x/sync/errgroup"

	rediscache "github.com/vadimbarashkov/golinks/internal/adapter/cache/redis"
	delivery "github.com/vadimbarashkov/golinks/internal/adapter/delivery/http"
	pgrepo "github.com/vadimbarashkov/golinks/internal/adapter/repository/postgres"
)

const metadataTimeout = 10 * time.Second

// ErrVectorExtensionMissing is returned when the database has not been migrated.
var ErrVectorExtensionMissing = errors.New("vector extension is not installed, run migrations first")

func connectDB(ctx context.Context, cfg config.Postgres) (*sqlx.DB, error) {
	return postgres.New(ctx, cfg.DSN(), postgres.WithPool(postgres.PoolConfig{
		ConnMaxIdleTime: cfg.ConnMaxIdleTime,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		MaxIdleConns:    cfg.MaxIdleConns,
		MaxOpenConns:    cfg.MaxOpenConns,
	}))
}

func newEmbedder(cfg config.Embedding, logger *slog.Logger) *embedding.Lazy {
	ec := embedding.Config{
		Host:       cfg.Host,
		Model:      cfg.Model,
		Token:      cfg.Token,
		Dimensions: cfg.Dimensions,
	}
	return embedding.NewLazy(ec.Factory(logger))
}

// Run applies pending migrations and serves the HTTP API until ctx is canceled.
func Run(ctx context.Context, cfg *config.Config, logger *httplog.Logger) error {
	const op = "app.Run"

	db, err := connectDB(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("%s: failed to connect to database: %w", op, err)
	}
	defer db.Close()

	if err := postgres.MigrateUp(cfg.Postgres.MigrationsPath, cfg.Postgres.DSN()); err != nil {
		return fmt.Errorf("%s: failed to run migrations: %w", op, err)
	}

	embedder := newEmbedder(cfg.Embedding, logger.Logger)

	linkRepo := pgrepo.NewLinkRepository(db)
	visitRepo := pgrepo.NewVisitRepository(db)
	analyticsRepo := pgrepo.NewAnalyticsRepository(db)

	linkOpts := []usecase.Option{usecase.WithLogger(logger.Logger)}

	if cfg.Cache.RedisURL != "" {
		rc, err := rediscache.Connect(ctx, cfg.Cache.RedisURL)
		if err != nil {
			return fmt.Errorf("%s: failed to connect to cache: %w", op, err)
		}
		defer rc.Close()

		linkOpts = append(linkOpts, usecase.WithCache(rediscache.NewLinkCache(rc, cfg.Cache.TTL)))
		logger.Info("alias resolution cache enabled", slog.Duration("ttl", cfg.Cache.TTL))
	}

	linkUseCase := usecase.NewLinkUseCase(cfg.ShortCodeLength, linkRepo, embedder, linkOpts...)
	searchUseCase := usecase.NewSearchUseCase(linkRepo, embedder, search.Policy{
		MinSimilarity: cfg.Search.MinSimilarity,
		TopK:          cfg.Search.TopK,
	})
	analyticsUseCase := usecase.NewAnalyticsUseCase(analyticsRepo, linkRepo, analytics.RisingPolicy{
		Window: cfg.Analytics.RisingWindow,
		Max:    cfg.Analytics.RisingMax,
	})

	visitTracker, err := tracker.New(visitRepo, tracker.Config{
		PoolSize: cfg.Tracker.PoolSize,
		Timeout:  cfg.Tracker.Timeout,
	}, logger.Logger)
	if err != nil {
		return fmt.Errorf("%s: failed to create visit tracker: %w", op, err)
	}

	router := delivery.NewRouter(logger, delivery.Services{
		Links:     linkUseCase,
		Search:    searchUseCase,
		Analytics: analyticsUseCase,
		Metadata:  metadata.NewFetcher(metadataTimeout),
		Tracker:   visitTracker,
	}, delivery.Options{
		FallbackPath:   cfg.Redirect.FallbackPath,
		AllowedOrigins: cfg.HTTPServer.AllowedOrigins,
	})

	server := &http.Server{
		Addr:           cfg.HTTPServer.Addr(),
		Handler:        router,
		ReadTimeout:    cfg.HTTPServer.ReadTimeout,
		WriteTimeout:   cfg.HTTPServer.WriteTimeout,
		IdleTimeout:    cfg.HTTPServer.IdleTimeout,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error

		logger.Info("starting server", slog.String("addr", server.Addr), slog.String("env", cfg.Env))

		switch {
		case cfg.Env == config.EnvProd && cfg.HTTPServer.CertFile != "":
			err = server.ListenAndServeTLS(cfg.HTTPServer.CertFile, cfg.HTTPServer.KeyFile)
		default:
			err = server.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s: server error occurred: %w", op, err)
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPServer.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: failed to shutdown server: %w", op, err)
		}

		if err := visitTracker.Close(cfg.Tracker.ShutdownTimeout); err != nil {
			logger.Warn("visit tracker did not drain in time", slog.Any("err", err))
		}

		logger.Info("server stopped")

		return nil
	})

	return g.Wait()
}

// Reembed computes missing embeddings, or every embedding when all is set,
// and returns the number of links updated.
func Reembed(ctx context.Context, cfg *config.Config, logger *slog.Logger, all bool) (int, error) {
	const op = "app.Reembed"

	db, err := connectDB(ctx, cfg.Postgres)
	if err != nil {
		return 0, fmt.Errorf("%s: failed to connect to database: %w", op, err)
	}
	defer db.Close()

	ok, err := postgres.HasExtension(ctx, db, "vector")
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return 0, fmt.Errorf("%s: %w", op, ErrVectorExtensionMissing)
	}

	uc := usecase.NewEmbeddingUseCase(pgrepo.NewLinkRepository(db), newEmbedder(cfg.Embedding, logger))

	n, err := uc.Reembed(ctx, all)
	if err != nil {
		return n, fmt.Errorf("%s: %w", op, err)
	}

	return n, nil
}
