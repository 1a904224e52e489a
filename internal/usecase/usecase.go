package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vadimbarashkov/golinks/internal/entity"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

var ErrMaxRetriesExceeded = errors.New("maximum retries exceeded for generating short code")

type linkRepository interface {
	Save(ctx context.Context, link *entity.Link) (*entity.Link, error)
	RetrieveByID(ctx context.Context, id int64) (*entity.Link, error)
	RetrieveByShortCode(ctx context.Context, shortCode string) (*entity.Link, error)
	List(ctx context.Context, filter entity.LinkFilter) (*entity.LinkPage, error)
	Update(ctx context.Context, link *entity.Link) (*entity.Link, error)
	Remove(ctx context.Context, id int64) error
}

type embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type linkCache interface {
	Get(ctx context.Context, shortCode string) (*entity.Link, error)
	Set(ctx context.Context, link *entity.Link) error
	Delete(ctx context.Context, shortCodes ...string) error
}

type LinkUseCase struct {
	shortCodeLength int
	linkRepo        linkRepository
	embedder        embedder
	cache           linkCache
	logger          *slog.Logger
}

type Option func(*LinkUseCase)

// WithCache serves alias resolutions from c. Cache failures fall back to the repository.
func WithCache(c linkCache) Option {
	return func(uc *LinkUseCase) {
		uc.cache = c
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(uc *LinkUseCase) {
		uc.logger = logger
	}
}

func NewLinkUseCase(shortCodeLength int, linkRepo linkRepository, embedder embedder, opts ...Option) *LinkUseCase {
	uc := &LinkUseCase{
		shortCodeLength: shortCodeLength,
		linkRepo:        linkRepo,
		embedder:        embedder,
		logger:          slog.Default(),
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

func (uc *LinkUseCase) embed(ctx context.Context, link *entity.Link) error {
	embedding, err := uc.embedder.Embed(ctx, link.EmbeddingText())
	if err != nil {
		return entity.NewUpstreamError("failed to compute link embedding", err)
	}

	link.Embedding = embedding
	return nil
}

// CreateLink stores a new link with its embedding. A link without a short code
// gets a generated one.
func (uc *LinkUseCase) CreateLink(ctx context.Context, link entity.Link) (*entity.Link, error) {
	const op = "usecase.LinkUseCase.CreateLink"

	link.Description = entity.NormalizeDescription(link.Description)
	link.Owner = emptyToNil(link.Owner)

	if link.ShortCode != "" {
		if err := uc.embed(ctx, &link); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		saved, err := uc.linkRepo.Save(ctx, &link)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to create link: %w", op, err)
		}

		return saved, nil
	}

	saved, err := uc.createWithGeneratedShortCode(ctx, link)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return saved, nil
}

func (uc *LinkUseCase) createWithGeneratedShortCode(ctx context.Context, link entity.Link) (*entity.Link, error) {
	const maxRetries = 5

	length := uc.shortCodeLength

	for i := 0; i < maxRetries; i++ {
		shortCode, err := gonanoid.New(length)
		if err != nil {
			return nil, fmt.Errorf("failed to generate short code: %w", err)
		}

		link.ShortCode = shortCode
		if err := uc.embed(ctx, &link); err != nil {
			return nil, err
		}

		saved, err := uc.linkRepo.Save(ctx, &link)
		if err != nil {
			if errors.Is(err, entity.ErrShortCodeExists) {
				length++
				continue
			}

			return nil, fmt.Errorf("failed to create link: %w", err)
		}

		return saved, nil
	}

	return nil, ErrMaxRetriesExceeded
}

func (uc *LinkUseCase) GetLink(ctx context.Context, id int64) (*entity.Link, error) {
	const op = "usecase.LinkUseCase.GetLink"

	link, err := uc.linkRepo.RetrieveByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get link: %w", op, err)
	}

	return link, nil
}

func (uc *LinkUseCase) ListLinks(ctx context.Context, filter entity.LinkFilter) (*entity.LinkPage, error) {
	const op = "usecase.LinkUseCase.ListLinks"

	page, err := uc.linkRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list links: %w", op, err)
	}

	return page, nil
}

// ModifyLink applies a partial update. The embedding is recomputed only when
// the short code, url or description actually change.
func (uc *LinkUseCase) ModifyLink(ctx context.Context, id int64, upd entity.LinkUpdate) (*entity.Link, error) {
	const op = "usecase.LinkUseCase.ModifyLink"

	link, err := uc.linkRepo.RetrieveByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get link: %w", op, err)
	}

	oldShortCode := link.ShortCode
	recompute := false

	if upd.URL != nil && *upd.URL != link.URL {
		link.URL = *upd.URL
		recompute = true
	}
	if upd.ShortCode != nil && *upd.ShortCode != link.ShortCode {
		link.ShortCode = *upd.ShortCode
		recompute = true
	}
	if upd.Description != nil {
		desc := entity.NormalizeDescription(upd.Description)
		if !equalOptional(desc, entity.NormalizeDescription(link.Description)) {
			recompute = true
		}
		link.Description = desc
	}
	if upd.Owner != nil {
		link.Owner = emptyToNil(upd.Owner)
	}

	if recompute {
		if err := uc.embed(ctx, link); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	updated, err := uc.linkRepo.Update(ctx, link)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to modify link: %w", op, err)
	}

	uc.evict(ctx, oldShortCode, updated.ShortCode)

	return updated, nil
}

func (uc *LinkUseCase) DeleteLink(ctx context.Context, id int64) error {
	const op = "usecase.LinkUseCase.DeleteLink"

	var shortCode string
	if uc.cache != nil {
		link, err := uc.linkRepo.RetrieveByID(ctx, id)
		if err != nil {
			return fmt.Errorf("%s: failed to get link: %w", op, err)
		}
		shortCode = link.ShortCode
	}

	if err := uc.linkRepo.Remove(ctx, id); err != nil {
		return fmt.Errorf("%s: failed to delete link: %w", op, err)
	}

	uc.evict(ctx, shortCode)

	return nil
}

// ResolveShortCode returns the link an alias redirects to.
func (uc *LinkUseCase) ResolveShortCode(ctx context.Context, shortCode string) (*entity.Link, error) {
	const op = "usecase.LinkUseCase.ResolveShortCode"

	if uc.cache != nil {
		if link, err := uc.cache.Get(ctx, shortCode); err == nil {
			return link, nil
		}
	}

	link, err := uc.linkRepo.RetrieveByShortCode(ctx, shortCode)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to resolve short code: %w", op, err)
	}

	if uc.cache != nil {
		if err := uc.cache.Set(ctx, link); err != nil {
			uc.logger.Warn("failed to cache link", slog.String("short_code", shortCode), slog.Any("err", err))
		}
	}

	return link, nil
}

func (uc *LinkUseCase) evict(ctx context.Context, shortCodes ...string) {
	if uc.cache == nil {
		return
	}

	keys := make([]string, 0, len(shortCodes))
	for _, sc := range shortCodes {
		if sc != "" {
			keys = append(keys, sc)
		}
	}

	if err := uc.cache.Delete(ctx, keys...); err != nil {
		uc.logger.Warn("failed to evict cached links", slog.Any("short_codes", keys), slog.Any("err", err))
	}
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

func equalOptional(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
