package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/vadimbarashkov/golinks/internal/entity"
	"github.com/vadimbarashkov/golinks/internal/search"
)

type similarLinkSearcher interface {
	SearchSimilar(ctx context.Context, query []float32, minSimilarity float64, limit int) ([]entity.Link, error)
}

type SearchUseCase struct {
	linkRepo similarLinkSearcher
	embedder embedder
	policy   search.Policy
}

func NewSearchUseCase(linkRepo similarLinkSearcher, embedder embedder, policy search.Policy) *SearchUseCase {
	return &SearchUseCase{
		linkRepo: linkRepo,
		embedder: embedder,
		policy:   policy,
	}
}

// Search ranks links by semantic similarity to query.
func (uc *SearchUseCase) Search(ctx context.Context, query string) ([]entity.SearchResult, error) {
	const op = "usecase.SearchUseCase.Search"

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrEmptyQuery)
	}

	vec, err := uc.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, entity.NewUpstreamError("failed to embed search query", err))
	}

	if search.IsZero(vec) {
		return []entity.SearchResult{}, nil
	}

	candidates, err := uc.linkRepo.SearchSimilar(ctx, vec, uc.policy.MinSimilarity, uc.policy.TopK)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list candidates: %w", op, err)
	}

	return search.Rank(vec, candidates, uc.policy), nil
}

type embeddingRepository interface {
	ListMissingEmbedding(ctx context.Context, all bool) ([]entity.Link, error)
	UpdateEmbedding(ctx context.Context, id int64, embedding []float32) error
}

type EmbeddingUseCase struct {
	linkRepo embeddingRepository
	embedder embedder
}

func NewEmbeddingUseCase(linkRepo embeddingRepository, embedder embedder) *EmbeddingUseCase {
	return &EmbeddingUseCase{
		linkRepo: linkRepo,
		embedder: embedder,
	}
}

// Reembed computes embeddings for links that have none, or for every link when
// all is set. It stops at the first failure and reports how many links were
// updated before it.
func (uc *EmbeddingUseCase) Reembed(ctx context.Context, all bool) (int, error) {
	const op = "usecase.EmbeddingUseCase.Reembed"

	links, err := uc.linkRepo.ListMissingEmbedding(ctx, all)
	if err != nil {
		return 0, fmt.Errorf("%s: failed to list links: %w", op, err)
	}

	for i := range links {
		vec, err := uc.embedder.Embed(ctx, links[i].EmbeddingText())
		if err != nil {
			return i, fmt.Errorf("%s: link %d: %w", op, links[i].ID, entity.NewUpstreamError("failed to compute link embedding", err))
		}

		if err := uc.linkRepo.UpdateEmbedding(ctx, links[i].ID, vec); err != nil {
			return i, fmt.Errorf("%s: link %d: %w", op, links[i].ID, err)
		}
	}

	return len(links), nil
}
