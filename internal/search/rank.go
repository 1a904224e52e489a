// Package search ranks links by the cosine similarity of their embeddings
// to a query embedding.
package search

import (
	"math"
	"slices"

	"github.com/vadimbarashkov/golinks/internal/entity"
)

// Policy holds the tunable ranking parameters.
type Policy struct {
	MinSimilarity float64 // MinSimilarity is the exclusive relevance floor.
	TopK          int     // TopK caps the number of results.
}

// DefaultPolicy keeps results scoring above 0.2, at most 10 of them.
var DefaultPolicy = Policy{
	MinSimilarity: 0.2,
	TopK:          10,
}

// Rank scores every candidate with an embedding of the query's dimensionality
// and returns those above the relevance floor, best first. Ties are ordered
// by link id so repeated calls return the same order.
func Rank(query []float32, candidates []entity.Link, policy Policy) []entity.SearchResult {
	queryNorm := norm(query)
	if queryNorm == 0 {
		return []entity.SearchResult{}
	}

	results := make([]entity.SearchResult, 0, len(candidates))
	for _, l := range candidates {
		if len(l.Embedding) != len(query) {
			continue
		}

		linkNorm := norm(l.Embedding)
		if linkNorm == 0 {
			continue
		}

		similarity := dot(query, l.Embedding) / (queryNorm * linkNorm)
		if similarity <= policy.MinSimilarity {
			continue
		}

		results = append(results, entity.SearchResult{
			ID:          l.ID,
			URL:         l.URL,
			ShortCode:   l.ShortCode,
			Description: l.Description,
			Visits:      l.Visits,
			CreatedAt:   l.CreatedAt,
			Similarity:  similarity,
		})
	}

	slices.SortFunc(results, func(a, b entity.SearchResult) int {
		switch {
		case a.Similarity > b.Similarity:
			return -1
		case a.Similarity < b.Similarity:
			return 1
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		default:
			return 0
		}
	})

	if policy.TopK > 0 && len(results) > policy.TopK {
		results = results[:policy.TopK]
	}

	return results
}

// CosineSimilarity returns the cosine of the angle between a and b,
// or 0 when the lengths differ or either vector is zero.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	na, nb := norm(a), norm(b)
	if na == 0 || nb == 0 {
		return 0
	}

	return dot(a, b) / (na * nb)
}

// IsZero reports whether v has no non-zero component.
func IsZero(v []float32) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func norm(v []float32) float64 {
	return math.Sqrt(dot(v, v))
}
