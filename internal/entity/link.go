// Package entity defines the entities and errors used in the application.
// It includes the Link and Visit records, the analytics and search result
// shapes built from them, and the typed errors returned by every layer.
package entity

import (
	"fmt"
	"time"
)

// Link represents a memorized alias that redirects to a destination URL.
type Link struct {
	ID          int64     // ID is the unique identifier of the link in the database.
	URL         string    // URL is the destination the alias resolves to.
	ShortCode   string    // ShortCode is the human-chosen alias.
	Description *string   // Description is optional free text about the link.
	Embedding   []float32 // Embedding is derived from ShortCode, URL and Description. Nil if never computed.
	Visits      int64     // Visits is the all-time number of redirects through the link.
	Owner       *string   // Owner optionally names who registered the link.
	CreatedAt   time.Time // CreatedAt is the timestamp when the link was created.
	UpdatedAt   time.Time // UpdatedAt is the timestamp when the link was last updated.
}

// EmbeddingText returns the text the link embedding is computed from.
func (l *Link) EmbeddingText() string {
	return EmbeddingText(l.ShortCode, l.URL, l.Description)
}

// EmbeddingText builds "{shortCode} {url} {description-or-empty}".
func EmbeddingText(shortCode, url string, description *string) string {
	var desc string
	if description != nil {
		desc = *description
	}
	return fmt.Sprintf("%s %s %s", shortCode, url, desc)
}

// NormalizeDescription treats an absent and an empty description as the same value.
func NormalizeDescription(description *string) *string {
	if description == nil || *description == "" {
		return nil
	}
	return description
}

// Visit is a single redirect traversal of a Link.
type Visit struct {
	ID        int64
	LinkID    int64
	VisitedAt time.Time
	Referrer  *string
	Owner     *string
}

// LinkUpdate holds the optional fields of a partial link update.
// A nil field is left unchanged; an empty Description clears it.
type LinkUpdate struct {
	URL         *string
	ShortCode   *string
	Description *string
	Owner       *string
}

// LinkFilter narrows a paginated link listing.
type LinkFilter struct {
	Search string
	Limit  int
	Offset int
}

// LinkPage is one page of a link listing.
type LinkPage struct {
	Links []Link
	Total int64
}

// SearchResult is a link ranked by semantic similarity to a query.
type SearchResult struct {
	ID          int64
	URL         string
	ShortCode   string
	Description *string
	Visits      int64
	CreatedAt   time.Time
	Similarity  float64
}
