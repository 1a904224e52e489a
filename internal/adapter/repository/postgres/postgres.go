// Package postgres implements the link, visit and analytics repositories on
// PostgreSQL with the pgvector extension.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/pgvector/pgvector-go"
	"github.com/vadimbarashkov/golinks/internal/entity"
)

const uniqueViolationErrCode = "23505"

func isUniqueViolationError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.SQLState() == uniqueViolationErrCode
}

const linkColumns = `id, url, short_code, description, embedding, visits, owner, created_at, updated_at`

type linkDB struct {
	ID          int64            `db:"id"`
	URL         string           `db:"url"`
	ShortCode   string           `db:"short_code"`
	Description *string          `db:"description"`
	Embedding   *pgvector.Vector `db:"embedding"`
	Visits      int64            `db:"visits"`
	Owner       *string          `db:"owner"`
	CreatedAt   time.Time        `db:"created_at"`
	UpdatedAt   time.Time        `db:"updated_at"`
}

func (l *linkDB) toEntity() entity.Link {
	link := entity.Link{
		ID:          l.ID,
		URL:         l.URL,
		ShortCode:   l.ShortCode,
		Description: l.Description,
		Visits:      l.Visits,
		Owner:       l.Owner,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
	if l.Embedding != nil {
		link.Embedding = l.Embedding.Slice()
	}
	return link
}

func toVector(v []float32) any {
	if v == nil {
		return nil
	}
	return pgvector.NewVector(v)
}

// escapeLike escapes the LIKE wildcards of a user supplied substring.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

type LinkRepository struct {
	db *sqlx.DB
}

func NewLinkRepository(db *sqlx.DB) *LinkRepository {
	return &LinkRepository{db: db}
}

func (r *LinkRepository) Save(ctx context.Context, link *entity.Link) (*entity.Link, error) {
	const op = "adapter.repository.postgres.LinkRepository.Save"
	const query = `INSERT INTO links(url, short_code, description, owner, embedding)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + linkColumns

	var rec linkDB

	err := r.db.GetContext(ctx, &rec, query,
		link.URL, link.ShortCode, link.Description, link.Owner, toVector(link.Embedding))
	if err != nil {
		if isUniqueViolationError(err) {
			return nil, fmt.Errorf("%s: %w", op, entity.ErrShortCodeExists)
		}

		return nil, fmt.Errorf("%s: failed to insert into links table: %w", op, err)
	}

	saved := rec.toEntity()
	return &saved, nil
}

func (r *LinkRepository) RetrieveByID(ctx context.Context, id int64) (*entity.Link, error) {
	const op = "adapter.repository.postgres.LinkRepository.RetrieveByID"
	const query = `SELECT ` + linkColumns + ` FROM links WHERE id = $1`

	return r.retrieve(ctx, op, query, id)
}

func (r *LinkRepository) RetrieveByShortCode(ctx context.Context, shortCode string) (*entity.Link, error) {
	const op = "adapter.repository.postgres.LinkRepository.RetrieveByShortCode"
	const query = `SELECT ` + linkColumns + ` FROM links WHERE short_code = $1`

	return r.retrieve(ctx, op, query, shortCode)
}

func (r *LinkRepository) retrieve(ctx context.Context, op, query string, arg any) (*entity.Link, error) {
	var rec linkDB

	if err := r.db.GetContext(ctx, &rec, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, entity.ErrLinkNotFound)
		}

		return nil, fmt.Errorf("%s: failed to get row from links table: %w", op, err)
	}

	link := rec.toEntity()
	return &link, nil
}

func (r *LinkRepository) List(ctx context.Context, filter entity.LinkFilter) (*entity.LinkPage, error) {
	const op = "adapter.repository.postgres.LinkRepository.List"
	const where = ` WHERE ($1 = '' OR short_code ILIKE $2 OR url ILIKE $2)`
	const countQuery = `SELECT COUNT(*) FROM links` + where
	const listQuery = `SELECT ` + linkColumns + ` FROM links` + where + `
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4`

	pattern := "%" + escapeLike(filter.Search) + "%"

	var total int64
	if err := r.db.GetContext(ctx, &total, countQuery, filter.Search, pattern); err != nil {
		return nil, fmt.Errorf("%s: failed to count links: %w", op, err)
	}

	var recs []linkDB
	if err := r.db.SelectContext(ctx, &recs, listQuery, filter.Search, pattern, filter.Limit, filter.Offset); err != nil {
		return nil, fmt.Errorf("%s: failed to select links: %w", op, err)
	}

	links := make([]entity.Link, len(recs))
	for i := range recs {
		links[i] = recs[i].toEntity()
	}

	return &entity.LinkPage{Links: links, Total: total}, nil
}

// SearchSimilar returns the links whose embedding has the query's dimensionality
// and a cosine similarity above minSimilarity, most similar first, ties by id.
// At most limit links are returned.
func (r *LinkRepository) SearchSimilar(ctx context.Context, query []float32, minSimilarity float64, limit int) ([]entity.Link, error) {
	const op = "adapter.repository.postgres.LinkRepository.SearchSimilar"
	const q = `SELECT ` + linkColumns + ` FROM (
			SELECT ` + linkColumns + `,
				CASE WHEN vector_dims(embedding) = $2 AND vector_norm(embedding) > 0
					THEN 1 - (embedding <=> $1::vector)
				END AS similarity
			FROM links
			WHERE embedding IS NOT NULL
		) ranked
		WHERE similarity > $3
		ORDER BY similarity DESC, id ASC
		LIMIT $4`

	var recs []linkDB
	if err := r.db.SelectContext(ctx, &recs, q, pgvector.NewVector(query), len(query), minSimilarity, limit); err != nil {
		return nil, fmt.Errorf("%s: failed to select similar links: %w", op, err)
	}

	links := make([]entity.Link, len(recs))
	for i := range recs {
		links[i] = recs[i].toEntity()
	}

	return links, nil
}

// ListMissingEmbedding returns links without an embedding, or every link when all is set.
func (r *LinkRepository) ListMissingEmbedding(ctx context.Context, all bool) ([]entity.Link, error) {
	const op = "adapter.repository.postgres.LinkRepository.ListMissingEmbedding"
	const query = `SELECT ` + linkColumns + ` FROM links
		WHERE $1 OR embedding IS NULL
		ORDER BY id`

	var recs []linkDB
	if err := r.db.SelectContext(ctx, &recs, query, all); err != nil {
		return nil, fmt.Errorf("%s: failed to select links: %w", op, err)
	}

	links := make([]entity.Link, len(recs))
	for i := range recs {
		links[i] = recs[i].toEntity()
	}

	return links, nil
}

func (r *LinkRepository) Update(ctx context.Context, link *entity.Link) (*entity.Link, error) {
	const op = "adapter.repository.postgres.LinkRepository.Update"
	const query = `UPDATE links
		SET url = $1, short_code = $2, description = $3, owner = $4, embedding = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING ` + linkColumns

	var rec linkDB

	err := r.db.GetContext(ctx, &rec, query,
		link.URL, link.ShortCode, link.Description, link.Owner, toVector(link.Embedding), link.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, entity.ErrLinkNotFound)
		}
		if isUniqueViolationError(err) {
			return nil, fmt.Errorf("%s: %w", op, entity.ErrShortCodeExists)
		}

		return nil, fmt.Errorf("%s: failed to update links table row: %w", op, err)
	}

	updated := rec.toEntity()
	return &updated, nil
}

func (r *LinkRepository) UpdateEmbedding(ctx context.Context, id int64, embedding []float32) error {
	const op = "adapter.repository.postgres.LinkRepository.UpdateEmbedding"
	const query = `UPDATE links SET embedding = $1 WHERE id = $2`

	res, err := r.db.ExecContext(ctx, query, toVector(embedding), id)
	if err != nil {
		return fmt.Errorf("%s: failed to update embedding: %w", op, err)
	}

	return expectOneRow(op, res)
}

func (r *LinkRepository) Remove(ctx context.Context, id int64) error {
	const op = "adapter.repository.postgres.LinkRepository.Remove"
	const query = `DELETE FROM links WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("%s: failed to delete from links table: %w", op, err)
	}

	return expectOneRow(op, res)
}

func expectOneRow(op string, res sql.Result) error {
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: failed to get number of affected rows: %w", op, err)
	}

	if rowsAffected != 1 {
		return fmt.Errorf("%s: %w", op, entity.ErrLinkNotFound)
	}

	return nil
}
