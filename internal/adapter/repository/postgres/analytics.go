package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/vadimbarashkov/golinks/internal/entity"
)

type VisitRepository struct {
	db *sqlx.DB
}

func NewVisitRepository(db *sqlx.DB) *VisitRepository {
	return &VisitRepository{db: db}
}

// Record stores a visit and bumps the link's counter in a single statement.
func (r *VisitRepository) Record(ctx context.Context, visit entity.Visit) error {
	const op = "adapter.repository.postgres.VisitRepository.Record"
	const query = `WITH inserted AS (
			INSERT INTO link_visits(link_id, visited_at, referrer, owner)
			VALUES ($1, $2, $3, $4)
		)
		UPDATE links SET visits = visits + 1 WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, visit.LinkID, visit.VisitedAt, visit.Referrer, visit.Owner); err != nil {
		return fmt.Errorf("%s: failed to record visit: %w", op, err)
	}

	return nil
}

type AnalyticsRepository struct {
	db *sqlx.DB
}

func NewAnalyticsRepository(db *sqlx.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

type dailyCountDB struct {
	Date  string `db:"date"`
	Count int64  `db:"count"`
}

// DailyVisits counts visits in [since, until) grouped by UTC calendar date.
// A nil linkID counts the visits of every link.
func (r *AnalyticsRepository) DailyVisits(ctx context.Context, since, until time.Time, linkID *int64) ([]entity.DailyCount, error) {
	const op = "adapter.repository.postgres.AnalyticsRepository.DailyVisits"
	const query = `SELECT to_char((visited_at AT TIME ZONE 'UTC')::date, 'YYYY-MM-DD') AS date,
			COUNT(*) AS count
		FROM link_visits
		WHERE visited_at >= $1 AND visited_at < $2 AND ($3::bigint IS NULL OR link_id = $3)
		GROUP BY 1
		ORDER BY 1`

	var recs []dailyCountDB
	if err := r.db.SelectContext(ctx, &recs, query, since, until, linkID); err != nil {
		return nil, fmt.Errorf("%s: failed to count daily visits: %w", op, err)
	}

	counts := make([]entity.DailyCount, len(recs))
	for i, rec := range recs {
		counts[i] = entity.DailyCount{Date: rec.Date, Count: rec.Count}
	}

	return counts, nil
}

var usageOrderBy = map[entity.UsageOrder]string{
	entity.MostUsed:  `visits_in_range DESC, l.visits DESC, l.id ASC`,
	entity.LeastUsed: `visits_in_range ASC, l.visits ASC, l.id DESC`,
}

type linkUsageDB struct {
	linkDB
	VisitsInRange int64 `db:"visits_in_range"`
}

// LinkUsage counts every link's visits since the given time, links without
// visits included, and returns the first limit links in the given order.
func (r *AnalyticsRepository) LinkUsage(ctx context.Context, since time.Time, order entity.UsageOrder, limit int) ([]entity.LinkUsage, error) {
	const op = "adapter.repository.postgres.AnalyticsRepository.LinkUsage"

	orderBy, ok := usageOrderBy[order]
	if !ok {
		return nil, fmt.Errorf("%s: unknown usage order %d", op, order)
	}

	query := `SELECT l.id, l.url, l.short_code, l.description, l.embedding, l.visits, l.owner,
			l.created_at, l.updated_at, COALESCE(v.cnt, 0) AS visits_in_range
		FROM links l
		LEFT JOIN (
			SELECT link_id, COUNT(*) AS cnt
			FROM link_visits
			WHERE visited_at >= $1
			GROUP BY link_id
		) v ON v.link_id = l.id
		ORDER BY ` + orderBy + `
		LIMIT $2`

	var recs []linkUsageDB
	if err := r.db.SelectContext(ctx, &recs, query, since, limit); err != nil {
		return nil, fmt.Errorf("%s: failed to select link usage: %w", op, err)
	}

	usage := make([]entity.LinkUsage, len(recs))
	for i := range recs {
		usage[i] = entity.LinkUsage{
			Link:          recs[i].toEntity(),
			VisitsInRange: recs[i].VisitsInRange,
		}
	}

	return usage, nil
}
