package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/vadimbarashkov/golinks/internal/analytics"
	"github.com/vadimbarashkov/golinks/internal/entity"
)

type analyticsRepository interface {
	DailyVisits(ctx context.Context, since, until time.Time, linkID *int64) ([]entity.DailyCount, error)
	LinkUsage(ctx context.Context, since time.Time, order entity.UsageOrder, limit int) ([]entity.LinkUsage, error)
}

type linkRetriever interface {
	RetrieveByID(ctx context.Context, id int64) (*entity.Link, error)
}

type AnalyticsUseCase struct {
	analyticsRepo analyticsRepository
	linkRepo      linkRetriever
	rising        analytics.RisingPolicy
	now           func() time.Time
}

func NewAnalyticsUseCase(analyticsRepo analyticsRepository, linkRepo linkRetriever, rising analytics.RisingPolicy) *AnalyticsUseCase {
	return &AnalyticsUseCase{
		analyticsRepo: analyticsRepo,
		linkRepo:      linkRepo,
		rising:        rising,
		now:           time.Now,
	}
}

// AggregatedClicks returns the daily visits of every link over r.
func (uc *AnalyticsUseCase) AggregatedClicks(ctx context.Context, r entity.Range) (*entity.ClickSeries, error) {
	const op = "usecase.AnalyticsUseCase.AggregatedClicks"

	daily, total, err := uc.dailySeries(ctx, r, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &entity.ClickSeries{
		Range:       r,
		DailyClicks: daily,
		TotalClicks: total,
	}, nil
}

// LinkAnalytics returns the daily visits of one link over r together with its
// all-time visit counter.
func (uc *AnalyticsUseCase) LinkAnalytics(ctx context.Context, id int64, r entity.Range) (*entity.LinkAnalytics, error) {
	const op = "usecase.AnalyticsUseCase.LinkAnalytics"

	link, err := uc.linkRepo.RetrieveByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get link: %w", op, err)
	}

	daily, _, err := uc.dailySeries(ctx, r, &link.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &entity.LinkAnalytics{
		LinkID:      link.ID,
		Range:       r,
		TotalVisits: link.Visits,
		DailyVisits: daily,
	}, nil
}

func (uc *AnalyticsUseCase) dailySeries(ctx context.Context, r entity.Range, linkID *int64) ([]entity.DailyCount, int64, error) {
	now := uc.now().UTC()
	since := r.Since(now)

	raw, err := uc.analyticsRepo.DailyVisits(ctx, since, analytics.NextDay(now), linkID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count daily visits: %w", err)
	}

	daily, total, err := analytics.FillDaily(since, now, raw)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build daily series: %w", err)
	}

	return daily, total, nil
}

// TopLinks returns the limit most visited links over r.
func (uc *AnalyticsUseCase) TopLinks(ctx context.Context, r entity.Range, limit int) (*entity.UsageReport, error) {
	const op = "usecase.AnalyticsUseCase.TopLinks"

	report, err := uc.usage(ctx, r, entity.MostUsed, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return report, nil
}

// LowUsageLinks returns the limit least visited links over r.
func (uc *AnalyticsUseCase) LowUsageLinks(ctx context.Context, r entity.Range, limit int) (*entity.UsageReport, error) {
	const op = "usecase.AnalyticsUseCase.LowUsageLinks"

	report, err := uc.usage(ctx, r, entity.LeastUsed, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return report, nil
}

// RisingLinks keeps the recently created links of the top limit links over r.
func (uc *AnalyticsUseCase) RisingLinks(ctx context.Context, r entity.Range, limit int) (*entity.UsageReport, error) {
	const op = "usecase.AnalyticsUseCase.RisingLinks"

	report, err := uc.usage(ctx, r, entity.MostUsed, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	report.Links = analytics.Rising(report.Links, uc.now(), uc.rising)

	return report, nil
}

func (uc *AnalyticsUseCase) usage(ctx context.Context, r entity.Range, order entity.UsageOrder, limit int) (*entity.UsageReport, error) {
	if limit < 1 || limit > entity.MaxLimit {
		return nil, entity.ErrInvalidLimit
	}

	links, err := uc.analyticsRepo.LinkUsage(ctx, r.Since(uc.now().UTC()), order, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get link usage: %w", err)
	}

	return &entity.UsageReport{
		Links: links,
		Range: r,
		Limit: limit,
	}, nil
}
