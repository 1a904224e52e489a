package usecase

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/vadimbarashkov/golinks/internal/entity"
)

type MockLinkRepository struct {
	mock.Mock
}

func (r *MockLinkRepository) Save(ctx context.Context, link *entity.Link) (*entity.Link, error) {
	args := r.Called(ctx, link)
	saved, _ := args.Get(0).(*entity.Link)
	return saved, args.Error(1)
}

func (r *MockLinkRepository) RetrieveByID(ctx context.Context, id int64) (*entity.Link, error) {
	args := r.Called(ctx, id)
	link, _ := args.Get(0).(*entity.Link)
	return link, args.Error(1)
}

func (r *MockLinkRepository) RetrieveByShortCode(ctx context.Context, shortCode string) (*entity.Link, error) {
	args := r.Called(ctx, shortCode)
	link, _ := args.Get(0).(*entity.Link)
	return link, args.Error(1)
}

func (r *MockLinkRepository) List(ctx context.Context, filter entity.LinkFilter) (*entity.LinkPage, error) {
	args := r.Called(ctx, filter)
	page, _ := args.Get(0).(*entity.LinkPage)
	return page, args.Error(1)
}

func (r *MockLinkRepository) SearchSimilar(ctx context.Context, query []float32, minSimilarity float64, limit int) ([]entity.Link, error) {
	args := r.Called(ctx, query, minSimilarity, limit)
	links, _ := args.Get(0).([]entity.Link)
	return links, args.Error(1)
}

func (r *MockLinkRepository) ListMissingEmbedding(ctx context.Context, all bool) ([]entity.Link, error) {
	args := r.Called(ctx, all)
	links, _ := args.Get(0).([]entity.Link)
	return links, args.Error(1)
}

func (r *MockLinkRepository) Update(ctx context.Context, link *entity.Link) (*entity.Link, error) {
	args := r.Called(ctx, link)
	updated, _ := args.Get(0).(*entity.Link)
	return updated, args.Error(1)
}

func (r *MockLinkRepository) UpdateEmbedding(ctx context.Context, id int64, embedding []float32) error {
	args := r.Called(ctx, id, embedding)
	return args.Error(0)
}

func (r *MockLinkRepository) Remove(ctx context.Context, id int64) error {
	args := r.Called(ctx, id)
	return args.Error(0)
}

type MockEmbedder struct {
	mock.Mock
}

func (e *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	args := e.Called(ctx, text)
	vec, _ := args.Get(0).([]float32)
	return vec, args.Error(1)
}

type MockLinkCache struct {
	mock.Mock
}

func (c *MockLinkCache) Get(ctx context.Context, shortCode string) (*entity.Link, error) {
	args := c.Called(ctx, shortCode)
	link, _ := args.Get(0).(*entity.Link)
	return link, args.Error(1)
}

func (c *MockLinkCache) Set(ctx context.Context, link *entity.Link) error {
	args := c.Called(ctx, link)
	return args.Error(0)
}

func (c *MockLinkCache) Delete(ctx context.Context, shortCodes ...string) error {
	args := c.Called(ctx, shortCodes)
	return args.Error(0)
}

type MockAnalyticsRepository struct {
	mock.Mock
}

func (r *MockAnalyticsRepository) DailyVisits(ctx context.Context, since, until time.Time, linkID *int64) ([]entity.DailyCount, error) {
	args := r.Called(ctx, since, until, linkID)
	counts, _ := args.Get(0).([]entity.DailyCount)
	return counts, args.Error(1)
}

func (r *MockAnalyticsRepository) LinkUsage(ctx context.Context, since time.Time, order entity.UsageOrder, limit int) ([]entity.LinkUsage, error) {
	args := r.Called(ctx, since, order, limit)
	usage, _ := args.Get(0).([]entity.LinkUsage)
	return usage, args.Error(1)
}
