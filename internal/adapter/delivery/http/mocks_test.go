package http

import (
	"context"
	"net/url"

	"github.com/stretchr/testify/mock"
	"github.com/vadimbarashkov/golinks/internal/entity"
)

type MockLinkService struct {
	mock.Mock
}

func (m *MockLinkService) CreateLink(ctx context.Context, link entity.Link) (*entity.Link, error) {
	args := m.Called(ctx, link)
	created, _ := args.Get(0).(*entity.Link)
	return created, args.Error(1)
}

func (m *MockLinkService) GetLink(ctx context.Context, id int64) (*entity.Link, error) {
	args := m.Called(ctx, id)
	link, _ := args.Get(0).(*entity.Link)
	return link, args.Error(1)
}

func (m *MockLinkService) ListLinks(ctx context.Context, filter entity.LinkFilter) (*entity.LinkPage, error) {
	args := m.Called(ctx, filter)
	page, _ := args.Get(0).(*entity.LinkPage)
	return page, args.Error(1)
}

func (m *MockLinkService) ModifyLink(ctx context.Context, id int64, upd entity.LinkUpdate) (*entity.Link, error) {
	args := m.Called(ctx, id, upd)
	link, _ := args.Get(0).(*entity.Link)
	return link, args.Error(1)
}

func (m *MockLinkService) DeleteLink(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockLinkService) ResolveShortCode(ctx context.Context, shortCode string) (*entity.Link, error) {
	args := m.Called(ctx, shortCode)
	link, _ := args.Get(0).(*entity.Link)
	return link, args.Error(1)
}

type MockSearchUseCase struct {
	mock.Mock
}

func (m *MockSearchUseCase) Search(ctx context.Context, query string) ([]entity.SearchResult, error) {
	args := m.Called(ctx, query)
	results, _ := args.Get(0).([]entity.SearchResult)
	return results, args.Error(1)
}

type MockAnalyticsUseCase struct {
	mock.Mock
}

func (m *MockAnalyticsUseCase) AggregatedClicks(ctx context.Context, r entity.Range) (*entity.ClickSeries, error) {
	args := m.Called(ctx, r)
	series, _ := args.Get(0).(*entity.ClickSeries)
	return series, args.Error(1)
}

func (m *MockAnalyticsUseCase) LinkAnalytics(ctx context.Context, id int64, r entity.Range) (*entity.LinkAnalytics, error) {
	args := m.Called(ctx, id, r)
	la, _ := args.Get(0).(*entity.LinkAnalytics)
	return la, args.Error(1)
}

func (m *MockAnalyticsUseCase) TopLinks(ctx context.Context, r entity.Range, limit int) (*entity.UsageReport, error) {
	args := m.Called(ctx, r, limit)
	report, _ := args.Get(0).(*entity.UsageReport)
	return report, args.Error(1)
}

func (m *MockAnalyticsUseCase) LowUsageLinks(ctx context.Context, r entity.Range, limit int) (*entity.UsageReport, error) {
	args := m.Called(ctx, r, limit)
	report, _ := args.Get(0).(*entity.UsageReport)
	return report, args.Error(1)
}

func (m *MockAnalyticsUseCase) RisingLinks(ctx context.Context, r entity.Range, limit int) (*entity.UsageReport, error) {
	args := m.Called(ctx, r, limit)
	report, _ := args.Get(0).(*entity.UsageReport)
	return report, args.Error(1)
}

type MockMetadataFetcher struct {
	mock.Mock
}

func (m *MockMetadataFetcher) OGImage(ctx context.Context, page *url.URL) (*string, error) {
	args := m.Called(ctx, page.String())
	image, _ := args.Get(0).(*string)
	return image, args.Error(1)
}

type MockVisitTracker struct {
	mock.Mock
}

func (m *MockVisitTracker) Track(link *entity.Link, referrer string) {
	m.Called(link, referrer)
}
