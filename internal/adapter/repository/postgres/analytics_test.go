package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/suite"
	"github.com/vadimbarashkov/golinks/internal/entity"
)

type AnalyticsRepositoryTestSuite struct {
	suite.Suite
	errUnknown error
	since      time.Time
	until      time.Time
	mock       sqlmock.Sqlmock
	visits     *VisitRepository
	repo       *AnalyticsRepository
}

func (suite *AnalyticsRepositoryTestSuite) SetupSuite() {
	suite.errUnknown = errors.New("unknown error")
	suite.since = time.Date(2023, 12, 31, 12, 0, 0, 0, time.UTC)
	suite.until = time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
}

func (suite *AnalyticsRepositoryTestSuite) SetupSubTest() {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		suite.T().Fatalf("Failed to create mock database: %v", err)
	}
	suite.T().Cleanup(func() {
		mockDB.Close()
	})

	db := sqlx.NewDb(mockDB, "sqlmock")

	suite.mock = mock
	suite.visits = NewVisitRepository(db)
	suite.repo = NewAnalyticsRepository(db)
}

func (suite *AnalyticsRepositoryTestSuite) TearDownSubTest() {
	suite.NoError(suite.mock.ExpectationsWereMet())
}

func (suite *AnalyticsRepositoryTestSuite) TestRecord() {
	visit := entity.Visit{LinkID: 4, VisitedAt: suite.since, Referrer: strPtr("https://intranet")}

	suite.Run("unknown error", func() {
		suite.mock.ExpectExec(`INSERT INTO link_visits`).
			WillReturnError(suite.errUnknown)

		err := suite.visits.Record(context.Background(), visit)

		suite.ErrorIs(err, suite.errUnknown)
	})

	suite.Run("success", func() {
		suite.mock.ExpectExec(`INSERT INTO link_visits(.+)UPDATE links SET visits = visits \+ 1`).
			WithArgs(int64(4), suite.since, "https://intranet", nil).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := suite.visits.Record(context.Background(), visit)

		suite.NoError(err)
	})
}

func (suite *AnalyticsRepositoryTestSuite) TestDailyVisits() {
	suite.Run("unknown error", func() {
		suite.mock.ExpectQuery(`FROM link_visits`).
			WillReturnError(suite.errUnknown)

		counts, err := suite.repo.DailyVisits(context.Background(), suite.since, suite.until, nil)

		suite.ErrorIs(err, suite.errUnknown)
		suite.Nil(counts)
	})

	suite.Run("all links", func() {
		rows := sqlmock.NewRows([]string{"date", "count"}).
			AddRow("2024-01-02", 3).
			AddRow("2024-01-04", 1)

		suite.mock.ExpectQuery(`FROM link_visits\s+WHERE visited_at >= \$1 AND visited_at < \$2`).
			WithArgs(suite.since, suite.until, nil).
			WillReturnRows(rows)

		counts, err := suite.repo.DailyVisits(context.Background(), suite.since, suite.until, nil)

		suite.NoError(err)
		suite.Equal([]entity.DailyCount{
			{Date: "2024-01-02", Count: 3},
			{Date: "2024-01-04", Count: 1},
		}, counts)
	})

	suite.Run("single link", func() {
		linkID := int64(9)

		suite.mock.ExpectQuery(`FROM link_visits`).
			WithArgs(suite.since, suite.until, int64(9)).
			WillReturnRows(sqlmock.NewRows([]string{"date", "count"}))

		counts, err := suite.repo.DailyVisits(context.Background(), suite.since, suite.until, &linkID)

		suite.NoError(err)
		suite.Empty(counts)
	})
}

func (suite *AnalyticsRepositoryTestSuite) TestLinkUsage() {
	columns := append(append([]string{}, linkColumnNames...), "visits_in_range")

	suite.Run("unknown order", func() {
		usage, err := suite.repo.LinkUsage(context.Background(), suite.since, entity.UsageOrder(9), 10)

		suite.Error(err)
		suite.Nil(usage)
	})

	suite.Run("most used", func() {
		rows := sqlmock.NewRows(columns).
			AddRow(1, "https://a.example.com", "a", nil, nil, 10, nil, time.Time{}, time.Time{}, 5).
			AddRow(3, "https://c.example.com", "c", nil, nil, 2, nil, time.Time{}, time.Time{}, 2).
			AddRow(2, "https://b.example.com", "b", nil, nil, 7, nil, time.Time{}, time.Time{}, 0)

		suite.mock.ExpectQuery(`LEFT JOIN (.+) ORDER BY visits_in_range DESC, l.visits DESC, l.id ASC`).
			WithArgs(suite.since, 5).
			WillReturnRows(rows)

		usage, err := suite.repo.LinkUsage(context.Background(), suite.since, entity.MostUsed, 5)

		suite.NoError(err)
		suite.Len(usage, 3)
		suite.Equal([]int64{5, 2, 0}, []int64{usage[0].VisitsInRange, usage[1].VisitsInRange, usage[2].VisitsInRange})
		suite.Equal(int64(10), usage[0].TotalVisits())
	})

	suite.Run("least used", func() {
		suite.mock.ExpectQuery(`ORDER BY visits_in_range ASC, l.visits ASC, l.id DESC`).
			WithArgs(suite.since, 10).
			WillReturnRows(sqlmock.NewRows(columns))

		usage, err := suite.repo.LinkUsage(context.Background(), suite.since, entity.LeastUsed, 10)

		suite.NoError(err)
		suite.Empty(usage)
	})

	suite.Run("unknown error", func() {
		suite.mock.ExpectQuery(`FROM links l`).
			WillReturnError(suite.errUnknown)

		usage, err := suite.repo.LinkUsage(context.Background(), suite.since, entity.MostUsed, 10)

		suite.ErrorIs(err, suite.errUnknown)
		suite.Nil(usage)
	})
}

func TestAnalyticsRepository(t *testing.T) {
	suite.Run(t, new(AnalyticsRepositoryTestSuite))
}
