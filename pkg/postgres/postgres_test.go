package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithPool(t *testing.T) {
	pc := defaultPoolConfig

	WithPool(PoolConfig{MaxOpenConns: 50, ConnMaxLifetime: time.Hour})(&pc)

	assert.Equal(t, 50, pc.MaxOpenConns)
	assert.Equal(t, time.Hour, pc.ConnMaxLifetime)
	assert.Equal(t, defaultPoolConfig.MaxIdleConns, pc.MaxIdleConns)
	assert.Equal(t, defaultPoolConfig.ConnMaxIdleTime, pc.ConnMaxIdleTime)
}

func TestHasExtension(t *testing.T) {
	const query = `SELECT EXISTS\(SELECT 1 FROM pg_extension WHERE extname = \$1\)`

	newDB := func(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		t.Cleanup(func() { db.Close() })
		return sqlx.NewDb(db, "sqlmock"), mock
	}

	t.Run("installed", func(t *testing.T) {
		db, mock := newDB(t)
		mock.ExpectQuery(query).WithArgs("vector").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		ok, err := HasExtension(context.Background(), db, "vector")

		assert.NoError(t, err)
		assert.True(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing", func(t *testing.T) {
		db, mock := newDB(t)
		mock.ExpectQuery(query).WithArgs("vector").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		ok, err := HasExtension(context.Background(), db, "vector")

		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("query error", func(t *testing.T) {
		db, mock := newDB(t)
		mock.ExpectQuery(query).WithArgs("vector").WillReturnError(errors.New("unknown error"))

		ok, err := HasExtension(context.Background(), db, "vector")

		assert.Error(t, err)
		assert.False(t, ok)
	})
}
