package postgres

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func newMigrate(op, source, dsn string) (*migrate.Migrate, error) {
	m, err := migrate.New(source, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to initialize migrations: %w", op, err)
	}
	return m, nil
}

// MigrateUp applies all pending migrations found at source.
func MigrateUp(source, dsn string) error {
	const op = "postgres.MigrateUp"

	m, err := newMigrate(op, source, dsn)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("%s: failed to apply migrations: %w", op, err)
	}

	return nil
}

// MigrateDown rolls back the given number of migrations, or all of them when steps is not positive.
func MigrateDown(source, dsn string, steps int) error {
	const op = "postgres.MigrateDown"

	m, err := newMigrate(op, source, dsn)
	if err != nil {
		return err
	}
	defer m.Close()

	if steps > 0 {
		err = m.Steps(-steps)
	} else {
		err = m.Down()
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("%s: failed to roll back migrations: %w", op, err)
	}

	return nil
}
