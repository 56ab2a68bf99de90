// Package storage selects the database backend from configuration.
package storage

import (
	"context"
	"fmt"

	"lso-service/internal/service"
	"lso-service/internal/storage/postgres"
	"lso-service/internal/storage/sqlite"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Storage interface {
	service.Store
	Migrate(ctx context.Context) error
	Close() error
}

var (
	_ Storage = (*postgres.Storage)(nil)
	_ Storage = (*sqlite.Storage)(nil)
)

func New(driver, dsn string) (Storage, error) {
	const op = "storage.New"

	switch driver {
	case DriverPostgres:
		s, err := postgres.New(dsn)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return s, nil
	case DriverSQLite, "":
		s, err := sqlite.New(dsn)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return s, nil
	}

	return nil, fmt.Errorf("%s: unknown driver %q", op, driver)
}
