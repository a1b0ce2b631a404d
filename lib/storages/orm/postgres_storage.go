package orm

import (
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func WithPostgres(dsn string) (gorm.Dialector, error) {
	_, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, errors.Wrap(err, "invalid PostgreSQL connection string")
	}

	return postgres.Open(dsn), nil
}
