package orm

import (
	gomysql "github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// WithMySql accepts the go-sql-driver DSN format: user:pass@tcp(host:3306)/db
func WithMySql(dsn string) (gorm.Dialector, error) {
	cfg, err := gomysql.ParseDSN(dsn)
	if err != nil {
		return nil, errors.Wrap(err, "invalid MySQL connection string")
	}

	cfg.ParseTime = true

	return mysql.Open(cfg.FormatDSN()), nil
}
