package orm

import (
	"fmt"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type sqlIndex struct {
	table any
	name  string
}

// CreateSchema creates whatever is missing from the store. Existing tables
// are never altered, so databases created by older tools keep working.
func CreateSchema(db *gorm.DB) error {
	m := db.Migrator()

	for _, table := range []any{&sqlLogEntry{}, &sqlChangeRecord{}, &sqlPath{}} {
		if m.HasTable(table) {
			continue
		}

		err := m.CreateTable(table)
		if err != nil {
			return errors.Wrapf(err, "error creating table %T", table)
		}
	}

	for _, idx := range []sqlIndex{
		{&sqlLogEntry{}, "svnlogrevnoidx"},
		{&sqlChangeRecord{}, "svnlogdtlrevnoidx"},
		{&sqlPath{}, "svnpathidx"},
	} {
		if m.HasIndex(idx.table, idx.name) {
			continue
		}

		err := m.CreateIndex(idx.table, idx.name)
		if err != nil {
			return errors.Wrapf(err, "error creating index %v", idx.name)
		}
	}

	// Not every database has CREATE VIEW IF NOT EXISTS, so failing because
	// the view exists is expected.
	_ = db.Session(&gorm.Session{Logger: db.Logger.LogMode(logger.Silent)}).
		Exec(createViewSQL(db)).Error

	return nil
}

func createViewSQL(db *gorm.DB) string {
	q := func(name string) string {
		return db.Statement.Quote(name)
	}

	return fmt.Sprintf(`CREATE VIEW %[1]s AS
		SELECT %[2]s.*, ChangedPaths.path AS changedpath, CopyFromPaths.path AS copyfrompath
		FROM %[2]s
		LEFT JOIN %[3]s AS ChangedPaths ON %[2]s.changedpathid = ChangedPaths.id
		LEFT JOIN %[3]s AS CopyFromPaths ON %[2]s.copyfrompathid = CopyFromPaths.id`,
		q(changeRecordView), q(changeRecordTable), q(pathTable))
}
