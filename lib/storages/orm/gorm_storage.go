package orm

import (
	"log"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pescuma/svnstats/lib/consoles"
	"github.com/pescuma/svnstats/lib/model"
	"github.com/pescuma/svnstats/lib/storages"
)

type gormStorage struct {
	db      *gorm.DB
	console consoles.Console
}

func NewGormStorage(d gorm.Dialector, console consoles.Console, verbose bool) (storages.Storage, error) {
	l := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  lo.Ternary(verbose, logger.Info, logger.Warn),
			IgnoreRecordNotFoundError: false,
			Colorful:                  true,
		},
	)

	db, err := gorm.Open(d, &gorm.Config{
		Logger: l,
	})
	if err != nil {
		return nil, errors.Wrap(err, "error opening database")
	}

	if d.Name() == "sqlite" {
		// All the work of a run goes through a single transaction, and
		// in memory databases only exist inside their connection.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}

		sqlDB.SetMaxOpenConns(1)
	}

	err = CreateSchema(db)
	if err != nil {
		return nil, err
	}

	return &gormStorage{
		db:      db,
		console: console,
	}, nil
}

func (s *gormStorage) Close() error {
	db, err := s.db.DB()
	if err != nil {
		return err
	}

	return db.Close()
}

func (s *gormStorage) LastStoredRevno() (int, error) {
	var result *int64

	err := s.db.Model(&sqlLogEntry{}).Select("max(revno)").Row().Scan(&result)
	if err != nil {
		return 0, errors.Wrap(err, "error querying last stored revision")
	}

	if result == nil {
		return 0, nil
	}

	return int(*result), nil
}

func (s *gormStorage) Begin() (storages.Batch, error) {
	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, errors.Wrap(tx.Error, "error starting transaction")
	}

	return &gormBatch{
		db: s.db,
		tx: tx,
	}, nil
}

func (s *gormStorage) ListUnresolvedChanges() ([]*model.UnresolvedChange, error) {
	var rows []*sqlUnresolvedChange

	err := s.db.Table(changeRecordView).
		Select("revno, changedpathid, changedpath, changetype, pathtype").
		Where("lc_updated = ?", encodeFlag(false)).
		Order("revno, changedpathid").
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "error querying changes without line counts")
	}

	result := make([]*model.UnresolvedChange, 0, len(rows))
	for _, row := range rows {
		c, err := row.ToModel()
		if err != nil {
			return nil, errors.Wrapf(err, "r%v: %v", row.Revno, row.ChangedPath)
		}

		result = append(result, c)
	}

	return result, nil
}

func (s *gormStorage) UpdateLineCount(change *model.UnresolvedChange, added, deleted int) error {
	err := s.db.Model(&sqlChangeRecord{}).
		Where("revno = ? AND changedpathid = ? AND lc_updated = ?", change.Revno, change.PathID, encodeFlag(false)).
		Updates(map[string]any{
			"linesadded":   added,
			"linesdeleted": deleted,
			"lc_updated":   encodeFlag(true),
		}).Error
	if err != nil {
		return errors.Wrapf(err, "error updating line count of r%v: %v", change.Revno, change.Path)
	}

	return nil
}

func (s *gormStorage) ListLogEntries() ([]*model.LogEntry, error) {
	var rows []*sqlLogEntry

	err := s.db.Order("revno").Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "error loading log entries")
	}

	return lo.Map(rows, func(row *sqlLogEntry, _ int) *model.LogEntry {
		return row.ToModel()
	}), nil
}

func (s *gormStorage) ListChangeRecords(revno int) ([]*model.ChangeRecord, error) {
	var rows []*sqlChangeRecordView

	err := s.db.Table(changeRecordView).
		Where("revno = ?", revno).
		Order("entrytype DESC, changedpath").
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrapf(err, "error loading changes of r%v", revno)
	}

	result := make([]*model.ChangeRecord, 0, len(rows))
	for _, row := range rows {
		r, err := row.ToModel()
		if err != nil {
			return nil, errors.Wrapf(err, "r%v: %v", row.Revno, row.ChangedPath)
		}

		result = append(result, r)
	}

	return result, nil
}
