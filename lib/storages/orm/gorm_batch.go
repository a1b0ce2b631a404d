package orm

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/pescuma/svnstats/lib/model"
)

type gormBatch struct {
	db   *gorm.DB
	tx   *gorm.DB
	done bool
}

func (b *gormBatch) InternPath(path string) (*model.ID, error) {
	if path == "" {
		return nil, nil
	}

	id, err := b.findPath(path)
	if err != nil || id != nil {
		return id, err
	}

	err = b.tx.Create(&sqlPath{Path: path}).Error
	if err != nil {
		return nil, errors.Wrapf(err, "error inserting path %v", path)
	}

	id, err = b.findPath(path)
	if err != nil {
		return nil, err
	}
	if id == nil {
		return nil, errors.Errorf("path %v not found after insert", path)
	}

	return id, nil
}

func (b *gormBatch) findPath(path string) (*model.ID, error) {
	var rows []*sqlPath

	err := b.tx.Where("path = ?", path).Limit(1).Find(&rows).Error
	if err != nil {
		return nil, errors.Wrapf(err, "error querying path %v", path)
	}

	if len(rows) == 0 {
		return nil, nil
	}

	return &rows[0].ID, nil
}

func (b *gormBatch) WriteLogEntry(entry *model.LogEntry) error {
	err := b.tx.Create(newSqlLogEntry(entry)).Error
	if err != nil {
		return errors.Wrapf(err, "error writing log entry of r%v", entry.Revno)
	}

	return nil
}

func (b *gormBatch) UpdateLogEntryFileCounts(revno int, addedFiles int, deletedFiles int) error {
	err := b.tx.Model(&sqlLogEntry{}).
		Where("revno = ?", revno).
		Updates(map[string]any{
			"addedfiles":   addedFiles,
			"deletedfiles": deletedFiles,
		}).Error
	if err != nil {
		return errors.Wrapf(err, "error updating file counts of r%v", revno)
	}

	return nil
}

func (b *gormBatch) WriteChangeRecord(record *model.ChangeRecord) error {
	err := b.tx.Create(newSqlChangeRecord(record)).Error
	if err != nil {
		return errors.Wrapf(err, "error writing change of r%v: %v", record.Revno, record.Path)
	}

	return nil
}

func (b *gormBatch) CumulativeLines(path string, revno int) (int, int, bool, error) {
	var rows []*sqlLineSum

	err := b.tx.Table(changeRecordView).
		Select("sum(linesadded) AS added, sum(linesdeleted) AS deleted").
		Where("changedpath = ? AND revno <= ?", path, revno).
		Group("changedpath").
		Scan(&rows).Error
	if err != nil {
		return 0, 0, false, errors.Wrapf(err, "error querying line count of %v at r%v", path, revno)
	}

	if len(rows) == 0 {
		return 0, 0, false, nil
	}

	return int(rows[0].Added), int(rows[0].Deleted), true, nil
}

func (b *gormBatch) Flush() error {
	err := b.Commit()
	if err != nil {
		return err
	}

	tx := b.db.Begin()
	if tx.Error != nil {
		return errors.Wrap(tx.Error, "error starting transaction")
	}

	b.tx = tx
	b.done = false
	return nil
}

func (b *gormBatch) Commit() error {
	if b.done {
		return errors.New("batch already finished")
	}

	b.done = true

	err := b.tx.Commit().Error
	if err != nil {
		return errors.Wrap(err, "error committing changes")
	}

	return nil
}

func (b *gormBatch) Rollback() error {
	if b.done {
		return nil
	}

	b.done = true

	err := b.tx.Rollback().Error
	if err != nil {
		return errors.Wrap(err, "error rolling back changes")
	}

	return nil
}
