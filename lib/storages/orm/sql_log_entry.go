package orm

import (
	"time"

	"github.com/pescuma/svnstats/lib/model"
)

const logEntryTable = "SVNLog"

type sqlLogEntry struct {
	Revno        int       `gorm:"column:revno;uniqueIndex:svnlogrevnoidx"`
	CommitDate   time.Time `gorm:"column:commitdate"`
	Author       string    `gorm:"column:author"`
	Msg          string    `gorm:"column:msg"`
	AddedFiles   int       `gorm:"column:addedfiles"`
	ChangedFiles int       `gorm:"column:changedfiles"`
	DeletedFiles int       `gorm:"column:deletedfiles"`
}

func (sqlLogEntry) TableName() string {
	return logEntryTable
}

func newSqlLogEntry(e *model.LogEntry) *sqlLogEntry {
	return &sqlLogEntry{
		Revno:        e.Revno,
		CommitDate:   e.CommitDate,
		Author:       e.Author,
		Msg:          e.Message,
		AddedFiles:   e.AddedFiles,
		ChangedFiles: e.ChangedFiles,
		DeletedFiles: e.DeletedFiles,
	}
}

func (s *sqlLogEntry) ToModel() *model.LogEntry {
	e := model.NewLogEntry(s.Revno)
	e.CommitDate = s.CommitDate
	e.Author = s.Author
	e.Message = s.Msg
	e.AddedFiles = s.AddedFiles
	e.ChangedFiles = s.ChangedFiles
	e.DeletedFiles = s.DeletedFiles
	return e
}
