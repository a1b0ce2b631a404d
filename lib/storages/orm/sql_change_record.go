package orm

import (
	"github.com/pescuma/svnstats/lib/model"
)

const (
	changeRecordTable = "SVNLogDetail"
	changeRecordView  = "SVNLogDetailVw"
)

type sqlChangeRecord struct {
	Revno          int       `gorm:"column:revno;index:svnlogdtlrevnoidx"`
	ChangedPathID  model.ID  `gorm:"column:changedpathid"`
	ChangeType     string    `gorm:"column:changetype;size:1"`
	CopyFromPathID *model.ID `gorm:"column:copyfrompathid"`
	CopyFromRev    *int      `gorm:"column:copyfromrev"`
	PathType       string    `gorm:"column:pathtype;size:1"`
	LinesAdded     int       `gorm:"column:linesadded"`
	LinesDeleted   int       `gorm:"column:linesdeleted"`
	LcUpdated      string    `gorm:"column:lc_updated;type:char(1)"`
	EntryType      string    `gorm:"column:entrytype;type:char(1)"`
}

func (sqlChangeRecord) TableName() string {
	return changeRecordTable
}

func newSqlChangeRecord(r *model.ChangeRecord) *sqlChangeRecord {
	return &sqlChangeRecord{
		Revno:          r.Revno,
		ChangedPathID:  r.PathID,
		ChangeType:     r.ChangeType.String(),
		CopyFromPathID: r.CopyFromPathID,
		CopyFromRev:    r.CopyFromRevno,
		PathType:       r.PathType.String(),
		LinesAdded:     r.LinesAdded,
		LinesDeleted:   r.LinesDeleted,
		LcUpdated:      encodeFlag(r.LineCountUpdated),
		EntryType:      r.EntryType.String(),
	}
}

// sqlChangeRecordView is a row of the join view, with the path strings resolved.
type sqlChangeRecordView struct {
	Revno          int       `gorm:"column:revno"`
	ChangedPathID  model.ID  `gorm:"column:changedpathid"`
	ChangedPath    string    `gorm:"column:changedpath"`
	ChangeType     string    `gorm:"column:changetype"`
	CopyFromPathID *model.ID `gorm:"column:copyfrompathid"`
	CopyFromPath   *string   `gorm:"column:copyfrompath"`
	CopyFromRev    *int      `gorm:"column:copyfromrev"`
	PathType       string    `gorm:"column:pathtype"`
	LinesAdded     int       `gorm:"column:linesadded"`
	LinesDeleted   int       `gorm:"column:linesdeleted"`
	LcUpdated      string    `gorm:"column:lc_updated"`
	EntryType      string    `gorm:"column:entrytype"`
}

func (s *sqlChangeRecordView) ToModel() (*model.ChangeRecord, error) {
	change, err := model.ParseChangeType(s.ChangeType)
	if err != nil {
		return nil, err
	}

	r := model.NewChangeRecord(s.Revno, s.ChangedPath, change, model.ParsePathType(s.PathType))
	r.PathID = s.ChangedPathID
	r.CopyFromPathID = s.CopyFromPathID
	r.CopyFromRevno = s.CopyFromRev
	if s.CopyFromPath != nil {
		r.CopyFromPath = *s.CopyFromPath
	}
	r.LinesAdded = s.LinesAdded
	r.LinesDeleted = s.LinesDeleted
	r.LineCountUpdated = decodeFlag(s.LcUpdated)
	r.EntryType = model.EntryType(decodeChar(s.EntryType))
	return r, nil
}

type sqlUnresolvedChange struct {
	Revno         int      `gorm:"column:revno"`
	ChangedPathID model.ID `gorm:"column:changedpathid"`
	ChangedPath   string   `gorm:"column:changedpath"`
	ChangeType    string   `gorm:"column:changetype"`
	PathType      string   `gorm:"column:pathtype"`
}

func (s *sqlUnresolvedChange) ToModel() (*model.UnresolvedChange, error) {
	change, err := model.ParseChangeType(s.ChangeType)
	if err != nil {
		return nil, err
	}

	return &model.UnresolvedChange{
		Revno:      s.Revno,
		PathID:     s.ChangedPathID,
		Path:       s.ChangedPath,
		ChangeType: change,
		PathType:   model.ParsePathType(s.PathType),
	}, nil
}

type sqlLineSum struct {
	Added   int64 `gorm:"column:added"`
	Deleted int64 `gorm:"column:deleted"`
}
