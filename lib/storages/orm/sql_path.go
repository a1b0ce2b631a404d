package orm

import (
	"github.com/pescuma/svnstats/lib/model"
)

const pathTable = "SVNPaths"

type sqlPath struct {
	ID   model.ID `gorm:"column:id;primaryKey;autoIncrement"`
	Path string   `gorm:"column:path;size:768;uniqueIndex:svnpathidx"`
}

func (sqlPath) TableName() string {
	return pathTable
}
