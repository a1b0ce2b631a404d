package storages

import (
	"github.com/pescuma/svnstats/lib/model"
)

type Storage interface {
	// LastStoredRevno returns 0 when nothing was stored yet.
	LastStoredRevno() (int, error)

	Begin() (Batch, error)

	ListUnresolvedChanges() ([]*model.UnresolvedChange, error)
	UpdateLineCount(change *model.UnresolvedChange, added, deleted int) error

	ListLogEntries() ([]*model.LogEntry, error)
	ListChangeRecords(revno int) ([]*model.ChangeRecord, error)

	FixPaths(normalize func(string) string) (int, error)

	Close() error
}

// Batch is a transaction over the store. Nothing written through it is
// visible to other connections until Flush or Commit.
type Batch interface {
	// InternPath returns nil for an empty path.
	InternPath(path string) (*model.ID, error)

	WriteLogEntry(entry *model.LogEntry) error
	UpdateLogEntryFileCounts(revno int, addedFiles int, deletedFiles int) error
	WriteChangeRecord(record *model.ChangeRecord) error

	// CumulativeLines sums the lines added and deleted to path up to and
	// including revno. found is false when the path has no history.
	CumulativeLines(path string, revno int) (added int, deleted int, found bool, err error)

	// Flush commits the pending work and keeps the batch open.
	Flush() error
	Commit() error
	Rollback() error
}
