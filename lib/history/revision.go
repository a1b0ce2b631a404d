package history

import (
	"strings"
	"time"

	"github.com/pescuma/svnstats/lib/model"
)

type Revision struct {
	Revno   int
	Date    time.Time
	Author  string
	Message string

	// Valid is false when the provider has no change data for the revision.
	Valid bool

	Changes []*Change
}

func NewRevision(revno int) *Revision {
	return &Revision{
		Revno: revno,
		Valid: true,
	}
}

func (r *Revision) AddChange(path string, change model.ChangeType, pathType model.PathType) *Change {
	c := &Change{
		Revno:      r.Revno,
		Path:       path,
		ChangeType: change,
		PathType:   pathType,
	}
	r.Changes = append(r.Changes, c)
	return c
}

// FileCounts counts the files added, changed and deleted. Directories are not
// counted: their files are accounted for by the synthetic records.
func (r *Revision) FileCounts() (int, int, int) {
	added := 0
	changed := 0
	deleted := 0

	for _, c := range r.Changes {
		if c.IsDirectory() {
			continue
		}

		switch c.ChangeType {
		case model.ChangeAdded:
			added++
		case model.ChangeModified:
			changed++
		case model.ChangeDeleted:
			deleted++
		}
	}

	return added, changed, deleted
}

func (r *Revision) ChangedPaths() []string {
	result := make([]string, len(r.Changes))
	for i, c := range r.Changes {
		result[i] = c.Path
	}
	return result
}

type Change struct {
	Revno      int
	Path       string
	ChangeType model.ChangeType
	PathType   model.PathType

	CopyFromPath  string
	CopyFromRevno *int
}

func (c *Change) CopiedFrom(path string, revno int) *Change {
	c.CopyFromPath = path
	c.CopyFromRevno = &revno
	return c
}

func (c *Change) IsDirectory() bool {
	return model.ResolvePathType(c.Path, c.PathType) == model.PathDirectory
}

func (c *Change) HasCopySource() bool {
	return c.CopyFromPath != "" && c.CopyFromRevno != nil
}

// PrevPath is where the changed path lived before this revision.
func (c *Change) PrevPath() string {
	return c.Path
}

func (c *Change) PrevRevno() int {
	return c.Revno - 1
}

func IsDirPath(path string) bool {
	return strings.HasSuffix(path, model.DirSeparator)
}

func DirPath(path string) string {
	if path == "" || IsDirPath(path) {
		return path
	}
	return path + model.DirSeparator
}
