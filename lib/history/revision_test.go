package history

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pescuma/svnstats/lib/model"
)

func TestFileCountsSkipDirectories(t *testing.T) {
	rev := NewRevision(5)
	rev.AddChange("/branches/b1/", model.ChangeAdded, model.PathDirectory)
	rev.AddChange("/trunk/a.txt", model.ChangeAdded, model.PathFile)
	rev.AddChange("/trunk/b.txt", model.ChangeModified, model.PathUnknown)
	rev.AddChange("/trunk/old/", model.ChangeDeleted, model.PathUnknown)
	rev.AddChange("/trunk/c.txt", model.ChangeDeleted, model.PathFile)

	added, changed, deleted := rev.FileCounts()

	assert.Equal(t, 1, added)
	assert.Equal(t, 1, changed)
	assert.Equal(t, 1, deleted)
}

func TestChangePreviousLocation(t *testing.T) {
	rev := NewRevision(8)
	c := rev.AddChange("/tags/t1/", model.ChangeDeleted, model.PathDirectory)

	assert.Equal(t, "/tags/t1/", c.PrevPath())
	assert.Equal(t, 7, c.PrevRevno())
	assert.False(t, c.HasCopySource())

	c.CopiedFrom("/trunk/", 4)
	assert.True(t, c.HasCopySource())
}

func TestDirPath(t *testing.T) {
	assert.Equal(t, "", DirPath(""))
	assert.Equal(t, "/trunk/", DirPath("/trunk"))
	assert.Equal(t, "/trunk/", DirPath("/trunk/"))
}
