package history

import (
	"context"
	"testing"

	"github.com/bloomberg/go-testgroup"
	"github.com/pkg/errors"

	"github.com/pescuma/svnstats/lib/history"
	"github.com/pescuma/svnstats/lib/history/historytest"
	"github.com/pescuma/svnstats/lib/model"
)

func TestLineCounts(t *testing.T) {
	testgroup.RunInParallel(t, &LineCountsTests{})
}

type LineCountsTests struct {
}

func (f *fixture) unresolved(t *testgroup.T) []*model.UnresolvedChange {
	result, err := f.storage.ListUnresolvedChanges()
	t.Require.NoError(err)
	return result
}

func (g *LineCountsTests) DeferredUpdateConverges(t *testgroup.T) {
	f := newFixture(t)
	f.provider.AddRevision("author", "dir").AddChange("/trunk/", model.ChangeAdded, model.PathDirectory)
	f.provider.AddFile("/trunk/a.txt", model.ChangeAdded, 10, 0)
	f.provider.AddFile("/trunk/a.txt", model.ChangeModified, 4, 2)
	t.Require.NoError(f.convert(false))
	t.Len(f.unresolved(t), 3)

	t.Require.NoError(f.importer.UpdateLineCounts(context.Background()))

	t.Empty(f.unresolved(t))
	t.Equal(2, f.provider.LineCountCalls)

	dir := f.records(t, 1)
	t.Equal(0, dir[0].LinesAdded)
	t.True(dir[0].LineCountUpdated)

	mod := f.records(t, 3)
	t.Equal(4, mod[0].LinesAdded)
	t.Equal(2, mod[0].LinesDeleted)
	t.True(mod[0].LineCountUpdated)
}

func (g *LineCountsTests) SecondPassDoesNothing(t *testgroup.T) {
	f := newFixture(t)
	f.provider.AddFile("/trunk/a.txt", model.ChangeAdded, 10, 0)
	t.Require.NoError(f.convert(false))

	t.Require.NoError(f.importer.UpdateLineCounts(context.Background()))
	t.Require.NoError(f.importer.UpdateLineCounts(context.Background()))

	t.Equal(1, f.provider.LineCountCalls)
}

func (g *LineCountsTests) TransientRowErrorsAreSkipped(t *testgroup.T) {
	f := newFixture(t)
	f.provider.AddFile("/trunk/a.txt", model.ChangeAdded, 10, 0)
	f.provider.AddFile("/trunk/b.txt", model.ChangeAdded, 5, 0)
	t.Require.NoError(f.convert(false))

	key := historytest.LineKey{Revno: 1, Path: "/trunk/a.txt"}
	f.provider.LineCountErrors[key] = errors.New("timeout")

	t.Require.NoError(f.importer.UpdateLineCounts(context.Background()))

	left := f.unresolved(t)
	t.Require.Len(left, 1)
	t.Equal("/trunk/a.txt", left[0].Path)

	delete(f.provider.LineCountErrors, key)
	t.Require.NoError(f.importer.UpdateLineCounts(context.Background()))

	t.Empty(f.unresolved(t))
	t.Equal(10, f.records(t, 1)[0].LinesAdded)
}

func (g *LineCountsTests) FatalErrorsAbortThePass(t *testgroup.T) {
	f := newFixture(t)
	f.provider.AddFile("/trunk/a.txt", model.ChangeAdded, 10, 0)
	f.provider.AddFile("/trunk/b.txt", model.ChangeAdded, 5, 0)
	t.Require.NoError(f.convert(false))

	f.provider.LineCountErrors[historytest.LineKey{Revno: 1, Path: "/trunk/a.txt"}] =
		history.NewProviderError(history.ClassFatal, "svn diff", errors.New("E170013: unable to connect"))

	err := f.importer.UpdateLineCounts(context.Background())

	t.Error(err)
	t.True(history.IsFatal(err))
	t.Len(f.unresolved(t), 2)
}
