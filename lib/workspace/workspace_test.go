package workspace

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bloomberg/go-testgroup"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/pescuma/svnstats/lib/consoles"
	"github.com/pescuma/svnstats/lib/history"
	githistory "github.com/pescuma/svnstats/lib/history/git"
	"github.com/pescuma/svnstats/lib/history/svn"
	historyimporter "github.com/pescuma/svnstats/lib/importers/history"
)

func TestWorkspace(t *testing.T) {
	testgroup.RunInParallel(t, &WorkspaceTests{})
}

type WorkspaceTests struct {
}

func (g *WorkspaceTests) open(t *testgroup.T, dsn string) *Workspace {
	ws, err := NewWorkspaceWithConsole(consoles.NewWriterConsole(io.Discard, false), dsn, false)
	t.Require.NoError(err)
	t.Cleanup(func() { _ = ws.Close() })
	return ws
}

func (g *WorkspaceTests) gitRepo(t *testgroup.T) string {
	dir := t.TempDir()

	repo, err := git.PlainInit(dir, false)
	t.Require.NoError(err)
	wt, err := repo.Worktree()
	t.Require.NoError(err)

	for i, content := range []string{"a\n", "a\nb\nc\n"} {
		t.Require.NoError(os.WriteFile(filepath.Join(dir, "a.txt"), []byte(content), 0o644))
		_, err = wt.Add("a.txt")
		t.Require.NoError(err)

		_, err = wt.Commit("commit", &git.CommitOptions{
			Author: &object.Signature{
				Name: "Bob",
				When: time.Date(2022, 1, 1+i, 0, 0, 0, 0, time.UTC),
			},
		})
		t.Require.NoError(err)
	}

	return dir
}

func (g *WorkspaceTests) InMemoryDatabase(t *testgroup.T) {
	ws := g.open(t, ":memory:")

	last, err := ws.Storage().LastStoredRevno()

	t.NoError(err)
	t.Equal(0, last)
}

func (g *WorkspaceTests) SqliteFileIsCreated(t *testgroup.T) {
	file := filepath.Join(t.TempDir(), "sub", "svn.sqlite3")

	g.open(t, file)

	_, err := os.Stat(file)
	t.NoError(err)
}

func (g *WorkspaceTests) UnknownStorage(t *testgroup.T) {
	_, err := NewWorkspaceWithConsole(consoles.NewWriterConsole(io.Discard, false), "svn.txt", false)

	t.Error(err)
}

func (g *WorkspaceTests) InvalidMySqlDSN(t *testgroup.T) {
	_, err := NewWorkspaceWithConsole(consoles.NewWriterConsole(io.Discard, false), "mysql://user@host/db", false)

	t.Error(err)
}

func (g *WorkspaceTests) ProviderSelection(t *testgroup.T) {
	console := consoles.NewWriterConsole(io.Discard, false)
	dir := g.gitRepo(t)

	p, err := OpenProvider(console, dir, &history.Options{})
	t.Require.NoError(err)
	t.IsType(&githistory.Provider{}, p)

	p, err = OpenProvider(console, githistory.URLPrefix+dir, &history.Options{})
	t.Require.NoError(err)
	t.IsType(&githistory.Provider{}, p)

	p, err = OpenProvider(console, "https://svn.example.com/repo", &history.Options{})
	t.Require.NoError(err)
	t.IsType(&svn.Provider{}, p)
}

func (g *WorkspaceTests) ConvertGitRepository(t *testgroup.T) {
	ws := g.open(t, ":memory:")
	dir := g.gitRepo(t)
	ctx := context.Background()

	err := ws.Convert(ctx, dir, &history.Options{}, &historyimporter.ConvertOptions{})
	t.Require.NoError(err)

	entries, err := ws.Storage().ListLogEntries()
	t.Require.NoError(err)
	t.Len(entries, 2)
	t.Equal("Bob", entries[0].Author)

	err = ws.UpdateLineCounts(ctx, dir, &history.Options{})
	t.Require.NoError(err)

	records, err := ws.Storage().ListChangeRecords(2)
	t.Require.NoError(err)
	t.Require.Len(records, 1)
	t.Equal("/a.txt", records[0].Path)
	t.Equal(2, records[0].LinesAdded)
	t.Equal(0, records[0].LinesDeleted)
	t.True(records[0].LineCountUpdated)

	t.NoError(ws.FixPaths())
}
