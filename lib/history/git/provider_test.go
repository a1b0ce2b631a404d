package git

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bloomberg/go-testgroup"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/pescuma/svnstats/lib/consoles"
	"github.com/pescuma/svnstats/lib/history"
	"github.com/pescuma/svnstats/lib/model"
)

func TestGitProvider(t *testing.T) {
	testgroup.RunInParallel(t, &GitProviderTests{})
}

type GitProviderTests struct {
}

var baseDate = time.Date(2021, 5, 1, 10, 0, 0, 0, time.UTC)

type repoBuilder struct {
	t       *testgroup.T
	dir     string
	wt      *git.Worktree
	commits int
}

func newRepo(t *testgroup.T) *repoBuilder {
	dir := t.TempDir()

	repo, err := git.PlainInit(dir, false)
	t.Require.NoError(err)

	wt, err := repo.Worktree()
	t.Require.NoError(err)

	return &repoBuilder{t: t, dir: dir, wt: wt}
}

func (b *repoBuilder) write(name, content string) *repoBuilder {
	file := filepath.Join(b.dir, filepath.FromSlash(name))
	b.t.Require.NoError(os.MkdirAll(filepath.Dir(file), 0o755))
	b.t.Require.NoError(os.WriteFile(file, []byte(content), 0o644))
	_, err := b.wt.Add(name)
	b.t.Require.NoError(err)
	return b
}

func (b *repoBuilder) remove(name string) *repoBuilder {
	_, err := b.wt.Remove(name)
	b.t.Require.NoError(err)
	return b
}

func (b *repoBuilder) move(from, to string) *repoBuilder {
	_, err := b.wt.Move(from, to)
	b.t.Require.NoError(err)
	return b
}

func (b *repoBuilder) commit(msg string) *repoBuilder {
	b.commits++
	_, err := b.wt.Commit(msg, &git.CommitOptions{
		Author: &object.Signature{
			Name:  "Alice",
			Email: "alice@example.com",
			When:  baseDate.Add(time.Duration(b.commits) * time.Hour),
		},
	})
	b.t.Require.NoError(err)
	return b
}

func (b *repoBuilder) provider() *Provider {
	p, err := NewProvider(consoles.NewWriterConsole(io.Discard, false), URLPrefix+b.dir, &history.Options{})
	b.t.Require.NoError(err)
	return p
}

func lines(n int) string {
	return strings.Repeat("line\n", n)
}

func (g *GitProviderTests) collect(t *testgroup.T, p *Provider, from, to int) []*history.Revision {
	var result []*history.Revision
	err := p.Revisions(context.Background(), from, to, func(rev *history.Revision) error {
		result = append(result, rev)
		return nil
	})
	t.Require.NoError(err)
	return result
}

func (g *GitProviderTests) RevisionsAreNumberedFromOldest(t *testgroup.T) {
	p := newRepo(t).
		write("a.txt", lines(3)).commit("first").
		write("b.txt", lines(2)).commit("second").
		provider()

	start, end, err := p.FindRevisionRange(context.Background(), nil, nil)
	t.Require.NoError(err)
	t.Equal(1, start)
	t.Equal(2, end)

	revs := g.collect(t, p, start, end)
	t.Require.Len(revs, 2)
	t.Equal(1, revs[0].Revno)
	t.Equal("first", revs[0].Message)
	t.Equal("Alice", revs[0].Author)
	t.True(revs[0].Valid)
	t.Require.Len(revs[1].Changes, 1)
	t.Equal("/b.txt", revs[1].Changes[0].Path)
	t.Equal(model.ChangeAdded, revs[1].Changes[0].ChangeType)
	t.Equal(model.PathFile, revs[1].Changes[0].PathType)
}

func (g *GitProviderTests) DateRange(t *testgroup.T) {
	p := newRepo(t).
		write("a.txt", "1").commit("1").
		write("a.txt", "2").commit("2").
		write("a.txt", "3").commit("3").
		provider()

	after := baseDate.Add(2 * time.Hour)
	before := baseDate.Add(3 * time.Hour)
	from, to, err := p.FindRevisionRange(context.Background(), &after, &before)

	t.Require.NoError(err)
	t.Equal(2, from)
	t.Equal(2, to)
}

func (g *GitProviderTests) LineCounts(t *testgroup.T) {
	p := newRepo(t).
		write("src/a.txt", "a\nb\nc\n").commit("add").
		write("src/a.txt", "a\nx\nc\nd\n").commit("modify").
		remove("src/a.txt").commit("delete").
		provider()
	ctx := context.Background()

	added, deleted, err := p.LineCount(ctx, 1, "/src/a.txt", model.ChangeAdded)
	t.Require.NoError(err)
	t.Equal(3, added)
	t.Equal(0, deleted)

	added, deleted, err = p.LineCount(ctx, 2, "/src/a.txt", model.ChangeModified)
	t.Require.NoError(err)
	t.Equal(2, added)
	t.Equal(1, deleted)

	added, deleted, err = p.LineCount(ctx, 3, "/src/a.txt", model.ChangeDeleted)
	t.Require.NoError(err)
	t.Equal(0, added)
	t.Equal(4, deleted)
}

func (g *GitProviderTests) BinaryFilesHaveNoLines(t *testgroup.T) {
	p := newRepo(t).
		write("logo.png", lines(10)).commit("add").
		provider()

	added, deleted, err := p.LineCount(context.Background(), 1, "/logo.png", model.ChangeAdded)

	t.Require.NoError(err)
	t.Equal(0, added)
	t.Equal(0, deleted)
}

func (g *GitProviderTests) RenamesAreDeleteAndCopy(t *testgroup.T) {
	p := newRepo(t).
		write("old.txt", lines(20)).commit("add").
		move("old.txt", "new.txt").commit("rename").
		provider()

	revs := g.collect(t, p, 2, 2)
	t.Require.Len(revs, 1)
	t.Require.Len(revs[0].Changes, 2)

	byPath := map[string]*history.Change{}
	for _, c := range revs[0].Changes {
		byPath[c.Path] = c
	}

	t.Equal(model.ChangeDeleted, byPath["/old.txt"].ChangeType)
	t.Equal(model.ChangeAdded, byPath["/new.txt"].ChangeType)
	t.Equal("/old.txt", byPath["/new.txt"].CopyFromPath)
	t.Equal(1, *byPath["/new.txt"].CopyFromRevno)
}

func (g *GitProviderTests) UnmodifiedFilesSkipsChanged(t *testgroup.T) {
	p := newRepo(t).
		write("dir/a.txt", "a").write("dir/b.txt", "b").write("other.txt", "o").commit("add").
		write("dir/b.txt", "bb").commit("modify").
		provider()

	files, err := p.UnmodifiedFiles(context.Background(), "/dir/", 2)

	t.Require.NoError(err)
	t.Equal([]string{"/dir/a.txt"}, files)

	files, err = p.UnmodifiedFiles(context.Background(), "/dir/", 0)
	t.Require.NoError(err)
	t.Empty(files)
}

func (g *GitProviderTests) UnknownRevisionIsFatal(t *testgroup.T) {
	p := newRepo(t).write("a.txt", "a").commit("add").provider()

	_, _, err := p.LineCount(context.Background(), 5, "/a.txt", model.ChangeModified)

	t.Error(err)
	t.True(history.IsFatal(err))
}

func (g *GitProviderTests) RootURL(t *testgroup.T) {
	b := newRepo(t).write("a.txt", "a").commit("add")
	p := b.provider()

	root, err := p.RootURL(context.Background())

	t.Require.NoError(err)
	t.True(strings.HasPrefix(root, URLPrefix))
	t.True(strings.HasSuffix(root, "/"))
}
