package git

import (
	"context"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/hashicorp/go-set/v2"
	"github.com/pkg/errors"

	"github.com/pescuma/svnstats/lib/consoles"
	"github.com/pescuma/svnstats/lib/history"
	"github.com/pescuma/svnstats/lib/linediff"
	"github.com/pescuma/svnstats/lib/model"
	"github.com/pescuma/svnstats/lib/utils"
)

const URLPrefix = "git+file://"

// Provider exposes the first parent history of a branch as revisions 1..N,
// oldest first.
type Provider struct {
	console consoles.Console
	dir     string
	repo    *git.Repository
	branch  string
	binary  *history.BinaryMatcher

	commits []*object.Commit
}

var _ history.Provider = (*Provider)(nil)

func NewProvider(console consoles.Console, dir string, opts *history.Options) (*Provider, error) {
	dir, err := utils.PathAbs(strings.TrimPrefix(dir, URLPrefix))
	if err != nil {
		return nil, err
	}

	repo, err := git.PlainOpen(dir)
	if err != nil {
		return nil, history.NewProviderError(history.ClassFatal, "open "+dir, err)
	}

	binary, err := history.NewBinaryMatcher(opts.BinaryPatterns)
	if err != nil {
		return nil, err
	}

	return &Provider{
		console: console,
		dir:     dir,
		repo:    repo,
		branch:  opts.Branch,
		binary:  binary,
	}, nil
}

func (p *Provider) RootURL(_ context.Context) (string, error) {
	return URLPrefix + history.DirPath(filepath.ToSlash(p.dir)), nil
}

func (p *Provider) loadCommits() ([]*object.Commit, error) {
	if p.commits != nil {
		return p.commits, nil
	}

	hash, err := p.findBranchHash()
	if err != nil {
		return nil, err
	}

	commit, err := p.repo.CommitObject(hash)
	if err != nil {
		return nil, errors.Wrapf(err, "error loading commit %v", hash)
	}

	var result []*object.Commit
	for {
		result = append(result, commit)

		if commit.NumParents() == 0 {
			break
		}

		commit, err = commit.Parent(0)
		if err != nil {
			return nil, errors.Wrapf(err, "error loading parent of %v", result[len(result)-1].Hash)
		}
	}

	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}

	p.console.Debugf("Found %v commits in %v\n", len(result), p.dir)

	p.commits = result
	return result, nil
}

func (p *Provider) findBranchHash() (plumbing.Hash, error) {
	if p.branch == "" {
		head, err := p.repo.Head()
		if err != nil {
			return plumbing.ZeroHash, history.NewProviderError(history.ClassFatal, "git head", err)
		}

		return head.Hash(), nil
	}

	for _, candidate := range strings.Split(p.branch, ",") {
		revision, err := p.repo.ResolveRevision(plumbing.Revision(candidate))
		if err == nil {
			return *revision, nil
		}
	}

	return plumbing.ZeroHash, history.NewProviderError(history.ClassFatal, "git branch",
		errors.Errorf("no branch found with name: %v", p.branch))
}

func (p *Provider) commit(revno int) (*object.Commit, error) {
	commits, err := p.loadCommits()
	if err != nil {
		return nil, err
	}

	if revno < 1 || revno > len(commits) {
		return nil, history.NewProviderError(history.ClassFatal, "git log",
			errors.Errorf("no such revision: %v", revno))
	}

	return commits[revno-1], nil
}

func (p *Provider) FindRevisionRange(_ context.Context, after, before *time.Time) (int, int, error) {
	commits, err := p.loadCommits()
	if err != nil {
		return 0, 0, err
	}

	start := 1
	if after != nil {
		start = len(commits) + 1
		for i, c := range commits {
			if !c.Committer.When.Before(*after) {
				start = i + 1
				break
			}
		}
	}

	end := len(commits)
	if before != nil {
		end = 0
		for i, c := range commits {
			if c.Committer.When.Before(*before) {
				end = i + 1
			}
		}
	}

	return start, end, nil
}

func (p *Provider) Revisions(ctx context.Context, start, end int, fn func(rev *history.Revision) error) error {
	for revno := start; revno <= end; revno++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		rev, err := p.revision(ctx, revno)
		if err != nil {
			return err
		}

		err = fn(rev)
		if err != nil {
			return err
		}
	}

	return nil
}

func (p *Provider) revision(ctx context.Context, revno int) (*history.Revision, error) {
	commit, err := p.commit(revno)
	if err != nil {
		return nil, err
	}

	rev := history.NewRevision(revno)
	rev.Author = commit.Author.Name
	rev.Date = commit.Committer.When
	rev.Message = strings.TrimSpace(commit.Message)

	changes, err := p.changes(ctx, revno)
	if err != nil {
		return nil, err
	}

	for _, c := range changes {
		switch {
		case c.from == "":
			rev.AddChange(c.to, model.ChangeAdded, model.PathFile)
		case c.to == "":
			rev.AddChange(c.from, model.ChangeDeleted, model.PathFile)
		case c.from != c.to:
			rev.AddChange(c.from, model.ChangeDeleted, model.PathFile)
			rev.AddChange(c.to, model.ChangeAdded, model.PathFile).CopiedFrom(c.from, revno-1)
		default:
			rev.AddChange(c.to, model.ChangeModified, model.PathFile)
		}
	}

	// Merges that only bring the other side in have nothing of their own
	if len(rev.Changes) == 0 {
		rev.Valid = false
	}

	return rev, nil
}

type fileChange struct {
	from string
	to   string
}

func (p *Provider) changes(ctx context.Context, revno int) ([]*fileChange, error) {
	commit, err := p.commit(revno)
	if err != nil {
		return nil, err
	}

	tree, err := commit.Tree()
	if err != nil {
		return nil, errors.Wrapf(err, "error loading tree of %v", commit.Hash)
	}

	parentTree := &object.Tree{}
	if revno > 1 {
		parent, err := p.commit(revno - 1)
		if err != nil {
			return nil, err
		}

		parentTree, err = parent.Tree()
		if err != nil {
			return nil, errors.Wrapf(err, "error loading tree of %v", parent.Hash)
		}
	}

	changes, err := object.DiffTreeWithOptions(ctx, parentTree, tree, object.DefaultDiffTreeOptions)
	if err != nil {
		return nil, errors.Wrapf(err, "error computing changes of %v", commit.Hash)
	}

	result := make([]*fileChange, 0, len(changes))
	for _, change := range changes {
		c := &fileChange{}
		if change.From.Name != "" {
			c.from = toPath(change.From.Name)
		}
		if change.To.Name != "" {
			c.to = toPath(change.To.Name)
		}

		result = append(result, c)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].from+result[i].to < result[j].from+result[j].to
	})

	return result, nil
}

func (p *Provider) LineCount(_ context.Context, revno int, path string, change model.ChangeType) (int, int, error) {
	if p.binary.IsBinary(path) {
		return 0, 0, nil
	}

	commit, err := p.commit(revno)
	if err != nil {
		return 0, 0, err
	}

	content, isBinary, err := fileContent(commit, path)
	if err != nil || isBinary {
		return 0, 0, err
	}

	var parentContent string
	if revno > 1 && change != model.ChangeAdded {
		parent, err := p.commit(revno - 1)
		if err != nil {
			return 0, 0, err
		}

		parentContent, isBinary, err = fileContent(parent, path)
		if err != nil || isBinary {
			return 0, 0, err
		}
	}

	switch change {
	case model.ChangeAdded:
		return linediff.CountLines(content), 0, nil
	case model.ChangeDeleted:
		return 0, linediff.CountLines(parentContent), nil
	default:
		added, deleted := linediff.Count(parentContent, content, linediff.DefaultTimeout)
		return added, deleted, nil
	}
}

func fileContent(commit *object.Commit, path string) (string, bool, error) {
	f, err := commit.File(strings.TrimPrefix(path, "/"))
	if errors.Is(err, object.ErrFileNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "error loading %v at %v", path, commit.Hash)
	}

	isBinary, err := f.IsBinary()
	if err != nil {
		return "", false, err
	}
	if isBinary {
		return "", true, nil
	}

	content, err := f.Contents()
	if err != nil {
		return "", false, errors.Wrapf(err, "error reading %v at %v", path, commit.Hash)
	}

	return content, false, nil
}

func (p *Provider) UnmodifiedFiles(ctx context.Context, dir string, revno int) ([]string, error) {
	if revno <= 0 {
		return nil, nil
	}

	commit, err := p.commit(revno)
	if err != nil {
		return nil, err
	}

	changes, err := p.changes(ctx, revno)
	if err != nil {
		return nil, err
	}

	changed := set.New[string](len(changes))
	for _, c := range changes {
		changed.Insert(c.from)
		changed.Insert(c.to)
	}

	tree, err := commit.Tree()
	if err != nil {
		return nil, errors.Wrapf(err, "error loading tree of %v", commit.Hash)
	}

	var result []string
	err = tree.Files().ForEach(func(f *object.File) error {
		path := toPath(f.Name)
		if history.HasDirPrefix(path, dir) && !changed.Contains(path) {
			result = append(result, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(result)
	return result, nil
}

func (p *Provider) Close() error {
	return nil
}

func toPath(name string) string {
	return history.NormalizePath("/" + name)
}
