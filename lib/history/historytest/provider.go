// Package historytest has a scripted history.Provider for tests.
package historytest

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/go-set/v2"
	"github.com/pkg/errors"

	"github.com/pescuma/svnstats/lib/history"
	"github.com/pescuma/svnstats/lib/model"
)

type LineKey struct {
	Revno int
	Path  string
}

type LineCount struct {
	Added   int
	Deleted int
}

type Provider struct {
	Root      string
	StartDate time.Time

	revs []*history.Revision

	Lines           map[LineKey]LineCount
	LineCountErrors map[LineKey]error

	// RevisionErrors are returned, one per call, when the revision is reached.
	RevisionErrors map[int][]error
	// ListingErrors are returned, one per call, by UnmodifiedFiles for a dir at a revision.
	ListingErrors map[LineKey][]error

	LineCountCalls int
	ListingCalls   int
}

var _ history.Provider = (*Provider)(nil)

func New() *Provider {
	return &Provider{
		Root:            "file:///repo/",
		StartDate:       time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		Lines:           map[LineKey]LineCount{},
		LineCountErrors: map[LineKey]error{},
		RevisionErrors:  map[int][]error{},
		ListingErrors:   map[LineKey][]error{},
	}
}

func (p *Provider) AddRevision(author, message string) *history.Revision {
	rev := history.NewRevision(len(p.revs) + 1)
	rev.Author = author
	rev.Message = message
	rev.Date = p.StartDate.Add(time.Duration(rev.Revno) * time.Hour)
	p.revs = append(p.revs, rev)
	return rev
}

// AddFile adds a revision that creates or modifies a single file.
func (p *Provider) AddFile(path string, change model.ChangeType, added, deleted int) *history.Revision {
	rev := p.AddRevision("author", "change "+path)
	rev.AddChange(path, change, model.PathFile)
	p.SetLines(rev.Revno, path, added, deleted)
	return rev
}

func (p *Provider) SetLines(revno int, path string, added, deleted int) {
	p.Lines[LineKey{revno, path}] = LineCount{added, deleted}
}

func (p *Provider) Revision(revno int) *history.Revision {
	return p.revs[revno-1]
}

func (p *Provider) Head() int {
	return len(p.revs)
}

func (p *Provider) RootURL(_ context.Context) (string, error) {
	return p.Root, nil
}

func (p *Provider) FindRevisionRange(_ context.Context, after, before *time.Time) (int, int, error) {
	start := 1
	end := len(p.revs)

	if after != nil {
		start = len(p.revs) + 1
		for _, r := range p.revs {
			if !r.Date.Before(*after) {
				start = r.Revno
				break
			}
		}
	}

	if before != nil {
		end = 0
		for _, r := range p.revs {
			if r.Date.Before(*before) {
				end = r.Revno
			}
		}
	}

	return start, end, nil
}

func (p *Provider) Revisions(ctx context.Context, start, end int, fn func(rev *history.Revision) error) error {
	for revno := start; revno <= end && revno <= len(p.revs); revno++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		if errs := p.RevisionErrors[revno]; len(errs) > 0 {
			p.RevisionErrors[revno] = errs[1:]
			return errs[0]
		}

		err := fn(p.revs[revno-1])
		if err != nil {
			return err
		}
	}

	return nil
}

func (p *Provider) LineCount(_ context.Context, revno int, path string, _ model.ChangeType) (int, int, error) {
	p.LineCountCalls++

	key := LineKey{revno, path}
	if err, ok := p.LineCountErrors[key]; ok {
		return 0, 0, err
	}

	lc := p.Lines[key]
	return lc.Added, lc.Deleted, nil
}

func (p *Provider) UnmodifiedFiles(_ context.Context, dir string, revno int) ([]string, error) {
	p.ListingCalls++

	key := LineKey{revno, dir}
	if errs := p.ListingErrors[key]; len(errs) > 0 {
		p.ListingErrors[key] = errs[1:]
		return nil, errs[0]
	}

	if revno > len(p.revs) {
		return nil, errors.Errorf("no such revision: %v", revno)
	}
	if revno <= 0 {
		return nil, nil
	}

	files := p.filesAt(revno)
	changed := set.From(p.revs[revno-1].ChangedPaths())

	var result []string
	for _, f := range files.Slice() {
		if strings.HasPrefix(f, dir) && !changed.Contains(f) {
			result = append(result, f)
		}
	}

	sort.Strings(result)
	return result, nil
}

func (p *Provider) Close() error {
	return nil
}

// filesAt replays the history to find the files that exist after revno.
func (p *Provider) filesAt(revno int) *set.Set[string] {
	files := set.New[string](100)

	for _, rev := range p.revs[:revno] {
		for _, c := range rev.Changes {
			switch {
			case c.IsDirectory() && c.ChangeType == model.ChangeDeleted:
				for _, f := range files.Slice() {
					if strings.HasPrefix(f, c.Path) {
						files.Remove(f)
					}
				}

			case c.IsDirectory() && c.ChangeType == model.ChangeAdded && c.HasCopySource():
				for _, f := range p.filesAt(*c.CopyFromRevno).Slice() {
					if strings.HasPrefix(f, c.CopyFromPath) {
						files.Insert(strings.Replace(f, c.CopyFromPath, c.Path, 1))
					}
				}

			case c.IsDirectory():

			case c.ChangeType == model.ChangeDeleted:
				files.Remove(c.Path)

			default:
				files.Insert(c.Path)
			}
		}
	}

	return files
}
