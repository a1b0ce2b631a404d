package svn

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-set/v2"
	"github.com/pkg/errors"

	"github.com/pescuma/svnstats/lib/consoles"
	"github.com/pescuma/svnstats/lib/history"
	"github.com/pescuma/svnstats/lib/linediff"
	"github.com/pescuma/svnstats/lib/model"
	"github.com/pescuma/svnstats/lib/utils"
)

const logChunkSize = 100

type Provider struct {
	client *client
	url    string
	binary *history.BinaryMatcher

	root string
}

var _ history.Provider = (*Provider)(nil)

func NewProvider(console consoles.Console, repoURL string, opts *history.Options) (*Provider, error) {
	quoted, err := QuoteURL(repoURL)
	if err != nil {
		return nil, err
	}

	binary, err := history.NewBinaryMatcher(opts.BinaryPatterns)
	if err != nil {
		return nil, err
	}

	return &Provider{
		client: &client{
			console:  console,
			username: opts.Username,
			password: opts.Password,
			verbose:  opts.Verbose,
			binary:   "svn",
		},
		url:    quoted,
		binary: binary,
	}, nil
}

// QuoteURL escapes the path of the URL and makes sure it ends with a separator.
func QuoteURL(repoURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(repoURL))
	if err != nil {
		return "", errors.Wrapf(err, "invalid repository URL %v", repoURL)
	}
	if u.Scheme == "" {
		return "", errors.Errorf("invalid repository URL %v: missing scheme", repoURL)
	}

	// Parse already unescaped it, so it is escaped only once
	u.Path = history.DirPath(u.Path)
	u.RawPath = ""

	return u.String(), nil
}

func (p *Provider) RootURL(ctx context.Context) (string, error) {
	if p.root != "" {
		return p.root, nil
	}

	out, err := p.client.run(ctx, "info", "--xml", p.url)
	if err != nil {
		return "", err
	}

	info, err := parseInfo(out)
	if err != nil {
		return "", err
	}

	p.root = history.DirPath(info.Repository.Root)
	return p.root, nil
}

func (p *Provider) FindRevisionRange(ctx context.Context, after, before *time.Time) (int, int, error) {
	start := 1
	if after != nil {
		revno, found, err := p.firstRevision(ctx, revDate(*after)+":HEAD")
		if err != nil {
			return 0, 0, err
		}
		if !found {
			return 1, 0, nil
		}
		start = revno
	}

	var end int
	if before != nil {
		revno, found, err := p.firstRevision(ctx, revDate(*before)+":1")
		if err != nil {
			return 0, 0, err
		}
		if !found {
			return 1, 0, nil
		}
		end = revno

	} else {
		out, err := p.client.run(ctx, "info", "--xml", "-r", "HEAD", p.url)
		if err != nil {
			return 0, 0, err
		}

		info, err := parseInfo(out)
		if err != nil {
			return 0, 0, err
		}

		end = info.Revision
	}

	return start, end, nil
}

func (p *Provider) firstRevision(ctx context.Context, revs string) (int, bool, error) {
	out, err := p.client.run(ctx, "log", "--xml", "--limit", "1", "-r", revs, p.url)
	if err != nil {
		return 0, false, err
	}

	log, err := parseLog(out)
	if err != nil {
		return 0, false, err
	}
	if len(log) == 0 {
		return 0, false, nil
	}

	return log[0].Revno, true, nil
}

func revDate(t time.Time) string {
	return "{" + t.UTC().Format("2006-01-02T15:04:05Z") + "}"
}

func (p *Provider) Revisions(ctx context.Context, start, end int, fn func(rev *history.Revision) error) error {
	for from := start; from <= end; from += logChunkSize {
		to := utils.Min(from+logChunkSize-1, end)

		out, err := p.client.run(ctx, "log", "-v", "--xml", "-r", fmt.Sprintf("%v:%v", from, to), p.url)
		if err != nil {
			return err
		}

		revs, err := parseLog(out)
		if err != nil {
			return err
		}

		for _, rev := range revs {
			err = p.resolveKinds(ctx, rev)
			if err != nil {
				return err
			}

			err = fn(rev)
			if err != nil {
				return err
			}
		}
	}

	return nil
}

// resolveKinds asks the server for the kind of the paths that the log
// reported without one. Deleted paths are looked up in the previous revision.
func (p *Provider) resolveKinds(ctx context.Context, rev *history.Revision) error {
	for _, c := range rev.Changes {
		if c.PathType != model.PathUnknown {
			continue
		}

		revno := rev.Revno
		if c.ChangeType == model.ChangeDeleted {
			revno--
		}

		kind, err := p.pathKind(ctx, c.Path, revno)
		if err != nil {
			return err
		}

		applyKind(c, kind)
	}

	return nil
}

func (p *Provider) pathKind(ctx context.Context, path string, revno int) (string, error) {
	root, err := p.RootURL(ctx)
	if err != nil {
		return "", err
	}

	out, err := p.client.run(ctx, "info", "--xml", pegURL(root, path, revno))
	if err != nil {
		return "", err
	}

	info, err := parseInfo(out)
	if err != nil {
		return "", err
	}

	return info.Kind, nil
}

func (p *Provider) LineCount(ctx context.Context, revno int, path string, change model.ChangeType) (int, int, error) {
	if p.binary.IsBinary(path) {
		return 0, 0, nil
	}

	root, err := p.RootURL(ctx)
	if err != nil {
		return 0, 0, err
	}

	if change == model.ChangeDeleted {
		out, err := p.client.run(ctx, "cat", pegURL(root, path, revno-1))
		if err != nil {
			return 0, 0, err
		}

		return 0, linediff.CountLines(string(out)), nil
	}

	out, err := p.client.run(ctx, "diff", "--internal-diff", "-c", strconv.Itoa(revno), pegURL(root, path, revno))
	if err != nil {
		return 0, 0, err
	}

	return linediff.CountUnified(bytes.NewReader(out))
}

func (p *Provider) UnmodifiedFiles(ctx context.Context, dir string, revno int) ([]string, error) {
	if revno <= 0 {
		return nil, nil
	}

	root, err := p.RootURL(ctx)
	if err != nil {
		return nil, err
	}

	out, err := p.client.run(ctx, "list", "-R", "--xml", pegURL(root, dir, revno))
	if err != nil {
		return nil, err
	}

	files, err := parseList(out, dir)
	if err != nil {
		return nil, err
	}

	out, err = p.client.run(ctx, "log", "-v", "--xml", "-r", strconv.Itoa(revno), root)
	if err != nil {
		return nil, err
	}

	revs, err := parseLog(out)
	if err != nil {
		return nil, err
	}

	changed := set.New[string](100)
	for _, rev := range revs {
		for _, c := range rev.ChangedPaths() {
			changed.Insert(c)
		}
	}

	var result []string
	for _, f := range files {
		if history.HasDirPrefix(f, dir) && !changed.Contains(f) {
			result = append(result, f)
		}
	}

	sort.Strings(result)
	return result, nil
}

func (p *Provider) Close() error {
	return nil
}

func pegURL(root, path string, revno int) string {
	escaped := (&url.URL{Path: strings.TrimPrefix(path, "/")}).EscapedPath()
	return fmt.Sprintf("%v%v@%v", history.DirPath(root), escaped, revno)
}
