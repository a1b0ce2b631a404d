package history

import (
	"context"
	"time"

	"github.com/pescuma/svnstats/lib/model"
)

// Provider gives access to the revisions of a repository. Revision numbers
// start at 1 and are contiguous.
type Provider interface {
	RootURL(ctx context.Context) (string, error)

	// FindRevisionRange returns the first and last revisions committed inside
	// [after, before). Nil bounds mean the first and the last revisions.
	FindRevisionRange(ctx context.Context, after, before *time.Time) (int, int, error)

	// Revisions calls fn for every revision in [start, end], in ascending order.
	Revisions(ctx context.Context, start, end int, fn func(rev *Revision) error) error

	LineCount(ctx context.Context, revno int, path string, change model.ChangeType) (int, int, error)

	// UnmodifiedFiles lists the files under dir at revno that were not touched by revno.
	UnmodifiedFiles(ctx context.Context, dir string, revno int) ([]string, error)

	Close() error
}

type Options struct {
	Username       string
	Password       string
	Branch         string
	BinaryPatterns []string
	Verbose        bool
}
