package main

import (
	"github.com/pescuma/svnstats/lib/history"
	historyimporter "github.com/pescuma/svnstats/lib/importers/history"
)

type repoFlags struct {
	URL            string   `arg:"" help:"Repository URL. Local git clones and git+file:// URLs are read with git."`
	Username       string   `short:"u" help:"Username for repository authentication."`
	Password       string   `short:"p" help:"Password for repository authentication."`
	Branch         string   `help:"Branches to read from git repositories, separated by comma. Default is HEAD."`
	BinaryPatterns []string `help:"Extra glob patterns of files that should not get line counts."`
}

func (r *repoFlags) options() *history.Options {
	return &history.Options{
		Username:       r.Username,
		Password:       r.Password,
		Branch:         r.Branch,
		BinaryPatterns: r.BinaryPatterns,
		Verbose:        cli.Verbose,
	}
}

type ConvertCmd struct {
	Repo repoFlags `embed:""`

	LineCount   bool   `short:"l" default:"false" negatable:"" help:"Compute lines added and deleted for every change."`
	After       string `help:"Only convert revisions committed on or after this date (YYYY-MM-DD or RFC 3339)."`
	Before      string `help:"Only convert revisions committed before this date (YYYY-MM-DD or RFC 3339)."`
	MaxAttempts int    `default:"3" help:"Number of times to try the conversion before giving up."`
	BatchSize   int    `default:"10" help:"Number of revisions to store per transaction."`
}

func (c *ConvertCmd) Run(ctx *context) error {
	after, err := parseDate(c.After)
	if err != nil {
		return err
	}

	before, err := parseDate(c.Before)
	if err != nil {
		return err
	}

	console := ctx.ws.Console()
	console.Printf("Updating the history of %v\n", c.Repo.URL)
	console.Printf("Compute line counts: %v\n", c.LineCount)
	if after != nil {
		console.Printf("Start date: %v\n", after.Format(dateLayout))
	}
	if before != nil {
		console.Printf("End date: %v\n", before.Format(dateLayout))
	}

	return ctx.ws.Convert(ctx.ctx, c.Repo.URL, c.Repo.options(), &historyimporter.ConvertOptions{
		After:       after,
		Before:      before,
		LineCounts:  c.LineCount,
		MaxAttempts: c.MaxAttempts,
		BatchSize:   c.BatchSize,
	})
}

type UpdateLinesCmd struct {
	Repo repoFlags `embed:""`
}

func (c *UpdateLinesCmd) Run(ctx *context) error {
	return ctx.ws.UpdateLineCounts(ctx.ctx, c.Repo.URL, c.Repo.options())
}

type FixPathsCmd struct {
}

func (c *FixPathsCmd) Run(ctx *context) error {
	return ctx.ws.FixPaths()
}
