package history

import (
	"context"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gertd/go-pluralize"
	"github.com/pkg/errors"

	"github.com/pescuma/svnstats/lib/consoles"
	"github.com/pescuma/svnstats/lib/history"
	"github.com/pescuma/svnstats/lib/storages"
	"github.com/pescuma/svnstats/lib/utils"
)

const (
	defaultMaxAttempts = 3
	defaultBatchSize   = 10
)

type Importer struct {
	console  consoles.Console
	storage  storages.Storage
	provider history.Provider
}

type ConvertOptions struct {
	After  *time.Time
	Before *time.Time

	LineCounts bool

	MaxAttempts int
	// BatchSize is the number of revisions committed together.
	BatchSize int
}

func NewImporter(console consoles.Console, storage storages.Storage, provider history.Provider) *Importer {
	return &Importer{
		console:  console,
		storage:  storage,
		provider: provider,
	}
}

// Convert mirrors the provider's history into the store, resuming after the
// last stored revision. Transient errors roll back the current batch and
// start over from the store's state.
func (i *Importer) Convert(ctx context.Context, opts *ConvertOptions) error {
	maxAttempts := opts.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}

	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			i.console.Printf("Trying again (%v)\n", attempt-1)
		}

		err = i.convert(ctx, opts)
		if err == nil {
			return nil
		}

		if history.IsFatal(err) {
			return err
		}

		i.console.Printf("Error converting history: %v\n", err)
	}

	return errors.Wrapf(err, "giving up after %v %v", maxAttempts,
		pluralize.NewClient().Pluralize("attempt", maxAttempts, false))
}

func (i *Importer) convert(ctx context.Context, opts *ConvertOptions) error {
	last, err := i.storage.LastStoredRevno()
	if err != nil {
		return err
	}

	start, end, err := i.provider.FindRevisionRange(ctx, opts.After, opts.Before)
	if err != nil {
		return err
	}

	start = utils.Max(start, last+1)
	if start > end {
		i.console.Printf("Nothing to convert (last stored revision is r%v)\n", last)
		return nil
	}

	root, err := i.provider.RootURL(ctx)
	if err != nil {
		return err
	}

	i.console.Printf("Converting %v from r%v to r%v...\n", root, start, end)

	batch, err := i.storage.Begin()
	if err != nil {
		return err
	}

	stats, err := i.ingest(ctx, batch, start, end, opts)
	if err != nil {
		rerr := batch.Rollback()
		if rerr != nil {
			i.console.Printf("Error rolling back: %v\n", rerr)
		}

		return err
	}

	err = batch.Commit()
	if err != nil {
		return err
	}

	pc := pluralize.NewClient()
	i.console.Printf("Converted %v %v (%v skipped) with %v %v and %v synthetic %v\n",
		humanize.Comma(int64(stats.revisions)), pc.Pluralize("revision", stats.revisions, false),
		humanize.Comma(int64(stats.skipped)),
		humanize.Comma(int64(stats.changes)), pc.Pluralize("change", stats.changes, false),
		humanize.Comma(int64(stats.synthetic)), pc.Pluralize("record", stats.synthetic, false))

	return nil
}
