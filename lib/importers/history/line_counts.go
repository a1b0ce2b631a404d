package history

import (
	"context"

	"github.com/dustin/go-humanize"

	"github.com/pescuma/svnstats/lib/history"
	"github.com/pescuma/svnstats/lib/model"
	"github.com/pescuma/svnstats/lib/utils"
)

// UpdateLineCounts fills the line counts of every change stored without them.
// Rows the provider fails on with a transient error are left for a next pass.
func (i *Importer) UpdateLineCounts(ctx context.Context) error {
	changes, err := i.storage.ListUnresolvedChanges()
	if err != nil {
		return err
	}

	if len(changes) == 0 {
		i.console.Printf("All line counts are up to date\n")
		return nil
	}

	i.console.Printf("Updating line counts of %v changes...\n", humanize.Comma(int64(len(changes))))

	bar := utils.NewProgressBar(len(changes))
	defer func() { _ = bar.Finish() }()

	updated := 0
	failed := 0
	for _, change := range changes {
		if err := ctx.Err(); err != nil {
			return err
		}

		bar.Describe(change.Path)
		_ = bar.Add(1)

		added := 0
		deleted := 0

		if change.PathType != model.PathDirectory {
			added, deleted, err = i.provider.LineCount(ctx, change.Revno, change.Path, change.ChangeType)
			if err != nil {
				if history.IsFatal(err) {
					return err
				}

				i.console.Printf("r%v: error counting lines of %v: %v\n", change.Revno, change.Path, err)
				failed++
				continue
			}
		}

		err = i.storage.UpdateLineCount(change, added, deleted)
		if err != nil {
			return err
		}

		updated++
	}

	i.console.Printf("Updated %v line counts (%v failed)\n", humanize.Comma(int64(updated)), humanize.Comma(int64(failed)))

	return nil
}
