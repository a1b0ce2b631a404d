package history

import (
	"context"
	"fmt"
	"strings"

	"github.com/aquilax/truncate"

	"github.com/pescuma/svnstats/lib/history"
	"github.com/pescuma/svnstats/lib/model"
	"github.com/pescuma/svnstats/lib/storages"
	"github.com/pescuma/svnstats/lib/utils"
)

type ingestStats struct {
	revisions int
	skipped   int
	changes   int
	synthetic int
}

func (i *Importer) ingest(ctx context.Context, batch storages.Batch, start, end int, opts *ConvertOptions) (*ingestStats, error) {
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	stats := &ingestStats{}
	pending := 0

	bar := utils.NewProgressBar(end - start + 1)
	defer func() { _ = bar.Finish() }()

	err := i.provider.Revisions(ctx, start, end, func(rev *history.Revision) error {
		bar.Describe(describe(rev))
		_ = bar.Add(1)

		if rev.Valid {
			// Reconstruction aggregates must see everything through the previous
			// revision, and nothing of this one may be committed before it ends
			if opts.LineCounts && needsReconstruction(rev) {
				err := batch.Flush()
				if err != nil {
					return err
				}
				pending = 0
			}

			err := i.ingestRevision(ctx, batch, rev, opts, stats)
			if err != nil {
				return err
			}

			stats.revisions++

		} else {
			i.console.Debugf("Skipping r%v: no changes available\n", rev.Revno)
			stats.skipped++
		}

		pending++
		if pending >= batchSize {
			pending = 0
			return batch.Flush()
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return stats, nil
}

func (i *Importer) ingestRevision(ctx context.Context, batch storages.Batch, rev *history.Revision, opts *ConvertOptions, stats *ingestStats) error {
	i.console.PushPrefix("r%v: ", rev.Revno)
	defer i.console.PopPrefix()

	entry := model.NewLogEntry(rev.Revno)
	entry.CommitDate = rev.Date
	entry.Author = rev.Author
	entry.Message = rev.Message
	entry.AddedFiles, entry.ChangedFiles, entry.DeletedFiles = rev.FileCounts()

	err := batch.WriteLogEntry(entry)
	if err != nil {
		return err
	}

	synthAdded := 0
	synthDeleted := 0

	for _, change := range rev.Changes {
		record, err := i.ingestChange(ctx, batch, change, opts)
		if err != nil {
			return err
		}

		stats.changes++

		if !opts.LineCounts || !record.IsDirectory() {
			continue
		}

		switch record.ChangeType {
		case model.ChangeAdded:
			n, err := i.addCopiedFiles(ctx, batch, change)
			if err != nil {
				return err
			}
			synthAdded += n
			stats.synthetic += n

		case model.ChangeDeleted:
			n, err := i.deleteRemovedFiles(ctx, batch, change)
			if err != nil {
				return err
			}
			synthDeleted += n
			stats.synthetic += n
		}
	}

	if synthAdded > 0 || synthDeleted > 0 {
		err = batch.UpdateLogEntryFileCounts(rev.Revno, entry.AddedFiles+synthAdded, entry.DeletedFiles+synthDeleted)
		if err != nil {
			return err
		}
	}

	return nil
}

func (i *Importer) ingestChange(ctx context.Context, batch storages.Batch, change *history.Change, opts *ConvertOptions) (*model.ChangeRecord, error) {
	if change.PathType == model.PathDirectory && !history.IsDirPath(change.Path) {
		return nil, history.NewPreconditionError("r%v: directory path %v must end with %v",
			change.Revno, change.Path, model.DirSeparator)
	}

	record := model.NewChangeRecord(change.Revno, change.Path, change.ChangeType,
		model.ResolvePathType(change.Path, change.PathType))

	id, err := batch.InternPath(change.Path)
	if err != nil {
		return nil, err
	}
	record.PathID = *id

	if change.HasCopySource() {
		record.CopyFromPath = change.CopyFromPath
		record.CopyFromRevno = change.CopyFromRevno

		record.CopyFromPathID, err = batch.InternPath(change.CopyFromPath)
		if err != nil {
			return nil, err
		}
	}

	if opts.LineCounts {
		if !record.IsDirectory() {
			record.LinesAdded, record.LinesDeleted, err = i.provider.LineCount(ctx, change.Revno, change.Path, change.ChangeType)
			if err != nil {
				return nil, err
			}
		}

		record.LineCountUpdated = true
	}

	i.console.Debugf("%v %v +%v -%v\n", record.ChangeType, record.Path, record.LinesAdded, record.LinesDeleted)

	err = batch.WriteChangeRecord(record)
	if err != nil {
		return nil, err
	}

	return record, nil
}

func needsReconstruction(rev *history.Revision) bool {
	for _, c := range rev.Changes {
		if model.ResolvePathType(c.Path, c.PathType) != model.PathDirectory {
			continue
		}

		switch c.ChangeType {
		case model.ChangeAdded:
			if c.HasCopySource() {
				return true
			}
		case model.ChangeDeleted:
			return true
		}
	}

	return false
}

func describe(rev *history.Revision) string {
	msg, _, _ := strings.Cut(strings.TrimSpace(rev.Message), "\n")
	return fmt.Sprintf("r%v %v", rev.Revno, truncate.Truncate(msg, 40, "...", truncate.PositionEnd))
}
