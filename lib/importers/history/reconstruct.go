package history

import (
	"context"
	"strings"

	"github.com/pescuma/svnstats/lib/history"
	"github.com/pescuma/svnstats/lib/model"
	"github.com/pescuma/svnstats/lib/storages"
	"github.com/pescuma/svnstats/lib/utils"
)

// addCopiedFiles writes a synthetic add for each file a directory copy brought
// along, carrying the lines the source had at the copy revision.
func (i *Importer) addCopiedFiles(ctx context.Context, batch storages.Batch, change *history.Change) (int, error) {
	if change.ChangeType != model.ChangeAdded {
		return 0, history.NewPreconditionError("r%v: %v is not an add", change.Revno, change.Path)
	}
	err := checkDirectory(change)
	if err != nil {
		return 0, err
	}

	if !change.HasCopySource() {
		return 0, nil
	}

	srcDir := history.DirPath(change.CopyFromPath)
	srcRevno := *change.CopyFromRevno

	files, err := i.provider.UnmodifiedFiles(ctx, change.Path, change.Revno)
	if err != nil {
		return 0, err
	}

	i.console.Debugf("Copying %v files from %v@%v\n", len(files), srcDir, srcRevno)

	written := 0
	for _, file := range files {
		src := strings.Replace(file, change.Path, srcDir, 1)

		added, deleted, found, err := batch.CumulativeLines(src, srcRevno)
		if err != nil {
			return 0, err
		}
		if !found {
			continue
		}

		record := model.NewChangeRecord(change.Revno, file, model.ChangeAdded, model.PathFile)
		record.EntryType = model.EntrySynthetic
		record.LineCountUpdated = true
		record.LinesAdded = utils.Max(0, added-deleted)
		record.CopyFromPath = src
		record.CopyFromRevno = &srcRevno

		err = writeSynthetic(batch, record)
		if err != nil {
			return 0, err
		}

		written++
	}

	return written, nil
}

// deleteRemovedFiles writes a synthetic delete for each file that existed
// under a deleted directory, removing the lines it had.
func (i *Importer) deleteRemovedFiles(ctx context.Context, batch storages.Batch, change *history.Change) (int, error) {
	if change.ChangeType != model.ChangeDeleted {
		return 0, history.NewPreconditionError("r%v: %v is not a delete", change.Revno, change.Path)
	}
	err := checkDirectory(change)
	if err != nil {
		return 0, err
	}

	through := change.PrevRevno()

	files, err := i.provider.UnmodifiedFiles(ctx, change.PrevPath(), through)
	if err != nil {
		return 0, err
	}

	i.console.Debugf("Deleting %v files from %v@%v\n", len(files), change.PrevPath(), through)

	written := 0
	for _, file := range files {
		added, deleted, found, err := batch.CumulativeLines(file, through)
		if err != nil {
			return 0, err
		}
		if !found {
			continue
		}

		record := model.NewChangeRecord(change.Revno, file, model.ChangeDeleted, model.PathFile)
		record.EntryType = model.EntrySynthetic
		record.LineCountUpdated = true
		record.LinesDeleted = utils.Max(0, added-deleted)

		err = writeSynthetic(batch, record)
		if err != nil {
			return 0, err
		}

		written++
	}

	return written, nil
}

func checkDirectory(change *history.Change) error {
	if model.ResolvePathType(change.Path, change.PathType) != model.PathDirectory {
		return history.NewPreconditionError("r%v: %v is not a directory", change.Revno, change.Path)
	}
	if !history.IsDirPath(change.Path) {
		return history.NewPreconditionError("r%v: directory %v must end with %v", change.Revno, change.Path, model.DirSeparator)
	}
	return nil
}

func writeSynthetic(batch storages.Batch, record *model.ChangeRecord) error {
	id, err := batch.InternPath(record.Path)
	if err != nil {
		return err
	}
	record.PathID = *id

	record.CopyFromPathID, err = batch.InternPath(record.CopyFromPath)
	if err != nil {
		return err
	}

	return batch.WriteChangeRecord(record)
}
