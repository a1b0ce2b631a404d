package workspace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/pescuma/svnstats/lib/consoles"
	"github.com/pescuma/svnstats/lib/history"
	githistory "github.com/pescuma/svnstats/lib/history/git"
	"github.com/pescuma/svnstats/lib/history/svn"
	historyimporter "github.com/pescuma/svnstats/lib/importers/history"
	"github.com/pescuma/svnstats/lib/storages"
	"github.com/pescuma/svnstats/lib/storages/orm"
	"github.com/pescuma/svnstats/lib/utils"
)

const DefaultDatabase = "svnstats.sqlite"

type Workspace struct {
	console consoles.Console
	storage storages.Storage
}

func NewWorkspace(dsn string, verbose bool) (*Workspace, error) {
	return NewWorkspaceWithConsole(consoles.NewStdOutConsole(verbose), dsn, verbose)
}

func NewWorkspaceWithConsole(console consoles.Console, dsn string, verbose bool) (*Workspace, error) {
	if dsn == "" {
		dsn = DefaultDatabase
	}

	var storage storages.Storage
	var err error
	switch {
	case dsn == ":memory:":
		storage, err = orm.NewGormStorage(orm.WithSqliteInMemory(), console, verbose)

	case strings.HasPrefix(dsn, "mysql://"):
		d, derr := orm.WithMySql(strings.TrimPrefix(dsn, "mysql://"))
		if derr != nil {
			return nil, derr
		}

		storage, err = orm.NewGormStorage(d, console, verbose)

	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		d, derr := orm.WithPostgres(dsn)
		if derr != nil {
			return nil, derr
		}

		storage, err = orm.NewGormStorage(d, console, verbose)

	case isSqliteFile(dsn):
		file, ferr := utils.PathAbs(dsn)
		if ferr != nil {
			return nil, ferr
		}

		err = createDatabaseDir(console, file)
		if err != nil {
			return nil, err
		}

		storage, err = orm.NewGormStorage(orm.WithSqlite(file), console, verbose)

	default:
		return nil, fmt.Errorf("unknown storage type for %v", dsn)
	}
	if err != nil {
		return nil, err
	}

	return &Workspace{
		console: console,
		storage: storage,
	}, nil
}

func isSqliteFile(dsn string) bool {
	ext := strings.ToLower(filepath.Ext(dsn))
	return ext == ".sqlite" || ext == ".sqlite3" || ext == ".db"
}

func createDatabaseDir(console consoles.Console, file string) error {
	path := filepath.Dir(file)

	if _, err := os.Stat(path); err != nil {
		console.Printf("Creating database folder at %v\n", path)
		err = os.MkdirAll(path, 0o700)
		if err != nil {
			return err
		}
	}

	return nil
}

// OpenProvider uses git for git+file:// URLs and local git clones, and svn
// for everything else.
func OpenProvider(console consoles.Console, repoURL string, opts *history.Options) (history.Provider, error) {
	o := *opts
	o.BinaryPatterns = append(history.DefaultBinaryPatterns(), opts.BinaryPatterns...)

	if strings.HasPrefix(repoURL, githistory.URLPrefix) || isGitDir(repoURL) {
		return githistory.NewProvider(console, repoURL, &o)
	}

	return svn.NewProvider(console, repoURL, &o)
}

func isGitDir(dir string) bool {
	stat, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil && stat.IsDir()
}

func (w *Workspace) Close() error {
	return w.storage.Close()
}

func (w *Workspace) Console() consoles.Console {
	return w.console
}

func (w *Workspace) Storage() storages.Storage {
	return w.storage
}

func (w *Workspace) Convert(ctx context.Context, repoURL string, popts *history.Options, copts *historyimporter.ConvertOptions) error {
	provider, err := OpenProvider(w.console, repoURL, popts)
	if err != nil {
		return err
	}
	defer provider.Close()

	importer := historyimporter.NewImporter(w.console, w.storage, provider)
	return importer.Convert(ctx, copts)
}

func (w *Workspace) UpdateLineCounts(ctx context.Context, repoURL string, popts *history.Options) error {
	provider, err := OpenProvider(w.console, repoURL, popts)
	if err != nil {
		return err
	}
	defer provider.Close()

	importer := historyimporter.NewImporter(w.console, w.storage, provider)
	return importer.UpdateLineCounts(ctx)
}

func (w *Workspace) FixPaths() error {
	w.console.Printf("Normalizing stored paths...\n")

	merged, err := w.storage.FixPaths(history.NormalizePath)
	if err != nil {
		return errors.Wrap(err, "error fixing paths")
	}

	w.console.Printf("Merged %v duplicated paths\n", merged)
	return nil
}
