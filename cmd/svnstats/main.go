package main

import (
	stdctx "context"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"

	"github.com/pescuma/svnstats/lib/workspace"
)

var cli struct {
	Config   kong.ConfigFlag `help:"Load defaults from this TOML file."`
	Database string          `short:"d" default:"svnstats.sqlite" help:"Where to store the history. Accepts :memory:, *.sqlite, *.sqlite3, *.db, mysql://... and postgres://..."`
	Verbose  bool            `short:"v" help:"Enable verbose output."`

	Convert     ConvertCmd     `cmd:"" help:"Mirror the history of a repository into the database."`
	UpdateLines UpdateLinesCmd `cmd:"" help:"Compute the line counts still missing in the database."`
	FixPaths    FixPathsCmd    `cmd:"" help:"Normalize stored paths and merge duplicates."`
}

type context struct {
	ctx stdctx.Context
	ws  *workspace.Workspace
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("svnstats"),
		kong.Description("Mirrors svn (or git) history into a relational database."),
		kong.ShortUsageOnError(),
		kong.Configuration(TOMLLoader, "./svnstats.toml", "~/.svnstats.toml"),
	)

	ws, err := workspace.NewWorkspace(cli.Database, cli.Verbose)
	ctx.FatalIfErrorf(err)

	sctx, cancel := signal.NotifyContext(stdctx.Background(), os.Interrupt)
	err = ctx.Run(&context{
		ctx: sctx,
		ws:  ws,
	})
	cancel()

	closeErr := ws.Close()
	ctx.FatalIfErrorf(err)
	ctx.FatalIfErrorf(closeErr)
}
