package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/docbib/cmd/docbib/commands"
	derrors "git.home.luguber.info/inful/docbib/internal/errors"
	"git.home.luguber.info/inful/docbib/internal/version"
)

func main() {
	cli := &commands.CLI{}
	parser := kong.Must(cli,
		kong.Name("docbib"),
		kong.Description("Static site generator with BibTeX bibliographies"),
		kong.Vars{"version": version.String()},
		kong.UsageOnError(),
	)
	kctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	err = kctx.Run(commands.NewGlobal(), cli)
	os.Exit(derrors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err))
}
