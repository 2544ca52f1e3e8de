package main

import (
	"log/slog"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/kixport/cmd/kixport/commands"
	kerrors "git.home.luguber.info/inful/kixport/internal/errors"
	"git.home.luguber.info/inful/kixport/internal/version"
)

func main() {
	cli := &commands.CLI{}
	parser := kong.Parse(cli,
		kong.Name("kixport"),
		kong.Description("Export fabrication packages for KiCad board projects."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)

	err := parser.Run(&commands.Global{Logger: slog.Default()}, cli)
	kerrors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
}
