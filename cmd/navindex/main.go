package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/navindex/cmd/navindex/commands"
	"git.home.luguber.info/inful/navindex/internal/foundation/errors"
	"git.home.luguber.info/inful/navindex/internal/version"
)

func main() {
	var cli commands.CLI
	g := &commands.Global{Out: os.Stdout}
	parser := kong.Parse(&cli,
		kong.Name("navindex"),
		kong.Description("Load, check and serve Doxygen navigation data."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
		kong.Bind(g),
	)
	if err := parser.Run(g, &cli); err != nil {
		logger := g.Logger
		if logger == nil {
			logger = slog.Default()
		}
		errors.NewCLIErrorAdapter(cli.Verbose, logger).HandleError(err)
	}
}
