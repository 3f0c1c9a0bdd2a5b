package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/kostelemetry/cmd/kos-telemetry/commands"
	ferrors "git.home.luguber.info/inful/kostelemetry/internal/errors"
	"git.home.luguber.info/inful/kostelemetry/internal/version"
)

func main() {
	cli := &commands.CLI{}
	parser := kong.Parse(cli,
		kong.Name("kos-telemetry"),
		kong.Description("Publish robot telemetry to a NATS broker."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)

	err := parser.Run(&commands.Global{Logger: slog.Default()}, cli)

	adapter := ferrors.NewCLIErrorAdapter(cli.Verbose, slog.Default())
	os.Exit(adapter.Report(err, os.Stderr))
}
