package main

import (
	"github.com/alecthomas/kong"

	"github.com/openclaw/predmarkets/cmd/predmarkets/commands"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	var cli commands.CLI
	ctx := kong.Parse(&cli,
		kong.Name("predmarkets"),
		kong.Description("Generate and publish the daily prediction-markets report."),
		kong.UsageOnError(),
		kong.Vars{"version": version},
	)
	err := ctx.Run(&commands.Global{}, &cli)
	ctx.FatalIfErrorf(err)
}
