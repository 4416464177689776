package main

import (
	"github.com/alecthomas/kong"

	"github.com/stitchdocs/sitegen/cmd/sitegen/commands"
	"github.com/stitchdocs/sitegen/internal/version"
)

func main() {
	var cli commands.CLI
	ctx := kong.Parse(&cli,
		kong.Name("sitegen"),
		kong.Description("Build a localized static site from markdown content."),
		kong.UsageOnError(),
		kong.Vars{"version": version.Version},
	)

	err := ctx.Run(&commands.Global{}, &cli)
	ctx.FatalIfErrorf(err)
}
