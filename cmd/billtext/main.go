package main

import (
	"errors"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/robinvdvleuten/billtext/cli"
)

var (
	// Version contains the application version number. It's set via ldflags
	// when building.
	Version = ""

	// CommitSHA contains the SHA of the commit that this application was built
	// against. It's set via ldflags when building.
	CommitSHA = ""

	app struct {
		Version kong.VersionFlag `help:"Show version information"`
		cli.Commands
	}
)

func main() {
	// A .env file in the working directory may set BILLTEXT_* variables.
	_ = godotenv.Load()

	cli.Version = Version
	cli.CommitSHA = CommitSHA

	ctx := kong.Parse(&app,
		cli.Vars(),
		kong.Name("billtext"),
		kong.Description("A parser, validator and formatter for plain-text monthly bills."),
		kong.UsageOnError(),
		kong.Bind(&app.Globals),
	)

	err := ctx.Run()

	var cmdErr *cli.CommandError
	if errors.As(err, &cmdErr) {
		os.Exit(cmdErr.ExitCode())
	}
	ctx.FatalIfErrorf(err)
}
