package cli

import (
	"fmt"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/billtext/report"
)

var (
	Version   = ""
	CommitSHA = ""
)

// Globals defines global flags available to all commands.
type Globals struct {
	Config    string `help:"Path to the JSON configuration file (built-in categories if empty)." env:"BILLTEXT_CONFIG" type:"path"`
	LogLevel  string `help:"Log level (debug, info, warn, error)." env:"BILLTEXT_LOG_LEVEL" default:"warn"`
	Telemetry bool   `help:"Show timing telemetry for operations."`
}

type Commands struct {
	Globals

	Check  CheckCmd  `cmd:"" help:"Validate a bill file and print its diagnostics."`
	Show   ShowCmd   `cmd:"" help:"Print the processed bill as JSON."`
	Format FormatCmd `cmd:"" help:"Format a bill file with aligned columns."`
	Report ReportCmd `cmd:"" help:"Render a bill report (markdown, latex, rst, typst)."`
	Import ImportCmd `cmd:"" help:"Import bill files into a store. Nothing is imported if any file has errors."`
	Doctor DoctorCmd `cmd:"" help:"Doctor utilities for debugging bill files."`
	Web    WebCmd    `cmd:"" help:"Serve a directory of bills over HTTP."`
	Lsp    LspCmd    `cmd:"" help:"Run the language server over stdio."`
}

func buildVersion() (string, string) {
	version := Version
	if version == "" {
		version = "dev"
	}
	commitSHA := CommitSHA
	if commitSHA == "" {
		commitSHA = "local"
	}
	return version, commitSHA
}

// Vars are the interpolation variables used in help strings.
func Vars() kong.Vars {
	version, commitSHA := buildVersion()
	return kong.Vars{
		"version": fmt.Sprintf("%s (%s)", version, commitSHA),
		"formats": strings.Join(report.Names(), ", "),
	}
}
